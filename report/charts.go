package report

import (
	"math"
	"os"
	"path/filepath"
	"strconv"

	"github.com/keroloshany47/retail-etl/utils"
	"github.com/rotisserie/eris"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

const (
	figureWidth   = 16 * vg.Inch
	figureHeight  = 12 * vg.Inch
	barWidth      = vg.Length(12)
	histogramBins = 30
)

func newPlot(title, xLabel, yLabel string) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = xLabel
	p.Y.Label.Text = yLabel
	p.Add(plotter.NewGrid())
	return p
}

func barPlot(title, xLabel, yLabel string, ranked []Ranked, color int) (*plot.Plot, error) {
	p := newPlot(title, xLabel, yLabel)
	if len(ranked) == 0 {
		return p, nil
	}

	names := make([]string, len(ranked))
	values := make(plotter.Values, len(ranked))
	for i, r := range ranked {
		names[i] = r.Name
		values[i] = r.Value
	}

	bars, err := plotter.NewBarChart(values, barWidth)
	if err != nil {
		return nil, eris.Wrapf(err, "error building %q", title)
	}
	bars.Color = plotutil.Color(color)
	bars.LineStyle.Width = 0
	p.Add(bars)
	p.NominalX(names...)
	p.X.Tick.Label.Rotation = math.Pi / 4
	return p, nil
}

func pointsToRanked(points []Point) []Ranked {
	ranked := make([]Ranked, len(points))
	for i, pt := range points {
		ranked[i] = Ranked{Name: pt.Label, Value: pt.Value}
	}
	return ranked
}

func timeXYs(points []Point, values []float64) plotter.XYs {
	xys := make(plotter.XYs, 0, len(points))
	for i, pt := range points {
		if math.IsNaN(values[i]) {
			continue
		}
		xys = append(xys, plotter.XY{X: float64(pt.Time.Unix()), Y: values[i]})
	}
	return xys
}

func timeSeriesPlot(title string, points []Point, movingAverage int) (*plot.Plot, error) {
	p := newPlot(title, "Date", "Revenue")
	p.X.Tick.Marker = plot.TimeTicks{Format: "2006-01-02"}
	if len(points) == 0 {
		return p, nil
	}

	values := make([]float64, len(points))
	for i, pt := range points {
		values[i] = pt.Value
	}

	line, err := plotter.NewLine(timeXYs(points, values))
	if err != nil {
		return nil, eris.Wrapf(err, "error building %q", title)
	}
	line.Color = plotutil.Color(0)
	p.Add(line)
	p.Legend.Add("Daily", line)

	if movingAverage > 0 {
		avg := timeXYs(points, MovingAverage(values, movingAverage))
		if len(avg) > 0 {
			ma, err := plotter.NewLine(avg)
			if err != nil {
				return nil, eris.Wrapf(err, "error building %q", title)
			}
			ma.Color = plotutil.Color(1)
			ma.Width = vg.Points(2)
			p.Add(ma)
			p.Legend.Add(strconv.Itoa(movingAverage)+"-day average", ma)
		}
	}
	return p, nil
}

func histogramPlot(title, xLabel string, values []float64, color int) (*plot.Plot, error) {
	bins := Histogram(values, histogramBins)
	ranked := make([]Ranked, len(bins))
	for i, b := range bins {
		ranked[i] = Ranked{Name: utils.FormatAmount(b.Lo), Value: float64(b.Count)}
	}
	p, err := barPlot(title, xLabel, "Count", ranked, color)
	if err != nil {
		return nil, err
	}
	// Bin labels are too dense to read at full resolution.
	if len(bins) > 10 {
		p.X.Tick.Label.Font.Size = vg.Points(6)
	}
	return p, nil
}

func scatterPlot(title, xLabel, yLabel string, xs, ys []float64) (*plot.Plot, error) {
	p := newPlot(title, xLabel, yLabel)
	if len(xs) == 0 {
		return p, nil
	}
	xys := make(plotter.XYs, len(xs))
	for i := range xs {
		xys[i] = plotter.XY{X: xs[i], Y: ys[i]}
	}
	s, err := plotter.NewScatter(xys)
	if err != nil {
		return nil, eris.Wrapf(err, "error building %q", title)
	}
	s.GlyphStyle.Color = plotutil.Color(2)
	s.GlyphStyle.Radius = vg.Points(4)
	p.Add(s)
	return p, nil
}

// savePanel draws four plots on a 2x2 grid and writes the image as PNG.
func savePanel(path string, plots [2][2]*plot.Plot) error {
	img := vgimg.New(figureWidth, figureHeight)
	dc := draw.New(img)

	tiles := draw.Tiles{
		Rows:      2,
		Cols:      2,
		PadX:      vg.Millimeter * 8,
		PadY:      vg.Millimeter * 8,
		PadTop:    vg.Millimeter * 4,
		PadBottom: vg.Millimeter * 4,
		PadLeft:   vg.Millimeter * 4,
		PadRight:  vg.Millimeter * 4,
	}

	grid := [][]*plot.Plot{
		{plots[0][0], plots[0][1]},
		{plots[1][0], plots[1][1]},
	}
	canvases := plot.Align(grid, tiles, dc)
	for i := range grid {
		for j := range grid[i] {
			grid[i][j].Draw(canvases[i][j])
		}
	}

	if err := utils.EnsureDir(filepath.Dir(path)); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "failed to create %s", path)
	}
	if _, err := (vgimg.PngCanvas{Canvas: img}).WriteTo(f); err != nil {
		f.Close()
		return eris.Wrapf(err, "failed to write %s", path)
	}
	return f.Close()
}
