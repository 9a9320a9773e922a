package report

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/keroloshany47/retail-etl/constants"
	"gonum.org/v1/plot"
)

// Visualizer renders the sales charts from the mart tables.
type Visualizer struct {
	MartDir string
	OutDir  string
	Out     io.Writer
	Logger  *slog.Logger
}

type panelFunc func(sales []Sale) ([2][2]*plot.Plot, error)

// Run loads the mart, writes the four chart images and prints the key
// metrics to Out.
func (v *Visualizer) Run(ctx context.Context) error {
	mart, err := LoadMart(v.MartDir)
	if err != nil {
		return err
	}
	flat, err := FlatSales(mart)
	if err != nil {
		return err
	}
	sales, err := Sales(flat)
	if err != nil {
		return err
	}
	v.Logger.Info("Loaded sales lines", "rows", len(sales))

	panels := []struct {
		file  string
		build panelFunc
	}{
		{constants.TimeSeriesChart, timeSeriesPanel},
		{constants.TopNChart, topNPanel},
		{constants.DistributionChart, distributionPanel},
		{constants.GeographyChart, geographyPanel},
	}
	for _, panel := range panels {
		if err := ctx.Err(); err != nil {
			return err
		}
		plots, err := panel.build(sales)
		if err != nil {
			return err
		}
		path := filepath.Join(v.OutDir, panel.file)
		if err := savePanel(path, plots); err != nil {
			return err
		}
		v.Logger.Info("Saved chart", "path", path)
	}

	fmt.Fprint(v.Out, Summarize(sales).Format())
	return nil
}

func timeSeriesPanel(sales []Sale) ([2][2]*plot.Plot, error) {
	var out [2][2]*plot.Plot
	var err error

	daily := DailyRevenue(sales)
	if out[0][0], err = timeSeriesPlot("Daily Revenue", daily, 0); err != nil {
		return out, err
	}
	if out[0][1], err = barPlot("Monthly Revenue", "Month", "Revenue", pointsToRanked(MonthlyRevenue(sales)), 1); err != nil {
		return out, err
	}
	if out[1][0], err = barPlot("Revenue by Day of Week", "Day", "Revenue", pointsToRanked(RevenueByWeekday(sales)), 2); err != nil {
		return out, err
	}
	if out[1][1], err = timeSeriesPlot("Daily Revenue with 7-Day Moving Average", daily, 7); err != nil {
		return out, err
	}
	return out, nil
}

func topNPanel(sales []Sale) ([2][2]*plot.Plot, error) {
	var out [2][2]*plot.Plot
	var err error

	byName := func(s Sale) string { return s.ProductName }
	productRevenue := GroupSum(sales, byName, revenue)
	productQuantity := GroupSum(sales, byName, quantity)
	customerSpend := GroupSum(sales, func(s Sale) string { return s.CustomerName }, revenue)

	if out[0][0], err = barPlot("Top 10 Products by Revenue", "Product", "Revenue", TopN(productRevenue, 10), 0); err != nil {
		return out, err
	}
	if out[0][1], err = barPlot("Top 10 Products by Quantity", "Product", "Quantity", TopN(productQuantity, 10), 1); err != nil {
		return out, err
	}
	if out[1][0], err = barPlot("Top 10 Customers by Spend", "Customer", "Revenue", TopN(customerSpend, 10), 2); err != nil {
		return out, err
	}

	top := TopN(productRevenue, 30)
	xs := make([]float64, len(top))
	ys := make([]float64, len(top))
	for i, r := range top {
		xs[i] = productQuantity[r.Name]
		ys[i] = r.Value
	}
	if out[1][1], err = scatterPlot("Revenue vs Quantity (Top 30 Products)", "Quantity", "Revenue", xs, ys); err != nil {
		return out, err
	}
	return out, nil
}

func distributionPanel(sales []Sale) ([2][2]*plot.Plot, error) {
	var out [2][2]*plot.Plot
	var err error

	spend := CustomerSpend(sales)
	if out[0][0], err = histogramPlot("Customer Spending Distribution", "Total Spend", mapValues(spend), 0); err != nil {
		return out, err
	}
	if out[0][1], err = histogramPlot("Transaction Value Distribution", "Line Value", lineValues(sales), 1); err != nil {
		return out, err
	}
	if out[1][0], err = barPlot("Customer Segments", "Segment", "Customers", SegmentCounts(spend), 2); err != nil {
		return out, err
	}
	if out[1][1], err = barPlot("Quantity per Line", "Quantity", "Lines", QuantityCounts(sales), 3); err != nil {
		return out, err
	}
	return out, nil
}

func geographyPanel(sales []Sale) ([2][2]*plot.Plot, error) {
	var out [2][2]*plot.Plot
	var err error

	byCity := func(s Sale) string { return s.City }
	byState := func(s Sale) string { return s.State }
	stateRevenue := GroupSum(sales, byState, revenue)

	if out[0][0], err = barPlot("Top 15 Cities by Revenue", "City", "Revenue", TopN(GroupSum(sales, byCity, revenue), 15), 0); err != nil {
		return out, err
	}
	if out[0][1], err = barPlot("Top 10 States by Revenue", "State", "Revenue", TopN(stateRevenue, 10), 1); err != nil {
		return out, err
	}
	customers := GroupDistinct(sales, byCity, func(s Sale) string { return s.CustomerID })
	if out[1][0], err = barPlot("Top 15 Cities by Customers", "City", "Customers", TopN(customers, 15), 2); err != nil {
		return out, err
	}
	if out[1][1], err = barPlot("Revenue Share of Top 8 States (%)", "State", "Share", Shares(TopN(stateRevenue, 8)), 3); err != nil {
		return out, err
	}
	return out, nil
}
