package report

import (
	"math"
	"sort"
	"strconv"
	"time"
)

// Point is a labeled value in an ordered series.
type Point struct {
	Label string
	Time  time.Time
	Value float64
}

// Ranked is a group total used by the top-N charts.
type Ranked struct {
	Name  string
	Value float64
}

// Bin is a histogram bucket [Lo, Hi).
type Bin struct {
	Lo, Hi float64
	Count  int
}

// DailyRevenue sums revenue per calendar day in date order.
func DailyRevenue(sales []Sale) []Point {
	byDay := map[time.Time]float64{}
	for _, s := range sales {
		if s.HasDate && s.HasTotal {
			day := time.Date(s.Date.Year(), s.Date.Month(), s.Date.Day(), 0, 0, 0, 0, time.UTC)
			byDay[day] += s.Total
		}
	}

	points := make([]Point, 0, len(byDay))
	for day, v := range byDay {
		points = append(points, Point{Label: day.Format("2006-01-02"), Time: day, Value: v})
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Time.Before(points[j].Time) })
	return points
}

// MonthlyRevenue sums revenue per year and month in date order.
func MonthlyRevenue(sales []Sale) []Point {
	byMonth := map[time.Time]float64{}
	for _, s := range sales {
		if s.HasDate && s.HasTotal {
			month := time.Date(s.Date.Year(), s.Date.Month(), 1, 0, 0, 0, 0, time.UTC)
			byMonth[month] += s.Total
		}
	}

	points := make([]Point, 0, len(byMonth))
	for month, v := range byMonth {
		points = append(points, Point{Label: month.Format("2006-01"), Time: month, Value: v})
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Time.Before(points[j].Time) })
	return points
}

var weekdays = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

// RevenueByWeekday sums revenue per weekday, Monday first. Every weekday is
// present.
func RevenueByWeekday(sales []Sale) []Point {
	totals := map[string]float64{}
	for _, s := range sales {
		if s.HasTotal && s.DayOfWeek != "" {
			totals[s.DayOfWeek] += s.Total
		}
	}
	points := make([]Point, len(weekdays))
	for i, d := range weekdays {
		points[i] = Point{Label: d, Value: totals[d]}
	}
	return points
}

// MovingAverage returns the trailing mean over window values. Positions
// before the first full window are NaN.
func MovingAverage(values []float64, window int) []float64 {
	out := make([]float64, len(values))
	sum := 0.0
	for i, v := range values {
		sum += v
		if i >= window {
			sum -= values[i-window]
		}
		if i+1 < window {
			out[i] = math.NaN()
			continue
		}
		out[i] = sum / float64(window)
	}
	return out
}

// GroupSum totals the values of each non-empty key.
func GroupSum(sales []Sale, key func(Sale) string, value func(Sale) (float64, bool)) map[string]float64 {
	totals := map[string]float64{}
	for _, s := range sales {
		k := key(s)
		if k == "" {
			continue
		}
		if v, ok := value(s); ok {
			totals[k] += v
		}
	}
	return totals
}

// GroupDistinct counts distinct ids per non-empty key.
func GroupDistinct(sales []Sale, key, id func(Sale) string) map[string]float64 {
	seen := map[string]map[string]struct{}{}
	for _, s := range sales {
		k, v := key(s), id(s)
		if k == "" || v == "" {
			continue
		}
		if seen[k] == nil {
			seen[k] = map[string]struct{}{}
		}
		seen[k][v] = struct{}{}
	}
	counts := make(map[string]float64, len(seen))
	for k, ids := range seen {
		counts[k] = float64(len(ids))
	}
	return counts
}

// TopN orders groups by value descending, then by name, and keeps n.
func TopN(groups map[string]float64, n int) []Ranked {
	ranked := make([]Ranked, 0, len(groups))
	for name, v := range groups {
		ranked = append(ranked, Ranked{Name: name, Value: v})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Value != ranked[j].Value {
			return ranked[i].Value > ranked[j].Value
		}
		return ranked[i].Name < ranked[j].Name
	})
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

// Shares converts ranked values into percentages of their sum.
func Shares(ranked []Ranked) []Ranked {
	total := 0.0
	for _, r := range ranked {
		total += r.Value
	}
	out := make([]Ranked, len(ranked))
	for i, r := range ranked {
		out[i] = Ranked{Name: r.Name}
		if total != 0 {
			out[i].Value = 100 * r.Value / total
		}
	}
	return out
}

// Histogram splits values into equal-width bins between their minimum and
// maximum. The maximum falls in the last bin.
func Histogram(values []float64, bins int) []Bin {
	if len(values) == 0 || bins <= 0 {
		return nil
	}
	lo, hi := values[0], values[0]
	for _, v := range values {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if lo == hi {
		return []Bin{{Lo: lo - 0.5, Hi: hi + 0.5, Count: len(values)}}
	}

	width := (hi - lo) / float64(bins)
	out := make([]Bin, bins)
	for i := range out {
		out[i] = Bin{Lo: lo + float64(i)*width, Hi: lo + float64(i+1)*width}
	}
	for _, v := range values {
		i := int((v - lo) / width)
		if i >= bins {
			i = bins - 1
		}
		out[i].Count++
	}
	return out
}

// Segment labels in spending order.
var Segments = []string{"0-10K", "10K-50K", "50K-100K", "100K+"}

// Segment buckets a customer's total spend. Upper bounds are inclusive.
func Segment(spend float64) string {
	switch {
	case spend <= 10000:
		return Segments[0]
	case spend <= 50000:
		return Segments[1]
	case spend <= 100000:
		return Segments[2]
	default:
		return Segments[3]
	}
}

// CustomerSpend totals revenue per customer id.
func CustomerSpend(sales []Sale) map[string]float64 {
	return GroupSum(sales, func(s Sale) string { return s.CustomerID }, revenue)
}

// SegmentCounts counts customers per spending segment in segment order.
func SegmentCounts(spend map[string]float64) []Ranked {
	counts := map[string]float64{}
	for _, v := range spend {
		counts[Segment(v)]++
	}
	out := make([]Ranked, len(Segments))
	for i, s := range Segments {
		out[i] = Ranked{Name: s, Value: counts[s]}
	}
	return out
}

// QuantityCounts counts lines per quantity in ascending quantity order.
func QuantityCounts(sales []Sale) []Ranked {
	counts := map[float64]float64{}
	for _, s := range sales {
		if s.HasQuantity {
			counts[s.Quantity]++
		}
	}
	keys := make([]float64, 0, len(counts))
	for q := range counts {
		keys = append(keys, q)
	}
	sort.Float64s(keys)

	out := make([]Ranked, len(keys))
	for i, q := range keys {
		out[i] = Ranked{Name: strconv.FormatFloat(q, 'f', -1, 64), Value: counts[q]}
	}
	return out
}

func revenue(s Sale) (float64, bool) {
	return s.Total, s.HasTotal
}

func quantity(s Sale) (float64, bool) {
	return s.Quantity, s.HasQuantity
}

func lineValues(sales []Sale) []float64 {
	var values []float64
	for _, s := range sales {
		if s.HasTotal {
			values = append(values, s.Total)
		}
	}
	return values
}

func mapValues(m map[string]float64) []float64 {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	values := make([]float64, len(keys))
	for i, k := range keys {
		values[i] = m[k]
	}
	return values
}
