package report

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/keroloshany47/retail-etl/utils"
)

// KeyMetrics is the headline summary printed after the charts.
type KeyMetrics struct {
	TotalRevenue    float64
	Transactions    int
	UniqueCustomers int
	UniqueProducts  int
	AvgLineValue    float64
	MedianLineValue float64
	FirstDate       time.Time
	LastDate        time.Time
	TotalQuantity   float64
}

// Summarize computes the key metrics over all sales lines.
func Summarize(sales []Sale) KeyMetrics {
	m := KeyMetrics{Transactions: len(sales)}

	customers := map[string]struct{}{}
	products := map[string]struct{}{}
	for _, s := range sales {
		if s.CustomerID != "" {
			customers[s.CustomerID] = struct{}{}
		}
		if s.ProductID != "" {
			products[s.ProductID] = struct{}{}
		}
		if s.HasQuantity {
			m.TotalQuantity += s.Quantity
		}
		if s.HasDate {
			if m.FirstDate.IsZero() || s.Date.Before(m.FirstDate) {
				m.FirstDate = s.Date
			}
			if s.Date.After(m.LastDate) {
				m.LastDate = s.Date
			}
		}
	}
	m.UniqueCustomers = len(customers)
	m.UniqueProducts = len(products)

	values := lineValues(sales)
	for _, v := range values {
		m.TotalRevenue += v
	}
	if len(values) > 0 {
		m.AvgLineValue = m.TotalRevenue / float64(len(values))
		m.MedianLineValue = median(values)
	}
	return m
}

func median(values []float64) float64 {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

func formatDay(t time.Time) string {
	if t.IsZero() {
		return "n/a"
	}
	return t.Format("2006-01-02")
}

// Format renders the metrics with thousands separators.
func (m KeyMetrics) Format() string {
	var b strings.Builder
	fmt.Fprintln(&b, "KEY METRICS SUMMARY")
	fmt.Fprintf(&b, "Total Revenue: %s\n", utils.FormatAmount(m.TotalRevenue))
	fmt.Fprintf(&b, "Total Transactions: %s\n", utils.FormatCount(m.Transactions))
	fmt.Fprintf(&b, "Unique Customers: %s\n", utils.FormatCount(m.UniqueCustomers))
	fmt.Fprintf(&b, "Unique Products: %s\n", utils.FormatCount(m.UniqueProducts))
	fmt.Fprintf(&b, "Average Transaction Value: %s\n", utils.FormatAmount(m.AvgLineValue))
	fmt.Fprintf(&b, "Median Transaction Value: %s\n", utils.FormatAmount(m.MedianLineValue))
	fmt.Fprintf(&b, "Date Range: %s to %s\n", formatDay(m.FirstDate), formatDay(m.LastDate))
	fmt.Fprintf(&b, "Total Quantity Sold: %s\n", utils.FormatCount(int(m.TotalQuantity)))
	return b.String()
}
