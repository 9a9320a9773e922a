package utils

import (
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// FormatFloat writes f the way float columns appear in the stage CSVs:
// integral values keep a trailing ".0".
func FormatFloat(f float64) string {
	if f == math.Trunc(f) && math.Abs(f) < 1e16 {
		return strconv.FormatFloat(f, 'f', 1, 64)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// FormatDecimal is FormatFloat for decimal values.
func FormatDecimal(d decimal.Decimal) string {
	s := d.String()
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

// ParseNumber parses a numeric cell. Integers written as floats ("4.0") are
// accepted.
func ParseNumber(s string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(s), 64)
}

// ParseInt parses an integer cell, accepting an integral float form.
func ParseInt(s string) (int, bool) {
	f, err := ParseNumber(s)
	if err != nil || f != math.Trunc(f) {
		return 0, false
	}
	return int(f), true
}
