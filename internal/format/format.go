// Package format renders margin figures for people and parses the numbers
// they type back into the fractions the position model expects.
package format

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

const displayPlaces = 2

// NotAvailable is rendered in place of NaN or infinite values.
const NotAvailable = "n/a"

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Currency renders v as dollars with thousands separators, e.g. "$1,234.56".
func Currency(v float64) string {
	if !isFinite(v) {
		return NotAvailable
	}
	d := decimal.NewFromFloat(v).Round(displayPlaces)
	if d.IsNegative() {
		return "-$" + groupThousands(d.Abs().StringFixed(displayPlaces))
	}
	return "$" + groupThousands(d.StringFixed(displayPlaces))
}

// Percent renders a value already expressed in percent, e.g. 24.92 -> "24.92%".
func Percent(v float64) string {
	if !isFinite(v) {
		return NotAvailable
	}
	return groupThousands(decimal.NewFromFloat(v).StringFixed(displayPlaces)) + "%"
}

// RatePercent renders a fraction as percent, e.g. 0.1376 -> "13.76%".
func RatePercent(fraction float64) string {
	if !isFinite(fraction) {
		return NotAvailable
	}
	return groupThousands(decimal.NewFromFloat(fraction).Shift(2).StringFixed(displayPlaces)) + "%"
}

// Leverage renders a multiplier, e.g. 5 -> "5.00x".
func Leverage(v float64) string {
	if !isFinite(v) {
		return NotAvailable
	}
	return decimal.NewFromFloat(v).StringFixed(displayPlaces) + "x"
}

// Input renders v the way a user would type it back: no grouping, no
// trailing zeros, at most six decimals.
func Input(v float64) string {
	if !isFinite(v) {
		return NotAvailable
	}
	return decimal.NewFromFloat(v).Round(6).String()
}

// RateInput renders a fraction as a typed percent, e.g. 0.1376 -> "13.76".
func RateInput(fraction float64) string {
	if !isFinite(fraction) {
		return NotAvailable
	}
	return decimal.NewFromFloat(fraction).Shift(2).Round(6).String()
}

// groupThousands inserts commas into the integer part of a fixed-point string.
func groupThousands(s string) string {
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}

	intPart, frac := s, ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		intPart, frac = s[:i], s[i:]
	}
	if len(intPart) <= 3 {
		return sign + intPart + frac
	}

	var b strings.Builder
	lead := len(intPart) % 3
	if lead > 0 {
		b.WriteString(intPart[:lead])
	}
	for i := lead; i < len(intPart); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(intPart[i : i+3])
	}
	return sign + b.String() + frac
}
