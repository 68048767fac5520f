package format

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrParse wraps every failure to read a user-supplied number.
var ErrParse = errors.New("cannot parse number")

var hundred = decimal.NewFromInt(100)

func parseDecimal(s string) (decimal.Decimal, error) {
	clean := strings.TrimSpace(s)
	clean = strings.TrimPrefix(clean, "$")
	clean = strings.ReplaceAll(clean, ",", "")
	if clean == "" {
		return decimal.Zero, fmt.Errorf("%w: empty value", ErrParse)
	}

	d, err := decimal.NewFromString(clean)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrParse, s)
	}
	return d, nil
}

// ParseAmount reads a deposit amount such as "1,000.50" or "$250".
func ParseAmount(s string) (float64, error) {
	d, err := parseDecimal(s)
	if err != nil {
		return 0, err
	}
	return d.InexactFloat64(), nil
}

// ParseFraction reads a plain fraction such as an LTV of "0.8".
func ParseFraction(s string) (float64, error) {
	d, err := parseDecimal(s)
	if err != nil {
		return 0, err
	}
	return d.InexactFloat64(), nil
}

// ParsePercentRate reads a rate typed as percent ("13.76" or "13.76%")
// and returns it as a fraction (0.1376).
func ParsePercentRate(s string) (float64, error) {
	d, err := parseDecimal(strings.TrimSuffix(strings.TrimSpace(s), "%"))
	if err != nil {
		return 0, err
	}
	return d.Div(hundred).InexactFloat64(), nil
}

// PercentToFraction converts a percent value to a fraction without
// the binary rounding of a plain float division.
func PercentToFraction(pct float64) float64 {
	return decimal.NewFromFloat(pct).Div(hundred).InexactFloat64()
}

// ParseLeverage reads a multiplier such as "3", "2.5" or "2.5x".
func ParseLeverage(s string) (float64, error) {
	clean := strings.TrimSpace(s)
	clean = strings.TrimSuffix(strings.TrimSuffix(clean, "x"), "X")
	d, err := parseDecimal(clean)
	if err != nil {
		return 0, err
	}
	return d.InexactFloat64(), nil
}

// ParseLeverageList reads a comma separated menu like "1,2,3,4,5".
// Blank entries are ignored.
func ParseLeverageList(s string) ([]float64, error) {
	var out []float64
	for _, part := range strings.Split(s, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		lev, err := ParseLeverage(part)
		if err != nil {
			return nil, err
		}
		out = append(out, lev)
	}
	return out, nil
}
