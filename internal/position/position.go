// =============================
// File: internal/position/position.go
// =============================
package position

import (
	"math"
	"strconv"
)

const (
	// LeverageTolerance absorbs rounding when a leverage is compared against
	// 1/(1-ltv). Values above the maximum by no more than this are clamped.
	LeverageTolerance = 1e-9

	// MonthsPerYear and DaysPerYear are the earnings horizons.
	MonthsPerYear = 12
	DaysPerYear   = 365

	// PreferredLeverage is the leverage offered by default when the LTV allows it.
	PreferredLeverage = 5.0
)

// Params holds the five raw inputs of a margin position.
// Rates are fractions: 0.1376 means 13.76% per year.
type Params struct {
	Amount         float64 `json:"amount"`
	LTV            float64 `json:"ltv"`
	Leverage       float64 `json:"leverage"`
	CollateralRate float64 `json:"collateral_rate"`
	BorrowRate     float64 `json:"borrow_rate"`
}

// Position is an immutable, validated margin position.
// The zero value is not valid; build one with New.
type Position struct {
	amount         float64
	ltv            float64
	leverage       float64
	collateralRate float64
	borrowRate     float64
}

// New validates p and returns the position it describes.
// The leverage bound is derived from p.LTV of the same call.
func New(p Params) (Position, error) {
	if !isFinite(p.Amount) || p.Amount <= 0 {
		return Position{}, invalid("amount", p.Amount, "must be greater than 0")
	}

	maxLev, err := MaxLeverageFor(p.LTV)
	if err != nil {
		return Position{}, err
	}

	if !isFinite(p.Leverage) || p.Leverage < 1 {
		return Position{}, invalid("leverage", p.Leverage, "must be at least 1")
	}
	leverage := p.Leverage
	if leverage > maxLev {
		if leverage-maxLev > LeverageTolerance {
			return Position{}, invalid("leverage", p.Leverage,
				"exceeds max leverage "+formatLeverage(maxLev)+" allowed by ltv")
		}
		leverage = maxLev
	}

	if !isFinite(p.CollateralRate) || p.CollateralRate < 0 {
		return Position{}, invalid("collateral_rate", p.CollateralRate, "must not be negative")
	}
	if !isFinite(p.BorrowRate) || p.BorrowRate < 0 {
		return Position{}, invalid("borrow_rate", p.BorrowRate, "must not be negative")
	}

	pos := Position{
		amount:         p.Amount,
		ltv:            p.LTV,
		leverage:       leverage,
		collateralRate: p.CollateralRate,
		borrowRate:     p.BorrowRate,
	}
	if !pos.derivedFinite() {
		return Position{}, invalid("amount", p.Amount, "too large: derived values overflow")
	}
	return pos, nil
}

// derivedFinite reports whether every derived quantity is a finite number,
// including the intermediate earnings terms.
func (p Position) derivedFinite() bool {
	for _, v := range []float64{
		p.Deposit(),
		p.collateralRate * p.Collateral() * p.leverage,
		p.borrowRate * p.Borrow(),
		p.AnnualEarnings(),
		p.NetAPY(),
	} {
		if !isFinite(v) {
			return false
		}
	}
	return true
}

// MaxLeverageFor returns 1/(1-ltv) for ltv in (0, 1).
func MaxLeverageFor(ltv float64) (float64, error) {
	if ltv == 1 {
		return 0, &InvalidInputError{
			Field:  "ltv",
			Value:  ltv,
			Reason: "must be below 1",
			Err:    ErrDivisionUndefined,
		}
	}
	if !isFinite(ltv) || ltv <= 0 || ltv >= 1 {
		return 0, invalid("ltv", ltv, "must be between 0 and 1 (exclusive)")
	}
	return 1 / (1 - ltv), nil
}

// DefaultLeverage is min(PreferredLeverage, max leverage) for ltv.
func DefaultLeverage(ltv float64) (float64, error) {
	maxLev, err := MaxLeverageFor(ltv)
	if err != nil {
		return 0, err
	}
	return math.Min(PreferredLeverage, maxLev), nil
}

// WithLeverage returns a new position that differs from p only in leverage.
func (p Position) WithLeverage(leverage float64) (Position, error) {
	params := p.Params()
	params.Leverage = leverage
	return New(params)
}

func (p Position) Params() Params {
	return Params{
		Amount:         p.amount,
		LTV:            p.ltv,
		Leverage:       p.leverage,
		CollateralRate: p.collateralRate,
		BorrowRate:     p.borrowRate,
	}
}

func (p Position) Amount() float64         { return p.amount }
func (p Position) LTV() float64            { return p.ltv }
func (p Position) Leverage() float64       { return p.leverage }
func (p Position) CollateralRate() float64 { return p.collateralRate }
func (p Position) BorrowRate() float64     { return p.borrowRate }

// MaxLeverage is 1/(1-ltv). ltv == 1 never reaches here: New rejects it.
func (p Position) MaxLeverage() float64 {
	return 1 / (1 - p.ltv)
}

// Collateral is the original deposit.
func (p Position) Collateral() float64 {
	return p.amount
}

// Borrow is the amount borrowed to reach the chosen leverage.
func (p Position) Borrow() float64 {
	return p.amount * (p.leverage - 1)
}

// Deposit is the total position size after leveraging.
func (p Position) Deposit() float64 {
	return p.Collateral() + p.Borrow()
}

// AnnualEarnings is the yield on the leveraged collateral minus borrow interest.
func (p Position) AnnualEarnings() float64 {
	return p.collateralRate*p.Collateral()*p.leverage - p.borrowRate*p.Borrow()
}

func (p Position) MonthlyEarnings() float64 {
	return p.AnnualEarnings() / MonthsPerYear
}

func (p Position) DailyEarnings() float64 {
	return p.AnnualEarnings() / DaysPerYear
}

// NetAPY is the annual return in percent on the original deposit,
// not on the leveraged position size.
func (p Position) NetAPY() float64 {
	return p.AnnualEarnings() / p.Collateral() * 100
}

func formatLeverage(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64) + "x"
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
