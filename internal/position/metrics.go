package position

// Metrics is a point-in-time copy of a position's inputs and derived values,
// ready for rendering or export.
type Metrics struct {
	Amount          float64 `json:"amount"`
	LTV             float64 `json:"ltv"`
	Leverage        float64 `json:"leverage"`
	CollateralRate  float64 `json:"collateral_rate"`
	BorrowRate      float64 `json:"borrow_rate"`
	MaxLeverage     float64 `json:"max_leverage"`
	Collateral      float64 `json:"collateral"`
	Borrow          float64 `json:"borrow"`
	Deposit         float64 `json:"deposit"`
	NetAPY          float64 `json:"net_apy"`
	AnnualEarnings  float64 `json:"annual_earnings"`
	MonthlyEarnings float64 `json:"monthly_earnings"`
	DailyEarnings   float64 `json:"daily_earnings"`
}

// Metrics evaluates every derived quantity of p once.
func (p Position) Metrics() Metrics {
	return Metrics{
		Amount:          p.amount,
		LTV:             p.ltv,
		Leverage:        p.leverage,
		CollateralRate:  p.collateralRate,
		BorrowRate:      p.borrowRate,
		MaxLeverage:     p.MaxLeverage(),
		Collateral:      p.Collateral(),
		Borrow:          p.Borrow(),
		Deposit:         p.Deposit(),
		NetAPY:          p.NetAPY(),
		AnnualEarnings:  p.AnnualEarnings(),
		MonthlyEarnings: p.MonthlyEarnings(),
		DailyEarnings:   p.DailyEarnings(),
	}
}
