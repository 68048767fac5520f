package sensitivity

import (
	"strconv"
	"time"

	"github.com/rovshanmuradov/margin-calculator/internal/position"
)

// Row is the display projection of one leveraged position.
type Row struct {
	Leverage        float64 `json:"leverage"`
	Deposit         float64 `json:"deposit"`
	Borrow          float64 `json:"borrow"`
	NetAPY          float64 `json:"net_apy"`
	AnnualEarnings  float64 `json:"annual_earnings"`
	MonthlyEarnings float64 `json:"monthly_earnings"`
	DailyEarnings   float64 `json:"daily_earnings"`
}

// NewRow projects p into a Row.
func NewRow(p position.Position) Row {
	return Row{
		Leverage:        p.Leverage(),
		Deposit:         p.Deposit(),
		Borrow:          p.Borrow(),
		NetAPY:          p.NetAPY(),
		AnnualEarnings:  p.AnnualEarnings(),
		MonthlyEarnings: p.MonthlyEarnings(),
		DailyEarnings:   p.DailyEarnings(),
	}
}

// ToCSV converts the row to a CSV record matching CSVHeaders.
func (r *Row) ToCSV() []string {
	return []string{
		formatFloat(r.Leverage),
		formatFloat(r.Deposit),
		formatFloat(r.Borrow),
		formatFloat(r.NetAPY),
		formatFloat(r.AnnualEarnings),
		formatFloat(r.MonthlyEarnings),
		formatFloat(r.DailyEarnings),
	}
}

// CSVHeaders returns the header row for sensitivity CSV files
func CSVHeaders() []string {
	return []string{
		"leverage",
		"deposit",
		"borrow",
		"net_apy",
		"annual_earnings",
		"monthly_earnings",
		"daily_earnings",
	}
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', 6, 64)
}

// Report bundles a base position with its sensitivity rows.
type Report struct {
	GeneratedAt time.Time        `json:"generated_at"`
	Position    position.Metrics `json:"position"`
	Rows        []Row            `json:"rows"`
}

// NewReport runs Generate for base and stamps the result.
func NewReport(base position.Position, candidates []float64) (Report, error) {
	rows, err := Generate(base, candidates)
	if err != nil {
		return Report{}, err
	}

	return Report{
		GeneratedAt: time.Now(),
		Position:    base.Metrics(),
		Rows:        rows,
	}, nil
}
