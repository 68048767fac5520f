package screen

import (
	"math"

	"github.com/charmbracelet/lipgloss"
	"github.com/rovshanmuradov/margin-calculator/internal/format"
	"github.com/rovshanmuradov/margin-calculator/internal/position"
	"github.com/rovshanmuradov/margin-calculator/internal/sensitivity"
	"github.com/rovshanmuradov/margin-calculator/internal/ui/component"
	"github.com/rovshanmuradov/margin-calculator/internal/ui/style"
)

// RenderMetrics renders the key metrics of p in three columns:
// size, rates and earnings.
func RenderMetrics(p position.Position) string {
	size := lipgloss.JoinVertical(lipgloss.Left,
		metricLine("Total Position", format.Currency(p.Deposit()), style.MetricValueStyle),
		metricLine("Initial Amount", format.Currency(p.Collateral()), style.MetricValueStyle),
		metricLine("Borrowed", format.Currency(p.Borrow()), style.MetricValueStyle),
	)

	rates := lipgloss.JoinVertical(lipgloss.Left,
		metricLine("Net APY", format.Percent(p.NetAPY()), style.EarningsStyle(p.NetAPY())),
		metricLine("Collateral Rate", format.RatePercent(p.CollateralRate()), style.MetricValueStyle),
		metricLine("Borrow Rate", format.RatePercent(p.BorrowRate()), style.MetricValueStyle),
	)

	earnings := lipgloss.JoinVertical(lipgloss.Left,
		metricLine("Earnings/Year", format.Currency(p.AnnualEarnings()), style.EarningsStyle(p.AnnualEarnings())),
		metricLine("Earnings/Month", format.Currency(p.MonthlyEarnings()), style.EarningsStyle(p.MonthlyEarnings())),
		metricLine("Earnings/Day", format.Currency(p.DailyEarnings()), style.EarningsStyle(p.DailyEarnings())),
	)

	return lipgloss.JoinHorizontal(lipgloss.Top,
		style.PanelStyle.Render(size),
		style.PanelStyle.Render(rates),
		style.PanelStyle.Render(earnings),
	)
}

func metricLine(label, value string, valueStyle lipgloss.Style) string {
	return style.MetricLabelStyle.Width(16).Render(label) + valueStyle.Render(value)
}

// NewSensitivityTable builds the read-only leverage table. The row whose
// leverage matches current is highlighted; pass 0 for no highlight.
func NewSensitivityTable(rows []sensitivity.Row, current float64) *component.Table {
	table := component.NewTable().
		AddColumn("Leverage", 10, lipgloss.Right).
		AddColumn("Total Position", 0, lipgloss.Right).
		AddColumn("Borrowed", 0, lipgloss.Right).
		AddColumn("Net APY", 10, lipgloss.Right).
		AddColumn("Earnings/Year", 0, lipgloss.Right).
		AddColumn("Earnings/Month", 0, lipgloss.Right).
		AddColumn("Earnings/Day", 0, lipgloss.Right)

	data := make([][]string, len(rows))
	for i, r := range rows {
		data[i] = []string{
			format.Leverage(r.Leverage),
			format.Currency(r.Deposit),
			format.Currency(r.Borrow),
			format.Percent(r.NetAPY),
			format.Currency(r.AnnualEarnings),
			format.Currency(r.MonthlyEarnings),
			format.Currency(r.DailyEarnings),
		}
	}
	table.SetRows(data)

	palette := style.DefaultPalette()
	for i, r := range rows {
		if r.AnnualEarnings < 0 {
			table.SetRowStyle(i, lipgloss.NewStyle().Foreground(palette.Loss).Padding(0, 1))
		}
	}

	table.SetHighlightedRow(highlightIndex(rows, current))
	return table
}

// RenderSensitivity renders the leverage table at width (0 for automatic),
// with a note when it is empty or the current leverage is off the menu.
func RenderSensitivity(rows []sensitivity.Row, current float64, width int) string {
	table := NewSensitivityTable(rows, current)
	if table.RowCount() == 0 {
		return style.HintStyle.Render("No leverage fits the LTV")
	}
	if width > 0 {
		table.SetWidth(width)
	}

	view := table.View()
	if current > 0 && table.HighlightedRow() < 0 {
		view += "\n" + style.HintStyle.Render("Current leverage "+format.Leverage(current)+" is not in the table")
	}
	return view
}

// highlightIndex returns the first row at leverage current, or -1.
func highlightIndex(rows []sensitivity.Row, current float64) int {
	for i, r := range rows {
		if math.Abs(r.Leverage-current) <= position.LeverageTolerance {
			return i
		}
	}
	return -1
}
