package style

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var palette = DefaultPalette()

// Header styles
var (
	TitleStyle = lipgloss.NewStyle().
			Foreground(palette.Primary).
			Bold(true).
			Margin(1, 0, 0, 0)

	SubHeaderStyle = lipgloss.NewStyle().
			Foreground(palette.Secondary).
			Bold(true).
			Margin(1, 0, 0, 0)
)

// Layout styles
var (
	PanelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(palette.TextMuted).
			Padding(0, 2).
			MarginRight(1)

	ActivePanelStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(palette.Primary).
				Padding(0, 2).
				MarginRight(1)

	DividerStyle = lipgloss.NewStyle().
			Foreground(palette.TextMuted)
)

// Metric styles
var (
	MetricLabelStyle = lipgloss.NewStyle().
				Foreground(palette.TextMuted)

	MetricValueStyle = lipgloss.NewStyle().
				Foreground(palette.Text).
				Bold(true)

	HintStyle = lipgloss.NewStyle().
			Foreground(palette.Limit).
			Italic(true)
)

// Status styles
var (
	ErrorStyle = lipgloss.NewStyle().
			Foreground(palette.Error).
			Bold(true)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(palette.Success)
)

// EarningsStyle colors a value style by the sign of v.
func EarningsStyle(v float64) lipgloss.Style {
	return MetricValueStyle.Foreground(palette.EarningsColor(v))
}

// Divider draws a horizontal rule of the given width.
func Divider(width int) string {
	if width <= 0 {
		width = 40
	}
	return DividerStyle.Render(strings.Repeat("─", width))
}
