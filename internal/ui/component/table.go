package component

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/rovshanmuradov/margin-calculator/internal/ui/style"
)

// TableColumn represents a column configuration
type TableColumn struct {
	Header string
	Width  int
	Align  lipgloss.Position
}

// TableRow represents a row of data
type TableRow struct {
	Data  []string
	Style lipgloss.Style
}

// Table renders a fixed set of rows with lipgloss. It has no selection
// state: the sensitivity table is read-only.
type Table struct {
	columns     []TableColumn
	rows        []TableRow
	width       int
	highlighted int

	// Styling
	headerStyle      lipgloss.Style
	rowStyle         lipgloss.Style
	highlightedStyle lipgloss.Style
	borderStyle      lipgloss.Style

	// Configuration
	showBorder bool
	zebra      bool
}

// NewTable creates a new table component
func NewTable() *Table {
	palette := style.DefaultPalette()

	return &Table{
		columns:     make([]TableColumn, 0),
		rows:        make([]TableRow, 0),
		highlighted: -1,

		headerStyle: lipgloss.NewStyle().
			Foreground(palette.Secondary).
			Bold(true).
			Padding(0, 1),

		rowStyle: lipgloss.NewStyle().
			Foreground(palette.Text).
			Padding(0, 1),

		highlightedStyle: lipgloss.NewStyle().
			Foreground(palette.Background).
			Background(palette.Primary).
			Padding(0, 1),

		borderStyle: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(palette.TextMuted),

		showBorder: true,
	}
}

// AddColumn adds a column to the table
func (t *Table) AddColumn(header string, width int, align lipgloss.Position) *Table {
	t.columns = append(t.columns, TableColumn{
		Header: header,
		Width:  width,
		Align:  align,
	})
	return t
}

// SetRows sets all table rows
func (t *Table) SetRows(rows [][]string) *Table {
	t.rows = make([]TableRow, len(rows))
	for i, rowData := range rows {
		t.rows[i] = TableRow{
			Data:  rowData,
			Style: t.rowStyle,
		}
	}
	if t.highlighted >= len(t.rows) {
		t.highlighted = -1
	}
	return t
}

// SetRowStyle sets a custom style for a specific row
func (t *Table) SetRowStyle(rowIndex int, style lipgloss.Style) *Table {
	if rowIndex >= 0 && rowIndex < len(t.rows) {
		t.rows[rowIndex].Style = style
	}
	return t
}

// SetHighlightedRow marks one row, -1 for none.
func (t *Table) SetHighlightedRow(index int) *Table {
	if index >= -1 && index < len(t.rows) {
		t.highlighted = index
	}
	return t
}

// HighlightedRow returns the highlighted row index or -1.
func (t *Table) HighlightedRow() int {
	return t.highlighted
}

// SetWidth sets the total width shared by auto-width columns
func (t *Table) SetWidth(width int) *Table {
	t.width = width
	return t
}

// SetShowBorder enables/disables table border
func (t *Table) SetShowBorder(show bool) *Table {
	t.showBorder = show
	return t
}

// SetZebra enables/disables alternating row colors
func (t *Table) SetZebra(zebra bool) *Table {
	t.zebra = zebra
	return t
}

// RowCount returns the number of rows
func (t *Table) RowCount() int {
	return len(t.rows)
}

// View renders the table
func (t *Table) View() string {
	if len(t.columns) == 0 {
		return "No columns defined"
	}

	var content strings.Builder
	widths := t.columnWidths()

	var headerRow strings.Builder
	for i, col := range t.columns {
		headerRow.WriteString(renderCell(col.Header, widths[i], col.Align, t.headerStyle))
		if i < len(t.columns)-1 {
			headerRow.WriteString("│")
		}
	}
	content.WriteString(headerRow.String())
	content.WriteString("\n")

	var separator strings.Builder
	for i := range t.columns {
		separator.WriteString(strings.Repeat("─", widths[i]))
		if i < len(t.columns)-1 {
			separator.WriteString("┼")
		}
	}
	content.WriteString(separator.String())

	palette := style.DefaultPalette()
	for rowIndex, row := range t.rows {
		rowStyle := row.Style
		if rowIndex == t.highlighted {
			rowStyle = t.highlightedStyle
		} else if t.zebra && rowIndex%2 == 1 {
			rowStyle = rowStyle.Background(palette.BackgroundAlt)
		}

		var rowStr strings.Builder
		for i, col := range t.columns {
			cellData := ""
			if i < len(row.Data) {
				cellData = row.Data[i]
			}
			rowStr.WriteString(renderCell(cellData, widths[i], col.Align, rowStyle))
			if i < len(t.columns)-1 {
				rowStr.WriteString("│")
			}
		}

		content.WriteString("\n")
		content.WriteString(rowStr.String())
	}

	result := content.String()
	if t.showBorder {
		result = t.borderStyle.Render(result)
	}
	return result
}

// renderCell renders a single table cell; width includes the cell padding.
func renderCell(content string, width int, align lipgloss.Position, style lipgloss.Style) string {
	inner := width - style.GetHorizontalPadding()
	if inner > 0 && lipgloss.Width(content) > inner {
		runes := []rune(content)
		if inner > 3 && len(runes) > inner-3 {
			content = string(runes[:inner-3]) + "..."
		} else if len(runes) > inner {
			content = string(runes[:inner])
		}
	}

	return style.Width(width).Align(align).Render(content)
}

// columnWidths resolves explicit widths and splits the remaining width
// between columns declared with width 0.
func (t *Table) columnWidths() []int {
	widths := make([]int, len(t.columns))

	totalExplicitWidth := 0
	autoWidthColumns := 0
	for i, col := range t.columns {
		widths[i] = col.Width
		if col.Width > 0 {
			totalExplicitWidth += col.Width
		} else {
			autoWidthColumns++
		}
	}
	if autoWidthColumns == 0 {
		return widths
	}

	separatorWidth := len(t.columns) - 1
	availableWidth := t.width - totalExplicitWidth - separatorWidth
	autoWidth := 16
	if availableWidth > 0 && availableWidth/autoWidthColumns > autoWidth {
		autoWidth = availableWidth / autoWidthColumns
	}

	for i := range widths {
		if widths[i] <= 0 {
			widths[i] = autoWidth
		}
	}
	return widths
}
