package screen

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/margin-calculator/internal/export"
	"github.com/rovshanmuradov/margin-calculator/internal/format"
	"github.com/rovshanmuradov/margin-calculator/internal/position"
	"github.com/rovshanmuradov/margin-calculator/internal/sensitivity"
	"github.com/rovshanmuradov/margin-calculator/internal/ui"
	"github.com/rovshanmuradov/margin-calculator/internal/ui/component"
	"github.com/rovshanmuradov/margin-calculator/internal/ui/style"
)

// Form field names. They match the Field of position.InvalidInputError.
const (
	FieldAmount         = "amount"
	FieldLTV            = "ltv"
	FieldLeverage       = "leverage"
	FieldCollateralRate = "collateral_rate"
	FieldBorrowRate     = "borrow_rate"
)

// CalculatorConfig holds the starting inputs of the calculator screen
type CalculatorConfig struct {
	Params    position.Params
	Leverages []float64 // candidate menu, the max leverage is appended
	Export    export.Options
}

// Calculator is the interactive margin calculator screen
type Calculator struct {
	ctx    context.Context
	width  int
	height int
	keyMap ui.KeyMap
	help   help.Model

	logger   *zap.Logger
	exporter *export.ReportExporter
	cfg      CalculatorConfig

	// UI components
	form *component.Form

	// Last valid result
	current   position.Position
	rows      []sensitivity.Row
	hasResult bool

	// Status
	inputErr  string
	status    string
	statusErr bool
	exporting bool
}

// NewCalculator creates the calculator screen and evaluates the initial inputs
func NewCalculator(ctx context.Context, cfg CalculatorConfig, exporter *export.ReportExporter, logger *zap.Logger) *Calculator {
	if len(cfg.Leverages) == 0 {
		cfg.Leverages = sensitivity.StandardLeverages
	}

	form := component.NewForm().
		AddField(FieldAmount, "Amount ($)", "100").
		AddField(FieldLTV, "LTV", "0.8").
		AddField(FieldLeverage, "Leverage", "5").
		AddField(FieldCollateralRate, "Collateral Rate (%)", "13.76").
		AddField(FieldBorrowRate, "Borrow Rate (%)", "10.97")

	form.SetFieldValidation(FieldAmount, validateWith(format.ParseAmount)).
		SetFieldValidation(FieldLTV, validateWith(format.ParseFraction)).
		SetFieldValidation(FieldLeverage, validateWith(format.ParseLeverage)).
		SetFieldValidation(FieldCollateralRate, validateWith(format.ParsePercentRate)).
		SetFieldValidation(FieldBorrowRate, validateWith(format.ParsePercentRate))

	c := &Calculator{
		ctx:      ctx,
		keyMap:   ui.DefaultKeyMap(),
		help:     help.New(),
		logger:   logger,
		exporter: exporter,
		cfg:      cfg,
		form:     form,
	}
	c.fillForm(cfg.Params)
	c.recalculate()
	return c
}

func validateWith(parse func(string) (float64, error)) func(string) error {
	return func(s string) error {
		_, err := parse(s)
		return err
	}
}

func (c *Calculator) fillForm(p position.Params) {
	c.form.SetFieldValue(FieldAmount, format.Input(p.Amount)).
		SetFieldValue(FieldLTV, format.Input(p.LTV)).
		SetFieldValue(FieldLeverage, format.Input(p.Leverage)).
		SetFieldValue(FieldCollateralRate, format.RateInput(p.CollateralRate)).
		SetFieldValue(FieldBorrowRate, format.RateInput(p.BorrowRate))
}

// Init initializes the calculator screen
func (c *Calculator) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles screen updates
func (c *Calculator) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		c.width = msg.Width
		c.height = msg.Height
		c.help.Width = msg.Width
		// Inputs sit in three panels side by side
		c.form.SetWidth(msg.Width/3 - 4)
		return c, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, c.keyMap.Quit):
			return c, tea.Quit

		case key.Matches(msg, c.keyMap.Help):
			c.help.ShowAll = !c.help.ShowAll
			return c, nil

		case key.Matches(msg, c.keyMap.Export):
			return c, c.exportCmd()

		case key.Matches(msg, c.keyMap.Reset):
			c.fillForm(c.cfg.Params)
			c.status = ""
			c.recalculate()
			return c, nil

		case key.Matches(msg, c.keyMap.Recalculate):
			c.recalculate()
			return c, nil
		}

	case ui.ExportDoneMsg:
		c.exporting = false
		c.statusErr = false
		c.status = "Exported: " + strings.Join(msg.Paths, ", ")
		return c, nil

	case ui.ErrorMsg:
		c.exporting = false
		c.statusErr = true
		c.status = fmt.Sprintf("%s: %v", msg.Title, msg.Error)
		return c, nil
	}

	var (
		cmd     tea.Cmd
		changed bool
	)
	c.form, cmd, changed = c.form.Update(msg)
	if changed {
		c.recalculate()
	}
	return c, cmd
}

// recalculate reads the form and, when every input is valid, replaces the
// shown result. Otherwise the last valid result stays and the reason is shown.
func (c *Calculator) recalculate() {
	c.updateMaxLeverageHint()

	if !c.form.Validate() {
		c.rejectInput(c.formError())
		return
	}

	params, err := c.readParams()
	if err != nil {
		c.rejectInput(err)
		return
	}

	pos, err := position.New(params)
	if err != nil {
		c.rejectInput(err)
		return
	}

	rows, err := sensitivity.Generate(pos, sensitivity.WithMaxLeverage(pos, c.cfg.Leverages))
	if err != nil {
		c.rejectInput(err)
		return
	}

	c.current = pos
	c.rows = rows
	c.hasResult = true
	c.inputErr = ""

	c.logger.Debug("Position evaluated",
		zap.Float64("leverage", pos.Leverage()),
		zap.Float64("net_apy", pos.NetAPY()),
		zap.Int("rows", len(rows)))
}

var formFields = []string{FieldAmount, FieldLTV, FieldLeverage, FieldCollateralRate, FieldBorrowRate}

// formError joins the messages Validate left on the fields.
func (c *Calculator) formError() error {
	var errs []error
	for _, name := range formFields {
		if msg := c.form.GetError(name); msg != "" {
			errs = append(errs, fmt.Errorf("%s: %s", name, msg))
		}
	}
	return errors.Join(errs...)
}

func (c *Calculator) readParams() (position.Params, error) {
	values := c.form.GetValues()

	var (
		p   position.Params
		err error
	)
	if p.Amount, err = format.ParseAmount(values[FieldAmount]); err != nil {
		return p, err
	}
	if p.LTV, err = format.ParseFraction(values[FieldLTV]); err != nil {
		return p, err
	}
	if p.Leverage, err = format.ParseLeverage(values[FieldLeverage]); err != nil {
		return p, err
	}
	if p.CollateralRate, err = format.ParsePercentRate(values[FieldCollateralRate]); err != nil {
		return p, err
	}
	if p.BorrowRate, err = format.ParsePercentRate(values[FieldBorrowRate]); err != nil {
		return p, err
	}
	return p, nil
}

func (c *Calculator) rejectInput(err error) {
	var inputErr *position.InvalidInputError
	if errors.As(err, &inputErr) {
		c.form.SetFieldError(inputErr.Field, inputErr.Reason)
	}
	c.inputErr = err.Error()

	c.logger.Debug("Invalid position input", zap.Error(err))
}

func (c *Calculator) updateMaxLeverageHint() {
	ltv, err := format.ParseFraction(c.form.GetValue(FieldLTV))
	if err != nil {
		c.form.SetFieldHint(FieldLeverage, "")
		return
	}
	maxLev, err := position.MaxLeverageFor(ltv)
	if err != nil {
		c.form.SetFieldHint(FieldLeverage, "")
		return
	}
	c.form.SetFieldHint(FieldLeverage, "Max Leverage: "+format.Leverage(maxLev))
}

// exportCmd writes the last valid result off the update loop
func (c *Calculator) exportCmd() tea.Cmd {
	if !c.hasResult {
		c.statusErr = true
		c.status = "Nothing to export yet"
		return nil
	}
	if c.exporting {
		return nil
	}
	c.exporting = true
	c.statusErr = false
	c.status = "Exporting..."

	report := sensitivity.Report{
		GeneratedAt: time.Now(),
		Position:    c.current.Metrics(),
		Rows:        append([]sensitivity.Row(nil), c.rows...),
	}
	ctx, opts, exporter, logger := c.ctx, c.cfg.Export, c.exporter, c.logger

	return func() tea.Msg {
		paths, err := exporter.ExportReport(ctx, report, opts)
		if err != nil {
			logger.Error("Report export failed", zap.Error(err))
			return ui.ErrorMsg{Error: err, Title: "Export failed"}
		}
		return ui.ExportDoneMsg{Paths: paths}
	}
}

// View renders the calculator screen
func (c *Calculator) View() string {
	var content strings.Builder

	content.WriteString(style.TitleStyle.Render("Margin Position Calculator"))
	content.WriteString("\n")
	content.WriteString(c.renderInputs())
	content.WriteString("\n")

	if c.inputErr != "" {
		prefix := "Invalid input: "
		if c.hasResult {
			prefix = "Showing last valid result. Invalid input: "
		}
		content.WriteString(style.ErrorStyle.Render(prefix + c.inputErr))
		content.WriteString("\n")
	}

	if c.hasResult {
		content.WriteString(style.SubHeaderStyle.Render("Key Metrics"))
		content.WriteString("\n")
		content.WriteString(RenderMetrics(c.current))
		content.WriteString("\n")

		content.WriteString(style.SubHeaderStyle.Render("Leverage Sensitivity"))
		content.WriteString("\n")
		content.WriteString(RenderSensitivity(c.rows, c.current.Leverage(), c.tableWidth()))
		content.WriteString("\n")
	}

	if c.status != "" {
		statusStyle := style.SuccessStyle
		if c.statusErr {
			statusStyle = style.ErrorStyle
		}
		content.WriteString(statusStyle.Render(c.status))
		content.WriteString("\n")
	}

	content.WriteString(style.HintStyle.Render(c.help.View(c.keyMap)))
	return content.String()
}

func (c *Calculator) tableWidth() int {
	if c.width <= 4 {
		return 0
	}
	return c.width - 4
}

func (c *Calculator) renderInputs() string {
	active := c.form.FocusedField()
	column := func(fields ...string) string {
		views := make([]string, 0, len(fields))
		panel := style.PanelStyle
		for _, f := range fields {
			views = append(views, c.form.FieldView(f))
			if f == active {
				panel = style.ActivePanelStyle
			}
		}
		return panel.Render(lipgloss.JoinVertical(lipgloss.Left, views...))
	}

	return lipgloss.JoinHorizontal(lipgloss.Top,
		column(FieldAmount),
		column(FieldLTV, FieldLeverage),
		column(FieldCollateralRate, FieldBorrowRate),
	)
}
