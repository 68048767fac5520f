package component

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rovshanmuradov/margin-calculator/internal/ui/style"
)

// FormField represents a single numeric form field
type FormField struct {
	Name        string
	Label       string
	Value       string
	Placeholder string
	Hint        string
	Validation  func(string) error
	Error       string

	// Internal state
	textInput textinput.Model
	focused   bool
}

// Form represents a form component with multiple fields
type Form struct {
	fields     []FormField
	focusIndex int
	width      int

	// Styling
	labelStyle   lipgloss.Style
	inputStyle   lipgloss.Style
	focusedStyle lipgloss.Style
	errorStyle   lipgloss.Style
	hintStyle    lipgloss.Style
}

// NewForm creates a new form component
func NewForm() *Form {
	palette := style.DefaultPalette()

	return &Form{
		fields:     make([]FormField, 0),
		focusIndex: 0,

		labelStyle: lipgloss.NewStyle().
			Foreground(palette.Text).
			Bold(true),

		inputStyle: lipgloss.NewStyle().
			Foreground(palette.Text).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(palette.TextMuted),

		focusedStyle: lipgloss.NewStyle().
			Foreground(palette.Text).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(palette.Primary),

		errorStyle: lipgloss.NewStyle().
			Foreground(palette.Error),

		hintStyle: lipgloss.NewStyle().
			Foreground(palette.Limit).
			Italic(true),
	}
}

// AddField adds a field to the form
func (f *Form) AddField(name, label, placeholder string) *Form {
	ti := textinput.New()
	ti.Width = 14
	ti.Placeholder = placeholder
	ti.CharLimit = 16

	f.fields = append(f.fields, FormField{
		Name:        name,
		Label:       label,
		Placeholder: placeholder,
		textInput:   ti,
	})

	// Focus first field
	if len(f.fields) == 1 {
		f.fields[0].focused = true
		f.fields[0].textInput.Focus()
	}

	return f
}

func (f *Form) field(name string) *FormField {
	for i := range f.fields {
		if f.fields[i].Name == name {
			return &f.fields[i]
		}
	}
	return nil
}

// SetFieldValue sets the value of a field
func (f *Form) SetFieldValue(name, value string) *Form {
	if field := f.field(name); field != nil {
		field.Value = value
		field.textInput.SetValue(value)
	}
	return f
}

// SetFieldHint sets a line shown under a field, e.g. a computed limit
func (f *Form) SetFieldHint(name, hint string) *Form {
	if field := f.field(name); field != nil {
		field.Hint = hint
	}
	return f
}

// SetFieldError attaches an error message to a field
func (f *Form) SetFieldError(name, msg string) *Form {
	if field := f.field(name); field != nil {
		field.Error = msg
	}
	return f
}

// SetFieldValidation sets a validation function for a field
func (f *Form) SetFieldValidation(name string, validation func(string) error) *Form {
	if field := f.field(name); field != nil {
		field.Validation = validation
	}
	return f
}

// Update handles form input and reports whether a field value changed.
func (f *Form) Update(msg tea.Msg) (*Form, tea.Cmd, bool) {
	if len(f.fields) == 0 {
		return f, nil, false
	}

	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "tab", "down":
			f.nextField()
			return f, nil, false
		case "shift+tab", "up":
			f.prevField()
			return f, nil, false
		}
	}

	field := &f.fields[f.focusIndex]
	before := field.Value

	var cmd tea.Cmd
	field.textInput, cmd = field.textInput.Update(msg)
	field.Value = field.textInput.Value()

	changed := field.Value != before
	if changed {
		field.Error = ""
	}
	return f, cmd, changed
}

// View renders the fields stacked vertically
func (f *Form) View() string {
	if len(f.fields) == 0 {
		return "No fields defined"
	}

	views := make([]string, 0, len(f.fields))
	for i := range f.fields {
		views = append(views, f.renderField(i))
	}
	return strings.Join(views, "\n")
}

// FieldView renders a single field so callers can lay fields out freely
func (f *Form) FieldView(name string) string {
	for i := range f.fields {
		if f.fields[i].Name == name {
			return f.renderField(i)
		}
	}
	return ""
}

func (f *Form) renderField(i int) string {
	field := f.fields[i]

	var content strings.Builder
	content.WriteString(f.labelStyle.Render(field.Label))
	content.WriteString("\n")

	fieldStyle := f.inputStyle
	if i == f.focusIndex {
		fieldStyle = f.focusedStyle
	}
	content.WriteString(fieldStyle.Render(field.textInput.View()))

	if field.Hint != "" {
		content.WriteString("\n")
		content.WriteString(f.hintStyle.Render(field.Hint))
	}
	if field.Error != "" {
		content.WriteString("\n")
		content.WriteString(f.errorStyle.Render("⚠ " + field.Error))
	}

	return content.String()
}

// nextField moves focus to the next field
func (f *Form) nextField() {
	f.focus((f.focusIndex + 1) % len(f.fields))
}

// prevField moves focus to the previous field
func (f *Form) prevField() {
	idx := f.focusIndex - 1
	if idx < 0 {
		idx = len(f.fields) - 1
	}
	f.focus(idx)
}

func (f *Form) focus(idx int) {
	f.fields[f.focusIndex].focused = false
	f.fields[f.focusIndex].textInput.Blur()

	f.focusIndex = idx
	f.fields[idx].focused = true
	f.fields[idx].textInput.Focus()
}

// FocusedField returns the name of the focused field
func (f *Form) FocusedField() string {
	if len(f.fields) == 0 {
		return ""
	}
	return f.fields[f.focusIndex].Name
}

// Validate runs every field validation and records the messages
func (f *Form) Validate() bool {
	valid := true

	for i := range f.fields {
		field := &f.fields[i]
		field.Error = ""

		if strings.TrimSpace(field.Value) == "" {
			field.Error = "This field is required"
			valid = false
			continue
		}

		if field.Validation != nil {
			if err := field.Validation(field.Value); err != nil {
				field.Error = err.Error()
				valid = false
			}
		}
	}

	return valid
}

// GetValues returns all form field values as a map
func (f *Form) GetValues() map[string]string {
	values := make(map[string]string)
	for _, field := range f.fields {
		values[field.Name] = field.Value
	}
	return values
}

// GetValue returns the value of a specific field
func (f *Form) GetValue(name string) string {
	if field := f.field(name); field != nil {
		return field.Value
	}
	return ""
}

// GetError returns the current error of a field
func (f *Form) GetError(name string) string {
	if field := f.field(name); field != nil {
		return field.Error
	}
	return ""
}

// SetWidth sets the input width of every field
func (f *Form) SetWidth(width int) *Form {
	f.width = width
	inputWidth := width - 4 // Account for padding and borders
	if inputWidth > 10 {
		for i := range f.fields {
			f.fields[i].textInput.Width = inputWidth
		}
	}
	return f
}
