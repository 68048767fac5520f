package ui

// Tea message types for UI communication

// ExportDoneMsg reports the files written by an export command
type ExportDoneMsg struct {
	Paths []string
}

// ErrorMsg represents error conditions
type ErrorMsg struct {
	Error error
	Title string
}
