package ui

// Messages for inter-component communication

// ErrorMsg contains an error to display
type ErrorMsg struct {
	Err error
}

// StatusMsg contains a status message to display
type StatusMsg struct {
	Message string
}

// ExportedMsg reports the result of an export
type ExportedMsg struct {
	Path string
	Err  error
}
