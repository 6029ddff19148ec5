package errors

import "fmt"

// Diagnostic is a located problem found in an already parsed script, such
// as a construct a syntax preset disallows.
type Diagnostic struct {
	Code        ErrorCode
	Message     string
	Filename    string
	Line        int
	Column      int
	EndColumn   int
	SourceLine  string
	Suggestions []Suggestion
	Note        string
}

// Error implements the error interface.
func (e *Diagnostic) Error() string {
	if e.Line == 0 {
		return e.Message
	}
	loc := SourceLocation{Filename: e.Filename, Line: e.Line, Column: e.Column}
	return fmt.Sprintf("%s (%s)", e.Message, loc)
}

// FriendlyErrorMessage returns a human-friendly error message.
func (e *Diagnostic) FriendlyErrorMessage() string {
	return NewFormatter(false).Format(e.ToFormatted())
}

// ToFormatted converts to the FormattedError type for display.
func (e *Diagnostic) ToFormatted() *FormattedError {
	fe := &FormattedError{
		Code:      e.Code,
		Kind:      e.Code.Category() + " error",
		Message:   e.Message,
		Filename:  e.Filename,
		Line:      e.Line,
		Column:    e.Column,
		EndColumn: e.EndColumn,
		Note:      e.Note,
	}
	if e.SourceLine != "" {
		fe.SourceLines = []SourceLineEntry{
			{Number: e.Line, Text: e.SourceLine, IsMain: true},
		}
	}
	if len(e.Suggestions) > 0 {
		fe.Hint = FormatSuggestions(e.Suggestions)
	}
	return fe
}
