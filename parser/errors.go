package parser

import (
	"github.com/risor-io/shparse/errors"
	"github.com/risor-io/shparse/internal/token"
)

// Error kinds. Each kind is an error code from the errors package.
const (
	UnsupportedSyntax     = errors.E1001
	MissingRedirectTarget = errors.E1002
	UnexpectedHostValue   = errors.E1003
	AsyncOnLeftOfBinary   = errors.E1004
	UnterminatedCompound  = errors.E1005
	NestingTooDeep        = errors.E1006
)

// Error describes why a script could not be parsed.
type Error struct {
	// Kind classifies the failure.
	Kind errors.ErrorCode

	message       string
	file          string
	startPosition token.Position
	endPosition   token.Position
	// Relevant line of source code text
	sourceCode string
	hint       string
	note       string
}

// Error returns the bare message, such as "Redirection with no file".
func (e *Error) Error() string {
	return e.message
}

func (e *Error) Message() string {
	return e.message
}

func (e *Error) File() string {
	return e.file
}

func (e *Error) StartPosition() token.Position {
	return e.startPosition
}

func (e *Error) EndPosition() token.Position {
	return e.endPosition
}

func (e *Error) SourceCode() string {
	return e.sourceCode
}

// Hint returns a suggested fix, or an empty string.
func (e *Error) Hint() string {
	return e.hint
}

// Location returns the 1-based location of the error.
func (e *Error) Location() errors.SourceLocation {
	return errors.SourceLocation{
		Filename: e.file,
		Line:     e.startPosition.LineNumber(),
		Column:   e.startPosition.ColumnNumber(),
		Source:   e.sourceCode,
	}
}

func (e *Error) FriendlyErrorMessage() string {
	return errors.NewFormatter(false).Format(e.ToFormatted())
}

// ToFormatted converts the parser error to a FormattedError for display.
func (e *Error) ToFormatted() *errors.FormattedError {
	start := e.startPosition
	end := e.endPosition
	endColumn := 0
	if end.Line == start.Line && end.Column > start.Column {
		// End positions are exclusive; the formatter wants the last column.
		endColumn = end.Column
	}
	fe := &errors.FormattedError{
		Code:      e.Kind,
		Kind:      "parse error",
		Message:   e.message,
		Filename:  e.file,
		Line:      start.LineNumber(),
		Column:    start.ColumnNumber(),
		EndColumn: endColumn,
		Hint:      e.hint,
		Note:      e.note,
	}
	if e.sourceCode != "" {
		fe.SourceLines = []errors.SourceLineEntry{
			{Number: start.LineNumber(), Text: e.sourceCode, IsMain: true},
		}
	}
	return fe
}
