// Package token defines the tokens produced when lexing shell source code.
package token

// Type describes the type of a token as a string.
type Type string

// Position points to a particular location in an input string.
type Position struct {
	Char      int    // byte offset within the input
	LineStart int    // byte offset of the start of the current line
	Line      int    // 0-indexed line number
	Column    int    // 0-indexed column number
	File      string // filename
}

// LineNumber returns the 1-indexed line number for this position in the input.
func (p Position) LineNumber() int {
	return p.Line + 1
}

// ColumnNumber returns the 1-indexed column number for this position in the input.
func (p Position) ColumnNumber() int {
	return p.Column + 1
}

// Advance returns a new Position advanced by n bytes.
// Note: This assumes the advance does not cross line boundaries.
func (p Position) Advance(n int) Position {
	return Position{
		Char:      p.Char + n,
		LineStart: p.LineStart,
		Line:      p.Line,
		Column:    p.Column + n,
		File:      p.File,
	}
}

// IsValid returns true if this position has been set.
func (p Position) IsValid() bool {
	return p.File != "" || p.Line > 0 || p.Column > 0 || p.Char > 0
}

// NoPos is the zero value Position, representing an invalid/unset position.
var NoPos = Position{}

// Token represents one token lexed from the input source code.
type Token struct {
	Type          Type
	Literal       string
	StartPosition Position
	EndPosition   Position

	// Quoted is set on TEXT and CMD_SUBST tokens that appeared inside
	// quotes or were produced by a backslash escape.
	Quoted bool

	// ValuePos is where Literal begins in the input. For CMD_SUBST it is
	// the first byte after the opener.
	ValuePos Position

	// Index is the host table index carried by HOST_REF.
	Index int
}

// Token types
const (
	AMPERSAND Type = "&"
	AND       Type = "&&"
	CMD_SUBST Type = "CMD_SUBST"
	DELIMIT   Type = "DELIMIT"
	ELIF      Type = "elif"
	ELSE      Type = "else"
	EOF       Type = "EOF"
	FI        Type = "fi"
	HOST_REF  Type = "HOST_REF"
	IF        Type = "if"
	ILLEGAL   Type = "ILLEGAL"
	LPAREN    Type = "("
	NEWLINE   Type = "EOL"
	OR        Type = "||"
	PIPE      Type = "|"
	REDIRECT  Type = "REDIRECT"
	RPAREN    Type = ")"
	SEMICOLON Type = ";"
	TEXT      Type = "TEXT"
	THEN      Type = "then"
	VAR       Type = "VAR"
)

// Reserved keywords. They are only recognized in command-start position.
var keywords = map[string]Type{
	"elif": ELIF,
	"else": ELSE,
	"fi":   FI,
	"if":   IF,
	"then": THEN,
}

// LookupKeyword returns the keyword type for word, or TEXT if word is not a
// reserved keyword.
func LookupKeyword(word string) Type {
	if tok, ok := keywords[word]; ok {
		return tok
	}
	return TEXT
}

// Keywords returns the reserved words in no particular order.
func Keywords() []string {
	words := make([]string, 0, len(keywords))
	for word := range keywords {
		words = append(words, word)
	}
	return words
}

// IsWordPart reports whether t is a fragment of a shell word.
func IsWordPart(t Type) bool {
	return t == TEXT || t == VAR || t == CMD_SUBST
}

// IsKeyword reports whether t is one of the reserved keyword types.
func IsKeyword(t Type) bool {
	switch t {
	case IF, THEN, ELIF, ELSE, FI:
		return true
	}
	return false
}
