package ast

import (
	"strings"

	"github.com/risor-io/shparse/internal/lexer"
	"github.com/risor-io/shparse/internal/token"
)

// RedirectFlags is a bit set describing which streams a command redirects.
type RedirectFlags uint8

const (
	Stdin RedirectFlags = 1 << iota
	Stdout
	Stderr
	Append
	// DuplicateOut redirects one output stream into the other, as in 2>&1.
	DuplicateOut
)

// Has reports whether all bits of f2 are set in f.
func (f RedirectFlags) Has(f2 RedirectFlags) bool {
	return f&f2 == f2
}

// IsEmpty reports whether no redirection is requested.
func (f RedirectFlags) IsEmpty() bool {
	return f == 0
}

// NeedsTarget reports whether the redirection names a file or host value.
func (f RedirectFlags) NeedsTarget() bool {
	return f&(Stdin|Stdout|Stderr) != 0 && f&DuplicateOut == 0
}

// Operator returns the canonical shell operator for the flags.
func (f RedirectFlags) Operator() string {
	switch {
	case f.IsEmpty():
		return ""
	case f.Has(Stdin):
		return "<"
	case f.Has(Stdout | Stderr):
		if f.Has(Append) {
			return "&>>"
		}
		return "&>"
	case f.Has(Stdout | DuplicateOut):
		return "1>&2"
	case f.Has(Stderr | DuplicateOut):
		return "2>&1"
	case f.Has(Stdout):
		if f.Has(Append) {
			return ">>"
		}
		return ">"
	case f.Has(Stderr):
		if f.Has(Append) {
			return "2>>"
		}
		return "2>"
	}
	return ""
}

// RedirectTarget is either a *FileTarget or a *HostTarget.
type RedirectTarget interface {
	Node
	redirectTarget()
}

// FileTarget redirects to a path given by a word.
type FileTarget struct {
	Atom Atom
}

func (t *FileTarget) redirectTarget() {}

func (t *FileTarget) Pos() token.Position { return t.Atom.Pos() }
func (t *FileTarget) End() token.Position { return t.Atom.End() }
func (t *FileTarget) String() string      { return t.Atom.String() }

// HostTarget redirects to or from a value in the host value table.
type HostTarget struct {
	RefPos token.Position
	RefEnd token.Position
	Idx    int
}

func (t *HostTarget) redirectTarget() {}

func (t *HostTarget) Pos() token.Position { return t.RefPos }
func (t *HostTarget) End() token.Position { return t.RefEnd }
func (t *HostTarget) String() string      { return lexer.HostMarker(t.Idx) }

// Assignment is a single NAME=value word.
type Assignment struct {
	LabelPos token.Position
	Label    string
	Value    Atom
}

func (a *Assignment) Pos() token.Position { return a.LabelPos }
func (a *Assignment) End() token.Position {
	if a.Value != nil {
		return a.Value.End()
	}
	return a.LabelPos.Advance(len(a.Label) + 1)
}

func (a *Assignment) String() string {
	if a.Value == nil {
		return a.Label + "="
	}
	return a.Label + "=" + a.Value.String()
}

// Cmd is a simple command with optional leading assignments and at most
// one redirection.
type Cmd struct {
	CmdPos       token.Position
	CmdEnd       token.Position
	Assigns      []*Assignment
	NameAndArgs  []Atom
	Redirect     RedirectFlags
	RedirectFile RedirectTarget // nil unless Redirect.NeedsTarget()
}

func (x *Cmd) exprNode() {}

func (x *Cmd) Pos() token.Position { return x.CmdPos }
func (x *Cmd) End() token.Position { return x.CmdEnd }

func (x *Cmd) String() string {
	parts := make([]string, 0, len(x.Assigns)+len(x.NameAndArgs)+1)
	for _, a := range x.Assigns {
		parts = append(parts, a.String())
	}
	for _, atom := range x.NameAndArgs {
		parts = append(parts, atom.String())
	}
	if op := x.Redirect.Operator(); op != "" {
		if x.RedirectFile != nil {
			op += " " + x.RedirectFile.String()
		}
		parts = append(parts, op)
	}
	return strings.Join(parts, " ")
}

// Pipeline connects the output of each item to the input of the next.
// Items are *Cmd or *If.
type Pipeline struct {
	Items []Expr
}

func (x *Pipeline) exprNode() {}

func (x *Pipeline) Pos() token.Position {
	if len(x.Items) > 0 {
		return x.Items[0].Pos()
	}
	return token.NoPos
}

func (x *Pipeline) End() token.Position {
	if len(x.Items) > 0 {
		return x.Items[len(x.Items)-1].End()
	}
	return token.NoPos
}

func (x *Pipeline) String() string {
	parts := make([]string, 0, len(x.Items))
	for _, item := range x.Items {
		parts = append(parts, item.String())
	}
	return strings.Join(parts, " | ")
}

// BinaryOp is the operator of a Binary expression.
type BinaryOp uint8

const (
	And BinaryOp = iota
	Or
)

func (op BinaryOp) String() string {
	if op == Or {
		return "Or"
	}
	return "And"
}

// Symbol returns the shell spelling of the operator.
func (op BinaryOp) Symbol() string {
	if op == Or {
		return "||"
	}
	return "&&"
}

// Binary is a left-associative && or || chain link.
type Binary struct {
	X     Expr
	OpPos token.Position
	Op    BinaryOp
	Y     Expr
}

func (x *Binary) exprNode() {}

func (x *Binary) Pos() token.Position { return x.X.Pos() }
func (x *Binary) End() token.Position { return x.Y.End() }

func (x *Binary) String() string {
	return x.X.String() + " " + x.Op.Symbol() + " " + x.Y.String()
}

// Assign is a statement made only of assignment words, such as FOO=bar.
type Assign struct {
	Assigns []*Assignment
}

func (x *Assign) exprNode() {}

func (x *Assign) Pos() token.Position {
	if len(x.Assigns) > 0 {
		return x.Assigns[0].Pos()
	}
	return token.NoPos
}

func (x *Assign) End() token.Position {
	if len(x.Assigns) > 0 {
		return x.Assigns[len(x.Assigns)-1].End()
	}
	return token.NoPos
}

func (x *Assign) String() string {
	parts := make([]string, 0, len(x.Assigns))
	for _, a := range x.Assigns {
		parts = append(parts, a.String())
	}
	return strings.Join(parts, " ")
}

// If is an if/then/elif/else/fi clause.
//
// ElseParts is flattened: each elif contributes two entries, its condition
// followed by its body, and a trailing else contributes one. An odd length
// therefore means the clause ends with an else.
type If struct {
	IfPos     token.Position
	FiPos     token.Position
	Cond      []*Stmt
	Then      []*Stmt
	ElseParts [][]*Stmt
}

func (x *If) exprNode() {}

func (x *If) Pos() token.Position { return x.IfPos }
func (x *If) End() token.Position { return x.FiPos.Advance(2) }

// Elifs returns the (condition, body) pairs of the elif branches.
func (x *If) Elifs() [][2][]*Stmt {
	var pairs [][2][]*Stmt
	for i := 0; i+1 < len(x.ElseParts); i += 2 {
		pairs = append(pairs, [2][]*Stmt{x.ElseParts[i], x.ElseParts[i+1]})
	}
	return pairs
}

// Else returns the body of the final else branch, if present.
func (x *If) Else() ([]*Stmt, bool) {
	if len(x.ElseParts)%2 == 1 {
		return x.ElseParts[len(x.ElseParts)-1], true
	}
	return nil, false
}

func (x *If) String() string {
	var out strings.Builder
	out.WriteString("if ")
	out.WriteString(joinStmts(x.Cond))
	out.WriteString("; then ")
	out.WriteString(joinStmts(x.Then))
	for _, pair := range x.Elifs() {
		out.WriteString("; elif ")
		out.WriteString(joinStmts(pair[0]))
		out.WriteString("; then ")
		out.WriteString(joinStmts(pair[1]))
	}
	if body, ok := x.Else(); ok {
		out.WriteString("; else ")
		out.WriteString(joinStmts(body))
	}
	out.WriteString("; fi")
	return out.String()
}

// Async runs X in the background.
type Async struct {
	X      Expr
	AmpPos token.Position
}

func (x *Async) exprNode() {}

func (x *Async) Pos() token.Position { return x.X.Pos() }
func (x *Async) End() token.Position { return x.AmpPos.Advance(1) }

func (x *Async) String() string {
	return x.X.String() + " &"
}
