package ast

import (
	"strings"
	"unicode/utf8"

	"github.com/risor-io/shparse/internal/lexer"
	"github.com/risor-io/shparse/internal/token"
)

// Atom is a single shell word: a SimpleAtom or a *Compound.
type Atom interface {
	Node
	atomNode()
}

// SimpleAtom is one of *Text, *Var or *CmdSubst.
type SimpleAtom interface {
	Atom
	simpleAtomNode()
}

// Text is literal text with all quoting removed.
type Text struct {
	ValuePos token.Position
	ValueEnd token.Position
	Value    string
}

func (x *Text) atomNode()       {}
func (x *Text) simpleAtomNode() {}

func (x *Text) Pos() token.Position { return x.ValuePos }
func (x *Text) End() token.Position { return x.ValueEnd }

func (x *Text) String() string {
	if x.Value == "" {
		return "''"
	}
	if token.LookupKeyword(x.Value) != token.TEXT || needsQuoting(x.Value) {
		return singleQuote(x.Value)
	}
	return x.Value
}

// Var is a parameter expansion such as $HOME or ${1}.
type Var struct {
	Dollar token.Position
	VarEnd token.Position
	Name   string
}

func (x *Var) atomNode()       {}
func (x *Var) simpleAtomNode() {}

func (x *Var) Pos() token.Position { return x.Dollar }
func (x *Var) End() token.Position { return x.VarEnd }
func (x *Var) String() string      { return "$" + x.Name }

// CmdSubst is a command substitution, $(...) or `...`.
type CmdSubst struct {
	Open   token.Position
	Close  token.Position
	Script *Script
	Quoted bool // appeared inside double quotes
}

func (x *CmdSubst) atomNode()       {}
func (x *CmdSubst) simpleAtomNode() {}

func (x *CmdSubst) Pos() token.Position { return x.Open }
func (x *CmdSubst) End() token.Position { return x.Close }

func (x *CmdSubst) String() string {
	var body string
	if x.Script != nil {
		body = x.Script.String()
	}
	if x.Quoted {
		return `"$(` + body + `)"`
	}
	return "$(" + body + ")"
}

// Compound is a word made of several fragments, or a single fragment that
// carries an expansion hint.
type Compound struct {
	Atoms              []SimpleAtom
	BraceExpansionHint bool
	GlobHint           bool
}

func (x *Compound) atomNode() {}

func (x *Compound) Pos() token.Position {
	if len(x.Atoms) > 0 {
		return x.Atoms[0].Pos()
	}
	return token.NoPos
}

func (x *Compound) End() token.Position {
	if len(x.Atoms) > 0 {
		return x.Atoms[len(x.Atoms)-1].End()
	}
	return token.NoPos
}

func (x *Compound) String() string {
	var out strings.Builder
	for _, atom := range x.Atoms {
		switch a := atom.(type) {
		case *Text:
			out.WriteString(x.renderText(a.Value))
		case *Var:
			out.WriteString("${" + a.Name + "}")
		default:
			out.WriteString(atom.String())
		}
	}
	if out.Len() == 0 {
		return "''"
	}
	return out.String()
}

// renderText writes safe characters bare and quotes the rest. Glob and
// brace characters are left bare only when the matching hint is set, so
// the hints survive a round trip.
func (x *Compound) renderText(s string) string {
	var out, quoted strings.Builder
	flush := func() {
		if quoted.Len() > 0 {
			out.WriteString(singleQuote(quoted.String()))
			quoted.Reset()
		}
	}
	for _, r := range s {
		bare := isSafeRune(r) ||
			(x.GlobHint && strings.ContainsRune("*?[", r)) ||
			(x.BraceExpansionHint && (r == '{' || r == '}'))
		if bare {
			flush()
			out.WriteRune(r)
		} else {
			quoted.WriteRune(r)
		}
	}
	flush()
	return out.String()
}

func isSafeRune(r rune) bool {
	switch {
	case 'a' <= r && r <= 'z', 'A' <= r && r <= 'Z', '0' <= r && r <= '9':
		return true
	case r == lexer.HostMarkerOpen || r == lexer.HostMarkerClose:
		return false
	case r >= utf8.RuneSelf:
		return r != utf8.RuneError
	}
	return strings.ContainsRune("-_./:,+@%^!]", r)
}

func needsQuoting(s string) bool {
	for _, r := range s {
		if !isSafeRune(r) {
			return true
		}
	}
	return false
}

func singleQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
