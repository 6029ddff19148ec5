// Package ast defines the abstract syntax tree for parsed shell scripts.
//
// Sum types are modeled as sealed interfaces: Expr, Atom, SimpleAtom and
// RedirectTarget can only be implemented by the node types in this package.
package ast

import (
	"strings"

	"github.com/risor-io/shparse/internal/token"
)

// Node represents a portion of the syntax tree. All nodes have position
// information indicating where they appear in the source code.
type Node interface {
	// Pos returns the position of the first character belonging to the node.
	Pos() token.Position

	// End returns the position of the first character immediately after the node.
	End() token.Position

	// String returns canonical shell source for the node. Parsing the result
	// yields a structurally identical tree.
	String() string
}

// Expr is one of *Cmd, *Pipeline, *Binary, *Assign, *If or *Async.
type Expr interface {
	Node
	exprNode()
}

// Script is the root of a parsed program and the body of a command
// substitution.
type Script struct {
	Stmts []*Stmt
}

func (s *Script) Pos() token.Position {
	if len(s.Stmts) > 0 {
		return s.Stmts[0].Pos()
	}
	return token.NoPos
}

func (s *Script) End() token.Position {
	if len(s.Stmts) > 0 {
		return s.Stmts[len(s.Stmts)-1].End()
	}
	return token.NoPos
}

func (s *Script) String() string {
	return joinStmts(s.Stmts)
}

// Stmt is a sequence of expressions. Every expression except the last is
// an *Async, since "&" is what separates them.
type Stmt struct {
	Exprs []Expr
}

func (s *Stmt) Pos() token.Position {
	if len(s.Exprs) > 0 {
		return s.Exprs[0].Pos()
	}
	return token.NoPos
}

func (s *Stmt) End() token.Position {
	if len(s.Exprs) > 0 {
		return s.Exprs[len(s.Exprs)-1].End()
	}
	return token.NoPos
}

func (s *Stmt) String() string {
	var out strings.Builder
	for i, expr := range s.Exprs {
		if i > 0 {
			if _, ok := s.Exprs[i-1].(*Async); ok {
				out.WriteString(" ")
			} else {
				out.WriteString("; ")
			}
		}
		out.WriteString(expr.String())
	}
	return out.String()
}

func joinStmts(stmts []*Stmt) string {
	parts := make([]string, 0, len(stmts))
	for _, stmt := range stmts {
		parts = append(parts, stmt.String())
	}
	return strings.Join(parts, "; ")
}
