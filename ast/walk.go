package ast

import "iter"

// Visitor defines the interface for AST traversal. If Visit returns nil,
// children of the node are not visited. Otherwise, the returned Visitor
// is used to visit children.
type Visitor interface {
	Visit(node Node) (w Visitor)
}

// Walk traverses an AST in depth-first order. It starts by calling
// v.Visit(node); if the returned visitor w is not nil, Walk is invoked
// recursively with visitor w for each of the non-nil children of node.
func Walk(v Visitor, node Node) {
	if v = v.Visit(node); v == nil {
		return
	}
	for _, child := range Children(node) {
		Walk(v, child)
	}
}

// Children returns the direct children of node in source order.
func Children(node Node) []Node {
	var out []Node
	addStmts := func(stmts []*Stmt) {
		for _, stmt := range stmts {
			if stmt != nil {
				out = append(out, stmt)
			}
		}
	}
	switch n := node.(type) {
	case *Script:
		addStmts(n.Stmts)
	case *Stmt:
		for _, expr := range n.Exprs {
			if expr != nil {
				out = append(out, expr)
			}
		}
	case *Cmd:
		for _, a := range n.Assigns {
			out = append(out, a)
		}
		for _, atom := range n.NameAndArgs {
			if atom != nil {
				out = append(out, atom)
			}
		}
		if n.RedirectFile != nil {
			out = append(out, n.RedirectFile)
		}
	case *Pipeline:
		for _, item := range n.Items {
			if item != nil {
				out = append(out, item)
			}
		}
	case *Binary:
		if n.X != nil {
			out = append(out, n.X)
		}
		if n.Y != nil {
			out = append(out, n.Y)
		}
	case *Assign:
		for _, a := range n.Assigns {
			out = append(out, a)
		}
	case *Assignment:
		if n.Value != nil {
			out = append(out, n.Value)
		}
	case *If:
		addStmts(n.Cond)
		addStmts(n.Then)
		for _, part := range n.ElseParts {
			addStmts(part)
		}
	case *Async:
		if n.X != nil {
			out = append(out, n.X)
		}
	case *FileTarget:
		if n.Atom != nil {
			out = append(out, n.Atom)
		}
	case *CmdSubst:
		if n.Script != nil {
			out = append(out, n.Script)
		}
	case *Compound:
		for _, atom := range n.Atoms {
			if atom != nil {
				out = append(out, atom)
			}
		}

	// Leaves
	case *HostTarget:
	case *Text:
	case *Var:
	}
	return out
}

// Inspect traverses an AST in depth-first order. It calls f(node) for each
// node; if f returns true, Inspect invokes f recursively for each of the
// non-nil children of node.
func Inspect(node Node, f func(Node) bool) {
	Walk(inspector(f), node)
}

type inspector func(Node) bool

func (f inspector) Visit(node Node) Visitor {
	if f(node) {
		return f
	}
	return nil
}

// Preorder returns an iterator over all the nodes of the AST rooted at node
// in depth-first preorder.
func Preorder(root Node) iter.Seq[Node] {
	return func(yield func(Node) bool) {
		var visit func(Node) bool
		visit = func(n Node) bool {
			if !yield(n) {
				return false
			}
			for _, child := range Children(n) {
				if !visit(child) {
					return false
				}
			}
			return true
		}
		visit(root)
	}
}
