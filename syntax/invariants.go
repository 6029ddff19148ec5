package syntax

import (
	"github.com/risor-io/shparse/ast"
	"github.com/risor-io/shparse/errors"
)

// InvariantValidator checks the structural rules every parsed script obeys.
// The parser never produces a tree that fails them, so it is mainly useful
// for trees that were decoded from JSON or built by hand.
type InvariantValidator struct {
	hostCount int
}

// NewInvariantValidator returns a validator for trees whose host value
// table has hostCount entries.
func NewInvariantValidator(hostCount int) *InvariantValidator {
	return &InvariantValidator{hostCount: hostCount}
}

// Validate implements the Validator interface.
func (v *InvariantValidator) Validate(script *ast.Script) []ValidationError {
	var errs []ValidationError
	ast.Inspect(script, func(node ast.Node) bool {
		errs = append(errs, v.checkNode(node)...)
		return true
	})
	return errs
}

func malformed(node ast.Node, format string, args ...any) ValidationError {
	return newError(errors.E2003, node, format, args...)
}

func (v *InvariantValidator) checkNode(node ast.Node) []ValidationError {
	var errs []ValidationError
	switch n := node.(type) {
	case *ast.Stmt:
		if len(n.Exprs) == 0 {
			errs = append(errs, malformed(node, "statement has no expressions"))
		}
		for _, expr := range n.Exprs[:max(len(n.Exprs)-1, 0)] {
			if _, ok := expr.(*ast.Async); !ok {
				errs = append(errs, malformed(expr, "only the last expression of a statement may run in the foreground"))
			}
		}

	case *ast.Binary:
		if endsAsync(n.X) {
			errs = append(errs, malformed(node, "background command on the left of %s", n.Op.Symbol()))
		}

	case *ast.Pipeline:
		if len(n.Items) < 2 {
			errs = append(errs, malformed(node, "pipeline has %d items; expected at least 2", len(n.Items)))
		}
		for _, item := range n.Items {
			switch item.(type) {
			case *ast.Cmd, *ast.If:
			default:
				errs = append(errs, malformed(item, "pipeline items must be commands or if clauses"))
			}
		}

	case *ast.Assign:
		if len(n.Assigns) == 0 {
			errs = append(errs, malformed(node, "assignment statement has no assignments"))
		}

	case *ast.Cmd:
		if len(n.NameAndArgs) == 0 && n.Redirect.IsEmpty() {
			errs = append(errs, malformed(node, "command has no words and no redirection"))
		}
		switch {
		case n.Redirect.NeedsTarget() && n.RedirectFile == nil:
			errs = append(errs, malformed(node, "redirection %s has no target", n.Redirect.Operator()))
		case !n.Redirect.NeedsTarget() && n.RedirectFile != nil:
			errs = append(errs, malformed(node, "redirection target without a file redirection"))
		}

	case *ast.Compound:
		if len(n.Atoms) == 0 {
			errs = append(errs, malformed(node, "compound word has no parts"))
		}

	case *ast.CmdSubst:
		if n.Script == nil {
			errs = append(errs, malformed(node, "command substitution has no script"))
		}

	case *ast.HostTarget:
		if n.Idx < 0 || n.Idx >= v.hostCount {
			errs = append(errs, newError(errors.E2002, node,
				"host value index %d out of range; %d values available", n.Idx, v.hostCount))
		}
	}
	return errs
}

func endsAsync(expr ast.Expr) bool {
	switch x := expr.(type) {
	case *ast.Async:
		return true
	case *ast.Binary:
		return endsAsync(x.Y)
	}
	return false
}
