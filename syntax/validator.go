package syntax

import (
	"fmt"

	"github.com/risor-io/shparse/ast"
	"github.com/risor-io/shparse/errors"
	"github.com/risor-io/shparse/internal/token"
)

// ValidationError represents a syntax restriction violation or a tree that
// breaks a structural rule.
type ValidationError struct {
	Code        errors.ErrorCode    // E2xxx
	Message     string              // description of the violation
	Node        ast.Node            // the offending node
	Position    token.Position      // source location
	Suggestions []errors.Suggestion // alternatives, if any
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	pos := e.Position
	if pos.File != "" {
		return fmt.Sprintf("%s at %s:%d:%d", e.Message, pos.File, pos.LineNumber(), pos.ColumnNumber())
	}
	return fmt.Sprintf("%s at line %d, column %d", e.Message, pos.LineNumber(), pos.ColumnNumber())
}

// Validator inspects an AST and returns validation errors.
// Validators should not modify the AST.
type Validator interface {
	// Validate checks the AST and returns any validation errors.
	// Multiple errors may be returned to show all violations at once.
	Validate(script *ast.Script) []ValidationError
}

// ValidatorFunc is an adapter to use a function as a Validator.
type ValidatorFunc func(*ast.Script) []ValidationError

// Validate implements the Validator interface.
func (f ValidatorFunc) Validate(s *ast.Script) []ValidationError {
	return f(s)
}

func newError(code errors.ErrorCode, node ast.Node, format string, args ...any) ValidationError {
	return ValidationError{
		Code:     code,
		Message:  fmt.Sprintf(format, args...),
		Node:     node,
		Position: node.Pos(),
	}
}
