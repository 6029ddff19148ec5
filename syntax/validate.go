package syntax

import (
	"github.com/risor-io/shparse/ast"
	"github.com/risor-io/shparse/errors"
)

// SyntaxValidator validates an AST against a SyntaxConfig.
type SyntaxValidator struct {
	config  SyntaxConfig
	allowed map[string]bool
}

// NewSyntaxValidator creates a validator for the given configuration.
func NewSyntaxValidator(config SyntaxConfig) *SyntaxValidator {
	v := &SyntaxValidator{config: config}
	if len(config.AllowedCommands) > 0 {
		v.allowed = make(map[string]bool, len(config.AllowedCommands))
		for _, name := range config.AllowedCommands {
			v.allowed[name] = true
		}
	}
	return v
}

// Validate checks the AST against the syntax configuration.
func (v *SyntaxValidator) Validate(script *ast.Script) []ValidationError {
	var errs []ValidationError

	for node := range ast.Preorder(script) {
		if err := v.checkNode(node); err != nil {
			errs = append(errs, *err)
		}
	}

	return errs
}

func (v *SyntaxValidator) disallowed(node ast.Node, msg string) *ValidationError {
	err := newError(errors.E2001, node, "%s", msg)
	return &err
}

func (v *SyntaxValidator) checkNode(node ast.Node) *ValidationError {
	switch n := node.(type) {
	case *ast.Async:
		if v.config.DisallowAsync {
			return v.disallowed(node, "background commands are not allowed")
		}

	case *ast.Pipeline:
		if v.config.DisallowPipeline {
			return v.disallowed(node, "pipelines are not allowed")
		}

	case *ast.Binary:
		if v.config.DisallowAndOr {
			return v.disallowed(node, n.Op.Symbol()+" is not allowed")
		}

	case *ast.If:
		if v.config.DisallowIf {
			return v.disallowed(node, "if clauses are not allowed")
		}

	case *ast.CmdSubst:
		if v.config.DisallowCmdSubst {
			return v.disallowed(node, "command substitution is not allowed")
		}

	case *ast.Compound:
		if n.GlobHint && v.config.DisallowGlob {
			return v.disallowed(node, "glob patterns are not allowed")
		}
		if n.BraceExpansionHint && v.config.DisallowBraceExpansion {
			return v.disallowed(node, "brace expansion is not allowed")
		}

	case *ast.Assignment:
		if v.config.DisallowAssignment {
			return v.disallowed(node, "variable assignments are not allowed")
		}

	case *ast.HostTarget:
		if v.config.DisallowHostValues {
			return v.disallowed(node, "host value references are not allowed")
		}

	case *ast.Cmd:
		if !n.Redirect.IsEmpty() && v.config.DisallowRedirect {
			err := v.disallowed(node, "redirections are not allowed")
			if n.RedirectFile != nil {
				err.Position = n.RedirectFile.Pos()
			}
			return err
		}
		return v.checkCommandName(n)
	}

	return nil
}

func (v *SyntaxValidator) checkCommandName(cmd *ast.Cmd) *ValidationError {
	if v.allowed == nil || len(cmd.NameAndArgs) == 0 {
		return nil
	}
	name := cmd.NameAndArgs[0]
	text, ok := name.(*ast.Text)
	if !ok {
		err := newError(errors.E2001, name, "command name must be a literal when commands are restricted")
		return &err
	}
	if v.allowed[text.Value] {
		return nil
	}
	err := newError(errors.E2001, name, "command %q is not allowed", text.Value)
	err.Suggestions = errors.SuggestSimilar(text.Value, v.config.AllowedCommands)
	return &err
}
