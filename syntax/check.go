package syntax

import (
	"fmt"
	"strings"

	"github.com/hashicorp/go-multierror"

	"github.com/risor-io/shparse/ast"
	"github.com/risor-io/shparse/errors"
)

// CheckOption configures Check.
type CheckOption func(*checkOptions)

type checkOptions struct {
	source     string
	filename   string
	hostCount  int
	validators []Validator
}

// WithSource supplies the script's source text so diagnostics can show the
// offending line.
func WithSource(source string) CheckOption {
	return func(o *checkOptions) {
		o.source = source
	}
}

// WithFilename sets the file name reported by diagnostics when the tree
// positions do not carry one.
func WithFilename(filename string) CheckOption {
	return func(o *checkOptions) {
		o.filename = filename
	}
}

// WithHostValues sets the size of the host value table the script was
// parsed with.
func WithHostValues(n int) CheckOption {
	return func(o *checkOptions) {
		o.hostCount = n
	}
}

// WithValidators adds validators that run after the built-in ones.
func WithValidators(validators ...Validator) CheckOption {
	return func(o *checkOptions) {
		o.validators = append(o.validators, validators...)
	}
}

// Check validates the script against the configuration and the structural
// invariants. All violations are reported together as *errors.Diagnostic
// values aggregated in a *multierror.Error. It returns nil if the script
// passes.
func Check(script *ast.Script, config SyntaxConfig, options ...CheckOption) error {
	var opts checkOptions
	for _, opt := range options {
		opt(&opts)
	}
	validators := []Validator{
		NewInvariantValidator(opts.hostCount),
		NewSyntaxValidator(config),
	}
	validators = append(validators, opts.validators...)

	var lines []string
	if opts.source != "" {
		lines = strings.Split(opts.source, "\n")
	}

	var result *multierror.Error
	for _, v := range validators {
		for _, verr := range v.Validate(script) {
			result = multierror.Append(result, toDiagnostic(verr, opts.filename, lines))
		}
	}
	if result == nil {
		return nil
	}
	result.ErrorFormat = formatDiagnostics
	return result
}

// Diagnostics returns the diagnostics held by an error returned by Check.
func Diagnostics(err error) []*errors.Diagnostic {
	merr, ok := err.(*multierror.Error)
	if !ok {
		if d, ok := err.(*errors.Diagnostic); ok {
			return []*errors.Diagnostic{d}
		}
		return nil
	}
	var out []*errors.Diagnostic
	for _, e := range merr.Errors {
		if d, ok := e.(*errors.Diagnostic); ok {
			out = append(out, d)
		}
	}
	return out
}

func toDiagnostic(verr ValidationError, filename string, lines []string) *errors.Diagnostic {
	pos := verr.Position
	d := &errors.Diagnostic{
		Code:        verr.Code,
		Message:     verr.Message,
		Filename:    pos.File,
		Suggestions: verr.Suggestions,
	}
	if d.Filename == "" {
		d.Filename = filename
	}
	if pos.IsValid() || lines != nil {
		d.Line = pos.LineNumber()
		d.Column = pos.ColumnNumber()
		if verr.Node != nil {
			if end := verr.Node.End(); end.Line == pos.Line && end.Column > pos.Column {
				d.EndColumn = end.Column
			}
		}
	}
	if pos.Line < len(lines) && d.Line > 0 {
		d.SourceLine = lines[pos.Line]
	}
	return d
}

func formatDiagnostics(errs []error) string {
	if len(errs) == 1 {
		return errs[0].Error()
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%d validation errors:", len(errs))
	for _, err := range errs {
		fmt.Fprintf(&b, "\n  - %s", err.Error())
	}
	return b.String()
}
