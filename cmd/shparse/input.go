package main

import (
	goerrors "errors"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/risor-io/shparse/ast"
	"github.com/risor-io/shparse/errors"
	"github.com/risor-io/shparse/internal/tmpl"
	"github.com/risor-io/shparse/parser"
)

// input is a script read from the command line, a file or stdin.
type input struct {
	source   string
	filename string
	// hosts names the host values of a templated input, by index.
	hosts []string
}

// hostRef stands in for a host value named by a template placeholder.
type hostRef struct {
	name string
}

func addInputFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("code", "c", "", "script source to read")
	cmd.Flags().Bool("stdin", false, "read the script from stdin")
	cmd.Flags().Bool("template", false, "treat {{name}} placeholders as host values")
	cmd.Flags().Int("max-depth", parser.DefaultMaxDepth, "maximum nesting depth")
}

// readInput determines the script to work on. There are three possibilities:
//  1. --code <source>
//  2. --stdin
//  3. path as args[0]
func (a *app) readInput(cmd *cobra.Command, args []string) (*input, error) {
	codeSet := cmd.Flags().Changed("code")
	stdinSet, _ := cmd.Flags().GetBool("stdin")
	pathSupplied := len(args) > 0
	if pathSupplied && (codeSet || stdinSet) || codeSet && stdinSet {
		return nil, goerrors.New("multiple input sources specified")
	}

	in := &input{}
	switch {
	case stdinSet:
		data, err := io.ReadAll(a.stdin)
		if err != nil {
			return nil, err
		}
		in.source = string(data)
		in.filename = "<stdin>"
	case pathSupplied:
		data, err := os.ReadFile(args[0])
		if err != nil {
			return nil, err
		}
		in.source = string(data)
		in.filename = args[0]
	case codeSet:
		in.source, _ = cmd.Flags().GetString("code")
	default:
		return nil, goerrors.New("no input provided (use a file argument, --code or --stdin)")
	}
	return in, nil
}

// parse reads the input and parses it through the cache.
func (a *app) parse(cmd *cobra.Command, args []string) (*input, *ast.Script, error) {
	in, err := a.readInput(cmd, args)
	if err != nil {
		return nil, nil, err
	}
	maxDepth, _ := cmd.Flags().GetInt("max-depth")
	options := []parser.Option{
		parser.WithFilename(in.filename),
		parser.WithMaxDepth(maxDepth),
		parser.WithLogger(a.logger.With().Str("component", "parser").Logger()),
	}

	if templated, _ := cmd.Flags().GetBool("template"); templated {
		t, err := tmpl.Parse(in.source)
		if err != nil {
			return in, nil, err
		}
		parts, names := t.Split()
		refs := make([]any, len(names))
		for i, name := range names {
			refs[i] = hostRef{name: name}
		}
		pt, err := parser.NewTemplate(parts, refs...)
		if err != nil {
			return in, nil, err
		}
		in.source = pt.Source
		in.hosts = names
		script, err := a.cache.ParseTemplate(pt, options...)
		return in, script, err
	}

	script, err := a.cache.Parse(in.source, options...)
	return in, script, err
}

// reportParseError prints a parse failure with its source context and
// returns the error the command should exit with.
func reportParseError(cmd *cobra.Command, err error) error {
	var perr *parser.Error
	if !goerrors.As(err, &perr) {
		return err
	}
	w := cmd.ErrOrStderr()
	fmt.Fprint(w, errors.Format(perr, useColor(w)))
	return exitError{code: 1}
}

func useColor(w io.Writer) bool {
	return !color.NoColor && isTerminal(w)
}
