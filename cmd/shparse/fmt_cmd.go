package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/risor-io/shparse/ast"
)

func (a *app) fmtCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fmt [file]",
		Short: "Print a script in canonical form",
		Long: `Print a script in canonical form: one statement per line, words quoted
only where needed and redirections written in their canonical spelling.`,
		Args: cobra.MaximumNArgs(1),
		RunE: a.runFmt,
	}
	addInputFlags(cmd)
	cmd.Flags().BoolP("write", "w", false, "write the result to the source file")
	cmd.Flags().BoolP("list", "l", false, "only report whether the source differs from canonical form")
	return cmd
}

// formatScript renders one statement per line.
func formatScript(script *ast.Script) string {
	var b strings.Builder
	for _, stmt := range script.Stmts {
		b.WriteString(stmt.String())
		b.WriteString("\n")
	}
	return b.String()
}

func (a *app) runFmt(cmd *cobra.Command, args []string) error {
	in, script, err := a.parse(cmd, args)
	if err != nil {
		return reportParseError(cmd, err)
	}
	formatted := formatScript(script)

	if list, _ := cmd.Flags().GetBool("list"); list {
		if formatted != in.source {
			name := in.filename
			if name == "" {
				name = "<code>"
			}
			fmt.Fprintln(cmd.OutOrStdout(), name)
			return exitError{code: 1}
		}
		return nil
	}
	if write, _ := cmd.Flags().GetBool("write"); write {
		if len(args) == 0 {
			return fmt.Errorf("--write requires a file argument")
		}
		if formatted == in.source {
			return nil
		}
		a.logger.Info().Str("file", args[0]).Msg("rewriting")
		return os.WriteFile(args[0], []byte(formatted), 0o644)
	}
	_, err = fmt.Fprint(cmd.OutOrStdout(), formatted)
	return err
}
