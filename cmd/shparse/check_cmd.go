package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/risor-io/shparse/errors"
	"github.com/risor-io/shparse/syntax"
)

func presetNames() []string {
	names := make([]string, 0, len(syntax.Presets))
	for name := range syntax.Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (a *app) checkCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check [file]",
		Short: "Check a script against a syntax policy",
		Long: fmt.Sprintf(`Parse a script and report every construct the selected policy forbids.

Presets: %s. The preset and the allowed command list may also be set
with the check.preset and check.allow config keys.`, strings.Join(presetNames(), ", ")),
		Args: cobra.MaximumNArgs(1),
		RunE: a.runCheck,
	}
	addInputFlags(cmd)
	cmd.Flags().StringP("preset", "p", "full", "syntax policy preset")
	cmd.Flags().StringSlice("allow", nil, "commands the script may run (default any)")
	a.v.BindPFlag("check.preset", cmd.Flags().Lookup("preset"))
	a.v.BindPFlag("check.allow", cmd.Flags().Lookup("allow"))
	return cmd
}

func (a *app) runCheck(cmd *cobra.Command, args []string) error {
	preset := a.v.GetString("check.preset")
	config, ok := syntax.Presets[preset]
	if !ok {
		return fmt.Errorf("unknown preset %q (expected one of: %s)", preset, strings.Join(presetNames(), ", "))
	}
	if allow := a.v.GetStringSlice("check.allow"); len(allow) > 0 {
		config.AllowedCommands = allow
	}

	in, script, err := a.parse(cmd, args)
	if err != nil {
		return reportParseError(cmd, err)
	}
	err = syntax.Check(script, config,
		syntax.WithSource(in.source),
		syntax.WithFilename(in.filename),
		syntax.WithHostValues(len(in.hosts)))
	if err == nil {
		a.logger.Debug().Str("preset", preset).Msg("check passed")
		return nil
	}

	diags := syntax.Diagnostics(err)
	formatted := make([]*errors.FormattedError, len(diags))
	for i, d := range diags {
		formatted[i] = d.ToFormatted()
	}
	w := cmd.ErrOrStderr()
	fmt.Fprint(w, errors.NewFormatter(useColor(w)).FormatMultiple(formatted))
	return exitError{code: 1}
}
