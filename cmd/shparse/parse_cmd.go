package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/risor-io/shparse/codec"
)

func (a *app) parseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "parse [file]",
		Short: "Print the syntax tree of a script",
		Long: `Parse a script and print its syntax tree.

The tree is written as JSON by default. YAML and canonical CBOR carry the
same document shape. With --template, {{name}} placeholders become host
values, which are only accepted as redirection targets.`,
		Args: cobra.MaximumNArgs(1),
		RunE: a.runParse,
	}
	addInputFlags(cmd)
	cmd.Flags().StringP("output", "o", "json", "output format (json, yaml, cbor)")
	cmd.Flags().Bool("validate", false, "check the JSON tree against the schema before printing")
	cmd.RegisterFlagCompletionFunc("output", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		names := make([]string, len(codec.Formats))
		for i, f := range codec.Formats {
			names[i] = string(f)
		}
		return names, cobra.ShellCompDirectiveNoFileComp
	})
	return cmd
}

func (a *app) runParse(cmd *cobra.Command, args []string) error {
	name, _ := cmd.Flags().GetString("output")
	format, err := codec.ParseFormat(name)
	if err != nil {
		return err
	}
	in, script, err := a.parse(cmd, args)
	if err != nil {
		return reportParseError(cmd, err)
	}
	for i, host := range in.hosts {
		a.logger.Info().Int("idx", i).Str("name", host).Msg("host value")
	}

	if validate, _ := cmd.Flags().GetBool("validate"); validate {
		if err := codec.ValidateScript(script); err != nil {
			return fmt.Errorf("tree does not match schema: %w", err)
		}
	}

	data, err := codec.Marshal(script, format)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	switch format {
	case codec.JSON:
		return writeJSON(out, data, color.NoColor)
	case codec.CBOR:
		if isTerminal(out) {
			_, err = fmt.Fprintf(out, "%x\n", data)
			return err
		}
	}
	_, err = out.Write(data)
	return err
}

func (a *app) schemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the JSON schema of the syntax tree",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprint(cmd.OutOrStdout(), codec.Schema)
			return err
		},
	}
}
