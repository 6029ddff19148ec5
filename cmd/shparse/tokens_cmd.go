package main

import (
	"fmt"
	"strconv"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/risor-io/shparse/internal/lexer"
	"github.com/risor-io/shparse/internal/table"
	"github.com/risor-io/shparse/internal/token"
)

func (a *app) tokensCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tokens [file]",
		Short: "Print the tokens of a script",
		Args:  cobra.MaximumNArgs(1),
		RunE:  a.runTokens,
	}
	cmd.Flags().StringP("code", "c", "", "script source to read")
	cmd.Flags().Bool("stdin", false, "read the script from stdin")
	cmd.Flags().Int("host-values", 0, "number of host values markers may refer to")
	return cmd
}

func (a *app) runTokens(cmd *cobra.Command, args []string) error {
	in, err := a.readInput(cmd, args)
	if err != nil {
		return err
	}
	hostValues, _ := cmd.Flags().GetInt("host-values")
	l := lexer.New(in.source, lexer.WithFilename(in.filename), lexer.WithHostValues(hostValues))

	keyword := color.New(color.FgMagenta).SprintFunc()
	operator := color.New(color.FgCyan).SprintFunc()

	var rows [][]string
	for {
		tok, err := l.Next()
		if err != nil {
			a.logger.Debug().Err(err).Msg("lexer stopped")
			return reportParseError(cmd, err)
		}
		if tok.Type == token.EOF {
			break
		}
		typ := string(tok.Type)
		switch {
		case token.IsKeyword(tok.Type):
			typ = keyword(typ)
		case !token.IsWordPart(tok.Type) && tok.Type != token.DELIMIT:
			typ = operator(typ)
		}
		var flags string
		if tok.Quoted {
			flags = "quoted"
		}
		rows = append(rows, []string{
			fmt.Sprintf("%d:%d", tok.StartPosition.LineNumber(), tok.StartPosition.ColumnNumber()),
			typ,
			strconv.Quote(tok.Literal),
			flags,
		})
	}

	return table.NewTable(cmd.OutOrStdout()).
		WithHeader([]string{"POS", "TYPE", "LITERAL", "FLAGS"}).
		WithColumnAlignment([]table.Alignment{table.AlignRight, table.AlignLeft, table.AlignLeft, table.AlignLeft}).
		WithHeaderAlignment([]table.Alignment{table.AlignCenter, table.AlignCenter, table.AlignCenter, table.AlignCenter}).
		WithRows(rows).
		Render()
}
