package parser

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/risor-io/shparse/ast"
)

func TestParseBasic(t *testing.T) {
	got := parseJSON(t, "echo foo")
	assert.JSONEq(t, jscript(jstmt(jcmd("echo", "foo"))), got)
}

func TestParseRedirect(t *testing.T) {
	got := parseJSON(t, "echo foo > lmao.txt")
	want := jscript(jstmt(jcmdDoc{
		args:     []string{jtext("echo"), jtext("foo")},
		redirect: jredirect("stdout"),
		file:     jfile(jtext("lmao.txt")),
	}.String()))
	assert.JSONEq(t, want, got)
}

func TestParseCompoundAtom(t *testing.T) {
	got := parseJSON(t, `"FOO $NICE!"`)
	want := jscript(jstmt(jcmdDoc{
		args: []string{jcompound(false, false, ctext("FOO "), cvar("NICE"), ctext("!"))},
	}.String()))
	assert.JSONEq(t, want, got)
}

func TestParsePipeline(t *testing.T) {
	got := parseJSON(t, "echo > foo.txt | echo hi")
	want := jscript(jstmt(jpipeline(
		jcmdDoc{
			args:     []string{jtext("echo")},
			redirect: jredirect("stdout"),
			file:     jfile(jtext("foo.txt")),
		}.String(),
		jcmd("echo", "hi"),
	)))
	assert.JSONEq(t, want, got)
}

func TestParseBinary(t *testing.T) {
	got := parseJSON(t, "echo foo && echo bar || echo lmao")
	want := jscript(jstmt(
		jbinary("Or",
			jbinary("And", jcmd("echo", "foo"), jcmd("echo", "bar")),
			jcmd("echo", "lmao")),
	))
	assert.JSONEq(t, want, got)
}

func TestParsePrecedence(t *testing.T) {
	got := parseJSON(t, "FOO=bar && echo foo && echo bar | echo lmao | cat > foo.txt")
	want := jscript(jstmt(
		jbinary("And",
			jbinary("And",
				jassign(jassignment("FOO", jtext("bar"))),
				jcmd("echo", "foo")),
			jpipeline(
				jcmd("echo", "bar"),
				jcmd("echo", "lmao"),
				jcmdDoc{
					args:     []string{jtext("cat")},
					redirect: jredirect("stdout"),
					file:     jfile(jtext("foo.txt")),
				}.String(),
			)),
	))
	assert.JSONEq(t, want, got)
}

func TestParseAssigns(t *testing.T) {
	got := parseJSON(t, "FOO=bar BAR=baz export LMAO=nice")
	want := jscript(jstmt(jcmdDoc{
		assigns: []string{
			jassignment("FOO", jtext("bar")),
			jassignment("BAR", jtext("baz")),
		},
		args: []string{jtext("export"), jtext("LMAO=nice")},
	}.String()))
	assert.JSONEq(t, want, got)
}

func TestParseHostRedirect(t *testing.T) {
	tmpl, err := NewTemplate(
		[]string{"echo foo > ", " && echo foo > ", ""},
		make([]byte, 16), make([]byte, 16))
	require.NoError(t, err)
	require.Len(t, tmpl.Values, 2)

	script, err := ParseTemplate(tmpl)
	require.NoError(t, err)
	got, err := script.MarshalJSON()
	require.NoError(t, err)

	cmd := func(idx int) string {
		return jcmdDoc{
			args:     []string{jtext("echo"), jtext("foo")},
			redirect: jredirect("stdout"),
			file:     jbuf(idx),
		}.String()
	}
	want := jscript(jstmt(jbinary("And", cmd(0), cmd(1))))
	assert.JSONEq(t, want, string(got))
}

func TestParseCmdSubst(t *testing.T) {
	got := parseJSON(t, `echo "$(echo 1; echo 2)"`)
	want := jscript(jstmt(jcmdDoc{
		args: []string{
			jtext("echo"),
			jsubst(true, jstmt(jcmd("echo", "1")), jstmt(jcmd("echo", "2"))),
		},
	}.String()))
	assert.JSONEq(t, want, got)
}

func TestParseCmdSubstUnquoted(t *testing.T) {
	got := parseJSON(t, "echo $(ls foo) && echo nice")
	want := jscript(jstmt(jbinary("And",
		jcmdDoc{args: []string{
			jtext("echo"),
			jsubst(false, jstmt(jcmd("ls", "foo"))),
		}}.String(),
		jcmd("echo", "nice"),
	)))
	assert.JSONEq(t, want, got)
}

func TestParseCmdSubstAssignAndVar(t *testing.T) {
	got := parseJSON(t, "echo $(FOO=bar $FOO)")
	inner := jcmdDoc{
		assigns: []string{jassignment("FOO", jtext("bar"))},
		args:    []string{jvar("FOO")},
	}.String()
	want := jscript(jstmt(jcmdDoc{
		args: []string{jtext("echo"), jsubst(false, jstmt(inner))},
	}.String()))
	assert.JSONEq(t, want, got)
}

func TestParseAssignStatement(t *testing.T) {
	got := parseJSON(t, "FOO=bar BAR=baz; BUN_DEBUG_QUIET_LOGS=1 echo")
	want := jscript(
		jstmt(jassign(
			jassignment("FOO", jtext("bar")),
			jassignment("BAR", jtext("baz")),
		)),
		jstmt(jcmdDoc{
			assigns: []string{jassignment("BUN_DEBUG_QUIET_LOGS", jtext("1"))},
			args:    []string{jtext("echo")},
		}.String()),
	)
	assert.JSONEq(t, want, got)
}

func TestParseIf(t *testing.T) {
	want := jscript(jstmt(jif(
		jstmts(jstmt(jcmd("echo", "hi"))),
		jstmts(jstmt(jcmd("echo", "lmao"))),
		jstmts(jstmt(jcmd("echo", "lol"))),
	)))
	inputs := []string{
		"if echo hi; then echo lmao; else echo lol; fi",
		"if echo hi\n      then echo lmao\n      else echo lol\n      fi",
	}
	for _, input := range inputs {
		assert.JSONEq(t, want, parseJSON(t, input), input)
	}
}

func TestParseElif(t *testing.T) {
	got := parseJSON(t, "if a; then b; elif c; then d; else e; fi")
	want := jscript(jstmt(jif(
		jstmts(jstmt(jcmd("a"))),
		jstmts(jstmt(jcmd("b"))),
		jstmts(jstmt(jcmd("c"))),
		jstmts(jstmt(jcmd("d"))),
		jstmts(jstmt(jcmd("e"))),
	)))
	assert.JSONEq(t, want, got)

	// Each elif adds its condition and its body; else adds one body.
	tests := []struct {
		input string
		elifs int
		parts int
	}{
		{"if a; then b; fi", 0, 0},
		{"if a; then b; else c; fi", 0, 1},
		{"if a; then b; elif c; then d; fi", 1, 2},
		{"if a; then b; elif c; then d; else e; fi", 1, 3},
		{"if a; then b; elif c; then d; elif e; then f; fi", 2, 4},
		{"if a; then b; elif c; then d; elif e; then f; else g; fi", 2, 5},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			script, err := Parse(tt.input)
			require.NoError(t, err)
			clause := script.Stmts[0].Exprs[0].(*ast.If)
			_, hasElse := clause.Else()
			want := 2 * tt.elifs
			if hasElse {
				want++
			}
			assert.Equal(t, tt.parts, want)
			assert.Len(t, clause.ElseParts, want)
			assert.Len(t, clause.Elifs(), tt.elifs)
			assert.Equal(t, strings.Contains(tt.input, "else"), hasElse)
		})
	}
}

func TestParseIfInPipeline(t *testing.T) {
	got := parseJSON(t, "if echo hi; then echo lmao; else echo lol; fi | cat")
	want := jscript(jstmt(jpipeline(
		jif(
			jstmts(jstmt(jcmd("echo", "hi"))),
			jstmts(jstmt(jcmd("echo", "lmao"))),
			jstmts(jstmt(jcmd("echo", "lol"))),
		),
		jcmd("cat"),
	)))
	assert.JSONEq(t, want, got)
}

func TestParseAsync(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{
			"echo hi && echo foo &",
			jscript(jstmt(jbinary("And", jcmd("echo", "hi"), jasync(jcmd("echo", "foo"))))),
		},
		{
			"echo hi | echo foo &",
			jscript(jstmt(jasync(jpipeline(jcmd("echo", "hi"), jcmd("echo", "foo"))))),
		},
		{
			"echo a & echo b",
			jscript(jstmt(jasync(jcmd("echo", "a")), jcmd("echo", "b"))),
		},
		{
			"echo a & echo b &",
			jscript(jstmt(jasync(jcmd("echo", "a")), jasync(jcmd("echo", "b")))),
		},
		{
			"echo a &; echo b",
			jscript(jstmt(jasync(jcmd("echo", "a"))), jstmt(jcmd("echo", "b"))),
		},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.JSONEq(t, tt.want, parseJSON(t, tt.input))
		})
	}
}

func TestParseEmpty(t *testing.T) {
	for _, input := range []string{"", "   ", "\n\n", "# just a comment", ";"} {
		script, err := Parse(input)
		require.NoError(t, err, input)
		assert.Empty(t, script.Stmts, input)
		assert.NotNil(t, script.Stmts, input)
	}
	assert.JSONEq(t, `{"stmts":[]}`, parseJSON(t, ""))
}

func TestParseRedirectForms(t *testing.T) {
	tests := []struct {
		input string
		flags []string
		file  string
	}{
		{"cat < in.txt", []string{"stdin"}, "in.txt"},
		{"echo hi >> log", []string{"stdout", "append"}, "log"},
		{"echo hi 1> log", []string{"stdout"}, "log"},
		{"echo hi 2> err", []string{"stderr"}, "err"},
		{"echo hi 2>> err", []string{"stderr", "append"}, "err"},
		{"echo hi &> all", []string{"stdout", "stderr"}, "all"},
		{"echo hi &>> all", []string{"stdout", "stderr", "append"}, "all"},
		{"echo hi 2>&1", []string{"stderr", "duplicate_out"}, ""},
		{"echo hi 1>&2", []string{"stdout", "duplicate_out"}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			file := ""
			if tt.file != "" {
				file = jfile(jtext(tt.file))
			}
			script, err := Parse(tt.input)
			require.NoError(t, err)
			cmd := script.Stmts[0].Exprs[0].(*ast.Cmd)
			args := make([]string, len(cmd.NameAndArgs))
			for i, a := range cmd.NameAndArgs {
				args[i] = jtext(a.(*ast.Text).Value)
			}
			want := jscript(jstmt(jcmdDoc{
				args:     args,
				redirect: jredirect(tt.flags...),
				file:     file,
			}.String()))
			assert.JSONEq(t, want, parseJSON(t, tt.input))
		})
	}
}

func TestParseRedirectOnly(t *testing.T) {
	script, err := Parse("> out.txt")
	require.NoError(t, err)
	cmd, ok := script.Stmts[0].Exprs[0].(*ast.Cmd)
	require.True(t, ok)
	assert.Empty(t, cmd.NameAndArgs)
	assert.True(t, cmd.Redirect.Has(ast.Stdout))
}

func TestParseWords(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{`echo 'a b'`, jtext("a b")},
		{`echo a\ b`, jtext("a b")},
		{`echo ""`, jtext("")},
		{`echo "$HOME"`, jvar("HOME")},
		{`echo ${HOME}`, jvar("HOME")},
		{`echo $1`, jvar("1")},
		{`echo $`, jtext("$")},
		{`echo pre$X`, jcompound(false, false, ctext("pre"), cvar("X"))},
		{`echo *.txt`, jcompound(false, true, ctext("*.txt"))},
		{`echo '*.txt'`, jtext("*.txt")},
		{`echo {a,b}`, jcompound(true, false, ctext("{a,b}"))},
		{`echo "{a,b}"`, jtext("{a,b}")},
		{`echo a"b"'c'`, jtext("abc")},
		{"echo `ls`", jsubst(false, jstmt(jcmd("ls")))},
		{`echo x$(pwd)`, jcompound(false, false, ctext("x"), `{"cmd_subst":{"script":`+jscript(jstmt(jcmd("pwd")))+`,"quoted":false}}`)},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			want := jscript(jstmt(jcmdDoc{args: []string{jtext("echo"), tt.want}}.String()))
			assert.JSONEq(t, want, parseJSON(t, tt.input))
		})
	}
}

func TestParseAssignmentValues(t *testing.T) {
	tests := []struct {
		input string
		value string
	}{
		{"FOO=", jtext("")},
		{`FOO=""`, jtext("")},
		{`FOO="a b"`, jtext("a b")},
		{"FOO=$BAR", jvar("BAR")},
		{"FOO=a$BAR", jcompound(false, false, ctext("a"), cvar("BAR"))},
		{"FOO=a=b", jtext("a=b")},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			want := jscript(jstmt(jassign(jassignment("FOO", tt.value))))
			assert.JSONEq(t, want, parseJSON(t, tt.input))
		})
	}
}

func TestParseNotAssignments(t *testing.T) {
	for _, input := range []string{`"FOO=bar"`, `=bar`, `1FOO=bar`, `$X=bar`} {
		script, err := Parse(input)
		require.NoError(t, err, input)
		cmd, ok := script.Stmts[0].Exprs[0].(*ast.Cmd)
		require.True(t, ok, input)
		assert.Empty(t, cmd.Assigns, input)
		assert.Len(t, cmd.NameAndArgs, 1, input)
	}
}

func TestParseKeywordsAsArguments(t *testing.T) {
	got := parseJSON(t, "echo if then fi")
	assert.JSONEq(t, jscript(jstmt(jcmd("echo", "if", "then", "fi"))), got)
}

func TestParseKeywordsAfterFi(t *testing.T) {
	script, err := Parse("if a; then b; fi; if c; then d; fi")
	require.NoError(t, err)
	require.Len(t, script.Stmts, 2)
	for _, stmt := range script.Stmts {
		_, ok := stmt.Exprs[0].(*ast.If)
		assert.True(t, ok)
	}
}

func TestParseNewlineAfterOperators(t *testing.T) {
	got := parseJSON(t, "echo a &&\n  echo b |\n  cat")
	want := jscript(jstmt(jbinary("And",
		jcmd("echo", "a"),
		jpipeline(jcmd("echo", "b"), jcmd("cat")))))
	assert.JSONEq(t, want, got)
}

func TestParsePositions(t *testing.T) {
	script, err := Parse("echo foo\nFOO=1 cat > out", WithFilename("run.sh"))
	require.NoError(t, err)
	require.Len(t, script.Stmts, 2)

	echo := script.Stmts[0].Exprs[0].(*ast.Cmd)
	assert.Equal(t, 0, echo.Pos().Char)
	assert.Equal(t, 8, echo.End().Char)
	assert.Equal(t, "run.sh", echo.Pos().File)

	cat := script.Stmts[1].Exprs[0].(*ast.Cmd)
	assert.Equal(t, 9, cat.Pos().Char)
	assert.Equal(t, 1, cat.Pos().Line)
	assert.Equal(t, 0, cat.Pos().Column)
	assert.Equal(t, 24, cat.End().Char)

	value := cat.Assigns[0].Value.(*ast.Text)
	assert.Equal(t, 13, value.Pos().Char)
	assert.Equal(t, 4, value.Pos().Column)

	target := cat.RedirectFile.(*ast.FileTarget)
	assert.Equal(t, 21, target.Pos().Char)
}

func TestParseSubstPositionsAreAbsolute(t *testing.T) {
	script, err := Parse("echo a\necho $(ls  dir)")
	require.NoError(t, err)
	cmd := script.Stmts[1].Exprs[0].(*ast.Cmd)
	subst := cmd.NameAndArgs[1].(*ast.CmdSubst)
	assert.Equal(t, 12, subst.Pos().Char)
	assert.Equal(t, 22, subst.End().Char)

	inner := subst.Script.Stmts[0].Exprs[0].(*ast.Cmd)
	dir := inner.NameAndArgs[1].(*ast.Text)
	assert.Equal(t, 18, dir.Pos().Char)
	assert.Equal(t, 1, dir.Pos().Line)
	assert.Equal(t, 11, dir.Pos().Column)
}

func TestParseMaxDepth(t *testing.T) {
	nested := "if a; then if b; then if c; then d; fi; fi; fi"
	_, err := Parse(nested, WithMaxDepth(3))
	require.NoError(t, err)

	perr := parseErr(t, nested, WithMaxDepth(2))
	assert.Equal(t, NestingTooDeep, perr.Kind)
	assert.Equal(t, "Maximum nesting depth exceeded", perr.Error())

	perr = parseErr(t, "echo $(echo $(echo $(echo hi)))", WithMaxDepth(2))
	assert.Equal(t, NestingTooDeep, perr.Kind)
}

func TestParseMaxDepthQuoted(t *testing.T) {
	nested := func(n int) string {
		return "echo " + strings.Repeat(`"$(`, n) + "x" + strings.Repeat(`)"`, n)
	}
	_, err := Parse(nested(3), WithMaxDepth(3))
	require.NoError(t, err)

	perr := parseErr(t, nested(4), WithMaxDepth(3))
	assert.Equal(t, NestingTooDeep, perr.Kind)

	perr = parseErr(t, nested(100000))
	assert.Equal(t, NestingTooDeep, perr.Kind)
	assert.Equal(t, "Maximum nesting depth exceeded", perr.Error())
	assert.Equal(t, 6, perr.StartPosition().Char)

	// Substitutions already entered count against the limit.
	perr = parseErr(t, `if a; then echo "$("$(x)")"; fi`, WithMaxDepth(2))
	assert.Equal(t, NestingTooDeep, perr.Kind)
	_, err = Parse(`if a; then echo "$("$(x)")"; fi`, WithMaxDepth(3))
	require.NoError(t, err)
}

func TestParseTemplateQuoting(t *testing.T) {
	tmpl, err := NewTemplate([]string{"echo ", " ", " ", " ", ""},
		"it's here", []string{"a b", "c"}, 42, Raw("| cat"))
	require.NoError(t, err)
	assert.Equal(t, `echo 'it'\''s here' 'a b' 'c' 42 | cat`, tmpl.Source)
	assert.Empty(t, tmpl.Values)

	script, err := ParseTemplate(tmpl)
	require.NoError(t, err)
	pipeline := script.Stmts[0].Exprs[0].(*ast.Pipeline)
	echo := pipeline.Items[0].(*ast.Cmd)
	require.Len(t, echo.NameAndArgs, 5)
	assert.Equal(t, "it's here", echo.NameAndArgs[1].(*ast.Text).Value)
	assert.Equal(t, "a b", echo.NameAndArgs[2].(*ast.Text).Value)
}

func TestParseTemplateQuotedHostValue(t *testing.T) {
	tests := [][]string{
		{"echo '", "'"},
		{"echo 'a ", " b'"},
		{`echo "`, `"`},
		{`echo \`, ""},
	}
	for _, parts := range tests {
		t.Run(strings.Join(parts, "_"), func(t *testing.T) {
			tmpl, err := NewTemplate(parts, []byte("buf"))
			require.NoError(t, err)
			require.Len(t, tmpl.Values, 1)
			_, err = ParseTemplate(tmpl)
			require.Error(t, err)
			perr, ok := err.(*Error)
			require.True(t, ok)
			assert.Equal(t, UnexpectedHostValue, perr.Kind)
			assert.Equal(t, `expected a command or assignment but got: "HostRef"`, perr.Error())
		})
	}
}

func TestNewTemplateErrors(t *testing.T) {
	_, err := NewTemplate([]string{"echo "}, "x")
	require.Error(t, err)

	_, err = NewTemplate([]string{"echo \uE000"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reserved host value marker")
}
