package parser

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/require"

	"github.com/risor-io/shparse/ast"
	"github.com/risor-io/shparse/internal/token"
)

// The helpers below build expected JSON documents in the tree format
// produced by (*ast.Script).MarshalJSON.

func jstr(s string) string {
	b, err := json.Marshal(s)
	if err != nil {
		panic(err)
	}
	return string(b)
}

func jscript(stmts ...string) string {
	return `{"stmts":[` + strings.Join(stmts, ",") + `]}`
}

func jstmt(exprs ...string) string {
	return `{"exprs":[` + strings.Join(exprs, ",") + `]}`
}

func jtext(s string) string { return `{"simple":{"Text":` + jstr(s) + `}}` }
func jvar(s string) string  { return `{"simple":{"Var":` + jstr(s) + `}}` }

// ctext and cvar are compound parts, which are not wrapped in "simple".
func ctext(s string) string { return `{"Text":` + jstr(s) + `}` }
func cvar(s string) string  { return `{"Var":` + jstr(s) + `}` }

func jsubst(quoted bool, stmts ...string) string {
	return fmt.Sprintf(`{"simple":{"cmd_subst":{"script":%s,"quoted":%t}}}`, jscript(stmts...), quoted)
}

func jcompound(brace, glob bool, atoms ...string) string {
	return fmt.Sprintf(`{"compound":{"atoms":[%s],"brace_expansion_hint":%t,"glob_hint":%t}}`,
		strings.Join(atoms, ","), brace, glob)
}

func jredirect(flags ...string) string {
	set := map[string]bool{}
	for _, f := range flags {
		set[f] = true
	}
	return fmt.Sprintf(`{"stdin":%t,"stdout":%t,"stderr":%t,"append":%t,"duplicate_out":%t,"__unused":0}`,
		set["stdin"], set["stdout"], set["stderr"], set["append"], set["duplicate_out"])
}

func jassignment(label, value string) string {
	return `{"label":` + jstr(label) + `,"value":` + value + `}`
}

type jcmdDoc struct {
	assigns  []string
	args     []string
	redirect string
	file     string
}

func (c jcmdDoc) String() string {
	redirect := c.redirect
	if redirect == "" {
		redirect = jredirect()
	}
	file := c.file
	if file == "" {
		file = "null"
	}
	return fmt.Sprintf(`{"cmd":{"assigns":[%s],"name_and_args":[%s],"redirect":%s,"redirect_file":%s}}`,
		strings.Join(c.assigns, ","), strings.Join(c.args, ","), redirect, file)
}

// jcmd is a plain command whose words are all simple text.
func jcmd(words ...string) string {
	args := make([]string, len(words))
	for i, w := range words {
		args[i] = jtext(w)
	}
	return jcmdDoc{args: args}.String()
}

func jfile(atom string) string { return `{"atom":` + atom + `}` }
func jbuf(idx int) string      { return fmt.Sprintf(`{"jsbuf":{"idx":%d}}`, idx) }

func jassign(assigns ...string) string {
	return `{"assign":[` + strings.Join(assigns, ",") + `]}`
}

func jpipeline(items ...string) string {
	return `{"pipeline":{"items":[` + strings.Join(items, ",") + `]}}`
}

func jbinary(op, left, right string) string {
	return `{"binary":{"op":` + jstr(op) + `,"left":` + left + `,"right":` + right + `}}`
}

func jasync(x string) string { return `{"async":` + x + `}` }

func jstmts(stmts ...string) string { return "[" + strings.Join(stmts, ",") + "]" }

func jif(cond, then string, elseParts ...string) string {
	return `{"if":{"cond":` + cond + `,"then":` + then + `,"else_parts":[` + strings.Join(elseParts, ",") + `]}}`
}

// parseJSON parses src and returns its JSON encoding.
func parseJSON(t *testing.T, src string, opts ...Option) string {
	t.Helper()
	script, err := Parse(src, opts...)
	require.NoError(t, err)
	b, err := json.Marshal(script)
	require.NoError(t, err)
	return string(b)
}

// parseErr parses src, requires it to fail and returns the *Error.
func parseErr(t *testing.T, src string, opts ...Option) *Error {
	t.Helper()
	_, err := Parse(src, opts...)
	require.Error(t, err)
	perr, ok := err.(*Error)
	require.True(t, ok, "expected *Error, got %T", err)
	return perr
}

var ignorePositions = cmpopts.IgnoreTypes(token.Position{})

// requireSameTree fails unless the scripts are equal apart from positions.
func requireSameTree(t *testing.T, want, got *ast.Script) {
	t.Helper()
	if diff := cmp.Diff(want, got, ignorePositions); diff != "" {
		t.Fatalf("tree mismatch (-want +got):\n%s", diff)
	}
}
