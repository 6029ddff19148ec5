package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/risor-io/shparse/internal/lexer"
)

var roundTripInputs = []string{
	"echo foo",
	"echo foo > lmao.txt",
	`"FOO $NICE!"`,
	"echo > foo.txt | echo hi",
	"echo foo && echo bar || echo lmao",
	"FOO=bar && echo foo && echo bar | echo lmao | cat > foo.txt",
	"FOO=bar BAR=baz export LMAO=nice",
	`echo "$(echo 1; echo 2)"`,
	"echo $(ls foo) && echo nice",
	"echo `ls -la`",
	"if echo hi; then echo lmao; else echo lol; fi",
	"if a; then b; elif c; then d; else e; fi",
	"if a; then b; fi | cat",
	"if then fi",
	"echo hi && echo foo &",
	"echo hi | echo foo &",
	"echo a & echo b &",
	"echo $(FOO=bar $FOO)",
	"FOO=bar BAR=baz; BUN_DEBUG_QUIET_LOGS=1 echo",
	"FOO= BAR='' BAZ=\"a b\"",
	"echo '' 'it'\\''s' 'a b'",
	"echo 'if' then",
	"'if' x",
	"echo *.txt {a,b} 'lit*' \"{x,y}\"",
	`echo "["*`,
	"echo pre$X${Y}post $1 $? '$'",
	`echo "x$(pwd)" x"$(pwd)"y`,
	"> out.txt",
	"cat < in",
	"cat 2>&1",
	"echo hi 2>> err.log",
	"echo $(echo $(echo deep))",
	"echo $(echo ')')",
	"echo 'line one\nline two'",
	"echo héllo wörld",
	"a=1\nb=2\necho $a$b",
}

func TestStringRoundTrip(t *testing.T) {
	for _, input := range roundTripInputs {
		t.Run(input, func(t *testing.T) {
			first, err := Parse(input)
			require.NoError(t, err)

			rendered := first.String()
			second, err := Parse(rendered)
			require.NoError(t, err, "re-parsing %q", rendered)
			requireSameTree(t, first, second)

			// Rendering is a fixed point after one pass.
			assert.Equal(t, rendered, second.String())
		})
	}
}

func TestStringRoundTripHostTarget(t *testing.T) {
	tmpl, err := NewTemplate([]string{"echo foo > ", " && cat < ", ""}, []byte("a"), []byte("b"))
	require.NoError(t, err)
	first, err := ParseTemplate(tmpl)
	require.NoError(t, err)

	rendered := first.String()
	assert.Equal(t, "echo foo > "+lexer.HostMarker(0)+" && cat < "+lexer.HostMarker(1), rendered)

	second, err := Parse(rendered, WithHostValues(2))
	require.NoError(t, err)
	requireSameTree(t, first, second)
}

func TestStringRendering(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"echo   foo\t bar", "echo foo bar"},
		{"echo foo\necho bar", "echo foo; echo bar"},
		{"echo a\\ b", "echo 'a b'"},
		{`echo "plain"`, "echo plain"},
		{"echo `pwd`", "echo $(pwd)"},
		{"FOO=1 echo", "FOO=1 echo"},
		{"echo x >& log", "echo x &> log"},
		{"echo x >&2", "echo x 1>&2"},
		{"echo x 1>> log", "echo x >> log"},
		{`echo "a $B c"`, "echo a' '${B}' 'c"},
		{"if a\nthen\n  b\nfi", "if a; then b; fi"},
		{"echo a &&\n echo b", "echo a && echo b"},
		{"echo a # trailing comment", "echo a"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			script, err := Parse(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, script.String())
		})
	}
}
