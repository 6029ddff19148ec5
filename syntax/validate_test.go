package syntax

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/risor-io/shparse/ast"
	"github.com/risor-io/shparse/errors"
	"github.com/risor-io/shparse/parser"
)

func parse(t *testing.T, source string) *ast.Script {
	t.Helper()
	script, err := parser.Parse(source)
	require.NoError(t, err)
	return script
}

func TestSyntaxValidator(t *testing.T) {
	tests := []struct {
		name    string
		config  SyntaxConfig
		source  string
		wantErr string
	}{
		{"async allowed", FullShell, "sleep 1 &", ""},
		{"async", SyntaxConfig{DisallowAsync: true}, "sleep 1 &", "background commands are not allowed"},
		{"pipeline", SyntaxConfig{DisallowPipeline: true}, "ls | wc -l", "pipelines are not allowed"},
		{"and", SyntaxConfig{DisallowAndOr: true}, "a && b", "&& is not allowed"},
		{"or", SyntaxConfig{DisallowAndOr: true}, "a || b", "|| is not allowed"},
		{"if", SyntaxConfig{DisallowIf: true}, "if a; then b; fi", "if clauses are not allowed"},
		{"cmd subst", SyntaxConfig{DisallowCmdSubst: true}, "echo $(date)", "command substitution is not allowed"},
		{"backtick", SyntaxConfig{DisallowCmdSubst: true}, "echo `date`", "command substitution is not allowed"},
		{"glob", SyntaxConfig{DisallowGlob: true}, "ls *.go", "glob patterns are not allowed"},
		{"quoted glob", SyntaxConfig{DisallowGlob: true}, "ls '*.go'", ""},
		{"brace", SyntaxConfig{DisallowBraceExpansion: true}, "echo {a,b}", "brace expansion is not allowed"},
		{"redirect", SyntaxConfig{DisallowRedirect: true}, "echo hi > out", "redirections are not allowed"},
		{"dup redirect", SyntaxConfig{DisallowRedirect: true}, "echo hi 2>&1", "redirections are not allowed"},
		{"assignment", SyntaxConfig{DisallowAssignment: true}, "FOO=bar", "variable assignments are not allowed"},
		{"cmd assignment", SyntaxConfig{DisallowAssignment: true}, "FOO=bar env", "variable assignments are not allowed"},
		{"plain command", SingleCommand, "echo hello $USER", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := NewSyntaxValidator(tt.config).Validate(parse(t, tt.source))
			if tt.wantErr == "" {
				assert.Empty(t, errs)
				return
			}
			require.Len(t, errs, 1)
			assert.Equal(t, tt.wantErr, errs[0].Message)
			assert.Equal(t, errors.E2001, errs[0].Code)
		})
	}
}

func TestSyntaxValidatorHostValues(t *testing.T) {
	tmpl, err := parser.NewTemplate([]string{"echo hi > ", ""}, []byte{})
	require.NoError(t, err)
	script, err := parser.ParseTemplate(tmpl)
	require.NoError(t, err)

	errs := NewSyntaxValidator(SyntaxConfig{DisallowHostValues: true}).Validate(script)
	require.Len(t, errs, 1)
	assert.Equal(t, "host value references are not allowed", errs[0].Message)
	assert.Equal(t, 10, errs[0].Position.Char)
}

func TestSyntaxValidatorNestedSubstitution(t *testing.T) {
	script := parse(t, "echo $(cat a | sort) && wc -l")
	errs := NewSyntaxValidator(SyntaxConfig{DisallowPipeline: true, DisallowAndOr: true}).Validate(script)
	require.Len(t, errs, 2)
	assert.Equal(t, "&& is not allowed", errs[0].Message)
	assert.Equal(t, "pipelines are not allowed", errs[1].Message)
	assert.Equal(t, 7, errs[1].Position.Char)
}

func TestAllowedCommands(t *testing.T) {
	config := SyntaxConfig{AllowedCommands: []string{"echo", "grep", "sort"}}
	validator := NewSyntaxValidator(config)

	assert.Empty(t, validator.Validate(parse(t, "echo hi | grep h | sort")))
	assert.Empty(t, validator.Validate(parse(t, "> empty.txt")))

	errs := validator.Validate(parse(t, "echo hi | gerp h"))
	require.Len(t, errs, 1)
	assert.Equal(t, `command "gerp" is not allowed`, errs[0].Message)
	require.NotEmpty(t, errs[0].Suggestions)
	assert.Equal(t, "grep", errs[0].Suggestions[0].Value)

	errs = validator.Validate(parse(t, "$CMD arg"))
	require.Len(t, errs, 1)
	assert.Equal(t, "command name must be a literal when commands are restricted", errs[0].Message)

	errs = validator.Validate(parse(t, "echo $(rm -rf x)"))
	require.Len(t, errs, 1)
	assert.Equal(t, `command "rm" is not allowed`, errs[0].Message)
}

func TestPresets(t *testing.T) {
	tests := []struct {
		preset  string
		source  string
		wantErr bool
	}{
		{"single-command", "ls -la /tmp", false},
		{"single-command", "ls | wc", true},
		{"single-command", "a && b", true},
		{"single-command", "FOO=1 ls", true},
		{"single-command", "ls > out", true},
		{"single-command", "ls $(pwd)", true},
		{"restricted", "ls | wc > out", false},
		{"restricted", "if a; then b; fi", false},
		{"restricted", "sleep 5 &", true},
		{"restricted", "echo `id`", true},
		{"full", "sleep 5 & echo $(id) | cat > out", false},
	}
	for _, tt := range tests {
		t.Run(tt.preset+"/"+tt.source, func(t *testing.T) {
			config, ok := Presets[tt.preset]
			require.True(t, ok)
			errs := NewSyntaxValidator(config).Validate(parse(t, tt.source))
			if tt.wantErr {
				assert.NotEmpty(t, errs, "expected error for: %s", tt.source)
			} else {
				assert.Empty(t, errs, "unexpected error for: %s", tt.source)
			}
		})
	}
}

func TestValidationErrorString(t *testing.T) {
	script, err := parser.Parse("echo a\nsleep 1 &", parser.WithFilename("job.sh"))
	require.NoError(t, err)
	errs := NewSyntaxValidator(SyntaxConfig{DisallowAsync: true}).Validate(script)
	require.Len(t, errs, 1)
	assert.Equal(t, "background commands are not allowed at job.sh:2:1", errs[0].Error())

	noFile := ValidationError{Message: "bad", Position: errs[0].Position}
	noFile.Position.File = ""
	assert.Equal(t, "bad at line 2, column 1", noFile.Error())
}

func TestValidatorFunc(t *testing.T) {
	called := false
	validator := ValidatorFunc(func(s *ast.Script) []ValidationError {
		called = true
		return []ValidationError{{Message: "custom error"}}
	})

	errs := validator.Validate(parse(t, "echo"))
	assert.True(t, called)
	require.Len(t, errs, 1)
	assert.Equal(t, "custom error", errs[0].Message)
}
