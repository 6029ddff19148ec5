// Package syntax provides AST validation for parsed shell scripts.
package syntax

// SyntaxConfig controls which shell features are disallowed.
// Zero value allows all features (full dialect).
type SyntaxConfig struct {
	// Composition
	DisallowAsync    bool // cmd &
	DisallowPipeline bool // a | b
	DisallowAndOr    bool // a && b, a || b

	// Control flow
	DisallowIf bool // if/elif/else/fi

	// Words
	DisallowCmdSubst       bool // $(...) and `...`
	DisallowGlob           bool // *.txt
	DisallowBraceExpansion bool // {a,b}

	// Commands
	DisallowRedirect   bool // < > >> 2> &> 2>&1 ...
	DisallowHostValues bool // host values as redirect targets
	DisallowAssignment bool // FOO=bar

	// AllowedCommands, if non-empty, lists the only command names that may
	// appear in command position. Names that are not plain text, such as
	// $CMD, are rejected when the list is set.
	AllowedCommands []string
}

// Presets for common use cases.
var (
	// SingleCommand restricts scripts to plain commands with literal or
	// variable arguments. No composition, no control flow, no
	// substitution, no redirection and no assignments.
	SingleCommand = SyntaxConfig{
		DisallowAsync:      true,
		DisallowPipeline:   true,
		DisallowAndOr:      true,
		DisallowIf:         true,
		DisallowCmdSubst:   true,
		DisallowRedirect:   true,
		DisallowHostValues: true,
		DisallowAssignment: true,
	}

	// Restricted allows pipelines, control flow and redirection but no
	// background jobs and no command substitution.
	Restricted = SyntaxConfig{
		DisallowAsync:    true,
		DisallowCmdSubst: true,
	}

	// FullShell allows all features (zero value, default behavior).
	FullShell = SyntaxConfig{}
)

// Presets maps preset names to configurations.
var Presets = map[string]SyntaxConfig{
	"single-command": SingleCommand,
	"restricted":     Restricted,
	"full":           FullShell,
}
