package parser

import (
	"testing"
)

func FuzzParse(f *testing.F) {
	for _, seed := range roundTripInputs {
		f.Add(seed)
	}
	for _, seed := range []string{
		"echo foo & && echo hi",
		"echo (echo foo && echo hi)",
		"echo foo >",
		"if a; then b",
		"echo $(echo 'unterminated",
		"echo ${",
		"\\",
		"$((",
		"`",
		"&>>",
	} {
		f.Add(seed)
	}

	f.Fuzz(func(t *testing.T, input string) {
		script, err := Parse(input)
		if err != nil {
			if _, ok := err.(*Error); !ok {
				t.Fatalf("error is %T, want *Error", err)
			}
			return
		}
		rendered := script.String()
		again, err := Parse(rendered)
		if err != nil {
			t.Fatalf("re-parsing %q (from %q): %v", rendered, input, err)
		}
		if got := again.String(); got != rendered {
			t.Fatalf("rendering is not stable: %q then %q", rendered, got)
		}
	})
}
