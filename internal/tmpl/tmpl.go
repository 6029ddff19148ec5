// Package tmpl splits text containing {{name}} placeholders into literal and
// placeholder fragments.
package tmpl

import (
	"fmt"
	"strings"
)

const (
	openDelim  = "{{"
	closeDelim = "}}"
)

// Fragment is one piece of a template.
type Fragment struct {
	value      string
	isVariable bool
}

// IsVariable reports whether the fragment is a placeholder.
func (f *Fragment) IsVariable() bool {
	return f.isVariable
}

// Value returns the literal text, or the placeholder name without its
// delimiters.
func (f *Fragment) Value() string {
	return f.value
}

// Template is a parsed template string.
type Template struct {
	value     string
	fragments []*Fragment
}

// Value returns the original template text.
func (t *Template) Value() string {
	return t.value
}

func (t *Template) Fragments() []*Fragment {
	return t.fragments
}

// Split returns the literal parts around the placeholders and the
// placeholder names, with len(parts) == len(names)+1. Adjacent placeholders
// are separated by an empty part.
func (t *Template) Split() (parts []string, names []string) {
	var current strings.Builder
	for _, f := range t.fragments {
		if f.isVariable {
			parts = append(parts, current.String())
			names = append(names, strings.TrimSpace(f.value))
			current.Reset()
		} else {
			current.WriteString(f.value)
		}
	}
	parts = append(parts, current.String())
	return parts, names
}

// Parse splits s into fragments. A placeholder without a closing delimiter
// is an error.
func Parse(s string) (*Template, error) {
	t := &Template{value: s}
	rest := s
	for rest != "" {
		start := strings.Index(rest, openDelim)
		if start < 0 {
			t.fragments = append(t.fragments, &Fragment{value: rest})
			break
		}
		if start > 0 {
			t.fragments = append(t.fragments, &Fragment{value: rest[:start]})
		}
		rest = rest[start+len(openDelim):]
		end := strings.Index(rest, closeDelim)
		if end < 0 {
			return nil, fmt.Errorf("missing '%s' in template: %s", closeDelim, s)
		}
		t.fragments = append(t.fragments, &Fragment{value: rest[:end], isVariable: true})
		rest = rest[end+len(closeDelim):]
	}
	return t, nil
}
