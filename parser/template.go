package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/risor-io/shparse/ast"
	"github.com/risor-io/shparse/internal/lexer"
)

// Raw is inserted into a template verbatim, without quoting.
type Raw string

// Template is shell source with host values spliced in as markers. Values[i]
// is the value referred to by the marker with index i.
type Template struct {
	Source string
	Values []any
}

// NewTemplate joins the literal parts of a template with the interpolated
// args placed between them, so len(parts) must be len(args)+1.
//
// Strings, numbers and booleans are quoted inline and become ordinary shell
// words. A []string expands to one quoted word per element. Raw values are
// inserted as-is. Any other value is kept in Values and replaced by a marker
// that the parser accepts only as a redirection target.
func NewTemplate(parts []string, args ...any) (*Template, error) {
	if len(parts) != len(args)+1 {
		return nil, fmt.Errorf("template has %d parts for %d values; expected %d",
			len(parts), len(args), len(args)+1)
	}
	t := &Template{Values: []any{}}
	var sb strings.Builder
	for i, part := range parts {
		if strings.ContainsRune(part, lexer.HostMarkerOpen) ||
			strings.ContainsRune(part, lexer.HostMarkerClose) {
			return nil, fmt.Errorf("template part %d contains a reserved host value marker", i)
		}
		sb.WriteString(part)
		if i == len(args) {
			break
		}
		sb.WriteString(t.interpolate(args[i]))
	}
	t.Source = sb.String()
	return t, nil
}

func (t *Template) interpolate(arg any) string {
	switch v := arg.(type) {
	case Raw:
		return string(v)
	case string:
		return quote(v)
	case []string:
		words := make([]string, len(v))
		for i, s := range v {
			words[i] = quote(s)
		}
		return strings.Join(words, " ")
	case bool:
		return strconv.FormatBool(v)
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return fmt.Sprintf("%d", v)
	case float32:
		return strconv.FormatFloat(float64(v), 'g', -1, 32)
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	}
	marker := lexer.HostMarker(len(t.Values))
	t.Values = append(t.Values, arg)
	return marker
}

// quote returns s as a single-quoted shell word.
func quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

// ParseTemplate parses the template source with its host value table.
func ParseTemplate(t *Template, options ...Option) (*ast.Script, error) {
	options = append(options[:len(options):len(options)], WithHostValues(len(t.Values)))
	return Parse(t.Source, options...)
}
