package errors

import (
	"cmp"
	"slices"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// MaxSuggestionDistance is the largest edit distance a suggestion may have.
const MaxSuggestionDistance = 3

// MaxSuggestions caps the number of suggestions returned.
const MaxSuggestions = 3

// Suggestion is a candidate word and its edit distance from the input.
type Suggestion struct {
	Value    string
	Distance int
}

// maxEdits returns how many edits a word of n bytes may be away from a
// candidate. Keywords and command names are short, so short words get a
// tighter bound.
func maxEdits(n int) int {
	switch {
	case n <= 3:
		return 1
	case n <= 5:
		return 2
	}
	return MaxSuggestionDistance
}

// SuggestSimilar returns the candidates closest to word, nearest first,
// ties broken alphabetically. Shell words are case sensitive, so an exact
// match is never suggested but a case variant is.
func SuggestSimilar(word string, candidates []string) []Suggestion {
	if word == "" {
		return nil
	}
	limit := maxEdits(len(word))
	var out []Suggestion
	seen := make(map[string]bool, len(candidates))
	for _, c := range candidates {
		if c == "" || c == word || seen[c] {
			continue
		}
		seen[c] = true
		if d := fuzzy.LevenshteinDistance(word, c); d <= limit {
			out = append(out, Suggestion{Value: c, Distance: d})
		}
	}
	slices.SortFunc(out, func(a, b Suggestion) int {
		if n := cmp.Compare(a.Distance, b.Distance); n != 0 {
			return n
		}
		return strings.Compare(a.Value, b.Value)
	})
	if len(out) > MaxSuggestions {
		out = out[:MaxSuggestions]
	}
	return out
}

// FormatSuggestions renders suggestions as a hint line, or "" if there are
// none.
func FormatSuggestions(suggestions []Suggestion) string {
	switch len(suggestions) {
	case 0:
		return ""
	case 1:
		return "Did you mean '" + suggestions[0].Value + "'?"
	}
	quoted := make([]string, len(suggestions))
	for i, s := range suggestions {
		quoted[i] = "'" + s.Value + "'"
	}
	return "Did you mean one of: " + strings.Join(quoted, ", ") + "?"
}
