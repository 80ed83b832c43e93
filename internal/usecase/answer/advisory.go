package answer

import "strings"

// Advisory appends a fixed sentence to rule-based answers when one of its
// keywords appears in the question. The table is operator configuration, not
// code: extending it needs no change to the composition algorithm.
type Advisory struct {
	Name     string
	Keywords []string
	Advice   string
}

// Matches reports whether any keyword occurs in the lowercased question.
func (a Advisory) Matches(loweredQuestion string) bool {
	for _, kw := range a.Keywords {
		if kw != "" && strings.Contains(loweredQuestion, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}
