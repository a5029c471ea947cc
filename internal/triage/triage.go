package triage

import (
	"strings"
	"unicode/utf8"
)

// Terms splits topic into lowercase search terms, dropping terms of two
// runes or fewer.
func Terms(topic string) []string {
	var terms []string
	for _, f := range strings.Fields(strings.ToLower(topic)) {
		if utf8.RuneCountInString(f) > 2 {
			terms = append(terms, f)
		}
	}
	return terms
}

// Relevant reports whether title contains every term, case-insensitively.
// With no terms every title is relevant.
func Relevant(title string, terms []string) bool {
	lower := strings.ToLower(title)
	for _, term := range terms {
		if !strings.Contains(lower, term) {
			return false
		}
	}
	return true
}

// Filter keeps the items whose title mentions every significant term of
// topic. Order is preserved. If topic has no significant terms, items is
// returned unchanged.
func Filter[T any](items []T, topic string, title func(T) string) []T {
	terms := Terms(topic)
	if len(terms) == 0 {
		return items
	}

	kept := make([]T, 0, len(items))
	for _, it := range items {
		if Relevant(title(it), terms) {
			kept = append(kept, it)
		}
	}
	return kept
}
