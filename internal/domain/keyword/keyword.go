// Package keyword turns free-text photo queries into label keywords.
package keyword

import "strings"

// Wildcard is the query text that matches every photo.
const Wildcard = "*"

const connective = " and "

// IsWildcard reports whether the query asks for every photo.
func IsWildcard(text string) bool {
	return strings.TrimSpace(text) == Wildcard
}

// SplitPhrases treats the literal " and " as a comma, splits on commas,
// and returns the trimmed non-empty fragments in order.
func SplitPhrases(text string) []string {
	parts := strings.Split(strings.ReplaceAll(text, connective, ","), ",")
	phrases := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			phrases = append(phrases, p)
		}
	}
	return phrases
}

// FromSlots expands NLU slot values into keywords, keeping slot order.
func FromSlots(values []string) []string {
	var keywords []string
	for _, v := range values {
		if v == "" {
			continue
		}
		keywords = append(keywords, SplitPhrases(v)...)
	}
	return keywords
}

// Fallback tokenizes text deterministically: phrases are split on whitespace and
// deduplicated case-insensitively, keeping the first-seen casing.
func Fallback(text string) []string {
	seen := make(map[string]struct{})
	keywords := []string{}
	for _, phrase := range SplitPhrases(text) {
		for _, tok := range strings.Fields(phrase) {
			k := strings.ToLower(tok)
			if _, ok := seen[k]; ok {
				continue
			}
			seen[k] = struct{}{}
			keywords = append(keywords, tok)
		}
	}
	return keywords
}
