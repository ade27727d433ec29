package search

import (
	"strings"
	"unicode/utf8"
)

// Normalize case-folds raw and collapses every run of whitespace into a
// single space.
func Normalize(raw string) string {
	return strings.Join(strings.Fields(strings.ToLower(raw)), " ")
}

// Terms returns the distinct terms for raw: the whole normalized string,
// then each token, then alias expansions of any of those. Single-rune tokens
// of a multi-word query are dropped; they match nearly every field.
//
// Every term is matched as a case-insensitive substring of a field.
func Terms(raw string, aliases *AliasTable) []string {
	norm := Normalize(raw)
	if norm == "" {
		return nil
	}

	seen := map[string]bool{norm: true}
	terms := []string{norm}
	for _, tok := range strings.Split(norm, " ") {
		if seen[tok] || utf8.RuneCountInString(tok) < 2 {
			continue
		}
		seen[tok] = true
		terms = append(terms, tok)
	}

	if aliases == nil {
		return terms
	}
	literals := len(terms)
	for i := 0; i < literals; i++ {
		for _, alt := range aliases.Expand(terms[i]) {
			if seen[alt] {
				continue
			}
			seen[alt] = true
			terms = append(terms, alt)
		}
	}
	return terms
}
