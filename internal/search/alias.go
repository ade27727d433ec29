package search

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// AliasGroup is a set of interchangeable spellings. Every term expands to
// the other terms. Abbreviations expand to the terms but nothing expands to
// an abbreviation: a short entry like "cs" is a substring of unrelated
// words ("physics", "economics") and would widen every canonical search.
type AliasGroup struct {
	Terms         []string `yaml:"terms"`
	Abbreviations []string `yaml:"abbreviations"`
}

// DefaultAliasGroups are the abbreviations students commonly search by.
var DefaultAliasGroups = []AliasGroup{
	{Terms: []string{"computer science", "compsci"}, Abbreviations: []string{"cs"}},
	{Terms: []string{"computer science and engineering"}, Abbreviations: []string{"cse"}},
	{Terms: []string{"electrical engineering"}, Abbreviations: []string{"ee"}},
	{Terms: []string{"mechanical engineering", "mech e", "meche"}},
	{Terms: []string{"mathematics", "math"}},
	{Terms: []string{"economics", "econ"}},
	{Terms: []string{"psychology", "psych"}},
	{Terms: []string{"political science", "poli sci", "polisci"}},
	{Terms: []string{"biology", "bio"}},
}

// AliasTable maps terms and abbreviations to the terms of their groups.
// It is built once and never mutated, so it is safe for concurrent readers.
type AliasTable struct {
	groups [][]string
	index  map[string][]int // term or abbreviation -> groups
}

// NewAliasTable builds a table from groups. Entries are normalized; an entry
// listed in several groups expands to all of them. Groups without a term, or
// with fewer than two entries in total, are ignored.
func NewAliasTable(groups []AliasGroup) *AliasTable {
	t := &AliasTable{index: make(map[string][]int)}
	for _, g := range groups {
		seen := map[string]bool{}
		terms := normalizeAll(g.Terms, seen)
		abbrevs := normalizeAll(g.Abbreviations, seen)
		if len(terms) == 0 || len(terms)+len(abbrevs) < 2 {
			continue
		}
		gi := len(t.groups)
		t.groups = append(t.groups, terms)
		for _, m := range append(terms, abbrevs...) {
			t.index[m] = append(t.index[m], gi)
		}
	}
	return t
}

func normalizeAll(in []string, seen map[string]bool) []string {
	var out []string
	for _, s := range in {
		s = Normalize(s)
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}

// DefaultAliases returns a table holding DefaultAliasGroups.
func DefaultAliases() *AliasTable {
	return NewAliasTable(DefaultAliasGroups)
}

type aliasFile struct {
	Aliases []AliasGroup `yaml:"aliases"`
}

// LoadAliases reads extra groups from a YAML file of the form
//
//	aliases:
//	  - terms: [linguistics]
//	    abbreviations: [ling]
//
// and merges them with the defaults. An empty path yields the defaults.
func LoadAliases(path string) (*AliasTable, error) {
	if path == "" {
		return DefaultAliases(), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("search: reading aliases %s: %w", path, err)
	}
	var f aliasFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("search: parsing aliases %s: %w", path, err)
	}
	groups := append([]AliasGroup{}, DefaultAliasGroups...)
	groups = append(groups, f.Aliases...)
	return NewAliasTable(groups), nil
}

// Expand returns the terms of every group containing term, other than term
// itself, in the order the groups were declared. term must already be
// normalized.
func (t *AliasTable) Expand(term string) []string {
	idx := t.index[term]
	if len(idx) == 0 {
		return nil
	}
	var out []string
	seen := map[string]bool{term: true}
	for _, gi := range idx {
		for _, m := range t.groups[gi] {
			if !seen[m] {
				seen[m] = true
				out = append(out, m)
			}
		}
	}
	return out
}

// Len returns the number of groups.
func (t *AliasTable) Len() int { return len(t.groups) }
