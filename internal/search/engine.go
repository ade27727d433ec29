// Package search ranks the mentor directory against a free-text query.
//
// The engine is a pure function of a directory snapshot and a Query: it
// matches terms against names, majors and bios, merges the fields each
// mentor matched on, orders the hits and optionally samples them.
package search

import (
	"cmp"
	"math/rand/v2"
	"slices"
	"strconv"
	"strings"

	"github.com/sakif/mentor-directory/internal/model"
)

// Field is a bit set of the searchable fields a mentor matched on.
type Field uint8

const (
	FieldFirstName Field = 1 << iota
	FieldLastName
	FieldMajor
	FieldBio
)

func (f Field) Has(other Field) bool { return f&other != 0 }

// Filters restrict which fields are searched. The zero value searches all.
type Filters struct {
	Name  bool
	Major bool
	Bio   bool
}

// Count returns how many filters are set.
func (f Filters) Count() int {
	n := 0
	for _, on := range []bool{f.Name, f.Major, f.Bio} {
		if on {
			n++
		}
	}
	return n
}

func (f Filters) fields() Field {
	if f.Count() == 0 {
		return FieldFirstName | FieldLastName | FieldMajor | FieldBio
	}
	var out Field
	if f.Name {
		out |= FieldFirstName | FieldLastName
	}
	if f.Major {
		out |= FieldMajor
	}
	if f.Bio {
		out |= FieldBio
	}
	return out
}

// Query is one search request. Requester is the caller's account id and may
// be empty for anonymous callers. Sample > 0 asks for a random subset.
type Query struct {
	Text      string
	Filters   Filters
	Requester string
	Sample    int
}

// ParseSample turns the raw random parameter into a sample size. Anything
// that is not a positive integer means no sampling.
func ParseSample(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n <= 0 {
		return 0
	}
	return n
}

// Candidate is the flattened, lower-cased searchable bundle of one mentor.
type Candidate struct {
	Mentor    model.Mentor
	firstName string
	lastName  string
	bio       string
	majors    []string
}

// NewCandidate flattens m for matching.
func NewCandidate(m model.Mentor) Candidate {
	c := Candidate{
		Mentor:    m,
		firstName: strings.ToLower(m.Profile.FirstName),
		lastName:  strings.ToLower(m.Profile.LastName),
		bio:       strings.ToLower(m.Bio),
	}
	for _, mj := range m.Majors {
		c.majors = append(c.majors, strings.ToLower(mj.Name))
	}
	return c
}

// Hit is a matched mentor. Tier 0 means a name or bio match, tier 1 a
// major-only match.
type Hit struct {
	Mentor model.Mentor
	Fields Field
	Tier   int
}

// Engine runs searches. It holds only the read-only alias table.
type Engine struct {
	aliases *AliasTable
	newRand func() *rand.Rand
}

// NewEngine returns an Engine using aliases for term expansion. newRand
// supplies the randomness for sampling and may be nil.
func NewEngine(aliases *AliasTable, newRand func() *rand.Rand) *Engine {
	if aliases == nil {
		aliases = NewAliasTable(nil)
	}
	if newRand == nil {
		newRand = func() *rand.Rand {
			return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
		}
	}
	return &Engine{aliases: aliases, newRand: newRand}
}

// Aliases returns the engine's alias table.
func (e *Engine) Aliases() *AliasTable { return e.aliases }

// Search matches candidates against q and returns the ordered, optionally
// sampled hits. Candidates need not be sorted.
func (e *Engine) Search(candidates []Candidate, q Query) []Hit {
	terms := Terms(q.Text, e.aliases)
	eligible := q.Filters.fields()

	hits := make([]Hit, 0, len(candidates))
	seen := make(map[string]int, len(candidates))
	for i := range candidates {
		c := &candidates[i]
		if !c.Mentor.Active {
			continue
		}
		if q.Requester != "" && c.Mentor.Profile.AccountID == q.Requester {
			continue
		}

		var matched Field
		if len(terms) == 0 {
			matched = eligible
		} else {
			matched = c.match(terms, eligible)
		}
		if matched == 0 {
			continue
		}

		if j, ok := seen[c.Mentor.ID]; ok {
			hits[j].Fields |= matched
			hits[j].Tier = tier(hits[j].Fields)
			continue
		}
		seen[c.Mentor.ID] = len(hits)
		hits = append(hits, Hit{Mentor: c.Mentor, Fields: matched, Tier: tier(matched)})
	}

	slices.SortStableFunc(hits, func(a, b Hit) int {
		return cmp.Compare(a.Mentor.Seq, b.Mentor.Seq)
	})
	if q.Filters.Count() > 1 {
		slices.SortStableFunc(hits, func(a, b Hit) int {
			return cmp.Compare(a.Tier, b.Tier)
		})
	}

	if q.Sample > 0 && q.Sample < len(hits) {
		hits = sample(e.newRand(), hits, q.Sample)
	}
	return hits
}

func (c *Candidate) match(terms []string, eligible Field) Field {
	var out Field
	for _, t := range terms {
		if eligible.Has(FieldFirstName) && strings.Contains(c.firstName, t) {
			out |= FieldFirstName
		}
		if eligible.Has(FieldLastName) && strings.Contains(c.lastName, t) {
			out |= FieldLastName
		}
		if eligible.Has(FieldBio) && strings.Contains(c.bio, t) {
			out |= FieldBio
		}
		if eligible.Has(FieldMajor) && !out.Has(FieldMajor) {
			for _, mj := range c.majors {
				if strings.Contains(mj, t) {
					out |= FieldMajor
					break
				}
			}
		}
	}
	return out
}

func tier(f Field) int {
	if f.Has(FieldFirstName | FieldLastName | FieldBio) {
		return 0
	}
	return 1
}

// sample picks k of hits uniformly at random with a partial Fisher-Yates
// shuffle over indices and returns them in their ranked order.
func sample(r *rand.Rand, hits []Hit, k int) []Hit {
	idx := make([]int, len(hits))
	for i := range idx {
		idx[i] = i
	}
	for i := 0; i < k; i++ {
		j := i + r.IntN(len(idx)-i)
		idx[i], idx[j] = idx[j], idx[i]
	}
	chosen := idx[:k]
	slices.Sort(chosen)

	out := make([]Hit, k)
	for i, ix := range chosen {
		out[i] = hits[ix]
	}
	return out
}
