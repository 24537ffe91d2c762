// Package contacts models the owner's contact directory and the pure
// name-similarity ranking used for disambiguation. Ranking is a function of
// (name, directory snapshot) only, so the review flow can be tested without
// a store.
package contacts

import (
	"sort"
	"strings"
	"time"

	"github.com/xrash/smetrics"
)

// Contact is a person or organization the owner communicates with.
type Contact struct {
	ID            string     `json:"id"`
	UserID        string     `json:"userId"`
	Name          string     `json:"name"`
	Phone         *string    `json:"phone,omitempty"`
	Email         *string    `json:"email,omitempty"`
	Kind          string     `json:"kind"`
	Notes         string     `json:"notes"`
	LastContactAt *time.Time `json:"lastContactAt,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

// Reachable reports whether the contact has a phone or email on file.
func (c *Contact) Reachable() bool {
	return (c.Phone != nil && *c.Phone != "") || (c.Email != nil && *c.Email != "")
}

// Candidate is one ranked disambiguation option.
type Candidate struct {
	Contact Contact `json:"contact"`
	Score   float64 `json:"score"`
}

// Match is the result of ranking a free-text name against the directory.
// Exact is true only when the name resolves to a single contact by
// case-folded equality; everything else is ambiguous and surfaces
// candidates for the owner to pick from.
type Match struct {
	Exact      bool        `json:"exact"`
	Candidates []Candidate `json:"candidates"`
}

// similarityFloor is the minimum Jaro-Winkler score for a fuzzy candidate.
const similarityFloor = 0.78

// jaro-winkler parameters: standard boost threshold and prefix size.
const (
	jwBoostThreshold = 0.7
	jwPrefixSize     = 4
)

// Rank scores the directory against a task's contact name and returns the
// top candidates. An empty name yields no candidates.
func Rank(name string, directory []Contact, limit int) Match {
	name = strings.TrimSpace(name)
	if name == "" || len(directory) == 0 {
		return Match{}
	}
	if limit <= 0 {
		limit = 3
	}

	folded := strings.ToLower(name)

	var exact []Candidate
	var fuzzy []Candidate
	for _, c := range directory {
		if strings.ToLower(strings.TrimSpace(c.Name)) == folded {
			exact = append(exact, Candidate{Contact: c, Score: 1})
			continue
		}
		score := smetrics.JaroWinkler(folded, strings.ToLower(c.Name), jwBoostThreshold, jwPrefixSize)
		if score >= similarityFloor {
			fuzzy = append(fuzzy, Candidate{Contact: c, Score: score})
		}
	}

	if len(exact) == 1 {
		return Match{Exact: true, Candidates: exact}
	}

	// Multiple exact matches stay ambiguous; they outrank fuzzy hits.
	sort.SliceStable(fuzzy, func(i, j int) bool { return fuzzy[i].Score > fuzzy[j].Score })
	candidates := append(exact, fuzzy...)
	if len(candidates) > limit {
		candidates = candidates[:limit]
	}
	return Match{Candidates: candidates}
}
