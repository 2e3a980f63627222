// Package lexical scores profiles against a query by term overlap.
// It needs no external call and is the fallback when embeddings are unavailable.
package lexical

import (
	"sort"
	"strings"

	"github.com/kailas-cloud/profilematch/internal/domain"
)

const (
	textWeight = 1
	tagWeight  = 2
)

// Match is a profile with its lexical score.
type Match struct {
	Profile domain.Profile
	Score   int
}

// Terms splits a query into lower-case whitespace-separated terms.
func Terms(query string) []string {
	return strings.Fields(strings.ToLower(query))
}

// SearchableText joins name, handle, bio, description and tags with single spaces, lower-cased.
func SearchableText(p *domain.Profile) string {
	parts := make([]string, 0, 4+len(p.Tags))
	parts = append(parts, p.Name, p.Handle, p.Bio, p.Description)
	parts = append(parts, p.Tags...)
	return strings.ToLower(strings.Join(parts, " "))
}

// Score sums, over the query terms, +1 when the term occurs in the searchable text
// and +2 more when it occurs in any single tag.
func Score(query string, p *domain.Profile) int {
	return score(Terms(query), SearchableText(p), lowerTags(p.Tags))
}

// Rank scores every profile, drops zero scores and orders the rest by descending score.
// Ties keep the input order.
func Rank(query string, profiles []domain.Profile) []Match {
	terms := Terms(query)

	matches := make([]Match, 0, len(profiles))
	for i := range profiles {
		p := &profiles[i]
		s := score(terms, SearchableText(p), lowerTags(p.Tags))
		if s == 0 {
			continue
		}
		matches = append(matches, Match{Profile: *p, Score: s})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})

	return matches
}

func score(terms []string, text string, tags []string) int {
	total := 0
	for _, term := range terms {
		if strings.Contains(text, term) {
			total += textWeight
		}
		for _, tag := range tags {
			if strings.Contains(tag, term) {
				total += tagWeight
				break
			}
		}
	}
	return total
}

func lowerTags(tags []string) []string {
	out := make([]string, len(tags))
	for i, t := range tags {
		out[i] = strings.ToLower(t)
	}
	return out
}
