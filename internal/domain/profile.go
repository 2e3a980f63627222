package domain

import "strings"

// Well-known stat counters rendered into the recommendation context.
const (
	StatFollowers = "followers"
	StatFreeItems = "free_items"
	StatPaidItems = "paid_items"
)

// Profile is a catalog entry considered as a recommendation candidate.
type Profile struct {
	ID          string
	Slug        string
	Name        string
	Handle      string
	Bio         string
	Description string
	Tags        []string
	Stats       map[string]int64
	Vector      []float32 // precomputed embedding, not exposed to clients
}

// Valid reports whether the profile may enter a candidate set. A profile without a name is dropped.
func (p *Profile) Valid() bool {
	return p.ID != "" && p.Name != ""
}

// Stat returns the named counter, 0 when absent.
func (p *Profile) Stat(name string) int64 {
	return p.Stats[name]
}

// EmbeddingText builds the text embedded for the profile.
func (p *Profile) EmbeddingText() string {
	var b strings.Builder

	b.WriteString(p.Name)
	b.WriteString("\n")

	if p.Handle != "" {
		b.WriteString(p.Handle)
		b.WriteString("\n")
	}
	if p.Bio != "" {
		b.WriteString(p.Bio)
		b.WriteString("\n")
	}
	if p.Description != "" {
		b.WriteString(p.Description)
		b.WriteString("\n")
	}
	if len(p.Tags) > 0 {
		b.WriteString(strings.Join(p.Tags, " "))
		b.WriteString("\n")
	}

	return b.String()
}

// Neighbor is a hit from a pre-indexed nearest-neighbor search.
type Neighbor struct {
	ID       string
	Distance float64
}
