package domain

import "testing"

func TestProfile_Valid(t *testing.T) {
	tests := []struct {
		name string
		p    Profile
		want bool
	}{
		{"complete", Profile{ID: "1", Name: "Ada"}, true},
		{"missing name", Profile{ID: "1"}, false},
		{"missing id", Profile{Name: "Ada"}, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.p.Valid(); got != tc.want {
				t.Errorf("Valid() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestProfile_StatDefaultsToZero(t *testing.T) {
	p := Profile{Stats: map[string]int64{StatFollowers: 42}}
	if got := p.Stat(StatFollowers); got != 42 {
		t.Errorf("followers = %d, want 42", got)
	}
	if got := p.Stat(StatPaidItems); got != 0 {
		t.Errorf("paid_items = %d, want 0", got)
	}

	var empty Profile
	if got := empty.Stat(StatFreeItems); got != 0 {
		t.Errorf("nil stats should yield 0, got %d", got)
	}
}

func TestProfile_EmbeddingText(t *testing.T) {
	p := Profile{
		Name:        "Ada",
		Handle:      "ada",
		Bio:         "math tutor",
		Description: "algebra and calculus",
		Tags:        []string{"math", "stem"},
	}
	want := "Ada\nada\nmath tutor\nalgebra and calculus\nmath stem\n"
	if got := p.EmbeddingText(); got != want {
		t.Errorf("EmbeddingText() = %q, want %q", got, want)
	}

	bare := Profile{Name: "Bo"}
	if got := bare.EmbeddingText(); got != "Bo\n" {
		t.Errorf("EmbeddingText() = %q, want %q", got, "Bo\n")
	}
}
