package retrieval

import (
	"sort"

	"github.com/kailas-cloud/profilematch/internal/domain"
)

// scored is a candidate carrying its score and load position during one request.
type scored struct {
	profile  domain.Profile
	score    float64
	position int
}

// rankAndTruncate orders candidates by descending score, ties by load position,
// keeps the first k and drops the scores.
func rankAndTruncate(candidates []scored, k int) []domain.Profile {
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		return candidates[i].position < candidates[j].position
	})
	return truncate(candidates, k)
}

// truncate keeps the first k candidates in their current order.
func truncate(candidates []scored, k int) []domain.Profile {
	n := min(k, len(candidates))
	out := make([]domain.Profile, n)
	for i := range n {
		out[i] = candidates[i].profile
	}
	return out
}

func unscored(profiles []domain.Profile) []scored {
	out := make([]scored, len(profiles))
	for i := range profiles {
		out[i] = scored{profile: profiles[i], position: i}
	}
	return out
}
