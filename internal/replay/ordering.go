// Package replay recomputes ratings and statistics by walking the complete
// match history in one globally chronological pass.
//
// The rating table is a coupled system: a player's rating after a match
// depends on the opponents' ratings immediately before it, so matches are
// never replayed per player or in parallel. Everything in this package
// assumes the single ordered stream produced by Order.
package replay

import (
	"sort"

	"github.com/bfeurer/jass-stats-service/internal/domain"
)

// Order establishes the strict total order all replay components share:
// completion timestamp ascending, then intra-session match number, then
// match ID. The last tie-break keeps the order deterministic when two
// matches carry identical timestamps. The input slice is not modified.
func Order(matches []domain.Match) []domain.Match {
	ordered := make([]domain.Match, len(matches))
	copy(ordered, matches)

	sort.SliceStable(ordered, func(i, j int) bool {
		a, b := ordered[i], ordered[j]

		if !a.CompletedAt.Equal(b.CompletedAt) {
			return a.CompletedAt.Before(b.CompletedAt)
		}

		if a.Number != b.Number {
			return a.Number < b.Number
		}

		return a.ID < b.ID
	})

	return ordered
}
