package replay

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/bfeurer/jass-stats-service/internal/config"
	"github.com/bfeurer/jass-stats-service/internal/domain"
)

// RatingEngine replays matches against a shared rating table. All players
// start at the configured rating; every applied match moves all four
// participants before the next match is considered.
type RatingEngine struct {
	cfg     config.Rating
	ratings map[string]float64
	played  map[string]int
	entries []domain.RatingEntry
}

func NewRatingEngine(cfg config.Rating) *RatingEngine {
	return &RatingEngine{
		cfg:     cfg,
		ratings: make(map[string]float64),
		played:  make(map[string]int),
	}
}

// Apply advances the rating table by one match. The match must arrive in
// the global chronological order; a malformed match is rejected before any
// state changes, so the table is never left half-applied.
func (e *RatingEngine) Apply(m domain.Match) error {
	participants := m.Participants()

	for _, id := range participants {
		if id == "" {
			return fmt.Errorf("match '%s': missing participant", m.ID)
		}
	}

	topRating := (e.rating(m.Top.Players[0]) + e.rating(m.Top.Players[1])) / 2
	bottomRating := (e.rating(m.Bottom.Players[0]) + e.rating(m.Bottom.Players[1])) / 2

	expectedTop := expectedScore(topRating, bottomRating, e.cfg.Scale)
	actualTop := actualScore(m.Winner)

	deltaTop := e.cfg.KFactor * (actualTop - expectedTop)
	deltaBottom := -deltaTop

	e.applySide(m, domain.SideTop, deltaTop)
	e.applySide(m, domain.SideBottom, deltaBottom)

	return nil
}

func (e *RatingEngine) applySide(m domain.Match, side domain.Side, delta float64) {
	for _, id := range m.Result(side).Players {
		e.ratings[id] = e.rating(id) + delta
		e.played[id]++

		e.entries = append(e.entries, domain.RatingEntry{
			PlayerID:    id,
			GroupID:     m.GroupID,
			SessionID:   m.SessionID,
			MatchID:     m.ID,
			MatchNumber: m.Number,
			Rating:      e.ratings[id],
			Delta:       delta,
			PlayedAt:    m.CompletedAt,
		})
	}
}

func (e *RatingEngine) rating(playerID string) float64 {
	if r, ok := e.ratings[playerID]; ok {
		return r
	}

	return e.cfg.StartRating
}

// Entries returns the rating history in the order it was produced, which is
// the replay order. Persisting it unchanged preserves the invariant that
// replaying the history reproduces the current ratings.
func (e *RatingEngine) Entries() []domain.RatingEntry {
	return e.entries
}

// Ratings returns the terminal state of the table.
func (e *RatingEngine) Ratings(now time.Time) []domain.PlayerRating {
	out := make([]domain.PlayerRating, 0, len(e.ratings))

	for id, r := range e.ratings {
		out = append(out, domain.PlayerRating{
			PlayerID:      id,
			Rating:        r,
			MatchesPlayed: e.played[id],
			UpdatedAt:     now,
		})
	}

	// Map iteration order is random; a sorted result keeps repeated runs
	// byte-identical.
	sort.Slice(out, func(i, j int) bool { return out[i].PlayerID < out[j].PlayerID })

	return out
}

// expectedScore is the standard logistic expectation over the rating gap.
func expectedScore(own, opp, scale float64) float64 {
	return 1 / (1 + math.Pow(10, (opp-own)/scale))
}

func actualScore(winner domain.Outcome) float64 {
	switch winner {
	case domain.OutcomeTop:
		return 1
	case domain.OutcomeDraw:
		return 0.5
	default:
		return 0
	}
}
