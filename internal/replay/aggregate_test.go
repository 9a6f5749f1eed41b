package replay

import (
	"testing"
	"time"

	"github.com/bfeurer/jass-stats-service/internal/apperrors"
	"github.com/bfeurer/jass-stats-service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func applyAll(t *testing.T, matches []domain.Match) Totals {
	t.Helper()

	acc := NewAccumulator()
	for _, m := range matches {
		require.NoError(t, acc.Apply(m))
	}

	return acc.Totals()
}

func findPair(t *testing.T, pairs []domain.PairStat, playerID, counterpartID string, relation domain.PairRelation) domain.PairStat {
	t.Helper()

	for _, p := range pairs {
		if p.PlayerID == playerID && p.CounterpartID == counterpartID && p.Relation == relation {
			return p
		}
	}

	t.Fatalf("no pair stat for %s/%s (%s)", playerID, counterpartID, relation)

	return domain.PairStat{}
}

func findPlayer(t *testing.T, players []domain.PlayerStat, playerID string) domain.PlayerStat {
	t.Helper()

	for _, p := range players {
		if p.PlayerID == playerID {
			return p
		}
	}

	t.Fatalf("no player stat for %s", playerID)

	return domain.PlayerStat{}
}

func TestAccumulator_MatchTallies(t *testing.T) {
	at := time.Date(2024, 2, 1, 20, 0, 0, 0, time.UTC)

	m := domain.Match{
		ID: "m1", SessionID: "s1", GroupID: "g1", Number: 1,
		Top:            domain.SideResult{Players: [2]string{"a", "b"}, Points: 300, Matsch: 1},
		Bottom:         domain.SideResult{Players: [2]string{"c", "d"}, Points: 0},
		Winner:         domain.OutcomeTop,
		SessionOutcome: domain.OutcomeTop,
		CompletedAt:    at,
	}

	totals := applyAll(t, []domain.Match{m})

	a := findPlayer(t, totals.Players, "a")
	assert.Equal(t, 1, a.MatchesPlayed)
	assert.Equal(t, 1, a.MatchesWon)
	assert.Zero(t, a.MatchesLost)
	assert.Equal(t, 300, a.PointsDiff)
	assert.Equal(t, 3, a.StricheDiff) // 300 = 3 hundred-marks, 0 = none
	assert.Equal(t, 1, a.MatschMade)
	assert.Zero(t, a.MatschReceived)

	c := findPlayer(t, totals.Players, "c")
	assert.Equal(t, 1, c.MatchesLost)
	assert.Equal(t, -300, c.PointsDiff)
	assert.Equal(t, -3, c.StricheDiff)
	assert.Equal(t, 1, c.MatschReceived)
	assert.Zero(t, c.MatschMade)

	require.Len(t, totals.Groups, 4)
	assert.Equal(t, "g1", totals.Groups[0].GroupID)

	// One score entry per participant per match.
	require.Len(t, totals.Scores, 4)
}

func TestAccumulator_PartnerSymmetry(t *testing.T) {
	at := time.Date(2024, 2, 1, 20, 0, 0, 0, time.UTC)

	matches := []domain.Match{
		{
			ID: "m1", SessionID: "s1", GroupID: "g1", Number: 1,
			Top:            domain.SideResult{Players: [2]string{"a", "b"}, Points: 400},
			Bottom:         domain.SideResult{Players: [2]string{"c", "d"}, Points: 200},
			Winner:         domain.OutcomeTop,
			SessionOutcome: domain.OutcomeTop,
			CompletedAt:    at,
		},
		{
			ID: "m2", SessionID: "s1", GroupID: "g1", Number: 2,
			Top:            domain.SideResult{Players: [2]string{"a", "b"}, Points: 100},
			Bottom:         domain.SideResult{Players: [2]string{"c", "d"}, Points: 350},
			Winner:         domain.OutcomeBottom,
			SessionOutcome: domain.OutcomeTop,
			CompletedAt:    at.Add(time.Hour),
		},
	}

	totals := applyAll(t, matches)

	ab := findPair(t, totals.Pairs, "a", "b", domain.RelationPartner)
	ba := findPair(t, totals.Pairs, "b", "a", domain.RelationPartner)

	// Counts are symmetric between the two directions of a pairing.
	assert.Equal(t, ab.MatchesPlayed, ba.MatchesPlayed)
	assert.Equal(t, ab.MatchesWon, ba.MatchesWon)
	assert.Equal(t, ab.MatchesLost, ba.MatchesLost)
	assert.Equal(t, ab.MatchesDrawn, ba.MatchesDrawn)
	assert.Equal(t, ab.SessionsPlayed, ba.SessionsPlayed)
	assert.Equal(t, ab.SessionsWon, ba.SessionsWon)
	assert.Equal(t, ab.PointsDiff, ba.PointsDiff)

	ac := findPair(t, totals.Pairs, "a", "c", domain.RelationOpponent)
	ca := findPair(t, totals.Pairs, "c", "a", domain.RelationOpponent)

	assert.Equal(t, ac.MatchesPlayed, ca.MatchesPlayed)
	assert.Equal(t, ac.MatchesWon, ca.MatchesLost)
	assert.Equal(t, ac.MatchesLost, ca.MatchesWon)
	// Score differential mirrors between opponents.
	assert.Equal(t, ac.PointsDiff, -ca.PointsDiff)
	assert.Equal(t, ac.StricheDiff, -ca.StricheDiff)
}

func TestAccumulator_DrawIncrementsDrawnOnly(t *testing.T) {
	at := time.Date(2024, 2, 1, 20, 0, 0, 0, time.UTC)

	m := domain.Match{
		ID: "m1", SessionID: "s1", GroupID: "g1", Number: 1,
		Top:            domain.SideResult{Players: [2]string{"a", "b"}, Points: 250},
		Bottom:         domain.SideResult{Players: [2]string{"c", "d"}, Points: 250},
		Winner:         domain.OutcomeDraw,
		SessionOutcome: domain.OutcomeDraw,
		CompletedAt:    at,
	}

	totals := applyAll(t, []domain.Match{m})

	for _, id := range []string{"a", "b", "c", "d"} {
		stat := findPlayer(t, totals.Players, id)
		assert.Equal(t, 1, stat.MatchesDrawn, "player %s", id)
		assert.Zero(t, stat.MatchesWon, "player %s", id)
		assert.Zero(t, stat.MatchesLost, "player %s", id)
		assert.Equal(t, 1, stat.SessionsDrawn, "player %s", id)
		assert.Zero(t, stat.SessionsWon, "player %s", id)
		assert.Zero(t, stat.SessionsLost, "player %s", id)
	}
}

func TestAccumulator_SessionOutcomeFromRecord(t *testing.T) {
	// The session outcome comes from the session record even when the match
	// results disagree with it.
	at := time.Date(2024, 2, 1, 20, 0, 0, 0, time.UTC)

	m := domain.Match{
		ID: "m1", SessionID: "s1", GroupID: "g1", Number: 1,
		Top:            domain.SideResult{Players: [2]string{"a", "b"}, Points: 500},
		Bottom:         domain.SideResult{Players: [2]string{"c", "d"}, Points: 100},
		Winner:         domain.OutcomeTop,
		SessionOutcome: domain.OutcomeBottom,
		CompletedAt:    at,
	}

	totals := applyAll(t, []domain.Match{m})

	a := findPlayer(t, totals.Players, "a")
	assert.Equal(t, 1, a.MatchesWon)
	assert.Equal(t, 1, a.SessionsLost, "session outcome must be read from the record")

	c := findPlayer(t, totals.Players, "c")
	assert.Equal(t, 1, c.MatchesLost)
	assert.Equal(t, 1, c.SessionsWon)
}

func TestAccumulator_TournamentSideSwitchUsesFinalSide(t *testing.T) {
	at := time.Date(2024, 2, 1, 20, 0, 0, 0, time.UTC)

	matches := []domain.Match{
		{
			ID: "m1", SessionID: "t1", GroupID: "g1", Number: 1,
			Top:            domain.SideResult{Players: [2]string{"a", "b"}, Points: 400},
			Bottom:         domain.SideResult{Players: [2]string{"c", "d"}, Points: 100},
			Winner:         domain.OutcomeTop,
			SessionOutcome: domain.OutcomeTop,
			CompletedAt:    at,
		},
		{
			// Pass 2 moves player a to the bottom side.
			ID: "m2", SessionID: "t1", GroupID: "g1", Number: 2,
			Top:            domain.SideResult{Players: [2]string{"b", "c"}, Points: 300},
			Bottom:         domain.SideResult{Players: [2]string{"a", "d"}, Points: 200},
			Winner:         domain.OutcomeTop,
			SessionOutcome: domain.OutcomeTop,
			CompletedAt:    at.Add(time.Hour),
		},
	}

	totals := applyAll(t, matches)

	a := findPlayer(t, totals.Players, "a")
	assert.Equal(t, 1, a.SessionsPlayed)
	// Player a finished the session on the bottom side; the session went to top.
	assert.Equal(t, 1, a.SessionsLost)

	b := findPlayer(t, totals.Players, "b")
	assert.Equal(t, 1, b.SessionsWon)
}

func TestAccumulator_Idempotence(t *testing.T) {
	at := time.Date(2024, 2, 1, 20, 0, 0, 0, time.UTC)

	matches := []domain.Match{
		{
			ID: "m1", SessionID: "s1", GroupID: "g1", Number: 1,
			Top:            domain.SideResult{Players: [2]string{"a", "b"}, Points: 890, Schneider: 1},
			Bottom:         domain.SideResult{Players: [2]string{"c", "d"}, Points: 620},
			Winner:         domain.OutcomeTop,
			SessionOutcome: domain.OutcomeTop,
			CompletedAt:    at,
			EventsInferred: true,
		},
		{
			ID: "m2", SessionID: "s2", GroupID: "g2", Number: 1,
			Top:            domain.SideResult{Players: [2]string{"a", "c"}, Points: 150},
			Bottom:         domain.SideResult{Players: [2]string{"b", "d"}, Points: 500, Matsch: 1},
			Winner:         domain.OutcomeBottom,
			SessionOutcome: domain.OutcomeBottom,
			CompletedAt:    at.Add(24 * time.Hour),
		},
	}

	first := applyAll(t, matches)
	second := applyAll(t, matches)

	// Two runs over unchanged input must be deep-equal, including ordering.
	assert.Equal(t, first, second)

	// The inferred flag propagates to the aggregates it touched.
	a := findPlayer(t, first.Players, "a")
	assert.True(t, a.EventsInferred)
}

func TestAccumulator_RejectsNegativePoints(t *testing.T) {
	at := time.Date(2024, 2, 1, 20, 0, 0, 0, time.UTC)

	m := domain.Match{
		ID: "m1", SessionID: "s1", GroupID: "g1", Number: 1,
		Top:            domain.SideResult{Players: [2]string{"a", "b"}, Points: 100},
		Bottom:         domain.SideResult{Players: [2]string{"c", "d"}, Points: -10},
		Winner:         domain.OutcomeTop,
		SessionOutcome: domain.OutcomeTop,
		CompletedAt:    at,
	}

	acc := NewAccumulator()

	err := acc.Apply(m)
	require.ErrorIs(t, err, apperrors.ErrNegativeScore)
}
