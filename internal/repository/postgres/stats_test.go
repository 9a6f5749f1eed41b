//go:build integration

package postgres

import (
	"context"
	"testing"

	"github.com/bfeurer/jass-stats-service/internal/apperrors"
	"github.com/bfeurer/jass-stats-service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatsRepository_GetPairStats(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	truncateTables(t, testDB)
	writer := NewDerivedRepository(testDB, logger)
	stats := NewStatsRepository(testDB, logger)
	ctx := context.Background()

	derived := playerDerivedFixture("p1", 105)
	derived.Pairs = []domain.PairStat{
		{PlayerID: "p1", CounterpartID: "z-partner", Relation: domain.RelationPartner, MatchesPlayed: 3, MatchesWon: 2, MatchesLost: 1},
		{PlayerID: "p1", CounterpartID: "a-partner", Relation: domain.RelationPartner, MatchesPlayed: 1, MatchesDrawn: 1},
		{PlayerID: "p1", CounterpartID: "opp-1", Relation: domain.RelationOpponent, MatchesPlayed: 4, StricheDiff: -3},
	}
	require.NoError(t, writer.ReplacePlayerDerived(ctx, "p1", derived))

	partners, err := stats.GetPairStats(ctx, "p1", domain.RelationPartner)
	require.NoError(t, err)
	require.Len(t, partners, 2)
	assert.Equal(t, "a-partner", partners[0].CounterpartID)
	assert.Equal(t, "z-partner", partners[1].CounterpartID)
	assert.Equal(t, 2, partners[1].MatchesWon)

	opponents, err := stats.GetPairStats(ctx, "p1", domain.RelationOpponent)
	require.NoError(t, err)
	require.Len(t, opponents, 1)
	assert.Equal(t, -3, opponents[0].StricheDiff)
}

func TestStatsRepository_GetPlayerRating_NotFound(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	truncateTables(t, testDB)
	stats := NewStatsRepository(testDB, logger)

	_, err := stats.GetPlayerRating(context.Background(), "nobody")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
