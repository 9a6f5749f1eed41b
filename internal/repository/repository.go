// package repository defines the interfaces for the data persistence layer.
// These interfaces abstract the underlying database implementation from the
// replay, backfill and transport layers.
package repository

import (
	"context"

	"github.com/bfeurer/jass-stats-service/internal/domain"
)

// SessionRepository reads the raw store records owned by the scorekeeping
// flow. This service never writes them.
type SessionRepository interface {
	// ListGroups retrieves all groups, ordered by ID.
	ListGroups(ctx context.Context) ([]domain.Group, error)

	// GetGroup retrieves one group by ID.
	// It returns apperrors.ErrNotFound if the group does not exist.
	GetGroup(ctx context.Context, groupID string) (*domain.Group, error)

	// ListCompletedSessions retrieves every completed session across all
	// groups, ordered by completion time. The replay input is always the
	// full history; callers must not filter it by group.
	ListCompletedSessions(ctx context.Context, limit int) ([]domain.Session, error)
}

// PlayerDerived bundles every derived row owned by one player scope. The
// writer replaces them as a unit.
type PlayerDerived struct {
	Rating  domain.PlayerRating
	History []domain.RatingEntry
	Scores  []domain.ScoreEntry
	Stats   domain.PlayerStat
	Pairs   []domain.PairStat
}

// GroupDerived bundles the derived rows owned by one group scope.
type GroupDerived struct {
	Stats  []domain.GroupStat
	Charts []domain.ChartDoc
}

// DerivedWriter rewrites derived documents scope by scope. Each Replace call
// is one transaction: prior rows of the scope are deleted and the recomputed
// ones inserted, all or nothing, under an advisory lock keyed on the scope.
// A scope held by a concurrent run yields apperrors.ErrScopeLocked.
type DerivedWriter interface {
	ReplacePlayerDerived(ctx context.Context, playerID string, derived PlayerDerived) error
	ReplaceGroupDerived(ctx context.Context, groupID string, derived GroupDerived) error
}

// StatsReader serves the read-only projections behind the HTTP API.
type StatsReader interface {
	// GetPlayerRating retrieves a player's current rating row.
	// It returns apperrors.ErrNotFound if the player has no replayed matches.
	GetPlayerRating(ctx context.Context, playerID string) (*domain.PlayerRating, error)

	// GetRatingHistory retrieves a player's full rating history in replay order.
	GetRatingHistory(ctx context.Context, playerID string) ([]domain.RatingEntry, error)

	// GetPairStats retrieves a player's partner or opponent aggregates,
	// ordered by counterpart ID.
	GetPairStats(ctx context.Context, playerID string, relation domain.PairRelation) ([]domain.PairStat, error)

	// GetChartDoc retrieves one group chart document.
	// It returns apperrors.ErrNotFound if the group has no document for the metric.
	GetChartDoc(ctx context.Context, groupID string, metric domain.ChartMetric) (*domain.ChartDoc, error)
}
