// package service exposes the read-side use cases over the derived tables.
// The backfill engine writes them; this layer only projects.
package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bfeurer/jass-stats-service/internal/apperrors"
	"github.com/bfeurer/jass-stats-service/internal/domain"
	"github.com/bfeurer/jass-stats-service/internal/repository"
)

type StatsService interface {
	// GetPlayerRating returns a player's current rating.
	// It returns apperrors.ErrNotFound for players with no replayed history.
	GetPlayerRating(ctx context.Context, playerID string) (*domain.PlayerRating, error)

	// GetRatingHistory returns a player's full rating history in replay order.
	GetRatingHistory(ctx context.Context, playerID string) ([]domain.RatingEntry, error)

	// GetPartners returns a player's per-partner aggregates.
	GetPartners(ctx context.Context, playerID string) ([]domain.PairStat, error)

	// GetOpponents returns a player's per-opponent aggregates.
	GetOpponents(ctx context.Context, playerID string) ([]domain.PairStat, error)

	// GetGroupChart returns one chart document for a group.
	// It returns apperrors.ErrInvalidMetric for an unknown metric name.
	GetGroupChart(ctx context.Context, groupID, metric string) (*domain.ChartDoc, error)
}

type StatsServiceImpl struct {
	stats    repository.StatsReader
	sessions repository.SessionRepository
	log      *slog.Logger
}

func NewStatsService(stats repository.StatsReader, sessions repository.SessionRepository, log *slog.Logger) *StatsServiceImpl {
	return &StatsServiceImpl{
		stats:    stats,
		sessions: sessions,
		log:      log,
	}
}

func (s *StatsServiceImpl) GetPlayerRating(ctx context.Context, playerID string) (*domain.PlayerRating, error) {
	rating, err := s.stats.GetPlayerRating(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("stats.GetPlayerRating failed: %w", err)
	}

	return rating, nil
}

func (s *StatsServiceImpl) GetRatingHistory(ctx context.Context, playerID string) ([]domain.RatingEntry, error) {
	history, err := s.stats.GetRatingHistory(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("stats.GetRatingHistory failed: %w", err)
	}

	return history, nil
}

func (s *StatsServiceImpl) GetPartners(ctx context.Context, playerID string) ([]domain.PairStat, error) {
	return s.pairStats(ctx, playerID, domain.RelationPartner)
}

func (s *StatsServiceImpl) GetOpponents(ctx context.Context, playerID string) ([]domain.PairStat, error) {
	return s.pairStats(ctx, playerID, domain.RelationOpponent)
}

func (s *StatsServiceImpl) pairStats(ctx context.Context, playerID string, relation domain.PairRelation) ([]domain.PairStat, error) {
	pairs, err := s.stats.GetPairStats(ctx, playerID, relation)
	if err != nil {
		return nil, fmt.Errorf("stats.GetPairStats failed: %w", err)
	}

	return pairs, nil
}

func (s *StatsServiceImpl) GetGroupChart(ctx context.Context, groupID, metric string) (*domain.ChartDoc, error) {
	m := domain.ChartMetric(metric)
	if m != domain.MetricRating && m != domain.MetricStricheDiff {
		return nil, fmt.Errorf("%w: '%s'", apperrors.ErrInvalidMetric, metric)
	}

	if _, err := s.sessions.GetGroup(ctx, groupID); err != nil {
		return nil, fmt.Errorf("sessions.GetGroup failed: %w", err)
	}

	doc, err := s.stats.GetChartDoc(ctx, groupID, m)
	if err != nil {
		return nil, fmt.Errorf("stats.GetChartDoc failed: %w", err)
	}

	return doc, nil
}
