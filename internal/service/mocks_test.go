package service

import (
	"context"

	"github.com/bfeurer/jass-stats-service/internal/domain"
	"github.com/bfeurer/jass-stats-service/internal/repository"
	"github.com/stretchr/testify/mock"
)

type StatsReaderMock struct {
	mock.Mock
}

var _ repository.StatsReader = (*StatsReaderMock)(nil)

func (m *StatsReaderMock) GetPlayerRating(ctx context.Context, playerID string) (*domain.PlayerRating, error) {
	args := m.Called(ctx, playerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*domain.PlayerRating), args.Error(1)
}

func (m *StatsReaderMock) GetRatingHistory(ctx context.Context, playerID string) ([]domain.RatingEntry, error) {
	args := m.Called(ctx, playerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]domain.RatingEntry), args.Error(1)
}

func (m *StatsReaderMock) GetPairStats(ctx context.Context, playerID string, relation domain.PairRelation) ([]domain.PairStat, error) {
	args := m.Called(ctx, playerID, relation)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]domain.PairStat), args.Error(1)
}

func (m *StatsReaderMock) GetChartDoc(ctx context.Context, groupID string, metric domain.ChartMetric) (*domain.ChartDoc, error) {
	args := m.Called(ctx, groupID, metric)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*domain.ChartDoc), args.Error(1)
}

type SessionRepositoryMock struct {
	mock.Mock
}

var _ repository.SessionRepository = (*SessionRepositoryMock)(nil)

func (m *SessionRepositoryMock) ListGroups(ctx context.Context) ([]domain.Group, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]domain.Group), args.Error(1)
}

func (m *SessionRepositoryMock) GetGroup(ctx context.Context, groupID string) (*domain.Group, error) {
	args := m.Called(ctx, groupID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*domain.Group), args.Error(1)
}

func (m *SessionRepositoryMock) ListCompletedSessions(ctx context.Context, limit int) ([]domain.Session, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]domain.Session), args.Error(1)
}
