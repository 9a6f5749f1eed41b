package http

import (
	"context"

	"github.com/bfeurer/jass-stats-service/internal/domain"
	"github.com/bfeurer/jass-stats-service/internal/service"
	"github.com/stretchr/testify/mock"
)

type StatsServiceMock struct {
	mock.Mock
}

var _ service.StatsService = (*StatsServiceMock)(nil)

func (m *StatsServiceMock) GetPlayerRating(ctx context.Context, playerID string) (*domain.PlayerRating, error) {
	args := m.Called(ctx, playerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*domain.PlayerRating), args.Error(1)
}

func (m *StatsServiceMock) GetRatingHistory(ctx context.Context, playerID string) ([]domain.RatingEntry, error) {
	args := m.Called(ctx, playerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]domain.RatingEntry), args.Error(1)
}

func (m *StatsServiceMock) GetPartners(ctx context.Context, playerID string) ([]domain.PairStat, error) {
	args := m.Called(ctx, playerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]domain.PairStat), args.Error(1)
}

func (m *StatsServiceMock) GetOpponents(ctx context.Context, playerID string) ([]domain.PairStat, error) {
	args := m.Called(ctx, playerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]domain.PairStat), args.Error(1)
}

func (m *StatsServiceMock) GetGroupChart(ctx context.Context, groupID, metric string) (*domain.ChartDoc, error) {
	args := m.Called(ctx, groupID, metric)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*domain.ChartDoc), args.Error(1)
}
