package http

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/bfeurer/jass-stats-service/internal/apperrors"
	"github.com/bfeurer/jass-stats-service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func newTestServer(t *testing.T) (*Server, *StatsServiceMock) {
	t.Helper()

	statsService := new(StatsServiceMock)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	return NewServer(logger, statsService), statsService
}

func TestServer_GetPlayerRating(t *testing.T) {
	updatedAt := time.Date(2024, 5, 1, 20, 0, 0, 0, time.UTC)

	testCases := []struct {
		name               string
		url                string
		setupMocks         func(ssm *StatsServiceMock)
		expectedStatusCode int
		expectedBody       string
	}{
		{
			name: "Success",
			url:  "/players/p1/rating",
			setupMocks: func(ssm *StatsServiceMock) {
				ssm.On("GetPlayerRating", mock.Anything, "p1").Return(&domain.PlayerRating{
					PlayerID:      "p1",
					Rating:        112.5,
					MatchesPlayed: 9,
					UpdatedAt:     updatedAt,
				}, nil).Once()
			},
			expectedStatusCode: http.StatusOK,
			expectedBody:       `"rating":112.5`,
		},
		{
			name: "Unknown player",
			url:  "/players/nobody/rating",
			setupMocks: func(ssm *StatsServiceMock) {
				ssm.On("GetPlayerRating", mock.Anything, "nobody").Return(nil, apperrors.ErrNotFound).Once()
			},
			expectedStatusCode: http.StatusNotFound,
			expectedBody:       `"error":"resource not found"`,
		},
		{
			name:               "Invalid player ID",
			url:                "/players/bad%20id%21/rating",
			setupMocks:         func(ssm *StatsServiceMock) {},
			expectedStatusCode: http.StatusBadRequest,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			server, statsService := newTestServer(t)
			tc.setupMocks(statsService)

			req := httptest.NewRequest(http.MethodGet, tc.url, nil)
			rr := httptest.NewRecorder()

			server.Routes().ServeHTTP(rr, req)

			assert.Equal(t, tc.expectedStatusCode, rr.Code)
			if tc.expectedBody != "" {
				assert.Contains(t, rr.Body.String(), tc.expectedBody)
			}

			statsService.AssertExpectations(t)
		})
	}
}

func TestServer_GetPartners(t *testing.T) {
	server, statsService := newTestServer(t)

	statsService.On("GetPartners", mock.Anything, "p1").Return([]domain.PairStat{
		{PlayerID: "p1", CounterpartID: "p2", Relation: domain.RelationPartner, MatchesWon: 4},
	}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/players/p1/partners", nil)
	rr := httptest.NewRecorder()

	server.Routes().ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"counterpart_id":"p2"`)

	statsService.AssertExpectations(t)
}

func TestServer_GetGroupChart(t *testing.T) {
	testCases := []struct {
		name               string
		url                string
		setupMocks         func(ssm *StatsServiceMock)
		expectedStatusCode int
		expectedBody       string
	}{
		{
			name: "Success",
			url:  "/groups/g1/chart?metric=rating",
			setupMocks: func(ssm *StatsServiceMock) {
				ssm.On("GetGroupChart", mock.Anything, "g1", "rating").Return(&domain.ChartDoc{
					GroupID: "g1",
					Metric:  domain.MetricRating,
					Labels:  []string{"2024-05-01"},
					Series:  map[string][]*float64{},
				}, nil).Once()
			},
			expectedStatusCode: http.StatusOK,
			expectedBody:       `"labels":["2024-05-01"]`,
		},
		{
			name: "Unknown metric",
			url:  "/groups/g1/chart?metric=winrate",
			setupMocks: func(ssm *StatsServiceMock) {
				ssm.On("GetGroupChart", mock.Anything, "g1", "winrate").Return(nil, apperrors.ErrInvalidMetric).Once()
			},
			expectedStatusCode: http.StatusBadRequest,
		},
		{
			name:               "Missing metric",
			url:                "/groups/g1/chart",
			setupMocks:         func(ssm *StatsServiceMock) {},
			expectedStatusCode: http.StatusBadRequest,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			server, statsService := newTestServer(t)
			tc.setupMocks(statsService)

			req := httptest.NewRequest(http.MethodGet, tc.url, nil)
			rr := httptest.NewRecorder()

			server.Routes().ServeHTTP(rr, req)

			assert.Equal(t, tc.expectedStatusCode, rr.Code)
			if tc.expectedBody != "" {
				assert.Contains(t, rr.Body.String(), tc.expectedBody)
			}

			statsService.AssertExpectations(t)
		})
	}
}

func TestServer_GetHealthz(t *testing.T) {
	server, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rr := httptest.NewRecorder()

	server.Routes().ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"status":"ok"`)
}
