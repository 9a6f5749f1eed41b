// package http implements the read-only HTTP surface over the derived
// statistics. It decodes path and query parameters, calls the stats service
// and encodes the responses. All writes happen through the backfill binary.
package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/bfeurer/jass-stats-service/internal/apperrors"
	"github.com/bfeurer/jass-stats-service/internal/domain"
	"github.com/bfeurer/jass-stats-service/internal/service"
	"github.com/bfeurer/jass-stats-service/internal/validation"
	"github.com/bfeurer/jass-stats-service/pkg/logger/sl"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Server struct {
	log          *slog.Logger
	statsService service.StatsService
}

func NewServer(log *slog.Logger, ss service.StatsService) *Server {
	return &Server{
		log:          log,
		statsService: ss,
	}
}

// Routes sets up the router with all middleware and API endpoints.
func (s *Server) Routes() http.Handler {
	mux := chi.NewRouter()

	mux.Use(s.requestID)
	mux.Use(s.logRequest)
	mux.Use(s.metricsMiddleware)

	mux.Handle("/metrics", promhttp.Handler())
	mux.Get("/healthz", s.GetHealthz)

	mux.Route("/players/{playerID}", func(r chi.Router) {
		r.Get("/rating", s.GetPlayerRating)
		r.Get("/rating-history", s.GetRatingHistory)
		r.Get("/partners", s.GetPartners)
		r.Get("/opponents", s.GetOpponents)
	})

	mux.Get("/groups/{groupID}/chart", s.GetGroupChart)

	return mux
}

func (s *Server) GetHealthz(w http.ResponseWriter, _ *http.Request) {
	s.respond(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) GetPlayerRating(w http.ResponseWriter, r *http.Request) {
	const op = "internal.transport.http.GetPlayerRating"

	params, err := playerParamsFrom(r)
	if err != nil {
		s.handleServiceError(w, r, op, err)
		return
	}

	rating, err := s.statsService.GetPlayerRating(r.Context(), params.PlayerID)
	if err != nil {
		s.handleServiceError(w, r, op, err)
		return
	}

	s.respond(w, http.StatusOK, map[string]*domain.PlayerRating{"rating": rating})
}

func (s *Server) GetRatingHistory(w http.ResponseWriter, r *http.Request) {
	const op = "internal.transport.http.GetRatingHistory"

	params, err := playerParamsFrom(r)
	if err != nil {
		s.handleServiceError(w, r, op, err)
		return
	}

	history, err := s.statsService.GetRatingHistory(r.Context(), params.PlayerID)
	if err != nil {
		s.handleServiceError(w, r, op, err)
		return
	}

	s.respond(w, http.StatusOK, map[string][]domain.RatingEntry{"history": history})
}

func (s *Server) GetPartners(w http.ResponseWriter, r *http.Request) {
	const op = "internal.transport.http.GetPartners"

	params, err := playerParamsFrom(r)
	if err != nil {
		s.handleServiceError(w, r, op, err)
		return
	}

	partners, err := s.statsService.GetPartners(r.Context(), params.PlayerID)
	if err != nil {
		s.handleServiceError(w, r, op, err)
		return
	}

	s.respond(w, http.StatusOK, map[string][]domain.PairStat{"partners": partners})
}

func (s *Server) GetOpponents(w http.ResponseWriter, r *http.Request) {
	const op = "internal.transport.http.GetOpponents"

	params, err := playerParamsFrom(r)
	if err != nil {
		s.handleServiceError(w, r, op, err)
		return
	}

	opponents, err := s.statsService.GetOpponents(r.Context(), params.PlayerID)
	if err != nil {
		s.handleServiceError(w, r, op, err)
		return
	}

	s.respond(w, http.StatusOK, map[string][]domain.PairStat{"opponents": opponents})
}

func (s *Server) GetGroupChart(w http.ResponseWriter, r *http.Request) {
	const op = "internal.transport.http.GetGroupChart"

	params, err := chartParamsFrom(r)
	if err != nil {
		s.handleServiceError(w, r, op, err)
		return
	}

	doc, err := s.statsService.GetGroupChart(r.Context(), params.GroupID, params.Metric)
	if err != nil {
		s.handleServiceError(w, r, op, err)
		return
	}

	s.respond(w, http.StatusOK, map[string]*domain.ChartDoc{"chart": doc})
}

// respond is a helper function to encode data to JSON and write it to the response.
// It centralizes setting the Content-Type header and writing the status code.
func (s *Server) respond(w http.ResponseWriter, code int, data interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)

	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			s.log.Error("failed to encode response", sl.Err(err))
		}
	}
}

// respondError is a convenience wrapper around respond for sending simple error messages.
func (s *Server) respondError(w http.ResponseWriter, code int, message string) {
	s.respond(w, code, map[string]string{"error": message})
}

// handleServiceError provides centralized error handling for all HTTP handlers.
// It logs the internal error and maps it to a user-friendly HTTP response.
func (s *Server) handleServiceError(w http.ResponseWriter, _ *http.Request, op string, err error) {
	log := s.log.With(slog.String("op", op))
	log.Error("service error occurred", sl.Err(err))

	var validationErr *validation.ValidationError

	switch {
	case errors.As(err, &validationErr):
		s.respondError(w, http.StatusBadRequest, validationErr.Error())
	case errors.Is(err, apperrors.ErrInvalidMetric):
		s.respondError(w, http.StatusBadRequest, apperrors.ErrInvalidMetric.Error())
	case errors.Is(err, apperrors.ErrInvalidRequest):
		s.respondError(w, http.StatusBadRequest, "invalid request")
	case errors.Is(err, apperrors.ErrNotFound):
		s.respondError(w, http.StatusNotFound, "resource not found")
	default:
		s.respondError(w, http.StatusInternalServerError, "internal server error")
	}
}
