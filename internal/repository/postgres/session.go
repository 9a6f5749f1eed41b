package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	sq "github.com/Masterminds/squirrel"
	"github.com/bfeurer/jass-stats-service/internal/apperrors"
	"github.com/bfeurer/jass-stats-service/internal/domain"
	"github.com/jmoiron/sqlx"
)

// SessionRepository reads the raw groups and sessions tables.
type SessionRepository struct {
	db  *sqlx.DB
	log *slog.Logger
	sq  sq.StatementBuilderType
}

func NewSessionRepository(db *sqlx.DB, log *slog.Logger) *SessionRepository {
	return &SessionRepository{
		db:  db,
		log: log,
		sq:  sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

func (sr *SessionRepository) ListGroups(ctx context.Context) ([]domain.Group, error) {
	query, args, err := sr.sq.Select("id", "name").
		From("groups").
		OrderBy("id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select groups query: %w", err)
	}

	var groups []domain.Group
	if err := sr.db.SelectContext(ctx, &groups, query, args...); err != nil {
		return nil, fmt.Errorf("failed to get groups: %w", err)
	}

	return groups, nil
}

func (sr *SessionRepository) GetGroup(ctx context.Context, groupID string) (*domain.Group, error) {
	query, args, err := sr.sq.Select("id", "name").
		From("groups").
		Where(sq.Eq{"id": groupID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select group query: %w", err)
	}

	var group domain.Group
	if err := sr.db.GetContext(ctx, &group, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: group with id '%s'", apperrors.ErrNotFound, groupID)
		}

		return nil, fmt.Errorf("failed to get group by id: %w", err)
	}

	return &group, nil
}

// ListCompletedSessions returns the full completed history in chronological
// order. A limit of 0 means no limit; a positive limit keeps the oldest
// sessions so a staged run replays a stable prefix.
func (sr *SessionRepository) ListCompletedSessions(ctx context.Context, limit int) ([]domain.Session, error) {
	const op = "internal.repository.postgres.ListCompletedSessions"
	log := sr.log.With(slog.String("op", op))
	log.Info("listing completed sessions", slog.Int("limit", limit))

	builder := sr.sq.Select("id", "group_id", "kind", "status", "completed_at", "payload").
		From("sessions").
		Where(sq.Eq{"status": domain.SessionCompleted}).
		OrderBy("completed_at", "id")

	if limit > 0 {
		builder = builder.Limit(uint64(limit))
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select sessions query: %w", err)
	}

	var sessions []domain.Session
	if err := sr.db.SelectContext(ctx, &sessions, query, args...); err != nil {
		return nil, fmt.Errorf("failed to get sessions: %w", err)
	}

	log.Info("sessions listed", slog.Int("count", len(sessions)))

	return sessions, nil
}
