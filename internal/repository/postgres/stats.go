package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	sq "github.com/Masterminds/squirrel"
	"github.com/bfeurer/jass-stats-service/internal/apperrors"
	"github.com/bfeurer/jass-stats-service/internal/domain"
	"github.com/jmoiron/sqlx"
)

// StatsRepository serves the read-only projections behind the HTTP API.
type StatsRepository struct {
	db  *sqlx.DB
	log *slog.Logger
	sq  sq.StatementBuilderType
}

func NewStatsRepository(db *sqlx.DB, log *slog.Logger) *StatsRepository {
	return &StatsRepository{
		db:  db,
		log: log,
		sq:  sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

func (str *StatsRepository) GetPlayerRating(ctx context.Context, playerID string) (*domain.PlayerRating, error) {
	query, args, err := str.sq.Select("player_id", "rating", "matches_played", "updated_at").
		From("player_ratings").
		Where(sq.Eq{"player_id": playerID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select rating query: %w", err)
	}

	var rating domain.PlayerRating
	if err := str.db.GetContext(ctx, &rating, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: rating for player '%s'", apperrors.ErrNotFound, playerID)
		}

		return nil, fmt.Errorf("failed to get player rating: %w", err)
	}

	return &rating, nil
}

func (str *StatsRepository) GetRatingHistory(ctx context.Context, playerID string) ([]domain.RatingEntry, error) {
	query, args, err := str.sq.Select("player_id", "group_id", "session_id", "match_id", "match_number", "rating", "delta", "played_at").
		From("rating_history").
		Where(sq.Eq{"player_id": playerID}).
		OrderBy("played_at", "match_number", "match_id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select history query: %w", err)
	}

	var entries []domain.RatingEntry
	if err := str.db.SelectContext(ctx, &entries, query, args...); err != nil {
		return nil, fmt.Errorf("failed to get rating history: %w", err)
	}

	return entries, nil
}

func (str *StatsRepository) GetPairStats(ctx context.Context, playerID string, relation domain.PairRelation) ([]domain.PairStat, error) {
	const op = "internal.repository.postgres.GetPairStats"
	log := str.log.With(slog.String("op", op), slog.String("player_id", playerID))
	log.Info("getting pair stats", slog.String("relation", string(relation)))

	columns := append([]string{"player_id", "counterpart_id", "relation"}, tallyColumns...)

	query, args, err := str.sq.Select(columns...).
		From("pair_stats").
		Where(sq.Eq{"player_id": playerID, "relation": relation}).
		OrderBy("counterpart_id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select pair stats query: %w", err)
	}

	var pairs []domain.PairStat
	if err := str.db.SelectContext(ctx, &pairs, query, args...); err != nil {
		return nil, fmt.Errorf("failed to get pair stats: %w", err)
	}

	return pairs, nil
}

type chartRow struct {
	GroupID string `db:"group_id"`
	Metric  string `db:"metric"`
	Labels  []byte `db:"labels"`
	Series  []byte `db:"series"`
}

func (str *StatsRepository) GetChartDoc(ctx context.Context, groupID string, metric domain.ChartMetric) (*domain.ChartDoc, error) {
	query, args, err := str.sq.Select("group_id", "metric", "labels", "series").
		From("group_chart_docs").
		Where(sq.Eq{"group_id": groupID, "metric": metric}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select chart query: %w", err)
	}

	var row chartRow
	if err := str.db.GetContext(ctx, &row, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: chart '%s' for group '%s'", apperrors.ErrNotFound, metric, groupID)
		}

		return nil, fmt.Errorf("failed to get chart doc: %w", err)
	}

	doc := domain.ChartDoc{
		GroupID: row.GroupID,
		Metric:  domain.ChartMetric(row.Metric),
	}

	if err := json.Unmarshal(row.Labels, &doc.Labels); err != nil {
		return nil, fmt.Errorf("failed to unmarshal chart labels: %w", err)
	}

	if err := json.Unmarshal(row.Series, &doc.Series); err != nil {
		return nil, fmt.Errorf("failed to unmarshal chart series: %w", err)
	}

	return &doc, nil
}
