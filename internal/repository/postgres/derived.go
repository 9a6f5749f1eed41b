package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/bfeurer/jass-stats-service/internal/apperrors"
	"github.com/bfeurer/jass-stats-service/internal/domain"
	"github.com/bfeurer/jass-stats-service/internal/repository"
	"github.com/bfeurer/jass-stats-service/pkg/logger/sl"
	"github.com/jmoiron/sqlx"
)

// DerivedRepository rewrites the derived tables scope by scope. Every scope
// rewrite runs in one transaction under an advisory lock, so a failed scope
// leaves its prior rows untouched and concurrent runs never interleave.
type DerivedRepository struct {
	db  *sqlx.DB
	log *slog.Logger
	sq  sq.StatementBuilderType
}

func NewDerivedRepository(db *sqlx.DB, log *slog.Logger) *DerivedRepository {
	return &DerivedRepository{
		db:  db,
		log: log,
		sq:  sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

func (dr *DerivedRepository) ReplacePlayerDerived(ctx context.Context, playerID string, derived repository.PlayerDerived) error {
	const op = "internal.repository.postgres.ReplacePlayerDerived"
	log := dr.log.With(slog.String("op", op), slog.String("player_id", playerID))

	return dr.inScope(ctx, log, "player:"+playerID, func(tx *sqlx.Tx) error {
		for _, table := range []string{"player_ratings", "rating_history", "scores_history", "player_stats", "pair_stats"} {
			if err := dr.deleteScope(ctx, tx, table, "player_id", playerID); err != nil {
				return err
			}
		}

		if err := dr.insertRating(ctx, tx, derived.Rating); err != nil {
			return err
		}

		if err := dr.insertRatingHistory(ctx, tx, derived.History); err != nil {
			return err
		}

		if err := dr.insertScoresHistory(ctx, tx, derived.Scores); err != nil {
			return err
		}

		if err := dr.insertPlayerStats(ctx, tx, derived.Stats); err != nil {
			return err
		}

		return dr.insertPairStats(ctx, tx, derived.Pairs)
	})
}

func (dr *DerivedRepository) ReplaceGroupDerived(ctx context.Context, groupID string, derived repository.GroupDerived) error {
	const op = "internal.repository.postgres.ReplaceGroupDerived"
	log := dr.log.With(slog.String("op", op), slog.String("group_id", groupID))

	return dr.inScope(ctx, log, "group:"+groupID, func(tx *sqlx.Tx) error {
		for _, table := range []string{"group_stats", "group_chart_docs"} {
			if err := dr.deleteScope(ctx, tx, table, "group_id", groupID); err != nil {
				return err
			}
		}

		if err := dr.insertGroupStats(ctx, tx, derived.Stats); err != nil {
			return err
		}

		return dr.insertChartDocs(ctx, tx, derived.Charts)
	})
}

// inScope wraps one scope rewrite: transaction, advisory lock, commit.
func (dr *DerivedRepository) inScope(ctx context.Context, log *slog.Logger, scope string, fn func(tx *sqlx.Tx) error) error {
	tx, err := dr.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			log.Error("failed to rollback transaction", sl.Err(err))
		}
	}()

	var locked bool
	if err := tx.GetContext(ctx, &locked, "SELECT pg_try_advisory_xact_lock(hashtext($1))", scope); err != nil {
		return fmt.Errorf("failed to acquire scope lock: %w", err)
	}

	if !locked {
		return &apperrors.ScopeLockedError{Scope: scope}
	}

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.Info("scope rewritten")

	return nil
}

func (dr *DerivedRepository) deleteScope(ctx context.Context, tx *sqlx.Tx, table, column, id string) error {
	query, args, err := dr.sq.Delete(table).
		Where(sq.Eq{column: id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete query for %s: %w", table, err)
	}

	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to clear %s: %w", table, err)
	}

	return nil
}

func (dr *DerivedRepository) insertRating(ctx context.Context, tx *sqlx.Tx, rating domain.PlayerRating) error {
	query, args, err := dr.sq.Insert("player_ratings").
		Columns("player_id", "rating", "matches_played", "updated_at").
		Values(rating.PlayerID, rating.Rating, rating.MatchesPlayed, rating.UpdatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build rating insert: %w", err)
	}

	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to insert rating: %w", err)
	}

	return nil
}

func (dr *DerivedRepository) insertRatingHistory(ctx context.Context, tx *sqlx.Tx, entries []domain.RatingEntry) error {
	if len(entries) == 0 {
		return nil
	}

	builder := dr.sq.Insert("rating_history").
		Columns("player_id", "group_id", "session_id", "match_id", "match_number", "rating", "delta", "played_at")

	for _, e := range entries {
		builder = builder.Values(e.PlayerID, e.GroupID, e.SessionID, e.MatchID, e.MatchNumber, e.Rating, e.Delta, e.PlayedAt)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return fmt.Errorf("failed to build rating history insert: %w", err)
	}

	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to insert rating history: %w", err)
	}

	return nil
}

func (dr *DerivedRepository) insertScoresHistory(ctx context.Context, tx *sqlx.Tx, entries []domain.ScoreEntry) error {
	if len(entries) == 0 {
		return nil
	}

	builder := dr.sq.Insert("scores_history").
		Columns("player_id", "group_id", "session_id", "match_id", "striche_diff", "points_diff", "played_at")

	for _, e := range entries {
		builder = builder.Values(e.PlayerID, e.GroupID, e.SessionID, e.MatchID, e.StricheDiff, e.PointsDiff, e.PlayedAt)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return fmt.Errorf("failed to build scores history insert: %w", err)
	}

	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to insert scores history: %w", err)
	}

	return nil
}

var tallyColumns = []string{
	"matches_played", "matches_won", "matches_lost", "matches_drawn",
	"sessions_played", "sessions_won", "sessions_lost", "sessions_drawn",
	"points_diff", "striche_diff",
	"matsch_made", "matsch_received",
	"schneider_made", "schneider_received",
	"kontermatsch_made", "kontermatsch_received",
	"events_inferred",
}

func tallyValues(matches [4]int, sessions [4]int, points, striche int, events [6]int, inferred bool) []interface{} {
	return []interface{}{
		matches[0], matches[1], matches[2], matches[3],
		sessions[0], sessions[1], sessions[2], sessions[3],
		points, striche,
		events[0], events[1], events[2], events[3], events[4], events[5],
		inferred,
	}
}

func (dr *DerivedRepository) insertPlayerStats(ctx context.Context, tx *sqlx.Tx, stats domain.PlayerStat) error {
	values := append([]interface{}{stats.PlayerID}, tallyValues(
		[4]int{stats.MatchesPlayed, stats.MatchesWon, stats.MatchesLost, stats.MatchesDrawn},
		[4]int{stats.SessionsPlayed, stats.SessionsWon, stats.SessionsLost, stats.SessionsDrawn},
		stats.PointsDiff, stats.StricheDiff,
		[6]int{stats.MatschMade, stats.MatschReceived, stats.SchneiderMade, stats.SchneiderReceived, stats.KontermatschMade, stats.KontermatschReceived},
		stats.EventsInferred,
	)...)

	query, args, err := dr.sq.Insert("player_stats").
		Columns(append([]string{"player_id"}, tallyColumns...)...).
		Values(values...).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build player stats insert: %w", err)
	}

	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to insert player stats: %w", err)
	}

	return nil
}

func (dr *DerivedRepository) insertPairStats(ctx context.Context, tx *sqlx.Tx, pairs []domain.PairStat) error {
	if len(pairs) == 0 {
		return nil
	}

	builder := dr.sq.Insert("pair_stats").
		Columns(append([]string{"player_id", "counterpart_id", "relation"}, tallyColumns...)...)

	for _, p := range pairs {
		values := append([]interface{}{p.PlayerID, p.CounterpartID, p.Relation}, tallyValues(
			[4]int{p.MatchesPlayed, p.MatchesWon, p.MatchesLost, p.MatchesDrawn},
			[4]int{p.SessionsPlayed, p.SessionsWon, p.SessionsLost, p.SessionsDrawn},
			p.PointsDiff, p.StricheDiff,
			[6]int{p.MatschMade, p.MatschReceived, p.SchneiderMade, p.SchneiderReceived, p.KontermatschMade, p.KontermatschReceived},
			p.EventsInferred,
		)...)
		builder = builder.Values(values...)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return fmt.Errorf("failed to build pair stats insert: %w", err)
	}

	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to insert pair stats: %w", err)
	}

	return nil
}

func (dr *DerivedRepository) insertGroupStats(ctx context.Context, tx *sqlx.Tx, stats []domain.GroupStat) error {
	if len(stats) == 0 {
		return nil
	}

	builder := dr.sq.Insert("group_stats").
		Columns(append([]string{"player_id", "group_id"}, tallyColumns...)...)

	for _, s := range stats {
		values := append([]interface{}{s.PlayerID, s.GroupID}, tallyValues(
			[4]int{s.MatchesPlayed, s.MatchesWon, s.MatchesLost, s.MatchesDrawn},
			[4]int{s.SessionsPlayed, s.SessionsWon, s.SessionsLost, s.SessionsDrawn},
			s.PointsDiff, s.StricheDiff,
			[6]int{s.MatschMade, s.MatschReceived, s.SchneiderMade, s.SchneiderReceived, s.KontermatschMade, s.KontermatschReceived},
			s.EventsInferred,
		)...)
		builder = builder.Values(values...)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return fmt.Errorf("failed to build group stats insert: %w", err)
	}

	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to insert group stats: %w", err)
	}

	return nil
}

func (dr *DerivedRepository) insertChartDocs(ctx context.Context, tx *sqlx.Tx, docs []domain.ChartDoc) error {
	for _, doc := range docs {
		labels, err := json.Marshal(doc.Labels)
		if err != nil {
			return fmt.Errorf("failed to marshal chart labels: %w", err)
		}

		series, err := json.Marshal(doc.Series)
		if err != nil {
			return fmt.Errorf("failed to marshal chart series: %w", err)
		}

		query, args, err := dr.sq.Insert("group_chart_docs").
			Columns("group_id", "metric", "labels", "series", "updated_at").
			Values(doc.GroupID, doc.Metric, labels, series, time.Now().UTC()).
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build chart doc insert: %w", err)
		}

		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("failed to insert chart doc: %w", err)
		}
	}

	return nil
}
