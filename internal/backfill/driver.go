// package backfill orchestrates a full recomputation of the derived
// statistics: read every completed session, extract and order the matches,
// replay ratings and aggregates, then rewrite the derived documents scope by
// scope. Raw data is never written.
package backfill

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/bfeurer/jass-stats-service/internal/apperrors"
	"github.com/bfeurer/jass-stats-service/internal/chart"
	"github.com/bfeurer/jass-stats-service/internal/config"
	"github.com/bfeurer/jass-stats-service/internal/domain"
	"github.com/bfeurer/jass-stats-service/internal/extract"
	"github.com/bfeurer/jass-stats-service/internal/replay"
	"github.com/bfeurer/jass-stats-service/internal/repository"
	"github.com/bfeurer/jass-stats-service/pkg/logger/sl"
	"github.com/google/uuid"
)

// Options selects the scope of one run. GroupID restricts which derived
// documents are rewritten; the replay input is always the full history,
// because the rating table couples players across groups. MaxSessions keeps
// the oldest prefix of the history for staged verification. DryRun computes
// and reports everything but writes nothing.
type Options struct {
	GroupID     string
	DryRun      bool
	MaxSessions int
}

// Outcome classifies a completed run for the process exit code. A run with
// failed scope rewrites is a failure even when the recomputed ratings match
// the persisted ones: some derived documents are now stale.
type Outcome int

const (
	OutcomeNoChanges Outcome = iota
	OutcomeChanges
	OutcomeFailed
)

func (o Outcome) ExitCode() int {
	switch o {
	case OutcomeFailed:
		return 1
	case OutcomeChanges:
		return 2
	default:
		return 0
	}
}

// ScopeError records one failed scope rewrite. Other scopes proceed.
type ScopeError struct {
	Scope string
	Err   error
}

type Result struct {
	Outcome Outcome

	SessionsProcessed int
	SessionsSkipped   int
	MatchesReplayed   int
	MatchesSkipped    int

	// SkippedSessions holds one line per excluded session with its reason;
	// SkippedMatches the same for matches rejected during replay.
	SkippedSessions []string
	SkippedMatches  []string

	RatingsChanged int
	NewPlayers     int

	ScopesWritten int
	ScopeErrors   []ScopeError
}

// ratingChange is one line of the before/after summary.
type ratingChange struct {
	playerID string
	before   *float64
	after    float64
}

type Driver struct {
	sessions repository.SessionRepository
	writer   repository.DerivedWriter
	stats    repository.StatsReader
	cfg      config.Rating
	log      *slog.Logger
	out      io.Writer
}

func NewDriver(
	sessions repository.SessionRepository,
	writer repository.DerivedWriter,
	stats repository.StatsReader,
	cfg config.Rating,
	log *slog.Logger,
	out io.Writer,
) *Driver {
	return &Driver{
		sessions: sessions,
		writer:   writer,
		stats:    stats,
		cfg:      cfg,
		log:      log,
		out:      out,
	}
}

// Run executes one backfill. A returned error is fatal (the store could not
// be read or the replay state broke); per-scope write failures are collected
// in the Result instead.
func (d *Driver) Run(ctx context.Context, opts Options) (*Result, error) {
	const op = "internal.backfill.Run"
	log := d.log.With(
		slog.String("op", op),
		slog.String("run_id", uuid.NewString()),
		slog.String("group_id", opts.GroupID),
		slog.Bool("dry_run", opts.DryRun),
	)
	log.Info("starting backfill run")

	start := time.Now()
	defer func() { runDuration.Observe(time.Since(start).Seconds()) }()

	groups, err := d.targetGroups(ctx, opts)
	if err != nil {
		return nil, err
	}

	sessions, err := d.sessions.ListCompletedSessions(ctx, opts.MaxSessions)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}

	res := &Result{}

	matches := d.extractAll(log, sessions, res)
	ordered := replay.Order(matches)

	engine := replay.NewRatingEngine(d.cfg)
	acc := replay.NewAccumulator()

	for _, m := range ordered {
		if err := engine.Apply(m); err != nil {
			res.MatchesSkipped++
			res.SkippedMatches = append(res.SkippedMatches, fmt.Sprintf("match '%s': %v", m.ID, err))
			matchesSkipped.Inc()

			continue
		}

		if err := acc.Apply(m); err != nil {
			return nil, fmt.Errorf("accumulator diverged from rating engine on match '%s': %w", m.ID, err)
		}

		res.MatchesReplayed++
		matchesReplayed.Inc()
	}

	now := time.Now().UTC()
	ratings := engine.Ratings(now)
	totals := acc.Totals()

	changes, err := d.diffRatings(ctx, ratings, res)
	if err != nil {
		return nil, err
	}

	if res.RatingsChanged > 0 || res.NewPlayers > 0 {
		res.Outcome = OutcomeChanges
	}

	if !opts.DryRun {
		d.writeScopes(ctx, log, opts, groups, ordered, ratings, engine.Entries(), totals, res)

		if len(res.ScopeErrors) > 0 {
			res.Outcome = OutcomeFailed
		}
	}

	d.printSummary(opts, res, changes)
	log.Info("backfill run finished",
		slog.Int("sessions_processed", res.SessionsProcessed),
		slog.Int("sessions_skipped", res.SessionsSkipped),
		slog.Int("matches_skipped", res.MatchesSkipped),
		slog.Int("ratings_changed", res.RatingsChanged),
		slog.Int("scopes_failed", len(res.ScopeErrors)),
	)

	return res, nil
}

func (d *Driver) targetGroups(ctx context.Context, opts Options) ([]domain.Group, error) {
	if opts.GroupID != "" {
		group, err := d.sessions.GetGroup(ctx, opts.GroupID)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve target group: %w", err)
		}

		return []domain.Group{*group}, nil
	}

	groups, err := d.sessions.ListGroups(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}

	return groups, nil
}

func (d *Driver) extractAll(log *slog.Logger, sessions []domain.Session, res *Result) []domain.Match {
	var matches []domain.Match

	for _, s := range sessions {
		extracted, err := extract.Extract(s)
		if err != nil {
			var skip *apperrors.SkippedSessionError
			if errors.As(err, &skip) {
				log.Warn("session skipped", slog.String("session_id", skip.SessionID), slog.String("reason", skip.Reason))
				res.SessionsSkipped++
				res.SkippedSessions = append(res.SkippedSessions, skip.Error())
				sessionsSkipped.Inc()

				continue
			}

			// Extract classifies everything it rejects; anything else is a bug,
			// but one session must not sink the run.
			log.Error("unexpected extract failure", slog.String("session_id", s.ID), sl.Err(err))
			res.SessionsSkipped++
			res.SkippedSessions = append(res.SkippedSessions, fmt.Sprintf("session '%s' skipped: %v", s.ID, err))
			sessionsSkipped.Inc()

			continue
		}

		matches = append(matches, extracted...)
		res.SessionsProcessed++
		sessionsProcessed.Inc()
	}

	return matches
}

// diffRatings compares the recomputed ratings against the persisted ones so
// the operator sees what a run would change before committing it.
func (d *Driver) diffRatings(ctx context.Context, ratings []domain.PlayerRating, res *Result) ([]ratingChange, error) {
	var changes []ratingChange

	for _, r := range ratings {
		prev, err := d.stats.GetPlayerRating(ctx, r.PlayerID)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				res.NewPlayers++
				changes = append(changes, ratingChange{playerID: r.PlayerID, after: r.Rating})

				continue
			}

			return nil, fmt.Errorf("failed to read current rating for player '%s': %w", r.PlayerID, err)
		}

		if prev.Rating != r.Rating {
			res.RatingsChanged++
			before := prev.Rating
			changes = append(changes, ratingChange{playerID: r.PlayerID, before: &before, after: r.Rating})
		}
	}

	return changes, nil
}

func (d *Driver) writeScopes(
	ctx context.Context,
	log *slog.Logger,
	opts Options,
	groups []domain.Group,
	ordered []domain.Match,
	ratings []domain.PlayerRating,
	history []domain.RatingEntry,
	totals replay.Totals,
	res *Result,
) {
	writablePlayers := playersInScope(opts, ordered)

	statsByPlayer := make(map[string]domain.PlayerStat, len(totals.Players))
	for _, s := range totals.Players {
		statsByPlayer[s.PlayerID] = s
	}

	entries := make(map[string][]domain.RatingEntry)
	for _, e := range history {
		entries[e.PlayerID] = append(entries[e.PlayerID], e)
	}

	scores := make(map[string][]domain.ScoreEntry)
	pairs := make(map[string][]domain.PairStat)

	for _, p := range totals.Pairs {
		pairs[p.PlayerID] = append(pairs[p.PlayerID], p)
	}

	for _, e := range totals.Scores {
		scores[e.PlayerID] = append(scores[e.PlayerID], e)
	}

	for _, r := range ratings {
		if writablePlayers != nil {
			if _, ok := writablePlayers[r.PlayerID]; !ok {
				continue
			}
		}

		derived := repository.PlayerDerived{
			Rating:  r,
			History: entries[r.PlayerID],
			Scores:  scores[r.PlayerID],
			Stats:   statsByPlayer[r.PlayerID],
			Pairs:   pairs[r.PlayerID],
		}

		if err := d.writer.ReplacePlayerDerived(ctx, r.PlayerID, derived); err != nil {
			log.Error("player scope rewrite failed", slog.String("player_id", r.PlayerID), sl.Err(err))
			res.ScopeErrors = append(res.ScopeErrors, ScopeError{Scope: "player:" + r.PlayerID, Err: err})
			scopesFailed.WithLabelValues("player").Inc()

			continue
		}

		res.ScopesWritten++
	}

	groupStats := make(map[string][]domain.GroupStat)
	for _, s := range totals.Groups {
		groupStats[s.GroupID] = append(groupStats[s.GroupID], s)
	}

	for _, g := range groups {
		derived := repository.GroupDerived{
			Stats:  groupStats[g.ID],
			Charts: chart.Build(g.ID, history, totals.Scores),
		}

		if err := d.writer.ReplaceGroupDerived(ctx, g.ID, derived); err != nil {
			log.Error("group scope rewrite failed", slog.String("group_id", g.ID), sl.Err(err))
			res.ScopeErrors = append(res.ScopeErrors, ScopeError{Scope: "group:" + g.ID, Err: err})
			scopesFailed.WithLabelValues("group").Inc()

			continue
		}

		res.ScopesWritten++
	}
}

// playersInScope returns nil for an unrestricted run, otherwise the set of
// players who appeared in the target group's matches.
func playersInScope(opts Options, ordered []domain.Match) map[string]struct{} {
	if opts.GroupID == "" {
		return nil
	}

	set := make(map[string]struct{})

	for _, m := range ordered {
		if m.GroupID != opts.GroupID {
			continue
		}

		for _, p := range m.Participants() {
			set[p] = struct{}{}
		}
	}

	return set
}
