package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/bfeurer/jass-stats-service/internal/backfill"
	"github.com/bfeurer/jass-stats-service/internal/config"
	"github.com/bfeurer/jass-stats-service/internal/repository/postgres"
	"github.com/bfeurer/jass-stats-service/pkg/logger/slogpretty"
)

// Exit codes: 0 means the run completed without findings, 2 means changes
// were applied (or reported in dry-run mode), 1 means the run aborted or
// some scope rewrites failed.
func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	groupID := flag.String("group", "", "restrict rewritten documents to one group (replay still covers all history)")
	dryRun := flag.Bool("dry-run", false, "compute and report without writing")
	maxSessions := flag.Int("max-sessions", 0, "replay only the oldest N sessions (0 = all)")
	flag.Parse()

	opts := backfill.Options{
		GroupID:     *groupID,
		DryRun:      *dryRun,
		MaxSessions: *maxSessions,
	}

	res, err := run(ctx, opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", err)
		os.Exit(1)
	}

	os.Exit(res.Outcome.ExitCode())
}

func run(ctx context.Context, opts backfill.Options) (*backfill.Result, error) {
	cfg := config.MustLoad()
	log := slogpretty.SetupLogger(cfg.Env)

	log.Info("starting backfill",
		slog.String("env", cfg.Env),
		slog.String("group", opts.GroupID),
		slog.Bool("dry_run", opts.DryRun),
	)

	db, err := postgres.NewDB(cfg.Postgres, log)
	if err != nil {
		return nil, fmt.Errorf("failed to init db: %v", err)
	}
	defer db.DB().Close()

	driver := backfill.NewDriver(
		postgres.NewSessionRepository(db.DB(), log),
		postgres.NewDerivedRepository(db.DB(), log),
		postgres.NewStatsRepository(db.DB(), log),
		cfg.Rating,
		log,
		os.Stdout,
	)

	return driver.Run(ctx, opts)
}
