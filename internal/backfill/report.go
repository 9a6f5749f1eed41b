package backfill

import (
	"fmt"

	"github.com/fatih/color"
)

// printSummary renders the operator-facing before/after report. It is
// written on every run, dry or not, so a dry run can be verified before the
// real one.
func (d *Driver) printSummary(opts Options, res *Result, changes []ratingChange) {
	header := color.New(color.FgCyan, color.Bold)
	good := color.New(color.FgGreen)
	warn := color.New(color.FgYellow)
	bad := color.New(color.FgRed)

	mode := "execute"
	if opts.DryRun {
		mode = "dry-run"
	}

	scope := "all groups"
	if opts.GroupID != "" {
		scope = "group " + opts.GroupID
	}

	header.Fprintf(d.out, "backfill %s (%s)\n", mode, scope)
	fmt.Fprintf(d.out, "  sessions processed: %d\n", res.SessionsProcessed)

	if res.SessionsSkipped > 0 {
		warn.Fprintf(d.out, "  sessions skipped:   %d\n", res.SessionsSkipped)
		for _, line := range res.SkippedSessions {
			warn.Fprintf(d.out, "    - %s\n", line)
		}
	}

	fmt.Fprintf(d.out, "  matches replayed:   %d\n", res.MatchesReplayed)

	if res.MatchesSkipped > 0 {
		warn.Fprintf(d.out, "  matches skipped:    %d\n", res.MatchesSkipped)
		for _, line := range res.SkippedMatches {
			warn.Fprintf(d.out, "    - %s\n", line)
		}
	}

	switch {
	case len(changes) == 0:
		good.Fprintf(d.out, "  ratings: no changes\n")
	default:
		warn.Fprintf(d.out, "  ratings changed: %d (%d new players)\n", res.RatingsChanged, res.NewPlayers)
		for _, c := range changes {
			if c.before == nil {
				fmt.Fprintf(d.out, "    %s: (new) -> %.2f\n", c.playerID, c.after)
				continue
			}

			fmt.Fprintf(d.out, "    %s: %.2f -> %.2f\n", c.playerID, *c.before, c.after)
		}
	}

	if opts.DryRun {
		warn.Fprintf(d.out, "  dry-run: nothing written\n")
		return
	}

	good.Fprintf(d.out, "  scopes written: %d\n", res.ScopesWritten)

	for _, se := range res.ScopeErrors {
		bad.Fprintf(d.out, "  scope failed: %s: %v\n", se.Scope, se.Err)
	}
}
