package main

import (
	"context"
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/psyscore/psyscore/internal/export"
	"github.com/psyscore/psyscore/internal/source"
)

func newRescoreCmd(g *globalOpts) *cobra.Command {
	var (
		databaseURL string
		table       string
		since       string
		limit       int
		workers     int
		dryRun      bool
	)

	cmd := &cobra.Command{
		Use:   "rescore",
		Short: "Rescore stored submissions and export the reports",
		Long: `Reads stored pre-assessment submissions from Postgres, scores each one with
the current catalog, and publishes the reports to the configured export
backend. Submissions that fail to score are logged and counted; the run
continues.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := rescoreOpts{
				databaseURL: databaseURL,
				table:       table,
				limit:       limit,
				workers:     workers,
				dryRun:      dryRun,
			}
			if since != "" {
				t, err := parseSince(since, time.Now())
				if err != nil {
					return err
				}
				opts.since = t
			}
			return runRescore(cmd.Context(), cmd.OutOrStdout(), g, opts)
		},
	}

	cmd.Flags().StringVar(&databaseURL, "database-url", "", "Postgres URL (default: source.database_url from config)")
	cmd.Flags().StringVar(&table, "table", "", "Submissions table (default: source.table from config)")
	cmd.Flags().StringVar(&since, "since", "", "Only submissions created after this RFC 3339 time or duration ago (e.g. 24h)")
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum number of submissions (0 = all)")
	cmd.Flags().IntVar(&workers, "workers", 4, "Number of concurrent scoring workers")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Score without exporting")

	return cmd
}

type rescoreOpts struct {
	databaseURL string
	table       string
	since       time.Time
	limit       int
	workers     int
	dryRun      bool
}

type rescoreStats struct {
	scored   atomic.Int64
	failed   atomic.Int64
	exported atomic.Int64
}

func runRescore(ctx context.Context, w io.Writer, g *globalOpts, opts rescoreOpts) error {
	if opts.workers < 1 {
		return fmt.Errorf("--workers must be at least 1, got %d", opts.workers)
	}

	e, err := setup(g)
	if err != nil {
		return err
	}
	defer e.close()

	dbURL := firstNonEmpty(opts.databaseURL, e.cfg.Source.DatabaseURL)
	if dbURL == "" {
		return fmt.Errorf("no database URL: set --database-url, source.database_url, or PSYSCORE_DATABASE_URL")
	}

	svc, err := source.Open(ctx, dbURL, firstNonEmpty(opts.table, e.cfg.Source.Table))
	if err != nil {
		return err
	}
	defer svc.Close()

	subs, err := svc.ListSubmissions(ctx, source.Filter{Since: opts.since, Limit: opts.limit})
	if err != nil {
		return err
	}
	e.log.Info("rescoring submissions", zap.Int("count", len(subs)), zap.Int("workers", opts.workers))

	var sink export.Sink
	if !opts.dryRun {
		sink, err = export.New(ctx, e.cfg.Export)
		if err != nil {
			return err
		}
		defer closeSink(sink)
	}

	var stats rescoreStats
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(opts.workers)
	for _, sub := range subs {
		eg.Go(func() error {
			report, err := e.evaluator.Evaluate(sub)
			if err != nil {
				stats.failed.Add(1)
				e.log.Warn("scoring failed", zap.String("submission", sub.ID), zap.Error(err))
				return nil
			}
			stats.scored.Add(1)
			if sink == nil {
				return nil
			}
			if err := export.Publish(egCtx, sink, report); err != nil {
				return err
			}
			stats.exported.Add(1)
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return fmt.Errorf("rescore: %w", err)
	}

	e.log.Info("rescore complete",
		zap.Int64("scored", stats.scored.Load()),
		zap.Int64("failed", stats.failed.Load()),
		zap.Int64("exported", stats.exported.Load()),
	)
	fmt.Fprintf(w, "Scored %d of %d submissions (%d failed, %d exported)\n",
		stats.scored.Load(), len(subs), stats.failed.Load(), stats.exported.Load())
	return nil
}

// parseSince accepts an RFC 3339 timestamp or a duration relative to now.
func parseSince(s string, now time.Time) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --since %q: want RFC 3339 time or duration", s)
	}
	return now.Add(-d), nil
}

func closeSink(s export.Sink) {
	if c, ok := s.(io.Closer); ok {
		_ = c.Close()
	}
}
