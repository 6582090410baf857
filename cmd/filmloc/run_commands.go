package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"filmloc/internal/catalog"
	"filmloc/internal/config"
	"filmloc/internal/logging"
	"filmloc/internal/notifications"
	"filmloc/internal/sources"
	"filmloc/internal/store"
	"filmloc/internal/tmdb"
	"filmloc/internal/wikipedia"
)

const missingTMDBKeyHint = "TMDB API key not configured; set tmdb.api_key in the config file or export TMDB_API_KEY (get one at https://www.themoviedb.org/settings/api)"

func newFetchCommand(ctx *commandContext) *cobra.Command {
	var page int

	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Import popular TMDB movies, then run the remaining sources",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if strings.TrimSpace(cfg.TMDB.APIKey) == "" {
				fmt.Fprintln(out, missingTMDBKeyHint)
				return nil
			}

			lock, err := sources.AcquireRunLock(cfg.LockPath())
			if err != nil {
				return err
			}
			defer func() { _ = lock.Release() }()

			st, err := ctx.openStore(cmd.Context())
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			importer, err := newImporter(cfg, st, logger)
			if err != nil {
				return err
			}

			fmt.Fprintf(out, "Fetching popular movies (page %d)...\n", page)
			result, err := importer.ImportPopular(cmd.Context(), page)
			if err != nil {
				return fmt.Errorf("import popular movies: %w", err)
			}
			fmt.Fprintf(out, "Imported %d movies (%d failed) from page %d of %d\n",
				result.Imported, result.Failed, result.Page, result.TotalPages)

			// The tmdb entry stays in the schedule for its pause but is not
			// registered, since this page was just imported.
			scheduler, err := newScheduler(ctx, cfg, st, nil)
			if err != nil {
				return err
			}
			return runScheduler(cmd, ctx, st, scheduler)
		},
	}
	cmd.Flags().IntVar(&page, "page", 1, "TMDB popular movies page to import")
	return cmd
}

func newRunCommand(ctx *commandContext) *cobra.Command {
	var tmdbPage int

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run every enabled source once in priority order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			lock, err := sources.AcquireRunLock(cfg.LockPath())
			if err != nil {
				return err
			}
			defer func() { _ = lock.Release() }()

			st, err := ctx.openStore(cmd.Context())
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			var extra []sources.Source
			if strings.TrimSpace(cfg.TMDB.APIKey) != "" {
				importer, err := newImporter(cfg, st, logger)
				if err != nil {
					return err
				}
				extra = append(extra, tmdb.NewSource(importer, tmdbPage))
			} else {
				logging.WarnWithContext(logger, "tmdb source disabled", "tmdb_unconfigured",
					logging.String(logging.FieldErrorHint, missingTMDBKeyHint),
				)
			}

			scheduler, err := newScheduler(ctx, cfg, st, extra)
			if err != nil {
				return err
			}
			return runScheduler(cmd, ctx, st, scheduler)
		},
	}
	cmd.Flags().IntVar(&tmdbPage, "tmdb-page", 1, "TMDB popular movies page the tmdb source starts from")
	return cmd
}

func newImporter(cfg *config.Config, st *store.Store, logger *slog.Logger) (*tmdb.Importer, error) {
	client, err := tmdb.NewFromConfig(cfg.TMDB)
	if err != nil {
		return nil, fmt.Errorf("tmdb client: %w", err)
	}
	return tmdb.NewImporter(client, st, cfg.TMDB.ImageBaseURL, logger), nil
}

func newScheduler(ctx *commandContext, cfg *config.Config, st *store.Store, extra []sources.Source) (*sources.Scheduler, error) {
	logger, err := ctx.ensureLogger()
	if err != nil {
		return nil, err
	}
	pipeline, err := ctx.newPipeline(st)
	if err != nil {
		return nil, err
	}
	configured, err := sources.FromConfig(cfg, logger)
	if err != nil {
		return nil, err
	}
	wiki, err := newWikipediaSource(cfg, logger)
	if err != nil {
		return nil, err
	}
	scheduler := sources.NewScheduler(sources.DataSources(cfg), pipeline, logger)
	scheduler.Register(wiki)
	for _, src := range append(extra, configured...) {
		scheduler.Register(src)
	}
	return scheduler, nil
}

func newWikipediaSource(cfg *config.Config, logger *slog.Logger) (*wikipedia.Source, error) {
	client, err := wikipedia.NewFromConfig(cfg.Wikipedia)
	if err != nil {
		return nil, fmt.Errorf("wikipedia client: %w", err)
	}
	return wikipedia.NewSource(client, cfg.Wikipedia.Queries, cfg.Wikipedia.SearchLimit, logger), nil
}

func runScheduler(cmd *cobra.Command, ctx *commandContext, st *store.Store, scheduler *sources.Scheduler) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	logger, err := ctx.ensureLogger()
	if err != nil {
		return err
	}

	started := time.Now()
	report, runErr := scheduler.Run(cmd.Context())
	renderReport(cmd.OutOrStdout(), report)
	if runErr != nil {
		return runErr
	}
	notifyRun(cmd.Context(), notifications.NewService(cfg.Notifications), st, report, time.Since(started), logger)
	if failed := report.Failed(); failed > 0 {
		return fmt.Errorf("%d of %d sources failed", failed, len(report.Sources))
	}
	return nil
}

// notifyRun publishes the run outcome. Delivery failures are logged only.
func notifyRun(ctx context.Context, notifier notifications.Service, st *store.Store, report sources.Report, elapsed time.Duration, logger *slog.Logger) {
	summary := notifications.RunSummary{
		Sources:       len(report.Sources),
		FailedSources: report.Failed(),
		Duration:      elapsed,
	}
	for _, res := range report.Sources {
		summary.Processed += res.Summary.Processed
		summary.Failed += res.Summary.Failed
		summary.Submitted += res.Summary.Submitted
		if res.Err != nil {
			if err := notifier.NotifySourceFailed(ctx, res.Name, res.Err); err != nil {
				logging.WarnWithContext(logger, "notification failed", "notify_failed", logging.Error(err))
			}
		}
	}
	if err := notifier.NotifyRunCompleted(ctx, summary); err != nil {
		logging.WarnWithContext(logger, "notification failed", "notify_failed", logging.Error(err))
	}
	if summary.Submitted == 0 {
		return
	}
	pending, err := st.ListSubmissions(ctx, catalog.SubmissionStatusPending)
	if err != nil {
		logging.WarnWithContext(logger, "review backlog lookup failed", "notify_failed", logging.Error(err))
		return
	}
	if err := notifier.NotifyReviewBacklog(ctx, len(pending)); err != nil {
		logging.WarnWithContext(logger, "notification failed", "notify_failed", logging.Error(err))
	}
}

func renderReport(out io.Writer, report sources.Report) {
	if len(report.Sources) == 0 {
		fmt.Fprintln(out, "No sources enabled")
		return
	}
	rows := make([][]string, 0, len(report.Sources))
	for _, res := range report.Sources {
		status := "ok"
		switch {
		case errors.Is(res.Err, context.Canceled):
			status = "canceled"
		case res.Err != nil:
			status = "failed"
		case res.Skipped:
			status = "skipped"
		}
		rows = append(rows, []string{
			res.Name,
			strconv.Itoa(res.Priority),
			status,
			strconv.Itoa(res.Records),
			strconv.Itoa(res.Summary.Processed),
			strconv.Itoa(res.Summary.Failed),
			strconv.Itoa(res.Summary.Submitted),
			res.Cursor,
		})
	}
	fmt.Fprintln(out, renderTable(out,
		[]string{"Source", "Priority", "Status", "Records", "Processed", "Failed", "Review", "Cursor"},
		rows,
		[]columnAlignment{alignLeft, alignRight, alignLeft, alignRight, alignRight, alignRight, alignRight, alignLeft},
	))
}
