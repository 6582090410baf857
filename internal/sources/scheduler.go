package sources

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"filmloc/internal/catalog"
	"filmloc/internal/config"
	"filmloc/internal/logging"
	"filmloc/internal/reconcile"
)

// SourceResult records what happened to one source during a run.
type SourceResult struct {
	Name     string
	Priority int
	Skipped  bool
	Records  int
	Summary  reconcile.Summary
	Cursor   string
	Pause    time.Duration
	Err      error
}

// Report summarizes a scheduler run in execution order.
type Report struct {
	Sources []SourceResult
}

// Failed returns the number of sources whose fetch or processing failed.
func (r Report) Failed() int {
	n := 0
	for _, res := range r.Sources {
		if res.Err != nil {
			n++
		}
	}
	return n
}

// SleepFunc pauses for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Scheduler runs registered sources in priority order with a fixed pause
// after each one.
type Scheduler struct {
	entries   []catalog.DataSource
	registry  map[string]Source
	processor Processor
	logger    *slog.Logger
	sleep     SleepFunc
	cursors   map[string]string
}

// Option customizes a Scheduler.
type Option func(*Scheduler)

// WithSleep replaces the inter-source pause implementation.
func WithSleep(fn SleepFunc) Option {
	return func(s *Scheduler) {
		if fn != nil {
			s.sleep = fn
		}
	}
}

// WithSource registers src under its own name.
func WithSource(src Source) Option {
	return func(s *Scheduler) {
		s.Register(src)
	}
}

// NewScheduler builds a scheduler over the given source entries. Entries are
// ordered by ascending priority; ties keep their configured order.
func NewScheduler(entries []catalog.DataSource, processor Processor, logger *slog.Logger, opts ...Option) *Scheduler {
	ordered := append([]catalog.DataSource(nil), entries...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Priority < ordered[j].Priority
	})
	s := &Scheduler{
		entries:   ordered,
		registry:  make(map[string]Source),
		processor: processor,
		logger:    logging.NewComponentLogger(logger, "scheduler"),
		sleep:     reconcile.Sleep,
		cursors:   make(map[string]string),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// DataSources converts the enabled configured sources into scheduler entries.
func DataSources(cfg *config.Config) []catalog.DataSource {
	if cfg == nil {
		return nil
	}
	enabled := cfg.EnabledSources()
	out := make([]catalog.DataSource, 0, len(enabled))
	for _, src := range enabled {
		out = append(out, catalog.DataSource{
			Name:              src.Name,
			Priority:          src.Priority,
			RequestsPerMinute: src.RequestsPerMinute,
		})
	}
	return out
}

// Register adds or replaces the implementation for src.Name().
func (s *Scheduler) Register(src Source) {
	if src == nil {
		return
	}
	s.registry[src.Name()] = src
}

// Order returns the entries in the order Run visits them.
func (s *Scheduler) Order() []catalog.DataSource {
	return append([]catalog.DataSource(nil), s.entries...)
}

// Cursor returns the resume cursor recorded for name during this scheduler's
// lifetime.
func (s *Scheduler) Cursor(name string) string {
	return s.cursors[name]
}

// Run visits every source once. Per-source failures are logged and recorded
// in the report; only a canceled or expired context ends the run early.
func (s *Scheduler) Run(ctx context.Context) (Report, error) {
	var report Report
	s.logger.Info("scheduler run started", logging.Int("sources", len(s.entries)))

	for _, entry := range s.entries {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		result := s.runSource(ctx, entry)
		if err := ctx.Err(); err != nil {
			report.Sources = append(report.Sources, result)
			return report, err
		}

		result.Pause = entry.Pause()
		report.Sources = append(report.Sources, result)
		if result.Pause > 0 {
			s.logger.Debug("pausing between sources",
				logging.String(logging.FieldSource, entry.Name),
				logging.Duration("pause", result.Pause),
			)
			if err := s.sleep(ctx, result.Pause); err != nil {
				return report, err
			}
		}
	}

	s.logger.Info("scheduler run finished",
		logging.Int("sources", len(report.Sources)),
		logging.Int("failed", report.Failed()),
	)
	return report, nil
}

func (s *Scheduler) runSource(ctx context.Context, entry catalog.DataSource) SourceResult {
	result := SourceResult{Name: entry.Name, Priority: entry.Priority}
	ctx = logging.WithSource(ctx, entry.Name)
	logger := logging.WithContext(ctx, s.logger)

	src, ok := s.registry[entry.Name]
	if !ok {
		result.Skipped = true
		logger.Info("source has no ingestion implementation; skipping")
		return result
	}

	logger.Info("processing source", logging.Int("priority", entry.Priority))
	records, next, err := src.Fetch(ctx, s.cursors[entry.Name])
	if err != nil {
		result.Err = fmt.Errorf("fetch %s: %w", entry.Name, err)
		logging.ErrorWithContext(logger, "source fetch failed", "source_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "the next run retries this source from its last cursor"),
		)
		return result
	}
	result.Records = len(records)
	if next != "" {
		s.cursors[entry.Name] = next
	}
	result.Cursor = s.cursors[entry.Name]

	if len(records) > 0 && s.processor != nil {
		summary, err := s.processor.ProcessAll(ctx, tagSource(records, entry.Name))
		result.Summary = summary
		if err != nil {
			result.Err = fmt.Errorf("process %s: %w", entry.Name, err)
			if ctx.Err() == nil {
				logging.ErrorWithContext(logger, "source processing failed", "source_failed", logging.Error(err))
			}
			return result
		}
	}

	logger.Info("source processed",
		logging.Int("records", result.Records),
		logging.Int("processed", result.Summary.Processed),
		logging.Int("failed", result.Summary.Failed),
		logging.Int("submitted", result.Summary.Submitted),
		logging.String("cursor", result.Cursor),
	)
	return result
}

func tagSource(records []catalog.LocationRecord, name string) []catalog.LocationRecord {
	for i := range records {
		if records[i].Source == "" {
			records[i].Source = name
		}
	}
	return records
}
