package reconcile

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"filmloc/internal/catalog"
	"filmloc/internal/config"
	"filmloc/internal/geocode"
	"filmloc/internal/logging"
)

// Result describes what one record produced.
type Result struct {
	RecordKey  string
	Production *catalog.Production
	Location   *catalog.Location
	Link       *catalog.FilmingLocation
	Submission *catalog.Submission
	Attempts   int
}

// Summary tallies a batch run.
type Summary struct {
	Processed int
	Failed    int
	Submitted int
}

// Pipeline resolves, links and routes records one at a time.
type Pipeline struct {
	resolver     *Resolver
	linker       *Linker
	router       *Router
	logger       *slog.Logger
	maxAttempts  int
	retryBackoff time.Duration
}

// Option customizes a Pipeline.
type Option func(*Pipeline)

// WithRetry overrides the per-record retry policy.
func WithRetry(maxAttempts int, backoff time.Duration) Option {
	return func(p *Pipeline) {
		if maxAttempts > 0 {
			p.maxAttempts = maxAttempts
		}
		if backoff >= 0 {
			p.retryBackoff = backoff
		}
	}
}

// WithConfidenceThreshold routes verified records below threshold to review.
func WithConfidenceThreshold(threshold float64) Option {
	return func(p *Pipeline) {
		p.router.confidenceThreshold = threshold
	}
}

// NewPipeline wires the resolver, linker and router over st.
func NewPipeline(st Store, geocoder geocode.Geocoder, logger *slog.Logger, opts ...Option) *Pipeline {
	p := &Pipeline{
		resolver:     NewResolver(st, st, geocoder, logger),
		linker:       NewLinker(st),
		router:       NewRouter(st, 0),
		logger:       logging.NewComponentLogger(logger, "pipeline"),
		maxAttempts:  1,
		retryBackoff: 0,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// NewPipelineFromConfig applies the pipeline and review sections of cfg.
func NewPipelineFromConfig(cfg *config.Config, st Store, geocoder geocode.Geocoder, logger *slog.Logger) *Pipeline {
	if cfg == nil {
		return NewPipeline(st, geocoder, logger)
	}
	return NewPipeline(st, geocoder, logger,
		WithRetry(cfg.Pipeline.MaxAttempts, time.Duration(cfg.Pipeline.RetryBackoffMilli)*time.Millisecond),
		WithConfidenceThreshold(cfg.Review.ConfidenceThreshold),
	)
}

// Resolver exposes the entity resolver used by the pipeline.
func (p *Pipeline) Resolver() *Resolver { return p.resolver }

// Process runs one record to completion. Transient failures retry the
// resolve and link steps; anything else aborts the record. Review routing
// runs once after the association is written and its failure is logged, not
// returned.
func (p *Pipeline) Process(ctx context.Context, record catalog.LocationRecord) (*Result, error) {
	key := record.Key()
	ctx = logging.WithRecordKey(logging.WithSource(ctx, record.Source), key)
	logger := logging.WithContext(ctx, p.logger)

	result := &Result{RecordKey: key}
	var err error
	for attempt := 1; attempt <= p.maxAttempts; attempt++ {
		result.Attempts = attempt
		err = p.resolveAndLink(ctx, record, result)
		if err == nil || !catalog.IsTransient(err) || attempt == p.maxAttempts {
			break
		}
		logger.Info("transient failure; retrying record",
			logging.Int("attempt", attempt),
			logging.Int("max_attempts", p.maxAttempts),
			logging.Error(err),
		)
		if waitErr := Sleep(ctx, p.retryBackoff); waitErr != nil {
			return result, waitErr
		}
	}
	if err != nil {
		return result, err
	}

	if p.router.NeedsReview(record) {
		submission, routeErr := p.router.RouteForReview(ctx, record)
		if routeErr != nil {
			logging.WarnWithContext(logger, "review routing failed; association kept", "review_route_failed",
				logging.Error(routeErr),
				logging.String(logging.FieldErrorHint, "replay the record to queue it for review"),
			)
		} else {
			result.Submission = submission
		}
	}

	logger.Info("record processed",
		logging.String(logging.FieldProductionID, result.Production.ID),
		logging.String(logging.FieldLocationID, result.Location.ID),
		logging.Bool("verified", result.Link.Verified),
		logging.Bool("submitted", result.Submission != nil),
	)
	return result, nil
}

func (p *Pipeline) resolveAndLink(ctx context.Context, record catalog.LocationRecord, result *Result) error {
	production, err := p.resolver.ResolveProduction(ctx, record.Production)
	if err != nil {
		return fmt.Errorf("resolve production %q: %w", record.Production.Title, err)
	}
	result.Production = production

	location, err := p.resolver.ResolveLocation(ctx, record.Location)
	if err != nil {
		return fmt.Errorf("resolve location %q: %w", record.Location.Name, err)
	}
	result.Location = location

	link, err := p.linker.UpsertFilmingLocation(ctx, production.ID, location.ID, record.FilmingInfo)
	if err != nil {
		return fmt.Errorf("link %q to %q: %w", production.Title, location.Name, err)
	}
	result.Link = link
	return nil
}

// ProcessAll runs every record, logging failures and continuing. Only a
// canceled or expired context stops the batch early.
func (p *Pipeline) ProcessAll(ctx context.Context, records []catalog.LocationRecord) (Summary, error) {
	var summary Summary
	for _, record := range records {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		result, err := p.Process(ctx, record)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return summary, ctxErr
			}
			summary.Failed++
			p.logFailure(ctx, record, err)
			continue
		}
		summary.Processed++
		if result.Submission != nil {
			summary.Submitted++
		}
	}
	return summary, nil
}

func (p *Pipeline) logFailure(ctx context.Context, record catalog.LocationRecord, err error) {
	logger := logging.WithContext(logging.WithRecordKey(logging.WithSource(ctx, record.Source), record.Key()), p.logger)
	attrs := []logging.Attr{
		logging.String("kind", string(catalog.KindOf(err))),
		logging.Error(err),
	}
	if payload, marshalErr := json.Marshal(record); marshalErr == nil {
		attrs = append(attrs, logging.String("record", string(payload)))
	}
	switch catalog.KindOf(err) {
	case catalog.KindTransient:
		attrs = append(attrs, logging.String(logging.FieldErrorHint, "backend or network unavailable; replay the record later"))
	case catalog.KindIntegrity:
		attrs = append(attrs, logging.String(logging.FieldErrorHint, "record rejected by the store; fix the payload and replay"))
	}
	logging.ErrorWithContext(logger, "record skipped", "record_failed", attrs...)
}

// Sleep waits for d or until ctx is done, returning ctx.Err() in the latter
// case. A non-positive d only reports the context state.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
