package sources_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"filmloc/internal/catalog"
	"filmloc/internal/config"
	"filmloc/internal/logging"
	"filmloc/internal/reconcile"
	"filmloc/internal/sources"
	"filmloc/internal/testsupport"
)

type fakeSource struct {
	name    string
	records []catalog.LocationRecord
	next    string
	err     error
	events  *[]string
	cursors []string
}

func (f *fakeSource) Name() string { return f.name }

func (f *fakeSource) Fetch(_ context.Context, cursor string) ([]catalog.LocationRecord, string, error) {
	*f.events = append(*f.events, "fetch:"+f.name)
	f.cursors = append(f.cursors, cursor)
	return f.records, f.next, f.err
}

type fakeProcessor struct {
	batches [][]catalog.LocationRecord
}

func (p *fakeProcessor) ProcessAll(_ context.Context, records []catalog.LocationRecord) (reconcile.Summary, error) {
	p.batches = append(p.batches, records)
	return reconcile.Summary{Processed: len(records)}, nil
}

type pauseRecorder struct {
	events *[]string
	pauses []time.Duration
}

func (r *pauseRecorder) sleep(_ context.Context, d time.Duration) error {
	*r.events = append(*r.events, "pause")
	r.pauses = append(r.pauses, d)
	return nil
}

func TestSchedulerRunsByPriorityWithRatePauses(t *testing.T) {
	var events []string
	recorder := &pauseRecorder{events: &events}
	second := &fakeSource{name: "imdb", events: &events}
	first := &fakeSource{name: "tmdb", events: &events}

	entries := []catalog.DataSource{
		{Name: "imdb", Priority: 2, RequestsPerMinute: 10},
		{Name: "tmdb", Priority: 1, RequestsPerMinute: 40},
	}
	scheduler := sources.NewScheduler(entries, &fakeProcessor{}, logging.NewNop(),
		sources.WithSleep(recorder.sleep),
		sources.WithSource(second),
		sources.WithSource(first),
	)

	report, err := scheduler.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	wantEvents := []string{"fetch:tmdb", "pause", "fetch:imdb", "pause"}
	if len(events) != len(wantEvents) {
		t.Fatalf("events = %v, want %v", events, wantEvents)
	}
	for i := range wantEvents {
		if events[i] != wantEvents[i] {
			t.Fatalf("event %d = %q, want %q", i, events[i], wantEvents[i])
		}
	}
	wantPauses := []time.Duration{1500 * time.Millisecond, 6 * time.Second}
	for i, want := range wantPauses {
		if recorder.pauses[i] != want {
			t.Fatalf("pause %d = %v, want %v", i, recorder.pauses[i], want)
		}
	}
	if report.Sources[0].Name != "tmdb" || report.Sources[1].Name != "imdb" {
		t.Fatalf("unexpected report order %+v", report.Sources)
	}
}

func TestSchedulerContinuesAfterFailingSource(t *testing.T) {
	var events []string
	recorder := &pauseRecorder{events: &events}
	broken := &fakeSource{name: "wikipedia", err: errors.New("HTTP 503"), events: &events}
	healthy := &fakeSource{
		name:    "reddit",
		events:  &events,
		records: []catalog.LocationRecord{{Production: catalog.ProductionInput{Title: "The Matrix"}}},
		next:    "t3_abc",
	}
	processor := &fakeProcessor{}
	scheduler := sources.NewScheduler([]catalog.DataSource{
		{Name: "wikipedia", Priority: 3, RequestsPerMinute: 30},
		{Name: "reddit", Priority: 4, RequestsPerMinute: 60},
	}, processor, logging.NewNop(), sources.WithSleep(recorder.sleep), sources.WithSource(broken), sources.WithSource(healthy))

	report, err := scheduler.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.Failed() != 1 || report.Sources[0].Err == nil {
		t.Fatalf("expected the first source to fail, got %+v", report.Sources)
	}
	if len(recorder.pauses) != 2 {
		t.Fatalf("expected a pause after both sources, got %v", recorder.pauses)
	}
	if len(processor.batches) != 1 || processor.batches[0][0].Source != "reddit" {
		t.Fatalf("expected reddit records tagged with their source, got %+v", processor.batches)
	}
	if scheduler.Cursor("reddit") != "t3_abc" {
		t.Fatalf("expected cursor to be recorded, got %q", scheduler.Cursor("reddit"))
	}

	if _, err := scheduler.Run(context.Background()); err != nil {
		t.Fatalf("second Run: %v", err)
	}
	if got := healthy.cursors; len(got) != 2 || got[1] != "t3_abc" {
		t.Fatalf("expected second fetch to resume from cursor, got %v", got)
	}
}

func TestSchedulerSkipsUnregisteredSources(t *testing.T) {
	var events []string
	recorder := &pauseRecorder{events: &events}
	scheduler := sources.NewScheduler([]catalog.DataSource{
		{Name: "instagram", Priority: 5, RequestsPerMinute: 20},
	}, &fakeProcessor{}, logging.NewNop(), sources.WithSleep(recorder.sleep))

	report, err := scheduler.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !report.Sources[0].Skipped {
		t.Fatalf("expected instagram to be skipped, got %+v", report.Sources[0])
	}
	if len(recorder.pauses) != 1 || recorder.pauses[0] != 3*time.Second {
		t.Fatalf("expected the rate pause to still apply, got %v", recorder.pauses)
	}
}

func TestSchedulerStopsWhenCanceledDuringPause(t *testing.T) {
	var events []string
	ctx, cancel := context.WithCancel(context.Background())
	scheduler := sources.NewScheduler([]catalog.DataSource{
		{Name: "tmdb", Priority: 1, RequestsPerMinute: 40},
		{Name: "imdb", Priority: 2, RequestsPerMinute: 10},
	}, &fakeProcessor{}, logging.NewNop(),
		sources.WithSleep(func(ctx context.Context, _ time.Duration) error {
			cancel()
			return ctx.Err()
		}),
		sources.WithSource(&fakeSource{name: "tmdb", events: &events}),
		sources.WithSource(&fakeSource{name: "imdb", events: &events}),
	)

	_, err := scheduler.Run(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancellation, got %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected only the first source to run, got %v", events)
	}
}

type blockingSource struct{ name string }

func (b *blockingSource) Name() string { return b.name }

func (b *blockingSource) Fetch(ctx context.Context, _ string) ([]catalog.LocationRecord, string, error) {
	<-ctx.Done()
	return nil, "", ctx.Err()
}

func TestSchedulerStopsWhenDeadlineExpires(t *testing.T) {
	var events []string
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	later := &fakeSource{name: "imdb", events: &events}
	scheduler := sources.NewScheduler([]catalog.DataSource{
		{Name: "slow", Priority: 1},
		{Name: "imdb", Priority: 2},
	}, &fakeProcessor{}, logging.NewNop(),
		sources.WithSource(&blockingSource{name: "slow"}),
		sources.WithSource(later),
	)

	report, err := scheduler.Run(ctx)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected context.DeadlineExceeded, got %v", err)
	}
	if len(report.Sources) != 1 || report.Sources[0].Name != "slow" {
		t.Fatalf("expected only the slow source in the report, got %+v", report.Sources)
	}
	if len(events) != 0 {
		t.Fatalf("expected later sources not to run, got %v", events)
	}
}

func TestDataSourcesUsesEnabledConfigEntries(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithSources(
		config.Source{Name: "tmdb", Priority: 1, RequestsPerMinute: 40, Enabled: true},
		config.Source{Name: "imdb", Priority: 2, RequestsPerMinute: 10, Enabled: false},
	))
	entries := sources.DataSources(cfg)
	if len(entries) != 1 || entries[0].Name != "tmdb" || entries[0].RequestsPerMinute != 40 {
		t.Fatalf("unexpected entries %+v", entries)
	}
}

func TestSchedulerOrderIsStableForEqualPriorities(t *testing.T) {
	scheduler := sources.NewScheduler([]catalog.DataSource{
		{Name: "b", Priority: 1},
		{Name: "a", Priority: 1},
		{Name: "c", Priority: 0},
	}, nil, logging.NewNop())
	order := scheduler.Order()
	if order[0].Name != "c" || order[1].Name != "b" || order[2].Name != "a" {
		t.Fatalf("unexpected order %+v", order)
	}
}
