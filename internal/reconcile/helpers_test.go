package reconcile_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"filmloc/internal/catalog"
	"filmloc/internal/geocode"
	"filmloc/internal/store"
	"filmloc/internal/testsupport"
)

// recordingStore wraps a real store and records the writes it forwards.
type recordingStore struct {
	*store.Store

	mu     sync.Mutex
	writes []string

	// failLookups makes the next n lookups fail with a transient error.
	failLookups int
	// submissionErr is returned by InsertSubmission when set.
	submissionErr error
	// raceInsert inserts a duplicate production ahead of the caller once.
	raceInsert bool
}

func newRecordingStore(t *testing.T) *recordingStore {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	return &recordingStore{Store: testsupport.MustOpenStore(t, cfg)}
}

func (s *recordingStore) record(op string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writes = append(s.writes, op)
}

func (s *recordingStore) Writes() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.writes...)
}

func (s *recordingStore) count(op string) int {
	n := 0
	for _, w := range s.Writes() {
		if w == op {
			n++
		}
	}
	return n
}

func (s *recordingStore) lookupFailure() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failLookups > 0 {
		s.failLookups--
		return catalog.Transient("lookup", errors.New("connection reset"))
	}
	return nil
}

func (s *recordingStore) FindProductionByIMDbID(ctx context.Context, imdbID string) (*catalog.Production, error) {
	if err := s.lookupFailure(); err != nil {
		return nil, err
	}
	return s.Store.FindProductionByIMDbID(ctx, imdbID)
}

func (s *recordingStore) FindProductionByTMDBID(ctx context.Context, tmdbID string) (*catalog.Production, error) {
	if err := s.lookupFailure(); err != nil {
		return nil, err
	}
	return s.Store.FindProductionByTMDBID(ctx, tmdbID)
}

func (s *recordingStore) FindProductionByTitleYear(ctx context.Context, title string, year *int) (*catalog.Production, error) {
	if err := s.lookupFailure(); err != nil {
		return nil, err
	}
	return s.Store.FindProductionByTitleYear(ctx, title, year)
}

func (s *recordingStore) InsertProduction(ctx context.Context, production *catalog.Production) error {
	if s.raceInsert {
		s.raceInsert = false
		other := *production
		if err := s.Store.InsertProduction(ctx, &other); err != nil {
			return err
		}
		s.record("insert_production")
	}
	s.record("insert_production")
	return s.Store.InsertProduction(ctx, production)
}

func (s *recordingStore) InsertLocation(ctx context.Context, location *catalog.Location) error {
	s.record("insert_location")
	return s.Store.InsertLocation(ctx, location)
}

func (s *recordingStore) UpsertFilmingLocation(ctx context.Context, link *catalog.FilmingLocation) (*catalog.FilmingLocation, error) {
	s.record("upsert_filming_location")
	return s.Store.UpsertFilmingLocation(ctx, link)
}

func (s *recordingStore) InsertSubmission(ctx context.Context, submission *catalog.Submission) error {
	s.record("insert_submission")
	if s.submissionErr != nil {
		return s.submissionErr
	}
	return s.Store.InsertSubmission(ctx, submission)
}

// stubGeocoder returns a fixed answer and counts calls.
type stubGeocoder struct {
	mu      sync.Mutex
	calls   []string
	coords  catalog.Coordinates
	err     error
	matched bool
}

func (g *stubGeocoder) Geocode(_ context.Context, address string) (catalog.Coordinates, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls = append(g.calls, address)
	if g.err != nil {
		return catalog.Coordinates{}, g.err
	}
	if !g.matched {
		return catalog.Coordinates{}, geocode.ErrNotFound
	}
	return g.coords, nil
}

func (g *stubGeocoder) Calls() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]string(nil), g.calls...)
}

func inceptionRecord(verified bool) catalog.LocationRecord {
	return catalog.LocationRecord{
		Production: catalog.ProductionInput{Title: "Inception", ReleaseYear: catalog.IntPtr(2010)},
		Location:   catalog.LocationInput{Name: "Château de Chambord", Country: "France"},
		FilmingInfo: catalog.FilmingInfo{
			SceneDescription: "The elaborate dream architecture sequences",
			Verified:         verified,
		},
		Source:     "test",
		Confidence: 0.9,
	}
}
