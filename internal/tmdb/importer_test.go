package tmdb_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"filmloc/internal/logging"
	"filmloc/internal/seed"
	"filmloc/internal/testsupport"
	"filmloc/internal/tmdb"
)

func newFakeTMDB(t *testing.T) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.URL.Path == "/movie/popular":
			_, _ = w.Write([]byte(`{"page":1,"total_pages":1,"results":[
				{"id":27205,"title":"Inception","overview":"Dreams.","release_date":"2010-07-15","poster_path":"/p.jpg","backdrop_path":"/b.jpg","genre_ids":[28,878,999]},
				{"id":603,"title":"The Matrix","release_date":"","genre_ids":[]},
				{"id":404,"title":"Broken","release_date":"2000-01-01"}
			]}`))
		case r.URL.Path == "/genre/movie/list":
			_, _ = w.Write([]byte(`{"genres":[{"id":28,"name":"Action"},{"id":878,"name":"Science Fiction"}]}`))
		case r.URL.Path == "/movie/27205":
			_, _ = w.Write([]byte(`{"id":27205,"imdb_id":"tt1375666"}`))
		case r.URL.Path == "/movie/603":
			_, _ = w.Write([]byte(`{"id":603,"external_ids":{"imdb_id":"tt0133093"}}`))
		case strings.HasPrefix(r.URL.Path, "/movie/"):
			w.WriteHeader(http.StatusNotFound)
		default:
			t.Errorf("unexpected path %q", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(server.Close)
	return server
}

func TestImportPopularMapsAndUpserts(t *testing.T) {
	server := newFakeTMDB(t)
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	client, err := tmdb.New("secret", server.URL, "")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	importer := tmdb.NewImporter(client, st, "https://image.tmdb.org/t/p/", logging.NewNop())
	ctx := context.Background()

	result, err := importer.ImportPopular(ctx, 1)
	if err != nil {
		t.Fatalf("ImportPopular: %v", err)
	}
	if result.Imported != 2 || result.Failed != 1 {
		t.Fatalf("unexpected result %+v", result)
	}

	inception, err := st.FindProductionByTMDBID(ctx, "27205")
	if err != nil || inception == nil {
		t.Fatalf("expected Inception to be stored: %v", err)
	}
	if inception.IMDbID != "tt1375666" || inception.ReleaseYear == nil || *inception.ReleaseYear != 2010 {
		t.Fatalf("unexpected identity fields %+v", inception)
	}
	if inception.PosterURL != "https://image.tmdb.org/t/p/w500/p.jpg" || inception.BackdropURL != "https://image.tmdb.org/t/p/original/b.jpg" {
		t.Fatalf("unexpected image urls %q %q", inception.PosterURL, inception.BackdropURL)
	}
	if len(inception.Genres) != 2 || inception.Genres[0] != "Action" || inception.Genres[1] != "Science Fiction" {
		t.Fatalf("unexpected genres %v", inception.Genres)
	}

	matrix, err := st.FindProductionByIMDbID(ctx, "tt0133093")
	if err != nil || matrix == nil {
		t.Fatalf("expected The Matrix to be stored: %v", err)
	}
	if matrix.ReleaseYear != nil || matrix.PosterURL != "" {
		t.Fatalf("expected empty release year and poster, got %+v", matrix)
	}

	// Re-importing refreshes rows instead of duplicating them.
	if _, err := importer.ImportPopular(ctx, 1); err != nil {
		t.Fatalf("second ImportPopular: %v", err)
	}
	productions, err := st.ListProductions(ctx, 10)
	if err != nil {
		t.Fatalf("ListProductions: %v", err)
	}
	if len(productions) != 2 {
		t.Fatalf("expected 2 productions after re-import, got %d", len(productions))
	}
}

func TestImportPopularEnrichesSeededProductions(t *testing.T) {
	server := newFakeTMDB(t)
	st := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()

	loader := seed.NewLoader(st, logging.NewNop())
	if _, err := loader.Load(ctx, seed.Sample()); err != nil {
		t.Fatalf("Load sample: %v", err)
	}
	if _, err := loader.Load(ctx, seed.More()); err != nil {
		t.Fatalf("Load more: %v", err)
	}
	seeded, err := st.FindProductionByIMDbID(ctx, "tt1375666")
	if err != nil || seeded == nil {
		t.Fatalf("expected seeded Inception: %v", err)
	}

	client, err := tmdb.New("secret", server.URL, "")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	importer := tmdb.NewImporter(client, st, "https://image.tmdb.org/t/p/", logging.NewNop())
	result, err := importer.ImportPopular(ctx, 1)
	if err != nil {
		t.Fatalf("ImportPopular: %v", err)
	}
	if result.Imported != 2 || result.Failed != 1 {
		t.Fatalf("expected seeded rows to be enriched, got %+v", result)
	}

	inception, err := st.FindProductionByTMDBID(ctx, "27205")
	if err != nil || inception == nil {
		t.Fatalf("expected Inception to carry its tmdb id: %v", err)
	}
	if inception.ID != seeded.ID {
		t.Fatalf("expected seeded row %q to be reused, got %q", seeded.ID, inception.ID)
	}
	if inception.PosterURL != "https://image.tmdb.org/t/p/w500/p.jpg" {
		t.Fatalf("expected poster to be filled, got %q", inception.PosterURL)
	}
	matrix, err := st.FindProductionByTMDBID(ctx, "603")
	if err != nil || matrix == nil || matrix.IMDbID != "tt0133093" {
		t.Fatalf("expected The Matrix to match by imdb id, got %#v (err=%v)", matrix, err)
	}
	if matrix.ReleaseYear == nil || *matrix.ReleaseYear != 1999 {
		t.Fatalf("expected seeded release year to be kept, got %v", matrix.ReleaseYear)
	}

	stats, err := st.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.Productions != 9 {
		t.Fatalf("expected import to add no productions, got %d", stats.Productions)
	}
}

func TestSourceAdvancesPageCursor(t *testing.T) {
	server := newFakeTMDB(t)
	st := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	client, _ := tmdb.New("secret", server.URL, "")
	src := tmdb.NewSource(tmdb.NewImporter(client, st, "https://image.tmdb.org/t/p", logging.NewNop()), 1)

	records, cursor, err := src.Fetch(context.Background(), "")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("expected no location records, got %d", len(records))
	}
	// total_pages is 1, so the cursor wraps back to the first page.
	if cursor != "1" {
		t.Fatalf("expected cursor to wrap to 1, got %q", cursor)
	}
	if src.Name() != "tmdb" {
		t.Fatalf("unexpected name %q", src.Name())
	}
	if _, _, err := src.Fetch(context.Background(), "zero"); err == nil {
		t.Fatal("expected invalid cursor error")
	}
}
