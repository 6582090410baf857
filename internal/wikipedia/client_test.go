package wikipedia_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"filmloc/internal/catalog"
	"filmloc/internal/wikipedia"
)

func TestSearchSendsQueryAndReadsContinuation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("action") != "query" || q.Get("list") != "search" || q.Get("format") != "json" {
			t.Errorf("unexpected query %v", q)
		}
		if q.Get("srsearch") != `Skyfall film OR movie OR "TV series"` || q.Get("srlimit") != "5" || q.Get("sroffset") != "5" {
			t.Errorf("unexpected search parameters %v", q)
		}
		if r.Header.Get("User-Agent") != "filmloc-test/1.0" {
			t.Errorf("unexpected user agent %q", r.Header.Get("User-Agent"))
		}
		_, _ = w.Write([]byte(`{"continue":{"sroffset":10,"continue":"-||"},"query":{"search":[{"title":"Skyfall"},{"title":"Spectre (2015 film)"}]}}`))
	}))
	t.Cleanup(server.Close)

	client, err := wikipedia.New(server.URL, "filmloc-test/1.0")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	page, err := client.Search(context.Background(), "Skyfall", 5, 5)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(page.Titles) != 2 || page.Titles[1] != "Spectre (2015 film)" || page.NextOffset != 10 {
		t.Fatalf("unexpected page %+v", page)
	}
}

func TestSearchWithoutContinuationIsExhausted(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"query":{"search":[{"title":"Skyfall"}]}}`))
	}))
	t.Cleanup(server.Close)

	client, _ := wikipedia.New(server.URL, "filmloc-test/1.0")
	page, err := client.Search(context.Background(), "Skyfall", 0, 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if page.NextOffset != -1 {
		t.Fatalf("expected exhausted search, got next offset %d", page.NextOffset)
	}
}

func TestWikitextMissingPage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("rvslots") != "main" {
			t.Errorf("expected main slot, got %q", r.URL.RawQuery)
		}
		_, _ = w.Write([]byte(`{"query":{"pages":[{"title":"Nope","missing":true}]}}`))
	}))
	t.Cleanup(server.Close)

	client, _ := wikipedia.New(server.URL, "filmloc-test/1.0")
	_, err := client.Wikitext(context.Background(), "Nope")
	if !errors.Is(err, wikipedia.ErrPageMissing) {
		t.Fatalf("expected ErrPageMissing, got %v", err)
	}
	if catalog.KindOf(err) != catalog.KindNotFound {
		t.Fatalf("expected not_found kind, got %q", catalog.KindOf(err))
	}
}

func TestAPIErrorsAreClassified(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("titles") {
		case "throttled":
			w.WriteHeader(http.StatusTooManyRequests)
		case "lagged":
			_, _ = w.Write([]byte(`{"error":{"code":"maxlag","info":"Waiting for a database server"}}`))
		default:
			_, _ = w.Write([]byte(`{"error":{"code":"badvalue","info":"Unrecognized value"}}`))
		}
	}))
	t.Cleanup(server.Close)

	client, _ := wikipedia.New(server.URL, "filmloc-test/1.0")
	ctx := context.Background()
	cases := []struct {
		title string
		kind  catalog.Kind
	}{
		{"throttled", catalog.KindTransient},
		{"lagged", catalog.KindTransient},
		{"bad", catalog.KindUnknown},
	}
	for _, tc := range cases {
		_, err := client.Wikitext(ctx, tc.title)
		var apiErr *wikipedia.APIError
		if !errors.As(err, &apiErr) {
			t.Fatalf("%s: expected APIError, got %v", tc.title, err)
		}
		if got := catalog.KindOf(err); got != tc.kind {
			t.Fatalf("%s: kind = %q, want %q", tc.title, got, tc.kind)
		}
	}
}

func TestNewRequiresUserAgent(t *testing.T) {
	if _, err := wikipedia.New("https://en.wikipedia.org/w/api.php", " "); err == nil {
		t.Fatal("expected user agent error")
	}
	if _, err := wikipedia.New("", "filmloc-test/1.0"); err == nil {
		t.Fatal("expected endpoint error")
	}
}
