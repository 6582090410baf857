package sources_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"filmloc/internal/catalog"
	"filmloc/internal/logging"
	"filmloc/internal/sources"
)

const sampleLines = `{"production":{"title":"Inception","release_year":2010},"location":{"name":"Château de Chambord","country":"France"},"filming_info":{"verified":false},"source":"community","confidence":0.6}

# comment lines are ignored
{"production":{"title":"The Matrix","imdb_id":"tt0133093"},"location":{"name":"Sydney Harbour Bridge","country":"Australia","latitude":-33.8523,"longitude":151.2108},"filming_info":{"verified":true}}
`

func TestFileSourceReadsRecordsAndAdvancesCursor(t *testing.T) {
	path := filepath.Join(t.TempDir(), "records.jsonl")
	if err := os.WriteFile(path, []byte(sampleLines), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	src := sources.NewFileSource("community", path, logging.NewNop())

	records, cursor, err := src.Fetch(context.Background(), "")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].Production.Title != "Inception" || records[0].FilmingInfo.Verified {
		t.Fatalf("unexpected first record %+v", records[0])
	}
	if !records[1].Location.HasCoordinates() || *records[1].Location.Latitude != -33.8523 {
		t.Fatalf("expected coordinates on second record, got %+v", records[1].Location)
	}
	if cursor != "4" {
		t.Fatalf("expected cursor 4, got %q", cursor)
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatalf("open for append: %v", err)
	}
	_, _ = f.WriteString(`{"production":{"title":"Jurassic Park"},"location":{"name":"Kualoa Ranch","country":"USA"},"filming_info":{"verified":true}}` + "\n")
	_ = f.Close()

	records, cursor, err = src.Fetch(context.Background(), cursor)
	if err != nil {
		t.Fatalf("Fetch from cursor: %v", err)
	}
	if len(records) != 1 || records[0].Production.Title != "Jurassic Park" || cursor != "5" {
		t.Fatalf("expected only the appended record, got %d records cursor %q", len(records), cursor)
	}
}

func TestReadRecordsSkipsBadLine(t *testing.T) {
	input := "{\"production\":{\"title\":\"Inception\"}}\nnot json\n{\"production\":{\"title\":\"Skyfall\"}}\n"
	batch, err := sources.ReadRecords(context.Background(), strings.NewReader(input), 0)
	if err != nil {
		t.Fatalf("ReadRecords: %v", err)
	}
	if len(batch.Records) != 2 || batch.Records[1].Production.Title != "Skyfall" {
		t.Fatalf("expected records around the bad line, got %+v", batch.Records)
	}
	if batch.Lines != 3 || len(batch.Skipped) != 1 {
		t.Fatalf("expected 3 lines and 1 skipped, got %d and %d", batch.Lines, len(batch.Skipped))
	}
	skipped := batch.Skipped[0]
	if skipped.Line != 2 || catalog.KindOf(skipped.Err) != catalog.KindIntegrity {
		t.Fatalf("unexpected skipped line %+v", skipped)
	}
	if !strings.Contains(skipped.Err.Error(), "line 2") {
		t.Fatalf("expected line number in error, got %v", skipped.Err)
	}
}

func TestReadRecordsSkipsOversizedLine(t *testing.T) {
	huge := `{"production":{"title":"` + strings.Repeat("x", 2<<20) + `"}}`
	input := huge + "\n" + `{"production":{"title":"Skyfall"}}` + "\n"
	batch, err := sources.ReadRecords(context.Background(), strings.NewReader(input), 0)
	if err != nil {
		t.Fatalf("ReadRecords: %v", err)
	}
	if len(batch.Records) != 1 || batch.Records[0].Production.Title != "Skyfall" {
		t.Fatalf("expected the line after the oversized one, got %+v", batch.Records)
	}
	if batch.Lines != 2 || len(batch.Skipped) != 1 || batch.Skipped[0].Line != 1 {
		t.Fatalf("unexpected batch lines=%d skipped=%+v", batch.Lines, batch.Skipped)
	}
}

func TestReadRecordsWithoutTrailingNewline(t *testing.T) {
	batch, err := sources.ReadRecords(context.Background(), strings.NewReader(`{"production":{"title":"Skyfall"}}`), 0)
	if err != nil {
		t.Fatalf("ReadRecords: %v", err)
	}
	if len(batch.Records) != 1 || batch.Lines != 1 {
		t.Fatalf("expected one record on one line, got %+v", batch)
	}
}

func TestFileSourceAdvancesPastBadMiddleLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "records.jsonl")
	content := `{"production":{"title":"Inception"},"location":{"name":"Château de Chambord","country":"France"}}` + "\n" +
		"{broken\n" +
		`{"production":{"title":"Skyfall"},"location":{"name":"Glen Etive","country":"UK"}}` + "\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	src := sources.NewFileSource("community", path, logging.NewNop())

	records, cursor, err := src.Fetch(context.Background(), "")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(records) != 2 || cursor != "3" {
		t.Fatalf("expected 2 records and cursor 3, got %d records cursor %q", len(records), cursor)
	}

	records, cursor, err = src.Fetch(context.Background(), cursor)
	if err != nil {
		t.Fatalf("Fetch from cursor: %v", err)
	}
	if len(records) != 0 || cursor != "3" {
		t.Fatalf("expected nothing new past the bad line, got %d records cursor %q", len(records), cursor)
	}
}

func TestFileSourceMissingFile(t *testing.T) {
	src := sources.NewFileSource("community", filepath.Join(t.TempDir(), "missing.jsonl"), nil)
	_, _, err := src.Fetch(context.Background(), "")
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
}

func TestRunLockIsExclusive(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "filmloc.lock")
	lock, err := sources.AcquireRunLock(path)
	if err != nil {
		t.Fatalf("AcquireRunLock: %v", err)
	}
	if _, err := sources.AcquireRunLock(path); !errors.Is(err, sources.ErrRunInProgress) {
		t.Fatalf("expected ErrRunInProgress, got %v", err)
	}
	if err := lock.Release(); err != nil {
		t.Fatalf("Release: %v", err)
	}
	again, err := sources.AcquireRunLock(path)
	if err != nil {
		t.Fatalf("reacquire: %v", err)
	}
	_ = again.Release()
}
