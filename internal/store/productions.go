package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"filmloc/internal/catalog"
)

const productionColumns = "id, title, type, release_year, imdb_id, tmdb_id, description, genres, poster_url, backdrop_url, created_at, updated_at"

func scanProduction(scanner rowScanner) (*catalog.Production, error) {
	var (
		id          string
		title       string
		kind        string
		releaseYear sql.NullInt64
		imdbID      sql.NullString
		tmdbID      sql.NullString
		description sql.NullString
		genres      sql.NullString
		posterURL   sql.NullString
		backdropURL sql.NullString
		createdRaw  sql.NullString
		updatedRaw  sql.NullString
	)
	if err := scanner.Scan(
		&id,
		&title,
		&kind,
		&releaseYear,
		&imdbID,
		&tmdbID,
		&description,
		&genres,
		&posterURL,
		&backdropURL,
		&createdRaw,
		&updatedRaw,
	); err != nil {
		return nil, err
	}
	return &catalog.Production{
		ID:          id,
		Title:       title,
		Type:        catalog.ProductionType(kind),
		ReleaseYear: intPtr(releaseYear),
		IMDbID:      imdbID.String,
		TMDBID:      tmdbID.String,
		Description: description.String,
		Genres:      decodeGenres(genres),
		PosterURL:   posterURL.String,
		BackdropURL: backdropURL.String,
		CreatedAt:   parseTime(createdRaw),
		UpdatedAt:   parseTime(updatedRaw),
	}, nil
}

func (s *Store) findProduction(ctx context.Context, op, where string, args ...any) (*catalog.Production, error) {
	var production *catalog.Production
	err := s.queryRowWithRetry(ctx, func(row *sql.Row) error {
		var scanErr error
		production, scanErr = scanProduction(row)
		return scanErr
	}, "SELECT "+productionColumns+" FROM productions WHERE "+where, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, classify(op, s.dialect, err)
	}
	return production, nil
}

// FindProductionByIMDbID returns the production with the given IMDb id, or
// nil when none exists.
func (s *Store) FindProductionByIMDbID(ctx context.Context, imdbID string) (*catalog.Production, error) {
	if imdbID == "" {
		return nil, nil
	}
	return s.findProduction(ctx, "find production by imdb id", "imdb_id = ?", imdbID)
}

// FindProductionByTMDBID returns the production with the given TMDB id, or
// nil when none exists.
func (s *Store) FindProductionByTMDBID(ctx context.Context, tmdbID string) (*catalog.Production, error) {
	if tmdbID == "" {
		return nil, nil
	}
	return s.findProduction(ctx, "find production by tmdb id", "tmdb_id = ?", tmdbID)
}

// FindProductionByTitleYear matches title exactly. A nil year matches only
// productions without a release year.
func (s *Store) FindProductionByTitleYear(ctx context.Context, title string, year *int) (*catalog.Production, error) {
	if title == "" {
		return nil, nil
	}
	where := "title = ? AND " + s.dialect.isNull("release_year")
	return s.findProduction(ctx, "find production by title and year", where, title, nullableInt(year))
}

// InsertProduction stores a new production, assigning its id and timestamps.
// A natural-key collision is reported as catalog.ErrConflict.
func (s *Store) InsertProduction(ctx context.Context, production *catalog.Production) error {
	if production == nil {
		return errors.New("insert production: nil production")
	}
	if err := validateProduction(production); err != nil {
		return catalog.Integrity("insert production", err)
	}
	now := time.Now().UTC()
	if production.ID == "" {
		production.ID = uuid.NewString()
	}
	production.CreatedAt = now
	production.UpdatedAt = now

	genres, err := encodeGenres(production.Genres)
	if err != nil {
		return catalog.Integrity("insert production", fmt.Errorf("encode genres: %w", err))
	}
	_, err = s.execWithRetry(ctx,
		"INSERT INTO productions ("+productionColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		production.ID,
		production.Title,
		string(production.Type),
		nullableInt(production.ReleaseYear),
		nullableString(production.IMDbID),
		nullableString(production.TMDBID),
		nullableString(production.Description),
		genres,
		nullableString(production.PosterURL),
		nullableString(production.BackdropURL),
		formatTime(now),
		formatTime(now),
	)
	if err != nil {
		return classify("insert production", s.dialect, err)
	}
	return nil
}

// UpsertProductionByTMDBID inserts the production or refreshes the row that
// already carries its tmdb_id. A row without a tmdb_id that matches by
// imdb_id, then by title and year, is enriched in place instead of
// duplicated. The stored row is returned.
func (s *Store) UpsertProductionByTMDBID(ctx context.Context, production *catalog.Production) (*catalog.Production, error) {
	if production == nil {
		return nil, errors.New("upsert production: nil production")
	}
	if production.TMDBID == "" {
		return nil, catalog.Integrity("upsert production", errors.New("tmdb id is required"))
	}
	if err := validateProduction(production); err != nil {
		return nil, catalog.Integrity("upsert production", err)
	}
	genres, err := encodeGenres(production.Genres)
	if err != nil {
		return nil, catalog.Integrity("upsert production", fmt.Errorf("encode genres: %w", err))
	}
	now := formatTime(time.Now())

	existing, err := s.FindProductionByTMDBID(ctx, production.TMDBID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		unlinked, err := s.findUnlinkedProduction(ctx, production)
		if err != nil {
			return nil, err
		}
		if unlinked != nil {
			return s.attachTMDBID(ctx, unlinked.ID, production, genres, now)
		}
	}
	query := "INSERT INTO productions (" + productionColumns + ") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?) " +
		"ON CONFLICT (tmdb_id) DO UPDATE SET " +
		"title = excluded.title, type = excluded.type, release_year = excluded.release_year, " +
		"imdb_id = COALESCE(excluded.imdb_id, productions.imdb_id), description = excluded.description, " +
		"genres = excluded.genres, poster_url = excluded.poster_url, backdrop_url = excluded.backdrop_url, " +
		"updated_at = excluded.updated_at " +
		"RETURNING " + productionColumns

	var stored *catalog.Production
	err = s.queryRowWithRetry(ctx, func(row *sql.Row) error {
		var scanErr error
		stored, scanErr = scanProduction(row)
		return scanErr
	}, query,
		uuid.NewString(),
		production.Title,
		string(production.Type),
		nullableInt(production.ReleaseYear),
		nullableString(production.IMDbID),
		production.TMDBID,
		nullableString(production.Description),
		genres,
		nullableString(production.PosterURL),
		nullableString(production.BackdropURL),
		now,
		now,
	)
	if err != nil {
		return nil, classify("upsert production", s.dialect, err)
	}
	return stored, nil
}

// findUnlinkedProduction resolves a row that predates its tmdb_id: imdb_id
// first, then title and year. Rows already bound to another tmdb_id never
// match.
func (s *Store) findUnlinkedProduction(ctx context.Context, production *catalog.Production) (*catalog.Production, error) {
	match, err := s.FindProductionByIMDbID(ctx, production.IMDbID)
	if err != nil {
		return nil, err
	}
	if match == nil {
		match, err = s.FindProductionByTitleYear(ctx, production.Title, production.ReleaseYear)
		if err != nil {
			return nil, err
		}
	}
	if match == nil || match.TMDBID != "" {
		return nil, nil
	}
	return match, nil
}

// attachTMDBID binds the tmdb_id to an existing row and fills the metadata
// TMDB supplies. Title, type and release year stay as stored.
func (s *Store) attachTMDBID(ctx context.Context, id string, production *catalog.Production, genres any, now string) (*catalog.Production, error) {
	query := "UPDATE productions SET tmdb_id = ?, imdb_id = COALESCE(imdb_id, ?), " +
		"description = COALESCE(?, description), genres = COALESCE(?, genres), " +
		"poster_url = COALESCE(?, poster_url), backdrop_url = COALESCE(?, backdrop_url), " +
		"updated_at = ? WHERE id = ? RETURNING " + productionColumns

	var stored *catalog.Production
	err := s.queryRowWithRetry(ctx, func(row *sql.Row) error {
		var scanErr error
		stored, scanErr = scanProduction(row)
		return scanErr
	}, query,
		production.TMDBID,
		nullableString(production.IMDbID),
		nullableString(production.Description),
		genres,
		nullableString(production.PosterURL),
		nullableString(production.BackdropURL),
		now,
		id,
	)
	if err != nil {
		return nil, classify("attach tmdb id", s.dialect, err)
	}
	return stored, nil
}

// ListProductions returns up to limit productions, newest first.
func (s *Store) ListProductions(ctx context.Context, limit int) ([]catalog.Production, error) {
	if limit <= 0 {
		limit = 5
	}
	rows, err := s.queryWithRetry(ctx,
		"SELECT "+productionColumns+" FROM productions ORDER BY created_at DESC, title LIMIT ?", limit)
	if err != nil {
		return nil, classify("list productions", s.dialect, err)
	}
	defer rows.Close()

	var productions []catalog.Production
	for rows.Next() {
		production, err := scanProduction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan production: %w", err)
		}
		productions = append(productions, *production)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("list productions", s.dialect, err)
	}
	return productions, nil
}

func validateProduction(production *catalog.Production) error {
	if strings.TrimSpace(production.Title) == "" {
		return errors.New("title is required")
	}
	if !production.Type.Valid() {
		return fmt.Errorf("invalid production type %q", production.Type)
	}
	return nil
}
