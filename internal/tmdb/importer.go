package tmdb

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"filmloc/internal/catalog"
	"filmloc/internal/logging"
)

// ProductionUpserter persists imported productions keyed on tmdb_id.
type ProductionUpserter interface {
	UpsertProductionByTMDBID(ctx context.Context, production *catalog.Production) (*catalog.Production, error)
}

// ImportResult tallies one page import.
type ImportResult struct {
	Page       int
	TotalPages int
	Imported   int
	Failed     int
}

// Importer copies popular TMDB movies into the production catalog.
type Importer struct {
	client       *Client
	store        ProductionUpserter
	imageBaseURL string
	logger       *slog.Logger
}

// NewImporter constructs an Importer. imageBaseURL is the TMDB image CDN
// root, e.g. https://image.tmdb.org/t/p.
func NewImporter(client *Client, store ProductionUpserter, imageBaseURL string, logger *slog.Logger) *Importer {
	return &Importer{
		client:       client,
		store:        store,
		imageBaseURL: strings.TrimRight(imageBaseURL, "/"),
		logger:       logging.NewComponentLogger(logger, "tmdb-importer"),
	}
}

// ImportPopular imports one page of popular movies. Failures on individual
// movies are logged and skipped; failing to list the page or the genres
// aborts the import.
func (i *Importer) ImportPopular(ctx context.Context, page int) (ImportResult, error) {
	if i.client == nil || i.store == nil {
		return ImportResult{}, errors.New("tmdb importer requires a client and a store")
	}
	movies, err := i.client.PopularMovies(ctx, page)
	if err != nil {
		return ImportResult{}, fmt.Errorf("list popular movies: %w", err)
	}
	genres, err := i.client.MovieGenres(ctx)
	if err != nil {
		return ImportResult{}, fmt.Errorf("list genres: %w", err)
	}

	result := ImportResult{Page: movies.Page, TotalPages: movies.TotalPages}
	for _, movie := range movies.Results {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		production, err := i.importMovie(ctx, movie, genres)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return result, ctxErr
			}
			result.Failed++
			logging.WarnWithContext(i.logger, "tmdb movie import failed", "tmdb_import_failed",
				logging.String("title", movie.Title),
				logging.Int("tmdb_id", int(movie.ID)),
				logging.Error(err),
			)
			continue
		}
		result.Imported++
		i.logger.Info("processed movie",
			logging.String("title", production.Title),
			logging.String(logging.FieldProductionID, production.ID),
		)
	}
	return result, nil
}

func (i *Importer) importMovie(ctx context.Context, movie Movie, genres map[int64]string) (*catalog.Production, error) {
	details, err := i.client.MovieDetails(ctx, movie.ID)
	if err != nil {
		return nil, fmt.Errorf("movie details: %w", err)
	}
	production := i.ProductionFromMovie(movie, details.ResolvedIMDbID(), genres)
	return i.store.UpsertProductionByTMDBID(ctx, production)
}

// ProductionFromMovie maps a TMDB movie onto a catalog production.
func (i *Importer) ProductionFromMovie(movie Movie, imdbID string, genres map[int64]string) *catalog.Production {
	production := &catalog.Production{
		Title:       movie.Title,
		Type:        catalog.ProductionMovie,
		ReleaseYear: releaseYear(movie.ReleaseDate),
		IMDbID:      imdbID,
		TMDBID:      strconv.FormatInt(movie.ID, 10),
		Description: movie.Overview,
	}
	if movie.PosterPath != "" {
		production.PosterURL = i.imageBaseURL + "/w500" + movie.PosterPath
	}
	if movie.BackdropPath != "" {
		production.BackdropURL = i.imageBaseURL + "/original" + movie.BackdropPath
	}
	for _, id := range movie.GenreIDs {
		if name, ok := genres[id]; ok && name != "" {
			production.Genres = append(production.Genres, name)
		}
	}
	return production
}

func releaseYear(date string) *int {
	date = strings.TrimSpace(date)
	if len(date) < 4 {
		return nil
	}
	year, err := strconv.Atoi(date[:4])
	if err != nil || year <= 0 {
		return nil
	}
	return &year
}

// Source adapts the importer to the scheduler. Each fetch imports one page
// of popular movies and advances the cursor to the next page; it yields no
// location records because TMDB does not publish filming locations.
type Source struct {
	importer  *Importer
	startPage int
}

// NewSource wraps importer as the "tmdb" scheduler source starting at
// startPage.
func NewSource(importer *Importer, startPage int) *Source {
	if startPage <= 0 {
		startPage = 1
	}
	return &Source{importer: importer, startPage: startPage}
}

// Name implements sources.Source.
func (s *Source) Name() string { return "tmdb" }

// Fetch implements sources.Source.
func (s *Source) Fetch(ctx context.Context, cursor string) ([]catalog.LocationRecord, string, error) {
	page := s.startPage
	if cursor != "" {
		n, err := strconv.Atoi(cursor)
		if err != nil || n <= 0 {
			return nil, "", fmt.Errorf("invalid tmdb page cursor %q", cursor)
		}
		page = n
	}
	result, err := s.importer.ImportPopular(ctx, page)
	if err != nil {
		return nil, "", err
	}
	next := page + 1
	if result.TotalPages > 0 && next > result.TotalPages {
		next = 1
	}
	return nil, strconv.Itoa(next), nil
}
