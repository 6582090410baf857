package store

import (
	"context"
	"database/sql"
	"fmt"

	"filmloc/internal/catalog"
)

// Stats summarizes catalog contents.
type Stats struct {
	Productions        int             `json:"productions"`
	Movies             int             `json:"movies"`
	TVShows            int             `json:"tv_shows"`
	Locations          int             `json:"locations"`
	LocationsByCountry []CountryCount  `json:"locations_by_country"`
	FilmingLocations   int             `json:"filming_locations"`
	Verified           int             `json:"verified"`
	Unverified         int             `json:"unverified"`
	PendingSubmissions int             `json:"pending_submissions"`
	TopProductions     []ProductionRef `json:"top_productions"`
	RecentAdditions    []FullViewRow   `json:"recent_additions"`
}

// CountryCount is a location tally for one country.
type CountryCount struct {
	Country string `json:"country"`
	Count   int    `json:"count"`
}

// ProductionRef is a production with its number of linked locations.
type ProductionRef struct {
	Title         string                 `json:"title"`
	Type          catalog.ProductionType `json:"type"`
	LocationCount int                    `json:"location_count"`
}

// FullViewRow is one row of the filming_locations_full view.
type FullViewRow struct {
	FilmingLocationID string                 `json:"filming_location_id"`
	ProductionTitle   string                 `json:"production_title"`
	ProductionType    catalog.ProductionType `json:"production_type"`
	LocationName      string                 `json:"location_name"`
	City              string                 `json:"city,omitempty"`
	Country           string                 `json:"country"`
	SceneDescription  string                 `json:"scene_description,omitempty"`
	Verified          bool                   `json:"verified"`
	ImageCount        int                    `json:"image_count"`
	PostCount         int                    `json:"post_count"`
}

const (
	topProductionsLimit  = 5
	recentAdditionsLimit = 3
)

// Stats gathers the catalog summary.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	var stats Stats
	counts := []struct {
		dest  *int
		query string
		args  []any
	}{
		{&stats.Productions, "SELECT COUNT(*) FROM productions", nil},
		{&stats.Movies, "SELECT COUNT(*) FROM productions WHERE type = ?", []any{string(catalog.ProductionMovie)}},
		{&stats.TVShows, "SELECT COUNT(*) FROM productions WHERE type = ?", []any{string(catalog.ProductionTVShow)}},
		{&stats.Locations, "SELECT COUNT(*) FROM locations", nil},
		{&stats.FilmingLocations, "SELECT COUNT(*) FROM filming_locations", nil},
		{&stats.Verified, "SELECT COUNT(*) FROM filming_locations WHERE verified = ?", []any{true}},
		{&stats.PendingSubmissions, "SELECT COUNT(*) FROM submissions WHERE status = ?", []any{catalog.SubmissionStatusPending}},
	}
	for _, c := range counts {
		if err := s.count(ctx, c.dest, c.query, c.args...); err != nil {
			return Stats{}, err
		}
	}
	stats.Unverified = stats.FilmingLocations - stats.Verified

	var err error
	if stats.LocationsByCountry, err = s.locationsByCountry(ctx); err != nil {
		return Stats{}, err
	}
	if stats.TopProductions, err = s.topProductions(ctx, topProductionsLimit); err != nil {
		return Stats{}, err
	}
	if stats.RecentAdditions, err = s.ListFullView(ctx, recentAdditionsLimit); err != nil {
		return Stats{}, err
	}
	return stats, nil
}

func (s *Store) count(ctx context.Context, dest *int, query string, args ...any) error {
	err := s.queryRowWithRetry(ctx, func(row *sql.Row) error {
		return row.Scan(dest)
	}, query, args...)
	if err != nil {
		return classify("count rows", s.dialect, err)
	}
	return nil
}

// CountFullView returns the number of rows visible through the
// filming_locations_full view.
func (s *Store) CountFullView(ctx context.Context) (int, error) {
	var total int
	if err := s.count(ctx, &total, "SELECT COUNT(*) FROM filming_locations_full"); err != nil {
		return 0, err
	}
	return total, nil
}

// ListFullView returns the most recent view rows, newest first.
func (s *Store) ListFullView(ctx context.Context, limit int) ([]FullViewRow, error) {
	rows, err := s.queryWithRetry(ctx,
		"SELECT filming_location_id, production_title, production_type, location_name, city, country, "+
			"scene_description, verified, image_count, post_count "+
			"FROM filming_locations_full ORDER BY filming_location_created_at DESC, filming_location_id LIMIT ?", limit)
	if err != nil {
		return nil, classify("list filming locations", s.dialect, err)
	}
	defer rows.Close()

	var result []FullViewRow
	for rows.Next() {
		var (
			row      FullViewRow
			kind     string
			city     sql.NullString
			scene    sql.NullString
			verified sql.NullBool
		)
		if err := rows.Scan(
			&row.FilmingLocationID,
			&row.ProductionTitle,
			&kind,
			&row.LocationName,
			&city,
			&row.Country,
			&scene,
			&verified,
			&row.ImageCount,
			&row.PostCount,
		); err != nil {
			return nil, fmt.Errorf("scan filming location: %w", err)
		}
		row.ProductionType = catalog.ProductionType(kind)
		row.City = city.String
		row.SceneDescription = scene.String
		row.Verified = verified.Valid && verified.Bool
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("list filming locations", s.dialect, err)
	}
	return result, nil
}

func (s *Store) locationsByCountry(ctx context.Context) ([]CountryCount, error) {
	rows, err := s.queryWithRetry(ctx,
		"SELECT country, COUNT(*) AS total FROM locations GROUP BY country ORDER BY total DESC, country")
	if err != nil {
		return nil, classify("count locations by country", s.dialect, err)
	}
	defer rows.Close()

	var result []CountryCount
	for rows.Next() {
		var entry CountryCount
		if err := rows.Scan(&entry.Country, &entry.Count); err != nil {
			return nil, fmt.Errorf("scan country count: %w", err)
		}
		result = append(result, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("count locations by country", s.dialect, err)
	}
	return result, nil
}

func (s *Store) topProductions(ctx context.Context, limit int) ([]ProductionRef, error) {
	rows, err := s.queryWithRetry(ctx,
		"SELECT p.title, p.type, COUNT(fl.id) AS total FROM productions p "+
			"JOIN filming_locations fl ON fl.production_id = p.id "+
			"GROUP BY p.id, p.title, p.type ORDER BY total DESC, p.title LIMIT ?", limit)
	if err != nil {
		return nil, classify("top productions", s.dialect, err)
	}
	defer rows.Close()

	var result []ProductionRef
	for rows.Next() {
		var (
			ref  ProductionRef
			kind string
		)
		if err := rows.Scan(&ref.Title, &kind, &ref.LocationCount); err != nil {
			return nil, fmt.Errorf("scan top production: %w", err)
		}
		ref.Type = catalog.ProductionType(kind)
		result = append(result, ref)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("top productions", s.dialect, err)
	}
	return result, nil
}
