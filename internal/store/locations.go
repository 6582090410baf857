package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"filmloc/internal/catalog"
)

const locationColumns = "id, name, address, city, state_province, country, latitude, longitude, coordinates_geocoded, location_type, accessibility, description, created_at, updated_at"

func scanLocation(scanner rowScanner) (*catalog.Location, error) {
	var (
		id            string
		name          string
		address       sql.NullString
		city          sql.NullString
		stateProvince sql.NullString
		country       string
		latitude      sql.NullFloat64
		longitude     sql.NullFloat64
		geocoded      sql.NullBool
		locationType  sql.NullString
		accessibility sql.NullString
		description   sql.NullString
		createdRaw    sql.NullString
		updatedRaw    sql.NullString
	)
	if err := scanner.Scan(
		&id,
		&name,
		&address,
		&city,
		&stateProvince,
		&country,
		&latitude,
		&longitude,
		&geocoded,
		&locationType,
		&accessibility,
		&description,
		&createdRaw,
		&updatedRaw,
	); err != nil {
		return nil, err
	}
	return &catalog.Location{
		ID:            id,
		Name:          name,
		Address:       address.String,
		City:          city.String,
		StateProvince: stateProvince.String,
		Country:       country,
		Latitude:      floatPtr(latitude),
		Longitude:     floatPtr(longitude),
		Geocoded:      geocoded.Valid && geocoded.Bool,
		LocationType:  locationType.String,
		Accessibility: accessibility.String,
		Description:   description.String,
		CreatedAt:     parseTime(createdRaw),
		UpdatedAt:     parseTime(updatedRaw),
	}, nil
}

func (s *Store) findLocation(ctx context.Context, op, where string, args ...any) (*catalog.Location, error) {
	var location *catalog.Location
	err := s.queryRowWithRetry(ctx, func(row *sql.Row) error {
		var scanErr error
		location, scanErr = scanLocation(row)
		return scanErr
	}, "SELECT "+locationColumns+" FROM locations WHERE "+where, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, classify(op, s.dialect, err)
	}
	return location, nil
}

// FindLocationByCoordinates matches the exact latitude/longitude pair among
// locations whose coordinates were supplied rather than geocoded. A geocoder
// may return one point for many addresses, so geocoded points are not keys.
func (s *Store) FindLocationByCoordinates(ctx context.Context, latitude, longitude float64) (*catalog.Location, error) {
	return s.findLocation(ctx, "find location by coordinates",
		"latitude = ? AND longitude = ? AND coordinates_geocoded = ?", latitude, longitude, false)
}

// FindLocationByNameCityCountry matches the exact triple. An empty city
// matches only locations without a city.
func (s *Store) FindLocationByNameCityCountry(ctx context.Context, name, city, country string) (*catalog.Location, error) {
	if name == "" || country == "" {
		return nil, nil
	}
	where := "name = ? AND " + s.dialect.isNull("city") + " AND country = ?"
	return s.findLocation(ctx, "find location by name", where, name, nullableString(city), country)
}

// InsertLocation stores a new location, assigning its id and timestamps.
// A natural-key collision is reported as catalog.ErrConflict.
func (s *Store) InsertLocation(ctx context.Context, location *catalog.Location) error {
	if location == nil {
		return errors.New("insert location: nil location")
	}
	switch {
	case strings.TrimSpace(location.Name) == "":
		return catalog.Integrity("insert location", errors.New("name is required"))
	case strings.TrimSpace(location.Country) == "":
		return catalog.Integrity("insert location", errors.New("country is required"))
	case (location.Latitude == nil) != (location.Longitude == nil):
		return catalog.Integrity("insert location", errors.New("latitude and longitude must be set together"))
	case location.Geocoded && location.Latitude == nil:
		return catalog.Integrity("insert location", errors.New("geocoded location has no coordinates"))
	}
	now := time.Now().UTC()
	if location.ID == "" {
		location.ID = uuid.NewString()
	}
	location.CreatedAt = now
	location.UpdatedAt = now

	_, err := s.execWithRetry(ctx,
		"INSERT INTO locations ("+locationColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		location.ID,
		location.Name,
		nullableString(location.Address),
		nullableString(location.City),
		nullableString(location.StateProvince),
		location.Country,
		nullableFloat(location.Latitude),
		nullableFloat(location.Longitude),
		location.Geocoded,
		nullableString(location.LocationType),
		nullableString(location.Accessibility),
		nullableString(location.Description),
		formatTime(now),
		formatTime(now),
	)
	if err != nil {
		return classify("insert location", s.dialect, err)
	}
	return nil
}
