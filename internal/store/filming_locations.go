package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"filmloc/internal/catalog"
)

const filmingLocationColumns = "id, production_id, location_id, scene_description, filming_date, episode, season, verified, notes, created_at, updated_at"

func scanFilmingLocation(scanner rowScanner) (*catalog.FilmingLocation, error) {
	var (
		id               string
		productionID     string
		locationID       string
		sceneDescription sql.NullString
		filmingDate      sql.NullString
		episode          sql.NullString
		season           sql.NullInt64
		verified         sql.NullBool
		notes            sql.NullString
		createdRaw       sql.NullString
		updatedRaw       sql.NullString
	)
	if err := scanner.Scan(
		&id,
		&productionID,
		&locationID,
		&sceneDescription,
		&filmingDate,
		&episode,
		&season,
		&verified,
		&notes,
		&createdRaw,
		&updatedRaw,
	); err != nil {
		return nil, err
	}
	return &catalog.FilmingLocation{
		ID:               id,
		ProductionID:     productionID,
		LocationID:       locationID,
		SceneDescription: sceneDescription.String,
		FilmingDate:      filmingDate.String,
		Episode:          episode.String,
		Season:           intPtr(season),
		Verified:         verified.Valid && verified.Bool,
		Notes:            notes.String,
		CreatedAt:        parseTime(createdRaw),
		UpdatedAt:        parseTime(updatedRaw),
	}, nil
}

// UpsertFilmingLocation writes the association between a production and a
// location. An existing row for the pair has its event fields overwritten;
// its id, notes and created_at are kept.
func (s *Store) UpsertFilmingLocation(ctx context.Context, link *catalog.FilmingLocation) (*catalog.FilmingLocation, error) {
	if link == nil {
		return nil, errors.New("upsert filming location: nil link")
	}
	if link.ProductionID == "" || link.LocationID == "" {
		return nil, catalog.Integrity("upsert filming location", errors.New("production and location ids are required"))
	}
	now := formatTime(time.Now())
	id := link.ID
	if id == "" {
		id = uuid.NewString()
	}
	query := "INSERT INTO filming_locations (" + filmingLocationColumns + ") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?) " +
		"ON CONFLICT (production_id, location_id) DO UPDATE SET " +
		"scene_description = excluded.scene_description, filming_date = excluded.filming_date, " +
		"episode = excluded.episode, season = excluded.season, verified = excluded.verified, " +
		"updated_at = excluded.updated_at " +
		"RETURNING " + filmingLocationColumns

	var stored *catalog.FilmingLocation
	err := s.queryRowWithRetry(ctx, func(row *sql.Row) error {
		var scanErr error
		stored, scanErr = scanFilmingLocation(row)
		return scanErr
	}, query,
		id,
		link.ProductionID,
		link.LocationID,
		nullableString(link.SceneDescription),
		nullableString(link.FilmingDate),
		nullableString(link.Episode),
		nullableInt(link.Season),
		link.Verified,
		nullableString(link.Notes),
		now,
		now,
	)
	if err != nil {
		return nil, classify("upsert filming location", s.dialect, err)
	}
	return stored, nil
}
