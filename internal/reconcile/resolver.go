package reconcile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"filmloc/internal/catalog"
	"filmloc/internal/geocode"
	"filmloc/internal/logging"
)

// Resolver finds or creates productions and locations by natural key.
type Resolver struct {
	productions ProductionStore
	locations   LocationStore
	geocoder    geocode.Geocoder
	logger      *slog.Logger
}

// NewResolver constructs a resolver. geocoder may be nil, in which case
// locations without coordinates are stored without them.
func NewResolver(productions ProductionStore, locations LocationStore, geocoder geocode.Geocoder, logger *slog.Logger) *Resolver {
	return &Resolver{
		productions: productions,
		locations:   locations,
		geocoder:    geocoder,
		logger:      logging.NewComponentLogger(logger, "resolver"),
	}
}

// ResolveProduction returns the production matching input, creating it on a
// miss. Lookup order: imdb_id, tmdb_id, then exact (title, release_year).
func (r *Resolver) ResolveProduction(ctx context.Context, input catalog.ProductionInput) (*catalog.Production, error) {
	if strings.TrimSpace(input.Title) == "" && input.IMDbID == "" && input.TMDBID == "" {
		return nil, catalog.Integrity("resolve production", errors.New("title, imdb id or tmdb id is required"))
	}

	existing, err := r.lookupProduction(ctx, input)
	if err != nil || existing != nil {
		return existing, err
	}

	production := newProduction(input)
	if err := r.productions.InsertProduction(ctx, production); err != nil {
		if !errors.Is(err, catalog.ErrConflict) {
			return nil, err
		}
		// Lost a race with another writer; the row now exists.
		existing, lookupErr := r.lookupProduction(ctx, input)
		if lookupErr != nil {
			return nil, lookupErr
		}
		if existing == nil {
			return nil, err
		}
		return existing, nil
	}
	logging.WithContext(ctx, r.logger).Debug("production created",
		logging.String(logging.FieldProductionID, production.ID),
		logging.String("title", production.Title),
	)
	return production, nil
}

func (r *Resolver) lookupProduction(ctx context.Context, input catalog.ProductionInput) (*catalog.Production, error) {
	if input.IMDbID != "" {
		found, err := r.productions.FindProductionByIMDbID(ctx, input.IMDbID)
		if err != nil || found != nil {
			return found, err
		}
	}
	if input.TMDBID != "" {
		found, err := r.productions.FindProductionByTMDBID(ctx, input.TMDBID)
		if err != nil || found != nil {
			return found, err
		}
	}
	return r.productions.FindProductionByTitleYear(ctx, input.Title, input.ReleaseYear)
}

func newProduction(input catalog.ProductionInput) *catalog.Production {
	kind := input.Type
	if kind == "" {
		kind = catalog.ProductionMovie
	}
	return &catalog.Production{
		Title:       input.Title,
		Type:        kind,
		ReleaseYear: input.ReleaseYear,
		IMDbID:      input.IMDbID,
		TMDBID:      input.TMDBID,
		Description: input.Description,
		Genres:      input.Genres,
		PosterURL:   input.PosterURL,
		BackdropURL: input.BackdropURL,
	}
}

// ResolveLocation returns the location matching input, creating it on a miss.
// Lookup order: exact (latitude, longitude) when both are set, then exact
// (name, city, country). A new location with an address but no coordinates
// is geocoded once before insert; a failed geocode leaves them unset.
// Geocoded coordinates are stored but never used to match other locations.
func (r *Resolver) ResolveLocation(ctx context.Context, input catalog.LocationInput) (*catalog.Location, error) {
	if strings.TrimSpace(input.Name) == "" || strings.TrimSpace(input.Country) == "" {
		return nil, catalog.Integrity("resolve location", errors.New("name and country are required"))
	}

	existing, err := r.lookupLocation(ctx, input)
	if err != nil || existing != nil {
		return existing, err
	}

	location := newLocation(input)
	if !input.HasCoordinates() && strings.TrimSpace(input.Address) != "" {
		r.backfillCoordinates(ctx, input, location)
	}

	if err := r.locations.InsertLocation(ctx, location); err != nil {
		if !errors.Is(err, catalog.ErrConflict) {
			return nil, err
		}
		// Geocoded points are not keys, so the conflict is on the input's
		// own natural key.
		existing, lookupErr := r.lookupLocation(ctx, input)
		if lookupErr != nil {
			return nil, lookupErr
		}
		if existing == nil {
			return nil, err
		}
		return existing, nil
	}
	logging.WithContext(ctx, r.logger).Debug("location created",
		logging.String(logging.FieldLocationID, location.ID),
		logging.String("name", location.Name),
		logging.Bool("has_coordinates", location.HasCoordinates()),
	)
	return location, nil
}

func (r *Resolver) lookupLocation(ctx context.Context, input catalog.LocationInput) (*catalog.Location, error) {
	if input.HasCoordinates() {
		found, err := r.locations.FindLocationByCoordinates(ctx, *input.Latitude, *input.Longitude)
		if err != nil || found != nil {
			return found, err
		}
	}
	return r.locations.FindLocationByNameCityCountry(ctx, input.Name, input.City, input.Country)
}

func (r *Resolver) backfillCoordinates(ctx context.Context, input catalog.LocationInput, location *catalog.Location) {
	if r.geocoder == nil {
		return
	}
	query := input.GeocodeQuery()
	logger := logging.WithContext(ctx, r.logger)
	coords, err := r.geocoder.Geocode(ctx, query)
	switch {
	case errors.Is(err, geocode.ErrNotFound):
		logger.Debug("geocode found no match", logging.String("address", query))
		return
	case err != nil:
		logging.WarnWithContext(logger, "geocode failed; storing location without coordinates", "geocode_failed",
			logging.String("address", query),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check geocoding.base_url and network access"),
		)
		return
	}
	location.Latitude = catalog.FloatPtr(coords.Latitude)
	location.Longitude = catalog.FloatPtr(coords.Longitude)
	location.Geocoded = true
	logger.Debug("geocoded location",
		logging.String("address", query),
		logging.String("coordinates", fmt.Sprintf("%.6f,%.6f", coords.Latitude, coords.Longitude)),
	)
}

func newLocation(input catalog.LocationInput) *catalog.Location {
	return &catalog.Location{
		Name:          input.Name,
		Address:       input.Address,
		City:          input.City,
		StateProvince: input.StateProvince,
		Country:       input.Country,
		Latitude:      input.Latitude,
		Longitude:     input.Longitude,
		LocationType:  input.LocationType,
		Accessibility: input.Accessibility,
		Description:   input.Description,
	}
}
