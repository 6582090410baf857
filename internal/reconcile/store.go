package reconcile

import (
	"context"

	"filmloc/internal/catalog"
)

// ProductionStore is the persistence surface used to resolve productions.
type ProductionStore interface {
	FindProductionByIMDbID(ctx context.Context, imdbID string) (*catalog.Production, error)
	FindProductionByTMDBID(ctx context.Context, tmdbID string) (*catalog.Production, error)
	FindProductionByTitleYear(ctx context.Context, title string, year *int) (*catalog.Production, error)
	InsertProduction(ctx context.Context, production *catalog.Production) error
}

// LocationStore is the persistence surface used to resolve locations.
type LocationStore interface {
	FindLocationByCoordinates(ctx context.Context, latitude, longitude float64) (*catalog.Location, error)
	FindLocationByNameCityCountry(ctx context.Context, name, city, country string) (*catalog.Location, error)
	InsertLocation(ctx context.Context, location *catalog.Location) error
}

// LinkStore writes production/location associations.
type LinkStore interface {
	UpsertFilmingLocation(ctx context.Context, link *catalog.FilmingLocation) (*catalog.FilmingLocation, error)
}

// SubmissionStore queues records for moderation.
type SubmissionStore interface {
	InsertSubmission(ctx context.Context, submission *catalog.Submission) error
}

// Store is everything the pipeline needs. *store.Store satisfies it.
type Store interface {
	ProductionStore
	LocationStore
	LinkStore
	SubmissionStore
}
