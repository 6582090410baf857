package reconcile

import (
	"context"
	"errors"

	"filmloc/internal/catalog"
)

// Linker writes the association between a resolved production and location.
type Linker struct {
	store LinkStore
}

// NewLinker constructs a Linker.
func NewLinker(store LinkStore) *Linker {
	return &Linker{store: store}
}

// UpsertFilmingLocation creates the (production, location) association or
// overwrites the event fields of the existing one. Errors are always returned.
func (l *Linker) UpsertFilmingLocation(ctx context.Context, productionID, locationID string, info catalog.FilmingInfo) (*catalog.FilmingLocation, error) {
	if productionID == "" || locationID == "" {
		return nil, catalog.Integrity("upsert filming location", errors.New("production and location must be resolved first"))
	}
	return l.store.UpsertFilmingLocation(ctx, &catalog.FilmingLocation{
		ProductionID:     productionID,
		LocationID:       locationID,
		SceneDescription: info.SceneDescription,
		FilmingDate:      info.FilmingDate,
		Episode:          info.Episode,
		Season:           info.Season,
		Verified:         info.Verified,
	})
}
