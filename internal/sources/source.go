package sources

import (
	"context"

	"filmloc/internal/catalog"
	"filmloc/internal/reconcile"
)

// Source is one external feed of filming-location sightings.
//
// Fetch returns the records available after cursor and the cursor to resume
// from next time. An empty cursor means "from the beginning".
type Source interface {
	Name() string
	Fetch(ctx context.Context, cursor string) ([]catalog.LocationRecord, string, error)
}

// Processor consumes fetched records. *reconcile.Pipeline satisfies it.
type Processor interface {
	ProcessAll(ctx context.Context, records []catalog.LocationRecord) (reconcile.Summary, error)
}
