package seed

import (
	"context"
	"fmt"
	"log/slog"

	"filmloc/internal/catalog"
	"filmloc/internal/logging"
	"filmloc/internal/reconcile"
)

// Link pairs a production title with a location name inside a Dataset.
type Link struct {
	Production string
	Location   string
	Info       catalog.FilmingInfo
}

// Dataset is a self-contained batch of productions, locations and links.
type Dataset struct {
	Name        string
	Productions []catalog.ProductionInput
	Locations   []catalog.LocationInput
	Links       []Link
}

// LoadedLink is one association written by Load.
type LoadedLink struct {
	Production *catalog.Production
	Location   *catalog.Location
	Link       *catalog.FilmingLocation
}

// Report lists what Load resolved and linked.
type Report struct {
	Productions int
	Locations   int
	Links       []LoadedLink
}

// Loader writes datasets into the catalog.
type Loader struct {
	resolver *reconcile.Resolver
	linker   *reconcile.Linker
	logger   *slog.Logger
}

// NewLoader constructs a Loader. Seed locations carry coordinates, so no
// geocoder is wired.
func NewLoader(st reconcile.Store, logger *slog.Logger) *Loader {
	return &Loader{
		resolver: reconcile.NewResolver(st, st, nil, logger),
		linker:   reconcile.NewLinker(st),
		logger:   logging.NewComponentLogger(logger, "seed"),
	}
}

// Load resolves every production and location, then writes the links in
// order. The first error aborts the load; rows already written stay.
func (l *Loader) Load(ctx context.Context, dataset Dataset) (Report, error) {
	var report Report
	productions := make(map[string]*catalog.Production, len(dataset.Productions))
	for _, input := range dataset.Productions {
		production, err := l.resolver.ResolveProduction(ctx, input)
		if err != nil {
			return report, fmt.Errorf("seed %s: production %q: %w", dataset.Name, input.Title, err)
		}
		productions[input.Title] = production
		report.Productions++
	}

	locations := make(map[string]*catalog.Location, len(dataset.Locations))
	for _, input := range dataset.Locations {
		location, err := l.resolver.ResolveLocation(ctx, input)
		if err != nil {
			return report, fmt.Errorf("seed %s: location %q: %w", dataset.Name, input.Name, err)
		}
		locations[input.Name] = location
		report.Locations++
	}

	for _, link := range dataset.Links {
		production, ok := productions[link.Production]
		if !ok {
			return report, fmt.Errorf("seed %s: link references unknown production %q", dataset.Name, link.Production)
		}
		location, ok := locations[link.Location]
		if !ok {
			return report, fmt.Errorf("seed %s: link references unknown location %q", dataset.Name, link.Location)
		}
		stored, err := l.linker.UpsertFilmingLocation(ctx, production.ID, location.ID, link.Info)
		if err != nil {
			return report, fmt.Errorf("seed %s: link %q to %q: %w", dataset.Name, link.Production, link.Location, err)
		}
		report.Links = append(report.Links, LoadedLink{Production: production, Location: location, Link: stored})
	}

	l.logger.Info("dataset loaded",
		logging.String("dataset", dataset.Name),
		logging.Int("productions", report.Productions),
		logging.Int("locations", report.Locations),
		logging.Int("links", len(report.Links)),
	)
	return report, nil
}
