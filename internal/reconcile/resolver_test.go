package reconcile_test

import (
	"context"
	"errors"
	"testing"

	"filmloc/internal/catalog"
	"filmloc/internal/logging"
	"filmloc/internal/reconcile"
)

func TestResolveProductionByIMDbIDIsIdempotent(t *testing.T) {
	st := newRecordingStore(t)
	resolver := reconcile.NewResolver(st, st, nil, logging.NewNop())
	ctx := context.Background()

	input := catalog.ProductionInput{
		Title:       "The Dark Knight",
		Type:        catalog.ProductionMovie,
		ReleaseYear: catalog.IntPtr(2008),
		IMDbID:      "tt0468569",
	}
	first, err := resolver.ResolveProduction(ctx, input)
	if err != nil {
		t.Fatalf("first resolve: %v", err)
	}
	second, err := resolver.ResolveProduction(ctx, catalog.ProductionInput{Title: "Different Title", IMDbID: "tt0468569"})
	if err != nil {
		t.Fatalf("second resolve: %v", err)
	}
	if first.ID != second.ID {
		t.Fatalf("expected same production, got %s and %s", first.ID, second.ID)
	}
	if got := st.count("insert_production"); got != 1 {
		t.Fatalf("expected exactly one insert, got %d", got)
	}
}

func TestResolveProductionMatchesTMDBID(t *testing.T) {
	st := newRecordingStore(t)
	resolver := reconcile.NewResolver(st, st, nil, logging.NewNop())
	ctx := context.Background()

	existing, err := resolver.ResolveProduction(ctx, catalog.ProductionInput{
		Title:       "Blade Runner 2049",
		ReleaseYear: catalog.IntPtr(2017),
		TMDBID:      "335984",
	})
	if err != nil {
		t.Fatalf("seed resolve: %v", err)
	}
	got, err := resolver.ResolveProduction(ctx, catalog.ProductionInput{Title: "Blade Runner 2049 (Director's Cut)", TMDBID: "335984"})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got.ID != existing.ID {
		t.Fatalf("expected tmdb_id match %s, got %s", existing.ID, got.ID)
	}
	if n := st.count("insert_production"); n != 1 {
		t.Fatalf("expected one insert, got %d", n)
	}
}

func TestResolveProductionFallsBackToTitleAndYear(t *testing.T) {
	st := newRecordingStore(t)
	resolver := reconcile.NewResolver(st, st, nil, logging.NewNop())
	ctx := context.Background()

	existing, err := resolver.ResolveProduction(ctx, catalog.ProductionInput{
		Title:       "Inception",
		Type:        catalog.ProductionMovie,
		ReleaseYear: catalog.IntPtr(2010),
		IMDbID:      "tt1375666",
	})
	if err != nil {
		t.Fatalf("seed resolve: %v", err)
	}

	got, err := resolver.ResolveProduction(ctx, catalog.ProductionInput{Title: "Inception", ReleaseYear: catalog.IntPtr(2010)})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got.ID != existing.ID {
		t.Fatalf("expected title/year match %s, got %s", existing.ID, got.ID)
	}

	// A different year is a different production; matching is exact.
	remake, err := resolver.ResolveProduction(ctx, catalog.ProductionInput{Title: "Inception", ReleaseYear: catalog.IntPtr(2030)})
	if err != nil {
		t.Fatalf("resolve remake: %v", err)
	}
	if remake.ID == existing.ID {
		t.Fatal("expected a new production for a different release year")
	}
	if got := st.count("insert_production"); got != 2 {
		t.Fatalf("expected two inserts, got %d", got)
	}
}

func TestResolveProductionIsCaseSensitive(t *testing.T) {
	st := newRecordingStore(t)
	resolver := reconcile.NewResolver(st, st, nil, logging.NewNop())
	ctx := context.Background()

	a, err := resolver.ResolveProduction(ctx, catalog.ProductionInput{Title: "The Office", Type: catalog.ProductionTVShow, ReleaseYear: catalog.IntPtr(2005)})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	b, err := resolver.ResolveProduction(ctx, catalog.ProductionInput{Title: "the office", Type: catalog.ProductionTVShow, ReleaseYear: catalog.IntPtr(2005)})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if a.ID == b.ID {
		t.Fatal("expected exact title matching without case folding")
	}
}

func TestResolveProductionDefaultsTypeToMovie(t *testing.T) {
	st := newRecordingStore(t)
	resolver := reconcile.NewResolver(st, st, nil, logging.NewNop())

	production, err := resolver.ResolveProduction(context.Background(), catalog.ProductionInput{Title: "Inception", ReleaseYear: catalog.IntPtr(2010)})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if production.Type != catalog.ProductionMovie {
		t.Fatalf("expected movie type, got %q", production.Type)
	}
}

func TestResolveProductionConflictReturnsExistingRow(t *testing.T) {
	st := newRecordingStore(t)
	st.raceInsert = true
	resolver := reconcile.NewResolver(st, st, nil, logging.NewNop())
	ctx := context.Background()

	input := catalog.ProductionInput{Title: "Jurassic Park", ReleaseYear: catalog.IntPtr(1993), IMDbID: "tt0107290"}
	got, err := resolver.ResolveProduction(ctx, input)
	if err != nil {
		t.Fatalf("expected conflict to resolve as found, got %v", err)
	}
	stored, err := st.FindProductionByIMDbID(ctx, "tt0107290")
	if err != nil || stored == nil {
		t.Fatalf("lookup after race: %v %v", stored, err)
	}
	if got.ID != stored.ID {
		t.Fatalf("expected the racing writer's row %s, got %s", stored.ID, got.ID)
	}
}

func TestResolveProductionRejectsEmptyDescriptor(t *testing.T) {
	st := newRecordingStore(t)
	resolver := reconcile.NewResolver(st, st, nil, logging.NewNop())

	_, err := resolver.ResolveProduction(context.Background(), catalog.ProductionInput{})
	if catalog.KindOf(err) != catalog.KindIntegrity {
		t.Fatalf("expected integrity error, got %v", err)
	}
}

func TestResolveLocationByCoordinatesSkipsGeocode(t *testing.T) {
	st := newRecordingStore(t)
	geo := &stubGeocoder{matched: true, coords: catalog.Coordinates{Latitude: 1, Longitude: 2}}
	resolver := reconcile.NewResolver(st, st, geo, logging.NewNop())
	ctx := context.Background()

	input := catalog.LocationInput{
		Name:      "Sydney Harbour Bridge",
		Address:   "Sydney Harbour Bridge",
		City:      "Sydney",
		Country:   "Australia",
		Latitude:  catalog.FloatPtr(-33.8523),
		Longitude: catalog.FloatPtr(151.2108),
	}
	first, err := resolver.ResolveLocation(ctx, input)
	if err != nil {
		t.Fatalf("first resolve: %v", err)
	}
	// Same coordinates under another name still resolve to the same site.
	input.Name = "Harbour Bridge"
	second, err := resolver.ResolveLocation(ctx, input)
	if err != nil {
		t.Fatalf("second resolve: %v", err)
	}
	if first.ID != second.ID {
		t.Fatalf("expected same location, got %s and %s", first.ID, second.ID)
	}
	if calls := geo.Calls(); len(calls) != 0 {
		t.Fatalf("expected no geocode calls, got %v", calls)
	}
	if got := st.count("insert_location"); got != 1 {
		t.Fatalf("expected one insert, got %d", got)
	}
}

func TestResolveLocationFallsBackToNameCityCountry(t *testing.T) {
	st := newRecordingStore(t)
	resolver := reconcile.NewResolver(st, st, nil, logging.NewNop())
	ctx := context.Background()

	first, err := resolver.ResolveLocation(ctx, catalog.LocationInput{Name: "Kualoa Ranch", City: "Kaneohe", Country: "USA"})
	if err != nil {
		t.Fatalf("first resolve: %v", err)
	}
	second, err := resolver.ResolveLocation(ctx, catalog.LocationInput{
		Name:      "Kualoa Ranch",
		City:      "Kaneohe",
		Country:   "USA",
		Latitude:  catalog.FloatPtr(21.5329),
		Longitude: catalog.FloatPtr(-157.8309),
	})
	if err != nil {
		t.Fatalf("second resolve: %v", err)
	}
	if first.ID != second.ID {
		t.Fatalf("expected name/city/country match, got %s and %s", first.ID, second.ID)
	}
}

func TestResolveLocationGeocodesAddressOnce(t *testing.T) {
	st := newRecordingStore(t)
	geo := &stubGeocoder{matched: true, coords: catalog.Coordinates{Latitude: -37.872093, Longitude: 175.683594}}
	resolver := reconcile.NewResolver(st, st, geo, logging.NewNop())

	location, err := resolver.ResolveLocation(context.Background(), catalog.LocationInput{
		Name:    "Hobbiton Movie Set",
		Address: "501 Buckland Rd",
		City:    "Matamata",
		Country: "New Zealand",
	})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	calls := geo.Calls()
	if len(calls) != 1 || calls[0] != "501 Buckland Rd, Matamata, New Zealand" {
		t.Fatalf("expected one geocode call with the full address, got %v", calls)
	}
	if !location.HasCoordinates() || *location.Latitude != -37.872093 || *location.Longitude != 175.683594 {
		t.Fatalf("expected geocoded coordinates, got %+v", location)
	}
}

func TestResolveLocationKeepsDistinctSitesWithSharedGeocode(t *testing.T) {
	st := newRecordingStore(t)
	// City-centroid answer for every address.
	geo := &stubGeocoder{matched: true, coords: catalog.Coordinates{Latitude: 48.8566, Longitude: 2.3522}}
	resolver := reconcile.NewResolver(st, st, geo, logging.NewNop())
	ctx := context.Background()

	louvre, err := resolver.ResolveLocation(ctx, catalog.LocationInput{Name: "Louvre", Address: "Paris", Country: "France"})
	if err != nil {
		t.Fatalf("resolve louvre: %v", err)
	}
	eiffel, err := resolver.ResolveLocation(ctx, catalog.LocationInput{Name: "Eiffel Tower", Address: "Paris", Country: "France"})
	if err != nil {
		t.Fatalf("resolve eiffel: %v", err)
	}
	if louvre.ID == eiffel.ID {
		t.Fatalf("distinct sites merged into %s (%s)", louvre.ID, louvre.Name)
	}
	if eiffel.Name != "Eiffel Tower" || !eiffel.Geocoded || !eiffel.HasCoordinates() {
		t.Fatalf("expected geocoded Eiffel Tower, got %+v", eiffel)
	}
	if got := st.count("insert_location"); got != 2 {
		t.Fatalf("expected two inserts, got %d", got)
	}

	again, err := resolver.ResolveLocation(ctx, catalog.LocationInput{Name: "Eiffel Tower", Address: "Paris", Country: "France"})
	if err != nil {
		t.Fatalf("resolve eiffel again: %v", err)
	}
	if again.ID != eiffel.ID {
		t.Fatalf("expected name match %s, got %s", eiffel.ID, again.ID)
	}
	if len(geo.Calls()) != 2 {
		t.Fatalf("expected geocoding only on misses, got %v", geo.Calls())
	}
}

func TestResolveLocationSuppliedCoordinatesIgnoreGeocodedRows(t *testing.T) {
	st := newRecordingStore(t)
	geo := &stubGeocoder{matched: true, coords: catalog.Coordinates{Latitude: 48.8566, Longitude: 2.3522}}
	resolver := reconcile.NewResolver(st, st, geo, logging.NewNop())
	ctx := context.Background()

	geocoded, err := resolver.ResolveLocation(ctx, catalog.LocationInput{Name: "Louvre", Address: "Paris", Country: "France"})
	if err != nil {
		t.Fatalf("resolve louvre: %v", err)
	}
	supplied, err := resolver.ResolveLocation(ctx, catalog.LocationInput{
		Name:      "Hotel de Ville",
		Country:   "France",
		Latitude:  catalog.FloatPtr(48.8566),
		Longitude: catalog.FloatPtr(2.3522),
	})
	if err != nil {
		t.Fatalf("resolve supplied: %v", err)
	}
	if supplied.ID == geocoded.ID || supplied.Geocoded {
		t.Fatalf("supplied coordinates matched a geocoded row: %+v", supplied)
	}
}

func TestResolveLocationWithoutGeocodeMatchStoresNoCoordinates(t *testing.T) {
	st := newRecordingStore(t)
	geo := &stubGeocoder{}
	resolver := reconcile.NewResolver(st, st, geo, logging.NewNop())

	location, err := resolver.ResolveLocation(context.Background(), catalog.LocationInput{
		Name:    "Nowhere In Particular",
		Address: "1 Unknown Way",
		Country: "Atlantis",
	})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if len(geo.Calls()) != 1 {
		t.Fatalf("expected exactly one geocode call, got %v", geo.Calls())
	}
	if location.Latitude != nil || location.Longitude != nil {
		t.Fatalf("expected coordinates to stay unset, got %+v", location)
	}
	if got := st.count("insert_location"); got != 1 {
		t.Fatalf("expected location to be created, got %d inserts", got)
	}
}

func TestResolveLocationGeocodeErrorStillCreates(t *testing.T) {
	st := newRecordingStore(t)
	geo := &stubGeocoder{err: catalog.Transient("geocode", errors.New("dial tcp: timeout"))}
	resolver := reconcile.NewResolver(st, st, geo, logging.NewNop())

	location, err := resolver.ResolveLocation(context.Background(), catalog.LocationInput{
		Name:    "High Museum of Art",
		Address: "1280 Peachtree St NE",
		City:    "Atlanta",
		Country: "USA",
	})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if location.HasCoordinates() {
		t.Fatalf("expected no coordinates after geocode failure, got %+v", location)
	}
}

func TestResolveLocationWithoutAddressSkipsGeocode(t *testing.T) {
	st := newRecordingStore(t)
	geo := &stubGeocoder{matched: true}
	resolver := reconcile.NewResolver(st, st, geo, logging.NewNop())

	if _, err := resolver.ResolveLocation(context.Background(), catalog.LocationInput{Name: "Dubrovnik Old Town", City: "Dubrovnik", Country: "Croatia"}); err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if len(geo.Calls()) != 0 {
		t.Fatalf("expected no geocode without an address, got %v", geo.Calls())
	}
}

func TestResolveLocationRequiresNameAndCountry(t *testing.T) {
	st := newRecordingStore(t)
	resolver := reconcile.NewResolver(st, st, nil, logging.NewNop())

	_, err := resolver.ResolveLocation(context.Background(), catalog.LocationInput{Name: "Somewhere"})
	if catalog.KindOf(err) != catalog.KindIntegrity {
		t.Fatalf("expected integrity error, got %v", err)
	}
	if got := st.count("insert_location"); got != 0 {
		t.Fatalf("expected no insert, got %d", got)
	}
}
