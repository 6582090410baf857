// Package store persists the filming-location catalog in SQLite or
// PostgreSQL.
//
// Queries are written once with ? placeholders and rebound for the active
// dialect. Every natural key (imdb_id, tmdb_id, title+year, coordinate pair,
// name+city+country, production+location) carries a unique index, so a
// concurrent insert surfaces as catalog.ErrConflict and callers re-read the
// winning row.
//
// Lookups return nil, nil on a miss. Write failures are classified into
// catalog kinds (transient or integrity) so the reconcile pipeline can decide
// whether to retry.
//
// Schema changes ship as numbered files under migrations/<dialect>/ and are
// applied in order at Open.
package store
