// Package tmdb wraps The Movie Database v3 API and imports popular titles
// into the production catalog.
//
// The Client covers the endpoints the importer and the CLI need: popular
// movies, movie details with external ids, the genre list, title search and
// credits. Requests are paced by an optional token-bucket limiter so bulk
// imports stay under the configured requests-per-minute budget.
package tmdb
