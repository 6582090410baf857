// Package config loads, normalizes, and validates filmloc configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// DATABASE_URL and TMDB_API_KEY. A missing database connection is the only
// configuration problem treated as fatal; everything else has a default.
//
// The scheduler source list lives here too so priorities and rate limits are
// data rather than code.
package config
