// Package geocode turns free-form addresses into coordinates using a
// Nominatim-compatible search endpoint.
//
// Each call issues exactly one request. There is no caching, retry, or rate
// limiting; callers treat failure as "no coordinates" and move on.
package geocode
