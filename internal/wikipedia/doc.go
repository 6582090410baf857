// Package wikipedia harvests filming-location candidates from English
// Wikipedia through the MediaWiki action API.
//
// A fetch runs one full-text search, downloads the wikitext of every
// matching article and extracts place names from its filming or production
// section. Extraction is heuristic, so every record is emitted unverified at
// low confidence and lands in the review queue.
package wikipedia
