// Package seed carries the hard-coded sample catalog and loads it through
// the entity resolver and link upserter.
//
// Loading is idempotent: productions and locations are found by natural key
// before insert and associations are upserted. Unlike the record pipeline the
// loader stops at the first backend error.
package seed
