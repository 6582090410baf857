// Package reconcile turns raw LocationRecords into catalog rows.
//
// A record flows through four steps: the Resolver finds or creates the
// production, then the location (back-filling coordinates through the
// geocoder when only an address is known); the Linker upserts the
// production/location association; and the Router queues unverified or
// low-confidence records for moderation. Pipeline drives the steps for one
// record at a time and applies the error policy: transient failures retry the
// whole record, integrity failures abort it, and review routing never fails
// the record.
package reconcile
