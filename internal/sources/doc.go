// Package sources drives external data sources through the reconciliation
// pipeline.
//
// The Scheduler walks the configured sources in ascending priority, fetches
// each registered Source once, feeds the records to the pipeline, then pauses
// 60/requests_per_minute seconds before moving on. The pause separates
// sources; it does not throttle requests a source issues internally. A failing
// source is logged and skipped without affecting the rest of the run.
package sources
