// Package logging assembles the slog loggers used across filmloc.
//
// It owns the console and JSON handlers, level and output plumbing, and the
// context helpers that tag pipeline log lines with the data source and
// record key. A no-op logger is provided for tests and wiring code that
// cannot fail.
package logging
