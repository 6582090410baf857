// Package notifications publishes run summaries and review backlog alerts
// to ntfy.
//
// NewService returns a no-op implementation when no topic is configured, so
// callers never need to check whether notifications are enabled.
package notifications
