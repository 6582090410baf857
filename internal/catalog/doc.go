// Package catalog defines the filming-locations domain: productions,
// locations, the association between them, review submissions, and the raw
// LocationRecord that sources emit.
//
// It also owns the error taxonomy shared by the store and the reconciliation
// pipeline. Errors carry a Kind so callers can tell an expected miss from a
// retryable outage from a rejected write without string matching.
package catalog
