package catalog

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// Kind classifies failures for the pipeline's error policy.
type Kind string

const (
	// KindUnknown is reported for unclassified errors.
	KindUnknown Kind = ""
	// KindNotFound marks an expected miss. Lookups normally return nil, nil instead.
	KindNotFound Kind = "not_found"
	// KindTransient marks network, timeout, and busy-database failures that may succeed on retry.
	KindTransient Kind = "transient"
	// KindIntegrity marks rejected writes and invalid input; retrying cannot help.
	KindIntegrity Kind = "integrity"
	// KindConfig marks missing or invalid startup configuration.
	KindConfig Kind = "config"
)

// ErrConflict reports a unique-constraint violation on a natural key.
var ErrConflict = errors.New("natural key conflict")

// ErrorClassifier allows errors to declare their classification.
type ErrorClassifier interface {
	ErrorKind() Kind
}

// Error wraps an underlying failure with an operation name and a Kind.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Op == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// ErrorKind implements ErrorClassifier.
func (e *Error) ErrorKind() Kind { return e.Kind }

// Transient wraps err as a retryable failure.
func Transient(op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: KindTransient, Op: op, Err: err}
}

// Integrity wraps err as a non-retryable data failure.
func Integrity(op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: KindIntegrity, Op: op, Err: err}
}

// KindOf returns the classification of err. Context cancellation is never
// transient; bare network errors are.
func KindOf(err error) Kind {
	if err == nil {
		return KindUnknown
	}
	if errors.Is(err, context.Canceled) {
		return KindUnknown
	}
	var classifier ErrorClassifier
	if errors.As(err, &classifier) {
		return classifier.ErrorKind()
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTransient
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return KindTransient
	}
	return KindUnknown
}

// IsTransient reports whether err is worth retrying.
func IsTransient(err error) bool {
	return KindOf(err) == KindTransient
}
