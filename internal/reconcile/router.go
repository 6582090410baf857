package reconcile

import (
	"context"
	"encoding/json"
	"fmt"

	"filmloc/internal/catalog"
)

// Router queues records for human review.
type Router struct {
	store               SubmissionStore
	confidenceThreshold float64
}

// NewRouter constructs a Router. A positive confidenceThreshold also routes
// verified records whose confidence falls below it.
func NewRouter(store SubmissionStore, confidenceThreshold float64) *Router {
	return &Router{store: store, confidenceThreshold: confidenceThreshold}
}

// NeedsReview reports whether record must go to the moderation queue.
func (r *Router) NeedsReview(record catalog.LocationRecord) bool {
	if !record.FilmingInfo.Verified {
		return true
	}
	return r.confidenceThreshold > 0 && record.Confidence < r.confidenceThreshold
}

// RouteForReview stores the record verbatim as a pending submission. Every
// call adds a new submission.
func (r *Router) RouteForReview(ctx context.Context, record catalog.LocationRecord) (*catalog.Submission, error) {
	data, err := json.Marshal(record)
	if err != nil {
		return nil, catalog.Integrity("route for review", fmt.Errorf("encode record: %w", err))
	}
	submission := &catalog.Submission{
		Type:      catalog.SubmissionTypeFilmingLocation,
		Data:      data,
		Status:    catalog.SubmissionStatusPending,
		RecordKey: record.Key(),
	}
	if err := r.store.InsertSubmission(ctx, submission); err != nil {
		return nil, err
	}
	return submission, nil
}
