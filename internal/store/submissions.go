package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"filmloc/internal/catalog"
)

const submissionColumns = "id, type, data, status, record_key, created_at"

// InsertSubmission queues a record for moderation. Submissions are never
// deduplicated; every call adds a row.
func (s *Store) InsertSubmission(ctx context.Context, submission *catalog.Submission) error {
	if submission == nil {
		return errors.New("insert submission: nil submission")
	}
	if !json.Valid(submission.Data) {
		return catalog.Integrity("insert submission", errors.New("data is not valid json"))
	}
	now := time.Now().UTC()
	if submission.ID == "" {
		submission.ID = uuid.NewString()
	}
	if submission.Type == "" {
		submission.Type = catalog.SubmissionTypeFilmingLocation
	}
	if submission.Status == "" {
		submission.Status = catalog.SubmissionStatusPending
	}
	submission.CreatedAt = now

	_, err := s.execWithRetry(ctx,
		"INSERT INTO submissions ("+submissionColumns+") VALUES (?, ?, ?, ?, ?, ?)",
		submission.ID,
		submission.Type,
		string(submission.Data),
		submission.Status,
		nullableString(submission.RecordKey),
		formatTime(now),
	)
	if err != nil {
		return classify("insert submission", s.dialect, err)
	}
	return nil
}

// ListSubmissions returns submissions with the given status in insertion
// order. An empty status lists all of them.
func (s *Store) ListSubmissions(ctx context.Context, status string) ([]catalog.Submission, error) {
	query := "SELECT " + submissionColumns + " FROM submissions"
	var args []any
	if status != "" {
		query += " WHERE status = ?"
		args = append(args, status)
	}
	query += " ORDER BY created_at, id"

	rows, err := s.queryWithRetry(ctx, query, args...)
	if err != nil {
		return nil, classify("list submissions", s.dialect, err)
	}
	defer rows.Close()

	var submissions []catalog.Submission
	for rows.Next() {
		var (
			sub        catalog.Submission
			data       []byte
			statusRaw  sql.NullString
			recordKey  sql.NullString
			createdRaw sql.NullString
		)
		if err := rows.Scan(&sub.ID, &sub.Type, &data, &statusRaw, &recordKey, &createdRaw); err != nil {
			return nil, fmt.Errorf("scan submission: %w", err)
		}
		sub.Data = json.RawMessage(data)
		sub.Status = statusRaw.String
		sub.RecordKey = recordKey.String
		sub.CreatedAt = parseTime(createdRaw)
		submissions = append(submissions, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("list submissions", s.dialect, err)
	}
	return submissions, nil
}
