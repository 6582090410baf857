package wikipedia

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"filmloc/internal/catalog"
	"filmloc/internal/logging"
)

// SourceName is the scheduler name of the Wikipedia source.
const SourceName = "wikipedia"

// candidateConfidence is the confidence stamped on every harvested record.
// It stays below any sensible review threshold.
const candidateConfidence = 0.3

// Source adapts the client to the scheduler. Each fetch runs one search page
// for the current query and emits unverified records for every candidate
// found. The cursor is "<query index>:<search offset>"; an exhausted query
// moves on to the next one and the last query wraps to the first.
type Source struct {
	client  *Client
	queries []string
	limit   int
	logger  *slog.Logger
}

// NewSource wraps client as the "wikipedia" scheduler source.
func NewSource(client *Client, queries []string, limit int, logger *slog.Logger) *Source {
	var cleaned []string
	for _, q := range queries {
		if q = strings.TrimSpace(q); q != "" {
			cleaned = append(cleaned, q)
		}
	}
	return &Source{
		client:  client,
		queries: cleaned,
		limit:   limit,
		logger:  logging.NewComponentLogger(logger, "wikipedia"),
	}
}

// Name implements sources.Source.
func (s *Source) Name() string { return SourceName }

// Fetch implements sources.Source. A failed search fails the fetch so the
// next run retries the same page; a failed article is logged and skipped.
func (s *Source) Fetch(ctx context.Context, cursor string) ([]catalog.LocationRecord, string, error) {
	if len(s.queries) == 0 {
		return nil, cursor, nil
	}
	index, offset, err := parseCursor(cursor)
	if err != nil {
		return nil, "", err
	}
	if index >= len(s.queries) {
		index, offset = 0, 0
	}
	query := s.queries[index]

	page, err := s.client.Search(ctx, query, offset, s.limit)
	if err != nil {
		return nil, "", fmt.Errorf("search %q: %w", query, err)
	}

	var records []catalog.LocationRecord
	for _, title := range page.Titles {
		if err := ctx.Err(); err != nil {
			return nil, "", err
		}
		found, err := s.articleRecords(ctx, title)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, "", ctxErr
			}
			logging.WarnWithContext(s.logger, "wikipedia article skipped", "wikipedia_article_failed",
				logging.String("title", title),
				logging.String("kind", string(catalog.KindOf(err))),
				logging.Error(err),
			)
			continue
		}
		records = append(records, found...)
	}

	s.logger.Info("wikipedia search processed",
		logging.String("query", query),
		logging.Int("offset", offset),
		logging.Int("articles", len(page.Titles)),
		logging.Int("records", len(records)),
	)
	return records, s.nextCursor(index, page.NextOffset), nil
}

func (s *Source) articleRecords(ctx context.Context, title string) ([]catalog.LocationRecord, error) {
	wikitext, err := s.client.Wikitext(ctx, title)
	if err != nil {
		return nil, err
	}
	candidates := ExtractCandidates(wikitext)
	if len(candidates) == 0 {
		return nil, nil
	}
	production := ProductionFromTitle(title)
	records := make([]catalog.LocationRecord, 0, len(candidates))
	for _, c := range candidates {
		records = append(records, catalog.LocationRecord{
			Production: production,
			Location: catalog.LocationInput{
				Name:          c.Name,
				City:          c.City,
				StateProvince: c.StateProvince,
				Country:       c.Country,
				Description:   c.Text,
			},
			FilmingInfo: catalog.FilmingInfo{Verified: false},
			Source:      SourceName + ":" + title,
			Confidence:  candidateConfidence,
		})
	}
	return records, nil
}

func (s *Source) nextCursor(index, nextOffset int) string {
	if nextOffset > 0 {
		return strconv.Itoa(index) + ":" + strconv.Itoa(nextOffset)
	}
	return strconv.Itoa((index+1)%len(s.queries)) + ":0"
}

func parseCursor(cursor string) (int, int, error) {
	cursor = strings.TrimSpace(cursor)
	if cursor == "" {
		return 0, 0, nil
	}
	rawIndex, rawOffset, ok := strings.Cut(cursor, ":")
	if !ok {
		return 0, 0, fmt.Errorf("invalid wikipedia cursor %q", cursor)
	}
	index, err := strconv.Atoi(rawIndex)
	if err != nil || index < 0 {
		return 0, 0, fmt.Errorf("invalid wikipedia cursor %q", cursor)
	}
	offset, err := strconv.Atoi(rawOffset)
	if err != nil || offset < 0 {
		return 0, 0, fmt.Errorf("invalid wikipedia cursor %q", cursor)
	}
	return index, offset, nil
}
