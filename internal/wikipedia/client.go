package wikipedia

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"filmloc/internal/catalog"
	"filmloc/internal/config"
)

// ErrPageMissing reports a title with no current revision.
var ErrPageMissing = errors.New("wikipedia page missing")

// SearchPage is one page of full-text search results.
type SearchPage struct {
	Titles []string
	// NextOffset is the sroffset of the following page, or -1 when the
	// search is exhausted.
	NextOffset int
}

// APIError reports a non-200 response or a MediaWiki error payload.
type APIError struct {
	Action     string
	StatusCode int
	Code       string
	Info       string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("mediawiki %s: %s (%s)", e.Action, e.Code, e.Info)
	}
	return fmt.Sprintf("mediawiki %s returned %d", e.Action, e.StatusCode)
}

// ErrorKind classifies throttling and server failures as transient.
func (e *APIError) ErrorKind() catalog.Kind {
	if e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500 || e.Code == "maxlag" || e.Code == "ratelimited" {
		return catalog.KindTransient
	}
	return catalog.KindUnknown
}

// Client talks to a MediaWiki api.php endpoint.
type Client struct {
	endpoint   string
	userAgent  string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithRequestsPerMinute paces requests. A non-positive rate disables pacing.
func WithRequestsPerMinute(rpm int) Option {
	return func(c *Client) {
		if rpm <= 0 {
			c.limiter = nil
			return
		}
		c.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(rpm)), 1)
	}
}

// New creates a client for the api.php endpoint. MediaWiki rejects
// anonymous agents, so userAgent is required.
func New(endpoint, userAgent string, opts ...Option) (*Client, error) {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return nil, errors.New("wikipedia api url required")
	}
	userAgent = strings.TrimSpace(userAgent)
	if userAgent == "" {
		return nil, errors.New("wikipedia user agent required")
	}
	client := &Client{
		endpoint:   endpoint,
		userAgent:  userAgent,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// NewFromConfig builds a paced client from the wikipedia section.
func NewFromConfig(cfg config.Wikipedia) (*Client, error) {
	timeout := time.Duration(cfg.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return New(cfg.BaseURL, cfg.UserAgent,
		WithHTTPClient(&http.Client{Timeout: timeout}),
		WithRequestsPerMinute(cfg.RequestsPerMinute),
	)
}

type searchResponse struct {
	Continue *struct {
		SROffset int `json:"sroffset"`
	} `json:"continue"`
	Query struct {
		Search []struct {
			Title string `json:"title"`
		} `json:"search"`
	} `json:"query"`
}

// Search runs a full-text search restricted to film and television
// articles.
func (c *Client) Search(ctx context.Context, query string, offset, limit int) (*SearchPage, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, errors.New("query must not be empty")
	}
	if limit <= 0 {
		limit = 10
	}
	params := url.Values{}
	params.Set("action", "query")
	params.Set("list", "search")
	params.Set("srsearch", query+` film OR movie OR "TV series"`)
	params.Set("srlimit", strconv.Itoa(limit))
	params.Set("srnamespace", "0")
	if offset > 0 {
		params.Set("sroffset", strconv.Itoa(offset))
	}

	var payload searchResponse
	if err := c.get(ctx, "search", params, &payload); err != nil {
		return nil, err
	}
	page := &SearchPage{NextOffset: -1}
	for _, hit := range payload.Query.Search {
		page.Titles = append(page.Titles, hit.Title)
	}
	if payload.Continue != nil && payload.Continue.SROffset > offset {
		page.NextOffset = payload.Continue.SROffset
	}
	return page, nil
}

type revisionsResponse struct {
	Query struct {
		Pages []struct {
			Title     string `json:"title"`
			Missing   bool   `json:"missing"`
			Revisions []struct {
				Slots struct {
					Main struct {
						Content string `json:"content"`
					} `json:"main"`
				} `json:"slots"`
			} `json:"revisions"`
		} `json:"pages"`
	} `json:"query"`
}

// Wikitext returns the current wikitext of title, following redirects. A
// missing page yields ErrPageMissing classified as catalog.KindNotFound.
func (c *Client) Wikitext(ctx context.Context, title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", errors.New("title must not be empty")
	}
	params := url.Values{}
	params.Set("action", "query")
	params.Set("prop", "revisions")
	params.Set("titles", title)
	params.Set("rvprop", "content")
	params.Set("rvslots", "main")
	params.Set("redirects", "1")

	var payload revisionsResponse
	if err := c.get(ctx, "revisions", params, &payload); err != nil {
		return "", err
	}
	for _, page := range payload.Query.Pages {
		if page.Missing || len(page.Revisions) == 0 {
			continue
		}
		return page.Revisions[0].Slots.Main.Content, nil
	}
	return "", &catalog.Error{Kind: catalog.KindNotFound, Op: "wikipedia revisions", Err: fmt.Errorf("page %q: %w", title, ErrPageMissing)}
}

func (c *Client) get(ctx context.Context, action string, params url.Values, out any) error {
	endpoint, err := url.Parse(c.endpoint)
	if err != nil {
		return fmt.Errorf("parse wikipedia url: %w", err)
	}
	params.Set("format", "json")
	params.Set("formatversion", "2")
	endpoint.RawQuery = params.Encode()

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("wikipedia rate limit wait: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	requestStart := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return catalog.Transient("wikipedia "+action, fmt.Errorf("execute request (latency=%v): %w", time.Since(requestStart), err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &APIError{Action: action, StatusCode: resp.StatusCode}
	}
	var envelope struct {
		Error *struct {
			Code string `json:"code"`
			Info string `json:"info"`
		} `json:"error"`
	}
	var raw json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return fmt.Errorf("decode wikipedia %s: %w", action, err)
	}
	if err := json.Unmarshal(raw, &envelope); err == nil && envelope.Error != nil {
		return &APIError{Action: action, StatusCode: resp.StatusCode, Code: envelope.Error.Code, Info: envelope.Error.Info}
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode wikipedia %s: %w", action, err)
	}
	return nil
}
