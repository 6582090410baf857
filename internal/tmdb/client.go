package tmdb

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

// Movie is a TMDB movie list entry.
type Movie struct {
	ID           int64   `json:"id"`
	Title        string  `json:"title"`
	Overview     string  `json:"overview"`
	ReleaseDate  string  `json:"release_date"`
	PosterPath   string  `json:"poster_path"`
	BackdropPath string  `json:"backdrop_path"`
	GenreIDs     []int64 `json:"genre_ids"`
	Popularity   float64 `json:"popularity"`
}

// MoviePage models the paginated /movie/popular response.
type MoviePage struct {
	Page         int     `json:"page"`
	Results      []Movie `json:"results"`
	TotalPages   int     `json:"total_pages"`
	TotalResults int     `json:"total_results"`
}

// ExternalIDs holds cross-references to other catalogs.
type ExternalIDs struct {
	IMDbID string `json:"imdb_id"`
}

// MovieDetails is the /movie/{id} payload with external_ids appended.
type MovieDetails struct {
	Movie
	IMDbID      string       `json:"imdb_id"`
	ExternalIDs *ExternalIDs `json:"external_ids"`
}

// ResolvedIMDbID prefers the top-level imdb_id and falls back to external_ids.
func (d *MovieDetails) ResolvedIMDbID() string {
	if d == nil {
		return ""
	}
	if id := strings.TrimSpace(d.IMDbID); id != "" {
		return id
	}
	if d.ExternalIDs != nil {
		return strings.TrimSpace(d.ExternalIDs.IMDbID)
	}
	return ""
}

// Genre is a TMDB genre id/name pair.
type Genre struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type genreList struct {
	Genres []Genre `json:"genres"`
}

// SearchResult is a single movie or TV search match.
type SearchResult struct {
	ID           int64   `json:"id"`
	Title        string  `json:"title"`
	Name         string  `json:"name"`
	Overview     string  `json:"overview"`
	ReleaseDate  string  `json:"release_date"`
	FirstAirDate string  `json:"first_air_date"`
	Popularity   float64 `json:"popularity"`
}

// DisplayTitle returns the movie title or the show name.
func (r SearchResult) DisplayTitle() string {
	if r.Title != "" {
		return r.Title
	}
	return r.Name
}

// SearchResponse models a paginated search response.
type SearchResponse struct {
	Page         int            `json:"page"`
	Results      []SearchResult `json:"results"`
	TotalPages   int            `json:"total_pages"`
	TotalResults int            `json:"total_results"`
}

// CastMember is one credited performer.
type CastMember struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Character string `json:"character"`
	Order     int    `json:"order"`
}

// CrewMember is one credited crew role.
type CrewMember struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	Job        string `json:"job"`
	Department string `json:"department"`
}

// Credits is the /{type}/{id}/credits payload.
type Credits struct {
	ID   int64        `json:"id"`
	Cast []CastMember `json:"cast"`
	Crew []CrewMember `json:"crew"`
}

// MediaType selects the movie or TV variant of an endpoint.
type MediaType string

const (
	MediaMovie MediaType = "movie"
	MediaTV    MediaType = "tv"
)

// APIError reports a non-200 TMDB response.
type APIError struct {
	Endpoint   string
	StatusCode int
	Latency    time.Duration
}

func (e *APIError) Error() string {
	return fmt.Sprintf("tmdb %s returned %d (latency=%v)", e.Endpoint, e.StatusCode, e.Latency)
}

// ErrorKind classifies throttling and server failures as transient.
func (e *APIError) ErrorKind() catalog.Kind {
	if e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500 {
		return catalog.KindTransient
	}
	return catalog.KindUnknown
}

// Client provides access to the TMDB API.
type Client struct {
	apiKey     string
	baseURL    string
	language   string
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

// WithRequestsPerMinute paces requests with a token bucket. A non-positive
// rate disables pacing.
func WithRequestsPerMinute(rpm int) Option {
	return func(c *Client) {
		if rpm <= 0 {
			c.limiter = nil
			return
		}
		c.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(rpm)), 1)
	}
}

// New creates a TMDB client.
func New(apiKey, baseURL, language string, opts ...Option) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("tmdb api key required")
	}
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("tmdb base url required")
	}
	client := &Client{
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		language:   strings.TrimSpace(language),
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// NewFromConfig builds a paced client from the tmdb section.
func NewFromConfig(cfg config.TMDB) (*Client, error) {
	timeout := time.Duration(cfg.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return New(cfg.APIKey, cfg.BaseURL, cfg.Language,
		WithHTTPClient(&http.Client{Timeout: timeout}),
		WithRequestsPerMinute(cfg.RequestsPerMinute),
	)
}

// PopularMovies returns one page of /movie/popular.
func (c *Client) PopularMovies(ctx context.Context, page int) (*MoviePage, error) {
	if page <= 0 {
		page = 1
	}
	params := url.Values{}
	params.Set("page", strconv.Itoa(page))
	var payload MoviePage
	if err := c.get(ctx, "/movie/popular", params, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// MovieDetails fetches a movie with its external ids appended.
func (c *Client) MovieDetails(ctx context.Context, movieID int64) (*MovieDetails, error) {
	if movieID <= 0 {
		return nil, errors.New("movie id must be positive")
	}
	params := url.Values{}
	params.Set("append_to_response", "external_ids")
	var payload MovieDetails
	if err := c.get(ctx, "/movie/"+strconv.FormatInt(movieID, 10), params, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// MovieGenres returns the genre id to name map.
func (c *Client) MovieGenres(ctx context.Context) (map[int64]string, error) {
	var payload genreList
	if err := c.get(ctx, "/genre/movie/list", nil, &payload); err != nil {
		return nil, err
	}
	genres := make(map[int64]string, len(payload.Genres))
	for _, genre := range payload.Genres {
		genres[genre.ID] = genre.Name
	}
	return genres, nil
}

// SearchMovie searches movies by title.
func (c *Client) SearchMovie(ctx context.Context, query string) (*SearchResponse, error) {
	return c.search(ctx, "/search/movie", query)
}

// SearchTV searches TV shows by name.
func (c *Client) SearchTV(ctx context.Context, query string) (*SearchResponse, error) {
	return c.search(ctx, "/search/tv", query)
}

// Credits fetches cast and crew for a movie or TV show.
func (c *Client) Credits(ctx context.Context, media MediaType, id int64) (*Credits, error) {
	if media != MediaMovie && media != MediaTV {
		return nil, fmt.Errorf("unsupported media type %q", media)
	}
	if id <= 0 {
		return nil, errors.New("id must be positive")
	}
	var payload Credits
	if err := c.get(ctx, fmt.Sprintf("/%s/%d/credits", media, id), nil, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

func (c *Client) search(ctx context.Context, path, query string) (*SearchResponse, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, errors.New("query must not be empty")
	}
	params := url.Values{}
	params.Set("query", query)
	var payload SearchResponse
	if err := c.get(ctx, path, params, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	endpoint, err := url.Parse(c.baseURL + path)
	if err != nil {
		return fmt.Errorf("parse tmdb url: %w", err)
	}
	if params == nil {
		params = url.Values{}
	}
	params.Set("api_key", c.apiKey)
	if c.language != "" {
		params.Set("language", c.language)
	}
	endpoint.RawQuery = params.Encode()

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("tmdb rate limit wait: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	requestStart := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		return catalog.Transient("tmdb "+path, fmt.Errorf("execute request (latency=%v): %w", latency, err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &APIError{Endpoint: path, StatusCode: resp.StatusCode, Latency: latency}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode tmdb %s: %w", path, err)
	}
	return nil
}
