package geocode

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

	"filmloc/internal/catalog"
	"filmloc/internal/config"
)

// ErrNotFound reports that the geocoder returned no match for the address.
var ErrNotFound = errors.New("geocode: no match")

// Geocoder resolves an address to coordinates.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (catalog.Coordinates, error)
}

// Client queries a Nominatim-compatible /search endpoint.
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
}

var _ Geocoder = (*Client)(nil)

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

// New creates a geocoding client.
func New(baseURL, userAgent string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("geocode base url required")
	}
	userAgent = strings.TrimSpace(userAgent)
	if userAgent == "" {
		return nil, errors.New("geocode user agent required")
	}
	client := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		userAgent:  userAgent,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// NewFromConfig builds a client from the geocoding section. It returns nil
// when geocoding is disabled.
func NewFromConfig(cfg config.Geocoding) (*Client, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	timeout := time.Duration(cfg.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return New(cfg.BaseURL, cfg.UserAgent, WithHTTPClient(&http.Client{Timeout: timeout}))
}

type place struct {
	Lat string `json:"lat"`
	Lon string `json:"lon"`
}

// Geocode returns the coordinates of the first match for address.
func (c *Client) Geocode(ctx context.Context, address string) (catalog.Coordinates, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return catalog.Coordinates{}, ErrNotFound
	}
	endpoint, err := url.Parse(c.baseURL + "/search")
	if err != nil {
		return catalog.Coordinates{}, fmt.Errorf("parse geocode url: %w", err)
	}
	params := url.Values{}
	params.Set("format", "json")
	params.Set("q", address)
	endpoint.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return catalog.Coordinates{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	requestStart := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		return catalog.Coordinates{}, catalog.Transient("geocode", fmt.Errorf("execute request (latency=%v): %w", latency, err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("geocoder returned %d (latency=%v)", resp.StatusCode, latency)
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			return catalog.Coordinates{}, catalog.Transient("geocode", err)
		}
		return catalog.Coordinates{}, err
	}

	var places []place
	if err := json.NewDecoder(resp.Body).Decode(&places); err != nil {
		return catalog.Coordinates{}, fmt.Errorf("decode geocode response: %w", err)
	}
	if len(places) == 0 {
		return catalog.Coordinates{}, ErrNotFound
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(places[0].Lat), 64)
	if err != nil {
		return catalog.Coordinates{}, fmt.Errorf("parse latitude %q: %w", places[0].Lat, err)
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(places[0].Lon), 64)
	if err != nil {
		return catalog.Coordinates{}, fmt.Errorf("parse longitude %q: %w", places[0].Lon, err)
	}
	return catalog.Coordinates{Latitude: lat, Longitude: lon}, nil
}
