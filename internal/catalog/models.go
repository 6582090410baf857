package catalog

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// ProductionType enumerates the supported production kinds.
type ProductionType string

const (
	ProductionMovie  ProductionType = "movie"
	ProductionTVShow ProductionType = "tv_show"
)

// Valid reports whether t is a known production type.
func (t ProductionType) Valid() bool {
	return t == ProductionMovie || t == ProductionTVShow
}

const (
	// SubmissionTypeFilmingLocation tags submissions wrapping a LocationRecord.
	SubmissionTypeFilmingLocation = "filming_location"
	// SubmissionStatusPending marks submissions awaiting moderation.
	SubmissionStatusPending = "pending"
)

// Production is a movie or TV show.
type Production struct {
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	Type        ProductionType `json:"type"`
	ReleaseYear *int           `json:"release_year,omitempty"`
	IMDbID      string         `json:"imdb_id,omitempty"`
	TMDBID      string         `json:"tmdb_id,omitempty"`
	Description string         `json:"description,omitempty"`
	Genres      []string       `json:"genres,omitempty"`
	PosterURL   string         `json:"poster_url,omitempty"`
	BackdropURL string         `json:"backdrop_url,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// Location is a physical filming site.
type Location struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Address       string    `json:"address,omitempty"`
	City          string    `json:"city,omitempty"`
	StateProvince string    `json:"state_province,omitempty"`
	Country       string    `json:"country"`
	Latitude      *float64  `json:"latitude,omitempty"`
	Longitude     *float64  `json:"longitude,omitempty"`
	// Geocoded marks coordinates filled in by the geocoder rather than
	// supplied by a source. Only supplied coordinates identify a location.
	Geocoded      bool      `json:"coordinates_geocoded,omitempty"`
	LocationType  string    `json:"location_type,omitempty"`
	Accessibility string    `json:"accessibility,omitempty"`
	Description   string    `json:"description,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// HasCoordinates reports whether both latitude and longitude are set.
func (l *Location) HasCoordinates() bool {
	return l != nil && l.Latitude != nil && l.Longitude != nil
}

// FilmingLocation links one production to one location.
type FilmingLocation struct {
	ID               string    `json:"id"`
	ProductionID     string    `json:"production_id"`
	LocationID       string    `json:"location_id"`
	SceneDescription string    `json:"scene_description,omitempty"`
	FilmingDate      string    `json:"filming_date,omitempty"`
	Episode          string    `json:"episode,omitempty"`
	Season           *int      `json:"season,omitempty"`
	Verified         bool      `json:"verified"`
	Notes            string    `json:"notes,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// Submission is a pending-review envelope around an unverified input record.
type Submission struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	Data      json.RawMessage `json:"data"`
	Status    string          `json:"status"`
	RecordKey string          `json:"record_key"`
	CreatedAt time.Time       `json:"created_at"`
}

// Coordinates is a latitude/longitude pair.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// ProductionInput is the partial production descriptor carried on a record.
type ProductionInput struct {
	Title       string         `json:"title"`
	Type        ProductionType `json:"type"`
	ReleaseYear *int           `json:"release_year,omitempty"`
	IMDbID      string         `json:"imdb_id,omitempty"`
	TMDBID      string         `json:"tmdb_id,omitempty"`
	Description string         `json:"description,omitempty"`
	Genres      []string       `json:"genres,omitempty"`
	PosterURL   string         `json:"poster_url,omitempty"`
	BackdropURL string         `json:"backdrop_url,omitempty"`
}

// LocationInput is the partial location descriptor carried on a record.
type LocationInput struct {
	Name          string   `json:"name"`
	Address       string   `json:"address,omitempty"`
	City          string   `json:"city,omitempty"`
	StateProvince string   `json:"state_province,omitempty"`
	Country       string   `json:"country"`
	Latitude      *float64 `json:"latitude,omitempty"`
	Longitude     *float64 `json:"longitude,omitempty"`
	LocationType  string   `json:"location_type,omitempty"`
	Accessibility string   `json:"accessibility,omitempty"`
	Description   string   `json:"description,omitempty"`
}

// HasCoordinates reports whether both latitude and longitude are set.
func (l LocationInput) HasCoordinates() bool {
	return l.Latitude != nil && l.Longitude != nil
}

// GeocodeQuery builds the free-form address handed to the geocoder.
func (l LocationInput) GeocodeQuery() string {
	parts := make([]string, 0, 3)
	for _, part := range []string{l.Address, l.City, l.Country} {
		if part = strings.TrimSpace(part); part != "" {
			parts = append(parts, part)
		}
	}
	return strings.Join(parts, ", ")
}

// FilmingInfo carries the filming-event attributes of a record.
type FilmingInfo struct {
	SceneDescription string `json:"scene_description,omitempty"`
	FilmingDate      string `json:"filming_date,omitempty"`
	Episode          string `json:"episode,omitempty"`
	Season           *int   `json:"season,omitempty"`
	Verified         bool   `json:"verified"`
}

// LocationRecord is one raw sighting of a production filmed at a location.
type LocationRecord struct {
	Production  ProductionInput `json:"production"`
	Location    LocationInput   `json:"location"`
	FilmingInfo FilmingInfo     `json:"filming_info"`
	Source      string          `json:"source"`
	Confidence  float64         `json:"confidence"`
}

// Key derives a stable identifier from the record's production and location
// identity so a replayed record can be correlated with earlier attempts.
func (r LocationRecord) Key() string {
	var b strings.Builder
	b.WriteString("p:")
	if r.Production.IMDbID != "" {
		b.WriteString("imdb=")
		b.WriteString(r.Production.IMDbID)
	} else {
		b.WriteString(r.Production.Title)
		b.WriteByte('|')
		if r.Production.ReleaseYear != nil {
			b.WriteString(strconv.Itoa(*r.Production.ReleaseYear))
		}
	}
	b.WriteString("|l:")
	if r.Location.HasCoordinates() {
		b.WriteString(strconv.FormatFloat(*r.Location.Latitude, 'f', -1, 64))
		b.WriteByte(',')
		b.WriteString(strconv.FormatFloat(*r.Location.Longitude, 'f', -1, 64))
	} else {
		b.WriteString(r.Location.Name)
		b.WriteByte('|')
		b.WriteString(r.Location.City)
		b.WriteByte('|')
		b.WriteString(r.Location.Country)
	}
	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}

// DataSource is a scheduler entry: a named source with a priority and rate.
type DataSource struct {
	Name              string
	Priority          int
	RequestsPerMinute int
}

// Pause returns the delay applied after the source runs.
func (d DataSource) Pause() time.Duration {
	if d.RequestsPerMinute <= 0 {
		return 0
	}
	return time.Duration(float64(time.Minute) / float64(d.RequestsPerMinute))
}

// IntPtr returns a pointer to v.
func IntPtr(v int) *int { return &v }

// FloatPtr returns a pointer to v.
func FloatPtr(v float64) *float64 { return &v }
