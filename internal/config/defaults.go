package config

const (
	// DriverSQLite selects the embedded SQLite backend.
	DriverSQLite = "sqlite"
	// DriverPostgres selects a PostgreSQL server.
	DriverPostgres = "postgres"

	// SourceKindFile reads JSON-lines records from a local path.
	SourceKindFile = "file"
)

const (
	defaultConfigPath             = "~/.config/filmloc/config.toml"
	defaultDataDir                = "~/.local/share/filmloc"
	defaultLogDir                 = "~/.local/share/filmloc/logs"
	defaultDatabaseFile           = "filmloc.db"
	defaultTMDBBaseURL            = "https://api.themoviedb.org/3"
	defaultTMDBImageBaseURL       = "https://image.tmdb.org/t/p"
	defaultTMDBLanguage           = "en-US"
	defaultTMDBRequestsPerMinute  = 40
	defaultTMDBRequestTimeout     = 10
	defaultGeocodingBaseURL       = "https://nominatim.openstreetmap.org"
	defaultGeocodingUserAgent     = "FilmingLocations/1.0"
	defaultGeocodingTimeout       = 10
	defaultWikipediaBaseURL       = "https://en.wikipedia.org/w/api.php"
	defaultWikipediaUserAgent     = "FilmingLocations/1.0 (Film Location Database)"
	defaultWikipediaSearchLimit   = 10
	defaultWikipediaRPM           = 60
	defaultWikipediaTimeout       = 10
	defaultPipelineMaxAttempts    = 3
	defaultPipelineRetryBackoffMS = 1000
	defaultNtfyRequestTimeout     = 10
	defaultLogFormat              = "console"
	defaultLogLevel               = "info"
)

// DefaultSources returns the built-in source list in its original priority order.
func DefaultSources() []Source {
	return []Source{
		{Name: "tmdb", Priority: 1, RequestsPerMinute: 40, Enabled: true},
		{Name: "imdb", Priority: 2, RequestsPerMinute: 10, Enabled: true},
		{Name: "wikipedia", Priority: 3, RequestsPerMinute: 30, Enabled: true},
		{Name: "reddit", Priority: 4, RequestsPerMinute: 60, Enabled: true},
		{Name: "instagram", Priority: 5, RequestsPerMinute: 20, Enabled: true},
	}
}

// DefaultWikipediaQueries returns the searches the wikipedia source cycles
// through when none are configured.
func DefaultWikipediaQueries() []string {
	return []string{"The Lord of the Rings", "Game of Thrones", "James Bond", "Star Wars"}
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
		},
		TMDB: TMDB{
			BaseURL:           defaultTMDBBaseURL,
			ImageBaseURL:      defaultTMDBImageBaseURL,
			Language:          defaultTMDBLanguage,
			RequestsPerMinute: defaultTMDBRequestsPerMinute,
			RequestTimeout:    defaultTMDBRequestTimeout,
		},
		Geocoding: Geocoding{
			Enabled:        true,
			BaseURL:        defaultGeocodingBaseURL,
			UserAgent:      defaultGeocodingUserAgent,
			RequestTimeout: defaultGeocodingTimeout,
		},
		Wikipedia: Wikipedia{
			BaseURL:           defaultWikipediaBaseURL,
			UserAgent:         defaultWikipediaUserAgent,
			SearchLimit:       defaultWikipediaSearchLimit,
			RequestsPerMinute: defaultWikipediaRPM,
			RequestTimeout:    defaultWikipediaTimeout,
		},
		Pipeline: Pipeline{
			MaxAttempts:       defaultPipelineMaxAttempts,
			RetryBackoffMilli: defaultPipelineRetryBackoffMS,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNtfyRequestTimeout,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
