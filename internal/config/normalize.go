package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeDatabase(); err != nil {
		return err
	}
	c.normalizeTMDB()
	c.normalizeGeocoding()
	c.normalizeWikipedia()
	c.normalizePipeline()
	if err := c.normalizeSources(); err != nil {
		return err
	}
	c.normalizeNotifications()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = filepath.Join(c.Paths.DataDir, "logs")
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeDatabase() error {
	c.Database.URL = strings.TrimSpace(c.Database.URL)
	if c.Database.URL == "" {
		if value, ok := os.LookupEnv("FILMLOC_DATABASE_URL"); ok {
			c.Database.URL = strings.TrimSpace(value)
		} else if value, ok := os.LookupEnv("DATABASE_URL"); ok {
			c.Database.URL = strings.TrimSpace(value)
		}
	}

	c.Database.Driver = strings.ToLower(strings.TrimSpace(c.Database.Driver))
	switch c.Database.Driver {
	case "":
		if c.Database.URL != "" {
			c.Database.Driver = DriverPostgres
		} else {
			c.Database.Driver = DriverSQLite
		}
	case "postgresql", "pg":
		c.Database.Driver = DriverPostgres
	case "sqlite3":
		c.Database.Driver = DriverSQLite
	}

	if c.Database.Driver == DriverSQLite {
		if strings.TrimSpace(c.Database.Path) == "" {
			c.Database.Path = filepath.Join(c.Paths.DataDir, defaultDatabaseFile)
		}
		var err error
		if c.Database.Path, err = expandPath(c.Database.Path); err != nil {
			return fmt.Errorf("database.path: %w", err)
		}
	}
	return nil
}

func (c *Config) normalizeTMDB() {
	if c.TMDB.APIKey == "" {
		if value, ok := os.LookupEnv("TMDB_API_KEY"); ok {
			c.TMDB.APIKey = value
		}
	}
	c.TMDB.APIKey = strings.TrimSpace(c.TMDB.APIKey)
	c.TMDB.BaseURL = strings.TrimSpace(c.TMDB.BaseURL)
	if c.TMDB.BaseURL == "" {
		c.TMDB.BaseURL = defaultTMDBBaseURL
	}
	c.TMDB.ImageBaseURL = strings.TrimRight(strings.TrimSpace(c.TMDB.ImageBaseURL), "/")
	if c.TMDB.ImageBaseURL == "" {
		c.TMDB.ImageBaseURL = defaultTMDBImageBaseURL
	}
	c.TMDB.Language = strings.TrimSpace(c.TMDB.Language)
	if c.TMDB.RequestTimeout <= 0 {
		c.TMDB.RequestTimeout = defaultTMDBRequestTimeout
	}
}

func (c *Config) normalizeGeocoding() {
	c.Geocoding.BaseURL = strings.TrimSpace(c.Geocoding.BaseURL)
	if c.Geocoding.BaseURL == "" {
		c.Geocoding.BaseURL = defaultGeocodingBaseURL
	}
	c.Geocoding.UserAgent = strings.TrimSpace(c.Geocoding.UserAgent)
	if c.Geocoding.UserAgent == "" {
		c.Geocoding.UserAgent = defaultGeocodingUserAgent
	}
	if c.Geocoding.RequestTimeout <= 0 {
		c.Geocoding.RequestTimeout = defaultGeocodingTimeout
	}
}

func (c *Config) normalizeWikipedia() {
	c.Wikipedia.BaseURL = strings.TrimSpace(c.Wikipedia.BaseURL)
	if c.Wikipedia.BaseURL == "" {
		c.Wikipedia.BaseURL = defaultWikipediaBaseURL
	}
	c.Wikipedia.UserAgent = strings.TrimSpace(c.Wikipedia.UserAgent)
	if c.Wikipedia.UserAgent == "" {
		c.Wikipedia.UserAgent = defaultWikipediaUserAgent
	}
	queries := c.Wikipedia.Queries[:0]
	for _, q := range c.Wikipedia.Queries {
		if q = strings.TrimSpace(q); q != "" {
			queries = append(queries, q)
		}
	}
	c.Wikipedia.Queries = queries
	if len(c.Wikipedia.Queries) == 0 {
		c.Wikipedia.Queries = DefaultWikipediaQueries()
	}
	if c.Wikipedia.SearchLimit <= 0 {
		c.Wikipedia.SearchLimit = defaultWikipediaSearchLimit
	}
	if c.Wikipedia.SearchLimit > 50 {
		c.Wikipedia.SearchLimit = 50
	}
	if c.Wikipedia.RequestTimeout <= 0 {
		c.Wikipedia.RequestTimeout = defaultWikipediaTimeout
	}
}

func (c *Config) normalizePipeline() {
	if c.Pipeline.MaxAttempts <= 0 {
		c.Pipeline.MaxAttempts = defaultPipelineMaxAttempts
	}
	if c.Pipeline.RetryBackoffMilli < 0 {
		c.Pipeline.RetryBackoffMilli = 0
	}
}

func (c *Config) normalizeSources() error {
	if len(c.Sources) == 0 {
		c.Sources = DefaultSources()
		return nil
	}
	for i := range c.Sources {
		src := &c.Sources[i]
		src.Name = strings.ToLower(strings.TrimSpace(src.Name))
		src.Kind = strings.ToLower(strings.TrimSpace(src.Kind))
		if strings.TrimSpace(src.Path) != "" {
			expanded, err := expandPath(strings.TrimSpace(src.Path))
			if err != nil {
				return fmt.Errorf("sources[%d].path: %w", i, err)
			}
			src.Path = expanded
		}
	}
	return nil
}

func (c *Config) normalizeNotifications() {
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.RequestTimeout <= 0 {
		c.Notifications.RequestTimeout = defaultNtfyRequestTimeout
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
