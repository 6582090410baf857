package config

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMissingCredentials reports that no usable database connection was configured.
var ErrMissingCredentials = errors.New("missing database credentials")

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateDatabase(); err != nil {
		return err
	}
	if err := c.validateTMDB(); err != nil {
		return err
	}
	if c.Wikipedia.RequestsPerMinute < 0 {
		return errors.New("wikipedia.requests_per_minute must be non-negative")
	}
	if err := c.validateReview(); err != nil {
		return err
	}
	if err := c.validateSources(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateDatabase() error {
	switch c.Database.Driver {
	case DriverSQLite:
		if strings.TrimSpace(c.Database.Path) == "" {
			return fmt.Errorf("%w: database.path must be set for the sqlite driver", ErrMissingCredentials)
		}
	case DriverPostgres:
		if c.Database.URL == "" {
			return fmt.Errorf("%w: set database.url or export DATABASE_URL", ErrMissingCredentials)
		}
	default:
		return fmt.Errorf("database.driver: unsupported value %q", c.Database.Driver)
	}
	return nil
}

func (c *Config) validateTMDB() error {
	if c.TMDB.RequestsPerMinute < 0 {
		return errors.New("tmdb.requests_per_minute must be non-negative")
	}
	return nil
}

func (c *Config) validateReview() error {
	if c.Review.ConfidenceThreshold < 0 || c.Review.ConfidenceThreshold > 1 {
		return errors.New("review.confidence_threshold must be between 0 and 1")
	}
	return nil
}

func (c *Config) validateSources() error {
	seen := make(map[string]struct{}, len(c.Sources))
	for i, src := range c.Sources {
		if src.Name == "" {
			return fmt.Errorf("sources[%d].name must be set", i)
		}
		if _, dup := seen[src.Name]; dup {
			return fmt.Errorf("sources[%d]: duplicate source name %q", i, src.Name)
		}
		seen[src.Name] = struct{}{}
		if src.RequestsPerMinute < 0 {
			return fmt.Errorf("sources[%d].requests_per_minute must be non-negative", i)
		}
		switch src.Kind {
		case "":
		case SourceKindFile:
			if src.Path == "" {
				return fmt.Errorf("sources[%d].path must be set for kind %q", i, SourceKindFile)
			}
		default:
			return fmt.Errorf("sources[%d].kind: unsupported value %q", i, src.Kind)
		}
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	return nil
}
