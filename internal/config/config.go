package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	DataDir string `toml:"data_dir"`
	LogDir  string `toml:"log_dir"`
}

// Database selects and addresses the relational backend.
type Database struct {
	// Driver is "sqlite" or "postgres". Empty selects postgres when URL is
	// set and sqlite otherwise.
	Driver string `toml:"driver"`
	// Path is the SQLite database file. Defaults to <data_dir>/filmloc.db.
	Path string `toml:"path"`
	// URL is a postgres:// connection string.
	URL string `toml:"url"`
}

// TMDB contains configuration for The Movie Database API.
type TMDB struct {
	APIKey            string `toml:"api_key"`
	BaseURL           string `toml:"base_url"`
	ImageBaseURL      string `toml:"image_base_url"`
	Language          string `toml:"language"`
	RequestsPerMinute int    `toml:"requests_per_minute"`
	RequestTimeout    int    `toml:"request_timeout"`
}

// Geocoding contains configuration for the Nominatim-compatible geocoder.
type Geocoding struct {
	Enabled        bool   `toml:"enabled"`
	BaseURL        string `toml:"base_url"`
	UserAgent      string `toml:"user_agent"`
	RequestTimeout int    `toml:"request_timeout"`
}

// Wikipedia configures the MediaWiki search source.
type Wikipedia struct {
	BaseURL   string `toml:"base_url"`
	UserAgent string `toml:"user_agent"`
	// Queries are searched in order, one result page per scheduler visit.
	Queries           []string `toml:"queries"`
	SearchLimit       int      `toml:"search_limit"`
	RequestsPerMinute int      `toml:"requests_per_minute"`
	RequestTimeout    int      `toml:"request_timeout"`
}

// Pipeline controls per-record retry behaviour.
type Pipeline struct {
	MaxAttempts       int `toml:"max_attempts"`
	RetryBackoffMilli int `toml:"retry_backoff_ms"`
}

// Review controls routing of records to the moderation queue.
type Review struct {
	// ConfidenceThreshold routes records whose confidence falls below it to
	// review even when marked verified. Zero disables the check.
	ConfidenceThreshold float64 `toml:"confidence_threshold"`
}

// Source describes one external data source driven by the scheduler.
type Source struct {
	Name              string `toml:"name"`
	Kind              string `toml:"kind"`
	Priority          int    `toml:"priority"`
	RequestsPerMinute int    `toml:"requests_per_minute"`
	Enabled           bool   `toml:"enabled"`
	Path              string `toml:"path"`
}

// Notifications configures ntfy delivery of run summaries.
type Notifications struct {
	// NtfyTopic is the full topic URL; empty disables notifications.
	NtfyTopic      string `toml:"ntfy_topic"`
	RequestTimeout int    `toml:"request_timeout"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for filmloc.
//
// Configuration sections by subsystem:
//   - Paths: data and log directories
//   - Database: sqlite file or postgres URL
//   - TMDB: metadata import from The Movie Database
//   - Geocoding: coordinate back-fill for addresses
//   - Wikipedia: article search feeding the wikipedia source
//   - Pipeline: per-record retry policy
//   - Review: moderation routing thresholds
//   - Sources: scheduler source list with priorities and rate limits
//   - Notifications: ntfy topic for run summaries
//   - Logging: log format and level
type Config struct {
	Paths         Paths         `toml:"paths"`
	Database      Database      `toml:"database"`
	TMDB          TMDB          `toml:"tmdb"`
	Geocoding     Geocoding     `toml:"geocoding"`
	Wikipedia     Wikipedia     `toml:"wikipedia"`
	Pipeline      Pipeline      `toml:"pipeline"`
	Review        Review        `toml:"review"`
	Sources       []Source      `toml:"sources"`
	Notifications Notifications `toml:"notifications"`
	Logging       Logging       `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("filmloc.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the data and log directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.DataDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	if c.Database.Driver == DriverSQLite {
		if err := os.MkdirAll(filepath.Dir(c.Database.Path), 0o755); err != nil {
			return fmt.Errorf("create database directory: %w", err)
		}
	}
	return nil
}

// LockPath returns the file used to serialize pipeline runs.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.DataDir, "filmloc.lock")
}

// LogPath returns the file the logger appends to.
func (c *Config) LogPath() string {
	return filepath.Join(c.Paths.LogDir, "filmloc.log")
}

// EnabledSources returns the configured sources that are switched on.
func (c *Config) EnabledSources() []Source {
	out := make([]Source, 0, len(c.Sources))
	for _, src := range c.Sources {
		if src.Enabled {
			out = append(out, src)
		}
	}
	return out
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
