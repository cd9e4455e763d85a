// Package config provides configuration loading and management for the lineup server.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/festivalfriend/lineup-server/internal/telemetry"
)

const (
	// EnvPrefix is the prefix for environment variables read by the application
	EnvPrefix = "FF_LINEUP"

	// SourceTypePage is the type for lineups scraped from festival web pages
	SourceTypePage = "page"

	// SourceTypeFile is the type for lineups read from local roster files
	SourceTypeFile = "file"
)

// Option defines the interface for configuration options
type Option func(*loaderConfig) error

// loaderConfig defines the configuration for loading a configuration
type loaderConfig struct {
	path string
}

// WithConfigPath loads configuration from a YAML file
func WithConfigPath(path string) Option {
	return func(cfg *loaderConfig) error {
		if path == "" {
			return fmt.Errorf("path is required")
		}

		// Resolve symlinks to prevent symlink attacks.
		// Note that this calls filepath.Clean internally.
		realPath, err := filepath.EvalSymlinks(path)
		if err != nil {
			return fmt.Errorf("failed to evaluate symlinks: %w", err)
		}

		// Validate the path to prevent path traversal attacks
		if !filepath.IsAbs(realPath) {
			if !filepath.IsLocal(realPath) {
				return fmt.Errorf("path is not local or contains invalid traversal: %s", path)
			}
		}

		cfg.path = realPath
		return nil
	}
}

// Config represents the root configuration structure
type Config struct {
	// CatalogName is the name/identifier for this catalog instance
	// Defaults to "default" if not specified
	CatalogName string `yaml:"catalogName,omitempty"`

	// DataDir is the directory holding the catalog document and sync state
	// Defaults to "./data" if not specified
	DataDir string `yaml:"dataDir,omitempty"`

	// Festivals are the lineup sources to sync from
	Festivals []FestivalConfig `yaml:"festivals"`

	// MusicBrainz configures the classification web service
	MusicBrainz *MusicBrainzConfig `yaml:"musicbrainz,omitempty"`

	// Telemetry configures OpenTelemetry tracing and metrics
	Telemetry *telemetry.Config `yaml:"telemetry,omitempty"`
}

// FestivalConfig defines a single festival lineup source configuration
type FestivalConfig struct {
	// Name is the identifier for this festival
	Name string `yaml:"name"`

	// Type-specific configurations (only one should be set)
	Page *PageConfig `yaml:"page,omitempty"`
	File *FileConfig `yaml:"file,omitempty"`

	// Per-festival sync policy
	SyncPolicy *SyncPolicyConfig `yaml:"syncPolicy,omitempty"`
}

// PageConfig defines web page source settings
type PageConfig struct {
	// URL is the festival lineup page to scrape
	URL string `yaml:"url"`
}

// FileConfig defines local roster file source configuration
type FileConfig struct {
	// Path is the path to a text roster file, one artist per line.
	// Can be absolute or relative to the working directory
	Path string `yaml:"path"`
}

// SyncPolicyConfig defines synchronization settings
type SyncPolicyConfig struct {
	Interval string `yaml:"interval"`
}

// MusicBrainzConfig defines classification web service settings
type MusicBrainzConfig struct {
	// Endpoint overrides the MusicBrainz base URL (for mirrors and tests)
	Endpoint string `yaml:"endpoint,omitempty"`

	// RequestInterval is the minimum spacing between requests, as a
	// duration string. Defaults to the public service's courtesy limit.
	RequestInterval string `yaml:"requestInterval,omitempty"`
}

// LoadConfig loads and parses configuration from a YAML file
func LoadConfig(opts ...Option) (*Config, error) {
	loaderCfg := &loaderConfig{}
	for _, opt := range opts {
		if err := opt(loaderCfg); err != nil {
			return nil, err
		}
	}

	// As of now, this is required because there's no other options to load
	// configuration. Once we add more options, we can remove this check.
	if loaderCfg.path == "" {
		return nil, fmt.Errorf("path is required")
	}

	// Read the entire file into memory
	data, err := os.ReadFile(loaderCfg.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Parse YAML content
	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML config: %w", err)
	}

	// Validate the config
	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// GetCatalogName returns the catalog name, using "default" if not specified
func (c *Config) GetCatalogName() string {
	if c.CatalogName == "" {
		return "default"
	}
	return c.CatalogName
}

// GetDataDir returns the data directory, using "./data" if not specified
func (c *Config) GetDataDir() string {
	if c.DataDir == "" {
		return "./data"
	}
	return c.DataDir
}

// Validate performs validation on the configuration
func (c *Config) validate() error {
	if c == nil {
		return fmt.Errorf("config cannot be nil")
	}

	// Festivals may be empty: lineups can also arrive through the scrape
	// and import endpoints. Each configured festival must still be valid.
	festivalNames := make(map[string]bool)
	for i, festival := range c.Festivals {
		if festival.Name == "" {
			return fmt.Errorf("festival[%d]: name is required", i)
		}

		if festivalNames[festival.Name] {
			return fmt.Errorf("festival[%d]: duplicate festival name '%s'", i, festival.Name)
		}
		festivalNames[festival.Name] = true

		if err := validateFestivalConfig(&festival, i); err != nil {
			return err
		}
	}

	if err := validateMusicBrainzConfig(c.MusicBrainz); err != nil {
		return err
	}

	if c.Telemetry != nil {
		if err := c.Telemetry.Validate(); err != nil {
			return err
		}
	}

	return nil
}

// validateFestivalConfig validates a single festival configuration
func validateFestivalConfig(festival *FestivalConfig, index int) error {
	prefix := fmt.Sprintf("festival[%d] (%s)", index, festival.Name)

	if err := validateSyncPolicy(festival.SyncPolicy, prefix); err != nil {
		return err
	}

	if err := validateSourceTypeCount(festival, prefix); err != nil {
		return err
	}

	return validateSourceSpecificConfig(festival, prefix)
}

// validateSyncPolicy validates the sync policy configuration
func validateSyncPolicy(policy *SyncPolicyConfig, prefix string) error {
	if policy == nil || policy.Interval == "" {
		return fmt.Errorf("%s: syncPolicy.interval is required", prefix)
	}

	// Try to parse the interval to ensure it's valid
	if _, err := time.ParseDuration(policy.Interval); err != nil {
		return fmt.Errorf("%s: syncPolicy.interval must be a valid duration (e.g., '30m', '1h'): %w", prefix, err)
	}

	return nil
}

// validateSourceTypeCount ensures exactly one source type is configured
func validateSourceTypeCount(festival *FestivalConfig, prefix string) error {
	configCount := 0
	if festival.Page != nil {
		configCount++
	}
	if festival.File != nil {
		configCount++
	}

	if configCount == 0 {
		return fmt.Errorf("%s: one of page or file configuration must be specified", prefix)
	}
	if configCount > 1 {
		return fmt.Errorf("%s: only one of page or file configuration may be specified", prefix)
	}

	return nil
}

// validateSourceSpecificConfig validates the configuration for each source type
func validateSourceSpecificConfig(festival *FestivalConfig, prefix string) error {
	if festival.Page != nil {
		if festival.Page.URL == "" {
			return fmt.Errorf("%s: page.url is required", prefix)
		}
		parsed, err := url.Parse(festival.Page.URL)
		if err != nil || parsed.Scheme == "" || parsed.Host == "" {
			return fmt.Errorf("%s: page.url must be an absolute URL", prefix)
		}
		return nil
	}

	if festival.File != nil {
		if festival.File.Path == "" {
			return fmt.Errorf("%s: file.path is required", prefix)
		}
		return nil
	}

	return nil
}

// validateMusicBrainzConfig validates the classification service settings
func validateMusicBrainzConfig(mb *MusicBrainzConfig) error {
	if mb == nil {
		return nil
	}
	if mb.Endpoint != "" {
		parsed, err := url.Parse(mb.Endpoint)
		if err != nil || parsed.Scheme == "" || parsed.Host == "" {
			return fmt.Errorf("musicbrainz.endpoint must be an absolute URL")
		}
	}
	if mb.RequestInterval != "" {
		if _, err := time.ParseDuration(mb.RequestInterval); err != nil {
			return fmt.Errorf("musicbrainz.requestInterval must be a valid duration: %w", err)
		}
	}
	return nil
}

// GetType returns the inferred type of the festival config based on which field is present
func (f *FestivalConfig) GetType() string {
	if f.Page != nil {
		return SourceTypePage
	}
	if f.File != nil {
		return SourceTypeFile
	}
	return ""
}
