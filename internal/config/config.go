// ABOUTME: Configuration loading for feedreader from JSON or YAML files
// ABOUTME: Resolves XDG paths, applies defaults, and validates the feed list and durations

package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/harper/feedreader/internal/models"
)

// Config stores feedreader configuration.
type Config struct {
	// Feeds is the inline registry. Ignored when OPML is set.
	Feeds []models.Feed `json:"feeds,omitempty" yaml:"feeds,omitempty"`

	// OPML points at a subscription list to use as the registry.
	// Supports ~ expansion for home directory.
	OPML string `json:"opml,omitempty" yaml:"opml,omitempty"`

	Log LogConfig `json:"log" yaml:"log"`

	// HTTPTimeout and CheckTimeout are Go duration strings ("30s").
	HTTPTimeout  string `json:"http_timeout,omitempty" yaml:"http_timeout,omitempty"`
	CheckTimeout string `json:"check_timeout,omitempty" yaml:"check_timeout,omitempty"`

	// TeaserLength caps teaser text in runes; 0 uses the default, negative disables the cap.
	TeaserLength int    `json:"teaser_length,omitempty" yaml:"teaser_length,omitempty"`
	UserAgent    string `json:"user_agent,omitempty" yaml:"user_agent,omitempty"`
}

// LogConfig selects the log level (debug, info, warn, error) and format (text, json).
type LogConfig struct {
	Level  string `json:"level,omitempty" yaml:"level,omitempty"`
	Format string `json:"format,omitempty" yaml:"format,omitempty"`
}

// New returns a Config with every default filled in.
func New() *Config {
	return &Config{
		Log: LogConfig{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
		HTTPTimeout:  DefaultHTTPTimeout.String(),
		CheckTimeout: DefaultCheckTimeout.String(),
		TeaserLength: DefaultTeaserLength,
		UserAgent:    DefaultUserAgent,
	}
}

// GetConfigPath returns the default config file path.
func GetConfigPath() string {
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, _ := os.UserHomeDir()
		configDir = filepath.Join(homeDir, ".config")
	}
	return filepath.Join(configDir, "feedreader", "config.json")
}

// Load reads the config at path, or the default path when path is empty.
// A missing file yields the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		path = GetConfigPath()
	}

	cfg := New()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	if isYAML(path) {
		err = yaml.Unmarshal(data, cfg)
	} else {
		err = json.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes the config to path, choosing the encoding from the extension.
func (c *Config) Save(path string) error {
	if path == "" {
		path = GetConfigPath()
	}

	var (
		data []byte
		err  error
	)
	if isYAML(path) {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return atomicWrite(path, data)
}

// Validate checks durations, the log settings and any inline feeds.
func (c *Config) Validate() error {
	if _, err := c.GetHTTPTimeout(); err != nil {
		return err
	}
	if _, err := c.GetCheckTimeout(); err != nil {
		return err
	}
	switch strings.ToLower(c.Log.Level) {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log.level %q", c.Log.Level)
	}
	switch strings.ToLower(c.Log.Format) {
	case "", "text", "json":
	default:
		return fmt.Errorf("invalid log.format %q", c.Log.Format)
	}
	for i, feed := range c.Feeds {
		if !feed.HasName() {
			return fmt.Errorf("feed name cannot be empty for feed %d (%s)", i, feed.URL)
		}
		if _, err := url.ParseRequestURI(strings.TrimSpace(feed.URL)); err != nil {
			return fmt.Errorf("invalid url in feeds[%d]: %q", i, feed.URL)
		}
	}
	return nil
}

// GetHTTPTimeout parses HTTPTimeout, defaulting when unset.
func (c *Config) GetHTTPTimeout() (time.Duration, error) {
	return parseDuration("http_timeout", c.HTTPTimeout, DefaultHTTPTimeout)
}

// GetCheckTimeout parses CheckTimeout, defaulting when unset. Zero disables the timeout.
func (c *Config) GetCheckTimeout() (time.Duration, error) {
	return parseDuration("check_timeout", c.CheckTimeout, DefaultCheckTimeout)
}

// GetTeaserLength returns the teaser cap in runes; a negative result means no cap.
func (c *Config) GetTeaserLength() int {
	if c.TeaserLength == 0 {
		return DefaultTeaserLength
	}
	return c.TeaserLength
}

// GetUserAgent returns the configured User-Agent or the default.
func (c *Config) GetUserAgent() string {
	if c.UserAgent == "" {
		return DefaultUserAgent
	}
	return c.UserAgent
}

// GetOPMLPath returns the OPML path with ~ expanded.
func (c *Config) GetOPMLPath() string {
	return ExpandPath(c.OPML)
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(path string) string {
	if path == "" {
		return ""
	}
	if path == "~" {
		home, _ := os.UserHomeDir()
		return home
	}
	if strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, path[2:])
	}
	return path
}

func parseDuration(field, value string, def time.Duration) (time.Duration, error) {
	if value == "" {
		return def, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", field, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("invalid %s: must not be negative", field)
	}
	return d, nil
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

// atomicWrite writes data to a temp file in the target directory and renames it into place.
func atomicWrite(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".config-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	return os.Rename(tmp.Name(), path)
}
