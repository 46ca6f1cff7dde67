package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"valcal/internal/imageuri"
	"valcal/internal/model"
)

// BasicAuthConfig holds HTTP Basic Auth credentials for the authoring API.
type BasicAuthConfig struct {
	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password" json:"password"`
}

// Config is the top-level application configuration.
type Config struct {
	// Listen is the HTTP listen address for `valcal serve`.
	Listen string `yaml:"listen" json:"listen"`

	// BaseURL is the origin shareable links are built on,
	// e.g. "https://valentines.example".
	BaseURL string `yaml:"base_url" json:"base_url"`

	// DefaultLanguage is the language of new calendars and of error
	// messages when a request names none. "es" or "en".
	DefaultLanguage model.Language `yaml:"default_language" json:"default_language"`

	// ViewerTimezone is the IANA zone used for calendars that carry no
	// timezone of their own. Empty means the host's local zone.
	ViewerTimezone string `yaml:"viewer_timezone" json:"viewer_timezone"`

	// MaxImageBytes caps uploaded images before they are embedded.
	MaxImageBytes int64 `yaml:"max_image_bytes" json:"max_image_bytes"`

	// WatchCron is the schedule `valcal watch` checks unlocks on. It is
	// evaluated in the calendar's timezone.
	WatchCron string `yaml:"watch_cron" json:"watch_cron"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level" json:"log_level"`

	// BasicAuth, if non-nil, protects the /api/calendar endpoints.
	BasicAuth *BasicAuthConfig `yaml:"basic_auth,omitempty" json:"basic_auth,omitempty"`
}

const (
	defaultListen    = "127.0.0.1:8080"
	defaultBaseURL   = "http://127.0.0.1:8080"
	defaultWatchCron = "0 0 * * *"
	defaultLogLevel  = "info"
)

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		Listen:          defaultListen,
		BaseURL:         defaultBaseURL,
		DefaultLanguage: model.DefaultLanguage,
		ViewerTimezone:  "",
		MaxImageBytes:   imageuri.DefaultMaxBytes,
		WatchCron:       defaultWatchCron,
		LogLevel:        defaultLogLevel,
		BasicAuth:       nil,
	}
}

// Normalize fills in missing or invalid values with defaults so partially
// filled files still behave.
func (c *Config) Normalize() {
	if c.Listen == "" {
		c.Listen = defaultListen
	}
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")
	if c.BaseURL == "" {
		c.BaseURL = defaultBaseURL
	}
	if !c.DefaultLanguage.Valid() {
		c.DefaultLanguage = model.DefaultLanguage
	}
	if c.MaxImageBytes <= 0 {
		c.MaxImageBytes = imageuri.DefaultMaxBytes
	}
	if c.WatchCron == "" {
		c.WatchCron = defaultWatchCron
	}
	if c.LogLevel == "" {
		c.LogLevel = defaultLogLevel
	}
}

// ApplyEnv overrides fields from VALCAL_* environment variables.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("VALCAL_LISTEN"); v != "" {
		c.Listen = v
	}
	if v := os.Getenv("VALCAL_BASE_URL"); v != "" {
		c.BaseURL = strings.TrimRight(v, "/")
	}
	if v := os.Getenv("VALCAL_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
}

// Load loads configuration from the given YAML path.
//
// Behavior:
//   - If the file does not exist:
//   - create parent directory if needed
//   - write a default config with 0600 perms
//   - return the default config
//   - If the file exists:
//   - read YAML and unmarshal into Config
//   - normalize defaults
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				// Even if save fails, return cfg with error so caller can decide.
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.Normalize()

	return &cfg, nil
}

// Save writes cfg to path atomically (temp file + rename) with 0600
// permissions, creating the parent directory with 0700 if needed.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".valcal-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	// Ensure we clean up temp file on error.
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}

func (c *Config) Save(path string) error {
	return Save(path, c)
}
