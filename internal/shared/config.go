package shared

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Site        SiteConfig        `toml:"site"`
	Credentials CredentialsConfig `toml:"credentials"`
	Lookup      LookupConfig      `toml:"lookup"`
	Database    DatabaseConfig    `toml:"database"`
	Audio       AudioConfig       `toml:"audio"`
}

// SiteConfig points the client at the song-post site.
type SiteConfig struct {
	BaseURL        string `toml:"base_url"`
	SessionCookie  string `toml:"session_cookie"`
	HeadersPath    string `toml:"headers_path"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
	PageSize       int    `toml:"page_size"`
}

// CredentialsConfig contains service-specific credentials.
type CredentialsConfig struct {
	Spotify SpotifyConfig `toml:"spotify"`
}

// SpotifyConfig contains Spotify app credentials used for client-credentials search.
type SpotifyConfig struct {
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
	Market       string `toml:"market"`
}

// LookupConfig tunes the preview lookup command.
type LookupConfig struct {
	MaxResults int     `toml:"max_results"`
	Cache      bool    `toml:"cache"`
	RateLimit  float64 `toml:"rate_limit"`
	Workers    int     `toml:"workers"`
	// CacheTTLHours ages out cached results; zero keeps them forever.
	CacheTTLHours int `toml:"cache_ttl_hours"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// AudioConfig contains preview playback settings.
type AudioConfig struct {
	TickMillis   int `toml:"tick_millis"`
	BufferMillis int `toml:"buffer_millis"`
}

// Timeout returns the site request timeout, falling back to 15 seconds.
func (s SiteConfig) Timeout() time.Duration {
	if s.TimeoutSeconds <= 0 {
		return 15 * time.Second
	}
	return time.Duration(s.TimeoutSeconds) * time.Second
}

// CacheTTL returns how long a cached lookup stays fresh. Zero means no expiry.
func (l LookupConfig) CacheTTL() time.Duration {
	if l.CacheTTLHours <= 0 {
		return 0
	}
	return time.Duration(l.CacheTTLHours) * time.Hour
}

// HasCredentials reports whether both halves of the client-credentials pair are set
// and are not the placeholder values from the example config.
func (s SpotifyConfig) HasCredentials() bool {
	return !isPlaceholder(s.ClientID) && !isPlaceholder(s.ClientSecret)
}

func isPlaceholder(v string) bool {
	return v == "" || strings.HasPrefix(v, "your_")
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("%w: failed to parse config: %v", ErrInvalidConfig, err)
	}

	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ApplyEnv fills empty or placeholder fields from the environment.
//
// SONGVIEW_BASE_URL always wins since the file default is never empty.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if getenv == nil {
		getenv = os.Getenv
	}

	if v := getenv("SPOTIFY_CLIENT_ID"); v != "" && isPlaceholder(c.Credentials.Spotify.ClientID) {
		c.Credentials.Spotify.ClientID = v
	}
	if v := getenv("SPOTIFY_CLIENT_SECRET"); v != "" && isPlaceholder(c.Credentials.Spotify.ClientSecret) {
		c.Credentials.Spotify.ClientSecret = v
	}
	if v := getenv("SONGVIEW_SESSION"); v != "" && c.Site.SessionCookie == "" {
		c.Site.SessionCookie = v
	}
	if v := getenv("SONGVIEW_BASE_URL"); v != "" {
		c.Site.BaseURL = strings.TrimRight(v, "/")
	}
}
