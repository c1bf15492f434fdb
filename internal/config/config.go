package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

// AuthMethod represents different authentication methods catalog sources can use
type AuthMethod string

const (
	AuthMethodNone   AuthMethod = "none"
	AuthMethodOAuth2 AuthMethod = "oauth2"
	AuthMethodJWT    AuthMethod = "jwt"
)

// SourceConfig represents configuration for a single catalog source
type SourceConfig struct {
	Name       string     `json:"name"`
	Enabled    bool       `json:"enabled"`
	AuthMethod AuthMethod `json:"auth_method"`

	// OAuth2 credentials (Spotify-style)
	ClientID     string `json:"client_id,omitempty"`
	ClientSecret string `json:"client_secret,omitempty"`
	TokenURL     string `json:"token_url,omitempty"`

	// JWT credentials (Apple Music-style)
	KeyID   string `json:"key_id,omitempty"`
	TeamID  string `json:"team_id,omitempty"`
	KeyFile string `json:"key_file,omitempty"`

	// Additional configuration
	BaseURL   string `json:"base_url,omitempty"`
	RateLimit int    `json:"rate_limit,omitempty"` // requests per minute
	Timeout   int    `json:"timeout,omitempty"`    // seconds
}

// Config holds all configuration for the application
type Config struct {
	// Application settings
	Port           string `envconfig:"PORT" default:"8080"`
	GinMode        string `envconfig:"GIN_MODE" default:"debug"`
	BaseURL        string `envconfig:"BASE_URL" default:"http://localhost:8080"`
	MongodbURL     string `envconfig:"MONGODB_URL" required:"true"`
	ValkeyURL      string `envconfig:"VALKEY_URL" required:"true"`
	AllowedOrigins string `envconfig:"ALLOWED_ORIGINS" default:"*"`

	// Discovery feeds are built from a single primary catalog source;
	// search fans out across every enabled one.
	PrimarySource string `envconfig:"PRIMARY_SOURCE" default:"itunes"`

	// iTunes Search API needs no credentials
	ITunesBaseURL string `envconfig:"ITUNES_BASE_URL" default:"https://itunes.apple.com"`

	// Optional source credentials
	SpotifyClientID     string `envconfig:"SPOTIFY_CLIENT_ID"`
	SpotifyClientSecret string `envconfig:"SPOTIFY_CLIENT_SECRET"`
	AppleMusicKeyID     string `envconfig:"APPLE_MUSIC_KEY_ID"`
	AppleMusicTeamID    string `envconfig:"APPLE_MUSIC_TEAM_ID"`
	AppleMusicKeyFile   string `envconfig:"APPLE_MUSIC_KEY_FILE"`

	// Source configurations (built from the fields above)
	Sources map[string]*SourceConfig `json:"-"`
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	if err != nil {
		return nil, err
	}

	cfg.Sources = make(map[string]*SourceConfig)

	if err := cfg.loadBuiltinSources(); err != nil {
		return nil, fmt.Errorf("failed to load builtin sources: %w", err)
	}

	if _, ok := cfg.Sources[cfg.PrimarySource]; !ok {
		return nil, fmt.Errorf("primary source %q is not configured", cfg.PrimarySource)
	}

	return &cfg, nil
}

// loadBuiltinSources loads configuration for known catalog sources
func (c *Config) loadBuiltinSources() error {
	// iTunes is always available since it requires no auth
	c.Sources["itunes"] = &SourceConfig{
		Name:       "itunes",
		Enabled:    true,
		AuthMethod: AuthMethodNone,
		BaseURL:    c.ITunesBaseURL,
		RateLimit:  20, // requests per minute, per Apple's documented limit
		Timeout:    10, // seconds
	}

	// Spotify configuration
	if c.SpotifyClientID != "" && c.SpotifyClientSecret != "" {
		c.Sources["spotify"] = &SourceConfig{
			Name:         "spotify",
			Enabled:      true,
			AuthMethod:   AuthMethodOAuth2,
			ClientID:     c.SpotifyClientID,
			ClientSecret: c.SpotifyClientSecret,
			TokenURL:     "https://accounts.spotify.com/api/token",
			BaseURL:      "https://api.spotify.com/v1",
			RateLimit:    100,
			Timeout:      10,
		}
	}

	// Apple Music configuration
	if c.AppleMusicKeyID != "" && c.AppleMusicTeamID != "" && c.AppleMusicKeyFile != "" {
		c.Sources["apple_music"] = &SourceConfig{
			Name:       "apple_music",
			Enabled:    true,
			AuthMethod: AuthMethodJWT,
			KeyID:      c.AppleMusicKeyID,
			TeamID:     c.AppleMusicTeamID,
			KeyFile:    c.AppleMusicKeyFile,
			BaseURL:    "https://api.music.apple.com/v1",
			RateLimit:  120,
			Timeout:    10,
		}
	}

	return nil
}

// GetSourceConfig returns configuration for a specific catalog source
func (c *Config) GetSourceConfig(source string) (*SourceConfig, bool) {
	config, exists := c.Sources[source]
	return config, exists
}

// GetEnabledSources returns a list of enabled source names
func (c *Config) GetEnabledSources() []string {
	var sources []string
	for name, config := range c.Sources {
		if config.Enabled {
			sources = append(sources, name)
		}
	}
	return sources
}

// IsEnabled checks if a catalog source is enabled
func (c *Config) IsEnabled(source string) bool {
	config, exists := c.GetSourceConfig(source)
	return exists && config.Enabled
}

// ValidateSourceConfig validates a source configuration
func ValidateSourceConfig(config *SourceConfig) error {
	if config.Name == "" {
		return fmt.Errorf("source name cannot be empty")
	}

	switch config.AuthMethod {
	case AuthMethodNone:
		// Nothing to check
	case AuthMethodOAuth2:
		if config.ClientID == "" || config.ClientSecret == "" {
			return fmt.Errorf("OAuth2 requires client_id and client_secret")
		}
	case AuthMethodJWT:
		if config.KeyID == "" || config.TeamID == "" {
			return fmt.Errorf("JWT requires key_id and team_id")
		}
	default:
		return fmt.Errorf("unsupported auth method: %s", config.AuthMethod)
	}

	if config.BaseURL == "" {
		return fmt.Errorf("base_url is required")
	}

	return nil
}
