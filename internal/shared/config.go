package shared

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

//go:embed config.example.toml
var exampleConf []byte

// Environment variables that override secrets from the TOML file.
const (
	EnvJWTSecret          = "RELOAD_JWT_SECRET"
	EnvGoogleClientID     = "RELOAD_GOOGLE_CLIENT_ID"
	EnvGoogleClientSecret = "RELOAD_GOOGLE_CLIENT_SECRET"
	EnvServerPort         = "RELOAD_PORT"
)

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Server      ServerConfig      `toml:"server"`
	Database    DatabaseConfig    `toml:"database"`
	Auth        AuthConfig        `toml:"auth"`
	Credentials CredentialsConfig `toml:"credentials"`
	Player      PlayerConfig      `toml:"player"`
	Ranking     RankingConfig     `toml:"ranking"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// Addr returns the host:port pair the web server listens on.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// AuthConfig contains session token and sign-in throttling settings.
type AuthConfig struct {
	JWTSecret     string  `toml:"jwt_secret"`
	TokenTTLHours int     `toml:"token_ttl_hours"`
	CookieName    string  `toml:"cookie_name"`
	LoginRate     float64 `toml:"login_rate"`  // sign-in attempts per second, per client
	LoginBurst    int     `toml:"login_burst"` // attempts allowed in a burst
}

// TokenTTL returns the lifetime of an issued session token.
func (a AuthConfig) TokenTTL() time.Duration {
	if a.TokenTTLHours <= 0 {
		return 24 * time.Hour
	}
	return time.Duration(a.TokenTTLHours) * time.Hour
}

// CredentialsConfig contains federated identity provider credentials.
type CredentialsConfig struct {
	Google GoogleConfig `toml:"google"`
}

// GoogleConfig contains OAuth2 client credentials for federated sign-in.
type GoogleConfig struct {
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
	RedirectURI  string `toml:"redirect_uri"`
}

// Configured reports whether real client credentials are present.
func (g GoogleConfig) Configured() bool {
	return g.ClientID != "" && g.ClientSecret != "" && g.ClientID != "your_google_client_id"
}

// PlayerConfig contains playback defaults.
type PlayerConfig struct {
	DefaultVolume      float64 `toml:"default_volume"`
	MuteFallback       float64 `toml:"mute_fallback"`        // volume restored by unmute when no earlier level is known
	IdleTimeoutMinutes int     `toml:"idle_timeout_minutes"` // a listener's station closes after this long without requests
	MaxListeners       int     `toml:"max_listeners"`        // stations kept at once; 0 means unbounded
}

// IdleTimeout returns how long an unused listener station is kept.
func (p PlayerConfig) IdleTimeout() time.Duration {
	if p.IdleTimeoutMinutes <= 0 {
		return 30 * time.Minute
	}
	return time.Duration(p.IdleTimeoutMinutes) * time.Minute
}

// RankingConfig contains leaderboard settings.
type RankingConfig struct {
	BoostWeight int `toml:"boost_weight"` // score points per boost level
	PerPage     int `toml:"per_page"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Keys missing from the file keep the values of [DefaultConfig].
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read config file: %w", ErrMissingConfig, err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("%w: failed to parse config: %w", ErrInvalidConfig, err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
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

// Validate checks value ranges that the rest of the application relies on.
func (c *Config) Validate() error {
	if c.Player.DefaultVolume < 0 || c.Player.DefaultVolume > 1 {
		return fmt.Errorf("%w: player.default_volume must be within [0,1], got %v", ErrInvalidConfig, c.Player.DefaultVolume)
	}
	if c.Player.MuteFallback <= 0 || c.Player.MuteFallback > 1 {
		return fmt.Errorf("%w: player.mute_fallback must be within (0,1], got %v", ErrInvalidConfig, c.Player.MuteFallback)
	}
	if c.Player.MaxListeners < 0 {
		return fmt.Errorf("%w: player.max_listeners must not be negative", ErrInvalidConfig)
	}
	if c.Ranking.BoostWeight < 0 {
		return fmt.Errorf("%w: ranking.boost_weight must not be negative", ErrInvalidConfig)
	}
	if c.Ranking.PerPage <= 0 {
		return fmt.Errorf("%w: ranking.per_page must be positive", ErrInvalidConfig)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("%w: server.port out of range: %d", ErrInvalidConfig, c.Server.Port)
	}
	return nil
}

// ApplyEnv loads the dotenv file at path (when it exists) into the process environment
// and overrides secrets from the environment.
func (c *Config) ApplyEnv(path string) error {
	if path != "" {
		if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load %s: %w", path, err)
		}
	}

	if v := os.Getenv(EnvJWTSecret); v != "" {
		c.Auth.JWTSecret = v
	}
	if v := os.Getenv(EnvGoogleClientID); v != "" {
		c.Credentials.Google.ClientID = v
	}
	if v := os.Getenv(EnvGoogleClientSecret); v != "" {
		c.Credentials.Google.ClientSecret = v
	}
	if v := os.Getenv(EnvServerPort); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: %s=%q", ErrInvalidConfig, EnvServerPort, v)
		}
		c.Server.Port = port
	}

	return nil
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
