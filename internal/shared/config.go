package shared

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

//go:embed config.example.toml
var exampleConf []byte

// Environment variables that override file configuration.
const (
	EnvToken        = "API_KEY"
	EnvPlaylistURL  = "PLAYLIST_URL"
	EnvTargetDir    = "TARGET_DIR"
	EnvMaxDownloads = "MAX_DOWNLOADS"
	EnvLogLevel     = "YMSYNC_LOG_LEVEL"
)

// CodecMP3 is the only download codec; tags are written as ID3v2.
const CodecMP3 = "mp3"

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Yandex YandexConfig `toml:"yandex"`
	Sync   SyncConfig   `toml:"sync"`
	Log    LogConfig    `toml:"log"`
}

// YandexConfig contains Yandex Music API credentials and client settings.
type YandexConfig struct {
	Token          string `toml:"token"`
	PlaylistURL    string `toml:"playlist_url"`
	BaseURL        string `toml:"base_url"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
	Codec          string `toml:"codec"`
}

// SyncConfig contains settings for the delta-sync engine.
type SyncConfig struct {
	TargetDir       string  `toml:"target_dir"`
	MaxDownloads    int     `toml:"max_downloads"`
	RateLimit       float64 `toml:"rate_limit"`
	CreateTargetDir bool    `toml:"create_target_dir"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

// Timeout returns the HTTP client timeout for Yandex requests.
func (c YandexConfig) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Keys missing from the file keep the values of [DefaultConfig].
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
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

	if err := os.WriteFile(path, exampleConf, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// LoadDotEnv loads variables from the given .env files into the process environment.
//
// Missing files are ignored; variables already set in the environment win.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("failed to load %s: %w", p, err)
		}
	}
	return nil
}

// ApplyEnv overrides configuration values with those found through lookup (usually [os.LookupEnv]).
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvToken); ok && v != "" {
		c.Yandex.Token = v
	}
	if v, ok := lookup(EnvPlaylistURL); ok && v != "" {
		c.Yandex.PlaylistURL = v
	}
	if v, ok := lookup(EnvTargetDir); ok && v != "" {
		c.Sync.TargetDir = v
	}
	if v, ok := lookup(EnvMaxDownloads); ok && v != "" {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%w: %s must be an integer, got %q", ErrInvalidConfig, EnvMaxDownloads, v)
		}
		c.Sync.MaxDownloads = n
	}
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		c.Log.Level = v
	}
	return nil
}

// Validate checks that everything a sync run needs is present.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Yandex.Token) == "" {
		return fmt.Errorf("%w: yandex token (%s) is empty", ErrMissingCredentials, EnvToken)
	}
	if strings.TrimSpace(c.Yandex.PlaylistURL) == "" {
		return fmt.Errorf("%w: playlist_url (%s) is empty", ErrInvalidConfig, EnvPlaylistURL)
	}
	if strings.TrimSpace(c.Sync.TargetDir) == "" {
		return fmt.Errorf("%w: target_dir (%s) is empty", ErrInvalidConfig, EnvTargetDir)
	}
	if c.Sync.RateLimit < 0 {
		return fmt.Errorf("%w: rate_limit must not be negative", ErrInvalidConfig)
	}
	if codec := strings.ToLower(strings.TrimSpace(c.Yandex.Codec)); codec != "" && codec != CodecMP3 {
		return fmt.Errorf("%w: codec %q is not supported, only mp3 files can be tagged", ErrInvalidConfig, c.Yandex.Codec)
	}
	if _, err := ParseLevel(c.Log.Level); err != nil {
		return err
	}
	return nil
}
