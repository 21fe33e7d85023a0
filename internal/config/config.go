// Package config loads debtbook settings from defaults, an optional TOML
// file, an optional .env file and the environment, in that order of
// increasing precedence.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/mmynk/debtbook/internal/remotesync"
	"github.com/mmynk/debtbook/pkg/logging"
)

// FileEnv names the environment variable holding the TOML config path.
const FileEnv = "DEBTBOOK_CONFIG"

// Config holds every runtime setting.
type Config struct {
	Server   ServerConfig   `toml:"server"`
	Database DatabaseConfig `toml:"database"`
	Log      LogConfig      `toml:"log"`
	GitHub   GitHubConfig   `toml:"github"`
	AMQP     AMQPConfig     `toml:"amqp"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Port           int  `toml:"port"`
	MetricsEnabled bool `toml:"metrics_enabled"`
}

// DatabaseConfig locates the SQLite file.
type DatabaseConfig struct {
	Path string `toml:"path"`
}

// LogConfig sets the log level.
type LogConfig struct {
	Level string `toml:"level"`
}

// GitHubConfig identifies the snapshot target. Sync is disabled unless
// owner and repo are set.
type GitHubConfig struct {
	Owner  string `toml:"owner"`
	Repo   string `toml:"repo"`
	Path   string `toml:"path"`
	APIURL string `toml:"api_url"`
}

// AMQPConfig enables history fan-out when URL is set.
type AMQPConfig struct {
	URL      string `toml:"url"`
	Exchange string `toml:"exchange"`
	Queue    string `toml:"queue"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Server:   ServerConfig{Port: 8080, MetricsEnabled: true},
		Database: DatabaseConfig{Path: "./data/debtbook.db"},
		Log:      LogConfig{Level: "info"},
		GitHub:   GitHubConfig{Path: "database.db", APIURL: remotesync.DefaultAPIURL},
		AMQP:     AMQPConfig{Exchange: "debtbook", Queue: "debtbook.history"},
	}
}

// Load builds the configuration. A missing .env file is ignored; a
// missing file named by DEBTBOOK_CONFIG is an error.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	if path := os.Getenv(FileEnv); path != "" {
		if err := cfg.LoadFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile overlays the TOML file at path onto c.
func (c *Config) LoadFile(path string) error {
	md, err := toml.DecodeFile(path, c)
	if err != nil {
		return fmt.Errorf("read config file %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return fmt.Errorf("config file %s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	return nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid PORT %q: must be a number", v)
		}
		c.Server.Port = port
	}
	if v := os.Getenv("METRICS_ENABLED"); v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid METRICS_ENABLED %q: %w", v, err)
		}
		c.Server.MetricsEnabled = enabled
	}

	setString(&c.Database.Path, "DB_PATH")
	setString(&c.Log.Level, "LOG_LEVEL")
	setString(&c.GitHub.Owner, "GITHUB_OWNER")
	setString(&c.GitHub.Repo, "GITHUB_REPO")
	setString(&c.GitHub.Path, "GITHUB_PATH")
	setString(&c.GitHub.APIURL, "GITHUB_API_URL")
	setString(&c.AMQP.URL, "AMQP_URL")
	setString(&c.AMQP.Exchange, "AMQP_EXCHANGE")
	setString(&c.AMQP.Queue, "AMQP_QUEUE")
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("invalid port %d: must be between 1 and 65535", c.Server.Port))
	}

	if strings.TrimSpace(c.Database.Path) == "" {
		errs = append(errs, errors.New("database path cannot be empty"))
	}

	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}

	if (c.GitHub.Owner == "") != (c.GitHub.Repo == "") {
		errs = append(errs, errors.New("GITHUB_OWNER and GITHUB_REPO must be set together"))
	}
	if c.GitHub.Owner != "" && c.GitHub.Path == "" {
		errs = append(errs, errors.New("GITHUB_PATH cannot be empty when GitHub sync is configured"))
	}
	if u, err := url.Parse(c.GitHub.APIURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		errs = append(errs, fmt.Errorf("invalid GitHub API URL %q: must be http or https", c.GitHub.APIURL))
	}

	if c.AMQP.URL != "" {
		if u, err := url.Parse(c.AMQP.URL); err != nil {
			errs = append(errs, fmt.Errorf("invalid AMQP URL: %w", err))
		} else if u.Scheme != "amqp" && u.Scheme != "amqps" {
			errs = append(errs, fmt.Errorf("invalid AMQP URL scheme %q: must be 'amqp' or 'amqps'", u.Scheme))
		}
		if c.AMQP.Exchange == "" {
			errs = append(errs, errors.New("AMQP exchange name cannot be empty when AMQP URL is provided"))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %w", errors.Join(errs...))
	}
	return nil
}

// Addr returns the listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Server.Port)
}

// SyncEnabled reports whether GitHub snapshot upload is configured.
func (c *Config) SyncEnabled() bool {
	return c.RemoteSync().Configured()
}

// RemoteSync returns the uploader settings.
func (c *Config) RemoteSync() remotesync.Config {
	return remotesync.Config{
		Owner:  c.GitHub.Owner,
		Repo:   c.GitHub.Repo,
		Path:   c.GitHub.Path,
		APIURL: c.GitHub.APIURL,
	}
}
