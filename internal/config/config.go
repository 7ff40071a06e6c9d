package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/Adda-Baaj/newsdesk/internal/logger"
)

const envPrefix = "NEWSDESK"

// Config is the full runtime configuration.
type Config struct {
	API        APIConfig        `mapstructure:"api"`
	Panel      PanelConfig      `mapstructure:"panel"`
	Log        LogConfig        `mapstructure:"log"`
	Journal    JournalConfig    `mapstructure:"journal"`
	Publishers PublishersConfig `mapstructure:"publishers"`
	Stub       StubConfig       `mapstructure:"stub"`
}

// APIConfig points the gateway at the remote news resource.
type APIConfig struct {
	BaseURL string            `mapstructure:"base_url"`
	Timeout time.Duration     `mapstructure:"timeout"`
	Headers map[string]string `mapstructure:"headers"`
}

// PanelConfig holds the admin panel behaviour knobs.
type PanelConfig struct {
	// ReverseDelay is how long after a successful create the stored list
	// order is reversed.
	ReverseDelay     time.Duration `mapstructure:"reverse_delay"`
	DefaultImage     string        `mapstructure:"default_image"`
	PlaceholderImage string        `mapstructure:"placeholder_image"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	File   string `mapstructure:"file"`
}

type JournalConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

type PublishersConfig struct {
	File string `mapstructure:"file"`
}

type StubConfig struct {
	Addr string `mapstructure:"addr"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api.base_url", "http://127.0.0.1:8000/News/")
	v.SetDefault("api.timeout", "15s")
	v.SetDefault("api.headers", map[string]string{})
	v.SetDefault("panel.reverse_delay", "2s")
	v.SetDefault("panel.default_image", "./rgukt_logo.png")
	v.SetDefault("panel.placeholder_image", "https://via.placeholder.com/150")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.file", "")
	v.SetDefault("journal.enabled", true)
	v.SetDefault("journal.path", "newsdesk.db")
	v.SetDefault("publishers.file", "")
	v.SetDefault("stub.addr", ":8000")
}

// Load reads configuration from defaults, an optional YAML file, a .env file
// in the working directory and NEWSDESK_* environment variables, in that
// order of increasing precedence. An empty path searches ./newsdesk.yaml and
// the user config dir; a missing file there is not an error.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	path = strings.TrimSpace(path)
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName("newsdesk")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, "newsdesk"))
		}
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	sanitize(&cfg)
	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func sanitize(cfg *Config) {
	cfg.API.BaseURL = strings.TrimSpace(cfg.API.BaseURL)
	cfg.Log.Level = strings.ToLower(strings.TrimSpace(cfg.Log.Level))
	cfg.Log.Format = strings.ToLower(strings.TrimSpace(cfg.Log.Format))
	cfg.Log.File = strings.TrimSpace(cfg.Log.File)
	cfg.Journal.Path = strings.TrimSpace(cfg.Journal.Path)
	cfg.Publishers.File = strings.TrimSpace(cfg.Publishers.File)
	cfg.Panel.DefaultImage = strings.TrimSpace(cfg.Panel.DefaultImage)
	cfg.Panel.PlaceholderImage = strings.TrimSpace(cfg.Panel.PlaceholderImage)
}

func validate(cfg *Config) error {
	if cfg.API.BaseURL == "" {
		return errors.New("api.base_url is required")
	}
	u, err := url.Parse(cfg.API.BaseURL)
	if err != nil {
		return fmt.Errorf("api.base_url: invalid url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("api.base_url: scheme must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("api.base_url: host is empty")
	}
	if cfg.API.Timeout <= 0 {
		return fmt.Errorf("api.timeout must be positive, got %s", cfg.API.Timeout)
	}
	if cfg.Panel.ReverseDelay < 0 {
		return fmt.Errorf("panel.reverse_delay must not be negative, got %s", cfg.Panel.ReverseDelay)
	}
	if _, err := logger.ParseLevel(cfg.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	if cfg.Log.Format != "console" && cfg.Log.Format != "json" {
		return fmt.Errorf("log.format: unknown format %q (valid: console, json)", cfg.Log.Format)
	}
	if cfg.Journal.Enabled && cfg.Journal.Path == "" {
		return errors.New("journal.path is required when the journal is enabled")
	}
	return nil
}

// LoggerOptions translates the log section for logger.New. When interactive
// is set and no file is configured, output is discarded so log lines do not
// land on top of the terminal UI.
func (c *Config) LoggerOptions(interactive bool) logger.Options {
	opts := logger.Options{Level: c.Log.Level, Format: c.Log.Format}
	switch {
	case c.Log.File != "":
		opts.OutputPaths = []string{c.Log.File}
	case interactive:
		opts.OutputPaths = []string{os.DevNull}
	}
	return opts
}
