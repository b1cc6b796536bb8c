// Package config loads photoswipe settings from defaults, an optional YAML
// file (~/.config/photoswipe/config.yaml), PHOTOSWIPE_* environment variables
// and command-line flags, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/fpang/photoswipe/internal/swipe"
)

// EnvPrefix is the prefix of environment overrides, e.g. PHOTOSWIPE_DECK_PAGE_SIZE.
const EnvPrefix = "PHOTOSWIPE"

// Purge modes.
const (
	PurgeDelete = "delete"
	PurgeMove   = "move"
)

// Config holds all application configuration.
type Config struct {
	Deck       DeckConfig      `mapstructure:"deck"`
	Swipe      swipe.Config    `mapstructure:"swipe"`
	Local      LocalConfig     `mapstructure:"local"`
	S3         S3Config        `mapstructure:"s3"`
	Purge      PurgeConfig     `mapstructure:"purge"`
	Export     ExportConfig    `mapstructure:"export"`
	Thumbnails ThumbnailConfig `mapstructure:"thumbnails"`
	Server     ServerConfig    `mapstructure:"server"`
	TUI        TUIConfig       `mapstructure:"tui"`
	Metrics    MetricsConfig   `mapstructure:"metrics"`
	Logging    LoggingConfig   `mapstructure:"logging"`
}

// DeckConfig controls pagination.
type DeckConfig struct {
	PageSize          int `mapstructure:"page_size"`
	PrefetchThreshold int `mapstructure:"prefetch_threshold"`
	Preview           int `mapstructure:"preview"` // upcoming photos returned with every view
}

// LocalConfig configures the local file system source.
type LocalConfig struct {
	Recursive     bool   `mapstructure:"recursive"`
	IncludeHidden bool   `mapstructure:"include_hidden"`
	ReadEXIF      bool   `mapstructure:"read_exif"`
	TrashDir      string `mapstructure:"trash_dir"`
}

// S3Config configures the S3 source. It is only created when Enabled.
type S3Config struct {
	Enabled   bool   `mapstructure:"enabled"`
	Region    string `mapstructure:"region"`
	Recursive bool   `mapstructure:"recursive"`
}

// PurgeConfig selects what purging the trash does: "delete" removes photos,
// "move" moves them into the trash folder next to them.
type PurgeConfig struct {
	Mode string `mapstructure:"mode"`
}

// ExportConfig configures trash zip exports.
type ExportConfig struct {
	Compression string `mapstructure:"compression"`
	ZstdLevel   int    `mapstructure:"zstd_level"`
}

// ThumbnailConfig configures thumbnail generation and caching.
type ThumbnailConfig struct {
	MaxDimension int    `mapstructure:"max_dimension"`
	CacheDir     string `mapstructure:"cache_dir"` // empty = memory only
}

// ServerConfig configures photoswipe-web.
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// TUIConfig configures the terminal UI. A mouse drag of one terminal cell
// counts as CellWidth display units horizontally and CellHeight vertically.
type TUIConfig struct {
	CellWidth  float64 `mapstructure:"cell_width"`
	CellHeight float64 `mapstructure:"cell_height"`
}

// MetricsConfig configures the session summary documents.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	File    string `mapstructure:"file"` // empty = stdout
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"` // used by the terminal UI
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Deck: DeckConfig{
			PageSize:          20,
			PrefetchThreshold: 3,
			Preview:           3,
		},
		Swipe: swipe.DefaultConfig(),
		Local: LocalConfig{
			ReadEXIF: true,
			TrashDir: ".photoswipe-trash",
		},
		Purge:  PurgeConfig{Mode: PurgeDelete},
		Export: ExportConfig{Compression: "zstd", ZstdLevel: 3},
		Thumbnails: ThumbnailConfig{
			MaxDimension: 1024,
			CacheDir:     filepath.Join(dataDir(), "cache"),
		},
		Server: ServerConfig{Host: "localhost", Port: 8080},
		TUI:    TUIConfig{CellWidth: 10, CellHeight: 20},
		Logging: LoggingConfig{
			Level: "info",
			File:  filepath.Join(dataDir(), "photoswipe.log"),
		},
	}
}

// Validate rejects settings the rest of the program cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if c.Deck.PageSize <= 0 {
		errs = append(errs, fmt.Errorf("deck.page_size must be positive, got %d", c.Deck.PageSize))
	}
	if c.Deck.PrefetchThreshold < 0 {
		errs = append(errs, fmt.Errorf("deck.prefetch_threshold must not be negative, got %d", c.Deck.PrefetchThreshold))
	}
	if c.Purge.Mode != PurgeDelete && c.Purge.Mode != PurgeMove {
		errs = append(errs, fmt.Errorf("purge.mode must be %q or %q, got %q", PurgeDelete, PurgeMove, c.Purge.Mode))
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port out of range: %d", c.Server.Port))
	}
	return errors.Join(errs...)
}

// dataDir returns the per-user data directory for the current OS.
func dataDir() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("LOCALAPPDATA"), "photoswipe")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", "photoswipe")
	}
}

// configDir returns the default config directory for the current OS.
func configDir() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "photoswipe")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "photoswipe")
	}
}

// LoadDotEnv loads a .env file from the working directory if present.
func LoadDotEnv() {
	_ = godotenv.Load()
}

// New returns a viper instance with the defaults, search paths and
// environment binding configured.
func New() *viper.Viper {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configDir())
	v.AddConfigPath(".")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v, DefaultConfig())
	return v
}

// setDefaults registers every key so AutomaticEnv can override it.
func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("deck.page_size", d.Deck.PageSize)
	v.SetDefault("deck.prefetch_threshold", d.Deck.PrefetchThreshold)
	v.SetDefault("deck.preview", d.Deck.Preview)

	v.SetDefault("swipe.live_threshold", d.Swipe.LiveThreshold)
	v.SetDefault("swipe.commit_threshold", d.Swipe.CommitThreshold)
	v.SetDefault("swipe.velocity_threshold", d.Swipe.VelocityThreshold)

	v.SetDefault("local.recursive", d.Local.Recursive)
	v.SetDefault("local.include_hidden", d.Local.IncludeHidden)
	v.SetDefault("local.read_exif", d.Local.ReadEXIF)
	v.SetDefault("local.trash_dir", d.Local.TrashDir)

	v.SetDefault("s3.enabled", d.S3.Enabled)
	v.SetDefault("s3.region", d.S3.Region)
	v.SetDefault("s3.recursive", d.S3.Recursive)

	v.SetDefault("purge.mode", d.Purge.Mode)

	v.SetDefault("export.compression", d.Export.Compression)
	v.SetDefault("export.zstd_level", d.Export.ZstdLevel)

	v.SetDefault("thumbnails.max_dimension", d.Thumbnails.MaxDimension)
	v.SetDefault("thumbnails.cache_dir", d.Thumbnails.CacheDir)

	v.SetDefault("server.host", d.Server.Host)
	v.SetDefault("server.port", d.Server.Port)

	v.SetDefault("tui.cell_width", d.TUI.CellWidth)
	v.SetDefault("tui.cell_height", d.TUI.CellHeight)

	v.SetDefault("metrics.enabled", d.Metrics.Enabled)
	v.SetDefault("metrics.file", d.Metrics.File)

	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.file", d.Logging.File)
}

// BindFlags binds command-line flags to config keys. keys maps a config key
// (e.g. "server.port") to a flag name (e.g. "port"); flags missing from the
// set are ignored.
func BindFlags(v *viper.Viper, flags *pflag.FlagSet, keys map[string]string) error {
	for key, name := range keys {
		f := flags.Lookup(name)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("bind flag %s: %w", name, err)
		}
	}
	return nil
}

// Load reads the config file (configFile, or the default search path when
// empty) and returns the merged, validated configuration. A missing default
// config file is not an error.
func Load(v *viper.Viper, configFile string) (*Config, error) {
	if configFile != "" {
		v.SetConfigFile(configFile)
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg := DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
