package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/vburojevic/trk/internal/codec"
)

// Config holds application configuration
type Config struct {
	// Global settings
	Format  string `mapstructure:"format" yaml:"format"`
	Quiet   bool   `mapstructure:"quiet" yaml:"quiet"`
	Verbose bool   `mapstructure:"verbose" yaml:"verbose"`

	Store  StoreConfig  `mapstructure:"store" yaml:"store"`
	Events EventsConfig `mapstructure:"events" yaml:"events"`
}

// StoreConfig selects where session state is persisted
type StoreConfig struct {
	Backend string `mapstructure:"backend" yaml:"backend"` // memory, file, sqlite
	Path    string `mapstructure:"path" yaml:"path"`       // empty means ~/.trk/prefs.<ext>
	Format  string `mapstructure:"format" yaml:"format"`   // file backend: json or plist
}

// EventsConfig holds event stamping settings
type EventsConfig struct {
	// TimeLayout is the Go layout used for the eventTime property. Its output
	// must not contain a blob separator.
	TimeLayout string `mapstructure:"time_layout" yaml:"time_layout"`
}

// DefaultTimeLayout renders a readable timestamp without blob separators
const DefaultTimeLayout = "2006-01-02 15.04.05"

// Default returns a Config with default values
func Default() *Config {
	return &Config{
		Format:  "text",
		Quiet:   false,
		Verbose: false,
		Store: StoreConfig{
			Backend: "file",
			Format:  "json",
		},
		Events: EventsConfig{
			TimeLayout: DefaultTimeLayout,
		},
	}
}

// Validate checks enum values and the event time layout
func (c *Config) Validate() error {
	switch c.Format {
	case "text", "ndjson":
	default:
		return fmt.Errorf("invalid format %q (use text or ndjson)", c.Format)
	}
	switch c.Store.Backend {
	case "memory", "file", "sqlite":
	default:
		return fmt.Errorf("invalid store backend %q (use memory, file or sqlite)", c.Store.Backend)
	}
	switch c.Store.Format {
	case "", "json", "plist":
	default:
		return fmt.Errorf("invalid store format %q (use json or plist)", c.Store.Format)
	}
	if c.Events.TimeLayout == "" {
		return fmt.Errorf("events.time_layout must not be empty")
	}
	// Render a two-digit-everything sample so every layout element shows up.
	sample := time.Date(2025, 12, 14, 22, 10, 10, 0, time.UTC).Format(c.Events.TimeLayout)
	if codec.ContainsSeparator(sample) {
		return fmt.Errorf("events.time_layout %q renders %q, which contains a blob separator", c.Events.TimeLayout, sample)
	}
	return nil
}

// Load loads configuration from files and environment
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigType("yaml")

	// Add config paths (in order of precedence, lowest first)
	// 1. System-wide config
	v.AddConfigPath("/etc/trk/")
	// 2. User config directory
	if configDir, err := os.UserConfigDir(); err == nil {
		v.AddConfigPath(filepath.Join(configDir, "trk"))
	}
	// 3. Home directory
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(home)
	}
	// 4. Current directory
	v.AddConfigPath(".")
	v.SetConfigName("trk")

	// Environment variables
	v.SetEnvPrefix("TRK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	v.BindEnv("format", "TRK_FORMAT")
	v.BindEnv("quiet", "TRK_QUIET")
	v.BindEnv("verbose", "TRK_VERBOSE")
	v.BindEnv("store.backend", "TRK_STORE_BACKEND")
	v.BindEnv("store.path", "TRK_STORE_PATH")
	v.BindEnv("store.format", "TRK_STORE_FORMAT")
	v.BindEnv("events.time_layout", "TRK_TIME_LAYOUT")

	cfg := Default()
	setDefaults(v, cfg)

	// Try to read config file (ignore if not found)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		// Fall back to .trkrc in the current directory or home
		v.SetConfigName(".trkrc")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, err
			}
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadFromFile loads configuration from a specific file
func LoadFromFile(path string) (*Config, error) {
	v := viper.New()

	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	cfg := Default()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// ConfigFile returns the path to the config file that would be loaded
func ConfigFile() string {
	v := viper.New()

	v.SetConfigType("yaml")
	if configDir, err := os.UserConfigDir(); err == nil {
		v.AddConfigPath(filepath.Join(configDir, "trk"))
	}
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(home)
	}
	v.AddConfigPath(".")

	v.SetConfigName("trk")
	if err := v.ReadInConfig(); err == nil {
		return v.ConfigFileUsed()
	}

	v.SetConfigName(".trkrc")
	if err := v.ReadInConfig(); err == nil {
		return v.ConfigFileUsed()
	}

	return ""
}

func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("format", cfg.Format)
	v.SetDefault("quiet", cfg.Quiet)
	v.SetDefault("verbose", cfg.Verbose)
	v.SetDefault("store.backend", cfg.Store.Backend)
	v.SetDefault("store.path", cfg.Store.Path)
	v.SetDefault("store.format", cfg.Store.Format)
	v.SetDefault("events.time_layout", cfg.Events.TimeLayout)
}
