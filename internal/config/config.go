package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

type Config struct {
	StoreDir      string        `yaml:"store_dir" mapstructure:"store_dir"`
	FlushInterval time.Duration `yaml:"flush_interval" mapstructure:"flush_interval"`
	LogLevel      string        `yaml:"log_level" mapstructure:"log_level"`

	Clipboard      StoreConfig      `yaml:"clipboard" mapstructure:"clipboard"`
	Files          FilesStoreConfig `yaml:"files" mapstructure:"files"`
	Bookmarks      StoreConfig      `yaml:"bookmarks" mapstructure:"bookmarks"`
	QuickBookmarks QuickStoreConfig `yaml:"quick_bookmarks" mapstructure:"quick_bookmarks"`

	Capture CaptureConfig `yaml:"capture" mapstructure:"capture"`
}

type StoreConfig struct {
	AvoidDuplicates bool `yaml:"avoid_duplicates" mapstructure:"avoid_duplicates"`
	MaxItems        int  `yaml:"max_items" mapstructure:"max_items"`
	MoveToTop       bool `yaml:"move_to_top" mapstructure:"move_to_top"`
	// SaveTo is the store file. Empty means the default file in store_dir;
	// "off" keeps the store in memory only.
	SaveTo string `yaml:"save_to" mapstructure:"save_to"`
}

type FilesStoreConfig struct {
	StoreConfig `yaml:",inline" mapstructure:",squash"`
	// Exclude lists doublestar globs of paths never recorded.
	Exclude []string `yaml:"exclude" mapstructure:"exclude"`
}

type QuickStoreConfig struct {
	StoreConfig `yaml:",inline" mapstructure:",squash"`
	ScratchKey  string `yaml:"scratch_key" mapstructure:"scratch_key"`
}

type CaptureConfig struct {
	MaxClipboardSize int           `yaml:"max_clipboard_size" mapstructure:"max_clipboard_size"`
	PollInterval     time.Duration `yaml:"poll_interval" mapstructure:"poll_interval"`
	Ignore           []string      `yaml:"ignore" mapstructure:"ignore"`
	IgnoreRegex      bool          `yaml:"ignore_regex" mapstructure:"ignore_regex"`
}

// Persisted reports whether the store is written to disk, and where. An
// empty path means the default location.
func (s StoreConfig) Persisted() (path string, ok bool) {
	switch strings.ToLower(strings.TrimSpace(s.SaveTo)) {
	// "0" is what an unquoted YAML false decodes to
	case "off", "false", "0", "disabled", "none":
		return "", false
	}
	return expandHome(strings.TrimSpace(s.SaveTo)), true
}

func DefaultConfig() *Config {
	return &Config{
		StoreDir:      DefaultStoreDir(),
		FlushInterval: 10 * time.Second,
		LogLevel:      "info",
		Clipboard:     StoreConfig{AvoidDuplicates: true, MaxItems: 1000, MoveToTop: true},
		Files: FilesStoreConfig{
			StoreConfig: StoreConfig{AvoidDuplicates: true, MaxItems: 10000, MoveToTop: true},
			Exclude:     []string{"**/.git/**", "**/*.git"},
		},
		Bookmarks:     StoreConfig{AvoidDuplicates: true, MaxItems: 10000},
		QuickBookmarks: QuickStoreConfig{
			StoreConfig: StoreConfig{AvoidDuplicates: true, MaxItems: 10000},
			ScratchKey:  "*",
		},
		Capture: CaptureConfig{
			MaxClipboardSize: 1_000_000,
			PollInterval:     500 * time.Millisecond,
			Ignore:           []string{"password=", "token=", "apikey=", "secret=", "authorization: bearer"},
		},
	}
}

// DefaultStoreDir is where store files live unless configured otherwise.
func DefaultStoreDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "otterkeep")
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".local", "share", "otterkeep")
	}
	return filepath.Join(os.TempDir(), "otterkeep")
}

// Path is the default config file location.
func Path() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "otterkeep", "config.yaml")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "otterkeep", "config.yaml")
}

// Load reads the configuration from path, or from the first config.yaml
// found in the usual places when path is empty. OTTERKEEP_* environment
// variables override file values, e.g. OTTERKEEP_CLIPBOARD_MAX_ITEMS.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	// seed every key so env overrides apply to keys absent from the file
	defaults, err := yaml.Marshal(DefaultConfig())
	if err != nil {
		return nil, err
	}
	if err := v.ReadConfig(bytes.NewReader(defaults)); err != nil {
		return nil, err
	}

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			v.AddConfigPath(filepath.Join(xdg, "otterkeep"))
		}
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "otterkeep"))
		}
	}

	v.SetEnvPrefix("OTTERKEEP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.MergeInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config: %w", err)
		}
		// no config file; defaults and env only
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	cfg.StoreDir = expandHome(cfg.StoreDir)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.StoreDir == "" {
		return fmt.Errorf("config: store_dir is required")
	}
	for name, s := range map[string]StoreConfig{
		"clipboard":       c.Clipboard,
		"files":           c.Files.StoreConfig,
		"bookmarks":       c.Bookmarks,
		"quick_bookmarks": c.QuickBookmarks.StoreConfig,
	} {
		if s.MaxItems < 1 {
			return fmt.Errorf("config: %s.max_items must be at least 1, got %d", name, s.MaxItems)
		}
	}
	for _, p := range c.Files.Exclude {
		if !doublestar.ValidatePattern(p) {
			return fmt.Errorf("config: files.exclude: bad pattern %q", p)
		}
	}
	if c.QuickBookmarks.ScratchKey == "" {
		c.QuickBookmarks.ScratchKey = "*"
	}
	if c.FlushInterval <= 0 {
		c.FlushInterval = 10 * time.Second
	}
	if c.Capture.MaxClipboardSize < 1 {
		c.Capture.MaxClipboardSize = 1_000_000
	}
	switch strings.ToLower(c.LogLevel) {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: log_level %q must be debug, info, warn or error", c.LogLevel)
	}
	return nil
}

// WriteDefault writes the default configuration to path. An existing file
// is left alone.
func WriteDefault(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config: %s already exists", path)
	}
	data, err := yaml.Marshal(DefaultConfig())
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func expandHome(p string) string {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~"))
}
