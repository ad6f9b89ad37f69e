package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"logtidy/internal/logtidy"
)

// Default values applied before a config file is decoded.
const (
	DefaultArchiveAgeDays = 30
	DefaultLogLevel       = "INFO"
)

// Config represents the main configuration for logtidy.
type Config struct {
	BaseDir   string          `toml:"base_dir"`
	LogDir    string          `toml:"log_dir"`
	LogLevel  string          `toml:"log_level"`
	Retention RetentionConfig `toml:"retention"`
	Archive   ArchiveConfig   `toml:"archive"`
	Journal   JournalConfig   `toml:"journal"`
	Metrics   MetricsConfig   `toml:"metrics"`
}

// RetentionConfig holds the per-run retention settings. Command line flags
// override these values.
type RetentionConfig struct {
	Location        string   `toml:"location"`
	LowDiskMB       int64    `toml:"low_disk_mb"`       // 0 disables the space reclaimer
	ArchiveAgeDays  int      `toml:"archive_age_days"`  // 0 archives regardless of age
	ExpireAfterDays int      `toml:"expire_after_days"` // 0 disables expiry
	Ignore          []string `toml:"ignore"`
}

// ArchiveConfig represents configuration for the archive store.
// This uses a tagged union pattern - the Type field determines which other fields are relevant.
type ArchiveConfig struct {
	Type        string `toml:"type"`        // "zip"
	Compression string `toml:"compression"` // "best", "default" or "store"
}

// JournalConfig represents configuration for the run journal.
// This uses a tagged union pattern - the Type field determines which other fields are relevant.
type JournalConfig struct {
	Type    string `toml:"type"`               // "sqlite", "memory" or "none"
	DataDir string `toml:"data_dir,omitempty"` // only used for type=sqlite
}

// MetricsConfig controls the Prometheus textfile written after each run.
type MetricsConfig struct {
	Textfile string `toml:"textfile"` // empty disables metrics output
}

// NewConfig creates a new Config with default values rooted at baseDir.
func NewConfig(baseDir string) *Config {
	return &Config{
		BaseDir:  baseDir,
		LogDir:   filepath.Join(baseDir, "log"),
		LogLevel: DefaultLogLevel,
		Retention: RetentionConfig{
			ArchiveAgeDays: DefaultArchiveAgeDays,
		},
		Archive: ArchiveConfig{
			Type:        "zip",
			Compression: "best",
		},
		Journal: JournalConfig{
			Type:    "sqlite",
			DataDir: filepath.Join(baseDir, "db"),
		},
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if c.Retention.LowDiskMB < 0 {
		return fmt.Errorf("retention.low_disk_mb must not be negative: %d", c.Retention.LowDiskMB)
	}
	if c.Retention.ArchiveAgeDays < 0 {
		return fmt.Errorf("retention.archive_age_days must not be negative: %d", c.Retention.ArchiveAgeDays)
	}
	if c.Retention.ExpireAfterDays < 0 {
		return fmt.Errorf("retention.expire_after_days must not be negative: %d", c.Retention.ExpireAfterDays)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// Level parses LogLevel. An empty level means INFO.
func (c *Config) Level() (slog.Level, error) {
	var level slog.Level
	if c.LogLevel == "" {
		return slog.LevelInfo, nil
	}
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("invalid log_level %q: %w", c.LogLevel, err)
	}
	return level, nil
}

// Options converts the retention settings into service options.
func (c *Config) Options() logtidy.Options {
	return logtidy.Options{
		Location:        c.Retention.Location,
		LowDiskBytes:    uint64(c.Retention.LowDiskMB) << 20,
		ArchiveAgeDays:  c.Retention.ArchiveAgeDays,
		ExpireAfterDays: c.Retention.ExpireAfterDays,
	}
}

// Manager handles reading and writing configuration.
type Manager struct {
	// BaseDir roots the defaults that decoding starts from.
	BaseDir string
}

// Read decodes a Config from the provided reader. Keys absent from the input
// keep their defaults.
func (m *Manager) Read(r io.Reader) (*Config, error) {
	cfg := NewConfig(m.BaseDir)
	if _, err := toml.NewDecoder(r).Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, nil
}

// Write encodes a Config to the provided writer.
func (m *Manager) Write(w io.Writer, cfg *Config) error {
	if err := toml.NewEncoder(w).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// ReadFromFile reads a Config from the specified file path, starting from
// the defaults for baseDir.
func ReadFromFile(path, baseDir string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	m := &Manager{BaseDir: baseDir}
	cfg, err := m.Read(f)
	if err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}
	return cfg, nil
}

// Load reads the config at path, falling back to defaults when the file does
// not exist.
func Load(path, baseDir string) (*Config, error) {
	cfg, err := ReadFromFile(path, baseDir)
	if errors.Is(err, os.ErrNotExist) {
		return NewConfig(baseDir), nil
	}
	return cfg, err
}

// writeToFile writes a Config to the specified file path.
func writeToFile(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	if err := m.Write(f, cfg); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// Init initializes a new config file at the specified path with the provided Config.
func Init(path string, cfg *Config) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := writeToFile(path, cfg); err != nil {
		return fmt.Errorf("initializing config: %w", err)
	}
	return nil
}
