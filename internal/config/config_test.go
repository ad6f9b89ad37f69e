package config

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestManager_ReadWrite_RoundTrip(t *testing.T) {
	original := &Config{
		BaseDir:  "/home/user/.local/share/logtidy",
		LogDir:   "/home/user/.local/share/logtidy/log",
		LogLevel: "DEBUG",
		Retention: RetentionConfig{
			Location:        "/var/log/app",
			LowDiskMB:       1024,
			ArchiveAgeDays:  7,
			ExpireAfterDays: 90,
			Ignore:          []string{"*.pid", "current.log"},
		},
		Archive: ArchiveConfig{Type: "zip", Compression: "store"},
		Journal: JournalConfig{Type: "sqlite", DataDir: "/home/user/.local/share/logtidy/db"},
		Metrics: MetricsConfig{Textfile: "/var/lib/node_exporter/logtidy.prom"},
	}

	var buf bytes.Buffer
	m := &Manager{}

	if err := m.Write(&buf, original); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	got, err := m.Read(&buf)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}

	if got.LogDir != original.LogDir {
		t.Errorf("LogDir = %q, want %q", got.LogDir, original.LogDir)
	}
	if got.LogLevel != "DEBUG" {
		t.Errorf("LogLevel = %q, want %q", got.LogLevel, "DEBUG")
	}
	if got.Retention.Location != "/var/log/app" {
		t.Errorf("Retention.Location = %q, want %q", got.Retention.Location, "/var/log/app")
	}
	if got.Retention.LowDiskMB != 1024 {
		t.Errorf("Retention.LowDiskMB = %d, want 1024", got.Retention.LowDiskMB)
	}
	if got.Retention.ArchiveAgeDays != 7 {
		t.Errorf("Retention.ArchiveAgeDays = %d, want 7", got.Retention.ArchiveAgeDays)
	}
	if got.Retention.ExpireAfterDays != 90 {
		t.Errorf("Retention.ExpireAfterDays = %d, want 90", got.Retention.ExpireAfterDays)
	}
	if len(got.Retention.Ignore) != 2 {
		t.Fatalf("len(Retention.Ignore) = %d, want 2", len(got.Retention.Ignore))
	}
	if got.Archive.Compression != "store" {
		t.Errorf("Archive.Compression = %q, want %q", got.Archive.Compression, "store")
	}
	if got.Journal.DataDir != original.Journal.DataDir {
		t.Errorf("Journal.DataDir = %q, want %q", got.Journal.DataDir, original.Journal.DataDir)
	}
	if got.Metrics.Textfile != original.Metrics.Textfile {
		t.Errorf("Metrics.Textfile = %q, want %q", got.Metrics.Textfile, original.Metrics.Textfile)
	}
}

func TestManager_Read_KeepsDefaults(t *testing.T) {
	m := &Manager{BaseDir: "/data/logtidy"}
	input := `
[retention]
location = "/var/log/app"
expire_after_days = 14
`
	got, err := m.Read(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}

	if got.Retention.Location != "/var/log/app" {
		t.Errorf("Retention.Location = %q", got.Retention.Location)
	}
	if got.Retention.ExpireAfterDays != 14 {
		t.Errorf("Retention.ExpireAfterDays = %d, want 14", got.Retention.ExpireAfterDays)
	}
	if got.Retention.ArchiveAgeDays != DefaultArchiveAgeDays {
		t.Errorf("Retention.ArchiveAgeDays = %d, want default %d", got.Retention.ArchiveAgeDays, DefaultArchiveAgeDays)
	}
	if got.Journal.Type != "sqlite" || got.Journal.DataDir != "/data/logtidy/db" {
		t.Errorf("Journal = %+v, want default sqlite journal", got.Journal)
	}
	if got.Archive.Type != "zip" || got.Archive.Compression != "best" {
		t.Errorf("Archive = %+v, want default zip archive", got.Archive)
	}
}

func TestManager_Read_ExplicitZeroAge(t *testing.T) {
	m := &Manager{BaseDir: "/data/logtidy"}
	got, err := m.Read(strings.NewReader("[retention]\narchive_age_days = 0\n"))
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if got.Retention.ArchiveAgeDays != 0 {
		t.Errorf("Retention.ArchiveAgeDays = %d, want 0", got.Retention.ArchiveAgeDays)
	}
}

func TestManager_Read_InvalidTOML(t *testing.T) {
	m := &Manager{}
	if _, err := m.Read(strings.NewReader("[retention\nlocation = 1")); err == nil {
		t.Fatal("Read() expected error for malformed input")
	}
}

func TestNewConfig(t *testing.T) {
	cfg := NewConfig("/data/logtidy")

	if cfg.BaseDir != "/data/logtidy" {
		t.Errorf("BaseDir = %q, want %q", cfg.BaseDir, "/data/logtidy")
	}
	if cfg.LogDir != "/data/logtidy/log" {
		t.Errorf("LogDir = %q, want %q", cfg.LogDir, "/data/logtidy/log")
	}
	if cfg.LogLevel != DefaultLogLevel {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, DefaultLogLevel)
	}
	if cfg.Retention.ArchiveAgeDays != 30 {
		t.Errorf("Retention.ArchiveAgeDays = %d, want 30", cfg.Retention.ArchiveAgeDays)
	}
	if cfg.Retention.LowDiskMB != 0 || cfg.Retention.ExpireAfterDays != 0 {
		t.Errorf("Retention = %+v, want reclaimer and expiry disabled", cfg.Retention)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{name: "defaults", modify: func(c *Config) {}},
		{name: "negative low disk", modify: func(c *Config) { c.Retention.LowDiskMB = -1 }, wantErr: true},
		{name: "negative archive age", modify: func(c *Config) { c.Retention.ArchiveAgeDays = -3 }, wantErr: true},
		{name: "negative expiry", modify: func(c *Config) { c.Retention.ExpireAfterDays = -1 }, wantErr: true},
		{name: "bad log level", modify: func(c *Config) { c.LogLevel = "LOUD" }, wantErr: true},
		{name: "debug log level", modify: func(c *Config) { c.LogLevel = "debug" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConfig("/data/logtidy")
			tt.modify(cfg)

			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_Level(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"", slog.LevelInfo},
		{"INFO", slog.LevelInfo},
		{"DEBUG", slog.LevelDebug},
		{"warn", slog.LevelWarn},
		{"ERROR", slog.LevelError},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			cfg := &Config{LogLevel: tt.in}
			got, err := cfg.Level()
			if err != nil {
				t.Fatalf("Level() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Level() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestConfig_Options(t *testing.T) {
	cfg := NewConfig("/data/logtidy")
	cfg.Retention.Location = "/var/log/app"
	cfg.Retention.LowDiskMB = 1024
	cfg.Retention.ExpireAfterDays = 60

	opts := cfg.Options()

	if opts.Location != "/var/log/app" {
		t.Errorf("Location = %q", opts.Location)
	}
	if opts.LowDiskBytes != 1024*1024*1024 {
		t.Errorf("LowDiskBytes = %d, want %d", opts.LowDiskBytes, 1024*1024*1024)
	}
	if opts.ArchiveAgeDays != 30 {
		t.Errorf("ArchiveAgeDays = %d, want 30", opts.ArchiveAgeDays)
	}
	if opts.ExpireAfterDays != 60 {
		t.Errorf("ExpireAfterDays = %d, want 60", opts.ExpireAfterDays)
	}
}

func TestInit(t *testing.T) {
	t.Run("creates config file", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "conf", "logtidy.toml")
		cfg := NewConfig(dir)

		if err := Init(path, cfg); err != nil {
			t.Fatalf("Init() error = %v", err)
		}

		if _, err := os.Stat(path); err != nil {
			t.Fatalf("config file not created: %v", err)
		}
	})

	t.Run("fails if file already exists", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "logtidy.toml")
		cfg := NewConfig(dir)

		if err := Init(path, cfg); err != nil {
			t.Fatalf("first Init() error = %v", err)
		}

		err := Init(path, cfg)
		if err == nil {
			t.Fatal("second Init() expected error")
		}
	})
}

func TestReadFromFile(t *testing.T) {
	t.Run("reads valid config", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "logtidy.toml")
		cfg := NewConfig(dir)
		cfg.Retention.Location = "/var/log/app"
		cfg.Journal = JournalConfig{Type: "memory"}

		if err := Init(path, cfg); err != nil {
			t.Fatalf("Init() error = %v", err)
		}

		got, err := ReadFromFile(path, dir)
		if err != nil {
			t.Fatalf("ReadFromFile() error = %v", err)
		}
		if got.Retention.Location != "/var/log/app" {
			t.Errorf("Retention.Location = %q, want %q", got.Retention.Location, "/var/log/app")
		}
		if got.Journal.Type != "memory" {
			t.Errorf("Journal.Type = %q, want %q", got.Journal.Type, "memory")
		}
	})

	t.Run("returns error for missing file", func(t *testing.T) {
		_, err := ReadFromFile("/nonexistent/path/logtidy.toml", "/data")
		if err == nil {
			t.Fatal("ReadFromFile() expected error for missing file")
		}
	})
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	dir := t.TempDir()

	cfg, err := Load(filepath.Join(dir, "absent.toml"), dir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Retention.ArchiveAgeDays != DefaultArchiveAgeDays {
		t.Errorf("Retention.ArchiveAgeDays = %d, want default", cfg.Retention.ArchiveAgeDays)
	}
	if cfg.LogDir != filepath.Join(dir, "log") {
		t.Errorf("LogDir = %q", cfg.LogDir)
	}
}
