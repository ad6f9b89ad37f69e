package journal

import (
	"os"
	"path/filepath"
	"testing"

	"logtidy/internal/config"
)

func TestNewJournalFromConfig(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.JournalConfig
		wantErr bool
		wantNil bool
	}{
		{
			name: "memory journal",
			cfg:  config.JournalConfig{Type: "memory"},
		},
		{
			name:    "sqlite journal without data dir",
			cfg:     config.JournalConfig{Type: "sqlite"},
			wantErr: true,
			wantNil: true,
		},
		{
			name:    "journal disabled",
			cfg:     config.JournalConfig{Type: "none"},
			wantNil: true,
		},
		{
			name:    "unknown journal type",
			cfg:     config.JournalConfig{Type: "postgres"},
			wantErr: true,
			wantNil: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewJournalFromConfig(tt.cfg)

			if (err != nil) != tt.wantErr {
				t.Fatalf("NewJournalFromConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
			if (got == nil) != tt.wantNil {
				t.Errorf("NewJournalFromConfig() = %v, wantNil %v", got, tt.wantNil)
			}
			if got != nil {
				got.Close()
			}
		})
	}
}

func TestNewJournalFromConfig_SQLiteCreatesDataDir(t *testing.T) {
	dataDir := filepath.Join(t.TempDir(), "nested", "db")

	j, err := NewJournalFromConfig(config.JournalConfig{Type: "sqlite", DataDir: dataDir})
	if err != nil {
		t.Fatalf("NewJournalFromConfig() error = %v", err)
	}
	defer j.Close()

	if _, err := os.Stat(filepath.Join(dataDir, FileName)); err != nil {
		t.Errorf("journal file not created: %v", err)
	}
}
