package archive

import (
	"testing"

	"logtidy/internal/config"
)

func TestNewArchiveStoreFromConfig(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.ArchiveConfig
		wantErr bool
	}{
		{name: "zip with best compression", cfg: config.ArchiveConfig{Type: "zip", Compression: "best"}},
		{name: "zip with defaults", cfg: config.ArchiveConfig{}},
		{name: "zip stored", cfg: config.ArchiveConfig{Type: "zip", Compression: "store"}},
		{name: "unknown compression", cfg: config.ArchiveConfig{Type: "zip", Compression: "ultra"}, wantErr: true},
		{name: "unknown archive type", cfg: config.ArchiveConfig{Type: "tar"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewArchiveStoreFromConfig(tt.cfg)

			if (err != nil) != tt.wantErr {
				t.Fatalf("NewArchiveStoreFromConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr && got != nil {
				t.Errorf("NewArchiveStoreFromConfig() returned non-nil store on error")
			}
			if !tt.wantErr && got == nil {
				t.Errorf("NewArchiveStoreFromConfig() returned nil store")
			}
		})
	}
}
