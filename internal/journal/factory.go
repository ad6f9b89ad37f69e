package journal

import (
	"fmt"
	"os"
	"path/filepath"

	"logtidy/internal/config"
	"logtidy/internal/logtidy"
)

// FileName is the journal database file inside the configured data directory.
const FileName = "journal.db"

// NewJournalFromConfig creates a Journal implementation based on the journal config type.
// It returns a nil Journal when journaling is disabled.
func NewJournalFromConfig(cfg config.JournalConfig) (logtidy.Journal, error) {
	switch cfg.Type {
	case "sqlite":
		if cfg.DataDir == "" {
			return nil, fmt.Errorf("data_dir required for sqlite journal")
		}
		if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
			return nil, fmt.Errorf("creating journal directory: %w", err)
		}
		return openJournal(filepath.Join(cfg.DataDir, FileName))
	case "memory":
		return openJournal(":memory:")
	case "none", "":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown journal type: %s", cfg.Type)
	}
}

func openJournal(path string) (logtidy.Journal, error) {
	j, err := NewSQLiteJournal(path)
	if err != nil {
		return nil, err
	}
	return j, nil
}
