package archive

import (
	"fmt"

	"github.com/klauspost/compress/flate"

	"logtidy/internal/config"
	"logtidy/internal/logtidy"
)

// NewArchiveStoreFromConfig creates an ArchiveStore implementation based on the archive config type.
func NewArchiveStoreFromConfig(cfg config.ArchiveConfig) (logtidy.ArchiveStore, error) {
	switch cfg.Type {
	case "", "zip":
		level, err := compressionLevel(cfg.Compression)
		if err != nil {
			return nil, err
		}
		return NewZipStore(level), nil
	default:
		return nil, fmt.Errorf("unknown archive type: %s", cfg.Type)
	}
}

func compressionLevel(name string) (int, error) {
	switch name {
	case "", "best":
		return flate.BestCompression, nil
	case "default":
		return flate.DefaultCompression, nil
	case "store":
		return flate.NoCompression, nil
	default:
		return 0, fmt.Errorf("unknown compression: %s", name)
	}
}
