package logtidy

import (
	"path/filepath"
	"strings"
)

// ArchiveExt is the extension of daily archives.
const ArchiveExt = ".zip"

// ArchiveEntry pairs the name an entry is stored under with the file it is
// read from.
type ArchiveEntry struct {
	Name   string // slash-separated name inside the archive
	Source string // absolute path of the file on disk
}

// ArchiveStore creates, updates and lists daily archives.
type ArchiveStore interface {
	// Exists reports whether an archive is present at path.
	Exists(path string) (bool, error)

	// Create writes a new archive at path holding entries. Entry names must
	// be unique. It fails if an archive already exists at path.
	Create(path string, entries []ArchiveEntry) error

	// Open opens an existing archive for appending. Nothing is visible at
	// path until the returned writer is committed.
	Open(path string) (ArchiveWriter, error)

	// List returns the entry names of the archive at path in stored order.
	List(path string) ([]string, error)

	// IsTemp reports whether name is a temporary file the store writes while
	// committing an archive. Such files are never log files.
	IsTemp(name string) bool
}

// ArchiveWriter appends entries to an archive opened with ArchiveStore.Open.
// Existing entries are carried over unchanged.
type ArchiveWriter interface {
	// Names returns every entry name currently in the archive, including
	// entries added through this writer.
	Names() []string

	// Add stores the entry. It fails if an entry with the same name exists.
	Add(entry ArchiveEntry) error

	// Commit makes the updated archive visible at its path.
	Commit() error

	// Abort discards pending changes and leaves the original archive intact.
	Abort() error
}

// IsArchiveName reports whether name carries the archive extension.
func IsArchiveName(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ArchiveExt)
}
