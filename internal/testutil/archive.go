package testutil

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/zip"

	"logtidy/internal/archive"
	"logtidy/internal/logtidy"
)

// NewTestArchiveStore returns a zip archive store at best compression.
func NewTestArchiveStore() *archive.ZipStore {
	return archive.NewZipStore(flate.BestCompression)
}

// ZipEntries reads the archive at path and returns entry name to content.
func ZipEntries(t *testing.T, path string) map[string]string {
	t.Helper()
	rc, err := zip.OpenReader(path)
	if err != nil {
		t.Fatalf("opening archive %s: %v", path, err)
	}
	defer rc.Close()

	entries := make(map[string]string, len(rc.File))
	for _, f := range rc.File {
		r, err := f.Open()
		if err != nil {
			t.Fatalf("opening entry %s: %v", f.Name, err)
		}
		data, err := io.ReadAll(r)
		r.Close()
		if err != nil {
			t.Fatalf("reading entry %s: %v", f.Name, err)
		}
		entries[f.Name] = string(data)
	}
	return entries
}

// ZipNames returns the sorted entry names of the archive at path.
func ZipNames(t *testing.T, path string) []string {
	t.Helper()
	var names []string
	for name := range ZipEntries(t, path) {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// CreateZip writes an archive at path with the given name to content entries.
func CreateZip(t *testing.T, path string, entries map[string]string) {
	t.Helper()
	src := t.TempDir()

	names := make([]string, 0, len(entries))
	for name := range entries {
		names = append(names, name)
	}
	sort.Strings(names)

	var list []logtidy.ArchiveEntry
	for i, name := range names {
		source := filepath.Join(src, fmt.Sprintf("entry-%d", i))
		if err := os.WriteFile(source, []byte(entries[name]), 0644); err != nil {
			t.Fatalf("writing %s: %v", source, err)
		}
		list = append(list, logtidy.ArchiveEntry{Name: name, Source: source})
	}
	if err := NewTestArchiveStore().Create(path, list); err != nil {
		t.Fatalf("creating archive %s: %v", path, err)
	}
}
