package archive

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/zip"

	"logtidy/internal/logtidy"
)

// ZipStore keeps daily archives as zip files on disk.
//
// Every write goes to a temporary file next to the archive which is renamed
// into place once complete, so a reader never observes a partial archive and
// a failed update leaves the previous archive untouched. Updates copy the
// existing entries raw (without recompressing) before appending new ones.
type ZipStore struct {
	method uint16
	level  int
}

// NewZipStore creates a store that deflates entries at the given flate level.
// A level of flate.NoCompression stores entries uncompressed.
func NewZipStore(level int) *ZipStore {
	s := &ZipStore{method: zip.Deflate, level: level}
	if level == flate.NoCompression {
		s.method = zip.Store
	}
	return s
}

// Exists reports whether an archive file is present at path.
func (s *ZipStore) Exists(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("stat archive: %w", err)
	}
	if info.IsDir() {
		return false, fmt.Errorf("archive path is a directory: %s", path)
	}
	return true, nil
}

// Create writes a new archive holding entries.
func (s *ZipStore) Create(path string, entries []logtidy.ArchiveEntry) error {
	exists, err := s.Exists(path)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("archive already exists: %s", path)
	}

	tw, err := s.newTempWriter(path, 0644)
	if err != nil {
		return err
	}

	seen := make(logtidy.NameSet, len(entries))
	for _, e := range entries {
		if seen.Has(e.Name) {
			tw.abort()
			return fmt.Errorf("duplicate entry name: %s", e.Name)
		}
		if err := s.addFile(tw.zw, e); err != nil {
			tw.abort()
			return err
		}
		seen.Add(e.Name)
	}

	return tw.commit(path)
}

// Open opens an existing archive for appending.
func (s *ZipStore) Open(path string) (logtidy.ArchiveWriter, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat archive: %w", err)
	}

	rc, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("reading archive: %w", err)
	}

	tw, err := s.newTempWriter(path, info.Mode().Perm())
	if err != nil {
		rc.Close()
		return nil, err
	}

	u := &zipUpdate{store: s, path: path, src: rc, tw: tw}
	for _, f := range rc.File {
		if err := tw.zw.Copy(f); err != nil {
			u.Abort()
			return nil, fmt.Errorf("copying entry %s: %w", f.Name, err)
		}
		u.names = append(u.names, f.Name)
	}
	u.taken = logtidy.NewNameSet(u.names)

	return u, nil
}

// List returns the entry names of the archive at path.
func (s *ZipStore) List(path string) ([]string, error) {
	rc, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("reading archive: %w", err)
	}
	defer rc.Close()

	names := make([]string, 0, len(rc.File))
	for _, f := range rc.File {
		names = append(names, f.Name)
	}
	return names, nil
}

// addFile streams a file from disk into a new entry.
func (s *ZipStore) addFile(zw *zip.Writer, e logtidy.ArchiveEntry) error {
	f, err := os.Open(e.Source)
	if err != nil {
		return fmt.Errorf("opening %s: %w", e.Source, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat %s: %w", e.Source, err)
	}

	header, err := zip.FileInfoHeader(info)
	if err != nil {
		return fmt.Errorf("building header for %s: %w", e.Source, err)
	}
	header.Name = e.Name
	header.Method = s.method

	w, err := zw.CreateHeader(header)
	if err != nil {
		return fmt.Errorf("creating entry %s: %w", e.Name, err)
	}
	if _, err := io.Copy(w, f); err != nil {
		return fmt.Errorf("writing entry %s: %w", e.Name, err)
	}
	return nil
}

// tempSuffix separates an archive's name from the random part of its temp
// file: "632024.zip" is committed through ".632024.zip.tmp-<random>".
const tempSuffix = ".tmp-"

func tempPattern(path string) string {
	return "." + filepath.Base(path) + tempSuffix + "*"
}

// IsTemp reports whether name has the shape of a temp file written by a
// commit. A crash between creating and renaming one leaves it behind.
func (s *ZipStore) IsTemp(name string) bool {
	if !strings.HasPrefix(name, ".") {
		return false
	}
	i := strings.LastIndex(name, tempSuffix)
	if i <= 1 {
		return false
	}
	return logtidy.IsArchiveName(name[1:i])
}

// tempWriter is a zip writer over a temporary file beside the final archive.
type tempWriter struct {
	file *os.File
	zw   *zip.Writer
}

func (s *ZipStore) newTempWriter(path string, perm fs.FileMode) (*tempWriter, error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), tempPattern(path))
	if err != nil {
		return nil, fmt.Errorf("creating temp archive: %w", err)
	}
	if err := tmp.Chmod(perm); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return nil, fmt.Errorf("setting archive permissions: %w", err)
	}

	zw := zip.NewWriter(tmp)
	level := s.level
	zw.RegisterCompressor(zip.Deflate, func(out io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(out, level)
	})
	return &tempWriter{file: tmp, zw: zw}, nil
}

// commit finishes the zip, flushes it to stable storage and renames it over path.
func (t *tempWriter) commit(path string) error {
	tmpPath := t.file.Name()
	if err := t.zw.Close(); err != nil {
		t.file.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("finalizing archive: %w", err)
	}
	if err := t.file.Sync(); err != nil {
		t.file.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("syncing archive: %w", err)
	}
	if err := t.file.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing archive: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("replacing archive: %w", err)
	}
	return nil
}

func (t *tempWriter) abort() {
	t.zw.Close()
	t.file.Close()
	os.Remove(t.file.Name())
}

// zipUpdate appends to an archive opened with ZipStore.Open.
type zipUpdate struct {
	store *ZipStore
	path  string
	src   *zip.ReadCloser
	tw    *tempWriter
	names []string
	taken logtidy.NameSet
	done  bool
}

func (u *zipUpdate) Names() []string {
	return append([]string(nil), u.names...)
}

func (u *zipUpdate) Add(e logtidy.ArchiveEntry) error {
	if u.done {
		return fmt.Errorf("archive update already finished: %s", u.path)
	}
	if u.taken.Has(e.Name) {
		return fmt.Errorf("entry already exists: %s", e.Name)
	}
	if err := u.store.addFile(u.tw.zw, e); err != nil {
		return err
	}
	u.names = append(u.names, e.Name)
	u.taken.Add(e.Name)
	return nil
}

func (u *zipUpdate) Commit() error {
	if u.done {
		return fmt.Errorf("archive update already finished: %s", u.path)
	}
	u.done = true
	defer u.src.Close()
	return u.tw.commit(u.path)
}

func (u *zipUpdate) Abort() error {
	if u.done {
		return nil
	}
	u.done = true
	u.tw.abort()
	return u.src.Close()
}

// Compile-time check that ZipStore implements logtidy.ArchiveStore interface
var _ logtidy.ArchiveStore = (*ZipStore)(nil)
