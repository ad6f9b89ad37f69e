package testutil

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"logtidy/internal/fs"
	"logtidy/internal/logtidy"
)

// ScriptedFilesystem is a real OS filesystem with scripted free space, lock
// state and removal failures. Free space grows by each removed file's size,
// so reclaim tests can use sparse files without touching the real volume.
type ScriptedFilesystem struct {
	*fs.OSFilesystem

	// Free is the free space reported by FreeSpace.
	Free uint64

	busy       map[string]bool
	lockErr    map[string]error
	failRemove map[string]error
	freeErr    error
	Removed    []string
	Probed     []string
}

// NewScriptedFilesystem creates a ScriptedFilesystem reporting free bytes.
func NewScriptedFilesystem(free uint64) *ScriptedFilesystem {
	return &ScriptedFilesystem{
		OSFilesystem: fs.NewOSFilesystem(nil),
		Free:         free,
		busy:         make(map[string]bool),
		lockErr:      make(map[string]error),
		failRemove:   make(map[string]error),
	}
}

// SetBusy makes the lock probe report path as held by another process.
func (s *ScriptedFilesystem) SetBusy(path string) { s.busy[path] = true }

// FailLock makes the lock probe on path return err.
func (s *ScriptedFilesystem) FailLock(path string, err error) { s.lockErr[path] = err }

// FailRemove makes removing path return err.
func (s *ScriptedFilesystem) FailRemove(path string, err error) { s.failRemove[path] = err }

// FailFreeSpace makes FreeSpace return err.
func (s *ScriptedFilesystem) FailFreeSpace(err error) { s.freeErr = err }

func (s *ScriptedFilesystem) FreeSpace(*logtidy.Path) (uint64, error) {
	if s.freeErr != nil {
		return 0, s.freeErr
	}
	return s.Free, nil
}

func (s *ScriptedFilesystem) TryLock(path *logtidy.Path) (bool, error) {
	s.Probed = append(s.Probed, path.String())
	if err, ok := s.lockErr[path.String()]; ok {
		return false, err
	}
	if s.busy[path.String()] {
		return false, nil
	}
	return s.OSFilesystem.TryLock(path)
}

func (s *ScriptedFilesystem) Remove(path *logtidy.Path) error {
	if err, ok := s.failRemove[path.String()]; ok {
		return err
	}
	if err := s.OSFilesystem.Remove(path); err != nil {
		return err
	}
	s.Free += uint64(path.Size())
	s.Removed = append(s.Removed, path.String())
	return nil
}

// Compile-time check that ScriptedFilesystem implements logtidy.Filesystem interface
var _ logtidy.Filesystem = (*ScriptedFilesystem)(nil)

// WriteFile creates a file with content and sets its modification time.
// Parent directories are created as needed.
func WriteFile(t *testing.T, path, content string, mtime time.Time) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("creating parent of %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
	SetModTime(t, path, mtime)
}

// WriteSparseFile creates a file of the given size without allocating its
// blocks and sets its modification time.
func WriteSparseFile(t *testing.T, path string, size int64, mtime time.Time) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("creating %s: %v", path, err)
	}
	if err := f.Truncate(size); err != nil {
		f.Close()
		t.Fatalf("sizing %s: %v", path, err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("closing %s: %v", path, err)
	}
	SetModTime(t, path, mtime)
}

// SetModTime sets both access and modification time of path.
func SetModTime(t *testing.T, path string, mtime time.Time) {
	t.Helper()
	if err := os.Chtimes(path, mtime, mtime); err != nil {
		t.Fatalf("setting mtime on %s: %v", path, err)
	}
}

// MiB returns n mebibytes in bytes.
func MiB(n uint64) uint64 { return n << 20 }

// ErrInjected is a generic failure for scripted operations.
var ErrInjected = errors.New("injected failure")
