package fs

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"logtidy/internal/logtidy"
)

// OSFilesystem is the real filesystem implementation of logtidy.Filesystem.
type OSFilesystem struct {
	ignore []string
}

// NewOSFilesystem creates a filesystem that operates on the real filesystem.
// ignore holds glob patterns applied to base names in addition to any
// .logtidyignore file found in the target directory.
func NewOSFilesystem(ignore []string) *OSFilesystem {
	return &OSFilesystem{ignore: ignore}
}

// Resolve validates a raw path and returns a Path object.
func (m *OSFilesystem) Resolve(rawPath string) (*logtidy.Path, error) {
	absPath, err := filepath.Abs(rawPath)
	if err != nil {
		return nil, fmt.Errorf("resolving absolute path: %w", err)
	}

	info, err := os.Stat(absPath)
	if err != nil {
		return nil, fmt.Errorf("stat path: %w", err)
	}

	mode := info.Mode()
	if mode&os.ModeDevice != 0 {
		return nil, fmt.Errorf("device files not supported: %s", absPath)
	}
	if mode&os.ModeNamedPipe != 0 {
		return nil, fmt.Errorf("named pipes not supported: %s", absPath)
	}
	if mode&os.ModeSocket != 0 {
		return nil, fmt.Errorf("sockets not supported: %s", absPath)
	}

	return logtidy.NewPath(absPath, info.IsDir(), info), nil
}

// List returns the regular files and directories directly under dir.
// Entries that disappear between the read and the stat are skipped.
func (m *OSFilesystem) List(dir *logtidy.Path) ([]*logtidy.Path, error) {
	if !dir.IsDir() {
		return nil, fmt.Errorf("path is not a directory: %s", dir.String())
	}

	entries, err := os.ReadDir(dir.String())
	if err != nil {
		return nil, fmt.Errorf("reading directory: %w", err)
	}

	paths := make([]*logtidy.Path, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() && !entry.Type().IsRegular() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("stat %s: %w", entry.Name(), err)
		}
		fullPath := filepath.Join(dir.String(), entry.Name())
		paths = append(paths, logtidy.NewPath(fullPath, entry.IsDir(), info))
	}

	return paths, nil
}

// MkdirAll creates path and any missing parents.
func (m *OSFilesystem) MkdirAll(path string) error {
	if err := os.MkdirAll(path, 0755); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}
	return nil
}

// Move renames src to dst, refusing to replace an existing dst.
func (m *OSFilesystem) Move(src *logtidy.Path, dst string) error {
	if _, err := os.Lstat(dst); err == nil {
		return fmt.Errorf("destination already exists: %s", dst)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("stat destination: %w", err)
	}

	if err := os.Rename(src.String(), dst); err != nil {
		return fmt.Errorf("moving file: %w", err)
	}
	return nil
}

// Remove deletes a single file.
func (m *OSFilesystem) Remove(path *logtidy.Path) error {
	return os.Remove(path.String())
}

// RemoveAll deletes a directory tree.
func (m *OSFilesystem) RemoveAll(path *logtidy.Path) error {
	return os.RemoveAll(path.String())
}

// IsIgnored reports whether the file's base name matches the configured
// patterns or the patterns in root/.logtidyignore.
func (m *OSFilesystem) IsIgnored(path *logtidy.Path, root string) (bool, error) {
	filePatterns, err := ParseIgnoreFile(filepath.Join(root, IgnoreFileName))
	if err != nil {
		return false, err
	}

	patterns := make([]string, 0, len(defaultIgnorePatterns)+len(m.ignore)+len(filePatterns))
	patterns = append(patterns, defaultIgnorePatterns...)
	patterns = append(patterns, m.ignore...)
	patterns = append(patterns, filePatterns...)

	return NewIgnoreMatcher(patterns).Match(path.Name()), nil
}

// Compile-time check that OSFilesystem implements logtidy.Filesystem interface
var _ logtidy.Filesystem = (*OSFilesystem)(nil)
