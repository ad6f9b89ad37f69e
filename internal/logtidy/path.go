package logtidy

import (
	"io/fs"
	"path/filepath"
	"time"
)

// Path represents a validated filesystem path with cached metadata.
// Path objects are created by Filesystem.Resolve() and Filesystem.List(),
// which stat the entry once and cache the result.
type Path struct {
	absPath string
	isDir   bool
	info    fs.FileInfo
}

// NewPath creates a Path from its components.
// This is primarily for use by Filesystem implementations.
func NewPath(absPath string, isDir bool, info fs.FileInfo) *Path {
	return &Path{
		absPath: absPath,
		isDir:   isDir,
		info:    info,
	}
}

// String returns the absolute path as a string.
func (p *Path) String() string {
	return p.absPath
}

// Name returns the final element of the path.
func (p *Path) Name() string {
	return filepath.Base(p.absPath)
}

// IsDir returns true if this path points to a directory.
func (p *Path) IsDir() bool {
	return p.isDir
}

// Info returns the cached file info from when the path was resolved.
func (p *Path) Info() fs.FileInfo {
	return p.info
}

// Size returns the cached size in bytes.
func (p *Path) Size() int64 {
	if p.info == nil {
		return 0
	}
	return p.info.Size()
}

// ModTime returns the cached last-modified timestamp.
func (p *Path) ModTime() time.Time {
	if p.info == nil {
		return time.Time{}
	}
	return p.info.ModTime()
}
