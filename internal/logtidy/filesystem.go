package logtidy

// Filesystem provides the filesystem primitives the retention phases need.
// It abstracts file access so the phases can be tested with scripted
// free space and lock states.
type Filesystem interface {
	// Resolve validates a raw path and returns a Path object.
	// It resolves the path to an absolute path, stats it, and validates
	// it's a regular file or directory (not a symlink, device, etc.).
	Resolve(rawPath string) (*Path, error)

	// List returns the immediate children of dir that are regular files or
	// directories. Other entry types are omitted.
	List(dir *Path) ([]*Path, error)

	// MkdirAll creates a directory and any missing parents.
	MkdirAll(path string) error

	// Move renames src to dst. It fails if dst already exists.
	Move(src *Path, dst string) error

	// Remove deletes a single file.
	Remove(path *Path) error

	// RemoveAll deletes a directory tree.
	RemoveAll(path *Path) error

	// TryLock reports whether the file can be exclusively acquired right now.
	// A false result with a nil error means the file is busy and should be
	// skipped. ErrNotWritable means the file can never be acquired by this
	// process. The answer is advisory: a writer may open the file between the
	// probe and whatever the caller does next.
	TryLock(path *Path) (bool, error)

	// FreeSpace returns the bytes available to unprivileged users on the
	// volume containing path.
	FreeSpace(path *Path) (uint64, error)

	// IsIgnored reports whether a file under root matches the ignore rules.
	IsIgnored(path *Path, root string) (bool, error)
}
