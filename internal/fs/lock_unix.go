//go:build unix

package fs

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"golang.org/x/sys/unix"

	"logtidy/internal/logtidy"
)

// TryLock opens the file for writing and attempts a non-blocking exclusive
// flock. The file is released before returning.
//
// Busy files (a conflicting flock or ETXTBSY) and files that vanished since
// they were listed report false with a nil error. A file this process may not
// open for writing reports logtidy.ErrNotWritable. Writers that never take a
// flock are invisible to this probe, and any writer may open the file right
// after it returns true.
func (m *OSFilesystem) TryLock(path *logtidy.Path) (bool, error) {
	f, err := os.OpenFile(path.String(), os.O_RDWR, 0)
	if err != nil {
		switch {
		case errors.Is(err, fs.ErrNotExist), errors.Is(err, unix.ETXTBSY):
			return false, nil
		case errors.Is(err, fs.ErrPermission):
			return false, fmt.Errorf("%w: %s", logtidy.ErrNotWritable, path.String())
		}
		return false, fmt.Errorf("opening for lock probe: %w", err)
	}
	defer f.Close()

	fd := int(f.Fd())
	if err := unix.Flock(fd, unix.LOCK_EX|unix.LOCK_NB); err != nil {
		if errors.Is(err, unix.EWOULDBLOCK) {
			return false, nil
		}
		return false, fmt.Errorf("lock probe: %w", err)
	}

	if err := unix.Flock(fd, unix.LOCK_UN); err != nil {
		return false, fmt.Errorf("releasing lock probe: %w", err)
	}
	return true, nil
}
