//go:build unix

package fs

import (
	"fmt"

	"golang.org/x/sys/unix"

	"logtidy/internal/logtidy"
)

// FreeSpace returns the bytes available to unprivileged users on the volume
// holding path.
func (m *OSFilesystem) FreeSpace(path *logtidy.Path) (uint64, error) {
	var stat unix.Statfs_t
	if err := unix.Statfs(path.String(), &stat); err != nil {
		return 0, fmt.Errorf("statfs %s: %w", path.String(), err)
	}
	return uint64(stat.Bavail) * uint64(stat.Bsize), nil
}
