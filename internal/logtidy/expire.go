package logtidy

import (
	"fmt"
	"time"
)

// Expire deletes every archive in dir whose last-modified time plus the
// retention period is at or before now. A zero retention is a no-op.
func (s *Service) Expire(dir *Path, retentionDays int, now time.Time) (*ExpireResult, error) {
	result := &ExpireResult{}
	if retentionDays <= 0 {
		return result, nil
	}

	archives, err := s.archiveFiles(dir)
	if err != nil {
		return result, err
	}

	retention := Days(retentionDays)
	for _, p := range archives {
		if p.ModTime().Add(retention).After(now) {
			continue
		}
		if err := s.fsys.Remove(p); err != nil {
			return result, fmt.Errorf("deleting expired archive %s: %w", p.String(), err)
		}
		result.Expired = append(result.Expired, p.String())
		s.logger.Info("deleted expired archive",
			"path", p.String(),
			"age", now.Sub(p.ModTime()).Truncate(24*time.Hour),
		)
	}

	return result, nil
}
