package logtidy

import (
	"fmt"
	"sort"

	"github.com/samber/lo"
)

// Reclaim deletes the oldest archives in dir until free space on its volume
// reaches floor bytes. It stops as soon as the deficit is covered, so at most
// the last deleted archive overshoots the target. A zero floor, or a volume
// that already has enough space, is a no-op.
//
// Running out of archives before the deficit is covered is not an error; the
// result reports Satisfied=false. A failed deletion aborts the pass.
func (s *Service) Reclaim(dir *Path, floor uint64) (*ReclaimResult, error) {
	result := &ReclaimResult{Floor: floor}
	if floor == 0 {
		result.Satisfied = true
		return result, nil
	}

	free, err := s.fsys.FreeSpace(dir)
	if err != nil {
		return result, fmt.Errorf("querying free space: %w", err)
	}
	result.FreeBefore = free

	if free >= floor {
		result.Satisfied = true
		s.logger.Debug("free space above floor", "free", free, "floor", floor)
		return result, nil
	}
	result.Deficit = floor - free

	candidates, err := s.archiveFiles(dir)
	if err != nil {
		return result, err
	}

	s.logger.Info("free space below floor, deleting oldest archives",
		"free", free,
		"floor", floor,
		"deficit", result.Deficit,
		"candidates", len(candidates),
	)

	result.Freed, err = s.deleteUntil(candidates, result.Deficit, func(p *Path) {
		result.Deleted = append(result.Deleted, p.String())
	})
	if err != nil {
		return result, err
	}

	result.Satisfied = result.Freed >= result.Deficit
	if !result.Satisfied {
		s.logger.Warn("no archives left to delete, free space still below floor",
			"freed", result.Freed,
			"deficit", result.Deficit,
		)
	}
	return result, nil
}

// deleteUntil removes candidates in order, returning the running total of
// bytes freed once it reaches target or the candidates run out.
func (s *Service) deleteUntil(candidates []*Path, target uint64, onDeleted func(*Path)) (uint64, error) {
	var freed uint64
	for _, p := range candidates {
		if freed >= target {
			break
		}
		if err := s.fsys.Remove(p); err != nil {
			return freed, fmt.Errorf("deleting archive %s: %w", p.String(), err)
		}
		freed += uint64(p.Size())
		onDeleted(p)
		s.logger.Info("deleted archive to reclaim space", "path", p.String(), "size", p.Size(), "freed", freed)
	}
	return freed, nil
}

// archiveFiles lists the archives directly under dir, oldest first.
func (s *Service) archiveFiles(dir *Path) ([]*Path, error) {
	entries, err := s.fsys.List(dir)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", dir.String(), err)
	}

	archives := lo.Filter(entries, func(p *Path, _ int) bool {
		return !p.IsDir() && IsArchiveName(p.Name())
	})
	sortByModTime(archives)
	return archives, nil
}

// sortByModTime orders paths by last-modified time, breaking ties by name so
// the order is deterministic.
func sortByModTime(paths []*Path) {
	sort.SliceStable(paths, func(i, j int) bool {
		ti, tj := paths[i].ModTime(), paths[j].ModTime()
		if !ti.Equal(tj) {
			return ti.Before(tj)
		}
		return paths[i].Name() < paths[j].Name()
	})
}
