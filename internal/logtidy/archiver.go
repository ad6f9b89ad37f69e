package logtidy

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"
)

// Archive moves log files in dir that are at least ageDays old into day
// buckets, then folds every bucket found under dir into its daily archive.
//
// Files whose lock probe fails are skipped and picked up by a later run. The
// fold step reconciles all bucket-shaped directories, not only the ones
// filled by this pass, so a run interrupted between staging and folding is
// completed by the next one. A bucket is deleted only after its archive has
// been committed.
func (s *Service) Archive(dir *Path, ageDays int, now time.Time) (*ArchiveResult, error) {
	result := &ArchiveResult{}

	candidates, temps, err := s.eligibleFiles(dir, ageDays, now)
	if err != nil {
		return result, err
	}

	// Temp archives only survive a commit that was cut short; none are live
	// because a single invocation owns the directory.
	for _, tmp := range temps {
		if err := s.fsys.Remove(tmp); err != nil {
			return result, fmt.Errorf("removing stale temp archive %s: %w", tmp.String(), err)
		}
		result.RemovedTemps = append(result.RemovedTemps, tmp.String())
		s.logger.Warn("removed stale temp archive", "path", tmp.String())
	}

	for _, f := range candidates {
		ok, err := s.fsys.TryLock(f)
		if errors.Is(err, ErrNotWritable) {
			result.SkippedUnwritable = append(result.SkippedUnwritable, f.String())
			s.logger.Warn("file not writable, skipping", "path", f.String())
			continue
		}
		if err != nil {
			return result, fmt.Errorf("probing %s: %w", f.String(), err)
		}
		if !ok {
			result.SkippedBusy = append(result.SkippedBusy, f.String())
			s.logger.Debug("file in use, skipping", "path", f.String())
			continue
		}

		key := BucketKey(f.ModTime().In(now.Location()))
		name, err := s.staging.Stage(dir, f, key)
		if errors.Is(err, ErrBucketBlocked) {
			result.SkippedBlocked = append(result.SkippedBlocked, f.String())
			s.logger.Warn("bucket path taken by a file, skipping", "path", f.String(), "bucket", key)
			continue
		}
		if err != nil {
			return result, fmt.Errorf("staging %s: %w", f.String(), err)
		}
		result.Staged++
		s.logger.Debug("file staged", "path", f.String(), "bucket", key, "name", name)
	}

	buckets, err := s.staging.Buckets(dir)
	if err != nil {
		return result, fmt.Errorf("listing day buckets: %w", err)
	}

	for _, b := range buckets {
		if err := s.fold(dir, b, result); err != nil {
			return result, fmt.Errorf("folding bucket %s: %w", b.Key, err)
		}
	}

	return result, nil
}

// eligibleFiles returns the files in dir that may be archived, oldest first,
// and any temp archives left behind by an interrupted commit.
func (s *Service) eligibleFiles(dir *Path, ageDays int, now time.Time) ([]*Path, []*Path, error) {
	entries, err := s.fsys.List(dir)
	if err != nil {
		return nil, nil, fmt.Errorf("listing %s: %w", dir.String(), err)
	}

	cutoff := now.Add(-Days(ageDays))

	var eligible, temps []*Path
	for _, p := range entries {
		if p.IsDir() || IsArchiveName(p.Name()) {
			continue
		}
		if s.archives.IsTemp(p.Name()) {
			temps = append(temps, p)
			continue
		}
		if ageDays > 0 && p.ModTime().After(cutoff) {
			continue
		}

		ignored, err := s.fsys.IsIgnored(p, dir.String())
		if err != nil {
			return nil, nil, fmt.Errorf("checking ignore rules: %w", err)
		}
		if ignored {
			continue
		}

		eligible = append(eligible, p)
	}

	sortByModTime(eligible)
	return eligible, temps, nil
}

// fold writes a bucket's files into the archive of the same key and then
// deletes the bucket. An empty bucket is deleted without producing an archive.
func (s *Service) fold(dir *Path, b *Bucket, result *ArchiveResult) error {
	entries, err := s.staging.Contents(b)
	if err != nil {
		return fmt.Errorf("reading bucket: %w", err)
	}

	if len(entries) == 0 {
		s.logger.Debug("removing empty bucket", "bucket", b.Key)
		return s.staging.Discard(b)
	}

	archivePath := filepath.Join(dir.String(), b.Key+ArchiveExt)
	exists, err := s.archives.Exists(archivePath)
	if err != nil {
		return fmt.Errorf("checking archive: %w", err)
	}

	if exists {
		renamed, err := s.merge(archivePath, entries)
		if err != nil {
			return err
		}
		result.Merged = append(result.Merged, archivePath)
		result.Renamed += renamed
		s.logger.Info("merged into archive", "archive", archivePath, "entries", len(entries), "renamed", renamed)
	} else {
		if err := s.archives.Create(archivePath, entries); err != nil {
			return fmt.Errorf("creating archive: %w", err)
		}
		result.Created = append(result.Created, archivePath)
		s.logger.Info("created archive", "archive", archivePath, "entries", len(entries))
	}
	result.FilesFolded += len(entries)

	if err := s.staging.Discard(b); err != nil {
		return fmt.Errorf("removing bucket: %w", err)
	}
	return nil
}

// merge appends entries to an existing archive, renaming any entry whose name
// is already taken. Returns how many entries were renamed.
func (s *Service) merge(archivePath string, entries []ArchiveEntry) (int, error) {
	w, err := s.archives.Open(archivePath)
	if err != nil {
		return 0, fmt.Errorf("opening archive: %w", err)
	}

	taken := NewNameSet(w.Names())
	renamed := 0
	for _, e := range entries {
		name := ResolveName(taken, e.Name)
		if name != e.Name {
			renamed++
			s.logger.Debug("entry name taken, renaming", "archive", archivePath, "name", e.Name, "stored_as", name)
		}
		if err := w.Add(ArchiveEntry{Name: name, Source: e.Source}); err != nil {
			w.Abort()
			return renamed, fmt.Errorf("adding %s: %w", e.Name, err)
		}
		taken.Add(name)
	}

	if err := w.Commit(); err != nil {
		return renamed, fmt.Errorf("committing archive: %w", err)
	}
	return renamed, nil
}
