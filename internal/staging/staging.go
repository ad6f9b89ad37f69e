// Package staging implements day-bucket staging: log files are moved into a
// directory named after their last-modified day, and the directory is later
// folded into the archive of the same name.
//
// Directory structure:
//
//	<log location>/
//	  632024/        (bucket for June 3rd 2024)
//	    app.log
//	    1-app.log    (renamed: app.log was already staged)
//	  632024.zip     (archive the bucket folds into)
package staging

import (
	"errors"
	"fmt"
	iofs "io/fs"
	"path"
	"path/filepath"
	"sort"

	"logtidy/internal/logtidy"
)

// DayBucketStaging stages files into day-bucket directories directly under
// the log location.
type DayBucketStaging struct {
	fsys logtidy.Filesystem
}

// NewDayBucketStaging creates a staging area backed by fsys.
func NewDayBucketStaging(fsys logtidy.Filesystem) *DayBucketStaging {
	return &DayBucketStaging{fsys: fsys}
}

// Stage moves file into root/key, renaming it if the bucket already holds a
// file of the same name.
func (s *DayBucketStaging) Stage(root *logtidy.Path, file *logtidy.Path, key string) (string, error) {
	if !logtidy.IsBucketName(key) {
		return "", fmt.Errorf("invalid bucket key: %q", key)
	}

	bucketDir := filepath.Join(root.String(), key)
	dir, err := s.fsys.Resolve(bucketDir)
	switch {
	case errors.Is(err, iofs.ErrNotExist):
		if err := s.fsys.MkdirAll(bucketDir); err != nil {
			return "", fmt.Errorf("creating bucket: %w", err)
		}
		if dir, err = s.fsys.Resolve(bucketDir); err != nil {
			return "", fmt.Errorf("resolving bucket: %w", err)
		}
	case err != nil:
		return "", fmt.Errorf("resolving bucket: %w", err)
	}
	if !dir.IsDir() {
		return "", fmt.Errorf("%w: %s", logtidy.ErrBucketBlocked, bucketDir)
	}

	existing, err := s.fsys.List(dir)
	if err != nil {
		return "", fmt.Errorf("listing bucket: %w", err)
	}
	taken := make(logtidy.NameSet, len(existing))
	for _, p := range existing {
		taken.Add(p.Name())
	}

	name := logtidy.ResolveName(taken, file.Name())
	if err := s.fsys.Move(file, filepath.Join(bucketDir, name)); err != nil {
		return "", err
	}
	return name, nil
}

// Buckets returns every directory under root whose name is a bucket key.
func (s *DayBucketStaging) Buckets(root *logtidy.Path) ([]*logtidy.Bucket, error) {
	entries, err := s.fsys.List(root)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", root.String(), err)
	}

	var buckets []*logtidy.Bucket
	for _, p := range entries {
		if p.IsDir() && logtidy.IsBucketName(p.Name()) {
			buckets = append(buckets, &logtidy.Bucket{Key: p.Name(), Dir: p})
		}
	}

	sort.Slice(buckets, func(i, j int) bool { return buckets[i].Key < buckets[j].Key })
	return buckets, nil
}

// Contents walks a bucket and returns its files as archive entries named by
// their slash-separated path relative to the bucket, sorted by name.
func (s *DayBucketStaging) Contents(bucket *logtidy.Bucket) ([]logtidy.ArchiveEntry, error) {
	var entries []logtidy.ArchiveEntry
	if err := s.walk(bucket.Dir, "", &entries); err != nil {
		return nil, err
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries, nil
}

func (s *DayBucketStaging) walk(dir *logtidy.Path, prefix string, out *[]logtidy.ArchiveEntry) error {
	children, err := s.fsys.List(dir)
	if err != nil {
		return fmt.Errorf("listing %s: %w", dir.String(), err)
	}

	for _, c := range children {
		name := path.Join(prefix, c.Name())
		if c.IsDir() {
			if err := s.walk(c, name, out); err != nil {
				return err
			}
			continue
		}
		*out = append(*out, logtidy.ArchiveEntry{Name: name, Source: c.String()})
	}
	return nil
}

// Discard deletes the bucket directory and its contents.
func (s *DayBucketStaging) Discard(bucket *logtidy.Bucket) error {
	if err := s.fsys.RemoveAll(bucket.Dir); err != nil {
		return fmt.Errorf("removing bucket %s: %w", bucket.Key, err)
	}
	return nil
}

// Compile-time check that DayBucketStaging implements logtidy.StagingArea interface
var _ logtidy.StagingArea = (*DayBucketStaging)(nil)
