package logtidy

import (
	"errors"
	"fmt"
)

var (
	// ErrLocationRequired is returned when no target directory is given.
	ErrLocationRequired = errors.New("log location is required")

	// ErrLocationNotDirectory is returned when the target is not a directory.
	ErrLocationNotDirectory = errors.New("log location is not a directory")

	// ErrNotWritable is returned by a lock probe on a file this process may
	// not open for writing.
	ErrNotWritable = errors.New("file is not writable")

	// ErrBucketBlocked is returned by staging when a non-directory already
	// occupies the bucket's path.
	ErrBucketBlocked = errors.New("bucket path is occupied by a file")
)

// Options configures one run.
type Options struct {
	// RunID identifies the run in reports and the journal. A new ID is
	// generated when empty.
	RunID string

	// Location is the directory to operate on.
	Location string

	// LowDiskBytes is the free-space floor. 0 disables the Space Reclaimer.
	LowDiskBytes uint64

	// ArchiveAgeDays is the minimum age of a file before it is archived.
	// 0 disables the age filter so every eligible file is archived.
	ArchiveAgeDays int

	// ExpireAfterDays is the archive retention period. 0 disables the Expirer.
	ExpireAfterDays int
}

// Service runs the three retention phases against one directory.
type Service struct {
	fsys     Filesystem
	staging  StagingArea
	archives ArchiveStore
	logger   Logger
	clock    Clock
	idgen    IDGenerator
}

// NewService creates a new Service with the provided dependencies.
func NewService(fsys Filesystem, staging StagingArea, archives ArchiveStore, logger Logger, clock Clock, idgen IDGenerator) *Service {
	return &Service{
		fsys:     fsys,
		staging:  staging,
		archives: archives,
		logger:   logger,
		clock:    clock,
		idgen:    idgen,
	}
}

// Run executes the Space Reclaimer, Archiver and Expirer in that order.
//
// The current time is read once and shared by the Archiver and the Expirer.
// The first fatal error stops the run: later phases are skipped so they never
// act on a directory left half-processed. The report is returned in every
// case, with Err set on failure.
func (s *Service) Run(opts Options) (*RunReport, error) {
	now := s.clock.Now()
	id := opts.RunID
	if id == "" {
		id = s.idgen.New()
	}
	report := &RunReport{
		ID:        id,
		Location:  opts.Location,
		StartedAt: now,
	}

	err := s.run(opts, report)
	report.FinishedAt = s.clock.Now()
	report.Err = err
	if err != nil {
		s.logger.Error("run failed", "location", opts.Location, "error", err)
		return report, err
	}

	s.logger.Info("run complete",
		"location", opts.Location,
		"reclaimed_bytes", report.Reclaim.Freed,
		"archived", report.Archive.FilesFolded,
		"skipped_busy", len(report.Archive.SkippedBusy),
		"skipped_unwritable", len(report.Archive.SkippedUnwritable),
		"skipped_blocked", len(report.Archive.SkippedBlocked),
		"expired", len(report.Expire.Expired),
	)
	return report, nil
}

func (s *Service) run(opts Options, report *RunReport) error {
	if opts.Location == "" {
		return ErrLocationRequired
	}

	dir, err := s.fsys.Resolve(opts.Location)
	if err != nil {
		return fmt.Errorf("resolving log location: %w", err)
	}
	if !dir.IsDir() {
		return fmt.Errorf("%w: %s", ErrLocationNotDirectory, dir.String())
	}

	now := report.StartedAt

	report.Reclaim, err = s.Reclaim(dir, opts.LowDiskBytes)
	if err != nil {
		return fmt.Errorf("reclaiming space: %w", err)
	}

	report.Archive, err = s.Archive(dir, opts.ArchiveAgeDays, now)
	if err != nil {
		return fmt.Errorf("archiving: %w", err)
	}

	report.Expire, err = s.Expire(dir, opts.ExpireAfterDays, now)
	if err != nil {
		return fmt.Errorf("expiring archives: %w", err)
	}

	return nil
}
