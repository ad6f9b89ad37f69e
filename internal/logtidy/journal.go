package logtidy

import "time"

// DeletionReason tells why a run deleted an archive.
type DeletionReason string

const (
	DeletionReclaim DeletionReason = "reclaim"
	DeletionExpire  DeletionReason = "expire"
)

// Deletion records one irreversible archive deletion.
type Deletion struct {
	Path   string
	Reason DeletionReason
}

// RunRecord is the journal's view of a completed run.
type RunRecord struct {
	ID                string
	Location          string
	StartedAt         time.Time
	FinishedAt        time.Time
	Status            string // "success" or "error"
	Error             string
	ReclaimedBytes    int64
	ArchivesReclaimed int
	FilesArchived     int
	FilesSkipped      int
	ArchivesCreated   int
	ArchivesMerged    int
	ArchivesExpired   int
	Deletions         []Deletion
}

// Journal is an audit log of runs. The retention phases never read it.
type Journal interface {
	// RecordRun stores a run and its deletions.
	RecordRun(run *RunRecord) error

	// RecentRuns returns up to limit runs, newest first. Deletions are not loaded.
	RecentRuns(limit int) ([]*RunRecord, error)

	// DeletionsForRun returns the deletions recorded for a run.
	DeletionsForRun(runID string) ([]Deletion, error)

	// Close closes the journal.
	Close() error
}
