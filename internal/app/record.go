package app

import (
	"logtidy/internal/logtidy"
)

// Run statuses stored in the journal.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// NewRunRecord flattens a run report into the row stored by the journal.
// Deletions are listed reclaimed archives first, then expired ones.
func NewRunRecord(report *logtidy.RunReport) *logtidy.RunRecord {
	rec := &logtidy.RunRecord{
		ID:         report.ID,
		Location:   report.Location,
		StartedAt:  report.StartedAt,
		FinishedAt: report.FinishedAt,
		Status:     StatusSuccess,
	}
	if report.Err != nil {
		rec.Status = StatusError
		rec.Error = report.Err.Error()
	}

	if r := report.Reclaim; r != nil {
		rec.ReclaimedBytes = int64(r.Freed)
		rec.ArchivesReclaimed = len(r.Deleted)
		for _, p := range r.Deleted {
			rec.Deletions = append(rec.Deletions, logtidy.Deletion{Path: p, Reason: logtidy.DeletionReclaim})
		}
	}
	if a := report.Archive; a != nil {
		rec.FilesArchived = a.FilesFolded
		rec.FilesSkipped = len(a.SkippedBusy)
		rec.ArchivesCreated = len(a.Created)
		rec.ArchivesMerged = len(a.Merged)
	}
	if e := report.Expire; e != nil {
		rec.ArchivesExpired = len(e.Expired)
		for _, p := range e.Expired {
			rec.Deletions = append(rec.Deletions, logtidy.Deletion{Path: p, Reason: logtidy.DeletionExpire})
		}
	}

	return rec
}
