package logtidy

import "time"

// ReclaimResult describes one Space Reclaimer pass.
type ReclaimResult struct {
	Floor      uint64   // requested free-space floor in bytes; 0 when disabled
	FreeBefore uint64   // free bytes reported before any deletion
	Deficit    uint64   // Floor - FreeBefore, or 0 when already satisfied
	Freed      uint64   // bytes released by deleted archives
	Deleted    []string // archives deleted, oldest first
	Satisfied  bool     // whether Freed covers Deficit
}

// ArchiveResult describes one Archiver pass.
type ArchiveResult struct {
	Staged            int      // files moved into day buckets this pass
	SkippedBusy       []string // files skipped because the lock probe failed
	SkippedUnwritable []string // files skipped because they cannot be opened for writing
	SkippedBlocked    []string // files whose bucket path is taken by a regular file
	RemovedTemps      []string // leftover temp archives from an interrupted commit
	Created           []string // archives created
	Merged            []string // existing archives that received new entries
	Renamed           int      // entries stored under a resolver-produced name
	FilesFolded       int      // entries written to archives, including resumed buckets
}

// ExpireResult describes one Expirer pass.
type ExpireResult struct {
	Expired []string // archives deleted for being past retention
}

// RunReport is the outcome of one invocation across all three phases.
// Phases that did not run are nil.
type RunReport struct {
	ID         string
	Location   string
	StartedAt  time.Time
	FinishedAt time.Time
	Reclaim    *ReclaimResult
	Archive    *ArchiveResult
	Expire     *ExpireResult
	Err        error
}

// Succeeded reports whether the run completed without a fatal error.
func (r *RunReport) Succeeded() bool {
	return r.Err == nil
}
