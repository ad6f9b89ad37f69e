// Package metrics exposes the outcome of a run as Prometheus gauges.
//
// logtidy is not a long-running process, so metrics are not served over
// HTTP. After each run they are written to a file in the node_exporter
// textfile collector format.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/samber/lo"

	"logtidy/internal/logtidy"
)

const namespace = "logtidy"

// RunMetrics holds the gauges describing the last run per log location.
type RunMetrics struct {
	registry *prometheus.Registry

	filesArchived     *prometheus.GaugeVec
	filesSkipped      *prometheus.GaugeVec
	filesUnarchivable *prometheus.GaugeVec
	archivesCreated   *prometheus.GaugeVec
	archivesMerged    *prometheus.GaugeVec
	archivesReclaimed *prometheus.GaugeVec
	archivesExpired   *prometheus.GaugeVec
	reclaimedBytes    *prometheus.GaugeVec
	lastRunTimestamp  *prometheus.GaugeVec
	lastRunDuration   *prometheus.GaugeVec
	lastRunSuccess    *prometheus.GaugeVec
}

// NewRunMetrics creates the run gauges and registers them with registry.
// If registry is nil, a new one is created.
func NewRunMetrics(registry *prometheus.Registry) *RunMetrics {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	gauge := func(name, help string) *prometheus.GaugeVec {
		return prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      name,
			Help:      help,
		}, []string{"location"})
	}

	m := &RunMetrics{
		registry:          registry,
		filesArchived:     gauge("files_archived", "Log files written into archives by the last run."),
		filesSkipped:      gauge("files_skipped_busy", "Log files skipped by the last run because they were in use."),
		filesUnarchivable: gauge("files_unarchivable", "Log files the last run could not archive: unwritable, or a file sits at their bucket path."),
		archivesCreated:   gauge("archives_created", "Daily archives created by the last run."),
		archivesMerged:    gauge("archives_merged", "Existing daily archives extended by the last run."),
		archivesReclaimed: gauge("archives_reclaimed", "Archives deleted by the last run to free disk space."),
		archivesExpired:   gauge("archives_expired", "Archives deleted by the last run for exceeding retention."),
		reclaimedBytes:    gauge("reclaimed_bytes", "Bytes freed by the last run's space reclaimer."),
		lastRunTimestamp:  gauge("last_run_timestamp_seconds", "Unix time the last run finished."),
		lastRunDuration:   gauge("last_run_duration_seconds", "Wall time of the last run."),
		lastRunSuccess:    gauge("last_run_success", "1 if the last run completed without error, 0 otherwise."),
	}

	registry.MustRegister(
		m.filesArchived,
		m.filesSkipped,
		m.filesUnarchivable,
		m.archivesCreated,
		m.archivesMerged,
		m.archivesReclaimed,
		m.archivesExpired,
		m.reclaimedBytes,
		m.lastRunTimestamp,
		m.lastRunDuration,
		m.lastRunSuccess,
	)

	return m
}

// Registry returns the registry the gauges are registered with.
func (m *RunMetrics) Registry() *prometheus.Registry {
	return m.registry
}

// Observe sets every gauge from report. Phases that did not run report zero.
func (m *RunMetrics) Observe(report *logtidy.RunReport) {
	loc := report.Location

	var archived, skipped, unarchivable, created, merged, reclaimed, expired int
	var freed uint64
	if r := report.Reclaim; r != nil {
		reclaimed = len(r.Deleted)
		freed = r.Freed
	}
	if a := report.Archive; a != nil {
		archived = a.FilesFolded
		skipped = len(a.SkippedBusy)
		unarchivable = len(a.SkippedUnwritable) + len(a.SkippedBlocked)
		created = len(a.Created)
		merged = len(a.Merged)
	}
	if e := report.Expire; e != nil {
		expired = len(e.Expired)
	}

	m.filesArchived.WithLabelValues(loc).Set(float64(archived))
	m.filesSkipped.WithLabelValues(loc).Set(float64(skipped))
	m.filesUnarchivable.WithLabelValues(loc).Set(float64(unarchivable))
	m.archivesCreated.WithLabelValues(loc).Set(float64(created))
	m.archivesMerged.WithLabelValues(loc).Set(float64(merged))
	m.archivesReclaimed.WithLabelValues(loc).Set(float64(reclaimed))
	m.archivesExpired.WithLabelValues(loc).Set(float64(expired))
	m.reclaimedBytes.WithLabelValues(loc).Set(float64(freed))
	m.lastRunTimestamp.WithLabelValues(loc).Set(float64(report.FinishedAt.Unix()))
	m.lastRunDuration.WithLabelValues(loc).Set(report.FinishedAt.Sub(report.StartedAt).Seconds())
	m.lastRunSuccess.WithLabelValues(loc).Set(lo.Ternary(report.Succeeded(), 1.0, 0.0))
}

// WriteTextfile writes the current gauge values to path in the Prometheus
// text format. The file is replaced atomically.
func (m *RunMetrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("writing metrics textfile: %w", err)
	}
	return nil
}
