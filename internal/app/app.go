package app

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"logtidy/internal/archive"
	"logtidy/internal/config"
	"logtidy/internal/fs"
	"logtidy/internal/journal"
	"logtidy/internal/logtidy"
	"logtidy/internal/metrics"
	"logtidy/internal/staging"
)

// ErrJournalDisabled is returned by journal queries when journaling is off.
var ErrJournalDisabled = errors.New("run journal is disabled")

// App is the application layer between the CLI and the retention Service.
// It constructs all dependencies from config, records every run in the
// journal and metrics textfile, and releases resources on Close.
type App struct {
	cfg      *config.Config
	archives logtidy.ArchiveStore
	journal  logtidy.Journal // nil when journaling is disabled
	metrics  *metrics.RunMetrics
	service  *logtidy.Service
	logger   *slogAdapter
	runID    string
	logFile  *os.File
}

// NewApp creates a fully wired App from the given config.
// The caller must call Close when done.
func NewApp(cfg *config.Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	level, err := cfg.Level()
	if err != nil {
		return nil, err
	}

	fsys := fs.NewOSFilesystem(cfg.Retention.Ignore)
	sa := staging.NewDayBucketStaging(fsys)

	archives, err := archive.NewArchiveStoreFromConfig(cfg.Archive)
	if err != nil {
		return nil, fmt.Errorf("creating archive store: %w", err)
	}

	j, err := journal.NewJournalFromConfig(cfg.Journal)
	if err != nil {
		return nil, fmt.Errorf("creating journal: %w", err)
	}

	idgen := logtidy.UUIDGenerator{}
	runID := idgen.New()
	l, logFile, err := newLogger(cfg.LogDir, runID, level)
	if err != nil {
		if j != nil {
			j.Close()
		}
		return nil, fmt.Errorf("creating logger: %w", err)
	}
	logger := &slogAdapter{l: l}

	svc := logtidy.NewService(fsys, sa, archives, logger, logtidy.RealClock{}, idgen)

	return &App{
		cfg:      cfg,
		archives: archives,
		journal:  j,
		metrics:  metrics.NewRunMetrics(nil),
		service:  svc,
		logger:   logger,
		runID:    runID,
		logFile:  logFile,
	}, nil
}

// RunID returns the identifier used for this invocation's run.
func (a *App) RunID() string {
	return a.runID
}

// Run executes the retention phases with opts, then records the outcome in
// the journal and the metrics textfile. The report is returned even when the
// run fails. A recording failure is reported only if the run itself succeeded.
func (a *App) Run(opts logtidy.Options) (*logtidy.RunReport, error) {
	opts.RunID = a.runID
	report, runErr := a.service.Run(opts)

	recordErr := a.record(report)
	if recordErr != nil {
		a.logger.Error("recording run", "error", recordErr)
	}

	if runErr != nil {
		return report, runErr
	}
	return report, recordErr
}

// record writes report to the journal and metrics textfile when enabled.
func (a *App) record(report *logtidy.RunReport) error {
	var firstErr error

	if a.journal != nil {
		if err := a.journal.RecordRun(NewRunRecord(report)); err != nil {
			firstErr = fmt.Errorf("writing journal: %w", err)
		}
	}

	if path := a.cfg.Metrics.Textfile; path != "" {
		a.metrics.Observe(report)
		if err := a.metrics.WriteTextfile(path); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	return firstErr
}

// History returns the most recent runs recorded in the journal.
func (a *App) History(limit int) ([]*logtidy.RunRecord, error) {
	if a.journal == nil {
		return nil, ErrJournalDisabled
	}
	return a.journal.RecentRuns(limit)
}

// Deletions returns the archives deleted by a recorded run.
func (a *App) Deletions(runID string) ([]logtidy.Deletion, error) {
	if a.journal == nil {
		return nil, ErrJournalDisabled
	}
	return a.journal.DeletionsForRun(runID)
}

// ListArchive resolves the given path and returns the entry names of the archive.
func (a *App) ListArchive(rawPath string) ([]string, error) {
	absPath, err := filepath.Abs(rawPath)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}
	if !logtidy.IsArchiveName(absPath) {
		return nil, fmt.Errorf("not an archive: %s", absPath)
	}
	return a.archives.List(absPath)
}

// Close closes the journal and the log file. The first error is returned.
func (a *App) Close() error {
	var firstErr error

	if a.journal != nil {
		if err := a.journal.Close(); err != nil {
			firstErr = fmt.Errorf("closing journal: %w", err)
		}
	}

	if a.logFile != nil {
		if err := a.logFile.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("closing log file: %w", err)
		}
	}

	return firstErr
}
