package recorder

import (
	"time"

	"ReversalScanner/internal/model"
)

// RunRecord is one finished scan run together with where its report was written.
type RunRecord struct {
	Report     *model.ScanReport
	ReportPath string
	Duration   time.Duration
}

// RunSummary is a stored scan run as read back from the archive.
type RunSummary struct {
	RunID      string
	Kind       model.ScanKind
	RunAt      time.Time
	Universe   int
	Matched    int
	NoMatch    int
	Skipped    int
	ReportPath string
}

// Recorder archives scan runs for later review.
type Recorder interface {
	RecordScan(rec *RunRecord) error
	// RecentRuns returns up to limit runs of kind, newest first. An empty kind matches all.
	RecentRuns(kind model.ScanKind, limit int) ([]RunSummary, error)
	Close() error
}
