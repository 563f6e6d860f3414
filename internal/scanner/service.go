package scanner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"ReversalScanner/internal/collector"
	"ReversalScanner/internal/config"
	"ReversalScanner/internal/logger"
	"ReversalScanner/internal/model"
	"ReversalScanner/internal/recorder"
	"ReversalScanner/internal/report"
	"ReversalScanner/internal/saver"
	"ReversalScanner/internal/strategy"
)

// ErrUnknownKind is returned for a scan kind with no configured evaluator.
var ErrUnknownKind = errors.New("unknown scan kind")

// Service runs a complete scan: universe, evaluation, ranking, report file and archive.
type Service struct {
	Loader       collector.Loader
	Orchestrator *Orchestrator
	Saver        saver.ReportSaver
	Recorder     recorder.Recorder

	NamesFile    string
	OutputDir    string
	SourcePrefix string // report prefix the tracker reads its shortlist from
	Location     *time.Location

	Evaluators map[model.ScanKind]strategy.Evaluator
	Filters    map[model.ScanKind]UniverseFilter

	Now func() time.Time
}

// Result is the outcome of one Service run.
type Result struct {
	Report *model.ScanReport
	Path   string
}

// NewService wires a Service from configuration.
func NewService(cfg *config.Config, loader collector.Loader, rec recorder.Recorder) (*Service, error) {
	s := saver.NewReportSaver(cfg.Output.Format)
	if s == nil {
		return nil, fmt.Errorf("unsupported output format %q", cfg.Output.Format)
	}
	loc := time.Local
	if cfg.Output.Timezone != "" {
		l, err := time.LoadLocation(cfg.Output.Timezone)
		if err != nil {
			return nil, fmt.Errorf("load timezone: %w", err)
		}
		loc = l
	}

	policy := cfg.Policy()
	marker := cfg.Scan.RiskMarker
	return &Service{
		Loader:       loader,
		Orchestrator: NewOrchestrator(loader, cfg.Scan.Workers),
		Saver:        s,
		Recorder:     rec,
		NamesFile:    cfg.Data.NamesFile,
		OutputDir:    cfg.Output.Dir,
		SourcePrefix: cfg.Tracker.SourcePrefix,
		Location:     loc,
		Evaluators: map[model.ScanKind]strategy.Evaluator{
			model.ScanCandlestick: strategy.NewCandlestickChain(policy),
			model.ScanShadow:      strategy.NewShadowChain(policy),
			model.ScanOversold:    strategy.NewOversoldFilter(cfg.Oversold),
			model.ScanTrack:       strategy.NewTracker(cfg.Tracker.TrackerConfig),
		},
		Filters: map[model.ScanKind]UniverseFilter{
			model.ScanCandlestick: {RiskMarker: marker, ExcludePrefixes: cfg.Scan.CandlestickExcludePrefixes},
			model.ScanShadow:      {RiskMarker: marker, ExcludePrefixes: cfg.Scan.ShadowExcludePrefixes},
			model.ScanOversold:    {RiskMarker: marker, ExcludePrefixes: cfg.Scan.OversoldExcludePrefixes},
		},
		Now: time.Now,
	}, nil
}

func (s *Service) now() time.Time {
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	t := now()
	if s.Location != nil {
		t = t.In(s.Location)
	}
	return t
}

// Run executes one scan of kind. The universe is resolved before any instrument
// is evaluated; failing to resolve it aborts the run.
func (s *Service) Run(ctx context.Context, kind model.ScanKind) (*Result, error) {
	eval, ok := s.Evaluators[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownKind, kind)
	}
	clock := time.Now()
	started := s.now()

	var (
		universe []model.Instrument
		err      error
	)
	if kind == model.ScanTrack {
		universe, err = s.shortlist(started)
	} else {
		universe, err = s.universe(kind)
	}
	if err != nil {
		return nil, err
	}
	logger.Info("scan started", zap.String("kind", string(kind)), zap.Int("universe", len(universe)))

	outcomes := s.Orchestrator.Run(ctx, eval, universe)
	rep := report.Aggregate(kind, started, universe, outcomes)
	elapsed := time.Since(clock)

	path, err := saver.WriteReport(s.Saver, s.OutputDir, rep)
	if err != nil {
		return &Result{Report: rep}, fmt.Errorf("write report: %w", err)
	}

	if s.Recorder != nil {
		if err := s.Recorder.RecordScan(&recorder.RunRecord{Report: rep, ReportPath: path, Duration: elapsed}); err != nil {
			logger.Error("record scan", zap.String("run_id", rep.RunID), zap.Error(err))
		}
	}

	logger.Info("scan finished",
		zap.String("kind", string(kind)),
		zap.String("run_id", rep.RunID),
		zap.Int("matched", report.Matched(rep)),
		zap.Int("no_match", rep.NoMatch),
		zap.Int("skipped", len(rep.Skips)),
		zap.Duration("elapsed", elapsed),
		zap.String("report", path))
	return &Result{Report: rep, Path: path}, nil
}

func (s *Service) universe(kind model.ScanKind) ([]model.Instrument, error) {
	names, err := collector.LoadNames(s.NamesFile)
	if err != nil {
		return nil, err
	}
	kept := s.Filters[kind].Apply(names)
	available, err := collector.Available(s.Loader, kept)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", collector.ErrNoUniverse, err)
	}
	return available, nil
}

func (s *Service) shortlist(at time.Time) ([]model.Instrument, error) {
	path, err := saver.LatestReport(s.OutputDir, s.SourcePrefix, at)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", collector.ErrNoUniverse, err)
	}
	rows, err := saver.ReadReport(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", collector.ErrNoUniverse, err)
	}
	logger.Info("tracking shortlist", zap.String("source", path), zap.Int("codes", len(rows)))
	return saver.Shortlist(rows), nil
}
