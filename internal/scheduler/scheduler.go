package scheduler

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"ReversalScanner/internal/logger"
	"ReversalScanner/internal/model"
	"ReversalScanner/internal/notifier"
	"ReversalScanner/internal/recorder"
	"ReversalScanner/internal/scanner"
)

const sendRetries = 3

// Runner executes one scan of a kind.
type Runner interface {
	Run(ctx context.Context, kind model.ScanKind) (*scanner.Result, error)
}

// Job binds a scan kind to a cron spec (with seconds).
type Job struct {
	Kind model.ScanKind
	Spec string
}

// Scheduler manages all cron tasks. Scans never overlap.
type Scheduler struct {
	Cron     *cron.Cron
	Runner   Runner
	Notifier notifier.Notifier
	Recorder recorder.Recorder
	Ctx      context.Context

	running sync.Mutex
}

// NewScheduler creates a new Scheduler whose cron specs are read in loc.
func NewScheduler(ctx context.Context, runner Runner, n notifier.Notifier, rec recorder.Recorder, loc *time.Location) *Scheduler {
	if loc == nil {
		loc = time.Local
	}
	return &Scheduler{
		Cron:     cron.New(cron.WithSeconds(), cron.WithLocation(loc)),
		Runner:   runner,
		Notifier: n,
		Recorder: rec,
		Ctx:      ctx,
	}
}

// RegisterAll registers one cron entry per job. Jobs with an empty spec are skipped.
func (s *Scheduler) RegisterAll(jobs []Job) error {
	for _, j := range jobs {
		if j.Spec == "" {
			continue
		}
		kind := j.Kind
		if _, err := s.Cron.AddFunc(j.Spec, func() { s.scheduled(kind) }); err != nil {
			return fmt.Errorf("register %s task: %w", strings.ToLower(string(kind)), err)
		}
		logger.Info("task registered", zap.String("kind", string(kind)), zap.String("cron", j.Spec))
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	logger.Info("scheduler started")
}

// Stop stops the cron scheduler and waits for a running scan to finish.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	logger.Info("scheduler stopped")
}

func (s *Scheduler) scheduled(kind model.ScanKind) {
	s.running.Lock()
	defer s.running.Unlock()
	_, _ = s.run(kind)
}

// RunNow executes a scan immediately, waiting for any scan already in progress.
func (s *Scheduler) RunNow(kind model.ScanKind) (*scanner.Result, error) {
	s.running.Lock()
	defer s.running.Unlock()
	return s.run(kind)
}

func (s *Scheduler) run(kind model.ScanKind) (*scanner.Result, error) {
	logger.Info("running scan task", zap.String("kind", string(kind)))
	res, err := s.Runner.Run(s.Ctx, kind)
	if err != nil {
		logger.Error("scan task failed", zap.String("kind", string(kind)), zap.Error(err))
		s.trySend(notifier.FormatFailure(kind, err))
		return res, err
	}
	s.trySend(notifier.FormatScanReport(res.Report, res.Path))
	return res, nil
}

var commands = map[string]model.ScanKind{
	"/scan":     model.ScanCandlestick,
	"综合扫描":      model.ScanCandlestick,
	"/shadow":   model.ScanShadow,
	"隔山打牛":      model.ScanShadow,
	"/oversold": model.ScanOversold,
	"超跌精选":      model.ScanOversold,
	"/track":    model.ScanTrack,
	"回踩追踪":      model.ScanTrack,
}

// HandleCommand processes a user command and returns a reply.
// Scan commands reply through the notifier once the scan is done.
func (s *Scheduler) HandleCommand(_ context.Context, command string) string {
	command = strings.TrimSpace(command)
	// "/scan@SomeBot" in group chats
	if i := strings.IndexByte(command, '@'); i > 0 && strings.HasPrefix(command, "/") {
		command = command[:i]
	}

	if kind, ok := commands[command]; ok {
		if !s.running.TryLock() {
			return "⏳ 已有扫描正在运行，请稍后再试"
		}
		go func() {
			defer s.running.Unlock()
			_, _ = s.run(kind)
		}()
		return fmt.Sprintf("🔍 %s已开始", notifier.Title(kind))
	}

	switch command {
	case "/history", "扫描记录":
		runs, err := s.Recorder.RecentRuns("", 10)
		if err != nil {
			logger.Error("read run history", zap.Error(err))
			return "❌ 读取扫描记录失败"
		}
		return notifier.FormatRunHistory(runs)
	default:
		return notifier.HelpText
	}
}

func (s *Scheduler) trySend(text string) {
	if err := s.Notifier.SendWithRetry(s.Ctx, text, sendRetries); err != nil {
		logger.Error("send notification", zap.Error(err))
	}
}
