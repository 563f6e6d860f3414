package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
	"go.uber.org/zap"

	"ReversalScanner/internal/logger"
	"ReversalScanner/internal/model"
	"ReversalScanner/internal/notifier"
	"ReversalScanner/internal/scheduler"
)

// scanCmd runs one scan and prints the ranked results.
type scanCmd struct {
	name     string
	kind     model.ScanKind
	synopsis string

	notify  bool
	workers int
	format  string
	policy  string
}

func newScanCmd(name string, kind model.ScanKind, synopsis string) *scanCmd {
	return &scanCmd{name: name, kind: kind, synopsis: synopsis}
}

func (c *scanCmd) Name() string     { return c.name }
func (c *scanCmd) Synopsis() string { return c.synopsis }
func (c *scanCmd) Usage() string {
	return fmt.Sprintf("%s [-notify] [-workers n] [-format csv|json|parquet] [-policy last|first]:\n  %s.\n", c.name, c.synopsis)
}

func (c *scanCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.notify, "notify", false, "push the summary through the configured notifier")
	f.IntVar(&c.workers, "workers", 0, "worker pool size (0 = config value)")
	f.StringVar(&c.format, "format", "", "report file format (default from config)")
	if c.kind == model.ScanCandlestick || c.kind == model.ScanShadow {
		f.StringVar(&c.policy, "policy", "", "shrink-candle policy for the shadow mountain rule")
	}
}

func (c *scanCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitUsageError
	}
	if c.workers > 0 {
		cfg.Scan.Workers = c.workers
	}
	if c.format != "" {
		cfg.Output.Format = c.format
	}
	if c.policy != "" {
		cfg.Scan.ShrinkPolicy = c.policy
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitUsageError
	}

	a, err := newApp(cfg)
	if err != nil {
		logger.Error("setup", zap.Error(err))
		return subcommands.ExitFailure
	}
	defer a.Close()

	res, err := a.service.Run(ctx, c.kind)
	if err != nil {
		logger.Error("scan failed", zap.String("kind", string(c.kind)), zap.Error(err))
		if c.notify {
			_ = a.notifier.SendWithRetry(ctx, notifier.FormatFailure(c.kind, err), 3)
		}
		return subcommands.ExitFailure
	}

	fmt.Println(renderReport(res.Report))
	fmt.Printf("report: %s\n", res.Path)
	if c.notify {
		if err := a.notifier.SendWithRetry(ctx, notifier.FormatScanReport(res.Report, res.Path), 3); err != nil {
			logger.Error("send notification", zap.Error(err))
		}
	}
	return subcommands.ExitSuccess
}

// historyCmd lists archived runs.
type historyCmd struct {
	kind  string
	limit int
}

func (*historyCmd) Name() string     { return "history" }
func (*historyCmd) Synopsis() string { return "list recent archived scan runs" }
func (*historyCmd) Usage() string {
	return "history [-kind KIND] [-limit n]:\n  List recent scan runs from the archive.\n"
}

func (h *historyCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&h.kind, "kind", "", "CANDLESTICK, SHADOW, OVERSOLD or TRACK (default all)")
	f.IntVar(&h.limit, "limit", 10, "number of runs")
}

func (h *historyCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := setup()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	defer a.Close()

	runs, err := a.recorder.RecentRuns(model.ScanKind(h.kind), h.limit)
	if err != nil {
		logger.Error("read history", zap.Error(err))
		return subcommands.ExitFailure
	}
	fmt.Println(renderHistory(runs))
	return subcommands.ExitSuccess
}

// serveCmd runs the cron scheduler and the Telegram command poller until interrupted.
type serveCmd struct {
	runOnStart string
}

func (*serveCmd) Name() string     { return "serve" }
func (*serveCmd) Synopsis() string { return "run scheduled scans and answer chat commands" }
func (*serveCmd) Usage() string {
	return "serve [-run-on-start KIND]:\n  Run the scheduler until SIGINT/SIGTERM.\n"
}

func (s *serveCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&s.runOnStart, "run-on-start", os.Getenv("RUN_ON_START"), "scan kind to run once at startup")
}

func (s *serveCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := setup()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	defer a.Close()
	logger.Info("ReversalScanner starting")

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sched := scheduler.NewScheduler(ctx, a.service, a.notifier, a.recorder, a.service.Location)
	sc := a.cfg.Schedule
	if err := sched.RegisterAll([]scheduler.Job{
		{Kind: model.ScanCandlestick, Spec: sc.CandlestickCron},
		{Kind: model.ScanShadow, Spec: sc.ShadowCron},
		{Kind: model.ScanOversold, Spec: sc.OversoldCron},
		{Kind: model.ScanTrack, Spec: sc.TrackCron},
	}); err != nil {
		logger.Error("register cron tasks", zap.Error(err))
		return subcommands.ExitFailure
	}
	sched.Start()
	defer sched.Stop()

	if a.telegram != nil {
		go a.telegram.StartPolling(ctx, sched.HandleCommand)
		logger.Info("telegram polling started")
	}

	if s.runOnStart != "" {
		kind := model.ScanKind(s.runOnStart)
		logger.Info("run-on-start enabled", zap.String("kind", string(kind)))
		go func() { _, _ = sched.RunNow(kind) }()
	}

	logger.Info("ReversalScanner is running, press Ctrl+C to stop")
	<-ctx.Done()

	logger.Info("shutdown signal received, stopping")
	cancel()
	return subcommands.ExitSuccess
}
