package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	_ "time/tzdata"

	"github.com/google/subcommands"

	"ReversalScanner/internal/logger"
	"ReversalScanner/internal/model"
)

func main() {
	subcommands.Register(subcommands.HelpCommand(), "")
	subcommands.Register(subcommands.FlagsCommand(), "")
	subcommands.Register(subcommands.CommandsCommand(), "")

	subcommands.Register(newScanCmd("scan", model.ScanCandlestick,
		"run the combined candlestick rules (A→B→C→D)"), "scans")
	subcommands.Register(newScanCmd("shadow", model.ScanShadow,
		"run the shadow mountain rule only"), "scans")
	subcommands.Register(newScanCmd("oversold", model.ScanOversold,
		"run the extreme-shrink oversold filter"), "scans")
	subcommands.Register(newScanCmd("track", model.ScanTrack,
		"re-score the latest oversold shortlist for MA13 pullback entries"), "scans")
	subcommands.Register(&historyCmd{}, "archive")
	subcommands.Register(&serveCmd{}, "daemon")

	flag.StringVar(&configPath, "config", defaultConfigPath(), "path to config.yaml (env CONFIG_PATH)")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	status := subcommands.Execute(ctx)
	stop()
	logger.Sync()
	os.Exit(int(status))
}
