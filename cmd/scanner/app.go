package main

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"ReversalScanner/internal/collector"
	"ReversalScanner/internal/config"
	"ReversalScanner/internal/logger"
	"ReversalScanner/internal/notifier"
	"ReversalScanner/internal/recorder"
	"ReversalScanner/internal/scanner"
)

var configPath string

func defaultConfigPath() string {
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		return v
	}
	return "configs/config.yaml"
}

// app holds the wired components shared by every subcommand.
type app struct {
	cfg      *config.Config
	service  *scanner.Service
	recorder recorder.Recorder
	notifier notifier.Notifier
	telegram *notifier.TelegramNotifier
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	logger.Init(cfg.LogLevel)
	return cfg, nil
}

func newApp(cfg *config.Config) (*app, error) {
	a := &app{cfg: cfg}

	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			logger.Warn("init sqlite recorder failed, using noop", zap.Error(err))
			a.recorder = recorder.NewNoopRecorder()
		} else {
			a.recorder = sr
		}
	} else {
		a.recorder = recorder.NewNoopRecorder()
	}

	if cfg.Telegram.BotToken != "" {
		a.telegram = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)
		a.notifier = a.telegram
	} else {
		a.notifier = notifier.LogNotifier{}
	}

	loader := collector.NewCSVLoader(cfg.Data.Dir)
	svc, err := scanner.NewService(cfg, loader, a.recorder)
	if err != nil {
		a.recorder.Close()
		return nil, err
	}
	a.service = svc
	logger.Info("data source", zap.String("loader", loader.Name()), zap.String("dir", cfg.Data.Dir))
	return a, nil
}

func (a *app) Close() {
	if err := a.recorder.Close(); err != nil {
		logger.Warn("close recorder", zap.Error(err))
	}
}

func setup() (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return newApp(cfg)
}
