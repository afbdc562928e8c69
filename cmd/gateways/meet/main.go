package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	config "github.com/xilidan/meetnotes/config/meet"
	"github.com/xilidan/meetnotes/gateways/meet"
	"github.com/xilidan/meetnotes/pkg/logger"
)

func main() {
	log := logger.Default()
	log.Info("initializing meet gateway")

	cfg := config.MustLoad()

	configured, err := logger.FromSettings(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		log.Warn("invalid log settings, keeping default logger", slog.String("error", err.Error()))
	} else {
		log = configured
	}
	logger.SetDefault(log)

	log.Info("configuration loaded successfully",
		slog.Int("port", cfg.Port),
		slog.String("env", cfg.Env),
		slog.String("summarizer", cfg.Summarizer.Provider),
		slog.Int64("max_file_size", cfg.Upload.MaxFileSize),
		slog.Bool("openai_api_key_set", cfg.OpenAI.APIKey != ""),
		slog.Bool("gemini_api_key_set", cfg.Gemini.APIKey != ""))

	ctx := logger.WithContext(context.Background(), log)

	rootCtx, cancel := signal.NotifyContext(ctx, syscall.SIGTERM)
	err = run(rootCtx, cfg, log)
	cancel()
	if err != nil {
		log.Error("application terminated with error", slog.String("error", err.Error()))
		os.Exit(1)
	}
	log.Info("application terminated successfully")
}

func run(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	srv, err := meet.New(ctx, cfg, log)
	if err != nil {
		log.Error("server initialization failed", slog.String("error", err.Error()))
		return err
	}

	return srv.Start(ctx)
}
