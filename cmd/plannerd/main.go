package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joseph-ayodele/plan-parser/internal/app"
	"github.com/joseph-ayodele/plan-parser/internal/common"
	"github.com/joseph-ayodele/plan-parser/internal/export"
	"github.com/joseph-ayodele/plan-parser/internal/pipeline"
	svc "github.com/joseph-ayodele/plan-parser/internal/server"
)

func main() {
	// Structured logger that keeps message and attributes but drops time/level
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey || a.Key == slog.LevelKey {
				return slog.Attr{}
			}
			return a
		},
	}))
	slog.SetDefault(logger)

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := svc.ConnectDB(ctx, cfg.Database, logger)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := svc.PingDB(ctx, db, 5*time.Second); err != nil {
		logger.Error("failed to ping database", "error", err)
		os.Exit(1)
	}

	analyzer, err := app.BuildAnalyzer(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to build analyzer", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := analyzer.Close(); err != nil {
			logger.Warn("closing analyzer", "error", err)
		}
	}()

	sinks := app.BuildSinks(ctx, cfg, db, logger)
	defer sinks.Close()

	processor := pipeline.NewProcessor(logger, analyzer.Orchestrator, sinks.Options()...)

	server, err := svc.NewServer(svc.Deps{
		Processor: processor,
		Jobs:      sinks.Jobs,
		Export:    export.NewService(sinks.Jobs, logger),
		Metrics:   sinks.Metrics,
		Fallback:  pipeline.MinimalResult(analyzer.Vocab, cfg.Pipeline.Mode),
		Ready: func(ctx context.Context) error {
			return svc.PingDB(ctx, db, 2*time.Second)
		},
		Server: cfg.Server,
		Auth:   cfg.Auth,
		Logger: logger,
	})
	if err != nil {
		logger.Error("failed to create server", "error", err)
		os.Exit(1)
	}

	errCh := make(chan error, 1)
	go func() { errCh <- server.Start() }()

	logger.Info("plannerd started",
		"http_addr", cfg.Server.HTTPAddr,
		"grpc_addr", cfg.Server.GRPCAddr,
		"mode", cfg.Pipeline.Mode,
		"remote", cfg.Pipeline.RemoteEnabled && cfg.LLM.APIKey != "",
		"ocr", analyzer.Corpus.RecognitionAvailable(),
	)

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			logger.Error("server error", "error", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
}
