package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/joseph-ayodele/plan-parser/internal/app"
	"github.com/joseph-ayodele/plan-parser/internal/common"
)

func main() {
	var (
		mode    = flag.String("mode", "", "rooms or walls (defaults to PIPELINE_MODE)")
		local   = flag.Bool("local", false, "skip the remote model")
		verbose = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	if flag.NArg() != 1 {
		logger.Error("usage", "cmd", "parseplan [-mode rooms|walls] [-local] <drawing.pdf|png|jpg>")
		os.Exit(2)
	}
	path := flag.Arg(0)

	cfg := common.LoadConfig()
	if *mode != "" {
		cfg.Pipeline.Mode = *mode
	}
	if *local {
		cfg.Pipeline.RemoteEnabled = false
	}
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	analyzer, err := app.BuildAnalyzer(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to build analyzer", "error", err)
		os.Exit(1)
	}
	defer analyzer.Close()

	res, err := analyzer.Orchestrator.Analyze(ctx, path)
	if err != nil {
		logger.Error("analysis failed", "path", path, "kind", common.KindOf(err), "error", err)
		os.Exit(1)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(res); err != nil {
		fmt.Fprintf(os.Stderr, "encode result: %v\n", err)
		os.Exit(1)
	}
}
