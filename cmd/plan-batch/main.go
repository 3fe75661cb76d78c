package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"sync"
	"syscall"
	"time"

	"github.com/joseph-ayodele/plan-parser/internal/app"
	"github.com/joseph-ayodele/plan-parser/internal/async"
	"github.com/joseph-ayodele/plan-parser/internal/common"
	"github.com/joseph-ayodele/plan-parser/internal/export"
	"github.com/joseph-ayodele/plan-parser/internal/ingest"
	"github.com/joseph-ayodele/plan-parser/internal/pipeline"
	svc "github.com/joseph-ayodele/plan-parser/internal/server"
)

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	var (
		inmem   = flag.Bool("inmem", false, "use in-memory SQLite database")
		dir     = flag.String("dir", "", "directory of drawings to analyse (required)")
		out     = flag.String("out", "", "output XLSX file path (optional, defaults to parent directory)")
		watch   = flag.Bool("watch", false, "keep watching the directory for new drawings until interrupted")
		workers = flag.Int("workers", 4, "concurrent analyses")
		timeout = flag.Duration("timeout", 3*time.Minute, "per-drawing processing timeout")
	)
	flag.Parse()

	if *dir == "" {
		printError("Error: --dir is required\n")
		os.Exit(1)
	}
	if *out == "" {
		*out = filepath.Join(filepath.Dir(filepath.Clean(*dir)), "room_schedule.xlsx")
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg := common.LoadConfig()
	if *inmem {
		cfg.Database.DSN = ""
		cfg.Database.SQLitePath = "file:plan_batch?mode=memory&cache=shared&_pragma=foreign_keys(1)"
	}
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := svc.ConnectDB(ctx, cfg.Database, logger)
	if err != nil {
		logger.Error("failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	analyzer, err := app.BuildAnalyzer(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to build analyzer", "error", err)
		os.Exit(1)
	}
	defer analyzer.Close()

	sinks := app.BuildSinks(ctx, cfg, db, logger)
	defer sinks.Close()
	processor := pipeline.NewProcessor(logger, analyzer.Orchestrator, sinks.Options()...)

	var (
		mu      sync.Mutex
		entries []export.Entry
		failed  int
	)
	queue := async.NewProcessorQueue(processor, logger,
		async.WithWorkers(*workers),
		async.WithQueueSize(128),
		async.WithProcessTimeout(*timeout),
		async.WithResultHandler(func(r async.Result) {
			mu.Lock()
			defer mu.Unlock()
			if r.Err != nil {
				failed++
				return
			}
			entries = append(entries, export.Entry{Source: r.Job.Name, Result: r.Outcome.Result})
		}),
	)

	logger.Info("starting batch", "dir", *dir, "watch", *watch, "workers", *workers)
	results, stats, err := ingest.EnqueueDirectory(ctx, queue, *dir, true)
	if err != nil {
		logger.Error("failed to scan directory", "error", err)
	}
	for _, r := range results {
		logger.Warn("skipped entry", "path", r.Path, "error", r.Err)
	}
	logger.Info("directory scanned",
		"scanned", stats.Scanned,
		"matched", stats.Matched,
		"enqueued", stats.Enqueued,
		"failed", stats.Failed,
	)

	if *watch {
		runWatch(ctx, queue, *dir, logger)
	}

	drainCtx, cancel := context.WithTimeout(context.Background(), *timeout+30*time.Second)
	defer cancel()
	queue.Shutdown(drainCtx)

	mu.Lock()
	defer mu.Unlock()
	sort.Slice(entries, func(i, j int) bool { return entries[i].Source < entries[j].Source })

	data, err := export.NewService(sinks.Jobs, logger).RoomScheduleXLSX(entries)
	if err != nil {
		logger.Error("failed to build room schedule", "error", err)
		os.Exit(1)
	}
	if err := os.WriteFile(*out, data, 0o644); err != nil {
		logger.Error("failed to write output", "path", *out, "error", err)
		os.Exit(1)
	}
	logger.Info("batch complete", "drawings", len(entries), "failed", failed, "out", *out)
}

// runWatch enqueues drawings that appear under dir until ctx is cancelled.
func runWatch(ctx context.Context, q async.Queue, dir string, logger *slog.Logger) {
	paths, errs, err := ingest.StartWatcher(ctx, ingest.WatchConfig{
		Roots:    []string{dir},
		Debounce: 750 * time.Millisecond,
		Logger:   logger,
	})
	if err != nil {
		logger.Error("failed to start watcher", "error", err)
		return
	}
	for {
		select {
		case <-ctx.Done():
			return
		case p, ok := <-paths:
			if !ok {
				return
			}
			if err := q.Enqueue(ctx, async.Job{Path: p, Name: filepath.Base(p)}); err != nil {
				logger.Warn("enqueue failed", "path", p, "error", err)
			}
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			logger.Warn("watcher error", "error", err)
		}
	}
}
