package ingest

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/joseph-ayodele/plan-parser/internal/async"
)

type FileResult struct {
	Path string
	Err  string
}

type DirStats struct {
	Scanned  uint32
	Matched  uint32
	Enqueued uint32
	Failed   uint32
}

// EnqueueDirectory walks root, keeps drawings with an allowed extension,
// skips hidden entries if requested, and enqueues each one. Walk errors on
// single entries are recorded and the walk continues.
func EnqueueDirectory(ctx context.Context, q async.Queue, root string, skipHidden bool) ([]FileResult, DirStats, error) {
	if strings.TrimSpace(root) == "" {
		return nil, DirStats{}, errors.New("root path is required")
	}

	var results []FileResult
	var stats DirStats

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		stats.Scanned++
		if walkErr != nil {
			results = append(results, FileResult{Path: path, Err: walkErr.Error()})
			stats.Failed++
			return nil
		}
		if skipHidden && path != root && IsHidden(path) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || !AllowedExt(filepath.Ext(path)) {
			return nil
		}
		stats.Matched++

		if err := q.Enqueue(ctx, async.Job{Path: path, Name: filepath.Base(path)}); err != nil {
			results = append(results, FileResult{Path: path, Err: err.Error()})
			stats.Failed++
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return nil
		}
		results = append(results, FileResult{Path: path})
		stats.Enqueued++
		return nil
	})

	if err != nil {
		return results, stats, fmt.Errorf("walk: %w", err)
	}
	return results, stats, nil
}
