package pipeline

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/joseph-ayodele/plan-parser/constants"
	"github.com/joseph-ayodele/plan-parser/internal/common"
	"github.com/joseph-ayodele/plan-parser/internal/entity"
)

// Analyzer is the orchestrator as seen by the processor.
type Analyzer interface {
	Analyze(ctx context.Context, path string) (*entity.AnalysisResult, error)
}

// ResultCache stores results by content hash.
type ResultCache interface {
	Get(ctx context.Context, hash string) (*entity.AnalysisResult, bool, error)
	Set(ctx context.Context, hash string, res *entity.AnalysisResult) error
}

// JobStore records every run.
type JobStore interface {
	Create(ctx context.Context, job *entity.AnalysisJob) error
}

// Archiver keeps a copy of the uploaded drawing and returns its key.
type Archiver interface {
	Archive(ctx context.Context, localPath, name, hash string) (string, error)
}

// Observer receives per-run measurements.
type Observer interface {
	ObserveAnalysis(method constants.AnalysisMethod, status constants.JobStatus, elapsed time.Duration)
	ObserveCache(hit bool)
}

// Outcome is what ProcessFile hands back to the surfaces.
type Outcome struct {
	JobID  uuid.UUID
	Hash   string
	Cached bool
	Result *entity.AnalysisResult
}

// Processor coordinates hashing, the result cache, the orchestrator and the
// post-result sinks. Every sink is optional.
type Processor struct {
	logger   *slog.Logger
	analyzer Analyzer
	cache    ResultCache
	jobs     JobStore
	archive  Archiver
	observer Observer
}

type ProcessorOption func(*Processor)

func WithCache(c ResultCache) ProcessorOption { return func(p *Processor) { p.cache = c } }
func WithJobStore(s JobStore) ProcessorOption { return func(p *Processor) { p.jobs = s } }
func WithArchiver(a Archiver) ProcessorOption { return func(p *Processor) { p.archive = a } }
func WithObserver(o Observer) ProcessorOption { return func(p *Processor) { p.observer = o } }

func NewProcessor(logger *slog.Logger, analyzer Analyzer, opts ...ProcessorOption) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	p := &Processor{logger: logger, analyzer: analyzer}
	for _, o := range opts {
		o(p)
	}
	return p
}

// ProcessFile analyses the drawing at path. originalName is the name the
// user uploaded it under. Sink failures are logged, never returned.
func (p *Processor) ProcessFile(ctx context.Context, path, originalName string) (Outcome, error) {
	ctx, _ = common.EnsureRequestID(ctx)
	start := time.Now()
	if originalName == "" {
		originalName = filepath.Base(path)
	}

	if err := CheckInput(path); err != nil {
		p.observe(constants.AnalysisMethod(""), constants.JobStatusFailed, time.Since(start))
		return Outcome{}, err
	}
	hash, err := hashFile(path)
	if err != nil {
		return Outcome{}, common.NewExtractionError(common.KindNotFound, "hash", path, err)
	}
	out := Outcome{JobID: uuid.New(), Hash: hash}

	if p.cache != nil {
		cached, ok, cerr := p.cache.Get(ctx, hash)
		if cerr != nil {
			p.logger.Warn("processor.cache.get_failed", "hash", hash, "error", cerr)
		}
		if p.observer != nil {
			p.observer.ObserveCache(ok)
		}
		if ok {
			out.Cached, out.Result = true, cached
			p.logger.Info("processor.cache.hit", "hash", hash, "file", originalName)
			p.sinks(ctx, out, path, originalName, start, nil)
			return out, nil
		}
	}

	res, err := p.analyzer.Analyze(ctx, path)
	if err != nil {
		p.logger.Error("processor.analyze.failed", "file", originalName, "error", err)
		p.sinks(ctx, out, path, originalName, start, err)
		p.observe(constants.AnalysisMethod(""), constants.JobStatusFailed, time.Since(start))
		return out, err
	}
	out.Result = res
	p.sinks(ctx, out, path, originalName, start, nil)
	p.observe(res.AnalysisMethod, constants.StatusForMethod(res.AnalysisMethod), time.Since(start))

	p.logger.Info("processor.ok",
		"job_id", out.JobID,
		"file", originalName,
		"method", res.AnalysisMethod,
		"rooms", len(res.Rooms),
		"request_id", common.RequestIDFromContext(ctx),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return out, nil
}

// sinks fans out to the cache and to archive+record concurrently and
// waits for both so the caller may delete the upload afterwards.
func (p *Processor) sinks(ctx context.Context, out Outcome, path, name string, start time.Time, runErr error) {
	g, gctx := errgroup.WithContext(context.WithoutCancel(ctx))

	if p.cache != nil && out.Result != nil && !out.Cached && out.Result.AnalysisMethod != constants.MethodMinimalFallback {
		g.Go(func() error {
			if err := p.cache.Set(gctx, out.Hash, out.Result); err != nil {
				p.logger.Warn("processor.cache.set_failed", "hash", out.Hash, "error", err)
			}
			return nil
		})
	}

	if p.jobs != nil || p.archive != nil {
		g.Go(func() error {
			job := p.jobRecord(out, name, start, runErr)
			if p.archive != nil && runErr == nil && !out.Cached {
				key, err := p.archive.Archive(gctx, path, name, out.Hash)
				if err != nil {
					p.logger.Warn("processor.archive.failed", "file", name, "error", err)
				} else {
					job.ArchiveKey = &key
				}
			}
			if p.jobs != nil {
				if err := p.jobs.Create(gctx, job); err != nil {
					p.logger.Warn("processor.jobs.create_failed", "job_id", job.ID, "error", err)
				}
			}
			return nil
		})
	}
	_ = g.Wait()
}

func (p *Processor) jobRecord(out Outcome, name string, start time.Time, runErr error) *entity.AnalysisJob {
	now := time.Now().UTC()
	format, _ := constants.MapExtToFormat(filepath.Ext(name))
	job := &entity.AnalysisJob{
		ID:          out.JobID,
		FileName:    name,
		ContentHash: out.Hash,
		Format:      string(format),
		StartedAt:   start.UTC(),
		FinishedAt:  &now,
		Status:      string(constants.JobStatusFailed),
	}
	if runErr != nil {
		msg := runErr.Error()
		job.ErrorMessage = &msg
		return job
	}
	res := out.Result
	job.Status = string(constants.StatusForMethod(res.AnalysisMethod))
	job.AnalysisMethod = string(res.AnalysisMethod)
	job.RoomCount = len(res.Rooms)
	job.Floors = res.Floors
	if b, err := json.Marshal(res); err == nil {
		job.ResultJSON = b
	}
	return job
}

func (p *Processor) observe(m constants.AnalysisMethod, s constants.JobStatus, d time.Duration) {
	if p.observer != nil {
		p.observer.ObserveAnalysis(m, s, d)
	}
}

func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hash %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
