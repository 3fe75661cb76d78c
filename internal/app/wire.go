// Package app assembles the pipeline from configuration for the binaries.
package app

import (
	"context"
	"errors"
	"log/slog"

	"github.com/joseph-ayodele/plan-parser/constants"
	"github.com/joseph-ayodele/plan-parser/internal/archive"
	"github.com/joseph-ayodele/plan-parser/internal/cache"
	"github.com/joseph-ayodele/plan-parser/internal/common"
	"github.com/joseph-ayodele/plan-parser/internal/extract"
	"github.com/joseph-ayodele/plan-parser/internal/llm"
	"github.com/joseph-ayodele/plan-parser/internal/llm/gemini"
	"github.com/joseph-ayodele/plan-parser/internal/metrics"
	"github.com/joseph-ayodele/plan-parser/internal/ocr"
	"github.com/joseph-ayodele/plan-parser/internal/pipeline"
	"github.com/joseph-ayodele/plan-parser/internal/repository"
)

// Analyzer is the orchestrator plus what it was built from.
type Analyzer struct {
	Vocab        constants.Vocabulary
	Corpus       *ocr.Builder
	Orchestrator *pipeline.Orchestrator
	closers      []func() error
}

func (a *Analyzer) Close() error {
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c())
	}
	return errors.Join(errs...)
}

// BuildAnalyzer wires corpus builder, strategies and orchestrator. The
// remote strategy is left out when no API key is configured.
func BuildAnalyzer(ctx context.Context, cfg *common.Config, logger *slog.Logger) (*Analyzer, error) {
	vocab, err := constants.LoadVocabulary(cfg.OCR.VocabularyFile)
	if err != nil {
		return nil, err
	}

	corpus := ocr.NewBuilder(ocr.Config{
		Pdftoppm:      cfg.OCR.Pdftoppm,
		Tesseract:     cfg.OCR.Tesseract,
		TesseractLang: cfg.OCR.TesseractLang,
		TessdataDir:   cfg.OCR.TessdataDir,
		DPI:           cfg.OCR.DPI,
		MaxPages:      cfg.OCR.MaxPages,
		PSMs:          cfg.OCR.PSMs,
		OEM:           cfg.OCR.OEM,
		MinConfidence: cfg.OCR.MinConfidence,
		TryRotations:  cfg.OCR.TryRotations,
		VariantMode:   cfg.OCR.VariantMode,
		NativeBackend: cfg.OCR.NativeBackend,
		Backend:       cfg.OCR.Backend,
		TempDir:       cfg.OCR.TempDir,
	}, logger)
	if !corpus.RecognitionAvailable() {
		logger.Warn("ocr.recognition.unavailable", "backend", cfg.OCR.Backend,
			"hint", "scanned drawings fall back to native text only")
	}

	local := pipeline.NewLocalStrategy(extract.NewOCRAdapter(corpus, logger), vocab, pipeline.LocalConfig{
		Mode: cfg.Pipeline.Mode,
	}, logger)

	a := &Analyzer{Vocab: vocab, Corpus: corpus}

	var remote extract.Strategy
	if cfg.Pipeline.RemoteEnabled && cfg.LLM.APIKey != "" {
		client, err := gemini.NewClient(ctx, gemini.Config{
			APIKey:      cfg.LLM.APIKey,
			Model:       cfg.LLM.Model,
			Temperature: cfg.LLM.Temperature,
			Timeout:     cfg.LLM.Timeout,
		}, logger)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, client.Close)

		rs, err := llm.NewRemoteStrategy(client, llm.RemoteConfig{
			Enabled: true,
			Mode:    cfg.Pipeline.Mode,
			Instruction: llm.InstructionOptions{
				Mode:              cfg.Pipeline.Mode,
				RebarNotation:     vocab.RebarNotation,
				GroundFloorFloors: vocab.GroundFloorFloors,
				Defaults: llm.RoomDefaultsHint{
					Height:    vocab.Defaults.Height,
					Thickness: vocab.Defaults.Thickness,
					BlockType: vocab.Defaults.BlockType,
					Plaster:   vocab.Defaults.Plaster,
				},
			},
			Retry:          llm.RetryPolicy{MaxAttempts: cfg.LLM.MaxAttempts, BaseBackoff: cfg.LLM.BaseBackoff},
			AttemptTimeout: cfg.LLM.Timeout,
			MaxBytes:       cfg.Server.MaxUploadBytes,
		}, logger)
		if err != nil {
			_ = a.Close()
			return nil, err
		}
		remote = rs
	} else {
		logger.Info("llm.remote.disabled", "reason", "no API key or PIPELINE_REMOTE_ENABLED=false")
	}

	a.Orchestrator = pipeline.NewOrchestrator(remote, local, vocab, pipeline.OrchestratorConfig{
		Mode:        cfg.Pipeline.Mode,
		Deadline:    cfg.Pipeline.Deadline,
		RemoteShare: cfg.Pipeline.RemoteShare,
	}, logger)
	return a, nil
}

// Sinks are the optional post-result collaborators.
type Sinks struct {
	Cache   *cache.ResultCache
	Archive *archive.Store
	Jobs    repository.AnalysisJobRepository
	Metrics *metrics.Metrics
}

// BuildSinks connects whatever the configuration names; a sink that fails
// to connect is logged and skipped.
func BuildSinks(ctx context.Context, cfg *common.Config, db *repository.DB, logger *slog.Logger) Sinks {
	s := Sinks{Metrics: metrics.New()}
	if db != nil {
		s.Jobs = repository.NewAnalysisJobRepository(db, logger)
	}
	if cfg.Cache.RedisAddr != "" {
		c := cache.NewResultCache(cache.Config{
			Addr:      cfg.Cache.RedisAddr,
			Password:  cfg.Cache.RedisPassword,
			DB:        cfg.Cache.RedisDB,
			TTL:       cfg.Cache.TTL,
			KeyPrefix: cfg.Cache.KeyPrefix,
		}, logger)
		if err := c.Ping(ctx); err != nil {
			logger.Warn("cache.unavailable", "addr", cfg.Cache.RedisAddr, "error", err)
			_ = c.Close()
		} else {
			s.Cache = c
		}
	}
	if cfg.Archive.Bucket != "" {
		st, err := archive.NewStore(ctx, archive.Config{
			Bucket:    cfg.Archive.Bucket,
			Region:    cfg.Archive.Region,
			Endpoint:  cfg.Archive.Endpoint,
			AccessKey: cfg.Archive.AccessKey,
			SecretKey: cfg.Archive.SecretKey,
			Prefix:    cfg.Archive.Prefix,
		}, logger)
		if err != nil {
			logger.Warn("archive.unavailable", "bucket", cfg.Archive.Bucket, "error", err)
		} else {
			s.Archive = st
		}
	}
	return s
}

// Options turns the connected sinks into processor options.
func (s Sinks) Options() []pipeline.ProcessorOption {
	var opts []pipeline.ProcessorOption
	if s.Cache != nil {
		opts = append(opts, pipeline.WithCache(s.Cache))
	}
	if s.Archive != nil {
		opts = append(opts, pipeline.WithArchiver(s.Archive))
	}
	if s.Jobs != nil {
		opts = append(opts, pipeline.WithJobStore(s.Jobs))
	}
	if s.Metrics != nil {
		opts = append(opts, pipeline.WithObserver(s.Metrics))
	}
	return opts
}

func (s Sinks) Close() {
	if s.Cache != nil {
		_ = s.Cache.Close()
	}
}
