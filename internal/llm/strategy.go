package llm

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/joseph-ayodele/plan-parser/constants"
	"github.com/joseph-ayodele/plan-parser/internal/common"
	"github.com/joseph-ayodele/plan-parser/internal/entity"
)

const remoteOp = "remote"

// ErrRemoteDisabled is returned without any network call when no credentials are configured.
var ErrRemoteDisabled = common.NewExtractionError(common.KindUpstreamFailure, remoteOp, "remote analysis disabled", nil)

// RemoteConfig is everything the remote strategy needs, injected at
// construction rather than read from the environment.
type RemoteConfig struct {
	Enabled        bool
	Mode           string
	Instruction    InstructionOptions
	Retry          RetryPolicy
	AttemptTimeout time.Duration
	MaxBytes       int64
}

// RemoteStrategy sends the raw document to a vision model and accepts the
// reply only when it passes the schema gate.
type RemoteStrategy struct {
	gen         DocumentGenerator
	gate        *SchemaGate
	instruction string
	cfg         RemoteConfig
	logger      *slog.Logger
}

func NewRemoteStrategy(gen DocumentGenerator, cfg RemoteConfig, logger *slog.Logger) (*RemoteStrategy, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Mode == "" {
		cfg.Mode = "rooms"
	}
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = 20 << 20
	}
	cfg.Instruction.Mode = cfg.Mode
	gate, err := NewSchemaGate(cfg.Mode)
	if err != nil {
		return nil, err
	}
	return &RemoteStrategy{
		gen:         gen,
		gate:        gate,
		instruction: BuildInstruction(cfg.Instruction),
		cfg:         cfg,
		logger:      logger,
	}, nil
}

func (s *RemoteStrategy) Name() constants.AnalysisMethod { return constants.MethodGemini }

// Analyze returns a validated result or an UpstreamFailure/SchemaViolation.
func (s *RemoteStrategy) Analyze(ctx context.Context, path string) (*entity.AnalysisResult, error) {
	if !s.cfg.Enabled || s.gen == nil {
		return nil, ErrRemoteDisabled
	}

	rid := uuid.New().String()
	start := time.Now()

	data, mime, err := readDocument(path, s.cfg.MaxBytes)
	if err != nil {
		return nil, common.NewExtractionError(common.KindUpstreamFailure, remoteOp, "read document", err)
	}

	s.logger.Info("llm.extract.start",
		"req_id", rid,
		"request_id", common.RequestIDFromContext(ctx),
		"model", s.gen.Model(),
		"mime", mime,
		"bytes", len(data),
		"mode", s.cfg.Mode,
		"instruction_version", InstructionVersion,
	)

	req := DocumentRequest{Data: data, MIMEType: mime, Instruction: s.instruction, FileName: path}
	var reply string
	err = s.cfg.Retry.Do(ctx, func(ctx context.Context, attempt int) error {
		actx, cancel := s.attemptContext(ctx)
		defer cancel()
		text, gerr := s.gen.Generate(actx, req)
		if gerr != nil {
			s.logger.Warn("llm.extract.attempt_failed",
				"req_id", rid, "attempt", attempt, "transient", IsTransient(gerr), "error", gerr)
			return gerr
		}
		reply = text
		return nil
	})
	if err != nil {
		s.logger.Error("llm.extract.upstream_error",
			"req_id", rid, "error", err, "elapsed_ms", time.Since(start).Milliseconds())
		return nil, common.NewExtractionError(common.KindUpstreamFailure, remoteOp, "generate", err)
	}

	res, err := s.parse(rid, reply)
	if err != nil {
		s.logger.Error("llm.extract.rejected",
			"req_id", rid, "kind", common.KindOf(err), "error", err,
			"elapsed_ms", time.Since(start).Milliseconds())
		return nil, err
	}

	s.logger.Info("llm.extract.ok",
		"req_id", rid,
		"rooms", len(res.Rooms),
		"floors", res.Floors,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return res, nil
}

func (s *RemoteStrategy) attemptContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.cfg.AttemptTimeout > 0 {
		return context.WithTimeout(ctx, s.cfg.AttemptTimeout)
	}
	return context.WithCancel(ctx)
}

// parse turns the reply text into a gated result.
func (s *RemoteStrategy) parse(rid, reply string) (*entity.AnalysisResult, error) {
	obj, err := DecodeObject(reply)
	if err != nil {
		return nil, common.NewExtractionError(common.KindSchemaViolation, remoteOp, "decode reply", err)
	}
	if msg, ok := UpstreamError(obj); ok {
		return nil, common.NewExtractionError(common.KindUpstreamFailure, remoteOp, msg, nil)
	}

	clean, _, err := NormalizeAndSanitizeJSON(obj, s.logger)
	if err != nil {
		return nil, common.NewExtractionError(common.KindSchemaViolation, remoteOp, "sanitize reply", err)
	}
	if lenient, dropped, lerr := SanitizeOptionalSections(clean); lerr == nil {
		if len(dropped) > 0 {
			s.logger.Warn("llm.extract.lenient_sanitize_applied", "req_id", rid, "dropped", dropped)
		}
		clean = lenient
	}
	if err := s.gate.Check(clean); err != nil {
		return nil, common.NewExtractionError(common.KindSchemaViolation, remoteOp, "reply failed schema", err)
	}

	var res entity.AnalysisResult
	if err := json.Unmarshal(clean, &res); err != nil {
		return nil, common.NewExtractionError(common.KindSchemaViolation, remoteOp, "unmarshal reply", err)
	}
	res.AnalysisMethod = constants.MethodGemini
	delete(res.Extra, "error")
	if err := res.Validate(); err != nil {
		return nil, common.NewExtractionError(common.KindSchemaViolation, remoteOp, "invalid result", err)
	}
	return &res, nil
}
