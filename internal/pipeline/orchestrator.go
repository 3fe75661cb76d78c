package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/joseph-ayodele/plan-parser/constants"
	"github.com/joseph-ayodele/plan-parser/internal/common"
	"github.com/joseph-ayodele/plan-parser/internal/entity"
	"github.com/joseph-ayodele/plan-parser/internal/extract"
)

// FallbackNote is attached to the placeholder result.
const FallbackNote = "Automatic detection failed, using default room"

// OrchestratorConfig tunes the fallback cascade.
type OrchestratorConfig struct {
	Mode        string        // "rooms" or "walls"
	Deadline    time.Duration // applied when the caller sets none
	RemoteShare float64       // fraction of the remaining time the remote stage may use
}

type stage int

const (
	stageRemote stage = iota
	stageLocal
	stageFallback
	stageDone
)

func (s stage) String() string {
	switch s {
	case stageRemote:
		return "remote"
	case stageLocal:
		return "local"
	case stageFallback:
		return "fallback"
	}
	return "done"
}

// Orchestrator runs remote, then local, then the placeholder. It is the
// only place failures are absorbed; input errors are returned as-is.
type Orchestrator struct {
	remote extract.Strategy
	local  extract.Strategy
	vocab  constants.Vocabulary
	cfg    OrchestratorConfig
	logger *slog.Logger
}

// NewOrchestrator wires the strategies. remote may be nil when no
// inference service is configured.
func NewOrchestrator(remote, local extract.Strategy, vocab constants.Vocabulary, cfg OrchestratorConfig, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Mode == "" {
		cfg.Mode = "rooms"
	}
	if cfg.Deadline <= 0 {
		cfg.Deadline = 150 * time.Second
	}
	if cfg.RemoteShare <= 0 || cfg.RemoteShare > 1 {
		cfg.RemoteShare = 0.6
	}
	return &Orchestrator{remote: remote, local: local, vocab: vocab, cfg: cfg, logger: logger}
}

// Analyze returns a valid result for any readable drawing. Only NotFound
// and UnsupportedType come back as errors.
func (o *Orchestrator) Analyze(ctx context.Context, path string) (*entity.AnalysisResult, error) {
	if err := CheckInput(path); err != nil {
		return nil, err
	}
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.cfg.Deadline)
		defer cancel()
	}

	start := time.Now()
	var res *entity.AnalysisResult
	for st := stageRemote; st != stageDone; {
		o.logger.Debug("pipeline.stage", "stage", st.String(), "path", path)
		switch st {
		case stageRemote:
			if o.remote == nil {
				st = stageLocal
				continue
			}
			rctx, cancel := o.remoteContext(ctx)
			r, err := o.attempt(rctx, o.remote, path)
			cancel()
			if err == nil {
				res, st = r, stageDone
				continue
			}
			if common.IsInputError(err) {
				return nil, err
			}
			o.logger.Warn("pipeline.remote.failed", "path", path, "kind", common.KindOf(err), "error", err)
			st = stageLocal

		case stageLocal:
			r, err := o.attempt(ctx, o.local, path)
			if err == nil {
				res, st = r, stageDone
				continue
			}
			if common.IsInputError(err) {
				return nil, err
			}
			o.logger.Warn("pipeline.local.failed", "path", path, "kind", common.KindOf(err), "error", err)
			st = stageFallback

		case stageFallback:
			res, st = o.fallback(), stageDone
		}
	}

	o.logger.Info("pipeline.analyze.done",
		"path", path,
		"method", res.AnalysisMethod,
		"rooms", len(res.Rooms),
		"floors", res.Floors,
		"request_id", common.RequestIDFromContext(ctx),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return res, nil
}

// CheckInput reports NotFound or UnsupportedType before any strategy runs.
func CheckInput(path string) error {
	st, err := os.Stat(path)
	if err != nil {
		return common.NewExtractionError(common.KindNotFound, "input", path, err)
	}
	if !st.Mode().IsRegular() {
		return common.NewExtractionError(common.KindNotFound, "input", path+" is not a regular file", nil)
	}
	if !constants.IsAllowedPath(path) {
		return common.NewExtractionError(common.KindUnsupportedType, "input", path, nil)
	}
	return nil
}

// remoteContext leaves the rest of the caller's time to the local stage.
func (o *Orchestrator) remoteContext(ctx context.Context) (context.Context, context.CancelFunc) {
	dl, _ := ctx.Deadline()
	budget := time.Duration(float64(time.Until(dl)) * o.cfg.RemoteShare)
	if budget <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, budget)
}

// attempt runs one strategy, turning panics into errors and rejecting
// results that break the success invariant.
func (o *Orchestrator) attempt(ctx context.Context, s extract.Strategy, path string) (res *entity.AnalysisResult, err error) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			o.logger.Error("pipeline.strategy.panic", "strategy", s.Name(), "panic", r)
			res, err = nil, fmt.Errorf("%s panicked: %v", s.Name(), r)
		}
	}()

	res, err = s.Analyze(ctx, path)
	if err != nil {
		return nil, err
	}
	if verr := res.Validate(); verr != nil {
		return nil, common.NewExtractionError(common.KindSchemaViolation, string(s.Name()), "result rejected", verr)
	}
	if res.AnalysisMethod == "" {
		res.AnalysisMethod = s.Name()
	}
	o.logger.Debug("pipeline.strategy.ok", "strategy", s.Name(), "elapsed_ms", time.Since(start).Milliseconds())
	return res, nil
}

// fallback is the terminal placeholder: one default room on one floor.
func (o *Orchestrator) fallback() *entity.AnalysisResult {
	return MinimalResult(o.vocab, o.cfg.Mode)
}

// MinimalResult builds the placeholder used when every strategy failed.
// The HTTP layer also embeds its rooms in processing-error responses.
func MinimalResult(vocab constants.Vocabulary, mode string) *entity.AnalysisResult {
	d := vocab.Defaults
	openings := extract.NewOpeningExtractor(vocab)
	room := entity.RoomRecord{
		RoomType:  vocab.FallbackRoomName,
		RoomName:  vocab.FallbackRoomName,
		Length:    constants.FormatMeters(vocab.FallbackLength),
		Width:     constants.FormatMeters(vocab.FallbackWidth),
		Height:    d.Height,
		Thickness: d.Thickness,
		BlockType: d.BlockType,
		Plaster:   d.Plaster,
		Doors:     []entity.DoorRecord{openings.StandardDoor()},
		Windows:   []entity.WindowRecord{openings.StandardWindow()},
	}
	res := &entity.AnalysisResult{
		Rooms:          []entity.RoomRecord{room},
		Floors:         1,
		AnalysisMethod: constants.MethodMinimalFallback,
		Note:           FallbackNote,
	}
	if mode == "walls" {
		res.WallDimensions, res.WallProperties = deriveWalls(res.Rooms, vocab)
	}
	return res
}
