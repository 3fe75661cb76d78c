package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/joseph-ayodele/plan-parser/constants"
	"github.com/joseph-ayodele/plan-parser/internal/common"
	"github.com/joseph-ayodele/plan-parser/internal/entity"
	"github.com/joseph-ayodele/plan-parser/internal/extract"
)

// LocalConfig tunes the local heuristics.
type LocalConfig struct {
	GroupSize    int    // adjacency group size, default 5
	WindowRadius int    // fragments on each side searched for a loose pair, default 3
	Mode         string // "rooms" or "walls"
}

// LocalStrategy infers rooms from the document's own text.
type LocalStrategy struct {
	corpus   extract.CorpusBuilder
	vocab    constants.Vocabulary
	rooms    *extract.RoomClassifier
	dims     extract.DimensionExtractor
	floors   *extract.FloorCounter
	openings *extract.OpeningExtractor
	cfg      LocalConfig
	logger   *slog.Logger
}

func NewLocalStrategy(corpus extract.CorpusBuilder, vocab constants.Vocabulary, cfg LocalConfig, logger *slog.Logger) *LocalStrategy {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.GroupSize <= 0 {
		cfg.GroupSize = 5
	}
	if cfg.WindowRadius <= 0 {
		cfg.WindowRadius = 3
	}
	return &LocalStrategy{
		corpus:   corpus,
		vocab:    vocab,
		rooms:    extract.NewRoomClassifier(vocab),
		dims:     extract.NewDimensionExtractor(),
		floors:   extract.NewFloorCounter(vocab),
		openings: extract.NewOpeningExtractor(vocab),
		cfg:      cfg,
		logger:   logger,
	}
}

func (s *LocalStrategy) Name() constants.AnalysisMethod { return constants.MethodEnhancedLocal }

// Analyze builds the corpus for path and infers a result from it. An empty
// corpus or one without any room label is reported as ErrNoRooms.
func (s *LocalStrategy) Analyze(ctx context.Context, path string) (*entity.AnalysisResult, error) {
	start := time.Now()
	c, err := s.corpus.Build(ctx, path)
	if err != nil {
		return nil, err
	}
	texts := c.Texts()
	if len(texts) == 0 {
		s.logger.Info("local.analyze.empty_corpus", "path", path, "warnings", c.Warnings)
		return nil, ErrNoRooms
	}
	res := s.AnalyzeTexts(texts)
	if res == nil {
		s.logger.Info("local.analyze.no_rooms", "path", path, "fragments", len(texts))
		return nil, ErrNoRooms
	}
	s.logger.Info("local.analyze.ok",
		"path", path,
		"fragments", len(texts),
		"rooms", len(res.Rooms),
		"floors", res.Floors,
		"corpus_method", c.Method,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return res, nil
}

// ErrNoRooms signals that the corpus held no recognisable room label.
var ErrNoRooms = common.NewExtractionError(common.KindExhausted, "local", "no rooms identified", nil)

// AnalyzeTexts is the deterministic core over an ordered corpus; nil means
// no room was identified.
func (s *LocalStrategy) AnalyzeTexts(texts []string) *entity.AnalysisResult {
	height := s.vocab.Defaults.Height
	if h, ok := extract.SectionHeight(texts); ok {
		height = constants.FormatMeters(h)
	}

	claimed := map[string]bool{}
	var rooms []entity.RoomRecord
	for _, g := range partition(len(texts), s.cfg.GroupSize) {
		for i := g.start; i < g.end; i++ {
			label, ok := s.rooms.Classify(texts[i])
			if !ok || claimed[label] {
				continue
			}
			claimed[label] = true
			dim, source := s.findDimension(texts, i, label)
			s.logger.Debug("local.room",
				"label", label,
				"group", g.index,
				"fragment", i,
				"length", dim.Length,
				"width", dim.Width,
				"dimension_source", source,
			)
			rooms = append(rooms, s.roomRecord(label, s.rooms.RoomName(texts[i], label), dim, height))
		}
	}
	if len(rooms) == 0 {
		return nil
	}

	s.allocateOpenings(rooms, s.openings.Doors(texts), s.openings.Windows(texts))

	res := &entity.AnalysisResult{
		Rooms:                 rooms,
		Floors:                s.floors.Count(texts),
		AnalysisMethod:        constants.MethodEnhancedLocal,
		TextElementsProcessed: len(texts),
	}
	if s.cfg.Mode == "walls" {
		res.WallDimensions, res.WallProperties = deriveWalls(rooms, s.vocab)
	}
	return res
}

type group struct {
	index, start, end int
}

// partition splits n fragments into consecutive groups of size; adjacency
// in corpus order stands in for spatial proximity.
func partition(n, size int) []group {
	var out []group
	for start := 0; start < n; start += size {
		out = append(out, group{index: len(out), start: start, end: min(start+size, n)})
	}
	return out
}

// findDimension searches outward from the label: explicit patterns over
// the whole corpus nearest first, then a loose number pair in the local
// window, then the room type's default size. Fragments that name another
// room type are skipped in the explicit search since their numbers belong
// to that room.
func (s *LocalStrategy) findDimension(texts []string, idx int, label string) (extract.Dimension, string) {
	for _, j := range byDistance(len(texts), idx) {
		if j != idx {
			if other, ok := s.rooms.Classify(texts[j]); ok && other != label {
				continue
			}
		}
		if d, ok := s.dims.Explicit(texts[j]); ok {
			return d, "explicit"
		}
	}

	lo, hi := max(0, idx-s.cfg.WindowRadius), min(len(texts), idx+s.cfg.WindowRadius+1)
	for _, j := range byDistance(hi-lo, idx-lo) {
		if d, ok := s.dims.NumberPair(texts[lo+j]); ok {
			return d, "window"
		}
	}

	l, w := s.vocab.DefaultSize(label)
	return extract.Dimension{Length: l, Width: w}, "default"
}

// byDistance lists indexes of [0,n) ordered by distance from idx. On ties
// the following fragment comes first: drawings put the size under the label.
func byDistance(n, idx int) []int {
	out := make([]int, 0, n)
	if idx >= 0 && idx < n {
		out = append(out, idx)
	}
	for d := 1; len(out) < n; d++ {
		if j := idx + d; j >= 0 && j < n {
			out = append(out, j)
		}
		if j := idx - d; j >= 0 && j < n {
			out = append(out, j)
		}
		if idx-d < 0 && idx+d >= n {
			break
		}
	}
	return out
}

func (s *LocalStrategy) roomRecord(label, name string, d extract.Dimension, height string) entity.RoomRecord {
	length, width := d.Strings()
	return entity.RoomRecord{
		RoomType:  label,
		RoomName:  name,
		Length:    length,
		Width:     width,
		Height:    height,
		Thickness: s.vocab.Defaults.Thickness,
		BlockType: s.vocab.Defaults.BlockType,
		Plaster:   s.vocab.Defaults.Plaster,
		Doors:     []entity.DoorRecord{},
		Windows:   []entity.WindowRecord{},
	}
}

// allocateOpenings gives each room the first openings of the schedule up
// to its type's allowance.
func (s *LocalStrategy) allocateOpenings(rooms []entity.RoomRecord, doors []entity.DoorRecord, windows []entity.WindowRecord) {
	for i := range rooms {
		maxDoors, maxWindows := s.vocab.OpeningAllowance(rooms[i].RoomType)
		rooms[i].Doors = append(rooms[i].Doors, doors[:min(maxDoors, len(doors))]...)
		rooms[i].Windows = append(rooms[i].Windows, windows[:min(maxWindows, len(windows))]...)
	}
}
