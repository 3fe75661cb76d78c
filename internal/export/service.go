package export

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/plan-parser/internal/entity"
	"github.com/joseph-ayodele/plan-parser/internal/repository"
)

const (
	roomsSheet   = "Rooms"
	summarySheet = "Summary"
)

// Entry is one analysed drawing in a schedule.
type Entry struct {
	Source string
	Result *entity.AnalysisResult
}

// Service produces XLSX room schedules.
type Service struct {
	jobs   repository.AnalysisJobRepository
	logger *slog.Logger
}

func NewService(jobs repository.AnalysisJobRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{jobs: jobs, logger: logger}
}

// ExportJobXLSX renders the stored result of one job.
func (s *Service) ExportJobXLSX(ctx context.Context, id uuid.UUID) ([]byte, error) {
	job, err := s.jobs.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(job.ResultJSON) == 0 {
		return nil, fmt.Errorf("job %s has no result", id)
	}
	var res entity.AnalysisResult
	if err := json.Unmarshal(job.ResultJSON, &res); err != nil {
		return nil, fmt.Errorf("decode job result: %w", err)
	}
	return s.RoomScheduleXLSX([]Entry{{Source: job.FileName, Result: &res}})
}

// RoomScheduleXLSX returns a workbook with one row per room and one
// summary row per drawing.
func (s *Service) RoomScheduleXLSX(entries []Entry) ([]byte, error) {
	start := time.Now()

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", roomsSheet); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(summarySheet); err != nil {
		return nil, err
	}
	activeIndex, _ := f.GetSheetIndex(roomsSheet)
	f.SetActiveSheet(activeIndex)

	writeRow(f, roomsSheet, 1, "Drawing", "Room Type", "Room Name", "Length (m)", "Width (m)", "Height (m)", "Area (m²)", "Doors", "Windows", "Method")
	writeRow(f, summarySheet, 1, "Drawing", "Floors", "Rooms", "Total Area (m²)", "Method", "Note")

	row, rooms := 2, 0
	for i, e := range entries {
		if e.Result == nil {
			continue
		}
		var total float64
		for _, r := range e.Result.Rooms {
			area := meters(r.Length) * meters(r.Width)
			total += area
			writeRow(f, roomsSheet, row,
				e.Source, r.RoomType, r.RoomName,
				meters(r.Length), meters(r.Width), meters(r.Height),
				round2(area), doorCount(r.Doors), windowCount(r.Windows),
				string(e.Result.AnalysisMethod),
			)
			row++
			rooms++
		}
		writeRow(f, summarySheet, i+2,
			e.Source, e.Result.Floors, len(e.Result.Rooms), round2(total),
			string(e.Result.AnalysisMethod), e.Result.Note,
		)
	}

	_ = f.SetColWidth(roomsSheet, "A", "A", 36)
	_ = f.SetColWidth(roomsSheet, "B", "C", 20)
	_ = f.SetColWidth(roomsSheet, "D", "I", 12)
	_ = f.SetColWidth(roomsSheet, "J", "J", 18)
	_ = f.SetColWidth(summarySheet, "A", "A", 36)
	_ = f.SetColWidth(summarySheet, "F", "F", 48)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	s.logger.Info("export.xlsx.ok",
		"drawings", len(entries),
		"rooms", rooms,
		"bytes", buf.Len(),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

func writeRow(f *excelize.File, sheet string, row int, values ...any) {
	for i, v := range values {
		cell, _ := excelize.CoordinatesToCellName(i+1, row)
		_ = f.SetCellValue(sheet, cell, v)
	}
}

func meters(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

func round2(v float64) float64 {
	return float64(int64(v*100+0.5)) / 100
}

func doorCount(ds []entity.DoorRecord) int {
	n := 0
	for _, d := range ds {
		n += d.Count
	}
	return n
}

func windowCount(ws []entity.WindowRecord) int {
	n := 0
	for _, w := range ws {
		n += w.Count
	}
	return n
}
