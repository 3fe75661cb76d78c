package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// AnalysisJob is one recorded run of the extraction pipeline over an uploaded plan.
type AnalysisJob struct {
	ID             uuid.UUID       `json:"id"`
	FileName       string          `json:"file_name"`
	ContentHash    string          `json:"content_hash"`
	Format         string          `json:"format"`
	StartedAt      time.Time       `json:"started_at"`
	FinishedAt     *time.Time      `json:"finished_at,omitempty"`
	Status         string          `json:"status"`
	AnalysisMethod string          `json:"analysis_method,omitempty"`
	RoomCount      int             `json:"room_count"`
	Floors         int             `json:"floors"`
	ErrorMessage   *string         `json:"error_message,omitempty"`
	ResultJSON     json.RawMessage `json:"result_json,omitempty"`
	ArchiveKey     *string         `json:"archive_key,omitempty"`
}
