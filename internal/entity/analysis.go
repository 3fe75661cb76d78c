package entity

import (
	"encoding/json"
	"fmt"

	"github.com/joseph-ayodele/plan-parser/constants"
)

// CustomSize holds explicit opening or block dimensions as decimal strings.
type CustomSize struct {
	Height string `json:"height"`
	Width  string `json:"width"`
	Price  string `json:"price"`
}

// CustomBlock describes a non-standard masonry unit.
type CustomBlock struct {
	Length    string `json:"length"`
	Height    string `json:"height"`
	Thickness string `json:"thickness"`
	Price     string `json:"price"`
}

// SizeType classifies an opening against the canonical sizes.
type SizeType string

const (
	SizeStandard SizeType = "standard"
	SizeCustom   SizeType = "custom"
)

// DoorRecord is one door entry in a room.
type DoorRecord struct {
	SizeType     SizeType   `json:"sizeType"`
	StandardSize string     `json:"standardSize"`
	Custom       CustomSize `json:"custom"`
	Type         string     `json:"type"`
	Frame        string     `json:"frame"`
	Count        int        `json:"count"`
}

// WindowRecord is one window entry in a room.
type WindowRecord struct {
	SizeType     SizeType   `json:"sizeType"`
	StandardSize string     `json:"standardSize"`
	Custom       CustomSize `json:"custom"`
	Glass        string     `json:"glass"`
	Frame        string     `json:"frame"`
	Count        int        `json:"count"`
}

// RoomRecord is one room of the plan. Numeric fields are meters as decimal strings.
type RoomRecord struct {
	RoomType    string         `json:"roomType"`
	RoomName    string         `json:"room_name"`
	Length      string         `json:"length"`
	Width       string         `json:"width"`
	Height      string         `json:"height"`
	Thickness   string         `json:"thickness"`
	BlockType   string         `json:"blockType"`
	Plaster     string         `json:"plaster"`
	CustomBlock CustomBlock    `json:"customBlock"`
	Doors       []DoorRecord   `json:"doors"`
	Windows     []WindowRecord `json:"windows"`
}

// WallDimensions summarises the wall runs of the building, in meters.
type WallDimensions struct {
	ExternalWallPerimeter float64 `json:"externalWallPerimiter"`
	InternalWallPerimeter float64 `json:"internalWallPerimiter"`
	ExternalWallHeight    float64 `json:"externalWallHeight"`
	InternalWallHeight    float64 `json:"internalWallHeight"`
	Length                float64 `json:"length"`
	Width                 float64 `json:"width"`
}

// WallProperties describes the wall build-up.
type WallProperties struct {
	BlockType string  `json:"blockType"`
	Thickness float64 `json:"thickness"`
	Plaster   string  `json:"plaster"`
}

// AnalysisResult is the envelope returned for one document. Top-level keys
// not modelled here (foundations, roofing, plumbing, ...) are kept verbatim
// in Extra and written back on marshal.
type AnalysisResult struct {
	Rooms                 []RoomRecord             `json:"rooms"`
	Floors                int                      `json:"floors"`
	AnalysisMethod        constants.AnalysisMethod `json:"analysis_method"`
	Note                  string                   `json:"note,omitempty"`
	TextElementsProcessed int                      `json:"text_elements_processed,omitempty"`
	WallDimensions        *WallDimensions          `json:"wallDimensions,omitempty"`
	WallProperties        *WallProperties          `json:"wallProperties,omitempty"`

	Extra map[string]json.RawMessage `json:"-"`
}

type analysisResultAlias AnalysisResult

var knownResultKeys = map[string]struct{}{
	"rooms": {}, "floors": {}, "analysis_method": {}, "note": {},
	"text_elements_processed": {}, "wallDimensions": {}, "wallProperties": {},
}

// MarshalJSON writes the modelled fields plus Extra.
func (r AnalysisResult) MarshalJSON() ([]byte, error) {
	base, err := json.Marshal(analysisResultAlias(r))
	if err != nil {
		return nil, err
	}
	if len(r.Extra) == 0 {
		return base, nil
	}
	merged := make(map[string]json.RawMessage, len(r.Extra)+len(knownResultKeys))
	for k, v := range r.Extra {
		if _, known := knownResultKeys[k]; !known {
			merged[k] = v
		}
	}
	if err := json.Unmarshal(base, &merged); err != nil {
		return nil, err
	}
	return json.Marshal(merged)
}

// UnmarshalJSON reads the modelled fields and keeps the rest in Extra.
func (r *AnalysisResult) UnmarshalJSON(data []byte) error {
	var alias analysisResultAlias
	if err := json.Unmarshal(data, &alias); err != nil {
		return err
	}
	var all map[string]json.RawMessage
	if err := json.Unmarshal(data, &all); err != nil {
		return err
	}
	*r = AnalysisResult(alias)
	for k, v := range all {
		if _, known := knownResultKeys[k]; known {
			continue
		}
		if r.Extra == nil {
			r.Extra = make(map[string]json.RawMessage)
		}
		r.Extra[k] = v
	}
	return nil
}

// Validate checks the success invariant: at least one room and one floor.
func (r *AnalysisResult) Validate() error {
	if r == nil {
		return fmt.Errorf("nil result")
	}
	if len(r.Rooms) == 0 {
		return fmt.Errorf("rooms is empty")
	}
	if r.Floors < 1 {
		return fmt.Errorf("floors must be >= 1, got %d", r.Floors)
	}
	return nil
}
