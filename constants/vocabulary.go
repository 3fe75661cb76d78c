package constants

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// RoomType is one row of the ordered room vocabulary.
type RoomType struct {
	Label         string   `json:"label"`
	Keywords      []string `json:"keywords"`
	DefaultLength float64  `json:"default_length"`
	DefaultWidth  float64  `json:"default_width"`
	MaxDoors      int      `json:"max_doors"`
	MaxWindows    int      `json:"max_windows"`
}

// FloorIndicator maps a phrase found on a drawing to the floor count it implies.
type FloorIndicator struct {
	Phrase string `json:"phrase"`
	Floors int    `json:"floors"`
}

// OpeningSize is a width x height pair in meters.
type OpeningSize struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Standard renders the canonical size string, e.g. "0.9 × 2.1 m".
func (s OpeningSize) Standard() string {
	return fmt.Sprintf("%s × %s m", FormatMeters(s.Width), FormatMeters(s.Height))
}

// RoomDefaults are the construction attributes stamped on every room record.
type RoomDefaults struct {
	Height      string `json:"height"`
	Thickness   string `json:"thickness"`
	BlockType   string `json:"block_type"`
	Plaster     string `json:"plaster"`
	DoorType    string `json:"door_type"`
	DoorFrame   string `json:"door_frame"`
	WindowGlass string `json:"window_glass"`
	WindowFrame string `json:"window_frame"`
}

// Vocabulary holds the canonical enumerations consumed by the extractors and
// the remote instruction. It is data, not logic: deployments override it with
// a JSON file.
type Vocabulary struct {
	RoomTypes         []RoomType       `json:"room_types"`
	UnknownRoomLength float64          `json:"unknown_room_length"`
	UnknownRoomWidth  float64          `json:"unknown_room_width"`
	MultiStoryPhrases []string         `json:"multi_story_phrases"`
	FloorIndicators   []FloorIndicator `json:"floor_indicators"`
	// GroundFloorFloors is the floor count implied by "ground floor" on its own.
	GroundFloorFloors int          `json:"ground_floor_floors"`
	RebarNotation     string       `json:"rebar_notation"`
	StandardDoor      OpeningSize  `json:"standard_door"`
	StandardWindow    OpeningSize  `json:"standard_window"`
	Defaults          RoomDefaults `json:"defaults"`
	FallbackRoomName  string       `json:"fallback_room_name"`
	FallbackLength    float64      `json:"fallback_length"`
	FallbackWidth     float64      `json:"fallback_width"`
}

// DefaultVocabulary returns the built-in vocabulary.
func DefaultVocabulary() Vocabulary {
	return Vocabulary{
		RoomTypes: []RoomType{
			{Label: "Master Bedroom", Keywords: []string{"master bedroom", "master bed", "master suite", "main bedroom", "mbr"}, DefaultLength: 5.0, DefaultWidth: 4.2, MaxDoors: 1, MaxWindows: 1},
			{Label: "Living Room", Keywords: []string{"living room", "sitting room", "family room", "great room", "living", "lounge", "lr"}, DefaultLength: 5.5, DefaultWidth: 4.5, MaxDoors: 2, MaxWindows: 2},
			{Label: "Kitchen", Keywords: []string{"kitchenette", "kitchen", "pantry", "kit"}, DefaultLength: 4.0, DefaultWidth: 3.0, MaxDoors: 1, MaxWindows: 1},
			{Label: "Bedroom", Keywords: []string{"bedroom", "bed room", "guest room", "bed", "br"}, DefaultLength: 4.5, DefaultWidth: 3.8, MaxDoors: 1, MaxWindows: 1},
			{Label: "Toilet", Keywords: []string{"water closet", "powder room", "toilet", "w.c", "wc"}, DefaultLength: 2.2, DefaultWidth: 1.8, MaxDoors: 1, MaxWindows: 1},
			{Label: "Bathroom", Keywords: []string{"bathroom", "washroom", "en-suite", "ensuite", "shower", "bath"}, DefaultLength: 2.8, DefaultWidth: 2.2, MaxDoors: 1, MaxWindows: 1},
			{Label: "Dining Room", Keywords: []string{"dining room", "eating area", "dining", "dr"}, DefaultLength: 4.5, DefaultWidth: 3.5, MaxDoors: 2, MaxWindows: 2},
			{Label: "Office", Keywords: []string{"work room", "office", "study", "den"}, DefaultLength: 3.8, DefaultWidth: 3.2, MaxDoors: 1, MaxWindows: 1},
			{Label: "Laundry", Keywords: []string{"utility room", "laundry"}, DefaultLength: 3.5, DefaultWidth: 2.5, MaxDoors: 1, MaxWindows: 1},
			{Label: "Store", Keywords: []string{"storage", "store", "stor", "closet", "utility"}, DefaultLength: 3.0, DefaultWidth: 2.5, MaxDoors: 1, MaxWindows: 1},
			{Label: "Garage", Keywords: []string{"car port", "carport", "garage", "parking", "gar"}, DefaultLength: 6.5, DefaultWidth: 4.5, MaxDoors: 1, MaxWindows: 1},
			{Label: "Verandah", Keywords: []string{"verandah", "veranda", "balcony", "terrace", "patio", "porch"}, DefaultLength: 4.5, DefaultWidth: 2.5, MaxDoors: 1, MaxWindows: 1},
			{Label: "Hall", Keywords: []string{"corridor", "hallway", "entrance", "passage", "lobby", "foyer", "hall"}, DefaultLength: 4.0, DefaultWidth: 2.0, MaxDoors: 1, MaxWindows: 1},
			{Label: "Wardrobe", Keywords: []string{"wardrobe", "walk-in", "dressing", "wic"}, DefaultLength: 2.5, DefaultWidth: 2.0, MaxDoors: 1, MaxWindows: 1},
		},
		UnknownRoomLength: 4.0,
		UnknownRoomWidth:  3.5,
		MultiStoryPhrases: []string{
			"multi-storey", "multi-story", "two storey", "two story", "2-storey", "2-story",
			"double storey", "double story", "upper floor", "upstairs", "duplex", "maisonette",
		},
		FloorIndicators: []FloorIndicator{
			{Phrase: "first floor", Floors: 2},
			{Phrase: "1st floor", Floors: 2},
			{Phrase: "level 1", Floors: 2},
			{Phrase: "second floor", Floors: 3},
			{Phrase: "2nd floor", Floors: 3},
			{Phrase: "level 2", Floors: 3},
			{Phrase: "third floor", Floors: 4},
			{Phrase: "3rd floor", Floors: 4},
			{Phrase: "level 3", Floors: 4},
			{Phrase: "fourth floor", Floors: 5},
			{Phrase: "4th floor", Floors: 5},
			{Phrase: "level 4", Floors: 5},
		},
		GroundFloorFloors: 1,
		RebarNotation:     "Y",
		StandardDoor:      OpeningSize{Width: 0.9, Height: 2.1},
		StandardWindow:    OpeningSize{Width: 1.2, Height: 1.2},
		Defaults: RoomDefaults{
			Height:      "2.7",
			Thickness:   "0.2",
			BlockType:   "Standard Block",
			Plaster:     "Both Sides",
			DoorType:    "Panel",
			DoorFrame:   "Wood",
			WindowGlass: "Clear",
			WindowFrame: "Aluminum",
		},
		FallbackRoomName: "Main Room",
		FallbackLength:   5.0,
		FallbackWidth:    4.0,
	}
}

// LoadVocabulary overlays the JSON file at path onto the defaults. An empty
// path returns the defaults unchanged.
func LoadVocabulary(path string) (Vocabulary, error) {
	v := DefaultVocabulary()
	if strings.TrimSpace(path) == "" {
		return v, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return v, fmt.Errorf("read vocabulary: %w", err)
	}
	if err := json.Unmarshal(b, &v); err != nil {
		return v, fmt.Errorf("decode vocabulary: %w", err)
	}
	if len(v.RoomTypes) == 0 {
		return v, fmt.Errorf("vocabulary %s: room_types is empty", path)
	}
	return v, nil
}

// RoomType returns the vocabulary row for label.
func (v Vocabulary) RoomType(label string) (RoomType, bool) {
	for _, rt := range v.RoomTypes {
		if rt.Label == label {
			return rt, true
		}
	}
	return RoomType{}, false
}

// DefaultSize returns the fallback dimensions for a room label.
func (v Vocabulary) DefaultSize(label string) (length, width float64) {
	if rt, ok := v.RoomType(label); ok && rt.DefaultLength > 0 && rt.DefaultWidth > 0 {
		return rt.DefaultLength, rt.DefaultWidth
	}
	return v.UnknownRoomLength, v.UnknownRoomWidth
}

// OpeningAllowance returns how many doors and windows a room label may hold.
func (v Vocabulary) OpeningAllowance(label string) (doors, windows int) {
	if rt, ok := v.RoomType(label); ok {
		return rt.MaxDoors, rt.MaxWindows
	}
	return 1, 1
}
