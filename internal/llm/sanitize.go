package llm

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"github.com/joseph-ayodele/plan-parser/constants"
	"github.com/joseph-ayodele/plan-parser/internal/extract"
)

var roomLengthFields = []string{"length", "width", "height", "thickness"}

// NormalizeAndSanitizeJSON
// - Renames known synonyms (Rooms -> rooms, room_type -> roomType, ...)
// - Drops rooms that are not objects
// - Coerces room measurements to meter decimal strings
// - Coerces opening counts to integers and opening sizes to strings
// - Coerces floors to an integer, defaulting to 1
func NormalizeAndSanitizeJSON(raw []byte, logger *slog.Logger) ([]byte, []string, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, nil, fmt.Errorf("sanitize: decode: %w", err)
	}

	changed := make([]string, 0, 8)
	rename(m, "Rooms", "rooms", &changed)
	rename(m, "room_list", "rooms", &changed)
	rename(m, "floor_count", "floors", &changed)
	rename(m, "numberOfFloors", "floors", &changed)
	rename(m, "storeys", "floors", &changed)

	if rooms, ok := m["rooms"].([]any); ok {
		kept := make([]any, 0, len(rooms))
		for i, r := range rooms {
			room, ok := r.(map[string]any)
			if !ok {
				changed = append(changed, fmt.Sprintf("rooms[%d](dropped)", i))
				continue
			}
			sanitizeRoom(room, i, &changed)
			kept = append(kept, room)
		}
		m["rooms"] = kept
	}

	floors, ok := coerceInt(m["floors"])
	if !ok || floors < 1 {
		if _, present := m["floors"]; present {
			changed = append(changed, "floors(invalid)")
		}
		floors = 1
	}
	m["floors"] = floors

	out, err := json.Marshal(m)
	if err != nil {
		return nil, changed, fmt.Errorf("sanitize: encode: %w", err)
	}
	if len(changed) > 0 {
		logger.Debug("llm.extract.normalize_sanitize", "changed", changed)
	}
	return out, changed, nil
}

func sanitizeRoom(room map[string]any, i int, changed *[]string) {
	rename(room, "room_type", "roomType", changed)
	rename(room, "type", "roomType", changed)
	rename(room, "name", "room_name", changed)
	rename(room, "roomName", "room_name", changed)

	if s, _ := room["roomType"].(string); strings.TrimSpace(s) == "" {
		if n, ok := room["room_name"].(string); ok && strings.TrimSpace(n) != "" {
			room["roomType"] = strings.TrimSpace(n)
		}
	}
	if _, ok := room["room_name"].(string); !ok {
		if t, ok := room["roomType"].(string); ok {
			room["room_name"] = t
		}
	}

	for _, k := range []string{"roomType", "room_name", "blockType", "plaster"} {
		if v, present := room[k]; present {
			if s, ok := stringify(v); ok {
				room[k] = s
			} else {
				delete(room, k)
			}
		}
	}
	for _, k := range roomLengthFields {
		v, present := room[k]
		if !present {
			continue
		}
		if s, ok := meters(v); ok {
			room[k] = s
		} else {
			delete(room, k)
			*changed = append(*changed, fmt.Sprintf("rooms[%d].%s(invalid)", i, k))
		}
	}
	if cb, ok := room["customBlock"].(map[string]any); ok {
		stringifyAll(cb)
	}

	room["doors"] = sanitizeOpenings(room["doors"])
	room["windows"] = sanitizeOpenings(room["windows"])
}

// sanitizeOpenings keeps object entries, stringifies their descriptors and
// forces an integer count of at least 1.
func sanitizeOpenings(v any) []any {
	items, _ := v.([]any)
	out := make([]any, 0, len(items))
	for _, it := range items {
		o, ok := it.(map[string]any)
		if !ok {
			continue
		}
		for _, k := range []string{"sizeType", "standardSize", "type", "frame", "glass"} {
			if val, present := o[k]; present {
				if s, ok := stringify(val); ok {
					o[k] = s
				} else {
					delete(o, k)
				}
			}
		}
		if c, ok := o["custom"].(map[string]any); ok {
			stringifyAll(c)
		} else {
			delete(o, "custom")
		}
		n, ok := coerceInt(o["count"])
		if !ok || n < 1 {
			n = 1
		}
		o["count"] = n
		out = append(out, o)
	}
	return out
}

func rename(m map[string]any, from, to string, changed *[]string) {
	if v, ok := m[from]; ok {
		if _, exists := m[to]; !exists {
			m[to] = v
		}
		delete(m, from)
		*changed = append(*changed, from+"->"+to)
	}
}

// meters turns 4.5, "4.5", "4500mm" or "4,5 m" into a decimal string.
func meters(v any) (string, bool) {
	switch t := v.(type) {
	case float64:
		if t < 0 || math.IsNaN(t) || math.IsInf(t, 0) {
			return "", false
		}
		if f, ok := extract.ParseLength(strconv.FormatFloat(t, 'f', -1, 64)); ok {
			return constants.FormatMeters(f), true
		}
	case string:
		if f, ok := extract.ParseLength(strings.TrimSpace(t)); ok {
			return constants.FormatMeters(f), true
		}
	}
	return "", false
}

func stringify(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t), true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(t), true
	case nil:
		return "", true
	}
	return "", false
}

func stringifyAll(m map[string]any) {
	for k, v := range m {
		if s, ok := stringify(v); ok {
			m[k] = s
		} else {
			delete(m, k)
		}
	}
}

func coerceInt(v any) (int, bool) {
	switch t := v.(type) {
	case float64:
		return int(math.Round(t)), true
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(t))
		return n, err == nil
	}
	return 0, false
}
