package llm

import (
	"encoding/json"
	"strconv"
	"strings"
)

// optionalObjectSections are top-level sections decoded into typed structs;
// anything but an object there would break decoding.
var optionalObjectSections = []string{"wallDimensions", "wallProperties"}

// SanitizeOptionalSections drops null top-level keys and malformed typed
// sections, and turns numeric strings inside wall sections into numbers so
// the document still validates. Required keys are never touched.
func SanitizeOptionalSections(doc []byte) ([]byte, []string, error) {
	var m map[string]any
	if err := json.Unmarshal(doc, &m); err != nil {
		return nil, nil, err
	}

	var dropped []string
	for k, v := range m {
		if v == nil && k != "rooms" && k != "floors" {
			delete(m, k)
			dropped = append(dropped, k)
		}
	}
	for _, k := range optionalObjectSections {
		v, ok := m[k]
		if !ok {
			continue
		}
		obj, ok := v.(map[string]any)
		if !ok {
			delete(m, k)
			dropped = append(dropped, k)
			continue
		}
		for field, fv := range obj {
			s, ok := fv.(string)
			if !ok {
				continue
			}
			s = strings.TrimSuffix(strings.TrimSpace(s), "m")
			if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
				obj[field] = f
			}
		}
	}

	b, err := json.Marshal(m)
	if err != nil {
		return nil, nil, err
	}
	return b, dropped, nil
}
