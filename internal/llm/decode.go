package llm

import (
	"bytes"
	"encoding/json"
	"errors"
	"regexp"
	"strings"
)

// ErrNoJSON is returned when no JSON object can be recovered from a reply.
var ErrNoJSON = errors.New("no JSON object in response")

var reFence = regexp.MustCompile("(?m)^\\s*```[a-zA-Z]*\\s*$")

// DecodeObject recovers a JSON object from free-form model output: code
// fences are stripped, the whole text is tried, then the first balanced
// {...} span. It returns the compacted object bytes.
func DecodeObject(text string) ([]byte, error) {
	s := strings.TrimSpace(reFence.ReplaceAllString(text, ""))
	s = strings.TrimSpace(strings.Trim(s, "`"))
	if s == "" {
		return nil, ErrNoJSON
	}
	if b, ok := asObject(s); ok {
		return b, nil
	}
	if span, ok := firstBalancedObject(s); ok {
		if b, ok := asObject(span); ok {
			return b, nil
		}
	}
	return nil, ErrNoJSON
}

func asObject(s string) ([]byte, bool) {
	var m map[string]json.RawMessage
	if err := json.Unmarshal([]byte(s), &m); err != nil {
		return nil, false
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, []byte(s)); err != nil {
		return nil, false
	}
	return buf.Bytes(), true
}

// firstBalancedObject scans for the first '{' and returns the span up to its
// matching '}', honouring string literals and escapes.
func firstBalancedObject(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", false
	}
	depth := 0
	inString, escaped := false, false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}

// UpstreamError returns the message of a top-level "error" key, if present.
func UpstreamError(obj []byte) (string, bool) {
	var probe struct {
		Error json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(obj, &probe); err != nil || len(probe.Error) == 0 || string(probe.Error) == "null" {
		return "", false
	}
	var msg string
	if err := json.Unmarshal(probe.Error, &msg); err == nil {
		return msg, true
	}
	return string(probe.Error), true
}
