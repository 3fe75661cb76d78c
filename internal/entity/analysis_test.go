package entity

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestAnalysisResultKeepsUnmodelledSections(t *testing.T) {
	in := `{
		"rooms": [{"roomType": "Kitchen", "room_name": "Kitchen", "length": "4", "width": "3"}],
		"floors": 2,
		"analysis_method": "gemini_ai",
		"foundations": {"depth": "0.9"},
		"roofing": ["tiles"]
	}`
	var res AnalysisResult
	if err := json.Unmarshal([]byte(in), &res); err != nil {
		t.Fatal(err)
	}
	if res.Floors != 2 || len(res.Rooms) != 1 || res.Rooms[0].Length != "4" {
		t.Fatalf("res = %+v", res)
	}
	if len(res.Extra) != 2 || string(res.Extra["roofing"]) != `["tiles"]` {
		t.Errorf("extra = %v", res.Extra)
	}

	out, err := json.Marshal(res)
	if err != nil {
		t.Fatal(err)
	}
	var back map[string]json.RawMessage
	if err := json.Unmarshal(out, &back); err != nil {
		t.Fatal(err)
	}
	for _, k := range []string{"rooms", "floors", "analysis_method", "foundations", "roofing"} {
		if _, ok := back[k]; !ok {
			t.Errorf("key %q lost on marshal", k)
		}
	}
}

func TestAnalysisResultExtraCannotShadowFields(t *testing.T) {
	res := AnalysisResult{
		Rooms:  []RoomRecord{{RoomType: "Hall"}},
		Floors: 1,
		Extra:  map[string]json.RawMessage{"floors": json.RawMessage(`7`), "plumbing": json.RawMessage(`{}`)},
	}
	out, err := json.Marshal(res)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(out), `"floors":1`) || !strings.Contains(string(out), `"plumbing":{}`) {
		t.Errorf("marshal = %s", out)
	}
}

func TestAnalysisResultValidate(t *testing.T) {
	tests := []struct {
		name    string
		res     *AnalysisResult
		wantErr bool
	}{
		{"nil", nil, true},
		{"no rooms", &AnalysisResult{Floors: 1}, true},
		{"zero floors", &AnalysisResult{Rooms: []RoomRecord{{}}}, true},
		{"ok", &AnalysisResult{Rooms: []RoomRecord{{}}, Floors: 1}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.res.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
