package llm

import (
	"encoding/json"
	"io"
	"log/slog"
	"testing"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func sanitized(t *testing.T, in string) map[string]any {
	t.Helper()
	out, _, err := NormalizeAndSanitizeJSON([]byte(in), quietLogger())
	if err != nil {
		t.Fatalf("NormalizeAndSanitizeJSON: %v", err)
	}
	var m map[string]any
	if err := json.Unmarshal(out, &m); err != nil {
		t.Fatal(err)
	}
	return m
}

func TestNormalizeRenamesSynonyms(t *testing.T) {
	m := sanitized(t, `{"Rooms":[{"room_type":"Kitchen","name":"KITCHEN 1","length":4.5,"width":"3600mm"}],"numberOfFloors":"2"}`)

	if m["floors"] != float64(2) {
		t.Errorf("floors = %v, want 2", m["floors"])
	}
	rooms, ok := m["rooms"].([]any)
	if !ok || len(rooms) != 1 {
		t.Fatalf("rooms = %v", m["rooms"])
	}
	room := rooms[0].(map[string]any)
	want := map[string]string{"roomType": "Kitchen", "room_name": "KITCHEN 1", "length": "4.5", "width": "3.6"}
	for k, v := range want {
		if room[k] != v {
			t.Errorf("room[%s] = %v, want %q", k, room[k], v)
		}
	}
	if _, ok := room["doors"].([]any); !ok {
		t.Errorf("doors not normalized to an array: %v", room["doors"])
	}
}

func TestNormalizeRoomFields(t *testing.T) {
	m := sanitized(t, `{"rooms":[
		"garbage",
		{"room_name":"Lounge","length":"4,5 m","width":"bad","height":2.7,"thickness":"200mm","blockType":6,
		 "doors":[{"sizeType":"standard","count":"3"},{"count":0},"x"],
		 "windows":[{"custom":{"height":1.2,"width":0.9},"count":2.4}]}
	]}`)

	if m["floors"] != float64(1) {
		t.Errorf("floors = %v, want default 1", m["floors"])
	}
	rooms := m["rooms"].([]any)
	if len(rooms) != 1 {
		t.Fatalf("non-object room kept: %v", rooms)
	}
	room := rooms[0].(map[string]any)
	if room["roomType"] != "Lounge" || room["room_name"] != "Lounge" {
		t.Errorf("roomType/room_name = %v/%v", room["roomType"], room["room_name"])
	}
	if room["length"] != "4.5" || room["height"] != "2.7" || room["thickness"] != "0.2" || room["blockType"] != "6" {
		t.Errorf("room = %v", room)
	}
	if _, ok := room["width"]; ok {
		t.Errorf("invalid width kept: %v", room["width"])
	}

	doors := room["doors"].([]any)
	if len(doors) != 2 {
		t.Fatalf("doors = %v", doors)
	}
	if doors[0].(map[string]any)["count"] != float64(3) || doors[1].(map[string]any)["count"] != float64(1) {
		t.Errorf("door counts = %v", doors)
	}
	w := room["windows"].([]any)[0].(map[string]any)
	if w["count"] != float64(2) {
		t.Errorf("window count = %v", w["count"])
	}
	custom := w["custom"].(map[string]any)
	if custom["height"] != "1.2" || custom["width"] != "0.9" {
		t.Errorf("custom = %v", custom)
	}
}

func TestNormalizeUnitlessLengths(t *testing.T) {
	m := sanitized(t, `{"rooms":[{"room_name":"Hall","length":"4500","width":4500,"height":270,"thickness":0.2}]}`)

	room := m["rooms"].([]any)[0].(map[string]any)
	want := map[string]string{"length": "4.5", "width": "4.5", "height": "2.7", "thickness": "0.2"}
	for k, v := range want {
		if room[k] != v {
			t.Errorf("room[%s] = %v, want %q", k, room[k], v)
		}
	}
}

func TestNormalizeRejectsNonObject(t *testing.T) {
	if _, _, err := NormalizeAndSanitizeJSON([]byte(`[1]`), quietLogger()); err == nil {
		t.Error("want error for array input")
	}
}

func TestSanitizeOptionalSections(t *testing.T) {
	in := `{"rooms":[],"floors":1,"roofing":null,"wallDimensions":{"externalWallPerimiter":"32.4","externalWallHeight":"3 m"},"wallProperties":"brick"}`
	out, dropped, err := SanitizeOptionalSections([]byte(in))
	if err != nil {
		t.Fatal(err)
	}
	var m map[string]any
	if err := json.Unmarshal(out, &m); err != nil {
		t.Fatal(err)
	}
	if _, ok := m["roofing"]; ok {
		t.Error("null section kept")
	}
	if _, ok := m["wallProperties"]; ok {
		t.Error("non-object wallProperties kept")
	}
	wd := m["wallDimensions"].(map[string]any)
	if wd["externalWallPerimiter"] != 32.4 || wd["externalWallHeight"] != float64(3) {
		t.Errorf("wallDimensions = %v", wd)
	}
	if len(dropped) != 2 {
		t.Errorf("dropped = %v", dropped)
	}
	if _, ok := m["rooms"]; !ok {
		t.Error("rooms removed")
	}
}
