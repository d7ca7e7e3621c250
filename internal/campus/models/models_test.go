package models

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func sampleData() CampusMapData {
	minutes := 3
	meters := 120.5
	return CampusMapData{
		Rooms: []Room{
			{ID: "r1", Name: "Main Library", X: 10, Y: 20, Capacity: 200, Type: RoomLibrary, Floor: 1, Building: "A", Amenities: []string{"wifi"}},
			{ID: "r2", Name: "Lab 204", X: 40, Y: 60, Capacity: 30, Type: RoomLab, Floor: 2, Building: "B"},
		},
		Events: []Event{
			{ID: 1, Title: "Open day", Room: "Main Library", Status: EventConfirmed, Priority: PriorityHigh},
			{ID: 2, Title: "Robotics", Room: "r2", Status: EventOngoing, Priority: PriorityLow},
			{ID: 3, Title: "Cancelled talk", Room: "r2", Status: EventCancelled, Priority: PriorityMedium},
		},
		Paths: []Path{
			{ID: "p1", RoomID: "r1", Points: []PathPoint{{X: 0, Y: 0, Type: PointEntrance}, {X: 10, Y: 20, Type: PointDestination}}, Type: PathUserCreated, IsActive: true, EstimatedTime: &minutes, Distance: &meters},
		},
	}
}

func TestValidateAcceptsSample(t *testing.T) {
	if err := sampleData().Validate(); err != nil {
		t.Fatalf("expected valid data, got %v", err)
	}
}

func TestValidateEmptyData(t *testing.T) {
	if err := (CampusMapData{}).Validate(); err != nil {
		t.Fatalf("expected empty data to be valid, got %v", err)
	}
}

func TestValidateViolations(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*CampusMapData)
		want   string
	}{
		{"empty room id", func(d *CampusMapData) { d.Rooms[0].ID = "" }, "empty id"},
		{"duplicate room id", func(d *CampusMapData) { d.Rooms[1].ID = "r1"; d.Paths = nil }, "duplicate id"},
		{"unknown room type", func(d *CampusMapData) { d.Rooms[0].Type = "gym" }, "unknown type"},
		{"negative capacity", func(d *CampusMapData) { d.Rooms[0].Capacity = -1 }, "negative capacity"},
		{"unknown status", func(d *CampusMapData) { d.Events[0].Status = "postponed" }, "unknown status"},
		{"unknown priority", func(d *CampusMapData) { d.Events[0].Priority = "urgent" }, "unknown priority"},
		{"dangling room ref", func(d *CampusMapData) { d.Paths[0].RoomID = "missing" }, "unknown room"},
		{"active without points", func(d *CampusMapData) { d.Paths[0].Points = nil }, "no points"},
		{"unknown path type", func(d *CampusMapData) { d.Paths[0].Type = "computed" }, "unknown type"},
		{"unknown point type", func(d *CampusMapData) { d.Paths[0].Points[0].Type = "stairs" }, "unknown type"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := sampleData()
			tt.mutate(&data)

			err := data.Validate()
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.Is(err, ErrInvalidMapData) {
				t.Fatalf("expected ErrInvalidMapData, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected %q in error, got %v", tt.want, err)
			}
		})
	}
}

func TestValidateInactivePathMayBeEmpty(t *testing.T) {
	data := sampleData()
	data.Paths[0].IsActive = false
	data.Paths[0].Points = nil

	if err := data.Validate(); err != nil {
		t.Fatalf("expected inactive empty path to be valid, got %v", err)
	}
}

func TestFindRoomByIDOrName(t *testing.T) {
	data := sampleData()

	if r, ok := data.FindRoom("r2"); !ok || r.Name != "Lab 204" {
		t.Fatalf("expected lookup by id, got %+v %v", r, ok)
	}
	if r, ok := data.FindRoom("main library"); !ok || r.ID != "r1" {
		t.Fatalf("expected case-insensitive lookup by name, got %+v %v", r, ok)
	}
	if _, ok := data.FindRoom("nope"); ok {
		t.Fatal("expected miss")
	}
}

func TestEventsForRoom(t *testing.T) {
	data := sampleData()

	lib, _ := data.RoomByID("r1")
	if got := data.EventsForRoom(lib); len(got) != 1 || got[0].ID != 1 {
		t.Fatalf("expected event 1 for library, got %+v", got)
	}
	lab, _ := data.RoomByID("r2")
	if got := data.EventsForRoom(lab); len(got) != 2 {
		t.Fatalf("expected 2 events for lab, got %d", len(got))
	}
}

func TestFilterRooms(t *testing.T) {
	data := sampleData()
	floor := 2

	if got := data.FilterRooms(RoomFilter{Floor: &floor}); len(got) != 1 || got[0].ID != "r2" {
		t.Fatalf("expected r2 on floor 2, got %+v", got)
	}
	if got := data.FilterRooms(RoomFilter{Type: RoomLibrary, Building: "a"}); len(got) != 1 || got[0].ID != "r1" {
		t.Fatalf("expected r1, got %+v", got)
	}
	if got := data.FilterRooms(RoomFilter{Type: RoomOffice}); len(got) != 0 {
		t.Fatalf("expected no offices, got %+v", got)
	}
}

func TestFilterEvents(t *testing.T) {
	data := sampleData()

	if got := data.FilterEvents(EventFilter{Room: "Lab 204", Status: EventOngoing}); len(got) != 1 || got[0].ID != 2 {
		t.Fatalf("expected event 2, got %+v", got)
	}
	if got := data.FilterEvents(EventFilter{Priority: PriorityHigh}); len(got) != 1 || got[0].ID != 1 {
		t.Fatalf("expected event 1, got %+v", got)
	}
}

func TestUpsertAndRemovePath(t *testing.T) {
	data := sampleData()

	updated := data.UpsertPath(Path{ID: "p1", RoomID: "r1", Name: "renamed", Type: PathCustom})
	if len(updated.Paths) != 1 || updated.Paths[0].Name != "renamed" {
		t.Fatalf("expected replacement, got %+v", updated.Paths)
	}
	if data.Paths[0].Name != "" {
		t.Fatal("expected original data to stay untouched")
	}

	added := updated.UpsertPath(Path{ID: "p2", RoomID: "r2", Type: PathCustom})
	if len(added.Paths) != 2 || added.Paths[1].ID != "p2" {
		t.Fatalf("expected append, got %+v", added.Paths)
	}

	removed, ok := added.RemovePath("p1")
	if !ok || len(removed.Paths) != 1 || removed.Paths[0].ID != "p2" {
		t.Fatalf("expected p1 removed, got %+v %v", removed.Paths, ok)
	}
	if _, ok := removed.RemovePath("p1"); ok {
		t.Fatal("expected second removal to report missing path")
	}
}

func TestJSONFieldNames(t *testing.T) {
	raw, err := json.Marshal(sampleData())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	for _, field := range []string{`"roomId"`, `"isActive"`, `"estimatedTime"`, `"createdAt"`, `"attendees"`} {
		if !strings.Contains(string(raw), field) {
			t.Fatalf("expected %s in %s", field, raw)
		}
	}

	var room Room
	if err := json.Unmarshal([]byte(`{"id":"x","type":"lab","path":[[1,2],[3,4]]}`), &room); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(room.Path) != 2 || room.Path[1][0] != 3 || room.Path[1][1] != 4 {
		t.Fatalf("expected coordinate pairs, got %+v", room.Path)
	}
}
