package models

import "strings"

// ============================================================
// Lookups
// ============================================================

func (d CampusMapData) RoomByID(id string) (Room, bool) {
	for _, r := range d.Rooms {
		if r.ID == id {
			return r, true
		}
	}
	return Room{}, false
}

// FindRoom ищет комнату по id, затем по имени (без учёта регистра).
// События ссылаются на комнату любым из двух способов.
func (d CampusMapData) FindRoom(ref string) (Room, bool) {
	if r, ok := d.RoomByID(ref); ok {
		return r, true
	}
	for _, r := range d.Rooms {
		if strings.EqualFold(r.Name, ref) {
			return r, true
		}
	}
	return Room{}, false
}

func (d CampusMapData) PathByID(id string) (Path, bool) {
	for _, p := range d.Paths {
		if p.ID == id {
			return p, true
		}
	}
	return Path{}, false
}

func (d CampusMapData) EventsForRoom(room Room) []Event {
	out := []Event{}
	for _, e := range d.Events {
		if e.Room == room.ID || strings.EqualFold(e.Room, room.Name) {
			out = append(out, e)
		}
	}
	return out
}

func (d CampusMapData) PathsForRoom(roomID string) []Path {
	out := []Path{}
	for _, p := range d.Paths {
		if p.RoomID == roomID {
			out = append(out, p)
		}
	}
	return out
}

// ============================================================
// Filters
// ============================================================

type RoomFilter struct {
	Type     RoomType
	Floor    *int
	Building string
}

func (d CampusMapData) FilterRooms(f RoomFilter) []Room {
	out := []Room{}
	for _, r := range d.Rooms {
		if f.Type != "" && r.Type != f.Type {
			continue
		}
		if f.Floor != nil && r.Floor != *f.Floor {
			continue
		}
		if f.Building != "" && !strings.EqualFold(r.Building, f.Building) {
			continue
		}
		out = append(out, r)
	}
	return out
}

type EventFilter struct {
	Status   EventStatus
	Priority Priority
	Room     string
}

func (d CampusMapData) FilterEvents(f EventFilter) []Event {
	var room *Room
	if f.Room != "" {
		if r, ok := d.FindRoom(f.Room); ok {
			room = &r
		}
	}

	out := []Event{}
	for _, e := range d.Events {
		if f.Status != "" && e.Status != f.Status {
			continue
		}
		if f.Priority != "" && e.Priority != f.Priority {
			continue
		}
		if f.Room != "" {
			if room == nil {
				if e.Room != f.Room {
					continue
				}
			} else if e.Room != room.ID && !strings.EqualFold(e.Room, room.Name) {
				continue
			}
		}
		out = append(out, e)
	}
	return out
}

// ============================================================
// Mutations
// ============================================================

// UpsertPath заменяет маршрут с тем же id или добавляет новый в конец.
func (d CampusMapData) UpsertPath(p Path) CampusMapData {
	paths := make([]Path, 0, len(d.Paths)+1)
	replaced := false
	for _, existing := range d.Paths {
		if existing.ID == p.ID {
			paths = append(paths, p)
			replaced = true
			continue
		}
		paths = append(paths, existing)
	}
	if !replaced {
		paths = append(paths, p)
	}
	d.Paths = paths
	return d
}

// RemovePath возвращает копию без маршрута id и признак того, что он был найден.
func (d CampusMapData) RemovePath(id string) (CampusMapData, bool) {
	paths := make([]Path, 0, len(d.Paths))
	found := false
	for _, p := range d.Paths {
		if p.ID == id {
			found = true
			continue
		}
		paths = append(paths, p)
	}
	d.Paths = paths
	return d, found
}
