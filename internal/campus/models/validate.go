package models

import (
	"errors"
	"fmt"
)

var ErrInvalidMapData = errors.New("invalid map data")

// Validate проверяет инварианты набора данных карты и возвращает все нарушения сразу.
func (d CampusMapData) Validate() error {
	var errs []error

	rooms := make(map[string]struct{}, len(d.Rooms))
	for i, room := range d.Rooms {
		if room.ID == "" {
			errs = append(errs, fmt.Errorf("rooms[%d]: empty id", i))
			continue
		}
		if _, dup := rooms[room.ID]; dup {
			errs = append(errs, fmt.Errorf("rooms[%d]: duplicate id %q", i, room.ID))
		}
		rooms[room.ID] = struct{}{}

		if !room.Type.Valid() {
			errs = append(errs, fmt.Errorf("room %q: unknown type %q", room.ID, room.Type))
		}
		if room.Capacity < 0 {
			errs = append(errs, fmt.Errorf("room %q: negative capacity", room.ID))
		}
	}

	for i, event := range d.Events {
		if !event.Status.Valid() {
			errs = append(errs, fmt.Errorf("events[%d]: unknown status %q", i, event.Status))
		}
		if !event.Priority.Valid() {
			errs = append(errs, fmt.Errorf("events[%d]: unknown priority %q", i, event.Priority))
		}
	}

	for i, path := range d.Paths {
		if err := path.validate(rooms); err != nil {
			errs = append(errs, fmt.Errorf("paths[%d]: %w", i, err))
		}
	}

	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalidMapData, errors.Join(errs...))
}

func (p Path) validate(rooms map[string]struct{}) error {
	if p.ID == "" {
		return errors.New("empty id")
	}
	if _, ok := rooms[p.RoomID]; !ok {
		return fmt.Errorf("path %q: unknown room %q", p.ID, p.RoomID)
	}
	if !p.Type.Valid() {
		return fmt.Errorf("path %q: unknown type %q", p.ID, p.Type)
	}
	if p.IsActive && len(p.Points) == 0 {
		return fmt.Errorf("path %q: active path has no points", p.ID)
	}
	for j, pt := range p.Points {
		if pt.Type != "" && !pt.Type.Valid() {
			return fmt.Errorf("path %q: points[%d]: unknown type %q", p.ID, j, pt.Type)
		}
	}
	return nil
}
