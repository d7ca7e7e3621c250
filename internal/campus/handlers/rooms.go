package handlers

import (
	"fmt"

	"campus-map/internal/campus/models"
	"campus-map/internal/offline/cache"

	"github.com/gofiber/fiber/v3"
)

// ============================================================
// Rooms, Events, Paths
// ============================================================

func (h *CampusHandler) ListRooms(c fiber.Ctx) error {
	snap, err := h.mapData()
	if err != nil {
		return h.writeError(c, err)
	}

	floor, ok := optionalIntQuery(c, "floor")
	if !ok {
		return errorJSON(c, fiber.StatusBadRequest, "invalid floor")
	}
	roomType := models.RoomType(c.Query("type"))
	if roomType != "" && !roomType.Valid() {
		return errorJSON(c, fiber.StatusBadRequest, fmt.Sprintf("unknown room type %q", roomType))
	}

	rooms := snap.MapData.FilterRooms(models.RoomFilter{
		Type:     roomType,
		Floor:    floor,
		Building: c.Query("building"),
	})
	return c.JSON(rooms)
}

type roomResponse struct {
	models.Room
	Events []models.Event `json:"events"`
	Paths  []models.Path  `json:"paths"`
}

func (h *CampusHandler) GetRoom(c fiber.Ctx) error {
	snap, err := h.mapData()
	if err != nil {
		return h.writeError(c, err)
	}

	room, ok := snap.MapData.RoomByID(c.Params("id"))
	if !ok {
		return h.writeError(c, errRoomNotFound)
	}

	return c.JSON(roomResponse{
		Room:   room,
		Events: snap.MapData.EventsForRoom(room),
		Paths:  snap.MapData.PathsForRoom(room.ID),
	})
}

func (h *CampusHandler) ListEvents(c fiber.Ctx) error {
	snap, err := h.mapData()
	if err != nil {
		return h.writeError(c, err)
	}

	status := models.EventStatus(c.Query("status"))
	if status != "" && !status.Valid() {
		return errorJSON(c, fiber.StatusBadRequest, fmt.Sprintf("unknown status %q", status))
	}
	priority := models.Priority(c.Query("priority"))
	if priority != "" && !priority.Valid() {
		return errorJSON(c, fiber.StatusBadRequest, fmt.Sprintf("unknown priority %q", priority))
	}

	events := snap.MapData.FilterEvents(models.EventFilter{
		Status:   status,
		Priority: priority,
		Room:     c.Query("room"),
	})
	return c.JSON(events)
}

func (h *CampusHandler) ListPaths(c fiber.Ctx) error {
	snap, err := h.mapData()
	if err != nil {
		return h.writeError(c, err)
	}

	if roomID := c.Query("roomId"); roomID != "" {
		return c.JSON(snap.MapData.PathsForRoom(roomID))
	}
	paths := snap.MapData.Paths
	if paths == nil {
		paths = []models.Path{}
	}
	return c.JSON(paths)
}

func (h *CampusHandler) DeletePath(c fiber.Ctx) error {
	h.writeMu.Lock()
	defer h.writeMu.Unlock()

	snap, err := h.mapData()
	if err != nil {
		return h.writeError(c, err)
	}

	data, found := snap.MapData.RemovePath(c.Params("id"))
	if !found {
		return h.writeError(c, errPathNotFound)
	}

	if _, err := h.cache.Save(c.Context(), cache.Entry{MapData: data, Routes: snap.Routes}); err != nil {
		return h.writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
