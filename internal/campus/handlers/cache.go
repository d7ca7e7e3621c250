package handlers

import (
	"encoding/json"
	"errors"
	"fmt"

	"campus-map/internal/offline/cache"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"
)

// ============================================================
// Offline Cache Handlers
// ============================================================

func decodeBody(c fiber.Ctx, target any) error {
	if len(c.Body()) == 0 {
		return errors.New("empty body")
	}
	if err := json.Unmarshal(c.Body(), target); err != nil {
		return fmt.Errorf("invalid json: %w", err)
	}
	return nil
}

// GetCache отдаёт снимок из памяти; 404, если кэш пуст.
func (h *CampusHandler) GetCache(c fiber.Ctx) error {
	snap, ok := h.cache.Data()
	if !ok {
		return errorJSON(c, fiber.StatusNotFound, "cache empty")
	}
	return c.JSON(snap)
}

// SaveCache принимает {mapData, routes}; время записи проставляет кэш.
func (h *CampusHandler) SaveCache(c fiber.Ctx) error {
	var entry cache.Entry
	if err := decodeBody(c, &entry); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, err.Error())
	}

	h.writeMu.Lock()
	defer h.writeMu.Unlock()

	snap, err := h.cache.Save(c.Context(), entry)
	if err != nil {
		return h.writeError(c, err)
	}

	h.logger.Info("cache saved",
		zap.Int("rooms", len(snap.MapData.Rooms)),
		zap.Int("events", len(snap.MapData.Events)),
		zap.Int("paths", len(snap.MapData.Paths)),
		zap.Int("routes", len(snap.Routes)),
	)
	return c.JSON(snap)
}

// ReloadCache перечитывает слот из хранилища.
func (h *CampusHandler) ReloadCache(c fiber.Ctx) error {
	snap, ok, err := h.cache.Load(c.Context())
	if err != nil {
		return h.writeError(c, err)
	}
	if !ok {
		return errorJSON(c, fiber.StatusNotFound, "cache empty")
	}
	return c.JSON(snap)
}

func (h *CampusHandler) ClearCache(c fiber.Ctx) error {
	h.writeMu.Lock()
	defer h.writeMu.Unlock()

	if err := h.cache.Clear(c.Context()); err != nil {
		return h.writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
