package handlers

import (
	"github.com/gofiber/fiber/v3"
)

// ============================================================
// Health Check Handlers
// ============================================================

// Liveness проверяет, что приложение работает
func (h *CampusHandler) Liveness(c fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "alive"})
}

// Readiness проверяет, что хранилище кэша отвечает.
func (h *CampusHandler) Readiness(c fiber.Ctx) error {
	if err := h.cache.Ping(c.Context()); err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"status": "unavailable",
			"error":  err.Error(),
		})
	}
	return c.JSON(fiber.Map{"status": "ready"})
}

// ============================================================
// Connectivity
// ============================================================

type statusResponse struct {
	Online      bool  `json:"online"`
	Cached      bool  `json:"cached"`
	LastUpdated int64 `json:"lastUpdated,omitempty"`
}

func (h *CampusHandler) status() statusResponse {
	snap, ok := h.cache.Data()
	return statusResponse{
		Online:      h.cache.IsOnline(),
		Cached:      ok,
		LastUpdated: snap.LastUpdated,
	}
}

func (h *CampusHandler) GetStatus(c fiber.Ctx) error {
	return c.JSON(h.status())
}

type setStatusRequest struct {
	Online *bool `json:"online"`
}

// SetStatus вручную переключает флаг подключения (когда проба отключена).
func (h *CampusHandler) SetStatus(c fiber.Ctx) error {
	var req setStatusRequest
	if err := decodeBody(c, &req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, err.Error())
	}
	if req.Online == nil {
		return errorJSON(c, fiber.StatusBadRequest, "online required")
	}

	h.monitor.Set(*req.Online)
	return c.JSON(h.status())
}
