package handlers

import (
	"campus-map/internal/campus/pathedit"
	"campus-map/internal/campus/render"

	"github.com/gofiber/fiber/v3"
)

// ============================================================
// Render Handler
// ============================================================

// RenderMap отдаёт SVG с маркерами комнат и маршрутами поверх изображения карты.
func (h *CampusHandler) RenderMap(c fiber.Ctx) error {
	snap, err := h.mapData()
	if err != nil {
		return h.writeError(c, err)
	}

	floor, ok := optionalIntQuery(c, "floor")
	if !ok {
		return errorJSON(c, fiber.StatusBadRequest, "invalid floor")
	}

	opts := render.Options{
		Floor:         floor,
		BackgroundURL: h.mapImageURL,
	}

	if draftID := c.Query("draft"); draftID != "" {
		err := h.drafts.Update(draftID, func(d *pathedit.Draft) error {
			opts.Draft = d.Points()
			return nil
		})
		if err != nil {
			return h.writeError(c, err)
		}
	}

	svg := h.renderer.Render(snap.MapData, opts)
	c.Set(fiber.HeaderContentType, "image/svg+xml")
	return c.SendString(svg)
}
