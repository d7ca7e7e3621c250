package handlers

import (
	"campus-map/internal/campus/models"
	"campus-map/internal/campus/parser"
	"campus-map/internal/offline/cache"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"
)

// ============================================================
// Import Handler
// ============================================================

// ImportSVG разбирает SVG-план из multipart-поля file. С ?apply=true комнаты и
// маршруты объединяются по id с кэшированными данными и сохраняются.
func (h *CampusHandler) ImportSVG(c fiber.Ctx) error {
	file, err := c.FormFile("file")
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "file required in multipart/form-data")
	}

	f, err := file.Open()
	if err != nil {
		return errorJSON(c, fiber.StatusInternalServerError, "failed to open file")
	}
	defer f.Close()

	res, err := parser.ParseSVG(f)
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest, err.Error())
	}
	h.logger.Info("svg parsed",
		zap.String("filename", file.Filename),
		zap.Int("rooms", len(res.Rooms)),
		zap.Int("paths", len(res.Paths)),
	)

	if c.Query("apply") != "true" {
		return c.JSON(res)
	}

	h.writeMu.Lock()
	defer h.writeMu.Unlock()

	var routes []cache.Route
	data := models.CampusMapData{Events: []models.Event{}}
	if snap, ok := h.cache.Data(); ok {
		data = snap.MapData
		routes = snap.Routes
	}

	data = mergeImport(data, res)
	snap, err := h.cache.Save(c.Context(), cache.Entry{MapData: data, Routes: routes})
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(snap)
}

func mergeImport(data models.CampusMapData, res *parser.Result) models.CampusMapData {
	index := make(map[string]int, len(data.Rooms))
	rooms := make([]models.Room, len(data.Rooms))
	copy(rooms, data.Rooms)
	for i, r := range rooms {
		index[r.ID] = i
	}

	for _, r := range res.Rooms {
		if i, ok := index[r.ID]; ok {
			rooms[i] = r
			continue
		}
		index[r.ID] = len(rooms)
		rooms = append(rooms, r)
	}
	data.Rooms = rooms

	for _, p := range res.Paths {
		data = data.UpsertPath(p)
	}
	return data
}
