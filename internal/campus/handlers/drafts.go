package handlers

import (
	"campus-map/internal/campus/models"
	"campus-map/internal/campus/pathedit"
	"campus-map/internal/offline/cache"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"
)

// ============================================================
// Path Drafts
// ============================================================

type draftResponse struct {
	ID    string                   `json:"id"`
	State models.PathCreationState `json:"state"`
}

type createDraftRequest struct {
	RoomID string `json:"roomId"`
}

// CreateDraft начинает рисование маршрута к существующей комнате.
func (h *CampusHandler) CreateDraft(c fiber.Ctx) error {
	var req createDraftRequest
	if err := decodeBody(c, &req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, err.Error())
	}

	snap, err := h.mapData()
	if err != nil {
		return h.writeError(c, err)
	}

	draft, err := pathedit.Start(req.RoomID)
	if err != nil {
		return h.writeError(c, err)
	}
	if _, ok := snap.MapData.RoomByID(req.RoomID); !ok {
		return h.writeError(c, errRoomNotFound)
	}

	id := h.drafts.Put(draft)
	return c.Status(fiber.StatusCreated).JSON(draftResponse{ID: id, State: draft.State()})
}

// EditPath открывает сохранённый маршрут как черновик в режиме edit.
func (h *CampusHandler) EditPath(c fiber.Ctx) error {
	return h.openPath(c, pathedit.Edit)
}

// ViewPath открывает сохранённый маршрут только для просмотра: выделение точек
// работает, изменения и сохранение отклоняются.
func (h *CampusHandler) ViewPath(c fiber.Ctx) error {
	return h.openPath(c, pathedit.View)
}

func (h *CampusHandler) openPath(c fiber.Ctx, open func(models.Path) *pathedit.Draft) error {
	snap, err := h.mapData()
	if err != nil {
		return h.writeError(c, err)
	}

	path, ok := snap.MapData.PathByID(c.Params("id"))
	if !ok {
		return h.writeError(c, errPathNotFound)
	}

	draft := open(path)
	id := h.drafts.Put(draft)
	return c.Status(fiber.StatusCreated).JSON(draftResponse{ID: id, State: draft.State()})
}

func (h *CampusHandler) GetDraft(c fiber.Ctx) error {
	return h.updateDraft(c, func(*pathedit.Draft) error { return nil })
}

func (h *CampusHandler) AddDraftPoint(c fiber.Ctx) error {
	var req struct {
		models.PathPoint
		Index *int `json:"index"`
	}
	if err := decodeBody(c, &req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, err.Error())
	}
	if req.Type != "" && !req.Type.Valid() {
		return errorJSON(c, fiber.StatusBadRequest, "unknown point type")
	}

	return h.updateDraft(c, func(d *pathedit.Draft) error {
		if req.Index != nil {
			return d.InsertPoint(*req.Index, req.PathPoint)
		}
		return d.AddPoint(req.PathPoint)
	})
}

func (h *CampusHandler) MoveDraftPoint(c fiber.Ctx) error {
	index, ok := intParam(c, "index")
	if !ok {
		return errorJSON(c, fiber.StatusBadRequest, "invalid index")
	}

	var req struct {
		X *float64 `json:"x"`
		Y *float64 `json:"y"`
	}
	if err := decodeBody(c, &req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, err.Error())
	}
	if req.X == nil || req.Y == nil {
		return errorJSON(c, fiber.StatusBadRequest, "x and y required")
	}

	return h.updateDraft(c, func(d *pathedit.Draft) error {
		return d.MovePoint(index, *req.X, *req.Y)
	})
}

func (h *CampusHandler) DeleteDraftPoint(c fiber.Ctx) error {
	index, ok := intParam(c, "index")
	if !ok {
		return errorJSON(c, fiber.StatusBadRequest, "invalid index")
	}

	return h.updateDraft(c, func(d *pathedit.Draft) error {
		return d.DeletePoint(index)
	})
}

// SelectDraftPoint выделяет точку; {"index": null} снимает выделение.
func (h *CampusHandler) SelectDraftPoint(c fiber.Ctx) error {
	var req struct {
		Index *int `json:"index"`
	}
	if err := decodeBody(c, &req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, err.Error())
	}

	return h.updateDraft(c, func(d *pathedit.Draft) error {
		if req.Index == nil {
			d.ClearSelection()
			return nil
		}
		return d.Select(*req.Index)
	})
}

// SaveDraft превращает черновик в Path и записывает его в кэшированные данные карты.
// Если запись не удалась, черновик возвращается в реестр без изменений.
func (h *CampusHandler) SaveDraft(c fiber.Ctx) error {
	var meta pathedit.Meta
	if len(c.Body()) > 0 {
		var req struct {
			Name        string `json:"name"`
			Description string `json:"description"`
		}
		if err := decodeBody(c, &req); err != nil {
			return errorJSON(c, fiber.StatusBadRequest, err.Error())
		}
		meta = pathedit.Meta{Name: req.Name, Description: req.Description}
	}

	h.writeMu.Lock()
	defer h.writeMu.Unlock()

	id := c.Params("id")
	draft, err := h.drafts.Take(id)
	if err != nil {
		return h.writeError(c, err)
	}
	backup := draft.Clone()

	path, err := draft.Save(meta, h.now(), h.measure)
	if err != nil {
		h.drafts.Restore(id, backup)
		return h.writeError(c, err)
	}

	snap, err := h.mapData()
	if err != nil {
		h.drafts.Restore(id, backup)
		return h.writeError(c, err)
	}

	data := snap.MapData.UpsertPath(path)
	if _, err := h.cache.Save(c.Context(), cache.Entry{MapData: data, Routes: snap.Routes}); err != nil {
		h.drafts.Restore(id, backup)
		return h.writeError(c, err)
	}

	h.logger.Info("path saved",
		zap.String("path_id", path.ID),
		zap.String("room_id", path.RoomID),
		zap.Int("points", len(path.Points)),
	)
	return c.Status(fiber.StatusCreated).JSON(path)
}

func (h *CampusHandler) CancelDraft(c fiber.Ctx) error {
	draft, err := h.drafts.Take(c.Params("id"))
	if err != nil {
		return h.writeError(c, err)
	}
	draft.Cancel()
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *CampusHandler) updateDraft(c fiber.Ctx, fn func(*pathedit.Draft) error) error {
	id := c.Params("id")

	var state models.PathCreationState
	err := h.drafts.Update(id, func(d *pathedit.Draft) error {
		if err := fn(d); err != nil {
			return err
		}
		state = d.State()
		return nil
	})
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(draftResponse{ID: id, State: state})
}
