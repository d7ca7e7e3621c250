package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"sync"
	"time"

	"campus-map/internal/campus/pathedit"
	"campus-map/internal/campus/render"
	"campus-map/internal/offline/cache"
	"campus-map/internal/offline/connectivity"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"
)

var (
	errNoMapData    = errors.New("no map data cached")
	errRoomNotFound = errors.New("room not found")
	errPathNotFound = errors.New("path not found")
)

// ============================================================
// Campus Handler
// ============================================================

type Options struct {
	MapImageURL string
	Measure     pathedit.Measure
	Now         func() time.Time
}

type CampusHandler struct {
	cache    *cache.Cache
	monitor  *connectivity.Monitor
	drafts   *pathedit.Drafts
	renderer *render.Renderer
	logger   *zap.Logger

	mapImageURL string
	measure     pathedit.Measure
	now         func() time.Time

	// сериализует read-modify-write снимка
	writeMu sync.Mutex
}

func NewCampusHandler(c *cache.Cache, monitor *connectivity.Monitor, drafts *pathedit.Drafts, logger *zap.Logger, opts Options) *CampusHandler {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &CampusHandler{
		cache:       c,
		monitor:     monitor,
		drafts:      drafts,
		renderer:    render.NewRenderer(),
		logger:      logger,
		mapImageURL: opts.MapImageURL,
		measure:     opts.Measure,
		now:         opts.Now,
	}
}

// Register вешает все маршруты API на группу /api/v1.
func (h *CampusHandler) Register(app *fiber.App) {
	app.Get("/health/live", h.Liveness)
	app.Get("/health/ready", h.Readiness)

	api := app.Group("/api/v1")

	api.Get("/status", h.GetStatus)
	api.Put("/status", h.SetStatus)

	api.Get("/cache", h.GetCache)
	api.Put("/cache", h.SaveCache)
	api.Post("/cache/reload", h.ReloadCache)
	api.Delete("/cache", h.ClearCache)

	api.Get("/rooms", h.ListRooms)
	api.Get("/rooms/:id", h.GetRoom)
	api.Get("/events", h.ListEvents)
	api.Get("/paths", h.ListPaths)
	api.Delete("/paths/:id", h.DeletePath)
	api.Post("/paths/:id/edit", h.EditPath)
	api.Post("/paths/:id/view", h.ViewPath)

	api.Post("/drafts", h.CreateDraft)
	api.Get("/drafts/:id", h.GetDraft)
	api.Post("/drafts/:id/points", h.AddDraftPoint)
	api.Put("/drafts/:id/points/:index", h.MoveDraftPoint)
	api.Delete("/drafts/:id/points/:index", h.DeleteDraftPoint)
	api.Put("/drafts/:id/selection", h.SelectDraftPoint)
	api.Post("/drafts/:id/save", h.SaveDraft)
	api.Delete("/drafts/:id", h.CancelDraft)

	api.Get("/map.svg", h.RenderMap)
	api.Post("/import/svg", h.ImportSVG)
}

// ============================================================
// Helpers
// ============================================================

func (h *CampusHandler) mapData() (cache.Snapshot, error) {
	snap, ok := h.cache.Data()
	if !ok {
		return cache.Snapshot{}, errNoMapData
	}
	return snap, nil
}

func errorJSON(c fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(fiber.Map{"error": msg})
}

// writeError переводит ошибки доменных пакетов в HTTP-статусы.
func (h *CampusHandler) writeError(c fiber.Ctx, err error) error {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, cache.ErrInvalidSnapshot),
		errors.Is(err, pathedit.ErrPointIndex),
		errors.Is(err, pathedit.ErrEmptyPath),
		errors.Is(err, pathedit.ErrNoRoom):
		status = http.StatusBadRequest
	case errors.Is(err, pathedit.ErrDraftNotFound),
		errors.Is(err, errRoomNotFound),
		errors.Is(err, errPathNotFound):
		status = http.StatusNotFound
	case errors.Is(err, errNoMapData),
		errors.Is(err, pathedit.ErrReadOnly),
		errors.Is(err, pathedit.ErrNotCreating):
		status = http.StatusConflict
	case errors.Is(err, cache.ErrUnavailable):
		status = http.StatusServiceUnavailable
	}

	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed", zap.String("path", c.Path()), zap.Error(err))
	}
	return errorJSON(c, status, err.Error())
}

func intParam(c fiber.Ctx, name string) (int, bool) {
	v, err := strconv.Atoi(c.Params(name))
	if err != nil {
		return 0, false
	}
	return v, true
}

func optionalIntQuery(c fiber.Ctx, name string) (*int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, false
	}
	return &v, true
}
