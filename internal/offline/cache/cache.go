package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"campus-map/internal/campus/models"
	"campus-map/internal/offline/connectivity"
	"campus-map/internal/offline/storage"

	"go.uber.org/zap"
)

const DefaultKey = "campus-map-cache"

var (
	// ErrUnavailable: хранилище не принимает запись или не читается.
	ErrUnavailable     = errors.New("cache unavailable")
	ErrInvalidSnapshot = errors.New("invalid snapshot")
)

// ============================================================
// Snapshot
// ============================================================

// Route: запись маршрута в снимке. Формат задаёт клиент, кэш его не интерпретирует.
type Route = json.RawMessage

// Snapshot: единица хранения: данные карты, маршруты и время записи (мс от эпохи).
type Snapshot struct {
	MapData     models.CampusMapData `json:"mapData"`
	Routes      []Route              `json:"routes"`
	LastUpdated int64                `json:"lastUpdated"`
}

// Entry содержит то, что передаёт вызывающий в Save. Время проставляет кэш.
type Entry struct {
	MapData models.CampusMapData `json:"mapData"`
	Routes  []Route              `json:"routes"`
}

func (s Snapshot) validate() error {
	if s.LastUpdated <= 0 {
		return fmt.Errorf("%w: lastUpdated must be positive", ErrInvalidSnapshot)
	}
	return validateEntry(s.MapData, s.Routes)
}

func validateEntry(data models.CampusMapData, routes []Route) error {
	if err := data.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidSnapshot, err)
	}
	for i, r := range routes {
		if len(r) > 0 && !json.Valid(r) {
			return fmt.Errorf("%w: routes[%d] is not valid JSON", ErrInvalidSnapshot, i)
		}
	}
	return nil
}

// ============================================================
// Cache
// ============================================================

type Option func(*Cache)

func WithKey(key string) Option {
	return func(c *Cache) {
		if key != "" {
			c.key = key
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

func WithLogger(logger *zap.Logger) Option {
	return func(c *Cache) { c.logger = logger }
}

// Cache отражает снимок данных карты в одном слоте хранилища и следит за подключением.
// Состояние в памяти: либо не задано, либо равно последнему загруженному/сохранённому снимку.
type Cache struct {
	store  storage.Storage
	key    string
	now    func() time.Time
	logger *zap.Logger

	mu   sync.RWMutex
	data *Snapshot

	monitor     *connectivity.Monitor
	onlineMu    sync.RWMutex
	online      bool
	unsubscribe func()
}

// New подключает кэш: берёт текущий флаг подключения, подписывается на переходы
// и один раз загружает снимок из хранилища.
func New(ctx context.Context, store storage.Storage, monitor *connectivity.Monitor, opts ...Option) *Cache {
	c := &Cache{
		store:  store,
		key:    DefaultKey,
		now:    time.Now,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}

	c.monitor = monitor
	c.unsubscribe = monitor.Subscribe(c.setOnline)
	c.syncOnline()

	if _, ok, err := c.Load(ctx); err != nil {
		c.logger.Warn("initial cache load failed", zap.String("key", c.key), zap.Error(err))
	} else if ok {
		c.logger.Info("cache restored", zap.String("key", c.key))
	}
	return c
}

// Close снимает подписку на подключение. Повторный вызов безопасен.
func (c *Cache) Close() {
	c.unsubscribe()
}

func (c *Cache) Key() string {
	return c.key
}

func (c *Cache) IsOnline() bool {
	c.onlineMu.RLock()
	defer c.onlineMu.RUnlock()
	return c.online
}

// setOnline не доверяет аргументу: уведомления от пересекающихся Set могут прийти
// не по порядку, поэтому флаг перечитывается из монитора.
func (c *Cache) setOnline(bool) {
	online := c.syncOnline()
	c.logger.Info("connectivity", zap.Bool("online", online))
}

func (c *Cache) syncOnline() bool {
	c.onlineMu.Lock()
	defer c.onlineMu.Unlock()
	c.online = c.monitor.Online()
	return c.online
}

// Data возвращает снимок из памяти и признак того, что он задан.
// Срезы внутри снимка разделяются с кэшем и не должны изменяться.
func (c *Cache) Data() (Snapshot, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.data == nil {
		return Snapshot{}, false
	}
	return *c.data, true
}

// Save проставляет время, сериализует и перезаписывает слот целиком (last-write-wins).
// При ошибке состояние в памяти не меняется.
func (c *Cache) Save(ctx context.Context, e Entry) (Snapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	snap := Snapshot{
		MapData:     e.MapData,
		Routes:      e.Routes,
		LastUpdated: c.now().UnixMilli(),
	}
	// Проверяем до записи: невалидный снимок не должен попасть в слот.
	if err := snap.validate(); err != nil {
		return Snapshot{}, err
	}
	normalize(&snap)

	raw, err := json.Marshal(snap)
	if err != nil {
		return Snapshot{}, fmt.Errorf("%w: encode: %w", ErrInvalidSnapshot, err)
	}

	if err := c.store.Set(ctx, c.key, raw); err != nil {
		c.logger.Error("cache write failed", zap.String("key", c.key), zap.Int("bytes", len(raw)), zap.Error(err))
		return Snapshot{}, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	// В памяти держим копию, независимую от срезов вызывающего.
	stored, err := decode(raw)
	if err != nil {
		return Snapshot{}, fmt.Errorf("%w: %w", ErrInvalidSnapshot, err)
	}
	c.data = &stored
	return stored, nil
}

// Load читает слот. Отсутствующий ключ, а также повреждённое или невалидное содержимое
// считаются промахом: возвращается ok == false, состояние в памяти не меняется.
func (c *Cache) Load(ctx context.Context) (Snapshot, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	raw, ok, err := c.store.Get(ctx, c.key)
	if err != nil {
		return Snapshot{}, false, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	if !ok {
		return Snapshot{}, false, nil
	}

	snap, err := decode(raw)
	if err != nil {
		c.logger.Warn("discarding unreadable cache entry", zap.String("key", c.key), zap.Error(err))
		return Snapshot{}, false, nil
	}

	c.data = &snap
	return snap, true, nil
}

// Ping проверяет, что слот читается, не трогая состояние в памяти.
func (c *Cache) Ping(ctx context.Context) error {
	if _, _, err := c.store.Get(ctx, c.key); err != nil {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return nil
}

// Clear удаляет слот и сбрасывает состояние в памяти.
func (c *Cache) Clear(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.store.Remove(ctx, c.key); err != nil {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	c.data = nil
	return nil
}

// Seed заполняет пустой кэш данными карты из JSON-файла. Если снимок уже есть,
// файл не читается.
func (c *Cache) Seed(ctx context.Context, path string) (bool, error) {
	if _, ok := c.Data(); ok || path == "" {
		return false, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return false, fmt.Errorf("read seed: %w", err)
	}

	var data models.CampusMapData
	if err := json.Unmarshal(raw, &data); err != nil {
		return false, fmt.Errorf("decode seed: %w", err)
	}

	if _, err := c.Save(ctx, Entry{MapData: data, Routes: []Route{}}); err != nil {
		return false, err
	}
	c.logger.Info("cache seeded", zap.String("path", path), zap.Int("rooms", len(data.Rooms)), zap.Int("events", len(data.Events)))
	return true, nil
}

// ============================================================
// Encoding
// ============================================================

func decode(raw []byte) (Snapshot, error) {
	var snap Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return Snapshot{}, fmt.Errorf("%w: decode: %w", ErrInvalidSnapshot, err)
	}
	if err := snap.validate(); err != nil {
		return Snapshot{}, err
	}
	normalize(&snap)
	return snap, nil
}

func normalize(s *Snapshot) {
	if s.Routes == nil {
		s.Routes = []Route{}
	}
	if s.MapData.Rooms == nil {
		s.MapData.Rooms = []models.Room{}
	}
	if s.MapData.Events == nil {
		s.MapData.Events = []models.Event{}
	}
}
