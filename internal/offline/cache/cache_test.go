package cache

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"sync"
	"testing"
	"time"

	"campus-map/internal/campus/models"
	"campus-map/internal/offline/connectivity"
	"campus-map/internal/offline/storage"
)

func fixedClock(ms int64) func() time.Time {
	return func() time.Time { return time.UnixMilli(ms) }
}

func sampleEntry() Entry {
	return Entry{
		MapData: models.CampusMapData{
			Rooms: []models.Room{
				{ID: "r1", Name: "Library", X: 5, Y: 6, Capacity: 100, Type: models.RoomLibrary, Floor: 1, Building: "A", Amenities: []string{"wifi"}},
			},
			Events: []models.Event{
				{ID: 7, Title: "Book fair", Room: "r1", Status: models.EventConfirmed, Priority: models.PriorityMedium},
			},
			Paths: []models.Path{
				{ID: "p1", RoomID: "r1", Points: []models.PathPoint{{X: 0, Y: 0}, {X: 5, Y: 6}}, Type: models.PathCustom, IsActive: true},
			},
		},
		Routes: []Route{json.RawMessage(`{"from":"gate","to":"r1"}`)},
	}
}

func newCache(t *testing.T, store storage.Storage, opts ...Option) (*Cache, *connectivity.Monitor) {
	t.Helper()
	monitor := connectivity.NewMonitor(true)
	c := New(context.Background(), store, monitor, opts...)
	t.Cleanup(c.Close)
	return c, monitor
}

func TestSaveLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemory()
	before := time.Now().UnixMilli()
	c, _ := newCache(t, store)

	entry := sampleEntry()
	saved, err := c.Save(ctx, entry)
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, ok, err := c.Load(ctx)
	if err != nil || !ok {
		t.Fatalf("expected hit, got ok=%v err=%v", ok, err)
	}
	if loaded.LastUpdated < before {
		t.Fatalf("expected lastUpdated >= %d, got %d", before, loaded.LastUpdated)
	}
	if !reflect.DeepEqual(loaded.MapData, entry.MapData) {
		t.Fatalf("map data mismatch:\n got %+v\nwant %+v", loaded.MapData, entry.MapData)
	}
	if len(loaded.Routes) != 1 || string(loaded.Routes[0]) != `{"from":"gate","to":"r1"}` {
		t.Fatalf("unexpected routes: %s", loaded.Routes)
	}
	if !reflect.DeepEqual(saved, loaded) {
		t.Fatalf("expected Save result to equal loaded snapshot")
	}

	data, ok := c.Data()
	if !ok || !reflect.DeepEqual(data, loaded) {
		t.Fatalf("expected in-memory state to mirror snapshot")
	}
}

func TestLoadEmptyKeepsState(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemory()
	c, _ := newCache(t, store, WithClock(fixedClock(1000)))

	if _, ok := c.Data(); ok {
		t.Fatal("expected unset state on empty store")
	}
	if _, err := c.Save(ctx, sampleEntry()); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := store.Remove(ctx, DefaultKey); err != nil {
		t.Fatalf("remove: %v", err)
	}

	snap, ok, err := c.Load(ctx)
	if err != nil || ok {
		t.Fatalf("expected miss, got ok=%v err=%v", ok, err)
	}
	if !reflect.DeepEqual(snap, Snapshot{}) {
		t.Fatalf("expected empty result, got %+v", snap)
	}
	if data, ok := c.Data(); !ok || data.LastUpdated != 1000 {
		t.Fatalf("expected prior in-memory state kept, got %+v %v", data, ok)
	}
}

func TestLastWriteWins(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemory()
	c, _ := newCache(t, store)

	a := sampleEntry()
	b := Entry{
		MapData: models.CampusMapData{
			Rooms:  []models.Room{{ID: "r9", Name: "Cafe", Type: models.RoomRestaurant}},
			Events: []models.Event{},
		},
		Routes: []Route{},
	}

	if _, err := c.Save(ctx, a); err != nil {
		t.Fatalf("save a: %v", err)
	}
	if _, err := c.Save(ctx, b); err != nil {
		t.Fatalf("save b: %v", err)
	}

	raw, ok, err := store.Get(ctx, DefaultKey)
	if err != nil || !ok {
		t.Fatalf("expected stored entry, got ok=%v err=%v", ok, err)
	}
	var stored Snapshot
	if err := json.Unmarshal(raw, &stored); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !reflect.DeepEqual(stored.MapData, b.MapData) {
		t.Fatalf("expected exactly B, got %+v", stored.MapData)
	}
	if len(stored.Routes) != 0 || len(stored.MapData.Paths) != 0 {
		t.Fatalf("expected no fields merged from A, got %+v", stored)
	}
}

func TestConnectivityTransitions(t *testing.T) {
	store := storage.NewMemory()
	monitor := connectivity.NewMonitor(true)
	c := New(context.Background(), store, monitor)

	if !c.IsOnline() {
		t.Fatal("expected initial online")
	}
	monitor.Set(false)
	if c.IsOnline() {
		t.Fatal("expected offline right after transition")
	}
	monitor.Set(true)
	if !c.IsOnline() {
		t.Fatal("expected online after reconnect")
	}

	c.Close()
	c.Close()
	if monitor.Listeners() != 0 {
		t.Fatalf("expected listener removed on close, got %d", monitor.Listeners())
	}
	monitor.Set(false)
	if !c.IsOnline() {
		t.Fatal("expected closed cache to ignore transitions")
	}
}

func TestInitialConnectivityFromMonitor(t *testing.T) {
	monitor := connectivity.NewMonitor(false)
	c := New(context.Background(), storage.NewMemory(), monitor)
	defer c.Close()

	if c.IsOnline() {
		t.Fatal("expected initial offline")
	}
}

func TestConnectivityOutOfOrderNotifications(t *testing.T) {
	monitor := connectivity.NewMonitor(true)

	entered := make(chan struct{})
	release := make(chan struct{})
	monitor.Subscribe(func(online bool) {
		if !online {
			close(entered)
			<-release
		}
	})

	c := New(context.Background(), storage.NewMemory(), monitor)
	defer c.Close()

	done := make(chan struct{})
	go func() {
		monitor.Set(false)
		close(done)
	}()

	<-entered
	monitor.Set(true)
	close(release)
	<-done

	if c.IsOnline() != monitor.Online() {
		t.Fatalf("expected cache to follow monitor, got cache=%v monitor=%v", c.IsOnline(), monitor.Online())
	}
}

func TestConnectivityConcurrentSetters(t *testing.T) {
	monitor := connectivity.NewMonitor(true)
	c := New(context.Background(), storage.NewMemory(), monitor)
	defer c.Close()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				monitor.Set((i+j)%2 == 0)
			}
		}(i)
	}
	wg.Wait()

	if c.IsOnline() != monitor.Online() {
		t.Fatalf("expected cache to follow monitor, got cache=%v monitor=%v", c.IsOnline(), monitor.Online())
	}
}

func TestSaveRejectsNonPositiveClock(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemory()
	c, _ := newCache(t, store, WithClock(fixedClock(0)))

	if _, err := c.Save(ctx, sampleEntry()); !errors.Is(err, ErrInvalidSnapshot) {
		t.Fatalf("expected ErrInvalidSnapshot, got %v", err)
	}
	if _, ok, _ := store.Get(ctx, c.Key()); ok {
		t.Fatal("expected nothing written to the store")
	}
	if _, ok := c.Data(); ok {
		t.Fatal("expected state to stay unset")
	}
}

func TestEmptySnapshotScenario(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemory()
	c, _ := newCache(t, store)

	_, err := c.Save(ctx, Entry{MapData: models.CampusMapData{Rooms: []models.Room{}, Events: []models.Event{}}, Routes: []Route{}})
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	raw, _, _ := store.Get(ctx, DefaultKey)
	var stored map[string]json.RawMessage
	if err := json.Unmarshal(raw, &stored); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if string(stored["routes"]) != "[]" {
		t.Fatalf("expected empty routes list, got %s", stored["routes"])
	}

	var mapData map[string]json.RawMessage
	if err := json.Unmarshal(stored["mapData"], &mapData); err != nil {
		t.Fatalf("decode mapData: %v", err)
	}
	if string(mapData["rooms"]) != "[]" {
		t.Fatalf("expected empty rooms list, got %s", mapData["rooms"])
	}

	var lastUpdated int64
	if err := json.Unmarshal(stored["lastUpdated"], &lastUpdated); err != nil {
		t.Fatalf("expected integer lastUpdated, got %s", stored["lastUpdated"])
	}
	if lastUpdated <= 0 {
		t.Fatalf("expected positive lastUpdated, got %d", lastUpdated)
	}
}

func TestCorruptedEntryIsMiss(t *testing.T) {
	ctx := context.Background()

	for name, raw := range map[string]string{
		"truncated":      `{"mapData":{"rooms":[`,
		"foreign":        `["not","a","snapshot"]`,
		"no timestamp":   `{"mapData":{"rooms":[],"events":[]},"routes":[]}`,
		"invalid rooms":  `{"mapData":{"rooms":[{"id":"","type":"lab"}],"events":[]},"routes":[],"lastUpdated":5}`,
		"wrong key type": `{"mapData":{"rooms":"x"},"routes":[],"lastUpdated":5}`,
	} {
		t.Run(name, func(t *testing.T) {
			store := storage.NewMemory()
			if err := store.Set(ctx, DefaultKey, []byte(raw)); err != nil {
				t.Fatalf("seed store: %v", err)
			}

			c, _ := newCache(t, store)
			if _, ok := c.Data(); ok {
				t.Fatal("expected mount load to ignore corrupted entry")
			}

			snap, ok, err := c.Load(ctx)
			if err != nil || ok {
				t.Fatalf("expected miss, got ok=%v err=%v", ok, err)
			}
			if !reflect.DeepEqual(snap, Snapshot{}) {
				t.Fatalf("expected empty result, got %+v", snap)
			}
		})
	}
}

func TestMountLoadsExistingSnapshot(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemory()

	first, _ := newCache(t, store, WithKey("campus"))
	if _, err := first.Save(ctx, sampleEntry()); err != nil {
		t.Fatalf("save: %v", err)
	}

	second, _ := newCache(t, store, WithKey("campus"))
	data, ok := second.Data()
	if !ok || len(data.MapData.Rooms) != 1 {
		t.Fatalf("expected snapshot restored on mount, got %+v %v", data, ok)
	}

	other, _ := newCache(t, store)
	if _, ok := other.Data(); ok {
		t.Fatal("expected different key to miss")
	}
}

func TestSaveUnavailable(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemory()
	c, _ := newCache(t, store, WithClock(fixedClock(42)))

	if _, err := c.Save(ctx, sampleEntry()); err != nil {
		t.Fatalf("save: %v", err)
	}

	store.FailWrites = true
	_, err := c.Save(ctx, Entry{MapData: models.CampusMapData{}, Routes: []Route{}})
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
	if !errors.Is(err, storage.ErrUnavailable) {
		t.Fatalf("expected storage cause to be preserved, got %v", err)
	}

	data, ok := c.Data()
	if !ok || len(data.MapData.Rooms) != 1 {
		t.Fatalf("expected in-memory state unchanged after failed save, got %+v", data)
	}
}

func TestLoadUnavailable(t *testing.T) {
	store := storage.NewMemory()
	store.FailReads = true
	c, _ := newCache(t, store)

	if _, _, err := c.Load(context.Background()); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

func TestSaveRejectsInvalidData(t *testing.T) {
	ctx := context.Background()
	c, _ := newCache(t, storage.NewMemory())

	entry := sampleEntry()
	entry.MapData.Paths[0].RoomID = "missing"
	if _, err := c.Save(ctx, entry); !errors.Is(err, ErrInvalidSnapshot) {
		t.Fatalf("expected ErrInvalidSnapshot, got %v", err)
	}

	entry = sampleEntry()
	entry.Routes = []Route{json.RawMessage(`{broken`)}
	if _, err := c.Save(ctx, entry); !errors.Is(err, ErrInvalidSnapshot) {
		t.Fatalf("expected ErrInvalidSnapshot for bad route, got %v", err)
	}

	if _, ok := c.Data(); ok {
		t.Fatal("expected state to stay unset")
	}
}

func TestSavedStateIndependentOfCaller(t *testing.T) {
	ctx := context.Background()
	c, _ := newCache(t, storage.NewMemory())

	entry := sampleEntry()
	if _, err := c.Save(ctx, entry); err != nil {
		t.Fatalf("save: %v", err)
	}
	entry.MapData.Rooms[0].Name = "mutated"

	data, _ := c.Data()
	if data.MapData.Rooms[0].Name != "Library" {
		t.Fatalf("expected cached copy, got %q", data.MapData.Rooms[0].Name)
	}
}

func TestClear(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemory()
	c, _ := newCache(t, store)

	if _, err := c.Save(ctx, sampleEntry()); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := c.Clear(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if _, ok := c.Data(); ok {
		t.Fatal("expected unset state after clear")
	}
	if _, ok, _ := store.Get(ctx, DefaultKey); ok {
		t.Fatal("expected slot removed")
	}
}

func TestSeed(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "campus.json")
	raw, _ := json.Marshal(sampleEntry().MapData)
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		t.Fatalf("write seed: %v", err)
	}

	c, _ := newCache(t, storage.NewMemory())
	seeded, err := c.Seed(ctx, path)
	if err != nil || !seeded {
		t.Fatalf("expected seeded, got %v %v", seeded, err)
	}

	seeded, err = c.Seed(ctx, path)
	if err != nil || seeded {
		t.Fatalf("expected second seed to be skipped, got %v %v", seeded, err)
	}
}

func TestSQLiteBackedCache(t *testing.T) {
	ctx := context.Background()
	store, closeStore, err := storage.Open(ctx, storage.BackendSQLite, filepath.Join(t.TempDir(), "cache.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer closeStore()

	c, _ := newCache(t, store)
	if _, err := c.Save(ctx, sampleEntry()); err != nil {
		t.Fatalf("save: %v", err)
	}

	reopened, _ := newCache(t, store)
	if data, ok := reopened.Data(); !ok || data.MapData.Rooms[0].ID != "r1" {
		t.Fatalf("expected sqlite snapshot restored, got %+v %v", data, ok)
	}
}
