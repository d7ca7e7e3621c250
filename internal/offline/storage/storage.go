package storage

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// ErrUnavailable оборачивает любые отказы хранилища: переполнение, отключённое хранилище, I/O.
var ErrUnavailable = errors.New("storage unavailable")

// ============================================================
// Storage
// ============================================================

// Storage: ключ-значение со строковыми ключами. Атомарность гарантируется на уровне
// одного вызова; блокировок между вызовами нет.
type Storage interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Remove(ctx context.Context, key string) error
}

type Backend string

const (
	BackendSQLite Backend = "sqlite"
	BackendFile   Backend = "file"
	BackendMemory Backend = "memory"
)

// Open создаёт хранилище по имени бэкенда. Для sqlite path указывает файл БД, для file каталог.
func Open(ctx context.Context, backend Backend, path string) (Storage, func() error, error) {
	switch backend {
	case BackendSQLite, "":
		db, err := OpenSQLite(path)
		if err != nil {
			return nil, nil, err
		}
		s := NewSQLite(db)
		if err := s.Init(ctx); err != nil {
			db.Close()
			return nil, nil, err
		}
		return s, db.Close, nil
	case BackendFile:
		return NewFiles(path), func() error { return nil }, nil
	case BackendMemory:
		return NewMemory(), func() error { return nil }, nil
	}
	return nil, nil, fmt.Errorf("unknown storage backend %q", backend)
}

// ============================================================
// Memory
// ============================================================

// Memory: хранилище в памяти процесса. FailWrites имитирует переполненное
// или отключённое хранилище.
type Memory struct {
	mu         sync.RWMutex
	items      map[string][]byte
	FailWrites bool
	FailReads  bool
}

func NewMemory() *Memory {
	return &Memory{items: make(map[string][]byte)}
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.FailReads {
		return nil, false, fmt.Errorf("%w: read %q: disabled", ErrUnavailable, key)
	}
	v, ok := m.items[key]
	if !ok {
		return nil, false, nil
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, true, nil
}

func (m *Memory) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailWrites {
		return fmt.Errorf("%w: write %q: quota exceeded", ErrUnavailable, key)
	}
	v := make([]byte, len(value))
	copy(v, value)
	m.items[key] = v
	return nil
}

func (m *Memory) Remove(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailWrites {
		return fmt.Errorf("%w: remove %q: disabled", ErrUnavailable, key)
	}
	delete(m.items, key)
	return nil
}
