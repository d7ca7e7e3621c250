package pathedit

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

var ErrDraftNotFound = errors.New("draft not found")

// ============================================================
// Draft registry
// ============================================================

// Drafts хранит незавершённые черновики по id. Черновик, к которому не обращались
// дольше ttl, удаляется при следующем обращении к реестру.
type Drafts struct {
	mu         sync.Mutex
	drafts     map[string]*Draft
	lastAccess map[string]time.Time
	ttl        time.Duration
	now        func() time.Time
}

func NewDrafts(ttl time.Duration) *Drafts {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &Drafts{
		drafts:     make(map[string]*Draft),
		lastAccess: make(map[string]time.Time),
		ttl:        ttl,
		now:        time.Now,
	}
}

// Put регистрирует черновик и возвращает его id.
func (r *Drafts) Put(d *Draft) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.evictIdle()

	id := uuid.NewString()
	r.drafts[id] = d
	r.lastAccess[id] = r.now()
	return id
}

// Update выполняет fn над черновиком под блокировкой реестра.
func (r *Drafts) Update(id string, fn func(*Draft) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.evictIdle()

	d, ok := r.drafts[id]
	if !ok {
		return ErrDraftNotFound
	}
	r.lastAccess[id] = r.now()
	return fn(d)
}

// Take извлекает черновик из реестра; дальше им владеет вызывающий.
func (r *Drafts) Take(id string) (*Draft, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.evictIdle()

	d, ok := r.drafts[id]
	if !ok {
		return nil, ErrDraftNotFound
	}
	delete(r.drafts, id)
	delete(r.lastAccess, id)
	return d, nil
}

// Restore возвращает черновик под прежним id (например, если сохранение не удалось).
func (r *Drafts) Restore(id string, d *Draft) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.drafts[id] = d
	r.lastAccess[id] = r.now()
}

func (r *Drafts) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.evictIdle()
	return len(r.drafts)
}

func (r *Drafts) evictIdle() {
	cutoff := r.now().Add(-r.ttl)
	for id, last := range r.lastAccess {
		if last.Before(cutoff) {
			delete(r.drafts, id)
			delete(r.lastAccess, id)
		}
	}
}
