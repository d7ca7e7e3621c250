package connectivity

import "sync"

// ============================================================
// Monitor
// ============================================================

type Listener func(online bool)

// Monitor хранит текущий флаг подключения и рассылает переходы online/offline.
// Подписчики вызываются синхронно внутри Set, в порядке подписки.
type Monitor struct {
	mu        sync.Mutex
	online    bool
	nextID    int
	listeners map[int]Listener
	order     []int
}

func NewMonitor(initial bool) *Monitor {
	return &Monitor{
		online:    initial,
		listeners: make(map[int]Listener),
	}
}

func (m *Monitor) Online() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.online
}

// Set обновляет флаг. Подписчики уведомляются только при смене значения.
func (m *Monitor) Set(online bool) {
	m.mu.Lock()
	if m.online == online {
		m.mu.Unlock()
		return
	}
	m.online = online

	listeners := make([]Listener, 0, len(m.order))
	for _, id := range m.order {
		listeners = append(listeners, m.listeners[id])
	}
	m.mu.Unlock()

	for _, fn := range listeners {
		fn(online)
	}
}

// Subscribe регистрирует слушателя и возвращает функцию отписки.
// Отписка идемпотентна.
func (m *Monitor) Subscribe(fn Listener) (unsubscribe func()) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextID++
	id := m.nextID
	m.listeners[id] = fn
	m.order = append(m.order, id)

	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			defer m.mu.Unlock()

			delete(m.listeners, id)
			for i, existing := range m.order {
				if existing == id {
					m.order = append(m.order[:i], m.order[i+1:]...)
					break
				}
			}
		})
	}
}

func (m *Monitor) Listeners() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.listeners)
}
