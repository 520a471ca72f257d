package cache

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is a process-local store with TTL expiry and LRU eviction.
type MemoryStore struct {
	ttl  time.Duration
	size int
	now  func() time.Time

	mu    sync.Mutex
	items map[string]memEntry
	order []string // simple LRU order, oldest at index 0
}

type memEntry struct {
	at    time.Time
	entry Entry
}

// NewMemoryStore keeps at most size entries, each for at most ttl.
// ttl <= 0 disables expiry; size <= 0 means unbounded.
func NewMemoryStore(ttl time.Duration, size int) *MemoryStore {
	return &MemoryStore{ttl: ttl, size: size, now: time.Now, items: make(map[string]memEntry)}
}

func (m *MemoryStore) Get(_ context.Context, key string) (Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ent, ok := m.items[key]
	if !ok {
		return Entry{}, ErrMiss
	}
	if m.ttl > 0 && m.now().Sub(ent.at) > m.ttl {
		// expired; drop
		delete(m.items, key)
		m.removeFromOrderLocked(key)
		return Entry{}, ErrMiss
	}
	m.touchLocked(key)
	return ent.entry, nil
}

func (m *MemoryStore) Set(_ context.Context, key string, e Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[key]; ok {
		m.touchLocked(key)
	} else {
		m.order = append(m.order, key)
	}
	m.items[key] = memEntry{at: m.now(), entry: e}
	// Enforce size
	for m.size > 0 && len(m.items) > m.size && len(m.order) > 0 {
		old := m.order[0]
		m.order = m.order[1:]
		delete(m.items, old)
	}
	return nil
}

// Len reports the number of live and not yet collected entries.
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}

func (m *MemoryStore) touchLocked(k string) {
	// move key to end
	for i, v := range m.order {
		if v == k {
			m.order = append(append(m.order[:i], m.order[i+1:]...), k)
			return
		}
	}
	m.order = append(m.order, k)
}

func (m *MemoryStore) removeFromOrderLocked(k string) {
	for i, v := range m.order {
		if v == k {
			m.order = append(m.order[:i], m.order[i+1:]...)
			return
		}
	}
}
