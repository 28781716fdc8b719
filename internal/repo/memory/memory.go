package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/hamed0406/cronbeat/internal/domain"
	"github.com/hamed0406/cronbeat/internal/repo"
)

var (
	_ repo.MonitorStore = (*Store)(nil)
	_ repo.EventStore   = (*Store)(nil)
)

type Store struct {
	mu       sync.RWMutex
	monitors map[string]*domain.Monitor
	events   map[string][]*domain.Event
}

func New() *Store {
	return &Store{
		monitors: make(map[string]*domain.Monitor),
		events:   make(map[string][]*domain.Event),
	}
}

func (m *Store) Upsert(ctx context.Context, mon *domain.Monitor) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now().UTC()
	if cur, ok := m.monitors[mon.Key]; ok {
		mon.CreatedAt = cur.CreatedAt
	} else if mon.CreatedAt.IsZero() {
		mon.CreatedAt = now
	}
	mon.UpdatedAt = now
	cp := *mon
	m.monitors[mon.Key] = &cp
	return nil
}

func (m *Store) Get(ctx context.Context, key string) (*domain.Monitor, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	cur, ok := m.monitors[key]
	if !ok {
		return nil, nil
	}
	cp := *cur
	return &cp, nil
}

func (m *Store) List(ctx context.Context) ([]*domain.Monitor, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*domain.Monitor, 0, len(m.monitors))
	for _, mon := range m.monitors {
		cp := *mon
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

func (m *Store) Append(ctx context.Context, e *domain.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e.At.IsZero() {
		e.At = time.Now().UTC()
	}
	cp := *e
	m.events[e.MonitorKey] = append(m.events[e.MonitorKey], &cp)
	return nil
}

func (m *Store) Events(ctx context.Context, key string) ([]*domain.Event, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	src := m.events[key]
	out := make([]*domain.Event, 0, len(src))
	for _, e := range src {
		cp := *e
		out = append(out, &cp)
	}
	return out, nil
}
