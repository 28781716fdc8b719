package repo

import (
	"context"

	"github.com/hamed0406/cronbeat/internal/domain"
)

// Ports (interfaces) used by the emulator.
type MonitorStore interface {
	// Upsert creates the monitor or replaces its definition, keeping CreatedAt.
	Upsert(ctx context.Context, m *domain.Monitor) error
	// Get returns nil, nil if the key is unknown.
	Get(ctx context.Context, key string) (*domain.Monitor, error)
	List(ctx context.Context) ([]*domain.Monitor, error)
}

type EventStore interface {
	Append(ctx context.Context, e *domain.Event) error
	// Events returns the events of one monitor, oldest first.
	Events(ctx context.Context, key string) ([]*domain.Event, error)
}
