package handlers

import (
	"context"
	"time"

	"media-tags/internal/metrics"
)

// Store is the part of the database the exporter endpoints read.
type Store interface {
	Ping(ctx context.Context) error
	GraphStats(ctx context.Context) (metrics.Stats, error)
}

// Handlers serves the exporter endpoints of tagctl serve-metrics.
type Handlers struct {
	store   Store
	started time.Time
}

// New creates handlers reading from store.
func New(store Store) *Handlers {
	return &Handlers{
		store:   store,
		started: time.Now(),
	}
}
