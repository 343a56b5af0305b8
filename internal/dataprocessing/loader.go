package dataprocessing

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"playerstats/pkg/contracts/domain"
)

// Loader fetches and derives the player table once and then serves the same
// immutable table to every caller. Concurrent first calls share one fetch. A
// failed fetch is not cached.
type Loader struct {
	source   Source
	pipeline *Pipeline
	logger   *slog.Logger

	group singleflight.Group

	mu       sync.RWMutex
	table    *domain.Table
	loadedAt time.Time
}

// NewLoader creates a loader for source, deriving with pipeline.
func NewLoader(source Source, pipeline *Pipeline, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{
		source:   source,
		pipeline: pipeline,
		logger:   logger.With(slog.String("component", "loader")),
	}
}

// Table returns the derived table, loading it on first use. The returned
// table is shared and must not be modified.
func (l *Loader) Table(ctx context.Context) (*domain.Table, error) {
	if t := l.cached(); t != nil {
		return t, nil
	}

	v, err, shared := l.group.Do("table", func() (interface{}, error) {
		if t := l.cached(); t != nil {
			return t, nil
		}

		start := time.Now()
		raw, err := l.source.Fetch(ctx)
		if err != nil {
			l.logger.ErrorContext(ctx, "Failed to load player table",
				slog.String("source", l.source.Describe()),
				slog.String("error", err.Error()))
			return nil, err
		}

		derived := l.pipeline.Derive(raw)

		l.mu.Lock()
		l.table = derived
		l.loadedAt = time.Now()
		l.mu.Unlock()

		l.logger.InfoContext(ctx, "Player table loaded",
			slog.String("source", l.source.Describe()),
			slog.Int("rows", derived.Len()),
			slog.Int("columns", len(derived.Columns)),
			slog.Duration("duration", time.Since(start)))
		return derived, nil
	})
	if err != nil {
		return nil, err
	}
	if shared {
		l.logger.DebugContext(ctx, "Shared in-flight table load")
	}
	return v.(*domain.Table), nil
}

// Loaded reports whether the table is cached and when it was loaded.
func (l *Loader) Loaded() (bool, time.Time) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.table != nil, l.loadedAt
}

// Source returns the underlying source
func (l *Loader) Source() Source {
	return l.source
}

func (l *Loader) cached() *domain.Table {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.table
}
