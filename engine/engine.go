// Package engine implements the social interaction engine: identity, content,
// engagement toggles, feed assembly and user suggestions. It holds no
// cross-request mutable state and depends only on the storage.Backend
// contract; the concrete backend is injected at construction.
package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"socialfeed/cache"
	"socialfeed/events"
	"socialfeed/monitoring"
	"socialfeed/storage"
)

const DefaultBackendTimeout = 5 * time.Second

type Engine struct {
	backend     storage.Backend
	broadcaster *events.Broadcaster
	statsCache  *cache.UsersCache
	timeout     time.Duration
}

// New wires the engine. broadcaster and statsCache may be nil: events are
// then dropped and statistics are always computed live.
func New(backend storage.Backend, broadcaster *events.Broadcaster, statsCache *cache.UsersCache, timeout time.Duration) *Engine {
	if timeout <= 0 {
		timeout = DefaultBackendTimeout
	}
	return &Engine{
		backend:     backend,
		broadcaster: broadcaster,
		statsCache:  statsCache,
		timeout:     timeout,
	}
}

// opCtx bounds a single backend call. Every public operation is its own
// request-scoped unit of work.
func (e *Engine) opCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, e.timeout)
}

// backendErr surfaces timeouts at the backend boundary as
// ErrBackendUnavailable; domain errors pass through untouched.
func backendErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %v", storage.ErrBackendUnavailable, err)
	}
	return err
}

func observe(operation string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	monitoring.EngineOperationsTotal.WithLabelValues(operation, outcome).Inc()
}

func (e *Engine) publish(eventType events.Type, payload any) {
	if e.broadcaster != nil {
		e.broadcaster.Publish(eventType, payload)
	}
}
