package policy

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/gccconnect/connect/internal/core/domain"
)

// SnapshotSource is read by the router on every navigation.
type SnapshotSource interface {
	Snapshot() domain.Snapshot
}

// Router applies the route table to navigations of one client and remembers
// where it currently is.
type Router struct {
	table  *Table
	source SnapshotSource
	log    zerolog.Logger

	mu      sync.RWMutex
	current domain.Route
}

func NewRouter(table *Table, source SnapshotSource, log zerolog.Logger) *Router {
	return &Router{table: table, source: source, log: log, current: domain.RouteHome}
}

// Navigate resolves to against the current snapshot and records the landing route.
func (r *Router) Navigate(_ context.Context, to domain.Route) domain.Route {
	snap := r.source.Snapshot()
	landed, hops, ok := r.table.Resolve(snap, to)

	for _, h := range hops {
		r.log.Debug().
			Str("route", string(h.From)).
			Str("redirect", string(h.To)).
			Str("state", string(snap.State())).
			Msg("navigation denied")
	}
	if !ok {
		r.log.Warn().Str("from", string(to)).Str("route", string(landed)).Msg("redirect limit reached")
	}

	r.mu.Lock()
	r.current = landed
	r.mu.Unlock()
	return landed
}

// Current returns the last landed route.
func (r *Router) Current() domain.Route {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.current
}
