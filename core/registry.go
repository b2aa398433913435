package core

import (
	"sync"

	"go.uber.org/zap"
)

// SourceRegistry is the collection of registered clock sources. Insertion
// order is preserved: selection breaks resolution ties in favor of the
// earliest registration.
type SourceRegistry struct {
	mu      sync.Mutex
	sources []ClockSource
	log     *zap.Logger
}

// NewSourceRegistry creates an empty registry.
func NewSourceRegistry(log *zap.Logger) *SourceRegistry {
	if log == nil {
		log = zap.NewNop()
	}
	return &SourceRegistry{log: log}
}

// Register adds a source to the registry and starts it immediately if it
// supports being started, so it is counting before it is ever selected.
// Registering a source twice is a no-op.
func (r *SourceRegistry) Register(src ClockSource) {
	if src == nil {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, s := range r.sources {
		if s == src {
			return
		}
	}
	r.sources = append(r.sources, src)

	if err := enableSource(src); err != nil {
		r.log.Warn("clock source enable failed",
			zap.String("source", src.Name()), zap.Error(err))
	}
}

// Unregister removes a source from the registry. The source is not
// stopped: removal means the caller already owns the device shutdown.
// Removing an unknown source is a no-op.
func (r *SourceRegistry) Unregister(src ClockSource) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, s := range r.sources {
		if s == src {
			r.sources = append(r.sources[:i], r.sources[i+1:]...)
			return
		}
	}
}

// Len returns the number of registered sources.
func (r *SourceRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sources)
}

// Snapshot returns the registered sources in registration order.
func (r *SourceRegistry) Snapshot() []ClockSource {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]ClockSource, len(r.sources))
	copy(out, r.sources)
	return out
}

// best scans for the most precise source, starting from fallback and
// replacing the candidate only on a strict resolution improvement. With
// an empty registry and a nil fallback it returns nil.
func (r *SourceRegistry) best(fallback ClockSource) ClockSource {
	r.mu.Lock()
	defer r.mu.Unlock()

	best := fallback
	for _, s := range r.sources {
		if best == nil || s.ResolutionNS() < best.ResolutionNS() {
			best = s
		}
	}
	return best
}
