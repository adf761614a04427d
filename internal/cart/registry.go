package cart

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// ErrSnapshotNotFound is returned by a Persister that has nothing stored for a session.
var ErrSnapshotNotFound = errors.New("cart snapshot not found")

// maxSweepInterval caps how long an idle session can outlive its deadline.
const maxSweepInterval = 5 * time.Minute

// Persister keeps session-scoped cart snapshots outside the process.
type Persister interface {
	Load(ctx context.Context, sessionID string) (*State, error)
	Save(ctx context.Context, sessionID string, state State) error
	Delete(ctx context.Context, sessionID string) error
}

type entry struct {
	store    *Store
	lastSeen time.Time
}

// Registry hands out one Store per session and forgets sessions that sit
// idle longer than the session lifetime.
type Registry struct {
	mu        sync.Mutex
	entries   map[string]*entry
	persister Persister
	logger    zerolog.Logger
	timeout   time.Duration
	now       func() time.Time

	hookMu  sync.Mutex
	onEvict []func(sessionID string)
}

// NewRegistry creates a registry. persister may be nil, in which case carts
// live only in memory.
func NewRegistry(persister Persister, logger zerolog.Logger) *Registry {
	return &Registry{
		entries:   make(map[string]*entry),
		persister: persister,
		logger:    logger.With().Str("component", "cart_registry").Logger(),
		timeout:   2 * time.Second,
		now:       time.Now,
	}
}

// Get returns the store for the session, restoring a saved snapshot the first
// time the session is seen by this process. Every call counts as activity.
func (r *Registry) Get(ctx context.Context, sessionID string) *Store {
	if s := r.touch(sessionID); s != nil {
		return s
	}

	// The snapshot is loaded without the lock; a racing Get for the same
	// session may win, in which case its store is used.
	loaded := r.load(ctx, sessionID)

	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.entries[sessionID]; ok {
		e.lastSeen = r.now()
		return e.store
	}
	if r.persister != nil {
		loaded.Subscribe(r.persistFor(sessionID))
	}
	r.entries[sessionID] = &entry{store: loaded, lastSeen: r.now()}
	return loaded
}

func (r *Registry) touch(sessionID string) *Store {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[sessionID]
	if !ok {
		return nil
	}
	e.lastSeen = r.now()
	return e.store
}

// Drop forgets a session and removes its saved snapshot.
func (r *Registry) Drop(ctx context.Context, sessionID string) {
	r.mu.Lock()
	delete(r.entries, sessionID)
	r.mu.Unlock()

	r.release(ctx, sessionID)
}

// OnEvict registers fn to run for every session removed by Evict.
func (r *Registry) OnEvict(fn func(sessionID string)) {
	r.hookMu.Lock()
	defer r.hookMu.Unlock()
	r.onEvict = append(r.onEvict, fn)
}

// Evict drops every session not seen for maxIdle and returns how many went.
func (r *Registry) Evict(ctx context.Context, maxIdle time.Duration) int {
	cutoff := r.now().Add(-maxIdle)

	r.mu.Lock()
	var idle []string
	for id, e := range r.entries {
		if e.lastSeen.Before(cutoff) {
			idle = append(idle, id)
			delete(r.entries, id)
		}
	}
	r.mu.Unlock()

	r.hookMu.Lock()
	hooks := append([]func(string){}, r.onEvict...)
	r.hookMu.Unlock()

	for _, id := range idle {
		r.release(ctx, id)
		for _, fn := range hooks {
			fn(id)
		}
	}

	if len(idle) > 0 {
		r.logger.Debug().Int("evicted", len(idle)).Msg("idle carts evicted")
	}
	return len(idle)
}

// RunJanitor evicts idle sessions until ctx is cancelled.
func (r *Registry) RunJanitor(ctx context.Context, maxIdle time.Duration) {
	interval := maxIdle / 2
	if interval > maxSweepInterval || interval <= 0 {
		interval = maxSweepInterval
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			sweepCtx, cancel := context.WithTimeout(context.Background(), r.timeout)
			r.Evict(sweepCtx, maxIdle)
			cancel()
		}
	}
}

// Len returns the number of sessions held in memory.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

func (r *Registry) release(ctx context.Context, sessionID string) {
	if r.persister == nil {
		return
	}
	if err := r.persister.Delete(ctx, sessionID); err != nil {
		r.logger.Warn().Err(err).Str("session_id", sessionID).Msg("cart snapshot delete failed")
	}
}

func (r *Registry) load(ctx context.Context, sessionID string) *Store {
	if r.persister == nil {
		return NewStore()
	}

	snapshot, err := r.persister.Load(ctx, sessionID)
	if err != nil {
		if !errors.Is(err, ErrSnapshotNotFound) {
			r.logger.Warn().Err(err).Str("session_id", sessionID).Msg("cart snapshot load failed, starting empty")
		}
		return NewStore()
	}

	r.logger.Debug().Str("session_id", sessionID).Int("lines", len(snapshot.Items)).Msg("cart restored")
	return Restore(*snapshot)
}

func (r *Registry) persistFor(sessionID string) Observer {
	return ObserverFunc(func(ev Event) {
		ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
		defer cancel()

		var err error
		if ev.State.Empty() && !ev.State.IsOpen && ev.State.CatalogHash == "" {
			err = r.persister.Delete(ctx, sessionID)
		} else {
			err = r.persister.Save(ctx, sessionID, ev.State)
		}
		if err != nil {
			r.logger.Warn().Err(err).Str("session_id", sessionID).Str("event", string(ev.Kind)).Msg("cart snapshot write failed")
		}
	})
}
