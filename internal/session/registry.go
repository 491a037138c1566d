// Package session owns per-session state. A session starts when a client is first seen and ends
// when it is closed or has been idle for too long.
package session

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/abgdnv/gostorefront/internal/cart"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// Session is the state owned by one client.
type Session struct {
	ID        string
	Cart      *cart.Cart
	CreatedAt time.Time

	lastSeen atomic.Int64
	load     sync.Once
}

// LastSeen returns the time of the last Open of the session.
func (s *Session) LastSeen() time.Time {
	return time.Unix(0, s.lastSeen.Load())
}

func (s *Session) touch(now time.Time) {
	s.lastSeen.Store(now.UnixNano())
}

// CartFactory builds the cart of a new session.
type CartFactory func(sessionID string) *cart.Cart

// Registry tracks the live sessions.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*Session

	newCart CartFactory
	logger  *slog.Logger
	now     func() time.Time
	active  metric.Int64UpDownCounter
}

func NewRegistry(newCart CartFactory, logger *slog.Logger) *Registry {
	r := &Registry{
		sessions: make(map[string]*Session),
		newCart:  newCart,
		logger:   logger.With("component", "session"),
		now:      time.Now,
	}
	active, err := otel.Meter("github.com/abgdnv/gostorefront/internal/session").Int64UpDownCounter(
		"storefront.sessions.active",
		metric.WithDescription("Number of live storefront sessions"),
	)
	if err != nil {
		r.logger.Warn("Failed to create sessions gauge", "error", err)
	} else {
		r.active = active
	}
	return r
}

// Open returns the session with the given ID, starting it if needed. Starting a session
// rehydrates its cart from storage. An empty or malformed ID starts a session with a fresh ID.
// The boolean reports whether the session was started by this call.
func (r *Registry) Open(ctx context.Context, id string) (*Session, bool) {
	if _, err := uuid.Parse(id); err != nil {
		id = uuid.NewString()
	}
	now := r.now()

	r.mu.Lock()
	s, ok := r.sessions[id]
	if !ok {
		s = &Session{ID: id, Cart: r.newCart(id), CreatedAt: now}
		r.sessions[id] = s
	}
	s.touch(now)
	r.mu.Unlock()

	s.load.Do(func() {
		s.Cart.Load(ctx)
	})
	if !ok {
		r.addActive(ctx, 1)
		r.logger.DebugContext(ctx, "Session started", "session_id", id, "items", s.Cart.Len())
	}
	return s, !ok
}

// Get returns a live session without starting one.
func (r *Registry) Get(id string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	return s, ok
}

// Close ends the session. Its persisted cart survives for the next session start.
func (r *Registry) Close(ctx context.Context, id string) bool {
	r.mu.Lock()
	_, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()
	if ok {
		r.addActive(ctx, -1)
		r.logger.DebugContext(ctx, "Session closed", "session_id", id)
	}
	return ok
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Sweep closes the sessions idle for longer than idle and returns how many were closed.
func (r *Registry) Sweep(ctx context.Context, idle time.Duration) int {
	cutoff := r.now().Add(-idle)
	r.mu.Lock()
	var expired []string
	for id, s := range r.sessions {
		if s.LastSeen().Before(cutoff) {
			expired = append(expired, id)
			delete(r.sessions, id)
		}
	}
	r.mu.Unlock()
	if len(expired) > 0 {
		r.addActive(ctx, -int64(len(expired)))
		r.logger.InfoContext(ctx, "Idle sessions closed", "count", len(expired))
	}
	return len(expired)
}

// Run sweeps idle sessions every interval until ctx is done.
func (r *Registry) Run(ctx context.Context, interval, idle time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			r.Sweep(ctx, idle)
		}
	}
}

func (r *Registry) addActive(ctx context.Context, delta int64) {
	if r.active != nil {
		r.active.Add(ctx, delta)
	}
}
