package http

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"thrive-chatbot/internal/core"
)

// SessionCookieName carries the signed session token.
const SessionCookieName = "thrive_session"

type sessionEntry struct {
	sess     *core.Session
	limiter  *rate.Limiter
	lastSeen time.Time
}

// SessionRegistry holds the live conversation sessions of this process.
// Sessions idle for longer than the TTL are dropped by Sweep.
type SessionRegistry struct {
	mu       sync.Mutex
	sessions map[string]*sessionEntry
	ttl      time.Duration
	limit    rate.Limit
	burst    int
	now      func() time.Time
}

// NewSessionRegistry creates an empty registry.  limit and burst configure
// the per-session chat rate limiter.
func NewSessionRegistry(ttl time.Duration, limit float64, burst int) *SessionRegistry {
	if burst < 1 {
		burst = 1
	}
	return &SessionRegistry{
		sessions: make(map[string]*sessionEntry),
		ttl:      ttl,
		limit:    rate.Limit(limit),
		burst:    burst,
		now:      time.Now,
	}
}

// Create registers a new anonymous session.
func (r *SessionRegistry) Create() *core.Session {
	sess := core.NewSession()
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[sess.ID] = &sessionEntry{
		sess:     sess,
		limiter:  rate.NewLimiter(r.limit, r.burst),
		lastSeen: r.now(),
	}
	return sess
}

// Get returns the session with id and marks it as used.
func (r *SessionRegistry) Get(id string) (*core.Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.sessions[id]
	if !ok {
		return nil, false
	}
	e.lastSeen = r.now()
	return e.sess, true
}

// Allow reports whether the session may start another chat turn now.
func (r *SessionRegistry) Allow(id string) bool {
	r.mu.Lock()
	e, ok := r.sessions[id]
	r.mu.Unlock()
	if !ok {
		return false
	}
	return e.limiter.Allow()
}

// Remove drops a session.
func (r *SessionRegistry) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
}

func (r *SessionRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Sweep removes sessions idle for longer than the TTL and returns how many
// were removed.
func (r *SessionRegistry) Sweep() int {
	if r.ttl <= 0 {
		return 0
	}
	cutoff := r.now().Add(-r.ttl)
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for id, e := range r.sessions {
		if e.lastSeen.Before(cutoff) {
			delete(r.sessions, id)
			n++
		}
	}
	return n
}

// StartSweeper runs Sweep every interval until ctx is cancelled.
func (r *SessionRegistry) StartSweeper(ctx context.Context, interval time.Duration, logger *zap.Logger) {
	if interval <= 0 {
		interval = time.Minute
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := r.Sweep(); n > 0 {
					logger.Info("expired idle sessions", zap.Int("removed", n), zap.Int("remaining", r.Len()))
				}
			}
		}
	}()
}
