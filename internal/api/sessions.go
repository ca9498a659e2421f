package api

import (
	"net/http"
	"sync"
	"time"

	"github.com/example/solar-storefront/internal/checkout"
	"github.com/example/solar-storefront/internal/domain/cart"
	"github.com/google/uuid"
)

const sessionCookie = "cart_session"

// session is one shopper's cart and checkout. mu serializes every request of the
// session; submitting is held for the whole Order API call so a second checkout can
// be turned away instead of queueing behind it.
type session struct {
	mu         sync.Mutex
	submitting sync.Mutex

	id       string
	cart     *cart.Store
	checkout *checkout.Orchestrator
	lastSeen time.Time
}

// Sessions owns the live carts, keyed by the session cookie.
type Sessions struct {
	mu       sync.Mutex
	sessions map[string]*session
	build    func(id string, store *cart.Store) *checkout.Orchestrator
	ttl      time.Duration
	now      func() time.Time
}

func NewSessions(ttl time.Duration, build func(id string, store *cart.Store) *checkout.Orchestrator) *Sessions {
	return &Sessions{
		sessions: make(map[string]*session),
		build:    build,
		ttl:      ttl,
		now:      time.Now,
	}
}

// resolve returns the caller's session, creating it and setting the cookie when the
// request carries none or an expired one.
func (s *Sessions) resolve(w http.ResponseWriter, r *http.Request) *session {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c, err := r.Cookie(sessionCookie); err == nil {
		if sess, ok := s.sessions[c.Value]; ok {
			sess.lastSeen = s.now()
			return sess
		}
	}

	id := uuid.New().String()
	store := cart.NewStore()
	sess := &session{
		id:       id,
		cart:     store,
		checkout: s.build(id, store),
		lastSeen: s.now(),
	}
	s.sessions[id] = sess

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return sess
}

// Sweep drops sessions idle for longer than the ttl and reports how many went.
// Sessions with a submission in flight are kept.
func (s *Sessions) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-s.ttl)
	removed := 0
	for id, sess := range s.sessions {
		if sess.lastSeen.After(cutoff) {
			continue
		}
		if !sess.submitting.TryLock() {
			continue
		}
		sess.submitting.Unlock()
		delete(s.sessions, id)
		removed++
	}
	return removed
}

func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}
