package cart

import (
	"sync"

	"cart-service/internal/pricing"
)

// Session pairs one cart with its page-scoped promo state. The promo is
// deliberately kept out of the cart itself.
type Session struct {
	ID   string
	Cart *Cart

	mu    sync.Mutex
	promo pricing.PromoState
}

// ApplyPromo tries to activate a promo code for this session. It reports
// whether a promo is active afterwards and whether this call is the one that
// activated it; both are decided under the session lock so concurrent
// applies of the same code agree on a single activation.
func (s *Session) ApplyPromo(table pricing.PromoTable, code string) (active, newlyApplied bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	wasApplied := s.promo.Applied
	active = table.Apply(&s.promo, code)
	return active, active && !wasApplied
}

// Promo returns a copy of the session promo state.
func (s *Session) Promo() pricing.PromoState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.promo
}

// ResetPromo clears the active promo, if any. Called together with the
// post-payment cart clear.
func (s *Session) ResetPromo() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.promo = pricing.PromoState{}
}

// Registry owns the live shopping sessions. Each session ID maps to exactly
// one cart; a session is created on first use. The registry is injected into
// its consumers so tests can run against isolated instances.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewRegistry creates an empty session registry
func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]*Session)}
}

// Get returns the session for an ID, creating it if needed.
func (r *Registry) Get(id string) *Session {
	r.mu.RLock()
	s, ok := r.sessions[id]
	r.mu.RUnlock()
	if ok {
		return s
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sessions[id]; ok {
		return s
	}
	s = &Session{ID: id, Cart: New()}
	r.sessions[id] = s
	return s
}

// Lookup returns the session for an ID without creating it.
func (r *Registry) Lookup(id string) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	return s, ok
}
