package session

import (
	"sync"

	"github.com/google/uuid"

	"github.com/da-pic/coffeepos/internal/auth"
)

// Manager holds the single currently-authenticated actor. All access
// goes through the lock so a login/logout racing with a read can never
// produce a torn view of the current actor.
//
// Login replaces any existing actor; orders created under the previous
// actor keep the actor id they were stamped with.
type Manager struct {
	mu      sync.RWMutex
	current *auth.Actor
	id      string
}

// New returns an empty session manager (nobody logged in).
func New() *Manager {
	return &Manager{}
}

// Login sets the current actor, replacing any previous one, and returns
// the new session id.
func (m *Manager) Login(actor *auth.Actor) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = actor
	m.id = uuid.NewString()
	return m.id
}

// Logout clears the current actor.
func (m *Manager) Logout() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = nil
	m.id = ""
}

// Current returns the current actor, or nil and false if nobody is
// logged in.
func (m *Manager) Current() (*auth.Actor, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current, m.current != nil
}

// ID returns the current session id, empty when logged out.
func (m *Manager) ID() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.id
}

// LoggedIn reports whether an actor is present.
func (m *Manager) LoggedIn() bool {
	_, ok := m.Current()
	return ok
}

// HasCapability checks the current actor against the policy. Fails
// closed when nobody is logged in.
func (m *Manager) HasCapability(cap auth.Capability) bool {
	actor, _ := m.Current()
	return auth.HasCapability(actor, cap)
}
