package identity

import (
	"strings"
	"sync"
)

// Watcher delivers the current user id and any later changes. The callback
// fires immediately with the current value on subscribe; an empty user id
// means signed out.
type Watcher interface {
	OnAuthChanged(fn func(userID string)) (stop func())
}

// Static is the config-backed provider: one fixed user id, no changes.
type Static struct {
	userID string
}

// NewStatic builds a provider for a fixed user id.
func NewStatic(userID string) *Static {
	return &Static{userID: strings.TrimSpace(userID)}
}

func (s *Static) OnAuthChanged(fn func(string)) func() {
	fn(s.userID)
	return func() {}
}

// Manual is a switchable provider, used by tests and by integrations that
// learn about sign-in after startup.
type Manual struct {
	mu          sync.Mutex
	userID      string
	serial      int
	subscribers map[int]func(string)
}

// NewManual builds a provider starting signed out.
func NewManual() *Manual {
	return &Manual{subscribers: make(map[int]func(string))}
}

func (m *Manual) OnAuthChanged(fn func(string)) func() {
	m.mu.Lock()
	m.serial++
	id := m.serial
	m.subscribers[id] = fn
	current := m.userID
	m.mu.Unlock()

	fn(current)
	return func() {
		m.mu.Lock()
		delete(m.subscribers, id)
		m.mu.Unlock()
	}
}

// Set changes the signed-in user and notifies subscribers. Setting the same
// value again is a no-op.
func (m *Manual) Set(userID string) {
	userID = strings.TrimSpace(userID)
	m.mu.Lock()
	if m.userID == userID {
		m.mu.Unlock()
		return
	}
	m.userID = userID
	subscribers := make([]func(string), 0, len(m.subscribers))
	for _, fn := range m.subscribers {
		subscribers = append(subscribers, fn)
	}
	m.mu.Unlock()

	for _, fn := range subscribers {
		fn(userID)
	}
}
