package session

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/savings-pocket/savings_pocket/internal/funding"
	"github.com/savings-pocket/savings_pocket/internal/wallet"
)

// ErrNotFound is returned for unknown or unmounted sessions.
var ErrNotFound = errors.New("session not found")

// Session is one mounted wallet screen. Its state lives until Unmount.
type Session struct {
	ID        string
	Wallet    *wallet.Store
	Funding   *funding.Machine
	MountedAt time.Time
}

// Factory builds the store and machine for a new session.
type Factory func() (*wallet.Store, *funding.Machine, error)

// Registry tracks mounted sessions.
type Registry struct {
	factory Factory

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewRegistry creates an empty registry.
func NewRegistry(factory Factory) *Registry {
	return &Registry{factory: factory, sessions: make(map[string]*Session)}
}

// Mount creates a fresh session.
func (r *Registry) Mount() (*Session, error) {
	store, machine, err := r.factory()
	if err != nil {
		return nil, fmt.Errorf("build session: %w", err)
	}
	s := &Session{
		ID:        uuid.NewString(),
		Wallet:    store,
		Funding:   machine,
		MountedAt: time.Now().UTC(),
	}

	r.mu.Lock()
	r.sessions[s.ID] = s
	r.mu.Unlock()
	return s, nil
}

// Get returns a mounted session.
func (r *Registry) Get(id string) (*Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return s, nil
}

// Store implements wallet.Locator.
func (r *Registry) Store(id string) (*wallet.Store, error) {
	s, err := r.Get(id)
	if err != nil {
		return nil, err
	}
	return s.Wallet, nil
}

// Machine implements funding.Locator.
func (r *Registry) Machine(id string) (*funding.Machine, error) {
	s, err := r.Get(id)
	if err != nil {
		return nil, err
	}
	return s.Funding, nil
}

// Unmount discards a session and stops its funding machine.
func (r *Registry) Unmount(id string) error {
	r.mu.Lock()
	s, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()
	if !ok {
		return ErrNotFound
	}
	s.Funding.Close()
	return nil
}

// Len reports the number of mounted sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Close unmounts every session.
func (r *Registry) Close() {
	r.mu.Lock()
	sessions := r.sessions
	r.sessions = make(map[string]*Session)
	r.mu.Unlock()

	for _, s := range sessions {
		s.Funding.Close()
	}
}
