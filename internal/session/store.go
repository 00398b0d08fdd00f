package session

import (
	"errors"
	"fmt"
	"sync"
)

// ErrSessionExists reports a Create call for a user that already has a
// session. Duplicate creation is a programmer error and never silently
// overwrites history.
var ErrSessionExists = errors.New("session: already exists")

// Store owns all sessions. It is constructed once and injected into the
// dialogue controller; there is no package-level instance.
type Store struct {
	mu       sync.RWMutex
	sessions map[int64]*Session
	locks    map[int64]*sync.Mutex
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		sessions: make(map[int64]*Session),
		locks:    make(map[int64]*sync.Mutex),
	}
}

// Get returns the session for a user if it exists.
func (st *Store) Get(userID int64) (*Session, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	s, ok := st.sessions[userID]
	return s, ok
}

// Create makes a fresh session for a user. It fails if one already exists;
// callers must check Get first.
func (st *Store) Create(userID int64) (*Session, error) {
	st.mu.Lock()
	defer st.mu.Unlock()
	if _, ok := st.sessions[userID]; ok {
		return nil, fmt.Errorf("user %d: %w", userID, ErrSessionExists)
	}
	s := &Session{}
	st.sessions[userID] = s
	return s, nil
}

// Remove deletes the session for a user. Removing an absent session is a no-op.
func (st *Store) Remove(userID int64) {
	st.mu.Lock()
	defer st.mu.Unlock()
	delete(st.sessions, userID)
}

// Len returns the number of live sessions.
func (st *Store) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}

// Transition runs fn under the per-user mutex, so state transitions for one
// user are serialized in arrival order while different users proceed
// concurrently. Lock entries outlive session removal so that an in-flight
// transition is never unlocked from under a concurrent event.
func (st *Store) Transition(userID int64, fn func() error) error {
	st.mu.Lock()
	lock, ok := st.locks[userID]
	if !ok {
		lock = &sync.Mutex{}
		st.locks[userID] = lock
	}
	st.mu.Unlock()

	lock.Lock()
	defer lock.Unlock()
	return fn()
}
