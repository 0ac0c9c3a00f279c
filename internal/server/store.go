package server

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/flowscope/pkg/graphio"
	"github.com/matzehuels/flowscope/pkg/vizstate"
)

// Session is one uploaded document with its mutable visibility state.
// All access to State goes through Do or View so concurrent requests on
// the same document are serialized.
type Session struct {
	ID        string
	Document  *graphio.Document
	State     *vizstate.State
	Hierarchy string
	CreatedAt time.Time
	UpdatedAt time.Time

	mu sync.RWMutex
}

// Do runs fn while holding the session lock and bumps UpdatedAt.
func (s *Session) Do(fn func(*vizstate.State) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := fn(s.State); err != nil {
		return err
	}
	s.UpdatedAt = time.Now()
	return nil
}

// View runs fn under a read lock. Readers may overlap with each other
// but never with a mutation in flight through Do.
func (s *Session) View(fn func(*vizstate.State)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn(s.State)
}

// Store holds sessions in memory, keyed by uuid.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{sessions: make(map[string]*Session)}
}

// Put registers a new session and returns its id.
func (st *Store) Put(doc *graphio.Document, state *vizstate.State, hierarchy string) *Session {
	now := time.Now()
	sess := &Session{
		ID:        uuid.NewString(),
		Document:  doc,
		State:     state,
		Hierarchy: hierarchy,
		CreatedAt: now,
		UpdatedAt: now,
	}

	st.mu.Lock()
	st.sessions[sess.ID] = sess
	st.mu.Unlock()
	return sess
}

// Get returns the session with the given id.
func (st *Store) Get(id string) (*Session, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	sess, ok := st.sessions[id]
	return sess, ok
}

// Delete removes a session. Deleting a missing id is not an error.
func (st *Store) Delete(id string) {
	st.mu.Lock()
	delete(st.sessions, id)
	st.mu.Unlock()
}

// List returns all sessions ordered by creation time.
func (st *Store) List() []*Session {
	st.mu.RLock()
	out := make([]*Session, 0, len(st.sessions))
	for _, sess := range st.sessions {
		out = append(out, sess)
	}
	st.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

// Len reports the number of stored sessions.
func (st *Store) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}
