package session

import (
	"sync"
	"time"
)

// Store maps chat identities to sessions. Entry creation, replacement and
// removal happen under one mutex; the session payload itself is only ever
// touched by its own chat's handler, which the transport serializes. The
// idle clock lives here rather than on the session so the janitor and the
// handlers never share an unguarded field.
type Store struct {
	mu       sync.Mutex
	sessions map[int64]*Session
	lastSeen map[int64]time.Time
}

func NewStore() *Store {
	return &Store{
		sessions: make(map[int64]*Session),
		lastSeen: make(map[int64]time.Time),
	}
}

// Get returns the chat's session, creating one in AWAITING_FILE on first
// contact.
func (st *Store) Get(chatID int64) *Session {
	st.mu.Lock()
	defer st.mu.Unlock()
	if s, ok := st.sessions[chatID]; ok {
		return s
	}
	s := newSession(chatID)
	st.sessions[chatID] = s
	st.lastSeen[chatID] = time.Now()
	return s
}

// Reset discards any existing session and starts the chat over.
func (st *Store) Reset(chatID int64) *Session {
	st.mu.Lock()
	defer st.mu.Unlock()
	s := newSession(chatID)
	st.sessions[chatID] = s
	st.lastSeen[chatID] = time.Now()
	return s
}

// Touch refreshes the chat's idle clock after a handled message.
func (st *Store) Touch(chatID int64) {
	st.mu.Lock()
	defer st.mu.Unlock()
	if _, ok := st.sessions[chatID]; ok {
		st.lastSeen[chatID] = time.Now()
	}
}

// Delete removes the chat's session; a terminal transition.
func (st *Store) Delete(chatID int64) {
	st.mu.Lock()
	defer st.mu.Unlock()
	delete(st.sessions, chatID)
	delete(st.lastSeen, chatID)
}

// Contains reports whether the chat currently holds a session.
func (st *Store) Contains(chatID int64) bool {
	st.mu.Lock()
	defer st.mu.Unlock()
	_, ok := st.sessions[chatID]
	return ok
}

func (st *Store) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}

// PruneStale expires sessions idle longer than maxIdle and returns the
// expired sessions so the caller can log or notify.
func (st *Store) PruneStale(maxIdle time.Duration) []*Session {
	cutoff := time.Now().Add(-maxIdle)
	st.mu.Lock()
	defer st.mu.Unlock()

	var expired []*Session
	for id, s := range st.sessions {
		if st.lastSeen[id].Before(cutoff) {
			expired = append(expired, s)
			delete(st.sessions, id)
			delete(st.lastSeen, id)
		}
	}
	return expired
}
