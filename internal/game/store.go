package game

import "sync"

// Store holds the active session of every chat plus an index from current
// leaders to the chat they lead, so a leader can set the word from a private chat.
type Store struct {
	sessions map[int64]*Session // chatID -> Session
	leaders  map[int64]int64    // leader userID -> chatID
	mu       sync.RWMutex
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{
		sessions: make(map[int64]*Session),
		leaders:  make(map[int64]int64),
	}
}

// Get returns the chat's session, or nil.
func (st *Store) Get(chatID int64) *Session {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.sessions[chatID]
}

// Put installs s as its chat's session and returns the session it replaced, if any.
func (st *Store) Put(s *Session) *Session {
	st.mu.Lock()
	defer st.mu.Unlock()

	old := st.sessions[s.ChatID]
	if old != nil {
		st.dropLeaderLocked(old)
	}
	st.sessions[s.ChatID] = s
	return old
}

// Remove deletes the chat's session only if it is still s.
// Returns false when s had already been replaced or removed.
func (st *Store) Remove(s *Session) bool {
	st.mu.Lock()
	defer st.mu.Unlock()

	if st.sessions[s.ChatID] != s {
		return false
	}
	st.dropLeaderLocked(s)
	delete(st.sessions, s.ChatID)
	return true
}

// SetLeader records that userID leads the game in s's chat.
func (st *Store) SetLeader(s *Session, userID int64) {
	st.mu.Lock()
	defer st.mu.Unlock()

	if s.Leader != nil && s.Leader.ID != userID {
		if chatID, ok := st.leaders[s.Leader.ID]; ok && chatID == s.ChatID {
			delete(st.leaders, s.Leader.ID)
		}
	}
	st.leaders[userID] = s.ChatID
}

// ChatForLeader returns the chat in which userID is currently leader.
// A player leading in several chats resolves to the most recent one.
func (st *Store) ChatForLeader(userID int64) (int64, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	chatID, ok := st.leaders[userID]
	return chatID, ok
}

// Len returns the number of active sessions.
func (st *Store) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}

// All returns a snapshot of every active session.
func (st *Store) All() []*Session {
	st.mu.RLock()
	defer st.mu.RUnlock()

	out := make([]*Session, 0, len(st.sessions))
	for _, s := range st.sessions {
		out = append(out, s)
	}
	return out
}

func (st *Store) dropLeaderLocked(s *Session) {
	if s.Leader == nil {
		return
	}
	if chatID, ok := st.leaders[s.Leader.ID]; ok && chatID == s.ChatID {
		delete(st.leaders, s.Leader.ID)
	}
}
