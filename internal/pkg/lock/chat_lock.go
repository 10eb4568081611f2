// Package lock provides chat-level locking for concurrent session mutation.
package lock

import (
	"sync"
)

// ChatLock provides one mutex per chat so that a chat's lobby timer and the
// events arriving for that chat never mutate its session at the same time.
// Different chats never contend.
type ChatLock struct {
	locks sync.Map // map[int64]*sync.Mutex
	pool  sync.Pool
}

// NewChatLock creates a new ChatLock instance.
func NewChatLock() *ChatLock {
	return &ChatLock{
		pool: sync.Pool{
			New: func() any {
				return &sync.Mutex{}
			},
		},
	}
}

// getLock retrieves or creates the mutex for the given chat ID.
func (cl *ChatLock) getLock(chatID int64) *sync.Mutex {
	if v, ok := cl.locks.Load(chatID); ok {
		return v.(*sync.Mutex)
	}

	newLock := cl.pool.Get().(*sync.Mutex)

	// Another goroutine may have stored a mutex first; keep theirs.
	actual, loaded := cl.locks.LoadOrStore(chatID, newLock)
	if loaded {
		cl.pool.Put(newLock)
	}
	return actual.(*sync.Mutex)
}

// Lock acquires the lock for a chat.
func (cl *ChatLock) Lock(chatID int64) {
	cl.getLock(chatID).Lock()
}

// Unlock releases the lock for a chat.
func (cl *ChatLock) Unlock(chatID int64) {
	if v, ok := cl.locks.Load(chatID); ok {
		v.(*sync.Mutex).Unlock()
	}
}

// WithLock executes fn while holding the chat's lock.
func (cl *ChatLock) WithLock(chatID int64, fn func() error) error {
	cl.Lock(chatID)
	defer cl.Unlock(chatID)
	return fn()
}
