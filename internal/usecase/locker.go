package usecase

import "sync"

// gameLocker serializes operations per game ID. Locks are dropped once no
// caller holds or waits on them.
type gameLocker struct {
	mu    sync.Mutex
	locks map[string]*gameLock
}

type gameLock struct {
	mu   sync.Mutex
	refs int
}

func newGameLocker() *gameLocker {
	return &gameLocker{
		locks: make(map[string]*gameLock),
	}
}

// Lock blocks until the caller owns gameID and returns the matching unlock.
func (that *gameLocker) Lock(gameID string) func() {
	that.mu.Lock()
	lock, ok := that.locks[gameID]
	if !ok {
		lock = &gameLock{}
		that.locks[gameID] = lock
	}
	lock.refs++
	that.mu.Unlock()

	lock.mu.Lock()

	return func() {
		lock.mu.Unlock()

		that.mu.Lock()
		lock.refs--
		if lock.refs == 0 {
			delete(that.locks, gameID)
		}
		that.mu.Unlock()
	}
}

func (that *gameLocker) size() int {
	that.mu.Lock()
	defer that.mu.Unlock()

	return len(that.locks)
}
