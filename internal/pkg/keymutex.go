package pkg

import "sync"

// KeyedMutex serializes work per key. Entries are dropped once nobody holds or waits for them.
type KeyedMutex struct {
	mu    sync.Mutex
	locks map[string]*refMutex
}

type refMutex struct {
	sync.Mutex
	refs int
}

func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{
		locks: make(map[string]*refMutex),
	}
}

// Lock - blocks until key is free and returns the matching unlock func.
func (that *KeyedMutex) Lock(key string) func() {
	that.mu.Lock()
	lock, ok := that.locks[key]
	if !ok {
		lock = &refMutex{}
		that.locks[key] = lock
	}
	lock.refs++
	that.mu.Unlock()

	lock.Lock()

	return func() {
		lock.Unlock()

		that.mu.Lock()
		lock.refs--
		if lock.refs == 0 {
			delete(that.locks, key)
		}
		that.mu.Unlock()
	}
}

// Len - number of keys currently tracked.
func (that *KeyedMutex) Len() int {
	that.mu.Lock()
	defer that.mu.Unlock()

	return len(that.locks)
}
