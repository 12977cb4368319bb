package session

import "sync"

// KeyedMutex serializes the get -> compute -> put sequence per session key.
// Actions for different keys proceed independently; two actions for the same
// key never interleave their read-modify-write of the store.
type KeyedMutex struct {
	mu    sync.Mutex
	locks map[string]*keyLock
}

type keyLock struct {
	mu   sync.Mutex
	refs int
}

// NewKeyedMutex constructs an empty KeyedMutex.
func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{locks: make(map[string]*keyLock)}
}

// Lock acquires the lock for key and returns its unlock function.
// Lock entries are reference counted so the map does not grow unboundedly.
func (k *KeyedMutex) Lock(key Key) func() {
	id := key.String()

	k.mu.Lock()
	l, ok := k.locks[id]
	if !ok {
		l = &keyLock{}
		k.locks[id] = l
	}
	l.refs++
	k.mu.Unlock()

	l.mu.Lock()

	return func() {
		l.mu.Unlock()
		k.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(k.locks, id)
		}
		k.mu.Unlock()
	}
}
