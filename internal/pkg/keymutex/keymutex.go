package keymutex

import "sync"

// KeyMutex provides mutual exclusion per string key. It is used to serialize
// read-modify-write sequences against a single identity so that concurrent
// mutations cannot validate against a stale state.
type KeyMutex struct {
	mu      sync.Mutex
	entries map[string]*entry
}

type entry struct {
	mu   sync.Mutex
	refs int
}

// New creates an empty KeyMutex
func New() *KeyMutex {
	return &KeyMutex{entries: make(map[string]*entry)}
}

// Lock acquires the mutex for key and returns the matching unlock function.
// Entries are reference counted and removed once the last holder releases.
func (k *KeyMutex) Lock(key string) (unlock func()) {
	k.mu.Lock()
	e, ok := k.entries[key]
	if !ok {
		e = &entry{}
		k.entries[key] = e
	}
	e.refs++
	k.mu.Unlock()

	e.mu.Lock()

	return func() {
		e.mu.Unlock()
		k.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(k.entries, key)
		}
		k.mu.Unlock()
	}
}
