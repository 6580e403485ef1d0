// Package lock provides per-key mutual exclusion for test session writers.
// Operations on one access code must never run concurrently; different codes
// are independent.
package lock

import (
	"context"
	"sync"
)

// KeyedMutex is an in-process locker. Suitable for single-instance
// deployments and tests; multi-instance deployments use RedisMutex.
type KeyedMutex struct {
	mu      sync.Mutex
	entries map[string]*kmEntry
}

type kmEntry struct {
	mu   sync.Mutex
	refs int
}

// NewKeyedMutex creates a new KeyedMutex.
func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{entries: make(map[string]*kmEntry)}
}

// Acquire blocks until the key's mutex is held and returns its release
// function. The context is not observed while blocking; holders are expected
// to release promptly.
func (k *KeyedMutex) Acquire(_ context.Context, key string) (func(), error) {
	k.mu.Lock()
	e, ok := k.entries[key]
	if !ok {
		e = &kmEntry{}
		k.entries[key] = e
	}
	e.refs++
	k.mu.Unlock()

	e.mu.Lock()

	var once sync.Once
	release := func() {
		once.Do(func() {
			e.mu.Unlock()
			k.mu.Lock()
			e.refs--
			if e.refs == 0 {
				delete(k.entries, key)
			}
			k.mu.Unlock()
		})
	}
	return release, nil
}
