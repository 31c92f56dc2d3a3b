// Package keymutex provides per-key mutual exclusion. The engine uses it to
// serialize mutations per player ID, per challenge target, and per battle ID.
package keymutex

import "sync"

// KeyMutex hands out one mutex per key. Mutexes are never released; the key
// space here (player and battle IDs) is small enough that this is fine.
type KeyMutex struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// New creates an empty KeyMutex
func New() *KeyMutex {
	return &KeyMutex{locks: make(map[string]*sync.Mutex)}
}

// Lock acquires the mutex for key, creating it on first use
func (k *KeyMutex) Lock(key string) {
	k.get(key).Lock()
}

// Unlock releases the mutex for key
func (k *KeyMutex) Unlock(key string) {
	k.get(key).Unlock()
}

// LockOrdered acquires both keys in lexical order so two callers locking the
// same pair in opposite argument order cannot deadlock. Locking the same key
// twice would self-deadlock, so equal keys acquire once.
func (k *KeyMutex) LockOrdered(a, b string) {
	if a == b {
		k.Lock(a)
		return
	}
	if a > b {
		a, b = b, a
	}
	k.Lock(a)
	k.Lock(b)
}

// UnlockOrdered releases both keys acquired by LockOrdered
func (k *KeyMutex) UnlockOrdered(a, b string) {
	if a == b {
		k.Unlock(a)
		return
	}
	k.Unlock(a)
	k.Unlock(b)
}

func (k *KeyMutex) get(key string) *sync.Mutex {
	k.mu.Lock()
	defer k.mu.Unlock()

	m, ok := k.locks[key]
	if !ok {
		m = &sync.Mutex{}
		k.locks[key] = m
	}
	return m
}
