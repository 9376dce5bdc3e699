package service

import "sync"

// keyedMutex serializes work per key. Ingestions for the same patient
// and assignments for the same device must not interleave their
// read-modify-write steps; different keys proceed in parallel.
//
// Entries are never evicted; the key space (patients, devices) is
// small and bounded by the deployment.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[string]*sync.Mutex)}
}

// Lock acquires the mutex for the key and returns its unlock func.
func (k *keyedMutex) Lock(key string) func() {
	k.mu.Lock()
	lock, ok := k.locks[key]
	if !ok {
		lock = &sync.Mutex{}
		k.locks[key] = lock
	}
	k.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}
