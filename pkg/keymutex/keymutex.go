// Package keymutex provides mutual exclusion scoped to a single key, so that
// holders of different keys never wait for each other.
package keymutex

import (
	"sync"

	cmap "github.com/orcaman/concurrent-map/v2"
)

type entry struct {
	mu sync.Mutex
	// refs counts holders and waiters, it's only changed under the shard lock
	// of the map.
	refs int
}

// KeyMutex is a set of mutexes indexed by key. The zero value is not usable,
// use New.
type KeyMutex struct {
	locks cmap.ConcurrentMap[string, *entry]
}

// New ...
func New() *KeyMutex {
	return &KeyMutex{cmap.New[*entry]()}
}

// Lock blocks until the mutex for key is available.
func (m *KeyMutex) Lock(key string) {
	e := m.locks.Upsert(key, nil, func(exist bool, inMap, _ *entry) *entry {
		if exist && inMap != nil {
			inMap.refs++
			return inMap
		}
		return &entry{refs: 1}
	})
	e.mu.Lock()
}

// Unlock releases the mutex for key. Entries are dropped once nobody holds or
// waits for them.
func (m *KeyMutex) Unlock(key string) {
	e, ok := m.locks.Get(key)
	if !ok {
		return
	}
	e.mu.Unlock()
	m.locks.RemoveCb(key, func(_ string, v *entry, exists bool) bool {
		if !exists {
			return false
		}
		v.refs--
		return v.refs <= 0
	})
}

// Do runs fn while holding the mutex for key.
func (m *KeyMutex) Do(key string, fn func() error) error {
	m.Lock(key)
	defer m.Unlock(key)
	return fn()
}

// Len returns the number of keys currently locked or waited for.
func (m *KeyMutex) Len() int {
	return m.locks.Count()
}
