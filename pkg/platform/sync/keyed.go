package sync

import (
	"hash/fnv"
	"sync"
)

const defaultShards = 32

// KeyedMutex serializes writers per resource key while letting unrelated keys proceed.
// Keys are hashed onto a fixed set of shards, so two distinct keys may occasionally
// share a lock; callers must not hold more than one key at a time.
type KeyedMutex struct {
	shards []sync.Mutex
}

// NewKeyedMutex creates a KeyedMutex with n shards. Non-positive n uses 32.
func NewKeyedMutex(n int) *KeyedMutex {
	if n <= 0 {
		n = defaultShards
	}
	return &KeyedMutex{shards: make([]sync.Mutex, n)}
}

// Lock acquires the lock for key. Empty keys share shard 0.
func (m *KeyedMutex) Lock(key string) {
	m.shards[m.shardFor(key)].Lock()
}

// Unlock releases the lock for key.
func (m *KeyedMutex) Unlock(key string) {
	m.shards[m.shardFor(key)].Unlock()
}

// WithLock runs fn while holding the lock for key and returns fn's error.
func (m *KeyedMutex) WithLock(key string, fn func() error) error {
	m.Lock(key)
	defer m.Unlock(key)
	return fn()
}

func (m *KeyedMutex) shardFor(key string) int {
	if key == "" {
		return 0
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return int(h.Sum32() % uint32(len(m.shards)))
}
