package sync

import (
	"hash/fnv"
	"sync"
)

const shardCount = 64

// ShardedMutex serialises work per key without a lock per key. Keys that
// hash to the same shard also serialise, which is harmless for the short
// critical sections it guards.
type ShardedMutex struct {
	shards [shardCount]sync.Mutex
}

func NewShardedMutex() *ShardedMutex {
	return &ShardedMutex{}
}

func (m *ShardedMutex) Lock(key string) {
	m.shards[shardFor(key)].Lock()
}

func (m *ShardedMutex) Unlock(key string) {
	m.shards[shardFor(key)].Unlock()
}

// Do runs fn while holding key's shard.
func (m *ShardedMutex) Do(key string, fn func() error) error {
	m.Lock(key)
	defer m.Unlock(key)
	return fn()
}

func shardFor(key string) int {
	if key == "" {
		return 0
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return int(h.Sum32() % shardCount)
}
