package sync

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShardedMutex_SameKeySerializes(t *testing.T) {
	m := NewShardedMutex()
	counter := 0
	var wg sync.WaitGroup
	for range 200 {
		wg.Go(func() {
			_ = m.Do("GABCACCOUNT", func() error {
				counter++
				return nil
			})
		})
	}
	wg.Wait()
	assert.Equal(t, 200, counter)
}

func TestShardedMutex_DifferentKeysDoNotDeadlock(t *testing.T) {
	m := NewShardedMutex()
	var wg sync.WaitGroup
	for i := range 100 {
		wg.Go(func() {
			key := string(rune('A' + i%26))
			m.Lock(key)
			defer m.Unlock(key)
		})
	}
	wg.Wait()
}

func TestShardedMutex_DoReturnsError(t *testing.T) {
	m := NewShardedMutex()
	want := errors.New("stale")
	assert.ErrorIs(t, m.Do("k", func() error { return want }), want)
	// lock released after error
	m.Lock("k")
	m.Unlock("k")
}

func TestShardFor(t *testing.T) {
	assert.Equal(t, 0, shardFor(""))
	assert.Equal(t, shardFor("GABC"), shardFor("GABC"))

	seen := map[int]bool{}
	for i := range 500 {
		seen[shardFor("account-"+string(rune('a'+i%26))+string(rune('a'+i/26)))] = true
	}
	assert.Greater(t, len(seen), shardCount/2)
}
