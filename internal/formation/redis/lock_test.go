package redis

import (
	"context"
	"fmt"
	"log"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestRedis creates a Redis client backed by miniredis, an in-memory
// mock that doesn't require a real Redis server.
func setupTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to create miniredis: %v", err)
	}

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		mr.Close()
		t.Fatalf("Failed to connect to miniredis: %v", err)
	}

	return client, mr
}

func cleanupTestRedis(client *redis.Client, mr *miniredis.Miniredis) {
	if client != nil {
		client.Close()
	}
	if mr != nil {
		mr.Close()
	}
}

func TestLockBoard_AtomicOperation(t *testing.T) {
	client, mr := setupTestRedis(t)
	defer cleanupTestRedis(client, mr)

	l := &Lock{Client: client, Logger: log.Default()}

	// Lock the board successfully
	locked, err := l.LockBoard("20240301", 1, "save-1")
	require.NoError(t, err)
	assert.True(t, locked, "Should take an uncontended lock")

	// A second save on the same board is refused
	locked, err = l.LockBoard("20240301", 1, "save-2")
	require.NoError(t, err)
	assert.False(t, locked, "Should not take an already held lock")

	// A different quarter is a different lock
	locked, err = l.LockBoard("20240301", 2, "save-3")
	require.NoError(t, err)
	assert.True(t, locked, "Other quarters lock independently")

	// Unlock, then the board is free again
	require.NoError(t, l.UnlockBoard("20240301", 1, "save-1"))
	locked, err = l.LockBoard("20240301", 1, "save-4")
	require.NoError(t, err)
	assert.True(t, locked, "Should lock after unlock")
}

func TestUnlockBoard_OnlyReleasesOwnLock(t *testing.T) {
	client, mr := setupTestRedis(t)
	defer cleanupTestRedis(client, mr)

	l := &Lock{Client: client, Logger: log.Default()}

	locked, err := l.LockBoard("20240301", 1, "save-1")
	require.NoError(t, err)
	assert.True(t, locked)

	// A different owner's unlock is a no-op
	require.NoError(t, l.UnlockBoard("20240301", 1, "save-2"))

	held, err := l.IsLocked("20240301", 1)
	require.NoError(t, err)
	assert.True(t, held, "Lock should survive a foreign unlock")

	// Unlock with the right owner releases it
	require.NoError(t, l.UnlockBoard("20240301", 1, "save-1"))
	held, err = l.IsLocked("20240301", 1)
	require.NoError(t, err)
	assert.False(t, held)
}

func TestUnlockBoard_ExpiredLockIsNoError(t *testing.T) {
	client, mr := setupTestRedis(t)
	defer cleanupTestRedis(client, mr)

	l := &Lock{Client: client, Logger: log.Default()}

	// No lock exists; unlock must not fail.
	assert.NoError(t, l.UnlockBoard("20240301", 1, "save-1"))
}

func TestLockBoard_TTLFailsafe(t *testing.T) {
	client, mr := setupTestRedis(t)
	defer cleanupTestRedis(client, mr)

	l := &Lock{Client: client, Logger: log.Default()}

	locked, err := l.LockBoard("20240301", 1, "save-1")
	require.NoError(t, err)
	assert.True(t, locked)

	// A crashed save never unlocks; the TTL frees the board.
	mr.FastForward(11 * time.Second)

	locked, err = l.LockBoard("20240301", 1, "save-2")
	require.NoError(t, err)
	assert.True(t, locked, "Lock should expire after the TTL")
}

func TestLockBoard_ConcurrentSavesOneWinner(t *testing.T) {
	client, mr := setupTestRedis(t)
	defer cleanupTestRedis(client, mr)

	l := &Lock{Client: client, Logger: log.Default()}

	const numGoroutines = 20
	var wg sync.WaitGroup
	var mu sync.Mutex
	winners := 0

	for i := 0; i < numGoroutines; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			locked, err := l.LockBoard("20240301", 1, fmt.Sprintf("save-%d", n))
			if err == nil && locked {
				mu.Lock()
				winners++
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()

	// SetNX admits exactly one of the simultaneous attempts.
	assert.Equal(t, 1, winners)
}
