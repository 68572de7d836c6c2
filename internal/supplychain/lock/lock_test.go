package lock

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "coldchain/pkg/domain-errors"
)

func TestKeyedMutexSerializesSameKey(t *testing.T) {
	m := NewKeyedMutex()
	ctx := context.Background()

	var inside, maxInside atomic.Int32
	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock, err := m.Lock(ctx, "contract:a")
			if !assert.NoError(t, err) {
				return
			}
			n := inside.Add(1)
			for {
				cur := maxInside.Load()
				if n <= cur || maxInside.CompareAndSwap(cur, n) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			inside.Add(-1)
			unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), maxInside.Load())
	assert.Equal(t, 0, m.Len(), "slots are dropped once idle")
}

func TestKeyedMutexDifferentKeysDoNotBlock(t *testing.T) {
	m := NewKeyedMutex()
	ctx := context.Background()

	unlockA, err := m.Lock(ctx, "contract:a")
	require.NoError(t, err)
	defer unlockA()

	done := make(chan struct{})
	go func() {
		unlockB, err := m.Lock(ctx, "contract:b")
		if err == nil {
			unlockB()
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("lock on a different key blocked")
	}
}

func TestKeyedMutexHonoursContext(t *testing.T) {
	m := NewKeyedMutex()
	unlock, err := m.Lock(context.Background(), "contract:a")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = m.Lock(ctx, "contract:a")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeTimeout))

	unlock()
	unlock() // second call is a no-op
	assert.Equal(t, 0, m.Len())
}

func TestLockAllReleasesOnFailure(t *testing.T) {
	m := NewKeyedMutex()
	blocker, err := m.Lock(context.Background(), "participant:b")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = LockAll(ctx, m, "contract:x", "participant:a", "participant:b")
	require.Error(t, err)

	// contract:x and participant:a were released.
	unlock, err := LockAll(context.Background(), m, "contract:x", "participant:a")
	require.NoError(t, err)
	unlock()
	blocker()
	assert.Equal(t, 0, m.Len())
}

func TestLockAllSkipsDuplicates(t *testing.T) {
	m := NewKeyedMutex()
	unlock, err := LockAll(context.Background(), m, "contract:x", "participant:a", "participant:a")
	require.NoError(t, err)
	assert.Equal(t, 2, m.Len())
	unlock()
	assert.Equal(t, 0, m.Len())
}
