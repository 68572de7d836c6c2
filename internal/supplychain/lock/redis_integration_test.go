//go:build integration

package lock_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"coldchain/internal/supplychain/lock"
	dErrors "coldchain/pkg/domain-errors"
	"coldchain/pkg/testutil/containers"
)

type RedisLockerSuite struct {
	suite.Suite
	redis  *containers.RedisContainer
	locker *lock.RedisLocker
}

func TestRedisLockerSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisLockerSuite))
}

func (s *RedisLockerSuite) SetupSuite() {
	s.redis = containers.GetManager().GetRedis(s.T())
	s.locker = lock.NewRedisLocker(s.redis.Client, lock.WithLease(2*time.Second), lock.WithRetryInterval(5*time.Millisecond))
}

func (s *RedisLockerSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

func (s *RedisLockerSuite) TestMutualExclusion() {
	ctx := context.Background()
	var inside, overlaps, done atomic.Int32
	var wg sync.WaitGroup
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock, err := s.locker.Lock(ctx, "contract:shared")
			if !s.NoError(err) {
				return
			}
			if inside.Add(1) > 1 {
				overlaps.Add(1)
			}
			time.Sleep(time.Millisecond)
			inside.Add(-1)
			done.Add(1)
			unlock()
		}()
	}
	wg.Wait()
	s.Equal(int32(20), done.Load())
	s.Zero(overlaps.Load())
}

func (s *RedisLockerSuite) TestTwoLockersShareKeys() {
	other := lock.NewRedisLocker(s.redis.Client)
	unlock, err := s.locker.Lock(context.Background(), "contract:a")
	s.Require().NoError(err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = other.Lock(ctx, "contract:a")
	s.True(dErrors.HasCode(err, dErrors.CodeTimeout), "err=%v", err)

	unlock()
	unlock2, err := other.Lock(context.Background(), "contract:a")
	s.Require().NoError(err)
	unlock2()
}

func (s *RedisLockerSuite) TestExpiredLeaseIsNotReleasedByOldHolder() {
	short := lock.NewRedisLocker(s.redis.Client, lock.WithLease(50*time.Millisecond))
	stale, err := short.Lock(context.Background(), "contract:lease")
	s.Require().NoError(err)
	time.Sleep(100 * time.Millisecond)

	fresh, err := s.locker.Lock(context.Background(), "contract:lease")
	s.Require().NoError(err)
	stale()

	var acquired atomic.Bool
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if u, err := s.locker.Lock(ctx, "contract:lease"); err == nil {
		acquired.Store(true)
		u()
	}
	s.False(acquired.Load(), "stale holder must not release the new lease")
	fresh()
}
