package lock

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"coldchain/pkg/platform/sentinel"
)

const (
	lockKeyPrefix    = "coldchain:lock:"
	defaultLockLease = 30 * time.Second
	defaultLockRetry = 25 * time.Millisecond
)

// releaseScript deletes the key only if this holder still owns it, so an
// expired lease never releases someone else's lock.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLocker is a Locker shared by every engine process using one Redis.
// The lease bounds how long a crashed holder can block a key.
type RedisLocker struct {
	client redis.UniversalClient
	lease  time.Duration
	retry  time.Duration
}

// RedisOption configures a RedisLocker.
type RedisOption func(*RedisLocker)

func WithLease(d time.Duration) RedisOption {
	return func(l *RedisLocker) {
		if d > 0 {
			l.lease = d
		}
	}
}

func WithRetryInterval(d time.Duration) RedisOption {
	return func(l *RedisLocker) {
		if d > 0 {
			l.retry = d
		}
	}
}

func NewRedisLocker(client redis.UniversalClient, opts ...RedisOption) *RedisLocker {
	l := &RedisLocker{
		client: client,
		lease:  defaultLockLease,
		retry:  defaultLockRetry,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(l)
		}
	}
	return l
}

func (l *RedisLocker) Lock(ctx context.Context, key string) (Unlock, error) {
	redisKey := lockKeyPrefix + key
	token := uuid.NewString()

	ticker := time.NewTicker(l.retry)
	defer ticker.Stop()
	for {
		ok, err := l.client.SetNX(ctx, redisKey, token, l.lease).Result()
		if err != nil {
			if ctx.Err() != nil {
				return nil, waitAborted(ctx, key)
			}
			return nil, fmt.Errorf("acquire lock %s: %w: %w", key, sentinel.ErrUnavailable, err)
		}
		if ok {
			break
		}
		select {
		case <-ctx.Done():
			return nil, waitAborted(ctx, key)
		case <-ticker.C:
		}
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			// Release with a fresh context: the caller's may already be done.
			releaseCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = releaseScript.Run(releaseCtx, l.client, []string{redisKey}, token).Err()
		})
	}, nil
}
