package lock

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/testgest/testgest-backend/internal/config"
)

const (
	// leaseTTL bounds how long a crashed holder can block a session.
	leaseTTL = 30 * time.Second
	// retryInterval paces contending acquirers.
	retryInterval = 50 * time.Millisecond
)

// releaseScript deletes the lease only if it is still owned by the caller.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
  return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisMutex is a Redis-backed locker using a SETNX lease per access code.
// Safe across multiple application instances.
type RedisMutex struct {
	rdb *redis.Client
}

// NewRedisMutex creates a new RedisMutex.
func NewRedisMutex(rdb *redis.Client) *RedisMutex {
	return &RedisMutex{rdb: rdb}
}

// Acquire polls SETNX until the lease is obtained or the context ends.
func (m *RedisMutex) Acquire(ctx context.Context, key string) (func(), error) {
	leaseKey := config.CacheKey.SessionLockKey(key)
	token := uuid.NewString()

	for {
		ok, err := m.rdb.SetNX(ctx, leaseKey, token, leaseTTL).Result()
		if err != nil {
			return nil, err
		}
		if ok {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(retryInterval):
		}
	}

	release := func() {
		// Release must not inherit a canceled request context.
		_ = releaseScript.Run(context.Background(), m.rdb, []string{leaseKey}, token).Err()
	}
	return release, nil
}
