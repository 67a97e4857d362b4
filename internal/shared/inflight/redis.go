package inflight

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const keyPrefix = "inflight:"

// Deletes the lock only while it still carries our token, so a holder whose
// lock expired cannot release somebody else's.
const releaseScript = `if redis.call("GET", KEYS[1]) == ARGV[1] then return redis.call("DEL", KEYS[1]) end return 0`

// RedisGuard scopes tokens across every replica sharing the Redis instance.
// The TTL bounds how long a crashed holder can block the key.
type RedisGuard struct {
	rdb    *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

func NewRedisGuard(rdb *redis.Client, ttl time.Duration, logger ...*zap.Logger) *RedisGuard {
	l := zap.L().Named("inflight.redis")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("inflight.redis")
	}
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &RedisGuard{rdb: rdb, ttl: ttl, logger: l}
}

func LockKey(key string) string {
	return keyPrefix + key
}

func (g *RedisGuard) Acquire(ctx context.Context, key string) (ReleaseFunc, error) {
	lockKey := LockKey(key)
	token := uuid.NewString()

	ok, err := g.rdb.SetNX(ctx, lockKey, token, g.ttl).Result()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrBusy
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			// the caller's ctx may already be cancelled
			releaseCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			if err := g.rdb.Eval(releaseCtx, releaseScript, []string{lockKey}, token).Err(); err != nil {
				g.logger.Warn("release inflight token failed",
					zap.String("key", lockKey),
					zap.Error(err),
				)
			}
		})
	}, nil
}
