package attendance

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"go-staffops/internal/schedule"
)

const TeamsKeyPrefix = "schedule:teams:"

func TeamsKey(companyID string) string {
	return TeamsKeyPrefix + companyID
}

// TeamsCache holds each company's team graph in Redis. Team CRUD lives in
// another system, so entries are only ever dropped by TTL or Invalidate.
// A nil Redis client disables caching; loads are still coalesced.
type TeamsCache struct {
	rdb    *redis.Client
	ttl    time.Duration
	sf     singleflight.Group
	logger *zap.Logger
}

func NewTeamsCache(rdb *redis.Client, ttl time.Duration, logger ...*zap.Logger) *TeamsCache {
	l := zap.L().Named("attendance.cache")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("attendance.cache")
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &TeamsCache{rdb: rdb, ttl: ttl, logger: l}
}

func (c *TeamsCache) Get(
	ctx context.Context,
	companyID string,
	load func(ctx context.Context) ([]schedule.Team, error),
) ([]schedule.Team, error) {
	cacheKey := TeamsKey(companyID)

	if c.rdb != nil {
		if cached, err := c.rdb.Get(ctx, cacheKey).Result(); err == nil {
			var teams []schedule.Team
			if json.Unmarshal([]byte(cached), &teams) == nil {
				return teams, nil
			}
		}
	}

	v, err, _ := c.sf.Do(cacheKey, func() (any, error) {
		teams, err := load(ctx)
		if err != nil {
			return nil, err
		}

		if c.rdb != nil {
			if jsonData, err := json.Marshal(teams); err == nil {
				if err := c.rdb.Set(ctx, cacheKey, jsonData, c.ttl).Err(); err != nil {
					c.logger.Warn("cache teams failed", zap.String("key", cacheKey), zap.Error(err))
				}
			}
		}
		return teams, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]schedule.Team), nil
}

func (c *TeamsCache) Invalidate(ctx context.Context, companyID string) {
	if c.rdb == nil {
		return
	}
	if err := c.rdb.Del(ctx, TeamsKey(companyID)).Err(); err != nil {
		c.logger.Warn("invalidate teams cache failed", zap.String("company_id", companyID), zap.Error(err))
	}
}
