package app

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"go-staffops/internal/config"
	"go-staffops/internal/shared/connection"
)

const sweepInterval = time.Minute

// infra holds the connections a process opened. Any of them may be nil
// when the configuration does not call for it.
type infra struct {
	gormDB *gorm.DB
	sqlDB  *sql.DB
	rdb    *redis.Client
}

func (i *infra) Close() {
	if i.rdb != nil {
		_ = i.rdb.Close()
	}
	if i.sqlDB != nil {
		_ = i.sqlDB.Close()
	}
}

func connect(cfg *config.Config, needDB bool, logger *zap.Logger) (*infra, error) {
	in := &infra{}

	if needDB {
		gormDB, err := connection.ConnectGORMWithRetry(cfg.Database)
		if err != nil {
			return nil, err
		}
		sqlDB, err := gormDB.DB()
		if err != nil {
			return nil, err
		}
		in.gormDB, in.sqlDB = gormDB, sqlDB
	}

	if cfg.Redis.Addr != "" {
		rdb, err := connection.ConnectRedisWithRetry(cfg.Redis, 5)
		if err != nil {
			in.Close()
			return nil, err
		}
		in.rdb = rdb
	} else {
		logger.Warn("redis not configured: de-duplication is per process and caching is off")
	}
	return in, nil
}

// BuildApp connects the API's dependencies, registers its routes on router
// and starts its background loops, which run until ctx ends. The returned
// func releases the connections.
func BuildApp(ctx context.Context, router *gin.Engine, cfg *config.Config, logger *zap.Logger) (func(), error) {
	if logger == nil {
		logger = zap.L()
	}
	log := logger.Named("app.api")

	in, err := connect(cfg, cfg.Store.Driver == config.StoreDriverDatabase, log)
	if err != nil {
		return nil, err
	}

	mods, err := registerModules(router, cfg, in, logger)
	if err != nil {
		in.Close()
		return nil, err
	}

	go runSessionJanitor(ctx, mods.schedule, sweepInterval, log)

	if cfg.Kafka.Broker != "" {
		stop, err := startRefreshConsumer(ctx, cfg.Kafka, mods.schedule, logger)
		if err != nil {
			in.Close()
			return nil, err
		}
		return func() { stop(); in.Close() }, nil
	}
	log.Warn("kafka not configured: sessions on other replicas are not refreshed after commits")
	return in.Close, nil
}

type sweeper interface {
	Sweep(now time.Time) int
}

func runSessionJanitor(ctx context.Context, s sweeper, every time.Duration, log *zap.Logger) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if n := s.Sweep(now); n > 0 {
				log.Debug("idle schedule sessions evicted", zap.Int("count", n))
			}
		}
	}
}

var errKafkaRequired = errors.New("kafka.broker is required")
