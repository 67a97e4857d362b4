package app

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"go-staffops/internal/attendance"
	"go-staffops/internal/backend"
	"go-staffops/internal/config"
	"go-staffops/internal/messaging/kafka"
	"go-staffops/internal/middleware"
	"go-staffops/internal/rbac"
	"go-staffops/internal/schedule"
	"go-staffops/internal/shared/inflight"
)

const (
	writeRateLimit = rate.Limit(5)
	writeRateBurst = 10
	idempotencyTTL = 24 * time.Hour
	apiBasePath    = "/api/v1"
)

type modules struct {
	schedule schedule.Service
}

func newStoreFactory(cfg *config.Config, in *infra, logger *zap.Logger) (schedule.StoreFactory, error) {
	if cfg.Store.Driver == config.StoreDriverHTTP {
		client, err := backend.NewClient(cfg.Store.BackendURL, cfg.Store.BackendAuth, cfg.Store.Timeout, logger)
		if err != nil {
			return nil, err
		}
		return backend.NewStoreFactory(client, backend.StoreConfig{PageSize: cfg.Store.FetchLimit}, logger), nil
	}

	var outbox kafka.OutboxRepository
	if cfg.Kafka.Broker != "" {
		outbox = kafka.NewOutboxRepository(in.sqlDB)
	}
	return attendance.NewStoreFactory(
		in.sqlDB,
		attendance.NewRepository(in.gormDB),
		outbox,
		attendance.NewTeamsCache(in.rdb, cfg.Store.TeamsTTL, logger),
		attendance.StoreConfig{FetchLimit: cfg.Store.FetchLimit},
		logger,
	), nil
}

func newGuard(cfg *config.Config, in *infra, logger *zap.Logger) inflight.Guard {
	if in.rdb != nil {
		return inflight.NewRedisGuard(in.rdb, cfg.Schedule.CommitLockTTL, logger)
	}
	return inflight.NewMemoryGuard()
}

func registerModules(router *gin.Engine, cfg *config.Config, in *infra, logger *zap.Logger) (*modules, error) {
	loc, err := cfg.Schedule.Location()
	if err != nil {
		return nil, err
	}

	// --- RBAC Core ---
	rbacService, err := rbac.NewDefaultService(logger)
	if err != nil {
		return nil, err
	}

	// --- Services ---
	stores, err := newStoreFactory(cfg, in, logger)
	if err != nil {
		return nil, err
	}
	scheduleService := schedule.NewService(stores, schedule.ServiceConfig{
		SessionTTL:     cfg.Schedule.SessionTTL,
		EscalationNote: cfg.Schedule.EscalationNote,
		Guard:          newGuard(cfg, in, logger),
	}, logger)

	// --- Handlers ---
	scheduleHandler := schedule.NewHandler(scheduleService, loc)
	rbacHandler := rbac.NewHandler(rbacService)

	// --- Routes Registration ---
	auth := middleware.AuthMiddleware(cfg.Auth.JWTSecret)
	mw := schedule.Middlewares{
		Auth:       auth,
		WriteLimit: middleware.RateLimitByUser(writeRateLimit, writeRateBurst),
	}
	if in.rdb != nil {
		mw.Idempotency = middleware.Idempotency(in.rdb, idempotencyTTL)
	}

	api := router.Group(apiBasePath)
	{
		schedule.RegisterRoutes(api, scheduleHandler, rbacService, mw)
		rbac.RegisterRoutes(api, rbacHandler, auth)
	}

	return &modules{schedule: scheduleService}, nil
}
