package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"go-staffops/internal/app"
	"go-staffops/internal/bootstrap"
	"go-staffops/internal/config"
	"go-staffops/internal/middleware"
	"go-staffops/internal/schedule"
	"go-staffops/internal/shared/apperror"
	"go-staffops/internal/shared/logger"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		panic(err)
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		panic(err)
	}
	defer log.Sync()
	zap.ReplaceGlobals(log)

	apperror.Init(schedule.ValidationRules()...)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Log.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestID(), middleware.ContextLogger(log))

	cleanup, err := app.BuildApp(ctx, r, cfg, log)
	if err != nil {
		log.Fatal("build app failed", zap.Error(err))
	}
	defer cleanup()

	if err := bootstrap.StartHTTPServer(ctx, r, cfg.Server, bootstrap.NewStdoutAuditLogger(log), log); err != nil {
		log.Error("http server stopped", zap.Error(err))
	}
}
