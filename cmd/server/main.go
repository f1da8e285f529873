package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"intranet-cesfam/backend/config"
	"intranet-cesfam/backend/internal/api/handler"
	"intranet-cesfam/backend/internal/api/router"
	"intranet-cesfam/backend/internal/repository"
	"intranet-cesfam/backend/internal/service"
	"intranet-cesfam/backend/internal/validation"
	"intranet-cesfam/backend/pkg/database"
	"intranet-cesfam/backend/pkg/jwt"
	applogger "intranet-cesfam/backend/pkg/logger"
	"intranet-cesfam/backend/pkg/redis"
	"intranet-cesfam/backend/pkg/storage"
)

func main() {
	// 1. configuration; .env is optional
	_ = godotenv.Load()
	cfg, err := config.Load(os.Getenv("INTRANET_CONFIG"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	// 2. logger
	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("starting intranet backend",
		zap.Int("port", cfg.Server.Port),
		zap.String("log_level", cfg.Log.Level),
		zap.String("storage", cfg.Storage.Driver),
	)

	// 3. database and migrations
	db, err := database.NewDB(&cfg.Database, cfg.Log.Level, logger)
	if err != nil {
		logger.Fatal("database connection failed", zap.Error(err))
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("get sql.DB failed", zap.Error(err))
	}
	if err := database.RunMigrations(sqlDB, logger); err != nil {
		logger.Fatal("database migration failed", zap.Error(err))
	}

	// 4. redis is optional: without it logout revocation and login rate limiting are off
	rdb, err := redis.NewClient(&cfg.Redis, logger)
	if err != nil {
		logger.Warn("redis unavailable, token blacklist and rate limit disabled", zap.Error(err))
		rdb = nil
	}

	// 5. file storage
	initCtx, cancelInit := context.WithTimeout(context.Background(), 15*time.Second)
	store, err := storage.New(initCtx, &cfg.Storage, logger)
	cancelInit()
	if err != nil {
		logger.Fatal("storage init failed", zap.Error(err))
	}

	// 6. wiring: repository -> service -> handler
	validation.RegisterBindings()
	jwtMgr := jwt.NewManager(&cfg.Auth)
	repo := repository.NewRepository(db)

	var blacklist service.TokenBlacklist
	if rdb != nil {
		blacklist = rdb
	}
	svc := service.NewService(cfg, repo, jwtMgr, store, blacklist, logger)
	h := handler.NewHandler(cfg, svc)

	engine := router.Setup(cfg, h, jwtMgr, rdb, repo.User, logger)

	// 7. HTTP server with graceful shutdown
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("http server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("http server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info("shutting down", zap.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server shutdown failed", zap.Error(err))
	}

	if err := sqlDB.Close(); err != nil {
		logger.Warn("close database failed", zap.Error(err))
	}
	if rdb != nil {
		rdb.Close()
	}

	logger.Info("server stopped")
}
