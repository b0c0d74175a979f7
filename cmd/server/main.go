package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/magacin-dev/magacin/internal/config"
	"github.com/magacin-dev/magacin/internal/db"
	"github.com/magacin-dev/magacin/internal/logger"
	"github.com/magacin-dev/magacin/internal/server"
)

var migrateOnlyFlag = flag.Bool("migrate-only", false, "Run DB migrations and exit")

func main() {
	flag.Parse()
	_ = godotenv.Load()
	cfg := config.Load()
	logger.Initialize(cfg.Env)
	defer func() { _ = logger.Log.Sync() }()

	if *migrateOnlyFlag {
		if _, err := db.ConnectAndMigrate(); err != nil {
			logger.Log.Fatal("migrate-only failed", zap.Error(err))
		}
		logger.Log.Info("migrations completed; exiting as requested")
		return
	}

	dbConn, err := db.ConnectAndMigrate()
	if err != nil {
		logger.Log.Fatal("database connection failed", zap.Error(err))
	}

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: server.New(dbConn)}

	go func() {
		logger.Log.Info("server listening", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal("server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("shutdown signal received")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Error("error during shutdown", zap.Error(err))
	}
	logger.Log.Info("server stopped")
}
