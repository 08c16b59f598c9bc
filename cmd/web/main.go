package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/Tomlord1122/todo-web/internal/config"
	"github.com/Tomlord1122/todo-web/internal/database"
	"github.com/Tomlord1122/todo-web/internal/logger"
	"github.com/Tomlord1122/todo-web/internal/repository"
	"github.com/Tomlord1122/todo-web/internal/server"
	"github.com/Tomlord1122/todo-web/internal/service"
)

func gracefulShutdown(apiServer *http.Server, dbService database.Service, timeout time.Duration, log *zap.Logger, done chan bool) {
	// Create context that listens for the interrupt signal from the OS.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	log.Info("shutting down gracefully, press Ctrl+C again to force")
	stop() // Allow Ctrl+C to force shutdown

	ctxTimeout, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := apiServer.Shutdown(ctxTimeout); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}

	if err := dbService.Close(); err != nil {
		log.Error("error closing database connection pool", zap.Error(err))
	}

	log.Info("server exiting")
	done <- true
}

func run(cfg *config.Config, log *zap.Logger) error {
	dbService, err := database.New(cfg.Database, log)
	if err != nil {
		return err
	}

	if cfg.Database.AutoMigrate {
		log.Info("running database auto-migration")
		if err := database.Migrate(dbService.GetDB()); err != nil {
			_ = dbService.Close()
			return err
		}
	}

	taskRepo := repository.NewGormTaskRepository(dbService.GetDB())
	taskService := service.NewTaskService(taskRepo, service.WithLogger(log.Named("tasks")))

	httpServer, err := server.NewServer(cfg, taskService, dbService, log)
	if err != nil {
		_ = dbService.Close()
		return err
	}

	done := make(chan bool, 1)
	go gracefulShutdown(httpServer, dbService, cfg.HTTP.ShutdownTimeout, log, done)

	log.Info("starting server", zap.String("addr", httpServer.Addr))
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	<-done
	log.Info("graceful shutdown complete")
	return nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		zap.NewExample().Fatal("failed to load config", zap.Error(err))
	}

	log := logger.New(logger.Config{Level: cfg.Logger.Level, Encoding: cfg.Logger.Encoding})
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Error("server stopped", zap.Error(err))
		_ = log.Sync()
		os.Exit(1)
	}
}
