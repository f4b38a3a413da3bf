package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"go-task-api/backend/internal/config"
	"go-task-api/backend/internal/database"
	"go-task-api/backend/internal/logger"
	"go-task-api/backend/internal/routes"
)

func main() {
	// .env が無い場合は環境変数のみを使う
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logger.New("info", os.Stderr).WithError(err).Fatal("Failed to load config")
	}

	log := logger.New(cfg.LogLevel, os.Stdout).WithField("service", "tasks")
	gin.SetMode(cfg.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.InitDB(ctx, cfg.DB, log)
	if err != nil {
		log.WithError(err).Fatal("Failed to initialize database")
	}
	defer db.Close()

	r, err := routes.SetupRouter(db, cfg, log)
	if err != nil {
		log.WithError(err).Fatal("Failed to set up router")
	}

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		log.Infof("Server listening on port %s...", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("Server stopped unexpectedly")
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Server shutdown failed")
	}
}
