package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"synonym_arena/internal/app"
	"synonym_arena/internal/config"
	"synonym_arena/internal/logger"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg := config.Load()
	log := logger.Init(cfg.LogLevel, cfg.LogJSON, "instance", cfg.InstanceID)

	if cfg.RequireAuth && cfg.JWTSecret == "" {
		logger.Fatal("REQUIRE_AUTH is set but JWT_SECRET is empty")
	}
	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	a, err := app.New(cfg, log)
	if err != nil {
		logger.Fatal("failed to build app", "error", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := a.RunRelay(ctx); err != nil {
			log.Error("relay stopped", "error", err)
		}
	}()

	srv := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           a.Engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("server started", "port", cfg.AppPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("listen failed", "error", err)
		}
	}()

	<-ctx.Done()
	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", "error", err)
	}
	a.Close(shutdownCtx)

	log.Info("server exited")
}
