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

	"gira/internal/auth"
	"gira/internal/config"
	"gira/internal/database"
	"gira/internal/handlers"
	"gira/internal/logging"
	"gira/internal/server"
	"gira/internal/tracker"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log := logging.New(cfg.LogLevel)

	db, err := database.Open(cfg, log)
	if err != nil {
		log.WithError(err).Fatal("database init failed")
	}
	store := database.NewStore(db)

	ctx := context.Background()
	if err := database.SeedDefaultAdmin(ctx, store, cfg.AdminUsername, cfg.AdminEmail, cfg.AdminPassword, log); err != nil {
		log.WithError(err).Fatal("seed admin failed")
	}

	tr := tracker.NewService(store, log)
	as := auth.NewService(store, log)
	tokens := auth.NewTokenManager(cfg.TokenSecret, time.Duration(cfg.TokenTTLHours)*time.Hour)

	gin.SetMode(gin.ReleaseMode)
	r := server.NewRouter(cfg, handlers.New(tr, as, tokens, log), as, tokens, log)

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.ServerPort),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.WithField("addr", httpServer.Addr).Info("starting server")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server stopped unexpectedly")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("failed to shutdown server")
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	log.Info("server stopped")
}
