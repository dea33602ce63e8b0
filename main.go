package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"socialnet/config"
	"socialnet/database"
	"socialnet/middleware"
	"socialnet/router"
	"socialnet/services"
	"socialnet/utils"
	"socialnet/websocket"
)

func main() {
	cfg := config.Load()
	cfg.ConfigureLogging()
	gin.SetMode(cfg.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := database.Open(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to connect to database")
	}
	defer store.Close()

	if err := store.CreateTables(ctx); err != nil {
		logrus.WithError(err).Fatal("Failed to create tables")
	}

	prometheus.MustRegister(middleware.Collectors()...)
	prometheus.MustRegister(services.Collectors()...)

	hub := websocket.NewHub()
	go hub.Run()
	defer hub.Stop()

	authLimiter := middleware.NewIPRateLimiter(cfg.AuthRateLimit, cfg.AuthRateBurst)
	go authLimiter.Cleanup(ctx, time.Minute, 3*time.Minute)

	tokens := utils.NewTokenManager(cfg.JWTSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	r := router.New(cfg, router.Deps{
		Users:       services.NewUserService(store),
		Friends:     services.NewFriendService(store, hub, cfg.FriendRequestLimit, cfg.FriendRequestWindow),
		Tokens:      tokens,
		Hub:         hub,
		AuthLimiter: authLimiter,
	})

	srv := &http.Server{
		Addr:              cfg.ServerAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logrus.WithField("addr", cfg.ServerAddr).Info("Server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.WithError(err).Fatal("Failed to start server")
		}
	}()

	<-ctx.Done()
	logrus.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logrus.WithError(err).Error("Server shutdown failed")
	}
}
