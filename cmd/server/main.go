package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/roomly/roomly-backend/internal/data/repos"
	"github.com/roomly/roomly-backend/internal/db"
	"github.com/roomly/roomly-backend/internal/http/handlers"
	"github.com/roomly/roomly-backend/internal/platform/cache"
	"github.com/roomly/roomly-backend/internal/platform/envutil"
	"github.com/roomly/roomly-backend/internal/platform/logger"
	"github.com/roomly/roomly-backend/internal/recommend"
	"github.com/roomly/roomly-backend/internal/recommend/profile"
	"github.com/roomly/roomly-backend/internal/recommend/similarity"
	"github.com/roomly/roomly-backend/internal/recommend/strategy"
	"github.com/roomly/roomly-backend/internal/server"
	"github.com/roomly/roomly-backend/internal/services"
)

func main() {
	log, err := logger.New(envutil.Str("APP_ENV", "development"))
	if err != nil {
		os.Exit(1)
	}
	defer log.Sync()

	pg, err := db.NewPostgresService(log)
	if err != nil {
		log.Fatal("database connection failed", "error", err)
	}
	if err := pg.AutoMigrateAll(); err != nil {
		log.Fatal("migration failed", "error", err)
	}
	gdb := pg.DB()

	store, err := cache.NewRedisStore(log)
	if err != nil {
		// The engine works without redis, it just recomputes more.
		log.Warn("redis unavailable, using in-process cache", "error", err)
		store = cache.NewMemory()
	}

	roomRepo := repos.NewRoomRepo(gdb, log)
	bookingRepo := repos.NewBookingRepo(gdb, log)
	userRepo := repos.NewUserRepo(gdb, log)
	tokenRepo := repos.NewUserTokenRepo(gdb, log)

	profiles := profile.NewBuilder(log, roomRepo, bookingRepo, store)
	scorer := similarity.NewScorer(log, profiles, store, similarity.WeightsFromEnv(log))

	aggregator := recommend.NewAggregator(log, roomRepo,
		strategy.NewAlternativeRoom(log, roomRepo, bookingRepo, scorer),
		strategy.NewAlternativeTime(log, roomRepo, bookingRepo, scorer),
		strategy.NewSmartScheduling(log, roomRepo, bookingRepo, profiles),
		strategy.NewProactive(log, roomRepo, bookingRepo, profiles),
	)

	authSvc := services.NewAuthService(log, gdb, userRepo, tokenRepo)
	roomSvc := services.NewRoomService(log, gdb, roomRepo, store)
	bookingSvc := services.NewBookingService(log, gdb, bookingRepo, roomRepo, store)
	recSvc := services.NewRecommendationService(log, aggregator)

	router := server.NewRouter(log, authSvc, server.Handlers{
		Auth:           handlers.NewAuthHandler(log, authSvc),
		Room:           handlers.NewRoomHandler(log, roomSvc),
		Booking:        handlers.NewBookingHandler(log, bookingSvc),
		Recommendation: handlers.NewRecommendationHandler(log, recSvc),
	})

	addr := ":" + envutil.Str("PORT", "8080")
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		log.Info("server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("shutdown failed", "error", err)
	}
	log.Info("server stopped")
}
