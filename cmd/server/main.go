package main // Entry point package

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"    // loads .env files in local development
	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/tripgo/seat-reservation/internal/config"
	"github.com/tripgo/seat-reservation/internal/database"
	"github.com/tripgo/seat-reservation/internal/handler"
	"github.com/tripgo/seat-reservation/internal/queue"
	"github.com/tripgo/seat-reservation/internal/repository"
	"github.com/tripgo/seat-reservation/internal/router"
	"github.com/tripgo/seat-reservation/internal/service"
)

func main() {
	// Load .env if present; real deployments set the environment
	// directly and the file is simply absent.
	_ = godotenv.Load()

	cfg := config.Load() // Load environment config

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Redis is optional: a nil client disables rate limiting and the
	// search response cache, nothing else.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable; rate limiting and response cache disabled")
	}

	// Repositories
	scheduleRepo := repository.NewScheduleRepo(db)
	segmentRepo := repository.NewRouteSegmentRepo(db)
	fareRepo := repository.NewFareRepo(db)
	seatRepo := repository.NewSeatRepo(db)
	bookingSeatRepo := repository.NewBookingSeatRepo(db)
	lockRepo := repository.NewSeatLockRepo(db)

	// Core services
	lockManager := service.NewSeatLockManager(lockRepo, cfg.LockTTL, time.Now)
	engine := service.NewAvailabilityEngine(segmentRepo, fareRepo, seatRepo, bookingSeatRepo)
	reaper := service.NewLockReaper(lockManager, cfg.ReapInterval)

	// Root context cancelled on SIGINT/SIGTERM; stops the reaper and
	// drives the HTTP shutdown below.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go reaper.Run(ctx) // sweep expired seat locks for the life of the process

	// Background consumer appends seat events to the audit log.  It
	// reconnects on broker failures, never takes the server down and
	// exits with the rest of the process on shutdown.
	go func() {
		if err := queue.StartSeatEventConsumer(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Printf("seat-events: consumer stopped: %v", err)
		}
	}()

	e := echo.New() // Create Echo instance
	e.HideBanner = true
	search := handler.NewSearchHandler(scheduleRepo, engine, lockManager)
	booking := handler.NewBookingHandler(scheduleRepo, lockManager)
	router.Register(e, search, booking, cfg.JWTSecret, rdb, lockManager.TTL())

	addr := ":" + cfg.Port                                // Address string with port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env) // Print startup info

	go func() {
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed { // Start HTTP server
			log.Fatal(err) // Log and exit if server fails
		}
	}()

	<-ctx.Done() // wait for shutdown signal

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
	log.Println("server stopped")
}
