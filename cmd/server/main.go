package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/story-catalog-api/internal/api"
	"github.com/story-catalog-api/internal/config"
	"github.com/story-catalog-api/internal/database"
	"github.com/story-catalog-api/internal/ratelimit"
	"github.com/story-catalog-api/internal/repository"
	"github.com/story-catalog-api/internal/service"
	"github.com/story-catalog-api/pkg/logger"
)

func main() {
	migrateDown := flag.Bool("migrate-down", false, "roll back the last migration and exit")
	flag.Parse()

	// A missing .env is fine; real deployments use the environment
	_ = godotenv.Load()

	// Initialize logger
	log := logger.New()
	log.Info().Msg("Starting Story Catalog API server...")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Initialize database
	db, err := database.New(&cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	if *migrateDown {
		if err := db.MigrateDown(cfg.Server.MigrationsPath); err != nil {
			log.Error().Err(err).Msg("Failed to roll back migration")
			db.Close()
			os.Exit(1)
		}
		return
	}

	// Run migrations
	if err := db.RunMigrations(cfg.Server.MigrationsPath); err != nil {
		log.Fatal().Err(err).Msg("Failed to run database migrations")
	}

	// Initialize repositories
	repos := repository.New(db)

	// Initialize services
	services := service.NewServices(repos, log)

	// Per-account throttle for author requests
	limiter := ratelimit.New(cfg.RateLimit.AuthorRequestsPerSecond, cfg.RateLimit.AuthorRequestBurst)
	defer limiter.Stop()

	// Initialize router
	router := api.NewRouter(services, cfg, limiter, db, log)

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.ReadTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("port", cfg.Server.Port).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited gracefully")
}
