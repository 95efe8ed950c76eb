package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/winsznx/cookathon/internal/adapter"
	"github.com/winsznx/cookathon/internal/api/rest"
	"github.com/winsznx/cookathon/internal/api/server"
	"github.com/winsznx/cookathon/internal/config"
	"github.com/winsznx/cookathon/internal/logger"
	"github.com/winsznx/cookathon/internal/policy"
	"github.com/winsznx/cookathon/internal/session"
	"github.com/winsznx/cookathon/internal/store"
	"github.com/winsznx/cookathon/internal/sweeper"
)

var (
	configFile = flag.String("config", "", "Path to configuration file")
	envPath    = flag.String("env", "config/", "Path to environment files")
)

func main() {
	flag.Parse()

	// Load configuration
	config.ChdirRepoRoot()
	cfg, err := config.LoadAPIConfig(*configFile, *envPath)
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize logger with sentry integration
	err = logger.Initialize(logger.Config{
		Debug:     cfg.Debug,
		SentryDSN: cfg.SentryDSN,
		Tags: map[string]string{
			"service": "mint-api",
		},
	})
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Flush(2 * time.Second)
	logger.InfoCtx(ctx, "Starting mint assistant API")

	// Open database and run schema migrations
	db, err := store.Open(cfg.Database.Path)
	if err != nil {
		logger.FatalCtx(ctx, "Failed to open database", zap.Error(err), zap.String("path", cfg.Database.Path))
	}
	logger.InfoCtx(ctx, "Opened database", zap.String("path", cfg.Database.Path))

	migrator := store.NewMigrator(db)
	if err := migrator.Migrate(ctx, store.TargetSchemaVersion); err != nil {
		logger.FatalCtx(ctx, "Failed to migrate database", zap.Error(err))
	}

	// Wire the store and domain services
	clock := adapter.NewClock()
	dataStore := store.NewSQLiteStore(db, clock)
	mintPolicy := policy.New(policy.Config{
		MaxMintsPerUser: cfg.Mint.MaxPerUser,
		Cooldown:        cfg.Mint.Cooldown,
	})
	sessions := session.NewManager(dataStore, clock, cfg.Session.DefaultTTL)

	// Start the expired-session sweeper
	sessionSweeper := sweeper.NewSessionSweeper(&sweeper.SessionSweeperConfig{
		Interval: cfg.Session.SweepInterval,
	}, sessions, clock)
	go func() {
		if err := sessionSweeper.Start(ctx); err != nil {
			logger.ErrorCtx(ctx, err, zap.String("component", sessionSweeper.Name()))
		}
	}()

	// Create and start server
	handler := rest.NewHandler(dataStore, mintPolicy, sessions, clock)
	srv := server.New(cfg.Server, cfg.Debug, handler, cfg.Auth.APIKeys)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil {
			errCh <- err
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-sigCh:
		logger.InfoCtx(ctx, "Received shutdown signal", zap.String("signal", sig.String()))
		cancel()
	case err := <-errCh:
		logger.ErrorCtx(ctx, err, zap.String("component", "server"))
		cancel()
	}

	// Create shutdown context with timeout (don't use canceled ctx)
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	logger.InfoCtx(shutdownCtx, "Shutting down server...")

	if err := sessionSweeper.Stop(shutdownCtx); err != nil {
		logger.ErrorCtx(shutdownCtx, err, zap.String("component", sessionSweeper.Name()))
	}

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.FatalCtx(shutdownCtx, "Server forced to shutdown", zap.Error(err))
	}

	logger.Info("API server stopped")
}
