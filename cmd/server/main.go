package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/vac-rating-engine/internal/api"
	"github.com/vac-rating-engine/internal/config"
	"github.com/vac-rating-engine/internal/domain"
	"github.com/vac-rating-engine/internal/engine"
	"github.com/vac-rating-engine/internal/rules"
)

func main() {
	// Load configuration
	configManager, err := config.NewManager()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if err := configManager.Validate(); err != nil {
		log.Fatalf("Configuration validation failed: %v", err)
	}
	cfg := configManager.GetConfig()

	logger := newLogger(cfg.Logging)

	// Load the rule tables: an external source when configured, the
	// embedded 2019 Table of Disabilities otherwise
	var repo *rules.Repository
	if cfg.Rules.Path != "" {
		repo, err = rules.Load(cfg.Rules.Path, logger)
	} else {
		repo, err = rules.LoadDefault(logger)
	}
	if err != nil {
		logger.WithError(err).Fatal("Failed to load rule tables")
	}

	ratingEngine := engine.New(repo, logger)

	server, err := api.NewServer(configManager, repo, ratingEngine, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to create server")
	}

	logger.WithFields(logrus.Fields{
		"host":          cfg.Server.Host,
		"port":          cfg.Server.Port,
		"rules_version": repo.Version(),
	}).Info("Starting rating engine server")

	// Graceful shutdown on SIGINT/SIGTERM
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		logger.Info("Shutdown signal received, gracefully shutting down")
		cancel()
	}()

	if err := server.Start(ctx); err != nil {
		logger.WithError(err).Fatal("Server failed")
	}

	logger.Info("Server stopped")
}

// newLogger builds the application logger from the logging configuration
func newLogger(cfg domain.LoggingConfig) *logrus.Logger {
	logger := logrus.New()

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if cfg.Format == "text" {
		logger.SetFormatter(&logrus.TextFormatter{
			TimestampFormat: time.RFC3339,
			FullTimestamp:   true,
		})
	} else {
		logger.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: time.RFC3339Nano,
		})
	}

	return logger
}
