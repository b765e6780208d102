package main

import (
	"flag"
	"fmt"
	"net/url"
	"os"

	"go.uber.org/zap"

	"github.com/getmentor/rating-api/config"
	"github.com/getmentor/rating-api/pkg/db"
	"github.com/getmentor/rating-api/pkg/logger"
)

func main() {
	migrationsPath := flag.String("path", "file://migrations", "migration source URL")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	err = logger.Initialize(logger.Config{
		Level:       cfg.Logging.Level,
		Environment: cfg.Server.AppEnv,
		ServiceName: "rating-migrate",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting database migrations",
		zap.String("database", maskDatabaseURL(cfg.Database.URL)),
		zap.String("source", *migrationsPath))

	if err := db.RunMigrations(cfg.Database.URL, cfg.Database.CACertPath, *migrationsPath); err != nil {
		logger.LogError(err, "Failed to run migrations")
		os.Exit(1)
	}

	logger.Info("Database migrations completed successfully")
}

// maskDatabaseURL hides credentials so the URL is safe to log
func maskDatabaseURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "***"
	}
	return u.Redacted()
}
