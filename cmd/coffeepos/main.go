package main

import (
	"context"
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"

	"github.com/da-pic/coffeepos/internal/config"
	"github.com/da-pic/coffeepos/internal/storage"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

func main() {
	// Handle version flag
	if len(os.Args) > 1 && os.Args[1] == "--version" {
		fmt.Printf("CoffeePOS\n")
		fmt.Printf("Version: %s\n", version)
		fmt.Printf("Build Time: %s\n", buildTime)
		fmt.Printf("Build Mode: %s\n", storage.BuildMode)
		fmt.Printf("SQLite Driver: %s\n", storage.DriverName)
		os.Exit(0)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := log.New()
	if cfg.LogJSON {
		logger.SetFormatter(&log.JSONFormatter{})
	}
	if level, err := log.ParseLevel(cfg.LogLevel); err == nil {
		logger.SetLevel(level)
	} else {
		logger.Warnf("Unknown log level %q, using info", cfg.LogLevel)
	}

	logger.WithFields(log.Fields{
		"version": version,
		"mode":    storage.BuildMode,
		"driver":  storage.DriverName,
		"db":      cfg.DBPath,
	}).Info("CoffeePOS starting")

	store, err := storage.NewSQLiteStore(cfg.DBPath)
	if err != nil {
		logger.Fatalf("Failed to open database: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	if cfg.Seed {
		if err := seed(ctx, store, logger); err != nil {
			logger.Fatalf("Failed to seed database: %v", err)
		}
	}

	products, err := store.ListProducts(ctx, true)
	if err != nil {
		logger.Fatalf("Failed to read catalog: %v", err)
	}
	categories, err := store.ListCategories(ctx)
	if err != nil {
		logger.Fatalf("Failed to read categories: %v", err)
	}

	logger.WithFields(log.Fields{
		"products":   len(products),
		"categories": len(categories),
	}).Info("Database ready")
}
