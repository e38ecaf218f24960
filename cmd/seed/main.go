package main

import (
	"github.com/seedstoroots/seeds-backend/config"
	"github.com/seedstoroots/seeds-backend/internal/db"
	"github.com/seedstoroots/seeds-backend/pkg/logger"
)

// Seeds the product catalog. Safe to run repeatedly: seeding is skipped
// when products already exist.
func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", err)
	}

	logger.Initialize(logger.Config{
		Level:       "info",
		Format:      "console",
		EnableColor: true,
	})

	if err := db.Initialize(&cfg.Database); err != nil {
		logger.Fatal("Failed to initialize database", err)
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		logger.Fatal("Failed to run migrations", err)
	}

	if err := db.Seed(); err != nil {
		logger.Fatal("Failed to seed database", err)
	}

	logger.Info("Database seeding completed", nil)
}
