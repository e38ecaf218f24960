package db

import (
	"github.com/seedstoroots/seeds-backend/internal/app/model"
	"github.com/seedstoroots/seeds-backend/pkg/logger"
)

// Migrate runs database migrations
func Migrate() error {
	logger.Info("Running database migrations...")

	models := []interface{}{
		&model.User{},
		&model.Product{},
		&model.CartItem{},
	}

	if err := DB.AutoMigrate(models...); err != nil {
		logger.Error("Failed to run migrations", err)
		return err
	}

	logger.Info("Database migrations completed successfully", map[string]interface{}{
		"models_count": len(models),
	})
	return nil
}

// Seed adds initial catalog data when the products table is empty
func Seed() error {
	var count int64
	if err := DB.Model(&model.Product{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		logger.Debug("Skipping seed, products already present", map[string]interface{}{
			"count": count,
		})
		return nil
	}

	logger.Info("Seeding initial catalog data...")

	products := []model.Product{
		{Name: "Tomato seedling", Description: "Cherry tomato starter plant", Price: 3500, StockQuantity: 40, ImageURL: "https://cdn.seedstoroots.cl/products/tomato.jpg"},
		{Name: "Basil pot", Description: "Genovese basil in a 12cm pot", Price: 2900, StockQuantity: 25, ImageURL: "https://cdn.seedstoroots.cl/products/basil.jpg"},
		{Name: "Compost 5kg", Description: "Organic compost bag", Price: 7990, StockQuantity: 60, ImageURL: "https://cdn.seedstoroots.cl/products/compost.jpg"},
		{Name: "Watering can", Description: "2L metal watering can", Price: 12990, StockQuantity: 15},
		{Name: "Garden trowel", Description: "Stainless steel hand trowel", Price: 5490, StockQuantity: 30},
	}

	if err := DB.Create(&products).Error; err != nil {
		logger.Error("Failed to seed products", err)
		return err
	}

	logger.Info("Initial catalog seeded", map[string]interface{}{
		"products": len(products),
	})
	return nil
}
