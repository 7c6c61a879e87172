package main

import (
	"github.com/catalog-next/internal/config"
	"github.com/catalog-next/internal/logger"
	"github.com/catalog-next/internal/models"

	"github.com/joho/godotenv"
)

type seedProduct struct {
	name        string
	description string
	price       string
	category    string
	inStock     bool
}

var seedCategories = []models.Category{
	{Name: "Electronics", Description: "Phones, audio and wearables"},
	{Name: "Lifestyle", Description: "Everyday carry and home goods"},
	{Name: "Accessories", Description: "Chargers, cables and cases"},
}

var seedProducts = []seedProduct{
	{"Wireless Earphones", "Bluetooth 5.3, active noise cancellation, 24h battery", "99.99", "Electronics", true},
	{"Smart Watch", "Heart rate monitoring and fitness tracking", "199.99", "Electronics", true},
	{"Portable Power Bank", "20000mAh, fast charging, two USB-C ports", "49.99", "Accessories", true},
	{"Braided USB-C Cable", "2m, 100W power delivery", "12.50", "Accessories", true},
	{"Travel Backpack", "Waterproof, anti-theft zipper, laptop sleeve", "79.99", "Lifestyle", true},
	{"Ceramic Mug", "350ml, dishwasher safe", "9.90", "Lifestyle", false},
}

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	defer logger.Sync()
	stdLog := logger.StdLogger()

	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}); err != nil {
		stdLog.Fatalf("database init failed: %v", err)
	}
	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("database migration failed: %v", err)
	}

	categoryIDs := make(map[string]uint, len(seedCategories))
	for _, cat := range seedCategories {
		category := cat
		result := models.DB.Where("name = ?", category.Name).FirstOrCreate(&category)
		if result.Error != nil {
			stdLog.Fatalf("seed category %s: %v", cat.Name, result.Error)
		}
		categoryIDs[category.Name] = category.ID
		logger.Infow("seed_category", "name", category.Name, "id", category.ID, "created", result.RowsAffected > 0)
	}

	for _, item := range seedProducts {
		var count int64
		if err := models.DB.Model(&models.Product{}).Where("name = ?", item.name).Count(&count).Error; err != nil {
			stdLog.Fatalf("seed product %s: %v", item.name, err)
		}
		if count > 0 {
			logger.Infow("seed_product_exists", "name", item.name)
			continue
		}

		product := models.Product{
			Name:        item.name,
			Description: item.description,
			Price:       models.MustMoney(item.price),
			InStock:     item.inStock,
		}
		if id, ok := categoryIDs[item.category]; ok {
			product.CategoryID = &id
		}
		if err := models.DB.Create(&product).Error; err != nil {
			stdLog.Fatalf("seed product %s: %v", item.name, err)
		}
		logger.Infow("seed_product", "name", product.Name, "id", product.ID)
	}

	logger.Infow("seed_done", "categories", len(seedCategories), "products", len(seedProducts))
}
