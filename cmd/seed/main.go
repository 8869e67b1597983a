package main

import (
	"os"
	"time"

	"github.com/scanpesa/internal/config"
	"github.com/scanpesa/internal/logger"
	"github.com/scanpesa/internal/models"
	"github.com/scanpesa/internal/repository"
)

func main() {
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()
	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}); err != nil {
		stdLog.Fatalf("Failed to connect database: %v", err)
	}

	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("Failed to migrate database: %v", err)
	}

	if err := models.InitDefaultAdmin(os.Getenv("SP_DEFAULT_ADMIN_USERNAME"), os.Getenv("SP_DEFAULT_ADMIN_PASSWORD")); err != nil {
		stdLog.Fatalf("Failed to seed admin: %v", err)
	}

	campaignRepo := repository.NewCampaignRepository(models.DB)
	productRepo := repository.NewProductRepository(models.DB)

	now := time.Now()
	campaign := &models.Campaign{
		Name:            "Maize flour feedback",
		Description:     "Scan the code inside the pack, rate the flour and get M-Pesa airtime money",
		StartDate:       now,
		EndDate:         now.AddDate(0, 3, 0),
		TargetResponses: 1680,
		Active:          true,
		Meta: models.JSON{
			"questions": []map[string]interface{}{
				{"key": "would_buy_again", "type": "bool"},
				{"key": "stores", "type": "multi"},
			},
		},
	}
	if err := campaignRepo.Create(campaign); err != nil {
		stdLog.Fatalf("Failed to seed campaign: %v", err)
	}

	product := &models.Product{
		Name:        "Premium maize flour",
		Description: "Sifted maize meal",
		Category:    "flour",
		Active:      true,
	}
	if err := productRepo.Create(product); err != nil {
		stdLog.Fatalf("Failed to seed product: %v", err)
	}
	if err := campaignRepo.LinkProduct(campaign.ID, product.ID); err != nil {
		stdLog.Fatalf("Failed to link product: %v", err)
	}

	skus := []models.ProductSKU{
		{
			ProductID:         product.ID,
			Weight:            "340g",
			Price:             models.NewMoneyFromInt(65),
			RewardAmount:      models.NewMoneyFromInt(20),
			RewardDescription: "KES 20 M-Pesa",
		},
		{
			ProductID:         product.ID,
			Weight:            "500g",
			Price:             models.NewMoneyFromInt(95),
			RewardAmount:      models.NewMoneyFromInt(30),
			RewardDescription: "KES 30 M-Pesa",
		},
	}
	for i := range skus {
		if err := productRepo.CreateSKU(&skus[i]); err != nil {
			stdLog.Fatalf("Failed to seed sku %s: %v", skus[i].Weight, err)
		}
	}

	logger.Infow("seed_completed",
		"campaign_id", campaign.ID,
		"product_id", product.ID,
		"skus", len(skus),
	)
}
