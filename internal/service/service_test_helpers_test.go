package service

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/scanpesa/internal/config"
	"github.com/scanpesa/internal/models"
	"github.com/scanpesa/internal/repository"
	"github.com/scanpesa/internal/tokencodec"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

var testGeofence = config.GeofenceConfig{
	North:  -1.1864,
	South:  -1.4564,
	East:   37.0833,
	West:   36.6667,
	Region: "nairobi",
}

type serviceFixture struct {
	db       *gorm.DB
	campaign *models.Campaign
	product  *models.Product
	sku340   *models.ProductSKU
	sku500   *models.ProductSKU
}

func setupServiceTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:service_%s_%d?mode=memory&cache=shared", name, time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(models.AllModels()...); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db failed: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	models.DB = db
	return db
}

// setupServiceFixture one active campaign with a product sold in 340g and 500g
func setupServiceFixture(t *testing.T) *serviceFixture {
	t.Helper()
	db := setupServiceTestDB(t)
	now := time.Now()

	campaign := &models.Campaign{
		Name:      "Unga feedback",
		StartDate: now.Add(-time.Hour),
		EndDate:   now.Add(24 * time.Hour),
		Active:    true,
	}
	product := &models.Product{Name: "Maize flour", Category: "flour", Active: true}
	campaignRepo := repository.NewCampaignRepository(db)
	productRepo := repository.NewProductRepository(db)
	if err := campaignRepo.Create(campaign); err != nil {
		t.Fatalf("create campaign failed: %v", err)
	}
	if err := productRepo.Create(product); err != nil {
		t.Fatalf("create product failed: %v", err)
	}
	if err := campaignRepo.LinkProduct(campaign.ID, product.ID); err != nil {
		t.Fatalf("link product failed: %v", err)
	}
	sku340 := &models.ProductSKU{
		ProductID:         product.ID,
		Weight:            "340g",
		Price:             models.NewMoneyFromInt(120),
		RewardAmount:      models.NewMoneyFromInt(20),
		RewardDescription: "KES 20 M-Pesa",
	}
	sku500 := &models.ProductSKU{
		ProductID:         product.ID,
		Weight:            "500g",
		Price:             models.NewMoneyFromInt(180),
		RewardAmount:      models.NewMoneyFromInt(30),
		RewardDescription: "X",
	}
	for _, sku := range []*models.ProductSKU{sku340, sku500} {
		if err := productRepo.CreateSKU(sku); err != nil {
			t.Fatalf("create sku failed: %v", err)
		}
	}
	return &serviceFixture{db: db, campaign: campaign, product: product, sku340: sku340, sku500: sku500}
}

// issueToken stores one unused code and returns its raw token
func (f *serviceFixture) issueToken(t *testing.T, sku *models.ProductSKU) (*models.RedemptionToken, string) {
	t.Helper()
	token, err := tokencodec.Generate()
	if err != nil {
		t.Fatalf("generate token failed: %v", err)
	}
	row := models.RedemptionToken{
		SKUID:       sku.ID,
		CampaignID:  f.campaign.ID,
		TokenHash:   token.Hash,
		URL:         BuildScanURL("https://scan.example.com", f.campaign.ID, sku.ID, token.Raw),
		BatchNumber: 1,
	}
	if err := f.db.Create(&row).Error; err != nil {
		t.Fatalf("create token failed: %v", err)
	}
	return &row, token.Raw
}

func (f *serviceFixture) reloadToken(t *testing.T, id string) models.RedemptionToken {
	t.Helper()
	var row models.RedemptionToken
	if err := f.db.First(&row, "id = ?", id).Error; err != nil {
		t.Fatalf("reload token failed: %v", err)
	}
	return row
}

func (f *serviceFixture) count(t *testing.T, model interface{}) int64 {
	t.Helper()
	var total int64
	if err := f.db.Model(model).Count(&total).Error; err != nil {
		t.Fatalf("count failed: %v", err)
	}
	return total
}

func newTestRedemptionService(db *gorm.DB) *RedemptionService {
	return NewRedemptionService(
		NewFeedbackValidator(testGeofence),
		repository.NewRedemptionTokenRepository(db),
		repository.NewCampaignRepository(db),
		repository.NewProductRepository(db),
		repository.NewFeedbackRepository(db),
		repository.NewRewardRepository(db),
	)
}

func validSubmission(f *serviceFixture, sku *models.ProductSKU, rawToken, phone string) FeedbackSubmission {
	rating := 5.0
	comment := "Fine flour"
	return FeedbackSubmission{
		CampaignID:    f.campaign.ID,
		SKUID:         sku.ID,
		CustomerPhone: phone,
		Token:         rawToken,
		Location:      &models.Location{Latitude: -1.2921, Longitude: 36.8219, Region: "Nairobi County"},
		Rating:        &rating,
		Comment:       &comment,
		CustomAnswers: map[string]interface{}{"would_buy_again": true, "stores": []interface{}{"Naivas"}},
	}
}
