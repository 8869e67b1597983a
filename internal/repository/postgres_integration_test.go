//go:build integration
// +build integration

package repository

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/scanpesa/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// setupPostgresIntegrationDB opens TEST_POSTGRES_DSN and migrates a clean schema.
func setupPostgresIntegrationDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := strings.TrimSpace(os.Getenv("TEST_POSTGRES_DSN"))
	if dsn == "" {
		t.Skip("skip postgres integration test: TEST_POSTGRES_DSN is empty")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open postgres failed: %v", err)
	}

	all := models.AllModels()
	_ = db.Migrator().DropTable(all...)
	if err := db.AutoMigrate(all...); err != nil {
		t.Fatalf("migrate postgres models failed: %v", err)
	}

	t.Cleanup(func() {
		_ = db.Migrator().DropTable(all...)
		sqlDB, err := db.DB()
		if err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func TestPostgresRedemptionTokenStats(t *testing.T) {
	db := setupPostgresIntegrationDB(t)
	repo := NewRedemptionTokenRepository(db)

	tokens := []models.RedemptionToken{
		{SKUID: "sku-a", CampaignID: "camp", TokenHash: "h1", URL: "u1", BatchNumber: 1},
		{SKUID: "sku-a", CampaignID: "camp", TokenHash: "h2", URL: "u2", BatchNumber: 1},
		{SKUID: "sku-b", CampaignID: "camp", TokenHash: "h3", URL: "u3", BatchNumber: 2},
	}
	if err := repo.CreateBatch(tokens); err != nil {
		t.Fatalf("create batch failed: %v", err)
	}
	stored, err := repo.ListAll(RedemptionTokenListFilter{CampaignID: "camp"})
	if err != nil || len(stored) != 3 {
		t.Fatalf("list failed: len=%d err=%v", len(stored), err)
	}
	if ok, err := repo.Claim(stored[0].ID, "254712345678", &models.Location{Region: "Nairobi"}, time.Now()); !ok || err != nil {
		t.Fatalf("claim failed: ok=%v err=%v", ok, err)
	}

	stats, err := repo.Stats("camp")
	if err != nil {
		t.Fatalf("stats failed: %v", err)
	}
	if stats.Total != 3 || stats.Used != 1 {
		t.Fatalf("unexpected totals: %+v", stats)
	}
	if len(stats.ByRegion) != 1 || stats.ByRegion[0].Region != "Nairobi" {
		t.Fatalf("unexpected region stats: %+v", stats.ByRegion)
	}
}

func TestPostgresFeedbackSearch(t *testing.T) {
	db := setupPostgresIntegrationDB(t)
	repo := NewFeedbackRepository(db)
	comment := "Great Taste"
	if err := repo.Create(&models.Feedback{
		CampaignID:    "camp",
		SKUID:         "sku",
		TokenID:       "tok",
		CustomerPhone: "254712345678",
		Rating:        5,
		Comment:       &comment,
		Sentiment:     models.SentimentPositive,
		Verified:      true,
	}); err != nil {
		t.Fatalf("create feedback failed: %v", err)
	}
	rows, total, err := repo.List(FeedbackListFilter{Page: 1, PageSize: 10, Search: "great"})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if total != 1 || len(rows) != 1 {
		t.Fatalf("search want 1 got total=%d len=%d", total, len(rows))
	}
}
