package repository

import (
	"fmt"
	"testing"
	"time"

	"github.com/scanpesa/internal/models"
)

func seedTokens(t *testing.T, repo *GormRedemptionTokenRepository, campaignID, skuID string, count int) []models.RedemptionToken {
	t.Helper()
	tokens := make([]models.RedemptionToken, 0, count)
	for i := 0; i < count; i++ {
		tokens = append(tokens, models.RedemptionToken{
			SKUID:       skuID,
			CampaignID:  campaignID,
			TokenHash:   fmt.Sprintf("%s-%s-%03d", campaignID, skuID, i),
			URL:         fmt.Sprintf("https://example.test/feedback?t=%d", i),
			BatchNumber: 1,
		})
	}
	if err := repo.CreateBatch(tokens); err != nil {
		t.Fatalf("create batch failed: %v", err)
	}
	stored, err := repo.ListAll(RedemptionTokenListFilter{CampaignID: campaignID, SKUID: skuID})
	if err != nil {
		t.Fatalf("list tokens failed: %v", err)
	}
	if len(stored) != count {
		t.Fatalf("stored tokens want %d got %d", count, len(stored))
	}
	return stored
}

func TestRedemptionTokenClaimOnlyOnce(t *testing.T) {
	db := setupRepositoryTestDB(t)
	repo := NewRedemptionTokenRepository(db)
	tokens := seedTokens(t, repo, "camp-1", "sku-1", 1)
	loc := models.Location{Latitude: -1.28, Longitude: 36.82, Region: "Nairobi"}

	ok, err := repo.Claim(tokens[0].ID, "254712345678", &loc, time.Now())
	if err != nil || !ok {
		t.Fatalf("first claim want ok got ok=%v err=%v", ok, err)
	}
	ok, err = repo.Claim(tokens[0].ID, "254700000000", &loc, time.Now())
	if err != nil {
		t.Fatalf("second claim err: %v", err)
	}
	if ok {
		t.Fatalf("second claim should lose")
	}

	got, err := repo.GetByID(tokens[0].ID)
	if err != nil || got == nil {
		t.Fatalf("get token failed: %v", err)
	}
	if !got.IsUsed || got.UsedAt == nil || got.UsedBy == nil || *got.UsedBy != "254712345678" {
		t.Fatalf("unexpected token state: %+v", got)
	}
	if got.Location == nil || got.Location.Region != "Nairobi" {
		t.Fatalf("location not stored: %+v", got.Location)
	}
}

func TestRedemptionTokenGetByHash(t *testing.T) {
	db := setupRepositoryTestDB(t)
	repo := NewRedemptionTokenRepository(db)
	seedTokens(t, repo, "camp-1", "sku-1", 2)

	got, err := repo.GetByHash("camp-1-sku-1-001")
	if err != nil || got == nil {
		t.Fatalf("get by hash failed: %v", err)
	}
	missing, err := repo.GetByHash("nope")
	if err != nil || missing != nil {
		t.Fatalf("missing hash want nil got %+v err=%v", missing, err)
	}
}

func TestRedemptionTokenStatsAndDelete(t *testing.T) {
	db := setupRepositoryTestDB(t)
	repo := NewRedemptionTokenRepository(db)
	a := seedTokens(t, repo, "camp-1", "sku-a", 3)
	b := seedTokens(t, repo, "camp-1", "sku-b", 2)
	seedTokens(t, repo, "camp-2", "sku-c", 4)

	now := time.Now()
	if ok, err := repo.Claim(a[0].ID, "254711111111", &models.Location{Region: "Nairobi"}, now); !ok || err != nil {
		t.Fatalf("claim a0 failed: %v", err)
	}
	if ok, err := repo.Claim(b[0].ID, "254722222222", &models.Location{Region: "Nairobi"}, now); !ok || err != nil {
		t.Fatalf("claim b0 failed: %v", err)
	}

	stats, err := repo.Stats("camp-1")
	if err != nil {
		t.Fatalf("stats failed: %v", err)
	}
	if stats.Total != 5 || stats.Used != 2 || stats.Unused != 3 {
		t.Fatalf("unexpected totals: %+v", stats)
	}
	if len(stats.ByRegion) != 1 || stats.ByRegion[0].Region != "Nairobi" || stats.ByRegion[0].Count != 2 {
		t.Fatalf("unexpected region stats: %+v", stats.ByRegion)
	}
	if len(stats.BySKU) != 2 || stats.BySKU[0].SKUID != "sku-a" || stats.BySKU[0].Total != 3 || stats.BySKU[0].Used != 1 {
		t.Fatalf("unexpected sku stats: %+v", stats.BySKU)
	}
	if stats.BySKU[1].SKUID != "sku-b" || stats.BySKU[1].Total != 2 || stats.BySKU[1].Used != 1 {
		t.Fatalf("unexpected second sku stats: %+v", stats.BySKU[1])
	}

	deleted, err := repo.DeleteUnusedByIDs([]string{a[0].ID, a[1].ID, a[2].ID})
	if err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if deleted != 2 {
		t.Fatalf("deleted want 2 got %d", deleted)
	}
	kept, err := repo.GetByID(a[0].ID)
	if err != nil || kept == nil {
		t.Fatalf("used token must survive delete: %v", err)
	}

	used := true
	rows, total, err := repo.List(RedemptionTokenListFilter{CampaignID: "camp-1", IsUsed: &used, Page: 1, PageSize: 50})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if total != 2 || len(rows) != 2 {
		t.Fatalf("used list want 2 got total=%d len=%d", total, len(rows))
	}
}
