package service

import (
	"context"
	"encoding/csv"
	"errors"
	"net/url"
	"strings"
	"testing"

	"github.com/scanpesa/internal/config"
	"github.com/scanpesa/internal/models"
	"github.com/scanpesa/internal/repository"
	"github.com/scanpesa/internal/tokencodec"
)

func newTestQRService(f *serviceFixture, total int) *QRService {
	return NewQRService(
		repository.NewRedemptionTokenRepository(f.db),
		repository.NewCampaignRepository(f.db),
		config.QRConfig{TotalCodes: total, BatchSize: 100, ImageSize: 256, DefaultBaseURL: "https://scan.example.com"},
	)
}

func TestQRGenerateSplitsTotalAcrossVariants(t *testing.T) {
	f := setupServiceFixture(t)
	svc := newTestQRService(f, 1680)

	results, err := svc.GenerateForCampaign(context.Background(), f.campaign.ID, "https://scan.example.com/")
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 variant results, got %d", len(results))
	}
	for _, result := range results {
		if result.TotalGenerated != 840 || len(result.QRCodes) != 840 {
			t.Fatalf("expected 840 codes for %s, got %d", result.SKUID, result.TotalGenerated)
		}
		if len(result.Errors) != 0 {
			t.Fatalf("unexpected errors: %v", result.Errors)
		}
		if result.BatchNumber != 1 {
			t.Fatalf("expected first batch number 1, got %d", result.BatchNumber)
		}
	}

	var hashes []string
	if err := f.db.Model(&models.RedemptionToken{}).Pluck("token_hash", &hashes).Error; err != nil {
		t.Fatalf("load hashes failed: %v", err)
	}
	if len(hashes) != 1680 {
		t.Fatalf("expected 1680 stored codes, got %d", len(hashes))
	}
	seen := make(map[string]struct{}, len(hashes))
	for _, hash := range hashes {
		if _, ok := seen[hash]; ok {
			t.Fatalf("duplicate token hash %s", hash)
		}
		seen[hash] = struct{}{}
	}
}

func TestQRGenerateURLCarriesTokenMatchingStoredHash(t *testing.T) {
	f := setupServiceFixture(t)
	svc := newTestQRService(f, 4)

	results, err := svc.GenerateForCampaign(context.Background(), f.campaign.ID, "")
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	ref := results[0].QRCodes[0]
	parsed, err := url.Parse(ref.URL)
	if err != nil {
		t.Fatalf("parse url failed: %v", err)
	}
	if parsed.Path != "/feedback" || parsed.Query().Get("qr") != "true" {
		t.Fatalf("unexpected scan url: %s", ref.URL)
	}
	if parsed.Query().Get("campaign") != f.campaign.ID || parsed.Query().Get("s") != results[0].SKUID {
		t.Fatalf("scan url params mismatch: %s", ref.URL)
	}
	raw := parsed.Query().Get("t")
	stored := f.reloadToken(t, ref.ID)
	if stored.TokenHash != tokencodec.Hash(raw) {
		t.Fatalf("stored hash does not match url token")
	}
	if strings.Contains(stored.TokenHash, raw) {
		t.Fatalf("raw token leaked into stored hash")
	}

	again, err := svc.GenerateForCampaign(context.Background(), f.campaign.ID, "")
	if err != nil {
		t.Fatalf("second generate failed: %v", err)
	}
	if again[0].BatchNumber != 2 {
		t.Fatalf("expected batch number 2, got %d", again[0].BatchNumber)
	}
}

func TestQRGenerateReportsEmptyCampaigns(t *testing.T) {
	f := setupServiceFixture(t)
	svc := newTestQRService(f, 10)

	empty := &models.Campaign{Name: "empty", Active: true}
	if err := f.db.Create(empty).Error; err != nil {
		t.Fatalf("create campaign failed: %v", err)
	}
	if _, err := svc.GenerateForCampaign(context.Background(), empty.ID, ""); !errors.Is(err, ErrQRNoProducts) {
		t.Fatalf("expected ErrQRNoProducts, got %v", err)
	}

	bare := &models.Product{Name: "bare", Active: true}
	if err := f.db.Create(bare).Error; err != nil {
		t.Fatalf("create product failed: %v", err)
	}
	if err := repository.NewCampaignRepository(f.db).LinkProduct(empty.ID, bare.ID); err != nil {
		t.Fatalf("link failed: %v", err)
	}
	if _, err := svc.GenerateForCampaign(context.Background(), empty.ID, ""); !errors.Is(err, ErrQRNoVariants) {
		t.Fatalf("expected ErrQRNoVariants, got %v", err)
	}
	if _, err := svc.GenerateForCampaign(context.Background(), "missing", ""); !errors.Is(err, ErrCampaignNotFound) {
		t.Fatalf("expected ErrCampaignNotFound, got %v", err)
	}
	if _, err := svc.GenerateForCampaign(context.Background(), f.campaign.ID, "ftp://nope"); !errors.Is(err, ErrBaseURLInvalid) {
		t.Fatalf("expected ErrBaseURLInvalid, got %v", err)
	}
}

func TestQRPreviewUsesReservedBatch(t *testing.T) {
	f := setupServiceFixture(t)
	svc := newTestQRService(f, 10)

	previews, err := svc.Preview(context.Background(), f.campaign.ID, "")
	if err != nil {
		t.Fatalf("preview failed: %v", err)
	}
	if len(previews) != 2 {
		t.Fatalf("expected one preview per variant, got %d", len(previews))
	}
	for _, preview := range previews {
		if !strings.HasPrefix(preview.Image, pngDataURLPrefix) {
			t.Fatalf("preview image is not a png data url")
		}
		if stored := f.reloadToken(t, preview.ID); stored.BatchNumber != models.PreviewBatchNumber {
			t.Fatalf("expected preview batch, got %d", stored.BatchNumber)
		}
	}
}

func TestQRVerifyClaimsOnce(t *testing.T) {
	f := setupServiceFixture(t)
	svc := newTestQRService(f, 10)
	token, raw := f.issueToken(t, f.sku340)

	ok, err := svc.Verify(context.Background(), raw, &models.Location{Region: "Nairobi"})
	if err != nil || !ok {
		t.Fatalf("first verify should pass: ok=%v err=%v", ok, err)
	}
	ok, err = svc.Verify(context.Background(), token.ID, nil)
	if err != nil || ok {
		t.Fatalf("second verify should fail: ok=%v err=%v", ok, err)
	}
	ok, err = svc.Verify(context.Background(), "unknown", nil)
	if err != nil || ok {
		t.Fatalf("unknown token should be invalid: ok=%v err=%v", ok, err)
	}
	stored := f.reloadToken(t, token.ID)
	if !stored.IsUsed || stored.UsedBy != nil {
		t.Fatalf("unexpected verified token state: %+v", stored)
	}
}

func TestQRExportAndBulkDelete(t *testing.T) {
	f := setupServiceFixture(t)
	svc := newTestQRService(f, 10)
	used, raw := f.issueToken(t, f.sku340)
	unused, _ := f.issueToken(t, f.sku500)
	if ok, err := svc.Verify(context.Background(), raw, &models.Location{Region: "Nairobi"}); err != nil || !ok {
		t.Fatalf("verify failed: ok=%v err=%v", ok, err)
	}

	body, contentType, err := svc.Export(f.campaign.ID, "csv")
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}
	if !strings.HasPrefix(contentType, "text/csv") {
		t.Fatalf("unexpected content type: %s", contentType)
	}
	records, err := csv.NewReader(strings.NewReader(string(body))).ReadAll()
	if err != nil {
		t.Fatalf("parse csv failed: %v", err)
	}
	if len(records) != 3 || records[0][0] != "QR ID" {
		t.Fatalf("unexpected csv: %v", records)
	}
	if _, _, err := svc.Export(f.campaign.ID, "xml"); !errors.Is(err, ErrExportFormatInvalid) {
		t.Fatalf("expected ErrExportFormatInvalid, got %v", err)
	}

	deleted, err := svc.BulkDelete(context.Background(), []string{used.ID, unused.ID, unused.ID, " "})
	if err != nil {
		t.Fatalf("bulk delete failed: %v", err)
	}
	if deleted != 1 {
		t.Fatalf("expected only the unused code deleted, got %d", deleted)
	}
	if _, err := svc.GetToken(used.ID); err != nil {
		t.Fatalf("used code must be kept: %v", err)
	}
	if _, err := svc.BulkDelete(context.Background(), nil); !errors.Is(err, ErrQRIDsRequired) {
		t.Fatalf("expected ErrQRIDsRequired, got %v", err)
	}
}

func TestQRListClampsPageSize(t *testing.T) {
	f := setupServiceFixture(t)
	svc := newTestQRService(f, 10)
	f.issueToken(t, f.sku340)

	_, total, page, pageSize, err := svc.List(QRListInput{CampaignID: f.campaign.ID, PageSize: 5000})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if total != 1 || page != 1 || pageSize != 1000 {
		t.Fatalf("unexpected paging: total=%d page=%d size=%d", total, page, pageSize)
	}
}
