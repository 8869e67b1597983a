package admin

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/scanpesa/internal/http/response"
	"github.com/scanpesa/internal/models"
	"github.com/scanpesa/internal/service"
)

func generateCodes(t *testing.T, f *adminFixture) []service.QRGenerationResult {
	t.Helper()
	env := decodeEnvelope(t, f.do(t, http.MethodPost, "/admin/qr-codes/generate", map[string]string{"campaign_id": f.campaign.ID}))
	if env.StatusCode != response.CodeOK {
		t.Fatalf("generate failed: %d %s", env.StatusCode, env.Msg)
	}
	var results []service.QRGenerationResult
	if err := json.Unmarshal(env.Data, &results); err != nil {
		t.Fatalf("decode results failed: %v", err)
	}
	return results
}

func TestGenerateQRCodesSplitsAcrossVariants(t *testing.T) {
	f := setupAdminFixture(t)
	results := generateCodes(t, f)
	if len(results) != 2 {
		t.Fatalf("expected one result per variant, got %d", len(results))
	}
	for _, result := range results {
		if result.TotalGenerated != 3 || len(result.QRCodes) != 3 || len(result.Errors) != 0 {
			t.Fatalf("unexpected result: %+v", result)
		}
		for _, code := range result.QRCodes {
			if !strings.HasPrefix(code.URL, "https://scan.example.com/feedback?campaign=") {
				t.Fatalf("unexpected url: %s", code.URL)
			}
		}
	}

	env := decodeEnvelope(t, f.do(t, http.MethodGet, "/admin/qr-codes?campaign_id="+f.campaign.ID+"&page_size=4", nil))
	if env.StatusCode != response.CodeOK || env.Pagination == nil {
		t.Fatalf("list failed: %d %s", env.StatusCode, env.Msg)
	}
	if env.Pagination.Total != 6 || env.Pagination.PageSize != 4 {
		t.Fatalf("unexpected pagination: %+v", env.Pagination)
	}
}

func TestGenerateQRCodesMapsErrors(t *testing.T) {
	f := setupAdminFixture(t)

	env := decodeEnvelope(t, f.do(t, http.MethodPost, "/admin/qr-codes/generate", map[string]string{"campaign_id": "00000000-0000-0000-0000-000000000000"}))
	if env.StatusCode != response.CodeNotFound {
		t.Fatalf("expected not found, got %d", env.StatusCode)
	}
	env = decodeEnvelope(t, f.do(t, http.MethodPost, "/admin/qr-codes/generate", map[string]string{"campaign_id": f.campaign.ID, "base_url": "ftp://scan"}))
	if env.StatusCode != response.CodeBadRequest {
		t.Fatalf("expected bad request for base url, got %d", env.StatusCode)
	}
	env = decodeEnvelope(t, f.do(t, http.MethodPost, "/admin/qr-codes/generate", map[string]string{}))
	if env.StatusCode != response.CodeBadRequest {
		t.Fatalf("expected bad request for missing campaign, got %d", env.StatusCode)
	}
}

func TestQRCodeImageAndDetail(t *testing.T) {
	f := setupAdminFixture(t)
	code := generateCodes(t, f)[0].QRCodes[0]

	w := f.do(t, http.MethodGet, "/admin/qr-codes/"+code.ID+"/image", nil)
	if w.Code != http.StatusOK || w.Header().Get("Content-Type") != "image/png" {
		t.Fatalf("expected png, got %d %s", w.Code, w.Header().Get("Content-Type"))
	}
	if !bytes.HasPrefix(w.Body.Bytes(), []byte("\x89PNG")) {
		t.Fatalf("expected png signature")
	}

	env := decodeEnvelope(t, f.do(t, http.MethodGet, "/admin/qr-codes/"+code.ID, nil))
	var detail struct {
		QRCode models.RedemptionToken `json:"qr_code"`
		Image  string                 `json:"image"`
	}
	if err := json.Unmarshal(env.Data, &detail); err != nil {
		t.Fatalf("decode detail failed: %v", err)
	}
	if detail.QRCode.ID != code.ID || !strings.HasPrefix(detail.Image, "data:image/png;base64,") {
		t.Fatalf("unexpected detail: %+v", detail.QRCode)
	}

	env = decodeEnvelope(t, f.do(t, http.MethodGet, "/admin/qr-codes/missing-id", nil))
	if env.StatusCode != response.CodeNotFound {
		t.Fatalf("expected not found, got %d", env.StatusCode)
	}
}

func TestExportAndBulkDeleteQRCodes(t *testing.T) {
	f := setupAdminFixture(t)
	results := generateCodes(t, f)

	w := f.do(t, http.MethodGet, "/admin/qr-codes/export?campaign_id="+f.campaign.ID, nil)
	if !strings.HasPrefix(w.Header().Get("Content-Type"), "text/csv") {
		t.Fatalf("expected csv, got %s", w.Header().Get("Content-Type"))
	}
	rows, err := csv.NewReader(bytes.NewReader(w.Body.Bytes())).ReadAll()
	if err != nil {
		t.Fatalf("read csv failed: %v", err)
	}
	if len(rows) != 7 || rows[0][0] != "QR ID" {
		t.Fatalf("unexpected csv rows: %d", len(rows))
	}

	env := decodeEnvelope(t, f.do(t, http.MethodGet, "/admin/qr-codes/export?campaign_id="+f.campaign.ID+"&format=xml", nil))
	if env.StatusCode != response.CodeBadRequest {
		t.Fatalf("expected bad request for xml, got %d", env.StatusCode)
	}

	ids := []string{results[0].QRCodes[0].ID, results[1].QRCodes[0].ID}
	env = decodeEnvelope(t, f.do(t, http.MethodPost, "/admin/qr-codes/bulk-delete", map[string]interface{}{"ids": ids}))
	if env.StatusCode != response.CodeOK {
		t.Fatalf("bulk delete failed: %d %s", env.StatusCode, env.Msg)
	}
	var remaining int64
	if err := f.db.Model(&models.RedemptionToken{}).Count(&remaining).Error; err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if remaining != 4 {
		t.Fatalf("expected 4 codes left, got %d", remaining)
	}

	env = decodeEnvelope(t, f.do(t, http.MethodPost, "/admin/qr-codes/bulk-delete", map[string]interface{}{"ids": []string{}}))
	if env.StatusCode != response.CodeBadRequest {
		t.Fatalf("expected bad request for empty ids, got %d", env.StatusCode)
	}
}
