package public

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/scanpesa/internal/config"
	"github.com/scanpesa/internal/models"
	"github.com/scanpesa/internal/provider"
	"github.com/scanpesa/internal/repository"
	"github.com/scanpesa/internal/service"
	"github.com/scanpesa/internal/tokencodec"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

type publicFixture struct {
	db       *gorm.DB
	handler  *Handler
	campaign *models.Campaign
	sku      *models.ProductSKU
}

type envelope struct {
	StatusCode int             `json:"status_code"`
	Msg        string          `json:"msg"`
	Data       json.RawMessage `json:"data"`
}

func setupPublicFixture(t *testing.T) *publicFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:public_%s_%d?mode=memory&cache=shared", name, time.Now().UnixNano())
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

	now := time.Now()
	campaign := &models.Campaign{Name: "Unga feedback", StartDate: now.Add(-time.Hour), EndDate: now.Add(time.Hour), Active: true}
	product := &models.Product{Name: "Maize flour", Active: true}
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
	sku := &models.ProductSKU{ProductID: product.ID, Weight: "340g", RewardAmount: models.NewMoneyFromInt(20), RewardDescription: "KES 20 M-Pesa"}
	if err := productRepo.CreateSKU(sku); err != nil {
		t.Fatalf("create sku failed: %v", err)
	}

	cfg := &config.Config{
		Geofence: config.GeofenceConfig{North: -1.1864, South: -1.4564, East: 37.0833, West: 36.6667, Region: "nairobi"},
	}
	container := &provider.Container{
		Config:                 cfg,
		CampaignRepo:           campaignRepo,
		ProductRepo:            productRepo,
		RedemptionTokenRepo:    repository.NewRedemptionTokenRepository(db),
		FeedbackRepo:           repository.NewFeedbackRepository(db),
		RewardRepo:             repository.NewRewardRepository(db),
		PaymentTransactionRepo: repository.NewPaymentTransactionRepository(db),
	}
	container.FeedbackValidator = service.NewFeedbackValidator(cfg.Geofence)
	container.QRService = service.NewQRService(container.RedemptionTokenRepo, campaignRepo, cfg.QR)
	container.RedemptionService = service.NewRedemptionService(
		container.FeedbackValidator,
		container.RedemptionTokenRepo,
		campaignRepo,
		productRepo,
		container.FeedbackRepo,
		container.RewardRepo,
	)
	container.RewardService = service.NewRewardService(
		container.RewardRepo,
		container.PaymentTransactionRepo,
		container.FeedbackRepo,
		nil,
		nil,
		0,
	)
	return &publicFixture{db: db, handler: New(container), campaign: campaign, sku: sku}
}

func (f *publicFixture) issueToken(t *testing.T) (*models.RedemptionToken, string) {
	t.Helper()
	token, err := tokencodec.Generate()
	if err != nil {
		t.Fatalf("generate token failed: %v", err)
	}
	row := models.RedemptionToken{
		SKUID:      f.sku.ID,
		CampaignID: f.campaign.ID,
		TokenHash:  token.Hash,
		URL:        service.BuildScanURL("https://scan.example.com", f.campaign.ID, f.sku.ID, token.Raw),
	}
	if err := f.db.Create(&row).Error; err != nil {
		t.Fatalf("create token failed: %v", err)
	}
	return &row, token.Raw
}

func performJSON(t *testing.T, handler gin.HandlerFunc, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var payload []byte
	switch v := body.(type) {
	case string:
		payload = []byte(v)
	default:
		raw, err := json.Marshal(v)
		if err != nil {
			t.Fatalf("marshal body failed: %v", err)
		}
		payload = raw
	}
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	handler(c)
	return w
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	if w.Code != http.StatusOK {
		t.Fatalf("expected http 200, got %d", w.Code)
	}
	var env envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope failed: %v body=%s", err, w.Body.String())
	}
	return env
}
