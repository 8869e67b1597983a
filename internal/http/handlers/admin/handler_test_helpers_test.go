package admin

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

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

type adminFixture struct {
	db       *gorm.DB
	handler  *Handler
	router   *gin.Engine
	campaign *models.Campaign
	skus     []*models.ProductSKU
}

type envelope struct {
	StatusCode int             `json:"status_code"`
	Msg        string          `json:"msg"`
	Data       json.RawMessage `json:"data"`
	Pagination *struct {
		Page     int   `json:"page"`
		PageSize int   `json:"page_size"`
		Total    int64 `json:"total"`
	} `json:"pagination"`
}

func setupAdminFixture(t *testing.T) *adminFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:admin_%s_%d?mode=memory&cache=shared", name, time.Now().UnixNano())
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
	skus := []*models.ProductSKU{
		{ProductID: product.ID, Weight: "340g", RewardAmount: models.NewMoneyFromInt(20)},
		{ProductID: product.ID, Weight: "500g", RewardAmount: models.NewMoneyFromInt(30)},
	}
	for _, sku := range skus {
		if err := productRepo.CreateSKU(sku); err != nil {
			t.Fatalf("create sku failed: %v", err)
		}
	}

	cfg := &config.Config{
		JWT: config.JWTConfig{SecretKey: "admin-handler-test-secret", ExpireHours: 1},
		QR:  config.QRConfig{TotalCodes: 6, BatchSize: 2, ImageSize: 128, DefaultBaseURL: "https://scan.example.com"},
	}
	container := &provider.Container{
		Config:                 cfg,
		AdminRepo:              repository.NewAdminRepository(db),
		CampaignRepo:           campaignRepo,
		ProductRepo:            productRepo,
		RedemptionTokenRepo:    repository.NewRedemptionTokenRepository(db),
		FeedbackRepo:           repository.NewFeedbackRepository(db),
		RewardRepo:             repository.NewRewardRepository(db),
		PaymentTransactionRepo: repository.NewPaymentTransactionRepository(db),
	}
	container.AuthService = service.NewAuthService(cfg.JWT, container.AdminRepo)
	container.QRService = service.NewQRService(container.RedemptionTokenRepo, campaignRepo, cfg.QR)
	container.FeedbackService = service.NewFeedbackService(container.FeedbackRepo)
	container.RewardService = service.NewRewardService(
		container.RewardRepo,
		container.PaymentTransactionRepo,
		container.FeedbackRepo,
		nil,
		nil,
		0,
	)
	container.AnalyticsService = service.NewAnalyticsService(container.FeedbackRepo, container.RewardRepo)

	h := New(container)
	r := gin.New()
	r.POST("/admin/login", h.Login)
	r.POST("/admin/qr-codes/generate", h.GenerateQRCodes)
	r.POST("/admin/qr-codes/preview", h.PreviewQRCodes)
	r.GET("/admin/qr-codes", h.ListQRCodes)
	r.GET("/admin/qr-codes/export", h.ExportQRCodes)
	r.POST("/admin/qr-codes/bulk-delete", h.BulkDeleteQRCodes)
	r.GET("/admin/qr-codes/:id", h.GetQRCode)
	r.GET("/admin/qr-codes/:id/image", h.GetQRCodeImage)
	r.GET("/admin/feedback", h.ListFeedback)
	r.GET("/admin/rewards", h.ListRewards)
	r.POST("/admin/rewards/dispatch", h.DispatchRewards)
	r.POST("/admin/rewards/dispatch-async", h.DispatchRewardsAsync)
	r.POST("/admin/rewards/:id/query-status", h.QueryRewardStatus)
	r.GET("/admin/analytics", h.GetAnalytics)

	return &adminFixture{db: db, handler: h, router: r, campaign: campaign, skus: skus}
}

func (f *adminFixture) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body == nil {
		reader = bytes.NewReader(nil)
	} else {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body failed: %v", err)
		}
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
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

// seedReward stores one feedback row with its reward
func (f *adminFixture) seedReward(t *testing.T, phone string, rating int, status string) *models.Reward {
	t.Helper()
	feedback := &models.Feedback{
		CampaignID:    f.campaign.ID,
		SKUID:         f.skus[1].ID,
		TokenID:       "token-" + phone,
		CustomerPhone: phone,
		Rating:        rating,
		Sentiment:     models.SentimentForRating(rating),
		Verified:      true,
	}
	if err := f.db.Create(feedback).Error; err != nil {
		t.Fatalf("create feedback failed: %v", err)
	}
	reward := &models.Reward{
		FeedbackID:    feedback.ID,
		CustomerPhone: phone,
		Amount:        f.skus[1].RewardAmount,
		RewardName:    "KES 30 M-Pesa",
		Status:        status,
	}
	if err := f.db.Create(reward).Error; err != nil {
		t.Fatalf("create reward failed: %v", err)
	}
	return reward
}
