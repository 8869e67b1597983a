package service

import (
	"context"
	"encoding/base64"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/scanpesa/internal/cache"
	"github.com/scanpesa/internal/config"
	"github.com/scanpesa/internal/constants"
	"github.com/scanpesa/internal/logger"
	"github.com/scanpesa/internal/metrics"
	"github.com/scanpesa/internal/models"
	"github.com/scanpesa/internal/repository"
	"github.com/scanpesa/internal/tokencodec"

	qrcode "github.com/skip2/go-qrcode"
)

const pngDataURLPrefix = "data:image/png;base64,"

// QRService issues, renders and administers redemption codes
type QRService struct {
	tokenRepo    repository.RedemptionTokenRepository
	campaignRepo repository.CampaignRepository
	cfg          config.QRConfig
	now          func() time.Time
}

// QRCodeRef a persisted code as returned after generation; the raw token only lives in URL
type QRCodeRef struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// QRGenerationResult per-variant generation outcome
type QRGenerationResult struct {
	SKUID          string      `json:"sku_id"`
	TotalGenerated int         `json:"total_generated"`
	Errors         []string    `json:"errors"`
	BatchNumber    int         `json:"batch_number"`
	QRCodes        []QRCodeRef `json:"qr_codes"`
}

// QRPreview one preview code with its rendered image
type QRPreview struct {
	SKUID string `json:"sku_id"`
	ID    string `json:"id"`
	URL   string `json:"url"`
	Image string `json:"image"`
}

// QRCodeDetail single code with image rendered on demand
type QRCodeDetail struct {
	Token *models.RedemptionToken `json:"qr_code"`
	Image string                  `json:"image"`
}

// QRListInput admin listing input
type QRListInput struct {
	CampaignID string
	SKUID      string
	IsUsed     *bool
	Page       int
	PageSize   int
}

// NewQRService creates the QR service
func NewQRService(tokenRepo repository.RedemptionTokenRepository, campaignRepo repository.CampaignRepository, cfg config.QRConfig) *QRService {
	if cfg.TotalCodes <= 0 {
		cfg.TotalCodes = constants.QRTotalCodesDefault
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = constants.QRBatchSizeDefault
	}
	if cfg.ImageSize <= 0 {
		cfg.ImageSize = constants.QRImageSizeDefault
	}
	return &QRService{
		tokenRepo:    tokenRepo,
		campaignRepo: campaignRepo,
		cfg:          cfg,
		now:          time.Now,
	}
}

// BuildScanURL scan target embedded in every code
func BuildScanURL(baseURL, campaignID, skuID, rawToken string) string {
	return fmt.Sprintf("%s/feedback?campaign=%s&s=%s&t=%s&qr=true",
		baseURL,
		url.QueryEscape(campaignID),
		url.QueryEscape(skuID),
		url.QueryEscape(rawToken),
	)
}

func (s *QRService) normalizeBaseURL(raw string) (string, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		value = strings.TrimSpace(s.cfg.DefaultBaseURL)
	}
	parsed, err := url.Parse(value)
	if err != nil || parsed.Host == "" || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return "", ErrBaseURLInvalid
	}
	return strings.TrimRight(value, "/"), nil
}

func (s *QRService) campaignSKUs(campaignID string) ([]models.ProductSKU, error) {
	campaign, err := s.campaignRepo.GetByID(campaignID)
	if err != nil {
		return nil, ErrQRFetchFailed
	}
	if campaign == nil {
		return nil, ErrCampaignNotFound
	}
	products, err := s.campaignRepo.ListProductsWithSKUs(campaignID)
	if err != nil {
		return nil, ErrQRFetchFailed
	}
	if len(products) == 0 {
		return nil, ErrQRNoProducts
	}
	skus := make([]models.ProductSKU, 0)
	for _, product := range products {
		skus = append(skus, product.SKUs...)
	}
	if len(skus) == 0 {
		return nil, ErrQRNoVariants
	}
	return skus, nil
}

// GenerateForCampaign spreads the configured code total evenly across every variant of the campaign.
// Batch failures are collected per variant and never stop the run.
func (s *QRService) GenerateForCampaign(ctx context.Context, campaignID, baseURL string) ([]QRGenerationResult, error) {
	campaignID = strings.TrimSpace(campaignID)
	if campaignID == "" {
		return nil, ErrCampaignNotFound
	}
	base, err := s.normalizeBaseURL(baseURL)
	if err != nil {
		return nil, err
	}
	skus, err := s.campaignSKUs(campaignID)
	if err != nil {
		return nil, err
	}

	perVariant := s.cfg.TotalCodes / len(skus)
	if perVariant < 1 {
		perVariant = 1
	}

	results := make([]QRGenerationResult, 0, len(skus))
	generated := 0
	for _, sku := range skus {
		result := s.generateForSKU(campaignID, sku.ID, base, perVariant)
		generated += result.TotalGenerated
		results = append(results, result)
	}

	metrics.QRCodesGeneratedTotal.WithLabelValues("batch").Add(float64(generated))
	if err := cache.InvalidateQRStats(ctx, campaignID); err != nil {
		logger.Warnw("qr_stats_cache_invalidate_failed", "campaign_id", campaignID, "error", err)
	}
	logger.Infow("qr_codes_generated",
		"campaign_id", campaignID,
		"variants", len(skus),
		"per_variant", perVariant,
		"generated", generated,
	)
	if generated == 0 {
		return results, ErrQRNothingGenerated
	}
	return results, nil
}

func (s *QRService) generateForSKU(campaignID, skuID, baseURL string, count int) QRGenerationResult {
	result := QRGenerationResult{
		SKUID:   skuID,
		Errors:  []string{},
		QRCodes: make([]QRCodeRef, 0, count),
	}
	last, err := s.tokenRepo.MaxBatchNumber(campaignID, skuID)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("resolve batch number: %v", err))
		return result
	}
	result.BatchNumber = last + 1

	for start, chunk := 0, 1; start < count; start, chunk = start+s.cfg.BatchSize, chunk+1 {
		size := s.cfg.BatchSize
		if remaining := count - start; remaining < size {
			size = remaining
		}
		tokens, err := s.mintTokens(campaignID, skuID, baseURL, result.BatchNumber, size)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("batch %d: %v", chunk, err))
			continue
		}
		if err := s.tokenRepo.CreateBatch(tokens); err != nil {
			logger.Warnw("qr_batch_insert_failed", "campaign_id", campaignID, "sku_id", skuID, "chunk", chunk, "error", err)
			result.Errors = append(result.Errors, fmt.Sprintf("batch %d: insert failed", chunk))
			continue
		}
		for _, token := range tokens {
			result.QRCodes = append(result.QRCodes, QRCodeRef{ID: token.ID, URL: token.URL})
		}
		result.TotalGenerated += len(tokens)
	}
	return result
}

func (s *QRService) mintTokens(campaignID, skuID, baseURL string, batchNumber, size int) ([]models.RedemptionToken, error) {
	tokens := make([]models.RedemptionToken, 0, size)
	for i := 0; i < size; i++ {
		token, err := tokencodec.Generate()
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, models.RedemptionToken{
			SKUID:       skuID,
			CampaignID:  campaignID,
			TokenHash:   token.Hash,
			URL:         BuildScanURL(baseURL, campaignID, skuID, token.Raw),
			BatchNumber: batchNumber,
		})
	}
	return tokens, nil
}

// Preview issues one code per variant under the reserved preview batch and renders it immediately
func (s *QRService) Preview(ctx context.Context, campaignID, baseURL string) ([]QRPreview, error) {
	campaignID = strings.TrimSpace(campaignID)
	if campaignID == "" {
		return nil, ErrCampaignNotFound
	}
	base, err := s.normalizeBaseURL(baseURL)
	if err != nil {
		return nil, err
	}
	skus, err := s.campaignSKUs(campaignID)
	if err != nil {
		return nil, err
	}

	previews := make([]QRPreview, 0, len(skus))
	for _, sku := range skus {
		tokens, err := s.mintTokens(campaignID, sku.ID, base, models.PreviewBatchNumber, 1)
		if err != nil {
			return nil, ErrQRRenderFailed
		}
		if err := s.tokenRepo.CreateBatch(tokens); err != nil {
			return nil, ErrQRFetchFailed
		}
		image, err := s.RenderDataURL(tokens[0].URL)
		if err != nil {
			return nil, err
		}
		previews = append(previews, QRPreview{
			SKUID: sku.ID,
			ID:    tokens[0].ID,
			URL:   tokens[0].URL,
			Image: image,
		})
	}
	metrics.QRCodesGeneratedTotal.WithLabelValues("preview").Add(float64(len(previews)))
	if err := cache.InvalidateQRStats(ctx, campaignID); err != nil {
		logger.Warnw("qr_stats_cache_invalidate_failed", "campaign_id", campaignID, "error", err)
	}
	return previews, nil
}

// RenderImage draws the PNG for a stored scan URL
func (s *QRService) RenderImage(scanURL string) ([]byte, error) {
	if strings.TrimSpace(scanURL) == "" {
		return nil, ErrQRRenderFailed
	}
	png, err := qrcode.Encode(scanURL, qrcode.High, s.cfg.ImageSize)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrQRRenderFailed, err)
	}
	return png, nil
}

// RenderDataURL RenderImage as an inline data URL
func (s *QRService) RenderDataURL(scanURL string) (string, error) {
	png, err := s.RenderImage(scanURL)
	if err != nil {
		return "", err
	}
	return pngDataURLPrefix + base64.StdEncoding.EncodeToString(png), nil
}

// Verify standalone scan validation: true only for the caller that flips the code to used
func (s *QRService) Verify(ctx context.Context, identifier string, location *models.Location) (bool, error) {
	token, err := resolveToken(s.tokenRepo, identifier)
	if err != nil {
		return false, ErrQRFetchFailed
	}
	if token == nil || token.IsUsed {
		return false, nil
	}
	claimed, err := s.tokenRepo.Claim(token.ID, "", location, s.now())
	if err != nil {
		return false, ErrQRFetchFailed
	}
	if claimed {
		if err := cache.InvalidateQRStats(ctx, token.CampaignID); err != nil {
			logger.Warnw("qr_stats_cache_invalidate_failed", "campaign_id", token.CampaignID, "error", err)
		}
		logger.Infow("qr_code_verified", "qr_id", token.ID, "token_hash", logger.HashPrefix(token.TokenHash))
	}
	return claimed, nil
}

// List paginated listing of a campaign's ledger
func (s *QRService) List(input QRListInput) ([]models.RedemptionToken, int64, int, int, error) {
	page := input.Page
	if page < 1 {
		page = 1
	}
	pageSize := input.PageSize
	if pageSize < 1 {
		pageSize = constants.QRListPageSize
	}
	if pageSize > constants.QRListMaxPageSize {
		pageSize = constants.QRListMaxPageSize
	}
	tokens, total, err := s.tokenRepo.List(repository.RedemptionTokenListFilter{
		Page:       page,
		PageSize:   pageSize,
		CampaignID: input.CampaignID,
		SKUID:      input.SKUID,
		IsUsed:     input.IsUsed,
	})
	if err != nil {
		return nil, 0, page, pageSize, ErrQRFetchFailed
	}
	return tokens, total, page, pageSize, nil
}

// Get single code plus its rendered image
func (s *QRService) Get(id string) (*QRCodeDetail, error) {
	token, err := s.GetToken(id)
	if err != nil {
		return nil, err
	}
	image, err := s.RenderDataURL(token.URL)
	if err != nil {
		return nil, err
	}
	return &QRCodeDetail{Token: token, Image: image}, nil
}

// GetToken single code by id
func (s *QRService) GetToken(id string) (*models.RedemptionToken, error) {
	token, err := s.tokenRepo.GetByID(id)
	if err != nil {
		return nil, ErrQRFetchFailed
	}
	if token == nil {
		return nil, ErrNotFound
	}
	return token, nil
}

// Stats usage counters, served from redis for a short TTL when available
func (s *QRService) Stats(ctx context.Context, campaignID string) (*repository.RedemptionTokenStats, error) {
	key := cache.QRStatsKey(campaignID)
	var cached repository.RedemptionTokenStats
	if hit, err := cache.GetJSON(ctx, key, &cached); err == nil && hit {
		return &cached, nil
	}
	stats, err := s.tokenRepo.Stats(campaignID)
	if err != nil {
		return nil, ErrQRFetchFailed
	}
	if ttl := time.Duration(s.cfg.StatsCacheTTLSeconds) * time.Second; ttl > 0 {
		if err := cache.SetJSON(ctx, key, stats, ttl); err != nil {
			logger.Warnw("qr_stats_cache_set_failed", "campaign_id", campaignID, "error", err)
		}
	}
	return stats, nil
}

// Export serialises a campaign's ledger as csv or json
func (s *QRService) Export(campaignID, format string) ([]byte, string, error) {
	normalizedFormat := strings.TrimSpace(strings.ToLower(format))
	if normalizedFormat == "" {
		normalizedFormat = constants.ExportFormatCSV
	}
	if normalizedFormat != constants.ExportFormatCSV && normalizedFormat != constants.ExportFormatJSON {
		return nil, "", ErrExportFormatInvalid
	}
	tokens, err := s.tokenRepo.ListAll(repository.RedemptionTokenListFilter{CampaignID: campaignID})
	if err != nil {
		return nil, "", ErrQRFetchFailed
	}

	if normalizedFormat == constants.ExportFormatJSON {
		body, err := json.Marshal(tokens)
		if err != nil {
			return nil, "", ErrQRFetchFailed
		}
		return body, "application/json; charset=utf-8", nil
	}

	builder := &strings.Builder{}
	writer := csv.NewWriter(builder)
	if err := writer.Write([]string{"QR ID", "URL", "SKU ID", "Status", "Used At", "Region", "Created At"}); err != nil {
		return nil, "", ErrQRFetchFailed
	}
	for _, token := range tokens {
		status := "Unused"
		if token.IsUsed {
			status = "Used"
		}
		usedAt := ""
		if token.UsedAt != nil {
			usedAt = token.UsedAt.Format(time.RFC3339)
		}
		region := ""
		if token.Location != nil {
			region = token.Location.Region
		}
		record := []string{
			token.ID,
			token.URL,
			token.SKUID,
			status,
			usedAt,
			region,
			token.CreatedAt.Format(time.RFC3339),
		}
		if err := writer.Write(record); err != nil {
			return nil, "", ErrQRFetchFailed
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, "", ErrQRFetchFailed
	}
	return []byte(builder.String()), "text/csv; charset=utf-8", nil
}

// BulkDelete removes the listed codes; redeemed codes are kept
func (s *QRService) BulkDelete(ctx context.Context, ids []string) (int64, error) {
	normalized := normalizeIDs(ids)
	if len(normalized) == 0 {
		return 0, ErrQRIDsRequired
	}
	deleted, err := s.tokenRepo.DeleteUnusedByIDs(normalized)
	if err != nil {
		return 0, ErrQRFetchFailed
	}
	if err := cache.Del(ctx, cache.QRStatsKey("")); err != nil {
		logger.Warnw("qr_stats_cache_invalidate_failed", "error", err)
	}
	logger.Infow("qr_codes_deleted", "requested", len(normalized), "deleted", deleted)
	return deleted, nil
}
