package admin

import (
	handlershared "github.com/scanpesa/internal/http/handlers/shared"
	"github.com/scanpesa/internal/http/response"
	"github.com/scanpesa/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func requestLog(c *gin.Context) *zap.SugaredLogger {
	return handlershared.RequestLog(c)
}

func respondError(c *gin.Context, code int, key string, err error) {
	handlershared.RespondError(c, code, key, err)
}

var qrErrorRules = []handlershared.MappedError{
	{Target: service.ErrCampaignNotFound, Code: response.CodeNotFound, Key: "error.campaign_not_found"},
	{Target: service.ErrNotFound, Code: response.CodeNotFound, Key: "error.qr_not_found"},
	{Target: service.ErrQRNoProducts, Code: response.CodeBadRequest, Key: "error.qr_no_products"},
	{Target: service.ErrQRNoVariants, Code: response.CodeBadRequest, Key: "error.qr_no_variants"},
	{Target: service.ErrQRNothingGenerated, Code: response.CodeInternal, Key: "error.qr_nothing_generated"},
	{Target: service.ErrQRIDsRequired, Code: response.CodeBadRequest, Key: "error.qr_ids_required"},
	{Target: service.ErrBaseURLInvalid, Code: response.CodeBadRequest, Key: "error.base_url_invalid"},
	{Target: service.ErrExportFormatInvalid, Code: response.CodeBadRequest, Key: "error.export_format_invalid"},
	{Target: service.ErrQRRenderFailed, Code: response.CodeInternal, Key: "error.qr_render_failed"},
}

var rewardErrorRules = []handlershared.MappedError{
	{Target: service.ErrRewardIDsRequired, Code: response.CodeBadRequest, Key: "error.reward_ids_required"},
	{Target: service.ErrRewardStatusInvalid, Code: response.CodeBadRequest, Key: "error.reward_status_invalid"},
	{Target: service.ErrRewardNotFound, Code: response.CodeNotFound, Key: "error.reward_not_found"},
	{Target: service.ErrGatewayUnavailable, Code: response.CodeUnavailable, Key: "error.gateway_unavailable"},
	{Target: service.ErrQueueUnavailable, Code: response.CodeUnavailable, Key: "error.queue_unavailable"},
	{Target: service.ErrPaymentNotQueryable, Code: response.CodeConflict, Key: "error.payment_not_queryable"},
	{Target: service.ErrStatusQueryUnavailable, Code: response.CodeUnavailable, Key: "error.status_query_unavailable"},
	{Target: service.ErrStatusQueryFailed, Code: response.CodeBadGateway, Key: "error.status_query_failed"},
}

func respondQRError(c *gin.Context, err error) {
	handlershared.RespondMappedError(c, err, qrErrorRules, response.CodeInternal, "error.qr_fetch_failed")
}

func respondRewardError(c *gin.Context, err error, fallbackKey string) {
	handlershared.RespondMappedError(c, err, rewardErrorRules, response.CodeInternal, fallbackKey)
}
