package public

import (
	"io"
	"net/http"

	"github.com/scanpesa/internal/payment/mpesa"

	"github.com/gin-gonic/gin"
)

const callbackBodyLimit = 64 << 10

// MpesaResult B2C result callback; every outcome is acknowledged,
// including a malformed body
func (h *Handler) MpesaResult(c *gin.Context) {
	body, err := readCallbackBody(c)
	if err != nil {
		requestLog(c).Warnw("mpesa_result_read_failed", "client_ip", c.ClientIP(), "error", err)
		c.JSON(http.StatusOK, mpesa.NewAck("Accepted"))
		return
	}
	callback, err := mpesa.ParseResultCallback(body)
	if err != nil {
		requestLog(c).Warnw("mpesa_result_invalid", "client_ip", c.ClientIP(), "error", err)
		c.JSON(http.StatusOK, mpesa.NewAck("Accepted"))
		return
	}
	applied, err := h.RewardService.HandlePaymentResult(c.Request.Context(), callback)
	if err != nil {
		requestLog(c).Errorw("mpesa_result_apply_failed", "external_ids", callback.ExternalIDs(), "error", err)
	} else {
		requestLog(c).Infow("mpesa_result_received",
			"external_ids", callback.ExternalIDs(),
			"result_code", callback.Result.ResultCode.String(),
			"applied", applied,
		)
	}
	c.JSON(http.StatusOK, mpesa.NewAck("Accepted"))
}

// MpesaTimeout B2C queue timeout callback
func (h *Handler) MpesaTimeout(c *gin.Context) {
	body, err := readCallbackBody(c)
	if err != nil {
		requestLog(c).Warnw("mpesa_timeout_read_failed", "client_ip", c.ClientIP(), "error", err)
		c.JSON(http.StatusOK, mpesa.NewAck("Timeout acknowledged"))
		return
	}
	callback, err := mpesa.ParseTimeoutCallback(body)
	if err != nil {
		requestLog(c).Warnw("mpesa_timeout_invalid", "client_ip", c.ClientIP(), "error", err)
		c.JSON(http.StatusOK, mpesa.NewAck("Timeout acknowledged"))
		return
	}
	applied, err := h.RewardService.HandlePaymentTimeout(c.Request.Context(), callback)
	if err != nil {
		requestLog(c).Errorw("mpesa_timeout_apply_failed", "external_ids", callback.ExternalIDs(), "error", err)
	} else {
		requestLog(c).Infow("mpesa_timeout_received", "external_ids", callback.ExternalIDs(), "applied", applied)
	}
	c.JSON(http.StatusOK, mpesa.NewAck("Timeout acknowledged"))
}

// MpesaStatusResult transaction status query result
func (h *Handler) MpesaStatusResult(c *gin.Context) {
	body, err := readCallbackBody(c)
	if err != nil {
		requestLog(c).Warnw("mpesa_status_result_read_failed", "client_ip", c.ClientIP(), "error", err)
		c.JSON(http.StatusOK, mpesa.NewAck("Status update received"))
		return
	}
	callback, err := mpesa.ParseStatusResultCallback(body)
	if err != nil {
		requestLog(c).Warnw("mpesa_status_result_invalid", "client_ip", c.ClientIP(), "error", err)
		c.JSON(http.StatusOK, mpesa.NewAck("Status update received"))
		return
	}
	applied, err := h.RewardService.HandleStatusResult(c.Request.Context(), callback)
	if err != nil {
		requestLog(c).Errorw("mpesa_status_result_apply_failed", "query_ids", callback.QueryIDs(), "error", err)
	} else {
		requestLog(c).Infow("mpesa_status_result_received",
			"query_ids", callback.QueryIDs(),
			"result_code", callback.Result.ResultCode.String(),
			"transaction_status", callback.Parameter("TransactionStatus"),
			"applied", applied,
		)
	}
	c.JSON(http.StatusOK, mpesa.NewAck("Status update received"))
}

// MpesaStatusTimeout transaction status query timeout
func (h *Handler) MpesaStatusTimeout(c *gin.Context) {
	body, err := readCallbackBody(c)
	if err != nil {
		requestLog(c).Warnw("mpesa_status_timeout_read_failed", "client_ip", c.ClientIP(), "error", err)
		c.JSON(http.StatusOK, mpesa.NewAck("Status timeout handled"))
		return
	}
	callback, err := mpesa.ParseTimeoutCallback(body)
	if err != nil {
		requestLog(c).Warnw("mpesa_status_timeout_invalid", "client_ip", c.ClientIP(), "error", err)
		c.JSON(http.StatusOK, mpesa.NewAck("Status timeout handled"))
		return
	}
	applied, err := h.RewardService.HandleStatusTimeout(c.Request.Context(), callback)
	if err != nil {
		requestLog(c).Errorw("mpesa_status_timeout_apply_failed", "external_ids", callback.ExternalIDs(), "error", err)
	} else {
		requestLog(c).Infow("mpesa_status_timeout_received", "external_ids", callback.ExternalIDs(), "applied", applied)
	}
	c.JSON(http.StatusOK, mpesa.NewAck("Status timeout handled"))
}

func readCallbackBody(c *gin.Context) ([]byte, error) {
	return io.ReadAll(io.LimitReader(c.Request.Body, callbackBodyLimit))
}
