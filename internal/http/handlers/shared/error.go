package shared

import (
	"errors"

	"github.com/scanpesa/internal/http/response"
	"github.com/scanpesa/internal/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RequestLog logger carrying the request_id
func RequestLog(c *gin.Context) *zap.SugaredLogger {
	if c == nil {
		return logger.S()
	}
	if requestID, ok := c.Get("request_id"); ok {
		if id, ok := requestID.(string); ok && id != "" {
			return logger.SW("request_id", id)
		}
	}
	return logger.S()
}

// RespondError writes the catalog message for key and logs err when present.
// err is never echoed to the caller.
func RespondError(c *gin.Context, code int, key string, err error) {
	message := Message(key)
	if err != nil {
		RequestLog(c).Errorw("handler_error",
			"code", code,
			"key", key,
			"message", message,
			"error", err,
		)
	}
	response.Error(c, code, message)
}

// MappedError maps a service sentinel onto a response code and message key
type MappedError struct {
	Target error
	Code   int
	Key    string
}

// RespondMappedError answers with the first matching rule, otherwise the fallback with err logged
func RespondMappedError(c *gin.Context, err error, rules []MappedError, fallbackCode int, fallbackKey string) {
	for _, rule := range rules {
		if errors.Is(err, rule.Target) {
			RespondError(c, rule.Code, rule.Key, nil)
			return
		}
	}
	RespondError(c, fallbackCode, fallbackKey, err)
}
