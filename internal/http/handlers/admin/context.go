package admin

import (
	handlershared "github.com/scanpesa/internal/http/handlers/shared"
	"github.com/scanpesa/internal/http/response"

	"github.com/gin-gonic/gin"
)

// currentAdmin answers 401 itself when the request carries no admin
func currentAdmin(c *gin.Context) (handlershared.AdminIdentity, bool) {
	identity, ok := handlershared.CurrentAdmin(c)
	if !ok {
		respondError(c, response.CodeUnauthorized, "error.unauthorized", nil)
		return handlershared.AdminIdentity{}, false
	}
	return identity, true
}

// auditFields admin id and username for audit log lines
func auditFields(c *gin.Context) []interface{} {
	identity, _ := handlershared.CurrentAdmin(c)
	return []interface{}{"admin_id", identity.ID, "admin_username", identity.Username}
}

func normalizePagination(page, pageSize int) (int, int) {
	return handlershared.NormalizePagination(page, pageSize, 20, 100)
}
