package shared

import (
	"strings"

	"github.com/gin-gonic/gin"
)

// Context keys set by the admin auth middleware
const (
	ContextAdminIDKey  = "admin_id"
	ContextUsernameKey = "username"
)

// AdminIdentity the signed-in admin behind a request
type AdminIdentity struct {
	ID       uint
	Username string
}

// SetAdmin stores the authenticated admin on the request context
func SetAdmin(c *gin.Context, id uint, username string) {
	c.Set(ContextAdminIDKey, id)
	c.Set(ContextUsernameKey, strings.TrimSpace(username))
}

// CurrentAdmin the admin set by the auth middleware; ok is false when the request is anonymous
func CurrentAdmin(c *gin.Context) (AdminIdentity, bool) {
	if c == nil {
		return AdminIdentity{}, false
	}
	id, ok := c.Get(ContextAdminIDKey)
	if !ok {
		return AdminIdentity{}, false
	}
	adminID, ok := id.(uint)
	if !ok || adminID == 0 {
		return AdminIdentity{}, false
	}
	return AdminIdentity{ID: adminID, Username: c.GetString(ContextUsernameKey)}, true
}
