package app

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const AdminKeyHeader = "X-Admin-Key"

// AdminOnly admits requests carrying one of the configured admin keys.
// With no keys configured every admin request is refused.
func AdminOnly(keys []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		got := strings.TrimSpace(c.GetHeader(AdminKeyHeader))
		if got == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, H{"success": false, "errorKind": "UNAUTHORIZED", "message": "admin key required"})
			return
		}
		for _, k := range keys {
			if subtle.ConstantTimeCompare([]byte(got), []byte(k)) == 1 {
				c.Set("isAdmin", true)
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, H{"success": false, "errorKind": "FORBIDDEN", "message": "forbidden"})
	}
}
