package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// TenantHeader carries the authenticated user id set by the auth proxy.
const TenantHeader = "X-Tenant-ID"

const tenantKey = "tenant"

// Tenant rejects requests without a valid tenant id before any handler
// touches the body.
func Tenant() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := strings.TrimSpace(c.GetHeader(TenantHeader))
		if raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing tenant"})
			return
		}
		id, err := uuid.Parse(raw)
		if err != nil || id == uuid.Nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid tenant"})
			return
		}
		c.Set(tenantKey, id)
		c.Next()
	}
}

// TenantID returns the id stored by Tenant.
func TenantID(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(tenantKey)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}
