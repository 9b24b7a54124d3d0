package tenant

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/gsarma/codetester/internal/store"
)

// ContextKey is the gin context key holding the authenticated *store.Tenant.
const ContextKey = "tenant"

// AuthMiddleware validates the Bearer API key and sets the tenant in context.
func (s *Service) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		rawKey, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
		if !ok || rawKey == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing API key"})
			return
		}

		t, err := s.GetByAPIKey(c.Request.Context(), rawKey)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid API key"})
			return
		}

		c.Set(ContextKey, t)
		c.Next()
	}
}

// FromContext retrieves the authenticated tenant from the Gin context.
func FromContext(c *gin.Context) *store.Tenant {
	t, _ := c.Get(ContextKey)
	tenant, _ := t.(*store.Tenant)
	return tenant
}
