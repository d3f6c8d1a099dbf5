package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/guidari-center/guidari-backend/internal/clinic/domain"
)

// Middleware rejects requests without a valid bearer token and stores the
// caller's identity in the gin context.
func Middleware(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		raw, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(raw) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"ok": false, "error": "missing bearer token"})
			return
		}

		claims, err := svc.Verify(strings.TrimSpace(raw))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"ok": false, "error": "invalid token"})
			return
		}

		c.Set("user_id", claims.Subject)
		c.Set("user_role", claims.Role)
		c.Next()
	}
}

// RequireAdmin gates admin-only routes. It must run after Middleware.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString("user_role") != string(domain.RoleAdmin) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"ok": false, "error": "admin only"})
			return
		}
		c.Next()
	}
}

// CallerID returns the authenticated staff ID stored by Middleware.
func CallerID(c *gin.Context) string {
	return c.GetString("user_id")
}

// CallerIsAdmin reports whether the caller holds the administrator role.
func CallerIsAdmin(c *gin.Context) bool {
	return c.GetString("user_role") == string(domain.RoleAdmin)
}
