package api

import (
	"net/http"
	"strings"

	"github.com/flyair/flyair-backend/internal/auth"
	"github.com/flyair/flyair-backend/internal/domain"
	"github.com/gin-gonic/gin"
)

const (
	ctxUsername = "username"
	ctxRole     = "role"
)

// AuthMiddleware validates the bearer access token and stores the principal
// in the request context for handlers to pick up.
func AuthMiddleware(tokens *auth.TokenIssuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, envelope{Success: false, Message: "missing bearer token"})
			return
		}

		claims, err := tokens.Parse(strings.TrimPrefix(header, "Bearer "), auth.TokenTypeAccess)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, envelope{Success: false, Message: "invalid token"})
			return
		}

		c.Set(ctxUsername, claims.Subject)
		c.Set(ctxRole, claims.Role)
		c.Next()
	}
}

// RequireAdmin must be chained after AuthMiddleware.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if role, ok := c.Get(ctxRole); !ok || role.(domain.Role) != domain.RoleAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, envelope{Success: false, Message: "admin access required"})
			return
		}
		c.Next()
	}
}

func currentUsername(c *gin.Context) string {
	if v, ok := c.Get(ctxUsername); ok {
		return v.(string)
	}
	return ""
}

func isAdmin(c *gin.Context) bool {
	role, ok := c.Get(ctxRole)
	return ok && role.(domain.Role) == domain.RoleAdmin
}
