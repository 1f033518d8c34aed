package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/parsakhaledi/paydar/internal/core/services"
)

// ContextUserIDKey is where AuthMiddleware leaves the authenticated user's
// id; handlers read it back through GetUserID.
const ContextUserIDKey = "userID"

const bearerPrefix = "Bearer "

// AuthMiddleware gates a route group on a signed bearer token. Requests
// without a valid token never reach the handler.
func AuthMiddleware(tokens *services.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, found := strings.CutPrefix(c.GetHeader("Authorization"), bearerPrefix)
		raw = strings.TrimSpace(raw)
		if !found || raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "bearer token required"})
			return
		}

		userID, err := tokens.ValidateToken(raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}

		c.Set(ContextUserIDKey, userID)
		c.Next()
	}
}

func GetUserID(c *gin.Context) (string, bool) {
	id, ok := c.Get(ContextUserIDKey)
	if !ok {
		return "", false
	}
	s, ok := id.(string)
	return s, ok
}
