package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
)

// RequireDispatchSecret authenticates the delivery provider's webhook via the
// X-Dispatch-Secret shared-secret header. Rejection happens before any state
// is read.
func RequireDispatchSecret(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		provided := c.GetHeader("X-Dispatch-Secret")
		if provided == "" || subtle.ConstantTimeCompare([]byte(provided), []byte(secret)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or missing webhook secret"})
			return
		}
		c.Next()
	}
}
