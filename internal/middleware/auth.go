package middleware

import (
	"crypto/subtle"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
)

// internalKeyHeader carries the shared key on service-to-service calls.
const internalKeyHeader = "X-Internal-API-Key"

// InternalAuthMiddleware guards the /internal surface. Only the storefront
// backend holds the shared key; shoppers never call these routes directly.
func InternalAuthMiddleware() gin.HandlerFunc {
	apiKey := os.Getenv("STOREFRONT_INTERNAL_API_KEY")
	if apiKey == "" {
		// Misconfiguration must not fail open
		return func(c *gin.Context) {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"error": "server misconfigured: STOREFRONT_INTERNAL_API_KEY not set",
			})
		}
	}
	expected := []byte(apiKey)

	return func(c *gin.Context) {
		presented := []byte(c.GetHeader(internalKeyHeader))
		if subtle.ConstantTimeCompare(presented, expected) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "unauthorized",
			})
			return
		}
		c.Next()
	}
}
