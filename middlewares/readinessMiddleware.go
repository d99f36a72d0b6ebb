package middlewares

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const HealthPath = "/healthz"

// ReadinessMiddleware always answers the health check, and returns 503 for
// everything else until ready reports true.
func ReadinessMiddleware(ready func() bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.URL.Path == HealthPath {
			c.Status(http.StatusNoContent)
			c.Abort()
			return
		}
		if !ready() {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "service not ready"})
			return
		}
		c.Next()
	}
}
