package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// loopbackOnly keeps the dashboard API local: it can ask the wallet to sign
// and send on the user's behalf.
func loopbackOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !isLoopbackRequest(c.Request) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{JSONKeyError: HTTPErrorForbiddenText})
			return
		}
		if !isSafeLocalHost(c.Request.Host) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{JSONKeyError: HTTPErrorForbiddenHost})
			return
		}
		c.Next()
	}
}

func allowOrigins(origins []string) []string {
	out := make([]string, 0, len(origins))
	for _, o := range origins {
		if n := normalizeOrigin(o); n != "" {
			out = append(out, n)
		}
	}
	return out
}
