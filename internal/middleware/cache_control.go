package middleware

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
)

// PublicCache marks responses as cacheable by browsers and proxies for maxAge.
func PublicCache(maxAge time.Duration) gin.HandlerFunc {
	value := fmt.Sprintf("public, max-age=%d", int(maxAge.Seconds()))
	return func(c *gin.Context) {
		c.Header("Cache-Control", value)
		c.Next()
	}
}

// PrivateCache lets the subscriber's own client cache for maxAge but keeps shared caches out.
// Premium feeds use it because their URL carries the subscriber token.
func PrivateCache(maxAge time.Duration) gin.HandlerFunc {
	value := fmt.Sprintf("private, max-age=%d", int(maxAge.Seconds()))
	return func(c *gin.Context) {
		c.Header("Cache-Control", value)
		c.Next()
	}
}

// NoCache forbids caching so calendar clients always refetch. County feeds use it together
// with a wildcard CORS origin because calendar apps subscribe from anywhere.
func NoCache(allowAnyOrigin bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Cache-Control", "no-cache, no-store, must-revalidate")
		c.Header("Pragma", "no-cache")
		c.Header("Expires", "0")
		if allowAnyOrigin {
			c.Header("Access-Control-Allow-Origin", "*")
		}
		c.Next()
	}
}
