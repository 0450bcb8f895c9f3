package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// SizeLimit caps request bodies. Dashboard forms are tiny; anything larger
// is rejected before it is parsed.
func SizeLimit(maxBodySize int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxBodySize {
			c.AbortWithStatus(http.StatusRequestEntityTooLarge)
			return
		}
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBodySize)
		}
		c.Next()
	}
}
