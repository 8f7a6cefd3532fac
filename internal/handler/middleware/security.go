package middleware

import "github.com/gin-gonic/gin"

// SecurityHeaders sets the response headers every form endpoint must carry.
func SecurityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Next()
	}
}
