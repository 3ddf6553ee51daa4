package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/recipe-ai/backend/internal/apperror"
)

// DefaultBodyLimit caps JSON and multipart bodies.
const DefaultBodyLimit int64 = 10 << 20

// BodyLimit rejects bodies larger than limit with 413.
func BodyLimit(limit int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > limit {
			abortWithError(c, &apperror.PayloadTooLargeError{Limit: limit})
			return
		}
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		}
		c.Next()
	}
}
