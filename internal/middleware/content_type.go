package middleware

import (
	"mime"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/recipe-ai/backend/internal/apperror"
)

var allowedContentTypes = map[string]bool{
	"application/json":    true,
	"multipart/form-data": true,
}

// ContentType requires a JSON or multipart Content-Type on every write
// method, including requests without a body.
func ContentType() gin.HandlerFunc {
	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodPost, http.MethodPut, http.MethodPatch:
		default:
			c.Next()
			return
		}

		header := c.GetHeader("Content-Type")
		if header == "" {
			abortWithError(c, &apperror.BadRequestError{Message: "Content-Type header is required"})
			return
		}
		mediaType, _, err := mime.ParseMediaType(header)
		if err != nil || !allowedContentTypes[mediaType] {
			abortWithError(c, &apperror.UnsupportedMediaTypeError{ContentType: header})
			return
		}
		c.Next()
	}
}
