package middleware

import (
	"fmt"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"github.com/pageza/recipe-ai/backend/internal/apperror"
	"github.com/pageza/recipe-ai/backend/internal/logging"
)

// Recovery converts a handler panic into an internal error.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				panicRecoveries.Inc()
				stack := string(debug.Stack())
				logging.FromContext(c).WithField("panic", r).Error("panic recovered")

				cause, ok := r.(error)
				if !ok {
					cause = fmt.Errorf("%v", r)
				}
				abortWithError(c, &apperror.InternalError{Cause: cause, Stack: stack})
			}
		}()
		c.Next()
	}
}
