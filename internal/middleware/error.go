package middleware

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/pageza/recipe-ai/backend/internal/apperror"
	"github.com/pageza/recipe-ai/backend/internal/logging"
	"github.com/pageza/recipe-ai/backend/internal/types"
)

// ErrorHandler turns the last error recorded with c.Error into the error
// envelope. Apart from Timeout, handlers and middleware never write error
// bodies themselves.
func ErrorHandler(production bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(productionKey, production)
		c.Next()

		last := c.Errors.Last()
		if last == nil || c.Writer.Written() {
			return
		}

		appErr := apperror.Classify(last.Err)
		resp := errorResponse(c, appErr, last.Err, production)

		log := logging.FromContext(c).WithFields(logrus.Fields{
			"url":        c.Request.URL.String(),
			"client_ip":  c.ClientIP(),
			"user_agent": c.Request.UserAgent(),
			"error_type": appErr.Kind(),
		}).WithError(last.Err)
		if appErr.Status() >= 500 {
			if !production {
				log = log.WithField("stack", resp.Error.Stack)
			}
			log.Error("request failed")
		} else {
			log.Warn("request rejected")
		}

		c.JSON(appErr.Status(), resp)
	}
}

const productionKey = "errors.production"

// errorResponse builds the envelope for appErr.
func errorResponse(c *gin.Context, appErr apperror.Error, raw error, production bool) *types.Response {
	body := &types.ErrorBody{
		Type:      string(appErr.Kind()),
		Timestamp: time.Now().UTC(),
		Path:      c.Request.URL.Path,
		Method:    c.Request.Method,
		RequestID: GetRequestID(c),
	}
	if !production {
		body.Stack = stackOf(appErr, raw)
		body.Details = apperror.Details(appErr)
	}

	resp := &types.Response{
		Success: false,
		Message: apperror.PublicMessage(appErr, production),
		Error:   body,
	}
	if rl, ok := appErr.(*apperror.RateLimitError); ok {
		retry := rl.RetryAfter
		resp.RetryAfter = &retry
	}
	return resp
}

func stackOf(appErr apperror.Error, raw error) string {
	if ie, ok := appErr.(*apperror.InternalError); ok && ie.Stack != "" {
		return ie.Stack
	}
	return fmt.Sprintf("%+v", raw)
}

// abortWithError records err for ErrorHandler and stops the chain.
func abortWithError(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}

// NotFound answers unmatched routes.
func NotFound() gin.HandlerFunc {
	return func(c *gin.Context) {
		abortWithError(c, &apperror.NotFoundError{Resource: "Route", ID: c.Request.URL.Path})
	}
}
