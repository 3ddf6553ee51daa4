package logging

import (
	"context"
	"io"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type ctxKeyLog struct{}

// ContextKey is the gin context key holding the request-scoped logger.
const ContextKey = "logger"

// New builds the process logger. Production gets JSON output.
func New(level string, production bool) *logrus.Logger {
	return NewWithOutput(os.Stdout, level, production)
}

// NewWithOutput is New writing to out.
func NewWithOutput(out io.Writer, level string, production bool) *logrus.Logger {
	log := logrus.New()
	log.Out = out
	if production {
		log.Formatter = &logrus.JSONFormatter{
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyTime:  "timestamp",
				logrus.FieldKeyLevel: "severity",
				logrus.FieldKeyMsg:   "message",
			},
		}
	} else {
		log.Formatter = &logrus.TextFormatter{FullTimestamp: true}
	}

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	log.Level = lvl
	return log
}

// WithLogger stores log in ctx.
func WithLogger(ctx context.Context, log logrus.FieldLogger) context.Context {
	return context.WithValue(ctx, ctxKeyLog{}, log)
}

// FromContext returns the request-scoped logger, falling back to the
// standard logger.
func FromContext(ctx context.Context) logrus.FieldLogger {
	if c, ok := ctx.(*gin.Context); ok {
		if v, exists := c.Get(ContextKey); exists {
			if log, ok := v.(logrus.FieldLogger); ok {
				return log
			}
		}
		if c.Request == nil {
			return logrus.StandardLogger()
		}
		ctx = c.Request.Context()
	}
	if log, ok := ctx.Value(ctxKeyLog{}).(logrus.FieldLogger); ok {
		return log
	}
	return logrus.StandardLogger()
}

var redactedKeys = map[string]struct{}{
	"password":        {},
	"currentPassword": {},
	"newPassword":     {},
}

// Redact returns a copy of v with credential fields replaced.
func Redact(v interface{}) interface{} {
	switch t := v.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(t))
		for k, val := range t {
			if _, ok := redactedKeys[k]; ok {
				out[k] = "[REDACTED]"
				continue
			}
			out[k] = Redact(val)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(t))
		for i, val := range t {
			out[i] = Redact(val)
		}
		return out
	default:
		return v
	}
}
