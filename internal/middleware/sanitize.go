package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"

	"github.com/pageza/recipe-ai/backend/internal/apperror"
	"github.com/pageza/recipe-ai/backend/internal/logging"
)

// unsafeKey reports keys that could be read as query operators.
func unsafeKey(k string) bool {
	return strings.HasPrefix(k, "$") || strings.Contains(k, ".")
}

// SanitizeValue drops unsafe keys from every object in v, recursively.
func SanitizeValue(v interface{}) interface{} {
	switch t := v.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(t))
		for k, val := range t {
			if unsafeKey(k) {
				continue
			}
			out[k] = SanitizeValue(val)
		}
		return out
	case []interface{}:
		for i, val := range t {
			t[i] = SanitizeValue(val)
		}
		return t
	default:
		return v
	}
}

// Sanitize strips unsafe keys from the query string, route params and JSON
// bodies. Unparsable JSON is passed through for binding to reject.
func Sanitize() gin.HandlerFunc {
	return func(c *gin.Context) {
		sanitizeQuery(c)

		params := c.Params[:0]
		for _, p := range c.Params {
			if !unsafeKey(p.Key) {
				params = append(params, p)
			}
		}
		c.Params = params

		if err := sanitizeBody(c); err != nil {
			abortWithError(c, err)
			return
		}
		c.Next()
	}
}

func sanitizeQuery(c *gin.Context) {
	if c.Request.URL.RawQuery == "" {
		return
	}
	query := c.Request.URL.Query()
	dirty := false
	for k := range query {
		if unsafeKey(k) {
			query.Del(k)
			dirty = true
		}
	}
	if dirty {
		c.Request.URL.RawQuery = query.Encode()
	}
}

func sanitizeBody(c *gin.Context) error {
	if c.Request.Body == nil {
		return nil
	}
	mediaType, _, _ := mime.ParseMediaType(c.GetHeader("Content-Type"))
	if mediaType != "application/json" {
		return nil
	}

	raw, err := io.ReadAll(c.Request.Body)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return err
		}
		return &apperror.BadRequestError{Message: "Failed to read request body"}
	}
	_ = c.Request.Body.Close()

	body := raw
	if len(bytes.TrimSpace(raw)) > 0 {
		dec := json.NewDecoder(bytes.NewReader(raw))
		dec.UseNumber()
		var doc interface{}
		if dec.Decode(&doc) == nil {
			logging.FromContext(c).WithField("body", logging.Redact(doc)).Debug("request body")
			clean, err := json.Marshal(SanitizeValue(doc))
			if err != nil {
				return &apperror.BadRequestError{Message: "Request sanitization failed"}
			}
			body = clean
		}
	}

	c.Request.Body = io.NopCloser(bytes.NewReader(body))
	c.Request.ContentLength = int64(len(body))
	return nil
}
