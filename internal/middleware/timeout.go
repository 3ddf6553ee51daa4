package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pageza/recipe-ai/backend/internal/apperror"
	"github.com/pageza/recipe-ai/backend/internal/logging"
)

// TimeoutConfig sets the request deadline. Routes is keyed by the route
// template, e.g. "/api/recipes/generate".
type TimeoutConfig struct {
	Default time.Duration
	Routes  map[string]time.Duration
}

func (cfg TimeoutConfig) forRoute(path string) time.Duration {
	if d, ok := cfg.Routes[path]; ok {
		return d
	}
	return cfg.Default
}

// Timeout runs the rest of the chain against a buffered writer. When the
// deadline fires first, a single 408 envelope is written and flushed at
// once, and anything the handler writes afterwards is discarded.
//
// The middleware still waits for the handler before returning so the gin
// context is not recycled under it.
func Timeout(cfg TimeoutConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		d := cfg.forRoute(c.FullPath())
		if d <= 0 {
			c.Next()
			return
		}
		production := c.GetBool(productionKey)

		ctx, cancel := context.WithTimeout(c.Request.Context(), d)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)

		// snapshot for the 408 path, which runs alongside the handler
		snapshot := c.Copy()
		orig := c.Writer
		buf := newBufferedWriter(orig)
		c.Writer = buf

		done := make(chan struct{})
		var panicked interface{}
		go func() {
			defer close(done)
			defer func() { panicked = recover() }()
			c.Next()
		}()

		select {
		case <-done:
			c.Writer = orig
			if panicked != nil {
				panic(panicked)
			}
			buf.flush()
		case <-ctx.Done():
			buf.expire()
			requestTimeouts.Inc()
			writeTimeout(snapshot, orig, d, production)
			<-done
			c.Writer = orig
			if panicked != nil {
				panic(panicked)
			}
		}
	}
}

func writeTimeout(c *gin.Context, w gin.ResponseWriter, d time.Duration, production bool) {
	err := &apperror.TimeoutError{After: d.String()}
	body, jerr := json.Marshal(errorResponse(c, err, err, production))
	if jerr != nil {
		body = []byte(`{"success":false,"message":"Request timeout"}`)
	}

	logging.FromContext(c).WithField("after", d.String()).Warn("request timed out")

	h := w.Header()
	h.Set("Content-Type", "application/json; charset=utf-8")
	h.Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(http.StatusRequestTimeout)
	_, _ = w.Write(body)
	w.Flush()
}

// bufferedWriter holds the headers, status and body until flush. Once
// expired, every write is dropped.
type bufferedWriter struct {
	gin.ResponseWriter

	mu      sync.Mutex
	header  http.Header
	body    bytes.Buffer
	status  int
	expired bool
}

func newBufferedWriter(w gin.ResponseWriter) *bufferedWriter {
	return &bufferedWriter{ResponseWriter: w, header: w.Header().Clone()}
}

func (w *bufferedWriter) Header() http.Header { return w.header }

func (w *bufferedWriter) WriteHeader(code int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.status == 0 {
		w.status = code
	}
}

func (w *bufferedWriter) WriteHeaderNow() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.status == 0 {
		w.status = http.StatusOK
	}
}

func (w *bufferedWriter) Write(b []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.expired {
		return 0, http.ErrHandlerTimeout
	}
	if w.status == 0 {
		w.status = http.StatusOK
	}
	return w.body.Write(b)
}

func (w *bufferedWriter) WriteString(s string) (int, error) {
	return w.Write([]byte(s))
}

func (w *bufferedWriter) Status() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.status == 0 {
		return http.StatusOK
	}
	return w.status
}

func (w *bufferedWriter) Size() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.status == 0 {
		return -1
	}
	return w.body.Len()
}

func (w *bufferedWriter) Written() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.status != 0
}

// Flush is a no-op; the body is sent in one piece.
func (w *bufferedWriter) Flush() {}

func (w *bufferedWriter) expire() {
	w.mu.Lock()
	w.expired = true
	w.mu.Unlock()
}

func (w *bufferedWriter) flush() {
	w.mu.Lock()
	defer w.mu.Unlock()

	dst := w.ResponseWriter.Header()
	for k, v := range w.header {
		dst[k] = v
	}
	if w.status == 0 {
		return
	}
	w.ResponseWriter.WriteHeader(w.status)
	if w.body.Len() == 0 {
		w.ResponseWriter.WriteHeaderNow()
		return
	}
	_, _ = w.ResponseWriter.Write(w.body.Bytes())
}
