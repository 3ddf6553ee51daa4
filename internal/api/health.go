package api

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/pageza/recipe-ai/backend/internal/logging"
)

const (
	StatusOK       = "OK"
	StatusDegraded = "DEGRADED"
	StatusError    = "ERROR"

	serviceUp   = "up"
	serviceDown = "down"
)

const healthProbeTimeout = 5 * time.Second

// Prober reports whether a dependency is reachable.
type Prober func(ctx context.Context) error

// HealthResponse is written without the success envelope so load balancers
// can read it directly.
type HealthResponse struct {
	Status   string            `json:"status"`
	Uptime   float64           `json:"uptime"`
	Services map[string]string `json:"services"`
	System   SystemInfo        `json:"system"`
}

type SystemInfo struct {
	GoVersion   string `json:"goVersion"`
	Goroutines  int    `json:"goroutines"`
	HeapAllocMB uint64 `json:"heapAllocMB"`
	SysMB       uint64 `json:"sysMB"`
	NumGC       uint32 `json:"numGC"`
	NumCPU      int    `json:"numCPU"`
	Environment string `json:"environment"`
}

// HealthHandler probes the database and the AI provider concurrently.
type HealthHandler struct {
	database    Prober
	ai          Prober
	environment string
	started     time.Time
}

func NewHealthHandler(database, ai Prober, environment string) *HealthHandler {
	return &HealthHandler{
		database:    database,
		ai:          ai,
		environment: environment,
		started:     time.Now(),
	}
}

func (h *HealthHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/health", h.Health)
}

func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthProbeTimeout)
	defer cancel()

	log := logging.FromContext(ctx)
	dbStatus, aiStatus := serviceUp, serviceUp

	var g errgroup.Group
	g.Go(func() error {
		if err := h.database(ctx); err != nil {
			log.WithError(err).Warn("database health check failed")
			dbStatus = serviceDown
		}
		return nil
	})
	g.Go(func() error {
		if h.ai == nil {
			aiStatus = serviceDown
			return nil
		}
		if err := h.ai(ctx); err != nil {
			log.WithError(err).Warn("ai health check failed")
			aiStatus = serviceDown
		}
		return nil
	})
	_ = g.Wait()

	status, code := StatusOK, http.StatusOK
	switch {
	case dbStatus == serviceDown:
		status, code = StatusError, http.StatusServiceUnavailable
	case aiStatus == serviceDown:
		status, code = StatusDegraded, http.StatusServiceUnavailable
	}

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	c.JSON(code, &HealthResponse{
		Status: status,
		Uptime: time.Since(h.started).Seconds(),
		Services: map[string]string{
			"api":      serviceUp,
			"database": dbStatus,
			"ai":       aiStatus,
		},
		System: SystemInfo{
			GoVersion:   runtime.Version(),
			Goroutines:  runtime.NumGoroutine(),
			HeapAllocMB: mem.HeapAlloc >> 20,
			SysMB:       mem.Sys >> 20,
			NumGC:       mem.NumGC,
			NumCPU:      runtime.NumCPU(),
			Environment: h.environment,
		},
	})
}
