package health

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
)

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string           `json:"status"`
	Timestamp string           `json:"timestamp"`
	Version   string           `json:"version,omitempty"`
	Checks    map[string]Check `json:"checks,omitempty"`
}

// Check represents an individual health check result
type Check struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Latency string `json:"latency,omitempty"`
}

// StatsResponse represents system statistics
type StatsResponse struct {
	GoVersion    string `json:"go_version"`
	NumCPU       int    `json:"num_cpu"`
	NumGoroutine int    `json:"num_goroutine"`
	MemAlloc     uint64 `json:"mem_alloc_bytes"`
	MemSys       uint64 `json:"mem_sys_bytes"`
	Uptime       string `json:"uptime,omitempty"`
}

// Pinger is anything that can report whether it answers.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler serves the health endpoints. Redis is optional.
type Handler struct {
	db      Pinger
	redis   *redis.Client
	version string
	started time.Time
}

func NewHandler(db Pinger, rdb *redis.Client, version string) *Handler {
	return &Handler{db: db, redis: rdb, version: version, started: time.Now()}
}

// LivenessHandler handles the /health/live endpoint
// Returns 200 if the service is running (for Kubernetes liveness checks)
func (h *Handler) LivenessHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// ReadinessHandler handles the /health/ready endpoint
func (h *Handler) ReadinessHandler(c echo.Context) error {
	checks, healthy := h.runChecks(c.Request().Context())
	status, httpStatus := "ok", http.StatusOK
	if !healthy {
		status, httpStatus = "unhealthy", http.StatusServiceUnavailable
	}
	return c.JSON(httpStatus, HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks:    checks,
	})
}

// HealthHandler handles the /health endpoint
func (h *Handler) HealthHandler(c echo.Context) error {
	checks, healthy := h.runChecks(c.Request().Context())
	status, httpStatus := "ok", http.StatusOK
	if !healthy {
		status, httpStatus = "degraded", http.StatusServiceUnavailable
	}
	return c.JSON(httpStatus, HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   h.version,
		Checks:    checks,
	})
}

// StatsHandler handles the /health/stats endpoint
func (h *Handler) StatsHandler(c echo.Context) error {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	return c.JSON(http.StatusOK, StatsResponse{
		GoVersion:    runtime.Version(),
		NumCPU:       runtime.NumCPU(),
		NumGoroutine: runtime.NumGoroutine(),
		MemAlloc:     m.Alloc,
		MemSys:       m.Sys,
		Uptime:       time.Since(h.started).Round(time.Second).String(),
	})
}

// runChecks pings the database and, when configured, redis. Redis being down
// degrades login rate limiting only, so it never fails readiness.
func (h *Handler) runChecks(ctx context.Context) (map[string]Check, bool) {
	checks := make(map[string]Check)

	db := checkDependency(ctx, h.db.Ping, "Database connection failed")
	checks["database"] = db
	healthy := db.Status == "ok"

	if h.redis != nil {
		rc := checkDependency(ctx, func(ctx context.Context) error { return h.redis.Ping(ctx).Err() }, "Redis connection failed")
		if rc.Status != "ok" {
			rc.Status = "degraded"
		}
		checks["redis"] = rc
	}
	return checks, healthy
}

func checkDependency(ctx context.Context, ping func(context.Context) error, failure string) Check {
	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	err := ping(ctx)
	latency := time.Since(start)
	if err != nil {
		return Check{Status: "error", Message: failure, Latency: latency.String()}
	}
	return Check{Status: "ok", Latency: latency.String()}
}
