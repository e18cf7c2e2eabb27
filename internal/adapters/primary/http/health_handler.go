package http

import (
	"context"
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/lorrc/studyspace-backend/internal/core/ports"
)

const (
	statusHealthy   = "healthy"
	statusUnhealthy = "unhealthy"
	statusDegraded  = "degraded"

	healthCheckTimeout = 5 * time.Second
)

// HealthChecker is satisfied by *pgxpool.Pool.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// HealthHandler serves the probe endpoints.
type HealthHandler struct {
	db        HealthChecker
	realtime  ports.RealtimeRegistry
	startTime time.Time
	version   string
}

// NewHealthHandler creates a new health handler. realtime may be nil, in
// which case /health does not report it.
func NewHealthHandler(db HealthChecker, realtime ports.RealtimeRegistry, version string) *HealthHandler {
	return &HealthHandler{
		db:        db,
		realtime:  realtime,
		startTime: time.Now(),
		version:   version,
	}
}

// HealthResponse is the body of every probe.
type HealthResponse struct {
	Status    string           `json:"status"`
	Timestamp string           `json:"timestamp"`
	Version   string           `json:"version,omitempty"`
	Uptime    string           `json:"uptime,omitempty"`
	Checks    map[string]Check `json:"checks,omitempty"`
	Runtime   *RuntimeInfo     `json:"runtime,omitempty"`
}

// Check is the outcome of one dependency probe.
type Check struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Latency string `json:"latency,omitempty"`
}

// RuntimeInfo is reported by the detailed health endpoint only.
type RuntimeInfo struct {
	Goroutines int    `json:"goroutines"`
	HeapAlloc  uint64 `json:"heap_alloc_bytes"`
	Sys        uint64 `json:"sys_bytes"`
	NumGC      uint32 `json:"num_gc"`
}

type probe func(ctx context.Context) Check

// RegisterRoutes registers health check routes
func (h *HealthHandler) RegisterRoutes(r chi.Router) {
	r.Get("/health", h.HandleHealth)
	r.Get("/health/live", h.HandleLiveness)
	r.Get("/health/ready", h.HandleReadiness)
}

// HandleLiveness answers as long as the process serves HTTP.
func (h *HealthHandler) HandleLiveness(w http.ResponseWriter, _ *http.Request) {
	WriteJSON(w, http.StatusOK, HealthResponse{
		Status:    statusHealthy,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// HandleReadiness reports whether the database is reachable. A missing
// realtime server does not block REST traffic, so it is not checked here.
func (h *HealthHandler) HandleReadiness(w http.ResponseWriter, r *http.Request) {
	resp := h.run(r.Context(), statusUnhealthy, map[string]probe{
		"database": h.checkDatabase,
	})
	h.write(w, resp)
}

// HandleHealth reports every dependency plus runtime figures.
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	probes := map[string]probe{"database": h.checkDatabase}
	if h.realtime != nil {
		probes["realtime"] = h.checkRealtime
	}

	resp := h.run(r.Context(), statusDegraded, probes)

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)
	resp.Runtime = &RuntimeInfo{
		Goroutines: runtime.NumGoroutine(),
		HeapAlloc:  mem.HeapAlloc,
		Sys:        mem.Sys,
		NumGC:      mem.NumGC,
	}

	h.write(w, resp)
}

// run executes probes under a shared timeout. Any failing probe sets the
// overall status to failStatus.
func (h *HealthHandler) run(ctx context.Context, failStatus string, probes map[string]probe) HealthResponse {
	ctx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
	defer cancel()

	resp := HealthResponse{
		Status:    statusHealthy,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   h.version,
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
		Checks:    make(map[string]Check, len(probes)),
	}
	for name, p := range probes {
		check := p(ctx)
		resp.Checks[name] = check
		if check.Status != statusHealthy {
			resp.Status = failStatus
		}
	}
	return resp
}

func (h *HealthHandler) write(w http.ResponseWriter, resp HealthResponse) {
	code := http.StatusOK
	if resp.Status != statusHealthy {
		code = http.StatusServiceUnavailable
	}
	WriteJSON(w, code, resp)
}

func (h *HealthHandler) checkDatabase(ctx context.Context) Check {
	if h.db == nil {
		return Check{Status: statusUnhealthy, Message: "Database not configured"}
	}

	start := time.Now()
	if err := h.db.Ping(ctx); err != nil {
		return Check{Status: statusUnhealthy, Message: err.Error(), Latency: time.Since(start).String()}
	}
	return Check{Status: statusHealthy, Latency: time.Since(start).String()}
}

// checkRealtime reports whether a realtime server is registered and how
// many sockets it holds.
func (h *HealthHandler) checkRealtime(ctx context.Context) Check {
	start := time.Now()
	stats, err := h.realtime.ConnectionStats(ctx)
	latency := time.Since(start).String()

	switch {
	case err != nil:
		return Check{Status: statusUnhealthy, Message: err.Error(), Latency: latency}
	case stats == nil:
		return Check{Status: statusUnhealthy, Message: "Realtime server not registered"}
	default:
		return Check{
			Status:  statusHealthy,
			Message: fmt.Sprintf("%d connections", stats.TotalConnections),
			Latency: latency,
		}
	}
}
