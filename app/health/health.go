// Package health provides health check functionality for zklrd.
//
// The checker probes the engine store, the module invariants and the
// telemetry pipeline. It serves three endpoints:
// - /health - Basic liveness check
// - /health/ready - Readiness check for load balancers
// - /health/detailed - Status of every component, invariants included
package health

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"cosmossdk.io/log"
	"github.com/gorilla/mux"
)

// Status represents the health status of a component
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusDegraded  Status = "degraded"
	StatusUnhealthy Status = "unhealthy"
	StatusUnknown   Status = "unknown"
)

// ComponentHealth represents the health status of a single component
type ComponentHealth struct {
	Status    Status                 `json:"status"`
	Message   string                 `json:"message,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	Metrics   map[string]interface{} `json:"metrics,omitempty"`
}

// HealthCheck represents the overall health check response
type HealthCheck struct {
	Status     Status                     `json:"status"`
	Timestamp  time.Time                  `json:"timestamp"`
	Version    string                     `json:"version,omitempty"`
	Components map[string]ComponentHealth `json:"components,omitempty"`
}

// Engine is the part of the engine the checker probes
type Engine interface {
	Height() int64
	Ping(ctx context.Context) error
	CheckInvariants(ctx context.Context) error
}

// TelemetryProvider reports whether tracing and metrics are initialized
type TelemetryProvider interface {
	HealthCheck() error
}

// Checker performs health checks on the engine and its collaborators
type Checker struct {
	logger    log.Logger
	engine    Engine
	telemetry TelemetryProvider
	version   string

	maxResponseTime time.Duration

	mu            sync.RWMutex
	lastCheck     time.Time
	cachedHealth  *HealthCheck
	cacheDuration time.Duration
}

// Config holds configuration for the health checker
type Config struct {
	// Version is reported in every response
	Version string

	// MaxResponseTime is the store response time above which the store is degraded
	MaxResponseTime time.Duration

	// CacheDuration is how long to cache readiness results
	CacheDuration time.Duration
}

// DefaultConfig returns the default health check configuration
func DefaultConfig() Config {
	return Config{
		Version:         "1.0.0",
		MaxResponseTime: time.Second,
		CacheDuration:   5 * time.Second,
	}
}

// NewChecker creates a new health checker. telemetry may be nil.
func NewChecker(logger log.Logger, cfg Config, engine Engine, telemetry TelemetryProvider) (*Checker, error) {
	if engine == nil {
		return nil, fmt.Errorf("engine is required")
	}

	return &Checker{
		logger:          logger,
		engine:          engine,
		telemetry:       telemetry,
		version:         cfg.Version,
		maxResponseTime: cfg.MaxResponseTime,
		cacheDuration:   cfg.CacheDuration,
	}, nil
}

// Check performs a health check. Detailed checks also run the module
// invariants and are never served from cache.
func (c *Checker) Check(ctx context.Context, detailed bool) *HealthCheck {
	if !detailed {
		if cached := c.cached(); cached != nil {
			return cached
		}
	}

	health := &HealthCheck{
		Timestamp:  time.Now(),
		Version:    c.version,
		Components: make(map[string]ComponentHealth),
	}

	var wg sync.WaitGroup
	var mu sync.Mutex

	checks := []struct {
		name string
		fn   func(context.Context) ComponentHealth
	}{
		{"store", c.checkStore},
		{"telemetry", c.checkTelemetry},
	}

	if detailed {
		checks = append(checks, struct {
			name string
			fn   func(context.Context) ComponentHealth
		}{"invariants", c.checkInvariants})
	}

	for _, check := range checks {
		wg.Add(1)
		go func(name string, fn func(context.Context) ComponentHealth) {
			defer wg.Done()
			result := fn(ctx)
			mu.Lock()
			health.Components[name] = result
			mu.Unlock()
		}(check.name, check.fn)
	}

	wg.Wait()

	health.Status = calculateOverallStatus(health.Components)

	if !detailed {
		c.mu.Lock()
		c.lastCheck = time.Now()
		c.cachedHealth = health
		c.mu.Unlock()
	}

	return health
}

// checkStore reads from the latest committed state
func (c *Checker) checkStore(ctx context.Context) ComponentHealth {
	start := time.Now()
	err := c.engine.Ping(ctx)
	duration := time.Since(start)

	if err != nil {
		return ComponentHealth{
			Status:    StatusUnhealthy,
			Message:   fmt.Sprintf("store read failed: %v", err),
			Timestamp: time.Now(),
		}
	}

	metrics := map[string]interface{}{
		"height":        c.engine.Height(),
		"query_time_ms": duration.Milliseconds(),
	}

	componentStatus := StatusHealthy
	message := "store is responsive"
	if duration > c.maxResponseTime {
		componentStatus = StatusDegraded
		message = "store response time is degraded"
	}

	return ComponentHealth{
		Status:    componentStatus,
		Message:   message,
		Timestamp: time.Now(),
		Metrics:   metrics,
	}
}

func (c *Checker) checkTelemetry(_ context.Context) ComponentHealth {
	if c.telemetry == nil {
		return ComponentHealth{
			Status:    StatusHealthy,
			Message:   "telemetry disabled",
			Timestamp: time.Now(),
		}
	}
	if err := c.telemetry.HealthCheck(); err != nil {
		// tracing loss does not stop settlement
		return ComponentHealth{
			Status:    StatusDegraded,
			Message:   err.Error(),
			Timestamp: time.Now(),
		}
	}
	return ComponentHealth{
		Status:    StatusHealthy,
		Message:   "telemetry initialized",
		Timestamp: time.Now(),
	}
}

func (c *Checker) checkInvariants(ctx context.Context) ComponentHealth {
	if err := c.engine.CheckInvariants(ctx); err != nil {
		return ComponentHealth{
			Status:    StatusUnhealthy,
			Message:   err.Error(),
			Timestamp: time.Now(),
		}
	}
	return ComponentHealth{
		Status:    StatusHealthy,
		Message:   "all invariants hold",
		Timestamp: time.Now(),
	}
}

func calculateOverallStatus(components map[string]ComponentHealth) Status {
	hasUnhealthy := false
	hasDegraded := false

	for _, component := range components {
		switch component.Status {
		case StatusUnhealthy:
			hasUnhealthy = true
		case StatusDegraded:
			hasDegraded = true
		}
	}

	if hasUnhealthy {
		return StatusUnhealthy
	}
	if hasDegraded {
		return StatusDegraded
	}
	return StatusHealthy
}

func (c *Checker) cached() *HealthCheck {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.cachedHealth == nil || time.Since(c.lastCheck) >= c.cacheDuration {
		return nil
	}
	return c.cachedHealth
}

// RegisterRoutes registers health check endpoints
func (c *Checker) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/health", c.handleHealth).Methods(http.MethodGet)
	router.HandleFunc("/health/ready", c.handleHealthReady).Methods(http.MethodGet)
	router.HandleFunc("/health/detailed", c.handleHealthDetailed).Methods(http.MethodGet)
}

func (c *Checker) handleHealth(w http.ResponseWriter, _ *http.Request) {
	c.writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

// handleHealthReady reports 503 only when a component is unhealthy
func (c *Checker) handleHealthReady(w http.ResponseWriter, r *http.Request) {
	health := c.Check(r.Context(), false)

	statusCode := http.StatusOK
	if health.Status == StatusUnhealthy {
		statusCode = http.StatusServiceUnavailable
	}
	c.writeJSON(w, statusCode, health)
}

func (c *Checker) handleHealthDetailed(w http.ResponseWriter, r *http.Request) {
	health := c.Check(r.Context(), true)

	statusCode := http.StatusOK
	if health.Status == StatusUnhealthy {
		statusCode = http.StatusServiceUnavailable
	}
	c.writeJSON(w, statusCode, health)
}

func (c *Checker) writeJSON(w http.ResponseWriter, statusCode int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		c.logger.Error("failed to write health response", "error", err)
	}
}
