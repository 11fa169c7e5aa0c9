// Package service provides the lifecycle shared by the HTTP services:
// background workers, health checks and the standard /health and /info
// endpoints.
package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/AulusHZP/LabProjetoDeSoftware/internal/httputil"
	"github.com/AulusHZP/LabProjetoDeSoftware/internal/logging"
)

const healthCheckTimeout = 5 * time.Second

// HealthCheck reports whether a dependency is reachable.
type HealthCheck func(ctx context.Context) error

// BaseConfig contains shared configuration for all services.
type BaseConfig struct {
	ID      string
	Name    string
	Version string
	Logger  *logging.Logger
}

// BaseService carries the hooks every service shares.
type BaseService struct {
	id      string
	name    string
	version string
	log     *logging.Logger

	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup

	hydrate func(context.Context) error
	statsFn func() map[string]any
	workers []func(context.Context)
	onStop  []func()

	healthMu        sync.RWMutex
	checks          map[string]HealthCheck
	checkResults    map[string]bool
	lastHealthCheck time.Time
	startTime       time.Time
}

// NewBase constructs a BaseService from shared config.
func NewBase(cfg BaseConfig) *BaseService {
	log := cfg.Logger
	if log == nil {
		log = logging.Default(cfg.ID)
	}
	return &BaseService{
		id:           cfg.ID,
		name:         cfg.Name,
		version:      cfg.Version,
		log:          log,
		stopCh:       make(chan struct{}),
		checks:       make(map[string]HealthCheck),
		checkResults: make(map[string]bool),
	}
}

func (b *BaseService) ID() string              { return b.id }
func (b *BaseService) Name() string            { return b.name }
func (b *BaseService) Version() string         { return b.version }
func (b *BaseService) Logger() *logging.Logger { return b.log }

// WithHydrate sets a hook run once during Start, before workers launch.
func (b *BaseService) WithHydrate(fn func(context.Context) error) *BaseService {
	b.hydrate = fn
	return b
}

// WithStats sets a statistics provider for the /info endpoint.
func (b *BaseService) WithStats(fn func() map[string]any) *BaseService {
	b.statsFn = fn
	return b
}

// WithHealthCheck registers a named dependency check consulted by /health.
func (b *BaseService) WithHealthCheck(name string, p HealthCheck) *BaseService {
	b.healthMu.Lock()
	b.checks[name] = p
	b.healthMu.Unlock()
	return b
}

// AddWorker registers a background worker started after hydrate completes.
// Workers should return when ctx is done or StopChan is closed.
func (b *BaseService) AddWorker(fn func(context.Context)) *BaseService {
	b.workers = append(b.workers, fn)
	return b
}

// AddTickerWorker registers a periodic background worker.
func (b *BaseService) AddTickerWorker(interval time.Duration, fn func(context.Context) error) *BaseService {
	worker := func(ctx context.Context) {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-b.stopCh:
				return
			case <-ticker.C:
				if err := fn(ctx); err != nil {
					b.log.WithError(err).Warn("worker error")
				}
			}
		}
	}
	b.workers = append(b.workers, worker)
	return b
}

// OnStop registers a function run during Stop, after workers exit.
func (b *BaseService) OnStop(fn func()) *BaseService {
	b.onStop = append(b.onStop, fn)
	return b
}

// StopChan exposes the stop channel for worker goroutines.
func (b *BaseService) StopChan() <-chan struct{} {
	return b.stopCh
}

// Start runs hydrate once, then spins workers.
func (b *BaseService) Start(ctx context.Context) error {
	b.healthMu.Lock()
	if b.startTime.IsZero() {
		b.startTime = time.Now()
	}
	b.healthMu.Unlock()

	if b.hydrate != nil {
		if err := b.hydrate(ctx); err != nil {
			return fmt.Errorf("hydrate: %w", err)
		}
	}

	for _, w := range b.workers {
		worker := w
		b.wg.Add(1)
		go func() {
			defer b.wg.Done()
			worker(ctx)
		}()
	}
	b.log.WithField("workers", len(b.workers)).Info("service started")
	return nil
}

// Stop signals workers, waits for them and runs stop hooks. Idempotent.
func (b *BaseService) Stop() error {
	b.stopOnce.Do(func() {
		close(b.stopCh)
		b.wg.Wait()
		for _, fn := range b.onStop {
			fn()
		}
		b.log.Info("service stopped")
	})
	return nil
}

// WorkerCount returns the number of registered workers.
func (b *BaseService) WorkerCount() int {
	return len(b.workers)
}

// CheckHealth refreshes the cached health state by running every check.
func (b *BaseService) CheckHealth(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
	defer cancel()

	b.healthMu.RLock()
	checks := make(map[string]HealthCheck, len(b.checks))
	for name, p := range b.checks {
		checks[name] = p
	}
	b.healthMu.RUnlock()

	results := make(map[string]bool, len(checks))
	for name, p := range checks {
		err := p(ctx)
		results[name] = err == nil
		if err != nil {
			b.log.WithContext(ctx).WithError(err).WithField("check", name).Warn("health check failed")
		}
	}

	b.healthMu.Lock()
	b.checkResults = results
	b.lastHealthCheck = time.Now()
	b.healthMu.Unlock()
}

// HealthStatus runs the checks and returns "healthy" or "unhealthy".
func (b *BaseService) HealthStatus(ctx context.Context) string {
	b.CheckHealth(ctx)
	b.healthMu.RLock()
	defer b.healthMu.RUnlock()
	for _, ok := range b.checkResults {
		if !ok {
			return "unhealthy"
		}
	}
	return "healthy"
}

// HealthDetails returns a map describing the most recent health state.
func (b *BaseService) HealthDetails() map[string]any {
	b.healthMu.RLock()
	defer b.healthMu.RUnlock()

	details := make(map[string]any, len(b.checkResults)+2)
	for name, ok := range b.checkResults {
		details[name] = ok
	}
	if !b.lastHealthCheck.IsZero() {
		details["last_check"] = b.lastHealthCheck.Format(time.RFC3339)
	} else {
		details["last_check"] = ""
	}
	uptime := time.Duration(0)
	if !b.startTime.IsZero() {
		uptime = time.Since(b.startTime)
	}
	details["uptime"] = uptime.String()
	return details
}

// HealthResponse is the standard response for the /health endpoint.
type HealthResponse struct {
	Status    string         `json:"status"`
	Service   string         `json:"service"`
	Version   string         `json:"version"`
	Timestamp string         `json:"timestamp"`
	Details   map[string]any `json:"details,omitempty"`
}

// InfoResponse is the standard response for the /info endpoint.
type InfoResponse struct {
	Status     string         `json:"status"`
	Service    string         `json:"service"`
	Version    string         `json:"version"`
	Timestamp  string         `json:"timestamp"`
	Statistics map[string]any `json:"statistics,omitempty"`
}

// HealthHandler answers 200 when every check passes and 503 otherwise.
func (b *BaseService) HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := b.HealthStatus(r.Context())
		code := http.StatusOK
		if status != "healthy" {
			code = http.StatusServiceUnavailable
		}
		httputil.WriteJSON(w, code, HealthResponse{
			Status:    status,
			Service:   b.name,
			Version:   b.version,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Details:   b.HealthDetails(),
		})
	}
}

// InfoHandler returns service metadata plus registered statistics.
func (b *BaseService) InfoHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := InfoResponse{
			Status:    "active",
			Service:   b.name,
			Version:   b.version,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		}
		if b.statsFn != nil {
			resp.Statistics = b.statsFn()
		}
		httputil.WriteJSON(w, http.StatusOK, resp)
	}
}

// Serve runs handler on addr until ctx is cancelled, then shuts the server
// down gracefully and stops the service.
func (b *BaseService) Serve(ctx context.Context, addr string, handler http.Handler) error {
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		b.log.WithField("addr", addr).Info("listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			_ = b.Stop()
			return err
		}
	case <-ctx.Done():
	}

	b.log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		b.log.WithError(err).Warn("shutdown error")
	}
	return b.Stop()
}
