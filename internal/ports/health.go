package ports

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// DefaultCheckTimeout bounds a single health check.
const DefaultCheckTimeout = 2 * time.Second

// ErrDuplicateChecker is returned when a checker name is registered twice.
var ErrDuplicateChecker = errors.New("duplicate health checker")

// HealthChecker is implemented by adapters that can report reachability of
// their backing system: the database and object storage.
type HealthChecker interface {
	// Name identifies the check in readiness responses.
	Name() string

	// Check returns nil when the dependency is reachable.
	Check(ctx context.Context) error
}

// HealthRegistry aggregates the health checks registered at startup.
type HealthRegistry interface {
	// Register adds a required checker. A failing required check makes the
	// service unhealthy.
	Register(checker HealthChecker) error

	// CheckAll runs every registered check concurrently.
	CheckAll(ctx context.Context) *HealthResult
}

// HealthStatus represents the overall health state.
type HealthStatus string

const (
	// HealthStatusHealthy indicates all checks passed.
	HealthStatusHealthy HealthStatus = "healthy"

	// HealthStatusDegraded indicates only optional checks failed. The service
	// keeps taking traffic; uploads and PDF logos may fail.
	HealthStatusDegraded HealthStatus = "degraded"

	// HealthStatusUnhealthy indicates a required check failed.
	HealthStatusUnhealthy HealthStatus = "unhealthy"
)

// HealthResult contains the aggregated health check results.
type HealthResult struct {
	Status    HealthStatus            `json:"status"`
	Checks    map[string]*CheckResult `json:"checks"`
	Timestamp time.Time               `json:"timestamp"`
}

// CheckResult contains the result of a single health check.
type CheckResult struct {
	Status   HealthStatus  `json:"status"`
	Optional bool          `json:"optional,omitempty"`
	Message  string        `json:"message,omitempty"`
	Duration time.Duration `json:"duration"`
}

type registration struct {
	checker  HealthChecker
	optional bool
}

// DefaultHealthRegistry is a thread-safe implementation of HealthRegistry.
type DefaultHealthRegistry struct {
	mu      sync.RWMutex
	entries []registration
	timeout time.Duration
}

var _ HealthRegistry = (*DefaultHealthRegistry)(nil)

// NewHealthRegistry creates a registry that gives each check DefaultCheckTimeout.
func NewHealthRegistry() *DefaultHealthRegistry {
	return &DefaultHealthRegistry{timeout: DefaultCheckTimeout}
}

// WithCheckTimeout sets the per-check deadline.
func (r *DefaultHealthRegistry) WithCheckTimeout(d time.Duration) *DefaultHealthRegistry {
	r.mu.Lock()
	defer r.mu.Unlock()

	if d > 0 {
		r.timeout = d
	}
	return r
}

// Register adds a required checker.
func (r *DefaultHealthRegistry) Register(checker HealthChecker) error {
	return r.add(checker, false)
}

// RegisterOptional adds a checker whose failure only degrades the service.
func (r *DefaultHealthRegistry) RegisterOptional(checker HealthChecker) error {
	return r.add(checker, true)
}

func (r *DefaultHealthRegistry) add(checker HealthChecker, optional bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := checker.Name()
	for _, e := range r.entries {
		if e.checker.Name() == name {
			return fmt.Errorf("%w: %s", ErrDuplicateChecker, name)
		}
	}

	r.entries = append(r.entries, registration{checker: checker, optional: optional})
	return nil
}

// CheckAll runs all registered checks concurrently, each under its own deadline.
func (r *DefaultHealthRegistry) CheckAll(ctx context.Context) *HealthResult {
	r.mu.RLock()
	entries := append([]registration(nil), r.entries...)
	timeout := r.timeout
	r.mu.RUnlock()

	results := make([]*CheckResult, len(entries))

	var wg sync.WaitGroup
	for i, e := range entries {
		wg.Go(func() {
			results[i] = runCheck(ctx, e, timeout)
		})
	}
	wg.Wait()

	result := &HealthResult{
		Status:    HealthStatusHealthy,
		Checks:    make(map[string]*CheckResult, len(entries)),
		Timestamp: time.Now().UTC(),
	}

	for i, e := range entries {
		check := results[i]
		result.Checks[e.checker.Name()] = check

		switch {
		case check.Status == HealthStatusHealthy:
		case !check.Optional:
			result.Status = HealthStatusUnhealthy
		case result.Status == HealthStatusHealthy:
			result.Status = HealthStatusDegraded
		}
	}

	return result
}

func runCheck(ctx context.Context, e registration, timeout time.Duration) *CheckResult {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	err := e.checker.Check(ctx)

	check := &CheckResult{
		Status:   HealthStatusHealthy,
		Optional: e.optional,
		Duration: time.Since(start),
	}
	if err != nil {
		check.Status = HealthStatusUnhealthy
		check.Message = err.Error()
	}
	return check
}
