package health

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"contractor-verify/pkg/logging"
)

// Status represents the health status of a component.
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusDegraded  Status = "degraded"
	StatusUnhealthy Status = "unhealthy"
	StatusUnknown   Status = "unknown"
)

// ComponentHealth is the health of a single component.
type ComponentHealth struct {
	Name        string                 `json:"name"`
	Status      Status                 `json:"status"`
	Message     string                 `json:"message,omitempty"`
	LastChecked time.Time              `json:"last_checked"`
	Duration    time.Duration          `json:"duration"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
	Error       string                 `json:"error,omitempty"`
}

// SystemHealth is the aggregated view across all components.
type SystemHealth struct {
	Status     Status                     `json:"status"`
	Timestamp  time.Time                  `json:"timestamp"`
	Version    string                     `json:"version,omitempty"`
	Uptime     time.Duration              `json:"uptime"`
	Components map[string]ComponentHealth `json:"components"`
}

// Checker is a health check for one component.
type Checker interface {
	Check(ctx context.Context) ComponentHealth
	Name() string
}

// CheckFunc adapts a function to the Checker interface.
type CheckFunc struct {
	name string
	fn   func(ctx context.Context) ComponentHealth
}

func NewCheckFunc(name string, fn func(ctx context.Context) ComponentHealth) CheckFunc {
	return CheckFunc{name: name, fn: fn}
}

func (cf CheckFunc) Check(ctx context.Context) ComponentHealth { return cf.fn(ctx) }

func (cf CheckFunc) Name() string { return cf.name }

// Manager runs registered checkers and aggregates their results.
type Manager struct {
	checkers  map[string]Checker
	results   map[string]ComponentHealth
	startTime time.Time
	version   string
	timeout   time.Duration
	logger    *logging.ComponentLogger
	mu        sync.RWMutex
}

func NewManager(version string, timeout time.Duration, logger *logging.Logger) *Manager {
	return &Manager{
		checkers:  make(map[string]Checker),
		results:   make(map[string]ComponentHealth),
		startTime: time.Now(),
		version:   version,
		timeout:   timeout,
		logger:    logger.WithComponent("health"),
	}
}

// Register adds a checker. Results start as unknown until the first check runs.
func (m *Manager) Register(checker Checker) {
	m.mu.Lock()
	defer m.mu.Unlock()

	name := checker.Name()
	m.checkers[name] = checker
	m.results[name] = ComponentHealth{Name: name, Status: StatusUnknown}

	m.logger.Info("Registered health checker",
		logging.String("checker", name))
}

// CheckAll runs every registered checker concurrently and returns the
// aggregated system health.
func (m *Manager) CheckAll(ctx context.Context) SystemHealth {
	m.mu.RLock()
	checkers := make([]Checker, 0, len(m.checkers))
	for _, c := range m.checkers {
		checkers = append(checkers, c)
	}
	m.mu.RUnlock()

	results := make(chan ComponentHealth, len(checkers))
	var wg sync.WaitGroup
	for _, checker := range checkers {
		wg.Add(1)
		go func(c Checker) {
			defer wg.Done()

			checkCtx, cancel := context.WithTimeout(ctx, m.timeout)
			defer cancel()
			results <- c.Check(checkCtx)
		}(checker)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	components := make(map[string]ComponentHealth)
	for result := range results {
		components[result.Name] = result

		m.mu.Lock()
		m.results[result.Name] = result
		m.mu.Unlock()
	}

	return SystemHealth{
		Status:     aggregate(components),
		Timestamp:  time.Now(),
		Version:    m.version,
		Uptime:     time.Since(m.startTime),
		Components: components,
	}
}

// Cached returns the last known results without running any checks.
func (m *Manager) Cached() SystemHealth {
	m.mu.RLock()
	defer m.mu.RUnlock()

	components := make(map[string]ComponentHealth, len(m.results))
	for name, result := range m.results {
		components[name] = result
	}

	return SystemHealth{
		Status:     aggregate(components),
		Timestamp:  time.Now(),
		Version:    m.version,
		Uptime:     time.Since(m.startTime),
		Components: components,
	}
}

func aggregate(components map[string]ComponentHealth) Status {
	if len(components) == 0 {
		return StatusUnknown
	}

	healthy := 0
	for _, c := range components {
		switch c.Status {
		case StatusUnhealthy:
			return StatusUnhealthy
		case StatusDegraded:
			return StatusDegraded
		case StatusHealthy:
			healthy++
		}
	}
	if healthy == len(components) {
		return StatusHealthy
	}
	return StatusUnknown
}

// Handler serves the full health report. Unhealthy systems report 503 so load
// balancers can rotate the instance out.
func (m *Manager) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		report := m.CheckAll(r.Context())

		w.Header().Set("Content-Type", "application/json")
		if report.Status == StatusUnhealthy || report.Status == StatusUnknown {
			w.WriteHeader(http.StatusServiceUnavailable)
		} else {
			w.WriteHeader(http.StatusOK)
		}
		json.NewEncoder(w).Encode(report)
	}
}

// LivenessHandler reports that the process is running. It never checks
// dependencies.
func (m *Manager) LivenessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status": "alive",
			"uptime": time.Since(m.startTime).String(),
		})
	}
}

// DatabaseChecker checks database connectivity and pool pressure.
type DatabaseChecker struct {
	db   *sql.DB
	name string
}

func NewDatabaseChecker(db *sql.DB, name string) *DatabaseChecker {
	return &DatabaseChecker{db: db, name: name}
}

func (dc *DatabaseChecker) Name() string { return dc.name }

func (dc *DatabaseChecker) Check(ctx context.Context) ComponentHealth {
	start := time.Now()

	result := ComponentHealth{
		Name:        dc.name,
		LastChecked: time.Now(),
		Metadata:    make(map[string]interface{}),
	}

	if err := dc.db.PingContext(ctx); err != nil {
		result.Status = StatusUnhealthy
		result.Error = err.Error()
		result.Message = "Database connection failed"
		result.Duration = time.Since(start)
		return result
	}

	var one int
	if err := dc.db.QueryRowContext(ctx, "SELECT 1").Scan(&one); err != nil {
		result.Status = StatusDegraded
		result.Error = err.Error()
		result.Message = "Database query failed"
	} else {
		result.Status = StatusHealthy
		result.Message = "Database connection successful"
	}

	stats := dc.db.Stats()
	result.Metadata["open_connections"] = stats.OpenConnections
	result.Metadata["in_use"] = stats.InUse
	result.Metadata["idle"] = stats.Idle
	result.Metadata["wait_count"] = stats.WaitCount

	result.Duration = time.Since(start)
	return result
}

// HTTPChecker checks reachability of an external HTTP dependency, such as the
// Google Places endpoint.
type HTTPChecker struct {
	client *http.Client
	url    string
	name   string
}

func NewHTTPChecker(url, name string, timeout time.Duration) *HTTPChecker {
	return &HTTPChecker{
		client: &http.Client{Timeout: timeout},
		url:    url,
		name:   name,
	}
}

func (hc *HTTPChecker) Name() string { return hc.name }

func (hc *HTTPChecker) Check(ctx context.Context) ComponentHealth {
	start := time.Now()

	result := ComponentHealth{
		Name:        hc.name,
		LastChecked: time.Now(),
		Metadata:    map[string]interface{}{"url": hc.url},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, hc.url, nil)
	if err != nil {
		result.Status = StatusUnhealthy
		result.Error = err.Error()
		result.Message = "Failed to create HTTP request"
		result.Duration = time.Since(start)
		return result
	}

	resp, err := hc.client.Do(req)
	if err != nil {
		result.Status = StatusUnhealthy
		result.Error = err.Error()
		result.Message = "HTTP request failed"
		result.Duration = time.Since(start)
		return result
	}
	defer resp.Body.Close()

	result.Metadata["status_code"] = resp.StatusCode
	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		result.Status = StatusHealthy
		result.Message = "HTTP service responding"
	case resp.StatusCode >= 500:
		result.Status = StatusUnhealthy
		result.Message = "HTTP service error"
	default:
		result.Status = StatusDegraded
		result.Message = "HTTP service degraded"
	}

	result.Duration = time.Since(start)
	return result
}
