// Package selftest checks that the client can reach what it depends on:
// the REST API, the local session store and the stored session.
package selftest

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/joss/debate/internal/domain"
	"github.com/joss/debate/internal/logging"
	"github.com/joss/debate/internal/session"
	"github.com/joss/debate/internal/store"
)

// Component states.
const (
	StatusOK       = "ok"
	StatusDegraded = "degraded"
	StatusError    = "error"
)

// Overall states.
const (
	Healthy   = "healthy"
	Degraded  = "degraded"
	Unhealthy = "unhealthy"
)

// SlowThreshold marks a passing check as degraded.
const SlowThreshold = 2 * time.Second

// ComponentStatus represents health of a single component
type ComponentStatus struct {
	Status  string `json:"status"` // ok, degraded, error
	Latency int64  `json:"latency_ms"`
	Error   string `json:"error,omitempty"`
}

// HealthStatus represents overall client health
type HealthStatus struct {
	Status     string                     `json:"status"` // healthy, degraded, unhealthy
	Components map[string]ComponentStatus `json:"components"`
	Timestamp  string                     `json:"timestamp"`
}

// Check is one named health check. A failing optional check degrades the result
// instead of making it unhealthy.
type Check struct {
	Name     string
	Optional bool
	Run      func(ctx context.Context) error
}

// Names returns the component names in display order.
func (h *HealthStatus) Names() []string {
	names := make([]string, 0, len(h.Components))
	for n := range h.Components {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Healthy reports whether nothing failed.
func (h *HealthStatus) Healthy() bool {
	return h.Status != Unhealthy
}

// CheckHealth runs the checks concurrently, each bounded by timeout.
func CheckHealth(ctx context.Context, timeout time.Duration, checks ...Check) *HealthStatus {
	status := &HealthStatus{
		Status:     Healthy,
		Components: make(map[string]ComponentStatus),
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
	}

	var wg sync.WaitGroup
	var mu sync.Mutex

	for _, c := range checks {
		wg.Add(1)
		go func(c Check) {
			defer wg.Done()
			result := run(ctx, timeout, c)

			mu.Lock()
			defer mu.Unlock()
			status.Components[c.Name] = result
			switch {
			case result.Status == StatusError:
				status.Status = Unhealthy
			case result.Status == StatusDegraded && status.Status == Healthy:
				status.Status = Degraded
			}
		}(c)
	}

	wg.Wait()
	return status
}

func run(ctx context.Context, timeout time.Duration, c Check) (cs ComponentStatus) {
	start := time.Now()
	defer func() { cs.Latency = time.Since(start).Milliseconds() }()

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	err := logging.Guard("selftest", func() error { return c.Run(ctx) })
	if errors.Is(err, logging.ErrPanic) {
		cs.Status = StatusError
		cs.Error = "check panicked"
		return cs
	}
	if err != nil {
		cs.Error = err.Error()
		if c.Optional {
			cs.Status = StatusDegraded
		} else {
			cs.Status = StatusError
		}
		return cs
	}

	cs.Status = StatusOK
	if time.Since(start) > SlowThreshold {
		cs.Status = StatusDegraded
	}
	return cs
}

// DebateLister is the API call used to test reachability.
type DebateLister interface {
	ListDebates(ctx context.Context) ([]domain.Debate, error)
}

// APICheck lists debates, the one unauthenticated read.
func APICheck(api DebateLister) Check {
	return Check{Name: "api", Run: func(ctx context.Context) error {
		_, err := api.ListDebates(ctx)
		return err
	}}
}

// StoreCheck pings the local session store.
func StoreCheck(s store.Store) Check {
	return Check{Name: "session_store", Run: s.Ping}
}

// SessionCheck reports whether someone is signed in. Being signed out is
// not a failure of the client, so the check is optional.
func SessionCheck(src session.Source) Check {
	return Check{Name: "session", Optional: true, Run: func(ctx context.Context) error {
		_, err := src.Current(ctx)
		if errors.Is(err, session.ErrNoSession) {
			return errors.New("not signed in")
		}
		return err
	}}
}
