// Package health exposes Kubernetes-style /livez and /readyz probes.
//
// Every registered check runs on its own ticker goroutine. State transitions
// are threshold-based so a single slow database ping does not flip readiness:
// a check turns unhealthy after failThreshold consecutive failures and
// healthy again after okThreshold consecutive successes.
package health

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"sync/atomic"
	"time"
)

// CheckFunc probes one component. A nil return means healthy.
type CheckFunc func(ctx context.Context) error

type probeKind int

const (
	kindLiveness probeKind = iota
	kindReadiness
)

const (
	failThreshold = 3
	okThreshold   = 1
)

// probeState is published as a whole so readers never see a healthy flag
// paired with a stale error.
type probeState struct {
	healthy bool
	err     error
}

// probe is one registered check plus its runtime state. The streak counters
// belong exclusively to the loop goroutine; HTTP handlers only read state.
type probe struct {
	name    string
	kind    probeKind
	timeout time.Duration
	fn      CheckFunc

	state atomic.Pointer[probeState]

	failStreak int
	okStreak   int
}

func newProbe(name string, kind probeKind, timeout time.Duration, fn CheckFunc) *probe {
	p := &probe{name: name, kind: kind, timeout: timeout, fn: fn}
	// Healthy until the first observation says otherwise.
	p.state.Store(&probeState{healthy: true})
	return p
}

func (p *probe) current() probeState {
	return *p.state.Load()
}

// observe runs the check once and applies the thresholds. Called only from
// the probe's own loop goroutine.
func (p *probe) observe(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	err := p.fn(ctx)
	healthy := p.current().healthy

	if err != nil {
		p.okStreak = 0
		p.failStreak++
		if p.failStreak >= failThreshold {
			healthy = false
		}
	} else {
		p.failStreak = 0
		p.okStreak++
		if p.okStreak >= okThreshold {
			healthy = true
		}
	}

	p.state.Store(&probeState{healthy: healthy, err: err})
}

func (p *probe) loop(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	p.observe(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.observe(ctx)
		}
	}
}

// Health manages liveness and readiness checks for a service.
type Health struct {
	ready atomic.Bool

	// mu guards probes and cancel. Registration happens before Start; the
	// HTTP handlers only take a snapshot of the slice.
	mu     sync.RWMutex
	probes []*probe
	cancel context.CancelFunc
}

// New creates a Health service. It starts not ready; call SetReady(true)
// once initialization finishes.
func New() *Health {
	return &Health{}
}

// AddLivenessCheck registers a check that tells whether the process itself
// is functioning (goroutine leaks, GC stalls).
func (h *Health) AddLivenessCheck(name string, timeout time.Duration, check CheckFunc) {
	h.add(newProbe(name, kindLiveness, timeout, check))
}

// AddReadinessCheck registers a check that tells whether the service can
// take traffic (database reachable, dependencies up).
func (h *Health) AddReadinessCheck(name string, timeout time.Duration, check CheckFunc) {
	h.add(newProbe(name, kindReadiness, timeout, check))
}

func (h *Health) add(p *probe) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.probes = append(h.probes, p)
}

// Start launches one goroutine per registered check, each ticking at the
// given interval. Call once after registration.
func (h *Health) Start(ctx context.Context, interval time.Duration) {
	ctx, cancel := context.WithCancel(ctx)

	h.mu.Lock()
	h.cancel = cancel
	probes := h.snapshotLocked()
	h.mu.Unlock()

	for _, p := range probes {
		go p.loop(ctx, interval)
	}
}

// SetReady flips the manual readiness gate. Set true after startup, false
// at the beginning of graceful shutdown to drain traffic.
func (h *Health) SetReady(ready bool) {
	h.ready.Store(ready)
}

// IsReady reports true only when the manual gate is open and every
// readiness check is passing.
func (h *Health) IsReady() bool {
	if !h.ready.Load() {
		return false
	}
	for _, p := range h.snapshot(kindReadiness) {
		if !p.current().healthy {
			return false
		}
	}
	return true
}

// Stop cancels all check goroutines. Safe to call more than once.
func (h *Health) Stop() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.cancel != nil {
		h.cancel()
		h.cancel = nil
	}
}

func (h *Health) snapshot(kind probeKind) []*probe {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]*probe, 0, len(h.probes))
	for _, p := range h.probes {
		if p.kind == kind {
			out = append(out, p)
		}
	}
	return out
}

func (h *Health) snapshotLocked() []*probe {
	out := make([]*probe, len(h.probes))
	copy(out, h.probes)
	return out
}

// statusResponse is the JSON body for both probe endpoints.
type statusResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// LiveEndpoint serves /livez: 200 {"status":"ok"} while liveness checks
// pass, 503 with per-check failure messages otherwise.
func (h *Health) LiveEndpoint(w http.ResponseWriter, r *http.Request) {
	writeStatus(w, failing(h.snapshot(kindLiveness)))
}

// ReadyEndpoint serves /readyz: 200 only when the manual gate is open and
// all readiness checks pass.
func (h *Health) ReadyEndpoint(w http.ResponseWriter, r *http.Request) {
	failures := failing(h.snapshot(kindReadiness))
	if !h.ready.Load() {
		failures["_readiness"] = "service is not ready"
	}
	writeStatus(w, failures)
}

// failing reports the stored last error per unhealthy probe; it never
// re-executes check functions on the request path.
func failing(probes []*probe) map[string]string {
	failures := make(map[string]string)
	for _, p := range probes {
		st := p.current()
		if st.healthy {
			continue
		}
		if st.err != nil {
			failures[p.name] = st.err.Error()
		} else {
			failures[p.name] = "check is unhealthy"
		}
	}
	return failures
}

func writeStatus(w http.ResponseWriter, failures map[string]string) {
	w.Header().Set("Content-Type", "application/json")

	resp := statusResponse{Status: "ok"}
	code := http.StatusOK

	if len(failures) > 0 {
		resp.Status = "unhealthy"
		resp.Checks = failures
		code = http.StatusServiceUnavailable
	}

	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(resp)
}
