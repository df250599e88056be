// Package health runs liveness and readiness probes in the background and
// serves their state on /livez and /readyz.
//
// A probe flips to failing only after FailureThreshold consecutive errors and
// back to passing after one success, so a single slow ping does not take the
// instance out of rotation.
package health

import (
	"context"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/go-faster/jx"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Kind selects the endpoint a probe reports to.
type Kind int

const (
	Liveness Kind = iota
	Readiness
)

func (k Kind) String() string {
	if k == Liveness {
		return "liveness"
	}
	return "readiness"
}

// Func checks one dependency and returns nil when it is usable.
type Func func(ctx context.Context) error

// Probe describes a registered check.
type Probe struct {
	Name    string
	Kind    Kind
	Timeout time.Duration
	Check   Func
	// FailureThreshold defaults to 3.
	FailureThreshold int
}

type probeState struct {
	Probe

	mu      sync.Mutex
	failing bool
	fails   int
	lastErr error
}

// observe records the outcome of one check run and reports whether the
// probe changed state.
func (p *probeState) observe(err error) (changed bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.lastErr = err
	was := p.failing
	if err != nil {
		p.fails++
		if p.fails >= p.FailureThreshold {
			p.failing = true
		}
	} else {
		p.fails = 0
		p.failing = false
	}
	return was != p.failing
}

func (p *probeState) status() (failing bool, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.failing, p.lastErr
}

func (p *probeState) run(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, p.Timeout)
	defer cancel()
	return p.Check(ctx)
}

// Health owns the registered probes and the manual readiness gate.
type Health struct {
	lg *zap.Logger

	mu     sync.RWMutex
	probes []*probeState
	ready  bool
	stop   context.CancelFunc
	group  *errgroup.Group
}

// New returns a Health that is not ready until SetReady(true).
func New(lg *zap.Logger) *Health {
	return &Health{lg: lg}
}

// Add registers p. Probes start out passing.
func (h *Health) Add(p Probe) {
	if p.FailureThreshold <= 0 {
		p.FailureThreshold = 3
	}
	if p.Timeout <= 0 {
		p.Timeout = time.Second
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.probes = append(h.probes, &probeState{Probe: p})
}

// Start runs every probe immediately and then once per interval until Stop
// is called or ctx is done.
func (h *Health) Start(ctx context.Context, interval time.Duration) {
	ctx, cancel := context.WithCancel(ctx)
	g, ctx := errgroup.WithContext(ctx)

	h.mu.Lock()
	h.stop, h.group = cancel, g
	probes := append([]*probeState(nil), h.probes...)
	h.mu.Unlock()

	for _, p := range probes {
		g.Go(func() error {
			h.loop(ctx, p, interval)
			return nil
		})
	}
}

func (h *Health) loop(ctx context.Context, p *probeState, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		h.runOnce(ctx, p)
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (h *Health) runOnce(ctx context.Context, p *probeState) {
	err := p.run(ctx)
	if !p.observe(err) {
		return
	}
	lg := h.lg.With(zap.String("probe", p.Name), zap.Stringer("kind", p.Kind))
	if err != nil {
		lg.Warn("Probe failing", zap.Error(err))
		return
	}
	lg.Info("Probe recovered")
}

// Stop cancels the probe goroutines and waits for them to exit.
func (h *Health) Stop() {
	h.mu.Lock()
	stop, g := h.stop, h.group
	h.stop, h.group = nil, nil
	h.mu.Unlock()

	if stop == nil {
		return
	}
	stop()
	_ = g.Wait()
}

// SetReady opens or closes the readiness gate.
func (h *Health) SetReady(ready bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.ready = ready
}

// IsReady reports whether the gate is open and no readiness probe fails.
func (h *Health) IsReady() bool {
	ready, failures := h.failures(Readiness)
	return ready && len(failures) == 0
}

// failures returns the gate state and the failing probes of kind.
func (h *Health) failures(kind Kind) (ready bool, failures map[string]string) {
	h.mu.RLock()
	ready = h.ready
	probes := append([]*probeState(nil), h.probes...)
	h.mu.RUnlock()

	failures = make(map[string]string)
	for _, p := range probes {
		if p.Kind != kind {
			continue
		}
		failing, err := p.status()
		if !failing {
			continue
		}
		msg := "failing"
		if err != nil {
			msg = err.Error()
		}
		failures[p.Name] = msg
	}
	return ready, failures
}

// LiveEndpoint serves /livez.
func (h *Health) LiveEndpoint(w http.ResponseWriter, _ *http.Request) {
	_, failures := h.failures(Liveness)
	writeStatus(w, failures)
}

// ReadyEndpoint serves /readyz. A closed gate is reported as the
// "_readiness" check.
func (h *Health) ReadyEndpoint(w http.ResponseWriter, _ *http.Request) {
	ready, failures := h.failures(Readiness)
	if !ready {
		failures["_readiness"] = "service is not ready"
	}
	writeStatus(w, failures)
}

// writeStatus writes {"status":"ok"} or 503 with the failing checks.
func writeStatus(w http.ResponseWriter, failures map[string]string) {
	e := jx.GetEncoder()
	defer jx.PutEncoder(e)

	status := http.StatusOK
	e.Obj(func(e *jx.Encoder) {
		if len(failures) == 0 {
			e.Field("status", func(e *jx.Encoder) { e.Str("ok") })
			return
		}
		status = http.StatusServiceUnavailable
		e.Field("status", func(e *jx.Encoder) { e.Str("unhealthy") })
		names := make([]string, 0, len(failures))
		for name := range failures {
			names = append(names, name)
		}
		sort.Strings(names)
		e.Field("checks", func(e *jx.Encoder) {
			e.Obj(func(e *jx.Encoder) {
				for _, name := range names {
					e.Field(name, func(e *jx.Encoder) { e.Str(failures[name]) })
				}
			})
		})
	})

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(e.Bytes())
}
