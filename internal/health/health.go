// Package health tracks per-provider failure state and latency metrics.
// The tracker is the mechanism that removes chronically failing providers
// from consideration on subsequent requests.
package health

import (
	"math"
	"sort"
	"sync"
	"time"
)

const (
	// DefaultAllowedFails is how many consecutive failures open the circuit.
	DefaultAllowedFails = 5

	// DefaultCooldown is how long an open circuit excludes a provider.
	DefaultCooldown = 2 * time.Minute

	// latencyWindow caps the rolling latency sample count per provider.
	latencyWindow = 300
)

type providerState struct {
	failures      int
	cooldownUntil time.Time
	latencies     []int64 // milliseconds, oldest first
	total         int64
	errors        int64
}

// Tracker holds circuit-breaker state and rolling metrics for all providers.
// Safe for concurrent use.
type Tracker struct {
	mu           sync.Mutex
	states       map[string]*providerState
	allowedFails int
	cooldown     time.Duration
}

// NewTracker creates a tracker. Zero values select the defaults.
func NewTracker(allowedFails int, cooldown time.Duration) *Tracker {
	if allowedFails <= 0 {
		allowedFails = DefaultAllowedFails
	}
	if cooldown <= 0 {
		cooldown = DefaultCooldown
	}
	return &Tracker{
		states:       make(map[string]*providerState),
		allowedFails: allowedFails,
		cooldown:     cooldown,
	}
}

func (t *Tracker) state(id string) *providerState {
	s, ok := t.states[id]
	if !ok {
		s = &providerState{}
		t.states[id] = s
	}
	return s
}

// ShouldSkip reports whether the provider is in cooldown. An elapsed
// cooldown closes the circuit automatically.
func (t *Tracker) ShouldSkip(id string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	s, ok := t.states[id]
	if !ok {
		return false
	}
	return time.Now().Before(s.cooldownUntil)
}

// RecordOutcome updates the failure counter. Success resets it; the
// allowedFails-th consecutive failure opens a cooldown and resets the
// counter so a fresh streak is required to re-open.
func (t *Tracker) RecordOutcome(id string, ok bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	s := t.state(id)
	if ok {
		s.failures = 0
		s.cooldownUntil = time.Time{}
		return
	}
	s.failures++
	if s.failures >= t.allowedFails {
		s.cooldownUntil = time.Now().Add(t.cooldown)
		s.failures = 0
	}
}

// RecordLatency appends one latency sample to the provider's rolling window
// and bumps the total/error counters. Also feeds the prometheus collectors.
func (t *Tracker) RecordLatency(id string, d time.Duration, ok bool) {
	ms := d.Milliseconds()

	t.mu.Lock()
	s := t.state(id)
	s.total++
	if !ok {
		s.errors++
	}
	s.latencies = append(s.latencies, ms)
	if len(s.latencies) > latencyWindow {
		s.latencies = s.latencies[len(s.latencies)-latencyWindow:]
	}
	t.mu.Unlock()

	observeRequest(id, d, ok)
}

// ProviderMetrics is an observability snapshot for one provider. It never
// gates request behavior.
type ProviderMetrics struct {
	ID        string  `json:"id"`
	Total     int64   `json:"total"`
	Errors    int64   `json:"errors"`
	ErrorRate float64 `json:"errorRate"`
	P50       int64   `json:"p50"`
	P95       int64   `json:"p95"`
}

// Snapshot returns per-provider metrics sorted by provider id.
func (t *Tracker) Snapshot() []ProviderMetrics {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]ProviderMetrics, 0, len(t.states))
	for id, s := range t.states {
		m := ProviderMetrics{
			ID:     id,
			Total:  s.total,
			Errors: s.errors,
			P50:    percentile(s.latencies, 50),
			P95:    percentile(s.latencies, 95),
		}
		if s.total > 0 {
			m.ErrorRate = math.Round(float64(s.errors)/float64(s.total)*1000) / 1000
		}
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func percentile(samples []int64, p int) int64 {
	if len(samples) == 0 {
		return 0
	}
	sorted := make([]int64, len(samples))
	copy(sorted, samples)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	idx := int(float64(p) / 100 * float64(len(sorted)-1))
	if idx > len(sorted)-1 {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}
