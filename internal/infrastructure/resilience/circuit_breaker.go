package resilience

import (
	"sync"
	"time"
)

// Breaker states.
const (
	stateClosed   = "closed"
	stateOpen     = "open"
	stateHalfOpen = "half-open"
)

// breaker per-operation-name circuit breaker. Failures are timestamps in a
// sliding window; the breaker opens when the pruned window reaches the
// threshold. Transient, never persisted.
type breaker struct {
	state      string
	failures   []time.Time
	openedAt   time.Time
	generation int
	probing    bool
}

// breakerSet concurrency-safe map of breakers keyed by operation name.
// Shared by all in-flight payment operations; every read-check-then-write
// happens under the mutex so concurrent failures cannot under-count toward
// the threshold.
type breakerSet struct {
	mu               sync.Mutex
	breakers         map[string]*breaker
	failureThreshold int
	window           time.Duration
	cooldown         time.Duration
}

func newBreakerSet(failureThreshold int, window, cooldown time.Duration) *breakerSet {
	if failureThreshold < 1 {
		failureThreshold = 1
	}
	return &breakerSet{
		breakers:         make(map[string]*breaker),
		failureThreshold: failureThreshold,
		window:           window,
		cooldown:         cooldown,
	}
}

func (s *breakerSet) get(name string) *breaker {
	b, ok := s.breakers[name]
	if !ok {
		b = &breaker{state: stateClosed}
		s.breakers[name] = b
	}
	return b
}

// allow decides whether an attempt may proceed. While open and within the
// cooldown it rejects without recording anything. After the cooldown the
// breaker goes half-open and admits exactly one probing attempt; concurrent
// callers are rejected until the probe settles. Returns the generation the
// caller must report its outcome against.
func (s *breakerSet) allow(name string, now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b := s.get(name)

	if b.state == stateOpen {
		if now.Sub(b.openedAt) < s.cooldown {
			return b.generation, ErrCircuitOpen
		}
		b.state = stateHalfOpen
		b.failures = nil
		b.probing = false
		b.generation++
	}

	if b.state == stateHalfOpen {
		if b.probing {
			return b.generation, ErrCircuitOpen
		}
		b.probing = true
	}

	return b.generation, nil
}

// recordSuccess closes the breaker and clears its failure history. Outcomes
// from a stale generation are ignored so a half-open probe cannot be
// clobbered by stragglers.
func (s *breakerSet) recordSuccess(name string, generation int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b := s.get(name)
	if b.generation != generation {
		return
	}
	b.state = stateClosed
	b.failures = nil
	b.probing = false
}

// recordFailure appends a failure timestamp, prunes the sliding window, and
// opens the breaker when the threshold is reached. A half-open probe failure
// re-opens immediately.
func (s *breakerSet) recordFailure(name string, generation int, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b := s.get(name)
	if b.generation != generation {
		return
	}

	if b.state == stateHalfOpen {
		b.state = stateOpen
		b.openedAt = now
		b.failures = nil
		b.probing = false
		b.generation++
		return
	}

	b.failures = append(b.failures, now)
	cutoff := now.Add(-s.window)
	pruned := b.failures[:0]
	for _, ts := range b.failures {
		if ts.After(cutoff) {
			pruned = append(pruned, ts)
		}
	}
	b.failures = pruned

	if len(b.failures) >= s.failureThreshold {
		b.state = stateOpen
		b.openedAt = now
		b.failures = nil
		b.generation++
	}
}

// snapshot returns the current state of a breaker for observability.
func (s *breakerSet) snapshot(name string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.breakers[name]
	if !ok {
		return stateClosed
	}
	return b.state
}
