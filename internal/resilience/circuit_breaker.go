package resilience

import (
	"sync"
	"time"
)

// circuitState is one of CLOSED, OPEN, HALF_OPEN (spec.md §3
// CircuitBreakerState). Unlike the teacher's sliding-window, error-rate
// breaker, this one counts consecutive failures — the model spec.md
// §4.4 mandates.
type circuitState int

const (
	stateClosed circuitState = iota
	stateOpen
	stateHalfOpen
)

func (s circuitState) String() string {
	switch s {
	case stateOpen:
		return "OPEN"
	case stateHalfOpen:
		return "HALF_OPEN"
	default:
		return "CLOSED"
	}
}

// circuitBreaker guards a single operation. All mutation happens under
// mu; mu is never held across a suspension point (the caller's
// callable runs outside the lock).
type circuitBreaker struct {
	mu sync.Mutex

	failureThreshold int
	recoveryTimeout  time.Duration
	halfOpenMaxCalls int

	state            circuitState
	consecutiveFails int
	openedAt         time.Time
	halfOpenCalls    int
	halfOpenSuccess  int
}

func newCircuitBreaker(failureThreshold int, recoveryTimeout time.Duration, halfOpenMaxCalls int) *circuitBreaker {
	return &circuitBreaker{
		failureThreshold: failureThreshold,
		recoveryTimeout:  recoveryTimeout,
		halfOpenMaxCalls: halfOpenMaxCalls,
		state:            stateClosed,
	}
}

// allow reports whether a call may proceed, transitioning OPEN ->
// HALF_OPEN if the recovery window has elapsed.
func (cb *circuitBreaker) allow(now time.Time) bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case stateClosed:
		return true
	case stateHalfOpen:
		return true
	case stateOpen:
		if now.Sub(cb.openedAt) >= cb.recoveryTimeout {
			cb.state = stateHalfOpen
			cb.halfOpenCalls = 0
			cb.halfOpenSuccess = 0
			return true
		}
		return false
	default:
		return false
	}
}

// recordSuccess accounts for a successful call.
func (cb *circuitBreaker) recordSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case stateHalfOpen:
		cb.halfOpenCalls++
		cb.halfOpenSuccess++
		if cb.halfOpenSuccess >= cb.halfOpenMaxCalls {
			cb.state = stateClosed
			cb.consecutiveFails = 0
		}
	case stateClosed:
		cb.consecutiveFails = 0
	}
}

// recordFailure accounts for a failed call, returning true if this
// failure opened (or re-opened) the circuit.
func (cb *circuitBreaker) recordFailure(now time.Time) bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case stateHalfOpen:
		cb.state = stateOpen
		cb.openedAt = now
		cb.consecutiveFails = cb.failureThreshold
		return true
	case stateClosed:
		cb.consecutiveFails++
		if cb.consecutiveFails >= cb.failureThreshold {
			cb.state = stateOpen
			cb.openedAt = now
			return true
		}
		return false
	default:
		return false
	}
}

// snapshot returns the breaker's current state for observability.
func (cb *circuitBreaker) snapshot() (circuitState, int, time.Time) {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state, cb.consecutiveFails, cb.openedAt
}

// registry partitions circuit breaker state by operation name, per
// spec.md §3 ("Circuit breaker state is process-wide, partitioned by
// operation name"). Breakers are created lazily and cached for the
// life of the process.
type registry struct {
	mu       sync.Mutex
	breakers map[string]*circuitBreaker
}

func newRegistry() *registry {
	return &registry{breakers: make(map[string]*circuitBreaker)}
}

func (r *registry) get(op string, failureThreshold int, recoveryTimeout time.Duration, halfOpenMaxCalls int) *circuitBreaker {
	r.mu.Lock()
	defer r.mu.Unlock()

	if cb, ok := r.breakers[op]; ok {
		return cb
	}
	cb := newCircuitBreaker(failureThreshold, recoveryTimeout, halfOpenMaxCalls)
	r.breakers[op] = cb
	return cb
}
