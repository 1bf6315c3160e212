// Package resilience executes callables under a named operation's
// retry and circuit-breaker strategy (spec.md §4.4, C4). It is the
// only package that sleeps between attempts; everything else in this
// module treats resilience.Orchestrator as an opaque "run under
// policy" boundary.
package resilience

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/textcore/aicore/internal/apperrors"
	"github.com/textcore/aicore/internal/config"
	"github.com/textcore/aicore/pkg/logger"
)

// Callable is a zero-arg operation run under a resilience policy. It
// must classify its own failures using apperrors Kinds so the
// orchestrator can tell transient from permanent from rate-limited.
type Callable func(ctx context.Context) error

// Orchestrator runs callables under per-operation retry and circuit
// breaker policy. One Orchestrator is shared by all concurrent callers
// of a process; its circuit state is process-wide (spec.md §5).
type Orchestrator struct {
	log logger.Logger
	reg *registry

	rngMu sync.Mutex
	rng   *rand.Rand
}

// New creates an Orchestrator. A nil logger is replaced with a NoOp
// sink. The jitter random source seeds from a fixed value rather than
// time.Now(), so the jitter sequence stays reproducible under test.
func New(log logger.Logger) *Orchestrator {
	if log == nil {
		log = logger.NoOp{}
	}
	return &Orchestrator{
		log: log,
		reg: newRegistry(),
		rng: rand.New(rand.NewSource(1)),
	}
}

func (o *Orchestrator) jitter(max time.Duration) time.Duration {
	if max <= 0 {
		return 0
	}
	o.rngMu.Lock()
	defer o.rngMu.Unlock()
	return time.Duration(o.rng.Int63n(int64(max) + 1))
}

// Run executes fn under the retry and circuit breaker policy for
// operationName. If resilience is disabled entirely (params.MaxAttempts
// treated as moot), fn runs once and its error propagates unchanged.
func (o *Orchestrator) Run(ctx context.Context, operationName string, params config.RetryParams, resilienceEnabled bool, fn Callable) error {
	if !resilienceEnabled {
		return fn(ctx)
	}

	cb := o.reg.get(operationName, params.FailureThreshold, params.RecoveryTimeout, params.HalfOpenMaxCalls)

	if !cb.allow(time.Now()) {
		return apperrors.Wrap("resilience.run", apperrors.KindServiceUnavailable,
			"circuit open for operation "+operationName, apperrors.ErrCircuitOpen).WithContext("operation", operationName)
	}

	maxAttempts := params.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		attemptCtx := ctx
		var cancel context.CancelFunc
		if params.PerAttemptTimeout > 0 {
			attemptCtx, cancel = context.WithTimeout(ctx, params.PerAttemptTimeout)
		}

		err := fn(attemptCtx)
		if cancel != nil {
			cancel()
		}

		if ctx.Err() != nil {
			// Caller cancelled: abandon, no further retries, breaker
			// accounting untouched (spec.md §4.4 cancellation semantics).
			return ctx.Err()
		}

		if err == nil {
			cb.recordSuccess()
			return nil
		}

		if attemptCtx.Err() != nil && ctx.Err() == nil {
			err = apperrors.Wrap("resilience.run", apperrors.KindTransientInfrastructure,
				"attempt timed out", err)
		}

		lastErr = err

		if !apperrors.IsRetryable(err) {
			cb.recordFailure(time.Now())
			return err
		}

		opened := cb.recordFailure(time.Now())
		if opened {
			o.log.Info("circuit breaker opened", logger.F("operation", operationName), logger.F("attempt", attempt))
			return apperrors.Wrap("resilience.run", apperrors.KindServiceUnavailable,
				"circuit opened for operation "+operationName, lastErr)
		}

		if attempt == maxAttempts {
			break
		}

		o.log.Warn("retrying operation after failure", logger.F("operation", operationName),
			logger.F("attempt", attempt), logger.F("error", err.Error()))

		delay := backoffDelay(params, attempt)
		if params.JitterEnabled {
			delay += o.jitter(params.JitterMax)
		}
		if delay > 0 {
			timer := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
			}
		}
	}

	return apperrors.Wrap("resilience.run", apperrors.KindServiceUnavailable,
		"exhausted retries for operation "+operationName, lastErr)
}

// backoffDelay computes the exponential delay before the given attempt
// (1-indexed) retries, per spec.md §4.4:
// min(exp_max, exp_min * multiplier^(attempt-1)).
func backoffDelay(params config.RetryParams, attempt int) time.Duration {
	d := float64(params.ExpMin)
	for i := 1; i < attempt; i++ {
		d *= params.ExpMultiplier
	}
	delay := time.Duration(d)
	if delay > params.ExpMax {
		delay = params.ExpMax
	}
	if delay > params.MaxDelay && params.MaxDelay > 0 {
		delay = params.MaxDelay
	}
	return delay
}
