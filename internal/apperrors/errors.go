// Package apperrors defines the typed failure taxonomy shared by every
// component of the text-processing core (config resolution, caching,
// resilience, validation, health checks). Failures that callers branch
// on carry a Kind so callers can tell failure classes apart with
// errors.As, the way the reference framework's FrameworkError is used
// across its modules; an error without a Kind is treated as
// unclassified.
package apperrors

import (
	"errors"
	"fmt"
)

// Kind identifies the class of failure. The surfaced HTTP status and
// retry eligibility for each kind are documented alongside the
// constant, not derived elsewhere, so the mapping lives in one place.
type Kind string

const (
	// KindConfiguration covers invalid presets, malformed env values and
	// custom JSON overrides that fail structural validation. Not retryable.
	KindConfiguration Kind = "configuration"

	// KindValidation covers malformed requests and model responses that
	// fail structural or content checks. Not retryable.
	KindValidation Kind = "validation"

	// KindAuthentication covers missing/invalid credentials. Not retryable.
	KindAuthentication Kind = "authentication"

	// KindAuthorization covers a authenticated caller lacking permission.
	// Not retryable.
	KindAuthorization Kind = "authorization"

	// KindBusinessLogic covers domain-rule violations (e.g. QA without a
	// question). Not retryable.
	KindBusinessLogic Kind = "business_logic"

	// KindTransientInfrastructure covers timeouts, connection resets, and
	// 5xx-class upstream failures. Retryable by the resilience orchestrator.
	KindTransientInfrastructure Kind = "transient_infrastructure"

	// KindRateLimit covers upstream rate limiting. Retryable, with any
	// retry-after hint honored by the caller.
	KindRateLimit Kind = "rate_limit"

	// KindPermanentInfrastructure covers 400-class upstream failures that
	// retrying cannot fix. Not retryable.
	KindPermanentInfrastructure Kind = "permanent_infrastructure"

	// KindServiceUnavailable is raised by the resilience orchestrator once
	// retries are exhausted or the circuit is open. Not a raw transport
	// error — it always means "give up and degrade".
	KindServiceUnavailable Kind = "service_unavailable"
)

// Error is a structured failure carrying the operation that failed, its
// Kind, a human-readable message, an optional context bag (field names,
// expected vs. actual, operation name, processing id) and an optional
// wrapped cause.
type Error struct {
	Op      string
	Kind    Kind
	Message string
	Context map[string]interface{}
	Err     error
}

func (e *Error) Error() string {
	if e.Op != "" && e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Message, e.Err)
	}
	if e.Op != "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// WithContext returns a copy of e with the given key/value merged into
// its context bag.
func (e *Error) WithContext(key string, value interface{}) *Error {
	ctx := make(map[string]interface{}, len(e.Context)+1)
	for k, v := range e.Context {
		ctx[k] = v
	}
	ctx[key] = value
	return &Error{Op: e.Op, Kind: e.Kind, Message: e.Message, Context: ctx, Err: e.Err}
}

// New creates an Error with the given kind and message.
func New(op string, kind Kind, message string) *Error {
	return &Error{Op: op, Kind: kind, Message: message}
}

// Wrap creates an Error of the given kind wrapping an underlying cause.
func Wrap(op string, kind Kind, message string, err error) *Error {
	return &Error{Op: op, Kind: kind, Message: message, Err: err}
}

// KindOf extracts the Kind of err, if it (or something it wraps) is an
// *Error. Returns ("", false) otherwise.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return "", false
}

// Is reports whether err carries the given Kind.
func Is(err error, kind Kind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}

// IsRetryable reports whether the resilience orchestrator should retry a
// call that failed with err. Transient infrastructure and rate-limit
// failures are retryable; everything else (including a nil or
// unrecognized error) is not.
func IsRetryable(err error) bool {
	k, ok := KindOf(err)
	if !ok {
		return false
	}
	return k == KindTransientInfrastructure || k == KindRateLimit
}

// Sentinel errors for conditions components compare with errors.Is
// rather than inspecting a Kind (process-local control-flow signals
// rather than request-facing failures).
var (
	// ErrCircuitOpen is wrapped by the KindServiceUnavailable error the
	// resilience orchestrator returns when a call is short-circuited
	// because the breaker for that operation is OPEN and the recovery
	// window has not yet elapsed.
	ErrCircuitOpen = errors.New("circuit breaker open")

	// ErrCacheMiss names an absent key. The cache package does not
	// return it: Get reports a miss through its bool result, and the L2
	// decoder reports a corrupt entry through its own unexported error.
	ErrCacheMiss = errors.New("cache miss")
)
