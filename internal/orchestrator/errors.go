package orchestrator

import (
	"errors"
	"fmt"
	"time"

	"synthd/pkg/types"
)

// Stable failure kinds carried on the wire as error_kind.
const (
	KindNotInitialized        = "not_initialized"
	KindCapabilityUnavailable = "capability_unavailable"
	KindModelNotFound         = "model_not_found"
	KindLoadFailed            = "load_failed"
	KindExecutionFailed       = "execution_failed"
	KindExecutionTimeout      = "execution_timeout"
	KindBadRequest            = "bad_request"
)

// notInitializedError signals an operation before Initialize.
type notInitializedError struct{}

func (notInitializedError) Error() string { return "orchestrator not initialized" }

func ErrNotInitialized() error { return notInitializedError{} }

// IsNotInitialized reports whether err indicates a call before Initialize.
func IsNotInitialized(err error) bool {
	var e notInitializedError
	return errors.As(err, &e)
}

// capabilityUnavailableError signals a load for a capability with no
// registered runtime, so the HTTP layer can return 503 instead of 500.
type capabilityUnavailableError struct{ capability types.Capability }

func (e capabilityUnavailableError) Error() string {
	return fmt.Sprintf("capability unavailable: %s (no runtime registered)", e.capability)
}

func ErrCapabilityUnavailable(c types.Capability) error {
	return capabilityUnavailableError{capability: c}
}

// IsCapabilityUnavailable reports whether err indicates a missing runtime.
func IsCapabilityUnavailable(err error) bool {
	var e capabilityUnavailableError
	return errors.As(err, &e)
}

// modelNotFoundError signals an operation referencing an unloaded id.
type modelNotFoundError struct{ id string }

func (e modelNotFoundError) Error() string { return "model not found: " + e.id }

func ErrModelNotFound(id string) error { return modelNotFoundError{id: id} }

// IsModelNotFound reports whether the error indicates a missing model id.
func IsModelNotFound(err error) bool {
	var e modelNotFoundError
	return errors.As(err, &e)
}

// loadFailedError signals a faulted execution-object construction. The
// registry is unchanged when this is returned.
type loadFailedError struct {
	id    string
	cause error
}

func (e loadFailedError) Error() string { return fmt.Sprintf("load failed for %s: %v", e.id, e.cause) }
func (e loadFailedError) Unwrap() error { return e.cause }

func ErrLoadFailed(id string, cause error) error { return loadFailedError{id: id, cause: cause} }

// IsLoadFailed reports whether err indicates a faulted load.
func IsLoadFailed(err error) bool {
	var e loadFailedError
	return errors.As(err, &e)
}

// executionFailedError signals a generation fault mid-run.
type executionFailedError struct {
	id    string
	cause error
}

func (e executionFailedError) Error() string {
	return fmt.Sprintf("execution failed for %s: %v", e.id, e.cause)
}
func (e executionFailedError) Unwrap() error { return e.cause }

func ErrExecutionFailed(id string, cause error) error {
	return executionFailedError{id: id, cause: cause}
}

// IsExecutionFailed reports whether err indicates a generation fault.
func IsExecutionFailed(err error) bool {
	var e executionFailedError
	return errors.As(err, &e)
}

// executionTimeoutError signals a generation stopped by deadline or caller
// cancellation.
type executionTimeoutError struct {
	id      string
	timeout time.Duration
}

func (e executionTimeoutError) Error() string {
	return fmt.Sprintf("execution timed out for %s after %s", e.id, e.timeout)
}

func ErrExecutionTimeout(id string, timeout time.Duration) error {
	return executionTimeoutError{id: id, timeout: timeout}
}

// IsExecutionTimeout reports whether err indicates a timed-out or canceled
// generation.
func IsExecutionTimeout(err error) bool {
	var e executionTimeoutError
	return errors.As(err, &e)
}

// badRequestError signals malformed or out-of-contract structured input.
type badRequestError struct{ msg string }

func (e badRequestError) Error() string { return e.msg }

func ErrBadRequest(msg string) error { return badRequestError{msg: msg} }

// IsBadRequest reports whether err indicates rejected input.
func IsBadRequest(err error) bool {
	var e badRequestError
	return errors.As(err, &e)
}

// Kind maps err to its stable wire kind; empty for errors outside the
// taxonomy.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case IsNotInitialized(err):
		return KindNotInitialized
	case IsCapabilityUnavailable(err):
		return KindCapabilityUnavailable
	case IsModelNotFound(err):
		return KindModelNotFound
	case IsLoadFailed(err):
		return KindLoadFailed
	case IsExecutionTimeout(err):
		return KindExecutionTimeout
	case IsExecutionFailed(err):
		return KindExecutionFailed
	case IsBadRequest(err):
		return KindBadRequest
	default:
		return ""
	}
}
