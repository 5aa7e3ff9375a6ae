// Package errors provides centralized error definitions and error handling
// utilities for the opsdeck codebase. It defines the signal error taxonomy
// surfaced to operators (validation, unauthorized, not-found, conflict,
// transport), domain-specific error types for backend service calls and
// polling, and classification helpers used by the console to decide what to
// show and whether a retry is meaningful.
//
// Creating errors:
//
//	err := errors.NewServiceError("wms", http.StatusConflict, "CONFLICT", "wave is not in a releasable state")
//	err := errors.NewSignalError("release-wave", cause).WithEntityID(42)
//
// Checking errors:
//
//	if errors.IsConflict(err) { ... }
//	if errors.IsUserFacing(err) { displayToUser(err.Error()) }
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Re-export standard library functions for convenience so callers can
// import only this package for all error handling.
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
	New    = errors.New
	Join   = errors.Join
)

// Newf formats a new error in the manner of fmt.Errorf, including %w
// wrapping.
func Newf(format string, args ...any) error {
	return fmt.Errorf(format, args...)
}

// Kind classifies a signal or service error into the taxonomy surfaced to
// the operator.
type Kind int

const (
	// KindTransport covers network failures and anything the console
	// cannot classify. Transient; never halts a poll loop.
	KindTransport Kind = iota
	// KindValidation means the request shape or identifiers were rejected.
	KindValidation
	// KindUnauthorized means the caller is not allowed to perform the
	// operation.
	KindUnauthorized
	// KindNotFound means the entity does not exist; terminal for the
	// operation.
	KindNotFound
	// KindConflict means the workflow is not in a compatible state for the
	// signal. The backend rejects rather than silently ignoring.
	KindConflict
)

// String returns the taxonomy name for the kind.
func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindUnauthorized:
		return "unauthorized"
	case KindNotFound:
		return "not-found"
	case KindConflict:
		return "conflict"
	default:
		return "transport"
	}
}

// KindFromHTTPStatus maps an HTTP response status onto the error taxonomy.
func KindFromHTTPStatus(status int) Kind {
	switch status {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return KindValidation
	case http.StatusUnauthorized, http.StatusForbidden:
		return KindUnauthorized
	case http.StatusNotFound:
		return KindNotFound
	case http.StatusConflict:
		return KindConflict
	default:
		return KindTransport
	}
}

// Signal-related sentinel errors
var (
	// ErrSignalInFlight indicates a signal is already being dispatched;
	// controls are disabled while a dispatch is in flight.
	ErrSignalInFlight = New("signal already in flight")
	// ErrNoSelection indicates a rate selection signal without a chosen rate.
	ErrNoSelection = New("no rate selected")
)

// Poller-related sentinel errors
var (
	// ErrNoWorkflowID indicates an attempt to poll an entity that has no
	// workflow handle assigned yet.
	ErrNoWorkflowID = New("no workflow id assigned")
)

// Configuration-related sentinel errors
var (
	// ErrMissingBaseURL indicates a service client was constructed without
	// a base URL.
	ErrMissingBaseURL = New("service base URL is not configured")
)

// baseError provides common functionality for all error types.
type baseError struct {
	message    string
	cause      error
	retryable  bool
	userFacing bool
}

func (e *baseError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.message, e.cause)
	}
	return e.message
}

func (e *baseError) Unwrap() error { return e.cause }

func (e *baseError) Is(target error) bool {
	if e.cause != nil {
		return errors.Is(e.cause, target)
	}
	return false
}

// ServiceError represents a failed call to one of the backend record
// systems (ims, oms, wms, sms). It carries the HTTP status and the
// backend's error envelope verbatim so the operator sees the backend's own
// message.
type ServiceError struct {
	baseError
	Service string
	Status  int
	Code    string
}

// NewServiceError creates a ServiceError from a backend error envelope.
func NewServiceError(service string, status int, code, message string) *ServiceError {
	kind := KindFromHTTPStatus(status)
	return &ServiceError{
		baseError: baseError{
			message:    message,
			retryable:  kind == KindTransport,
			userFacing: true,
		},
		Service: service,
		Status:  status,
		Code:    code,
	}
}

// NewTransportError wraps a low-level transport failure (connection refused,
// timeout, malformed body) as a ServiceError with no HTTP status.
func NewTransportError(service string, cause error) *ServiceError {
	return &ServiceError{
		baseError: baseError{
			message:    "request failed",
			cause:      cause,
			retryable:  true,
			userFacing: false,
		},
		Service: service,
	}
}

// Kind returns the taxonomy classification for the error.
func (e *ServiceError) Kind() Kind {
	if e.Status == 0 {
		return KindTransport
	}
	return KindFromHTTPStatus(e.Status)
}

// Error returns the formatted error message.
func (e *ServiceError) Error() string {
	prefix := fmt.Sprintf("%s error", e.Service)
	if e.Status != 0 {
		prefix = fmt.Sprintf("%s error [status=%d]", e.Service, e.Status)
	}
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.message)
}

// Is checks if this error matches the target.
func (e *ServiceError) Is(target error) bool {
	if _, ok := target.(*ServiceError); ok {
		return true
	}
	return e.baseError.Is(target)
}

// SignalError represents a rejected or failed signal dispatch. It wraps the
// underlying ServiceError so taxonomy checks see through it.
type SignalError struct {
	baseError
	Signal   string
	EntityID int64
}

// NewSignalError creates a new SignalError.
func NewSignalError(signal string, cause error) *SignalError {
	return &SignalError{
		baseError: baseError{
			message:    "signal rejected",
			cause:      cause,
			retryable:  false,
			userFacing: true,
		},
		Signal: signal,
	}
}

// WithEntityID adds the owning entity id to the error context.
func (e *SignalError) WithEntityID(id int64) *SignalError {
	e.EntityID = id
	return e
}

// Error returns the formatted error message.
func (e *SignalError) Error() string {
	prefix := fmt.Sprintf("signal error [signal=%s]", e.Signal)
	if e.EntityID != 0 {
		prefix = fmt.Sprintf("signal error [signal=%s, entity=%d]", e.Signal, e.EntityID)
	}
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", prefix, e.cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.message)
}

// Is checks if this error matches the target.
func (e *SignalError) Is(target error) bool {
	if _, ok := target.(*SignalError); ok {
		return true
	}
	return e.baseError.Is(target)
}

// PollError represents a failed poll tick. Poll errors are always absorbed
// by the loop: they are displayed as a non-blocking error state and the
// next tick proceeds normally.
type PollError struct {
	baseError
	Seq uint64
}

// NewPollError creates a new PollError for the given fetch sequence number.
func NewPollError(seq uint64, cause error) *PollError {
	return &PollError{
		baseError: baseError{
			message:    "poll failed",
			cause:      cause,
			retryable:  true,
			userFacing: false,
		},
		Seq: seq,
	}
}

// Error returns the formatted error message.
func (e *PollError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("poll error [seq=%d]: %v", e.Seq, e.cause)
	}
	return fmt.Sprintf("poll error [seq=%d]: %s", e.Seq, e.message)
}

// Is checks if this error matches the target.
func (e *PollError) Is(target error) bool {
	if _, ok := target.(*PollError); ok {
		return true
	}
	return e.baseError.Is(target)
}

// kindOf extracts the taxonomy kind from any error chain containing a
// ServiceError. Everything else classifies as transport.
func kindOf(err error) Kind {
	var svcErr *ServiceError
	if As(err, &svcErr) {
		return svcErr.Kind()
	}
	return KindTransport
}

// IsConflict reports whether the error is a domain conflict: the workflow
// was not in a compatible step for the signal.
func IsConflict(err error) bool {
	return err != nil && kindOf(err) == KindConflict
}

// IsNotFound reports whether the error means the entity does not exist.
func IsNotFound(err error) bool {
	return err != nil && kindOf(err) == KindNotFound
}

// IsValidation reports whether the error is a request validation failure.
func IsValidation(err error) bool {
	return err != nil && kindOf(err) == KindValidation
}

// IsUnauthorized reports whether the caller lacked permission.
func IsUnauthorized(err error) bool {
	return err != nil && kindOf(err) == KindUnauthorized
}

// IsRetryable reports whether the error represents a transient condition.
// Only transport-class failures are retryable; domain rejections are not.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	var sigErr *SignalError
	if As(err, &sigErr) {
		// A signal wrapping a transport failure may be retried by the
		// operator; domain rejections may not.
		return sigErr.cause != nil && IsRetryable(sigErr.cause)
	}
	var pollErr *PollError
	if As(err, &pollErr) {
		return pollErr.retryable
	}
	var svcErr *ServiceError
	if As(err, &svcErr) {
		return svcErr.retryable
	}
	return false
}

// IsUserFacing reports whether the error message is safe to display to the
// operator verbatim.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	var sigErr *SignalError
	if As(err, &sigErr) {
		return sigErr.userFacing
	}
	var svcErr *ServiceError
	if As(err, &svcErr) {
		return svcErr.userFacing
	}
	return false
}

// Wrap wraps an error with additional context message.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with a formatted context message.
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}
