package domain

import (
	"errors"
	"fmt"
)

// Error codes carried by *Error. The handler package maps each to a status.
const (
	ECONFLICT     = "conflict"     // unique constraint lost: second active subscription, email taken
	EINTERNAL     = "internal"     // store or programming failure; message is never shown
	EINVALID      = "invalid"      // bad request body or unverifiable webhook
	ENOTFOUND     = "not_found"    // account or subscription not present locally
	EUNAVAILABLE  = "unavailable"  // processor lookup failed or timed out
	EUNAUTHORIZED = "unauthorized" // missing or bad credentials on ops endpoints
	ETOOLARGE     = "too_large"    // webhook or request body over the limit
	ERATELIMIT    = "rate_limited" // checkout session creation throttled
)

const genericInternalMessage = "An internal error occurred. Please try again later."

// Error is a classified failure. Op names the operation that failed, for
// example "lifecycle.created" or "checkout.create", and is only logged.
type Error struct {
	Code    string
	Message string
	Op      string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	if e.Op != "" {
		return e.Op + ": " + msg
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// ErrorCode returns the code of the first *Error in err's chain. Field
// validation failures are EINVALID; anything unclassified is EINTERNAL.
func ErrorCode(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		return EINVALID
	}
	return EINTERNAL
}

// ErrorMessage returns the text safe to send back to a caller.
func ErrorMessage(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) && e.Code != EINTERNAL {
		return e.Message
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		return "Validation failed"
	}
	return genericInternalMessage
}

func ErrorOp(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Op
	}
	return ""
}

// IsClientError reports whether err is the caller's fault: a bad request,
// an unknown record or a lost race. Such errors get a 4xx and are not
// reported to Sentry.
func IsClientError(err error) bool {
	switch ErrorCode(err) {
	case EINVALID, EUNAUTHORIZED, ENOTFOUND, ECONFLICT, ETOOLARGE, ERATELIMIT:
		return true
	}
	return false
}

// Errorf builds an *Error with a formatted message, e.g.
// domain.Errorf(domain.EINVALID, "event.verify", "unsupported api version %s", v).
func Errorf(code, op, format string, args ...interface{}) error {
	return &Error{Code: code, Op: op, Message: fmt.Sprintf(format, args...)}
}

// WrapError classifies err. A nil err stays nil.
func WrapError(err error, code, op, message string) error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Op: op, Message: message, Err: err}
}

func NotFound(op, resource, identifier string) error {
	return &Error{Code: ENOTFOUND, Op: op, Message: fmt.Sprintf("%s not found: %s", resource, identifier)}
}

func Invalid(op, message string) error {
	return &Error{Code: EINVALID, Op: op, Message: message}
}

// Unavailable marks a failed or timed-out processor call.
func Unavailable(err error, op, message string) error {
	return &Error{Code: EUNAVAILABLE, Op: op, Message: message, Err: err}
}

// Internal marks a failure the caller cannot fix. Only err and message
// reach the logs; callers see a generic message.
func Internal(err error, op, message string) error {
	return &Error{Code: EINTERNAL, Op: op, Message: message, Err: err}
}

// ValidationError collects per-field failures for a checkout or dashboard
// request, keyed by the JSON field name.
type ValidationError struct {
	Op     string
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	prefix := ""
	if e.Op != "" {
		prefix = e.Op + ": "
	}
	if len(e.Fields) == 1 {
		for field, msg := range e.Fields {
			return prefix + field + ": " + msg
		}
	}
	return fmt.Sprintf("%svalidation failed for %d fields", prefix, len(e.Fields))
}

func NewValidationError(op, field, message string) error {
	return &ValidationError{Op: op, Fields: map[string]string{field: message}}
}

// AddFieldError records one more field failure on err, starting a new
// ValidationError when err is not one.
func AddFieldError(err error, field, message string) error {
	var ve *ValidationError
	if errors.As(err, &ve) {
		ve.Fields[field] = message
		return ve
	}
	return &ValidationError{Fields: map[string]string{field: message}}
}

// GetValidationFields returns the field failures in err, or nil.
func GetValidationFields(err error) map[string]string {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Fields
	}
	return nil
}
