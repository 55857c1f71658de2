package billing

import (
	"errors"
	"fmt"

	"github.com/stripe/stripe-go/v83"
)

var (
	// ErrInvalidAPIKey is returned when Stripe API key is invalid or missing.
	ErrInvalidAPIKey = errors.New("billing: invalid or missing API key")

	// ErrLookupFailed wraps every failed or timed-out processor lookup.
	// Callers with a fallback chain treat it as a step result, not a failure.
	ErrLookupFailed = errors.New("billing: processor lookup failed")

	// ErrCheckoutSessionNotFound is returned when a checkout session does not exist.
	ErrCheckoutSessionNotFound = errors.New("billing: checkout session not found")

	// ErrSubscriptionNotFound is returned when subscription does not exist.
	ErrSubscriptionNotFound = errors.New("billing: subscription not found")
)

// StripeError wraps a Stripe API error with additional context.
type StripeError struct {
	Message       string // Human-readable error message
	Code          string // Stripe error code (e.g., "resource_missing")
	StatusCode    int    // HTTP status code from Stripe
	RequestID     string // Stripe request ID for debugging
	OriginalError error  // Original error from Stripe SDK
}

func (e *StripeError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("stripe: %s (code: %s)", e.Message, e.Code)
	}
	return fmt.Sprintf("stripe: %s", e.Message)
}

func (e *StripeError) Unwrap() error {
	return e.OriginalError
}

// IsTemporary returns true if error is likely transient and retryable.
func (e *StripeError) IsTemporary() bool {
	return e.Code == "rate_limit" || e.Code == "api_connection_error" || e.StatusCode >= 500
}

// IsNotFound returns true if the requested object does not exist.
func (e *StripeError) IsNotFound() bool {
	return e.Code == "resource_missing" || e.StatusCode == 404
}

// wrapStripeError converts a Stripe SDK error into a StripeError.
// Errors that did not come from the Stripe API are returned unchanged.
func wrapStripeError(err error) error {
	var se *stripe.Error
	if !errors.As(err, &se) {
		return err
	}
	return &StripeError{
		Message:       se.Msg,
		Code:          string(se.Code),
		StatusCode:    se.HTTPStatusCode,
		RequestID:     se.RequestID,
		OriginalError: err,
	}
}

// lookupError marks err as a failed lookup while keeping the cause
// reachable through errors.Is and errors.As.
func lookupError(op, id string, err error) error {
	return fmt.Errorf("%w: %s %s: %w", ErrLookupFailed, op, id, wrapStripeError(err))
}
