package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_Error(t *testing.T) {
	reset := errors.New("connection reset")

	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{"message only", &Error{Code: EINVALID, Message: "invalid signature"}, "invalid signature"},
		{"with op", &Error{Code: EINVALID, Op: "event.verify", Message: "invalid signature"}, "event.verify: invalid signature"},
		{"with cause", &Error{Code: EINTERNAL, Op: "payment.record", Message: "failed to insert payment", Err: reset}, "payment.record: failed to insert payment: connection reset"},
		{"cause without op", &Error{Code: EINTERNAL, Message: "failed to insert payment", Err: reset}, "failed to insert payment: connection reset"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestErrorCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"active subscription exists", WrapError(errors.New("23505"), ECONFLICT, "lifecycle.created", "account already has an active subscription"), ECONFLICT},
		{"wrapped not found", fmt.Errorf("dispatch: %w", NotFound("lifecycle.updated", "subscription", "sub_1")), ENOTFOUND},
		{"checkout body", NewValidationError("checkout.create", "email", "must be a valid email"), EINVALID},
		{"plain error", errors.New("boom"), EINTERNAL},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ErrorCode(tt.err))
		})
	}
}

func TestIsClientError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"plain error", errors.New("boom"), false},
		{"bad signature", Invalid("event.verify", "invalid signature"), true},
		{"unknown account", fmt.Errorf("dashboard: %w", NotFound("account.dashboard", "account", "ada@example.com")), true},
		{"checkout body", NewValidationError("checkout.create", "mode", "is required"), true},
		{"lookup timeout", Unavailable(errors.New("timeout"), "plan.resolve", "price lookup failed"), false},
		{"store failure", Internal(errors.New("db"), "payment.record", "insert failed"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsClientError(tt.err))
		})
	}
}

func TestErrorMessage(t *testing.T) {
	assert.Equal(t, "", ErrorMessage(nil))
	assert.Equal(t, "invalid signature", ErrorMessage(Invalid("event.verify", "invalid signature")))
	assert.Equal(t, "Validation failed", ErrorMessage(NewValidationError("checkout.create", "email", "is required")))
	assert.Equal(t, genericInternalMessage, ErrorMessage(Internal(errors.New("pq: boom"), "payment.record", "insert failed")))
	assert.Equal(t, genericInternalMessage, ErrorMessage(errors.New("dsn=postgres://secret")))
}

func TestWrapError(t *testing.T) {
	assert.Nil(t, WrapError(nil, EINTERNAL, "account.ensure", "failed to create account"))

	cause := errors.New("timeout")
	err := WrapError(cause, EUNAVAILABLE, "plan.checkout_lookup", "checkout session lookup failed")
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, EUNAVAILABLE, ErrorCode(err))
	assert.Equal(t, "plan.checkout_lookup", ErrorOp(err))
	assert.Equal(t, "", ErrorOp(cause))
}

func TestValidationError(t *testing.T) {
	err := NewValidationError("checkout.create", "email", "must be a valid email")
	assert.Equal(t, "checkout.create: email: must be a valid email", err.Error())

	err = AddFieldError(err, "mode", "is required")
	fields := GetValidationFields(err)
	assert.Len(t, fields, 2)
	assert.Equal(t, "is required", fields["mode"])
	assert.Equal(t, "checkout.create: validation failed for 2 fields", err.Error())

	fresh := AddFieldError(errors.New("plain"), "plan_tier", "unknown tier")
	assert.Equal(t, map[string]string{"plan_tier": "unknown tier"}, GetValidationFields(fresh))
	assert.Nil(t, GetValidationFields(errors.New("plain")))
}
