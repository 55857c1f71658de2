package billing

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stripe/stripe-go/v83"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestProvider(t *testing.T, handler http.HandlerFunc) *StripeProvider {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	provider, err := NewStripeProvider(StripeConfig{
		APIKey:        "sk_test_123",
		WebhookSecret: "whsec_test",
		APIBase:       server.URL,
	})
	require.NoError(t, err)
	return provider
}

func TestNewStripeProvider_RequiresAPIKey(t *testing.T) {
	_, err := NewStripeProvider(StripeConfig{})
	assert.ErrorIs(t, err, ErrInvalidAPIKey)
}

func TestStripeProvider_GetSubscription(t *testing.T) {
	provider := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/subscriptions/sub_123", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "sub_123",
			"object": "subscription",
			"status": "active",
			"customer": "cus_123",
			"start_date": 1700000000,
			"metadata": {"plan_tier": "fancy"},
			"items": {
				"object": "list",
				"data": [{
					"id": "si_1",
					"object": "subscription_item",
					"current_period_start": 1700000000,
					"current_period_end": 1702592000,
					"price": {"id": "price_fancy", "object": "price", "unit_amount": 2999, "currency": "usd"}
				}]
			}
		}`))
	})

	sub, err := provider.GetSubscription(context.Background(), "sub_123")
	require.NoError(t, err)
	assert.Equal(t, "sub_123", sub.ID)
	assert.Equal(t, "cus_123", sub.CustomerID)
	assert.Equal(t, "active", sub.Status)
	assert.Equal(t, "price_fancy", sub.PriceID)
	assert.Equal(t, int64(2999), sub.UnitAmount)
	assert.Equal(t, int64(1702592000), sub.CurrentPeriodEnd)
	assert.Equal(t, "fancy", sub.Metadata["plan_tier"])
}

func TestStripeProvider_GetSubscriptionNotFound(t *testing.T) {
	provider := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error": {"type": "invalid_request_error", "code": "resource_missing", "message": "No such subscription"}}`))
	})

	_, err := provider.GetSubscription(context.Background(), "sub_missing")
	assert.ErrorIs(t, err, ErrSubscriptionNotFound)
}

func TestStripeProvider_GetCustomerFailureIsLookupFailure(t *testing.T) {
	provider := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error": {"type": "invalid_request_error", "code": "parameter_invalid", "message": "bad"}}`))
	})

	_, err := provider.GetCustomer(context.Background(), "cus_1")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrLookupFailed)

	var se *StripeError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "parameter_invalid", se.Code)
	assert.Equal(t, http.StatusBadRequest, se.StatusCode)
}

func TestStripeProvider_GetCheckoutSession(t *testing.T) {
	provider := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/checkout/sessions/cs_test_1", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "cs_test_1",
			"object": "checkout.session",
			"mode": "payment",
			"status": "complete",
			"payment_status": "paid",
			"amount_total": 1999,
			"currency": "usd",
			"customer": "cus_1",
			"customer_details": {"email": "buyer@example.com", "name": "Buyer"},
			"metadata": {"account_id": "abc", "payment_type": "one_time"}
		}`))
	})

	sess, err := provider.GetCheckoutSession(context.Background(), "cs_test_1")
	require.NoError(t, err)
	assert.True(t, sess.IsPaid())
	assert.Equal(t, "cus_1", sess.CustomerID)
	assert.Equal(t, "buyer@example.com", sess.CustomerEmail)
	assert.Equal(t, "Buyer", sess.CustomerName)
	assert.Equal(t, int64(1999), sess.AmountTotal)
	assert.Equal(t, "one_time", sess.Metadata["payment_type"])
}

func TestToSubscription_NoItems(t *testing.T) {
	sub := ToSubscription(&stripe.Subscription{ID: "sub_1", Status: stripe.SubscriptionStatusPastDue})
	assert.Equal(t, "sub_1", sub.ID)
	assert.Equal(t, "past_due", sub.Status)
	assert.Empty(t, sub.PriceID)
	assert.Zero(t, sub.CurrentPeriodEnd)
}

func TestStripeConfig_Validation(t *testing.T) {
	t.Run("validates required API key", func(t *testing.T) {
		config := StripeConfig{
			APIKey:        "",
			WebhookSecret: "whsec_test",
		}
		err := config.Validate()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "API key is required")
	})

	t.Run("validates required webhook secret", func(t *testing.T) {
		config := StripeConfig{
			APIKey:        "sk_test_123",
			WebhookSecret: "",
		}
		err := config.Validate()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "webhook secret is required")
	})

	t.Run("detects test mode correctly", func(t *testing.T) {
		assert.True(t, (&StripeConfig{APIKey: "sk_test_123456"}).IsTestMode())
		assert.False(t, (&StripeConfig{APIKey: "sk_live_123456"}).IsTestMode())
	})

	t.Run("applies defaults", func(t *testing.T) {
		config := StripeConfig{}
		assert.Equal(t, int64(2), config.maxRetries())
		assert.Positive(t, config.timeout())
	})
}

// TestStripeError tests the StripeError type
func TestStripeError(t *testing.T) {
	t.Run("formats error message correctly", func(t *testing.T) {
		err := &StripeError{
			Message: "No such customer",
			Code:    "resource_missing",
		}
		assert.Contains(t, err.Error(), "No such customer")
		assert.Contains(t, err.Error(), "resource_missing")
	})

	t.Run("identifies temporary errors", func(t *testing.T) {
		assert.True(t, (&StripeError{Code: "rate_limit"}).IsTemporary())
		assert.True(t, (&StripeError{StatusCode: 502}).IsTemporary())
		assert.False(t, (&StripeError{Code: "invalid_request"}).IsTemporary())
	})

	t.Run("wraps SDK errors", func(t *testing.T) {
		sdkErr := &stripe.Error{Code: stripe.ErrorCodeResourceMissing, Msg: "gone", HTTPStatusCode: 404}
		err := wrapStripeError(sdkErr)

		var se *StripeError
		require.True(t, errors.As(err, &se))
		assert.True(t, se.IsNotFound())
		assert.True(t, errors.Is(err, sdkErr))
	})

	t.Run("leaves other errors alone", func(t *testing.T) {
		plain := errors.New("dial tcp: timeout")
		assert.Equal(t, plain, wrapStripeError(plain))
		assert.ErrorIs(t, lookupError("get price", "price_1", plain), ErrLookupFailed)
	})
}
