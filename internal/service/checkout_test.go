package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dukerupert/billsync/internal/billing"
	"github.com/dukerupert/billsync/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckoutService_CreateSession(t *testing.T) {
	tests := []struct {
		name       string
		req        CreateCheckoutRequest
		wantPrice  string
		wantReturn string
		wantTier   string
		wantKind   string
	}{
		{
			name:       "one-time payment",
			req:        CreateCheckoutRequest{Email: "ada@example.com", Name: "Ada", Mode: billing.ModePayment},
			wantPrice:  "price_once",
			wantReturn: "https://billing.test/payment/success?session_id={CHECKOUT_SESSION_ID}",
			wantKind:   "one_time",
		},
		{
			name:       "subscription defaults to basic",
			req:        CreateCheckoutRequest{Email: "ada@example.com", Mode: billing.ModeSubscription},
			wantPrice:  "price_basic",
			wantReturn: "https://billing.test/subscription/success?session_id={CHECKOUT_SESSION_ID}",
			wantTier:   "basic",
			wantKind:   "subscription",
		},
		{
			name:       "fancy subscription",
			req:        CreateCheckoutRequest{Email: "ada@example.com", Mode: billing.ModeSubscription, PlanTier: "fancy"},
			wantPrice:  "price_fancy",
			wantReturn: "https://billing.test/subscription/success?session_id={CHECKOUT_SESSION_ID}",
			wantTier:   "fancy",
			wantKind:   "subscription",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			var got billing.CreateCheckoutSessionParams
			f.provider.CreateCheckoutSessionFunc = func(ctx context.Context, params billing.CreateCheckoutSessionParams) (*billing.CheckoutSession, error) {
				got = params
				return &billing.CheckoutSession{ID: "cs_1", ClientSecret: "cs_1_secret"}, nil
			}

			sess, err := f.checkout.CreateSession(context.Background(), tt.req)
			require.NoError(t, err)
			assert.Equal(t, "cs_1_secret", sess.ClientSecret)

			acct, err := f.accounts.GetByEmail(context.Background(), tt.req.Email)
			require.NoError(t, err)

			assert.Equal(t, tt.req.Mode, got.Mode)
			assert.Equal(t, tt.wantPrice, got.PriceID)
			assert.Equal(t, tt.wantReturn, got.ReturnURL)
			assert.Equal(t, "ada@example.com", got.CustomerEmail)
			assert.Equal(t, acct.ID.String(), got.Metadata[MetadataAccountID])
			assert.Equal(t, tt.wantKind, got.Metadata[MetadataPaymentKind])
			assert.Equal(t, tt.wantTier, got.Metadata[MetadataPlanTier])
		})
	}
}

func TestCheckoutService_CreateSession_UsesLinkedCustomer(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.accounts.EnsureByEmail(ctx, "ada@example.com", "Ada", "cus_ada")
	require.NoError(t, err)

	var got billing.CreateCheckoutSessionParams
	f.provider.CreateCheckoutSessionFunc = func(ctx context.Context, params billing.CreateCheckoutSessionParams) (*billing.CheckoutSession, error) {
		got = params
		return &billing.CheckoutSession{ID: "cs_1"}, nil
	}

	_, err = f.checkout.CreateSession(ctx, CreateCheckoutRequest{Email: "ada@example.com", Mode: billing.ModePayment})
	require.NoError(t, err)
	assert.Equal(t, "cus_ada", got.CustomerID)
	assert.Empty(t, got.CustomerEmail)
}

func TestCheckoutService_CreateSession_Errors(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown mode", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.checkout.CreateSession(ctx, CreateCheckoutRequest{Email: "ada@example.com", Mode: "setup"})
		assert.ErrorIs(t, err, ErrUnknownCheckoutMode)
	})

	t.Run("unknown plan tier", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.checkout.CreateSession(ctx, CreateCheckoutRequest{Email: "ada@example.com", Mode: billing.ModeSubscription, PlanTier: "gold"})
		assert.ErrorIs(t, err, ErrUnknownPlanTier)
	})

	t.Run("one-time price missing", func(t *testing.T) {
		f := newFixture(t)
		svc := NewCheckoutService(f.store, f.accounts, f.provider, CheckoutConfig{BaseURL: "https://billing.test"}, time.Second, discardLogger())
		_, err := svc.CreateSession(ctx, CreateCheckoutRequest{Email: "ada@example.com", Mode: billing.ModePayment})
		assert.ErrorIs(t, err, ErrOneTimePriceNotConfigured)

		_, err = svc.CreateSession(ctx, CreateCheckoutRequest{Email: "ada@example.com", Mode: billing.ModeSubscription})
		assert.ErrorIs(t, err, ErrPlanPriceNotConfigured)
	})

	t.Run("processor failure", func(t *testing.T) {
		f := newFixture(t)
		f.provider.CreateCheckoutSessionFunc = func(ctx context.Context, params billing.CreateCheckoutSessionParams) (*billing.CheckoutSession, error) {
			return nil, errors.New("card_declined")
		}
		_, err := f.checkout.CreateSession(ctx, CreateCheckoutRequest{Email: "ada@example.com", Mode: billing.ModePayment})
		require.Error(t, err)
		assert.Equal(t, domain.EUNAVAILABLE, domain.ErrorCode(err))
	})
}

func TestCheckoutService_SubscriptionStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	acct := f.mustAccount(t, "ada@example.com")
	f.provider.AddSession(&billing.CheckoutSession{ID: "cs_pending", CustomerID: "cus_1"})
	f.provider.AddSession(&billing.CheckoutSession{ID: "cs_sub", CustomerID: "cus_1", SubscriptionID: "sub_1"})

	status, err := f.checkout.SubscriptionStatus(ctx, "cs_pending")
	require.NoError(t, err)
	assert.Equal(t, RedirectStatusProcessing, status)

	status, err = f.checkout.SubscriptionStatus(ctx, "cs_sub")
	require.NoError(t, err)
	assert.Equal(t, RedirectStatusProcessing, status, "webhook has not created the subscription yet")

	_, err = f.lifecycle.Created(ctx, newSubscription("sub_1", acct))
	require.NoError(t, err)

	status, err = f.checkout.SubscriptionStatus(ctx, "cs_sub")
	require.NoError(t, err)
	assert.Equal(t, RedirectStatusActive, status)

	status, err = f.checkout.SubscriptionStatus(ctx, "cs_unknown")
	require.NoError(t, err)
	assert.Equal(t, RedirectStatusProcessing, status)

	_, err = f.checkout.SubscriptionStatus(ctx, "")
	assert.ErrorIs(t, err, ErrMissingSessionID)
}

func TestCheckoutService_OneTimePrice(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	assert.Nil(t, f.checkout.OneTimePrice(ctx))

	f.provider.Prices["price_once"] = &billing.Price{ID: "price_once", UnitAmount: 1999, Currency: "usd"}
	price := f.checkout.OneTimePrice(ctx)
	require.NotNil(t, price)
	assert.Equal(t, "19.99", price.Amount.StringFixed(2))
	assert.Equal(t, "USD", price.Currency)
}
