package service

import (
	"context"
	"sync"
	"testing"

	"github.com/dukerupert/billsync/internal/billing"
	"github.com/dukerupert/billsync/internal/domain"
	"github.com/dukerupert/billsync/internal/repository"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func paidOneTimeSession(id string, acct domain.Account) *billing.CheckoutSession {
	return &billing.CheckoutSession{
		ID:            id,
		Mode:          billing.ModePayment,
		Status:        "complete",
		PaymentStatus: "paid",
		CustomerID:    "cus_1",
		CustomerEmail: acct.Email,
		AmountTotal:   2500,
		Currency:      "usd",
		Metadata: map[string]string{
			MetadataAccountID:   acct.ID.String(),
			MetadataPaymentKind: string(domain.PaymentKindOneTime),
		},
	}
}

func paymentsFor(t *testing.T, f *fixture, acct domain.Account) []repository.Payment {
	t.Helper()
	rows, err := f.store.ListPaymentsForAccount(context.Background(), repository.PgUUID(acct.ID))
	require.NoError(t, err)
	return rows
}

func TestCheckoutFact_Kind(t *testing.T) {
	tests := []struct {
		name string
		fact CheckoutFact
		want domain.PaymentKind
	}{
		{"metadata", CheckoutFact{Metadata: map[string]string{"payment_kind": "subscription"}, Mode: billing.ModePayment}, domain.PaymentKindSubscription},
		{"legacy alias", CheckoutFact{Metadata: map[string]string{"payment_type": "one_time"}, Mode: billing.ModeSubscription}, domain.PaymentKindOneTime},
		{"mode fallback subscription", CheckoutFact{Mode: billing.ModeSubscription}, domain.PaymentKindSubscription},
		{"mode fallback payment", CheckoutFact{Mode: billing.ModePayment}, domain.PaymentKindOneTime},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.fact.Kind())
		})
	}
}

func TestRecordCheckoutPayment_RepeatedDeliveryRecordsOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	acct := f.mustAccount(t, "ada@example.com")
	fact := CheckoutFactFromSession(*paidOneTimeSession("cs_1", acct))

	outcome, err := f.payments.RecordCheckoutPayment(ctx, fact, PathWebhook)
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeProcessed, outcome)

	for i := 0; i < 4; i++ {
		outcome, err := f.payments.RecordCheckoutPayment(ctx, fact, PathWebhook)
		require.NoError(t, err)
		assert.Equal(t, domain.OutcomeDuplicate, outcome)
	}

	rows := paymentsFor(t, f, acct)
	require.Len(t, rows, 1)
	assert.True(t, decimal.RequireFromString("25.00").Equal(rows[0].Amount))
	assert.Equal(t, "cs_1", rows[0].TransactionID)
	assert.Equal(t, string(domain.PaymentStatusCompleted), rows[0].Status)
}

func TestRecordCheckoutPayment_DualPathEitherOrder(t *testing.T) {
	orders := map[string][]Path{
		"webhook first":  {PathWebhook, PathRedirect},
		"redirect first": {PathRedirect, PathWebhook},
	}

	for name, paths := range orders {
		t.Run(name, func(t *testing.T) {
			f := newFixture(t)
			ctx := context.Background()
			acct := f.mustAccount(t, "ada@example.com")
			sess := paidOneTimeSession("cs_dual", acct)
			f.provider.AddSession(sess)

			var outcomes []domain.Outcome
			for _, p := range paths {
				var (
					outcome domain.Outcome
					err     error
				)
				if p == PathRedirect {
					outcome, _, err = f.payments.RecordRedirect(ctx, sess.ID)
				} else {
					outcome, err = f.payments.RecordCheckoutPayment(ctx, CheckoutFactFromSession(*sess), PathWebhook)
				}
				require.NoError(t, err)
				outcomes = append(outcomes, outcome)
			}

			assert.Equal(t, []domain.Outcome{domain.OutcomeProcessed, domain.OutcomeDuplicate}, outcomes)
			assert.Len(t, paymentsFor(t, f, acct), 1)
			assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.PaymentsRecorded.WithLabelValues(string(paths[0]), "created")))
		})
	}
}

func TestRecordCheckoutPayment_DualPathConcurrent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	acct := f.mustAccount(t, "ada@example.com")
	sess := paidOneTimeSession("cs_concurrent", acct)
	f.provider.AddSession(sess)

	const rounds = 10
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		processed int
	)
	record := func(outcome domain.Outcome, err error) {
		assert.NoError(t, err)
		mu.Lock()
		defer mu.Unlock()
		if outcome == domain.OutcomeProcessed {
			processed++
		}
	}
	for i := 0; i < rounds; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			record(f.payments.RecordCheckoutPayment(ctx, CheckoutFactFromSession(*sess), PathWebhook))
		}()
		go func() {
			defer wg.Done()
			outcome, _, err := f.payments.RecordRedirect(ctx, sess.ID)
			record(outcome, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, processed)
	assert.Len(t, paymentsFor(t, f, acct), 1)
}

func TestRecordCheckoutPayment_Skips(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	acct := f.mustAccount(t, "ada@example.com")

	t.Run("unpaid", func(t *testing.T) {
		sess := paidOneTimeSession("cs_unpaid", acct)
		sess.PaymentStatus = "unpaid"

		outcome, err := f.payments.RecordCheckoutPayment(ctx, CheckoutFactFromSession(*sess), PathWebhook)
		require.NoError(t, err)
		assert.Equal(t, domain.OutcomeIgnored, outcome)
	})

	t.Run("subscription checkout on redirect", func(t *testing.T) {
		sess := paidOneTimeSession("cs_sub", acct)
		sess.Mode = billing.ModeSubscription
		sess.Metadata[MetadataPaymentKind] = string(domain.PaymentKindSubscription)

		outcome, err := f.payments.RecordCheckoutPayment(ctx, CheckoutFactFromSession(*sess), PathRedirect)
		require.NoError(t, err)
		assert.Equal(t, domain.OutcomeIgnored, outcome)
	})

	assert.Empty(t, paymentsFor(t, f, acct))
}

func TestRecordCheckoutPayment_SubscriptionCheckoutLinksCustomer(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	acct := f.mustAccount(t, "ada@example.com")
	sess := paidOneTimeSession("cs_sub", acct)
	sess.Mode = billing.ModeSubscription
	sess.CustomerID = "cus_linked"
	sess.SubscriptionID = "sub_1"
	sess.Metadata[MetadataPaymentKind] = string(domain.PaymentKindSubscription)

	outcome, err := f.payments.RecordCheckoutPayment(ctx, CheckoutFactFromSession(*sess), PathWebhook)
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeProcessed, outcome)

	row, err := f.store.GetAccountByID(ctx, repository.PgUUID(acct.ID))
	require.NoError(t, err)
	assert.Equal(t, "cus_linked", repository.StringFromPgText(row.ProcessorCustomerID))
	assert.Empty(t, paymentsFor(t, f, acct))

	subs, err := f.store.ListSubscriptionsForAccount(ctx, repository.PgUUID(acct.ID))
	require.NoError(t, err)
	assert.Empty(t, subs, "subscription records come only from subscription events")
}

func TestRecordCheckoutPayment_CreatesAccountFromEmail(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	fact := CheckoutFact{
		SessionID:     "cs_new",
		Mode:          billing.ModePayment,
		PaymentStatus: "paid",
		CustomerEmail: "Grace@Example.com",
		CustomerName:  "Grace",
		AmountTotal:   999,
	}

	outcome, err := f.payments.RecordCheckoutPayment(ctx, fact, PathWebhook)
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeProcessed, outcome)

	acct, err := f.accounts.GetByEmail(ctx, "grace@example.com")
	require.NoError(t, err)
	rows := paymentsFor(t, f, acct)
	require.Len(t, rows, 1)
	assert.Equal(t, "9.99", rows[0].Amount.StringFixed(2))
}

func TestRecordRedirect_Errors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, _, err := f.payments.RecordRedirect(ctx, "")
	assert.ErrorIs(t, err, ErrMissingSessionID)

	_, _, err = f.payments.RecordRedirect(ctx, "cs_missing")
	require.Error(t, err)
	assert.Equal(t, domain.EUNAVAILABLE, domain.ErrorCode(err))
}
