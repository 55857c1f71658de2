package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dukerupert/billsync/internal/domain"
	"github.com/dukerupert/billsync/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestAccountService_EnsureByEmail(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.accounts.EnsureByEmail(ctx, "Ada@Example.com", "", "")
	require.NoError(t, err)
	assert.Equal(t, "Ada", first.Name)

	second, err := f.accounts.EnsureByEmail(ctx, "ada@example.com", "Ada Lovelace", "cus_1")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "cus_1", second.ProcessorCustomerID)

	_, err = f.accounts.EnsureByEmail(ctx, "  ", "", "")
	assert.ErrorIs(t, err, ErrAccountUnresolvable)
}

func TestAccountService_EnsureByEmail_CustomerOwnedElsewhere(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.accounts.EnsureByEmail(ctx, "owner@example.com", "", "cus_1")
	require.NoError(t, err)

	other, err := f.accounts.EnsureByEmail(ctx, "other@example.com", "", "cus_1")
	require.NoError(t, err)
	assert.Empty(t, other.ProcessorCustomerID)
}

func TestAccountService_Resolve(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	acct := f.mustAccount(t, "ada@example.com")

	t.Run("by metadata account id links customer", func(t *testing.T) {
		got, err := f.accounts.Resolve(ctx, AccountRef{AccountID: acct.ID.String(), CustomerID: "cus_ada"})
		require.NoError(t, err)
		assert.Equal(t, acct.ID, got.ID)
		assert.Equal(t, "cus_ada", got.ProcessorCustomerID)
	})

	t.Run("by customer id", func(t *testing.T) {
		got, err := f.accounts.Resolve(ctx, AccountRef{CustomerID: "cus_ada"})
		require.NoError(t, err)
		assert.Equal(t, acct.ID, got.ID)
	})

	t.Run("stale account id falls back to email", func(t *testing.T) {
		got, err := f.accounts.Resolve(ctx, AccountRef{
			AccountID: "00000000-0000-0000-0000-000000000001",
			Email:     "ADA@example.com",
		})
		require.NoError(t, err)
		assert.Equal(t, acct.ID, got.ID)
	})

	t.Run("nothing to go on", func(t *testing.T) {
		_, err := f.accounts.Resolve(ctx, AccountRef{AccountID: "not-a-uuid"})
		assert.ErrorIs(t, err, ErrAccountUnresolvable)
	})
}

func TestAccountService_ApplyCustomerUpdate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	acct, err := f.accounts.EnsureByEmail(ctx, "ada@example.com", "Ada", "cus_ada")
	require.NoError(t, err)
	f.mustAccount(t, "taken@example.com")

	outcome, err := f.accounts.ApplyCustomerUpdate(ctx, "cus_ada", "ada@newmail.com", "Ada L")
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeProcessed, outcome)

	got, err := f.accounts.GetByEmail(ctx, "ada@newmail.com")
	require.NoError(t, err)
	assert.Equal(t, acct.ID, got.ID)
	assert.Equal(t, "Ada L", got.Name)

	outcome, err = f.accounts.ApplyCustomerUpdate(ctx, "cus_ada", "ada@newmail.com", "Ada L")
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeDuplicate, outcome)

	t.Run("email owned by another account keeps current email", func(t *testing.T) {
		outcome, err := f.accounts.ApplyCustomerUpdate(ctx, "cus_ada", "taken@example.com", "Ada Byron")
		require.NoError(t, err)
		assert.Equal(t, domain.OutcomeProcessed, outcome)

		got, err := f.accounts.GetByEmail(ctx, "ada@newmail.com")
		require.NoError(t, err)
		assert.Equal(t, "Ada Byron", got.Name)
	})

	t.Run("unknown customer", func(t *testing.T) {
		outcome, err := f.accounts.ApplyCustomerUpdate(ctx, "cus_nobody", "x@example.com", "")
		require.NoError(t, err)
		assert.Equal(t, domain.OutcomeNotFound, outcome)
	})
}

func TestAccountService_ApplyPaymentMethodAttached(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	acct, err := f.accounts.EnsureByEmail(ctx, "ada@example.com", "Ada", "cus_ada")
	require.NoError(t, err)

	outcome, err := f.accounts.ApplyPaymentMethodAttached(ctx, "cus_ada", "pm_1")
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeProcessed, outcome)

	row, err := f.store.GetAccountByID(ctx, repository.PgUUID(acct.ID))
	require.NoError(t, err)
	assert.Equal(t, "pm_1", repository.StringFromPgText(row.DefaultPaymentMethodID))

	outcome, err = f.accounts.ApplyPaymentMethodAttached(ctx, "", "pm_2")
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeIgnored, outcome)

	outcome, err = f.accounts.ApplyPaymentMethodAttached(ctx, "cus_nobody", "pm_3")
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeNotFound, outcome)
}

func TestAccountService_Dashboard(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	acct := f.mustAccount(t, "ada@example.com")

	_, err := f.payments.RecordCheckoutPayment(ctx, CheckoutFactFromSession(*paidOneTimeSession("cs_1", acct)), PathWebhook)
	require.NoError(t, err)
	_, err = f.lifecycle.Created(ctx, newSubscription("sub_1", acct))
	require.NoError(t, err)

	d, err := f.accounts.Dashboard(ctx, "ADA@example.com")
	require.NoError(t, err)
	assert.Equal(t, acct.ID, d.Account.ID)
	require.Len(t, d.Payments, 1)
	assert.Equal(t, "cs_1", d.Payments[0].TransactionID)
	require.Len(t, d.Subscriptions, 1)
	assert.Equal(t, "sub_1", d.Subscriptions[0].ProcessorSubscriptionID)

	_, err = f.accounts.Dashboard(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, ErrAccountNotFound)
}

func TestAccountService_StoreErrors(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockRepo := repository.NewMockQuerier(ctrl)
	ctx := context.Background()
	svc := NewAccountService(mockRepo, nil, time.Second, discardLogger())

	mockRepo.EXPECT().
		GetAccountByProcessorCustomerID(ctx, repository.PgText("cus_1")).
		Return(repository.Account{}, errors.New("connection reset"))

	outcome, err := svc.ApplyPaymentMethodAttached(ctx, "cus_1", "pm_1")
	require.Error(t, err)
	assert.Equal(t, domain.OutcomeFailed, outcome)
	assert.Equal(t, domain.EINTERNAL, domain.ErrorCode(err))
}
