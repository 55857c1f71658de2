package service

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/dukerupert/billsync/internal/billing"
	"github.com/dukerupert/billsync/internal/domain"
	"github.com/dukerupert/billsync/internal/repository"
	"github.com/dukerupert/billsync/internal/telemetry"
	"github.com/prometheus/client_golang/prometheus"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestMetrics() *telemetry.BillingMetrics {
	return telemetry.NewBillingMetrics("test", prometheus.NewRegistry())
}

// fixture wires every service against an in-memory store and mock provider.
type fixture struct {
	store     *repository.MemoryStore
	provider  *billing.MockProvider
	metrics   *telemetry.BillingMetrics
	accounts  *AccountService
	plans     *PlanResolver
	guard     *Guard
	payments  *PaymentService
	lifecycle *SubscriptionLifecycle
	checkout  *CheckoutService
}

var testPriceTable = map[string]domain.PlanTier{
	"price_basic": domain.PlanTierBasic,
	"price_fancy": domain.PlanTierFancy,
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		store:    repository.NewMemoryStore(),
		provider: billing.NewMockProvider(),
		metrics:  newTestMetrics(),
	}
	logger := discardLogger()
	timeout := time.Second

	f.accounts = NewAccountService(f.store, f.provider, timeout, logger)
	f.plans = NewPlanResolver(f.provider, testPriceTable, timeout, logger, f.metrics)
	f.guard = NewGuard(f.store, nil, logger)
	f.payments = NewPaymentService(f.store, f.accounts, f.guard, f.provider, timeout, logger, f.metrics)
	f.lifecycle = NewSubscriptionLifecycle(f.store, f.accounts, f.plans, f.provider, timeout, logger, f.metrics)
	f.checkout = NewCheckoutService(f.store, f.accounts, f.provider, CheckoutConfig{
		BaseURL:        "https://billing.test/",
		OneTimePriceID: "price_once",
		PlanPrices: map[domain.PlanTier]string{
			domain.PlanTierBasic: "price_basic",
			domain.PlanTierFancy: "price_fancy",
		},
	}, timeout, logger)
	return f
}

func (f *fixture) mustAccount(t *testing.T, email string) domain.Account {
	t.Helper()
	acct, err := f.accounts.EnsureByEmail(context.Background(), email, "", "")
	if err != nil {
		t.Fatalf("ensure account: %v", err)
	}
	return acct
}

// memoryKeys is an in-process CommittedKeys.
type memoryKeys struct {
	mu      sync.Mutex
	keys    map[string]bool
	failGet error
}

func newMemoryKeys() *memoryKeys {
	return &memoryKeys{keys: map[string]bool{}}
}

func (k *memoryKeys) Contains(_ context.Context, key string) (bool, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.failGet != nil {
		return false, k.failGet
	}
	return k.keys[key], nil
}

func (k *memoryKeys) Add(_ context.Context, key string) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.keys[key] = true
	return nil
}
