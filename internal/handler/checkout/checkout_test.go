package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dukerupert/billsync/internal/billing"
	"github.com/dukerupert/billsync/internal/domain"
	"github.com/dukerupert/billsync/internal/notify"
	"github.com/dukerupert/billsync/internal/repository"
	"github.com/dukerupert/billsync/internal/service"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	mu      sync.Mutex
	changes []notify.Change
}

func (p *recordingPublisher) Publish(_ context.Context, change notify.Change) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.changes = append(p.changes, change)
	return nil
}

func (p *recordingPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.changes)
}

type harness struct {
	store     *repository.MemoryStore
	provider  *billing.MockProvider
	accounts  *service.AccountService
	publisher *recordingPublisher
	handler   *Handler
}

func newHarness(t *testing.T, cfg service.CheckoutConfig) *harness {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := repository.NewMemoryStore()
	provider := billing.NewMockProvider()
	accounts := service.NewAccountService(store, provider, time.Second, logger)
	guard := service.NewGuard(store, nil, logger)
	payments := service.NewPaymentService(store, accounts, guard, provider, time.Second, logger, nil)
	sessions := service.NewCheckoutService(store, accounts, provider, cfg, time.Second, logger)
	publisher := &recordingPublisher{}

	return &harness{
		store:     store,
		provider:  provider,
		accounts:  accounts,
		publisher: publisher,
		handler:   NewHandler(sessions, payments, accounts, publisher, "pk_test_123", logger),
	}
}

func defaultConfig() service.CheckoutConfig {
	return service.CheckoutConfig{
		BaseURL:        "https://billing.example.com",
		OneTimePriceID: "price_once",
		PlanPrices: map[domain.PlanTier]string{
			domain.PlanTierBasic: "price_basic",
			domain.PlanTierFancy: "price_fancy",
		},
	}
}

type errorBody struct {
	Error struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Fields  map[string]string `json:"fields"`
	} `json:"error"`
}

func decodeJSON[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v), rec.Body.String())
	return v
}

func onlySession(t *testing.T, p *billing.MockProvider) *billing.CheckoutSession {
	t.Helper()
	require.Len(t, p.Sessions, 1)
	for _, sess := range p.Sessions {
		return sess
	}
	return nil
}

func TestHandleCreateSession_JSON(t *testing.T) {
	h := newHarness(t, defaultConfig())

	req := httptest.NewRequest(http.MethodPost, "/create-checkout-session",
		strings.NewReader(`{"email":"ada@example.com","name":"Ada","mode":"payment"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	h.handler.HandleCreateSession(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decodeJSON[map[string]string](t, rec)
	assert.NotEmpty(t, body["clientSecret"])

	acct, err := h.accounts.GetByEmail(context.Background(), "ada@example.com")
	require.NoError(t, err)

	sess := onlySession(t, h.provider)
	assert.Equal(t, body["clientSecret"], sess.ClientSecret)
	assert.Equal(t, acct.ID.String(), sess.Metadata[service.MetadataAccountID])
	assert.Equal(t, string(domain.PaymentKindOneTime), sess.Metadata[service.MetadataPaymentKind])
	assert.Contains(t, h.provider.Calls(), "CreateCheckoutSession(payment, price_once)")
}

func TestHandleCreateSession_Form(t *testing.T) {
	h := newHarness(t, defaultConfig())

	form := url.Values{
		"email":     {"grace@example.com"},
		"mode":      {"subscription"},
		"plan_tier": {"fancy"},
	}
	req := httptest.NewRequest(http.MethodPost, "/create-checkout-session", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()

	h.handler.HandleCreateSession(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	sess := onlySession(t, h.provider)
	assert.Equal(t, "fancy", sess.Metadata[service.MetadataPlanTier])
	assert.Contains(t, h.provider.Calls(), "CreateCheckoutSession(subscription, price_fancy)")
}

func TestHandleCreateSession_Errors(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		config     func(*service.CheckoutConfig)
		provider   func(*billing.MockProvider)
		wantStatus int
		wantCode   string
		wantFields []string
	}{
		{
			name:       "missing fields",
			body:       `{"name":"Ada"}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   domain.EINVALID,
			wantFields: []string{"email", "mode"},
		},
		{
			name:       "bad email and unknown mode",
			body:       `{"email":"not-an-email","mode":"lifetime"}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   domain.EINVALID,
			wantFields: []string{"email", "mode"},
		},
		{
			name:       "unknown plan tier",
			body:       `{"email":"ada@example.com","mode":"subscription","plan_tier":"platinum"}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   domain.EINVALID,
			wantFields: []string{"plan_tier"},
		},
		{
			name:       "malformed json",
			body:       `{"email":`,
			wantStatus: http.StatusBadRequest,
			wantCode:   domain.EINVALID,
		},
		{
			name:       "one-time price not configured",
			body:       `{"email":"ada@example.com","mode":"payment"}`,
			config:     func(c *service.CheckoutConfig) { c.OneTimePriceID = "" },
			wantStatus: http.StatusInternalServerError,
			wantCode:   domain.EINTERNAL,
		},
		{
			name: "processor unavailable",
			body: `{"email":"ada@example.com","mode":"payment"}`,
			provider: func(p *billing.MockProvider) {
				p.CreateCheckoutSessionFunc = func(context.Context, billing.CreateCheckoutSessionParams) (*billing.CheckoutSession, error) {
					return nil, errors.New("connection reset")
				}
			},
			wantStatus: http.StatusServiceUnavailable,
			wantCode:   domain.EUNAVAILABLE,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			if tt.config != nil {
				tt.config(&cfg)
			}
			h := newHarness(t, cfg)
			if tt.provider != nil {
				tt.provider(h.provider)
			}

			req := httptest.NewRequest(http.MethodPost, "/create-checkout-session", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()

			h.handler.HandleCreateSession(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			body := decodeJSON[errorBody](t, rec)
			assert.Equal(t, tt.wantCode, body.Error.Code)
			for _, field := range tt.wantFields {
				assert.Contains(t, body.Error.Fields, field)
			}
		})
	}
}

func paidSession(id string) *billing.CheckoutSession {
	return &billing.CheckoutSession{
		ID:            id,
		Mode:          billing.ModePayment,
		Status:        "complete",
		PaymentStatus: "paid",
		CustomerEmail: "ada@example.com",
		CustomerName:  "Ada",
		AmountTotal:   2500,
		Currency:      "usd",
		Metadata:      map[string]string{service.MetadataPaymentKind: string(domain.PaymentKindOneTime)},
	}
}

func TestHandlePaymentSuccess_RecordsOnce(t *testing.T) {
	h := newHarness(t, defaultConfig())
	h.provider.AddSession(paidSession("cs_paid"))

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		h.handler.HandlePaymentSuccess(rec, httptest.NewRequest(http.MethodGet, "/payment/success?session_id=cs_paid", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, map[string]string{"status": "completed"}, decodeJSON[map[string]string](t, rec))
	}

	acct, err := h.accounts.GetByEmail(context.Background(), "ada@example.com")
	require.NoError(t, err)
	rows, err := h.store.ListPaymentsForAccount(context.Background(), repository.PgUUID(acct.ID))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.True(t, decimal.RequireFromString("25").Equal(rows[0].Amount))
	assert.Equal(t, "cs_paid", rows[0].TransactionID)

	require.Equal(t, 1, h.publisher.count())
	assert.Equal(t, notify.SubjectPaymentRecorded, h.publisher.changes[0].Subject)
	assert.Equal(t, "cs_paid", h.publisher.changes[0].ObjectID)
}

func TestHandlePaymentSuccess_Degrades(t *testing.T) {
	t.Run("missing session id", func(t *testing.T) {
		h := newHarness(t, defaultConfig())
		rec := httptest.NewRecorder()

		h.handler.HandlePaymentSuccess(rec, httptest.NewRequest(http.MethodGet, "/payment/success", nil))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("session lookup fails", func(t *testing.T) {
		h := newHarness(t, defaultConfig())
		rec := httptest.NewRecorder()

		h.handler.HandlePaymentSuccess(rec, httptest.NewRequest(http.MethodGet, "/payment/success?session_id=cs_missing", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, map[string]string{"status": "completed"}, decodeJSON[map[string]string](t, rec))
		assert.Zero(t, h.publisher.count())
	})

	t.Run("unpaid session", func(t *testing.T) {
		h := newHarness(t, defaultConfig())
		sess := paidSession("cs_unpaid")
		sess.PaymentStatus = "unpaid"
		h.provider.AddSession(sess)
		rec := httptest.NewRecorder()

		h.handler.HandlePaymentSuccess(rec, httptest.NewRequest(http.MethodGet, "/payment/success?session_id=cs_unpaid", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Zero(t, h.publisher.count())
		_, err := h.accounts.GetByEmail(context.Background(), "ada@example.com")
		assert.Equal(t, domain.ENOTFOUND, domain.ErrorCode(err))
	})
}

func TestHandleSubscriptionSuccess(t *testing.T) {
	h := newHarness(t, defaultConfig())
	ctx := context.Background()

	h.provider.AddSession(&billing.CheckoutSession{
		ID:             "cs_sub",
		Mode:           billing.ModeSubscription,
		PaymentStatus:  "paid",
		SubscriptionID: "sub_1",
	})

	get := func() map[string]string {
		rec := httptest.NewRecorder()
		h.handler.HandleSubscriptionSuccess(rec, httptest.NewRequest(http.MethodGet, "/subscription/success?session_id=cs_sub", nil))
		require.Equal(t, http.StatusOK, rec.Code)
		return decodeJSON[map[string]string](t, rec)
	}

	assert.Equal(t, service.RedirectStatusProcessing, get()["status"])

	acct, err := h.accounts.EnsureByEmail(ctx, "ada@example.com", "Ada", "")
	require.NoError(t, err)
	now := time.Now()
	_, err = h.store.CreateSubscription(ctx, repository.CreateSubscriptionParams{
		AccountID:               repository.PgUUID(acct.ID),
		Amount:                  decimal.NewFromInt(10),
		Status:                  string(domain.SubscriptionStatusActive),
		PlanTier:                string(domain.PlanTierBasic),
		ProcessorSubscriptionID: "sub_1",
		StartDate:               repository.PgTimestamptz(now),
		NextBillingDate:         repository.PgTimestamptz(now.AddDate(0, 1, 0)),
	})
	require.NoError(t, err)

	assert.Equal(t, service.RedirectStatusActive, get()["status"])

	rec := httptest.NewRecorder()
	h.handler.HandleSubscriptionSuccess(rec, httptest.NewRequest(http.MethodGet, "/subscription/success", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleDashboard(t *testing.T) {
	h := newHarness(t, defaultConfig())
	h.provider.AddSession(paidSession("cs_paid"))
	h.handler.HandlePaymentSuccess(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/payment/success?session_id=cs_paid", nil))

	tests := []struct {
		name       string
		query      string
		wantStatus int
	}{
		{name: "known account", query: "email=ada@example.com", wantStatus: http.StatusOK},
		{name: "unknown account", query: "email=nobody@example.com", wantStatus: http.StatusNotFound},
		{name: "invalid email", query: "email=nope", wantStatus: http.StatusBadRequest},
		{name: "missing email", query: "", wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.handler.HandleDashboard(rec, httptest.NewRequest(http.MethodGet, "/dashboard?"+tt.query, nil))

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantStatus != http.StatusOK {
				return
			}

			dash := decodeJSON[service.Dashboard](t, rec)
			assert.Equal(t, "ada@example.com", dash.Account.Email)
			require.Len(t, dash.Payments, 1)
			assert.Equal(t, "cs_paid", dash.Payments[0].TransactionID)
			assert.Empty(t, dash.Subscriptions)
		})
	}
}

func TestHandleConfig(t *testing.T) {
	t.Run("with price", func(t *testing.T) {
		h := newHarness(t, defaultConfig())
		h.provider.Prices["price_once"] = &billing.Price{ID: "price_once", UnitAmount: 2500, Currency: "usd"}
		rec := httptest.NewRecorder()

		h.handler.HandleConfig(rec, httptest.NewRequest(http.MethodGet, "/config", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		cfg := decodeJSON[ConfigResponse](t, rec)
		assert.Equal(t, "pk_test_123", cfg.PublishableKey)
		require.NotNil(t, cfg.OneTimePrice)
		assert.Equal(t, "USD", cfg.OneTimePrice.Currency)
		assert.True(t, decimal.RequireFromString("25").Equal(cfg.OneTimePrice.Amount))
	})

	t.Run("price lookup fails", func(t *testing.T) {
		h := newHarness(t, defaultConfig())
		rec := httptest.NewRecorder()

		h.handler.HandleConfig(rec, httptest.NewRequest(http.MethodGet, "/config", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		cfg := decodeJSON[ConfigResponse](t, rec)
		assert.Equal(t, "pk_test_123", cfg.PublishableKey)
		assert.Nil(t, cfg.OneTimePrice)
	})
}
