package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/dukerupert/billsync/internal/billing"
	"github.com/dukerupert/billsync/internal/domain"
	"github.com/dukerupert/billsync/internal/repository"
	"github.com/shopspring/decimal"
)

// Status values reported by the subscription success page.
const (
	RedirectStatusProcessing = "processing"
	RedirectStatusActive     = "active"
)

// CheckoutConfig holds configuration for checkout session creation.
type CheckoutConfig struct {
	// BaseURL is the application base URL for return links
	BaseURL string

	// OneTimePriceID is the processor price for one-time payments
	OneTimePriceID string

	// PlanPrices maps each tier to its recurring processor price
	PlanPrices map[domain.PlanTier]string
}

// CreateCheckoutRequest is a customer's request to start a checkout.
type CreateCheckoutRequest struct {
	Email    string
	Name     string
	Mode     string
	PlanTier string
}

// PriceDisplay is the one-time price shown on the checkout page.
type PriceDisplay struct {
	ID       string          `json:"id"`
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
}

// CheckoutService starts embedded checkouts and answers the redirect pages.
type CheckoutService struct {
	repo          repository.Querier
	accounts      *AccountService
	provider      billing.Provider
	config        CheckoutConfig
	lookupTimeout time.Duration
	logger        *slog.Logger
}

// NewCheckoutService creates a CheckoutService.
func NewCheckoutService(
	repo repository.Querier,
	accounts *AccountService,
	provider billing.Provider,
	config CheckoutConfig,
	lookupTimeout time.Duration,
	logger *slog.Logger,
) *CheckoutService {
	if logger == nil {
		logger = slog.Default()
	}
	if lookupTimeout == 0 {
		lookupTimeout = 5 * time.Second
	}
	config.BaseURL = strings.TrimRight(config.BaseURL, "/")
	return &CheckoutService{
		repo:          repo,
		accounts:      accounts,
		provider:      provider,
		config:        config,
		lookupTimeout: lookupTimeout,
		logger:        logger.With("service", "checkout"),
	}
}

// CreateSession ensures the customer's account and opens an embedded
// checkout tagged with the account and payment kind.
func (s *CheckoutService) CreateSession(ctx context.Context, req CreateCheckoutRequest) (*billing.CheckoutSession, error) {
	const op = "checkout.create"

	var (
		priceID  string
		kind     domain.PaymentKind
		tier     domain.PlanTier
		returnTo string
	)
	switch req.Mode {
	case billing.ModePayment:
		if s.config.OneTimePriceID == "" {
			return nil, ErrOneTimePriceNotConfigured
		}
		priceID, kind, returnTo = s.config.OneTimePriceID, domain.PaymentKindOneTime, "/payment/success"
	case billing.ModeSubscription:
		tier = domain.PlanTierBasic
		if req.PlanTier != "" {
			t, ok := domain.ParsePlanTier(req.PlanTier)
			if !ok {
				return nil, ErrUnknownPlanTier
			}
			tier = t
		}
		priceID = s.config.PlanPrices[tier]
		if priceID == "" {
			return nil, ErrPlanPriceNotConfigured
		}
		kind, returnTo = domain.PaymentKindSubscription, "/subscription/success"
	default:
		return nil, ErrUnknownCheckoutMode
	}

	acct, err := s.accounts.EnsureByEmail(ctx, req.Email, req.Name, "")
	if err != nil {
		return nil, err
	}

	metadata := map[string]string{
		MetadataAccountID:   acct.ID.String(),
		MetadataPaymentKind: string(kind),
	}
	if tier != "" {
		metadata[MetadataPlanTier] = string(tier)
	}

	params := billing.CreateCheckoutSessionParams{
		Mode:      req.Mode,
		PriceID:   priceID,
		ReturnURL: s.config.BaseURL + returnTo + "?session_id={CHECKOUT_SESSION_ID}",
		Metadata:  metadata,
	}
	if acct.ProcessorCustomerID != "" {
		params.CustomerID = acct.ProcessorCustomerID
	} else {
		params.CustomerEmail = acct.Email
	}

	sess, err := s.provider.CreateCheckoutSession(ctx, params)
	if err != nil {
		return nil, domain.WrapError(err, domain.EUNAVAILABLE, op, "failed to create checkout session")
	}

	s.logger.Info("checkout session created",
		"session_id", sess.ID,
		"account_id", acct.ID,
		"mode", req.Mode,
		"plan_tier", tier,
	)
	return sess, nil
}

// SubscriptionStatus reports whether the webhook has already recorded the
// subscription the customer just paid for. It never writes.
func (s *CheckoutService) SubscriptionStatus(ctx context.Context, sessionID string) (string, error) {
	if sessionID == "" {
		return "", ErrMissingSessionID
	}

	lookupCtx, cancel := context.WithTimeout(ctx, s.lookupTimeout)
	sess, err := s.provider.GetCheckoutSession(lookupCtx, sessionID)
	cancel()
	if err != nil {
		s.logger.Warn("checkout session lookup failed", "session_id", sessionID, "error", err)
		return RedirectStatusProcessing, nil
	}
	if sess.SubscriptionID == "" {
		return RedirectStatusProcessing, nil
	}

	row, err := s.repo.GetSubscriptionByProcessorID(ctx, sess.SubscriptionID)
	if err != nil {
		if !repository.IsNotFound(err) {
			s.logger.Warn("subscription lookup failed", "subscription_id", sess.SubscriptionID, "error", err)
		}
		return RedirectStatusProcessing, nil
	}
	if domain.SubscriptionStatus(row.Status) == domain.SubscriptionStatusActive {
		return RedirectStatusActive, nil
	}
	return RedirectStatusProcessing, nil
}

// OneTimePrice returns display information for the one-time price, or nil
// when it is not configured or cannot be fetched.
func (s *CheckoutService) OneTimePrice(ctx context.Context) *PriceDisplay {
	if s.config.OneTimePriceID == "" {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, s.lookupTimeout)
	defer cancel()

	price, err := s.provider.GetPrice(ctx, s.config.OneTimePriceID)
	if err != nil {
		s.logger.Warn("price lookup failed", "price_id", s.config.OneTimePriceID, "error", err)
		return nil
	}
	return &PriceDisplay{
		ID:       price.ID,
		Amount:   domain.MinorToMajor(price.UnitAmount),
		Currency: strings.ToUpper(price.Currency),
	}
}
