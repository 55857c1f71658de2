package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/dukerupert/billsync/internal/billing"
	"github.com/dukerupert/billsync/internal/domain"
	"github.com/dukerupert/billsync/internal/repository"
	"github.com/dukerupert/billsync/internal/telemetry"
)

// Path is the route a checkout fact arrived by.
type Path string

const (
	PathWebhook  Path = "webhook"
	PathRedirect Path = "redirect"
)

// CheckoutFact is a completed checkout as either path observes it.
type CheckoutFact struct {
	SessionID      string
	Mode           string
	PaymentStatus  string
	CustomerID     string
	CustomerEmail  string
	CustomerName   string
	SubscriptionID string
	AmountTotal    int64 // minor units
	Metadata       map[string]string
}

// CheckoutFactFromSession builds a fact from a processor checkout session.
func CheckoutFactFromSession(sess billing.CheckoutSession) CheckoutFact {
	return CheckoutFact{
		SessionID:      sess.ID,
		Mode:           sess.Mode,
		PaymentStatus:  sess.PaymentStatus,
		CustomerID:     sess.CustomerID,
		CustomerEmail:  sess.CustomerEmail,
		CustomerName:   sess.CustomerName,
		SubscriptionID: sess.SubscriptionID,
		AmountTotal:    sess.AmountTotal,
		Metadata:       sess.Metadata,
	}
}

// Kind reads the payment kind tag, falling back to the session mode.
func (f CheckoutFact) Kind() domain.PaymentKind {
	for _, key := range []string{MetadataPaymentKind, MetadataPaymentKindAlias} {
		switch domain.PaymentKind(f.Metadata[key]) {
		case domain.PaymentKindOneTime:
			return domain.PaymentKindOneTime
		case domain.PaymentKindSubscription:
			return domain.PaymentKindSubscription
		}
	}
	if f.Mode == billing.ModeSubscription {
		return domain.PaymentKindSubscription
	}
	return domain.PaymentKindOneTime
}

func (f CheckoutFact) Paid() bool {
	return f.PaymentStatus == "paid"
}

// PaymentService records one-time checkout payments arriving from both the
// webhook and the customer redirect. Whichever path commits first records
// the payment; the other observes a duplicate.
type PaymentService struct {
	repo          repository.Querier
	accounts      *AccountService
	guard         *Guard
	provider      billing.Provider
	lookupTimeout time.Duration
	logger        *slog.Logger
	metrics       *telemetry.BillingMetrics
}

// NewPaymentService creates a PaymentService.
func NewPaymentService(
	repo repository.Querier,
	accounts *AccountService,
	guard *Guard,
	provider billing.Provider,
	lookupTimeout time.Duration,
	logger *slog.Logger,
	metrics *telemetry.BillingMetrics,
) *PaymentService {
	if logger == nil {
		logger = slog.Default()
	}
	if lookupTimeout == 0 {
		lookupTimeout = 5 * time.Second
	}
	return &PaymentService{
		repo:          repo,
		accounts:      accounts,
		guard:         guard,
		provider:      provider,
		lookupTimeout: lookupTimeout,
		logger:        logger.With("service", "payment"),
		metrics:       metrics,
	}
}

// RecordCheckoutPayment reconciles a completed checkout. Subscription
// checkouts never create records here; the webhook path only links the
// processor customer to the account.
func (s *PaymentService) RecordCheckoutPayment(ctx context.Context, fact CheckoutFact, path Path) (domain.Outcome, error) {
	logger := s.logger.With("session_id", fact.SessionID, "path", string(path))

	if fact.Kind() != domain.PaymentKindOneTime {
		if path != PathWebhook || fact.CustomerID == "" {
			return domain.OutcomeIgnored, nil
		}
		if _, err := s.accounts.Resolve(ctx, s.accountRef(fact)); err != nil {
			return domain.OutcomeFailed, err
		}
		logger.Info("linked subscription checkout customer", "customer_id", fact.CustomerID)
		return domain.OutcomeProcessed, nil
	}

	if !fact.Paid() {
		logger.Info("checkout not paid, skipping", "payment_status", fact.PaymentStatus)
		s.metrics.PaymentRecordedInc(string(path), "unpaid")
		return domain.OutcomeIgnored, nil
	}

	key := DedupKey{TransactionID: fact.SessionID, Kind: domain.PaymentKindOneTime}
	res, err := s.guard.Reserve(ctx, key)
	if err != nil {
		return domain.OutcomeFailed, err
	}
	if res.AlreadyExists {
		s.metrics.PaymentRecordedInc(string(path), string(OutcomeAlreadyExists))
		return domain.OutcomeDuplicate, nil
	}

	acct, err := s.accounts.Resolve(ctx, s.accountRef(fact))
	if err != nil {
		return domain.OutcomeFailed, err
	}
	key.AccountID = acct.ID

	outcome, err := s.guard.Commit(ctx, key, func(ctx context.Context) error {
		_, err := s.repo.CreatePayment(ctx, repository.CreatePaymentParams{
			AccountID:     repository.PgUUID(acct.ID),
			Amount:        domain.MinorToMajor(fact.AmountTotal),
			PaymentKind:   string(domain.PaymentKindOneTime),
			Status:        string(domain.PaymentStatusCompleted),
			TransactionID: fact.SessionID,
		})
		return err
	})
	if err != nil {
		return domain.OutcomeFailed, err
	}

	s.metrics.PaymentRecordedInc(string(path), string(outcome))
	if outcome == OutcomeAlreadyExists {
		return domain.OutcomeDuplicate, nil
	}

	logger.Info("payment recorded",
		"account_id", acct.ID,
		"amount", domain.MinorToMajor(fact.AmountTotal).StringFixed(2),
	)
	return domain.OutcomeProcessed, nil
}

// RecordRedirect retrieves the session the customer returned from and
// records it on the redirect path.
func (s *PaymentService) RecordRedirect(ctx context.Context, sessionID string) (domain.Outcome, *CheckoutFact, error) {
	if sessionID == "" {
		return domain.OutcomeFailed, nil, ErrMissingSessionID
	}

	lookupCtx, cancel := context.WithTimeout(ctx, s.lookupTimeout)
	sess, err := s.provider.GetCheckoutSession(lookupCtx, sessionID)
	cancel()
	if err != nil {
		return domain.OutcomeFailed, nil, domain.Unavailable(err, "payment.redirect", "checkout session lookup failed")
	}

	fact := CheckoutFactFromSession(*sess)
	outcome, err := s.RecordCheckoutPayment(ctx, fact, PathRedirect)
	return outcome, &fact, err
}

func (s *PaymentService) accountRef(fact CheckoutFact) AccountRef {
	return AccountRef{
		AccountID:  fact.Metadata[MetadataAccountID],
		CustomerID: fact.CustomerID,
		Email:      fact.CustomerEmail,
		Name:       fact.CustomerName,
	}
}
