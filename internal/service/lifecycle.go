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

// SubscriptionLifecycle applies processor subscription events to local
// records. Events may arrive in any order; the last write wins.
type SubscriptionLifecycle struct {
	repo          repository.Querier
	accounts      *AccountService
	plans         *PlanResolver
	provider      billing.Provider
	lookupTimeout time.Duration
	logger        *slog.Logger
	metrics       *telemetry.BillingMetrics

	now func() time.Time
}

// NewSubscriptionLifecycle creates a SubscriptionLifecycle.
func NewSubscriptionLifecycle(
	repo repository.Querier,
	accounts *AccountService,
	plans *PlanResolver,
	provider billing.Provider,
	lookupTimeout time.Duration,
	logger *slog.Logger,
	metrics *telemetry.BillingMetrics,
) *SubscriptionLifecycle {
	if logger == nil {
		logger = slog.Default()
	}
	if lookupTimeout == 0 {
		lookupTimeout = 5 * time.Second
	}
	return &SubscriptionLifecycle{
		repo:          repo,
		accounts:      accounts,
		plans:         plans,
		provider:      provider,
		lookupTimeout: lookupTimeout,
		logger:        logger.With("service", "subscription_lifecycle"),
		metrics:       metrics,
		now:           time.Now,
	}
}

// Created records a new subscription. A record with the same processor id
// makes this a no-op.
func (l *SubscriptionLifecycle) Created(ctx context.Context, sub billing.Subscription) (domain.Outcome, error) {
	const op = "lifecycle.created"
	logger := l.logger.With("subscription_id", sub.ID)

	if _, err := l.repo.GetSubscriptionByProcessorID(ctx, sub.ID); err == nil {
		return domain.OutcomeDuplicate, nil
	} else if !repository.IsNotFound(err) {
		return domain.OutcomeFailed, domain.Internal(err, op, "failed to load subscription")
	}

	acct, err := l.accounts.Resolve(ctx, AccountRef{
		AccountID:  sub.Metadata[MetadataAccountID],
		CustomerID: sub.CustomerID,
	})
	if err != nil {
		return domain.OutcomeFailed, err
	}

	resolution := l.plans.Resolve(ctx, PlanQuery{
		Metadata:       sub.Metadata,
		PriceID:        sub.PriceID,
		SubscriptionID: sub.ID,
		CustomerID:     sub.CustomerID,
	})

	now := l.now().UTC()
	start := l.periodOrFallback(logger, sub.CurrentPeriodStart, now, "start_date")
	next := l.periodOrFallback(logger, sub.CurrentPeriodEnd, now.Add(defaultBillingPeriod), "next_billing_date")
	status := domain.NormalizeSubscriptionStatus(sub.Status)

	_, err = l.repo.CreateSubscription(ctx, repository.CreateSubscriptionParams{
		AccountID:               repository.PgUUID(acct.ID),
		Amount:                  domain.MinorToMajor(sub.UnitAmount),
		Status:                  string(status),
		PlanTier:                string(resolution.Tier),
		ProcessorSubscriptionID: sub.ID,
		ProcessorPriceID:        repository.PgText(sub.PriceID),
		StartDate:               repository.PgTimestamptz(start),
		NextBillingDate:         repository.PgTimestamptz(next),
	})
	if err != nil {
		if constraint, ok := repository.UniqueViolation(err); ok {
			switch constraint {
			case repository.ConstraintSubscriptionProcessorID:
				return domain.OutcomeDuplicate, nil
			case repository.ConstraintOneActiveSubscription:
				logger.Warn("account already has an active subscription", "account_id", acct.ID)
				return domain.OutcomeFailed, domain.WrapError(ErrActiveSubscriptionExists, domain.ECONFLICT, op, "account already has an active subscription")
			}
		}
		return domain.OutcomeFailed, domain.Internal(err, op, "failed to create subscription")
	}

	l.metrics.TransitionInc("created")
	logger.Info("subscription created",
		"account_id", acct.ID,
		"status", status,
		"plan_tier", resolution.Tier,
		"next_billing_date", next,
	)
	return domain.OutcomeProcessed, nil
}

// Updated overwrites status, amount, price, plan tier and next billing date.
// A processor status of canceled stamps cancelled_at. Events for a
// subscription that is already cancelled are ignored.
func (l *SubscriptionLifecycle) Updated(ctx context.Context, sub billing.Subscription) (domain.Outcome, error) {
	const op = "lifecycle.updated"
	logger := l.logger.With("subscription_id", sub.ID)

	row, err := l.repo.GetSubscriptionByProcessorID(ctx, sub.ID)
	if err != nil {
		if repository.IsNotFound(err) {
			logger.Warn("update for unknown subscription")
			return domain.OutcomeNotFound, nil
		}
		return domain.OutcomeFailed, domain.Internal(err, op, "failed to load subscription")
	}
	existing := row.ToDomain()
	if existing.Status == domain.SubscriptionStatusCancelled {
		logger.Info("update for cancelled subscription ignored")
		return domain.OutcomeIgnored, nil
	}

	status := domain.NormalizeSubscriptionStatus(sub.Status)
	params := repository.UpdateSubscriptionFromProcessorParams{
		ProcessorSubscriptionID: sub.ID,
		Status:                  string(status),
		Amount:                  existing.Amount,
		PlanTier:                string(existing.PlanTier),
		ProcessorPriceID:        repository.PgText(existing.ProcessorPriceID),
		NextBillingDate:         repository.PgTimestamptz(existing.NextBillingDate),
	}
	if sub.PriceID != "" {
		params.Amount = domain.MinorToMajor(sub.UnitAmount)
		params.ProcessorPriceID = repository.PgText(sub.PriceID)
	}
	if next, ok := PeriodTime(sub.CurrentPeriodEnd); ok {
		params.NextBillingDate = repository.PgTimestamptz(next)
	}
	if status == domain.SubscriptionStatusCancelled {
		params.CancelledAt = repository.PgTimestamptz(l.now().UTC())
	}

	_, tagged := metadataTier(sub.Metadata)
	if tagged || (sub.PriceID != "" && sub.PriceID != existing.ProcessorPriceID) {
		resolution := l.plans.Resolve(ctx, PlanQuery{
			Metadata:       sub.Metadata,
			PriceID:        sub.PriceID,
			SubscriptionID: sub.ID,
			CustomerID:     sub.CustomerID,
		})
		if resolution.Resolved() || existing.PlanTier == "" {
			params.PlanTier = string(resolution.Tier)
		}
	}

	if _, err := l.repo.UpdateSubscriptionFromProcessor(ctx, params); err != nil {
		if repository.IsUniqueViolationOn(err, repository.ConstraintOneActiveSubscription) {
			logger.Warn("reactivation blocked by another active subscription", "account_id", existing.AccountID)
			return domain.OutcomeFailed, domain.WrapError(ErrActiveSubscriptionExists, domain.ECONFLICT, op, "account already has an active subscription")
		}
		if repository.IsNotFound(err) {
			logger.Info("subscription cancelled concurrently, update ignored")
			return domain.OutcomeIgnored, nil
		}
		return domain.OutcomeFailed, domain.Internal(err, op, "failed to update subscription")
	}

	if status == domain.SubscriptionStatusCancelled {
		l.metrics.TransitionInc("cancelled")
	} else {
		l.metrics.TransitionInc("updated")
	}
	logger.Info("subscription updated",
		"status", params.Status,
		"plan_tier", params.PlanTier,
		"next_billing_date", params.NextBillingDate.Time,
	)
	return domain.OutcomeProcessed, nil
}

// Deleted marks the subscription cancelled.
func (l *SubscriptionLifecycle) Deleted(ctx context.Context, subscriptionID string) (domain.Outcome, error) {
	logger := l.logger.With("subscription_id", subscriptionID)

	_, err := l.repo.CancelSubscription(ctx, repository.CancelSubscriptionParams{
		ProcessorSubscriptionID: subscriptionID,
		CancelledAt:             repository.PgTimestamptz(l.now().UTC()),
	})
	if err != nil {
		if repository.IsNotFound(err) {
			logger.Warn("cancellation for unknown subscription")
			return domain.OutcomeNotFound, nil
		}
		return domain.OutcomeFailed, domain.Internal(err, "lifecycle.deleted", "failed to cancel subscription")
	}

	l.metrics.TransitionInc("cancelled")
	logger.Info("subscription cancelled")
	return domain.OutcomeProcessed, nil
}

// RenewalSucceeded forces the subscription active and advances its next
// billing date. The live subscription is preferred over the invoice line
// period; if neither is usable the stored date is kept.
func (l *SubscriptionLifecycle) RenewalSucceeded(ctx context.Context, subscriptionID string, linePeriodEnd int64) (domain.Outcome, error) {
	const op = "lifecycle.renewal_succeeded"
	if subscriptionID == "" {
		return domain.OutcomeIgnored, nil
	}
	logger := l.logger.With("subscription_id", subscriptionID)

	row, err := l.repo.GetSubscriptionByProcessorID(ctx, subscriptionID)
	if err != nil {
		if repository.IsNotFound(err) {
			logger.Warn("renewal for unknown subscription")
			return domain.OutcomeNotFound, nil
		}
		return domain.OutcomeFailed, domain.Internal(err, op, "failed to load subscription")
	}
	if row.Status == string(domain.SubscriptionStatusCancelled) {
		logger.Info("renewal for cancelled subscription ignored")
		return domain.OutcomeIgnored, nil
	}

	next := row.NextBillingDate.Time
	source := "stored"
	if live, err := l.lookupSubscription(ctx, subscriptionID); err != nil {
		logger.Warn("live subscription lookup failed, using invoice period", "error", err)
	} else if t, ok := PeriodTime(live.CurrentPeriodEnd); ok {
		next, source = t, "subscription"
	}
	if source == "stored" {
		if t, ok := PeriodTime(linePeriodEnd); ok {
			next, source = t, "invoice_line"
		}
	}

	if _, err := l.repo.MarkSubscriptionRenewed(ctx, repository.MarkSubscriptionRenewedParams{
		ProcessorSubscriptionID: subscriptionID,
		NextBillingDate:         repository.PgTimestamptz(next),
	}); err != nil {
		if repository.IsUniqueViolationOn(err, repository.ConstraintOneActiveSubscription) {
			return domain.OutcomeFailed, domain.WrapError(ErrActiveSubscriptionExists, domain.ECONFLICT, op, "account already has an active subscription")
		}
		if repository.IsNotFound(err) {
			logger.Info("subscription cancelled concurrently, renewal ignored")
			return domain.OutcomeIgnored, nil
		}
		return domain.OutcomeFailed, domain.Internal(err, op, "failed to renew subscription")
	}

	l.metrics.TransitionInc("renewed")
	logger.Info("subscription renewed", "next_billing_date", next, "source", source)
	return domain.OutcomeProcessed, nil
}

// RenewalFailed marks the subscription past due unless it is already
// cancelled.
func (l *SubscriptionLifecycle) RenewalFailed(ctx context.Context, subscriptionID string) (domain.Outcome, error) {
	const op = "lifecycle.renewal_failed"
	if subscriptionID == "" {
		return domain.OutcomeIgnored, nil
	}
	logger := l.logger.With("subscription_id", subscriptionID)

	row, err := l.repo.GetSubscriptionByProcessorID(ctx, subscriptionID)
	if err != nil {
		if repository.IsNotFound(err) {
			logger.Warn("payment failure for unknown subscription")
			return domain.OutcomeNotFound, nil
		}
		return domain.OutcomeFailed, domain.Internal(err, op, "failed to load subscription")
	}
	if row.Status == string(domain.SubscriptionStatusCancelled) {
		logger.Info("payment failure for cancelled subscription ignored")
		return domain.OutcomeIgnored, nil
	}

	_, err = l.repo.UpdateSubscriptionStatus(ctx, repository.UpdateSubscriptionStatusParams{
		ProcessorSubscriptionID: subscriptionID,
		Status:                  string(domain.SubscriptionStatusPastDue),
	})
	if err != nil {
		if repository.IsNotFound(err) {
			logger.Info("subscription cancelled concurrently, payment failure ignored")
			return domain.OutcomeIgnored, nil
		}
		return domain.OutcomeFailed, domain.Internal(err, op, "failed to mark subscription past due")
	}

	l.metrics.TransitionInc("past_due")
	logger.Info("subscription past due")
	return domain.OutcomeProcessed, nil
}

func (l *SubscriptionLifecycle) lookupSubscription(ctx context.Context, id string) (*billing.Subscription, error) {
	if l.provider == nil {
		return nil, billing.ErrLookupFailed
	}
	ctx, cancel := context.WithTimeout(ctx, l.lookupTimeout)
	defer cancel()
	return l.provider.GetSubscription(ctx, id)
}

func (l *SubscriptionLifecycle) periodOrFallback(logger *slog.Logger, raw int64, fallback time.Time, field string) time.Time {
	if t, ok := PeriodTime(raw); ok {
		return t
	}
	logger.Warn("unusable processor timestamp, using fallback",
		"field", field,
		"raw", raw,
		"fallback", fallback,
	)
	l.metrics.TimestampFallbackInc(field)
	return fallback
}
