// Package reconcile routes verified processor events to the services that
// apply them to local billing state.
package reconcile

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/dukerupert/billsync/internal/billing"
	"github.com/dukerupert/billsync/internal/domain"
	"github.com/dukerupert/billsync/internal/event"
	"github.com/dukerupert/billsync/internal/notify"
	"github.com/dukerupert/billsync/internal/service"
	"github.com/dukerupert/billsync/internal/telemetry"
)

// DefaultHandlerTimeout bounds a single event when no timeout is configured.
const DefaultHandlerTimeout = 20 * time.Second

// PaymentRecorder records completed checkouts.
type PaymentRecorder interface {
	RecordCheckoutPayment(ctx context.Context, fact service.CheckoutFact, path service.Path) (domain.Outcome, error)
}

// Lifecycle applies subscription and invoice events.
type Lifecycle interface {
	Created(ctx context.Context, sub billing.Subscription) (domain.Outcome, error)
	Updated(ctx context.Context, sub billing.Subscription) (domain.Outcome, error)
	Deleted(ctx context.Context, subscriptionID string) (domain.Outcome, error)
	RenewalSucceeded(ctx context.Context, subscriptionID string, linePeriodEnd int64) (domain.Outcome, error)
	RenewalFailed(ctx context.Context, subscriptionID string) (domain.Outcome, error)
}

// AccountUpdater applies customer-level events.
type AccountUpdater interface {
	ApplyCustomerUpdate(ctx context.Context, customerID, email, name string) (domain.Outcome, error)
	ApplyPaymentMethodAttached(ctx context.Context, customerID, paymentMethodID string) (domain.Outcome, error)
}

// Result is the outcome of one event. Err is set only when Outcome is
// domain.OutcomeFailed.
type Result struct {
	Outcome domain.Outcome
	Err     error
}

func (r Result) Failed() bool {
	return r.Outcome == domain.OutcomeFailed
}

// Dispatcher handles each verified event in isolation: its own timeout, its
// own panic recovery, its own failure.
type Dispatcher struct {
	payments  PaymentRecorder
	lifecycle Lifecycle
	accounts  AccountUpdater
	publisher notify.Publisher
	metrics   *telemetry.BillingMetrics
	logger    *slog.Logger
	timeout   time.Duration
}

// NewDispatcher creates a Dispatcher. A nil publisher disables notifications.
func NewDispatcher(
	payments PaymentRecorder,
	lifecycle Lifecycle,
	accounts AccountUpdater,
	publisher notify.Publisher,
	metrics *telemetry.BillingMetrics,
	logger *slog.Logger,
	timeout time.Duration,
) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	if publisher == nil {
		publisher = notify.Nop{}
	}
	if timeout <= 0 {
		timeout = DefaultHandlerTimeout
	}
	return &Dispatcher{
		payments:  payments,
		lifecycle: lifecycle,
		accounts:  accounts,
		publisher: publisher,
		metrics:   metrics,
		logger:    logger.With("component", "dispatcher"),
		timeout:   timeout,
	}
}

// Dispatch applies one event. It never panics and never returns an error
// outside the Result.
func (d *Dispatcher) Dispatch(ctx context.Context, evt *event.Verified) (res Result) {
	started := time.Now()
	logger := d.logger.With("event_id", evt.ID, "event_type", evt.Type)
	d.metrics.WebhookReceivedInc(evt.Type)

	ctx = domain.NewContextWithEvent(ctx, domain.EventRef{ID: evt.ID, Type: evt.Type})
	ctx, finish := telemetry.StartSpan(ctx, "webhook.dispatch", evt.Type)
	defer finish()

	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	defer func() {
		reason := ""
		if p := recover(); p != nil {
			logger.Error("panic while handling event", "panic", p, "stack", string(debug.Stack()))
			res = Result{Outcome: domain.OutcomeFailed, Err: fmt.Errorf("panic handling %s: %v", evt.Type, p)}
			reason = "panic"
		}

		if res.Err != nil {
			res.Outcome = domain.OutcomeFailed
			if reason == "" {
				reason = domain.ErrorCode(res.Err)
			}
			logger.Error("event handling failed",
				"error", res.Err,
				"op", domain.ErrorOp(res.Err),
				"duration", time.Since(started),
			)
			d.metrics.WebhookFailedInc(evt.Type, reason)
			telemetry.CaptureEventError(ctx, res.Err, evt.ID, evt.Type, map[string]interface{}{
				"reason": reason,
			})
		} else {
			logger.Info("event handled", "outcome", res.Outcome, "duration", time.Since(started))
		}
		d.metrics.ObserveWebhook(evt.Type, string(res.Outcome), started)
	}()

	outcome, change, err := d.route(ctx, evt)
	if err != nil {
		return Result{Outcome: domain.OutcomeFailed, Err: err}
	}
	if outcome == domain.OutcomeProcessed && change != nil {
		d.publish(ctx, logger, evt, *change)
	}
	return Result{Outcome: outcome}
}

func (d *Dispatcher) route(ctx context.Context, evt *event.Verified) (domain.Outcome, *notify.Change, error) {
	switch v := evt.Data.(type) {
	case event.CheckoutCompleted:
		fact := service.CheckoutFactFromSession(v.Session)
		outcome, err := d.payments.RecordCheckoutPayment(ctx, fact, service.PathWebhook)
		subject := notify.SubjectPaymentRecorded
		if fact.Kind() != domain.PaymentKindOneTime {
			subject = notify.SubjectAccountChanged
		}
		return outcome, &notify.Change{
			Subject:   subject,
			AccountID: fact.Metadata[service.MetadataAccountID],
			ObjectID:  fact.SessionID,
			Status:    fact.PaymentStatus,
		}, err

	case event.SubscriptionChanged:
		var (
			outcome domain.Outcome
			err     error
		)
		status := string(domain.NormalizeSubscriptionStatus(v.Subscription.Status))
		switch v.Change {
		case event.ChangeCreated:
			outcome, err = d.lifecycle.Created(ctx, v.Subscription)
		case event.ChangeUpdated:
			outcome, err = d.lifecycle.Updated(ctx, v.Subscription)
		case event.ChangeDeleted:
			outcome, err = d.lifecycle.Deleted(ctx, v.Subscription.ID)
			status = string(domain.SubscriptionStatusCancelled)
		default:
			return domain.OutcomeIgnored, nil, nil
		}
		return outcome, &notify.Change{
			Subject:  notify.SubjectSubscriptionChanged,
			ObjectID: v.Subscription.ID,
			Status:   status,
		}, err

	case event.InvoiceSettled:
		if v.Paid {
			outcome, err := d.lifecycle.RenewalSucceeded(ctx, v.SubscriptionID, v.LinePeriodEnd)
			return outcome, &notify.Change{
				Subject:  notify.SubjectSubscriptionChanged,
				ObjectID: v.SubscriptionID,
				Status:   string(domain.SubscriptionStatusActive),
			}, err
		}
		outcome, err := d.lifecycle.RenewalFailed(ctx, v.SubscriptionID)
		return outcome, &notify.Change{
			Subject:  notify.SubjectSubscriptionChanged,
			ObjectID: v.SubscriptionID,
			Status:   string(domain.SubscriptionStatusPastDue),
		}, err

	case event.CustomerUpdated:
		outcome, err := d.accounts.ApplyCustomerUpdate(ctx, v.CustomerID, v.Email, v.Name)
		return outcome, &notify.Change{Subject: notify.SubjectAccountChanged, ObjectID: v.CustomerID}, err

	case event.PaymentMethodAttached:
		outcome, err := d.accounts.ApplyPaymentMethodAttached(ctx, v.CustomerID, v.PaymentMethodID)
		return outcome, &notify.Change{Subject: notify.SubjectAccountChanged, ObjectID: v.CustomerID}, err

	case event.Unrecognized:
		return domain.OutcomeIgnored, nil, nil
	}
	return domain.OutcomeIgnored, nil, nil
}

func (d *Dispatcher) publish(ctx context.Context, logger *slog.Logger, evt *event.Verified, change notify.Change) {
	change.EventID = evt.ID
	change.EventType = evt.Type
	change.OccurredAt = evt.Created
	if change.OccurredAt.IsZero() {
		change.OccurredAt = time.Now().UTC()
	}

	if err := d.publisher.Publish(ctx, change); err != nil {
		logger.Warn("failed to publish change notification", "subject", change.Subject, "error", err)
		d.metrics.NotificationFailedInc(change.Subject)
	}
}
