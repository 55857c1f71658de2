// Package event verifies processor webhook deliveries and decodes them into
// typed variants. It performs no storage access and no outbound calls.
package event

import (
	"time"

	"github.com/dukerupert/billsync/internal/billing"
)

// Verified is an authenticated, decoded webhook delivery.
type Verified struct {
	ID         string
	Type       string
	Created    time.Time
	ReceivedAt time.Time
	Data       Variant
}

// Variant is implemented by exactly one struct per recognised event type.
type Variant interface {
	variant()
}

// ChangeKind distinguishes the three subscription lifecycle events that
// share a payload.
type ChangeKind string

const (
	ChangeCreated ChangeKind = "created"
	ChangeUpdated ChangeKind = "updated"
	ChangeDeleted ChangeKind = "deleted"
)

// CheckoutCompleted is checkout.session.completed.
type CheckoutCompleted struct {
	Session billing.CheckoutSession
}

// SubscriptionChanged is customer.subscription.created, .updated or .deleted.
type SubscriptionChanged struct {
	Change       ChangeKind
	Subscription billing.Subscription
}

// InvoiceSettled is invoice.payment_succeeded or invoice.payment_failed.
// SubscriptionID is empty for invoices without a subscription parent.
type InvoiceSettled struct {
	InvoiceID      string
	SubscriptionID string
	CustomerID     string
	Paid           bool
	AmountPaid     int64 // minor units
	// LinePeriodEnd is the first line's period end, zero when absent.
	LinePeriodEnd int64
}

// CustomerUpdated is customer.updated.
type CustomerUpdated struct {
	CustomerID string
	Email      string
	Name       string
}

// PaymentMethodAttached is payment_method.attached.
type PaymentMethodAttached struct {
	PaymentMethodID string
	CustomerID      string
}

// Unrecognized is any verified event type the reconciler does not handle.
type Unrecognized struct{}

func (CheckoutCompleted) variant()     {}
func (SubscriptionChanged) variant()   {}
func (InvoiceSettled) variant()        {}
func (CustomerUpdated) variant()       {}
func (PaymentMethodAttached) variant() {}
func (Unrecognized) variant()          {}
