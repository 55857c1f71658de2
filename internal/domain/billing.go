package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PlanTier is the product-level subscription plan.
type PlanTier string

const (
	PlanTierBasic   PlanTier = "basic"
	PlanTierFancy   PlanTier = "fancy"
	PlanTierUnknown PlanTier = "unknown"
)

// ParsePlanTier returns the tier for a metadata tag. Empty or unrecognised
// tags report false so callers can fall through to the next resolution step.
func ParsePlanTier(s string) (PlanTier, bool) {
	switch PlanTier(strings.ToLower(strings.TrimSpace(s))) {
	case PlanTierBasic:
		return PlanTierBasic, true
	case PlanTierFancy:
		return PlanTierFancy, true
	}
	return "", false
}

// PaymentKind distinguishes one-time charges from subscription checkouts.
type PaymentKind string

const (
	PaymentKindOneTime      PaymentKind = "one_time"
	PaymentKindSubscription PaymentKind = "subscription"
)

// PaymentStatus is the settlement state of a PaymentRecord.
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
)

// SubscriptionStatus is the locally stored subscription state. Statuses the
// processor reports that are not modelled here are stored verbatim.
type SubscriptionStatus string

const (
	SubscriptionStatusActive    SubscriptionStatus = "active"
	SubscriptionStatusPastDue   SubscriptionStatus = "past_due"
	SubscriptionStatusCancelled SubscriptionStatus = "cancelled"
)

// NormalizeSubscriptionStatus maps a processor status onto the local state
// space. An empty status means active; "canceled" is spelled "cancelled".
func NormalizeSubscriptionStatus(s string) SubscriptionStatus {
	switch s {
	case "":
		return SubscriptionStatusActive
	case "canceled", "cancelled":
		return SubscriptionStatusCancelled
	}
	return SubscriptionStatus(s)
}

// Account is the local owner of payments and subscriptions.
type Account struct {
	ID                     uuid.UUID `json:"id"`
	Email                  string    `json:"email"`
	Name                   string    `json:"name"`
	ProcessorCustomerID    string    `json:"processor_customer_id,omitempty"`
	DefaultPaymentMethodID string    `json:"default_payment_method_id,omitempty"`
	CreatedAt              time.Time `json:"created_at"`
	UpdatedAt              time.Time `json:"updated_at"`
}

// PaymentRecord is one real-world charge. It is keyed by TransactionID and
// never mutated after insert.
type PaymentRecord struct {
	ID            int64           `json:"id"`
	AccountID     uuid.UUID       `json:"account_id"`
	Amount        decimal.Decimal `json:"amount"`
	Kind          PaymentKind     `json:"payment_kind"`
	Status        PaymentStatus   `json:"status"`
	TransactionID string          `json:"transaction_id"`
	CreatedAt     time.Time       `json:"created_at"`
}

// SubscriptionRecord mirrors a processor subscription.
type SubscriptionRecord struct {
	ID                      int64              `json:"id"`
	AccountID               uuid.UUID          `json:"account_id"`
	Amount                  decimal.Decimal    `json:"amount"`
	Status                  SubscriptionStatus `json:"status"`
	PlanTier                PlanTier           `json:"plan_tier"`
	ProcessorSubscriptionID string             `json:"processor_subscription_id"`
	ProcessorPriceID        string             `json:"processor_price_id,omitempty"`
	StartDate               time.Time          `json:"start_date"`
	NextBillingDate         time.Time          `json:"next_billing_date"`
	CancelledAt             *time.Time         `json:"cancelled_at,omitempty"`
	CreatedAt               time.Time          `json:"created_at"`
	UpdatedAt               time.Time          `json:"updated_at"`
}

// Outcome is the result of reconciling one fact against local state.
type Outcome string

const (
	OutcomeProcessed Outcome = "processed"
	OutcomeDuplicate Outcome = "duplicate"
	OutcomeIgnored   Outcome = "ignored"
	OutcomeNotFound  Outcome = "not_found"
	OutcomeFailed    Outcome = "failed"
)

// MinorToMajor converts processor minor units (cents) to a decimal amount.
func MinorToMajor(minor int64) decimal.Decimal {
	return decimal.New(minor, -2)
}
