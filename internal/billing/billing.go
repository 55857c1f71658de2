package billing

import (
	"context"
)

// Provider defines the payment processor operations the reconciler needs.
// Lookups are trusted: the processor is the source of truth for billing
// state, so callers use the results to fill in facts a webhook omitted.
type Provider interface {
	// CreateCheckoutSession creates an embedded-mode checkout session.
	// Returns the session with client_secret for the frontend.
	CreateCheckoutSession(ctx context.Context, params CreateCheckoutSessionParams) (*CheckoutSession, error)

	// GetCheckoutSession retrieves a checkout session by id.
	// Used by the redirect path after the customer returns from checkout.
	GetCheckoutSession(ctx context.Context, sessionID string) (*CheckoutSession, error)

	// ListCheckoutSessions returns the customer's most recent checkout
	// sessions, newest first, at most limit entries.
	ListCheckoutSessions(ctx context.Context, customerID string, limit int64) ([]*CheckoutSession, error)

	// GetSubscription retrieves the live subscription with its items.
	GetSubscription(ctx context.Context, subscriptionID string) (*Subscription, error)

	// GetCustomer retrieves a customer's contact details.
	GetCustomer(ctx context.Context, customerID string) (*Customer, error)

	// GetPrice retrieves price display information.
	GetPrice(ctx context.Context, priceID string) (*Price, error)
}

// Checkout session modes.
const (
	ModePayment      = "payment"
	ModeSubscription = "subscription"
)

// CreateCheckoutSessionParams contains parameters for a new checkout session.
type CreateCheckoutSessionParams struct {
	// Mode is ModePayment or ModeSubscription.
	Mode string

	PriceID       string
	CustomerID    string
	CustomerEmail string

	// ReturnURL must contain the {CHECKOUT_SESSION_ID} placeholder.
	ReturnURL string

	// Metadata is attached to the session, and to the subscription when
	// Mode is ModeSubscription.
	Metadata map[string]string
}

// CheckoutSession is the processor's view of a checkout.
type CheckoutSession struct {
	ID             string
	ClientSecret   string
	Mode           string
	Status         string // "open", "complete", "expired"
	PaymentStatus  string // "paid", "unpaid", "no_payment_required"
	CustomerID     string
	CustomerEmail  string
	CustomerName   string
	SubscriptionID string
	AmountTotal    int64 // minor units
	Currency       string
	Metadata       map[string]string
}

// IsPaid reports whether the session collected its payment.
func (s *CheckoutSession) IsPaid() bool {
	return s.PaymentStatus == "paid"
}

// Subscription is a processor subscription with its first item flattened.
// Period bounds are raw processor timestamps.
type Subscription struct {
	ID                 string
	CustomerID         string
	Status             string
	PriceID            string
	UnitAmount         int64 // minor units
	Currency           string
	CurrentPeriodStart int64
	CurrentPeriodEnd   int64
	StartDate          int64
	Metadata           map[string]string
}

// Customer is a processor customer.
type Customer struct {
	ID    string
	Email string
	Name  string
}

// Price is a processor price.
type Price struct {
	ID         string
	UnitAmount int64 // minor units
	Currency   string
	Recurring  bool
}
