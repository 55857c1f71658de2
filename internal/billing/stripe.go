package billing

import (
	"context"
	"net/http"

	"github.com/stripe/stripe-go/v83"
)

// StripeProvider implements Provider using the Stripe API.
// It holds its own client; the package-level stripe.Key is never set.
type StripeProvider struct {
	sc *stripe.Client
}

// NewStripeProvider creates a new Stripe billing provider.
func NewStripeProvider(config StripeConfig) (*StripeProvider, error) {
	if config.APIKey == "" {
		return nil, ErrInvalidAPIKey
	}

	backendConfig := &stripe.BackendConfig{
		HTTPClient:        &http.Client{Timeout: config.timeout(), Transport: config.Transport},
		MaxNetworkRetries: stripe.Int64(config.maxRetries()),
	}
	if config.APIBase != "" {
		backendConfig.URL = stripe.String(config.APIBase)
	}
	backends := stripe.NewBackendsWithConfig(backendConfig)

	return &StripeProvider{
		sc: stripe.NewClient(config.APIKey, stripe.WithBackends(backends)),
	}, nil
}

// CreateCheckoutSession creates an embedded-mode checkout session.
func (s *StripeProvider) CreateCheckoutSession(ctx context.Context, params CreateCheckoutSessionParams) (*CheckoutSession, error) {
	p := &stripe.CheckoutSessionCreateParams{
		Mode:   stripe.String(params.Mode),
		UIMode: stripe.String("embedded"),
		LineItems: []*stripe.CheckoutSessionCreateLineItemParams{
			{
				Price:    stripe.String(params.PriceID),
				Quantity: stripe.Int64(1),
			},
		},
		ReturnURL: stripe.String(params.ReturnURL),
		Metadata:  params.Metadata,
	}

	// A session accepts either an existing customer or an email, not both.
	if params.CustomerID != "" {
		p.Customer = stripe.String(params.CustomerID)
	} else if params.CustomerEmail != "" {
		p.CustomerEmail = stripe.String(params.CustomerEmail)
	}

	if params.Mode == ModeSubscription {
		p.SubscriptionData = &stripe.CheckoutSessionCreateSubscriptionDataParams{
			Metadata: params.Metadata,
		}
	}

	sess, err := s.sc.V1CheckoutSessions.Create(ctx, p)
	if err != nil {
		return nil, wrapStripeError(err)
	}
	return toCheckoutSession(sess), nil
}

// GetCheckoutSession retrieves a checkout session.
func (s *StripeProvider) GetCheckoutSession(ctx context.Context, sessionID string) (*CheckoutSession, error) {
	sess, err := s.sc.V1CheckoutSessions.Retrieve(ctx, sessionID, &stripe.CheckoutSessionRetrieveParams{})
	if err != nil {
		if se, ok := wrapStripeError(err).(*StripeError); ok && se.IsNotFound() {
			return nil, ErrCheckoutSessionNotFound
		}
		return nil, lookupError("get checkout session", sessionID, err)
	}
	return toCheckoutSession(sess), nil
}

// ListCheckoutSessions lists the customer's most recent checkout sessions.
func (s *StripeProvider) ListCheckoutSessions(ctx context.Context, customerID string, limit int64) ([]*CheckoutSession, error) {
	p := &stripe.CheckoutSessionListParams{
		Customer: stripe.String(customerID),
	}
	p.Limit = stripe.Int64(limit)

	var sessions []*CheckoutSession
	for sess, err := range s.sc.V1CheckoutSessions.List(ctx, p) {
		if err != nil {
			return nil, lookupError("list checkout sessions for", customerID, err)
		}
		sessions = append(sessions, toCheckoutSession(sess))
		if int64(len(sessions)) >= limit {
			break
		}
	}
	return sessions, nil
}

// GetSubscription retrieves a subscription.
func (s *StripeProvider) GetSubscription(ctx context.Context, subscriptionID string) (*Subscription, error) {
	sub, err := s.sc.V1Subscriptions.Retrieve(ctx, subscriptionID, &stripe.SubscriptionRetrieveParams{})
	if err != nil {
		if se, ok := wrapStripeError(err).(*StripeError); ok && se.IsNotFound() {
			return nil, ErrSubscriptionNotFound
		}
		return nil, lookupError("get subscription", subscriptionID, err)
	}
	return toSubscription(sub), nil
}

// GetCustomer retrieves a customer.
func (s *StripeProvider) GetCustomer(ctx context.Context, customerID string) (*Customer, error) {
	cus, err := s.sc.V1Customers.Retrieve(ctx, customerID, &stripe.CustomerRetrieveParams{})
	if err != nil {
		return nil, lookupError("get customer", customerID, err)
	}
	return &Customer{ID: cus.ID, Email: cus.Email, Name: cus.Name}, nil
}

// GetPrice retrieves a price.
func (s *StripeProvider) GetPrice(ctx context.Context, priceID string) (*Price, error) {
	pr, err := s.sc.V1Prices.Retrieve(ctx, priceID, &stripe.PriceRetrieveParams{})
	if err != nil {
		return nil, lookupError("get price", priceID, err)
	}
	return &Price{
		ID:         pr.ID,
		UnitAmount: pr.UnitAmount,
		Currency:   string(pr.Currency),
		Recurring:  pr.Recurring != nil,
	}, nil
}

// ToCheckoutSession converts a Stripe checkout session.
func ToCheckoutSession(sess *stripe.CheckoutSession) *CheckoutSession {
	return toCheckoutSession(sess)
}

func toCheckoutSession(sess *stripe.CheckoutSession) *CheckoutSession {
	out := &CheckoutSession{
		ID:            sess.ID,
		ClientSecret:  sess.ClientSecret,
		Mode:          string(sess.Mode),
		Status:        string(sess.Status),
		PaymentStatus: string(sess.PaymentStatus),
		CustomerEmail: sess.CustomerEmail,
		AmountTotal:   sess.AmountTotal,
		Currency:      string(sess.Currency),
		Metadata:      sess.Metadata,
	}
	if sess.Customer != nil {
		out.CustomerID = sess.Customer.ID
	}
	if sess.CustomerDetails != nil {
		if out.CustomerEmail == "" {
			out.CustomerEmail = sess.CustomerDetails.Email
		}
		out.CustomerName = sess.CustomerDetails.Name
	}
	if sess.Subscription != nil {
		out.SubscriptionID = sess.Subscription.ID
	}
	return out
}

// ToSubscription flattens a Stripe subscription onto its first item.
func ToSubscription(sub *stripe.Subscription) *Subscription {
	return toSubscription(sub)
}

func toSubscription(sub *stripe.Subscription) *Subscription {
	out := &Subscription{
		ID:        sub.ID,
		Status:    string(sub.Status),
		StartDate: sub.StartDate,
		Metadata:  sub.Metadata,
	}
	if sub.Customer != nil {
		out.CustomerID = sub.Customer.ID
	}
	if sub.Items != nil && len(sub.Items.Data) > 0 {
		item := sub.Items.Data[0]
		out.CurrentPeriodStart = item.CurrentPeriodStart
		out.CurrentPeriodEnd = item.CurrentPeriodEnd
		if item.Price != nil {
			out.PriceID = item.Price.ID
			out.UnitAmount = item.Price.UnitAmount
			out.Currency = string(item.Price.Currency)
		}
	}
	return out
}
