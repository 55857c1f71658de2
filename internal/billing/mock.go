package billing

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// MockProvider is a mock billing provider for testing.
// Serves lookups from in-memory maps without calling the Stripe API.
type MockProvider struct {
	// CreateCheckoutSessionFunc allows customizing checkout session creation behavior
	CreateCheckoutSessionFunc func(ctx context.Context, params CreateCheckoutSessionParams) (*CheckoutSession, error)

	// GetCheckoutSessionFunc allows customizing checkout session retrieval behavior
	GetCheckoutSessionFunc func(ctx context.Context, sessionID string) (*CheckoutSession, error)

	// ListCheckoutSessionsFunc allows customizing the customer session search
	ListCheckoutSessionsFunc func(ctx context.Context, customerID string, limit int64) ([]*CheckoutSession, error)

	// GetSubscriptionFunc allows customizing subscription retrieval behavior
	GetSubscriptionFunc func(ctx context.Context, subscriptionID string) (*Subscription, error)

	// GetCustomerFunc allows customizing customer retrieval behavior
	GetCustomerFunc func(ctx context.Context, customerID string) (*Customer, error)

	// GetPriceFunc allows customizing price retrieval behavior
	GetPriceFunc func(ctx context.Context, priceID string) (*Price, error)

	// Sessions stores checkout sessions by id, in creation order per customer
	Sessions map[string]*CheckoutSession

	// Subscriptions stores subscriptions for retrieval
	Subscriptions map[string]*Subscription

	// Customers stores customers for retrieval
	Customers map[string]*Customer

	// Prices stores prices for retrieval
	Prices map[string]*Price

	// CallLog tracks method calls for test assertions
	CallLog []string

	mu    sync.Mutex
	order []string
}

// NewMockProvider creates a new mock billing provider.
func NewMockProvider() *MockProvider {
	return &MockProvider{
		Sessions:      make(map[string]*CheckoutSession),
		Subscriptions: make(map[string]*Subscription),
		Customers:     make(map[string]*Customer),
		Prices:        make(map[string]*Price),
		CallLog:       []string{},
	}
}

func (m *MockProvider) log(call string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CallLog = append(m.CallLog, call)
}

// Calls returns a copy of the call log.
func (m *MockProvider) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.CallLog...)
}

// AddSession stores a checkout session for later retrieval and listing.
func (m *MockProvider) AddSession(sess *CheckoutSession) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Sessions[sess.ID] = sess
	m.order = append(m.order, sess.ID)
}

// CreateCheckoutSession creates a mock checkout session.
func (m *MockProvider) CreateCheckoutSession(ctx context.Context, params CreateCheckoutSessionParams) (*CheckoutSession, error) {
	m.log(fmt.Sprintf("CreateCheckoutSession(%s, %s)", params.Mode, params.PriceID))

	if m.CreateCheckoutSessionFunc != nil {
		return m.CreateCheckoutSessionFunc(ctx, params)
	}

	// Default mock behavior: create an open session
	id := "cs_test_" + uuid.New().String()
	sess := &CheckoutSession{
		ID:            id,
		ClientSecret:  id + "_secret_" + uuid.New().String(),
		Mode:          params.Mode,
		Status:        "open",
		PaymentStatus: "unpaid",
		CustomerID:    params.CustomerID,
		CustomerEmail: params.CustomerEmail,
		Metadata:      params.Metadata,
	}
	m.AddSession(sess)
	return sess, nil
}

// GetCheckoutSession retrieves a mock checkout session.
func (m *MockProvider) GetCheckoutSession(ctx context.Context, sessionID string) (*CheckoutSession, error) {
	m.log(fmt.Sprintf("GetCheckoutSession(%s)", sessionID))

	if m.GetCheckoutSessionFunc != nil {
		return m.GetCheckoutSessionFunc(ctx, sessionID)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	sess, exists := m.Sessions[sessionID]
	if !exists {
		return nil, ErrCheckoutSessionNotFound
	}
	return sess, nil
}

// ListCheckoutSessions returns stored sessions for the customer, newest first.
func (m *MockProvider) ListCheckoutSessions(ctx context.Context, customerID string, limit int64) ([]*CheckoutSession, error) {
	m.log(fmt.Sprintf("ListCheckoutSessions(%s, %d)", customerID, limit))

	if m.ListCheckoutSessionsFunc != nil {
		return m.ListCheckoutSessionsFunc(ctx, customerID, limit)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*CheckoutSession
	for i := len(m.order) - 1; i >= 0 && int64(len(out)) < limit; i-- {
		if sess := m.Sessions[m.order[i]]; sess.CustomerID == customerID {
			out = append(out, sess)
		}
	}
	return out, nil
}

// GetSubscription retrieves a mock subscription.
func (m *MockProvider) GetSubscription(ctx context.Context, subscriptionID string) (*Subscription, error) {
	m.log(fmt.Sprintf("GetSubscription(%s)", subscriptionID))

	if m.GetSubscriptionFunc != nil {
		return m.GetSubscriptionFunc(ctx, subscriptionID)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	sub, exists := m.Subscriptions[subscriptionID]
	if !exists {
		return nil, ErrSubscriptionNotFound
	}
	return sub, nil
}

// GetCustomer retrieves a mock customer.
func (m *MockProvider) GetCustomer(ctx context.Context, customerID string) (*Customer, error) {
	m.log(fmt.Sprintf("GetCustomer(%s)", customerID))

	if m.GetCustomerFunc != nil {
		return m.GetCustomerFunc(ctx, customerID)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	cus, exists := m.Customers[customerID]
	if !exists {
		return nil, fmt.Errorf("%w: customer %s not found", ErrLookupFailed, customerID)
	}
	return cus, nil
}

// GetPrice retrieves a mock price.
func (m *MockProvider) GetPrice(ctx context.Context, priceID string) (*Price, error) {
	m.log(fmt.Sprintf("GetPrice(%s)", priceID))

	if m.GetPriceFunc != nil {
		return m.GetPriceFunc(ctx, priceID)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	pr, exists := m.Prices[priceID]
	if !exists {
		return nil, fmt.Errorf("%w: price %s not found", ErrLookupFailed, priceID)
	}
	return pr, nil
}

var _ Provider = (*MockProvider)(nil)
var _ Provider = (*StripeProvider)(nil)
