package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

// MemoryStore is an in-process Querier that enforces the same unique
// constraints as the PostgreSQL schema and reports violations as
// *pgconn.PgError with SQLSTATE 23505. It backs tests and local runs
// without a database.
type MemoryStore struct {
	mu            sync.Mutex
	now           func() time.Time
	nextPaymentID int64
	nextSubID     int64
	accounts      map[uuid.UUID]Account
	payments      map[string]Payment
	subscriptions map[string]Subscription
}

var _ Querier = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		now:           time.Now,
		accounts:      make(map[uuid.UUID]Account),
		payments:      make(map[string]Payment),
		subscriptions: make(map[string]Subscription),
	}
}

func (m *MemoryStore) stamp() pgtype.Timestamptz {
	return PgTimestamptz(m.now().UTC())
}

// --- accounts ---

func (m *MemoryStore) GetAccountByID(_ context.Context, id pgtype.UUID) (Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.accounts[UUIDFromPg(id)]
	if !ok {
		return Account{}, pgx.ErrNoRows
	}
	return a, nil
}

func (m *MemoryStore) GetAccountByEmail(_ context.Context, email string) (Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if a, ok := m.accountByEmailLocked(email); ok {
		return a, nil
	}
	return Account{}, pgx.ErrNoRows
}

func (m *MemoryStore) GetAccountByProcessorCustomerID(_ context.Context, customerID pgtype.Text) (Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if a, ok := m.accountByCustomerLocked(customerID); ok {
		return a, nil
	}
	return Account{}, pgx.ErrNoRows
}

func (m *MemoryStore) UpsertAccountByEmail(_ context.Context, arg UpsertAccountByEmailParams) (Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if existing, ok := m.accountByEmailLocked(arg.Email); ok {
		if !existing.ProcessorCustomerID.Valid && arg.ProcessorCustomerID.Valid {
			if holder, taken := m.accountByCustomerLocked(arg.ProcessorCustomerID); taken && holder.ID != existing.ID {
				return Account{}, uniqueViolationError(ConstraintAccountCustomer)
			}
			existing.ProcessorCustomerID = arg.ProcessorCustomerID
		}
		existing.UpdatedAt = m.stamp()
		m.accounts[UUIDFromPg(existing.ID)] = existing
		return existing, nil
	}

	if _, taken := m.accountByCustomerLocked(arg.ProcessorCustomerID); taken {
		return Account{}, uniqueViolationError(ConstraintAccountCustomer)
	}

	id := uuid.New()
	a := Account{
		ID:                  PgUUID(id),
		Email:               arg.Email,
		Name:                arg.Name,
		ProcessorCustomerID: arg.ProcessorCustomerID,
		CreatedAt:           m.stamp(),
		UpdatedAt:           m.stamp(),
	}
	m.accounts[id] = a
	return a, nil
}

func (m *MemoryStore) UpdateAccountProfile(_ context.Context, arg UpdateAccountProfileParams) (Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := UUIDFromPg(arg.ID)
	a, ok := m.accounts[id]
	if !ok {
		return Account{}, pgx.ErrNoRows
	}
	if holder, taken := m.accountByEmailLocked(arg.Email); taken && holder.ID != a.ID {
		return Account{}, uniqueViolationError(ConstraintAccountEmail)
	}
	a.Email = arg.Email
	a.Name = arg.Name
	a.UpdatedAt = m.stamp()
	m.accounts[id] = a
	return a, nil
}

func (m *MemoryStore) SetAccountProcessorCustomerID(_ context.Context, arg SetAccountProcessorCustomerIDParams) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := UUIDFromPg(arg.ID)
	a, ok := m.accounts[id]
	if !ok {
		return 0, nil
	}
	if a.ProcessorCustomerID.Valid && a.ProcessorCustomerID.String != arg.ProcessorCustomerID.String {
		return 0, nil
	}
	if holder, taken := m.accountByCustomerLocked(arg.ProcessorCustomerID); taken && holder.ID != a.ID {
		return 0, uniqueViolationError(ConstraintAccountCustomer)
	}
	a.ProcessorCustomerID = arg.ProcessorCustomerID
	a.UpdatedAt = m.stamp()
	m.accounts[id] = a
	return 1, nil
}

func (m *MemoryStore) SetAccountDefaultPaymentMethod(_ context.Context, arg SetAccountDefaultPaymentMethodParams) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := UUIDFromPg(arg.ID)
	a, ok := m.accounts[id]
	if !ok {
		return 0, nil
	}
	a.DefaultPaymentMethodID = arg.DefaultPaymentMethodID
	a.UpdatedAt = m.stamp()
	m.accounts[id] = a
	return 1, nil
}

func (m *MemoryStore) accountByEmailLocked(email string) (Account, bool) {
	for _, a := range m.accounts {
		if strings.EqualFold(a.Email, email) {
			return a, true
		}
	}
	return Account{}, false
}

func (m *MemoryStore) accountByCustomerLocked(customerID pgtype.Text) (Account, bool) {
	if !customerID.Valid {
		return Account{}, false
	}
	for _, a := range m.accounts {
		if a.ProcessorCustomerID.Valid && a.ProcessorCustomerID.String == customerID.String {
			return a, true
		}
	}
	return Account{}, false
}

// --- payments ---

func (m *MemoryStore) GetPaymentByTransactionID(_ context.Context, transactionID string) (Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.payments[transactionID]
	if !ok {
		return Payment{}, pgx.ErrNoRows
	}
	return p, nil
}

func (m *MemoryStore) CreatePayment(_ context.Context, arg CreatePaymentParams) (Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.payments[arg.TransactionID]; exists {
		return Payment{}, uniqueViolationError(ConstraintPaymentTransaction)
	}
	m.nextPaymentID++
	p := Payment{
		ID:            m.nextPaymentID,
		AccountID:     arg.AccountID,
		Amount:        arg.Amount,
		PaymentKind:   arg.PaymentKind,
		Status:        arg.Status,
		TransactionID: arg.TransactionID,
		CreatedAt:     m.stamp(),
	}
	m.payments[arg.TransactionID] = p
	return p, nil
}

func (m *MemoryStore) ListPaymentsForAccount(_ context.Context, accountID pgtype.UUID) ([]Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var items []Payment
	for _, p := range m.payments {
		if p.AccountID == accountID {
			items = append(items, p)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID > items[j].ID })
	return items, nil
}

// --- subscriptions ---

func (m *MemoryStore) GetSubscriptionByProcessorID(_ context.Context, processorSubscriptionID string) (Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.subscriptions[processorSubscriptionID]
	if !ok {
		return Subscription{}, pgx.ErrNoRows
	}
	return s, nil
}

func (m *MemoryStore) GetActiveSubscriptionForAccount(_ context.Context, accountID pgtype.UUID) (Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.subscriptions {
		if s.AccountID == accountID && s.Status == "active" {
			return s, nil
		}
	}
	return Subscription{}, pgx.ErrNoRows
}

func (m *MemoryStore) CreateSubscription(_ context.Context, arg CreateSubscriptionParams) (Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.subscriptions[arg.ProcessorSubscriptionID]; exists {
		return Subscription{}, uniqueViolationError(ConstraintSubscriptionProcessorID)
	}
	if arg.Status == "active" && m.hasOtherActiveLocked(arg.AccountID, arg.ProcessorSubscriptionID) {
		return Subscription{}, uniqueViolationError(ConstraintOneActiveSubscription)
	}
	m.nextSubID++
	s := Subscription{
		ID:                      m.nextSubID,
		AccountID:               arg.AccountID,
		Amount:                  arg.Amount,
		Status:                  arg.Status,
		PlanTier:                arg.PlanTier,
		ProcessorSubscriptionID: arg.ProcessorSubscriptionID,
		ProcessorPriceID:        arg.ProcessorPriceID,
		StartDate:               arg.StartDate,
		NextBillingDate:         arg.NextBillingDate,
		CreatedAt:               m.stamp(),
		UpdatedAt:               m.stamp(),
	}
	m.subscriptions[arg.ProcessorSubscriptionID] = s
	return s, nil
}

func (m *MemoryStore) UpdateSubscriptionFromProcessor(_ context.Context, arg UpdateSubscriptionFromProcessorParams) (Subscription, error) {
	return m.mutateSubscription(arg.ProcessorSubscriptionID, true, func(s *Subscription) {
		s.Status = arg.Status
		s.Amount = arg.Amount
		s.PlanTier = arg.PlanTier
		s.ProcessorPriceID = arg.ProcessorPriceID
		s.NextBillingDate = arg.NextBillingDate
		if !s.CancelledAt.Valid {
			s.CancelledAt = arg.CancelledAt
		}
	})
}

func (m *MemoryStore) UpdateSubscriptionStatus(_ context.Context, arg UpdateSubscriptionStatusParams) (Subscription, error) {
	return m.mutateSubscription(arg.ProcessorSubscriptionID, true, func(s *Subscription) {
		s.Status = arg.Status
	})
}

func (m *MemoryStore) MarkSubscriptionRenewed(_ context.Context, arg MarkSubscriptionRenewedParams) (Subscription, error) {
	return m.mutateSubscription(arg.ProcessorSubscriptionID, true, func(s *Subscription) {
		s.Status = "active"
		s.NextBillingDate = arg.NextBillingDate
	})
}

func (m *MemoryStore) CancelSubscription(_ context.Context, arg CancelSubscriptionParams) (Subscription, error) {
	return m.mutateSubscription(arg.ProcessorSubscriptionID, false, func(s *Subscription) {
		s.Status = "cancelled"
		if !s.CancelledAt.Valid {
			s.CancelledAt = arg.CancelledAt
		}
	})
}

func (m *MemoryStore) ListSubscriptionsForAccount(_ context.Context, accountID pgtype.UUID) ([]Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var items []Subscription
	for _, s := range m.subscriptions {
		if s.AccountID == accountID {
			items = append(items, s)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID > items[j].ID })
	return items, nil
}

// mutateSubscription applies an UPDATE to one row. With skipCancelled a
// cancelled row matches nothing, like the "status <> 'cancelled'" guard.
func (m *MemoryStore) mutateSubscription(processorID string, skipCancelled bool, apply func(*Subscription)) (Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.subscriptions[processorID]
	if !ok || (skipCancelled && s.Status == "cancelled") {
		return Subscription{}, pgx.ErrNoRows
	}
	apply(&s)
	if s.Status == "active" && m.hasOtherActiveLocked(s.AccountID, processorID) {
		return Subscription{}, uniqueViolationError(ConstraintOneActiveSubscription)
	}
	s.UpdatedAt = m.stamp()
	m.subscriptions[processorID] = s
	return s, nil
}

func (m *MemoryStore) hasOtherActiveLocked(accountID pgtype.UUID, processorID string) bool {
	for id, s := range m.subscriptions {
		if id != processorID && s.AccountID == accountID && s.Status == "active" {
			return true
		}
	}
	return false
}

// MemorySnapshot is a point-in-time copy of every row in a MemoryStore,
// ordered so two snapshots compare with reflect.DeepEqual.
type MemorySnapshot struct {
	Accounts      []Account
	Payments      []Payment
	Subscriptions []Subscription
}

func (m *MemoryStore) Snapshot() MemorySnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	var snap MemorySnapshot
	for _, a := range m.accounts {
		snap.Accounts = append(snap.Accounts, a)
	}
	for _, p := range m.payments {
		snap.Payments = append(snap.Payments, p)
	}
	for _, s := range m.subscriptions {
		snap.Subscriptions = append(snap.Subscriptions, s)
	}
	sort.Slice(snap.Accounts, func(i, j int) bool { return snap.Accounts[i].Email < snap.Accounts[j].Email })
	sort.Slice(snap.Payments, func(i, j int) bool { return snap.Payments[i].ID < snap.Payments[j].ID })
	sort.Slice(snap.Subscriptions, func(i, j int) bool { return snap.Subscriptions[i].ID < snap.Subscriptions[j].ID })
	return snap
}
