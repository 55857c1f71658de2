package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/dukerupert/billsync/internal/billing"
	"github.com/dukerupert/billsync/internal/domain"
	"github.com/dukerupert/billsync/internal/repository"
	"github.com/google/uuid"
)

// AccountRef is what an event knows about its account, in resolution order.
type AccountRef struct {
	AccountID  string
	CustomerID string
	Email      string
	Name       string
}

// Dashboard lists an account's billing history.
type Dashboard struct {
	Account       domain.Account              `json:"account"`
	Payments      []domain.PaymentRecord      `json:"payments"`
	Subscriptions []domain.SubscriptionRecord `json:"subscriptions"`
}

// AccountService resolves and maintains local accounts.
type AccountService struct {
	repo          repository.Querier
	provider      billing.Provider
	lookupTimeout time.Duration
	logger        *slog.Logger
}

// NewAccountService creates an AccountService.
func NewAccountService(
	repo repository.Querier,
	provider billing.Provider,
	lookupTimeout time.Duration,
	logger *slog.Logger,
) *AccountService {
	if logger == nil {
		logger = slog.Default()
	}
	if lookupTimeout == 0 {
		lookupTimeout = 5 * time.Second
	}
	return &AccountService{
		repo:          repo,
		provider:      provider,
		lookupTimeout: lookupTimeout,
		logger:        logger.With("service", "account"),
	}
}

// EnsureByEmail returns the account for email, creating it when absent.
// Email matching is case-insensitive.
func (s *AccountService) EnsureByEmail(ctx context.Context, email, name, customerID string) (domain.Account, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return domain.Account{}, ErrAccountUnresolvable
	}
	if name == "" {
		name = nameFromEmail(email)
	}

	row, err := s.repo.UpsertAccountByEmail(ctx, repository.UpsertAccountByEmailParams{
		Email:               email,
		Name:                name,
		ProcessorCustomerID: repository.PgText(customerID),
	})
	if err != nil {
		if repository.IsUniqueViolationOn(err, repository.ConstraintAccountCustomer) {
			// The customer id already belongs to another account; keep the
			// email account without linking it.
			s.logger.Warn("processor customer linked to another account",
				"email", email,
				"customer_id", customerID,
			)
			return s.EnsureByEmail(ctx, email, name, "")
		}
		return domain.Account{}, domain.Internal(err, "account.ensure", "failed to upsert account")
	}
	return row.ToDomain(), nil
}

// GetByEmail returns the account for email.
func (s *AccountService) GetByEmail(ctx context.Context, email string) (domain.Account, error) {
	row, err := s.repo.GetAccountByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if repository.IsNotFound(err) {
			return domain.Account{}, ErrAccountNotFound
		}
		return domain.Account{}, domain.Internal(err, "account.get_by_email", "failed to load account")
	}
	return row.ToDomain(), nil
}

// Resolve finds the account an event belongs to: by metadata account id,
// then processor customer id, then the customer's email, creating the
// account by email as a last resort.
func (s *AccountService) Resolve(ctx context.Context, ref AccountRef) (domain.Account, error) {
	if id, err := uuid.Parse(ref.AccountID); err == nil {
		row, err := s.repo.GetAccountByID(ctx, repository.PgUUID(id))
		switch {
		case err == nil:
			acct := row.ToDomain()
			if ref.CustomerID != "" && acct.ProcessorCustomerID == "" {
				if err := s.LinkCustomer(ctx, acct.ID, ref.CustomerID); err != nil {
					return domain.Account{}, err
				}
				acct.ProcessorCustomerID = ref.CustomerID
			}
			return acct, nil
		case repository.IsNotFound(err):
			s.logger.Warn("metadata account id not found, falling back", "account_id", ref.AccountID)
		default:
			return domain.Account{}, domain.Internal(err, "account.resolve", "failed to load account")
		}
	}

	if ref.CustomerID != "" {
		row, err := s.repo.GetAccountByProcessorCustomerID(ctx, repository.PgText(ref.CustomerID))
		switch {
		case err == nil:
			return row.ToDomain(), nil
		case !repository.IsNotFound(err):
			return domain.Account{}, domain.Internal(err, "account.resolve", "failed to load account")
		}
	}

	email, name := ref.Email, ref.Name
	if email == "" && ref.CustomerID != "" && s.provider != nil {
		cus, err := s.lookupCustomer(ctx, ref.CustomerID)
		if err != nil {
			return domain.Account{}, domain.Unavailable(err, "account.resolve", "customer lookup failed")
		}
		email = cus.Email
		if name == "" {
			name = cus.Name
		}
	}
	if email == "" {
		return domain.Account{}, ErrAccountUnresolvable
	}

	return s.EnsureByEmail(ctx, email, name, ref.CustomerID)
}

// LinkCustomer records the processor customer id on an account that has
// none. An account already linked to a different customer is left alone.
func (s *AccountService) LinkCustomer(ctx context.Context, accountID uuid.UUID, customerID string) error {
	n, err := s.repo.SetAccountProcessorCustomerID(ctx, repository.SetAccountProcessorCustomerIDParams{
		ID:                  repository.PgUUID(accountID),
		ProcessorCustomerID: repository.PgText(customerID),
	})
	if err != nil {
		if repository.IsUniqueViolationOn(err, repository.ConstraintAccountCustomer) {
			s.logger.Warn("processor customer linked to another account",
				"account_id", accountID,
				"customer_id", customerID,
			)
			return nil
		}
		return domain.Internal(err, "account.link_customer", "failed to link processor customer")
	}
	if n == 0 {
		s.logger.Debug("account already linked", "account_id", accountID, "customer_id", customerID)
	}
	return nil
}

// ApplyCustomerUpdate copies the processor's email and name onto the
// linked account.
func (s *AccountService) ApplyCustomerUpdate(ctx context.Context, customerID, email, name string) (domain.Outcome, error) {
	row, err := s.repo.GetAccountByProcessorCustomerID(ctx, repository.PgText(customerID))
	if err != nil {
		if repository.IsNotFound(err) {
			s.logger.Warn("customer update for unknown customer", "customer_id", customerID)
			return domain.OutcomeNotFound, nil
		}
		return domain.OutcomeFailed, domain.Internal(err, "account.customer_updated", "failed to load account")
	}

	params := repository.UpdateAccountProfileParams{ID: row.ID, Email: row.Email, Name: row.Name}
	if email != "" {
		params.Email = email
	}
	if name != "" {
		params.Name = name
	}
	if params.Email == row.Email && params.Name == row.Name {
		return domain.OutcomeDuplicate, nil
	}

	_, err = s.repo.UpdateAccountProfile(ctx, params)
	if repository.IsUniqueViolationOn(err, repository.ConstraintAccountEmail) {
		s.logger.Warn("customer email belongs to another account, keeping current email",
			"customer_id", customerID,
			"email", email,
		)
		params.Email = row.Email
		_, err = s.repo.UpdateAccountProfile(ctx, params)
	}
	if err != nil {
		return domain.OutcomeFailed, domain.Internal(err, "account.customer_updated", "failed to update account")
	}
	return domain.OutcomeProcessed, nil
}

// ApplyPaymentMethodAttached records the default payment method on the
// linked account.
func (s *AccountService) ApplyPaymentMethodAttached(ctx context.Context, customerID, paymentMethodID string) (domain.Outcome, error) {
	if customerID == "" {
		return domain.OutcomeIgnored, nil
	}
	row, err := s.repo.GetAccountByProcessorCustomerID(ctx, repository.PgText(customerID))
	if err != nil {
		if repository.IsNotFound(err) {
			s.logger.Warn("payment method attached for unknown customer", "customer_id", customerID)
			return domain.OutcomeNotFound, nil
		}
		return domain.OutcomeFailed, domain.Internal(err, "account.payment_method_attached", "failed to load account")
	}

	if _, err := s.repo.SetAccountDefaultPaymentMethod(ctx, repository.SetAccountDefaultPaymentMethodParams{
		ID:                     row.ID,
		DefaultPaymentMethodID: repository.PgText(paymentMethodID),
	}); err != nil {
		return domain.OutcomeFailed, domain.Internal(err, "account.payment_method_attached", "failed to set payment method")
	}
	return domain.OutcomeProcessed, nil
}

// Dashboard returns the account's payments and subscriptions, newest first.
func (s *AccountService) Dashboard(ctx context.Context, email string) (*Dashboard, error) {
	acct, err := s.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	payments, err := s.repo.ListPaymentsForAccount(ctx, repository.PgUUID(acct.ID))
	if err != nil {
		return nil, domain.Internal(err, "account.dashboard", "failed to list payments")
	}
	subs, err := s.repo.ListSubscriptionsForAccount(ctx, repository.PgUUID(acct.ID))
	if err != nil {
		return nil, domain.Internal(err, "account.dashboard", "failed to list subscriptions")
	}

	d := &Dashboard{
		Account:       acct,
		Payments:      make([]domain.PaymentRecord, 0, len(payments)),
		Subscriptions: make([]domain.SubscriptionRecord, 0, len(subs)),
	}
	for _, p := range payments {
		d.Payments = append(d.Payments, p.ToDomain())
	}
	for _, sub := range subs {
		d.Subscriptions = append(d.Subscriptions, sub.ToDomain())
	}
	return d, nil
}

func (s *AccountService) lookupCustomer(ctx context.Context, customerID string) (*billing.Customer, error) {
	ctx, cancel := context.WithTimeout(ctx, s.lookupTimeout)
	defer cancel()
	return s.provider.GetCustomer(ctx, customerID)
}

func nameFromEmail(email string) string {
	if i := strings.IndexByte(email, '@'); i > 0 {
		return email[:i]
	}
	return email
}
