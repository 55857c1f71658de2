package service

import (
	"context"
	"log/slog"

	"github.com/dukerupert/billsync/internal/domain"
	"github.com/dukerupert/billsync/internal/repository"
	"github.com/google/uuid"
)

// CommittedKeys remembers dedup keys whose rows are known to be committed.
// It is an optimisation only; the store's unique constraint is authoritative.
type CommittedKeys interface {
	Contains(ctx context.Context, key string) (bool, error)
	Add(ctx context.Context, key string) error
}

// DedupKey identifies one real-world payment.
type DedupKey struct {
	TransactionID string
	AccountID     uuid.UUID
	Kind          domain.PaymentKind
}

func (k DedupKey) String() string {
	return "payment:" + k.TransactionID
}

// Reservation is the advisory result of Reserve.
type Reservation struct {
	AlreadyExists bool
}

// CommitOutcome is the result of Commit.
type CommitOutcome string

const (
	OutcomeCreated       CommitOutcome = "created"
	OutcomeAlreadyExists CommitOutcome = "already_exists"
)

// Guard serialises payment recording on the transaction id unique constraint.
type Guard struct {
	repo   repository.Querier
	keys   CommittedKeys
	logger *slog.Logger
}

// NewGuard creates a Guard. keys may be nil.
func NewGuard(repo repository.Querier, keys CommittedKeys, logger *slog.Logger) *Guard {
	if logger == nil {
		logger = slog.Default()
	}
	return &Guard{
		repo:   repo,
		keys:   keys,
		logger: logger.With("component", "idempotency"),
	}
}

// Reserve reports whether a payment for key is already recorded. A negative
// answer is not a lock: Commit still resolves concurrent writers.
func (g *Guard) Reserve(ctx context.Context, key DedupKey) (Reservation, error) {
	if g.keys != nil {
		seen, err := g.keys.Contains(ctx, key.String())
		if err != nil {
			g.logger.Warn("committed-key cache unavailable", "key", key.String(), "error", err)
		} else if seen {
			return Reservation{AlreadyExists: true}, nil
		}
	}

	_, err := g.repo.GetPaymentByTransactionID(ctx, key.TransactionID)
	switch {
	case err == nil:
		return Reservation{AlreadyExists: true}, nil
	case repository.IsNotFound(err):
		return Reservation{}, nil
	default:
		return Reservation{}, domain.Internal(err, "idempotency.reserve", "failed to check payment")
	}
}

// Commit runs insert. A unique violation on the transaction id means another
// writer won and is reported as OutcomeAlreadyExists, not as an error.
func (g *Guard) Commit(ctx context.Context, key DedupKey, insert func(ctx context.Context) error) (CommitOutcome, error) {
	if err := insert(ctx); err != nil {
		if repository.IsUniqueViolationOn(err, repository.ConstraintPaymentTransaction) {
			g.logger.Info("payment already recorded by concurrent writer", "transaction_id", key.TransactionID)
			return OutcomeAlreadyExists, nil
		}
		return "", domain.Internal(err, "idempotency.commit", "failed to record payment")
	}

	if g.keys != nil {
		if err := g.keys.Add(ctx, key.String()); err != nil {
			g.logger.Warn("failed to cache committed key", "key", key.String(), "error", err)
		}
	}
	return OutcomeCreated, nil
}
