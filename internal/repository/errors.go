package repository

import (
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Unique constraint and index names from migrations/00001_billing.sql.
const (
	ConstraintAccountEmail            = "accounts_email_lower_key"
	ConstraintAccountCustomer         = "accounts_processor_customer_id_key"
	ConstraintPaymentTransaction      = "payments_transaction_id_key"
	ConstraintSubscriptionProcessorID = "subscriptions_processor_subscription_id_key"
	ConstraintOneActiveSubscription   = "one_active_subscription_per_account"
)

// SQLSTATE unique_violation.
const codeUniqueViolation = "23505"

// IsNotFound reports whether err means a :one query matched no row.
func IsNotFound(err error) bool {
	return errors.Is(err, pgx.ErrNoRows) || errors.Is(err, sql.ErrNoRows)
}

// UniqueViolation reports whether err is a unique constraint violation and,
// if so, which constraint was hit.
func UniqueViolation(err error) (string, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == codeUniqueViolation {
		return pgErr.ConstraintName, true
	}
	return "", false
}

// IsUniqueViolationOn reports whether err violated the named constraint.
func IsUniqueViolationOn(err error, constraint string) bool {
	name, ok := UniqueViolation(err)
	return ok && name == constraint
}

func uniqueViolationError(constraint string) error {
	return &pgconn.PgError{
		Severity:       "ERROR",
		Code:           codeUniqueViolation,
		Message:        "duplicate key value violates unique constraint \"" + constraint + "\"",
		ConstraintName: constraint,
	}
}
