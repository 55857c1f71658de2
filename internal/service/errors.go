package service

import (
	"github.com/dukerupert/billsync/internal/domain"
)

// Account errors
var (
	ErrAccountNotFound     = domain.Errorf(domain.ENOTFOUND, "", "Account not found")
	ErrAccountUnresolvable = domain.Errorf(domain.EINVALID, "", "Event carries no account, customer, or email")
)

// Subscription errors
var (
	ErrSubscriptionNotFound     = domain.Errorf(domain.ENOTFOUND, "", "Subscription not found")
	ErrActiveSubscriptionExists = domain.Errorf(domain.ECONFLICT, "", "Account already has an active subscription")
)

// Checkout errors
var (
	ErrMissingSessionID          = domain.Errorf(domain.EINVALID, "", "session_id is required")
	ErrUnknownCheckoutMode       = domain.Errorf(domain.EINVALID, "", "Mode must be payment or subscription")
	ErrUnknownPlanTier           = domain.Errorf(domain.EINVALID, "", "Plan tier must be basic or fancy")
	ErrOneTimePriceNotConfigured = domain.Errorf(domain.EINTERNAL, "", "One-time price is not configured")
	ErrPlanPriceNotConfigured    = domain.Errorf(domain.EINTERNAL, "", "Subscription price is not configured for this plan")
)
