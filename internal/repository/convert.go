package repository

import (
	"time"

	"github.com/dukerupert/billsync/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

func PgUUID(id uuid.UUID) pgtype.UUID {
	return pgtype.UUID{Bytes: id, Valid: true}
}

func UUIDFromPg(id pgtype.UUID) uuid.UUID {
	if !id.Valid {
		return uuid.Nil
	}
	return uuid.UUID(id.Bytes)
}

// PgText maps the empty string to NULL.
func PgText(s string) pgtype.Text {
	if s == "" {
		return pgtype.Text{Valid: false}
	}
	return pgtype.Text{String: s, Valid: true}
}

func StringFromPgText(t pgtype.Text) string {
	if !t.Valid {
		return ""
	}
	return t.String
}

func PgTimestamptz(t time.Time) pgtype.Timestamptz {
	return pgtype.Timestamptz{Time: t, Valid: true}
}

func (a Account) ToDomain() domain.Account {
	return domain.Account{
		ID:                     UUIDFromPg(a.ID),
		Email:                  a.Email,
		Name:                   a.Name,
		ProcessorCustomerID:    StringFromPgText(a.ProcessorCustomerID),
		DefaultPaymentMethodID: StringFromPgText(a.DefaultPaymentMethodID),
		CreatedAt:              a.CreatedAt.Time,
		UpdatedAt:              a.UpdatedAt.Time,
	}
}

func (p Payment) ToDomain() domain.PaymentRecord {
	return domain.PaymentRecord{
		ID:            p.ID,
		AccountID:     UUIDFromPg(p.AccountID),
		Amount:        p.Amount,
		Kind:          domain.PaymentKind(p.PaymentKind),
		Status:        domain.PaymentStatus(p.Status),
		TransactionID: p.TransactionID,
		CreatedAt:     p.CreatedAt.Time,
	}
}

func (s Subscription) ToDomain() domain.SubscriptionRecord {
	rec := domain.SubscriptionRecord{
		ID:                      s.ID,
		AccountID:               UUIDFromPg(s.AccountID),
		Amount:                  s.Amount,
		Status:                  domain.SubscriptionStatus(s.Status),
		PlanTier:                domain.PlanTier(s.PlanTier),
		ProcessorSubscriptionID: s.ProcessorSubscriptionID,
		ProcessorPriceID:        StringFromPgText(s.ProcessorPriceID),
		StartDate:               s.StartDate.Time,
		NextBillingDate:         s.NextBillingDate.Time,
		CreatedAt:               s.CreatedAt.Time,
		UpdatedAt:               s.UpdatedAt.Time,
	}
	if s.CancelledAt.Valid {
		t := s.CancelledAt.Time
		rec.CancelledAt = &t
	}
	return rec
}
