// Package notify publishes billing change notifications for downstream
// consumers. Publishing is best effort: reconciliation never fails because a
// notification could not be sent.
package notify

import (
	"context"
	"time"
)

// Subjects.
const (
	SubjectPaymentRecorded     = "billing.payment.recorded"
	SubjectSubscriptionChanged = "billing.subscription.changed"
	SubjectAccountChanged      = "billing.account.changed"
)

// Change describes one committed state change.
type Change struct {
	Subject    string    `json:"-"`
	EventID    string    `json:"event_id,omitempty"`
	EventType  string    `json:"event_type,omitempty"`
	AccountID  string    `json:"account_id,omitempty"`
	ObjectID   string    `json:"object_id"`
	Status     string    `json:"status,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Publisher sends change notifications.
type Publisher interface {
	Publish(ctx context.Context, change Change) error
}

// Nop discards every notification.
type Nop struct{}

func (Nop) Publish(context.Context, Change) error { return nil }
