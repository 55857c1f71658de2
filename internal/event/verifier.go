package event

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dukerupert/billsync/internal/billing"
	"github.com/dukerupert/billsync/internal/domain"
	"github.com/stripe/stripe-go/v83"
	"github.com/stripe/stripe-go/v83/webhook"
)

var (
	// ErrSecretNotConfigured means the verifier fails closed: no delivery is
	// accepted until a signing secret is configured.
	ErrSecretNotConfigured = domain.Errorf(domain.EINTERNAL, "event.verify", "webhook secret not configured")

	// ErrInvalidSignature covers a missing, malformed, expired or
	// mismatching Stripe-Signature header.
	ErrInvalidSignature = domain.Errorf(domain.EINVALID, "event.verify", "invalid signature")

	// ErrUndecodable means the body verified but is not a well-formed event.
	ErrUndecodable = domain.Errorf(domain.EINVALID, "event.verify", "event payload could not be decoded")
)

// Verifier authenticates webhook deliveries with the Stripe signature scheme.
type Verifier struct {
	secret    string
	tolerance time.Duration
	now       func() time.Time
}

// NewVerifier creates a verifier for the given signing secret. An empty
// secret is accepted here and rejected on every Verify call.
func NewVerifier(secret string) *Verifier {
	return &Verifier{
		secret:    secret,
		tolerance: webhook.DefaultTolerance,
		now:       time.Now,
	}
}

// Verify checks the signature over the raw body and decodes the event.
func (v *Verifier) Verify(payload []byte, signatureHeader string) (*Verified, error) {
	if v.secret == "" {
		return nil, ErrSecretNotConfigured
	}
	if signatureHeader == "" {
		return nil, ErrInvalidSignature
	}

	evt, err := webhook.ConstructEventWithOptions(payload, signatureHeader, v.secret, webhook.ConstructEventOptions{
		Tolerance:                v.tolerance,
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		if isSignatureError(err) {
			return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrUndecodable, err)
	}

	data, err := decode(evt)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s: %v", ErrUndecodable, evt.Type, evt.ID, err)
	}

	return &Verified{
		ID:         evt.ID,
		Type:       string(evt.Type),
		Created:    time.Unix(evt.Created, 0).UTC(),
		ReceivedAt: v.now().UTC(),
		Data:       data,
	}, nil
}

func isSignatureError(err error) bool {
	return errors.Is(err, webhook.ErrNotSigned) ||
		errors.Is(err, webhook.ErrInvalidHeader) ||
		errors.Is(err, webhook.ErrNoValidSignature) ||
		errors.Is(err, webhook.ErrTooOld)
}

func decode(evt stripe.Event) (Variant, error) {
	if evt.Data == nil {
		return nil, errors.New("missing data object")
	}
	raw := evt.Data.Raw

	switch evt.Type {
	case stripe.EventTypeCheckoutSessionCompleted:
		var sess stripe.CheckoutSession
		if err := json.Unmarshal(raw, &sess); err != nil {
			return nil, err
		}
		return CheckoutCompleted{Session: *billing.ToCheckoutSession(&sess)}, nil

	case stripe.EventTypeCustomerSubscriptionCreated:
		return decodeSubscription(raw, ChangeCreated)
	case stripe.EventTypeCustomerSubscriptionUpdated:
		return decodeSubscription(raw, ChangeUpdated)
	case stripe.EventTypeCustomerSubscriptionDeleted:
		return decodeSubscription(raw, ChangeDeleted)

	case stripe.EventTypeInvoicePaymentSucceeded:
		return decodeInvoice(raw, true)
	case stripe.EventTypeInvoicePaymentFailed:
		return decodeInvoice(raw, false)

	case stripe.EventTypeCustomerUpdated:
		var cus stripe.Customer
		if err := json.Unmarshal(raw, &cus); err != nil {
			return nil, err
		}
		return CustomerUpdated{CustomerID: cus.ID, Email: cus.Email, Name: cus.Name}, nil

	case stripe.EventTypePaymentMethodAttached:
		var pm stripe.PaymentMethod
		if err := json.Unmarshal(raw, &pm); err != nil {
			return nil, err
		}
		out := PaymentMethodAttached{PaymentMethodID: pm.ID}
		if pm.Customer != nil {
			out.CustomerID = pm.Customer.ID
		}
		return out, nil
	}

	return Unrecognized{}, nil
}

func decodeSubscription(raw json.RawMessage, change ChangeKind) (Variant, error) {
	var sub stripe.Subscription
	if err := json.Unmarshal(raw, &sub); err != nil {
		return nil, err
	}
	if sub.ID == "" {
		return nil, errors.New("subscription without id")
	}
	return SubscriptionChanged{Change: change, Subscription: *billing.ToSubscription(&sub)}, nil
}

func decodeInvoice(raw json.RawMessage, paid bool) (Variant, error) {
	var inv stripe.Invoice
	if err := json.Unmarshal(raw, &inv); err != nil {
		return nil, err
	}

	out := InvoiceSettled{
		InvoiceID:  inv.ID,
		Paid:       paid,
		AmountPaid: inv.AmountPaid,
	}
	if inv.Customer != nil {
		out.CustomerID = inv.Customer.ID
	}
	if inv.Parent != nil && inv.Parent.SubscriptionDetails != nil && inv.Parent.SubscriptionDetails.Subscription != nil {
		out.SubscriptionID = inv.Parent.SubscriptionDetails.Subscription.ID
	}
	if inv.Lines != nil && len(inv.Lines.Data) > 0 && inv.Lines.Data[0].Period != nil {
		out.LinePeriodEnd = inv.Lines.Data[0].Period.End
	}
	return out, nil
}
