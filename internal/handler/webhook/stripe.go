package webhook

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/dukerupert/billsync/internal/domain"
	"github.com/dukerupert/billsync/internal/event"
	"github.com/dukerupert/billsync/internal/handler"
	"github.com/dukerupert/billsync/internal/reconcile"
)

// MaxBodyBytes caps webhook payloads. Stripe events are well under this.
const MaxBodyBytes = 1 << 20

// Verifier authenticates and decodes a raw delivery.
type Verifier interface {
	Verify(payload []byte, signatureHeader string) (*event.Verified, error)
}

// Dispatcher applies a verified event.
type Dispatcher interface {
	Dispatch(ctx context.Context, evt *event.Verified) reconcile.Result
}

// StripeHandler handles Stripe webhook events
type StripeHandler struct {
	verifier   Verifier
	dispatcher Dispatcher
	logger     *slog.Logger
}

// NewStripeHandler creates a new Stripe webhook handler
func NewStripeHandler(verifier Verifier, dispatcher Dispatcher, logger *slog.Logger) *StripeHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &StripeHandler{
		verifier:   verifier,
		dispatcher: dispatcher,
		logger:     logger.With("handler", "stripe_webhook"),
	}
}

// HandleWebhook processes incoming Stripe webhook events.
//
// The body is read raw and verified before anything parses it. Handled and
// no-op events return 200 so Stripe stops retrying; handler failures return
// 500 so it redelivers.
//
// Stripe CLI testing:
//
//	stripe listen --forward-to localhost:3000/webhook
//	stripe trigger checkout.session.completed
func (h *StripeHandler) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.logger.Warn("webhook payload too large", "limit", tooLarge.Limit)
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		h.logger.Warn("failed to read webhook payload", "error", err)
		writeError(w, http.StatusBadRequest, "error reading request body")
		return
	}

	evt, err := h.verifier.Verify(payload, r.Header.Get("Stripe-Signature"))
	if err != nil {
		if errors.Is(err, event.ErrSecretNotConfigured) {
			h.logger.Error("webhook secret not configured, rejecting delivery")
			writeError(w, http.StatusInternalServerError, "webhook secret not configured")
			return
		}
		h.logger.Warn("webhook verification failed", "error", err, "payload_bytes", len(payload))
		writeError(w, http.StatusBadRequest, domain.ErrorMessage(err))
		return
	}

	// The event is processed to completion even if Stripe hangs up.
	ctx := context.WithoutCancel(r.Context())
	res := h.dispatcher.Dispatch(ctx, evt)
	if res.Failed() {
		writeError(w, http.StatusInternalServerError, failureMessage(res.Err))
		return
	}

	handler.WriteJSON(w, http.StatusOK, map[string]string{"status": "success"})
}

func failureMessage(err error) string {
	if err == nil {
		return "event handling failed"
	}
	return domain.ErrorMessage(err)
}

func writeError(w http.ResponseWriter, status int, message string) {
	handler.WriteJSON(w, status, map[string]string{"error": message})
}
