// Package checkout serves the customer-facing checkout endpoints: session
// creation, the two return pages the processor redirects to, the account
// dashboard and the publishable configuration.
package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/dukerupert/billsync/internal/billing"
	"github.com/dukerupert/billsync/internal/domain"
	"github.com/dukerupert/billsync/internal/handler"
	"github.com/dukerupert/billsync/internal/middleware"
	"github.com/dukerupert/billsync/internal/notify"
	"github.com/dukerupert/billsync/internal/service"
	"github.com/go-playground/validator/v10"
)

const maxRequestBytes = 64 << 10

// Sessions creates checkout sessions and answers the subscription return page.
type Sessions interface {
	CreateSession(ctx context.Context, req service.CreateCheckoutRequest) (*billing.CheckoutSession, error)
	SubscriptionStatus(ctx context.Context, sessionID string) (string, error)
	OneTimePrice(ctx context.Context) *service.PriceDisplay
}

// RedirectRecorder records a one-time payment from the customer redirect.
type RedirectRecorder interface {
	RecordRedirect(ctx context.Context, sessionID string) (domain.Outcome, *service.CheckoutFact, error)
}

// Dashboards reads an account's billing history.
type Dashboards interface {
	Dashboard(ctx context.Context, email string) (*service.Dashboard, error)
}

// CreateSessionRequest is the body of POST /create-checkout-session.
type CreateSessionRequest struct {
	Email    string `json:"email" validate:"required,email,max=200"`
	Name     string `json:"name" validate:"max=150"`
	Mode     string `json:"mode" validate:"required,oneof=payment subscription"`
	PlanTier string `json:"plan_tier" validate:"omitempty,oneof=basic fancy"`
}

// ConfigResponse is returned by GET /config.
type ConfigResponse struct {
	PublishableKey string                `json:"publishableKey"`
	OneTimePrice   *service.PriceDisplay `json:"oneTimePrice,omitempty"`
}

// Handler serves the checkout endpoints.
type Handler struct {
	sessions       Sessions
	payments       RedirectRecorder
	dashboards     Dashboards
	publisher      notify.Publisher
	publishableKey string
	validate       *validator.Validate
	logger         *slog.Logger
}

// NewHandler creates a checkout handler. A nil publisher disables
// notifications from the redirect path.
func NewHandler(
	sessions Sessions,
	payments RedirectRecorder,
	dashboards Dashboards,
	publisher notify.Publisher,
	publishableKey string,
	logger *slog.Logger,
) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	if publisher == nil {
		publisher = notify.Nop{}
	}

	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	return &Handler{
		sessions:       sessions,
		payments:       payments,
		dashboards:     dashboards,
		publisher:      publisher,
		publishableKey: publishableKey,
		validate:       v,
		logger:         logger.With("handler", "checkout"),
	}
}

// HandleCreateSession handles POST /create-checkout-session.
// Accepts JSON or form-encoded input and returns the embedded checkout
// client secret.
func (h *Handler) HandleCreateSession(w http.ResponseWriter, r *http.Request) {
	const op = "checkout.create"

	req, err := decodeCreateRequest(w, r)
	if err != nil {
		handler.JSONErrorResponse(w, r, domain.WrapError(err, domain.EINVALID, op, "malformed request body"))
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	req.Name = strings.TrimSpace(req.Name)

	if err := h.validate.Struct(req); err != nil {
		handler.ValidationErrorResponse(w, r, validationError(op, err))
		return
	}

	sess, err := h.sessions.CreateSession(r.Context(), service.CreateCheckoutRequest{
		Email:    req.Email,
		Name:     req.Name,
		Mode:     req.Mode,
		PlanTier: req.PlanTier,
	})
	if err != nil {
		middleware.GetLogger(r.Context(), h.logger).Error("failed to create checkout session", "mode", req.Mode, "error", err)
		handler.JSONErrorResponse(w, r, err)
		return
	}

	handler.WriteJSON(w, http.StatusOK, map[string]string{"clientSecret": sess.ClientSecret})
}

// HandlePaymentSuccess handles GET /payment/success.
//
// The customer always sees the completed message once a session id is
// present; recording failures are logged and left to the webhook.
func (h *Handler) HandlePaymentSuccess(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session_id")
	if sessionID == "" {
		handler.JSONErrorResponse(w, r, service.ErrMissingSessionID)
		return
	}

	logger := middleware.GetLogger(r.Context(), h.logger).With("session_id", sessionID)
	outcome, fact, err := h.payments.RecordRedirect(r.Context(), sessionID)
	switch {
	case err != nil:
		logger.Error("redirect payment recording failed", "error", err, "op", domain.ErrorOp(err))
	case outcome == domain.OutcomeProcessed && fact != nil:
		h.publish(r.Context(), logger, notify.Change{
			Subject:    notify.SubjectPaymentRecorded,
			AccountID:  fact.Metadata[service.MetadataAccountID],
			ObjectID:   fact.SessionID,
			Status:     string(domain.PaymentStatusCompleted),
			OccurredAt: time.Now().UTC(),
		})
	default:
		logger.Debug("redirect payment not recorded", "outcome", outcome)
	}

	handler.WriteJSON(w, http.StatusOK, map[string]string{"status": "completed"})
}

// HandleSubscriptionSuccess handles GET /subscription/success.
func (h *Handler) HandleSubscriptionSuccess(w http.ResponseWriter, r *http.Request) {
	status, err := h.sessions.SubscriptionStatus(r.Context(), r.URL.Query().Get("session_id"))
	if err != nil {
		handler.JSONErrorResponse(w, r, err)
		return
	}
	handler.WriteJSON(w, http.StatusOK, map[string]string{"status": status})
}

// HandleDashboard handles GET /dashboard?email=.
func (h *Handler) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	email := strings.TrimSpace(r.URL.Query().Get("email"))
	if err := h.validate.Var(email, "required,email"); err != nil {
		handler.ValidationErrorResponse(w, r, domain.NewValidationError("account.dashboard", "email", "must be a valid email"))
		return
	}

	dash, err := h.dashboards.Dashboard(r.Context(), email)
	if err != nil {
		handler.JSONErrorResponse(w, r, err)
		return
	}
	handler.WriteJSON(w, http.StatusOK, dash)
}

// HandleConfig handles GET /config.
func (h *Handler) HandleConfig(w http.ResponseWriter, r *http.Request) {
	handler.WriteJSON(w, http.StatusOK, ConfigResponse{
		PublishableKey: h.publishableKey,
		OneTimePrice:   h.sessions.OneTimePrice(r.Context()),
	})
}

func (h *Handler) publish(ctx context.Context, logger *slog.Logger, change notify.Change) {
	if err := h.publisher.Publish(ctx, change); err != nil {
		logger.Warn("failed to publish change notification", "subject", change.Subject, "error", err)
	}
}

func decodeCreateRequest(w http.ResponseWriter, r *http.Request) (CreateSessionRequest, error) {
	var req CreateSessionRequest
	if strings.Contains(r.Header.Get("Content-Type"), "application/json") {
		err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes)).Decode(&req)
		return req, err
	}

	if err := r.ParseForm(); err != nil {
		return req, err
	}
	req.Email = r.PostFormValue("email")
	req.Name = r.PostFormValue("name")
	req.Mode = r.PostFormValue("mode")
	req.PlanTier = r.PostFormValue("plan_tier")
	return req, nil
}

// validationError converts validator failures into field-level messages.
func validationError(op string, err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return domain.Invalid(op, "invalid request")
	}

	var out error
	for _, fe := range verrs {
		msg := fieldMessage(fe)
		if out == nil {
			out = domain.NewValidationError(op, fe.Field(), msg)
			continue
		}
		out = domain.AddFieldError(out, fe.Field(), msg)
	}
	return out
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email"
	case "oneof":
		return "must be one of: " + fe.Param()
	case "max":
		return "must be at most " + fe.Param() + " characters"
	default:
		return "is invalid"
	}
}
