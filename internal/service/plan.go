package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/dukerupert/billsync/internal/billing"
	"github.com/dukerupert/billsync/internal/domain"
	"github.com/dukerupert/billsync/internal/telemetry"
)

// Metadata keys written on checkout sessions and subscriptions. The legacy
// aliases are still read so older sessions resolve.
const (
	MetadataAccountID        = "account_id"
	MetadataPaymentKind      = "payment_kind"
	MetadataPaymentKindAlias = "payment_type"
	MetadataPlanTier         = "plan_tier"
	MetadataPlanTierAlias    = "plan_type"
)

const checkoutSearchLimit = 10

// StepName identifies one plan resolution step.
type StepName string

const (
	StepMetadata        StepName = "metadata"
	StepCheckoutSession StepName = "checkout_session"
	StepPriceTable      StepName = "price_table"
	StepFallback        StepName = "fallback"
)

// StepStatus is what a resolution step observed.
type StepStatus string

const (
	StepResolved     StepStatus = "resolved"
	StepSkipped      StepStatus = "skipped"
	StepMiss         StepStatus = "miss"
	StepLookupFailed StepStatus = "lookup_failed"
)

// StepResult records one step of the chain. Err is set only for
// StepLookupFailed.
type StepResult struct {
	Step   StepName
	Status StepStatus
	Tier   domain.PlanTier
	Err    error
}

// Resolution is the outcome of the chain. Tier is PlanTierUnknown when no
// step resolved.
type Resolution struct {
	Tier  domain.PlanTier
	Steps []StepResult
}

func (r Resolution) Resolved() bool {
	return r.Tier != domain.PlanTierUnknown
}

// PlanQuery carries everything the chain may consult.
type PlanQuery struct {
	Metadata       map[string]string
	PriceID        string
	SubscriptionID string
	CustomerID     string
}

// PlanResolver infers a subscription's plan tier. The first step to produce
// a tier wins; lookup failures never abort the chain.
type PlanResolver struct {
	provider      billing.Provider
	prices        map[string]domain.PlanTier
	lookupTimeout time.Duration
	logger        *slog.Logger
	metrics       *telemetry.BillingMetrics
}

// NewPlanResolver creates a resolver. prices maps processor price ids to
// tiers by exact match.
func NewPlanResolver(
	provider billing.Provider,
	prices map[string]domain.PlanTier,
	lookupTimeout time.Duration,
	logger *slog.Logger,
	metrics *telemetry.BillingMetrics,
) *PlanResolver {
	if logger == nil {
		logger = slog.Default()
	}
	if lookupTimeout == 0 {
		lookupTimeout = 5 * time.Second
	}
	return &PlanResolver{
		provider:      provider,
		prices:        prices,
		lookupTimeout: lookupTimeout,
		logger:        logger.With("component", "plan_resolver"),
		metrics:       metrics,
	}
}

// Resolve runs the chain. It never returns an error.
func (r *PlanResolver) Resolve(ctx context.Context, q PlanQuery) Resolution {
	var res Resolution

	steps := []func(context.Context, PlanQuery) StepResult{
		r.fromMetadata,
		r.fromCheckoutSession,
		r.fromPriceTable,
	}
	for _, step := range steps {
		sr := step(ctx, q)
		res.Steps = append(res.Steps, sr)
		if sr.Status == StepResolved {
			res.Tier = sr.Tier
			r.metrics.PlanResolvedInc(string(sr.Step))
			return res
		}
	}

	res.Tier = domain.PlanTierUnknown
	res.Steps = append(res.Steps, StepResult{Step: StepFallback, Status: StepResolved, Tier: domain.PlanTierUnknown})
	r.metrics.PlanResolvedInc(string(StepFallback))
	r.metrics.PlanResolutionFailureInc()
	r.logger.Warn("plan tier unresolved, using unknown",
		"subscription_id", q.SubscriptionID,
		"customer_id", q.CustomerID,
		"price_id", q.PriceID,
		"steps", stepSummary(res.Steps),
	)
	return res
}

func (r *PlanResolver) fromMetadata(_ context.Context, q PlanQuery) StepResult {
	if len(q.Metadata) == 0 {
		return StepResult{Step: StepMetadata, Status: StepSkipped}
	}
	if tier, ok := metadataTier(q.Metadata); ok {
		return StepResult{Step: StepMetadata, Status: StepResolved, Tier: tier}
	}
	return StepResult{Step: StepMetadata, Status: StepMiss}
}

func (r *PlanResolver) fromCheckoutSession(ctx context.Context, q PlanQuery) StepResult {
	if q.CustomerID == "" || q.SubscriptionID == "" || r.provider == nil {
		return StepResult{Step: StepCheckoutSession, Status: StepSkipped}
	}

	lookupCtx, cancel := context.WithTimeout(ctx, r.lookupTimeout)
	defer cancel()

	sessions, err := r.provider.ListCheckoutSessions(lookupCtx, q.CustomerID, checkoutSearchLimit)
	if err != nil {
		r.logger.Warn("checkout session search failed",
			"customer_id", q.CustomerID,
			"subscription_id", q.SubscriptionID,
			"error", err,
		)
		return StepResult{Step: StepCheckoutSession, Status: StepLookupFailed, Err: err}
	}

	for _, sess := range sessions {
		if sess.SubscriptionID != q.SubscriptionID {
			continue
		}
		if tier, ok := metadataTier(sess.Metadata); ok {
			return StepResult{Step: StepCheckoutSession, Status: StepResolved, Tier: tier}
		}
	}
	return StepResult{Step: StepCheckoutSession, Status: StepMiss}
}

func (r *PlanResolver) fromPriceTable(_ context.Context, q PlanQuery) StepResult {
	if q.PriceID == "" {
		return StepResult{Step: StepPriceTable, Status: StepSkipped}
	}
	if tier, ok := r.prices[q.PriceID]; ok {
		return StepResult{Step: StepPriceTable, Status: StepResolved, Tier: tier}
	}
	return StepResult{Step: StepPriceTable, Status: StepMiss}
}

func metadataTier(md map[string]string) (domain.PlanTier, bool) {
	if tier, ok := domain.ParsePlanTier(md[MetadataPlanTier]); ok {
		return tier, true
	}
	return domain.ParsePlanTier(md[MetadataPlanTierAlias])
}

func stepSummary(steps []StepResult) []string {
	out := make([]string, 0, len(steps))
	for _, s := range steps {
		out = append(out, string(s.Step)+"="+string(s.Status))
	}
	return out
}
