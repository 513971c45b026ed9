package payments

import (
	"context"
	"errors"
	"time"

	"github.com/fixhub/fixhub-backend/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// PaymentStore is the persistence surface the reconciler needs: a point
// lookup plus the atomic conditional status update.
type PaymentStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Payment, error)
	FindByProviderReference(ctx context.Context, provider, reference string) (*models.Payment, error)
	TransitionStatus(ctx context.Context, id uuid.UUID, from, to string, updates map[string]interface{}) (bool, error)
	CreateRefundRequest(ctx context.Context, req *models.RefundRequest) error
}

// WorkOrderUpdater syncs payment-related fields on a linked work order.
type WorkOrderUpdater interface {
	SetPaymentStatus(ctx context.Context, id uuid.UUID, paymentStatus string) error
}

// EventPublisher emits payment events downstream. May be a no-op.
type EventPublisher interface {
	Publish(ctx context.Context, event models.PaymentEvent) error
}

// Reconciler drives a payment through its state machine from verified
// provider webhooks. It never returns an error to the HTTP boundary: every
// failure path ends in a structured log entry, and webhook endpoints always
// acknowledge receipt.
type Reconciler struct {
	registry   *Registry
	payments   PaymentStore
	workOrders WorkOrderUpdater
	events     EventPublisher
	logger     *zap.Logger
}

func NewReconciler(registry *Registry, payments PaymentStore, workOrders WorkOrderUpdater, events EventPublisher, logger *zap.Logger) *Reconciler {
	return &Reconciler{
		registry:   registry,
		payments:   payments,
		workOrders: workOrders,
		events:     events,
		logger:     logger,
	}
}

// HandleWebhook processes one delivery from a provider. At-least-once
// delivery and concurrent duplicates are expected; the conditional update in
// the store makes re-application a no-op.
func (r *Reconciler) HandleWebhook(ctx context.Context, providerID ProviderID, rawBody []byte, signature string) {
	provider, err := r.registry.Get(providerID)
	if err != nil {
		r.logger.Warn("Webhook for unconfigured provider",
			zap.String("provider", string(providerID)),
		)
		return
	}

	if !provider.VerifySignature(rawBody, signature) {
		r.logger.Warn("Webhook signature verification failed",
			zap.String("error_kind", "signature_invalid"),
			zap.String("provider", string(providerID)),
		)
		return
	}

	event, err := provider.Normalize(rawBody)
	if err != nil {
		r.logger.Warn("Webhook payload could not be parsed",
			zap.String("error_kind", "malformed_payload"),
			zap.String("provider", string(providerID)),
			zap.Error(err),
		)
		return
	}

	if event.Kind == EventUnknown {
		r.logger.Info("Ignoring unrecognized provider event",
			zap.String("provider", string(providerID)),
			zap.Any("metadata", event.Metadata),
		)
		return
	}
	if event.Reference == "" {
		r.logger.Warn("Webhook event carries no reference",
			zap.String("error_kind", "malformed_payload"),
			zap.String("provider", string(providerID)),
		)
		return
	}

	r.Apply(ctx, providerID, event, rawBody)
}

// Apply runs a normalized event through the state machine and persists the
// result. It is shared by the webhook path and the synchronous verify path.
func (r *Reconciler) Apply(ctx context.Context, providerID ProviderID, event NormalizedEvent, rawBody []byte) {
	payment, err := r.payments.FindByProviderReference(ctx, string(providerID), event.Reference)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			r.logger.Warn("Webhook references unknown payment",
				zap.String("error_kind", "unknown_reference"),
				zap.String("provider", string(providerID)),
				zap.String("reference", event.Reference),
			)
			return
		}
		r.logger.Error("Payment lookup failed",
			zap.String("error_kind", "persistence_failure"),
			zap.String("provider", string(providerID)),
			zap.String("reference", event.Reference),
			zap.Error(err),
		)
		return
	}

	next, outcome := NextStatus(payment.Status, event.Kind)
	switch outcome {
	case OutcomeDuplicate:
		r.logger.Info("Duplicate webhook delivery; no-op",
			zap.String("payment_id", payment.ID.String()),
			zap.String("status", payment.Status),
			zap.String("event", string(event.Kind)),
		)
		return
	case OutcomeInvalid:
		r.logger.Warn("Event has no valid transition from current status",
			zap.String("error_kind", "invalid_transition"),
			zap.String("payment_id", payment.ID.String()),
			zap.String("status", payment.Status),
			zap.String("event", string(event.Kind)),
		)
		return
	}

	if event.Amount != nil && *event.Amount != payment.Amount && event.Kind == EventChargeSuccess {
		// Amount is immutable after creation; a mismatch is reconciled
		// manually, the transition still applies for the recorded amount.
		r.logger.Warn("Webhook amount differs from recorded payment amount",
			zap.String("payment_id", payment.ID.String()),
			zap.Int64("recorded", payment.Amount),
			zap.Int64("reported", *event.Amount),
		)
	}

	now := time.Now()
	updates := map[string]interface{}{}
	if len(rawBody) > 0 {
		payload := string(rawBody)
		updates["provider_payload"] = &payload
	}
	switch next {
	case models.PaymentPaid:
		updates["paid_at"] = &now
	case models.PaymentFailed:
		updates["failed_at"] = &now
	case models.PaymentRefunded:
		updates["refunded_at"] = &now
		updates["refunded_amount"] = refundedAmount(payment, event)
	}

	applied, err := r.payments.TransitionStatus(ctx, payment.ID, payment.Status, next, updates)
	if err != nil {
		r.logger.Error("Failed to persist payment transition",
			zap.String("error_kind", "persistence_failure"),
			zap.String("payment_id", payment.ID.String()),
			zap.Error(err),
		)
		return
	}
	if !applied {
		// A concurrent delivery won the conditional update.
		r.logger.Info("Transition already applied by concurrent delivery",
			zap.String("payment_id", payment.ID.String()),
			zap.String("event", string(event.Kind)),
		)
		return
	}

	r.logger.Info("Payment transitioned",
		zap.String("payment_id", payment.ID.String()),
		zap.String("from", payment.Status),
		zap.String("to", next),
		zap.String("provider", string(providerID)),
	)

	r.syncWorkOrder(ctx, payment, next)
	r.publishEvent(ctx, payment, next, now)
}

func (r *Reconciler) syncWorkOrder(ctx context.Context, payment *models.Payment, status string) {
	if payment.WorkOrderID == nil {
		return
	}

	var paymentStatus string
	switch status {
	case models.PaymentPaid:
		paymentStatus = models.WorkOrderPaid
	case models.PaymentRefunded:
		paymentStatus = models.WorkOrderRefundAdjusted
	default:
		return
	}

	if err := r.workOrders.SetPaymentStatus(ctx, *payment.WorkOrderID, paymentStatus); err != nil {
		r.logger.Error("Failed to sync work order payment status",
			zap.String("error_kind", "persistence_failure"),
			zap.String("payment_id", payment.ID.String()),
			zap.String("work_order_id", payment.WorkOrderID.String()),
			zap.Error(err),
		)
	}
}

func (r *Reconciler) publishEvent(ctx context.Context, payment *models.Payment, status string, at time.Time) {
	if r.events == nil {
		return
	}

	event := models.PaymentEvent{
		Type:      "payment_" + status,
		PaymentID: payment.ID.String(),
		UserID:    payment.UserID.String(),
		Provider:  payment.Provider,
		Reference: payment.Reference,
		Amount:    payment.Amount,
		Currency:  payment.Currency,
		Timestamp: at.UTC(),
	}
	if payment.WorkOrderID != nil {
		event.WorkOrderID = payment.WorkOrderID.String()
	}

	if err := r.events.Publish(ctx, event); err != nil {
		r.logger.Error("Failed to publish payment event",
			zap.String("payment_id", payment.ID.String()),
			zap.String("event_type", event.Type),
			zap.Error(err),
		)
	}
}

func refundedAmount(payment *models.Payment, event NormalizedEvent) int64 {
	if event.Amount != nil {
		return *event.Amount
	}
	return payment.Amount
}
