package payments

import (
	"context"
	"errors"
	"strings"

	"github.com/fixhub/fixhub-backend/apperrors"
	"github.com/fixhub/fixhub-backend/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// RefundService handles administrator-initiated refunds. Refunds are
// eventually consistent: the provider call is synchronous, but the payment
// stays paid until the refund webhook completes the transition.
type RefundService struct {
	registry *Registry
	payments PaymentStore
	logger   *zap.Logger
}

func NewRefundService(registry *Registry, payments PaymentStore, logger *zap.Logger) *RefundService {
	return &RefundService{
		registry: registry,
		payments: payments,
		logger:   logger,
	}
}

// InitiateRefund validates the payment, records the refund request, and asks
// the provider to process it. Unlike the webhook path, errors propagate to
// the caller: there is an administrator on the other end who can retry.
func (s *RefundService) InitiateRefund(ctx context.Context, paymentID, adminID uuid.UUID, reason string, amount *int64) (*models.RefundRequest, error) {
	if len(strings.TrimSpace(reason)) < 3 {
		return nil, apperrors.New(apperrors.ErrValidation.Code, "Refund reason must be at least 3 characters", nil)
	}

	payment, err := s.payments.FindByID(ctx, paymentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if payment.Status != models.PaymentPaid {
		return nil, apperrors.ErrPaymentNotRefundable
	}

	refundable := payment.Amount - payment.RefundedAmount
	refundAmount := refundable
	if amount != nil {
		refundAmount = *amount
	}
	if refundAmount <= 0 || refundAmount > refundable {
		return nil, apperrors.New(apperrors.ErrValidation.Code, "Refund amount exceeds the refundable balance", nil)
	}

	provider, err := s.registry.Get(ProviderID(payment.Provider))
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrProviderUnavailable, err)
	}

	if err := provider.Refund(ctx, payment.Reference, refundAmount); err != nil {
		s.logger.Error("Provider refund call failed",
			zap.String("payment_id", payment.ID.String()),
			zap.String("provider", payment.Provider),
			zap.Error(err),
		)
		return nil, apperrors.Wrap(apperrors.ErrProviderUnavailable, err)
	}

	req := &models.RefundRequest{
		PaymentID: payment.ID,
		AdminID:   adminID,
		Amount:    refundAmount,
		Reason:    strings.TrimSpace(reason),
		Status:    "pending",
	}
	if err := s.payments.CreateRefundRequest(ctx, req); err != nil {
		// The provider accepted the refund; losing the audit row is a
		// reportable inconsistency, not a reason to fail the request.
		s.logger.Error("Failed to record refund request",
			zap.String("payment_id", payment.ID.String()),
			zap.Error(err),
		)
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	s.logger.Info("Refund initiated, awaiting provider confirmation",
		zap.String("payment_id", payment.ID.String()),
		zap.String("refund_request_id", req.ID.String()),
		zap.Int64("amount", refundAmount),
	)
	return req, nil
}
