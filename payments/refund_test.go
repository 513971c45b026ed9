package payments

import (
	"context"
	"errors"
	"testing"

	"github.com/fixhub/fixhub-backend/apperrors"
	"github.com/fixhub/fixhub-backend/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// stubProvider satisfies Provider for tests that only exercise Refund.
type stubProvider struct {
	id        ProviderID
	refundErr error
	refunded  []int64
}

func (s *stubProvider) ID() ProviderID                               { return s.id }
func (s *stubProvider) SignatureHeader() string                      { return "x-test-signature" }
func (s *stubProvider) VerifySignature(body []byte, sig string) bool { return true }
func (s *stubProvider) Normalize(body []byte) (NormalizedEvent, error) {
	return NormalizedEvent{Kind: EventUnknown}, nil
}
func (s *stubProvider) InitializeTransaction(ctx context.Context, req InitializeRequest) (*InitializeResponse, error) {
	return &InitializeResponse{Reference: req.Reference}, nil
}
func (s *stubProvider) VerifyTransaction(ctx context.Context, reference string) (NormalizedEvent, error) {
	return NormalizedEvent{Kind: EventUnknown, Reference: reference}, nil
}
func (s *stubProvider) Refund(ctx context.Context, reference string, amount int64) error {
	if s.refundErr != nil {
		return s.refundErr
	}
	s.refunded = append(s.refunded, amount)
	return nil
}

func newRefundFixture(provider *stubProvider) (*RefundService, *MockPaymentStore) {
	registry := NewRegistry()
	registry.Register(provider)
	store := new(MockPaymentStore)
	return NewRefundService(registry, store, zap.NewNop()), store
}

func paidPayment() *models.Payment {
	return &models.Payment{
		ID:        uuid.New(),
		Reference: "fxh-9",
		Provider:  string(ProviderPaystack),
		UserID:    uuid.New(),
		Amount:    500000,
		Currency:  "NGN",
		Status:    models.PaymentPaid,
	}
}

func TestInitiateRefund(t *testing.T) {
	ctx := context.Background()
	adminID := uuid.New()

	t.Run("Success", func(t *testing.T) {
		provider := &stubProvider{id: ProviderPaystack}
		service, store := newRefundFixture(provider)
		payment := paidPayment()

		store.On("FindByID", ctx, payment.ID).Return(payment, nil).Once()
		store.On("CreateRefundRequest", ctx, mock.MatchedBy(func(req *models.RefundRequest) bool {
			return req.PaymentID == payment.ID && req.Amount == 500000 && req.Status == "pending"
		})).Return(nil).Once()

		req, err := service.InitiateRefund(ctx, payment.ID, adminID, "customer returned device", nil)

		require.NoError(t, err)
		assert.Equal(t, int64(500000), req.Amount)
		assert.Equal(t, []int64{500000}, provider.refunded)
		store.AssertExpectations(t)
	})

	t.Run("Partial Amount", func(t *testing.T) {
		provider := &stubProvider{id: ProviderPaystack}
		service, store := newRefundFixture(provider)
		payment := paidPayment()
		amount := int64(100000)

		store.On("FindByID", ctx, payment.ID).Return(payment, nil).Once()
		store.On("CreateRefundRequest", ctx, mock.Anything).Return(nil).Once()

		req, err := service.InitiateRefund(ctx, payment.ID, adminID, "partial goodwill refund", &amount)

		require.NoError(t, err)
		assert.Equal(t, int64(100000), req.Amount)
	})

	t.Run("Reason Too Short", func(t *testing.T) {
		provider := &stubProvider{id: ProviderPaystack}
		service, store := newRefundFixture(provider)

		_, err := service.InitiateRefund(ctx, uuid.New(), adminID, "  x ", nil)

		assert.Error(t, err)
		store.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
	})

	t.Run("Payment Not Found", func(t *testing.T) {
		provider := &stubProvider{id: ProviderPaystack}
		service, store := newRefundFixture(provider)
		id := uuid.New()

		store.On("FindByID", ctx, id).Return(nil, gorm.ErrRecordNotFound).Once()

		_, err := service.InitiateRefund(ctx, id, adminID, "customer returned device", nil)

		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})

	t.Run("Not Refundable When Pending", func(t *testing.T) {
		provider := &stubProvider{id: ProviderPaystack}
		service, store := newRefundFixture(provider)
		payment := paidPayment()
		payment.Status = models.PaymentPending

		store.On("FindByID", ctx, payment.ID).Return(payment, nil).Once()

		_, err := service.InitiateRefund(ctx, payment.ID, adminID, "customer returned device", nil)

		assert.ErrorIs(t, err, apperrors.ErrPaymentNotRefundable)
		assert.Empty(t, provider.refunded)
	})

	t.Run("Not Refundable When Failed", func(t *testing.T) {
		provider := &stubProvider{id: ProviderPaystack}
		service, store := newRefundFixture(provider)
		payment := paidPayment()
		payment.Status = models.PaymentFailed

		store.On("FindByID", ctx, payment.ID).Return(payment, nil).Once()

		_, err := service.InitiateRefund(ctx, payment.ID, adminID, "customer returned device", nil)

		assert.ErrorIs(t, err, apperrors.ErrPaymentNotRefundable)
	})

	t.Run("Amount Exceeds Refundable Balance", func(t *testing.T) {
		provider := &stubProvider{id: ProviderPaystack}
		service, store := newRefundFixture(provider)
		payment := paidPayment()
		payment.RefundedAmount = 400000
		amount := int64(200000)

		store.On("FindByID", ctx, payment.ID).Return(payment, nil).Once()

		_, err := service.InitiateRefund(ctx, payment.ID, adminID, "customer returned device", &amount)

		assert.Error(t, err)
		assert.Empty(t, provider.refunded)
	})

	t.Run("Provider Failure Propagates", func(t *testing.T) {
		provider := &stubProvider{id: ProviderPaystack, refundErr: errors.New("gateway timeout")}
		service, store := newRefundFixture(provider)
		payment := paidPayment()

		store.On("FindByID", ctx, payment.ID).Return(payment, nil).Once()

		_, err := service.InitiateRefund(ctx, payment.ID, adminID, "customer returned device", nil)

		assert.ErrorIs(t, err, apperrors.ErrProviderUnavailable)
		store.AssertNotCalled(t, "CreateRefundRequest", mock.Anything, mock.Anything)
	})

	t.Run("Provider Not Configured", func(t *testing.T) {
		provider := &stubProvider{id: ProviderEtegram}
		service, store := newRefundFixture(provider)
		payment := paidPayment() // provider is paystack, registry only has etegram

		store.On("FindByID", ctx, payment.ID).Return(payment, nil).Once()

		_, err := service.InitiateRefund(ctx, payment.ID, adminID, "customer returned device", nil)

		assert.ErrorIs(t, err, apperrors.ErrProviderUnavailable)
	})
}
