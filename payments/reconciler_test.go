package payments

import (
	"context"
	"testing"

	"github.com/fixhub/fixhub-backend/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// --- Mocks for Dependencies ---

type MockPaymentStore struct{ mock.Mock }

func (m *MockPaymentStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Payment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Payment), args.Error(1)
}

func (m *MockPaymentStore) FindByProviderReference(ctx context.Context, provider, reference string) (*models.Payment, error) {
	args := m.Called(ctx, provider, reference)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Payment), args.Error(1)
}

func (m *MockPaymentStore) TransitionStatus(ctx context.Context, id uuid.UUID, from, to string, updates map[string]interface{}) (bool, error) {
	args := m.Called(ctx, id, from, to, updates)
	return args.Bool(0), args.Error(1)
}

func (m *MockPaymentStore) CreateRefundRequest(ctx context.Context, req *models.RefundRequest) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}

type MockWorkOrderUpdater struct{ mock.Mock }

func (m *MockWorkOrderUpdater) SetPaymentStatus(ctx context.Context, id uuid.UUID, paymentStatus string) error {
	args := m.Called(ctx, id, paymentStatus)
	return args.Error(0)
}

type MockEventPublisher struct{ mock.Mock }

func (m *MockEventPublisher) Publish(ctx context.Context, event models.PaymentEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

// --- Tests ---

func newTestReconciler(t *testing.T) (*Reconciler, *MockPaymentStore, *MockWorkOrderUpdater, *MockEventPublisher, *PaystackProvider) {
	t.Helper()

	store := new(MockPaymentStore)
	workOrders := new(MockWorkOrderUpdater)
	events := new(MockEventPublisher)

	provider := NewPaystackProvider("", "sk_test_abc", "whsec", false)
	registry := NewRegistry()
	registry.Register(provider)

	r := NewReconciler(registry, store, workOrders, events, zap.NewNop())
	return r, store, workOrders, events, provider
}

func pendingPayment(workOrder bool) *models.Payment {
	p := &models.Payment{
		ID:        uuid.New(),
		Reference: "fxh-1",
		Provider:  string(ProviderPaystack),
		UserID:    uuid.New(),
		Amount:    500000,
		Currency:  "NGN",
		Status:    models.PaymentPending,
	}
	if workOrder {
		id := uuid.New()
		p.WorkOrderID = &id
	}
	return p
}

func TestHandleWebhook_ChargeSuccess(t *testing.T) {
	r, store, workOrders, events, _ := newTestReconciler(t)
	ctx := context.Background()

	payment := pendingPayment(true)
	body := []byte(`{"event":"charge.success","data":{"reference":"fxh-1","amount":500000,"currency":"NGN"}}`)
	sig := signBody(t, "sha512", "whsec", body)

	store.On("FindByProviderReference", ctx, "paystack", "fxh-1").Return(payment, nil).Once()
	store.On("TransitionStatus", ctx, payment.ID, models.PaymentPending, models.PaymentPaid, mock.Anything).Return(true, nil).Once()
	workOrders.On("SetPaymentStatus", ctx, *payment.WorkOrderID, models.WorkOrderPaid).Return(nil).Once()
	events.On("Publish", ctx, mock.MatchedBy(func(e models.PaymentEvent) bool {
		return e.Type == "payment_paid" && e.PaymentID == payment.ID.String()
	})).Return(nil).Once()

	r.HandleWebhook(ctx, ProviderPaystack, body, sig)

	store.AssertExpectations(t)
	workOrders.AssertExpectations(t)
	events.AssertExpectations(t)
}

func TestHandleWebhook_InvalidSignature(t *testing.T) {
	r, store, workOrders, events, _ := newTestReconciler(t)
	ctx := context.Background()

	body := []byte(`{"event":"charge.success","data":{"reference":"fxh-1"}}`)

	r.HandleWebhook(ctx, ProviderPaystack, body, "deadbeef")

	// Nothing touches persistence when the signature does not verify.
	store.AssertNotCalled(t, "FindByProviderReference", mock.Anything, mock.Anything, mock.Anything)
	store.AssertNotCalled(t, "TransitionStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	workOrders.AssertNotCalled(t, "SetPaymentStatus", mock.Anything, mock.Anything, mock.Anything)
	events.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
}

func TestHandleWebhook_DuplicateDelivery(t *testing.T) {
	r, store, workOrders, events, _ := newTestReconciler(t)
	ctx := context.Background()

	payment := pendingPayment(false)
	payment.Status = models.PaymentPaid

	body := []byte(`{"event":"charge.success","data":{"reference":"fxh-1","amount":500000}}`)
	sig := signBody(t, "sha512", "whsec", body)

	store.On("FindByProviderReference", ctx, "paystack", "fxh-1").Return(payment, nil).Once()

	r.HandleWebhook(ctx, ProviderPaystack, body, sig)

	store.AssertExpectations(t)
	store.AssertNotCalled(t, "TransitionStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	workOrders.AssertNotCalled(t, "SetPaymentStatus", mock.Anything, mock.Anything, mock.Anything)
	events.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
}

func TestHandleWebhook_UnknownReference(t *testing.T) {
	r, store, _, _, _ := newTestReconciler(t)
	ctx := context.Background()

	body := []byte(`{"event":"charge.success","data":{"reference":"no-such-ref"}}`)
	sig := signBody(t, "sha512", "whsec", body)

	store.On("FindByProviderReference", ctx, "paystack", "no-such-ref").Return(nil, gorm.ErrRecordNotFound).Once()

	r.HandleWebhook(ctx, ProviderPaystack, body, sig)

	store.AssertExpectations(t)
	store.AssertNotCalled(t, "TransitionStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestHandleWebhook_InvalidTransition(t *testing.T) {
	r, store, _, events, _ := newTestReconciler(t)
	ctx := context.Background()

	payment := pendingPayment(false)
	payment.Status = models.PaymentFailed

	body := []byte(`{"event":"charge.success","data":{"reference":"fxh-1","amount":500000}}`)
	sig := signBody(t, "sha512", "whsec", body)

	store.On("FindByProviderReference", ctx, "paystack", "fxh-1").Return(payment, nil).Once()

	r.HandleWebhook(ctx, ProviderPaystack, body, sig)

	store.AssertExpectations(t)
	store.AssertNotCalled(t, "TransitionStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	events.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
}

func TestHandleWebhook_ConcurrentDeliveryLosesRace(t *testing.T) {
	r, store, workOrders, events, _ := newTestReconciler(t)
	ctx := context.Background()

	payment := pendingPayment(true)
	body := []byte(`{"event":"charge.success","data":{"reference":"fxh-1","amount":500000}}`)
	sig := signBody(t, "sha512", "whsec", body)

	store.On("FindByProviderReference", ctx, "paystack", "fxh-1").Return(payment, nil).Once()
	// A concurrent delivery already applied the transition.
	store.On("TransitionStatus", ctx, payment.ID, models.PaymentPending, models.PaymentPaid, mock.Anything).Return(false, nil).Once()

	r.HandleWebhook(ctx, ProviderPaystack, body, sig)

	store.AssertExpectations(t)
	workOrders.AssertNotCalled(t, "SetPaymentStatus", mock.Anything, mock.Anything, mock.Anything)
	events.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
}

func TestHandleWebhook_RefundProcessed(t *testing.T) {
	r, store, workOrders, events, _ := newTestReconciler(t)
	ctx := context.Background()

	payment := pendingPayment(true)
	payment.Status = models.PaymentPaid

	body := []byte(`{"event":"refund.processed","data":{"reference":"fxh-1","amount":500000}}`)
	sig := signBody(t, "sha512", "whsec", body)

	store.On("FindByProviderReference", ctx, "paystack", "fxh-1").Return(payment, nil).Once()
	store.On("TransitionStatus", ctx, payment.ID, models.PaymentPaid, models.PaymentRefunded,
		mock.MatchedBy(func(updates map[string]interface{}) bool {
			amount, ok := updates["refunded_amount"].(int64)
			return ok && amount == 500000
		})).Return(true, nil).Once()
	workOrders.On("SetPaymentStatus", ctx, *payment.WorkOrderID, models.WorkOrderRefundAdjusted).Return(nil).Once()
	events.On("Publish", ctx, mock.MatchedBy(func(e models.PaymentEvent) bool {
		return e.Type == "payment_refunded"
	})).Return(nil).Once()

	r.HandleWebhook(ctx, ProviderPaystack, body, sig)

	store.AssertExpectations(t)
	workOrders.AssertExpectations(t)
	events.AssertExpectations(t)
}

func TestHandleWebhook_UnknownEventIgnored(t *testing.T) {
	r, store, _, _, _ := newTestReconciler(t)
	ctx := context.Background()

	body := []byte(`{"event":"subscription.create","data":{"reference":"fxh-1"}}`)
	sig := signBody(t, "sha512", "whsec", body)

	r.HandleWebhook(ctx, ProviderPaystack, body, sig)

	store.AssertNotCalled(t, "FindByProviderReference", mock.Anything, mock.Anything, mock.Anything)
}

func TestHandleWebhook_UnconfiguredProvider(t *testing.T) {
	r, store, _, _, _ := newTestReconciler(t)

	r.HandleWebhook(context.Background(), ProviderEtegram, []byte(`{}`), "")

	store.AssertNotCalled(t, "FindByProviderReference", mock.Anything, mock.Anything, mock.Anything)
}

func TestApply_ChargeFailed(t *testing.T) {
	r, store, workOrders, events, _ := newTestReconciler(t)
	ctx := context.Background()

	payment := pendingPayment(true)

	store.On("FindByProviderReference", ctx, "paystack", "fxh-1").Return(payment, nil).Once()
	store.On("TransitionStatus", ctx, payment.ID, models.PaymentPending, models.PaymentFailed, mock.Anything).Return(true, nil).Once()
	events.On("Publish", ctx, mock.MatchedBy(func(e models.PaymentEvent) bool {
		return e.Type == "payment_failed"
	})).Return(nil).Once()

	r.Apply(ctx, ProviderPaystack, NormalizedEvent{Kind: EventChargeFailed, Reference: "fxh-1"}, nil)

	store.AssertExpectations(t)
	events.AssertExpectations(t)
	// A failed charge never touches the work order.
	workOrders.AssertNotCalled(t, "SetPaymentStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestApply_AmountMismatchStillTransitions(t *testing.T) {
	r, store, _, events, _ := newTestReconciler(t)
	ctx := context.Background()

	payment := pendingPayment(false)
	reported := int64(100)

	store.On("FindByProviderReference", ctx, "paystack", "fxh-1").Return(payment, nil).Once()
	store.On("TransitionStatus", ctx, payment.ID, models.PaymentPending, models.PaymentPaid, mock.Anything).Return(true, nil).Once()
	events.On("Publish", ctx, mock.Anything).Return(nil).Once()

	r.Apply(ctx, ProviderPaystack, NormalizedEvent{Kind: EventChargeSuccess, Reference: "fxh-1", Amount: &reported}, nil)

	store.AssertExpectations(t)
}

func TestApply_PublishFailureDoesNotUndoTransition(t *testing.T) {
	r, store, workOrders, events, _ := newTestReconciler(t)
	ctx := context.Background()

	payment := pendingPayment(true)

	store.On("FindByProviderReference", ctx, "paystack", "fxh-1").Return(payment, nil).Once()
	store.On("TransitionStatus", ctx, payment.ID, models.PaymentPending, models.PaymentPaid, mock.Anything).Return(true, nil).Once()
	workOrders.On("SetPaymentStatus", ctx, *payment.WorkOrderID, models.WorkOrderPaid).Return(nil).Once()
	events.On("Publish", ctx, mock.Anything).Return(assert.AnError).Once()

	r.Apply(ctx, ProviderPaystack, NormalizedEvent{Kind: EventChargeSuccess, Reference: "fxh-1"}, nil)

	store.AssertExpectations(t)
	workOrders.AssertExpectations(t)
	events.AssertExpectations(t)
}
