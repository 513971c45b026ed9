package payments

import (
	"testing"

	"github.com/fixhub/fixhub-backend/models"

	"github.com/stretchr/testify/assert"
)

func TestNextStatus(t *testing.T) {
	tests := []struct {
		name        string
		current     string
		kind        EventKind
		wantStatus  string
		wantOutcome Outcome
	}{
		{"pending charge success", models.PaymentPending, EventChargeSuccess, models.PaymentPaid, OutcomeApplied},
		{"pending charge failed", models.PaymentPending, EventChargeFailed, models.PaymentFailed, OutcomeApplied},
		{"paid refund", models.PaymentPaid, EventRefundProcessed, models.PaymentRefunded, OutcomeApplied},
		{"paid charge success is duplicate", models.PaymentPaid, EventChargeSuccess, models.PaymentPaid, OutcomeDuplicate},
		{"paid charge failed is invalid", models.PaymentPaid, EventChargeFailed, models.PaymentPaid, OutcomeInvalid},
		{"pending refund is invalid", models.PaymentPending, EventRefundProcessed, models.PaymentPending, OutcomeInvalid},
		{"failed is terminal", models.PaymentFailed, EventChargeSuccess, models.PaymentFailed, OutcomeInvalid},
		{"refunded is terminal", models.PaymentRefunded, EventChargeSuccess, models.PaymentRefunded, OutcomeInvalid},
		{"refunded rejects second refund", models.PaymentRefunded, EventRefundProcessed, models.PaymentRefunded, OutcomeInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, outcome := NextStatus(tt.current, tt.kind)
			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, tt.wantOutcome, outcome)
		})
	}
}

func TestIsTerminal(t *testing.T) {
	assert.False(t, IsTerminal(models.PaymentPending))
	assert.False(t, IsTerminal(models.PaymentPaid))
	assert.True(t, IsTerminal(models.PaymentFailed))
	assert.True(t, IsTerminal(models.PaymentRefunded))
}
