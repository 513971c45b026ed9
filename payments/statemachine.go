package payments

import (
	"github.com/fixhub/fixhub-backend/models"
)

// Outcome classifies what applying an event to a payment status would do.
type Outcome int

const (
	// OutcomeApplied means the event moves the payment to a new status.
	OutcomeApplied Outcome = iota
	// OutcomeDuplicate means the event re-delivers a transition that already
	// happened; the payment is left untouched.
	OutcomeDuplicate
	// OutcomeInvalid means the event has no legal transition from the current
	// status; it is absorbed and logged, never an error.
	OutcomeInvalid
)

// transitions is the full allowed-transition table. pending can succeed or
// fail; only a paid payment can be refunded. failed and refunded are terminal
// for the webhook flow.
var transitions = map[string]map[EventKind]string{
	models.PaymentPending: {
		EventChargeSuccess: models.PaymentPaid,
		EventChargeFailed:  models.PaymentFailed,
	},
	models.PaymentPaid: {
		EventRefundProcessed: models.PaymentRefunded,
	},
}

// NextStatus resolves the state machine for a payment in status current
// receiving event kind. When the outcome is OutcomeApplied, the returned
// status is the one to transition to; otherwise it echoes current.
func NextStatus(current string, kind EventKind) (string, Outcome) {
	if next, ok := transitions[current][kind]; ok {
		return next, OutcomeApplied
	}
	// Re-delivery of a success event for an already-paid payment is the
	// expected at-least-once case, not an anomaly.
	if current == models.PaymentPaid && kind == EventChargeSuccess {
		return current, OutcomeDuplicate
	}
	return current, OutcomeInvalid
}

// IsTerminal reports whether no webhook event can move the payment further.
func IsTerminal(status string) bool {
	return status == models.PaymentFailed || status == models.PaymentRefunded
}
