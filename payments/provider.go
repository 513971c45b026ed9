package payments

import (
	"context"
	"fmt"
)

// ProviderID identifies a supported payment processor.
type ProviderID string

const (
	ProviderPaystack    ProviderID = "paystack"
	ProviderFlutterwave ProviderID = "flutterwave"
	ProviderEtegram     ProviderID = "etegram"
)

// ParseProviderID validates a provider name from an untrusted source.
func ParseProviderID(s string) (ProviderID, error) {
	switch ProviderID(s) {
	case ProviderPaystack, ProviderFlutterwave, ProviderEtegram:
		return ProviderID(s), nil
	}
	return "", fmt.Errorf("unknown payment provider %q", s)
}

// EventKind is the internal taxonomy every provider event is mapped into.
type EventKind string

const (
	EventChargeSuccess   EventKind = "charge_success"
	EventChargeFailed    EventKind = "charge_failed"
	EventRefundProcessed EventKind = "refund_processed"
	EventUnknown         EventKind = "unknown"
)

// NormalizedEvent is a provider webhook translated into internal vocabulary.
// Amount is nil when the provider omitted it.
type NormalizedEvent struct {
	Kind      EventKind
	Reference string
	Amount    *int64 // minor units
	Currency  string
	Metadata  map[string]interface{}
}

// InitializeRequest opens a checkout transaction with a provider.
type InitializeRequest struct {
	Reference   string
	Email       string
	Amount      int64 // minor units
	Currency    string
	CallbackURL string
}

// InitializeResponse carries the checkout URL the customer is redirected to.
type InitializeResponse struct {
	AuthorizationURL string
	Reference        string
}

// Provider is the fixed adapter surface every payment processor implements.
// One shared reconciler consumes verification and normalization; the
// remaining calls serve payment initiation, manual verification, and refunds.
type Provider interface {
	ID() ProviderID

	// SignatureHeader names the HTTP header the provider signs webhooks with.
	SignatureHeader() string
	// VerifySignature reports whether rawBody authentically came from the
	// provider. It returns false on mismatch and never panics.
	VerifySignature(rawBody []byte, signature string) bool
	// Normalize maps a raw webhook body into the internal event taxonomy.
	// Unrecognized provider events yield Kind == EventUnknown, not an error;
	// an error means the body was not parseable at all.
	Normalize(rawBody []byte) (NormalizedEvent, error)

	InitializeTransaction(ctx context.Context, req InitializeRequest) (*InitializeResponse, error)
	VerifyTransaction(ctx context.Context, reference string) (NormalizedEvent, error)
	Refund(ctx context.Context, reference string, amount int64) error
}

// Registry holds the configured provider adapters keyed by ID.
type Registry struct {
	providers map[ProviderID]Provider
}

func NewRegistry() *Registry {
	return &Registry{providers: make(map[ProviderID]Provider)}
}

func (r *Registry) Register(p Provider) {
	r.providers[p.ID()] = p
}

func (r *Registry) Get(id ProviderID) (Provider, error) {
	if p, exists := r.providers[id]; exists {
		return p, nil
	}
	return nil, fmt.Errorf("provider %s not configured", id)
}

// IDs returns the registered provider IDs.
func (r *Registry) IDs() []ProviderID {
	ids := make([]ProviderID, 0, len(r.providers))
	for id := range r.providers {
		ids = append(ids, id)
	}
	return ids
}
