package payments

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"net/http"
)

// Etegram signs webhooks with HMAC-SHA256 over the raw request body.
const etegramSignatureHeader = "x-etegram-signature"

type EtegramProvider struct {
	client        *apiClient
	webhookSecret string
	allowUnsigned bool
}

func NewEtegramProvider(baseURL, secretKey, webhookSecret string, allowUnsigned bool) *EtegramProvider {
	return &EtegramProvider{
		client:        newAPIClient(baseURL, secretKey),
		webhookSecret: webhookSecret,
		allowUnsigned: allowUnsigned,
	}
}

func (p *EtegramProvider) ID() ProviderID { return ProviderEtegram }

func (p *EtegramProvider) SignatureHeader() string { return etegramSignatureHeader }

func (p *EtegramProvider) VerifySignature(rawBody []byte, signature string) bool {
	return verifyHMAC(sha256.New, p.webhookSecret, rawBody, signature, p.allowUnsigned)
}

type etegramWebhook struct {
	Event string `json:"event"`
	Data  struct {
		Reference string `json:"reference"`
		Amount    *int64 `json:"amount"` // minor units
		Currency  string `json:"currency"`
	} `json:"data"`
}

func (p *EtegramProvider) Normalize(rawBody []byte) (NormalizedEvent, error) {
	var hook etegramWebhook
	if err := json.Unmarshal(rawBody, &hook); err != nil {
		return NormalizedEvent{}, fmt.Errorf("parse etegram webhook: %w", err)
	}

	event := NormalizedEvent{
		Reference: hook.Data.Reference,
		Amount:    hook.Data.Amount,
		Currency:  hook.Data.Currency,
		Metadata:  map[string]interface{}{"provider_event": hook.Event},
	}

	switch hook.Event {
	case "transaction.successful":
		event.Kind = EventChargeSuccess
	case "transaction.failed":
		event.Kind = EventChargeFailed
	case "transaction.refunded":
		event.Kind = EventRefundProcessed
	default:
		event.Kind = EventUnknown
	}
	return event, nil
}

type etegramInitResponse struct {
	Success bool `json:"success"`
	Data    struct {
		CheckoutURL string `json:"checkout_url"`
		Reference   string `json:"reference"`
	} `json:"data"`
}

func (p *EtegramProvider) InitializeTransaction(ctx context.Context, req InitializeRequest) (*InitializeResponse, error) {
	body := map[string]interface{}{
		"reference":    req.Reference,
		"email":        req.Email,
		"amount":       req.Amount,
		"currency":     req.Currency,
		"callback_url": req.CallbackURL,
	}

	var resp etegramInitResponse
	if err := p.client.doJSON(ctx, http.MethodPost, "/transactions/initialize", body, &resp); err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, fmt.Errorf("etegram rejected transaction initialize for %s", req.Reference)
	}
	return &InitializeResponse{
		AuthorizationURL: resp.Data.CheckoutURL,
		Reference:        resp.Data.Reference,
	}, nil
}

type etegramVerifyResponse struct {
	Success bool `json:"success"`
	Data    struct {
		Reference string `json:"reference"`
		Amount    *int64 `json:"amount"`
		Currency  string `json:"currency"`
		Status    string `json:"status"`
	} `json:"data"`
}

func (p *EtegramProvider) VerifyTransaction(ctx context.Context, reference string) (NormalizedEvent, error) {
	var resp etegramVerifyResponse
	if err := p.client.doJSON(ctx, http.MethodGet, "/transactions/verify/"+reference, nil, &resp); err != nil {
		return NormalizedEvent{}, err
	}

	event := NormalizedEvent{
		Reference: resp.Data.Reference,
		Amount:    resp.Data.Amount,
		Currency:  resp.Data.Currency,
		Metadata:  map[string]interface{}{"provider_status": resp.Data.Status},
	}
	switch resp.Data.Status {
	case "successful":
		event.Kind = EventChargeSuccess
	case "failed":
		event.Kind = EventChargeFailed
	default:
		event.Kind = EventUnknown
	}
	return event, nil
}

func (p *EtegramProvider) Refund(ctx context.Context, reference string, amount int64) error {
	body := map[string]interface{}{
		"reference": reference,
		"amount":    amount,
	}
	var resp struct {
		Success bool `json:"success"`
	}
	if err := p.client.doJSON(ctx, http.MethodPost, "/refunds", body, &resp); err != nil {
		return err
	}
	if !resp.Success {
		return fmt.Errorf("etegram rejected refund for %s", reference)
	}
	return nil
}
