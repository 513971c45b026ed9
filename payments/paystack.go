package payments

import (
	"context"
	"crypto/sha512"
	"encoding/json"
	"fmt"
	"net/http"
)

// Paystack signs webhooks with HMAC-SHA512 over the raw request body.
const paystackSignatureHeader = "x-paystack-signature"

type PaystackProvider struct {
	client        *apiClient
	webhookSecret string
	allowUnsigned bool
}

func NewPaystackProvider(baseURL, secretKey, webhookSecret string, allowUnsigned bool) *PaystackProvider {
	// Paystack uses the API secret key as the webhook signing secret when no
	// separate secret is configured.
	if webhookSecret == "" {
		webhookSecret = secretKey
	}
	return &PaystackProvider{
		client:        newAPIClient(baseURL, secretKey),
		webhookSecret: webhookSecret,
		allowUnsigned: allowUnsigned,
	}
}

func (p *PaystackProvider) ID() ProviderID { return ProviderPaystack }

func (p *PaystackProvider) SignatureHeader() string { return paystackSignatureHeader }

func (p *PaystackProvider) VerifySignature(rawBody []byte, signature string) bool {
	return verifyHMAC(sha512.New, p.webhookSecret, rawBody, signature, p.allowUnsigned)
}

type paystackWebhook struct {
	Event string `json:"event"`
	Data  struct {
		Reference string `json:"reference"`
		Amount    *int64 `json:"amount"` // kobo
		Currency  string `json:"currency"`
		Status    string `json:"status"`
		Channel   string `json:"channel"`
		PaidAt    string `json:"paid_at"`
	} `json:"data"`
}

func (p *PaystackProvider) Normalize(rawBody []byte) (NormalizedEvent, error) {
	var hook paystackWebhook
	if err := json.Unmarshal(rawBody, &hook); err != nil {
		return NormalizedEvent{}, fmt.Errorf("parse paystack webhook: %w", err)
	}

	event := NormalizedEvent{
		Reference: hook.Data.Reference,
		Amount:    hook.Data.Amount,
		Currency:  hook.Data.Currency,
		Metadata: map[string]interface{}{
			"provider_event": hook.Event,
			"channel":        hook.Data.Channel,
		},
	}

	switch hook.Event {
	case "charge.success":
		event.Kind = EventChargeSuccess
	case "charge.failed":
		event.Kind = EventChargeFailed
	case "refund.processed":
		event.Kind = EventRefundProcessed
	default:
		event.Kind = EventUnknown
	}
	return event, nil
}

type paystackInitResponse struct {
	Status bool `json:"status"`
	Data   struct {
		AuthorizationURL string `json:"authorization_url"`
		Reference        string `json:"reference"`
	} `json:"data"`
}

func (p *PaystackProvider) InitializeTransaction(ctx context.Context, req InitializeRequest) (*InitializeResponse, error) {
	body := map[string]interface{}{
		"email":        req.Email,
		"amount":       req.Amount,
		"reference":    req.Reference,
		"currency":     req.Currency,
		"callback_url": req.CallbackURL,
	}

	var resp paystackInitResponse
	if err := p.client.doJSON(ctx, http.MethodPost, "/transaction/initialize", body, &resp); err != nil {
		return nil, err
	}
	if !resp.Status {
		return nil, fmt.Errorf("paystack rejected transaction initialize for %s", req.Reference)
	}
	return &InitializeResponse{
		AuthorizationURL: resp.Data.AuthorizationURL,
		Reference:        resp.Data.Reference,
	}, nil
}

type paystackVerifyResponse struct {
	Status bool `json:"status"`
	Data   struct {
		Reference string `json:"reference"`
		Amount    *int64 `json:"amount"`
		Currency  string `json:"currency"`
		Status    string `json:"status"`
	} `json:"data"`
}

func (p *PaystackProvider) VerifyTransaction(ctx context.Context, reference string) (NormalizedEvent, error) {
	var resp paystackVerifyResponse
	if err := p.client.doJSON(ctx, http.MethodGet, "/transaction/verify/"+reference, nil, &resp); err != nil {
		return NormalizedEvent{}, err
	}

	event := NormalizedEvent{
		Reference: resp.Data.Reference,
		Amount:    resp.Data.Amount,
		Currency:  resp.Data.Currency,
		Metadata:  map[string]interface{}{"provider_status": resp.Data.Status},
	}
	switch resp.Data.Status {
	case "success":
		event.Kind = EventChargeSuccess
	case "failed", "abandoned":
		event.Kind = EventChargeFailed
	default:
		event.Kind = EventUnknown
	}
	return event, nil
}

func (p *PaystackProvider) Refund(ctx context.Context, reference string, amount int64) error {
	body := map[string]interface{}{
		"transaction": reference,
		"amount":      amount,
	}
	var resp struct {
		Status bool `json:"status"`
	}
	if err := p.client.doJSON(ctx, http.MethodPost, "/refund", body, &resp); err != nil {
		return err
	}
	if !resp.Status {
		return fmt.Errorf("paystack rejected refund for %s", reference)
	}
	return nil
}
