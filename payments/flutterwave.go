package payments

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/url"
)

// Flutterwave signs webhooks with HMAC-SHA256 over the raw request body,
// delivered in the verif-hash header.
const flutterwaveSignatureHeader = "verif-hash"

type FlutterwaveProvider struct {
	client        *apiClient
	webhookSecret string
	allowUnsigned bool
}

func NewFlutterwaveProvider(baseURL, secretKey, webhookSecret string, allowUnsigned bool) *FlutterwaveProvider {
	return &FlutterwaveProvider{
		client:        newAPIClient(baseURL, secretKey),
		webhookSecret: webhookSecret,
		allowUnsigned: allowUnsigned,
	}
}

func (p *FlutterwaveProvider) ID() ProviderID { return ProviderFlutterwave }

func (p *FlutterwaveProvider) SignatureHeader() string { return flutterwaveSignatureHeader }

func (p *FlutterwaveProvider) VerifySignature(rawBody []byte, signature string) bool {
	return verifyHMAC(sha256.New, p.webhookSecret, rawBody, signature, p.allowUnsigned)
}

type flutterwaveWebhook struct {
	Event string `json:"event"`
	Data  struct {
		TxRef    string   `json:"tx_ref"`
		Amount   *float64 `json:"amount"` // major units
		Currency string   `json:"currency"`
		Status   string   `json:"status"`
	} `json:"data"`
}

func (p *FlutterwaveProvider) Normalize(rawBody []byte) (NormalizedEvent, error) {
	var hook flutterwaveWebhook
	if err := json.Unmarshal(rawBody, &hook); err != nil {
		return NormalizedEvent{}, fmt.Errorf("parse flutterwave webhook: %w", err)
	}

	event := NormalizedEvent{
		Reference: hook.Data.TxRef,
		Amount:    majorToMinor(hook.Data.Amount),
		Currency:  hook.Data.Currency,
		Metadata: map[string]interface{}{
			"provider_event":  hook.Event,
			"provider_status": hook.Data.Status,
		},
	}

	switch hook.Event {
	case "charge.completed":
		switch hook.Data.Status {
		case "successful":
			event.Kind = EventChargeSuccess
		case "failed":
			event.Kind = EventChargeFailed
		default:
			event.Kind = EventUnknown
		}
	case "refund.completed":
		event.Kind = EventRefundProcessed
	default:
		event.Kind = EventUnknown
	}
	return event, nil
}

// majorToMinor converts a major-unit amount to minor units.
// Flutterwave reports amounts in major units; we store minor units everywhere.
func majorToMinor(amount *float64) *int64 {
	if amount == nil {
		return nil
	}
	minor := int64(math.Round(*amount * 100))
	return &minor
}

type flutterwaveInitResponse struct {
	Status string `json:"status"`
	Data   struct {
		Link string `json:"link"`
	} `json:"data"`
}

func (p *FlutterwaveProvider) InitializeTransaction(ctx context.Context, req InitializeRequest) (*InitializeResponse, error) {
	body := map[string]interface{}{
		"tx_ref":       req.Reference,
		"amount":       float64(req.Amount) / 100,
		"currency":     req.Currency,
		"redirect_url": req.CallbackURL,
		"customer": map[string]string{
			"email": req.Email,
		},
	}

	var resp flutterwaveInitResponse
	if err := p.client.doJSON(ctx, http.MethodPost, "/payments", body, &resp); err != nil {
		return nil, err
	}
	if resp.Status != "success" {
		return nil, fmt.Errorf("flutterwave rejected payment initialize for %s", req.Reference)
	}
	return &InitializeResponse{
		AuthorizationURL: resp.Data.Link,
		Reference:        req.Reference,
	}, nil
}

type flutterwaveVerifyResponse struct {
	Status string `json:"status"`
	Data   struct {
		ID       int64    `json:"id"`
		TxRef    string   `json:"tx_ref"`
		Amount   *float64 `json:"amount"`
		Currency string   `json:"currency"`
		Status   string   `json:"status"`
	} `json:"data"`
}

func (p *FlutterwaveProvider) verifyByReference(ctx context.Context, reference string) (*flutterwaveVerifyResponse, error) {
	path := "/transactions/verify_by_reference?tx_ref=" + url.QueryEscape(reference)
	var resp flutterwaveVerifyResponse
	if err := p.client.doJSON(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (p *FlutterwaveProvider) VerifyTransaction(ctx context.Context, reference string) (NormalizedEvent, error) {
	resp, err := p.verifyByReference(ctx, reference)
	if err != nil {
		return NormalizedEvent{}, err
	}

	event := NormalizedEvent{
		Reference: resp.Data.TxRef,
		Amount:    majorToMinor(resp.Data.Amount),
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

// Refund looks up the provider-side transaction ID first; Flutterwave keys
// refunds by transaction ID rather than merchant reference.
func (p *FlutterwaveProvider) Refund(ctx context.Context, reference string, amount int64) error {
	verified, err := p.verifyByReference(ctx, reference)
	if err != nil {
		return err
	}
	if verified.Data.ID == 0 {
		return fmt.Errorf("no flutterwave transaction found for %s", reference)
	}

	body := map[string]interface{}{
		"amount": float64(amount) / 100,
	}
	var resp struct {
		Status string `json:"status"`
	}
	path := fmt.Sprintf("/transactions/%d/refund", verified.Data.ID)
	if err := p.client.doJSON(ctx, http.MethodPost, path, body, &resp); err != nil {
		return err
	}
	if resp.Status != "success" {
		return fmt.Errorf("flutterwave rejected refund for %s", reference)
	}
	return nil
}
