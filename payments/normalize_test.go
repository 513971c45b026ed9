package payments

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaystackNormalize(t *testing.T) {
	p := NewPaystackProvider("", "sk", "whsec", false)

	t.Run("charge success", func(t *testing.T) {
		body := []byte(`{"event":"charge.success","data":{"reference":"fxh-1","amount":500000,"currency":"NGN","status":"success","channel":"card"}}`)
		event, err := p.Normalize(body)
		require.NoError(t, err)
		assert.Equal(t, EventChargeSuccess, event.Kind)
		assert.Equal(t, "fxh-1", event.Reference)
		require.NotNil(t, event.Amount)
		assert.Equal(t, int64(500000), *event.Amount)
		assert.Equal(t, "NGN", event.Currency)
	})

	t.Run("refund processed", func(t *testing.T) {
		body := []byte(`{"event":"refund.processed","data":{"reference":"fxh-1","amount":500000,"currency":"NGN"}}`)
		event, err := p.Normalize(body)
		require.NoError(t, err)
		assert.Equal(t, EventRefundProcessed, event.Kind)
	})

	t.Run("unrecognized event maps to unknown", func(t *testing.T) {
		body := []byte(`{"event":"subscription.create","data":{"reference":"fxh-1"}}`)
		event, err := p.Normalize(body)
		require.NoError(t, err)
		assert.Equal(t, EventUnknown, event.Kind)
		assert.Equal(t, "subscription.create", event.Metadata["provider_event"])
	})

	t.Run("missing amount stays nil", func(t *testing.T) {
		body := []byte(`{"event":"charge.failed","data":{"reference":"fxh-2"}}`)
		event, err := p.Normalize(body)
		require.NoError(t, err)
		assert.Equal(t, EventChargeFailed, event.Kind)
		assert.Nil(t, event.Amount)
	})

	t.Run("malformed body is an error", func(t *testing.T) {
		_, err := p.Normalize([]byte(`{"event":`))
		assert.Error(t, err)
	})
}

func TestFlutterwaveNormalize(t *testing.T) {
	p := NewFlutterwaveProvider("", "sk", "whsec", false)

	t.Run("charge completed successful", func(t *testing.T) {
		body := []byte(`{"event":"charge.completed","data":{"tx_ref":"fxh-3","amount":5000.50,"currency":"NGN","status":"successful"}}`)
		event, err := p.Normalize(body)
		require.NoError(t, err)
		assert.Equal(t, EventChargeSuccess, event.Kind)
		assert.Equal(t, "fxh-3", event.Reference)
		require.NotNil(t, event.Amount)
		assert.Equal(t, int64(500050), *event.Amount, "major units convert to minor units")
	})

	t.Run("charge completed failed", func(t *testing.T) {
		body := []byte(`{"event":"charge.completed","data":{"tx_ref":"fxh-3","amount":5000,"currency":"NGN","status":"failed"}}`)
		event, err := p.Normalize(body)
		require.NoError(t, err)
		assert.Equal(t, EventChargeFailed, event.Kind)
	})

	t.Run("charge completed with pending status is unknown", func(t *testing.T) {
		body := []byte(`{"event":"charge.completed","data":{"tx_ref":"fxh-3","status":"pending"}}`)
		event, err := p.Normalize(body)
		require.NoError(t, err)
		assert.Equal(t, EventUnknown, event.Kind)
	})

	t.Run("refund completed", func(t *testing.T) {
		body := []byte(`{"event":"refund.completed","data":{"tx_ref":"fxh-3","amount":5000,"currency":"NGN","status":"completed"}}`)
		event, err := p.Normalize(body)
		require.NoError(t, err)
		assert.Equal(t, EventRefundProcessed, event.Kind)
	})
}

func TestEtegramNormalize(t *testing.T) {
	p := NewEtegramProvider("", "sk", "whsec", false)

	t.Run("transaction successful", func(t *testing.T) {
		body := []byte(`{"event":"transaction.successful","data":{"reference":"fxh-4","amount":250000,"currency":"NGN"}}`)
		event, err := p.Normalize(body)
		require.NoError(t, err)
		assert.Equal(t, EventChargeSuccess, event.Kind)
		assert.Equal(t, "fxh-4", event.Reference)
		require.NotNil(t, event.Amount)
		assert.Equal(t, int64(250000), *event.Amount)
	})

	t.Run("transaction refunded", func(t *testing.T) {
		body := []byte(`{"event":"transaction.refunded","data":{"reference":"fxh-4","amount":250000}}`)
		event, err := p.Normalize(body)
		require.NoError(t, err)
		assert.Equal(t, EventRefundProcessed, event.Kind)
	})

	t.Run("unrecognized event maps to unknown", func(t *testing.T) {
		body := []byte(`{"event":"transfer.successful","data":{"reference":"fxh-4"}}`)
		event, err := p.Normalize(body)
		require.NoError(t, err)
		assert.Equal(t, EventUnknown, event.Kind)
	})
}
