package payments

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func signBody(t *testing.T, algo string, secret string, body []byte) string {
	t.Helper()
	var mac = hmac.New(sha256.New, []byte(secret))
	if algo == "sha512" {
		mac = hmac.New(sha512.New, []byte(secret))
	}
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func TestVerifySignature_Paystack(t *testing.T) {
	p := NewPaystackProvider("https://api.paystack.co", "sk_test_abc", "", false)
	body := []byte(`{"event":"charge.success","data":{"reference":"fxh-1"}}`)
	// Paystack falls back to the API secret key as signing secret.
	sig := signBody(t, "sha512", "sk_test_abc", body)

	assert.True(t, p.VerifySignature(body, sig))
	assert.True(t, p.VerifySignature(body, strings.ToUpper(sig)), "hex casing must not matter")
	assert.False(t, p.VerifySignature(body, sig[:len(sig)-1]+"0"), "tampered signature must fail")
	assert.False(t, p.VerifySignature(append(body, ' '), sig), "tampered body must fail")
	assert.False(t, p.VerifySignature(body, ""))
}

func TestVerifySignature_Flutterwave(t *testing.T) {
	p := NewFlutterwaveProvider("https://api.flutterwave.com/v3", "sk", "whsec", false)
	body := []byte(`{"event":"charge.completed"}`)
	sig := signBody(t, "sha256", "whsec", body)

	assert.True(t, p.VerifySignature(body, sig))
	assert.False(t, p.VerifySignature(body, signBody(t, "sha256", "wrong-secret", body)))
}

func TestVerifySignature_Etegram(t *testing.T) {
	p := NewEtegramProvider("https://api.etegram.com/v1", "sk", "whsec", false)
	body := []byte(`{"event":"transaction.successful"}`)
	sig := signBody(t, "sha256", "whsec", body)

	assert.True(t, p.VerifySignature(body, sig))
	assert.False(t, p.VerifySignature(body, "deadbeef"))
}

func TestVerifySignature_UnsignedMode(t *testing.T) {
	body := []byte(`{}`)

	// No webhook secret configured, flag off: reject everything.
	strict := NewFlutterwaveProvider("", "sk", "", false)
	assert.False(t, strict.VerifySignature(body, ""))
	assert.False(t, strict.VerifySignature(body, "anything"))

	// No webhook secret configured, flag on: accept (development only).
	lax := NewFlutterwaveProvider("", "sk", "", true)
	assert.True(t, lax.VerifySignature(body, ""))

	// A configured secret always wins over the flag.
	signed := NewFlutterwaveProvider("", "sk", "whsec", true)
	assert.False(t, signed.VerifySignature(body, "bogus"))
	assert.True(t, signed.VerifySignature(body, signBody(t, "sha256", "whsec", body)))
}
