package payments

import (
	"crypto/hmac"
	"encoding/hex"
	"hash"
	"strings"
)

// computeHMAC returns the lowercase hex HMAC digest of body under secret.
func computeHMAC(algo func() hash.Hash, secret string, body []byte) string {
	mac := hmac.New(algo, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// verifyHMAC checks a webhook signature against the expected HMAC digest.
// An empty secret means the provider has no webhook secret configured; the
// allowUnsigned flag then decides whether to accept or reject. Comparison is
// constant-time.
func verifyHMAC(algo func() hash.Hash, secret string, body []byte, signature string, allowUnsigned bool) bool {
	if secret == "" {
		return allowUnsigned
	}
	if signature == "" {
		return false
	}
	expected := computeHMAC(algo, secret, body)
	return hmac.Equal([]byte(expected), []byte(strings.ToLower(signature)))
}
