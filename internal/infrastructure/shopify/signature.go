package shopify

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
)

// ComputeWebhookSignature returns the base64-encoded HMAC-SHA256 of the raw
// payload bytes under the given secret. This is the value the platform sends
// in the X-Shopify-Hmac-Sha256 header.
func ComputeWebhookSignature(secret string, rawBody []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(rawBody)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// VerifyWebhookSignature recomputes the signature over the raw, unparsed
// payload bytes and compares in constant time. Verification must run before
// any parsing of the payload; parsing untrusted content first defeats it.
func VerifyWebhookSignature(secret string, rawBody []byte, signature string) bool {
	if secret == "" || signature == "" {
		return false
	}

	expected, err := base64.StdEncoding.DecodeString(signature)
	if err != nil {
		return false
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(rawBody)
	return hmac.Equal(mac.Sum(nil), expected)
}

// WebhookVerifier adapts signature verification to the ingest pipeline's
// verifier port.
type WebhookVerifier struct{}

// Verify checks a delivery's signature over its raw bytes
func (WebhookVerifier) Verify(secret string, rawBody []byte, signature string) bool {
	return VerifyWebhookSignature(secret, rawBody, signature)
}
