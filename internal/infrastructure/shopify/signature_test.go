package shopify

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVerifyWebhookSignature(t *testing.T) {
	secret := "shpss_test_secret"
	body := []byte(`{"id":123,"title":"Widget"}`)

	t.Run("valid signature verifies", func(t *testing.T) {
		signature := ComputeWebhookSignature(secret, body)
		assert.True(t, VerifyWebhookSignature(secret, body, signature))
	})

	t.Run("tampered payload fails", func(t *testing.T) {
		signature := ComputeWebhookSignature(secret, body)
		tampered := []byte(`{"id":123,"title":"Widget2"}`)
		assert.False(t, VerifyWebhookSignature(secret, tampered, signature))
	})

	t.Run("wrong secret fails", func(t *testing.T) {
		signature := ComputeWebhookSignature("other_secret", body)
		assert.False(t, VerifyWebhookSignature(secret, body, signature))
	})

	t.Run("malformed base64 fails", func(t *testing.T) {
		assert.False(t, VerifyWebhookSignature(secret, body, "not-base64!!!"))
	})

	t.Run("empty signature fails", func(t *testing.T) {
		assert.False(t, VerifyWebhookSignature(secret, body, ""))
	})

	t.Run("empty secret fails", func(t *testing.T) {
		signature := ComputeWebhookSignature(secret, body)
		assert.False(t, VerifyWebhookSignature("", body, signature))
	})
}
