package shopify

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"

	"shopsync-core/internal/domain"
)

// WebhookVerifier checks the X-Shopify-Hmac-Sha256 signature of an
// inbound webhook against the shared secret.
type WebhookVerifier struct {
	secret []byte
}

// NewWebhookVerifier creates a verifier bound to the shared secret.
func NewWebhookVerifier(secret string) *WebhookVerifier {
	return &WebhookVerifier{secret: []byte(secret)}
}

// Verify computes HMAC-SHA256 over the exact raw request bytes and
// compares it in constant time against the base64 signature from the
// header. The body must never be re-serialized before verification;
// whitespace or key-order changes alter the digest.
//
// A missing header, a missing configured secret, or an undecodable
// signature all reject as domain.ErrUnauthorized rather than as an
// internal error, so configuration state never leaks to the caller.
func (v *WebhookVerifier) Verify(body []byte, providedSignature string) error {
	if len(v.secret) == 0 {
		return fmt.Errorf("no webhook secret configured: %w", domain.ErrUnauthorized)
	}
	if providedSignature == "" {
		return fmt.Errorf("missing signature header: %w", domain.ErrUnauthorized)
	}

	provided, err := base64.StdEncoding.DecodeString(providedSignature)
	if err != nil {
		return fmt.Errorf("undecodable signature: %w", domain.ErrUnauthorized)
	}

	mac := hmac.New(sha256.New, v.secret)
	mac.Write(body)
	if !hmac.Equal(mac.Sum(nil), provided) {
		return fmt.Errorf("signature mismatch: %w", domain.ErrUnauthorized)
	}

	return nil
}
