package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"

	"payrail-server/internal/domain/payment"
	"payrail-server/internal/domain/webhook"
	"payrail-server/internal/infrastructure/config"
)

// SignatureVerifier validates webhook authenticity per provider. SEPA and
// iDEAL sign the raw body directly; the card processor signs a timestamped
// payload to bound replay.
type SignatureVerifier struct {
	cfg *config.ProvidersConfig

	// overridable in tests
	now func() time.Time
}

// NewSignatureVerifier creates a verifier over the configured secrets.
func NewSignatureVerifier(cfg *config.ProvidersConfig) *SignatureVerifier {
	return &SignatureVerifier{cfg: cfg, now: time.Now}
}

// Verify checks the signature header for the given provider against the raw
// request body. Returns webhook.ErrInvalidSignature on any mismatch and
// webhook.ErrStaleTimestamp when a card signature falls outside the
// tolerance window.
func (v *SignatureVerifier) Verify(provider payment.Provider, signature string, body []byte) error {
	switch provider {
	case payment.ProviderSEPA:
		return verifyPlain(v.cfg.SEPA.WebhookSecret, signature, body)
	case payment.ProviderIDEAL:
		return verifyPlain(v.cfg.IDEAL.WebhookSecret, signature, body)
	case payment.ProviderCard:
		return v.verifyTimestamped(v.cfg.Card.WebhookSecret, signature, body)
	default:
		return payment.ErrInvalidProvider
	}
}

// verifyPlain checks an HMAC-SHA256 hex signature over the raw body.
func verifyPlain(secret, signature string, body []byte) error {
	if signature == "" {
		return webhook.ErrInvalidSignature
	}
	expected := computeHMAC(secret, body)
	if !hmac.Equal([]byte(expected), []byte(strings.ToLower(signature))) {
		return webhook.ErrInvalidSignature
	}
	return nil
}

// verifyTimestamped checks a "t=<unix>,v1=<hex>" header where the signature
// covers "<timestamp>.<body>". Timestamps outside the tolerance window are
// rejected even when the signature itself is valid.
func (v *SignatureVerifier) verifyTimestamped(secret, signature string, body []byte) error {
	timestamp, sig, err := parseTimestampedHeader(signature)
	if err != nil {
		return err
	}

	signedAt := time.Unix(timestamp, 0)
	age := v.now().Sub(signedAt)
	if age < -v.cfg.Card.SignatureTolerance || age > v.cfg.Card.SignatureTolerance {
		return webhook.ErrStaleTimestamp
	}

	payload := append([]byte(strconv.FormatInt(timestamp, 10)+"."), body...)
	expected := computeHMAC(secret, payload)
	if !hmac.Equal([]byte(expected), []byte(strings.ToLower(sig))) {
		return webhook.ErrInvalidSignature
	}
	return nil
}

// parseTimestampedHeader splits a "t=<unix>,v1=<hex>" signature header.
func parseTimestampedHeader(header string) (int64, string, error) {
	var timestamp int64
	var sig string
	for _, part := range strings.Split(header, ",") {
		key, value, found := strings.Cut(strings.TrimSpace(part), "=")
		if !found {
			continue
		}
		switch key {
		case "t":
			ts, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return 0, "", fmt.Errorf("unparsable signature timestamp: %w", webhook.ErrInvalidSignature)
			}
			timestamp = ts
		case "v1":
			sig = value
		}
	}
	if timestamp == 0 || sig == "" {
		return 0, "", webhook.ErrInvalidSignature
	}
	return timestamp, sig, nil
}

// computeHMAC returns the lowercase hex HMAC-SHA256 of payload.
func computeHMAC(secret string, payload []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

// PayloadHash returns the dedup key component for a delivery body.
func PayloadHash(body []byte) string {
	sum := sha256.Sum256(body)
	return hex.EncodeToString(sum[:])
}
