package webhook

import (
	"context"
	"time"

	"payrail-server/internal/domain/payment"
)

// RetentionWindow how long a (provider, payload hash) pair blocks redelivery
const RetentionWindow = 24 * time.Hour

// DedupRecord first-seen marker for a delivered webhook payload.
type DedupRecord struct {
	Provider    payment.Provider
	PayloadHash string
	FirstSeenAt time.Time
}

// DedupStore atomic claim index over (provider, payload hash). Two concurrent
// claims for the same key must resolve to exactly one first-seen winner.
type DedupStore interface {
	// Claim records the pair as seen. Returns true if this call was the first
	// sighting within the retention window, false on a duplicate.
	Claim(ctx context.Context, provider payment.Provider, payloadHash string, now time.Time) (bool, error)

	// PurgeExpired removes entries older than the retention window.
	PurgeExpired(ctx context.Context, now time.Time) (int64, error)
}
