// Package ledger prevents duplicate sends across overlapping dispatch
// cycles. Every outbound reminder must win a claim for its key before
// the provider is called; a key that has reached "sent" can never be
// claimed again.
package ledger

import (
	"context"
	"time"
)

// Key identifies one dispatch decision. Bucket is the matched event's
// own start timestamp (see match.Bucket), so every cycle whose
// tolerance window overlaps the event contends for the same key instead
// of both sending.
type Key struct {
	EventID     string
	RecipientID string
	LeadMinutes int
	Bucket      string
}

type Ledger interface {
	// TryClaim atomically reserves the key. Exactly one concurrent
	// caller wins; everyone else gets false and must not send.
	TryClaim(ctx context.Context, key Key, now time.Time) (bool, error)
	MarkSent(ctx context.Context, key Key, now time.Time) error
	MarkFailed(ctx context.Context, key Key, now time.Time) error
	// Purge drops claims older than the given instant. Stale claims for
	// events that already happened are harmless either way.
	Purge(ctx context.Context, olderThan time.Time) error
}
