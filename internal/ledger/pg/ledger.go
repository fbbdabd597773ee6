package pg

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"reminderd/internal/ledger"
)

// Ledger is the Postgres claim store. A single upsert statement gives
// the compare-and-set: the insert wins a fresh key, the conditional
// update wins a failed or stale-claimed key, and everything else
// (notably state='sent') affects zero rows.
type Ledger struct {
	DB *pgxpool.Pool

	// StaleAfter bounds how long a claimed-but-unsent key blocks other
	// cycles before it becomes reclaimable.
	StaleAfter time.Duration
}

func New(db *pgxpool.Pool, staleAfter time.Duration) *Ledger {
	return &Ledger{DB: db, StaleAfter: staleAfter}
}

func (l *Ledger) TryClaim(ctx context.Context, key ledger.Key, now time.Time) (bool, error) {
	staleBefore := now.Add(-l.StaleAfter)
	ct, err := l.DB.Exec(ctx, `
		INSERT INTO dispatch_claims (event_id, recipient_id, lead_minutes, bucket, state, claimed_at, updated_at)
		VALUES ($1, $2, $3, $4, 'claimed', $5, $5)
		ON CONFLICT (event_id, recipient_id, lead_minutes, bucket) DO UPDATE
		SET state = 'claimed', claimed_at = $5, updated_at = $5
		WHERE dispatch_claims.state = 'failed'
		   OR (dispatch_claims.state = 'claimed' AND dispatch_claims.updated_at < $6)
	`, key.EventID, key.RecipientID, key.LeadMinutes, key.Bucket, now, staleBefore)
	if err != nil {
		return false, err
	}
	return ct.RowsAffected() > 0, nil
}

func (l *Ledger) MarkSent(ctx context.Context, key ledger.Key, now time.Time) error {
	return l.mark(ctx, key, "sent", now)
}

func (l *Ledger) MarkFailed(ctx context.Context, key ledger.Key, now time.Time) error {
	return l.mark(ctx, key, "failed", now)
}

func (l *Ledger) mark(ctx context.Context, key ledger.Key, state string, now time.Time) error {
	_, err := l.DB.Exec(ctx, `
		UPDATE dispatch_claims SET state = $5, updated_at = $6
		WHERE event_id = $1 AND recipient_id = $2 AND lead_minutes = $3 AND bucket = $4
	`, key.EventID, key.RecipientID, key.LeadMinutes, key.Bucket, state, now)
	return err
}

func (l *Ledger) Purge(ctx context.Context, olderThan time.Time) error {
	_, err := l.DB.Exec(ctx, `
		DELETE FROM dispatch_claims WHERE claimed_at < $1
	`, olderThan)
	return err
}
