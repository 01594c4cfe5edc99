package domain

import "time"

// Ledger action types recorded for video generation billing.
const (
	LedgerActionVideoGeneration       = "VIDEO_GENERATION"
	LedgerActionVideoGenerationRefund = "VIDEO_GENERATION_REFUND"
)

// LedgerEntry is one append-only credit mutation for an organization.
// UnitsUsed is signed: positive for debits, negative for refunds. Replaying
// entries in creation order reproduces the balance exactly.
type LedgerEntry struct {
	ID             string
	OrganizationID string
	ActionType     string
	UnitsUsed      int64
	BalanceBefore  int64
	BalanceAfter   int64
	Description    string
	// JobID correlates the entry with the job that caused it; persisted in
	// the entry's jsonb metadata.
	JobID     string
	CreatedAt time.Time
}

// BalanceSnapshot reports an organization's balance around one mutation.
type BalanceSnapshot struct {
	Before int64
	After  int64
}
