package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type MismatchKind string

const (
	MismatchNegativeBalance   MismatchKind = "negative_balance"
	MismatchIdentity          MismatchKind = "accounting_identity"
	MismatchPendingDrift      MismatchKind = "pending_drift"
	MismatchLifetimeDrift     MismatchKind = "lifetime_drift"
	MismatchMissingPayout     MismatchKind = "missing_payout"
	MismatchOrphanPayout      MismatchKind = "orphan_payout"
	MismatchDuplicatePayout   MismatchKind = "duplicate_payout"
	MismatchStatus            MismatchKind = "status_mismatch"
	MismatchAmount            MismatchKind = "amount_mismatch"
	MismatchMissingBalanceRow MismatchKind = "missing_balance"
)

type Mismatch struct {
	Kind      MismatchKind `json:"kind"`
	CreatorID uuid.UUID    `json:"creator_id"`
	EntityID  string       `json:"entity_id,omitempty"`
	Expected  string       `json:"expected"`
	Actual    string       `json:"actual"`
}

func (m Mismatch) String() string {
	return fmt.Sprintf("%s creator=%s entity=%s expected=%s actual=%s", m.Kind, m.CreatorID, m.EntityID, m.Expected, m.Actual)
}

type ReconciliationReport struct {
	StartedAt       time.Time  `json:"started_at"`
	FinishedAt      time.Time  `json:"finished_at"`
	CheckedCreators int        `json:"checked_creators"`
	Mismatches      []Mismatch `json:"mismatches"`
}

// Err returns ErrReconciliationMismatch when the report found drift.
func (r *ReconciliationReport) Err() error {
	if len(r.Mismatches) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %d found, first: %s", ErrReconciliationMismatch, len(r.Mismatches), r.Mismatches[0])
}

type RepairResult struct {
	Before  CreatorBalance `json:"before"`
	After   CreatorBalance `json:"after"`
	Changed bool           `json:"changed"`
}

// LedgerPosition is what the accounting identity is checked against.
type LedgerPosition struct {
	Lifetime  decimal.Decimal
	Pending   decimal.Decimal
	Available decimal.Decimal
	Escrowed  decimal.Decimal
	Completed decimal.Decimal
}

// Balanced reports pending + available + escrowed + completed == lifetime.
func (p LedgerPosition) Balanced() bool {
	return p.Pending.Add(p.Available).Add(p.Escrowed).Add(p.Completed).Equal(p.Lifetime)
}
