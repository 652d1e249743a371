package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CreatorPayoutStatus string

const (
	CreatorActive    CreatorPayoutStatus = "ACTIVE"
	CreatorOnHold    CreatorPayoutStatus = "ON_HOLD"
	CreatorSuspended CreatorPayoutStatus = "SUSPENDED"
)

func (s CreatorPayoutStatus) Valid() bool {
	switch s {
	case CreatorActive, CreatorOnHold, CreatorSuspended:
		return true
	}
	return false
}

type PurchaseStatus string

const (
	PurchasePending   PurchaseStatus = "PENDING"
	PurchaseCompleted PurchaseStatus = "COMPLETED"
	PurchaseRefunded  PurchaseStatus = "REFUNDED"
)

type RequestStatus string

const (
	RequestPending    RequestStatus = "PENDING"
	RequestApproved   RequestStatus = "APPROVED"
	RequestProcessing RequestStatus = "PROCESSING"
	RequestCompleted  RequestStatus = "COMPLETED"
	RequestRejected   RequestStatus = "REJECTED"
	RequestCancelled  RequestStatus = "CANCELLED"
)

func (s RequestStatus) Valid() bool {
	switch s {
	case RequestPending, RequestApproved, RequestProcessing, RequestCompleted, RequestRejected, RequestCancelled:
		return true
	}
	return false
}

// Open reports whether money for the request is still reserved or in flight.
func (s RequestStatus) Open() bool {
	return s == RequestPending || s == RequestApproved || s == RequestProcessing
}

type PayoutStatus string

const (
	PayoutPending    PayoutStatus = "PENDING"
	PayoutProcessing PayoutStatus = "PROCESSING"
	PayoutCompleted  PayoutStatus = "COMPLETED"
	PayoutFailed     PayoutStatus = "FAILED"
)

func (s PayoutStatus) Valid() bool {
	switch s {
	case PayoutPending, PayoutProcessing, PayoutCompleted, PayoutFailed:
		return true
	}
	return false
}

const (
	RoleCreator  = "creator"
	RoleAdmin    = "admin"
	RoleSystem   = "system"
	RoleProvider = "provider"
)

type CreatorBalance struct {
	CreatorID        uuid.UUID           `db:"creator_id"`
	LifetimeEarnings decimal.Decimal     `db:"lifetime_earnings"`
	PendingBalance   decimal.Decimal     `db:"pending_balance"`
	AvailableBalance decimal.Decimal     `db:"available_balance"`
	PayoutStatus     CreatorPayoutStatus `db:"payout_status"`
	CreatedAt        time.Time           `db:"created_at"`
	UpdatedAt        time.Time           `db:"updated_at"`
}

type Purchase struct {
	ID                    string              `db:"id"`
	CreatorID             uuid.UUID           `db:"creator_id"`
	Amount                decimal.Decimal     `db:"amount"`
	BasePrice             decimal.NullDecimal `db:"base_price"`
	Status                PurchaseStatus      `db:"status"`
	EarningsAccruedAmount decimal.NullDecimal `db:"earnings_accrued_amount"`
	EarningsPendingUntil  *time.Time          `db:"earnings_pending_until"`
	EarningsReleased      bool                `db:"earnings_released"`
	CreatedAt             time.Time           `db:"created_at"`
	UpdatedAt             time.Time           `db:"updated_at"`
}

// Accrued reports whether earnings were already credited for the purchase.
func (p *Purchase) Accrued() bool {
	return p.EarningsAccruedAmount.Valid
}

// PurchaseFact is the fact delivered by the commerce subsystem.
type PurchaseFact struct {
	PurchaseID string
	CreatorID  uuid.UUID
	Amount     decimal.Decimal
	BasePrice  decimal.NullDecimal
}

type PayoutRequest struct {
	ID              uuid.UUID       `db:"id"`
	CreatorID       uuid.UUID       `db:"creator_id"`
	RequestedAmount decimal.Decimal `db:"requested_amount"`
	Status          RequestStatus   `db:"status"`
	PayoutID        *uuid.UUID      `db:"payout_id"`
	EscrowHeld      bool            `db:"escrow_held"`
	Reason          string          `db:"reason"`
	CreatedAt       time.Time       `db:"created_at"`
	UpdatedAt       time.Time       `db:"updated_at"`
}

type RequestFilter struct {
	CreatorID *uuid.UUID
	Statuses  []RequestStatus
	Limit     int
	Offset    int
}

// RequestTransition is applied only when the request is currently in one of From.
type RequestTransition struct {
	From          []RequestStatus
	To            RequestStatus
	Reason        string
	ReleaseEscrow bool
}

type Payout struct {
	ID                uuid.UUID       `db:"id"`
	RequestID         uuid.UUID       `db:"payout_request_id"`
	CreatorID         uuid.UUID       `db:"creator_id"`
	Amount            decimal.Decimal `db:"amount"`
	Status            PayoutStatus    `db:"status"`
	PaymentMethod     string          `db:"payment_method"`
	ProviderReference *string         `db:"provider_reference"`
	FailureReason     *string         `db:"failure_reason"`
	ProcessedAt       *time.Time      `db:"processed_at"`
	CreatedAt         time.Time       `db:"created_at"`
	UpdatedAt         time.Time       `db:"updated_at"`
}

type PayoutFilter struct {
	CreatorID *uuid.UUID
	Statuses  []PayoutStatus
}

// PayoutTransition is applied only when the payout is currently in one of From.
// Nil pointers keep the stored value.
type PayoutTransition struct {
	From              []PayoutStatus
	To                PayoutStatus
	ProviderReference *string
	FailureReason     *string
	ProcessedAt       *time.Time
}

type Eligibility struct {
	Eligible            bool
	MissingRequirements []string
	Destination         string
}

// Transfer is what the payment provider receives for a payout.
type Transfer struct {
	PayoutID      uuid.UUID
	CreatorID     uuid.UUID
	Amount        decimal.Decimal
	PaymentMethod string
	Destination   string
}

type Actor struct {
	ID   uuid.UUID
	Role string
}

func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin || a.Role == RoleSystem
}

func (a Actor) String() string {
	if a.ID == uuid.Nil {
		return a.Role
	}
	return a.Role + ":" + a.ID.String()
}

var (
	SystemActor   = Actor{Role: RoleSystem}
	ProviderActor = Actor{Role: RoleProvider}
)

const (
	EntityPayoutRequest = "payout_request"
	EntityPayout        = "payout"
	EntityBalance       = "creator_balance"
)

type AuditEntry struct {
	ID         int64     `db:"id"`
	EntityType string    `db:"entity_type"`
	EntityID   string    `db:"entity_id"`
	Action     string    `db:"action"`
	PrevState  string    `db:"prev_state"`
	NextState  string    `db:"next_state"`
	Actor      string    `db:"actor"`
	Details    string    `db:"details"`
	CreatedAt  time.Time `db:"created_at"`
}

// AccrualTotals aggregates accrued purchase earnings for one creator.
type AccrualTotals struct {
	CreatorID  uuid.UUID       `db:"creator_id"`
	Accrued    decimal.Decimal `db:"accrued"`
	Unreleased decimal.Decimal `db:"unreleased"`
}

// ReleaseCursor is the keyset position of the hold-release sweep.
type ReleaseCursor struct {
	PendingUntil time.Time
	ID           string
}
