package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/GlebRadaev/creator-ledger/internal/domain"
)

type BalanceResponseDTO struct {
	CreatorID        uuid.UUID       `json:"creator_id" example:"6f1c1c4e-8f53-4a57-a2d4-0f3d7a9f2b11"`
	LifetimeEarnings decimal.Decimal `json:"lifetime_earnings" swaggertype:"string" example:"1250.00"`
	PendingBalance   decimal.Decimal `json:"pending_balance" swaggertype:"string" example:"100.00"`
	AvailableBalance decimal.Decimal `json:"available_balance" swaggertype:"string" example:"350.00"`
	PayoutStatus     string          `json:"payout_status" example:"ACTIVE"`
	UpdatedAt        time.Time       `json:"updated_at" example:"2024-06-01T12:00:00Z"`
}

func NewBalanceResponse(b *domain.CreatorBalance) BalanceResponseDTO {
	return BalanceResponseDTO{
		CreatorID:        b.CreatorID,
		LifetimeEarnings: b.LifetimeEarnings,
		PendingBalance:   b.PendingBalance,
		AvailableBalance: b.AvailableBalance,
		PayoutStatus:     string(b.PayoutStatus),
		UpdatedAt:        b.UpdatedAt,
	}
}

type PayoutStatusRequestDTO struct {
	Status string `json:"status" example:"ON_HOLD"`
}

type RepairResponseDTO struct {
	Before  BalanceResponseDTO `json:"before"`
	After   BalanceResponseDTO `json:"after"`
	Changed bool               `json:"changed" example:"true"`
}

func NewRepairResponse(r *domain.RepairResult) RepairResponseDTO {
	return RepairResponseDTO{
		Before:  NewBalanceResponse(&r.Before),
		After:   NewBalanceResponse(&r.After),
		Changed: r.Changed,
	}
}
