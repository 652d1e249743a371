package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/GlebRadaev/creator-ledger/internal/domain"
)

type PurchaseCompletedDTO struct {
	PurchaseID string              `json:"purchase_id" example:"ord_7781"`
	CreatorID  uuid.UUID           `json:"creator_id" example:"6f1c1c4e-8f53-4a57-a2d4-0f3d7a9f2b11"`
	Amount     decimal.Decimal     `json:"amount" swaggertype:"string" example:"19.99"`
	BasePrice  decimal.NullDecimal `json:"base_price" swaggertype:"string" example:"15.00"`
}

type PurchaseResponseDTO struct {
	PurchaseID           string          `json:"purchase_id" example:"ord_7781"`
	CreatorID            uuid.UUID       `json:"creator_id" example:"6f1c1c4e-8f53-4a57-a2d4-0f3d7a9f2b11"`
	EarningsAccrued      decimal.Decimal `json:"earnings_accrued" swaggertype:"string" example:"15.99"`
	EarningsPendingUntil *time.Time      `json:"earnings_pending_until,omitempty"`
}

func NewPurchaseResponse(p *domain.Purchase) PurchaseResponseDTO {
	return PurchaseResponseDTO{
		PurchaseID:           p.ID,
		CreatorID:            p.CreatorID,
		EarningsAccrued:      p.EarningsAccruedAmount.Decimal,
		EarningsPendingUntil: p.EarningsPendingUntil,
	}
}

type CreatorRegisteredDTO struct {
	CreatorID uuid.UUID `json:"creator_id" example:"6f1c1c4e-8f53-4a57-a2d4-0f3d7a9f2b11"`
}

type CompletePayoutDTO struct {
	ProviderReference string `json:"provider_reference" example:"tr_123"`
}

type FailPayoutDTO struct {
	Reason string `json:"reason" example:"account closed"`
}
