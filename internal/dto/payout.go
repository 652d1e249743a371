package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/GlebRadaev/creator-ledger/internal/domain"
)

type CreatePayoutRequestDTO struct {
	Amount decimal.Decimal `json:"amount" swaggertype:"string" example:"50.00"`
}

type PayoutRequestResponseDTO struct {
	ID              uuid.UUID       `json:"id" example:"0b6e3c0a-5d1f-4f3e-9a59-1f8f7c1d2e33"`
	CreatorID       uuid.UUID       `json:"creator_id" example:"6f1c1c4e-8f53-4a57-a2d4-0f3d7a9f2b11"`
	RequestedAmount decimal.Decimal `json:"requested_amount" swaggertype:"string" example:"50.00"`
	Status          string          `json:"status" example:"PENDING"`
	PayoutID        *uuid.UUID      `json:"payout_id,omitempty"`
	Reason          string          `json:"reason,omitempty" example:"duplicate account"`
	CreatedAt       time.Time       `json:"created_at" example:"2024-06-01T12:00:00Z"`
	UpdatedAt       time.Time       `json:"updated_at" example:"2024-06-01T12:00:00Z"`
}

func NewPayoutRequestResponse(r *domain.PayoutRequest) PayoutRequestResponseDTO {
	return PayoutRequestResponseDTO{
		ID:              r.ID,
		CreatorID:       r.CreatorID,
		RequestedAmount: r.RequestedAmount,
		Status:          string(r.Status),
		PayoutID:        r.PayoutID,
		Reason:          r.Reason,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
}

func NewPayoutRequestList(requests []domain.PayoutRequest) []PayoutRequestResponseDTO {
	response := make([]PayoutRequestResponseDTO, len(requests))
	for i := range requests {
		response[i] = NewPayoutRequestResponse(&requests[i])
	}
	return response
}

type RejectRequestDTO struct {
	Reason string `json:"reason" example:"failed manual review"`
}

type ProcessRequestDTO struct {
	PaymentMethod string `json:"payment_method" example:"bank_transfer"`
}

type PayoutResponseDTO struct {
	ID                uuid.UUID       `json:"id" example:"9a3d7a61-2c1b-4bb0-a6a4-5c0f0e3b7d44"`
	RequestID         uuid.UUID       `json:"payout_request_id" example:"0b6e3c0a-5d1f-4f3e-9a59-1f8f7c1d2e33"`
	CreatorID         uuid.UUID       `json:"creator_id" example:"6f1c1c4e-8f53-4a57-a2d4-0f3d7a9f2b11"`
	Amount            decimal.Decimal `json:"amount" swaggertype:"string" example:"50.00"`
	Status            string          `json:"status" example:"PROCESSING"`
	PaymentMethod     string          `json:"payment_method" example:"bank_transfer"`
	ProviderReference *string         `json:"provider_reference,omitempty" example:"tr_123"`
	FailureReason     *string         `json:"failure_reason,omitempty"`
	ProcessedAt       *time.Time      `json:"processed_at,omitempty"`
	CreatedAt         time.Time       `json:"created_at" example:"2024-06-01T12:00:00Z"`
}

func NewPayoutResponse(p *domain.Payout) PayoutResponseDTO {
	return PayoutResponseDTO{
		ID:                p.ID,
		RequestID:         p.RequestID,
		CreatorID:         p.CreatorID,
		Amount:            p.Amount,
		Status:            string(p.Status),
		PaymentMethod:     p.PaymentMethod,
		ProviderReference: p.ProviderReference,
		FailureReason:     p.FailureReason,
		ProcessedAt:       p.ProcessedAt,
		CreatedAt:         p.CreatedAt,
	}
}

type AuditEntryDTO struct {
	EntityType string    `json:"entity_type" example:"payout_request"`
	EntityID   string    `json:"entity_id" example:"0b6e3c0a-5d1f-4f3e-9a59-1f8f7c1d2e33"`
	Action     string    `json:"action" example:"approve"`
	PrevState  string    `json:"prev_state" example:"PENDING"`
	NextState  string    `json:"next_state" example:"APPROVED"`
	Actor      string    `json:"actor" example:"admin:6f1c1c4e-8f53-4a57-a2d4-0f3d7a9f2b11"`
	Details    string    `json:"details,omitempty"`
	CreatedAt  time.Time `json:"created_at" example:"2024-06-01T12:00:00Z"`
}

func NewAuditHistory(entries []domain.AuditEntry) []AuditEntryDTO {
	response := make([]AuditEntryDTO, len(entries))
	for i, e := range entries {
		response[i] = AuditEntryDTO{
			EntityType: e.EntityType,
			EntityID:   e.EntityID,
			Action:     e.Action,
			PrevState:  e.PrevState,
			NextState:  e.NextState,
			Actor:      e.Actor,
			Details:    e.Details,
			CreatedAt:  e.CreatedAt,
		}
	}
	return response
}
