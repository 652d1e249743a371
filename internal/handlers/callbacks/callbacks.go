package callbacks

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/GlebRadaev/creator-ledger/internal/domain"
	"github.com/GlebRadaev/creator-ledger/internal/dto"
	"github.com/GlebRadaev/creator-ledger/internal/handlers/common"
	"github.com/GlebRadaev/creator-ledger/pkg/utils"
)

type AccrualService interface {
	RecordPurchase(ctx context.Context, fact domain.PurchaseFact) (*domain.Purchase, error)
}

type BalanceService interface {
	RegisterCreator(ctx context.Context, creatorID uuid.UUID) (*domain.CreatorBalance, error)
}

type ExecutorService interface {
	Complete(ctx context.Context, payoutID uuid.UUID, providerReference string) (*domain.Payout, error)
	Fail(ctx context.Context, payoutID uuid.UUID, reason string) (*domain.Payout, error)
}

type CallbackHandler struct {
	accrualService  AccrualService
	balanceService  BalanceService
	executorService ExecutorService
}

func New(accrualService AccrualService, balanceService BalanceService, executorService ExecutorService) *CallbackHandler {
	return &CallbackHandler{
		accrualService:  accrualService,
		balanceService:  balanceService,
		executorService: executorService,
	}
}

// PurchaseCompleted godoc
//
//	@Summary		Record a completed purchase
//	@Description	Credits the creator share to pending balance exactly once. Redelivery of the same fact returns 200.
//	@Tags			Callbacks
//	@Accept			json
//	@Produce		json
//	@Param			X-Signature	header		string						true	"sha256=<hex HMAC of the body>"
//	@Param			request		body		dto.PurchaseCompletedDTO	true	"Purchase fact"
//	@Success		201			{object}	dto.PurchaseResponseDTO		"Earnings accrued"
//	@Success		200			{object}	dto.PurchaseResponseDTO		"Already accrued"
//	@Failure		400			{object}	utils.Response				"Invalid purchase"
//	@Failure		401			{object}	utils.Response				"Invalid signature"
//	@Failure		409			{object}	utils.Response				"Purchase recorded with different data"
//	@Failure		422			{object}	utils.Response				"Unknown creator"
//	@Failure		500			{object}	utils.Response				"Internal server error"
//	@Router			/api/internal/purchases/completed [post]
func (h *CallbackHandler) PurchaseCompleted(w http.ResponseWriter, r *http.Request) {
	var req dto.PurchaseCompletedDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	purchase, err := h.accrualService.RecordPurchase(r.Context(), domain.PurchaseFact{
		PurchaseID: req.PurchaseID,
		CreatorID:  req.CreatorID,
		Amount:     req.Amount,
		BasePrice:  req.BasePrice,
	})
	switch {
	case err == nil:
		utils.RespondWithJSON(w, http.StatusCreated, dto.NewPurchaseResponse(purchase))
	case errors.Is(err, domain.ErrAlreadyAccrued):
		utils.RespondWithJSON(w, http.StatusOK, dto.NewPurchaseResponse(purchase))
	case errors.Is(err, domain.ErrUnknownCreator):
		utils.RespondWithError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		common.RespondWithError(w, err)
	}
}

// CreatorRegistered godoc
//
//	@Summary		Open a balance for a new creator
//	@Tags			Callbacks
//	@Accept			json
//	@Produce		json
//	@Param			X-Signature	header		string						true	"sha256=<hex HMAC of the body>"
//	@Param			request		body		dto.CreatorRegisteredDTO	true	"Creator"
//	@Success		200			{object}	dto.BalanceResponseDTO		"Balance, new or existing"
//	@Failure		400			{object}	utils.Response				"Invalid creator id"
//	@Failure		401			{object}	utils.Response				"Invalid signature"
//	@Failure		500			{object}	utils.Response				"Internal server error"
//	@Router			/api/internal/creators [post]
func (h *CallbackHandler) CreatorRegistered(w http.ResponseWriter, r *http.Request) {
	var req dto.CreatorRegisteredDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.CreatorID == uuid.Nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	balance, err := h.balanceService.RegisterCreator(r.Context(), req.CreatorID)
	if err != nil {
		common.RespondWithError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.NewBalanceResponse(balance))
}

// CompletePayout godoc
//
//	@Summary		Provider confirms a payout
//	@Tags			Callbacks
//	@Accept			json
//	@Produce		json
//	@Param			X-Signature	header		string					true	"sha256=<hex HMAC of the body>"
//	@Param			id			path		string					true	"Payout id"
//	@Param			request		body		dto.CompletePayoutDTO	true	"Provider reference"
//	@Success		200			{object}	dto.PayoutResponseDTO	"Completed payout"
//	@Failure		400			{object}	utils.Response			"Invalid request"
//	@Failure		401			{object}	utils.Response			"Invalid signature"
//	@Failure		404			{object}	utils.Response			"Payout not found"
//	@Failure		409			{object}	utils.Response			"Payout already finished differently"
//	@Failure		500			{object}	utils.Response			"Internal server error"
//	@Router			/api/provider/payouts/{id}/complete [post]
func (h *CallbackHandler) CompletePayout(w http.ResponseWriter, r *http.Request) {
	payoutID, err := common.URLParamUUID(r, "id")
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req dto.CompletePayoutDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ProviderReference == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	payout, err := h.executorService.Complete(r.Context(), payoutID, req.ProviderReference)
	if err != nil {
		common.RespondWithError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.NewPayoutResponse(payout))
}

// FailPayout godoc
//
//	@Summary		Provider reports a failed payout
//	@Description	The request goes back to APPROVED and the amount returns to the available balance.
//	@Tags			Callbacks
//	@Accept			json
//	@Produce		json
//	@Param			X-Signature	header		string					true	"sha256=<hex HMAC of the body>"
//	@Param			id			path		string					true	"Payout id"
//	@Param			request		body		dto.FailPayoutDTO		true	"Failure reason"
//	@Success		200			{object}	dto.PayoutResponseDTO	"Failed payout"
//	@Failure		400			{object}	utils.Response			"Invalid request"
//	@Failure		401			{object}	utils.Response			"Invalid signature"
//	@Failure		404			{object}	utils.Response			"Payout not found"
//	@Failure		409			{object}	utils.Response			"Payout already completed"
//	@Failure		500			{object}	utils.Response			"Internal server error"
//	@Router			/api/provider/payouts/{id}/fail [post]
func (h *CallbackHandler) FailPayout(w http.ResponseWriter, r *http.Request) {
	payoutID, err := common.URLParamUUID(r, "id")
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req dto.FailPayoutDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	payout, err := h.executorService.Fail(r.Context(), payoutID, req.Reason)
	if err != nil {
		common.RespondWithError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.NewPayoutResponse(payout))
}
