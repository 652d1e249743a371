package creator

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/GlebRadaev/creator-ledger/internal/domain"
	"github.com/GlebRadaev/creator-ledger/internal/dto"
	"github.com/GlebRadaev/creator-ledger/internal/handlers/common"
	"github.com/GlebRadaev/creator-ledger/pkg/utils"
)

type BalanceService interface {
	GetBalance(ctx context.Context, creatorID uuid.UUID) (*domain.CreatorBalance, error)
}

type PayoutService interface {
	CreateRequest(ctx context.Context, creatorID uuid.UUID, amount decimal.Decimal) (*domain.PayoutRequest, error)
	Cancel(ctx context.Context, requestID uuid.UUID, actor domain.Actor) (*domain.PayoutRequest, error)
	GetRequest(ctx context.Context, requestID uuid.UUID, actor domain.Actor) (*domain.PayoutRequest, error)
	ListRequests(ctx context.Context, filter domain.RequestFilter) ([]domain.PayoutRequest, error)
}

type CreatorHandler struct {
	balanceService BalanceService
	payoutService  PayoutService
}

func New(balanceService BalanceService, payoutService PayoutService) *CreatorHandler {
	return &CreatorHandler{
		balanceService: balanceService,
		payoutService:  payoutService,
	}
}

// GetBalance godoc
//
//	@Summary		Get creator balance
//	@Description	Lifetime earnings, pending and available balance of the authenticated creator.
//	@Tags			Creator
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	dto.BalanceResponseDTO	"Current balance"
//	@Failure		401	{object}	utils.Response			"Creator not authorized"
//	@Failure		404	{object}	utils.Response			"Creator balance does not exist"
//	@Failure		500	{object}	utils.Response			"Internal server error"
//	@Router			/api/creator/balance [get]
func (h *CreatorHandler) GetBalance(w http.ResponseWriter, r *http.Request) {
	actor := common.Actor(r)

	balance, err := h.balanceService.GetBalance(r.Context(), actor.ID)
	if err != nil {
		common.RespondWithError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.NewBalanceResponse(balance))
}

// CreatePayout godoc
//
//	@Summary		Request a payout
//	@Description	Reserve part of the available balance for a payout. The amount is moved to escrow immediately.
//	@Tags			Creator
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		dto.CreatePayoutRequestDTO		true	"Payout amount"
//	@Success		201		{object}	dto.PayoutRequestResponseDTO	"Payout request created"
//	@Failure		400		{object}	utils.Response					"Malformed amount"
//	@Failure		401		{object}	utils.Response					"Creator not authorized"
//	@Failure		402		{object}	utils.Response					"Insufficient available balance"
//	@Failure		403		{object}	utils.Response					"Creator is not eligible"
//	@Failure		409		{object}	utils.Response					"Payouts are on hold"
//	@Failure		422		{object}	utils.Response					"Amount below minimum payout"
//	@Failure		429		{object}	utils.Response					"Too many requests"
//	@Failure		500		{object}	utils.Response					"Internal server error"
//	@Router			/api/creator/payouts [post]
func (h *CreatorHandler) CreatePayout(w http.ResponseWriter, r *http.Request) {
	actor := common.Actor(r)

	var req dto.CreatePayoutRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	request, err := h.payoutService.CreateRequest(r.Context(), actor.ID, req.Amount)
	if err != nil {
		common.RespondWithError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, dto.NewPayoutRequestResponse(request))
}

// ListPayouts godoc
//
//	@Summary		List own payout requests
//	@Tags			Creator
//	@Security		BearerAuth
//	@Produce		json
//	@Param			limit	query		int								false	"Page size"
//	@Param			offset	query		int								false	"Page offset"
//	@Success		200		{array}		dto.PayoutRequestResponseDTO	"Payout requests, newest first"
//	@Failure		400		{object}	utils.Response					"Invalid paging"
//	@Failure		401		{object}	utils.Response					"Creator not authorized"
//	@Failure		500		{object}	utils.Response					"Internal server error"
//	@Router			/api/creator/payouts [get]
func (h *CreatorHandler) ListPayouts(w http.ResponseWriter, r *http.Request) {
	actor := common.Actor(r)

	limit, offset, err := common.Page(r)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	requests, err := h.payoutService.ListRequests(r.Context(), domain.RequestFilter{
		CreatorID: &actor.ID,
		Limit:     limit,
		Offset:    offset,
	})
	if err != nil {
		common.RespondWithError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.NewPayoutRequestList(requests))
}

// GetPayout godoc
//
//	@Summary		Get own payout request
//	@Tags			Creator
//	@Security		BearerAuth
//	@Produce		json
//	@Param			id	path		string							true	"Payout request id"
//	@Success		200	{object}	dto.PayoutRequestResponseDTO	"Payout request"
//	@Failure		400	{object}	utils.Response					"Invalid id"
//	@Failure		404	{object}	utils.Response					"Payout request not found"
//	@Failure		500	{object}	utils.Response					"Internal server error"
//	@Router			/api/creator/payouts/{id} [get]
func (h *CreatorHandler) GetPayout(w http.ResponseWriter, r *http.Request) {
	requestID, err := common.URLParamUUID(r, "id")
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	request, err := h.payoutService.GetRequest(r.Context(), requestID, common.Actor(r))
	if err != nil {
		common.RespondWithError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.NewPayoutRequestResponse(request))
}

// CancelPayout godoc
//
//	@Summary		Cancel own payout request
//	@Description	Only PENDING or APPROVED requests can be cancelled. Escrow returns to the available balance.
//	@Tags			Creator
//	@Security		BearerAuth
//	@Produce		json
//	@Param			id	path		string							true	"Payout request id"
//	@Success		200	{object}	dto.PayoutRequestResponseDTO	"Cancelled request"
//	@Failure		400	{object}	utils.Response					"Invalid id"
//	@Failure		404	{object}	utils.Response					"Payout request not found"
//	@Failure		409	{object}	utils.Response					"Request can no longer be cancelled"
//	@Failure		500	{object}	utils.Response					"Internal server error"
//	@Router			/api/creator/payouts/{id}/cancel [post]
func (h *CreatorHandler) CancelPayout(w http.ResponseWriter, r *http.Request) {
	requestID, err := common.URLParamUUID(r, "id")
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	request, err := h.payoutService.Cancel(r.Context(), requestID, common.Actor(r))
	if err != nil {
		common.RespondWithError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.NewPayoutRequestResponse(request))
}
