package admin

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/GlebRadaev/creator-ledger/internal/domain"
	"github.com/GlebRadaev/creator-ledger/internal/dto"
	"github.com/GlebRadaev/creator-ledger/internal/handlers/common"
	"github.com/GlebRadaev/creator-ledger/internal/release"
	"github.com/GlebRadaev/creator-ledger/pkg/utils"
)

type BalanceService interface {
	GetBalance(ctx context.Context, creatorID uuid.UUID) (*domain.CreatorBalance, error)
	SetPayoutStatus(ctx context.Context, creatorID uuid.UUID, status domain.CreatorPayoutStatus, actor domain.Actor) (*domain.CreatorBalance, error)
}

type RequestService interface {
	ListRequests(ctx context.Context, filter domain.RequestFilter) ([]domain.PayoutRequest, error)
	Reject(ctx context.Context, requestID uuid.UUID, reason string, actor domain.Actor) (*domain.PayoutRequest, error)
	Cancel(ctx context.Context, requestID uuid.UUID, actor domain.Actor) (*domain.PayoutRequest, error)
	History(ctx context.Context, requestID uuid.UUID) ([]domain.AuditEntry, error)
}

type ExecutorService interface {
	Approve(ctx context.Context, requestID uuid.UUID, actor domain.Actor) (*domain.PayoutRequest, error)
	BeginProcessing(ctx context.Context, requestID uuid.UUID, paymentMethod string, actor domain.Actor) (*domain.Payout, error)
}

type ReleaseService interface {
	RunOnce(ctx context.Context) (release.Summary, error)
}

type ReconcileService interface {
	Run(ctx context.Context) (*domain.ReconciliationReport, error)
	Repair(ctx context.Context, creatorID uuid.UUID, actor domain.Actor) (*domain.RepairResult, error)
}

type AdminHandler struct {
	balanceService   BalanceService
	requestService   RequestService
	executorService  ExecutorService
	releaseService   ReleaseService
	reconcileService ReconcileService
}

func New(
	balanceService BalanceService,
	requestService RequestService,
	executorService ExecutorService,
	releaseService ReleaseService,
	reconcileService ReconcileService,
) *AdminHandler {
	return &AdminHandler{
		balanceService:   balanceService,
		requestService:   requestService,
		executorService:  executorService,
		releaseService:   releaseService,
		reconcileService: reconcileService,
	}
}

// ListPayouts godoc
//
//	@Summary		List payout requests
//	@Tags			Admin
//	@Security		BearerAuth
//	@Produce		json
//	@Param			creator_id	query		string							false	"Creator id"
//	@Param			status		query		string							false	"Comma separated request statuses"
//	@Param			limit		query		int								false	"Page size"
//	@Param			offset		query		int								false	"Page offset"
//	@Success		200			{array}		dto.PayoutRequestResponseDTO	"Payout requests, newest first"
//	@Failure		400			{object}	utils.Response					"Invalid filter"
//	@Failure		403			{object}	utils.Response					"Caller is not an admin"
//	@Failure		500			{object}	utils.Response					"Internal server error"
//	@Router			/api/admin/payouts [get]
func (h *AdminHandler) ListPayouts(w http.ResponseWriter, r *http.Request) {
	filter, err := requestFilter(r)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	requests, err := h.requestService.ListRequests(r.Context(), filter)
	if err != nil {
		common.RespondWithError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.NewPayoutRequestList(requests))
}

func requestFilter(r *http.Request) (domain.RequestFilter, error) {
	var filter domain.RequestFilter
	limit, offset, err := common.Page(r)
	if err != nil {
		return filter, err
	}
	filter.Limit, filter.Offset = limit, offset

	query := r.URL.Query()
	if v := query.Get("creator_id"); v != "" {
		creatorID, err := uuid.Parse(v)
		if err != nil {
			return filter, errors.New("invalid creator_id")
		}
		filter.CreatorID = &creatorID
	}
	if v := query.Get("status"); v != "" {
		for _, s := range strings.Split(v, ",") {
			status := domain.RequestStatus(strings.ToUpper(strings.TrimSpace(s)))
			if !status.Valid() {
				return filter, domain.ErrInvalidStatus
			}
			filter.Statuses = append(filter.Statuses, status)
		}
	}
	return filter, nil
}

// History godoc
//
//	@Summary		Payout request audit trail
//	@Tags			Admin
//	@Security		BearerAuth
//	@Produce		json
//	@Param			id	path		string				true	"Payout request id"
//	@Success		200	{array}		dto.AuditEntryDTO	"Transitions in order"
//	@Failure		400	{object}	utils.Response		"Invalid id"
//	@Failure		500	{object}	utils.Response		"Internal server error"
//	@Router			/api/admin/payouts/{id}/history [get]
func (h *AdminHandler) History(w http.ResponseWriter, r *http.Request) {
	requestID, err := common.URLParamUUID(r, "id")
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	entries, err := h.requestService.History(r.Context(), requestID)
	if err != nil {
		common.RespondWithError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.NewAuditHistory(entries))
}

// Approve godoc
//
//	@Summary		Approve a pending payout request
//	@Tags			Admin
//	@Security		BearerAuth
//	@Produce		json
//	@Param			id	path		string							true	"Payout request id"
//	@Success		200	{object}	dto.PayoutRequestResponseDTO	"Approved request"
//	@Failure		404	{object}	utils.Response					"Payout request not found"
//	@Failure		409	{object}	utils.Response					"Request is not pending"
//	@Failure		500	{object}	utils.Response					"Internal server error"
//	@Router			/api/admin/payouts/{id}/approve [post]
func (h *AdminHandler) Approve(w http.ResponseWriter, r *http.Request) {
	requestID, err := common.URLParamUUID(r, "id")
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	request, err := h.executorService.Approve(r.Context(), requestID, common.Actor(r))
	if err != nil {
		common.RespondWithError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.NewPayoutRequestResponse(request))
}

// Reject godoc
//
//	@Summary		Reject a payout request
//	@Description	PENDING or APPROVED requests only. Escrow returns to the available balance.
//	@Tags			Admin
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string							true	"Payout request id"
//	@Param			request	body		dto.RejectRequestDTO			true	"Rejection reason"
//	@Success		200		{object}	dto.PayoutRequestResponseDTO	"Rejected request"
//	@Failure		400		{object}	utils.Response					"Invalid request"
//	@Failure		404		{object}	utils.Response					"Payout request not found"
//	@Failure		409		{object}	utils.Response					"Request can no longer be rejected"
//	@Failure		500		{object}	utils.Response					"Internal server error"
//	@Router			/api/admin/payouts/{id}/reject [post]
func (h *AdminHandler) Reject(w http.ResponseWriter, r *http.Request) {
	requestID, err := common.URLParamUUID(r, "id")
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req dto.RejectRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	request, err := h.requestService.Reject(r.Context(), requestID, req.Reason, common.Actor(r))
	if err != nil {
		common.RespondWithError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.NewPayoutRequestResponse(request))
}

// Process godoc
//
//	@Summary		Start processing an approved payout request
//	@Description	Creates the payout and submits it to the payment provider. A refused submission returns the FAILED payout; an unanswered one returns it PENDING.
//	@Tags			Admin
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string					true	"Payout request id"
//	@Param			request	body		dto.ProcessRequestDTO	true	"Payment method"
//	@Success		200		{object}	dto.PayoutResponseDTO	"Created payout"
//	@Failure		400		{object}	utils.Response			"Invalid request"
//	@Failure		402		{object}	utils.Response			"Escrow can no longer be reserved"
//	@Failure		403		{object}	utils.Response			"Creator is not eligible"
//	@Failure		404		{object}	utils.Response			"Payout request not found"
//	@Failure		409		{object}	utils.Response			"Request is not approved"
//	@Failure		500		{object}	utils.Response			"Internal server error"
//	@Router			/api/admin/payouts/{id}/process [post]
func (h *AdminHandler) Process(w http.ResponseWriter, r *http.Request) {
	requestID, err := common.URLParamUUID(r, "id")
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req dto.ProcessRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	payout, err := h.executorService.BeginProcessing(r.Context(), requestID, req.PaymentMethod, common.Actor(r))
	if err != nil {
		common.RespondWithError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.NewPayoutResponse(payout))
}

// Cancel godoc
//
//	@Summary		Cancel a payout request
//	@Tags			Admin
//	@Security		BearerAuth
//	@Produce		json
//	@Param			id	path		string							true	"Payout request id"
//	@Success		200	{object}	dto.PayoutRequestResponseDTO	"Cancelled request"
//	@Failure		404	{object}	utils.Response					"Payout request not found"
//	@Failure		409	{object}	utils.Response					"Request can no longer be cancelled"
//	@Failure		500	{object}	utils.Response					"Internal server error"
//	@Router			/api/admin/payouts/{id}/cancel [post]
func (h *AdminHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	requestID, err := common.URLParamUUID(r, "id")
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	request, err := h.requestService.Cancel(r.Context(), requestID, common.Actor(r))
	if err != nil {
		common.RespondWithError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.NewPayoutRequestResponse(request))
}

// GetCreatorBalance godoc
//
//	@Summary		Get any creator's balance
//	@Tags			Admin
//	@Security		BearerAuth
//	@Produce		json
//	@Param			creatorID	path		string					true	"Creator id"
//	@Success		200			{object}	dto.BalanceResponseDTO	"Current balance"
//	@Failure		404			{object}	utils.Response			"Creator balance does not exist"
//	@Failure		500			{object}	utils.Response			"Internal server error"
//	@Router			/api/admin/creators/{creatorID}/balance [get]
func (h *AdminHandler) GetCreatorBalance(w http.ResponseWriter, r *http.Request) {
	creatorID, err := common.URLParamUUID(r, "creatorID")
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	balance, err := h.balanceService.GetBalance(r.Context(), creatorID)
	if err != nil {
		common.RespondWithError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.NewBalanceResponse(balance))
}

// SetPayoutStatus godoc
//
//	@Summary		Change a creator's payout status
//	@Tags			Admin
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			creatorID	path		string						true	"Creator id"
//	@Param			request		body		dto.PayoutStatusRequestDTO	true	"ACTIVE, ON_HOLD or SUSPENDED"
//	@Success		200			{object}	dto.BalanceResponseDTO		"Updated balance"
//	@Failure		400			{object}	utils.Response				"Unknown status"
//	@Failure		404			{object}	utils.Response				"Creator balance does not exist"
//	@Failure		500			{object}	utils.Response				"Internal server error"
//	@Router			/api/admin/creators/{creatorID}/payout-status [put]
func (h *AdminHandler) SetPayoutStatus(w http.ResponseWriter, r *http.Request) {
	creatorID, err := common.URLParamUUID(r, "creatorID")
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req dto.PayoutStatusRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	status := domain.CreatorPayoutStatus(strings.ToUpper(req.Status))
	balance, err := h.balanceService.SetPayoutStatus(r.Context(), creatorID, status, common.Actor(r))
	if err != nil {
		common.RespondWithError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.NewBalanceResponse(balance))
}

// ReleaseHolds godoc
//
//	@Summary		Run the hold release sweep now
//	@Tags			Admin
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	release.Summary	"Sweep outcome"
//	@Failure		409	{object}	utils.Response	"Another instance is sweeping"
//	@Failure		500	{object}	utils.Response	"Internal server error"
//	@Router			/api/admin/holds/release [post]
func (h *AdminHandler) ReleaseHolds(w http.ResponseWriter, r *http.Request) {
	summary, err := h.releaseService.RunOnce(r.Context())
	if err != nil {
		if errors.Is(err, release.ErrLocked) {
			utils.RespondWithError(w, http.StatusConflict, err.Error())
			return
		}
		common.RespondWithError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, summary)
}

// Reconcile godoc
//
//	@Summary		Run the reconciliation guard
//	@Description	Read-only check of every balance against purchases, requests and payouts.
//	@Tags			Admin
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	domain.ReconciliationReport	"Report with all mismatches found"
//	@Failure		500	{object}	utils.Response				"Internal server error"
//	@Router			/api/admin/reconciliation [post]
func (h *AdminHandler) Reconcile(w http.ResponseWriter, r *http.Request) {
	report, err := h.reconcileService.Run(r.Context())
	if err != nil {
		common.RespondWithError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, report)
}

// Repair godoc
//
//	@Summary		Repair a creator's balance
//	@Description	Recomputes pending and available balance from purchases and payouts. Lifetime earnings are never lowered.
//	@Tags			Admin
//	@Security		BearerAuth
//	@Produce		json
//	@Param			creatorID	path		string					true	"Creator id"
//	@Success		200			{object}	dto.RepairResponseDTO	"Balance before and after"
//	@Failure		404			{object}	utils.Response			"Creator balance does not exist"
//	@Failure		409			{object}	utils.Response			"Repair is unsafe or the balance changed"
//	@Failure		500			{object}	utils.Response			"Internal server error"
//	@Router			/api/admin/reconciliation/{creatorID}/repair [post]
func (h *AdminHandler) Repair(w http.ResponseWriter, r *http.Request) {
	creatorID, err := common.URLParamUUID(r, "creatorID")
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.reconcileService.Repair(r.Context(), creatorID, common.Actor(r))
	if err != nil {
		common.RespondWithError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.NewRepairResponse(result))
}
