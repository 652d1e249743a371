package common

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/GlebRadaev/creator-ledger/internal/domain"
	"github.com/GlebRadaev/creator-ledger/pkg/auth"
	"github.com/GlebRadaev/creator-ledger/pkg/utils"
)

var ErrInvalidID = errors.New("invalid id")

var statuses = []struct {
	target error
	code   int
}{
	{domain.ErrInsufficientBalance, http.StatusPaymentRequired},
	{domain.ErrNotEligible, http.StatusForbidden},
	{domain.ErrRequestNotFound, http.StatusNotFound},
	{domain.ErrPayoutNotFound, http.StatusNotFound},
	{domain.ErrUnknownCreator, http.StatusNotFound},
	{domain.ErrInvalidRequestState, http.StatusConflict},
	{domain.ErrInvalidPayoutState, http.StatusConflict},
	{domain.ErrDuplicatePayout, http.StatusConflict},
	{domain.ErrPurchaseMismatch, http.StatusConflict},
	{domain.ErrConcurrentUpdate, http.StatusConflict},
	{domain.ErrRepairUnsafe, http.StatusConflict},
	{domain.ErrBelowMinimumPayout, http.StatusUnprocessableEntity},
	{domain.ErrPurchaseNotCompleted, http.StatusUnprocessableEntity},
	{domain.ErrInvalidAmount, http.StatusBadRequest},
	{domain.ErrInvalidPurchase, http.StatusBadRequest},
	{domain.ErrInvalidStatus, http.StatusBadRequest},
	{domain.ErrInvalidPaymentMethod, http.StatusBadRequest},
}

// Status maps a service error to the HTTP status and message returned to the caller.
func Status(err error) (int, string) {
	var notEligible *domain.NotEligibleError
	if errors.As(err, &notEligible) {
		return http.StatusForbidden, notEligible.Error()
	}
	for _, s := range statuses {
		if errors.Is(err, s.target) {
			return s.code, s.target.Error()
		}
	}
	return http.StatusInternalServerError, "Internal server error"
}

func RespondWithError(w http.ResponseWriter, err error) {
	code, message := Status(err)
	if code == http.StatusInternalServerError {
		zap.L().Error("request failed", zap.Error(err), zap.String("class", string(domain.Classify(err))))
	}
	utils.RespondWithError(w, code, message)
}

// Actor builds the audit actor from the authenticated caller.
func Actor(r *http.Request) domain.Actor {
	id, role, ok := auth.FromContext(r.Context())
	if !ok {
		return domain.Actor{}
	}
	return domain.Actor{ID: id, Role: role}
}

func URLParamUUID(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		return uuid.Nil, ErrInvalidID
	}
	return id, nil
}

// Page reads limit and offset query parameters. Missing values are zero.
func Page(r *http.Request) (limit, offset int, err error) {
	query := r.URL.Query()
	if v := query.Get("limit"); v != "" {
		if limit, err = strconv.Atoi(v); err != nil || limit < 0 {
			return 0, 0, errors.New("invalid limit")
		}
	}
	if v := query.Get("offset"); v != "" {
		if offset, err = strconv.Atoi(v); err != nil || offset < 0 {
			return 0, 0, errors.New("invalid offset")
		}
	}
	return limit, offset, nil
}
