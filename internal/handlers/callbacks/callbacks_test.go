package callbacks

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	gomock "go.uber.org/mock/gomock"

	"github.com/GlebRadaev/creator-ledger/internal/domain"
)

type mocks struct {
	accrualService  *MockAccrualService
	balanceService  *MockBalanceService
	executorService *MockExecutorService
}

var (
	creatorID = uuid.MustParse("6f1c1c4e-8f53-4a57-a2d4-0f3d7a9f2b11")
	payoutID  = uuid.MustParse("9a3d7a61-2c1b-4bb0-a6a4-5c0f0e3b7d44")
)

func NewMock(t *testing.T) (*CallbackHandler, *mocks) {
	ctrl := gomock.NewController(t)
	m := &mocks{
		accrualService:  NewMockAccrualService(ctrl),
		balanceService:  NewMockBalanceService(ctrl),
		executorService: NewMockExecutorService(ctrl),
	}
	return New(m.accrualService, m.balanceService, m.executorService), m
}

func newRequest(body string, params map[string]string) *http.Request {
	r := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(body))
	rctx := chi.NewRouteContext()
	for k, v := range params {
		rctx.URLParams.Add(k, v)
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func TestPurchaseCompletedHandler(t *testing.T) {
	handler, m := NewMock(t)
	pendingUntil := time.Date(2024, 6, 2, 12, 0, 0, 0, time.UTC)
	fact := domain.PurchaseFact{
		PurchaseID: "ord_1",
		CreatorID:  creatorID,
		Amount:     decimal.RequireFromString("19.99"),
		BasePrice:  decimal.NewNullDecimal(decimal.RequireFromString("15.00")),
	}
	accrued := &domain.Purchase{
		ID:                    "ord_1",
		CreatorID:             creatorID,
		Amount:                fact.Amount,
		Status:                domain.PurchaseCompleted,
		EarningsAccruedAmount: decimal.NewNullDecimal(decimal.RequireFromString("15.99")),
		EarningsPendingUntil:  &pendingUntil,
	}
	body := `{"purchase_id":"ord_1","creator_id":"` + creatorID.String() + `","amount":"19.99","base_price":"15.00"}`

	tests := []struct {
		name          string
		body          string
		prepareMock   func()
		expectedCode  int
		expectedBody  string
		expectedError string
	}{
		{
			name: "Accrued",
			body: body,
			prepareMock: func() {
				m.accrualService.EXPECT().RecordPurchase(gomock.Any(), fact).Return(accrued, nil)
			},
			expectedCode: http.StatusCreated,
			expectedBody: `"earnings_accrued":"15.99"`,
		},
		{
			name: "Redelivered",
			body: body,
			prepareMock: func() {
				m.accrualService.EXPECT().RecordPurchase(gomock.Any(), fact).Return(accrued, domain.ErrAlreadyAccrued)
			},
			expectedCode: http.StatusOK,
			expectedBody: `"purchase_id":"ord_1"`,
		},
		{
			name: "Without base price",
			body: `{"purchase_id":"ord_2","creator_id":"` + creatorID.String() + `","amount":"10"}`,
			prepareMock: func() {
				m.accrualService.EXPECT().RecordPurchase(gomock.Any(), domain.PurchaseFact{
					PurchaseID: "ord_2",
					CreatorID:  creatorID,
					Amount:     decimal.RequireFromString("10"),
				}).Return(&domain.Purchase{ID: "ord_2", CreatorID: creatorID}, nil)
			},
			expectedCode: http.StatusCreated,
		},
		{
			name: "Unknown creator",
			body: body,
			prepareMock: func() {
				m.accrualService.EXPECT().RecordPurchase(gomock.Any(), fact).Return(nil, domain.ErrUnknownCreator)
			},
			expectedCode:  http.StatusUnprocessableEntity,
			expectedError: domain.ErrUnknownCreator.Error(),
		},
		{
			name: "Mismatched redelivery",
			body: body,
			prepareMock: func() {
				m.accrualService.EXPECT().RecordPurchase(gomock.Any(), fact).Return(nil, domain.ErrPurchaseMismatch)
			},
			expectedCode:  http.StatusConflict,
			expectedError: domain.ErrPurchaseMismatch.Error(),
		},
		{
			name:          "Invalid request body",
			body:          `{"purchase_id":1}`,
			prepareMock:   func() {},
			expectedCode:  http.StatusBadRequest,
			expectedError: "invalid request body",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.prepareMock()
			w := httptest.NewRecorder()
			handler.PurchaseCompleted(w, newRequest(tt.body, nil))

			assert.Equal(t, tt.expectedCode, w.Code)
			if tt.expectedError != "" {
				assert.Contains(t, w.Body.String(), tt.expectedError)
			}
			if tt.expectedBody != "" {
				assert.Contains(t, w.Body.String(), tt.expectedBody)
			}
		})
	}
}

func TestCreatorRegisteredHandler(t *testing.T) {
	handler, m := NewMock(t)

	tests := []struct {
		name         string
		body         string
		prepareMock  func()
		expectedCode int
	}{
		{
			name: "Registered",
			body: `{"creator_id":"` + creatorID.String() + `"}`,
			prepareMock: func() {
				m.balanceService.EXPECT().RegisterCreator(gomock.Any(), creatorID).
					Return(&domain.CreatorBalance{CreatorID: creatorID, PayoutStatus: domain.CreatorActive}, nil)
			},
			expectedCode: http.StatusOK,
		},
		{
			name:         "Missing creator id",
			body:         `{}`,
			prepareMock:  func() {},
			expectedCode: http.StatusBadRequest,
		},
		{
			name: "Internal server error",
			body: `{"creator_id":"` + creatorID.String() + `"}`,
			prepareMock: func() {
				m.balanceService.EXPECT().RegisterCreator(gomock.Any(), creatorID).Return(nil, errors.New("error"))
			},
			expectedCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.prepareMock()
			w := httptest.NewRecorder()
			handler.CreatorRegistered(w, newRequest(tt.body, nil))
			assert.Equal(t, tt.expectedCode, w.Code)
		})
	}
}

func TestCompletePayoutHandler(t *testing.T) {
	handler, m := NewMock(t)
	ref := "tr_123"

	tests := []struct {
		name          string
		id            string
		body          string
		prepareMock   func()
		expectedCode  int
		expectedError string
	}{
		{
			name: "Completed",
			id:   payoutID.String(),
			body: `{"provider_reference":"tr_123"}`,
			prepareMock: func() {
				m.executorService.EXPECT().Complete(gomock.Any(), payoutID, ref).
					Return(&domain.Payout{ID: payoutID, Status: domain.PayoutCompleted, ProviderReference: &ref}, nil)
			},
			expectedCode: http.StatusOK,
		},
		{
			name:          "Missing reference",
			id:            payoutID.String(),
			body:          `{}`,
			prepareMock:   func() {},
			expectedCode:  http.StatusBadRequest,
			expectedError: "invalid request body",
		},
		{
			name:          "Invalid id",
			id:            "p-1",
			body:          `{"provider_reference":"tr_123"}`,
			prepareMock:   func() {},
			expectedCode:  http.StatusBadRequest,
			expectedError: "invalid id",
		},
		{
			name: "Unknown payout",
			id:   payoutID.String(),
			body: `{"provider_reference":"tr_123"}`,
			prepareMock: func() {
				m.executorService.EXPECT().Complete(gomock.Any(), payoutID, ref).Return(nil, domain.ErrPayoutNotFound)
			},
			expectedCode:  http.StatusNotFound,
			expectedError: domain.ErrPayoutNotFound.Error(),
		},
		{
			name: "Broken link is not exposed",
			id:   payoutID.String(),
			body: `{"provider_reference":"tr_123"}`,
			prepareMock: func() {
				m.executorService.EXPECT().Complete(gomock.Any(), payoutID, ref).Return(nil, domain.ErrRequestLinkBroken)
			},
			expectedCode:  http.StatusInternalServerError,
			expectedError: "Internal server error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.prepareMock()
			w := httptest.NewRecorder()
			handler.CompletePayout(w, newRequest(tt.body, map[string]string{"id": tt.id}))

			assert.Equal(t, tt.expectedCode, w.Code)
			if tt.expectedError != "" {
				assert.Contains(t, w.Body.String(), tt.expectedError)
				return
			}
			assert.Contains(t, w.Body.String(), `"provider_reference":"tr_123"`)
		})
	}
}

func TestFailPayoutHandler(t *testing.T) {
	handler, m := NewMock(t)

	tests := []struct {
		name          string
		prepareMock   func()
		expectedCode  int
		expectedError string
	}{
		{
			name: "Failed",
			prepareMock: func() {
				reason := "account closed"
				m.executorService.EXPECT().Fail(gomock.Any(), payoutID, "account closed").
					Return(&domain.Payout{ID: payoutID, Status: domain.PayoutFailed, FailureReason: &reason}, nil)
			},
			expectedCode: http.StatusOK,
		},
		{
			name: "Already completed",
			prepareMock: func() {
				m.executorService.EXPECT().Fail(gomock.Any(), payoutID, "account closed").Return(nil, domain.ErrInvalidPayoutState)
			},
			expectedCode:  http.StatusConflict,
			expectedError: domain.ErrInvalidPayoutState.Error(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.prepareMock()
			w := httptest.NewRecorder()
			handler.FailPayout(w, newRequest(`{"reason":"account closed"}`, map[string]string{"id": payoutID.String()}))

			assert.Equal(t, tt.expectedCode, w.Code)
			if tt.expectedError != "" {
				assert.Contains(t, w.Body.String(), tt.expectedError)
				return
			}
			assert.Contains(t, w.Body.String(), `"status":"FAILED"`)
		})
	}
}
