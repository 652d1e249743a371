package executorservice

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gomock "go.uber.org/mock/gomock"

	"github.com/GlebRadaev/creator-ledger/internal/domain"
	"github.com/GlebRadaev/creator-ledger/internal/pg"
)

var (
	creatorID = uuid.MustParse("7d6f0a3e-1c55-4b7e-9a43-5e2f1f0d9c11")
	requestID = uuid.MustParse("5a1c9e77-0d2b-4f7c-bd54-8f7b0a1e2c33")
	payoutID  = uuid.MustParse("9b8e2d11-6f4a-4c1d-8e3b-2a7c5d9f0e44")
	admin     = domain.Actor{ID: uuid.MustParse("11111111-2222-4333-8444-555555555555"), Role: domain.RoleAdmin}
	fixedNow  = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	nine      = decimal.RequireFromString("9.00")
)

type mocks struct {
	requestRepo *MockRequestRepo
	payoutRepo  *MockPayoutRepo
	balanceRepo *MockBalanceRepo
	auditRepo   *MockAuditRepo
	provider    *MockProvider
	eligibility *MockEligibilityChecker
	txManager   *pg.MockTXManager
}

func NewMock(t *testing.T) (*Service, *mocks) {
	ctrl := gomock.NewController(t)
	m := &mocks{
		requestRepo: NewMockRequestRepo(ctrl),
		payoutRepo:  NewMockPayoutRepo(ctrl),
		balanceRepo: NewMockBalanceRepo(ctrl),
		auditRepo:   NewMockAuditRepo(ctrl),
		provider:    NewMockProvider(ctrl),
		eligibility: NewMockEligibilityChecker(ctrl),
		txManager:   pg.NewMockTXManager(ctrl),
	}
	service := New(m.requestRepo, m.payoutRepo, m.balanceRepo, m.auditRepo, m.provider, m.eligibility, m.txManager)
	service.newID = func() uuid.UUID { return payoutID }
	service.now = func() time.Time { return fixedNow }
	return service, m
}

func (m *mocks) passThroughTx() {
	m.txManager.EXPECT().Begin(gomock.Any(), gomock.Any()).DoAndReturn(func(ctx context.Context, fn pg.TransactionalFn) error {
		return fn(ctx)
	})
}

func request(status domain.RequestStatus, escrow bool, linked bool) *domain.PayoutRequest {
	req := &domain.PayoutRequest{ID: requestID, CreatorID: creatorID, RequestedAmount: nine, Status: status, EscrowHeld: escrow}
	if linked {
		id := payoutID
		req.PayoutID = &id
	}
	return req
}

func payout(status domain.PayoutStatus) *domain.Payout {
	return &domain.Payout{ID: payoutID, RequestID: requestID, CreatorID: creatorID, Amount: nine, Status: status, PaymentMethod: "bank_transfer"}
}

func TestApprove(t *testing.T) {
	service, m := NewMock(t)
	approve := domain.RequestTransition{From: []domain.RequestStatus{domain.RequestPending}, To: domain.RequestApproved}

	tests := []struct {
		name          string
		prepareMock   func()
		expectedError error
	}{
		{
			name: "Pending request is approved",
			prepareMock: func() {
				m.passThroughTx()
				m.requestRepo.EXPECT().LockRequest(gomock.Any(), requestID).Return(request(domain.RequestPending, true, false), nil)
				m.requestRepo.EXPECT().TransitionRequest(gomock.Any(), requestID, approve).Return(request(domain.RequestApproved, true, false), nil)
				m.auditRepo.EXPECT().Record(gomock.Any(), &domain.AuditEntry{
					EntityType: domain.EntityPayoutRequest,
					EntityID:   requestID.String(),
					Action:     "approve",
					PrevState:  "PENDING",
					NextState:  "APPROVED",
					Actor:      admin.String(),
				}).Return(nil)
			},
		},
		{
			name: "Cancelled request cannot be approved",
			prepareMock: func() {
				m.passThroughTx()
				m.requestRepo.EXPECT().LockRequest(gomock.Any(), requestID).Return(request(domain.RequestCancelled, false, false), nil)
				m.requestRepo.EXPECT().TransitionRequest(gomock.Any(), requestID, approve).Return(nil, nil)
			},
			expectedError: domain.ErrInvalidRequestState,
		},
		{
			name: "Unknown request",
			prepareMock: func() {
				m.passThroughTx()
				m.requestRepo.EXPECT().LockRequest(gomock.Any(), requestID).Return(nil, nil)
			},
			expectedError: domain.ErrRequestNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.prepareMock()

			req, err := service.Approve(context.Background(), requestID, admin)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, req)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, domain.RequestApproved, req.Status)
		})
	}
}

func TestBeginProcessing(t *testing.T) {
	service, m := NewMock(t)
	eligible := &domain.Eligibility{Eligible: true, Destination: "acct_42"}
	newPayout := &domain.Payout{
		ID:            payoutID,
		RequestID:     requestID,
		CreatorID:     creatorID,
		Amount:        nine,
		Status:        domain.PayoutPending,
		PaymentMethod: "bank_transfer",
	}
	transfer := domain.Transfer{PayoutID: payoutID, CreatorID: creatorID, Amount: nine, PaymentMethod: "bank_transfer", Destination: "acct_42"}
	toProcessing := domain.PayoutTransition{From: []domain.PayoutStatus{domain.PayoutPending}, To: domain.PayoutProcessing}

	tests := []struct {
		name           string
		paymentMethod  string
		prepareMock    func()
		expectedStatus domain.PayoutStatus
		expectedError  error
	}{
		{
			name:          "Creates one payout and hands it to the provider",
			paymentMethod: "bank_transfer",
			prepareMock: func() {
				m.requestRepo.EXPECT().GetRequest(gomock.Any(), requestID).Return(request(domain.RequestApproved, true, false), nil)
				m.eligibility.EXPECT().Check(gomock.Any(), creatorID).Return(eligible, nil)
				m.passThroughTx()
				m.requestRepo.EXPECT().LockRequest(gomock.Any(), requestID).Return(request(domain.RequestApproved, true, false), nil)
				m.payoutRepo.EXPECT().CreatePayout(gomock.Any(), newPayout).Return(payout(domain.PayoutPending), nil)
				m.requestRepo.EXPECT().AttachPayout(gomock.Any(), requestID, payoutID).Return(request(domain.RequestProcessing, true, true), nil)
				m.auditRepo.EXPECT().Record(gomock.Any(), gomock.Any()).Return(nil)
				m.provider.EXPECT().SubmitTransfer(gomock.Any(), transfer).Return(nil)
				m.payoutRepo.EXPECT().TransitionPayout(gomock.Any(), payoutID, toProcessing).Return(payout(domain.PayoutProcessing), nil)
				m.auditRepo.EXPECT().Record(gomock.Any(), gomock.Any()).Return(nil)
			},
			expectedStatus: domain.PayoutProcessing,
		},
		{
			name:          "Re-reserves escrow after a failed attempt",
			paymentMethod: "bank_transfer",
			prepareMock: func() {
				m.requestRepo.EXPECT().GetRequest(gomock.Any(), requestID).Return(request(domain.RequestApproved, false, false), nil)
				m.eligibility.EXPECT().Check(gomock.Any(), creatorID).Return(eligible, nil)
				m.passThroughTx()
				m.requestRepo.EXPECT().LockRequest(gomock.Any(), requestID).Return(request(domain.RequestApproved, false, false), nil)
				m.balanceRepo.EXPECT().ReserveAvailable(gomock.Any(), creatorID, nine).Return(&domain.CreatorBalance{CreatorID: creatorID}, nil)
				m.payoutRepo.EXPECT().CreatePayout(gomock.Any(), newPayout).Return(payout(domain.PayoutPending), nil)
				m.requestRepo.EXPECT().AttachPayout(gomock.Any(), requestID, payoutID).Return(request(domain.RequestProcessing, true, true), nil)
				m.auditRepo.EXPECT().Record(gomock.Any(), gomock.Any()).Return(nil)
				m.provider.EXPECT().SubmitTransfer(gomock.Any(), transfer).Return(nil)
				m.payoutRepo.EXPECT().TransitionPayout(gomock.Any(), payoutID, toProcessing).Return(payout(domain.PayoutProcessing), nil)
				m.auditRepo.EXPECT().Record(gomock.Any(), gomock.Any()).Return(nil)
			},
			expectedStatus: domain.PayoutProcessing,
		},
		{
			name:          "Balance spent since the failed attempt",
			paymentMethod: "bank_transfer",
			prepareMock: func() {
				m.requestRepo.EXPECT().GetRequest(gomock.Any(), requestID).Return(request(domain.RequestApproved, false, false), nil)
				m.eligibility.EXPECT().Check(gomock.Any(), creatorID).Return(eligible, nil)
				m.passThroughTx()
				m.requestRepo.EXPECT().LockRequest(gomock.Any(), requestID).Return(request(domain.RequestApproved, false, false), nil)
				m.balanceRepo.EXPECT().ReserveAvailable(gomock.Any(), creatorID, nine).Return(nil, nil)
			},
			expectedError: domain.ErrInsufficientBalance,
		},
		{
			name:          "Second call on a linked request",
			paymentMethod: "bank_transfer",
			prepareMock: func() {
				m.requestRepo.EXPECT().GetRequest(gomock.Any(), requestID).Return(request(domain.RequestProcessing, true, true), nil)
			},
			expectedError: domain.ErrDuplicatePayout,
		},
		{
			name:          "Concurrent call links first",
			paymentMethod: "bank_transfer",
			prepareMock: func() {
				m.requestRepo.EXPECT().GetRequest(gomock.Any(), requestID).Return(request(domain.RequestApproved, true, false), nil)
				m.eligibility.EXPECT().Check(gomock.Any(), creatorID).Return(eligible, nil)
				m.passThroughTx()
				m.requestRepo.EXPECT().LockRequest(gomock.Any(), requestID).Return(request(domain.RequestApproved, true, false), nil)
				m.payoutRepo.EXPECT().CreatePayout(gomock.Any(), newPayout).Return(nil, domain.ErrDuplicatePayout)
			},
			expectedError: domain.ErrDuplicatePayout,
		},
		{
			name:          "Pending request must be approved first",
			paymentMethod: "bank_transfer",
			prepareMock: func() {
				m.requestRepo.EXPECT().GetRequest(gomock.Any(), requestID).Return(request(domain.RequestPending, true, false), nil)
			},
			expectedError: domain.ErrInvalidRequestState,
		},
		{
			name:          "Creator lost eligibility",
			paymentMethod: "bank_transfer",
			prepareMock: func() {
				m.requestRepo.EXPECT().GetRequest(gomock.Any(), requestID).Return(request(domain.RequestApproved, true, false), nil)
				m.eligibility.EXPECT().Check(gomock.Any(), creatorID).
					Return(&domain.Eligibility{MissingRequirements: []string{"bank_details"}}, nil)
			},
			expectedError: domain.ErrNotEligible,
		},
		{
			name:          "Missing payment method",
			paymentMethod: "",
			prepareMock:   func() {},
			expectedError: domain.ErrInvalidPaymentMethod,
		},
		{
			name:          "Provider refuses the transfer",
			paymentMethod: "bank_transfer",
			prepareMock: func() {
				failed := payout(domain.PayoutFailed)
				reason := "submission failed: payment provider rejected transfer: status 422: destination closed"
				failed.FailureReason = &reason

				m.requestRepo.EXPECT().GetRequest(gomock.Any(), requestID).Return(request(domain.RequestApproved, true, false), nil)
				m.eligibility.EXPECT().Check(gomock.Any(), creatorID).Return(eligible, nil)
				m.passThroughTx()
				m.requestRepo.EXPECT().LockRequest(gomock.Any(), requestID).Return(request(domain.RequestApproved, true, false), nil)
				m.payoutRepo.EXPECT().CreatePayout(gomock.Any(), newPayout).Return(payout(domain.PayoutPending), nil)
				m.requestRepo.EXPECT().AttachPayout(gomock.Any(), requestID, payoutID).Return(request(domain.RequestProcessing, true, true), nil)
				m.auditRepo.EXPECT().Record(gomock.Any(), gomock.Any()).Return(nil)
				m.provider.EXPECT().SubmitTransfer(gomock.Any(), transfer).
					Return(fmt.Errorf("%w: status 422: destination closed", domain.ErrTransferRejected))

				m.passThroughTx()
				m.payoutRepo.EXPECT().GetPayout(gomock.Any(), payoutID).Return(payout(domain.PayoutPending), nil)
				m.payoutRepo.EXPECT().TransitionPayout(gomock.Any(), payoutID, domain.PayoutTransition{
					From:          []domain.PayoutStatus{domain.PayoutPending, domain.PayoutProcessing},
					To:            domain.PayoutFailed,
					FailureReason: &reason,
					ProcessedAt:   &fixedNow,
				}).Return(failed, nil)
				m.requestRepo.EXPECT().DetachPayout(gomock.Any(), requestID, payoutID).Return(request(domain.RequestApproved, false, false), nil)
				m.balanceRepo.EXPECT().RestoreAvailable(gomock.Any(), creatorID, nine).Return(&domain.CreatorBalance{CreatorID: creatorID}, nil)
				m.auditRepo.EXPECT().Record(gomock.Any(), gomock.Any()).Return(nil).Times(2)
			},
			expectedStatus: domain.PayoutFailed,
		},
		{
			name:          "Provider times out",
			paymentMethod: "bank_transfer",
			prepareMock: func() {
				m.requestRepo.EXPECT().GetRequest(gomock.Any(), requestID).Return(request(domain.RequestApproved, true, false), nil)
				m.eligibility.EXPECT().Check(gomock.Any(), creatorID).Return(eligible, nil)
				m.passThroughTx()
				m.requestRepo.EXPECT().LockRequest(gomock.Any(), requestID).Return(request(domain.RequestApproved, true, false), nil)
				m.payoutRepo.EXPECT().CreatePayout(gomock.Any(), newPayout).Return(payout(domain.PayoutPending), nil)
				m.requestRepo.EXPECT().AttachPayout(gomock.Any(), requestID, payoutID).Return(request(domain.RequestProcessing, true, true), nil)
				m.auditRepo.EXPECT().Record(gomock.Any(), gomock.Any()).Return(nil)
				m.provider.EXPECT().SubmitTransfer(gomock.Any(), transfer).
					Return(fmt.Errorf("submit transfer %s: %w", payoutID, context.DeadlineExceeded))
			},
			expectedStatus: domain.PayoutPending,
		},
		{
			name:          "Provider answers 503",
			paymentMethod: "bank_transfer",
			prepareMock: func() {
				m.requestRepo.EXPECT().GetRequest(gomock.Any(), requestID).Return(request(domain.RequestApproved, true, false), nil)
				m.eligibility.EXPECT().Check(gomock.Any(), creatorID).Return(eligible, nil)
				m.passThroughTx()
				m.requestRepo.EXPECT().LockRequest(gomock.Any(), requestID).Return(request(domain.RequestApproved, true, false), nil)
				m.payoutRepo.EXPECT().CreatePayout(gomock.Any(), newPayout).Return(payout(domain.PayoutPending), nil)
				m.requestRepo.EXPECT().AttachPayout(gomock.Any(), requestID, payoutID).Return(request(domain.RequestProcessing, true, true), nil)
				m.auditRepo.EXPECT().Record(gomock.Any(), gomock.Any()).Return(nil)
				m.provider.EXPECT().SubmitTransfer(gomock.Any(), transfer).
					Return(errors.New("payment provider returned unexpected status 503"))
			},
			expectedStatus: domain.PayoutPending,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.prepareMock()

			p, err := service.BeginProcessing(context.Background(), requestID, tt.paymentMethod, admin)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, p)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expectedStatus, p.Status)
		})
	}
}

func TestComplete(t *testing.T) {
	service, m := NewMock(t)
	ref := "prov_123"
	completed := payout(domain.PayoutCompleted)
	completed.ProviderReference = &ref
	completed.ProcessedAt = &fixedNow

	tests := []struct {
		name          string
		reference     string
		prepareMock   func()
		expectedError error
	}{
		{
			name:      "Provider confirmation completes payout and request",
			reference: ref,
			prepareMock: func() {
				m.passThroughTx()
				m.payoutRepo.EXPECT().GetPayout(gomock.Any(), payoutID).Return(payout(domain.PayoutProcessing), nil)
				m.payoutRepo.EXPECT().TransitionPayout(gomock.Any(), payoutID, domain.PayoutTransition{
					From:              []domain.PayoutStatus{domain.PayoutPending, domain.PayoutProcessing},
					To:                domain.PayoutCompleted,
					ProviderReference: &ref,
					ProcessedAt:       &fixedNow,
				}).Return(completed, nil)
				m.requestRepo.EXPECT().CompleteRequest(gomock.Any(), requestID, payoutID).Return(request(domain.RequestCompleted, true, true), nil)
				m.auditRepo.EXPECT().Record(gomock.Any(), gomock.Any()).Return(nil).Times(2)
			},
		},
		{
			name:      "Repeated confirmation is a no-op",
			reference: ref,
			prepareMock: func() {
				m.passThroughTx()
				m.payoutRepo.EXPECT().GetPayout(gomock.Any(), payoutID).Return(completed, nil)
			},
		},
		{
			name:      "Confirmation with another reference",
			reference: "prov_999",
			prepareMock: func() {
				m.passThroughTx()
				m.payoutRepo.EXPECT().GetPayout(gomock.Any(), payoutID).Return(completed, nil)
			},
			expectedError: domain.ErrInvalidPayoutState,
		},
		{
			name:      "Failed payout cannot complete",
			reference: ref,
			prepareMock: func() {
				m.passThroughTx()
				m.payoutRepo.EXPECT().GetPayout(gomock.Any(), payoutID).Return(payout(domain.PayoutFailed), nil)
				m.payoutRepo.EXPECT().TransitionPayout(gomock.Any(), payoutID, gomock.Any()).Return(nil, nil)
			},
			expectedError: domain.ErrInvalidPayoutState,
		},
		{
			name:      "Request no longer linked",
			reference: ref,
			prepareMock: func() {
				m.passThroughTx()
				m.payoutRepo.EXPECT().GetPayout(gomock.Any(), payoutID).Return(payout(domain.PayoutProcessing), nil)
				m.payoutRepo.EXPECT().TransitionPayout(gomock.Any(), payoutID, gomock.Any()).Return(completed, nil)
				m.requestRepo.EXPECT().CompleteRequest(gomock.Any(), requestID, payoutID).Return(nil, nil)
			},
			expectedError: domain.ErrRequestLinkBroken,
		},
		{
			name:      "Unknown payout",
			reference: ref,
			prepareMock: func() {
				m.passThroughTx()
				m.payoutRepo.EXPECT().GetPayout(gomock.Any(), payoutID).Return(nil, nil)
			},
			expectedError: domain.ErrPayoutNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.prepareMock()

			p, err := service.Complete(context.Background(), payoutID, tt.reference)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, p)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, domain.PayoutCompleted, p.Status)
		})
	}
}

func TestFail(t *testing.T) {
	service, m := NewMock(t)
	reason := "account closed"
	failed := payout(domain.PayoutFailed)
	failed.FailureReason = &reason

	tests := []struct {
		name          string
		prepareMock   func()
		expectedError error
	}{
		{
			name: "Failure restores escrow and reopens the request",
			prepareMock: func() {
				m.passThroughTx()
				m.payoutRepo.EXPECT().GetPayout(gomock.Any(), payoutID).Return(payout(domain.PayoutProcessing), nil)
				m.payoutRepo.EXPECT().TransitionPayout(gomock.Any(), payoutID, domain.PayoutTransition{
					From:          []domain.PayoutStatus{domain.PayoutPending, domain.PayoutProcessing},
					To:            domain.PayoutFailed,
					FailureReason: &reason,
					ProcessedAt:   &fixedNow,
				}).Return(failed, nil)
				m.requestRepo.EXPECT().DetachPayout(gomock.Any(), requestID, payoutID).Return(request(domain.RequestApproved, false, false), nil)
				m.balanceRepo.EXPECT().RestoreAvailable(gomock.Any(), creatorID, nine).Return(&domain.CreatorBalance{CreatorID: creatorID}, nil)
				m.auditRepo.EXPECT().Record(gomock.Any(), &domain.AuditEntry{
					EntityType: domain.EntityPayout,
					EntityID:   payoutID.String(),
					Action:     "fail",
					PrevState:  "PROCESSING",
					NextState:  "FAILED",
					Actor:      "provider",
					Details:    reason,
				}).Return(nil)
				m.auditRepo.EXPECT().Record(gomock.Any(), gomock.Any()).Return(nil)
			},
		},
		{
			name: "Repeated failure is a no-op",
			prepareMock: func() {
				m.passThroughTx()
				m.payoutRepo.EXPECT().GetPayout(gomock.Any(), payoutID).Return(failed, nil)
			},
		},
		{
			name: "Completed payout cannot fail",
			prepareMock: func() {
				m.passThroughTx()
				m.payoutRepo.EXPECT().GetPayout(gomock.Any(), payoutID).Return(payout(domain.PayoutCompleted), nil)
			},
			expectedError: domain.ErrInvalidPayoutState,
		},
		{
			name: "Balance row missing",
			prepareMock: func() {
				m.passThroughTx()
				m.payoutRepo.EXPECT().GetPayout(gomock.Any(), payoutID).Return(payout(domain.PayoutProcessing), nil)
				m.payoutRepo.EXPECT().TransitionPayout(gomock.Any(), payoutID, gomock.Any()).Return(failed, nil)
				m.requestRepo.EXPECT().DetachPayout(gomock.Any(), requestID, payoutID).Return(request(domain.RequestApproved, false, false), nil)
				m.balanceRepo.EXPECT().RestoreAvailable(gomock.Any(), creatorID, nine).Return(nil, nil)
			},
			expectedError: domain.ErrUnknownCreator,
		},
		{
			name: "Storage error",
			prepareMock: func() {
				m.passThroughTx()
				m.payoutRepo.EXPECT().GetPayout(gomock.Any(), payoutID).Return(nil, errors.New("db error"))
			},
			expectedError: errors.New("db error"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.prepareMock()

			p, err := service.Fail(context.Background(), payoutID, reason)

			if tt.expectedError != nil {
				require.Error(t, err)
				if !errors.Is(err, tt.expectedError) {
					assert.EqualError(t, err, tt.expectedError.Error())
				}
				assert.Nil(t, p)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, domain.PayoutFailed, p.Status)
		})
	}
}

func TestGetAndListPayouts(t *testing.T) {
	service, m := NewMock(t)

	m.payoutRepo.EXPECT().GetPayout(gomock.Any(), payoutID).Return(nil, nil)
	_, err := service.GetPayout(context.Background(), payoutID)
	assert.ErrorIs(t, err, domain.ErrPayoutNotFound)

	filter := domain.PayoutFilter{CreatorID: &creatorID}
	m.payoutRepo.EXPECT().ListPayouts(gomock.Any(), filter).Return([]domain.Payout{*payout(domain.PayoutCompleted)}, nil)
	list, err := service.ListPayouts(context.Background(), filter)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
