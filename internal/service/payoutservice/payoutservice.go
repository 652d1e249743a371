package payoutservice

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/GlebRadaev/creator-ledger/internal/domain"
	"github.com/GlebRadaev/creator-ledger/internal/observability"
	"github.com/GlebRadaev/creator-ledger/internal/pg"
)

const RequirementPayoutStatusActive = "payout_status_active"

//go:generate mockgen -source=payoutservice.go -destination=mock_payoutservice.go -package=payoutservice
type BalanceRepo interface {
	GetBalance(ctx context.Context, creatorID uuid.UUID) (*domain.CreatorBalance, error)
	ReserveAvailable(ctx context.Context, creatorID uuid.UUID, amount decimal.Decimal) (*domain.CreatorBalance, error)
	RestoreAvailable(ctx context.Context, creatorID uuid.UUID, amount decimal.Decimal) (*domain.CreatorBalance, error)
}

type RequestRepo interface {
	CreateRequest(ctx context.Context, req *domain.PayoutRequest) (*domain.PayoutRequest, error)
	GetRequest(ctx context.Context, id uuid.UUID) (*domain.PayoutRequest, error)
	LockRequest(ctx context.Context, id uuid.UUID) (*domain.PayoutRequest, error)
	ListRequests(ctx context.Context, filter domain.RequestFilter) ([]domain.PayoutRequest, error)
	TransitionRequest(ctx context.Context, id uuid.UUID, t domain.RequestTransition) (*domain.PayoutRequest, error)
}

type AuditRepo interface {
	Record(ctx context.Context, e *domain.AuditEntry) error
	History(ctx context.Context, entityType, entityID string) ([]domain.AuditEntry, error)
}

type EligibilityChecker interface {
	Check(ctx context.Context, creatorID uuid.UUID) (*domain.Eligibility, error)
}

type Service struct {
	balanceRepo   BalanceRepo
	requestRepo   RequestRepo
	auditRepo     AuditRepo
	eligibility   EligibilityChecker
	txManager     pg.TXManager
	minimumPayout decimal.Decimal
	newID         func() uuid.UUID
}

func New(balanceRepo BalanceRepo, requestRepo RequestRepo, auditRepo AuditRepo, eligibility EligibilityChecker,
	txManager pg.TXManager, minimumPayout decimal.Decimal) *Service {
	return &Service{
		balanceRepo:   balanceRepo,
		requestRepo:   requestRepo,
		auditRepo:     auditRepo,
		eligibility:   eligibility,
		txManager:     txManager,
		minimumPayout: minimumPayout,
		newID:         uuid.New,
	}
}

// CreateRequest escrows amount from the available balance and opens a PENDING request.
// Two concurrent requests can never reserve more than the creator has: the reservation
// is a conditional decrement on the balance row.
func (s *Service) CreateRequest(ctx context.Context, creatorID uuid.UUID, amount decimal.Decimal) (*domain.PayoutRequest, error) {
	if !amount.IsPositive() {
		return nil, domain.ErrInvalidAmount
	}
	if amount.LessThan(s.minimumPayout) {
		return nil, domain.ErrBelowMinimumPayout
	}

	balance, err := s.balanceRepo.GetBalance(ctx, creatorID)
	if err != nil {
		zap.L().Error("failed to get balance", zap.Error(err))
		return nil, err
	}
	if balance == nil {
		return nil, domain.ErrUnknownCreator
	}

	eligibility, err := s.eligibility.Check(ctx, creatorID)
	if err != nil {
		zap.L().Error("failed to check payout eligibility", zap.String("creator_id", creatorID.String()), zap.Error(err))
		return nil, err
	}
	missing := eligibility.MissingRequirements
	if balance.PayoutStatus != domain.CreatorActive {
		missing = append(missing, RequirementPayoutStatusActive)
	}
	if !eligibility.Eligible || len(missing) > 0 {
		return nil, &domain.NotEligibleError{Missing: missing}
	}

	var created *domain.PayoutRequest
	err = s.txManager.Begin(ctx, func(ctx context.Context) error {
		reserved, err := s.balanceRepo.ReserveAvailable(ctx, creatorID, amount)
		if err != nil {
			return err
		}
		if reserved == nil {
			return domain.ErrInsufficientBalance
		}

		created, err = s.requestRepo.CreateRequest(ctx, &domain.PayoutRequest{
			ID:              s.newID(),
			CreatorID:       creatorID,
			RequestedAmount: amount,
			Status:          domain.RequestPending,
			EscrowHeld:      true,
		})
		if err != nil {
			return err
		}

		return s.auditRepo.Record(ctx, &domain.AuditEntry{
			EntityType: domain.EntityPayoutRequest,
			EntityID:   created.ID.String(),
			Action:     "create",
			NextState:  string(domain.RequestPending),
			Actor:      domain.Actor{ID: creatorID, Role: domain.RoleCreator}.String(),
			Details:    "amount=" + amount.StringFixed(2),
		})
	})
	if err != nil {
		if !errors.Is(err, domain.ErrInsufficientBalance) {
			zap.L().Error("failed to create payout request", zap.String("creator_id", creatorID.String()), zap.Error(err))
		}
		return nil, err
	}

	observability.IncrementRequestTransition(string(domain.RequestPending))
	return created, nil
}

// Cancel reverses the escrow of a PENDING or APPROVED request. Creators may only
// cancel their own requests.
func (s *Service) Cancel(ctx context.Context, requestID uuid.UUID, actor domain.Actor) (*domain.PayoutRequest, error) {
	return s.close(ctx, requestID, domain.RequestCancelled, "", actor)
}

// Reject is the admin counterpart of Cancel and records a reason.
func (s *Service) Reject(ctx context.Context, requestID uuid.UUID, reason string, actor domain.Actor) (*domain.PayoutRequest, error) {
	if !actor.IsAdmin() {
		return nil, domain.ErrRequestNotFound
	}
	return s.close(ctx, requestID, domain.RequestRejected, reason, actor)
}

func (s *Service) close(ctx context.Context, requestID uuid.UUID, to domain.RequestStatus, reason string, actor domain.Actor) (*domain.PayoutRequest, error) {
	var updated *domain.PayoutRequest
	err := s.txManager.Begin(ctx, func(ctx context.Context) error {
		current, err := s.requestRepo.LockRequest(ctx, requestID)
		if err != nil {
			return err
		}
		if current == nil || (!actor.IsAdmin() && current.CreatorID != actor.ID) {
			return domain.ErrRequestNotFound
		}

		updated, err = s.requestRepo.TransitionRequest(ctx, requestID, domain.RequestTransition{
			From:          []domain.RequestStatus{domain.RequestPending, domain.RequestApproved},
			To:            to,
			Reason:        reason,
			ReleaseEscrow: true,
		})
		if err != nil {
			return err
		}
		if updated == nil {
			return domain.ErrInvalidRequestState
		}

		if current.EscrowHeld {
			restored, err := s.balanceRepo.RestoreAvailable(ctx, current.CreatorID, current.RequestedAmount)
			if err != nil {
				return err
			}
			if restored == nil {
				return domain.ErrUnknownCreator
			}
		}

		return s.auditRepo.Record(ctx, &domain.AuditEntry{
			EntityType: domain.EntityPayoutRequest,
			EntityID:   requestID.String(),
			Action:     actionFor(to),
			PrevState:  string(current.Status),
			NextState:  string(to),
			Actor:      actor.String(),
			Details:    reason,
		})
	})
	if err != nil {
		zap.L().Error("failed to close payout request",
			zap.String("request_id", requestID.String()), zap.String("status", string(to)), zap.Error(err))
		return nil, err
	}

	observability.IncrementRequestTransition(string(to))
	return updated, nil
}

func (s *Service) GetRequest(ctx context.Context, requestID uuid.UUID, actor domain.Actor) (*domain.PayoutRequest, error) {
	req, err := s.requestRepo.GetRequest(ctx, requestID)
	if err != nil {
		zap.L().Error("failed to get payout request", zap.Error(err))
		return nil, err
	}
	if req == nil || (!actor.IsAdmin() && req.CreatorID != actor.ID) {
		return nil, domain.ErrRequestNotFound
	}
	return req, nil
}

func (s *Service) ListRequests(ctx context.Context, filter domain.RequestFilter) ([]domain.PayoutRequest, error) {
	requests, err := s.requestRepo.ListRequests(ctx, filter)
	if err != nil {
		zap.L().Error("failed to list payout requests", zap.Error(err))
		return nil, err
	}
	return requests, nil
}

func (s *Service) History(ctx context.Context, requestID uuid.UUID) ([]domain.AuditEntry, error) {
	entries, err := s.auditRepo.History(ctx, domain.EntityPayoutRequest, requestID.String())
	if err != nil {
		zap.L().Error("failed to get payout request history", zap.Error(err))
		return nil, err
	}
	return entries, nil
}

func actionFor(status domain.RequestStatus) string {
	switch status {
	case domain.RequestCancelled:
		return "cancel"
	case domain.RequestRejected:
		return "reject"
	}
	return "transition"
}
