package executorservice

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/GlebRadaev/creator-ledger/internal/domain"
	"github.com/GlebRadaev/creator-ledger/internal/observability"
	"github.com/GlebRadaev/creator-ledger/internal/pg"
)

//go:generate mockgen -source=executorservice.go -destination=mock_executorservice.go -package=executorservice
type RequestRepo interface {
	GetRequest(ctx context.Context, id uuid.UUID) (*domain.PayoutRequest, error)
	LockRequest(ctx context.Context, id uuid.UUID) (*domain.PayoutRequest, error)
	TransitionRequest(ctx context.Context, id uuid.UUID, t domain.RequestTransition) (*domain.PayoutRequest, error)
	AttachPayout(ctx context.Context, id, payoutID uuid.UUID) (*domain.PayoutRequest, error)
	DetachPayout(ctx context.Context, id, payoutID uuid.UUID) (*domain.PayoutRequest, error)
	CompleteRequest(ctx context.Context, id, payoutID uuid.UUID) (*domain.PayoutRequest, error)
}

type PayoutRepo interface {
	CreatePayout(ctx context.Context, p *domain.Payout) (*domain.Payout, error)
	GetPayout(ctx context.Context, id uuid.UUID) (*domain.Payout, error)
	ListPayouts(ctx context.Context, filter domain.PayoutFilter) ([]domain.Payout, error)
	TransitionPayout(ctx context.Context, id uuid.UUID, t domain.PayoutTransition) (*domain.Payout, error)
}

type BalanceRepo interface {
	ReserveAvailable(ctx context.Context, creatorID uuid.UUID, amount decimal.Decimal) (*domain.CreatorBalance, error)
	RestoreAvailable(ctx context.Context, creatorID uuid.UUID, amount decimal.Decimal) (*domain.CreatorBalance, error)
}

type AuditRepo interface {
	Record(ctx context.Context, e *domain.AuditEntry) error
}

type Provider interface {
	SubmitTransfer(ctx context.Context, transfer domain.Transfer) error
}

type EligibilityChecker interface {
	Check(ctx context.Context, creatorID uuid.UUID) (*domain.Eligibility, error)
}

type Service struct {
	requestRepo RequestRepo
	payoutRepo  PayoutRepo
	balanceRepo BalanceRepo
	auditRepo   AuditRepo
	provider    Provider
	eligibility EligibilityChecker
	txManager   pg.TXManager
	newID       func() uuid.UUID
	now         func() time.Time
}

func New(requestRepo RequestRepo, payoutRepo PayoutRepo, balanceRepo BalanceRepo, auditRepo AuditRepo,
	provider Provider, eligibility EligibilityChecker, txManager pg.TXManager) *Service {
	return &Service{
		requestRepo: requestRepo,
		payoutRepo:  payoutRepo,
		balanceRepo: balanceRepo,
		auditRepo:   auditRepo,
		provider:    provider,
		eligibility: eligibility,
		txManager:   txManager,
		newID:       uuid.New,
		now:         time.Now,
	}
}

// Approve moves a PENDING request to APPROVED. The escrow is already reserved.
func (s *Service) Approve(ctx context.Context, requestID uuid.UUID, actor domain.Actor) (*domain.PayoutRequest, error) {
	var updated *domain.PayoutRequest
	err := s.txManager.Begin(ctx, func(ctx context.Context) error {
		current, err := s.requestRepo.LockRequest(ctx, requestID)
		if err != nil {
			return err
		}
		if current == nil {
			return domain.ErrRequestNotFound
		}

		updated, err = s.requestRepo.TransitionRequest(ctx, requestID, domain.RequestTransition{
			From: []domain.RequestStatus{domain.RequestPending},
			To:   domain.RequestApproved,
		})
		if err != nil {
			return err
		}
		if updated == nil {
			return domain.ErrInvalidRequestState
		}

		return s.auditRepo.Record(ctx, &domain.AuditEntry{
			EntityType: domain.EntityPayoutRequest,
			EntityID:   requestID.String(),
			Action:     "approve",
			PrevState:  string(current.Status),
			NextState:  string(domain.RequestApproved),
			Actor:      actor.String(),
		})
	})
	if err != nil {
		zap.L().Error("failed to approve payout request", zap.String("request_id", requestID.String()), zap.Error(err))
		return nil, err
	}

	observability.IncrementRequestTransition(string(domain.RequestApproved))
	return updated, nil
}

// BeginProcessing links exactly one new payout to an APPROVED request and hands it
// to the payment provider. The payout and the link are committed before the provider
// is called, so a crash in between leaves a PENDING payout that a callback or an
// operator can still settle. Only a definitive provider rejection fails the payout.
func (s *Service) BeginProcessing(ctx context.Context, requestID uuid.UUID, paymentMethod string, actor domain.Actor) (*domain.Payout, error) {
	if paymentMethod == "" {
		return nil, domain.ErrInvalidPaymentMethod
	}

	req, err := s.requestRepo.GetRequest(ctx, requestID)
	if err != nil {
		zap.L().Error("failed to get payout request", zap.Error(err))
		return nil, err
	}
	if req == nil {
		return nil, domain.ErrRequestNotFound
	}
	if req.PayoutID != nil {
		return nil, s.duplicate(req)
	}
	if req.Status != domain.RequestApproved {
		return nil, domain.ErrInvalidRequestState
	}

	eligibility, err := s.eligibility.Check(ctx, req.CreatorID)
	if err != nil {
		zap.L().Error("failed to check payout eligibility", zap.String("creator_id", req.CreatorID.String()), zap.Error(err))
		return nil, err
	}
	if !eligibility.Eligible {
		return nil, &domain.NotEligibleError{Missing: eligibility.MissingRequirements}
	}

	var payout *domain.Payout
	err = s.txManager.Begin(ctx, func(ctx context.Context) error {
		current, err := s.requestRepo.LockRequest(ctx, requestID)
		if err != nil {
			return err
		}
		if current == nil {
			return domain.ErrRequestNotFound
		}
		if current.PayoutID != nil {
			return s.duplicate(current)
		}
		if current.Status != domain.RequestApproved {
			return domain.ErrInvalidRequestState
		}

		if !current.EscrowHeld {
			reserved, err := s.balanceRepo.ReserveAvailable(ctx, current.CreatorID, current.RequestedAmount)
			if err != nil {
				return err
			}
			if reserved == nil {
				return domain.ErrInsufficientBalance
			}
		}

		payout, err = s.payoutRepo.CreatePayout(ctx, &domain.Payout{
			ID:            s.newID(),
			RequestID:     current.ID,
			CreatorID:     current.CreatorID,
			Amount:        current.RequestedAmount,
			Status:        domain.PayoutPending,
			PaymentMethod: paymentMethod,
		})
		if err != nil {
			return err
		}

		linked, err := s.requestRepo.AttachPayout(ctx, current.ID, payout.ID)
		if err != nil {
			return err
		}
		if linked == nil {
			return s.duplicate(current)
		}

		return s.auditRepo.Record(ctx, &domain.AuditEntry{
			EntityType: domain.EntityPayoutRequest,
			EntityID:   requestID.String(),
			Action:     "begin_processing",
			PrevState:  string(current.Status),
			NextState:  string(domain.RequestProcessing),
			Actor:      actor.String(),
			Details:    "payout_id=" + payout.ID.String(),
		})
	})
	if err != nil {
		zap.L().Error("failed to begin payout processing", zap.String("request_id", requestID.String()), zap.Error(err))
		return nil, err
	}
	observability.IncrementRequestTransition(string(domain.RequestProcessing))
	observability.IncrementPayoutTransition(string(domain.PayoutPending))

	return s.submit(ctx, payout, eligibility.Destination)
}

func (s *Service) submit(ctx context.Context, payout *domain.Payout, destination string) (*domain.Payout, error) {
	err := s.provider.SubmitTransfer(ctx, domain.Transfer{
		PayoutID:      payout.ID,
		CreatorID:     payout.CreatorID,
		Amount:        payout.Amount,
		PaymentMethod: payout.PaymentMethod,
		Destination:   destination,
	})
	if errors.Is(err, domain.ErrTransferRejected) {
		zap.L().Warn("payment provider rejected transfer", zap.String("payout_id", payout.ID.String()), zap.Error(err))
		return s.Fail(ctx, payout.ID, "submission failed: "+err.Error())
	}
	if err != nil {
		// the provider may still pay; the payout stays PENDING and linked until a
		// callback or an operator settles it
		zap.L().Warn("transfer outcome unknown, payout left pending",
			zap.String("payout_id", payout.ID.String()), zap.Error(err))
		return payout, nil
	}

	updated, err := s.payoutRepo.TransitionPayout(ctx, payout.ID, domain.PayoutTransition{
		From: []domain.PayoutStatus{domain.PayoutPending},
		To:   domain.PayoutProcessing,
	})
	if err != nil {
		return nil, err
	}
	if updated == nil {
		// the provider already reported back
		return s.GetPayout(ctx, payout.ID)
	}
	if err := s.auditRepo.Record(ctx, payoutEntry(updated, domain.PayoutPending, "submit", domain.SystemActor)); err != nil {
		return nil, err
	}

	observability.IncrementPayoutTransition(string(domain.PayoutProcessing))
	return updated, nil
}

// Complete settles a payout confirmed by the provider. A repeated confirmation with the
// same reference returns the payout unchanged.
func (s *Service) Complete(ctx context.Context, payoutID uuid.UUID, providerReference string) (*domain.Payout, error) {
	var (
		updated *domain.Payout
		replay  bool
	)
	err := s.txManager.Begin(ctx, func(ctx context.Context) error {
		current, err := s.payoutRepo.GetPayout(ctx, payoutID)
		if err != nil {
			return err
		}
		if current == nil {
			return domain.ErrPayoutNotFound
		}
		if current.Status == domain.PayoutCompleted {
			if current.ProviderReference != nil && *current.ProviderReference != providerReference {
				return domain.ErrInvalidPayoutState
			}
			updated, replay = current, true
			return nil
		}

		processedAt := s.now()
		updated, err = s.payoutRepo.TransitionPayout(ctx, payoutID, domain.PayoutTransition{
			From:              []domain.PayoutStatus{domain.PayoutPending, domain.PayoutProcessing},
			To:                domain.PayoutCompleted,
			ProviderReference: &providerReference,
			ProcessedAt:       &processedAt,
		})
		if err != nil {
			return err
		}
		if updated == nil {
			return domain.ErrInvalidPayoutState
		}

		req, err := s.requestRepo.CompleteRequest(ctx, current.RequestID, payoutID)
		if err != nil {
			return err
		}
		if req == nil {
			return s.brokenLink(current)
		}

		if err := s.auditRepo.Record(ctx, payoutEntry(updated, current.Status, "complete", domain.ProviderActor)); err != nil {
			return err
		}
		return s.auditRepo.Record(ctx, &domain.AuditEntry{
			EntityType: domain.EntityPayoutRequest,
			EntityID:   current.RequestID.String(),
			Action:     "complete",
			PrevState:  string(domain.RequestProcessing),
			NextState:  string(domain.RequestCompleted),
			Actor:      domain.ProviderActor.String(),
			Details:    "payout_id=" + payoutID.String(),
		})
	})
	if err != nil {
		zap.L().Error("failed to complete payout", zap.String("payout_id", payoutID.String()), zap.Error(err))
		return nil, err
	}

	if !replay {
		observability.IncrementPayoutTransition(string(domain.PayoutCompleted))
		observability.IncrementRequestTransition(string(domain.RequestCompleted))
	}
	return updated, nil
}

// Fail marks a payout FAILED, restores the escrowed amount to available balance and
// returns the request to APPROVED without a payout so it can be processed again.
func (s *Service) Fail(ctx context.Context, payoutID uuid.UUID, reason string) (*domain.Payout, error) {
	var (
		updated *domain.Payout
		replay  bool
	)
	err := s.txManager.Begin(ctx, func(ctx context.Context) error {
		current, err := s.payoutRepo.GetPayout(ctx, payoutID)
		if err != nil {
			return err
		}
		if current == nil {
			return domain.ErrPayoutNotFound
		}
		switch current.Status {
		case domain.PayoutFailed:
			updated, replay = current, true
			return nil
		case domain.PayoutCompleted:
			return domain.ErrInvalidPayoutState
		}

		processedAt := s.now()
		updated, err = s.payoutRepo.TransitionPayout(ctx, payoutID, domain.PayoutTransition{
			From:          []domain.PayoutStatus{domain.PayoutPending, domain.PayoutProcessing},
			To:            domain.PayoutFailed,
			FailureReason: &reason,
			ProcessedAt:   &processedAt,
		})
		if err != nil {
			return err
		}
		if updated == nil {
			return domain.ErrInvalidPayoutState
		}

		req, err := s.requestRepo.DetachPayout(ctx, current.RequestID, payoutID)
		if err != nil {
			return err
		}
		if req == nil {
			return s.brokenLink(current)
		}

		restored, err := s.balanceRepo.RestoreAvailable(ctx, req.CreatorID, req.RequestedAmount)
		if err != nil {
			return err
		}
		if restored == nil {
			zap.L().Error("creator balance missing for failed payout",
				zap.String("payout_id", payoutID.String()), zap.String("creator_id", req.CreatorID.String()))
			observability.IncrementStructuralError("fail_payout")
			return domain.ErrUnknownCreator
		}

		if err := s.auditRepo.Record(ctx, payoutEntry(updated, current.Status, "fail", domain.ProviderActor)); err != nil {
			return err
		}
		return s.auditRepo.Record(ctx, &domain.AuditEntry{
			EntityType: domain.EntityPayoutRequest,
			EntityID:   current.RequestID.String(),
			Action:     "payout_failed",
			PrevState:  string(domain.RequestProcessing),
			NextState:  string(domain.RequestApproved),
			Actor:      domain.ProviderActor.String(),
			Details:    reason,
		})
	})
	if err != nil {
		zap.L().Error("failed to fail payout", zap.String("payout_id", payoutID.String()), zap.Error(err))
		return nil, err
	}

	if !replay {
		observability.IncrementPayoutTransition(string(domain.PayoutFailed))
		observability.IncrementRequestTransition(string(domain.RequestApproved))
	}
	return updated, nil
}

func (s *Service) GetPayout(ctx context.Context, payoutID uuid.UUID) (*domain.Payout, error) {
	payout, err := s.payoutRepo.GetPayout(ctx, payoutID)
	if err != nil {
		zap.L().Error("failed to get payout", zap.Error(err))
		return nil, err
	}
	if payout == nil {
		return nil, domain.ErrPayoutNotFound
	}
	return payout, nil
}

func (s *Service) ListPayouts(ctx context.Context, filter domain.PayoutFilter) ([]domain.Payout, error) {
	payouts, err := s.payoutRepo.ListPayouts(ctx, filter)
	if err != nil {
		zap.L().Error("failed to list payouts", zap.Error(err))
		return nil, err
	}
	return payouts, nil
}

func (s *Service) duplicate(req *domain.PayoutRequest) error {
	fields := []zap.Field{zap.String("request_id", req.ID.String())}
	if req.PayoutID != nil {
		fields = append(fields, zap.String("payout_id", req.PayoutID.String()))
	}
	zap.L().Error("payout request already linked to a payout", fields...)
	observability.IncrementStructuralError("begin_processing")
	return domain.ErrDuplicatePayout
}

func (s *Service) brokenLink(p *domain.Payout) error {
	zap.L().Error("payout is not linked to its request",
		zap.String("payout_id", p.ID.String()), zap.String("request_id", p.RequestID.String()))
	observability.IncrementStructuralError("settle_payout")
	return domain.ErrRequestLinkBroken
}

func payoutEntry(p *domain.Payout, prev domain.PayoutStatus, action string, actor domain.Actor) *domain.AuditEntry {
	entry := &domain.AuditEntry{
		EntityType: domain.EntityPayout,
		EntityID:   p.ID.String(),
		Action:     action,
		PrevState:  string(prev),
		NextState:  string(p.Status),
		Actor:      actor.String(),
	}
	switch {
	case p.ProviderReference != nil:
		entry.Details = "provider_reference=" + *p.ProviderReference
	case p.FailureReason != nil:
		entry.Details = *p.FailureReason
	}
	return entry
}

