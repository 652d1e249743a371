package balanceservice

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/GlebRadaev/creator-ledger/internal/domain"
	"github.com/GlebRadaev/creator-ledger/internal/pg"
)

//go:generate mockgen -source=balanceservice.go -destination=mock_balanceservice.go -package=balanceservice
type BalanceRepo interface {
	GetBalance(ctx context.Context, creatorID uuid.UUID) (*domain.CreatorBalance, error)
	CreateBalance(ctx context.Context, creatorID uuid.UUID) (*domain.CreatorBalance, error)
	SetPayoutStatus(ctx context.Context, creatorID uuid.UUID, status domain.CreatorPayoutStatus) (*domain.CreatorBalance, error)
}

type AuditRepo interface {
	Record(ctx context.Context, e *domain.AuditEntry) error
}

type Service struct {
	balanceRepo BalanceRepo
	auditRepo   AuditRepo
	txManager   pg.TXManager
}

func New(balanceRepo BalanceRepo, auditRepo AuditRepo, txManager pg.TXManager) *Service {
	return &Service{
		balanceRepo: balanceRepo,
		auditRepo:   auditRepo,
		txManager:   txManager,
	}
}

func (s *Service) GetBalance(ctx context.Context, creatorID uuid.UUID) (*domain.CreatorBalance, error) {
	balance, err := s.balanceRepo.GetBalance(ctx, creatorID)
	if err != nil {
		zap.L().Error("failed to get balance", zap.Error(err))
		return nil, err
	}
	if balance == nil {
		return nil, domain.ErrUnknownCreator
	}
	return balance, nil
}

// RegisterCreator opens a zero balance for a creator. Repeated calls return the existing row.
func (s *Service) RegisterCreator(ctx context.Context, creatorID uuid.UUID) (*domain.CreatorBalance, error) {
	balance, err := s.balanceRepo.CreateBalance(ctx, creatorID)
	if err != nil {
		zap.L().Error("failed to create balance", zap.Error(err))
		return nil, err
	}
	return balance, nil
}

func (s *Service) SetPayoutStatus(ctx context.Context, creatorID uuid.UUID, status domain.CreatorPayoutStatus, actor domain.Actor) (*domain.CreatorBalance, error) {
	if !status.Valid() {
		return nil, domain.ErrInvalidStatus
	}

	var updated *domain.CreatorBalance
	err := s.txManager.Begin(ctx, func(ctx context.Context) error {
		current, err := s.balanceRepo.GetBalance(ctx, creatorID)
		if err != nil {
			return err
		}
		if current == nil {
			return domain.ErrUnknownCreator
		}

		updated, err = s.balanceRepo.SetPayoutStatus(ctx, creatorID, status)
		if err != nil {
			return err
		}
		if updated == nil {
			return domain.ErrUnknownCreator
		}

		return s.auditRepo.Record(ctx, &domain.AuditEntry{
			EntityType: domain.EntityBalance,
			EntityID:   creatorID.String(),
			Action:     "set_payout_status",
			PrevState:  string(current.PayoutStatus),
			NextState:  string(status),
			Actor:      actor.String(),
		})
	})
	if err != nil {
		zap.L().Error("failed to set payout status", zap.String("creator_id", creatorID.String()), zap.Error(err))
		return nil, err
	}
	return updated, nil
}
