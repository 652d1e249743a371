package accrualservice

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/GlebRadaev/creator-ledger/internal/domain"
	"github.com/GlebRadaev/creator-ledger/internal/observability"
	"github.com/GlebRadaev/creator-ledger/internal/pg"
)

//go:generate mockgen -source=accrualservice.go -destination=mock_accrualservice.go -package=accrualservice
type PurchaseRepo interface {
	InsertPurchase(ctx context.Context, p *domain.Purchase) error
	GetPurchase(ctx context.Context, id string) (*domain.Purchase, error)
	MarkAccrued(ctx context.Context, id string, amount decimal.Decimal, pendingUntil time.Time) (*domain.Purchase, error)
}

type BalanceRepo interface {
	CreditPending(ctx context.Context, creatorID uuid.UUID, amount decimal.Decimal) (*domain.CreatorBalance, error)
}

type Service struct {
	purchaseRepo PurchaseRepo
	balanceRepo  BalanceRepo
	txManager    pg.TXManager
	holdPeriod   time.Duration
	now          func() time.Time
}

func New(purchaseRepo PurchaseRepo, balanceRepo BalanceRepo, txManager pg.TXManager, holdPeriod time.Duration) *Service {
	return &Service{
		purchaseRepo: purchaseRepo,
		balanceRepo:  balanceRepo,
		txManager:    txManager,
		holdPeriod:   holdPeriod,
		now:          time.Now,
	}
}

// RecordPurchase credits the creator share of a completed purchase to pending balance
// exactly once. A redelivered fact returns the stored purchase with ErrAlreadyAccrued.
func (s *Service) RecordPurchase(ctx context.Context, fact domain.PurchaseFact) (*domain.Purchase, error) {
	if err := validate(fact); err != nil {
		return nil, err
	}

	var result *domain.Purchase
	err := s.txManager.Begin(ctx, func(ctx context.Context) error {
		err := s.purchaseRepo.InsertPurchase(ctx, &domain.Purchase{
			ID:        fact.PurchaseID,
			CreatorID: fact.CreatorID,
			Amount:    fact.Amount,
			BasePrice: fact.BasePrice,
			Status:    domain.PurchaseCompleted,
		})
		if err != nil {
			return err
		}

		purchase, err := s.purchaseRepo.GetPurchase(ctx, fact.PurchaseID)
		if err != nil {
			return err
		}
		if purchase == nil {
			return fmt.Errorf("purchase %s vanished after insert", fact.PurchaseID)
		}
		if purchase.CreatorID != fact.CreatorID || !purchase.Amount.Equal(fact.Amount) {
			return domain.ErrPurchaseMismatch
		}
		result = purchase
		if purchase.Accrued() {
			return domain.ErrAlreadyAccrued
		}
		if purchase.Status != domain.PurchaseCompleted {
			return domain.ErrPurchaseNotCompleted
		}

		earnings := domain.CreatorEarnings(purchase.Amount, purchase.BasePrice)
		accrued, err := s.purchaseRepo.MarkAccrued(ctx, purchase.ID, earnings, s.now().Add(s.holdPeriod))
		if err != nil {
			return err
		}
		if accrued == nil {
			return domain.ErrAlreadyAccrued
		}
		result = accrued

		balance, err := s.balanceRepo.CreditPending(ctx, purchase.CreatorID, earnings)
		if err != nil {
			return err
		}
		if balance == nil {
			return domain.ErrUnknownCreator
		}
		return nil
	})

	switch {
	case err == nil:
		observability.IncrementAccrual("recorded")
		zap.L().Info("Earnings accrued",
			zap.String("purchase_id", result.ID),
			zap.String("creator_id", result.CreatorID.String()),
			zap.String("earnings", result.EarningsAccruedAmount.Decimal.String()))
		return result, nil
	case errors.Is(err, domain.ErrAlreadyAccrued):
		observability.IncrementAccrual("duplicate")
		return result, err
	case errors.Is(err, domain.ErrUnknownCreator):
		observability.IncrementAccrual("failed")
		observability.IncrementStructuralError("record_purchase")
		zap.L().Error("Purchase for unknown creator",
			zap.String("purchase_id", fact.PurchaseID), zap.String("creator_id", fact.CreatorID.String()))
		return nil, err
	default:
		observability.IncrementAccrual("failed")
		zap.L().Error("failed to record purchase", zap.String("purchase_id", fact.PurchaseID), zap.Error(err))
		return nil, err
	}
}

func validate(fact domain.PurchaseFact) error {
	switch {
	case fact.PurchaseID == "":
		return fmt.Errorf("%w: purchase id is required", domain.ErrInvalidPurchase)
	case fact.CreatorID == uuid.Nil:
		return fmt.Errorf("%w: creator id is required", domain.ErrInvalidPurchase)
	case !fact.Amount.IsPositive():
		return fmt.Errorf("%w: amount must be positive", domain.ErrInvalidPurchase)
	case fact.BasePrice.Valid && !fact.BasePrice.Decimal.IsPositive():
		return fmt.Errorf("%w: base price must be positive", domain.ErrInvalidPurchase)
	}
	return nil
}
