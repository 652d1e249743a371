// Package release moves matured pending earnings into available balance.
package release

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/GlebRadaev/creator-ledger/internal/config"
	"github.com/GlebRadaev/creator-ledger/internal/domain"
	"github.com/GlebRadaev/creator-ledger/internal/observability"
	"github.com/GlebRadaev/creator-ledger/internal/pg"
)

const (
	lockKey = "creator-ledger:hold-release"
	lockTTL = 10 * time.Minute
)

var (
	ErrLocked = errors.New("hold release is already running on another instance")

	errAlreadyReleased = errors.New("purchase already released")
)

//go:generate mockgen -source=release.go -destination=mock_release.go -package=release
type PurchaseRepo interface {
	FindMatured(ctx context.Context, now time.Time, after domain.ReleaseCursor, limit int) ([]domain.Purchase, error)
	MarkReleased(ctx context.Context, id string) (*domain.Purchase, error)
}

type BalanceRepo interface {
	ReleasePending(ctx context.Context, creatorID uuid.UUID, amount decimal.Decimal) (*domain.CreatorBalance, error)
}

// Locker serialises sweeps across instances. acquired is false when another holder owns key.
type Locker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (unlock func(context.Context) error, acquired bool, err error)
}

type Summary struct {
	Attempted int `json:"attempted"`
	Released  int `json:"released"`
	Skipped   int `json:"skipped"`
	Failed    int `json:"failed"`
}

type tally struct {
	attempted, released, skipped, failed atomic.Int64
}

func (t *tally) summary() Summary {
	return Summary{
		Attempted: int(t.attempted.Load()),
		Released:  int(t.released.Load()),
		Skipped:   int(t.skipped.Load()),
		Failed:    int(t.failed.Load()),
	}
}

type Service struct {
	purchaseRepo PurchaseRepo
	balanceRepo  BalanceRepo
	txManager    pg.TXManager
	locker       Locker
	workerPool   WorkerPoolI
	batchSize    int
	interval     time.Duration
	inFlight     sync.Map
	now          func() time.Time
}

// New builds the scheduler. locker may be nil when a single instance runs.
func New(cfg *config.Config, purchaseRepo PurchaseRepo, balanceRepo BalanceRepo, txManager pg.TXManager, locker Locker) *Service {
	batchSize := cfg.ReleaseBatchSize
	if batchSize <= 0 {
		batchSize = 500
	}
	return &Service{
		purchaseRepo: purchaseRepo,
		balanceRepo:  balanceRepo,
		txManager:    txManager,
		locker:       locker,
		workerPool:   NewWorkerPool(cfg.ReleaseWorkers),
		batchSize:    batchSize,
		interval:     cfg.ReleaseInterval,
		now:          time.Now,
	}
}

// Start blocks until ctx is done, running a sweep on every tick. It returns only after
// the worker pool has drained, so callers may close the database afterwards.
func (s *Service) Start(ctx context.Context) {
	zap.L().Info("Hold release scheduler started", zap.Duration("interval", s.interval))
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	defer s.workerPool.Close()

	for {
		select {
		case <-ctx.Done():
			zap.L().Info("Context canceled, stopping hold release scheduler")
			return
		case <-ticker.C:
			summary, err := s.RunOnce(ctx)
			switch {
			case errors.Is(err, ErrLocked):
				zap.L().Info("Hold release skipped, another instance holds the lock")
				observability.IncrementWorkerRun("hold_release", "locked")
			case err != nil:
				zap.L().Error("Hold release run failed", zap.Error(err))
				observability.IncrementWorkerRun("hold_release", "error")
			default:
				zap.L().Info("Hold release run finished",
					zap.Int("attempted", summary.Attempted),
					zap.Int("released", summary.Released),
					zap.Int("skipped", summary.Skipped),
					zap.Int("failed", summary.Failed))
				observability.IncrementWorkerRun("hold_release", "ok")
			}
		}
	}
}

// RunOnce releases every purchase whose hold expired before now. Each purchase is
// released in its own transaction; a failure is counted and the purchase stays
// eligible for the next run. The scheduler and the operator trigger both call it.
func (s *Service) RunOnce(ctx context.Context) (Summary, error) {
	if s.locker != nil {
		unlock, acquired, err := s.locker.Acquire(ctx, lockKey, lockTTL)
		if err != nil {
			return Summary{}, err
		}
		if !acquired {
			return Summary{}, ErrLocked
		}
		defer func() {
			if err := unlock(context.WithoutCancel(ctx)); err != nil {
				zap.L().Warn("failed to release hold release lock", zap.Error(err))
			}
		}()
	}

	var (
		t      tally
		wg     sync.WaitGroup
		cursor domain.ReleaseCursor
		now    = s.now()
	)

	for {
		purchases, err := s.purchaseRepo.FindMatured(ctx, now, cursor, s.batchSize)
		if err != nil {
			zap.L().Error("Failed to fetch matured purchases", zap.Error(err))
			wg.Wait()
			return t.summary(), err
		}
		if len(purchases) == 0 {
			break
		}

		s.dispatch(ctx, purchases, &t, &wg)

		last := purchases[len(purchases)-1]
		cursor = domain.ReleaseCursor{PendingUntil: *last.EarningsPendingUntil, ID: last.ID}
		if len(purchases) < s.batchSize {
			break
		}
	}

	wg.Wait()
	return t.summary(), nil
}

func (s *Service) dispatch(ctx context.Context, purchases []domain.Purchase, t *tally, wg *sync.WaitGroup) {
	var g errgroup.Group
	for _, purchase := range purchases {
		purchase := purchase
		t.attempted.Add(1)

		if _, loaded := s.inFlight.LoadOrStore(purchase.ID, struct{}{}); loaded {
			t.skipped.Add(1)
			continue
		}

		wg.Add(1)
		g.Go(func() error {
			err := s.workerPool.AddTask(ctx, func() error {
				defer wg.Done()
				defer s.inFlight.Delete(purchase.ID)
				s.handle(ctx, purchase, t)
				return nil
			})
			if err != nil {
				wg.Done()
				s.inFlight.Delete(purchase.ID)
				t.failed.Add(1)
				return err
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		zap.L().Error("Error dispatching purchases", zap.Error(err))
	}
}

func (s *Service) handle(ctx context.Context, purchase domain.Purchase, t *tally) {
	err := s.releasePurchase(ctx, purchase)
	switch {
	case err == nil:
		t.released.Add(1)
		observability.IncrementRelease("released")
	case errors.Is(err, errAlreadyReleased):
		t.skipped.Add(1)
		observability.IncrementRelease("skipped")
	case errors.Is(err, domain.ErrBalanceDrift):
		t.failed.Add(1)
		observability.IncrementRelease("failed")
		observability.IncrementStructuralError("release_pending")
		zap.L().Error("Pending balance lower than matured earnings",
			zap.String("purchase_id", purchase.ID), zap.String("creator_id", purchase.CreatorID.String()))
	default:
		t.failed.Add(1)
		observability.IncrementRelease("failed")
		zap.L().Warn("Failed to release purchase, will retry on next run",
			zap.String("purchase_id", purchase.ID), zap.Error(err))
	}
}

func (s *Service) releasePurchase(ctx context.Context, purchase domain.Purchase) error {
	return s.txManager.Begin(ctx, func(ctx context.Context) error {
		marked, err := s.purchaseRepo.MarkReleased(ctx, purchase.ID)
		if err != nil {
			return err
		}
		if marked == nil {
			return errAlreadyReleased
		}

		balance, err := s.balanceRepo.ReleasePending(ctx, marked.CreatorID, marked.EarningsAccruedAmount.Decimal)
		if err != nil {
			return err
		}
		if balance == nil {
			return domain.ErrBalanceDrift
		}
		return nil
	})
}
