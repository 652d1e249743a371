package release

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gomock "go.uber.org/mock/gomock"

	"github.com/GlebRadaev/creator-ledger/internal/config"
	"github.com/GlebRadaev/creator-ledger/internal/domain"
	"github.com/GlebRadaev/creator-ledger/internal/pg"
)

var (
	creatorID = uuid.MustParse("7d6f0a3e-1c55-4b7e-9a43-5e2f1f0d9c11")
	fixedNow  = time.Date(2024, 5, 2, 12, 0, 0, 0, time.UTC)
)

type mocks struct {
	purchaseRepo *MockPurchaseRepo
	balanceRepo  *MockBalanceRepo
	locker       *MockLocker
	txManager    *pg.MockTXManager
}

func NewMock(t *testing.T, batchSize int, withLock bool) (*Service, *mocks) {
	ctrl := gomock.NewController(t)
	m := &mocks{
		purchaseRepo: NewMockPurchaseRepo(ctrl),
		balanceRepo:  NewMockBalanceRepo(ctrl),
		locker:       NewMockLocker(ctrl),
		txManager:    pg.NewMockTXManager(ctrl),
	}
	cfg := &config.Config{ReleaseWorkers: 3, ReleaseBatchSize: batchSize, ReleaseInterval: time.Hour}

	var locker Locker
	if withLock {
		locker = m.locker
	}
	service := New(cfg, m.purchaseRepo, m.balanceRepo, m.txManager, locker)
	service.now = func() time.Time { return fixedNow }
	t.Cleanup(service.workerPool.Close)

	m.txManager.EXPECT().Begin(gomock.Any(), gomock.Any()).DoAndReturn(func(ctx context.Context, fn pg.TransactionalFn) error {
		return fn(ctx)
	}).AnyTimes()
	return service, m
}

func matured(id, earnings string) domain.Purchase {
	until := fixedNow.Add(-time.Hour)
	return domain.Purchase{
		ID:                    id,
		CreatorID:             creatorID,
		Status:                domain.PurchaseCompleted,
		EarningsAccruedAmount: decimal.NewNullDecimal(decimal.RequireFromString(earnings)),
		EarningsPendingUntil:  &until,
	}
}

func released(p domain.Purchase) *domain.Purchase {
	p.EarningsReleased = true
	return &p
}

func TestRunOnce(t *testing.T) {
	service, m := NewMock(t, 500, false)

	ok, skipped, broken, drifted := matured("p-1", "9.00"), matured("p-2", "4.25"), matured("p-3", "1.00"), matured("p-4", "2.00")

	m.purchaseRepo.EXPECT().FindMatured(gomock.Any(), fixedNow, domain.ReleaseCursor{}, 500).
		Return([]domain.Purchase{ok, skipped, broken, drifted}, nil)

	m.purchaseRepo.EXPECT().MarkReleased(gomock.Any(), "p-1").Return(released(ok), nil)
	m.balanceRepo.EXPECT().ReleasePending(gomock.Any(), creatorID, decimal.RequireFromString("9.00")).
		Return(&domain.CreatorBalance{CreatorID: creatorID}, nil)

	m.purchaseRepo.EXPECT().MarkReleased(gomock.Any(), "p-2").Return(nil, nil)

	m.purchaseRepo.EXPECT().MarkReleased(gomock.Any(), "p-3").Return(nil, errors.New("connection reset"))

	m.purchaseRepo.EXPECT().MarkReleased(gomock.Any(), "p-4").Return(released(drifted), nil)
	m.balanceRepo.EXPECT().ReleasePending(gomock.Any(), creatorID, decimal.RequireFromString("2.00")).Return(nil, nil)

	summary, err := service.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Summary{Attempted: 4, Released: 1, Skipped: 1, Failed: 2}, summary)
}

func TestRunOnce_Pagination(t *testing.T) {
	service, m := NewMock(t, 2, false)

	first := []domain.Purchase{matured("p-1", "1.00"), matured("p-2", "1.00")}
	second := []domain.Purchase{matured("p-3", "1.00")}

	gomock.InOrder(
		m.purchaseRepo.EXPECT().FindMatured(gomock.Any(), fixedNow, domain.ReleaseCursor{}, 2).Return(first, nil),
		m.purchaseRepo.EXPECT().FindMatured(gomock.Any(), fixedNow,
			domain.ReleaseCursor{PendingUntil: *first[1].EarningsPendingUntil, ID: "p-2"}, 2).Return(second, nil),
	)
	for _, p := range append(first, second...) {
		m.purchaseRepo.EXPECT().MarkReleased(gomock.Any(), p.ID).Return(released(p), nil)
	}
	m.balanceRepo.EXPECT().ReleasePending(gomock.Any(), creatorID, gomock.Any()).
		Return(&domain.CreatorBalance{CreatorID: creatorID}, nil).Times(3)

	summary, err := service.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Summary{Attempted: 3, Released: 3}, summary)
}

func TestRunOnce_InFlightPurchaseIsSkipped(t *testing.T) {
	service, m := NewMock(t, 500, false)
	service.inFlight.Store("p-1", struct{}{})

	m.purchaseRepo.EXPECT().FindMatured(gomock.Any(), fixedNow, domain.ReleaseCursor{}, 500).
		Return([]domain.Purchase{matured("p-1", "3.00")}, nil)

	summary, err := service.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Summary{Attempted: 1, Skipped: 1}, summary)
}

func TestRunOnce_Concurrent(t *testing.T) {
	service, m := NewMock(t, 500, false)
	p := matured("p-1", "9.00")

	var (
		mu          sync.Mutex
		releasedIDs = map[string]bool{}
	)
	m.purchaseRepo.EXPECT().FindMatured(gomock.Any(), fixedNow, domain.ReleaseCursor{}, 500).
		Return([]domain.Purchase{p}, nil).Times(2)
	m.purchaseRepo.EXPECT().MarkReleased(gomock.Any(), "p-1").DoAndReturn(func(context.Context, string) (*domain.Purchase, error) {
		mu.Lock()
		defer mu.Unlock()
		if releasedIDs["p-1"] {
			return nil, nil
		}
		releasedIDs["p-1"] = true
		return released(p), nil
	}).MinTimes(1).MaxTimes(2)
	m.balanceRepo.EXPECT().ReleasePending(gomock.Any(), creatorID, decimal.RequireFromString("9.00")).
		Return(&domain.CreatorBalance{CreatorID: creatorID}, nil).Times(1)

	var (
		wg        sync.WaitGroup
		summaries [2]Summary
	)
	for i := range summaries {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s, err := service.RunOnce(context.Background())
			assert.NoError(t, err)
			summaries[i] = s
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, summaries[0].Released+summaries[1].Released)
	assert.Equal(t, 1, summaries[0].Skipped+summaries[1].Skipped)
}

func TestRunOnce_Lock(t *testing.T) {
	t.Run("held by another instance", func(t *testing.T) {
		service, m := NewMock(t, 500, true)
		m.locker.EXPECT().Acquire(gomock.Any(), lockKey, lockTTL).Return(nil, false, nil)

		_, err := service.RunOnce(context.Background())
		assert.ErrorIs(t, err, ErrLocked)
	})

	t.Run("acquired and released", func(t *testing.T) {
		service, m := NewMock(t, 500, true)
		unlocked := false
		m.locker.EXPECT().Acquire(gomock.Any(), lockKey, lockTTL).
			Return(func(context.Context) error { unlocked = true; return nil }, true, nil)
		m.purchaseRepo.EXPECT().FindMatured(gomock.Any(), fixedNow, domain.ReleaseCursor{}, 500).Return(nil, nil)

		summary, err := service.RunOnce(context.Background())
		require.NoError(t, err)
		assert.Equal(t, Summary{}, summary)
		assert.True(t, unlocked)
	})

	t.Run("lock backend down", func(t *testing.T) {
		service, m := NewMock(t, 500, true)
		m.locker.EXPECT().Acquire(gomock.Any(), lockKey, lockTTL).Return(nil, false, errors.New("redis: connection refused"))

		_, err := service.RunOnce(context.Background())
		assert.EqualError(t, err, "redis: connection refused")
	})
}

func TestRunOnce_FetchError(t *testing.T) {
	service, m := NewMock(t, 500, false)
	m.purchaseRepo.EXPECT().FindMatured(gomock.Any(), fixedNow, domain.ReleaseCursor{}, 500).
		Return(nil, errors.New("db error"))

	_, err := service.RunOnce(context.Background())
	assert.EqualError(t, err, "db error")
}

func TestRunOnce_PoolClosed(t *testing.T) {
	service, m := NewMock(t, 500, false)
	service.workerPool.Close()

	m.purchaseRepo.EXPECT().FindMatured(gomock.Any(), fixedNow, domain.ReleaseCursor{}, 500).
		Return([]domain.Purchase{matured("p-1", "1.00")}, nil)

	summary, err := service.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Summary{Attempted: 1, Failed: 1}, summary)
	_, inFlight := service.inFlight.Load("p-1")
	assert.False(t, inFlight)
}

func TestService_Start(t *testing.T) {
	service, _ := NewMock(t, 500, false)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		service.Start(ctx)
	}()

	time.Sleep(20 * time.Millisecond)
	select {
	case <-done:
		t.Fatal("scheduler returned before cancel")
	default:
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop after cancel")
	}
	assert.ErrorIs(t, service.workerPool.AddTask(context.Background(), func() error { return nil }), ErrPoolClosed)
}
