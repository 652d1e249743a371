package worker

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/GlebRadaev/creator-ledger/internal/domain"
	"github.com/GlebRadaev/creator-ledger/internal/observability"
)

type Reconciler interface {
	Run(ctx context.Context) (*domain.ReconciliationReport, error)
}

// ReconciliationWorker runs the ledger reconciliation sweep on an interval.
type ReconciliationWorker struct {
	svc      Reconciler
	interval time.Duration
	stopCh   chan struct{}
	stopOnce sync.Once
}

func NewReconciliationWorker(svc Reconciler, interval time.Duration) *ReconciliationWorker {
	if interval <= 0 {
		interval = 24 * time.Hour
	}
	return &ReconciliationWorker{
		svc:      svc,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Start blocks, running once immediately and then on every tick.
func (w *ReconciliationWorker) Start(ctx context.Context) {
	zap.L().Info("reconciliation worker starting", zap.Duration("interval", w.interval))
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.RunOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			zap.L().Info("reconciliation worker context canceled")
			return
		case <-w.stopCh:
			zap.L().Info("reconciliation worker stop signal received")
			return
		case <-ticker.C:
			w.RunOnce(ctx)
		}
	}
}

func (w *ReconciliationWorker) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopCh)
	})
}

// Run starts the worker in a goroutine and returns a stop function.
func (w *ReconciliationWorker) Run(ctx context.Context) func() {
	go w.Start(ctx)
	return w.Stop
}

func (w *ReconciliationWorker) RunOnce(ctx context.Context) {
	report, err := w.svc.Run(ctx)
	if err != nil {
		observability.IncrementWorkerRun("reconciliation", "failed")
		zap.L().Error("reconciliation run failed", zap.Error(err))
		return
	}
	if err := report.Err(); err != nil {
		observability.IncrementWorkerRun("reconciliation", "mismatch")
		zap.L().Error("reconciliation found drift", zap.Int("mismatches", len(report.Mismatches)), zap.Error(err))
		return
	}
	observability.IncrementWorkerRun("reconciliation", "success")
}
