package reconcileservice

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/GlebRadaev/creator-ledger/internal/domain"
	"github.com/GlebRadaev/creator-ledger/internal/observability"
	"github.com/GlebRadaev/creator-ledger/internal/pg"
)

//go:generate mockgen -source=reconcileservice.go -destination=mock_reconcileservice.go -package=reconcileservice
type BalanceRepo interface {
	GetBalance(ctx context.Context, creatorID uuid.UUID) (*domain.CreatorBalance, error)
	ListBalances(ctx context.Context) ([]domain.CreatorBalance, error)
	ReplaceBalance(ctx context.Context, expected, next domain.CreatorBalance) (*domain.CreatorBalance, error)
}

type PurchaseRepo interface {
	AccrualTotals(ctx context.Context) ([]domain.AccrualTotals, error)
	CreatorAccrualTotals(ctx context.Context, creatorID uuid.UUID) (*domain.AccrualTotals, error)
}

type RequestRepo interface {
	ListRequests(ctx context.Context, filter domain.RequestFilter) ([]domain.PayoutRequest, error)
}

type PayoutRepo interface {
	ListPayouts(ctx context.Context, filter domain.PayoutFilter) ([]domain.Payout, error)
}

type AuditRepo interface {
	Record(ctx context.Context, e *domain.AuditEntry) error
}

type Service struct {
	balanceRepo  BalanceRepo
	purchaseRepo PurchaseRepo
	requestRepo  RequestRepo
	payoutRepo   PayoutRepo
	auditRepo    AuditRepo
	txManager    pg.TXManager
	now          func() time.Time
}

func New(balanceRepo BalanceRepo, purchaseRepo PurchaseRepo, requestRepo RequestRepo, payoutRepo PayoutRepo,
	auditRepo AuditRepo, txManager pg.TXManager) *Service {
	return &Service{
		balanceRepo:  balanceRepo,
		purchaseRepo: purchaseRepo,
		requestRepo:  requestRepo,
		payoutRepo:   payoutRepo,
		auditRepo:    auditRepo,
		txManager:    txManager,
		now:          time.Now,
	}
}

type snapshot struct {
	balances []domain.CreatorBalance
	totals   []domain.AccrualTotals
	requests []domain.PayoutRequest
	payouts  []domain.Payout
}

// Run checks every creator's balance against purchases, requests and payouts. All four
// reads share one REPEATABLE READ snapshot, so a payout settling mid-run cannot show up
// as drift. It never writes; drift is reported in the returned report.
func (s *Service) Run(ctx context.Context) (*domain.ReconciliationReport, error) {
	report := &domain.ReconciliationReport{StartedAt: s.now()}

	snap, err := s.load(ctx)
	if err != nil {
		zap.L().Error("failed to load reconciliation snapshot", zap.Error(err))
		return nil, err
	}

	report.CheckedCreators = len(snap.balances)
	report.Mismatches = check(snap)
	report.FinishedAt = s.now()

	for _, m := range report.Mismatches {
		observability.IncrementMismatch(string(m.Kind))
		zap.L().Warn("reconciliation mismatch",
			zap.String("kind", string(m.Kind)),
			zap.String("creator_id", m.CreatorID.String()),
			zap.String("entity_id", m.EntityID),
			zap.String("expected", m.Expected),
			zap.String("actual", m.Actual))
	}
	zap.L().Info("reconciliation finished",
		zap.Int("creators", report.CheckedCreators), zap.Int("mismatches", len(report.Mismatches)))
	return report, nil
}

func (s *Service) load(ctx context.Context) (*snapshot, error) {
	var snap snapshot
	err := s.txManager.BeginTx(ctx, pg.ReadOnlySnapshot, func(ctx context.Context) (err error) {
		if snap.balances, err = s.balanceRepo.ListBalances(ctx); err != nil {
			return err
		}
		if snap.totals, err = s.purchaseRepo.AccrualTotals(ctx); err != nil {
			return err
		}
		if snap.requests, err = s.requestRepo.ListRequests(ctx, domain.RequestFilter{}); err != nil {
			return err
		}
		snap.payouts, err = s.payoutRepo.ListPayouts(ctx, domain.PayoutFilter{})
		return err
	})
	if err != nil {
		return nil, err
	}
	return &snap, nil
}

func check(snap *snapshot) []domain.Mismatch {
	var mismatches []domain.Mismatch
	add := func(kind domain.MismatchKind, creatorID uuid.UUID, entityID, expected, actual string) {
		mismatches = append(mismatches, domain.Mismatch{
			Kind: kind, CreatorID: creatorID, EntityID: entityID, Expected: expected, Actual: actual,
		})
	}

	requests := make(map[uuid.UUID]domain.PayoutRequest, len(snap.requests))
	for _, r := range snap.requests {
		requests[r.ID] = r
	}
	payouts := make(map[uuid.UUID]domain.Payout, len(snap.payouts))
	live := make(map[uuid.UUID]int)
	completed := make(map[uuid.UUID]decimal.Decimal)
	for _, p := range snap.payouts {
		payouts[p.ID] = p
		if p.Status == domain.PayoutCompleted {
			completed[p.CreatorID] = completed[p.CreatorID].Add(p.Amount)
		}
		if _, ok := requests[p.RequestID]; !ok {
			add(domain.MismatchOrphanPayout, p.CreatorID, p.ID.String(), "existing payout request", "none")
			continue
		}
		if p.Status != domain.PayoutFailed {
			live[p.RequestID]++
		}
	}
	for requestID, n := range live {
		if n > 1 {
			r := requests[requestID]
			add(domain.MismatchDuplicatePayout, r.CreatorID, requestID.String(), "1 live payout", strconv.Itoa(n)+" live payouts")
		}
	}

	escrowed := make(map[uuid.UUID]decimal.Decimal)
	for _, r := range snap.requests {
		if r.Status.Open() && r.EscrowHeld {
			escrowed[r.CreatorID] = escrowed[r.CreatorID].Add(r.RequestedAmount)
		}
		mismatches = append(mismatches, checkLink(r, payouts)...)
	}

	totals := make(map[uuid.UUID]domain.AccrualTotals, len(snap.totals))
	for _, t := range snap.totals {
		totals[t.CreatorID] = t
	}
	seen := make(map[uuid.UUID]struct{}, len(snap.balances))
	for _, b := range snap.balances {
		seen[b.CreatorID] = struct{}{}
		if b.PendingBalance.IsNegative() || b.AvailableBalance.IsNegative() {
			add(domain.MismatchNegativeBalance, b.CreatorID, "", ">= 0",
				"pending="+b.PendingBalance.StringFixed(2)+" available="+b.AvailableBalance.StringFixed(2))
		}

		pos := domain.LedgerPosition{
			Lifetime:  b.LifetimeEarnings,
			Pending:   b.PendingBalance,
			Available: b.AvailableBalance,
			Escrowed:  escrowed[b.CreatorID],
			Completed: completed[b.CreatorID],
		}
		if !pos.Balanced() {
			sum := pos.Pending.Add(pos.Available).Add(pos.Escrowed).Add(pos.Completed)
			add(domain.MismatchIdentity, b.CreatorID, "", pos.Lifetime.StringFixed(2), sum.StringFixed(2))
		}

		t := totals[b.CreatorID]
		if !b.PendingBalance.Equal(t.Unreleased) {
			add(domain.MismatchPendingDrift, b.CreatorID, "", t.Unreleased.StringFixed(2), b.PendingBalance.StringFixed(2))
		}
		if !b.LifetimeEarnings.Equal(t.Accrued) {
			add(domain.MismatchLifetimeDrift, b.CreatorID, "", t.Accrued.StringFixed(2), b.LifetimeEarnings.StringFixed(2))
		}
	}
	for _, t := range snap.totals {
		if _, ok := seen[t.CreatorID]; !ok {
			add(domain.MismatchMissingBalanceRow, t.CreatorID, "", "creator balance row", "none")
		}
	}
	return mismatches
}

// checkLink verifies the request side of the one-to-one request/payout link.
func checkLink(r domain.PayoutRequest, payouts map[uuid.UUID]domain.Payout) []domain.Mismatch {
	linkedStatus := r.Status == domain.RequestProcessing || r.Status == domain.RequestCompleted
	if r.PayoutID == nil {
		if linkedStatus {
			return []domain.Mismatch{{Kind: domain.MismatchMissingPayout, CreatorID: r.CreatorID, EntityID: r.ID.String(),
				Expected: "linked payout", Actual: "none"}}
		}
		return nil
	}

	p, ok := payouts[*r.PayoutID]
	if !ok || p.RequestID != r.ID {
		return []domain.Mismatch{{Kind: domain.MismatchMissingPayout, CreatorID: r.CreatorID, EntityID: r.ID.String(),
			Expected: "payout " + r.PayoutID.String(), Actual: "none"}}
	}

	var out []domain.Mismatch
	if !p.Amount.Equal(r.RequestedAmount) {
		out = append(out, domain.Mismatch{Kind: domain.MismatchAmount, CreatorID: r.CreatorID, EntityID: p.ID.String(),
			Expected: r.RequestedAmount.StringFixed(2), Actual: p.Amount.StringFixed(2)})
	}
	if !statusesAgree(r.Status, p.Status) {
		out = append(out, domain.Mismatch{Kind: domain.MismatchStatus, CreatorID: r.CreatorID, EntityID: p.ID.String(),
			Expected: "request " + string(r.Status), Actual: "payout " + string(p.Status)})
	}
	return out
}

func statusesAgree(r domain.RequestStatus, p domain.PayoutStatus) bool {
	switch r {
	case domain.RequestProcessing:
		return p == domain.PayoutPending || p == domain.PayoutProcessing
	case domain.RequestCompleted:
		return p == domain.PayoutCompleted
	}
	return false
}

// Repair rebuilds one creator's pending and available balances from durable facts:
// pending is the sum of unreleased accruals, lifetime is never lowered and available
// takes whatever the identity leaves. Every read comes from one REPEATABLE READ snapshot
// and the write is conditional on the balance not having moved since it was read.
func (s *Service) Repair(ctx context.Context, creatorID uuid.UUID, actor domain.Actor) (*domain.RepairResult, error) {
	var result *domain.RepairResult
	err := s.txManager.BeginTx(ctx, pg.Snapshot, func(ctx context.Context) error {
		before, err := s.balanceRepo.GetBalance(ctx, creatorID)
		if err != nil {
			return err
		}
		if before == nil {
			return domain.ErrUnknownCreator
		}

		totals, err := s.purchaseRepo.CreatorAccrualTotals(ctx, creatorID)
		if err != nil {
			return err
		}
		requests, err := s.requestRepo.ListRequests(ctx, domain.RequestFilter{CreatorID: &creatorID})
		if err != nil {
			return err
		}
		payouts, err := s.payoutRepo.ListPayouts(ctx, domain.PayoutFilter{
			CreatorID: &creatorID,
			Statuses:  []domain.PayoutStatus{domain.PayoutCompleted},
		})
		if err != nil {
			return err
		}

		escrowed := decimal.Zero
		for _, r := range requests {
			if r.Status.Open() && r.EscrowHeld {
				escrowed = escrowed.Add(r.RequestedAmount)
			}
		}
		completed := decimal.Zero
		for _, p := range payouts {
			completed = completed.Add(p.Amount)
		}

		after := *before
		after.LifetimeEarnings = decimal.Max(before.LifetimeEarnings, totals.Accrued)
		after.PendingBalance = totals.Unreleased
		after.AvailableBalance = after.LifetimeEarnings.Sub(after.PendingBalance).Sub(escrowed).Sub(completed)
		if after.PendingBalance.IsNegative() || after.AvailableBalance.IsNegative() {
			zap.L().Error("refusing unsafe balance repair",
				zap.String("creator_id", creatorID.String()),
				zap.String("pending", after.PendingBalance.StringFixed(2)),
				zap.String("available", after.AvailableBalance.StringFixed(2)))
			return domain.ErrRepairUnsafe
		}

		result = &domain.RepairResult{Before: *before, After: after}
		if after.LifetimeEarnings.Equal(before.LifetimeEarnings) &&
			after.PendingBalance.Equal(before.PendingBalance) &&
			after.AvailableBalance.Equal(before.AvailableBalance) {
			return nil
		}

		replaced, err := s.balanceRepo.ReplaceBalance(ctx, *before, after)
		if err != nil {
			return err
		}
		if replaced == nil {
			return domain.ErrConcurrentUpdate
		}
		result.After = *replaced
		result.Changed = true

		return s.auditRepo.Record(ctx, &domain.AuditEntry{
			EntityType: domain.EntityBalance,
			EntityID:   creatorID.String(),
			Action:     "repair",
			PrevState:  position(before),
			NextState:  position(replaced),
			Actor:      actor.String(),
		})
	})
	if pg.IsSerializationFailure(err) {
		err = domain.ErrConcurrentUpdate
	}
	if err != nil {
		zap.L().Error("failed to repair creator balance", zap.String("creator_id", creatorID.String()), zap.Error(err))
		return nil, err
	}
	return result, nil
}

func position(b *domain.CreatorBalance) string {
	return "lifetime=" + b.LifetimeEarnings.StringFixed(2) +
		" pending=" + b.PendingBalance.StringFixed(2) +
		" available=" + b.AvailableBalance.StringFixed(2)
}
