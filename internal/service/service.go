package service

import (
	"context"

	"github.com/GlebRadaev/creator-ledger/internal/config"
	"github.com/GlebRadaev/creator-ledger/internal/handlers/admin"
	"github.com/GlebRadaev/creator-ledger/internal/handlers/callbacks"
	"github.com/GlebRadaev/creator-ledger/internal/handlers/creator"
	"github.com/GlebRadaev/creator-ledger/internal/pg"
	"github.com/GlebRadaev/creator-ledger/internal/release"
	"github.com/GlebRadaev/creator-ledger/internal/repo"
	"github.com/GlebRadaev/creator-ledger/internal/service/accrualservice"
	"github.com/GlebRadaev/creator-ledger/internal/service/balanceservice"
	"github.com/GlebRadaev/creator-ledger/internal/service/executorservice"
	"github.com/GlebRadaev/creator-ledger/internal/service/payoutservice"
	"github.com/GlebRadaev/creator-ledger/internal/service/reconcileservice"
)

type BalanceService interface {
	admin.BalanceService
	callbacks.BalanceService
}

type PayoutService interface {
	creator.PayoutService
	admin.RequestService
}

type ExecutorService interface {
	admin.ExecutorService
	callbacks.ExecutorService
}

type ReleaseService interface {
	admin.ReleaseService
	Start(ctx context.Context)
}

type Services struct {
	BalanceService   BalanceService
	AccrualService   callbacks.AccrualService
	PayoutService    PayoutService
	ExecutorService  ExecutorService
	ReleaseService   ReleaseService
	ReconcileService admin.ReconcileService
}

// Clients are the outbound systems the ledger depends on.
type Clients struct {
	Eligibility payoutservice.EligibilityChecker
	Provider    executorservice.Provider
	// Locker is nil when the release sweep runs without a distributed lock.
	Locker release.Locker
}

func New(cfg *config.Config, repo *repo.Repositories, txManager pg.TXManager, clients Clients) *Services {
	balanceService := balanceservice.New(repo.BalanceRepo, repo.AuditRepo, txManager)
	accrualService := accrualservice.New(repo.PurchaseRepo, repo.BalanceRepo, txManager, cfg.HoldPeriod)
	payoutService := payoutservice.New(repo.BalanceRepo, repo.RequestRepo, repo.AuditRepo, clients.Eligibility,
		txManager, cfg.MinPayoutAmount)
	executorService := executorservice.New(repo.RequestRepo, repo.PayoutRepo, repo.BalanceRepo, repo.AuditRepo,
		clients.Provider, clients.Eligibility, txManager)
	releaseService := release.New(cfg, repo.PurchaseRepo, repo.BalanceRepo, txManager, clients.Locker)
	reconcileService := reconcileservice.New(repo.BalanceRepo, repo.PurchaseRepo, repo.RequestRepo, repo.PayoutRepo,
		repo.AuditRepo, txManager)

	return &Services{
		BalanceService:   balanceService,
		AccrualService:   accrualService,
		PayoutService:    payoutService,
		ExecutorService:  executorService,
		ReleaseService:   releaseService,
		ReconcileService: reconcileService,
	}
}
