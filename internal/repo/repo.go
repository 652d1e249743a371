package repo

import (
	"github.com/GlebRadaev/creator-ledger/internal/pg"
	auditrepo "github.com/GlebRadaev/creator-ledger/internal/repo/audit-repo"
	balancerepo "github.com/GlebRadaev/creator-ledger/internal/repo/balance-repo"
	payoutrepo "github.com/GlebRadaev/creator-ledger/internal/repo/payout-repo"
	purchaserepo "github.com/GlebRadaev/creator-ledger/internal/repo/purchase-repo"
	requestrepo "github.com/GlebRadaev/creator-ledger/internal/repo/request-repo"
)

// Repositories are shared by several services, each of which sees them through its own interface.
type Repositories struct {
	BalanceRepo  *balancerepo.Repository
	PurchaseRepo *purchaserepo.Repository
	RequestRepo  *requestrepo.Repository
	PayoutRepo   *payoutrepo.Repository
	AuditRepo    *auditrepo.Repository
}

func New(conn pg.Database) *Repositories {
	return &Repositories{
		BalanceRepo:  balancerepo.New(conn),
		PurchaseRepo: purchaserepo.New(conn),
		RequestRepo:  requestrepo.New(conn),
		PayoutRepo:   payoutrepo.New(conn),
		AuditRepo:    auditrepo.New(conn),
	}
}
