package balancerepo

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/GlebRadaev/creator-ledger/internal/domain"
	"github.com/GlebRadaev/creator-ledger/internal/pg"
)

const columns = `creator_id, lifetime_earnings, pending_balance, available_balance, payout_status, created_at, updated_at`

type Repository struct {
	db pg.Database
}

func New(db pg.Database) *Repository {
	return &Repository{
		db: db,
	}
}

func (r *Repository) GetBalance(ctx context.Context, creatorID uuid.UUID) (*domain.CreatorBalance, error) {
	query := `
        SELECT ` + columns + `
        FROM creator_balances
        WHERE creator_id = $1
    `
	return r.one(ctx, "get creator balance", query, creatorID)
}

// CreateBalance is idempotent and returns the existing row for a known creator.
func (r *Repository) CreateBalance(ctx context.Context, creatorID uuid.UUID) (*domain.CreatorBalance, error) {
	query := `
        INSERT INTO creator_balances (creator_id, lifetime_earnings, pending_balance, available_balance, payout_status)
        VALUES ($1, 0, 0, 0, 'ACTIVE')
        ON CONFLICT (creator_id) DO UPDATE SET creator_id = EXCLUDED.creator_id
        RETURNING ` + columns
	return r.one(ctx, "create creator balance", query, creatorID)
}

func (r *Repository) ListBalances(ctx context.Context) ([]domain.CreatorBalance, error) {
	query := `
        SELECT ` + columns + `
        FROM creator_balances
        ORDER BY creator_id
    `
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		zap.L().Error("failed to list creator balances", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var balances []domain.CreatorBalance
	for rows.Next() {
		balance, err := scan(rows)
		if err != nil {
			zap.L().Error("failed to scan creator balance", zap.Error(err))
			return nil, err
		}
		balances = append(balances, *balance)
	}
	if err := rows.Err(); err != nil {
		zap.L().Error("rows iteration error", zap.Error(err))
		return nil, err
	}
	return balances, nil
}

// CreditPending adds freshly accrued earnings. Returns nil if the creator is unknown.
func (r *Repository) CreditPending(ctx context.Context, creatorID uuid.UUID, amount decimal.Decimal) (*domain.CreatorBalance, error) {
	query := `
        UPDATE creator_balances
        SET pending_balance = pending_balance + $2, lifetime_earnings = lifetime_earnings + $2, updated_at = NOW()
        WHERE creator_id = $1
        RETURNING ` + columns
	return r.one(ctx, "credit pending balance", query, creatorID, amount)
}

// ReleasePending moves matured earnings to available. Returns nil if pending is short.
func (r *Repository) ReleasePending(ctx context.Context, creatorID uuid.UUID, amount decimal.Decimal) (*domain.CreatorBalance, error) {
	query := `
        UPDATE creator_balances
        SET pending_balance = pending_balance - $2, available_balance = available_balance + $2, updated_at = NOW()
        WHERE creator_id = $1 AND pending_balance >= $2
        RETURNING ` + columns
	return r.one(ctx, "release pending balance", query, creatorID, amount)
}

// ReserveAvailable escrows amount. Returns nil if available is short.
func (r *Repository) ReserveAvailable(ctx context.Context, creatorID uuid.UUID, amount decimal.Decimal) (*domain.CreatorBalance, error) {
	query := `
        UPDATE creator_balances
        SET available_balance = available_balance - $2, updated_at = NOW()
        WHERE creator_id = $1 AND available_balance >= $2
        RETURNING ` + columns
	return r.one(ctx, "reserve available balance", query, creatorID, amount)
}

func (r *Repository) RestoreAvailable(ctx context.Context, creatorID uuid.UUID, amount decimal.Decimal) (*domain.CreatorBalance, error) {
	query := `
        UPDATE creator_balances
        SET available_balance = available_balance + $2, updated_at = NOW()
        WHERE creator_id = $1
        RETURNING ` + columns
	return r.one(ctx, "restore available balance", query, creatorID, amount)
}

func (r *Repository) SetPayoutStatus(ctx context.Context, creatorID uuid.UUID, status domain.CreatorPayoutStatus) (*domain.CreatorBalance, error) {
	query := `
        UPDATE creator_balances
        SET payout_status = $2, updated_at = NOW()
        WHERE creator_id = $1
        RETURNING ` + columns
	return r.one(ctx, "set payout status", query, creatorID, status)
}

// ReplaceBalance overwrites the amounts only if the row still holds the expected ones.
func (r *Repository) ReplaceBalance(ctx context.Context, expected, next domain.CreatorBalance) (*domain.CreatorBalance, error) {
	query := `
        UPDATE creator_balances
        SET lifetime_earnings = $5, pending_balance = $6, available_balance = $7, updated_at = NOW()
        WHERE creator_id = $1 AND lifetime_earnings = $2 AND pending_balance = $3 AND available_balance = $4
        RETURNING ` + columns
	return r.one(ctx, "replace creator balance", query,
		expected.CreatorID, expected.LifetimeEarnings, expected.PendingBalance, expected.AvailableBalance,
		next.LifetimeEarnings, next.PendingBalance, next.AvailableBalance)
}

func (r *Repository) one(ctx context.Context, op, query string, args ...any) (*domain.CreatorBalance, error) {
	balance, err := scan(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		zap.L().Error("failed to "+op, zap.Error(err))
		return nil, err
	}
	return balance, nil
}

func scan(row pgx.Row) (*domain.CreatorBalance, error) {
	var b domain.CreatorBalance
	err := row.Scan(&b.CreatorID, &b.LifetimeEarnings, &b.PendingBalance, &b.AvailableBalance, &b.PayoutStatus, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &b, nil
}
