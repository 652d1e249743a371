package purchaserepo

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/GlebRadaev/creator-ledger/internal/domain"
	"github.com/GlebRadaev/creator-ledger/internal/pg"
)

const columns = `id, creator_id, amount, base_price, status, earnings_accrued_amount, earnings_pending_until, earnings_released, created_at, updated_at`

type Repository struct {
	db pg.Database
}

func New(db pg.Database) *Repository {
	return &Repository{
		db: db,
	}
}

// InsertPurchase stores a completed purchase once. Redelivered facts are ignored.
func (r *Repository) InsertPurchase(ctx context.Context, p *domain.Purchase) error {
	query := `
        INSERT INTO purchases (id, creator_id, amount, base_price, status)
        VALUES ($1, $2, $3, $4, $5)
        ON CONFLICT (id) DO NOTHING
    `
	_, err := r.db.Exec(ctx, query, p.ID, p.CreatorID, p.Amount, p.BasePrice, p.Status)
	if err != nil {
		if pg.IsForeignKeyViolation(err) {
			return domain.ErrUnknownCreator
		}
		zap.L().Error("failed to insert purchase", zap.String("purchase_id", p.ID), zap.Error(err))
		return err
	}
	return nil
}

func (r *Repository) GetPurchase(ctx context.Context, id string) (*domain.Purchase, error) {
	query := `
        SELECT ` + columns + `
        FROM purchases
        WHERE id = $1
    `
	return r.one(ctx, "get purchase", query, id)
}

// MarkAccrued fixes the accrued amount. Returns nil if it was already set.
func (r *Repository) MarkAccrued(ctx context.Context, id string, amount decimal.Decimal, pendingUntil time.Time) (*domain.Purchase, error) {
	query := `
        UPDATE purchases
        SET earnings_accrued_amount = $2, earnings_pending_until = $3, earnings_released = FALSE, updated_at = NOW()
        WHERE id = $1 AND earnings_accrued_amount IS NULL AND status = 'COMPLETED'
        RETURNING ` + columns
	return r.one(ctx, "mark purchase accrued", query, id, amount, pendingUntil)
}

// MarkReleased flips earnings_released once. Returns nil if another run got there first.
func (r *Repository) MarkReleased(ctx context.Context, id string) (*domain.Purchase, error) {
	query := `
        UPDATE purchases
        SET earnings_released = TRUE, updated_at = NOW()
        WHERE id = $1 AND earnings_released = FALSE AND earnings_accrued_amount IS NOT NULL AND status = 'COMPLETED'
        RETURNING ` + columns
	return r.one(ctx, "mark purchase released", query, id)
}

// FindMatured pages through purchases whose hold ended at or before now, ordered by
// (earnings_pending_until, id) and starting strictly after the given cursor.
func (r *Repository) FindMatured(ctx context.Context, now time.Time, after domain.ReleaseCursor, limit int) ([]domain.Purchase, error) {
	query := `
        SELECT ` + columns + `
        FROM purchases
        WHERE status = 'COMPLETED' AND earnings_released = FALSE AND earnings_accrued_amount IS NOT NULL
          AND earnings_pending_until <= $1
          AND (earnings_pending_until, id) > ($2, $3)
        ORDER BY earnings_pending_until, id
        LIMIT $4
    `
	rows, err := r.db.Query(ctx, query, now, after.PendingUntil, after.ID, limit)
	if err != nil {
		zap.L().Error("failed to find matured purchases", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var purchases []domain.Purchase
	for rows.Next() {
		p, err := scan(rows)
		if err != nil {
			zap.L().Error("failed to scan purchase", zap.Error(err))
			return nil, err
		}
		purchases = append(purchases, *p)
	}
	if err := rows.Err(); err != nil {
		zap.L().Error("rows iteration error", zap.Error(err))
		return nil, err
	}
	return purchases, nil
}

func (r *Repository) AccrualTotals(ctx context.Context) ([]domain.AccrualTotals, error) {
	query := `
        SELECT creator_id,
               COALESCE(SUM(earnings_accrued_amount), 0),
               COALESCE(SUM(earnings_accrued_amount) FILTER (WHERE NOT earnings_released), 0)
        FROM purchases
        WHERE earnings_accrued_amount IS NOT NULL
        GROUP BY creator_id
    `
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		zap.L().Error("failed to sum accruals", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var totals []domain.AccrualTotals
	for rows.Next() {
		var t domain.AccrualTotals
		if err := rows.Scan(&t.CreatorID, &t.Accrued, &t.Unreleased); err != nil {
			zap.L().Error("failed to scan accrual totals", zap.Error(err))
			return nil, err
		}
		totals = append(totals, t)
	}
	if err := rows.Err(); err != nil {
		zap.L().Error("rows iteration error", zap.Error(err))
		return nil, err
	}
	return totals, nil
}

func (r *Repository) CreatorAccrualTotals(ctx context.Context, creatorID uuid.UUID) (*domain.AccrualTotals, error) {
	query := `
        SELECT COALESCE(SUM(earnings_accrued_amount), 0),
               COALESCE(SUM(earnings_accrued_amount) FILTER (WHERE NOT earnings_released), 0)
        FROM purchases
        WHERE creator_id = $1 AND earnings_accrued_amount IS NOT NULL
    `
	totals := domain.AccrualTotals{CreatorID: creatorID}
	if err := r.db.QueryRow(ctx, query, creatorID).Scan(&totals.Accrued, &totals.Unreleased); err != nil {
		zap.L().Error("failed to sum creator accruals", zap.String("creator_id", creatorID.String()), zap.Error(err))
		return nil, err
	}
	return &totals, nil
}

func (r *Repository) one(ctx context.Context, op, query string, args ...any) (*domain.Purchase, error) {
	p, err := scan(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		zap.L().Error("failed to "+op, zap.Error(err))
		return nil, err
	}
	return p, nil
}

func scan(row pgx.Row) (*domain.Purchase, error) {
	var p domain.Purchase
	err := row.Scan(&p.ID, &p.CreatorID, &p.Amount, &p.BasePrice, &p.Status,
		&p.EarningsAccruedAmount, &p.EarningsPendingUntil, &p.EarningsReleased, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
