package payoutrepo

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/GlebRadaev/creator-ledger/internal/domain"
	"github.com/GlebRadaev/creator-ledger/internal/pg"
)

const columns = `id, payout_request_id, creator_id, amount, status, payment_method, provider_reference, failure_reason, processed_at, created_at, updated_at`

type Repository struct {
	db pg.Database
}

func New(db pg.Database) *Repository {
	return &Repository{
		db: db,
	}
}

// CreatePayout fails with domain.ErrDuplicatePayout when the request already has a live payout.
func (r *Repository) CreatePayout(ctx context.Context, p *domain.Payout) (*domain.Payout, error) {
	query := `
        INSERT INTO payouts (id, payout_request_id, creator_id, amount, status, payment_method)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING ` + columns
	created, err := scan(r.db.QueryRow(ctx, query, p.ID, p.RequestID, p.CreatorID, p.Amount, p.Status, p.PaymentMethod))
	if err != nil {
		if pg.IsUniqueViolation(err) {
			return nil, domain.ErrDuplicatePayout
		}
		zap.L().Error("failed to create payout", zap.String("request_id", p.RequestID.String()), zap.Error(err))
		return nil, err
	}
	return created, nil
}

func (r *Repository) GetPayout(ctx context.Context, id uuid.UUID) (*domain.Payout, error) {
	query := `
        SELECT ` + columns + `
        FROM payouts
        WHERE id = $1
    `
	return r.one(ctx, "get payout", query, id)
}

func (r *Repository) ListPayouts(ctx context.Context, filter domain.PayoutFilter) ([]domain.Payout, error) {
	var (
		where []string
		args  []any
	)
	if filter.CreatorID != nil {
		args = append(args, *filter.CreatorID)
		where = append(where, "creator_id = $"+strconv.Itoa(len(args)))
	}
	if len(filter.Statuses) > 0 {
		statuses := make([]string, len(filter.Statuses))
		for i, s := range filter.Statuses {
			statuses[i] = string(s)
		}
		args = append(args, statuses)
		where = append(where, "status = ANY($"+strconv.Itoa(len(args))+")")
	}

	query := `SELECT ` + columns + ` FROM payouts`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY created_at, id`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		zap.L().Error("failed to list payouts", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var payouts []domain.Payout
	for rows.Next() {
		p, err := scan(rows)
		if err != nil {
			zap.L().Error("failed to scan payout", zap.Error(err))
			return nil, err
		}
		payouts = append(payouts, *p)
	}
	if err := rows.Err(); err != nil {
		zap.L().Error("rows iteration error", zap.Error(err))
		return nil, err
	}
	return payouts, nil
}

// TransitionPayout applies t only when the payout is in one of t.From. Returns nil otherwise.
func (r *Repository) TransitionPayout(ctx context.Context, id uuid.UUID, t domain.PayoutTransition) (*domain.Payout, error) {
	from := make([]string, len(t.From))
	for i, s := range t.From {
		from[i] = string(s)
	}
	query := `
        UPDATE payouts
        SET status = $2,
            provider_reference = COALESCE($3, provider_reference),
            failure_reason = COALESCE($4, failure_reason),
            processed_at = COALESCE($5, processed_at),
            updated_at = NOW()
        WHERE id = $1 AND status = ANY($6)
        RETURNING ` + columns
	return r.one(ctx, "transition payout", query, id, t.To, t.ProviderReference, t.FailureReason, t.ProcessedAt, from)
}

func (r *Repository) one(ctx context.Context, op, query string, args ...any) (*domain.Payout, error) {
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

func scan(row pgx.Row) (*domain.Payout, error) {
	var p domain.Payout
	err := row.Scan(&p.ID, &p.RequestID, &p.CreatorID, &p.Amount, &p.Status, &p.PaymentMethod,
		&p.ProviderReference, &p.FailureReason, &p.ProcessedAt, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
