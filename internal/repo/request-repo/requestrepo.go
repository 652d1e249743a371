package requestrepo

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

const columns = `id, creator_id, requested_amount, status, payout_id, escrow_held, reason, created_at, updated_at`

type Repository struct {
	db pg.Database
}

func New(db pg.Database) *Repository {
	return &Repository{
		db: db,
	}
}

func (r *Repository) CreateRequest(ctx context.Context, req *domain.PayoutRequest) (*domain.PayoutRequest, error) {
	query := `
        INSERT INTO payout_requests (id, creator_id, requested_amount, status, escrow_held)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING ` + columns
	created, err := scan(r.db.QueryRow(ctx, query, req.ID, req.CreatorID, req.RequestedAmount, req.Status, req.EscrowHeld))
	if err != nil {
		zap.L().Error("failed to create payout request", zap.String("creator_id", req.CreatorID.String()), zap.Error(err))
		return nil, err
	}
	return created, nil
}

func (r *Repository) GetRequest(ctx context.Context, id uuid.UUID) (*domain.PayoutRequest, error) {
	query := `
        SELECT ` + columns + `
        FROM payout_requests
        WHERE id = $1
    `
	return r.one(ctx, "get payout request", query, id)
}

// LockRequest reads the request with a row lock held until the transaction ends.
func (r *Repository) LockRequest(ctx context.Context, id uuid.UUID) (*domain.PayoutRequest, error) {
	query := `
        SELECT ` + columns + `
        FROM payout_requests
        WHERE id = $1
        FOR UPDATE
    `
	return r.one(ctx, "lock payout request", query, id)
}

func (r *Repository) ListRequests(ctx context.Context, filter domain.RequestFilter) ([]domain.PayoutRequest, error) {
	var (
		where []string
		args  []any
	)
	if filter.CreatorID != nil {
		args = append(args, *filter.CreatorID)
		where = append(where, "creator_id = $"+strconv.Itoa(len(args)))
	}
	if len(filter.Statuses) > 0 {
		args = append(args, statusStrings(filter.Statuses))
		where = append(where, "status = ANY($"+strconv.Itoa(len(args))+")")
	}

	query := `SELECT ` + columns + ` FROM payout_requests`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY created_at DESC, id`
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += ` LIMIT $` + strconv.Itoa(len(args))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += ` OFFSET $` + strconv.Itoa(len(args))
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		zap.L().Error("failed to list payout requests", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var requests []domain.PayoutRequest
	for rows.Next() {
		req, err := scan(rows)
		if err != nil {
			zap.L().Error("failed to scan payout request", zap.Error(err))
			return nil, err
		}
		requests = append(requests, *req)
	}
	if err := rows.Err(); err != nil {
		zap.L().Error("rows iteration error", zap.Error(err))
		return nil, err
	}
	return requests, nil
}

// TransitionRequest moves an unlinked request between states. Returns nil when the
// request is not in one of t.From.
func (r *Repository) TransitionRequest(ctx context.Context, id uuid.UUID, t domain.RequestTransition) (*domain.PayoutRequest, error) {
	query := `
        UPDATE payout_requests
        SET status = $2, reason = COALESCE(NULLIF($3, ''), reason), escrow_held = escrow_held AND NOT $4, updated_at = NOW()
        WHERE id = $1 AND status = ANY($5) AND payout_id IS NULL
        RETURNING ` + columns
	return r.one(ctx, "transition payout request", query, id, t.To, t.Reason, t.ReleaseEscrow, statusStrings(t.From))
}

// AttachPayout links a payout to an approved, unlinked request and marks it PROCESSING.
func (r *Repository) AttachPayout(ctx context.Context, id, payoutID uuid.UUID) (*domain.PayoutRequest, error) {
	query := `
        UPDATE payout_requests
        SET status = 'PROCESSING', payout_id = $2, escrow_held = TRUE, updated_at = NOW()
        WHERE id = $1 AND status = 'APPROVED' AND payout_id IS NULL
        RETURNING ` + columns
	return r.one(ctx, "attach payout", query, id, payoutID)
}

// DetachPayout returns a request to APPROVED after its payout failed. The escrow
// was reversed, so the request no longer holds funds.
func (r *Repository) DetachPayout(ctx context.Context, id, payoutID uuid.UUID) (*domain.PayoutRequest, error) {
	query := `
        UPDATE payout_requests
        SET status = 'APPROVED', payout_id = NULL, escrow_held = FALSE, updated_at = NOW()
        WHERE id = $1 AND payout_id = $2 AND status = 'PROCESSING'
        RETURNING ` + columns
	return r.one(ctx, "detach payout", query, id, payoutID)
}

func (r *Repository) CompleteRequest(ctx context.Context, id, payoutID uuid.UUID) (*domain.PayoutRequest, error) {
	query := `
        UPDATE payout_requests
        SET status = 'COMPLETED', updated_at = NOW()
        WHERE id = $1 AND payout_id = $2 AND status = 'PROCESSING'
        RETURNING ` + columns
	return r.one(ctx, "complete payout request", query, id, payoutID)
}

func (r *Repository) one(ctx context.Context, op, query string, args ...any) (*domain.PayoutRequest, error) {
	req, err := scan(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		zap.L().Error("failed to "+op, zap.Error(err))
		return nil, err
	}
	return req, nil
}

func scan(row pgx.Row) (*domain.PayoutRequest, error) {
	var req domain.PayoutRequest
	err := row.Scan(&req.ID, &req.CreatorID, &req.RequestedAmount, &req.Status, &req.PayoutID,
		&req.EscrowHeld, &req.Reason, &req.CreatedAt, &req.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func statusStrings(statuses []domain.RequestStatus) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}
