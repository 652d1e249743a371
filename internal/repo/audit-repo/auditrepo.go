package auditrepo

import (
	"context"

	"go.uber.org/zap"

	"github.com/GlebRadaev/creator-ledger/internal/domain"
	"github.com/GlebRadaev/creator-ledger/internal/pg"
)

type Repository struct {
	db pg.Database
}

func New(db pg.Database) *Repository {
	return &Repository{
		db: db,
	}
}

func (r *Repository) Record(ctx context.Context, e *domain.AuditEntry) error {
	query := `
        INSERT INTO ledger_audit_log (entity_type, entity_id, action, prev_state, next_state, actor, details)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
    `
	_, err := r.db.Exec(ctx, query, e.EntityType, e.EntityID, e.Action, e.PrevState, e.NextState, e.Actor, e.Details)
	if err != nil {
		zap.L().Error("failed to record audit entry",
			zap.String("entity_type", e.EntityType), zap.String("entity_id", e.EntityID), zap.Error(err))
		return err
	}
	return nil
}

// History returns the entries of one entity, oldest first.
func (r *Repository) History(ctx context.Context, entityType, entityID string) ([]domain.AuditEntry, error) {
	query := `
        SELECT id, entity_type, entity_id, action, prev_state, next_state, actor, details, created_at
        FROM ledger_audit_log
        WHERE entity_type = $1 AND entity_id = $2
        ORDER BY id
    `
	rows, err := r.db.Query(ctx, query, entityType, entityID)
	if err != nil {
		zap.L().Error("failed to get audit history", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var entries []domain.AuditEntry
	for rows.Next() {
		var e domain.AuditEntry
		if err := rows.Scan(&e.ID, &e.EntityType, &e.EntityID, &e.Action, &e.PrevState, &e.NextState, &e.Actor, &e.Details, &e.CreatedAt); err != nil {
			zap.L().Error("failed to scan audit entry", zap.Error(err))
			return nil, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		zap.L().Error("rows iteration error", zap.Error(err))
		return nil, err
	}
	return entries, nil
}
