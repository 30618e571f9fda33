package repositories

import (
	"context"

	"campus-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// AuditLogRepository writes to the append-only audit trail. There are no
// update or delete methods on purpose.
type AuditLogRepository struct {
	DB *pgxpool.Pool
}

func NewAuditLogRepository(db *pgxpool.Pool) *AuditLogRepository {
	return &AuditLogRepository{DB: db}
}

// CreateTx appends an audit row inside the same transaction as the mutation
// it records, so the row exists iff the mutation committed.
func (r *AuditLogRepository) CreateTx(ctx context.Context, tx pgx.Tx, log *models.AuditLog) error {
	return tx.QueryRow(ctx,
		`INSERT INTO audit_logs(entity_id, entity_type, change_type, old_value, new_value, changed_by)
         VALUES($1, $2, $3, $4, $5, $6)
         RETURNING id, created_at`,
		log.EntityID, log.EntityType, log.ChangeType, log.OldValue, log.NewValue, log.ChangedBy,
	).Scan(&log.ID, &log.CreatedAt)
}

// ListByEntity returns the change history of one entity, oldest first
func (r *AuditLogRepository) ListByEntity(ctx context.Context, entityID string) ([]*models.AuditLog, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT id, entity_id, entity_type, change_type, old_value, new_value, changed_by, created_at
         FROM audit_logs WHERE entity_id=$1 ORDER BY created_at`,
		entityID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []*models.AuditLog
	for rows.Next() {
		var log models.AuditLog
		if err := rows.Scan(&log.ID, &log.EntityID, &log.EntityType, &log.ChangeType,
			&log.OldValue, &log.NewValue, &log.ChangedBy, &log.CreatedAt); err != nil {
			return nil, err
		}
		logs = append(logs, &log)
	}
	return logs, rows.Err()
}
