package repositories

import (
	"context"

	"campus-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type SupplyRequestRepository struct {
	DB *pgxpool.Pool
}

func NewSupplyRequestRepository(db *pgxpool.Pool) *SupplyRequestRepository {
	return &SupplyRequestRepository{DB: db}
}

func (r *SupplyRequestRepository) CreateTx(ctx context.Context, tx pgx.Tx, s *models.SupplyRequest) error {
	return tx.QueryRow(ctx,
		`INSERT INTO supply_requests(id, request_id, item_id, quantity, purpose, date_and_time_needed)
         VALUES($1, $2, $3, $4, $5, $6)
         RETURNING created_at, updated_at`,
		s.ID, s.RequestID, s.ItemID, s.Quantity, s.Purpose, s.DateAndTimeNeeded,
	).Scan(&s.CreatedAt, &s.UpdatedAt)
}

func (r *SupplyRequestRepository) GetByRequestID(ctx context.Context, requestID string) (*models.SupplyRequest, error) {
	row := r.DB.QueryRow(ctx,
		`SELECT sr.id, sr.request_id, sr.item_id, i.name, sr.quantity, sr.purpose,
                sr.date_and_time_needed, sr.created_at, sr.updated_at
         FROM supply_requests sr
         JOIN inventory_items i ON i.id = sr.item_id
         WHERE sr.request_id=$1`, requestID)

	var s models.SupplyRequest
	err := row.Scan(&s.ID, &s.RequestID, &s.ItemID, &s.ItemName, &s.Quantity,
		&s.Purpose, &s.DateAndTimeNeeded, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}
