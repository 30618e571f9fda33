package repositories

import (
	"context"
	"time"

	"campus-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ReturnableRequestRepository struct {
	DB *pgxpool.Pool
}

func NewReturnableRequestRepository(db *pgxpool.Pool) *ReturnableRequestRepository {
	return &ReturnableRequestRepository{DB: db}
}

func (r *ReturnableRequestRepository) CreateTx(ctx context.Context, tx pgx.Tx, rr *models.ReturnableRequest) error {
	return tx.QueryRow(ctx,
		`INSERT INTO returnable_requests(id, request_id, item_id, quantity, purpose,
                date_and_time_needed, return_date_and_time)
         VALUES($1, $2, $3, $4, $5, $6, $7)
         RETURNING created_at, updated_at`,
		rr.ID, rr.RequestID, rr.ItemID, rr.Quantity, rr.Purpose,
		rr.DateAndTimeNeeded, rr.ReturnDateAndTime,
	).Scan(&rr.CreatedAt, &rr.UpdatedAt)
}

func (r *ReturnableRequestRepository) GetByRequestID(ctx context.Context, requestID string) (*models.ReturnableRequest, error) {
	row := r.DB.QueryRow(ctx,
		`SELECT rr.id, rr.request_id, rr.item_id, i.name, rr.quantity, rr.purpose,
                rr.date_and_time_needed, rr.return_date_and_time, rr.returned_at,
                rr.created_at, rr.updated_at
         FROM returnable_requests rr
         JOIN inventory_items i ON i.id = rr.item_id
         WHERE rr.request_id=$1`, requestID)

	var rr models.ReturnableRequest
	err := row.Scan(&rr.ID, &rr.RequestID, &rr.ItemID, &rr.ItemName, &rr.Quantity,
		&rr.Purpose, &rr.DateAndTimeNeeded, &rr.ReturnDateAndTime, &rr.ReturnedAt,
		&rr.CreatedAt, &rr.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &rr, nil
}

// MarkReturnedTx stamps the return inside the completion transaction
func (r *ReturnableRequestRepository) MarkReturnedTx(ctx context.Context, tx pgx.Tx, requestID string, at time.Time) error {
	_, err := tx.Exec(ctx,
		`UPDATE returnable_requests SET returned_at=$1, updated_at=NOW() WHERE request_id=$2`,
		at, requestID)
	return err
}

// ListOverdue returns loans whose agreed return time has passed without a
// recorded return, for reminder notifications.
func (r *ReturnableRequestRepository) ListOverdue(ctx context.Context, asOf time.Time) ([]*models.ReturnableRequest, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT rr.id, rr.request_id, rr.item_id, i.name, rr.quantity, rr.purpose,
                rr.date_and_time_needed, rr.return_date_and_time, rr.returned_at,
                rr.created_at, rr.updated_at
         FROM returnable_requests rr
         JOIN inventory_items i ON i.id = rr.item_id
         JOIN requests req ON req.id = rr.request_id
         WHERE req.status=$1
           AND rr.returned_at IS NULL
           AND rr.return_date_and_time IS NOT NULL
           AND rr.return_date_and_time < $2
         ORDER BY rr.return_date_and_time`,
		models.StatusApproved, asOf)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var loans []*models.ReturnableRequest
	for rows.Next() {
		var rr models.ReturnableRequest
		if err := rows.Scan(&rr.ID, &rr.RequestID, &rr.ItemID, &rr.ItemName, &rr.Quantity,
			&rr.Purpose, &rr.DateAndTimeNeeded, &rr.ReturnDateAndTime, &rr.ReturnedAt,
			&rr.CreatedAt, &rr.UpdatedAt); err != nil {
			return nil, err
		}
		loans = append(loans, &rr)
	}
	return loans, rows.Err()
}
