package repositories

import (
	"context"
	"time"

	"campus-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type VenueRequestRepository struct {
	DB *pgxpool.Pool
}

func NewVenueRequestRepository(db *pgxpool.Pool) *VenueRequestRepository {
	return &VenueRequestRepository{DB: db}
}

func (r *VenueRequestRepository) CreateTx(ctx context.Context, tx pgx.Tx, v *models.VenueRequest) error {
	return tx.QueryRow(ctx,
		`INSERT INTO venue_requests(id, request_id, venue_id, start_time, end_time, purpose, setup_requirements)
         VALUES($1, $2, $3, $4, $5, $6, $7)
         RETURNING created_at, updated_at`,
		v.ID, v.RequestID, v.VenueID, v.StartTime, v.EndTime, v.Purpose, v.SetupRequirements,
	).Scan(&v.CreatedAt, &v.UpdatedAt)
}

func (r *VenueRequestRepository) GetByRequestID(ctx context.Context, requestID string) (*models.VenueRequest, error) {
	row := r.DB.QueryRow(ctx,
		`SELECT vr.id, vr.request_id, vr.venue_id, v.name, vr.start_time, vr.end_time,
                vr.purpose, vr.setup_requirements, vr.actual_start, vr.created_at, vr.updated_at
         FROM venue_requests vr
         JOIN venues v ON v.id = vr.venue_id
         WHERE vr.request_id=$1`, requestID)

	var vr models.VenueRequest
	err := row.Scan(&vr.ID, &vr.RequestID, &vr.VenueID, &vr.VenueName, &vr.StartTime,
		&vr.EndTime, &vr.Purpose, &vr.SetupRequirements, &vr.ActualStart,
		&vr.CreatedAt, &vr.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &vr, nil
}

// CountApprovedOverlapping counts APPROVED bookings for a venue whose
// [start, end] window touches the candidate window. Both ends are inclusive,
// so back-to-back bookings sharing a boundary instant do conflict.
func (r *VenueRequestRepository) CountApprovedOverlapping(ctx context.Context, venueID int, start, end time.Time) (int, error) {
	var count int
	err := r.DB.QueryRow(ctx,
		`SELECT COUNT(*)
         FROM venue_requests vr
         JOIN requests req ON req.id = vr.request_id
         WHERE vr.venue_id=$1
           AND req.status=$2
           AND vr.start_time <= $3
           AND vr.end_time >= $4`,
		venueID, models.StatusApproved, end, start).Scan(&count)
	return count, err
}

// SetActualStartTx stamps when the booking actually began (venue handover)
func (r *VenueRequestRepository) SetActualStartTx(ctx context.Context, tx pgx.Tx, requestID string, at time.Time) error {
	_, err := tx.Exec(ctx,
		`UPDATE venue_requests SET actual_start=$1, updated_at=NOW() WHERE request_id=$2`,
		at, requestID)
	return err
}

// ListApprovedForVenue returns approved bookings for a venue ordered by start
func (r *VenueRequestRepository) ListApprovedForVenue(ctx context.Context, venueID int) ([]*models.VenueRequest, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT vr.id, vr.request_id, vr.venue_id, v.name, vr.start_time, vr.end_time,
                vr.purpose, vr.setup_requirements, vr.actual_start, vr.created_at, vr.updated_at
         FROM venue_requests vr
         JOIN venues v ON v.id = vr.venue_id
         JOIN requests req ON req.id = vr.request_id
         WHERE vr.venue_id=$1 AND req.status=$2
         ORDER BY vr.start_time`,
		venueID, models.StatusApproved)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bookings []*models.VenueRequest
	for rows.Next() {
		var vr models.VenueRequest
		if err := rows.Scan(&vr.ID, &vr.RequestID, &vr.VenueID, &vr.VenueName, &vr.StartTime,
			&vr.EndTime, &vr.Purpose, &vr.SetupRequirements, &vr.ActualStart,
			&vr.CreatedAt, &vr.UpdatedAt); err != nil {
			return nil, err
		}
		bookings = append(bookings, &vr)
	}
	return bookings, rows.Err()
}
