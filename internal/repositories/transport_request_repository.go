package repositories

import (
	"context"
	"time"

	"campus-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type TransportRequestRepository struct {
	DB *pgxpool.Pool
}

func NewTransportRequestRepository(db *pgxpool.Pool) *TransportRequestRepository {
	return &TransportRequestRepository{DB: db}
}

func (r *TransportRequestRepository) CreateTx(ctx context.Context, tx pgx.Tx, t *models.TransportRequest) error {
	return tx.QueryRow(ctx,
		`INSERT INTO transport_requests(id, request_id, vehicle_id, description, destination,
                date_and_time_needed, passengers_name)
         VALUES($1, $2, $3, $4, $5, $6, $7)
         RETURNING created_at, updated_at`,
		t.ID, t.RequestID, t.VehicleID, t.Description, t.Destination,
		t.DateAndTimeNeeded, t.PassengersName,
	).Scan(&t.CreatedAt, &t.UpdatedAt)
}

func (r *TransportRequestRepository) GetByRequestID(ctx context.Context, requestID string) (*models.TransportRequest, error) {
	row := r.DB.QueryRow(ctx,
		`SELECT tr.id, tr.request_id, tr.vehicle_id, v.name, tr.description, tr.destination,
                tr.date_and_time_needed, tr.passengers_name, tr.odometer_start, tr.odometer_end,
                tr.total_distance_travelled, tr.actual_start, tr.created_at, tr.updated_at
         FROM transport_requests tr
         JOIN vehicles v ON v.id = tr.vehicle_id
         WHERE tr.request_id=$1`, requestID)
	return scanTransportRequest(row)
}

// GetByRequestIDTx reads the booking with a row lock inside the completion
// transaction.
func (r *TransportRequestRepository) GetByRequestIDTx(ctx context.Context, tx pgx.Tx, requestID string) (*models.TransportRequest, error) {
	row := tx.QueryRow(ctx,
		`SELECT tr.id, tr.request_id, tr.vehicle_id, v.name, tr.description, tr.destination,
                tr.date_and_time_needed, tr.passengers_name, tr.odometer_start, tr.odometer_end,
                tr.total_distance_travelled, tr.actual_start, tr.created_at, tr.updated_at
         FROM transport_requests tr
         JOIN vehicles v ON v.id = tr.vehicle_id
         WHERE tr.request_id=$1
         FOR UPDATE OF tr`, requestID)
	return scanTransportRequest(row)
}

func scanTransportRequest(row pgx.Row) (*models.TransportRequest, error) {
	var tr models.TransportRequest
	err := row.Scan(&tr.ID, &tr.RequestID, &tr.VehicleID, &tr.VehicleName, &tr.Description,
		&tr.Destination, &tr.DateAndTimeNeeded, &tr.PassengersName, &tr.OdometerStart,
		&tr.OdometerEnd, &tr.TotalDistanceTravelled, &tr.ActualStart, &tr.CreatedAt, &tr.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &tr, nil
}

// CountApprovedAtTime counts APPROVED bookings for the vehicle at exactly the
// given departure timestamp. Overlap is not considered; two trips an hour
// apart never conflict.
func (r *TransportRequestRepository) CountApprovedAtTime(ctx context.Context, vehicleID int, at time.Time) (int, error) {
	var count int
	err := r.DB.QueryRow(ctx,
		`SELECT COUNT(*)
         FROM transport_requests tr
         JOIN requests req ON req.id = tr.request_id
         WHERE tr.vehicle_id=$1
           AND req.status=$2
           AND tr.date_and_time_needed=$3`,
		vehicleID, models.StatusApproved, at).Scan(&count)
	return count, err
}

// ListApprovedForVehicle returns the APPROVED bookings of a vehicle, for the
// approval-time departure clash check.
func (r *TransportRequestRepository) ListApprovedForVehicle(ctx context.Context, vehicleID int) ([]*models.TransportRequest, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT tr.id, tr.request_id, tr.vehicle_id, v.name, tr.description, tr.destination,
                tr.date_and_time_needed, tr.passengers_name, tr.odometer_start, tr.odometer_end,
                tr.total_distance_travelled, tr.actual_start, tr.created_at, tr.updated_at
         FROM transport_requests tr
         JOIN vehicles v ON v.id = tr.vehicle_id
         JOIN requests req ON req.id = tr.request_id
         WHERE tr.vehicle_id=$1 AND req.status=$2
         ORDER BY tr.date_and_time_needed`,
		vehicleID, models.StatusApproved)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bookings []*models.TransportRequest
	for rows.Next() {
		var tr models.TransportRequest
		if err := rows.Scan(&tr.ID, &tr.RequestID, &tr.VehicleID, &tr.VehicleName, &tr.Description,
			&tr.Destination, &tr.DateAndTimeNeeded, &tr.PassengersName, &tr.OdometerStart,
			&tr.OdometerEnd, &tr.TotalDistanceTravelled, &tr.ActualStart, &tr.CreatedAt, &tr.UpdatedAt); err != nil {
			return nil, err
		}
		bookings = append(bookings, &tr)
	}
	return bookings, rows.Err()
}

// SetOdometerStartTx records the reading taken before departure
func (r *TransportRequestRepository) SetOdometerStartTx(ctx context.Context, tx pgx.Tx, requestID string, reading float64, at time.Time) error {
	_, err := tx.Exec(ctx,
		`UPDATE transport_requests
         SET odometer_start=$1, actual_start=$2, updated_at=NOW()
         WHERE request_id=$3`,
		reading, at, requestID)
	return err
}

// CompleteTx writes the end reading and the distance derived from it
func (r *TransportRequestRepository) CompleteTx(ctx context.Context, tx pgx.Tx, requestID string, odometerEnd, distance float64) error {
	_, err := tx.Exec(ctx,
		`UPDATE transport_requests
         SET odometer_end=$1, total_distance_travelled=$2, updated_at=NOW()
         WHERE request_id=$3`,
		odometerEnd, distance, requestID)
	return err
}

// ListUpcomingBookings returns APPROVED or REVIEWED transport requests for a
// vehicle with a departure after the given instant. Used to warn bookers when
// the vehicle drops out for maintenance.
func (r *TransportRequestRepository) ListUpcomingBookings(ctx context.Context, vehicleID int, after time.Time) ([]*models.TransportRequest, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT tr.id, tr.request_id, tr.vehicle_id, v.name, tr.description, tr.destination,
                tr.date_and_time_needed, tr.passengers_name, tr.odometer_start, tr.odometer_end,
                tr.total_distance_travelled, tr.actual_start, tr.created_at, tr.updated_at
         FROM transport_requests tr
         JOIN vehicles v ON v.id = tr.vehicle_id
         JOIN requests req ON req.id = tr.request_id
         WHERE tr.vehicle_id=$1
           AND req.status = ANY($2)
           AND tr.date_and_time_needed > $3
         ORDER BY tr.date_and_time_needed`,
		vehicleID, []string{models.StatusApproved, models.StatusReviewed}, after)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bookings []*models.TransportRequest
	for rows.Next() {
		var tr models.TransportRequest
		if err := rows.Scan(&tr.ID, &tr.RequestID, &tr.VehicleID, &tr.VehicleName, &tr.Description,
			&tr.Destination, &tr.DateAndTimeNeeded, &tr.PassengersName, &tr.OdometerStart,
			&tr.OdometerEnd, &tr.TotalDistanceTravelled, &tr.ActualStart, &tr.CreatedAt, &tr.UpdatedAt); err != nil {
			return nil, err
		}
		bookings = append(bookings, &tr)
	}
	return bookings, rows.Err()
}

// OwnerOf returns the requester's user id for a transport request
func (r *TransportRequestRepository) OwnerOf(ctx context.Context, requestID string) (int, error) {
	var userID int
	err := r.DB.QueryRow(ctx,
		`SELECT user_id FROM requests WHERE id=$1`, requestID).Scan(&userID)
	return userID, err
}
