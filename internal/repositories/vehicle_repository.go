package repositories

import (
	"context"

	"campus-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type VehicleRepository struct {
	DB *pgxpool.Pool
}

func NewVehicleRepository(db *pgxpool.Pool) *VehicleRepository {
	return &VehicleRepository{DB: db}
}

func (r *VehicleRepository) Create(ctx context.Context, v *models.Vehicle) error {
	if v.Status == "" {
		v.Status = models.ResourceAvailable
	}
	return r.DB.QueryRow(ctx,
		`INSERT INTO vehicles(name, plate_number, capacity, status, department_id, odometer, maintenance_interval)
         VALUES($1, $2, $3, $4, $5, $6, $7)
         RETURNING id, created_at, updated_at`,
		v.Name, v.PlateNumber, v.Capacity, v.Status, v.DepartmentID, v.Odometer, v.MaintenanceInterval,
	).Scan(&v.ID, &v.CreatedAt, &v.UpdatedAt)
}

func (r *VehicleRepository) GetByID(ctx context.Context, id int) (*models.Vehicle, error) {
	row := r.DB.QueryRow(ctx,
		`SELECT id, name, plate_number, capacity, status, department_id,
                odometer, maintenance_interval, requires_maintenance, created_at, updated_at
         FROM vehicles WHERE id=$1`, id)
	return scanVehicle(row)
}

// GetByIDTx reads a vehicle inside a caller-managed transaction with a row
// lock, so odometer updates from concurrent completions serialize.
func (r *VehicleRepository) GetByIDTx(ctx context.Context, tx pgx.Tx, id int) (*models.Vehicle, error) {
	row := tx.QueryRow(ctx,
		`SELECT id, name, plate_number, capacity, status, department_id,
                odometer, maintenance_interval, requires_maintenance, created_at, updated_at
         FROM vehicles WHERE id=$1 FOR UPDATE`, id)
	return scanVehicle(row)
}

func scanVehicle(row pgx.Row) (*models.Vehicle, error) {
	var v models.Vehicle
	err := row.Scan(&v.ID, &v.Name, &v.PlateNumber, &v.Capacity, &v.Status,
		&v.DepartmentID, &v.Odometer, &v.MaintenanceInterval, &v.RequiresMaintenance,
		&v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *VehicleRepository) List(ctx context.Context) ([]*models.Vehicle, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT id, name, plate_number, capacity, status, department_id,
                odometer, maintenance_interval, requires_maintenance, created_at, updated_at
         FROM vehicles ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var vehicles []*models.Vehicle
	for rows.Next() {
		var v models.Vehicle
		if err := rows.Scan(&v.ID, &v.Name, &v.PlateNumber, &v.Capacity, &v.Status,
			&v.DepartmentID, &v.Odometer, &v.MaintenanceInterval, &v.RequiresMaintenance,
			&v.CreatedAt, &v.UpdatedAt); err != nil {
			return nil, err
		}
		vehicles = append(vehicles, &v)
	}
	return vehicles, rows.Err()
}

func (r *VehicleRepository) UpdateStatus(ctx context.Context, id int, status string) error {
	_, err := r.DB.Exec(ctx,
		`UPDATE vehicles SET status=$1, updated_at=NOW() WHERE id=$2`, status, id)
	return err
}

func (r *VehicleRepository) UpdateStatusTx(ctx context.Context, tx pgx.Tx, id int, status string) error {
	_, err := tx.Exec(ctx,
		`UPDATE vehicles SET status=$1, updated_at=NOW() WHERE id=$2`, status, id)
	return err
}

// UpdateOdometerTx advances the vehicle odometer inside a transaction
func (r *VehicleRepository) UpdateOdometerTx(ctx context.Context, tx pgx.Tx, id int, odometer float64) error {
	_, err := tx.Exec(ctx,
		`UPDATE vehicles SET odometer=$1, updated_at=NOW() WHERE id=$2`, odometer, id)
	return err
}

// MarkRequiresMaintenance flags the vehicle as due for service and takes it
// out of rotation.
func (r *VehicleRepository) MarkRequiresMaintenance(ctx context.Context, id int) error {
	_, err := r.DB.Exec(ctx,
		`UPDATE vehicles SET requires_maintenance=TRUE, status=$1, updated_at=NOW() WHERE id=$2`,
		models.ResourceUnderMaintenance, id)
	return err
}

// RecordMaintenance appends a service record and clears the maintenance flag
func (r *VehicleRepository) RecordMaintenance(ctx context.Context, h *models.MaintenanceHistory) error {
	err := r.DB.QueryRow(ctx,
		`INSERT INTO maintenance_history(vehicle_id, odometer_reading, description, performed_by)
         VALUES($1, $2, $3, $4)
         RETURNING id, created_at`,
		h.VehicleID, h.OdometerReading, h.Description, h.PerformedBy,
	).Scan(&h.ID, &h.CreatedAt)
	if err != nil {
		return err
	}
	_, err = r.DB.Exec(ctx,
		`UPDATE vehicles SET requires_maintenance=FALSE, status=$1, updated_at=NOW() WHERE id=$2`,
		models.ResourceAvailable, h.VehicleID)
	return err
}

func (r *VehicleRepository) ListMaintenance(ctx context.Context, vehicleID int) ([]*models.MaintenanceHistory, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT id, vehicle_id, odometer_reading, description, performed_by, created_at
         FROM maintenance_history WHERE vehicle_id=$1 ORDER BY created_at DESC`,
		vehicleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var history []*models.MaintenanceHistory
	for rows.Next() {
		var h models.MaintenanceHistory
		if err := rows.Scan(&h.ID, &h.VehicleID, &h.OdometerReading, &h.Description,
			&h.PerformedBy, &h.CreatedAt); err != nil {
			return nil, err
		}
		history = append(history, &h)
	}
	return history, rows.Err()
}

// GetLastServiceOdometer returns the odometer reading at the most recent
// service, or 0 when the vehicle has never been serviced.
func (r *VehicleRepository) GetLastServiceOdometer(ctx context.Context, vehicleID int) (float64, error) {
	var reading float64
	err := r.DB.QueryRow(ctx,
		`SELECT odometer_reading FROM maintenance_history
         WHERE vehicle_id=$1 ORDER BY created_at DESC LIMIT 1`,
		vehicleID).Scan(&reading)
	if err == pgx.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return reading, nil
}
