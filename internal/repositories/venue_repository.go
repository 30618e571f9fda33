package repositories

import (
	"context"

	"campus-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type VenueRepository struct {
	DB *pgxpool.Pool
}

func NewVenueRepository(db *pgxpool.Pool) *VenueRepository {
	return &VenueRepository{DB: db}
}

func (r *VenueRepository) Create(ctx context.Context, v *models.Venue) error {
	if v.Status == "" {
		v.Status = models.ResourceAvailable
	}
	return r.DB.QueryRow(ctx,
		`INSERT INTO venues(name, location, capacity, status, department_id)
         VALUES($1, $2, $3, $4, $5)
         RETURNING id, created_at, updated_at`,
		v.Name, v.Location, v.Capacity, v.Status, v.DepartmentID,
	).Scan(&v.ID, &v.CreatedAt, &v.UpdatedAt)
}

func (r *VenueRepository) GetByID(ctx context.Context, id int) (*models.Venue, error) {
	row := r.DB.QueryRow(ctx,
		`SELECT id, name, location, capacity, status, department_id, created_at, updated_at
         FROM venues WHERE id=$1`, id)

	var v models.Venue
	err := row.Scan(&v.ID, &v.Name, &v.Location, &v.Capacity, &v.Status,
		&v.DepartmentID, &v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// GetByIDTx reads a venue inside a caller-managed transaction with a row
// lock, so concurrent approvals of bookings for the same venue serialize.
func (r *VenueRepository) GetByIDTx(ctx context.Context, tx pgx.Tx, id int) (*models.Venue, error) {
	row := tx.QueryRow(ctx,
		`SELECT id, name, location, capacity, status, department_id, created_at, updated_at
         FROM venues WHERE id=$1 FOR UPDATE`, id)

	var v models.Venue
	err := row.Scan(&v.ID, &v.Name, &v.Location, &v.Capacity, &v.Status,
		&v.DepartmentID, &v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *VenueRepository) List(ctx context.Context) ([]*models.Venue, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT id, name, location, capacity, status, department_id, created_at, updated_at
         FROM venues ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var venues []*models.Venue
	for rows.Next() {
		var v models.Venue
		if err := rows.Scan(&v.ID, &v.Name, &v.Location, &v.Capacity, &v.Status,
			&v.DepartmentID, &v.CreatedAt, &v.UpdatedAt); err != nil {
			return nil, err
		}
		venues = append(venues, &v)
	}
	return venues, rows.Err()
}

func (r *VenueRepository) Update(ctx context.Context, v *models.Venue) error {
	_, err := r.DB.Exec(ctx,
		`UPDATE venues SET name=$1, location=$2, capacity=$3, status=$4, updated_at=NOW()
         WHERE id=$5`,
		v.Name, v.Location, v.Capacity, v.Status, v.ID)
	return err
}

func (r *VenueRepository) UpdateStatus(ctx context.Context, id int, status string) error {
	_, err := r.DB.Exec(ctx,
		`UPDATE venues SET status=$1, updated_at=NOW() WHERE id=$2`, status, id)
	return err
}

// UpdateStatusTx flips a venue's status inside a caller-managed transaction
func (r *VenueRepository) UpdateStatusTx(ctx context.Context, tx pgx.Tx, id int, status string) error {
	_, err := tx.Exec(ctx,
		`UPDATE venues SET status=$1, updated_at=NOW() WHERE id=$2`, status, id)
	return err
}
