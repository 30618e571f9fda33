package repositories

import (
	"context"

	"campus-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type InventoryRepository struct {
	DB *pgxpool.Pool
}

func NewInventoryRepository(db *pgxpool.Pool) *InventoryRepository {
	return &InventoryRepository{DB: db}
}

func (r *InventoryRepository) Create(ctx context.Context, item *models.InventoryItem) error {
	return r.DB.QueryRow(ctx,
		`INSERT INTO inventory_items(name, description, returnable, quantity, department_id)
         VALUES($1, $2, $3, $4, $5)
         RETURNING id, created_at, updated_at`,
		item.Name, item.Description, item.Returnable, item.Quantity, item.DepartmentID,
	).Scan(&item.ID, &item.CreatedAt, &item.UpdatedAt)
}

func (r *InventoryRepository) GetByID(ctx context.Context, id int) (*models.InventoryItem, error) {
	row := r.DB.QueryRow(ctx,
		`SELECT id, name, description, returnable, quantity, quantity_out, department_id, created_at, updated_at
         FROM inventory_items WHERE id=$1`, id)
	return scanInventoryItem(row)
}

// GetByIDTx reads an item with a row lock so stock checks and adjustments
// in the same transaction see a consistent quantity.
func (r *InventoryRepository) GetByIDTx(ctx context.Context, tx pgx.Tx, id int) (*models.InventoryItem, error) {
	row := tx.QueryRow(ctx,
		`SELECT id, name, description, returnable, quantity, quantity_out, department_id, created_at, updated_at
         FROM inventory_items WHERE id=$1 FOR UPDATE`, id)
	return scanInventoryItem(row)
}

func scanInventoryItem(row pgx.Row) (*models.InventoryItem, error) {
	var item models.InventoryItem
	err := row.Scan(&item.ID, &item.Name, &item.Description, &item.Returnable,
		&item.Quantity, &item.QuantityOut, &item.DepartmentID, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *InventoryRepository) List(ctx context.Context, departmentID *int) ([]*models.InventoryItem, error) {
	query := `SELECT id, name, description, returnable, quantity, quantity_out, department_id, created_at, updated_at
              FROM inventory_items`
	args := []any{}
	if departmentID != nil {
		query += ` WHERE department_id=$1`
		args = append(args, *departmentID)
	}
	query += ` ORDER BY name`

	rows, err := r.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*models.InventoryItem
	for rows.Next() {
		var item models.InventoryItem
		if err := rows.Scan(&item.ID, &item.Name, &item.Description, &item.Returnable,
			&item.Quantity, &item.QuantityOut, &item.DepartmentID, &item.CreatedAt, &item.UpdatedAt); err != nil {
			return nil, err
		}
		items = append(items, &item)
	}
	return items, rows.Err()
}

func (r *InventoryRepository) Update(ctx context.Context, item *models.InventoryItem) error {
	_, err := r.DB.Exec(ctx,
		`UPDATE inventory_items SET name=$1, description=$2, quantity=$3, updated_at=NOW()
         WHERE id=$4`,
		item.Name, item.Description, item.Quantity, item.ID)
	return err
}

// AdjustQuantityOutTx moves stock on or off loan. delta is positive when an
// approved returnable request takes stock out, negative when it comes back.
func (r *InventoryRepository) AdjustQuantityOutTx(ctx context.Context, tx pgx.Tx, id, delta int) error {
	_, err := tx.Exec(ctx,
		`UPDATE inventory_items SET quantity_out=quantity_out+$1, updated_at=NOW() WHERE id=$2`,
		delta, id)
	return err
}

// DeductQuantityTx consumes stock permanently (supply issuance)
func (r *InventoryRepository) DeductQuantityTx(ctx context.Context, tx pgx.Tx, id, amount int) error {
	_, err := tx.Exec(ctx,
		`UPDATE inventory_items SET quantity=quantity-$1, updated_at=NOW() WHERE id=$2`,
		amount, id)
	return err
}
