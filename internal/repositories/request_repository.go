package repositories

import (
	"context"
	"fmt"
	"strings"

	"campus-backend/internal/models"
	"campus-backend/internal/query"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type RequestRepository struct {
	DB *pgxpool.Pool
}

func NewRequestRepository(db *pgxpool.Pool) *RequestRepository {
	return &RequestRepository{DB: db}
}

// RequestSortable maps client-facing sort names to real columns for list
// endpoints. Anything outside this map is rejected at parse time.
var RequestSortable = map[string]string{
	"created_at": "created_at",
	"updated_at": "updated_at",
	"priority":   "priority",
	"status":     "status",
	"type":       "type",
	"title":      "title",
}

const requestColumns = `id, type, status, priority, title, user_id, department_id,
       reviewed_by, reject_reason, approved_at, completed_at, created_at, updated_at`

// CreateTx inserts the parent request row inside the submission transaction
func (r *RequestRepository) CreateTx(ctx context.Context, tx pgx.Tx, req *models.Request) error {
	return tx.QueryRow(ctx,
		`INSERT INTO requests(id, type, status, priority, title, user_id, department_id)
         VALUES($1, $2, $3, $4, $5, $6, $7)
         RETURNING created_at, updated_at`,
		req.ID, req.Type, req.Status, req.Priority, req.Title, req.UserID, req.DepartmentID,
	).Scan(&req.CreatedAt, &req.UpdatedAt)
}

func (r *RequestRepository) GetByID(ctx context.Context, id string) (*models.Request, error) {
	row := r.DB.QueryRow(ctx,
		`SELECT `+requestColumns+` FROM requests WHERE id=$1`, id)
	return scanRequest(row)
}

// GetForUpdateTx locks the request row for the duration of a status
// transition, so concurrent transitions on the same request serialize.
func (r *RequestRepository) GetForUpdateTx(ctx context.Context, tx pgx.Tx, id string) (*models.Request, error) {
	row := tx.QueryRow(ctx,
		`SELECT `+requestColumns+` FROM requests WHERE id=$1 FOR UPDATE`, id)
	return scanRequest(row)
}

func scanRequest(row pgx.Row) (*models.Request, error) {
	var req models.Request
	err := row.Scan(&req.ID, &req.Type, &req.Status, &req.Priority, &req.Title,
		&req.UserID, &req.DepartmentID, &req.ReviewedBy, &req.RejectReason,
		&req.ApprovedAt, &req.CompletedAt, &req.CreatedAt, &req.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &req, nil
}

// UpdateStatusTx writes the transition result. approved_at and completed_at
// are stamped only on the matching transitions; reviewed_by and reject_reason
// are written as given.
func (r *RequestRepository) UpdateStatusTx(ctx context.Context, tx pgx.Tx, req *models.Request) error {
	_, err := tx.Exec(ctx,
		`UPDATE requests
         SET status=$1, reviewed_by=$2, reject_reason=$3, approved_at=$4, completed_at=$5, updated_at=NOW()
         WHERE id=$6`,
		req.Status, req.ReviewedBy, req.RejectReason, req.ApprovedAt, req.CompletedAt, req.ID)
	return err
}

// UpdateTitle replaces the request title (used by admin correction, not by
// the normal lifecycle).
func (r *RequestRepository) UpdateTitle(ctx context.Context, id, title string) error {
	_, err := r.DB.Exec(ctx,
		`UPDATE requests SET title=$1, updated_at=NOW() WHERE id=$2`, title, id)
	return err
}

// List returns one page of requests matching the decoded filters, plus the
// total row count for pagination.
func (r *RequestRepository) List(ctx context.Context, p *query.ListParams) ([]*models.Request, int, error) {
	where, args := buildRequestFilter(p)

	var total int
	countQuery := `SELECT COUNT(*) FROM requests` + where
	if err := r.DB.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	orderBy := "created_at DESC"
	if p.SortColumn != "" {
		orderBy = p.SortColumn + " " + strings.ToUpper(p.SortOrder)
	}

	listQuery := fmt.Sprintf(`SELECT %s FROM requests%s ORDER BY %s LIMIT $%d OFFSET $%d`,
		requestColumns, where, orderBy, len(args)+1, len(args)+2)
	args = append(args, p.PerPage, p.Offset())

	rows, err := r.DB.Query(ctx, listQuery, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var requests []*models.Request
	for rows.Next() {
		var req models.Request
		if err := rows.Scan(&req.ID, &req.Type, &req.Status, &req.Priority, &req.Title,
			&req.UserID, &req.DepartmentID, &req.ReviewedBy, &req.RejectReason,
			&req.ApprovedAt, &req.CompletedAt, &req.CreatedAt, &req.UpdatedAt); err != nil {
			return nil, 0, err
		}
		requests = append(requests, &req)
	}
	return requests, total, rows.Err()
}

// buildRequestFilter turns decoded list parameters into a WHERE clause with
// positional args. Empty filter groups are skipped.
func buildRequestFilter(p *query.ListParams) (string, []any) {
	var clauses []string
	var args []any

	add := func(clause string, value any) {
		args = append(args, value)
		clauses = append(clauses, fmt.Sprintf(clause, len(args)))
	}

	if len(p.Statuses) > 0 {
		add("status = ANY($%d)", p.Statuses)
	}
	if len(p.Types) > 0 {
		add("type = ANY($%d)", p.Types)
	}
	if len(p.Priorities) > 0 {
		add("priority = ANY($%d)", p.Priorities)
	}
	if p.DepartmentID != nil {
		add("department_id = $%d", *p.DepartmentID)
	}
	if p.UserID != nil {
		add("user_id = $%d", *p.UserID)
	}
	if p.Title != "" {
		add("title ILIKE $%d", "%"+p.Title+"%")
	}
	if p.From != nil {
		add("created_at >= $%d", *p.From)
	}
	if p.To != nil {
		add("created_at <= $%d", *p.To)
	}

	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}
