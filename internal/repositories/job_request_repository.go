package repositories

import (
	"context"
	"time"

	"campus-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type JobRequestRepository struct {
	DB *pgxpool.Pool
}

func NewJobRequestRepository(db *pgxpool.Pool) *JobRequestRepository {
	return &JobRequestRepository{DB: db}
}

func (r *JobRequestRepository) CreateTx(ctx context.Context, tx pgx.Tx, j *models.JobRequest) error {
	return tx.QueryRow(ctx,
		`INSERT INTO job_requests(id, request_id, description, location, job_type, start_date, end_date)
         VALUES($1, $2, $3, $4, $5, $6, $7)
         RETURNING created_at, updated_at`,
		j.ID, j.RequestID, j.Description, j.Location, j.JobType, j.StartDate, j.EndDate,
	).Scan(&j.CreatedAt, &j.UpdatedAt)
}

func (r *JobRequestRepository) GetByRequestID(ctx context.Context, requestID string) (*models.JobRequest, error) {
	row := r.DB.QueryRow(ctx,
		`SELECT id, request_id, description, location, job_type, assigned_to, in_progress,
                start_date, end_date, actual_start, actual_end, verified_by_reviewer,
                created_at, updated_at
         FROM job_requests WHERE request_id=$1`, requestID)

	var j models.JobRequest
	err := row.Scan(&j.ID, &j.RequestID, &j.Description, &j.Location, &j.JobType,
		&j.AssignedTo, &j.InProgress, &j.StartDate, &j.EndDate, &j.ActualStart,
		&j.ActualEnd, &j.VerifiedByReviewer, &j.CreatedAt, &j.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &j, nil
}

// AssignTx sets or replaces the personnel assignment
func (r *JobRequestRepository) AssignTx(ctx context.Context, tx pgx.Tx, requestID string, personnelID int) error {
	_, err := tx.Exec(ctx,
		`UPDATE job_requests SET assigned_to=$1, updated_at=NOW() WHERE request_id=$2`,
		personnelID, requestID)
	return err
}

// StartTx marks the job in progress and stamps the actual start time
func (r *JobRequestRepository) StartTx(ctx context.Context, tx pgx.Tx, requestID string, at time.Time) error {
	_, err := tx.Exec(ctx,
		`UPDATE job_requests SET in_progress=TRUE, actual_start=$1, updated_at=NOW()
         WHERE request_id=$2`,
		at, requestID)
	return err
}

// FinishTx records the work as done. verified is set when a reviewer signs
// off rather than the assigned personnel.
func (r *JobRequestRepository) FinishTx(ctx context.Context, tx pgx.Tx, requestID string, at time.Time, verified bool) error {
	_, err := tx.Exec(ctx,
		`UPDATE job_requests SET in_progress=FALSE, actual_end=$1, verified_by_reviewer=$2, updated_at=NOW()
         WHERE request_id=$3`,
		at, verified, requestID)
	return err
}

// ListAssignedTo returns request ids of jobs assigned to one personnel user
func (r *JobRequestRepository) ListAssignedTo(ctx context.Context, personnelID int) ([]string, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT request_id FROM job_requests WHERE assigned_to=$1 ORDER BY created_at DESC`,
		personnelID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
