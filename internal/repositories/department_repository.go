package repositories

import (
	"context"

	"campus-backend/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

type DepartmentRepository struct {
	DB *pgxpool.Pool
}

func NewDepartmentRepository(db *pgxpool.Pool) *DepartmentRepository {
	return &DepartmentRepository{DB: db}
}

func (r *DepartmentRepository) Create(ctx context.Context, d *models.Department) error {
	return r.DB.QueryRow(ctx,
		`INSERT INTO departments(name, description, accepts_jobs)
         VALUES($1, $2, $3)
         RETURNING id, created_at, updated_at`,
		d.Name, d.Description, d.AcceptsJobs,
	).Scan(&d.ID, &d.CreatedAt, &d.UpdatedAt)
}

func (r *DepartmentRepository) GetByID(ctx context.Context, id int) (*models.Department, error) {
	row := r.DB.QueryRow(ctx,
		`SELECT id, name, description, accepts_jobs, created_at, updated_at
         FROM departments WHERE id=$1`, id)

	var d models.Department
	err := row.Scan(&d.ID, &d.Name, &d.Description, &d.AcceptsJobs, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *DepartmentRepository) List(ctx context.Context) ([]*models.Department, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT id, name, description, accepts_jobs, created_at, updated_at
         FROM departments ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var depts []*models.Department
	for rows.Next() {
		var d models.Department
		if err := rows.Scan(&d.ID, &d.Name, &d.Description, &d.AcceptsJobs, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, err
		}
		depts = append(depts, &d)
	}
	return depts, rows.Err()
}

func (r *DepartmentRepository) Update(ctx context.Context, d *models.Department) error {
	_, err := r.DB.Exec(ctx,
		`UPDATE departments SET name=$1, description=$2, accepts_jobs=$3, updated_at=NOW()
         WHERE id=$4`,
		d.Name, d.Description, d.AcceptsJobs, d.ID)
	return err
}

// ListAcceptingJobs returns the departments that job requests may target
func (r *DepartmentRepository) ListAcceptingJobs(ctx context.Context) ([]*models.Department, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT id, name, description, accepts_jobs, created_at, updated_at
         FROM departments WHERE accepts_jobs=TRUE ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var depts []*models.Department
	for rows.Next() {
		var d models.Department
		if err := rows.Scan(&d.ID, &d.Name, &d.Description, &d.AcceptsJobs, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, err
		}
		depts = append(depts, &d)
	}
	return depts, rows.Err()
}

// AddMember attaches a user to a department with a membership role. Re-adding
// an existing member updates the role instead of failing.
func (r *DepartmentRepository) AddMember(ctx context.Context, departmentID, userID int, role string) error {
	_, err := r.DB.Exec(ctx,
		`INSERT INTO user_departments(user_id, department_id, role)
         VALUES($1, $2, $3)
         ON CONFLICT (user_id, department_id) DO UPDATE SET role=EXCLUDED.role`,
		userID, departmentID, role)
	return err
}

func (r *DepartmentRepository) RemoveMember(ctx context.Context, departmentID, userID int) error {
	_, err := r.DB.Exec(ctx,
		`DELETE FROM user_departments WHERE department_id=$1 AND user_id=$2`,
		departmentID, userID)
	return err
}

// GetMemberRole returns the membership role of a user within a department,
// or "" when the user does not belong to it.
func (r *DepartmentRepository) GetMemberRole(ctx context.Context, departmentID, userID int) (string, error) {
	var role string
	err := r.DB.QueryRow(ctx,
		`SELECT role FROM user_departments WHERE department_id=$1 AND user_id=$2`,
		departmentID, userID).Scan(&role)
	if err != nil {
		return "", err
	}
	return role, nil
}

// ListMembers returns the users of a department with their membership roles
func (r *DepartmentRepository) ListMembers(ctx context.Context, departmentID int) ([]*models.UserDepartment, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT id, user_id, department_id, role, created_at
         FROM user_departments WHERE department_id=$1 ORDER BY created_at`,
		departmentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []*models.UserDepartment
	for rows.Next() {
		var m models.UserDepartment
		if err := rows.Scan(&m.ID, &m.UserID, &m.DepartmentID, &m.Role, &m.CreatedAt); err != nil {
			return nil, err
		}
		members = append(members, &m)
	}
	return members, rows.Err()
}

// ListMembersByRole resolves notification recipients: active users holding
// the given membership role in the department.
func (r *DepartmentRepository) ListMembersByRole(ctx context.Context, departmentID int, role string) ([]*models.User, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT u.id, u.email, u.name, u.role, u.is_active, u.created_at, u.updated_at
         FROM users u
         JOIN user_departments ud ON ud.user_id = u.id
         WHERE ud.department_id=$1 AND ud.role=$2 AND u.is_active=TRUE`,
		departmentID, role)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Email, &u.Name, &u.Role, &u.IsActive, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, err
		}
		users = append(users, &u)
	}
	return users, rows.Err()
}

// ListDepartmentsForUser returns the memberships of one user
func (r *DepartmentRepository) ListDepartmentsForUser(ctx context.Context, userID int) ([]*models.UserDepartment, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT id, user_id, department_id, role, created_at
         FROM user_departments WHERE user_id=$1 ORDER BY created_at`,
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []*models.UserDepartment
	for rows.Next() {
		var m models.UserDepartment
		if err := rows.Scan(&m.ID, &m.UserID, &m.DepartmentID, &m.Role, &m.CreatedAt); err != nil {
			return nil, err
		}
		members = append(members, &m)
	}
	return members, rows.Err()
}
