package models

import "time"

// Membership roles within a department
const (
	RoleRequester         = "REQUESTER"
	RolePersonnel         = "PERSONNEL"
	RoleOperationsManager = "OPERATIONS_MANAGER"
	RoleDepartmentHead    = "DEPARTMENT_HEAD"
	RoleAdmin             = "ADMIN"
)

type User struct {
	ID           int       `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"` // site-wide role (ADMIN or REQUESTER)
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// UserDepartment links a user to a department with a membership role.
// A user's effective permissions are the union of role grants across the
// departments they belong to.
type UserDepartment struct {
	ID           int       `json:"id"`
	UserID       int       `json:"user_id"`
	DepartmentID int       `json:"department_id"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

// SignupRequest is the request body for user registration
type SignupRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

// LoginRequest is the request body for authentication
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse carries the issued token and the user profile
type LoginResponse struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}

// AddMemberRequest is the request body for adding a user to a department
type AddMemberRequest struct {
	UserID int    `json:"user_id"`
	Role   string `json:"role"`
}
