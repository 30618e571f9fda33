package models

import "time"

type Department struct {
	ID          int       `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	AcceptsJobs bool      `json:"accepts_jobs"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CreateDepartmentRequest is the request body for creating a department
type CreateDepartmentRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	AcceptsJobs bool   `json:"accepts_jobs"`
}

// UpdateDepartmentRequest is the request body for updating a department
type UpdateDepartmentRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	AcceptsJobs bool   `json:"accepts_jobs"`
}
