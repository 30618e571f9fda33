package models

import "time"

type JobRequest struct {
	ID             string     `json:"id"`
	RequestID      string     `json:"request_id"`
	Description    string     `json:"description"`
	Location       string     `json:"location"`
	JobType        string     `json:"job_type"`
	AssignedTo     *int       `json:"assigned_to,omitempty"`
	InProgress     bool       `json:"in_progress"`
	StartDate      *time.Time `json:"start_date,omitempty"`
	EndDate        *time.Time `json:"end_date,omitempty"`
	ActualStart    *time.Time `json:"actual_start,omitempty"`
	ActualEnd      *time.Time `json:"actual_end,omitempty"`
	VerifiedByReviewer bool   `json:"verified_by_reviewer"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// SubmitJobRequest is the request body for creating a job/maintenance request
type SubmitJobRequest struct {
	DepartmentID int        `json:"department_id"`
	Description  string     `json:"description"`
	Location     string     `json:"location"`
	JobType      string     `json:"job_type"`
	Priority     string     `json:"priority"`
	StartDate    *time.Time `json:"start_date,omitempty"`
	EndDate      *time.Time `json:"end_date,omitempty"`
}

// AssignJobRequest is the request body for assigning personnel to a job
type AssignJobRequest struct {
	PersonnelID int `json:"personnel_id"`
}
