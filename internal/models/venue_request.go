package models

import "time"

type VenueRequest struct {
	ID                string    `json:"id"`
	RequestID         string    `json:"request_id"`
	VenueID           int       `json:"venue_id"`
	VenueName         string    `json:"venue_name,omitempty"` // denormalized for display
	StartTime         time.Time `json:"start_time"`
	EndTime           time.Time `json:"end_time"`
	Purpose           string    `json:"purpose"`
	SetupRequirements []string  `json:"setup_requirements"`
	ActualStart       *time.Time `json:"actual_start,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// SubmitVenueRequest is the request body for booking a venue
type SubmitVenueRequest struct {
	DepartmentID      int       `json:"department_id"`
	VenueID           int       `json:"venue_id"`
	StartTime         time.Time `json:"start_time"`
	EndTime           time.Time `json:"end_time"`
	Purpose           string    `json:"purpose"`
	SetupRequirements []string  `json:"setup_requirements"`
}
