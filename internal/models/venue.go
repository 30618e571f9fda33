package models

import "time"

// Resource (venue/vehicle) statuses
const (
	ResourceAvailable        = "AVAILABLE"
	ResourceReserved         = "RESERVED"
	ResourceInUse            = "IN_USE"
	ResourceUnderMaintenance = "UNDER_MAINTENANCE"
	ResourceClosed           = "CLOSED"
)

type Venue struct {
	ID           int       `json:"id"`
	Name         string    `json:"name"`
	Location     string    `json:"location"`
	Capacity     int       `json:"capacity"`
	Status       string    `json:"status"`
	DepartmentID int       `json:"department_id"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// CreateVenueRequest is the request body for registering a venue
type CreateVenueRequest struct {
	Name         string `json:"name"`
	Location     string `json:"location"`
	Capacity     int    `json:"capacity"`
	DepartmentID int    `json:"department_id"`
}

// UpdateVenueRequest is the request body for updating a venue
type UpdateVenueRequest struct {
	Name     string `json:"name"`
	Location string `json:"location"`
	Capacity int    `json:"capacity"`
	Status   string `json:"status"`
}
