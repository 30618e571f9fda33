package models

import "time"

type TransportRequest struct {
	ID                     string     `json:"id"`
	RequestID              string     `json:"request_id"`
	VehicleID              int        `json:"vehicle_id"`
	VehicleName            string     `json:"vehicle_name,omitempty"` // denormalized for display
	Description            string     `json:"description"`
	Destination            string     `json:"destination"`
	DateAndTimeNeeded      time.Time  `json:"date_and_time_needed"`
	PassengersName         []string   `json:"passengers_name"`
	OdometerStart          *float64   `json:"odometer_start,omitempty"`
	OdometerEnd            *float64   `json:"odometer_end,omitempty"`
	TotalDistanceTravelled *float64   `json:"total_distance_travelled,omitempty"`
	ActualStart            *time.Time `json:"actual_start,omitempty"`
	CreatedAt              time.Time  `json:"created_at"`
	UpdatedAt              time.Time  `json:"updated_at"`
}

// SubmitTransportRequest is the request body for booking a vehicle
type SubmitTransportRequest struct {
	DepartmentID      int       `json:"department_id"`
	VehicleID         int       `json:"vehicle_id"`
	Description       string    `json:"description"`
	Destination       string    `json:"destination"`
	DateAndTimeNeeded time.Time `json:"date_and_time_needed"`
	PassengersName    []string  `json:"passengers_name"`
}

// RecordOdometerStartRequest records the vehicle odometer before departure
type RecordOdometerStartRequest struct {
	OdometerStart float64 `json:"odometer_start"`
}

// CompleteTransportRequest is the request body for completing a transport request
type CompleteTransportRequest struct {
	OdometerEnd float64 `json:"odometer_end"`
}
