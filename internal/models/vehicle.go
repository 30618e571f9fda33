package models

import "time"

// DefaultMaintenanceInterval is the odometer distance between services used
// when a vehicle has no configured interval.
const DefaultMaintenanceInterval float64 = 200000

type Vehicle struct {
	ID                  int       `json:"id"`
	Name                string    `json:"name"`
	PlateNumber         string    `json:"plate_number"`
	Capacity            int       `json:"capacity"`
	Status              string    `json:"status"`
	DepartmentID        int       `json:"department_id"`
	Odometer            float64   `json:"odometer"`
	MaintenanceInterval *float64  `json:"maintenance_interval,omitempty"`
	RequiresMaintenance bool      `json:"requires_maintenance"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// EffectiveMaintenanceInterval returns the configured interval or the default.
func (v *Vehicle) EffectiveMaintenanceInterval() float64 {
	if v.MaintenanceInterval != nil && *v.MaintenanceInterval > 0 {
		return *v.MaintenanceInterval
	}
	return DefaultMaintenanceInterval
}

// MaintenanceDue reports whether the distance driven since the last recorded
// service has reached the vehicle's maintenance interval. lastServiceOdometer
// is 0 when no maintenance history exists.
func (v *Vehicle) MaintenanceDue(lastServiceOdometer float64) bool {
	return v.Odometer-lastServiceOdometer >= v.EffectiveMaintenanceInterval()
}

// MaintenanceHistory is an append-only record of a completed vehicle service.
type MaintenanceHistory struct {
	ID              int       `json:"id"`
	VehicleID       int       `json:"vehicle_id"`
	OdometerReading float64   `json:"odometer_reading"`
	Description     string    `json:"description"`
	PerformedBy     string    `json:"performed_by"`
	CreatedAt       time.Time `json:"created_at"`
}

// CreateVehicleRequest is the request body for registering a vehicle
type CreateVehicleRequest struct {
	Name                string   `json:"name"`
	PlateNumber         string   `json:"plate_number"`
	Capacity            int      `json:"capacity"`
	DepartmentID        int      `json:"department_id"`
	Odometer            float64  `json:"odometer"`
	MaintenanceInterval *float64 `json:"maintenance_interval,omitempty"`
}

// RecordMaintenanceRequest is the request body for logging a completed service
type RecordMaintenanceRequest struct {
	OdometerReading float64 `json:"odometer_reading"`
	Description     string  `json:"description"`
	PerformedBy     string  `json:"performed_by"`
}
