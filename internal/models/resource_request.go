package models

import "time"

// ReturnableRequest covers both RETURNABLE (borrow and give back) and
// RESOURCE (consumable) request types; Returnable on the linked item
// distinguishes the two.
type ReturnableRequest struct {
	ID                string     `json:"id"`
	RequestID         string     `json:"request_id"`
	ItemID            int        `json:"item_id"`
	ItemName          string     `json:"item_name,omitempty"` // denormalized for display
	Quantity          int        `json:"quantity"`
	Purpose           string     `json:"purpose"`
	DateAndTimeNeeded time.Time  `json:"date_and_time_needed"`
	ReturnDateAndTime *time.Time `json:"return_date_and_time,omitempty"`
	ReturnedAt        *time.Time `json:"returned_at,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

type SupplyRequest struct {
	ID                string    `json:"id"`
	RequestID         string    `json:"request_id"`
	ItemID            int       `json:"item_id"`
	ItemName          string    `json:"item_name,omitempty"`
	Quantity          int       `json:"quantity"`
	Purpose           string    `json:"purpose"`
	DateAndTimeNeeded time.Time `json:"date_and_time_needed"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// SubmitReturnableRequest is the request body for borrowing a returnable item
// or requesting consumable stock
type SubmitReturnableRequest struct {
	DepartmentID      int        `json:"department_id"`
	ItemID            int        `json:"item_id"`
	Quantity          int        `json:"quantity"`
	Purpose           string     `json:"purpose"`
	DateAndTimeNeeded time.Time  `json:"date_and_time_needed"`
	ReturnDateAndTime *time.Time `json:"return_date_and_time,omitempty"`
}

// SubmitSupplyRequest is the request body for a supply requisition
type SubmitSupplyRequest struct {
	DepartmentID      int       `json:"department_id"`
	ItemID            int       `json:"item_id"`
	Quantity          int       `json:"quantity"`
	Purpose           string    `json:"purpose"`
	DateAndTimeNeeded time.Time `json:"date_and_time_needed"`
}
