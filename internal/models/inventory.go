package models

import "time"

type InventoryItem struct {
	ID           int       `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	Returnable   bool      `json:"returnable"`
	Quantity     int       `json:"quantity"`
	QuantityOut  int       `json:"quantity_out"` // currently on loan (returnable items only)
	DepartmentID int       `json:"department_id"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Available returns the quantity that can still be loaned or issued.
func (i *InventoryItem) Available() int {
	avail := i.Quantity - i.QuantityOut
	if avail < 0 {
		return 0
	}
	return avail
}

// CreateInventoryItemRequest is the request body for registering an item
type CreateInventoryItemRequest struct {
	Name         string `json:"name"`
	Description  string `json:"description"`
	Returnable   bool   `json:"returnable"`
	Quantity     int    `json:"quantity"`
	DepartmentID int    `json:"department_id"`
}

// UpdateInventoryItemRequest is the request body for updating an item
type UpdateInventoryItemRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Quantity    int    `json:"quantity"`
}
