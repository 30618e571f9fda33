package models

import (
	"encoding/json"
	"time"
)

// Audit change types
const (
	ChangeCreated          = "CREATED"
	ChangeFieldUpdate      = "FIELD_UPDATE"
	ChangeStatusChange     = "STATUS_CHANGE"
	ChangeAssignmentChange = "ASSIGNMENT_CHANGE"
	ChangeApproved         = "APPROVED"
	ChangeRejected         = "REJECTED"
	ChangeCancelled        = "CANCELLED"
	ChangeReviewed         = "REVIEWED"
	ChangeCompleted        = "COMPLETED"
)

// AuditLog is an append-only record of one entity mutation. Rows are never
// updated or deleted.
type AuditLog struct {
	ID         int             `json:"id"`
	EntityID   string          `json:"entity_id"`
	EntityType string          `json:"entity_type"`
	ChangeType string          `json:"change_type"`
	OldValue   json.RawMessage `json:"old_value,omitempty"`
	NewValue   json.RawMessage `json:"new_value,omitempty"`
	ChangedBy  int             `json:"changed_by"`
	CreatedAt  time.Time       `json:"created_at"`
}

// Snapshot serializes an entity's current state into an immutable JSON
// document, independent of later mutation to the in-memory row. A nil or
// unmarshalable value yields a nil snapshot.
func Snapshot(v any) json.RawMessage {
	if v == nil {
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return b
}
