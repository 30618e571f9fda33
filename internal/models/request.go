package models

import "time"

// Request types
const (
	RequestTypeJob        = "JOB"
	RequestTypeVenue      = "VENUE"
	RequestTypeResource   = "RESOURCE"
	RequestTypeTransport  = "TRANSPORT"
	RequestTypeSupply     = "SUPPLY"
	RequestTypeReturnable = "RETURNABLE"
)

// Request statuses
const (
	StatusPending   = "PENDING"
	StatusApproved  = "APPROVED"
	StatusReviewed  = "REVIEWED"
	StatusCompleted = "COMPLETED"
	StatusRejected  = "REJECTED"
	StatusCancelled = "CANCELLED"
)

// Request priorities
const (
	PriorityNone   = "NO_PRIORITY"
	PriorityLow    = "LOW"
	PriorityMedium = "MEDIUM"
	PriorityHigh   = "HIGH"
	PriorityUrgent = "URGENT"
)

type Request struct {
	ID           string     `json:"id"`
	Type         string     `json:"type"`
	Status       string     `json:"status"`
	Priority     string     `json:"priority"`
	Title        string     `json:"title"`
	UserID       int        `json:"user_id"`
	DepartmentID int        `json:"department_id"`
	ReviewedBy   *int       `json:"reviewed_by,omitempty"`
	RejectReason *string    `json:"reject_reason,omitempty"`
	ApprovedAt   *time.Time `json:"approved_at,omitempty"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// IsTerminal reports whether no further transitions are allowed from status.
func IsTerminal(status string) bool {
	switch status {
	case StatusRejected, StatusCancelled, StatusCompleted:
		return true
	}
	return false
}

// allowedTransitions is the full lifecycle state table. Terminal states have
// no outgoing edges.
var allowedTransitions = map[string][]string{
	StatusPending:  {StatusApproved, StatusRejected, StatusCancelled},
	StatusApproved: {StatusReviewed, StatusCompleted, StatusCancelled},
	StatusReviewed: {StatusCompleted},
}

// CanTransition reports whether a request may move from one status to another.
func CanTransition(from, to string) bool {
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// ValidType reports whether t is a known request type.
func ValidType(t string) bool {
	switch t {
	case RequestTypeJob, RequestTypeVenue, RequestTypeResource,
		RequestTypeTransport, RequestTypeSupply, RequestTypeReturnable:
		return true
	}
	return false
}

// ValidPriority reports whether p is a known priority.
func ValidPriority(p string) bool {
	switch p {
	case PriorityNone, PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// SubtypePrefix returns the id prefix for a request type's child row.
func SubtypePrefix(requestType string) string {
	switch requestType {
	case RequestTypeJob:
		return "JRQ"
	case RequestTypeVenue:
		return "VRQ"
	case RequestTypeTransport:
		return "TRQ"
	case RequestTypeSupply:
		return "SRQ"
	default: // RESOURCE and RETURNABLE share the returnable table
		return "RRQ"
	}
}
