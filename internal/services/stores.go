package services

import (
	"context"
	"time"

	"campus-backend/internal/models"
	"campus-backend/internal/query"

	"github.com/jackc/pgx/v5"
)

// The lifecycle services depend on these narrow store interfaces rather than
// the concrete repositories, so the flows can be exercised against in-memory
// fakes. The repositories package satisfies all of them.

// TxBeginner starts a database transaction. *pgxpool.Pool satisfies it.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

type RequestStore interface {
	CreateTx(ctx context.Context, tx pgx.Tx, req *models.Request) error
	GetByID(ctx context.Context, id string) (*models.Request, error)
	GetForUpdateTx(ctx context.Context, tx pgx.Tx, id string) (*models.Request, error)
	UpdateStatusTx(ctx context.Context, tx pgx.Tx, req *models.Request) error
	List(ctx context.Context, p *query.ListParams) ([]*models.Request, int, error)
}

type JobStore interface {
	CreateTx(ctx context.Context, tx pgx.Tx, j *models.JobRequest) error
	GetByRequestID(ctx context.Context, requestID string) (*models.JobRequest, error)
	AssignTx(ctx context.Context, tx pgx.Tx, requestID string, personnelID int) error
	StartTx(ctx context.Context, tx pgx.Tx, requestID string, at time.Time) error
	FinishTx(ctx context.Context, tx pgx.Tx, requestID string, at time.Time, verified bool) error
}

type VenueBookingStore interface {
	CreateTx(ctx context.Context, tx pgx.Tx, v *models.VenueRequest) error
	GetByRequestID(ctx context.Context, requestID string) (*models.VenueRequest, error)
	CountApprovedOverlapping(ctx context.Context, venueID int, start, end time.Time) (int, error)
	ListApprovedForVenue(ctx context.Context, venueID int) ([]*models.VenueRequest, error)
	SetActualStartTx(ctx context.Context, tx pgx.Tx, requestID string, at time.Time) error
}

type TransportBookingStore interface {
	CreateTx(ctx context.Context, tx pgx.Tx, t *models.TransportRequest) error
	GetByRequestID(ctx context.Context, requestID string) (*models.TransportRequest, error)
	GetByRequestIDTx(ctx context.Context, tx pgx.Tx, requestID string) (*models.TransportRequest, error)
	CountApprovedAtTime(ctx context.Context, vehicleID int, at time.Time) (int, error)
	ListApprovedForVehicle(ctx context.Context, vehicleID int) ([]*models.TransportRequest, error)
	SetOdometerStartTx(ctx context.Context, tx pgx.Tx, requestID string, reading float64, at time.Time) error
	CompleteTx(ctx context.Context, tx pgx.Tx, requestID string, odometerEnd, distance float64) error
	ListUpcomingBookings(ctx context.Context, vehicleID int, after time.Time) ([]*models.TransportRequest, error)
	OwnerOf(ctx context.Context, requestID string) (int, error)
}

type ReturnableStore interface {
	CreateTx(ctx context.Context, tx pgx.Tx, rr *models.ReturnableRequest) error
	GetByRequestID(ctx context.Context, requestID string) (*models.ReturnableRequest, error)
	MarkReturnedTx(ctx context.Context, tx pgx.Tx, requestID string, at time.Time) error
}

type SupplyStore interface {
	CreateTx(ctx context.Context, tx pgx.Tx, s *models.SupplyRequest) error
	GetByRequestID(ctx context.Context, requestID string) (*models.SupplyRequest, error)
}

type VenueStore interface {
	GetByID(ctx context.Context, id int) (*models.Venue, error)
	GetByIDTx(ctx context.Context, tx pgx.Tx, id int) (*models.Venue, error)
	UpdateStatusTx(ctx context.Context, tx pgx.Tx, id int, status string) error
}

type VehicleStore interface {
	GetByID(ctx context.Context, id int) (*models.Vehicle, error)
	GetByIDTx(ctx context.Context, tx pgx.Tx, id int) (*models.Vehicle, error)
	UpdateStatusTx(ctx context.Context, tx pgx.Tx, id int, status string) error
	UpdateOdometerTx(ctx context.Context, tx pgx.Tx, id int, odometer float64) error
	MarkRequiresMaintenance(ctx context.Context, id int) error
	GetLastServiceOdometer(ctx context.Context, vehicleID int) (float64, error)
}

type InventoryStore interface {
	GetByID(ctx context.Context, id int) (*models.InventoryItem, error)
	GetByIDTx(ctx context.Context, tx pgx.Tx, id int) (*models.InventoryItem, error)
	AdjustQuantityOutTx(ctx context.Context, tx pgx.Tx, id, delta int) error
	DeductQuantityTx(ctx context.Context, tx pgx.Tx, id, amount int) error
}

type DepartmentStore interface {
	GetByID(ctx context.Context, id int) (*models.Department, error)
	GetMemberRole(ctx context.Context, departmentID, userID int) (string, error)
	ListMembersByRole(ctx context.Context, departmentID int, role string) ([]*models.User, error)
}

type AuditStore interface {
	CreateTx(ctx context.Context, tx pgx.Tx, log *models.AuditLog) error
}

// Notifier fans out in-app notifications, email and the realtime signal.
// *NotificationService satisfies it.
type Notifier interface {
	Dispatch(n *models.CreateNotification, emailSubject, emailBody string)
	BroadcastRequestUpdate()
}
