package services

import (
	"context"
	"errors"
	"strings"

	"campus-backend/internal/cache"
	"campus-backend/internal/metrics"
	"campus-backend/internal/models"
	"campus-backend/internal/timeutil"

	"github.com/jackc/pgx/v5"
)

// ApprovalService moves requests through the review lifecycle. Transport
// completion lives in TransportService because of its odometer flow; every
// other transition goes through here.
type ApprovalService struct {
	DB             TxBeginner
	RequestRepo    RequestStore
	JobRepo        JobStore
	VenueReqRepo   VenueBookingStore
	TransportRepo  TransportBookingStore
	ReturnableRepo ReturnableStore
	SupplyRepo     SupplyStore
	VenueRepo      VenueStore
	VehicleRepo    VehicleStore
	InventoryRepo  InventoryStore
	DeptRepo       DepartmentStore
	AuditRepo      AuditStore
	Notifier       Notifier
}

func NewApprovalService(
	db TxBeginner,
	requestRepo RequestStore,
	jobRepo JobStore,
	venueReqRepo VenueBookingStore,
	transportRepo TransportBookingStore,
	returnableRepo ReturnableStore,
	supplyRepo SupplyStore,
	venueRepo VenueStore,
	vehicleRepo VehicleStore,
	inventoryRepo InventoryStore,
	deptRepo DepartmentStore,
	auditRepo AuditStore,
	notifier Notifier,
) *ApprovalService {
	return &ApprovalService{
		DB:             db,
		RequestRepo:    requestRepo,
		JobRepo:        jobRepo,
		VenueReqRepo:   venueReqRepo,
		TransportRepo:  transportRepo,
		ReturnableRepo: returnableRepo,
		SupplyRepo:     supplyRepo,
		VenueRepo:      venueRepo,
		VehicleRepo:    vehicleRepo,
		InventoryRepo:  inventoryRepo,
		DeptRepo:       deptRepo,
		AuditRepo:      auditRepo,
		Notifier:       notifier,
	}
}

// Approve moves a PENDING request to APPROVED, reserves the booked resource
// and takes stock for inventory-backed requests. Booking conflicts are checked
// again here, after the resource row lock is held, so approvals of overlapping
// requests serialize and the later one fails. approverRole is the caller's
// membership role in the request's department.
func (s *ApprovalService) Approve(ctx context.Context, id string, reviewerID int, approverRole string) (*models.Request, error) {
	req, err := s.transition(ctx, id, models.StatusApproved, reviewerID, models.ChangeApproved, nil,
		func(tx pgx.Tx, req *models.Request) error {
			now := timeutil.Now()
			req.ApprovedAt = &now

			switch req.Type {
			case models.RequestTypeVenue:
				booking, err := s.VenueReqRepo.GetByRequestID(ctx, req.ID)
				if err != nil {
					return errors.New("venue booking not found")
				}
				// Lock the venue row first: a competing approval for the same
				// venue blocks here until this transaction commits, then sees
				// the newly approved booking in its own re-check.
				if _, err := s.VenueRepo.GetByIDTx(ctx, tx, booking.VenueID); err != nil {
					return errors.New("venue not found")
				}
				approved, err := s.VenueReqRepo.ListApprovedForVenue(ctx, booking.VenueID)
				if err != nil {
					return err
				}
				for _, other := range approved {
					if other.RequestID == req.ID {
						continue
					}
					if windowsOverlap(other.StartTime, other.EndTime, booking.StartTime, booking.EndTime) {
						metrics.BookingConflictsTotal.Inc()
						return ErrConflict
					}
				}
				return s.VenueRepo.UpdateStatusTx(ctx, tx, booking.VenueID, models.ResourceReserved)

			case models.RequestTypeTransport:
				booking, err := s.TransportRepo.GetByRequestID(ctx, req.ID)
				if err != nil {
					return errors.New("transport booking not found")
				}
				if _, err := s.VehicleRepo.GetByIDTx(ctx, tx, booking.VehicleID); err != nil {
					return errors.New("vehicle not found")
				}
				approved, err := s.TransportRepo.ListApprovedForVehicle(ctx, booking.VehicleID)
				if err != nil {
					return err
				}
				for _, other := range approved {
					if other.RequestID == req.ID {
						continue
					}
					if vehicleSlotTaken(other.DateAndTimeNeeded, booking.DateAndTimeNeeded) {
						metrics.BookingConflictsTotal.Inc()
						return ErrConflict
					}
				}
				return nil

			case models.RequestTypeReturnable:
				loan, err := s.ReturnableRepo.GetByRequestID(ctx, req.ID)
				if err != nil {
					return errors.New("loan record not found")
				}
				item, err := s.InventoryRepo.GetByIDTx(ctx, tx, loan.ItemID)
				if err != nil {
					return errors.New("inventory item not found")
				}
				if item.Available() < loan.Quantity {
					return errors.New("not enough stock available to approve this loan")
				}
				return s.InventoryRepo.AdjustQuantityOutTx(ctx, tx, loan.ItemID, loan.Quantity)

			case models.RequestTypeResource:
				loan, err := s.ReturnableRepo.GetByRequestID(ctx, req.ID)
				if err != nil {
					return errors.New("resource record not found")
				}
				item, err := s.InventoryRepo.GetByIDTx(ctx, tx, loan.ItemID)
				if err != nil {
					return errors.New("inventory item not found")
				}
				if item.Quantity < loan.Quantity {
					return errors.New("not enough stock available to approve this request")
				}
				return s.InventoryRepo.DeductQuantityTx(ctx, tx, loan.ItemID, loan.Quantity)

			case models.RequestTypeSupply:
				supply, err := s.SupplyRepo.GetByRequestID(ctx, req.ID)
				if err != nil {
					return errors.New("supply record not found")
				}
				item, err := s.InventoryRepo.GetByIDTx(ctx, tx, supply.ItemID)
				if err != nil {
					return errors.New("inventory item not found")
				}
				if item.Quantity < supply.Quantity {
					return errors.New("not enough stock available to approve this requisition")
				}
				return s.InventoryRepo.DeductQuantityTx(ctx, tx, supply.ItemID, supply.Quantity)
			}
			return nil
		})
	if err != nil {
		return nil, err
	}

	s.notifyRequester(req, "Request approved",
		"Your request "+req.Title+" was approved.", models.NotificationSuccess, reviewerID)

	// Department-head approval of a venue booking also alerts the operations
	// managers who will prepare the venue.
	if req.Type == models.RequestTypeVenue && approverRole == models.RoleDepartmentHead {
		ops, err := s.DeptRepo.ListMembersByRole(context.Background(), req.DepartmentID, models.RoleOperationsManager)
		if err == nil && len(ops) > 0 && s.Notifier != nil {
			var ids []int
			for _, u := range ops {
				ids = append(ids, u.ID)
			}
			s.Notifier.Dispatch(&models.CreateNotification{
				Title:            "Venue booking approved",
				Message:          "Venue booking " + req.Title + " was approved and needs preparation.",
				ResourceType:     "request",
				ResourceID:       req.ID,
				NotificationType: models.NotificationInfo,
				RecipientIDs:     ids,
				UserID:           reviewerID,
			}, "Venue booking approved", "Venue booking "+req.Title+" was approved and needs preparation.")
		}
	}

	if req.Type == models.RequestTypeVenue {
		cache.InvalidateVenueCaches(context.Background())
	}
	return req, nil
}

// Reject moves a PENDING request to REJECTED with a required reason
func (s *ApprovalService) Reject(ctx context.Context, id string, reviewerID int, reason string) (*models.Request, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, errors.New("a rejection reason is required")
	}

	req, err := s.transition(ctx, id, models.StatusRejected, reviewerID, models.ChangeRejected, &reason, nil)
	if err != nil {
		return nil, err
	}

	s.notifyRequester(req, "Request rejected",
		"Your request "+req.Title+" was rejected: "+reason, models.NotificationAlert, reviewerID)
	return req, nil
}

// Review moves an APPROVED request to REVIEWED. For venue bookings this is
// the handover step: the venue flips to IN_USE and the actual start is
// stamped.
func (s *ApprovalService) Review(ctx context.Context, id string, reviewerID int) (*models.Request, error) {
	req, err := s.transition(ctx, id, models.StatusReviewed, reviewerID, models.ChangeReviewed, nil,
		func(tx pgx.Tx, req *models.Request) error {
			if req.Type != models.RequestTypeVenue {
				return nil
			}
			booking, err := s.VenueReqRepo.GetByRequestID(ctx, req.ID)
			if err != nil {
				return errors.New("venue booking not found")
			}
			if err := s.VenueRepo.UpdateStatusTx(ctx, tx, booking.VenueID, models.ResourceInUse); err != nil {
				return err
			}
			return s.VenueReqRepo.SetActualStartTx(ctx, tx, req.ID, timeutil.Now())
		})
	if err != nil {
		return nil, err
	}

	s.notifyRequester(req, "Request reviewed",
		"Your request "+req.Title+" was reviewed.", models.NotificationInfo, reviewerID)
	if req.Type == models.RequestTypeVenue {
		cache.InvalidateVenueCaches(context.Background())
	}
	return req, nil
}

// CancelByReviewer moves an APPROVED request to CANCELLED and undoes resource
// holds taken at approval.
func (s *ApprovalService) CancelByReviewer(ctx context.Context, id string, reviewerID int, reason string) (*models.Request, error) {
	var reasonPtr *string
	if r := strings.TrimSpace(reason); r != "" {
		reasonPtr = &r
	}

	req, err := s.transition(ctx, id, models.StatusCancelled, reviewerID, models.ChangeCancelled, reasonPtr,
		func(tx pgx.Tx, req *models.Request) error {
			switch req.Type {
			case models.RequestTypeVenue:
				booking, err := s.VenueReqRepo.GetByRequestID(ctx, req.ID)
				if err != nil {
					return errors.New("venue booking not found")
				}
				return s.VenueRepo.UpdateStatusTx(ctx, tx, booking.VenueID, models.ResourceAvailable)
			case models.RequestTypeReturnable:
				loan, err := s.ReturnableRepo.GetByRequestID(ctx, req.ID)
				if err != nil {
					return errors.New("loan record not found")
				}
				return s.InventoryRepo.AdjustQuantityOutTx(ctx, tx, loan.ItemID, -loan.Quantity)
			}
			return nil
		})
	if err != nil {
		return nil, err
	}

	s.notifyRequester(req, "Request cancelled",
		"Your request "+req.Title+" was cancelled.", models.NotificationWarning, reviewerID)
	return req, nil
}

// Complete finishes a request from APPROVED or REVIEWED. Transport requests
// must go through TransportService.Complete for the odometer flow.
func (s *ApprovalService) Complete(ctx context.Context, id string, actorID int, verifiedByReviewer bool) (*models.Request, error) {
	req, err := s.transition(ctx, id, models.StatusCompleted, actorID, models.ChangeCompleted, nil,
		func(tx pgx.Tx, req *models.Request) error {
			now := timeutil.Now()
			req.CompletedAt = &now

			switch req.Type {
			case models.RequestTypeTransport:
				return errors.New("transport requests are completed with an odometer reading")

			case models.RequestTypeVenue:
				booking, err := s.VenueReqRepo.GetByRequestID(ctx, req.ID)
				if err != nil {
					return errors.New("venue booking not found")
				}
				return s.VenueRepo.UpdateStatusTx(ctx, tx, booking.VenueID, models.ResourceAvailable)

			case models.RequestTypeJob:
				return s.JobRepo.FinishTx(ctx, tx, req.ID, now, verifiedByReviewer)

			case models.RequestTypeReturnable:
				loan, err := s.ReturnableRepo.GetByRequestID(ctx, req.ID)
				if err != nil {
					return errors.New("loan record not found")
				}
				if err := s.ReturnableRepo.MarkReturnedTx(ctx, tx, req.ID, now); err != nil {
					return err
				}
				return s.InventoryRepo.AdjustQuantityOutTx(ctx, tx, loan.ItemID, -loan.Quantity)
			}
			return nil
		})
	if err != nil {
		return nil, err
	}

	s.notifyRequester(req, "Request completed",
		"Your request "+req.Title+" was completed.", models.NotificationSuccess, actorID)
	switch req.Type {
	case models.RequestTypeVenue:
		cache.InvalidateVenueCaches(context.Background())
	case models.RequestTypeReturnable, models.RequestTypeResource:
		cache.InvalidateInventoryCaches(context.Background())
	}
	return req, nil
}

// transition is the shared status-change machinery: lock the row, validate
// the edge, apply the per-type effect, write the request update and exactly
// one audit row, then commit.
func (s *ApprovalService) transition(
	ctx context.Context,
	id, to string,
	actorID int,
	changeType string,
	rejectReason *string,
	effect func(tx pgx.Tx, req *models.Request) error,
) (*models.Request, error) {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	req, err := s.RequestRepo.GetForUpdateTx(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if !models.CanTransition(req.Status, to) {
		return nil, ErrInvalidTransition
	}

	before := models.Snapshot(req)
	req.Status = to
	req.ReviewedBy = &actorID
	if rejectReason != nil {
		req.RejectReason = rejectReason
	}

	if effect != nil {
		if err := effect(tx, req); err != nil {
			return nil, err
		}
	}

	if err := s.RequestRepo.UpdateStatusTx(ctx, tx, req); err != nil {
		return nil, err
	}

	audit := &models.AuditLog{
		EntityID:   req.ID,
		EntityType: "request",
		ChangeType: changeType,
		OldValue:   before,
		NewValue:   models.Snapshot(req),
		ChangedBy:  actorID,
	}
	if err := s.AuditRepo.CreateTx(ctx, tx, audit); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	metrics.StatusTransitionsTotal.WithLabelValues(to).Inc()
	cache.InvalidateRequestCaches(context.Background())
	return req, nil
}

func (s *ApprovalService) notifyRequester(req *models.Request, title, message, notifType string, actorID int) {
	if s.Notifier == nil {
		return
	}
	s.Notifier.Dispatch(&models.CreateNotification{
		Title:            title,
		Message:          message,
		ResourceType:     "request",
		ResourceID:       req.ID,
		NotificationType: notifType,
		RecipientIDs:     []int{req.UserID},
		UserID:           actorID,
	}, title, message)
	s.Notifier.BroadcastRequestUpdate()
}
