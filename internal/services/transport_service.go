package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"campus-backend/internal/cache"
	"campus-backend/internal/metrics"
	"campus-backend/internal/models"
	"campus-backend/internal/sideeffect"
	"campus-backend/internal/timeutil"
)

// completeTxTimeout bounds how long the completion transaction may hold the
// vehicle and request row locks.
const completeTxTimeout = 10 * time.Second

type TransportService struct {
	DB            TxBeginner
	RequestRepo   RequestStore
	TransportRepo TransportBookingStore
	VehicleRepo   VehicleStore
	DeptRepo      DepartmentStore
	AuditRepo     AuditStore
	Notifier      Notifier
}

func NewTransportService(
	db TxBeginner,
	requestRepo RequestStore,
	transportRepo TransportBookingStore,
	vehicleRepo VehicleStore,
	deptRepo DepartmentStore,
	auditRepo AuditStore,
	notifier Notifier,
) *TransportService {
	return &TransportService{
		DB:            db,
		RequestRepo:   requestRepo,
		TransportRepo: transportRepo,
		VehicleRepo:   vehicleRepo,
		DeptRepo:      deptRepo,
		AuditRepo:     auditRepo,
		Notifier:      notifier,
	}
}

// RecordOdometerStart stores the reading taken before the vehicle departs.
// Completion is rejected until this has happened.
func (s *TransportService) RecordOdometerStart(ctx context.Context, requestID string, reading float64, actorID int) (*models.TransportRequest, error) {
	if reading < 0 {
		return nil, errors.New("odometer reading cannot be negative")
	}

	req, err := s.RequestRepo.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req.Type != models.RequestTypeTransport {
		return nil, errors.New("not a transport request")
	}
	if req.Status != models.StatusApproved && req.Status != models.StatusReviewed {
		return nil, errors.New("odometer can only be recorded on an approved booking")
	}

	booking, err := s.TransportRepo.GetByRequestID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if booking.OdometerStart != nil {
		return nil, ErrNoChanges
	}

	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	before := models.Snapshot(booking)
	now := timeutil.Now()
	if err := s.TransportRepo.SetOdometerStartTx(ctx, tx, requestID, reading, now); err != nil {
		return nil, err
	}
	if err := s.VehicleRepo.UpdateStatusTx(ctx, tx, booking.VehicleID, models.ResourceInUse); err != nil {
		return nil, err
	}
	booking.OdometerStart = &reading
	booking.ActualStart = &now

	audit := &models.AuditLog{
		EntityID:   requestID,
		EntityType: "transport_request",
		ChangeType: models.ChangeFieldUpdate,
		OldValue:   before,
		NewValue:   models.Snapshot(booking),
		ChangedBy:  actorID,
	}
	if err := s.AuditRepo.CreateTx(ctx, tx, audit); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	cache.InvalidateRequestCaches(context.Background())
	cache.InvalidateVehicleCaches(context.Background())
	return booking, nil
}

// Complete finishes a transport booking: validates the odometer math, writes
// the distance, advances the vehicle odometer, releases the vehicle, and
// closes the request with its audit row in one bounded transaction. The
// maintenance threshold check runs after commit so it never extends the lock
// hold.
func (s *TransportService) Complete(ctx context.Context, requestID string, odometerEnd float64, actorID int) (*models.Request, error) {
	txCtx, cancel := context.WithTimeout(ctx, completeTxTimeout)
	defer cancel()

	tx, err := s.DB.Begin(txCtx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(txCtx)

	req, err := s.RequestRepo.GetForUpdateTx(txCtx, tx, requestID)
	if err != nil {
		return nil, err
	}
	if req.Type != models.RequestTypeTransport {
		return nil, errors.New("not a transport request")
	}
	if !models.CanTransition(req.Status, models.StatusCompleted) {
		return nil, ErrInvalidTransition
	}

	booking, err := s.TransportRepo.GetByRequestIDTx(txCtx, tx, requestID)
	if err != nil {
		return nil, err
	}
	if booking.OdometerStart == nil {
		return nil, errors.New("starting odometer reading was never recorded")
	}
	distance := odometerEnd - *booking.OdometerStart
	if distance < 0 {
		return nil, errors.New("end odometer reading is lower than the start reading")
	}

	vehicle, err := s.VehicleRepo.GetByIDTx(txCtx, tx, booking.VehicleID)
	if err != nil {
		return nil, err
	}

	beforeReq := models.Snapshot(req)
	now := timeutil.Now()
	req.Status = models.StatusCompleted
	req.ReviewedBy = &actorID
	req.CompletedAt = &now

	if err := s.TransportRepo.CompleteTx(txCtx, tx, requestID, odometerEnd, distance); err != nil {
		return nil, err
	}

	newOdometer := vehicle.Odometer + distance
	if err := s.VehicleRepo.UpdateOdometerTx(txCtx, tx, vehicle.ID, newOdometer); err != nil {
		return nil, err
	}
	if err := s.VehicleRepo.UpdateStatusTx(txCtx, tx, vehicle.ID, models.ResourceAvailable); err != nil {
		return nil, err
	}
	if err := s.RequestRepo.UpdateStatusTx(txCtx, tx, req); err != nil {
		return nil, err
	}

	audit := &models.AuditLog{
		EntityID:   requestID,
		EntityType: "request",
		ChangeType: models.ChangeCompleted,
		OldValue:   beforeReq,
		NewValue:   models.Snapshot(req),
		ChangedBy:  actorID,
	}
	if err := s.AuditRepo.CreateTx(txCtx, tx, audit); err != nil {
		return nil, err
	}
	if err := tx.Commit(txCtx); err != nil {
		return nil, err
	}

	metrics.StatusTransitionsTotal.WithLabelValues(models.StatusCompleted).Inc()
	cache.InvalidateRequestCaches(context.Background())
	cache.InvalidateVehicleCaches(context.Background())

	if s.Notifier != nil {
		msg := "Your transport request " + req.Title + " was completed."
		s.Notifier.Dispatch(&models.CreateNotification{
			Title:            "Transport completed",
			Message:          msg,
			ResourceType:     "request",
			ResourceID:       req.ID,
			NotificationType: models.NotificationSuccess,
			RecipientIDs:     []int{req.UserID},
			UserID:           actorID,
		}, "Transport completed", msg)
		s.Notifier.BroadcastRequestUpdate()
	}

	vehicle.Odometer = newOdometer
	sideeffect.RunAsync(sideeffect.Task{Name: "maintenance-check", Fn: func(effCtx context.Context) error {
		return s.checkMaintenanceDue(effCtx, vehicle, actorID)
	}})

	return req, nil
}

// checkMaintenanceDue runs outside the completion transaction. When the
// distance since the last service reaches the vehicle's interval, the
// vehicle is pulled for maintenance, the department heads are told, and
// requesters holding future bookings get an advisory warning. Nothing is
// auto-cancelled.
func (s *TransportService) checkMaintenanceDue(ctx context.Context, vehicle *models.Vehicle, actorID int) error {
	lastService, err := s.VehicleRepo.GetLastServiceOdometer(ctx, vehicle.ID)
	if err != nil {
		return fmt.Errorf("last service lookup for vehicle %d: %w", vehicle.ID, err)
	}
	if !vehicle.MaintenanceDue(lastService) {
		return nil
	}

	if err := s.VehicleRepo.MarkRequiresMaintenance(ctx, vehicle.ID); err != nil {
		return fmt.Errorf("mark vehicle %d for maintenance: %w", vehicle.ID, err)
	}
	cache.InvalidateVehicleCaches(ctx)

	if s.Notifier == nil {
		return nil
	}

	heads, err := s.DeptRepo.ListMembersByRole(ctx, vehicle.DepartmentID, models.RoleDepartmentHead)
	if err == nil && len(heads) > 0 {
		var ids []int
		for _, u := range heads {
			ids = append(ids, u.ID)
		}
		msg := fmt.Sprintf("Vehicle %s (%s) reached its maintenance interval at %.0f and was taken out of rotation.",
			vehicle.Name, vehicle.PlateNumber, vehicle.Odometer)
		s.Notifier.Dispatch(&models.CreateNotification{
			Title:            "Vehicle due for maintenance",
			Message:          msg,
			ResourceType:     "vehicle",
			ResourceID:       fmt.Sprintf("%d", vehicle.ID),
			NotificationType: models.NotificationAlert,
			RecipientIDs:     ids,
			UserID:           actorID,
		}, "Vehicle due for maintenance", msg)
	}

	upcoming, err := s.TransportRepo.ListUpcomingBookings(ctx, vehicle.ID, timeutil.Now())
	if err != nil {
		return fmt.Errorf("upcoming bookings for vehicle %d: %w", vehicle.ID, err)
	}
	for _, booking := range upcoming {
		ownerID, err := s.TransportRepo.OwnerOf(ctx, booking.RequestID)
		if err != nil {
			continue
		}
		msg := fmt.Sprintf("Vehicle %s booked for your trip on %s was pulled for maintenance. The booking stands but its availability is uncertain.",
			vehicle.Name, timeutil.ToLocal(booking.DateAndTimeNeeded).Format(timeutil.DisplayLayout))
		s.Notifier.Dispatch(&models.CreateNotification{
			Title:            "Vehicle availability warning",
			Message:          msg,
			ResourceType:     "request",
			ResourceID:       booking.RequestID,
			NotificationType: models.NotificationWarning,
			RecipientIDs:     []int{ownerID},
			UserID:           actorID,
		}, "Vehicle availability warning", msg)
	}
	return nil
}
