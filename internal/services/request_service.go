package services

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"strings"
	"time"

	"campus-backend/internal/cache"
	"campus-backend/internal/metrics"
	"campus-backend/internal/models"
	"campus-backend/internal/query"
	"campus-backend/internal/timeutil"
	"campus-backend/pkg/utils"

	"github.com/jackc/pgx/v5"
)

// TitleGenerator produces a short display title from the request's free-text
// fields. Unreliable by contract; callers fall back to the request id.
type TitleGenerator interface {
	GenerateTitle(ctx context.Context, requestType, description string) (string, error)
}

// RequestDetail is a request joined with its typed subtype row
type RequestDetail struct {
	*models.Request
	Job        *models.JobRequest        `json:"job,omitempty"`
	Venue      *models.VenueRequest      `json:"venue,omitempty"`
	Transport  *models.TransportRequest  `json:"transport,omitempty"`
	Returnable *models.ReturnableRequest `json:"returnable,omitempty"`
	Supply     *models.SupplyRequest     `json:"supply,omitempty"`
}

type RequestService struct {
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
	Titles         TitleGenerator
	Notifier       Notifier
}

func NewRequestService(
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
	titles TitleGenerator,
	notifier Notifier,
) *RequestService {
	return &RequestService{
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
		Titles:         titles,
		Notifier:       notifier,
	}
}

// deriveTitle asks the title generator for a short title and falls back to
// the request id when the call fails or yields nothing. Generation must
// never block a submission from succeeding.
func deriveTitle(ctx context.Context, gen TitleGenerator, requestType, text, requestID string) string {
	if gen == nil || strings.TrimSpace(text) == "" {
		return requestID
	}
	title, err := gen.GenerateTitle(ctx, requestType, text)
	if err != nil {
		log.Printf("[Request] title generation failed for %s, using id: %v", requestID, err)
		return requestID
	}
	if title == "" {
		return requestID
	}
	return title
}

// SubmitJob creates a job/maintenance request
func (s *RequestService) SubmitJob(ctx context.Context, userID int, in *models.SubmitJobRequest) (*models.Request, error) {
	if strings.TrimSpace(in.Description) == "" {
		return nil, errors.New("description is required")
	}
	dept, err := s.DeptRepo.GetByID(ctx, in.DepartmentID)
	if err != nil {
		return nil, errors.New("department not found")
	}
	if !dept.AcceptsJobs {
		return nil, errors.New("department does not accept job requests")
	}

	req := s.newRequest(models.RequestTypeJob, userID, in.DepartmentID, in.Priority)
	req.Title = deriveTitle(ctx, s.Titles, models.RequestTypeJob, in.Description, req.ID)

	job := &models.JobRequest{
		ID:          utils.GenerateID(models.SubtypePrefix(models.RequestTypeJob)),
		RequestID:   req.ID,
		Description: in.Description,
		Location:    in.Location,
		JobType:     in.JobType,
		StartDate:   in.StartDate,
		EndDate:     in.EndDate,
	}

	err = s.createWithAudit(ctx, req, userID,
		func(tx pgx.Tx) error { return s.JobRepo.CreateTx(ctx, tx, job) },
		&RequestDetail{Request: req, Job: job})
	if err != nil {
		return nil, err
	}

	s.afterSubmit(req, "New job request", "A new job request was submitted: "+req.Title)
	return req, nil
}

// SubmitVenue creates a venue booking request after the conflict check
func (s *RequestService) SubmitVenue(ctx context.Context, userID int, in *models.SubmitVenueRequest) (*models.Request, error) {
	if !in.EndTime.After(in.StartTime) {
		return nil, errors.New("end time must be after start time")
	}
	if _, err := s.VenueRepo.GetByID(ctx, in.VenueID); err != nil {
		return nil, errors.New("venue not found")
	}
	if _, err := s.DeptRepo.GetByID(ctx, in.DepartmentID); err != nil {
		return nil, errors.New("department not found")
	}

	conflicts, err := s.VenueReqRepo.CountApprovedOverlapping(ctx, in.VenueID, in.StartTime, in.EndTime)
	if err != nil {
		return nil, err
	}
	if conflicts > 0 {
		metrics.BookingConflictsTotal.Inc()
		return nil, ErrConflict
	}

	req := s.newRequest(models.RequestTypeVenue, userID, in.DepartmentID, "")
	req.Title = deriveTitle(ctx, s.Titles, models.RequestTypeVenue, in.Purpose, req.ID)

	setup := in.SetupRequirements
	if setup == nil {
		setup = []string{}
	}
	booking := &models.VenueRequest{
		ID:                utils.GenerateID(models.SubtypePrefix(models.RequestTypeVenue)),
		RequestID:         req.ID,
		VenueID:           in.VenueID,
		StartTime:         in.StartTime,
		EndTime:           in.EndTime,
		Purpose:           in.Purpose,
		SetupRequirements: setup,
	}

	err = s.createWithAudit(ctx, req, userID,
		func(tx pgx.Tx) error { return s.VenueReqRepo.CreateTx(ctx, tx, booking) },
		&RequestDetail{Request: req, Venue: booking})
	if err != nil {
		return nil, err
	}

	s.afterSubmit(req, "New venue request", "A new venue booking was submitted: "+req.Title)
	return req, nil
}

// SubmitTransport creates a vehicle booking request after the exact-timestamp
// conflict check
func (s *RequestService) SubmitTransport(ctx context.Context, userID int, in *models.SubmitTransportRequest) (*models.Request, error) {
	if strings.TrimSpace(in.Destination) == "" {
		return nil, errors.New("destination is required")
	}
	if _, err := s.VehicleRepo.GetByID(ctx, in.VehicleID); err != nil {
		return nil, errors.New("vehicle not found")
	}
	if _, err := s.DeptRepo.GetByID(ctx, in.DepartmentID); err != nil {
		return nil, errors.New("department not found")
	}

	conflicts, err := s.TransportRepo.CountApprovedAtTime(ctx, in.VehicleID, in.DateAndTimeNeeded)
	if err != nil {
		return nil, err
	}
	if conflicts > 0 {
		metrics.BookingConflictsTotal.Inc()
		return nil, ErrConflict
	}

	req := s.newRequest(models.RequestTypeTransport, userID, in.DepartmentID, "")
	req.Title = deriveTitle(ctx, s.Titles, models.RequestTypeTransport, in.Description, req.ID)

	passengers := in.PassengersName
	if passengers == nil {
		passengers = []string{}
	}
	booking := &models.TransportRequest{
		ID:                utils.GenerateID(models.SubtypePrefix(models.RequestTypeTransport)),
		RequestID:         req.ID,
		VehicleID:         in.VehicleID,
		Description:       in.Description,
		Destination:       in.Destination,
		DateAndTimeNeeded: in.DateAndTimeNeeded,
		PassengersName:    passengers,
	}

	err = s.createWithAudit(ctx, req, userID,
		func(tx pgx.Tx) error { return s.TransportRepo.CreateTx(ctx, tx, booking) },
		&RequestDetail{Request: req, Transport: booking})
	if err != nil {
		return nil, err
	}

	s.afterSubmit(req, "New transport request", "A new transport booking was submitted: "+req.Title)
	return req, nil
}

// SubmitReturnable creates a loan request for a returnable item, or a
// RESOURCE request when the item is consumable
func (s *RequestService) SubmitReturnable(ctx context.Context, userID int, in *models.SubmitReturnableRequest) (*models.Request, error) {
	if in.Quantity < 1 {
		return nil, errors.New("quantity must be at least 1")
	}
	item, err := s.InventoryRepo.GetByID(ctx, in.ItemID)
	if err != nil {
		return nil, errors.New("inventory item not found")
	}
	if _, err := s.DeptRepo.GetByID(ctx, in.DepartmentID); err != nil {
		return nil, errors.New("department not found")
	}

	requestType := models.RequestTypeResource
	if item.Returnable {
		requestType = models.RequestTypeReturnable
		if in.ReturnDateAndTime == nil {
			return nil, errors.New("return date is required for returnable items")
		}
	}

	req := s.newRequest(requestType, userID, in.DepartmentID, "")
	req.Title = deriveTitle(ctx, s.Titles, requestType, in.Purpose, req.ID)

	loan := &models.ReturnableRequest{
		ID:                utils.GenerateID(models.SubtypePrefix(requestType)),
		RequestID:         req.ID,
		ItemID:            in.ItemID,
		Quantity:          in.Quantity,
		Purpose:           in.Purpose,
		DateAndTimeNeeded: in.DateAndTimeNeeded,
		ReturnDateAndTime: in.ReturnDateAndTime,
	}

	err = s.createWithAudit(ctx, req, userID,
		func(tx pgx.Tx) error { return s.ReturnableRepo.CreateTx(ctx, tx, loan) },
		&RequestDetail{Request: req, Returnable: loan})
	if err != nil {
		return nil, err
	}

	s.afterSubmit(req, "New resource request", "A new resource request was submitted: "+req.Title)
	return req, nil
}

// SubmitSupply creates a supply requisition
func (s *RequestService) SubmitSupply(ctx context.Context, userID int, in *models.SubmitSupplyRequest) (*models.Request, error) {
	if in.Quantity < 1 {
		return nil, errors.New("quantity must be at least 1")
	}
	if _, err := s.InventoryRepo.GetByID(ctx, in.ItemID); err != nil {
		return nil, errors.New("inventory item not found")
	}
	if _, err := s.DeptRepo.GetByID(ctx, in.DepartmentID); err != nil {
		return nil, errors.New("department not found")
	}

	req := s.newRequest(models.RequestTypeSupply, userID, in.DepartmentID, "")
	req.Title = deriveTitle(ctx, s.Titles, models.RequestTypeSupply, in.Purpose, req.ID)

	supply := &models.SupplyRequest{
		ID:                utils.GenerateID(models.SubtypePrefix(models.RequestTypeSupply)),
		RequestID:         req.ID,
		ItemID:            in.ItemID,
		Quantity:          in.Quantity,
		Purpose:           in.Purpose,
		DateAndTimeNeeded: in.DateAndTimeNeeded,
	}

	err := s.createWithAudit(ctx, req, userID,
		func(tx pgx.Tx) error { return s.SupplyRepo.CreateTx(ctx, tx, supply) },
		&RequestDetail{Request: req, Supply: supply})
	if err != nil {
		return nil, err
	}

	s.afterSubmit(req, "New supply request", "A new supply requisition was submitted: "+req.Title)
	return req, nil
}

func (s *RequestService) newRequest(requestType string, userID, departmentID int, priority string) *models.Request {
	if priority == "" || !models.ValidPriority(priority) {
		priority = models.PriorityNone
	}
	return &models.Request{
		ID:           utils.GenerateID("REQ"),
		Type:         requestType,
		Status:       models.StatusPending,
		Priority:     priority,
		UserID:       userID,
		DepartmentID: departmentID,
	}
}

// createWithAudit writes the parent row, the subtype row and the CREATED
// audit entry in one transaction.
func (s *RequestService) createWithAudit(ctx context.Context, req *models.Request, userID int, createChild func(tx pgx.Tx) error, snapshot any) error {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := s.RequestRepo.CreateTx(ctx, tx, req); err != nil {
		return err
	}
	if err := createChild(tx); err != nil {
		return err
	}

	audit := &models.AuditLog{
		EntityID:   req.ID,
		EntityType: "request",
		ChangeType: models.ChangeCreated,
		NewValue:   models.Snapshot(snapshot),
		ChangedBy:  userID,
	}
	if err := s.AuditRepo.CreateTx(ctx, tx, audit); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// afterSubmit runs the post-commit side effects of a submission: counters,
// cache invalidation, notifications to the department's elevated roles, and
// the realtime signal.
func (s *RequestService) afterSubmit(req *models.Request, subject, body string) {
	metrics.RequestsCreatedTotal.WithLabelValues(req.Type).Inc()
	cache.InvalidateRequestCaches(context.Background())

	recipients := s.elevatedRecipients(req.DepartmentID)
	if s.Notifier != nil {
		s.Notifier.Dispatch(&models.CreateNotification{
			Title:            subject,
			Message:          body,
			ResourceType:     "request",
			ResourceID:       req.ID,
			NotificationType: models.NotificationInfo,
			RecipientIDs:     recipients,
			UserID:           req.UserID,
		}, subject, body)
		s.Notifier.BroadcastRequestUpdate()
	}
}

// elevatedRecipients resolves the department heads and operations managers
// of a department. Resolution failures degrade to an empty recipient set.
func (s *RequestService) elevatedRecipients(departmentID int) []int {
	ctx := context.Background()
	var ids []int
	for _, role := range []string{models.RoleDepartmentHead, models.RoleOperationsManager} {
		users, err := s.DeptRepo.ListMembersByRole(ctx, departmentID, role)
		if err != nil {
			log.Printf("[Request] recipient resolution failed for department %d role %s: %v", departmentID, role, err)
			continue
		}
		for _, u := range users {
			ids = append(ids, u.ID)
		}
	}
	return ids
}

// Get returns a request with its subtype row
func (s *RequestService) Get(ctx context.Context, id string) (*RequestDetail, error) {
	req, err := s.RequestRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	detail := &RequestDetail{Request: req}
	switch req.Type {
	case models.RequestTypeJob:
		detail.Job, err = s.JobRepo.GetByRequestID(ctx, id)
	case models.RequestTypeVenue:
		detail.Venue, err = s.VenueReqRepo.GetByRequestID(ctx, id)
	case models.RequestTypeTransport:
		detail.Transport, err = s.TransportRepo.GetByRequestID(ctx, id)
	case models.RequestTypeResource, models.RequestTypeReturnable:
		detail.Returnable, err = s.ReturnableRepo.GetByRequestID(ctx, id)
	case models.RequestTypeSupply:
		detail.Supply, err = s.SupplyRepo.GetByRequestID(ctx, id)
	}
	if err != nil {
		return nil, err
	}
	return detail, nil
}

// requestListTTL keeps list pages fresh enough that the invalidators on
// lifecycle mutations are the common expiry path, not the clock.
const requestListTTL = 30 * time.Second

// requestListPage is the cached shape of one list response
type requestListPage struct {
	Data  []*models.Request `json:"data"`
	Total int               `json:"total"`
}

// List serves one page of requests, through the Redis list cache when it is
// available. Every lifecycle mutation clears the requests:* keys.
func (s *RequestService) List(ctx context.Context, p *query.ListParams) ([]*models.Request, int, error) {
	key := p.CacheKey("requests:list")
	if raw, ok := cache.GetCached(ctx, key); ok {
		var page requestListPage
		if err := json.Unmarshal(raw, &page); err == nil {
			return page.Data, page.Total, nil
		}
	}

	data, total, err := s.RequestRepo.List(ctx, p)
	if err != nil {
		return nil, 0, err
	}
	if raw, err := json.Marshal(requestListPage{Data: data, Total: total}); err == nil {
		cache.SetCached(ctx, key, raw, requestListTTL)
	}
	return data, total, nil
}

// Cancel lets the requester withdraw their own request while it is still
// PENDING. Reviewers cancel through the transition handler instead.
func (s *RequestService) Cancel(ctx context.Context, id string, userID int) (*models.Request, error) {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	req, err := s.RequestRepo.GetForUpdateTx(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if req.UserID != userID {
		return nil, ErrForbidden
	}
	if req.Status != models.StatusPending {
		return nil, ErrInvalidTransition
	}

	before := models.Snapshot(req)
	req.Status = models.StatusCancelled
	if err := s.RequestRepo.UpdateStatusTx(ctx, tx, req); err != nil {
		return nil, err
	}

	audit := &models.AuditLog{
		EntityID:   req.ID,
		EntityType: "request",
		ChangeType: models.ChangeCancelled,
		OldValue:   before,
		NewValue:   models.Snapshot(req),
		ChangedBy:  userID,
	}
	if err := s.AuditRepo.CreateTx(ctx, tx, audit); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	metrics.StatusTransitionsTotal.WithLabelValues(models.StatusCancelled).Inc()
	cache.InvalidateRequestCaches(context.Background())
	if s.Notifier != nil {
		s.Notifier.Dispatch(&models.CreateNotification{
			Title:            "Request cancelled",
			Message:          "Request " + req.Title + " was cancelled by its requester on " + timeutil.Now().Format(timeutil.DisplayLayout),
			ResourceType:     "request",
			ResourceID:       req.ID,
			NotificationType: models.NotificationWarning,
			RecipientIDs:     s.elevatedRecipients(req.DepartmentID),
			UserID:           userID,
		}, "", "")
		s.Notifier.BroadcastRequestUpdate()
	}
	return req, nil
}
