package services

import (
	"context"
	"errors"

	"campus-backend/internal/cache"
	"campus-backend/internal/models"
	"campus-backend/internal/timeutil"
)

type JobService struct {
	DB          TxBeginner
	RequestRepo RequestStore
	JobRepo     JobStore
	DeptRepo    DepartmentStore
	AuditRepo   AuditStore
	Notifier    Notifier
}

func NewJobService(
	db TxBeginner,
	requestRepo RequestStore,
	jobRepo JobStore,
	deptRepo DepartmentStore,
	auditRepo AuditStore,
	notifier Notifier,
) *JobService {
	return &JobService{
		DB:          db,
		RequestRepo: requestRepo,
		JobRepo:     jobRepo,
		DeptRepo:    deptRepo,
		AuditRepo:   auditRepo,
		Notifier:    notifier,
	}
}

// Assign sets the personnel responsible for a job. Re-assigning the person
// already assigned is reported as ErrNoChanges and writes nothing, audit row
// included.
func (s *JobService) Assign(ctx context.Context, requestID string, personnelID, actorID int) (*models.JobRequest, error) {
	req, err := s.RequestRepo.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req.Type != models.RequestTypeJob {
		return nil, errors.New("only job requests can be assigned")
	}
	if models.IsTerminal(req.Status) {
		return nil, errors.New("request is already closed")
	}

	job, err := s.JobRepo.GetByRequestID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if job.AssignedTo != nil && *job.AssignedTo == personnelID {
		return nil, ErrNoChanges
	}

	role, err := s.DeptRepo.GetMemberRole(ctx, req.DepartmentID, personnelID)
	if err != nil || role != models.RolePersonnel {
		return nil, errors.New("assignee must be personnel of the request's department")
	}

	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	before := models.Snapshot(job)
	if err := s.JobRepo.AssignTx(ctx, tx, requestID, personnelID); err != nil {
		return nil, err
	}
	job.AssignedTo = &personnelID

	audit := &models.AuditLog{
		EntityID:   requestID,
		EntityType: "job_request",
		ChangeType: models.ChangeAssignmentChange,
		OldValue:   before,
		NewValue:   models.Snapshot(job),
		ChangedBy:  actorID,
	}
	if err := s.AuditRepo.CreateTx(ctx, tx, audit); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	cache.InvalidateRequestCaches(context.Background())
	if s.Notifier != nil {
		msg := "You were assigned to job " + req.Title
		s.Notifier.Dispatch(&models.CreateNotification{
			Title:            "Job assigned",
			Message:          msg,
			ResourceType:     "request",
			ResourceID:       requestID,
			NotificationType: models.NotificationInfo,
			RecipientIDs:     []int{personnelID, req.UserID},
			UserID:           actorID,
		}, "Job assigned", msg)
		s.Notifier.BroadcastRequestUpdate()
	}
	return job, nil
}

// Start marks an assigned job as in progress and stamps the actual start
func (s *JobService) Start(ctx context.Context, requestID string, actorID int) (*models.JobRequest, error) {
	req, err := s.RequestRepo.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req.Status != models.StatusApproved {
		return nil, errors.New("job must be approved before work starts")
	}

	job, err := s.JobRepo.GetByRequestID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if job.AssignedTo == nil {
		return nil, errors.New("job has no assigned personnel")
	}
	if job.InProgress {
		return nil, ErrNoChanges
	}

	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	before := models.Snapshot(job)
	now := timeutil.Now()
	if err := s.JobRepo.StartTx(ctx, tx, requestID, now); err != nil {
		return nil, err
	}
	job.InProgress = true
	job.ActualStart = &now

	audit := &models.AuditLog{
		EntityID:   requestID,
		EntityType: "job_request",
		ChangeType: models.ChangeFieldUpdate,
		OldValue:   before,
		NewValue:   models.Snapshot(job),
		ChangedBy:  actorID,
	}
	if err := s.AuditRepo.CreateTx(ctx, tx, audit); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	cache.InvalidateRequestCaches(context.Background())
	if s.Notifier != nil {
		msg := "Work started on your job request " + req.Title
		s.Notifier.Dispatch(&models.CreateNotification{
			Title:            "Job in progress",
			Message:          msg,
			ResourceType:     "request",
			ResourceID:       requestID,
			NotificationType: models.NotificationInfo,
			RecipientIDs:     []int{req.UserID},
			UserID:           actorID,
		}, "Job in progress", msg)
		s.Notifier.BroadcastRequestUpdate()
	}
	return job, nil
}
