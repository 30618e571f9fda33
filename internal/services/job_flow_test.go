package services

import (
	"context"
	"errors"
	"testing"

	"campus-backend/internal/models"
)

func newJobFixture(assignedTo *int) (*JobService, *fakeJobStore, *fakeDeptStore, *fakeAuditStore, *fakeNotifier) {
	requests := newFakeRequestStore(&models.Request{
		ID: "REQ-1", Type: models.RequestTypeJob, Status: models.StatusApproved,
		Title: "fix hallway lights", UserID: 10, DepartmentID: 3,
	})
	jobs := newFakeJobStore(&models.JobRequest{
		ID: "JRQ-1", RequestID: "REQ-1", Description: "two tubes flickering", AssignedTo: assignedTo,
	})
	depts := newFakeDeptStore(&models.Department{ID: 3, AcceptsJobs: true})
	audits := &fakeAuditStore{}
	notifier := &fakeNotifier{}

	svc := &JobService{
		DB:          &fakeDB{},
		RequestRepo: requests,
		JobRepo:     jobs,
		DeptRepo:    depts,
		AuditRepo:   audits,
		Notifier:    notifier,
	}
	return svc, jobs, depts, audits, notifier
}

func TestAssignJobWritesOneAuditRow(t *testing.T) {
	svc, jobs, depts, audits, notifier := newJobFixture(nil)
	depts.setRole(3, 20, models.RolePersonnel)

	job, err := svc.Assign(context.Background(), "REQ-1", 20, 42)
	if err != nil {
		t.Fatalf("Assign() error = %v", err)
	}
	if job.AssignedTo == nil || *job.AssignedTo != 20 {
		t.Errorf("AssignedTo = %v, want 20", job.AssignedTo)
	}

	stored, _ := jobs.GetByRequestID(context.Background(), "REQ-1")
	if stored.AssignedTo == nil || *stored.AssignedTo != 20 {
		t.Error("assignment was not persisted")
	}

	entries := audits.entries()
	if len(entries) != 1 {
		t.Fatalf("audit rows = %d, want exactly 1", len(entries))
	}
	if entries[0].ChangeType != models.ChangeAssignmentChange {
		t.Errorf("audit change type = %s, want %s", entries[0].ChangeType, models.ChangeAssignmentChange)
	}

	sent := notifier.sent()
	if len(sent) != 1 {
		t.Fatalf("notifications = %d, want 1", len(sent))
	}
	if got := sent[0].RecipientIDs; len(got) != 2 || got[0] != 20 || got[1] != 10 {
		t.Errorf("notification recipients = %v, want the assignee and the requester", got)
	}
}

func TestAssignSamePersonnelIsNoOp(t *testing.T) {
	already := 20
	svc, jobs, depts, audits, notifier := newJobFixture(&already)
	depts.setRole(3, 20, models.RolePersonnel)

	_, err := svc.Assign(context.Background(), "REQ-1", 20, 42)
	if !errors.Is(err, ErrNoChanges) {
		t.Fatalf("Assign() error = %v, want ErrNoChanges", err)
	}
	if got := len(audits.entries()); got != 0 {
		t.Errorf("no-op reassignment wrote %d audit rows, want none", got)
	}
	if got := len(notifier.sent()); got != 0 {
		t.Errorf("no-op reassignment dispatched %d notifications, want none", got)
	}
	jobs.mu.Lock()
	assigns := len(jobs.assigns)
	jobs.mu.Unlock()
	if assigns != 0 {
		t.Errorf("no-op reassignment hit the store %d times, want none", assigns)
	}
}

func TestAssignRequiresPersonnelRole(t *testing.T) {
	svc, _, depts, audits, _ := newJobFixture(nil)
	depts.setRole(3, 20, models.RoleDepartmentHead)

	if _, err := svc.Assign(context.Background(), "REQ-1", 20, 42); err == nil {
		t.Fatal("Assign() accepted an assignee who is not personnel")
	}
	// Not a member at all
	if _, err := svc.Assign(context.Background(), "REQ-1", 99, 42); err == nil {
		t.Fatal("Assign() accepted an assignee outside the department")
	}
	if got := len(audits.entries()); got != 0 {
		t.Errorf("rejected assignment wrote %d audit rows, want none", got)
	}
}

func TestStartJobRequiresAssignment(t *testing.T) {
	svc, jobs, _, audits, _ := newJobFixture(nil)

	if _, err := svc.Start(context.Background(), "REQ-1", 20); err == nil {
		t.Fatal("Start() accepted a job with no assigned personnel")
	}

	assignee := 20
	jobs.mu.Lock()
	jobs.jobs["REQ-1"].AssignedTo = &assignee
	jobs.mu.Unlock()

	job, err := svc.Start(context.Background(), "REQ-1", 20)
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if !job.InProgress || job.ActualStart == nil {
		t.Error("Start() did not mark the job in progress with an actual start")
	}
	if got := len(audits.entries()); got != 1 {
		t.Errorf("audit rows = %d, want exactly 1", got)
	}

	// Already running, a second start is a no-op
	if _, err := svc.Start(context.Background(), "REQ-1", 20); !errors.Is(err, ErrNoChanges) {
		t.Errorf("second Start() error = %v, want ErrNoChanges", err)
	}
}
