package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"campus-backend/internal/models"
)

func newVenueSubmitFixture() (*RequestService, *fakeRequestStore, *fakeVenueBookingStore, *fakeAuditStore, *fakeNotifier) {
	requests := newFakeRequestStore()
	bookings := newFakeVenueBookingStore()
	audits := &fakeAuditStore{}
	notifier := &fakeNotifier{}

	venues := newFakeVenueStore(&models.Venue{ID: 7, Name: "Auditorium", Status: models.ResourceAvailable})
	depts := newFakeDeptStore(&models.Department{ID: 3, Name: "Facilities"})
	depts.setRole(3, 42, models.RoleDepartmentHead)
	depts.setRole(3, 43, models.RoleOperationsManager)

	svc := &RequestService{
		DB:           &fakeDB{},
		RequestRepo:  requests,
		VenueReqRepo: bookings,
		VenueRepo:    venues,
		DeptRepo:     depts,
		AuditRepo:    audits,
		Notifier:     notifier,
	}
	return svc, requests, bookings, audits, notifier
}

func TestSubmitVenueCreatesPendingRequestWithAudit(t *testing.T) {
	svc, requests, bookings, audits, notifier := newVenueSubmitFixture()

	req, err := svc.SubmitVenue(context.Background(), 10, &models.SubmitVenueRequest{
		DepartmentID: 3,
		VenueID:      7,
		StartTime:    ts("2026-09-01T09:00:00Z"),
		EndTime:      ts("2026-09-01T11:00:00Z"),
		Purpose:      "orientation talk",
	})
	if err != nil {
		t.Fatalf("SubmitVenue() error = %v", err)
	}
	if req.Status != models.StatusPending {
		t.Errorf("status = %s, want %s", req.Status, models.StatusPending)
	}
	// No title generator configured, so the title is the request id
	if req.Title != req.ID {
		t.Errorf("title = %q, want the request id %q", req.Title, req.ID)
	}

	if _, err := requests.GetByID(context.Background(), req.ID); err != nil {
		t.Errorf("request row was not stored: %v", err)
	}
	if _, err := bookings.GetByRequestID(context.Background(), req.ID); err != nil {
		t.Errorf("booking row was not stored: %v", err)
	}

	entries := audits.entries()
	if len(entries) != 1 {
		t.Fatalf("audit rows = %d, want exactly 1", len(entries))
	}
	entry := entries[0]
	if entry.ChangeType != models.ChangeCreated {
		t.Errorf("audit change type = %s, want %s", entry.ChangeType, models.ChangeCreated)
	}
	if entry.EntityID != req.ID {
		t.Errorf("audit entity id = %s, want %s", entry.EntityID, req.ID)
	}
	var snapshot RequestDetail
	if err := json.Unmarshal(entry.NewValue, &snapshot); err != nil {
		t.Fatalf("audit new value is not a valid snapshot: %v", err)
	}
	if snapshot.Request == nil || snapshot.Request.Status != models.StatusPending {
		t.Errorf("audit snapshot does not capture the PENDING request")
	}
	if snapshot.Venue == nil || snapshot.Venue.VenueID != 7 {
		t.Errorf("audit snapshot does not capture the booking row")
	}

	sent := notifier.sent()
	if len(sent) != 1 {
		t.Fatalf("notifications = %d, want 1", len(sent))
	}
	if got := sent[0].RecipientIDs; len(got) != 2 {
		t.Errorf("notification recipients = %v, want the department head and operations manager", got)
	}
}

func TestSubmitVenueRejectsOverlappingBooking(t *testing.T) {
	svc, requests, bookings, audits, notifier := newVenueSubmitFixture()
	bookings.overlapCount = 1

	_, err := svc.SubmitVenue(context.Background(), 10, &models.SubmitVenueRequest{
		DepartmentID: 3,
		VenueID:      7,
		StartTime:    ts("2026-09-01T09:00:00Z"),
		EndTime:      ts("2026-09-01T11:00:00Z"),
		Purpose:      "orientation talk",
	})
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("SubmitVenue() error = %v, want ErrConflict", err)
	}
	if _, total, _ := requests.List(context.Background(), nil); total != 0 {
		t.Errorf("conflicting submission stored %d request rows, want none", total)
	}
	if got := len(audits.entries()); got != 0 {
		t.Errorf("conflicting submission wrote %d audit rows, want none", got)
	}
	if got := len(notifier.sent()); got != 0 {
		t.Errorf("conflicting submission dispatched %d notifications, want none", got)
	}
}

func TestSubmitVenueRejectsInvertedWindow(t *testing.T) {
	svc, _, _, audits, _ := newVenueSubmitFixture()

	_, err := svc.SubmitVenue(context.Background(), 10, &models.SubmitVenueRequest{
		DepartmentID: 3,
		VenueID:      7,
		StartTime:    ts("2026-09-01T11:00:00Z"),
		EndTime:      ts("2026-09-01T09:00:00Z"),
		Purpose:      "orientation talk",
	})
	if err == nil {
		t.Fatal("SubmitVenue() accepted an end time before the start time")
	}
	if got := len(audits.entries()); got != 0 {
		t.Errorf("rejected submission wrote %d audit rows, want none", got)
	}
}

func TestCancelOnlyByRequesterWhilePending(t *testing.T) {
	requests := newFakeRequestStore(&models.Request{
		ID: "REQ-1", Type: models.RequestTypeJob, Status: models.StatusPending,
		Title: "fix hallway lights", UserID: 10, DepartmentID: 3,
	})
	audits := &fakeAuditStore{}
	depts := newFakeDeptStore(&models.Department{ID: 3})
	svc := &RequestService{
		DB:          &fakeDB{},
		RequestRepo: requests,
		DeptRepo:    depts,
		AuditRepo:   audits,
		Notifier:    &fakeNotifier{},
	}

	if _, err := svc.Cancel(context.Background(), "REQ-1", 99); !errors.Is(err, ErrForbidden) {
		t.Fatalf("Cancel() by another user error = %v, want ErrForbidden", err)
	}

	req, err := svc.Cancel(context.Background(), "REQ-1", 10)
	if err != nil {
		t.Fatalf("Cancel() by requester error = %v", err)
	}
	if req.Status != models.StatusCancelled {
		t.Errorf("status = %s, want %s", req.Status, models.StatusCancelled)
	}
	if got := len(audits.entries()); got != 1 {
		t.Errorf("audit rows = %d, want exactly 1", got)
	}

	// Terminal now, a second cancel must not go through
	if _, err := svc.Cancel(context.Background(), "REQ-1", 10); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("second Cancel() error = %v, want ErrInvalidTransition", err)
	}
}
