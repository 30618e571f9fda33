package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"campus-backend/internal/models"
)

func newVenueApprovalFixture(reqStatus string) (*ApprovalService, *fakeRequestStore, *fakeVenueBookingStore, *fakeVenueStore, *fakeAuditStore, *fakeNotifier) {
	requests := newFakeRequestStore(&models.Request{
		ID: "REQ-1", Type: models.RequestTypeVenue, Status: reqStatus,
		Title: "orientation talk", UserID: 10, DepartmentID: 3,
	})
	bookings := newFakeVenueBookingStore(&models.VenueRequest{
		ID: "VRQ-1", RequestID: "REQ-1", VenueID: 7,
		StartTime: ts("2026-09-01T09:00:00Z"),
		EndTime:   ts("2026-09-01T11:00:00Z"),
	})
	venues := newFakeVenueStore(&models.Venue{ID: 7, Name: "Auditorium", Status: models.ResourceAvailable})
	audits := &fakeAuditStore{}
	notifier := &fakeNotifier{}
	depts := newFakeDeptStore(&models.Department{ID: 3})

	svc := &ApprovalService{
		DB:           &fakeDB{},
		RequestRepo:  requests,
		VenueReqRepo: bookings,
		VenueRepo:    venues,
		DeptRepo:     depts,
		AuditRepo:    audits,
		Notifier:     notifier,
	}
	return svc, requests, bookings, venues, audits, notifier
}

func TestApproveVenueReservesVenueAndAuditsOnce(t *testing.T) {
	svc, requests, _, venues, audits, notifier := newVenueApprovalFixture(models.StatusPending)

	req, err := svc.Approve(context.Background(), "REQ-1", 42, models.RoleOperationsManager)
	if err != nil {
		t.Fatalf("Approve() error = %v", err)
	}
	if req.Status != models.StatusApproved {
		t.Errorf("status = %s, want %s", req.Status, models.StatusApproved)
	}
	if req.ApprovedAt == nil {
		t.Error("ApprovedAt was not stamped")
	}

	stored, _ := requests.GetByID(context.Background(), "REQ-1")
	if stored.Status != models.StatusApproved {
		t.Errorf("stored status = %s, want %s", stored.Status, models.StatusApproved)
	}

	venue, _ := venues.GetByID(context.Background(), 7)
	if venue.Status != models.ResourceReserved {
		t.Errorf("venue status = %s, want %s", venue.Status, models.ResourceReserved)
	}

	entries := audits.entries()
	if len(entries) != 1 {
		t.Fatalf("audit rows = %d, want exactly 1", len(entries))
	}
	entry := entries[0]
	if entry.ChangeType != models.ChangeApproved {
		t.Errorf("audit change type = %s, want %s", entry.ChangeType, models.ChangeApproved)
	}
	var oldReq, newReq models.Request
	if err := json.Unmarshal(entry.OldValue, &oldReq); err != nil {
		t.Fatalf("audit old value is not a valid snapshot: %v", err)
	}
	if err := json.Unmarshal(entry.NewValue, &newReq); err != nil {
		t.Fatalf("audit new value is not a valid snapshot: %v", err)
	}
	if oldReq.Status != models.StatusPending || newReq.Status != models.StatusApproved {
		t.Errorf("audit snapshots show %s -> %s, want %s -> %s",
			oldReq.Status, newReq.Status, models.StatusPending, models.StatusApproved)
	}

	sent := notifier.sent()
	if len(sent) != 1 {
		t.Fatalf("notifications = %d, want 1", len(sent))
	}
	if got := sent[0].RecipientIDs; len(got) != 1 || got[0] != 10 {
		t.Errorf("notification recipients = %v, want just the requester", got)
	}
}

func TestApproveVenueFailsWhenApprovedBookingOverlaps(t *testing.T) {
	svc, requests, bookings, venues, audits, _ := newVenueApprovalFixture(models.StatusPending)
	bookings.approved = []*models.VenueRequest{{
		ID: "VRQ-2", RequestID: "REQ-2", VenueID: 7,
		StartTime: ts("2026-09-01T10:00:00Z"),
		EndTime:   ts("2026-09-01T12:00:00Z"),
	}}

	_, err := svc.Approve(context.Background(), "REQ-1", 42, models.RoleOperationsManager)
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("Approve() error = %v, want ErrConflict", err)
	}

	stored, _ := requests.GetByID(context.Background(), "REQ-1")
	if stored.Status != models.StatusPending {
		t.Errorf("stored status = %s, a failed approval must leave the request PENDING", stored.Status)
	}
	venue, _ := venues.GetByID(context.Background(), 7)
	if venue.Status != models.ResourceAvailable {
		t.Errorf("venue status = %s, a failed approval must not reserve the venue", venue.Status)
	}
	if got := len(audits.entries()); got != 0 {
		t.Errorf("failed approval wrote %d audit rows, want none", got)
	}
}

func TestApproveVenueIgnoresOwnBookingInRecheck(t *testing.T) {
	svc, _, bookings, _, _, _ := newVenueApprovalFixture(models.StatusPending)
	// The booking being approved may already be visible in the approved list.
	// It must not conflict with itself.
	bookings.approved = []*models.VenueRequest{{
		ID: "VRQ-1", RequestID: "REQ-1", VenueID: 7,
		StartTime: ts("2026-09-01T09:00:00Z"),
		EndTime:   ts("2026-09-01T11:00:00Z"),
	}}

	if _, err := svc.Approve(context.Background(), "REQ-1", 42, models.RoleOperationsManager); err != nil {
		t.Fatalf("Approve() error = %v", err)
	}
}

func TestApproveRejectsTerminalRequest(t *testing.T) {
	svc, _, _, _, audits, _ := newVenueApprovalFixture(models.StatusCompleted)

	_, err := svc.Approve(context.Background(), "REQ-1", 42, models.RoleOperationsManager)
	if !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("Approve() error = %v, want ErrInvalidTransition", err)
	}
	if got := len(audits.entries()); got != 0 {
		t.Errorf("invalid transition wrote %d audit rows, want none", got)
	}
}

func TestApproveTransportFailsWhenSlotTaken(t *testing.T) {
	departure := ts("2026-09-02T08:00:00Z")
	requests := newFakeRequestStore(&models.Request{
		ID: "REQ-1", Type: models.RequestTypeTransport, Status: models.StatusPending,
		Title: "airport run", UserID: 10, DepartmentID: 3,
	})
	transports := newFakeTransportStore(&models.TransportRequest{
		ID: "TRQ-1", RequestID: "REQ-1", VehicleID: 5, DateAndTimeNeeded: departure,
	})
	transports.approved = []*models.TransportRequest{{
		ID: "TRQ-2", RequestID: "REQ-2", VehicleID: 5, DateAndTimeNeeded: departure,
	}}
	vehicles := newFakeVehicleStore(&models.Vehicle{ID: 5, Status: models.ResourceAvailable})
	audits := &fakeAuditStore{}

	svc := &ApprovalService{
		DB:            &fakeDB{},
		RequestRepo:   requests,
		TransportRepo: transports,
		VehicleRepo:   vehicles,
		DeptRepo:      newFakeDeptStore(&models.Department{ID: 3}),
		AuditRepo:     audits,
		Notifier:      &fakeNotifier{},
	}

	_, err := svc.Approve(context.Background(), "REQ-1", 42, models.RoleOperationsManager)
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("Approve() error = %v, want ErrConflict", err)
	}
	stored, _ := requests.GetByID(context.Background(), "REQ-1")
	if stored.Status != models.StatusPending {
		t.Errorf("stored status = %s, a failed approval must leave the request PENDING", stored.Status)
	}
	if got := len(audits.entries()); got != 0 {
		t.Errorf("failed approval wrote %d audit rows, want none", got)
	}
}

func TestApproveReturnableChecksAvailableStock(t *testing.T) {
	newSvc := func(quantityOut int) (*ApprovalService, *fakeInventoryStore, *fakeAuditStore) {
		requests := newFakeRequestStore(&models.Request{
			ID: "REQ-1", Type: models.RequestTypeReturnable, Status: models.StatusPending,
			Title: "projector loan", UserID: 10, DepartmentID: 3,
		})
		loans := newFakeReturnableStore(&models.ReturnableRequest{
			ID: "RRQ-1", RequestID: "REQ-1", ItemID: 4, Quantity: 2,
		})
		items := newFakeInventoryStore(&models.InventoryItem{
			ID: 4, Name: "Projector", Returnable: true, Quantity: 3, QuantityOut: quantityOut,
		})
		audits := &fakeAuditStore{}
		svc := &ApprovalService{
			DB:             &fakeDB{},
			RequestRepo:    requests,
			ReturnableRepo: loans,
			InventoryRepo:  items,
			DeptRepo:       newFakeDeptStore(&models.Department{ID: 3}),
			AuditRepo:      audits,
			Notifier:       &fakeNotifier{},
		}
		return svc, items, audits
	}

	// 3 on hand, 2 already out: only 1 available, loan of 2 must fail
	svc, items, audits := newSvc(2)
	if _, err := svc.Approve(context.Background(), "REQ-1", 42, models.RoleOperationsManager); err == nil {
		t.Fatal("Approve() loaned out more stock than is available")
	}
	items.mu.Lock()
	adjusted := items.adjusted[4]
	items.mu.Unlock()
	if adjusted != 0 {
		t.Errorf("failed approval moved %d units out, want none", adjusted)
	}
	if got := len(audits.entries()); got != 0 {
		t.Errorf("failed approval wrote %d audit rows, want none", got)
	}

	// Nothing out: the loan goes through and holds 2 units
	svc, items, audits = newSvc(0)
	if _, err := svc.Approve(context.Background(), "REQ-1", 42, models.RoleOperationsManager); err != nil {
		t.Fatalf("Approve() error = %v", err)
	}
	items.mu.Lock()
	adjusted = items.adjusted[4]
	items.mu.Unlock()
	if adjusted != 2 {
		t.Errorf("approval moved %d units out, want 2", adjusted)
	}
	if got := len(audits.entries()); got != 1 {
		t.Errorf("audit rows = %d, want exactly 1", got)
	}
}

func TestRejectRequiresReason(t *testing.T) {
	svc, _, _, _, audits, _ := newVenueApprovalFixture(models.StatusPending)

	if _, err := svc.Reject(context.Background(), "REQ-1", 42, "   "); err == nil {
		t.Fatal("Reject() accepted a blank reason")
	}
	if got := len(audits.entries()); got != 0 {
		t.Errorf("rejected-without-reason wrote %d audit rows, want none", got)
	}

	req, err := svc.Reject(context.Background(), "REQ-1", 42, "venue is closed that week")
	if err != nil {
		t.Fatalf("Reject() error = %v", err)
	}
	if req.Status != models.StatusRejected {
		t.Errorf("status = %s, want %s", req.Status, models.StatusRejected)
	}
	if req.RejectReason == nil || *req.RejectReason != "venue is closed that week" {
		t.Error("reject reason was not stored on the request")
	}
}
