package services

import (
	"context"
	"strings"
	"testing"

	"campus-backend/internal/models"
)

func newTransportFixture(odometerStart *float64, interval float64) (*TransportService, *fakeRequestStore, *fakeTransportStore, *fakeVehicleStore, *fakeDeptStore, *fakeAuditStore, *fakeNotifier) {
	requests := newFakeRequestStore(&models.Request{
		ID: "REQ-1", Type: models.RequestTypeTransport, Status: models.StatusApproved,
		Title: "airport run", UserID: 10, DepartmentID: 3,
	})
	transports := newFakeTransportStore(&models.TransportRequest{
		ID: "TRQ-1", RequestID: "REQ-1", VehicleID: 5,
		DateAndTimeNeeded: ts("2026-09-02T08:00:00Z"),
		OdometerStart:     odometerStart,
	})
	vehicles := newFakeVehicleStore(&models.Vehicle{
		ID: 5, Name: "Bus 1", PlateNumber: "ABC-123", DepartmentID: 3,
		Status: models.ResourceInUse, Odometer: 5000, MaintenanceInterval: &interval,
	})
	depts := newFakeDeptStore(&models.Department{ID: 3})
	audits := &fakeAuditStore{}
	notifier := &fakeNotifier{}

	svc := &TransportService{
		DB:            &fakeDB{},
		RequestRepo:   requests,
		TransportRepo: transports,
		VehicleRepo:   vehicles,
		DeptRepo:      depts,
		AuditRepo:     audits,
		Notifier:      notifier,
	}
	return svc, requests, transports, vehicles, depts, audits, notifier
}

func TestCompleteTransportAdvancesOdometerAndReleasesVehicle(t *testing.T) {
	start := 5000.0
	// Interval far above the trip distance so the maintenance check stays quiet
	svc, requests, transports, vehicles, _, audits, notifier := newTransportFixture(&start, 1000000)

	req, err := svc.Complete(context.Background(), "REQ-1", 5120, 42)
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if req.Status != models.StatusCompleted {
		t.Errorf("status = %s, want %s", req.Status, models.StatusCompleted)
	}
	if req.CompletedAt == nil {
		t.Error("CompletedAt was not stamped")
	}

	stored, _ := requests.GetByID(context.Background(), "REQ-1")
	if stored.Status != models.StatusCompleted {
		t.Errorf("stored status = %s, want %s", stored.Status, models.StatusCompleted)
	}

	transports.mu.Lock()
	distance, ok := transports.completed["REQ-1"]
	transports.mu.Unlock()
	if !ok || distance != 120 {
		t.Errorf("recorded distance = %v, want 120", distance)
	}

	vehicle, _ := vehicles.GetByID(context.Background(), 5)
	if vehicle.Odometer != 5120 {
		t.Errorf("vehicle odometer = %v, want 5120", vehicle.Odometer)
	}
	if vehicle.Status != models.ResourceAvailable {
		t.Errorf("vehicle status = %s, want %s", vehicle.Status, models.ResourceAvailable)
	}

	entries := audits.entries()
	if len(entries) != 1 {
		t.Fatalf("audit rows = %d, want exactly 1", len(entries))
	}
	if entries[0].ChangeType != models.ChangeCompleted {
		t.Errorf("audit change type = %s, want %s", entries[0].ChangeType, models.ChangeCompleted)
	}

	sent := notifier.sent()
	if len(sent) == 0 {
		t.Fatal("requester was not notified of the completion")
	}
	if got := sent[0].RecipientIDs; len(got) != 1 || got[0] != 10 {
		t.Errorf("notification recipients = %v, want just the requester", got)
	}
}

func TestCompleteTransportRequiresStartReading(t *testing.T) {
	svc, requests, _, _, _, audits, _ := newTransportFixture(nil, 1000000)

	_, err := svc.Complete(context.Background(), "REQ-1", 5120, 42)
	if err == nil || !strings.Contains(err.Error(), "never recorded") {
		t.Fatalf("Complete() error = %v, want a missing-start-reading error", err)
	}

	stored, _ := requests.GetByID(context.Background(), "REQ-1")
	if stored.Status != models.StatusApproved {
		t.Errorf("stored status = %s, a failed completion must leave the request APPROVED", stored.Status)
	}
	if got := len(audits.entries()); got != 0 {
		t.Errorf("failed completion wrote %d audit rows, want none", got)
	}
}

func TestCompleteTransportRejectsLowerEndReading(t *testing.T) {
	start := 5000.0
	svc, _, transports, vehicles, _, audits, _ := newTransportFixture(&start, 1000000)

	_, err := svc.Complete(context.Background(), "REQ-1", 4900, 42)
	if err == nil || !strings.Contains(err.Error(), "lower than the start") {
		t.Fatalf("Complete() error = %v, want a negative-distance error", err)
	}

	transports.mu.Lock()
	completions := len(transports.completed)
	transports.mu.Unlock()
	if completions != 0 {
		t.Errorf("failed completion recorded %d distances, want none", completions)
	}
	vehicle, _ := vehicles.GetByID(context.Background(), 5)
	if vehicle.Odometer != 5000 {
		t.Errorf("vehicle odometer = %v, a failed completion must not move it", vehicle.Odometer)
	}
	if got := len(audits.entries()); got != 0 {
		t.Errorf("failed completion wrote %d audit rows, want none", got)
	}
}

func TestMaintenanceCheckFlagsVehicleAndWarnsBookings(t *testing.T) {
	svc, _, transports, vehicles, depts, _, notifier := newTransportFixture(nil, 500)
	depts.setRole(3, 42, models.RoleDepartmentHead)
	transports.upcoming = []*models.TransportRequest{{
		ID: "TRQ-9", RequestID: "REQ-9", VehicleID: 5,
		DateAndTimeNeeded: ts("2026-09-10T08:00:00Z"),
	}}
	transports.owners["REQ-9"] = 77

	// 5000 driven since the last service at 0, interval 500: due
	vehicle, _ := vehicles.GetByID(context.Background(), 5)
	if err := svc.checkMaintenanceDue(context.Background(), vehicle, 42); err != nil {
		t.Fatalf("checkMaintenanceDue() error = %v", err)
	}

	flagged, _ := vehicles.GetByID(context.Background(), 5)
	if !flagged.RequiresMaintenance {
		t.Error("vehicle was not flagged for maintenance")
	}
	if flagged.Status != models.ResourceUnderMaintenance {
		t.Errorf("vehicle status = %s, want %s", flagged.Status, models.ResourceUnderMaintenance)
	}

	sent := notifier.sent()
	if len(sent) != 2 {
		t.Fatalf("notifications = %d, want the department head alert and the booking warning", len(sent))
	}
	if got := sent[0].RecipientIDs; len(got) != 1 || got[0] != 42 {
		t.Errorf("first notification recipients = %v, want the department head", got)
	}
	if got := sent[1].RecipientIDs; len(got) != 1 || got[0] != 77 {
		t.Errorf("second notification recipients = %v, want the booking owner", got)
	}
	if sent[1].NotificationType != models.NotificationWarning {
		t.Errorf("booking warning type = %s, want %s", sent[1].NotificationType, models.NotificationWarning)
	}
}

func TestMaintenanceCheckBelowIntervalDoesNothing(t *testing.T) {
	svc, _, _, vehicles, depts, _, notifier := newTransportFixture(nil, 1000000)
	depts.setRole(3, 42, models.RoleDepartmentHead)

	vehicle, _ := vehicles.GetByID(context.Background(), 5)
	if err := svc.checkMaintenanceDue(context.Background(), vehicle, 42); err != nil {
		t.Fatalf("checkMaintenanceDue() error = %v", err)
	}

	unflagged, _ := vehicles.GetByID(context.Background(), 5)
	if unflagged.RequiresMaintenance {
		t.Error("vehicle below its interval was flagged for maintenance")
	}
	if got := len(notifier.sent()); got != 0 {
		t.Errorf("vehicle below its interval dispatched %d notifications, want none", got)
	}
}

func TestRecordOdometerStartIsIdempotent(t *testing.T) {
	svc, _, transports, vehicles, _, audits, _ := newTransportFixture(nil, 1000000)

	booking, err := svc.RecordOdometerStart(context.Background(), "REQ-1", 5000, 42)
	if err != nil {
		t.Fatalf("RecordOdometerStart() error = %v", err)
	}
	if booking.OdometerStart == nil || *booking.OdometerStart != 5000 {
		t.Errorf("OdometerStart = %v, want 5000", booking.OdometerStart)
	}
	vehicle, _ := vehicles.GetByID(context.Background(), 5)
	if vehicle.Status != models.ResourceInUse {
		t.Errorf("vehicle status = %s, want %s", vehicle.Status, models.ResourceInUse)
	}
	if got := len(audits.entries()); got != 1 {
		t.Errorf("audit rows = %d, want exactly 1", got)
	}

	stored, _ := transports.GetByRequestID(context.Background(), "REQ-1")
	if stored.OdometerStart == nil {
		t.Fatal("start reading was not persisted")
	}

	if _, err := svc.RecordOdometerStart(context.Background(), "REQ-1", 5001, 42); err != ErrNoChanges {
		t.Errorf("second RecordOdometerStart() error = %v, want ErrNoChanges", err)
	}
}
