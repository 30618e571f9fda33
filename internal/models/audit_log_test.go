package models

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestSnapshotIsImmutable(t *testing.T) {
	req := &Request{
		ID:       "REQ-TESTTESTAB",
		Type:     RequestTypeVenue,
		Status:   StatusPending,
		Priority: PriorityNone,
		Title:    "Board meeting",
		UserID:   7,
	}

	snap := Snapshot(req)
	if snap == nil {
		t.Fatal("Snapshot() = nil for valid struct")
	}

	// Mutating the row afterwards must not change the snapshot
	req.Status = StatusApproved
	req.Title = "changed"

	var decoded Request
	if err := json.Unmarshal(snap, &decoded); err != nil {
		t.Fatalf("snapshot is not valid JSON: %v", err)
	}
	if decoded.Status != StatusPending {
		t.Errorf("snapshot status = %s, want the pre-mutation %s", decoded.Status, StatusPending)
	}
	if decoded.Title != "Board meeting" {
		t.Errorf("snapshot title = %q, want the pre-mutation title", decoded.Title)
	}
}

func TestSnapshotDeepEqualsSource(t *testing.T) {
	reviewer := 12
	req := Request{
		ID:         "REQ-TESTTESTCD",
		Type:       RequestTypeJob,
		Status:     StatusApproved,
		Priority:   PriorityHigh,
		Title:      "Fix projector",
		UserID:     3,
		ReviewedBy: &reviewer,
	}

	var decoded Request
	if err := json.Unmarshal(Snapshot(&req), &decoded); err != nil {
		t.Fatalf("unmarshal snapshot: %v", err)
	}
	if !reflect.DeepEqual(req, decoded) {
		t.Errorf("snapshot round trip = %+v, want %+v", decoded, req)
	}
}

func TestSnapshotNil(t *testing.T) {
	if Snapshot(nil) != nil {
		t.Error("Snapshot(nil) should be nil")
	}
}
