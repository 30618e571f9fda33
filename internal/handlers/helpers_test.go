package handlers

import (
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"

	"campus-backend/internal/services"

	"github.com/jackc/pgx/v5"
)

func TestWriteServiceError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantKey    string
	}{
		{"missing row", pgx.ErrNoRows, 404, "error"},
		{"booking conflict", services.ErrConflict, 409, "error"},
		{"forbidden", services.ErrForbidden, 403, "error"},
		{"no changes is not an error", services.ErrNoChanges, 200, "message"},
		{"invalid transition", services.ErrInvalidTransition, 400, "error"},
		{"validation message", errors.New("description is required"), 400, "error"},
		{"wrapped sentinel", errors.Join(errors.New("context"), services.ErrConflict), 409, "error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			writeServiceError(rec, tt.err)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			var body map[string]string
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("response is not JSON: %v", err)
			}
			if _, ok := body[tt.wantKey]; !ok {
				t.Errorf("response %v missing %q key", body, tt.wantKey)
			}
		})
	}
}
