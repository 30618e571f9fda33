package handlers

import (
	"errors"
	"net/http"

	"campus-backend/internal/services"
	"campus-backend/pkg/utils"

	"github.com/jackc/pgx/v5"
)

// writeServiceError maps service errors onto HTTP responses. Validation and
// invariant failures carry user-meaningful messages; missing rows become 404;
// the no-op case is reported as success with a message rather than an error.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		utils.Error(w, http.StatusNotFound, "Not found")
	case errors.Is(err, services.ErrConflict):
		utils.Error(w, http.StatusConflict, err.Error())
	case errors.Is(err, services.ErrForbidden):
		utils.Error(w, http.StatusForbidden, err.Error())
	case errors.Is(err, services.ErrNoChanges):
		utils.Message(w, http.StatusOK, "no changes made")
	default:
		utils.Error(w, http.StatusBadRequest, err.Error())
	}
}
