package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"campus-backend/internal/services"
	"campus-backend/pkg/utils"

	"github.com/gorilla/mux"
)

type UserHandler struct {
	Users *services.UserService
}

func NewUserHandler(users *services.UserService) *UserHandler {
	return &UserHandler{Users: users}
}

// ListUsers returns all accounts (admin only)
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.Users.List(r.Context())
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "Failed to list users")
		return
	}
	utils.JSON(w, http.StatusOK, users)
}

// SetActive enables or disables an account
func (h *UserHandler) SetActive(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid user id")
		return
	}

	var body struct {
		Active bool `json:"active"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.Users.SetActive(r.Context(), id, body.Active); err != nil {
		writeServiceError(w, err)
		return
	}
	utils.Message(w, http.StatusOK, "User updated")
}

// UpdateRole changes a user's site-wide role
func (h *UserHandler) UpdateRole(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid user id")
		return
	}

	var body struct {
		Role string `json:"role"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.Users.UpdateRole(r.Context(), id, body.Role); err != nil {
		writeServiceError(w, err)
		return
	}
	utils.Message(w, http.StatusOK, "Role updated")
}
