package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"campus-backend/internal/models"
	"campus-backend/internal/services"
	"campus-backend/pkg/utils"

	"github.com/gorilla/mux"
)

type DepartmentHandler struct {
	Departments *services.DepartmentService
}

func NewDepartmentHandler(departments *services.DepartmentService) *DepartmentHandler {
	return &DepartmentHandler{Departments: departments}
}

func (h *DepartmentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateDepartmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	dept, err := h.Departments.Create(r.Context(), &req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	utils.JSON(w, http.StatusCreated, dept)
}

func (h *DepartmentHandler) List(w http.ResponseWriter, r *http.Request) {
	var (
		depts []*models.Department
		err   error
	)
	if r.URL.Query().Get("accepts_jobs") == "true" {
		depts, err = h.Departments.ListAcceptingJobs(r.Context())
	} else {
		depts, err = h.Departments.List(r.Context())
	}
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "Failed to list departments")
		return
	}
	if depts == nil {
		depts = []*models.Department{}
	}
	utils.JSON(w, http.StatusOK, depts)
}

func (h *DepartmentHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid department id")
		return
	}

	dept, err := h.Departments.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, dept)
}

func (h *DepartmentHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid department id")
		return
	}

	var req models.UpdateDepartmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	dept, err := h.Departments.Update(r.Context(), id, &req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, dept)
}

func (h *DepartmentHandler) AddMember(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid department id")
		return
	}

	var req models.AddMemberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.Departments.AddMember(r.Context(), id, &req); err != nil {
		writeServiceError(w, err)
		return
	}
	utils.Message(w, http.StatusOK, "Member added")
}

func (h *DepartmentHandler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	deptID, err1 := strconv.Atoi(vars["id"])
	userID, err2 := strconv.Atoi(vars["userId"])
	if err1 != nil || err2 != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid id")
		return
	}

	if err := h.Departments.RemoveMember(r.Context(), deptID, userID); err != nil {
		writeServiceError(w, err)
		return
	}
	utils.Message(w, http.StatusOK, "Member removed")
}

func (h *DepartmentHandler) ListMembers(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid department id")
		return
	}

	members, err := h.Departments.ListMembers(r.Context(), id)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "Failed to list members")
		return
	}
	if members == nil {
		members = []*models.UserDepartment{}
	}
	utils.JSON(w, http.StatusOK, members)
}
