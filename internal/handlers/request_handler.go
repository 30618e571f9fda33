package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"campus-backend/internal/middleware"
	"campus-backend/internal/models"
	"campus-backend/internal/query"
	"campus-backend/internal/repositories"
	"campus-backend/internal/services"
	"campus-backend/pkg/utils"

	"github.com/gorilla/mux"
)

type RequestHandler struct {
	Requests  *services.RequestService
	Approvals *services.ApprovalService
	Jobs      *services.JobService
	Transport *services.TransportService
	AuditRepo *repositories.AuditLogRepository
	DeptRepo  *repositories.DepartmentRepository
}

func NewRequestHandler(
	requests *services.RequestService,
	approvals *services.ApprovalService,
	jobs *services.JobService,
	transport *services.TransportService,
	auditRepo *repositories.AuditLogRepository,
	deptRepo *repositories.DepartmentRepository,
) *RequestHandler {
	return &RequestHandler{
		Requests:  requests,
		Approvals: approvals,
		Jobs:      jobs,
		Transport: transport,
		AuditRepo: auditRepo,
		DeptRepo:  deptRepo,
	}
}

// ListResponse is the paginated envelope for request listings
type ListResponse struct {
	Data    []*models.Request `json:"data"`
	Total   int               `json:"total"`
	Page    int               `json:"page"`
	PerPage int               `json:"per_page"`
}

func requireUser(w http.ResponseWriter, r *http.Request) (int, bool) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		utils.Error(w, http.StatusUnauthorized, "Authentication required")
		return 0, false
	}
	return userID, true
}

// actorRole resolves the caller's role within the request's department.
// Site-wide admins act with the ADMIN role everywhere; other callers act
// with their department membership role, or none when not a member.
func (h *RequestHandler) actorRole(ctx context.Context, actorID, departmentID int) string {
	if role, ok := middleware.GetRoleFromContext(ctx); ok && role == models.RoleAdmin {
		return models.RoleAdmin
	}
	role, err := h.DeptRepo.GetMemberRole(ctx, departmentID, actorID)
	if err != nil {
		return ""
	}
	return role
}

func isReviewerRole(role string) bool {
	return role == models.RoleDepartmentHead ||
		role == models.RoleOperationsManager ||
		role == models.RoleAdmin
}

// loadForReviewer fetches the request and verifies the caller holds a
// reviewing role in its department.
func (h *RequestHandler) loadForReviewer(w http.ResponseWriter, r *http.Request, actorID int) (*services.RequestDetail, string, bool) {
	id := mux.Vars(r)["id"]
	detail, err := h.Requests.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return nil, "", false
	}
	role := h.actorRole(r.Context(), actorID, detail.DepartmentID)
	if !isReviewerRole(role) {
		utils.Error(w, http.StatusForbidden, "Insufficient permissions")
		return nil, "", false
	}
	return detail, role, true
}

func (h *RequestHandler) SubmitJob(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	var in models.SubmitJobRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	req, err := h.Requests.SubmitJob(r.Context(), userID, &in)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	utils.JSON(w, http.StatusCreated, req)
}

func (h *RequestHandler) SubmitVenue(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	var in models.SubmitVenueRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	req, err := h.Requests.SubmitVenue(r.Context(), userID, &in)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	utils.JSON(w, http.StatusCreated, req)
}

func (h *RequestHandler) SubmitTransport(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	var in models.SubmitTransportRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	req, err := h.Requests.SubmitTransport(r.Context(), userID, &in)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	utils.JSON(w, http.StatusCreated, req)
}

func (h *RequestHandler) SubmitReturnable(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	var in models.SubmitReturnableRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	req, err := h.Requests.SubmitReturnable(r.Context(), userID, &in)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	utils.JSON(w, http.StatusCreated, req)
}

func (h *RequestHandler) SubmitSupply(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	var in models.SubmitSupplyRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	req, err := h.Requests.SubmitSupply(r.Context(), userID, &in)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	utils.JSON(w, http.StatusCreated, req)
}

// List returns a filtered, sorted, paginated page of requests
func (h *RequestHandler) List(w http.ResponseWriter, r *http.Request) {
	params, err := query.Parse(r.URL.Query(), repositories.RequestSortable)
	if err != nil {
		utils.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	requests, total, err := h.Requests.List(r.Context(), params)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "Failed to list requests")
		return
	}
	if requests == nil {
		requests = []*models.Request{}
	}
	utils.JSON(w, http.StatusOK, &ListResponse{
		Data:    requests,
		Total:   total,
		Page:    params.Page,
		PerPage: params.PerPage,
	})
}

// ListMine returns the caller's own requests
func (h *RequestHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	params, err := query.Parse(r.URL.Query(), repositories.RequestSortable)
	if err != nil {
		utils.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	params.UserID = &userID

	requests, total, err := h.Requests.List(r.Context(), params)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "Failed to list requests")
		return
	}
	if requests == nil {
		requests = []*models.Request{}
	}
	utils.JSON(w, http.StatusOK, &ListResponse{
		Data:    requests,
		Total:   total,
		Page:    params.Page,
		PerPage: params.PerPage,
	})
}

// ListAssigned returns requests whose job is assigned to the caller
func (h *RequestHandler) ListAssigned(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	params, err := query.Parse(r.URL.Query(), repositories.RequestSortable)
	if err != nil {
		utils.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	params.AssignedTo = &userID

	requests, total, err := h.Requests.List(r.Context(), params)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "Failed to list requests")
		return
	}
	if requests == nil {
		requests = []*models.Request{}
	}
	utils.JSON(w, http.StatusOK, &ListResponse{
		Data:    requests,
		Total:   total,
		Page:    params.Page,
		PerPage: params.PerPage,
	})
}

func (h *RequestHandler) Get(w http.ResponseWriter, r *http.Request) {
	detail, err := h.Requests.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, detail)
}

// History returns the audit trail of a request, oldest entry first
func (h *RequestHandler) History(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if _, err := h.Requests.Get(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}
	entries, err := h.AuditRepo.ListByEntity(r.Context(), id)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "Failed to load history")
		return
	}
	if entries == nil {
		entries = []*models.AuditLog{}
	}
	utils.JSON(w, http.StatusOK, entries)
}

// Cancel withdraws the caller's own pending request
func (h *RequestHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	req, err := h.Requests.Cancel(r.Context(), mux.Vars(r)["id"], userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, req)
}

func (h *RequestHandler) Approve(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	detail, role, ok := h.loadForReviewer(w, r, userID)
	if !ok {
		return
	}
	req, err := h.Approvals.Approve(r.Context(), detail.ID, userID, role)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, req)
}

func (h *RequestHandler) Reject(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	detail, _, ok := h.loadForReviewer(w, r, userID)
	if !ok {
		return
	}

	var body struct {
		Reason string `json:"reason"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	req, err := h.Approvals.Reject(r.Context(), detail.ID, userID, body.Reason)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, req)
}

func (h *RequestHandler) Review(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	detail, _, ok := h.loadForReviewer(w, r, userID)
	if !ok {
		return
	}
	req, err := h.Approvals.Review(r.Context(), detail.ID, userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, req)
}

// CancelByReviewer cancels an in-flight request on the department's behalf,
// releasing any holds the approval placed.
func (h *RequestHandler) CancelByReviewer(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	detail, _, ok := h.loadForReviewer(w, r, userID)
	if !ok {
		return
	}

	var body struct {
		Reason string `json:"reason"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	req, err := h.Approvals.CancelByReviewer(r.Context(), detail.ID, userID, body.Reason)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, req)
}

func (h *RequestHandler) Complete(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	detail, _, ok := h.loadForReviewer(w, r, userID)
	if !ok {
		return
	}
	req, err := h.Approvals.Complete(r.Context(), detail.ID, userID, true)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, req)
}

func (h *RequestHandler) AssignJob(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	detail, _, ok := h.loadForReviewer(w, r, userID)
	if !ok {
		return
	}

	var body struct {
		PersonnelID int `json:"personnel_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	job, err := h.Jobs.Assign(r.Context(), detail.ID, body.PersonnelID, userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, job)
}

// StartJob marks an approved job as in progress. Only the assigned personnel
// or a reviewer can start it.
func (h *RequestHandler) StartJob(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	detail, err := h.Requests.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, err)
		return
	}

	assignedToCaller := detail.Job != nil && detail.Job.AssignedTo != nil && *detail.Job.AssignedTo == userID
	if !assignedToCaller && !isReviewerRole(h.actorRole(r.Context(), userID, detail.DepartmentID)) {
		utils.Error(w, http.StatusForbidden, "Insufficient permissions")
		return
	}

	job, err := h.Jobs.Start(r.Context(), detail.ID, userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, job)
}

// RecordOdometerStart records the departure odometer reading of an approved
// transport booking. Department members can record it; outsiders cannot.
func (h *RequestHandler) RecordOdometerStart(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	detail, err := h.Requests.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if h.actorRole(r.Context(), userID, detail.DepartmentID) == "" {
		utils.Error(w, http.StatusForbidden, "Insufficient permissions")
		return
	}

	var body struct {
		Reading float64 `json:"reading"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	booking, err := h.Transport.RecordOdometerStart(r.Context(), detail.ID, body.Reading, userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, booking)
}

// CompleteTransport closes a transport booking with the return odometer
// reading and advances the vehicle odometer.
func (h *RequestHandler) CompleteTransport(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	detail, _, ok := h.loadForReviewer(w, r, userID)
	if !ok {
		return
	}

	var body struct {
		OdometerEnd float64 `json:"odometer_end"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	req, err := h.Transport.Complete(r.Context(), detail.ID, body.OdometerEnd, userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, req)
}
