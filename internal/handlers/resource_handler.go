package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"campus-backend/internal/middleware"
	"campus-backend/internal/models"
	"campus-backend/internal/repositories"
	"campus-backend/internal/services"
	"campus-backend/internal/timeutil"
	"campus-backend/pkg/utils"

	"github.com/gorilla/mux"
)

// ResourceHandler serves the managed resource catalogs: venues, vehicles
// with their maintenance history, and inventory items.
type ResourceHandler struct {
	Resources      *services.ResourceService
	ReturnableRepo *repositories.ReturnableRequestRepository
}

func NewResourceHandler(resources *services.ResourceService, returnableRepo *repositories.ReturnableRequestRepository) *ResourceHandler {
	return &ResourceHandler{Resources: resources, ReturnableRepo: returnableRepo}
}

func pathID(r *http.Request) (int, error) {
	return strconv.Atoi(mux.Vars(r)["id"])
}

func (h *ResourceHandler) CreateVenue(w http.ResponseWriter, r *http.Request) {
	var in models.CreateVenueRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	venue, err := h.Resources.CreateVenue(r.Context(), &in)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	utils.JSON(w, http.StatusCreated, venue)
}

func (h *ResourceHandler) ListVenues(w http.ResponseWriter, r *http.Request) {
	venues, err := h.Resources.ListVenues(r.Context())
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "Failed to list venues")
		return
	}
	if venues == nil {
		venues = []*models.Venue{}
	}
	utils.JSON(w, http.StatusOK, venues)
}

func (h *ResourceHandler) GetVenue(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid venue id")
		return
	}
	venue, err := h.Resources.GetVenue(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, venue)
}

func (h *ResourceHandler) UpdateVenue(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid venue id")
		return
	}
	var in models.UpdateVenueRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	venue, err := h.Resources.UpdateVenue(r.Context(), id, &in)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, venue)
}

func (h *ResourceHandler) CreateVehicle(w http.ResponseWriter, r *http.Request) {
	var in models.CreateVehicleRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	vehicle, err := h.Resources.CreateVehicle(r.Context(), &in)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	utils.JSON(w, http.StatusCreated, vehicle)
}

func (h *ResourceHandler) ListVehicles(w http.ResponseWriter, r *http.Request) {
	vehicles, err := h.Resources.ListVehicles(r.Context())
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "Failed to list vehicles")
		return
	}
	if vehicles == nil {
		vehicles = []*models.Vehicle{}
	}
	utils.JSON(w, http.StatusOK, vehicles)
}

func (h *ResourceHandler) GetVehicle(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid vehicle id")
		return
	}
	vehicle, err := h.Resources.GetVehicle(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, vehicle)
}

// RecordMaintenance appends a service record and returns the vehicle to
// rotation
func (h *ResourceHandler) RecordMaintenance(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid vehicle id")
		return
	}
	var in models.RecordMaintenanceRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if in.PerformedBy == "" {
		if email, ok := middleware.GetEmailFromContext(r.Context()); ok {
			in.PerformedBy = email
		}
	}

	record, err := h.Resources.RecordMaintenance(r.Context(), id, &in)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	utils.JSON(w, http.StatusCreated, record)
}

func (h *ResourceHandler) ListMaintenance(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid vehicle id")
		return
	}
	history, err := h.Resources.ListMaintenance(r.Context(), id)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "Failed to list maintenance history")
		return
	}
	if history == nil {
		history = []*models.MaintenanceHistory{}
	}
	utils.JSON(w, http.StatusOK, history)
}

func (h *ResourceHandler) CreateItem(w http.ResponseWriter, r *http.Request) {
	var in models.CreateInventoryItemRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	item, err := h.Resources.CreateItem(r.Context(), &in)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	utils.JSON(w, http.StatusCreated, item)
}

func (h *ResourceHandler) ListItems(w http.ResponseWriter, r *http.Request) {
	var departmentID *int
	if raw := r.URL.Query().Get("department_id"); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil {
			utils.Error(w, http.StatusBadRequest, "Invalid department_id")
			return
		}
		departmentID = &id
	}

	items, err := h.Resources.ListItems(r.Context(), departmentID)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "Failed to list inventory")
		return
	}
	if items == nil {
		items = []*models.InventoryItem{}
	}
	utils.JSON(w, http.StatusOK, items)
}

func (h *ResourceHandler) GetItem(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid item id")
		return
	}
	item, err := h.Resources.GetItem(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, item)
}

func (h *ResourceHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid item id")
		return
	}
	var in models.UpdateInventoryItemRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	item, err := h.Resources.UpdateItem(r.Context(), id, &in)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, item)
}

// ListOverdueLoans returns approved returnable loans whose return date has
// passed without the items coming back
func (h *ResourceHandler) ListOverdueLoans(w http.ResponseWriter, r *http.Request) {
	loans, err := h.ReturnableRepo.ListOverdue(r.Context(), timeutil.Now())
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "Failed to list overdue loans")
		return
	}
	if loans == nil {
		loans = []*models.ReturnableRequest{}
	}
	utils.JSON(w, http.StatusOK, loans)
}
