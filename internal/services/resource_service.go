package services

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"campus-backend/internal/cache"
	"campus-backend/internal/models"
	"campus-backend/internal/repositories"
)

// Resource listings change rarely, so they cache longer than request lists.
// Mutations clear the matching venues:*/vehicles:*/inventory:* keys.
const (
	venueListKey     = "venues:list"
	vehicleListKey   = "vehicles:list"
	inventoryListKey = "inventory:list"
	resourceListTTL  = 5 * time.Minute
)

// listThroughCache serves a listing from Redis when possible, falling back to
// the loader and storing its result.
func listThroughCache[T any](ctx context.Context, key string, load func(context.Context) ([]T, error)) ([]T, error) {
	if raw, ok := cache.GetCached(ctx, key); ok {
		var items []T
		if err := json.Unmarshal(raw, &items); err == nil {
			return items, nil
		}
	}
	items, err := load(ctx)
	if err != nil {
		return nil, err
	}
	if raw, err := json.Marshal(items); err == nil {
		cache.SetCached(ctx, key, raw, resourceListTTL)
	}
	return items, nil
}

// ResourceService manages the physical resources requests book: venues,
// vehicles and inventory items.
type ResourceService struct {
	VenueRepo     *repositories.VenueRepository
	VehicleRepo   *repositories.VehicleRepository
	InventoryRepo *repositories.InventoryRepository
	DeptRepo      *repositories.DepartmentRepository
}

func NewResourceService(
	venueRepo *repositories.VenueRepository,
	vehicleRepo *repositories.VehicleRepository,
	inventoryRepo *repositories.InventoryRepository,
	deptRepo *repositories.DepartmentRepository,
) *ResourceService {
	return &ResourceService{
		VenueRepo:     venueRepo,
		VehicleRepo:   vehicleRepo,
		InventoryRepo: inventoryRepo,
		DeptRepo:      deptRepo,
	}
}

func (s *ResourceService) CreateVenue(ctx context.Context, in *models.CreateVenueRequest) (*models.Venue, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, errors.New("venue name is required")
	}
	if _, err := s.DeptRepo.GetByID(ctx, in.DepartmentID); err != nil {
		return nil, errors.New("department not found")
	}
	venue := &models.Venue{
		Name:         strings.TrimSpace(in.Name),
		Location:     in.Location,
		Capacity:     in.Capacity,
		DepartmentID: in.DepartmentID,
	}
	if err := s.VenueRepo.Create(ctx, venue); err != nil {
		return nil, err
	}
	cache.InvalidateVenueCaches(ctx)
	return venue, nil
}

func (s *ResourceService) GetVenue(ctx context.Context, id int) (*models.Venue, error) {
	return s.VenueRepo.GetByID(ctx, id)
}

func (s *ResourceService) ListVenues(ctx context.Context) ([]*models.Venue, error) {
	return listThroughCache(ctx, venueListKey, s.VenueRepo.List)
}

func (s *ResourceService) UpdateVenue(ctx context.Context, id int, in *models.UpdateVenueRequest) (*models.Venue, error) {
	venue, err := s.VenueRepo.GetByID(ctx, id)
	if err != nil {
		return nil, errors.New("venue not found")
	}
	if strings.TrimSpace(in.Name) != "" {
		venue.Name = strings.TrimSpace(in.Name)
	}
	venue.Location = in.Location
	venue.Capacity = in.Capacity
	if in.Status != "" {
		venue.Status = in.Status
	}
	if err := s.VenueRepo.Update(ctx, venue); err != nil {
		return nil, err
	}
	cache.InvalidateVenueCaches(ctx)
	return venue, nil
}

func (s *ResourceService) CreateVehicle(ctx context.Context, in *models.CreateVehicleRequest) (*models.Vehicle, error) {
	if strings.TrimSpace(in.Name) == "" || strings.TrimSpace(in.PlateNumber) == "" {
		return nil, errors.New("vehicle name and plate number are required")
	}
	if _, err := s.DeptRepo.GetByID(ctx, in.DepartmentID); err != nil {
		return nil, errors.New("department not found")
	}
	vehicle := &models.Vehicle{
		Name:                strings.TrimSpace(in.Name),
		PlateNumber:         strings.TrimSpace(in.PlateNumber),
		Capacity:            in.Capacity,
		DepartmentID:        in.DepartmentID,
		Odometer:            in.Odometer,
		MaintenanceInterval: in.MaintenanceInterval,
	}
	if err := s.VehicleRepo.Create(ctx, vehicle); err != nil {
		return nil, err
	}
	cache.InvalidateVehicleCaches(ctx)
	return vehicle, nil
}

func (s *ResourceService) GetVehicle(ctx context.Context, id int) (*models.Vehicle, error) {
	return s.VehicleRepo.GetByID(ctx, id)
}

func (s *ResourceService) ListVehicles(ctx context.Context) ([]*models.Vehicle, error) {
	return listThroughCache(ctx, vehicleListKey, s.VehicleRepo.List)
}

// RecordMaintenance logs a completed service. The new reading becomes the
// baseline the maintenance-due check measures from, and the vehicle returns
// to rotation.
func (s *ResourceService) RecordMaintenance(ctx context.Context, vehicleID int, in *models.RecordMaintenanceRequest) (*models.MaintenanceHistory, error) {
	vehicle, err := s.VehicleRepo.GetByID(ctx, vehicleID)
	if err != nil {
		return nil, errors.New("vehicle not found")
	}
	if in.OdometerReading < 0 {
		return nil, errors.New("odometer reading cannot be negative")
	}
	if in.OdometerReading > vehicle.Odometer {
		return nil, errors.New("service reading cannot exceed the vehicle's current odometer")
	}

	record := &models.MaintenanceHistory{
		VehicleID:       vehicleID,
		OdometerReading: in.OdometerReading,
		Description:     in.Description,
		PerformedBy:     in.PerformedBy,
	}
	if err := s.VehicleRepo.RecordMaintenance(ctx, record); err != nil {
		return nil, err
	}
	cache.InvalidateVehicleCaches(ctx)
	return record, nil
}

func (s *ResourceService) ListMaintenance(ctx context.Context, vehicleID int) ([]*models.MaintenanceHistory, error) {
	return s.VehicleRepo.ListMaintenance(ctx, vehicleID)
}

func (s *ResourceService) CreateItem(ctx context.Context, in *models.CreateInventoryItemRequest) (*models.InventoryItem, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, errors.New("item name is required")
	}
	if in.Quantity < 0 {
		return nil, errors.New("quantity cannot be negative")
	}
	if _, err := s.DeptRepo.GetByID(ctx, in.DepartmentID); err != nil {
		return nil, errors.New("department not found")
	}
	item := &models.InventoryItem{
		Name:         strings.TrimSpace(in.Name),
		Description:  in.Description,
		Returnable:   in.Returnable,
		Quantity:     in.Quantity,
		DepartmentID: in.DepartmentID,
	}
	if err := s.InventoryRepo.Create(ctx, item); err != nil {
		return nil, err
	}
	cache.InvalidateInventoryCaches(ctx)
	return item, nil
}

func (s *ResourceService) GetItem(ctx context.Context, id int) (*models.InventoryItem, error) {
	return s.InventoryRepo.GetByID(ctx, id)
}

func (s *ResourceService) ListItems(ctx context.Context, departmentID *int) ([]*models.InventoryItem, error) {
	key := inventoryListKey
	if departmentID != nil {
		key += ":" + strconv.Itoa(*departmentID)
	}
	return listThroughCache(ctx, key, func(ctx context.Context) ([]*models.InventoryItem, error) {
		return s.InventoryRepo.List(ctx, departmentID)
	})
}

func (s *ResourceService) UpdateItem(ctx context.Context, id int, in *models.UpdateInventoryItemRequest) (*models.InventoryItem, error) {
	item, err := s.InventoryRepo.GetByID(ctx, id)
	if err != nil {
		return nil, errors.New("inventory item not found")
	}
	if strings.TrimSpace(in.Name) != "" {
		item.Name = strings.TrimSpace(in.Name)
	}
	item.Description = in.Description
	if in.Quantity >= 0 {
		item.Quantity = in.Quantity
	}
	if err := s.InventoryRepo.Update(ctx, item); err != nil {
		return nil, err
	}
	cache.InvalidateInventoryCaches(ctx)
	return item, nil
}
