package services

import (
	"context"
	"errors"
	"strings"

	"campus-backend/internal/models"
	"campus-backend/internal/repositories"
)

type DepartmentService struct {
	DeptRepo *repositories.DepartmentRepository
	UserRepo *repositories.UserRepository
}

func NewDepartmentService(deptRepo *repositories.DepartmentRepository, userRepo *repositories.UserRepository) *DepartmentService {
	return &DepartmentService{DeptRepo: deptRepo, UserRepo: userRepo}
}

func (s *DepartmentService) Create(ctx context.Context, in *models.CreateDepartmentRequest) (*models.Department, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, errors.New("department name is required")
	}
	dept := &models.Department{
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		AcceptsJobs: in.AcceptsJobs,
	}
	if err := s.DeptRepo.Create(ctx, dept); err != nil {
		return nil, err
	}
	return dept, nil
}

func (s *DepartmentService) Get(ctx context.Context, id int) (*models.Department, error) {
	return s.DeptRepo.GetByID(ctx, id)
}

func (s *DepartmentService) List(ctx context.Context) ([]*models.Department, error) {
	return s.DeptRepo.List(ctx)
}

func (s *DepartmentService) ListAcceptingJobs(ctx context.Context) ([]*models.Department, error) {
	return s.DeptRepo.ListAcceptingJobs(ctx)
}

func (s *DepartmentService) Update(ctx context.Context, id int, in *models.UpdateDepartmentRequest) (*models.Department, error) {
	dept, err := s.DeptRepo.GetByID(ctx, id)
	if err != nil {
		return nil, errors.New("department not found")
	}
	if strings.TrimSpace(in.Name) != "" {
		dept.Name = strings.TrimSpace(in.Name)
	}
	dept.Description = in.Description
	dept.AcceptsJobs = in.AcceptsJobs
	if err := s.DeptRepo.Update(ctx, dept); err != nil {
		return nil, err
	}
	return dept, nil
}

func (s *DepartmentService) AddMember(ctx context.Context, departmentID int, in *models.AddMemberRequest) error {
	switch in.Role {
	case models.RoleRequester, models.RolePersonnel, models.RoleOperationsManager, models.RoleDepartmentHead:
	default:
		return errors.New("unknown membership role")
	}
	if _, err := s.UserRepo.GetByID(ctx, in.UserID); err != nil {
		return errors.New("user not found")
	}
	if _, err := s.DeptRepo.GetByID(ctx, departmentID); err != nil {
		return errors.New("department not found")
	}
	return s.DeptRepo.AddMember(ctx, departmentID, in.UserID, in.Role)
}

func (s *DepartmentService) RemoveMember(ctx context.Context, departmentID, userID int) error {
	return s.DeptRepo.RemoveMember(ctx, departmentID, userID)
}

func (s *DepartmentService) ListMembers(ctx context.Context, departmentID int) ([]*models.UserDepartment, error) {
	return s.DeptRepo.ListMembers(ctx, departmentID)
}
