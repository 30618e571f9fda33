package services

import (
	"context"
	"errors"
	"strings"

	"campus-backend/internal/auth"
	"campus-backend/internal/models"
	"campus-backend/internal/repositories"
)

type UserService struct {
	UserRepo   *repositories.UserRepository
	JWTManager *auth.JWTManager
}

func NewUserService(userRepo *repositories.UserRepository, jwtManager *auth.JWTManager) *UserService {
	return &UserService{UserRepo: userRepo, JWTManager: jwtManager}
}

func (s *UserService) Signup(ctx context.Context, in *models.SignupRequest) (*models.User, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, errors.New("a valid email is required")
	}
	if strings.TrimSpace(in.Name) == "" {
		return nil, errors.New("name is required")
	}
	if len(in.Password) < 8 {
		return nil, errors.New("password must be at least 8 characters")
	}

	if _, err := s.UserRepo.GetByEmail(ctx, email); err == nil {
		return nil, errors.New("an account with this email already exists")
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Email:        email,
		Name:         strings.TrimSpace(in.Name),
		PasswordHash: hash,
	}
	if err := s.UserRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) Login(ctx context.Context, in *models.LoginRequest) (*models.LoginResponse, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))

	user, err := s.UserRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, errors.New("invalid email or password")
	}
	if !user.IsActive {
		return nil, errors.New("account is deactivated")
	}
	if !auth.CheckPassword(in.Password, user.PasswordHash) {
		return nil, errors.New("invalid email or password")
	}

	token, err := s.JWTManager.GenerateToken(user)
	if err != nil {
		return nil, err
	}
	return &models.LoginResponse{Token: token, User: user}, nil
}

func (s *UserService) List(ctx context.Context) ([]*models.User, error) {
	return s.UserRepo.List(ctx)
}

func (s *UserService) SetActive(ctx context.Context, id int, active bool) error {
	return s.UserRepo.SetActive(ctx, id, active)
}

func (s *UserService) UpdateRole(ctx context.Context, id int, role string) error {
	switch role {
	case models.RoleRequester, models.RoleAdmin:
	default:
		return errors.New("site-wide role must be REQUESTER or ADMIN")
	}
	return s.UserRepo.UpdateRole(ctx, id, role)
}
