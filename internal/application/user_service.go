package application

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/shareit/service-shareit/internal/domain/directory"
	"github.com/shareit/service-shareit/internal/platform/domain"
)

// CreateUserRequest is the request DTO for registering a user.
type CreateUserRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// UpdateUserRequest is the request DTO for a partial user update.
type UpdateUserRequest struct {
	Name  *string `json:"name"`
	Email *string `json:"email"`
}

// UserDTO is the API response representation of a user.
type UserDTO struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UserService manages the user directory over HTTP. The user.events
// consumer writes to the same directory.
type UserService struct {
	directory directory.Directory
	logger    *zap.Logger
}

// NewUserService creates a new UserService.
func NewUserService(dir directory.Directory, logger *zap.Logger) *UserService {
	return &UserService{directory: dir, logger: logger}
}

// CreateUser registers a user with a unique email.
func (s *UserService) CreateUser(ctx context.Context, req CreateUserRequest) (*UserDTO, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, domain.NewValidationError("user name is required")
	}

	user, err := directory.NewUser(uuid.New(), req.Name, req.Email)
	if err != nil {
		return nil, err
	}
	if err := s.directory.SaveUser(ctx, user); err != nil {
		if domain.IsConflict(err) {
			s.logger.Warn("user registration with a taken email", zap.String("email", user.Email()))
		}
		return nil, err
	}

	s.logger.Info("user created", zap.String("user_id", user.ID().String()))
	result := toUserDTO(user)
	return &result, nil
}

// UpdateUser changes the name or email of an existing user.
func (s *UserService) UpdateUser(ctx context.Context, userID uuid.UUID, req UpdateUserRequest) (*UserDTO, error) {
	user, err := s.directory.FindUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := user.Update(directory.UserPatch{Name: req.Name, Email: req.Email}); err != nil {
		return nil, err
	}
	if err := s.directory.SaveUser(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("user updated", zap.String("user_id", userID.String()))
	result := toUserDTO(user)
	return &result, nil
}

// GetUser returns one user.
func (s *UserService) GetUser(ctx context.Context, userID uuid.UUID) (*UserDTO, error) {
	user, err := s.directory.FindUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	result := toUserDTO(user)
	return &result, nil
}

// ListUsers returns every user ordered by email.
func (s *UserService) ListUsers(ctx context.Context) ([]UserDTO, error) {
	users, err := s.directory.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	dtos := make([]UserDTO, len(users))
	for i, u := range users {
		dtos[i] = toUserDTO(u)
	}
	return dtos, nil
}

func toUserDTO(u *directory.User) UserDTO {
	return UserDTO{
		ID:        u.ID(),
		Name:      u.Name(),
		Email:     u.Email(),
		UpdatedAt: u.UpdatedAt(),
	}
}
