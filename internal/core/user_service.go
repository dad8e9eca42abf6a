package core

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/fatbomb/MealManagement/internal/db"
	"github.com/fatbomb/MealManagement/internal/models"
)

type userService struct {
	userRepo db.UserRepository
	logger   *zap.Logger
}

// NewUserService creates a new UserService instance.
func NewUserService(userRepo db.UserRepository, logger *zap.Logger) UserService {
	return &userService{userRepo: userRepo, logger: logger}
}

// GetOrCreate retrieves a user by ID. If the user doesn't exist, it creates one from the token identity.
// Returns the user and whether it was created.
func (s *userService) GetOrCreate(ctx context.Context, identity models.Identity) (*models.User, bool, error) {
	if identity.UserID == "" {
		return nil, false, fmt.Errorf("%w: user ID is required", ErrInvalidInput)
	}
	user, err := s.userRepo.GetByID(ctx, identity.UserID)
	if err == nil {
		return user, false, nil
	}
	if !errors.Is(err, db.ErrNotFound) {
		return nil, false, fmt.Errorf("failed to get user by ID '%s' from repository: %w", identity.UserID, err)
	}

	name := identity.DisplayName
	if name == "" {
		name, _, _ = strings.Cut(identity.Email, "@")
	}
	newUser := &models.User{
		ID:          identity.UserID,
		Name:        name,
		Email:       identity.Email,
		IsAvailable: true,
	}
	if err := s.userRepo.Create(ctx, newUser); err != nil {
		return nil, false, fmt.Errorf("%w: create user '%s': %w", ErrStoreWrite, identity.UserID, err)
	}
	s.logger.Info("User profile created", zap.String("userID", newUser.ID), zap.String("email", newUser.Email))
	return newUser, true, nil
}

// GetByID retrieves a user by their ID.
func (s *userService) GetByID(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, fmt.Errorf("%w: user with ID '%s'", ErrUserNotFound, userID)
		}
		return nil, fmt.Errorf("failed to get user by ID '%s' from repository: %w", userID, err)
	}
	return user, nil
}

func (s *userService) List(ctx context.Context) ([]*models.User, error) {
	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// UpdateProfile changes the fields present in req.
func (s *userService) UpdateProfile(ctx context.Context, userID string, req models.UpdateProfileRequest) (*models.User, error) {
	fields := map[string]interface{}{}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: name must not be empty", ErrInvalidInput)
		}
		fields["name"] = name
	}
	if req.PhoneNumber != nil {
		fields["phoneNumber"] = strings.TrimSpace(*req.PhoneNumber)
	}
	if req.IsAvailable != nil {
		fields["isAvailable"] = *req.IsAvailable
	}

	if err := s.userRepo.UpdateFields(ctx, userID, fields); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, fmt.Errorf("%w: user with ID '%s'", ErrUserNotFound, userID)
		}
		return nil, fmt.Errorf("%w: update user '%s': %w", ErrStoreWrite, userID, err)
	}
	return s.GetByID(ctx, userID)
}

// SetMessManager grants or revokes the mess manager role. Admin only.
func (s *userService) SetMessManager(ctx context.Context, actor models.Identity, userID string, isMessManager bool) error {
	if !actor.IsAdmin {
		return fmt.Errorf("%w: only an administrator can change roles", ErrForbidden)
	}
	if err := s.userRepo.UpdateFields(ctx, userID, map[string]interface{}{"isMessManager": isMessManager}); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return fmt.Errorf("%w: user with ID '%s'", ErrUserNotFound, userID)
		}
		return fmt.Errorf("%w: update user '%s': %w", ErrStoreWrite, userID, err)
	}
	s.logger.Info("Mess manager role changed",
		zap.String("userID", userID),
		zap.Bool("isMessManager", isMessManager),
		zap.String("changedBy", actor.UserID),
	)
	return nil
}
