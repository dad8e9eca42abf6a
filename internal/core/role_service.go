package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/fatbomb/MealManagement/internal/db"
	"github.com/fatbomb/MealManagement/internal/models"
)

const (
	daysPerWeek   = 7
	monthsPerYear = 12
)

type roleService struct {
	rolesRepo db.RolesRepository
	userRepo  db.UserRepository
	location  *time.Location
	now       Clock
	logger    *zap.Logger
}

// NewRoleService creates a new RoleService. Weekdays are evaluated in loc.
func NewRoleService(rolesRepo db.RolesRepository, userRepo db.UserRepository, loc *time.Location, now Clock, logger *zap.Logger) RoleService {
	if now == nil {
		now = time.Now
	}
	if loc == nil {
		loc = time.UTC
	}
	return &roleService{
		rolesRepo: rolesRepo,
		userRepo:  userRepo,
		location:  loc,
		now:       now,
		logger:    logger,
	}
}

func (s *roleService) GetRoster(ctx context.Context) (*models.RoleAssignments, error) {
	roles, err := s.rolesRepo.GetAssignments(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get roster: %w", err)
	}
	return roles, nil
}

// SetDutyRoster replaces the weekly roster for kind. days is indexed Sunday..Saturday
// and holds a user ID or "" per day. Each user's own duty field is rewritten to the
// comma-separated names of the days they hold.
func (s *roleService) SetDutyRoster(ctx context.Context, actor models.Identity, kind models.DutyKind, days []string) error {
	if !actor.IsAdmin {
		return fmt.Errorf("%w: only an administrator can assign duties", ErrForbidden)
	}
	if !kind.Valid() {
		return fmt.Errorf("%w: unknown duty %q", ErrInvalidInput, kind)
	}
	if len(days) != daysPerWeek {
		return fmt.Errorf("%w: roster needs %d days, got %d", ErrInvalidInput, daysPerWeek, len(days))
	}

	users, err := s.userRepo.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list users: %w", err)
	}
	known := make(map[string]*models.User, len(users))
	for _, u := range users {
		known[u.ID] = u
	}

	assigned := map[string][]string{}
	for i, userID := range days {
		if userID == "" {
			continue
		}
		if _, ok := known[userID]; !ok {
			return fmt.Errorf("%w: %s", ErrUserNotFound, userID)
		}
		assigned[userID] = append(assigned[userID], time.Weekday(i).String())
	}

	userDuty := map[string]string{}
	for _, u := range users {
		if dutyOf(u, kind) != "" {
			userDuty[u.ID] = ""
		}
	}
	for userID, names := range assigned {
		userDuty[userID] = strings.Join(names, ",")
	}

	if err := s.rolesRepo.SaveRoster(ctx, kind, days, userDuty); err != nil {
		return fmt.Errorf("%w: roster %s: %w", ErrStoreWrite, kind, err)
	}
	s.logger.Info("Duty roster saved", zap.String("kind", string(kind)), zap.Strings("days", days), zap.String("savedBy", actor.UserID))
	return nil
}

// SetMonthManagers replaces the mess manager roster. months is indexed January..December;
// a month may have several managers or none.
func (s *roleService) SetMonthManagers(ctx context.Context, actor models.Identity, months [][]string) error {
	if !actor.IsAdmin {
		return fmt.Errorf("%w: only an administrator can assign mess managers", ErrForbidden)
	}
	if len(months) != monthsPerYear {
		return fmt.Errorf("%w: mess manager roster needs %d months, got %d", ErrInvalidInput, monthsPerYear, len(months))
	}

	users, err := s.userRepo.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list users: %w", err)
	}
	known := make(map[string]bool, len(users))
	for _, u := range users {
		known[u.ID] = true
	}

	var managers []models.MonthManager
	for i, ids := range months {
		seen := map[string]bool{}
		for _, userID := range ids {
			if userID == "" || seen[userID] {
				continue
			}
			if !known[userID] {
				return fmt.Errorf("%w: %s", ErrUserNotFound, userID)
			}
			seen[userID] = true
			managers = append(managers, models.MonthManager{MonthIndex: i, Manager: userID})
		}
	}

	if err := s.rolesRepo.SaveMonthManagers(ctx, managers); err != nil {
		return fmt.Errorf("%w: mess manager roster: %w", ErrStoreWrite, err)
	}
	s.logger.Info("Mess manager roster saved", zap.Int("assignments", len(managers)), zap.String("savedBy", actor.UserID))
	return nil
}

func dutyOf(u *models.User, kind models.DutyKind) string {
	if kind == models.DutyFoodSaving {
		return u.FoodSavingIncharge
	}
	return u.KhalaIncharge
}

// TodayDuties reports the duties userID holds on today's weekday.
func (s *roleService) TodayDuties(ctx context.Context, userID string) (*models.Duties, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, fmt.Errorf("%w: user with ID '%s'", ErrUserNotFound, userID)
		}
		return nil, fmt.Errorf("failed to get user '%s': %w", userID, err)
	}
	roles, err := s.GetRoster(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now().In(s.location)
	weekday := now.Weekday()
	managed := roles.ManagedMonths(userID)
	identity := models.Identity{UserID: userID, IsMessManager: user.IsMessManager, ManagedMonths: managed}
	names := make([]string, 0, len(managed))
	for _, m := range managed {
		names = append(names, m.String())
	}
	return &models.Duties{
		Day:                  weekday.String(),
		Month:                now.Month().String(),
		IsKhalaIncharge:      onDuty(roles.KhalaIncharge, weekday, userID),
		IsFoodSavingIncharge: onDuty(roles.FoodSavingIncharge, weekday, userID),
		IsMessManager:        identity.ManagesMonth(now.Month()),
		ManagedMonths:        names,
	}, nil
}

func onDuty(days []string, weekday time.Weekday, userID string) bool {
	return int(weekday) < len(days) && days[weekday] == userID
}
