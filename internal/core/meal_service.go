package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/fatbomb/MealManagement/internal/db"
	"github.com/fatbomb/MealManagement/internal/models"
)

// MealSubmission is the outcome of a successful SubmitMeal.
type MealSubmission struct {
	Record      *models.MealRecord `json:"record"`
	Previous    models.MealState   `json:"previous"`
	Delta       models.MealTotals  `json:"delta"`
	Editability Editability        `json:"editability"`
}

// MealView is a stored record, or the zero record, with the caller's current editability.
type MealView struct {
	Record      models.MealRecord `json:"record"`
	Exists      bool              `json:"exists"`
	Editability Editability       `json:"editability"`
}

type mealService struct {
	mealRepo db.MealRepository
	userRepo db.UserRepository
	totals   *HouseholdTotals
	policy   EditPolicy
	now      Clock
	logger   *zap.Logger
}

// NewMealService creates a new MealService instance.
func NewMealService(mealRepo db.MealRepository, userRepo db.UserRepository, totals *HouseholdTotals, policy EditPolicy, now Clock, logger *zap.Logger) MealService {
	if now == nil {
		now = time.Now
	}
	return &mealService{
		mealRepo: mealRepo,
		userRepo: userRepo,
		totals:   totals,
		policy:   policy,
		now:      now,
		logger:   logger,
	}
}

func validateMealState(state models.MealState) error {
	if state.ExtraRiceLunch < 0 || state.ExtraRiceDinner < 0 {
		return fmt.Errorf("%w: extra rice counts must not be negative", ErrInvalidInput)
	}
	return nil
}

// canWrite reports whether actor may touch userID's records dated in month.
func canWrite(actor models.Identity, userID string, month time.Month) bool {
	return actor.UserID == userID || actor.ManagesMonth(month)
}

// SubmitMeal overwrites the record for (userID, date) and applies the change to the
// daily and monthly aggregates in the same transaction.
func (s *mealService) SubmitMeal(ctx context.Context, actor models.Identity, userID, date string, state models.MealState) (*MealSubmission, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user ID is required", ErrInvalidInput)
	}
	day, err := ParseDate(date)
	if err != nil {
		return nil, err
	}
	if err := validateMealState(state); err != nil {
		return nil, err
	}
	if !canWrite(actor, userID, day.Month()) {
		return nil, fmt.Errorf("%w: user '%s' cannot edit meals of '%s'", ErrForbidden, actor.UserID, userID)
	}

	now := s.now()
	editability := s.policy.Evaluate(now, date, actor.ManagesMonth(day.Month()))
	if editability == Locked {
		return nil, fmt.Errorf("%w: %s", ErrMealLocked, date)
	}
	// Every record must belong to a stored user.
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrUserNotFound, userID)
		}
		return nil, fmt.Errorf("failed to get user '%s': %w", userID, err)
	}

	month := MonthOf(date)
	var result *MealSubmission
	err = s.mealRepo.RunInTransaction(ctx, func(ctx context.Context, tx db.MealTx) error {
		prev, err := tx.GetMeal(userID, date)
		if err != nil && !errors.Is(err, db.ErrNotFound) {
			return err
		}
		daily, err := tx.GetDailyAggregate(date)
		if err != nil {
			if !errors.Is(err, db.ErrNotFound) {
				return err
			}
			daily = &models.DailyAggregate{Date: date}
		}
		monthly, err := tx.GetMonthlyAggregate(userID, month)
		if err != nil {
			if !errors.Is(err, db.ErrNotFound) {
				return err
			}
			monthly = &models.MonthlyAggregate{UserID: userID, YearMonth: month}
		}

		old := prev.State()
		if editability == LunchLocked &&
			(old.LunchAvailable != state.LunchAvailable || old.ExtraRiceLunch != state.ExtraRiceLunch) {
			return fmt.Errorf("%w: %s", ErrLunchLocked, date)
		}

		delta := models.Delta(old, state)
		rec := &models.MealRecord{
			UserID:          userID,
			Date:            date,
			LunchAvailable:  state.LunchAvailable,
			DinnerAvailable: state.DinnerAvailable,
			ExtraRiceLunch:  state.ExtraRiceLunch,
			ExtraRiceDinner: state.ExtraRiceDinner,
			UpdatedBy:       actor.DisplayName,
			UpdatedAt:       now.UTC(),
		}
		daily.MealTotals = daily.MealTotals.Add(delta)
		monthly.MealTotals = monthly.MealTotals.Add(delta)

		if err := tx.SetMeal(rec); err != nil {
			return err
		}
		if err := tx.SetDailyAggregate(daily); err != nil {
			return err
		}
		if err := tx.SetMonthlyAggregate(monthly); err != nil {
			return err
		}

		// Firestore may run this function more than once; only the last attempt counts.
		result = &MealSubmission{Record: rec, Previous: old, Delta: delta, Editability: editability}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrLunchLocked) {
			return nil, err
		}
		s.logger.Error("Meal submission failed",
			zap.String("userID", userID),
			zap.String("date", date),
			zap.Error(err),
		)
		return nil, fmt.Errorf("%w: meal %s/%s: %w", ErrStoreWrite, userID, date, err)
	}

	s.totals.Invalidate(ctx, month)
	s.logger.Debug("Meal submitted",
		zap.String("userID", userID),
		zap.String("date", date),
		zap.String("updatedBy", actor.DisplayName),
		zap.Any("delta", result.Delta),
	)
	return result, nil
}

// GetMeal returns the stored record for (userID, date), or a zero record when none exists.
func (s *mealService) GetMeal(ctx context.Context, actor models.Identity, userID, date string) (*MealView, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user ID is required", ErrInvalidInput)
	}
	day, err := ParseDate(date)
	if err != nil {
		return nil, err
	}

	view := &MealView{
		Record:      models.MealRecord{UserID: userID, Date: date},
		Editability: s.policy.Evaluate(s.now(), date, actor.ManagesMonth(day.Month())),
	}
	if !canWrite(actor, userID, day.Month()) {
		view.Editability = Locked
	}

	rec, err := s.mealRepo.GetMeal(ctx, userID, date)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return view, nil
		}
		return nil, fmt.Errorf("failed to get meal %s/%s: %w", userID, date, err)
	}
	view.Record = *rec
	view.Exists = true
	return view, nil
}
