package core

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/fatbomb/MealManagement/internal/db"
	"github.com/fatbomb/MealManagement/internal/models"
)

const (
	DriftDaily   = "daily"
	DriftMonthly = "monthly"
)

type reconciler struct {
	mealRepo db.MealRepository
	aggRepo  db.AggregateRepository
	userRepo db.UserRepository
	totals   *HouseholdTotals
	logger   *zap.Logger
}

// NewReconciler creates a Reconciler.
func NewReconciler(mealRepo db.MealRepository, aggRepo db.AggregateRepository, userRepo db.UserRepository, totals *HouseholdTotals, logger *zap.Logger) Reconciler {
	return &reconciler{
		mealRepo: mealRepo,
		aggRepo:  aggRepo,
		userRepo: userRepo,
		totals:   totals,
		logger:   logger,
	}
}

// ReconcileMonth recomputes the daily and monthly aggregates of month from the meal
// records and reports every mismatch. With repair set, drifting aggregates are overwritten.
func (r *reconciler) ReconcileMonth(ctx context.Context, month string, repair bool) (*models.ReconcileReport, error) {
	first, last, err := MonthBounds(month)
	if err != nil {
		return nil, err
	}
	users, err := r.userRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	report := &models.ReconcileReport{YearMonth: month, Drifts: []models.Drift{}}
	daily := map[string]models.MealTotals{}
	monthly := make(map[string]models.MealTotals, len(users))
	for _, u := range users {
		meals, err := r.mealRepo.ListMeals(ctx, u.ID, first, last)
		if err != nil {
			return nil, fmt.Errorf("failed to list meals of user '%s': %w", u.ID, err)
		}
		var sum models.MealTotals
		for _, m := range meals {
			c := models.Contribution(m.State())
			sum = sum.Add(c)
			daily[m.Date] = daily[m.Date].Add(c)
		}
		monthly[u.ID] = sum
		report.Records += len(meals)
	}

	stored, err := r.aggRepo.ListDailyAggregates(ctx, first, last)
	if err != nil {
		return nil, fmt.Errorf("failed to list daily aggregates for %s: %w", month, err)
	}
	storedDaily := make(map[string]models.MealTotals, len(stored))
	for _, agg := range stored {
		storedDaily[agg.Date] = agg.MealTotals
	}
	dates := make(map[string]struct{}, len(daily)+len(storedDaily))
	for d := range daily {
		dates[d] = struct{}{}
	}
	for d := range storedDaily {
		dates[d] = struct{}{}
	}
	for _, d := range sortedKeys(dates) {
		if daily[d] != storedDaily[d] {
			report.Drifts = append(report.Drifts, models.Drift{Scope: DriftDaily, Key: d, Stored: storedDaily[d], Computed: daily[d]})
		}
	}

	for _, u := range users {
		var storedMonthly models.MealTotals
		agg, err := r.aggRepo.GetMonthlyAggregate(ctx, u.ID, month)
		switch {
		case err == nil:
			storedMonthly = agg.MealTotals
		case errors.Is(err, db.ErrNotFound):
		default:
			return nil, fmt.Errorf("failed to get monthly aggregate %s/%s: %w", u.ID, month, err)
		}
		if storedMonthly != monthly[u.ID] {
			report.Drifts = append(report.Drifts, models.Drift{Scope: DriftMonthly, Key: u.ID, Stored: storedMonthly, Computed: monthly[u.ID]})
		}
	}

	if len(report.Drifts) > 0 {
		r.logger.Warn("Aggregate drift detected",
			zap.String("month", month),
			zap.Int("drifts", len(report.Drifts)),
			zap.Bool("repair", repair),
		)
	}
	if !repair || len(report.Drifts) == 0 {
		return report, nil
	}

	for i, d := range report.Drifts {
		var repaired models.MealTotals
		switch d.Scope {
		case DriftDaily:
			repaired, err = r.repairDaily(ctx, users, d.Key)
		case DriftMonthly:
			repaired, err = r.repairMonthly(ctx, d.Key, month, first, last)
		}
		if err != nil {
			return nil, fmt.Errorf("%w: repair %s aggregate %s: %w", ErrStoreWrite, d.Scope, d.Key, err)
		}
		report.Drifts[i].Computed = repaired
	}
	r.totals.Invalidate(ctx, month)
	report.Repaired = true
	r.logger.Info("Aggregates repaired", zap.String("month", month), zap.Int("drifts", len(report.Drifts)))
	return report, nil
}

// repairDaily re-reads every user's record for date and overwrites the daily aggregate
// in the same transaction, so a submit that committed after the scan is not lost.
func (r *reconciler) repairDaily(ctx context.Context, users []*models.User, date string) (models.MealTotals, error) {
	var sum models.MealTotals
	err := r.mealRepo.RunInTransaction(ctx, func(ctx context.Context, tx db.MealTx) error {
		sum = models.MealTotals{}
		for _, u := range users {
			rec, err := tx.GetMeal(u.ID, date)
			if err != nil {
				if errors.Is(err, db.ErrNotFound) {
					continue
				}
				return err
			}
			sum = sum.Add(models.Contribution(rec.State()))
		}
		return tx.SetDailyAggregate(&models.DailyAggregate{Date: date, MealTotals: sum})
	})
	return sum, err
}

// repairMonthly re-reads userID's records of month and overwrites the monthly aggregate
// in the same transaction.
func (r *reconciler) repairMonthly(ctx context.Context, userID, month, first, last string) (models.MealTotals, error) {
	var sum models.MealTotals
	err := r.mealRepo.RunInTransaction(ctx, func(ctx context.Context, tx db.MealTx) error {
		meals, err := tx.ListMeals(userID, first, last)
		if err != nil {
			return err
		}
		sum = models.MealTotals{}
		for _, m := range meals {
			sum = sum.Add(models.Contribution(m.State()))
		}
		return tx.SetMonthlyAggregate(&models.MonthlyAggregate{UserID: userID, YearMonth: month, MealTotals: sum})
	})
	return sum, err
}

func sortedKeys(m map[string]struct{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
