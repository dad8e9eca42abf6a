package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/fatbomb/MealManagement/internal/db"
	"github.com/fatbomb/MealManagement/internal/models"
)

// MaxRangeDays bounds RangeStats.
const MaxRangeDays = 62

type reportService struct {
	aggRepo  db.AggregateRepository
	mealRepo db.MealRepository
	userRepo db.UserRepository
}

// NewReportService creates a new ReportService instance.
func NewReportService(aggRepo db.AggregateRepository, mealRepo db.MealRepository, userRepo db.UserRepository) ReportService {
	return &reportService{aggRepo: aggRepo, mealRepo: mealRepo, userRepo: userRepo}
}

func newDailyStats(date string, t models.MealTotals) models.DailyStats {
	return models.DailyStats{
		Date:               date,
		MealTotals:         t,
		RiceServingsLunch:  t.TotalLunches + t.TotalExtraRiceLunch,
		RiceServingsDinner: t.TotalDinners + t.TotalExtraRiceDinner,
	}
}

// DailyStats reports the household totals for one date. A date without meals reports zeros.
func (s *reportService) DailyStats(ctx context.Context, date string) (*models.DailyStats, error) {
	if _, err := ParseDate(date); err != nil {
		return nil, err
	}
	agg, err := s.aggRepo.GetDailyAggregate(ctx, date)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			stats := newDailyStats(date, models.MealTotals{})
			return &stats, nil
		}
		return nil, fmt.Errorf("failed to get daily aggregate %s: %w", date, err)
	}
	stats := newDailyStats(date, agg.MealTotals)
	return &stats, nil
}

// RangeStats reports every date in from..to inclusive, zero-filled, with a total row.
func (s *reportService) RangeStats(ctx context.Context, from, to string) (*models.RangeStats, error) {
	start, err := ParseDate(from)
	if err != nil {
		return nil, err
	}
	end, err := ParseDate(to)
	if err != nil {
		return nil, err
	}
	if end.Before(start) {
		return nil, fmt.Errorf("%w: range end %s is before start %s", ErrInvalidInput, to, from)
	}
	dates := datesBetween(start, end)
	if len(dates) > MaxRangeDays {
		return nil, fmt.Errorf("%w: range spans %d days, at most %d allowed", ErrInvalidInput, len(dates), MaxRangeDays)
	}

	aggs, err := s.aggRepo.ListDailyAggregates(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list daily aggregates %s..%s: %w", from, to, err)
	}
	byDate := make(map[string]models.MealTotals, len(aggs))
	for _, agg := range aggs {
		byDate[agg.Date] = agg.MealTotals
	}

	out := &models.RangeStats{From: from, To: to, Days: make([]models.DailyStats, 0, len(dates))}
	var total models.MealTotals
	for _, d := range dates {
		t := byDate[d]
		total = total.Add(t)
		out.Days = append(out.Days, newDailyStats(d, t))
	}
	out.Total = newDailyStats("", total)
	return out, nil
}

// MonthGrid returns each user's meal records for month keyed by date.
func (s *reportService) MonthGrid(ctx context.Context, month string) ([]models.UserMonth, error) {
	first, last, err := MonthBounds(month)
	if err != nil {
		return nil, err
	}
	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	grid := make([]models.UserMonth, 0, len(users))
	for _, u := range users {
		meals, err := s.mealRepo.ListMeals(ctx, u.ID, first, last)
		if err != nil {
			return nil, fmt.Errorf("failed to list meals of user '%s': %w", u.ID, err)
		}
		col := models.UserMonth{UserID: u.ID, Name: u.Name, Meals: make(map[string]models.MealRecord, len(meals))}
		for _, m := range meals {
			col.Meals[m.Date] = *m
		}
		grid = append(grid, col)
	}
	return grid, nil
}
