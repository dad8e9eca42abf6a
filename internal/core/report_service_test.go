package core

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fatbomb/MealManagement/internal/models"
)

func TestRangeStats(t *testing.T) {
	f := newFixture(time.Now())
	ctx := context.Background()
	f.store.daily["2024-03-01"] = models.MealTotals{TotalLunches: 3, TotalDinners: 4, TotalExtraRiceLunch: 1}
	f.store.daily["2024-03-03"] = models.MealTotals{TotalDinners: 2, TotalExtraRiceDinner: 3}
	f.store.daily["2024-03-05"] = models.MealTotals{TotalLunches: 9}

	stats, err := f.reports.RangeStats(ctx, "2024-03-01", "2024-03-04")
	if err != nil {
		t.Fatalf("RangeStats() error: %v", err)
	}
	if len(stats.Days) != 4 {
		t.Fatalf("got %d days, want 4", len(stats.Days))
	}
	if stats.Days[1].Date != "2024-03-02" || !stats.Days[1].MealTotals.IsZero() {
		t.Fatalf("gap day = %+v, want zero row", stats.Days[1])
	}
	if stats.Days[0].RiceServingsLunch != 4 || stats.Days[2].RiceServingsDinner != 5 {
		t.Fatalf("rice servings = %+v / %+v", stats.Days[0], stats.Days[2])
	}
	want := models.MealTotals{TotalLunches: 3, TotalDinners: 6, TotalExtraRiceLunch: 1, TotalExtraRiceDinner: 3}
	if stats.Total.MealTotals != want {
		t.Fatalf("total = %+v, want %+v", stats.Total.MealTotals, want)
	}
}

func TestRangeStatsRejectsBadRanges(t *testing.T) {
	f := newFixture(time.Now())
	ctx := context.Background()

	tests := []struct {
		name     string
		from, to string
	}{
		{name: "reversed", from: "2024-03-05", to: "2024-03-01"},
		{name: "too long", from: "2024-01-01", to: "2024-03-31"},
		{name: "malformed", from: "2024-03-01", to: "tomorrow"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := f.reports.RangeStats(ctx, tc.from, tc.to); !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("RangeStats() error = %v, want ErrInvalidInput", err)
			}
		})
	}
}

func TestDailyStatsWithoutAggregate(t *testing.T) {
	f := newFixture(time.Now())
	stats, err := f.reports.DailyStats(context.Background(), "2024-03-09")
	if err != nil {
		t.Fatalf("DailyStats() error: %v", err)
	}
	if stats.Date != "2024-03-09" || !stats.MealTotals.IsZero() {
		t.Fatalf("stats = %+v", stats)
	}
}

func TestMonthGrid(t *testing.T) {
	f := newFixture(time.Now())
	ctx := context.Background()
	f.store.addUser("u1", "Rahim", false)
	f.store.addUser("u2", "Karim", false)
	f.store.meals[key("u1", "2024-03-01")] = models.MealRecord{UserID: "u1", Date: "2024-03-01", LunchAvailable: true}
	f.store.meals[key("u1", "2024-04-01")] = models.MealRecord{UserID: "u1", Date: "2024-04-01", LunchAvailable: true}

	grid, err := f.reports.MonthGrid(ctx, "2024-03")
	if err != nil {
		t.Fatalf("MonthGrid() error: %v", err)
	}
	if len(grid) != 2 {
		t.Fatalf("got %d columns, want 2", len(grid))
	}
	if grid[0].Name != "Rahim" || len(grid[0].Meals) != 1 || len(grid[1].Meals) != 0 {
		t.Fatalf("grid = %+v", grid)
	}
}
