package core

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/fatbomb/MealManagement/internal/cache"
	"github.com/fatbomb/MealManagement/internal/db"
	"github.com/fatbomb/MealManagement/internal/models"
)

const (
	householdTotalsKeyPrefix = "household-totals:"
	householdTotalsGenPrefix = "household-totals-gen:"
)

// HouseholdTotals derives the household's meal totals for a month.
type HouseholdTotals struct {
	aggRepo  db.AggregateRepository
	userRepo db.UserRepository
	cache    cache.Cache
	ttl      time.Duration
	logger   *zap.Logger
}

// NewHouseholdTotals creates a HouseholdTotals. A nil cache disables caching.
func NewHouseholdTotals(aggRepo db.AggregateRepository, userRepo db.UserRepository, c cache.Cache, ttl time.Duration, logger *zap.Logger) *HouseholdTotals {
	if c == nil {
		c = cache.NopCache{}
	}
	return &HouseholdTotals{
		aggRepo:  aggRepo,
		userRepo: userRepo,
		cache:    c,
		ttl:      ttl,
		logger:   logger,
	}
}

// householdTotalsKey names the cached totals of month at generation gen.
func householdTotalsKey(month, gen string) string {
	return householdTotalsKeyPrefix + month + ":" + gen
}

func householdTotalsGenKey(month string) string {
	return householdTotalsGenPrefix + month
}

// generation returns the current invalidation counter of month, "0" before the first
// invalidation.
func (h *HouseholdTotals) generation(ctx context.Context, month string) (string, error) {
	gen, found, err := h.cache.Get(ctx, householdTotalsGenKey(month))
	if err != nil {
		return "", err
	}
	if !found {
		return "0", nil
	}
	return gen, nil
}

// Month sums the daily aggregates of month. Cache errors are logged and otherwise ignored.
// The value is cached under the generation read before the aggregates, so a sum that
// races an Invalidate lands on a retired key.
func (h *HouseholdTotals) Month(ctx context.Context, month string) (models.MealTotals, error) {
	first, last, err := MonthBounds(month)
	if err != nil {
		return models.MealTotals{}, err
	}

	key := ""
	if gen, err := h.generation(ctx, month); err != nil {
		h.logger.Warn("Household totals generation read failed", zap.String("month", month), zap.Error(err))
	} else {
		key = householdTotalsKey(month, gen)
	}
	if key != "" {
		if raw, found, err := h.cache.Get(ctx, key); err != nil {
			h.logger.Warn("Household totals cache read failed", zap.String("month", month), zap.Error(err))
		} else if found {
			var cached models.MealTotals
			if err := json.Unmarshal([]byte(raw), &cached); err == nil {
				return cached, nil
			}
			h.logger.Warn("Discarding malformed cached household totals", zap.String("month", month))
		}
	}

	aggs, err := h.aggRepo.ListDailyAggregates(ctx, first, last)
	if err != nil {
		return models.MealTotals{}, fmt.Errorf("failed to list daily aggregates for %s: %w", month, err)
	}
	var total models.MealTotals
	for _, agg := range aggs {
		total = total.Add(agg.MealTotals)
	}

	if key == "" {
		return total, nil
	}
	if raw, err := json.Marshal(total); err == nil {
		if err := h.cache.Set(ctx, key, string(raw), h.ttl); err != nil {
			h.logger.Warn("Household totals cache write failed", zap.String("month", month), zap.Error(err))
		}
	}
	return total, nil
}

// ByUserScan sums every user's monthly aggregate. It must agree with Month.
func (h *HouseholdTotals) ByUserScan(ctx context.Context, month string) (models.MealTotals, error) {
	if _, err := ParseMonth(month); err != nil {
		return models.MealTotals{}, err
	}
	users, err := h.userRepo.List(ctx)
	if err != nil {
		return models.MealTotals{}, fmt.Errorf("failed to list users: %w", err)
	}
	var total models.MealTotals
	for _, u := range users {
		agg, err := h.aggRepo.GetMonthlyAggregate(ctx, u.ID, month)
		if err != nil {
			if errors.Is(err, db.ErrNotFound) {
				continue
			}
			return models.MealTotals{}, fmt.Errorf("failed to get monthly aggregate for user '%s': %w", u.ID, err)
		}
		total = total.Add(agg.MealTotals)
	}
	return total, nil
}

// Invalidate retires the cached totals of month by advancing its generation.
func (h *HouseholdTotals) Invalidate(ctx context.Context, month string) {
	if _, err := h.cache.Incr(ctx, householdTotalsGenKey(month)); err != nil {
		h.logger.Warn("Household totals cache invalidation failed", zap.String("month", month), zap.Error(err))
	}
}
