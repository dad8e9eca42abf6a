package core

import (
	"context"
	"errors"
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/fatbomb/MealManagement/internal/db"
	"github.com/fatbomb/MealManagement/internal/models"
)

type billService struct {
	billRepo db.BillRepository
	logger   *zap.Logger
}

// NewBillService creates a new BillService instance.
func NewBillService(billRepo db.BillRepository, logger *zap.Logger) BillService {
	return &billService{billRepo: billRepo, logger: logger}
}

func (s *billService) GetBill(ctx context.Context, month string) (*models.Bill, error) {
	if _, err := ParseMonth(month); err != nil {
		return nil, err
	}
	bill, err := s.billRepo.Get(ctx, month)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrMissingBill, month)
		}
		return nil, fmt.Errorf("failed to get bill for %s: %w", month, err)
	}
	return bill, nil
}

// SaveBill replaces the bill for month. Only a manager of that month may do this.
func (s *billService) SaveBill(ctx context.Context, actor models.Identity, month string, bill models.Bill) error {
	start, err := ParseMonth(month)
	if err != nil {
		return err
	}
	if !actor.ManagesMonth(start.Month()) {
		return fmt.Errorf("%w: only a mess manager of %s can save its bill", ErrForbidden, month)
	}
	for name, amount := range bill.LineItems() {
		if amount < 0 || math.IsNaN(amount) || math.IsInf(amount, 0) {
			return fmt.Errorf("%w: %s must be a non-negative amount", ErrInvalidInput, name)
		}
	}
	if err := s.billRepo.Put(ctx, month, &bill); err != nil {
		return fmt.Errorf("%w: bill %s: %w", ErrStoreWrite, month, err)
	}
	s.logger.Info("Bill saved", zap.String("month", month), zap.String("savedBy", actor.UserID))
	return nil
}
