package core

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/fatbomb/MealManagement/internal/config"
	"github.com/fatbomb/MealManagement/internal/db"
	"github.com/fatbomb/MealManagement/internal/models"
)

// CalculateDues applies the household cost split for one resident.
// household is the month's totals across all residents, user the resident's own totals.
func CalculateDues(bill models.Bill, userCount int, household, user models.MealTotals, tariff config.Tariff) (*models.DuesBreakdown, error) {
	if userCount <= 0 {
		return nil, fmt.Errorf("%w: no residents", ErrDuesNotComputable)
	}
	if household.TotalLunches+household.TotalDinners == 0 {
		return nil, fmt.Errorf("%w: no meals served", ErrDuesNotComputable)
	}
	mealEquivalents := float64(household.TotalDinners) + float64(household.TotalLunches)*tariff.LunchWeight
	if mealEquivalents == 0 {
		return nil, fmt.Errorf("%w: weighted meal count is zero", ErrDuesNotComputable)
	}

	b := &models.DuesBreakdown{
		UserCount: userCount,
		Household: household,
		User:      user,
	}
	b.GeneralCost = bill.GeneralCost()
	b.GeneralCostPerPerson = b.GeneralCost / float64(userCount)

	totalExtraRice := float64(household.TotalExtraRiceLunch + household.TotalExtraRiceDinner)
	b.FoodCost = bill.Shopping() - tariff.ExtraRiceRate*totalExtraRice
	b.SingleDinnerCost = b.FoodCost / mealEquivalents
	b.SingleLunchCost = b.SingleDinnerCost * tariff.LunchWeight

	userExtraRice := float64(user.TotalExtraRiceLunch + user.TotalExtraRiceDinner)
	b.UserFoodCost = float64(user.TotalLunches)*b.SingleLunchCost +
		float64(user.TotalDinners)*b.SingleDinnerCost +
		tariff.ExtraRiceRate*userExtraRice
	b.TotalAmountToPay = b.GeneralCostPerPerson + b.UserFoodCost
	return b, nil
}

type duesService struct {
	billRepo db.BillRepository
	duesRepo db.DuesRepository
	userRepo db.UserRepository
	aggRepo  db.AggregateRepository
	totals   *HouseholdTotals
	tariff   config.Tariff
	logger   *zap.Logger
}

// NewDuesService creates a new DuesService instance.
func NewDuesService(
	billRepo db.BillRepository,
	duesRepo db.DuesRepository,
	userRepo db.UserRepository,
	aggRepo db.AggregateRepository,
	totals *HouseholdTotals,
	tariff config.Tariff,
	logger *zap.Logger,
) DuesService {
	return &duesService{
		billRepo: billRepo,
		duesRepo: duesRepo,
		userRepo: userRepo,
		aggRepo:  aggRepo,
		totals:   totals,
		tariff:   tariff,
		logger:   logger,
	}
}

// monthInputs is everything but the resident's own totals.
type monthInputs struct {
	bill      *models.Bill
	users     []*models.User
	household models.MealTotals
}

func (s *duesService) loadMonth(ctx context.Context, month string) (*monthInputs, error) {
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
	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	household, err := s.totals.Month(ctx, month)
	if err != nil {
		return nil, err
	}
	return &monthInputs{bill: bill, users: users, household: household}, nil
}

// userTotals returns zero totals for a resident without a monthly aggregate.
func (s *duesService) userTotals(ctx context.Context, userID, month string) (models.MealTotals, error) {
	agg, err := s.aggRepo.GetMonthlyAggregate(ctx, userID, month)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return models.MealTotals{}, nil
		}
		return models.MealTotals{}, fmt.Errorf("failed to get monthly aggregate %s/%s: %w", userID, month, err)
	}
	return agg.MealTotals, nil
}

func (s *duesService) compute(ctx context.Context, in *monthInputs, userID, month string) (*models.DuesBreakdown, error) {
	user, err := s.userTotals(ctx, userID, month)
	if err != nil {
		return nil, err
	}
	b, err := CalculateDues(*in.bill, len(in.users), in.household, user, s.tariff)
	if err != nil {
		return nil, err
	}
	b.UserID = userID
	b.YearMonth = month
	return b, nil
}

// ComputeDues returns userID's total amount owed for month, before payments.
func (s *duesService) ComputeDues(ctx context.Context, userID, month string) (*models.DuesBreakdown, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user ID is required", ErrInvalidInput)
	}
	in, err := s.loadMonth(ctx, month)
	if err != nil {
		return nil, err
	}
	return s.compute(ctx, in, userID, month)
}

func (s *duesService) amountGiven(ctx context.Context, userID, month string) (float64, error) {
	rec, err := s.duesRepo.Get(ctx, userID, month)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to get dues %s/%s: %w", userID, month, err)
	}
	return rec.AmountGiven, nil
}

// RecordPayment adds amount to the cumulative payment of userID for month.
// Negative amounts correct an overpayment. Repeated calls accumulate.
func (s *duesService) RecordPayment(ctx context.Context, actor models.Identity, userID, month string, amount float64) (*models.DuesRecord, error) {
	start, err := ParseMonth(month)
	if err != nil {
		return nil, err
	}
	if !actor.ManagesMonth(start.Month()) {
		return nil, fmt.Errorf("%w: only a mess manager of %s can record payments", ErrForbidden, month)
	}
	if userID == "" {
		return nil, fmt.Errorf("%w: user ID is required", ErrInvalidInput)
	}
	if amount == 0 || math.IsNaN(amount) || math.IsInf(amount, 0) {
		return nil, fmt.Errorf("%w: payment amount must be a non-zero number", ErrInvalidInput)
	}
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrUserNotFound, userID)
		}
		return nil, fmt.Errorf("failed to get user '%s': %w", userID, err)
	}

	add := decimal.NewFromFloat(amount)
	stored, err := s.duesRepo.UpdateAmountGiven(ctx, userID, month, func(current float64) float64 {
		return decimal.NewFromFloat(current).Add(add).InexactFloat64()
	})
	if err != nil {
		return nil, fmt.Errorf("%w: payment %s/%s: %w", ErrStoreWrite, userID, month, err)
	}

	s.logger.Info("Payment recorded",
		zap.String("userID", userID),
		zap.String("month", month),
		zap.Float64("amount", amount),
		zap.Float64("amountGiven", stored),
		zap.String("recordedBy", actor.UserID),
	)
	return &models.DuesRecord{UserID: userID, YearMonth: month, AmountGiven: stored}, nil
}

// OutstandingBalance is ComputeDues minus what has been paid. It is negative on overpayment.
func (s *duesService) OutstandingBalance(ctx context.Context, userID, month string) (*models.Balance, error) {
	breakdown, err := s.ComputeDues(ctx, userID, month)
	if err != nil {
		return nil, err
	}
	given, err := s.amountGiven(ctx, userID, month)
	if err != nil {
		return nil, err
	}
	return &models.Balance{
		UserID:      userID,
		YearMonth:   month,
		AmountToPay: breakdown.TotalAmountToPay,
		AmountGiven: given,
		AmountDue:   subtract(breakdown.TotalAmountToPay, given),
		Breakdown:   breakdown,
	}, nil
}

// MonthStatement lists every resident's balance for month. Residents whose dues cannot be
// computed are listed with Computable set to false.
func (s *duesService) MonthStatement(ctx context.Context, month string) (*models.MonthStatement, error) {
	in, err := s.loadMonth(ctx, month)
	if err != nil {
		return nil, err
	}

	stmt := &models.MonthStatement{YearMonth: month, Household: in.household}
	for _, u := range in.users {
		row := models.StatementRow{UserID: u.ID, Name: u.Name}
		given, err := s.amountGiven(ctx, u.ID, month)
		if err != nil {
			return nil, err
		}
		row.AmountGiven = given

		b, err := s.compute(ctx, in, u.ID, month)
		switch {
		case err == nil:
			row.Computable = true
			row.AmountToPay = b.TotalAmountToPay
			row.AmountDue = subtract(b.TotalAmountToPay, given)
		case errors.Is(err, ErrDuesNotComputable):
		default:
			return nil, err
		}
		stmt.Rows = append(stmt.Rows, row)
	}
	return stmt, nil
}

func subtract(a, b float64) float64 {
	return decimal.NewFromFloat(a).Sub(decimal.NewFromFloat(b)).InexactFloat64()
}
