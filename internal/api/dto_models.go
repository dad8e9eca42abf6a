package api

import (
	"github.com/shopspring/decimal"

	"github.com/fatbomb/MealManagement/internal/core"
	"github.com/fatbomb/MealManagement/internal/models"
)

// ErrorResponse is a generic structure for returning errors via API.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// mealURI binds /meals/:userId/:date.
type mealURI struct {
	UserID string `uri:"userId" binding:"required"`
	Date   string `uri:"date" binding:"required,yyyymmdd"`
}

// monthURI binds any route keyed by :month.
type monthURI struct {
	Month string `uri:"month" binding:"required,yyyymm"`
}

// userMonthURI binds /dues/:month/:userId.
type userMonthURI struct {
	Month  string `uri:"month" binding:"required,yyyymm"`
	UserID string `uri:"userId" binding:"required"`
}

type dateURI struct {
	Date string `uri:"date" binding:"required,yyyymmdd"`
}

type rangeQuery struct {
	From string `form:"from" binding:"required,yyyymmdd"`
	To   string `form:"to" binding:"required,yyyymmdd"`
}

type reconcileQuery struct {
	Repair bool `form:"repair"`
}

// ProfileResponse is the caller's profile with today's duties.
type ProfileResponse struct {
	User   *models.User   `json:"user"`
	Duties *models.Duties `json:"duties"`
}

// InitializeResponse reports whether the profile was created by this call.
type InitializeResponse struct {
	User    *models.User `json:"user"`
	Created bool         `json:"created"`
}

// BalanceResponse is a models.Balance with money rounded to two decimals.
type BalanceResponse struct {
	UserID      string                `json:"userId"`
	YearMonth   string                `json:"yearMonth"`
	AmountToPay float64               `json:"amountToPay"`
	AmountGiven float64               `json:"amountGiven"`
	AmountDue   float64               `json:"amountDue"`
	Breakdown   *models.DuesBreakdown `json:"breakdown"`
}

// MealResponse wraps a submission outcome.
type MealResponse struct {
	Record      *models.MealRecord `json:"record"`
	Delta       models.MealTotals  `json:"delta"`
	Editability core.Editability   `json:"editability"`
}

// money rounds an amount to two decimal places for display.
func money(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

func roundBreakdown(b *models.DuesBreakdown) *models.DuesBreakdown {
	if b == nil {
		return nil
	}
	out := *b
	out.GeneralCost = money(b.GeneralCost)
	out.GeneralCostPerPerson = money(b.GeneralCostPerPerson)
	out.FoodCost = money(b.FoodCost)
	out.SingleDinnerCost = money(b.SingleDinnerCost)
	out.SingleLunchCost = money(b.SingleLunchCost)
	out.UserFoodCost = money(b.UserFoodCost)
	out.TotalAmountToPay = money(b.TotalAmountToPay)
	return &out
}

func newBalanceResponse(b *models.Balance) BalanceResponse {
	return BalanceResponse{
		UserID:      b.UserID,
		YearMonth:   b.YearMonth,
		AmountToPay: money(b.AmountToPay),
		AmountGiven: money(b.AmountGiven),
		AmountDue:   money(b.AmountDue),
		Breakdown:   roundBreakdown(b.Breakdown),
	}
}

func roundStatement(s *models.MonthStatement) *models.MonthStatement {
	out := *s
	out.Rows = make([]models.StatementRow, len(s.Rows))
	for i, row := range s.Rows {
		row.AmountToPay = money(row.AmountToPay)
		row.AmountGiven = money(row.AmountGiven)
		row.AmountDue = money(row.AmountDue)
		out.Rows[i] = row
	}
	return &out
}
