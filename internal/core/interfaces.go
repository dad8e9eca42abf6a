package core

import (
	"context"
	"time"

	"github.com/fatbomb/MealManagement/internal/models"
)

// Clock returns the current time. Services take one so that editability can be tested.
type Clock func() time.Time

// MealService records meal choices and keeps the aggregates in step with them.
type MealService interface {
	SubmitMeal(ctx context.Context, actor models.Identity, userID, date string, state models.MealState) (*MealSubmission, error)
	GetMeal(ctx context.Context, actor models.Identity, userID, date string) (*MealView, error)
}

// DuesService computes what residents owe and tracks what they have paid.
type DuesService interface {
	ComputeDues(ctx context.Context, userID, month string) (*models.DuesBreakdown, error)
	RecordPayment(ctx context.Context, actor models.Identity, userID, month string, amount float64) (*models.DuesRecord, error)
	OutstandingBalance(ctx context.Context, userID, month string) (*models.Balance, error)
	MonthStatement(ctx context.Context, month string) (*models.MonthStatement, error)
}

// BillService stores the monthly bill.
type BillService interface {
	GetBill(ctx context.Context, month string) (*models.Bill, error)
	SaveBill(ctx context.Context, actor models.Identity, month string, bill models.Bill) error
}

// UserService manages resident profiles and role flags.
type UserService interface {
	// GetOrCreate retrieves the caller's profile, creating it on first sign-in.
	GetOrCreate(ctx context.Context, identity models.Identity) (*models.User, bool, error)
	GetByID(ctx context.Context, userID string) (*models.User, error)
	List(ctx context.Context) ([]*models.User, error)
	UpdateProfile(ctx context.Context, userID string, req models.UpdateProfileRequest) (*models.User, error)
	SetMessManager(ctx context.Context, actor models.Identity, userID string, isMessManager bool) error
}

// RoleService manages the weekly duty roster.
type RoleService interface {
	GetRoster(ctx context.Context) (*models.RoleAssignments, error)
	SetDutyRoster(ctx context.Context, actor models.Identity, kind models.DutyKind, days []string) error
	// SetMonthManagers replaces the mess manager roster, indexed January..December.
	SetMonthManagers(ctx context.Context, actor models.Identity, months [][]string) error
	TodayDuties(ctx context.Context, userID string) (*models.Duties, error)
}

// ReportService serves read-only meal reports.
type ReportService interface {
	DailyStats(ctx context.Context, date string) (*models.DailyStats, error)
	RangeStats(ctx context.Context, from, to string) (*models.RangeStats, error)
	MonthGrid(ctx context.Context, month string) ([]models.UserMonth, error)
}

// Reconciler recomputes aggregates from meal records.
type Reconciler interface {
	ReconcileMonth(ctx context.Context, month string, repair bool) (*models.ReconcileReport, error)
}
