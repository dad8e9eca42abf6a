package db

import (
	"context"
	"errors"

	"github.com/fatbomb/MealManagement/internal/models"
)

// ErrNotFound is returned when a document does not exist.
var ErrNotFound = errors.New("document not found")

// UserRepository defines the interface for user data storage operations.
type UserRepository interface {
	GetByID(ctx context.Context, userID string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	UpdateFields(ctx context.Context, userID string, fields map[string]interface{}) error
	List(ctx context.Context) ([]*models.User, error)
}

// MealTx is the store as seen from inside a meal transaction.
// Every read must happen before the first write.
type MealTx interface {
	GetMeal(userID, date string) (*models.MealRecord, error)
	GetDailyAggregate(date string) (*models.DailyAggregate, error)
	GetMonthlyAggregate(userID, yearMonth string) (*models.MonthlyAggregate, error)
	// ListMeals returns the user's records with from <= date <= to, ordered by date.
	ListMeals(userID, from, to string) ([]*models.MealRecord, error)
	SetMeal(rec *models.MealRecord) error
	SetDailyAggregate(agg *models.DailyAggregate) error
	SetMonthlyAggregate(agg *models.MonthlyAggregate) error
}

// MealRepository stores meal records. Writes go through RunInTransaction so that
// a record and the aggregates derived from it change together.
type MealRepository interface {
	RunInTransaction(ctx context.Context, fn func(ctx context.Context, tx MealTx) error) error
	GetMeal(ctx context.Context, userID, date string) (*models.MealRecord, error)
	// ListMeals returns the user's records with from <= date <= to, ordered by date.
	ListMeals(ctx context.Context, userID, from, to string) ([]*models.MealRecord, error)
}

// AggregateRepository reads the derived aggregates. They are written only inside a MealTx.
type AggregateRepository interface {
	GetDailyAggregate(ctx context.Context, date string) (*models.DailyAggregate, error)
	// ListDailyAggregates returns the stored aggregates with from <= date <= to, ordered by date.
	ListDailyAggregates(ctx context.Context, from, to string) ([]*models.DailyAggregate, error)
	GetMonthlyAggregate(ctx context.Context, userID, yearMonth string) (*models.MonthlyAggregate, error)
}

// BillRepository stores one bill document per month.
type BillRepository interface {
	Get(ctx context.Context, yearMonth string) (*models.Bill, error)
	Put(ctx context.Context, yearMonth string, bill *models.Bill) error
}

// DuesRepository stores cumulative payments per user and month.
type DuesRepository interface {
	Get(ctx context.Context, userID, yearMonth string) (*models.DuesRecord, error)
	// UpdateAmountGiven transactionally replaces amountGiven with next(current).
	// current is 0 when no record exists. It returns the stored value.
	UpdateAmountGiven(ctx context.Context, userID, yearMonth string, next func(current float64) float64) (float64, error)
}

// RolesRepository stores the weekly duty roster.
type RolesRepository interface {
	GetAssignments(ctx context.Context) (*models.RoleAssignments, error)
	// SaveRoster writes the roster for kind and, in the same transaction, sets each
	// listed user's duty field. An empty value removes the field.
	SaveRoster(ctx context.Context, kind models.DutyKind, days []string, userDuty map[string]string) error
	// SaveMonthManagers replaces the mess manager roster.
	SaveMonthManagers(ctx context.Context, managers []models.MonthManager) error
}
