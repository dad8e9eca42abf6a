package db

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	"github.com/fatbomb/MealManagement/internal/models"
)

const (
	mealsCollection             = "meals"
	dailyAggregatesCollection   = "dailyAggregates"
	monthlyAggregatesCollection = "monthlyAggregates"
)

// firestoreMealRepository implements MealRepository and AggregateRepository using Firestore.
type firestoreMealRepository struct {
	client *firestore.Client
}

// NewFirestoreMealRepository creates a repository for meal records.
func NewFirestoreMealRepository(client *firestore.Client) MealRepository {
	return &firestoreMealRepository{client: client}
}

// NewFirestoreAggregateRepository creates a repository for daily and monthly aggregates.
func NewFirestoreAggregateRepository(client *firestore.Client) AggregateRepository {
	return &firestoreMealRepository{client: client}
}

func (r *firestoreMealRepository) mealRef(userID, date string) *firestore.DocumentRef {
	return r.client.Collection(usersCollection).Doc(userID).Collection(mealsCollection).Doc(date)
}

func (r *firestoreMealRepository) dailyRef(date string) *firestore.DocumentRef {
	return r.client.Collection(dailyAggregatesCollection).Doc(date)
}

func (r *firestoreMealRepository) monthlyRef(userID, yearMonth string) *firestore.DocumentRef {
	return r.client.Collection(usersCollection).Doc(userID).Collection(monthlyAggregatesCollection).Doc(yearMonth)
}

// RunInTransaction runs fn inside a Firestore transaction. Firestore retries fn on contention,
// so fn must not have side effects outside tx.
func (r *firestoreMealRepository) RunInTransaction(ctx context.Context, fn func(ctx context.Context, tx MealTx) error) error {
	return r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		return fn(ctx, &firestoreMealTx{repo: r, tx: tx})
	})
}

// GetMeal returns the stored record for (userID, date).
func (r *firestoreMealRepository) GetMeal(ctx context.Context, userID, date string) (*models.MealRecord, error) {
	snap, err := r.mealRef(userID, date).Get(ctx)
	return decodeMeal(snap, err, userID, date)
}

func (r *firestoreMealRepository) mealRange(userID, from, to string) firestore.Query {
	return r.client.Collection(usersCollection).Doc(userID).Collection(mealsCollection).
		Where("date", ">=", from).
		Where("date", "<=", to).
		OrderBy("date", firestore.Asc)
}

// ListMeals runs a range query on the stored date field.
func (r *firestoreMealRepository) ListMeals(ctx context.Context, userID, from, to string) ([]*models.MealRecord, error) {
	return collectMeals(r.mealRange(userID, from, to).Documents(ctx), userID)
}

func collectMeals(iter *firestore.DocumentIterator, userID string) ([]*models.MealRecord, error) {
	defer iter.Stop()

	var meals []*models.MealRecord
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate meals for user '%s': %w", userID, err)
		}
		rec, err := decodeMeal(doc, nil, userID, doc.Ref.ID)
		if err != nil {
			return nil, err
		}
		meals = append(meals, rec)
	}
	return meals, nil
}

// GetDailyAggregate returns the stored aggregate for date.
func (r *firestoreMealRepository) GetDailyAggregate(ctx context.Context, date string) (*models.DailyAggregate, error) {
	snap, err := r.dailyRef(date).Get(ctx)
	return decodeDaily(snap, err, date)
}

// ListDailyAggregates queries aggregates by document ID, which is the date.
func (r *firestoreMealRepository) ListDailyAggregates(ctx context.Context, from, to string) ([]*models.DailyAggregate, error) {
	query := r.client.Collection(dailyAggregatesCollection).
		Where(firestore.DocumentID, ">=", r.dailyRef(from)).
		Where(firestore.DocumentID, "<=", r.dailyRef(to)).
		OrderBy(firestore.DocumentID, firestore.Asc)

	iter := query.Documents(ctx)
	defer iter.Stop()

	var aggs []*models.DailyAggregate
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate daily aggregates %s..%s: %w", from, to, err)
		}
		agg, err := decodeDaily(doc, nil, doc.Ref.ID)
		if err != nil {
			return nil, err
		}
		aggs = append(aggs, agg)
	}
	return aggs, nil
}

// GetMonthlyAggregate returns the stored aggregate for (userID, yearMonth).
func (r *firestoreMealRepository) GetMonthlyAggregate(ctx context.Context, userID, yearMonth string) (*models.MonthlyAggregate, error) {
	snap, err := r.monthlyRef(userID, yearMonth).Get(ctx)
	return decodeMonthly(snap, err, userID, yearMonth)
}

// firestoreMealTx adapts a Firestore transaction to MealTx.
type firestoreMealTx struct {
	repo *firestoreMealRepository
	tx   *firestore.Transaction
}

func (t *firestoreMealTx) GetMeal(userID, date string) (*models.MealRecord, error) {
	snap, err := t.tx.Get(t.repo.mealRef(userID, date))
	return decodeMeal(snap, err, userID, date)
}

func (t *firestoreMealTx) GetDailyAggregate(date string) (*models.DailyAggregate, error) {
	snap, err := t.tx.Get(t.repo.dailyRef(date))
	return decodeDaily(snap, err, date)
}

func (t *firestoreMealTx) GetMonthlyAggregate(userID, yearMonth string) (*models.MonthlyAggregate, error) {
	snap, err := t.tx.Get(t.repo.monthlyRef(userID, yearMonth))
	return decodeMonthly(snap, err, userID, yearMonth)
}

func (t *firestoreMealTx) ListMeals(userID, from, to string) ([]*models.MealRecord, error) {
	return collectMeals(t.tx.Documents(t.repo.mealRange(userID, from, to)), userID)
}

// SetMeal overwrites the whole record.
func (t *firestoreMealTx) SetMeal(rec *models.MealRecord) error {
	return t.tx.Set(t.repo.mealRef(rec.UserID, rec.Date), rec)
}

// SetDailyAggregate merges the four counters, leaving any other fields in place.
func (t *firestoreMealTx) SetDailyAggregate(agg *models.DailyAggregate) error {
	m := agg.MealTotals
	return t.tx.Set(t.repo.dailyRef(agg.Date), totalsFields(m.TotalLunches, m.TotalDinners, m.TotalExtraRiceLunch, m.TotalExtraRiceDinner), firestore.MergeAll)
}

func (t *firestoreMealTx) SetMonthlyAggregate(agg *models.MonthlyAggregate) error {
	m := agg.MealTotals
	return t.tx.Set(t.repo.monthlyRef(agg.UserID, agg.YearMonth), totalsFields(m.TotalLunches, m.TotalDinners, m.TotalExtraRiceLunch, m.TotalExtraRiceDinner), firestore.MergeAll)
}

func decodeMeal(snap *firestore.DocumentSnapshot, err error, userID, date string) (*models.MealRecord, error) {
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("meal '%s/%s': %w", userID, date, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get meal '%s/%s': %w", userID, date, err)
	}
	var rec models.MealRecord
	if err := snap.DataTo(&rec); err != nil {
		return nil, fmt.Errorf("failed to decode meal '%s/%s': %w", userID, date, err)
	}
	rec.UserID = userID
	if rec.Date == "" {
		rec.Date = date
	}
	return &rec, nil
}

func decodeDaily(snap *firestore.DocumentSnapshot, err error, date string) (*models.DailyAggregate, error) {
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("daily aggregate '%s': %w", date, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get daily aggregate '%s': %w", date, err)
	}
	agg := models.DailyAggregate{Date: date}
	if err := snap.DataTo(&agg.MealTotals); err != nil {
		return nil, fmt.Errorf("failed to decode daily aggregate '%s': %w", date, err)
	}
	return &agg, nil
}

func decodeMonthly(snap *firestore.DocumentSnapshot, err error, userID, yearMonth string) (*models.MonthlyAggregate, error) {
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("monthly aggregate '%s/%s': %w", userID, yearMonth, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get monthly aggregate '%s/%s': %w", userID, yearMonth, err)
	}
	agg := models.MonthlyAggregate{UserID: userID, YearMonth: yearMonth}
	if err := snap.DataTo(&agg.MealTotals); err != nil {
		return nil, fmt.Errorf("failed to decode monthly aggregate '%s/%s': %w", userID, yearMonth, err)
	}
	return &agg, nil
}
