package db

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"

	"github.com/fatbomb/MealManagement/internal/models"
)

const duesCollection = "dues"

type firestoreDuesRepository struct {
	client *firestore.Client
}

// NewFirestoreDuesRepository creates a repository for the payment ledger.
func NewFirestoreDuesRepository(client *firestore.Client) DuesRepository {
	return &firestoreDuesRepository{client: client}
}

func (r *firestoreDuesRepository) ref(userID, yearMonth string) *firestore.DocumentRef {
	return r.client.Collection(duesCollection).Doc(userID + "_" + yearMonth)
}

func (r *firestoreDuesRepository) Get(ctx context.Context, userID, yearMonth string) (*models.DuesRecord, error) {
	snap, err := r.ref(userID, yearMonth).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("dues '%s_%s': %w", userID, yearMonth, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get dues '%s_%s': %w", userID, yearMonth, err)
	}
	rec := models.DuesRecord{UserID: userID, YearMonth: yearMonth}
	if err := snap.DataTo(&rec); err != nil {
		return nil, fmt.Errorf("failed to decode dues '%s_%s': %w", userID, yearMonth, err)
	}
	return &rec, nil
}

func (r *firestoreDuesRepository) UpdateAmountGiven(ctx context.Context, userID, yearMonth string, next func(current float64) float64) (float64, error) {
	ref := r.ref(userID, yearMonth)
	var stored float64
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		var current float64
		snap, err := tx.Get(ref)
		switch {
		case err == nil:
			var rec models.DuesRecord
			if err := snap.DataTo(&rec); err != nil {
				return fmt.Errorf("failed to decode dues '%s_%s': %w", userID, yearMonth, err)
			}
			current = rec.AmountGiven
		case isNotFound(err):
		default:
			return err
		}
		stored = next(current)
		return tx.Set(ref, map[string]interface{}{"amountGiven": stored}, firestore.MergeAll)
	})
	if err != nil {
		return 0, fmt.Errorf("failed to update dues '%s_%s': %w", userID, yearMonth, err)
	}
	return stored, nil
}
