package db

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"

	"github.com/fatbomb/MealManagement/internal/models"
)

const billsCollection = "bills"

type firestoreBillRepository struct {
	client *firestore.Client
}

// NewFirestoreBillRepository creates a repository for monthly bills.
func NewFirestoreBillRepository(client *firestore.Client) BillRepository {
	return &firestoreBillRepository{client: client}
}

func (r *firestoreBillRepository) Get(ctx context.Context, yearMonth string) (*models.Bill, error) {
	snap, err := r.client.Collection(billsCollection).Doc(yearMonth).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("bill for '%s': %w", yearMonth, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get bill for '%s': %w", yearMonth, err)
	}
	var bill models.Bill
	if err := snap.DataTo(&bill); err != nil {
		return nil, fmt.Errorf("failed to decode bill for '%s': %w", yearMonth, err)
	}
	return &bill, nil
}

// Put replaces the whole bill document.
func (r *firestoreBillRepository) Put(ctx context.Context, yearMonth string, bill *models.Bill) error {
	if _, err := r.client.Collection(billsCollection).Doc(yearMonth).Set(ctx, bill); err != nil {
		return fmt.Errorf("failed to write bill for '%s': %w", yearMonth, err)
	}
	return nil
}
