package db

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"

	"github.com/fatbomb/MealManagement/internal/models"
)

const (
	rolesCollection       = "roles"
	currentAssignmentsDoc = "currentAssignments"
	messManagerField      = "messManager"
)

type firestoreRolesRepository struct {
	client *firestore.Client
}

// NewFirestoreRolesRepository creates a repository for the duty roster.
func NewFirestoreRolesRepository(client *firestore.Client) RolesRepository {
	return &firestoreRolesRepository{client: client}
}

// GetAssignments returns an empty roster when none has been saved yet.
func (r *firestoreRolesRepository) GetAssignments(ctx context.Context) (*models.RoleAssignments, error) {
	snap, err := r.client.Collection(rolesCollection).Doc(currentAssignmentsDoc).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return &models.RoleAssignments{}, nil
		}
		return nil, fmt.Errorf("failed to get role assignments: %w", err)
	}
	var roles models.RoleAssignments
	if err := snap.DataTo(&roles); err != nil {
		return nil, fmt.Errorf("failed to decode role assignments: %w", err)
	}
	return &roles, nil
}

func (r *firestoreRolesRepository) SaveRoster(ctx context.Context, kind models.DutyKind, days []string, userDuty map[string]string) error {
	field := dutyField(kind)
	rolesRef := r.client.Collection(rolesCollection).Doc(currentAssignmentsDoc)
	users := r.client.Collection(usersCollection)

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		if err := tx.Set(rolesRef, map[string]interface{}{field: days}, firestore.MergeAll); err != nil {
			return err
		}
		for userID, value := range userDuty {
			var v interface{} = value
			if value == "" {
				v = firestore.Delete
			}
			if err := tx.Update(users.Doc(userID), []firestore.Update{{Path: field, Value: v}}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if isNotFound(err) {
			return fmt.Errorf("failed to save %s roster: %w", kind, ErrNotFound)
		}
		return fmt.Errorf("failed to save %s roster: %w", kind, err)
	}
	return nil
}

func (r *firestoreRolesRepository) SaveMonthManagers(ctx context.Context, managers []models.MonthManager) error {
	if managers == nil {
		managers = []models.MonthManager{}
	}
	rolesRef := r.client.Collection(rolesCollection).Doc(currentAssignmentsDoc)
	if _, err := rolesRef.Set(ctx, map[string]interface{}{messManagerField: managers}, firestore.MergeAll); err != nil {
		return fmt.Errorf("failed to save mess manager roster: %w", err)
	}
	return nil
}

// dutyField maps a duty to the field name used in both the roster and user documents.
func dutyField(kind models.DutyKind) string {
	if kind == models.DutyFoodSaving {
		return "foodSavingIncharge"
	}
	return "khalaIncharge"
}
