package models

import "time"

// DutyKind names a weekly rotating duty.
type DutyKind string

const (
	DutyKhala      DutyKind = "khala"
	DutyFoodSaving DutyKind = "foodSaving"
)

// Valid reports whether k is a known duty.
func (k DutyKind) Valid() bool {
	return k == DutyKhala || k == DutyFoodSaving
}

// MonthManager rosters one user as mess manager for a calendar month of every year.
type MonthManager struct {
	MonthIndex int    `json:"monthIndex" firestore:"monthIndex"` // 0 = January
	Manager    string `json:"manager" firestore:"manager"`
}

// RoleAssignments is the roster document at roles/currentAssignments.
// The weekly slices are indexed Sunday..Saturday and hold user IDs ("" for unassigned).
// MessManager is flat because Firestore arrays cannot nest.
type RoleAssignments struct {
	KhalaIncharge      []string       `json:"khalaIncharge" firestore:"khalaIncharge"`
	FoodSavingIncharge []string       `json:"foodSavingIncharge" firestore:"foodSavingIncharge"`
	MessManager        []MonthManager `json:"messManager" firestore:"messManager"`
}

// ManagedMonths returns the months userID is rostered to manage, in calendar order.
func (r *RoleAssignments) ManagedMonths(userID string) []time.Month {
	var seen [12]bool
	for _, mm := range r.MessManager {
		if mm.Manager == userID && mm.MonthIndex >= 0 && mm.MonthIndex < 12 {
			seen[mm.MonthIndex] = true
		}
	}
	var months []time.Month
	for i, ok := range seen {
		if ok {
			months = append(months, time.Month(i+1))
		}
	}
	return months
}

// Duties reports which rotating duties a user holds today.
// IsMessManager holds when the standing flag is set or the user is rostered for the
// current month.
type Duties struct {
	Day                  string   `json:"day"`
	Month                string   `json:"month"`
	IsKhalaIncharge      bool     `json:"isKhalaIncharge"`
	IsFoodSavingIncharge bool     `json:"isFoodSavingIncharge"`
	IsMessManager        bool     `json:"isMessManager"`
	ManagedMonths        []string `json:"managedMonths"`
}
