package models

import "time"

// User represents a household resident. The document ID is the Firebase Auth UID.
type User struct {
	ID                 string `json:"id" firestore:"-"`
	Name               string `json:"name" firestore:"name"`
	Email              string `json:"email" firestore:"email"`
	PhoneNumber        string `json:"phoneNumber" firestore:"phoneNumber"`
	IsAvailable        bool   `json:"isAvailable" firestore:"isAvailable"`
	IsMessManager      bool   `json:"isMessManager" firestore:"isMessManager"`
	KhalaIncharge      string `json:"khalaIncharge,omitempty" firestore:"khalaIncharge,omitempty"`           // day-of-week name, e.g. "Monday"
	FoodSavingIncharge string `json:"foodSavingIncharge,omitempty" firestore:"foodSavingIncharge,omitempty"` // day-of-week name
}

// Identity is the authenticated caller of an operation.
// IsMessManager is the standing flag from the user document; ManagedMonths are the
// calendar months the caller is rostered to manage.
type Identity struct {
	UserID        string
	DisplayName   string
	Email         string
	IsMessManager bool
	ManagedMonths []time.Month
	IsAdmin       bool
}

// ManagesMonth reports whether the caller has mess manager authority over month.
func (i Identity) ManagesMonth(month time.Month) bool {
	if i.IsMessManager {
		return true
	}
	for _, m := range i.ManagedMonths {
		if m == month {
			return true
		}
	}
	return false
}
