package models

import "time"

// MealRecord is one user's meal choices for one date.
// Stored at users/{userId}/meals/{date}.
type MealRecord struct {
	UserID          string    `json:"userId" firestore:"-"`
	Date            string    `json:"date" firestore:"date"` // YYYY-MM-DD
	LunchAvailable  bool      `json:"lunchAvailable" firestore:"lunchAvailable"`
	DinnerAvailable bool      `json:"dinnerAvailable" firestore:"dinnerAvailable"`
	ExtraRiceLunch  int       `json:"extraRiceLunch" firestore:"extraRiceLunch"`
	ExtraRiceDinner int       `json:"extraRiceDinner" firestore:"extraRiceDinner"`
	UpdatedBy       string    `json:"updatedBy,omitempty" firestore:"updatedBy,omitempty"`
	UpdatedAt       time.Time `json:"updatedAt,omitempty" firestore:"updatedAt,omitempty"`
}

// MealState is the editable part of a MealRecord.
type MealState struct {
	LunchAvailable  bool `json:"lunchAvailable"`
	DinnerAvailable bool `json:"dinnerAvailable"`
	ExtraRiceLunch  int  `json:"extraRiceLunch"`
	ExtraRiceDinner int  `json:"extraRiceDinner"`
}

// State returns the editable fields of the record.
func (m *MealRecord) State() MealState {
	if m == nil {
		return MealState{}
	}
	return MealState{
		LunchAvailable:  m.LunchAvailable,
		DinnerAvailable: m.DinnerAvailable,
		ExtraRiceLunch:  m.ExtraRiceLunch,
		ExtraRiceDinner: m.ExtraRiceDinner,
	}
}
