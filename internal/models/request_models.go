package models

// SubmitMealRequest is the request body for writing a day's meals.
type SubmitMealRequest struct {
	LunchAvailable  bool `json:"lunchAvailable"`
	DinnerAvailable bool `json:"dinnerAvailable"`
	ExtraRiceLunch  int  `json:"extraRiceLunch" binding:"min=0"`
	ExtraRiceDinner int  `json:"extraRiceDinner" binding:"min=0"`
}

// UpdateProfileRequest updates the caller's own profile fields.
// Pointers distinguish omitted fields from zero values.
type UpdateProfileRequest struct {
	Name        *string `json:"name,omitempty"`
	PhoneNumber *string `json:"phoneNumber,omitempty"`
	IsAvailable *bool   `json:"isAvailable,omitempty"`
}

// RecordPaymentRequest adds (or, if negative, removes) an amount from a user's month.
type RecordPaymentRequest struct {
	Amount float64 `json:"amount" binding:"required"`
}

// SetMessManagerRequest toggles the mess manager flag of a user.
type SetMessManagerRequest struct {
	IsMessManager bool `json:"isMessManager"`
}

// SetRosterRequest replaces a weekly duty roster (Sunday..Saturday).
type SetRosterRequest struct {
	Days []string `json:"days" binding:"required,len=7"`
}

// SetMonthManagersRequest replaces the mess manager roster. Months is indexed
// January..December and lists the user IDs managing each month.
type SetMonthManagersRequest struct {
	Months [][]string `json:"months" binding:"required,len=12"`
}
