package models

// DailyStats is one row of a meal report.
type DailyStats struct {
	Date string `json:"date"`
	MealTotals
	// Rice servings count the base portion of each meal plus the extras.
	RiceServingsLunch  int `json:"riceServingsLunch"`
	RiceServingsDinner int `json:"riceServingsDinner"`
}

// RangeStats is a report over an inclusive date range.
type RangeStats struct {
	From  string       `json:"from"`
	To    string       `json:"to"`
	Days  []DailyStats `json:"days"`
	Total DailyStats   `json:"total"`
}

// UserMonth is one column of the month grid.
type UserMonth struct {
	UserID string                `json:"userId"`
	Name   string                `json:"name"`
	Meals  map[string]MealRecord `json:"meals"`
}

// Drift is a mismatch between a stored aggregate and its recomputed value.
type Drift struct {
	Scope    string     `json:"scope"` // "daily" or "monthly"
	Key      string     `json:"key"`   // date, or userId for monthly scope
	Stored   MealTotals `json:"stored"`
	Computed MealTotals `json:"computed"`
}

// ReconcileReport summarizes a reconciliation run.
type ReconcileReport struct {
	YearMonth string  `json:"yearMonth"`
	Records   int     `json:"records"`
	Drifts    []Drift `json:"drifts"`
	Repaired  bool    `json:"repaired"`
}
