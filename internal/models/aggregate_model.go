package models

// MealTotals holds the four running counters shared by daily and monthly aggregates.
type MealTotals struct {
	TotalLunches         int `json:"totalLunches" firestore:"totalLunches"`
	TotalDinners         int `json:"totalDinners" firestore:"totalDinners"`
	TotalExtraRiceLunch  int `json:"totalExtraRiceLunch" firestore:"totalExtraRiceLunch"`
	TotalExtraRiceDinner int `json:"totalExtraRiceDinner" firestore:"totalExtraRiceDinner"`
}

// Add returns the field-wise sum of t and o.
func (t MealTotals) Add(o MealTotals) MealTotals {
	return MealTotals{
		TotalLunches:         t.TotalLunches + o.TotalLunches,
		TotalDinners:         t.TotalDinners + o.TotalDinners,
		TotalExtraRiceLunch:  t.TotalExtraRiceLunch + o.TotalExtraRiceLunch,
		TotalExtraRiceDinner: t.TotalExtraRiceDinner + o.TotalExtraRiceDinner,
	}
}

// IsZero reports whether every counter is zero.
func (t MealTotals) IsZero() bool {
	return t == MealTotals{}
}

// Contribution is what a single meal state adds to an aggregate.
func Contribution(s MealState) MealTotals {
	var t MealTotals
	if s.LunchAvailable {
		t.TotalLunches = 1
	}
	if s.DinnerAvailable {
		t.TotalDinners = 1
	}
	t.TotalExtraRiceLunch = s.ExtraRiceLunch
	t.TotalExtraRiceDinner = s.ExtraRiceDinner
	return t
}

// Delta is the change to apply to an aggregate when a record moves from old to new.
func Delta(old, new MealState) MealTotals {
	o, n := Contribution(old), Contribution(new)
	return MealTotals{
		TotalLunches:         n.TotalLunches - o.TotalLunches,
		TotalDinners:         n.TotalDinners - o.TotalDinners,
		TotalExtraRiceLunch:  n.TotalExtraRiceLunch - o.TotalExtraRiceLunch,
		TotalExtraRiceDinner: n.TotalExtraRiceDinner - o.TotalExtraRiceDinner,
	}
}

// DailyAggregate is stored at dailyAggregates/{date}.
type DailyAggregate struct {
	Date string `json:"date" firestore:"-"`
	MealTotals
}

// MonthlyAggregate is stored at users/{userId}/monthlyAggregates/{yearMonth}.
type MonthlyAggregate struct {
	UserID    string `json:"userId" firestore:"-"`
	YearMonth string `json:"yearMonth" firestore:"-"`
	MealTotals
}
