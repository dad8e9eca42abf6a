package models

// DuesRecord tracks what a user has paid for a month. Stored at dues/{userId}_{yearMonth}.
type DuesRecord struct {
	UserID      string  `json:"userId" firestore:"-"`
	YearMonth   string  `json:"yearMonth" firestore:"-"`
	AmountGiven float64 `json:"amountGiven" firestore:"amountGiven"`
}

// DuesBreakdown is the full result of a dues calculation.
type DuesBreakdown struct {
	UserID               string     `json:"userId"`
	YearMonth            string     `json:"yearMonth"`
	UserCount            int        `json:"userCount"`
	Household            MealTotals `json:"household"`
	User                 MealTotals `json:"user"`
	GeneralCost          float64    `json:"generalCost"`
	GeneralCostPerPerson float64    `json:"generalCostPerPerson"`
	FoodCost             float64    `json:"foodCost"`
	SingleDinnerCost     float64    `json:"singleDinnerCost"`
	SingleLunchCost      float64    `json:"singleLunchCost"`
	UserFoodCost         float64    `json:"userFoodCost"`
	TotalAmountToPay     float64    `json:"totalAmountToPay"`
}

// Balance is the ledger view of a user's month.
type Balance struct {
	UserID      string         `json:"userId"`
	YearMonth   string         `json:"yearMonth"`
	AmountToPay float64        `json:"amountToPay"`
	AmountGiven float64        `json:"amountGiven"`
	AmountDue   float64        `json:"amountDue"`
	Breakdown   *DuesBreakdown `json:"breakdown,omitempty"`
}

// StatementRow is one resident's line in a month statement.
type StatementRow struct {
	UserID      string  `json:"userId"`
	Name        string  `json:"name"`
	Computable  bool    `json:"computable"`
	AmountToPay float64 `json:"amountToPay"`
	AmountGiven float64 `json:"amountGiven"`
	AmountDue   float64 `json:"amountDue"`
}

// MonthStatement lists every resident's dues for a month.
type MonthStatement struct {
	YearMonth string         `json:"yearMonth"`
	Household MealTotals     `json:"household"`
	Rows      []StatementRow `json:"rows"`
}
