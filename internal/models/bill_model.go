package models

// Bill holds one month's bill line items. Stored at bills/{yearMonth}.
type Bill struct {
	HouseRent        float64 `json:"houseRent" firestore:"houseRent"`
	WifiBill         float64 `json:"wifiBill" firestore:"wifiBill"`
	KhalaBill        float64 `json:"khalaBill" firestore:"khalaBill"`
	CurrentBill      float64 `json:"currentBill" firestore:"currentBill"`
	DustBill         float64 `json:"dustBill" firestore:"dustBill"`
	FestBill         float64 `json:"festBill" firestore:"festBill"`
	MonthlyShopping1 float64 `json:"monthlyShopping1" firestore:"monthlyShopping1"`
	MonthlyShopping2 float64 `json:"monthlyShopping2" firestore:"monthlyShopping2"`
	Week1Shopping    float64 `json:"week1Shopping" firestore:"week1Shopping"`
	Week2Shopping    float64 `json:"week2Shopping" firestore:"week2Shopping"`
	Week3Shopping    float64 `json:"week3Shopping" firestore:"week3Shopping"`
	Week4Shopping    float64 `json:"week4Shopping" firestore:"week4Shopping"`
}

// GeneralCost is the part of the bill split evenly between residents.
func (b Bill) GeneralCost() float64 {
	return b.HouseRent + b.WifiBill + b.KhalaBill + b.CurrentBill + b.DustBill + b.FestBill
}

// Shopping is the pooled food budget before the extra rice deduction.
func (b Bill) Shopping() float64 {
	return b.MonthlyShopping1 + b.MonthlyShopping2 +
		b.Week1Shopping + b.Week2Shopping + b.Week3Shopping + b.Week4Shopping
}

// LineItems returns every field keyed by its document name.
func (b Bill) LineItems() map[string]float64 {
	return map[string]float64{
		"houseRent":        b.HouseRent,
		"wifiBill":         b.WifiBill,
		"khalaBill":        b.KhalaBill,
		"currentBill":      b.CurrentBill,
		"dustBill":         b.DustBill,
		"festBill":         b.FestBill,
		"monthlyShopping1": b.MonthlyShopping1,
		"monthlyShopping2": b.MonthlyShopping2,
		"week1Shopping":    b.Week1Shopping,
		"week2Shopping":    b.Week2Shopping,
		"week3Shopping":    b.Week3Shopping,
		"week4Shopping":    b.Week4Shopping,
	}
}
