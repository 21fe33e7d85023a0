package models

import "strconv"

// PairBalance is the unpaid total one borrower owes one lender.
type PairBalance struct {
	BorrowerID   string
	BorrowerName string
	LenderID     string
	LenderName   string

	// TotalUnpaid is the sum of unpaid debt amounts, rounded to cents.
	TotalUnpaid float64

	// Count is the number of unpaid debts behind the total.
	Count int
}

// FormatAmount renders an amount with the shortest exact representation,
// so 10 prints as "10" and 3.33 as "3.33".
func FormatAmount(amount float64) string {
	return strconv.FormatFloat(amount, 'f', -1, 64)
}
