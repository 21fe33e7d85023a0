package models

import (
	"fmt"
	"time"
)

// MaxReasonLength mirrors the width of the reason column.
const MaxReasonLength = 255

// Debt represents money owed by a borrower to a lender.
type Debt struct {
	// ID is the unique identifier for the debt (UUID format).
	ID string

	// CreatedAt is when the debt was recorded (UTC).
	CreatedAt time.Time

	// BorrowerID is the person who owes the money.
	BorrowerID string

	// LenderID is the person who is owed.
	LenderID string

	// Amount is the amount owed. Expected to be positive.
	Amount float64

	// Reason is a free-text description of the debt.
	Reason string

	// Paid is true once the debt has been repaid.
	Paid bool
}

// DebtView is a Debt with the borrower and lender names resolved.
// Names are empty when the referenced person no longer exists.
type DebtView struct {
	Debt
	BorrowerName string
	LenderName   string
}

// Dangling reports whether the borrower or lender has been deleted.
func (v DebtView) Dangling() bool {
	return v.BorrowerName == "" || v.LenderName == ""
}

// StatusLabel returns "Paid" or "Unpaid".
func StatusLabel(paid bool) string {
	if paid {
		return "Paid"
	}
	return "Unpaid"
}

// Describe renders the debt the way history entries quote it.
func (v DebtView) Describe() string {
	return fmt.Sprintf("borrower %s, lender %s, amount %s, reason %s, status %s",
		v.BorrowerName, v.LenderName, FormatAmount(v.Amount), v.Reason, StatusLabel(v.Paid))
}
