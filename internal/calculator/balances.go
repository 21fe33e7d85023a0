package calculator

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/mmynk/debtbook/internal/models"
)

type pairKey struct {
	borrower string
	lender   string
}

// SummarizeUnpaid groups unpaid debts by (borrower, lender) and sums them.
//
// Algorithm:
// - Skip paid debts and debts whose borrower or lender no longer exists
// - Sum amounts per pair in decimal, round the total to cents
// - Order by total descending, then borrower and lender name
func SummarizeUnpaid(debts []models.DebtView) []models.PairBalance {
	totals := make(map[pairKey]decimal.Decimal)
	pairs := make(map[pairKey]*models.PairBalance)

	for _, d := range debts {
		if d.Paid || d.Dangling() {
			continue
		}
		key := pairKey{borrower: d.BorrowerID, lender: d.LenderID}
		if _, exists := pairs[key]; !exists {
			pairs[key] = &models.PairBalance{
				BorrowerID:   d.BorrowerID,
				BorrowerName: d.BorrowerName,
				LenderID:     d.LenderID,
				LenderName:   d.LenderName,
			}
		}
		totals[key] = totals[key].Add(decimal.NewFromFloat(d.Amount))
		pairs[key].Count++
	}

	summary := make([]models.PairBalance, 0, len(pairs))
	for key, pair := range pairs {
		pair.TotalUnpaid = totals[key].Round(2).InexactFloat64()
		summary = append(summary, *pair)
	}

	sort.Slice(summary, func(i, j int) bool {
		a, b := summary[i], summary[j]
		if a.TotalUnpaid != b.TotalUnpaid {
			return a.TotalUnpaid > b.TotalUnpaid
		}
		if a.BorrowerName != b.BorrowerName {
			return a.BorrowerName < b.BorrowerName
		}
		return a.LenderName < b.LenderName
	})

	return summary
}
