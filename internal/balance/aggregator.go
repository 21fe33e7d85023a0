// Package balance derives unpaid totals from the debt table. Nothing is
// cached; every call recomputes from the store.
package balance

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/mmynk/debtbook/internal/calculator"
	"github.com/mmynk/debtbook/internal/models"
	"github.com/mmynk/debtbook/internal/storage"
)

// Pair is the unpaid detail between one borrower and one lender.
type Pair struct {
	Borrower models.Person
	Lender   models.Person
	Debts    []models.DebtView
	Total    float64
}

// Aggregator answers balance queries.
type Aggregator struct {
	store storage.Store
}

// NewAggregator creates an Aggregator reading from store.
func NewAggregator(store storage.Store) *Aggregator {
	return &Aggregator{store: store}
}

// UnpaidSummary returns one entry per (borrower, lender) pair with unpaid
// debts, largest total first. Debts referencing deleted people are excluded.
func (a *Aggregator) UnpaidSummary(ctx context.Context) ([]models.PairBalance, error) {
	debts, err := a.store.ListUnpaidDebts(ctx, storage.UnpaidFilter{})
	if err != nil {
		return nil, fmt.Errorf("unpaid summary: %w", err)
	}
	return calculator.SummarizeUnpaid(debts), nil
}

// UnpaidBetween returns the unpaid debts borrowerID owes lenderID.
// Returns storage.ErrNotFound if either person does not exist.
func (a *Aggregator) UnpaidBetween(ctx context.Context, borrowerID, lenderID string) (*Pair, error) {
	borrower, err := a.store.GetPerson(ctx, borrowerID)
	if err != nil {
		return nil, fmt.Errorf("borrower: %w", err)
	}
	lender, err := a.store.GetPerson(ctx, lenderID)
	if err != nil {
		return nil, fmt.Errorf("lender: %w", err)
	}

	debts, err := a.store.ListUnpaidDebts(ctx, storage.UnpaidFilter{
		BorrowerID: borrower.ID,
		LenderID:   lender.ID,
	})
	if err != nil {
		return nil, fmt.Errorf("unpaid between: %w", err)
	}

	total := decimal.Zero
	for _, d := range debts {
		total = total.Add(decimal.NewFromFloat(d.Amount))
	}

	return &Pair{
		Borrower: *borrower,
		Lender:   *lender,
		Debts:    debts,
		Total:    total.Round(2).InexactFloat64(),
	}, nil
}

// UnpaidAll returns every unpaid debt, oldest first, including debts whose
// borrower or lender has been deleted.
func (a *Aggregator) UnpaidAll(ctx context.Context) ([]models.DebtView, error) {
	debts, err := a.store.ListUnpaidDebts(ctx, storage.UnpaidFilter{})
	if err != nil {
		return nil, fmt.Errorf("unpaid all: %w", err)
	}
	return debts, nil
}
