// Package ledger implements the mutation surface for people and debts.
//
// Every successful mutation is committed to the store first and then
// recorded by the history logger as a separate write. A history failure
// is surfaced as Result.Warning and never undoes the mutation.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/mmynk/debtbook/internal/calculator"
	"github.com/mmynk/debtbook/internal/history"
	"github.com/mmynk/debtbook/internal/metrics"
	"github.com/mmynk/debtbook/internal/models"
	"github.com/mmynk/debtbook/internal/storage"
)

// DebtInput carries every field of a debt. Edits replace all of them.
type DebtInput struct {
	BorrowerID string
	LenderID   string
	Amount     float64
	Reason     string
	Paid       bool
}

// Result describes what a mutation did.
type Result struct {
	// Person is the affected person for person operations.
	Person *models.Person

	// Debts are the affected debts: one for add/edit/delete, one per
	// name for split (possibly fewer if the split stopped early).
	Debts []models.DebtView

	// History are the entries written for this operation.
	History []models.History

	// Warning is non-nil when the mutation succeeded but at least one
	// history entry could not be written. It wraps ErrHistoryWrite.
	Warning error
}

// Ledger applies mutations to a store and records them in history.
type Ledger struct {
	store   storage.Store
	history *history.Logger

	// mu serialises read-check-write sequences within this process.
	mu sync.Mutex
}

// New creates a Ledger. If logger is nil, one writing to store is created.
func New(store storage.Store, logger *history.Logger) *Ledger {
	if logger == nil {
		logger = history.NewLogger(store)
	}
	return &Ledger{store: store, history: logger}
}

// ─── People ─────────────────────────────────────────────────────────────────

// People returns every person ordered by name.
func (l *Ledger) People(ctx context.Context) ([]models.Person, error) {
	people, err := l.store.ListPeople(ctx)
	return people, translate("list people", err)
}

// AddPerson creates a person with a unique name.
func (l *Ledger) AddPerson(ctx context.Context, name string) (res Result, err error) {
	defer observe("add_person", &res, &err)

	name, err = validName(name)
	if err != nil {
		return res, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	person := &models.Person{Name: name}
	if err := l.store.CreatePerson(ctx, person); err != nil {
		return res, translate("add person", err)
	}
	res.Person = person

	l.record(ctx, &res, models.ActionAddPerson, nil, fmt.Sprintf("Added person: %s", name))
	return res, nil
}

// EditPerson renames a person.
func (l *Ledger) EditPerson(ctx context.Context, id, newName string) (res Result, err error) {
	defer observe("edit_person", &res, &err)

	newName, err = validName(newName)
	if err != nil {
		return res, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	person, err := l.store.GetPerson(ctx, id)
	if err != nil {
		return res, translate("edit person", err)
	}

	oldName := person.Name
	person.Name = newName
	if err := l.store.UpdatePerson(ctx, person); err != nil {
		return res, translate("edit person", err)
	}
	res.Person = person

	l.record(ctx, &res, models.ActionEditPerson, nil, fmt.Sprintf("Edited person: %s -> %s", oldName, newName))
	return res, nil
}

// DeletePerson removes a person. Debts referencing the person are left in
// place and will show an empty name.
func (l *Ledger) DeletePerson(ctx context.Context, id string) (res Result, err error) {
	defer observe("delete_person", &res, &err)

	l.mu.Lock()
	defer l.mu.Unlock()

	person, err := l.store.GetPerson(ctx, id)
	if err != nil {
		return res, translate("delete person", err)
	}
	if err := l.store.DeletePerson(ctx, id); err != nil {
		return res, translate("delete person", err)
	}
	res.Person = person

	l.record(ctx, &res, models.ActionDeletePerson, nil, fmt.Sprintf("Deleted person: %s", person.Name))
	return res, nil
}

// ─── Debts ──────────────────────────────────────────────────────────────────

// Debts returns every debt with resolved names, newest first.
func (l *Ledger) Debts(ctx context.Context) ([]models.DebtView, error) {
	debts, err := l.store.ListDebts(ctx)
	return debts, translate("list debts", err)
}

// History returns audit entries newest first. A limit <= 0 returns all.
func (l *Ledger) History(ctx context.Context, limit int) ([]models.History, error) {
	entries, err := l.store.ListHistory(ctx, limit)
	return entries, translate("list history", err)
}

// AddDebt records a new debt between two existing people.
func (l *Ledger) AddDebt(ctx context.Context, in DebtInput) (res Result, err error) {
	defer observe("add_debt", &res, &err)

	if err := validDebtInput(&in); err != nil {
		return res, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	borrower, lender, err := l.pair(ctx, in.BorrowerID, in.LenderID)
	if err != nil {
		return res, translate("add debt", err)
	}

	debt := &models.Debt{
		BorrowerID: borrower.ID,
		LenderID:   lender.ID,
		Amount:     in.Amount,
		Reason:     in.Reason,
		Paid:       in.Paid,
	}
	if err := l.store.CreateDebt(ctx, debt); err != nil {
		return res, translate("add debt", err)
	}
	res.Debts = append(res.Debts, models.DebtView{Debt: *debt, BorrowerName: borrower.Name, LenderName: lender.Name})

	details := fmt.Sprintf("Added debt: %s from %s to %s, reason: %s, status: %s",
		models.FormatAmount(debt.Amount), borrower.Name, lender.Name, debt.Reason, models.StatusLabel(debt.Paid))
	l.record(ctx, &res, models.ActionAddDebt, &debt.ID, details)
	return res, nil
}

// EditDebt replaces every field of an existing debt.
func (l *Ledger) EditDebt(ctx context.Context, id string, in DebtInput) (res Result, err error) {
	defer observe("edit_debt", &res, &err)

	if err := validDebtInput(&in); err != nil {
		return res, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	old, err := l.store.GetDebtView(ctx, id)
	if err != nil {
		return res, translate("edit debt", err)
	}
	borrower, lender, err := l.pair(ctx, in.BorrowerID, in.LenderID)
	if err != nil {
		return res, translate("edit debt", err)
	}

	updated := models.DebtView{
		Debt: models.Debt{
			ID:         old.ID,
			CreatedAt:  old.CreatedAt,
			BorrowerID: borrower.ID,
			LenderID:   lender.ID,
			Amount:     in.Amount,
			Reason:     in.Reason,
			Paid:       in.Paid,
		},
		BorrowerName: borrower.Name,
		LenderName:   lender.Name,
	}
	if err := l.store.UpdateDebt(ctx, &updated.Debt); err != nil {
		return res, translate("edit debt", err)
	}
	res.Debts = append(res.Debts, updated)

	details := fmt.Sprintf("Old: %s -> New: %s", old.Describe(), updated.Describe())
	l.record(ctx, &res, models.ActionEditDebt, &updated.ID, details)
	return res, nil
}

// DeleteDebt removes a debt. Its history entries remain.
func (l *Ledger) DeleteDebt(ctx context.Context, id string) (res Result, err error) {
	defer observe("delete_debt", &res, &err)

	l.mu.Lock()
	defer l.mu.Unlock()

	old, err := l.store.GetDebtView(ctx, id)
	if err != nil {
		return res, translate("delete debt", err)
	}
	if err := l.store.DeleteDebt(ctx, id); err != nil {
		return res, translate("delete debt", err)
	}
	res.Debts = append(res.Debts, *old)

	l.record(ctx, &res, models.ActionDeleteDebt, &old.ID, "Deleted debt: "+old.Describe())
	return res, nil
}

// SplitDebt divides total equally among names, each owing lenderID one
// share of round(total/len(names), 2). Blank names are skipped. Names that
// do not exist yet are created. Duplicated names produce duplicated debts.
// A total that rounds to a zero share is rejected.
//
// The split is not atomic: if a write fails midway, the people and debts
// created so far stay, and are returned in the Result alongside the error.
func (l *Ledger) SplitDebt(ctx context.Context, lenderID string, total float64, reason string, names []string) (res Result, err error) {
	defer observe("split_debt", &res, &err)

	cleaned := make([]string, 0, len(names))
	for _, n := range names {
		if strings.TrimSpace(n) == "" {
			continue
		}
		name, err := validName(n)
		if err != nil {
			return res, err
		}
		cleaned = append(cleaned, name)
	}
	if len(cleaned) == 0 {
		return res, invalid("split needs at least one name")
	}
	reason = strings.TrimSpace(reason)
	if err := validReason(reason); err != nil {
		return res, err
	}
	if err := validAmount(total); err != nil {
		return res, err
	}
	share, err := calculator.SplitShare(total, len(cleaned))
	if err != nil {
		return res, invalid("%v", err)
	}
	if share <= 0 {
		return res, invalid("total %s too small to split among %d people", models.FormatAmount(total), len(cleaned))
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	lender, err := l.store.GetPerson(ctx, lenderID)
	if err != nil {
		return res, translate("split debt", err)
	}

	for _, name := range cleaned {
		borrower, err := l.ensurePerson(ctx, name)
		if err != nil {
			return res, translate("split debt", err)
		}

		debt := &models.Debt{
			BorrowerID: borrower.ID,
			LenderID:   lender.ID,
			Amount:     share,
			Reason:     reason,
		}
		if err := l.store.CreateDebt(ctx, debt); err != nil {
			return res, translate("split debt", err)
		}
		res.Debts = append(res.Debts, models.DebtView{Debt: *debt, BorrowerName: borrower.Name, LenderName: lender.Name})
		metrics.SplitDebtsCreated.Inc()

		details := fmt.Sprintf("Added new debt by Split function: %s amount: %s (%s)",
			name, models.FormatAmount(share), reason)
		l.record(ctx, &res, models.ActionSplitAdd, &debt.ID, details)
	}

	if drift := calculator.SplitDrift(total, share, len(cleaned)); drift != 0 {
		slog.Debug("Split left a rounding residual", "total", total, "share", share, "residual", drift)
	}
	return res, nil
}

// ─── Helpers ────────────────────────────────────────────────────────────────

// ensurePerson returns the person named name, creating it if absent.
// Implicit creation is not logged separately; the split entry covers it.
func (l *Ledger) ensurePerson(ctx context.Context, name string) (*models.Person, error) {
	person, err := l.store.GetPersonByName(ctx, name)
	if err == nil {
		return person, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return nil, err
	}

	person = &models.Person{Name: name}
	err = l.store.CreatePerson(ctx, person)
	if errors.Is(err, storage.ErrConflict) {
		// Created by another process since the lookup.
		return l.store.GetPersonByName(ctx, name)
	}
	if err != nil {
		return nil, err
	}
	slog.Info("Created person during split", "person_id", person.ID, "name", name)
	return person, nil
}

func (l *Ledger) pair(ctx context.Context, borrowerID, lenderID string) (*models.Person, *models.Person, error) {
	borrower, err := l.store.GetPerson(ctx, borrowerID)
	if err != nil {
		return nil, nil, fmt.Errorf("borrower: %w", err)
	}
	lender, err := l.store.GetPerson(ctx, lenderID)
	if err != nil {
		return nil, nil, fmt.Errorf("lender: %w", err)
	}
	return borrower, lender, nil
}

// record writes one history entry after a committed mutation. Failures
// become a warning on res.
func (l *Ledger) record(ctx context.Context, res *Result, action models.Action, debtID *string, details string) {
	entry, err := l.history.Record(ctx, action, debtID, details)
	if err != nil {
		slog.Warn("History write failed after committed mutation",
			"action", action,
			"error", err,
		)
		res.Warning = errors.Join(res.Warning, fmt.Errorf("%w: %v", ErrHistoryWrite, err))
		return
	}
	res.History = append(res.History, entry)
}

func observe(op string, res *Result, err *error) {
	outcome := metrics.OutcomeOK
	switch {
	case *err != nil:
		outcome = metrics.OutcomeError
		if errors.Is(*err, ErrStorage) {
			slog.Error("Ledger operation failed", "operation", op, "error", *err)
		} else {
			slog.Debug("Ledger operation rejected", "operation", op, "error", *err)
		}
	case res.Warning != nil:
		outcome = metrics.OutcomeWarning
	}
	metrics.LedgerOperations.WithLabelValues(op, outcome).Inc()
}

func validName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", invalid("name is required")
	}
	if utf8.RuneCountInString(name) > models.MaxPersonNameLength {
		return "", invalid("name longer than %d characters", models.MaxPersonNameLength)
	}
	return name, nil
}

func validReason(reason string) error {
	if reason == "" {
		return invalid("reason is required")
	}
	if utf8.RuneCountInString(reason) > models.MaxReasonLength {
		return invalid("reason longer than %d characters", models.MaxReasonLength)
	}
	return nil
}

func validAmount(amount float64) error {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return invalid("amount must be a finite number")
	}
	if amount <= 0 {
		return invalid("amount must be positive")
	}
	return nil
}

func validDebtInput(in *DebtInput) error {
	in.Reason = strings.TrimSpace(in.Reason)
	if in.BorrowerID == "" || in.LenderID == "" {
		return invalid("borrower and lender are required")
	}
	if err := validAmount(in.Amount); err != nil {
		return err
	}
	return validReason(in.Reason)
}
