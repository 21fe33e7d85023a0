package ledger

import (
	"context"
	"errors"
	"math"
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/mmynk/debtbook/internal/models"
	"github.com/mmynk/debtbook/internal/storage"
	"github.com/mmynk/debtbook/internal/storage/sqlite"
)

// faultyStore wraps a real store and injects failures.
type faultyStore struct {
	storage.Store
	historyErr    error
	createDebtErr error
	// createDebtOK is how many CreateDebt calls succeed before createDebtErr applies.
	createDebtOK int
	createDebts  int
}

func (f *faultyStore) AppendHistory(ctx context.Context, entry *models.History) error {
	if f.historyErr != nil {
		return f.historyErr
	}
	return f.Store.AppendHistory(ctx, entry)
}

func (f *faultyStore) CreateDebt(ctx context.Context, debt *models.Debt) error {
	f.createDebts++
	if f.createDebtErr != nil && f.createDebts > f.createDebtOK {
		return f.createDebtErr
	}
	return f.Store.CreateDebt(ctx, debt)
}

func newTestStore(t *testing.T) storage.Store {
	t.Helper()
	store, err := sqlite.New(filepath.Join(t.TempDir(), "ledger.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func newTestLedger(t *testing.T) (*Ledger, storage.Store) {
	t.Helper()
	store := newTestStore(t)
	return New(store, nil), store
}

func historyCount(t *testing.T, store storage.Store) int {
	t.Helper()
	entries, err := store.ListHistory(context.Background(), 0)
	if err != nil {
		t.Fatalf("ListHistory failed: %v", err)
	}
	return len(entries)
}

func addPerson(t *testing.T, l *Ledger, name string) *models.Person {
	t.Helper()
	res, err := l.AddPerson(context.Background(), name)
	if err != nil {
		t.Fatalf("AddPerson(%q) failed: %v", name, err)
	}
	return res.Person
}

func TestAddPerson(t *testing.T) {
	l, store := newTestLedger(t)
	ctx := context.Background()

	res, err := l.AddPerson(ctx, "  Alice ")
	if err != nil {
		t.Fatalf("AddPerson failed: %v", err)
	}
	if res.Person.Name != "Alice" {
		t.Errorf("name: expected trimmed 'Alice', got %q", res.Person.Name)
	}
	if len(res.History) != 1 || res.History[0].Action != models.ActionAddPerson {
		t.Fatalf("expected one add_person entry, got %+v", res.History)
	}
	if res.History[0].DebtID != nil {
		t.Error("person actions must not carry a debt id")
	}

	t.Run("duplicate name is a conflict and changes nothing", func(t *testing.T) {
		before := historyCount(t, store)
		_, err := l.AddPerson(ctx, "Alice")
		if !errors.Is(err, ErrConflict) {
			t.Fatalf("expected ErrConflict, got %v", err)
		}
		people, _ := l.People(ctx)
		if len(people) != 1 {
			t.Errorf("expected 1 person, got %d", len(people))
		}
		if historyCount(t, store) != before {
			t.Error("rejected add must not write history")
		}
	})

	t.Run("invalid names", func(t *testing.T) {
		for _, name := range []string{"", "   ", strings.Repeat("x", models.MaxPersonNameLength+1)} {
			if _, err := l.AddPerson(ctx, name); !errors.Is(err, ErrInvalidInput) {
				t.Errorf("AddPerson(%q): expected ErrInvalidInput, got %v", name, err)
			}
		}
	})
}

func TestNameLengthCountsCharacters(t *testing.T) {
	l, _ := newTestLedger(t)
	ctx := context.Background()

	// 30 Cyrillic letters are 60 bytes.
	name := strings.Repeat("Ж", 30)
	res, err := l.AddPerson(ctx, name)
	if err != nil {
		t.Fatalf("AddPerson(%d runes) failed: %v", utf8.RuneCountInString(name), err)
	}
	if res.Person.Name != name {
		t.Errorf("name = %q", res.Person.Name)
	}

	if _, err := l.AddPerson(ctx, strings.Repeat("Ж", models.MaxPersonNameLength+1)); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for %d runes, got %v", models.MaxPersonNameLength+1, err)
	}

	bob := addPerson(t, l, "Bob")
	reason := strings.Repeat("é", models.MaxReasonLength)
	if _, err := l.AddDebt(ctx, DebtInput{BorrowerID: res.Person.ID, LenderID: bob.ID, Amount: 1, Reason: reason}); err != nil {
		t.Errorf("reason of %d runes should be accepted: %v", models.MaxReasonLength, err)
	}
	if _, err := l.AddDebt(ctx, DebtInput{BorrowerID: res.Person.ID, LenderID: bob.ID, Amount: 1, Reason: reason + "é"}); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for long reason, got %v", err)
	}
}

func TestEditPerson(t *testing.T) {
	l, store := newTestLedger(t)
	ctx := context.Background()
	alice := addPerson(t, l, "Alice")
	addPerson(t, l, "Bob")

	res, err := l.EditPerson(ctx, alice.ID, "Alicia")
	if err != nil {
		t.Fatalf("EditPerson failed: %v", err)
	}
	if res.Person.Name != "Alicia" {
		t.Errorf("expected Alicia, got %s", res.Person.Name)
	}
	if got := res.History[0].Details; got != "Edited person: Alice -> Alicia" {
		t.Errorf("details = %q", got)
	}

	before := historyCount(t, store)
	if _, err := l.EditPerson(ctx, alice.ID, "Bob"); !errors.Is(err, ErrConflict) {
		t.Errorf("expected ErrConflict, got %v", err)
	}
	if _, err := l.EditPerson(ctx, "nonexistent-id", "Carol"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if historyCount(t, store) != before {
		t.Error("failed edits must not write history")
	}

	if _, err := l.EditPerson(ctx, alice.ID, "Alicia"); err != nil {
		t.Errorf("renaming to the current name should succeed: %v", err)
	}
}

func TestAddDebt(t *testing.T) {
	l, store := newTestLedger(t)
	ctx := context.Background()
	alice := addPerson(t, l, "Alice")
	bob := addPerson(t, l, "Bob")

	res, err := l.AddDebt(ctx, DebtInput{BorrowerID: alice.ID, LenderID: bob.ID, Amount: 12.5, Reason: "Lunch"})
	if err != nil {
		t.Fatalf("AddDebt failed: %v", err)
	}
	if len(res.Debts) != 1 || res.Debts[0].ID == "" {
		t.Fatalf("expected created debt, got %+v", res.Debts)
	}
	entry := res.History[0]
	if entry.Action != models.ActionAddDebt || entry.DebtID == nil || *entry.DebtID != res.Debts[0].ID {
		t.Errorf("unexpected history entry: %+v", entry)
	}
	want := "Added debt: 12.5 from Alice to Bob, reason: Lunch, status: Unpaid"
	if entry.Details != want {
		t.Errorf("details = %q, want %q", entry.Details, want)
	}

	before := historyCount(t, store)
	tests := []struct {
		name string
		in   DebtInput
		want error
	}{
		{"unknown borrower", DebtInput{BorrowerID: "nope", LenderID: bob.ID, Amount: 1, Reason: "x"}, ErrNotFound},
		{"unknown lender", DebtInput{BorrowerID: alice.ID, LenderID: "nope", Amount: 1, Reason: "x"}, ErrNotFound},
		{"zero amount", DebtInput{BorrowerID: alice.ID, LenderID: bob.ID, Amount: 0, Reason: "x"}, ErrInvalidInput},
		{"negative amount", DebtInput{BorrowerID: alice.ID, LenderID: bob.ID, Amount: -3, Reason: "x"}, ErrInvalidInput},
		{"NaN amount", DebtInput{BorrowerID: alice.ID, LenderID: bob.ID, Amount: math.NaN(), Reason: "x"}, ErrInvalidInput},
		{"blank reason", DebtInput{BorrowerID: alice.ID, LenderID: bob.ID, Amount: 1, Reason: " "}, ErrInvalidInput},
		{"missing ids", DebtInput{Amount: 1, Reason: "x"}, ErrInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := l.AddDebt(ctx, tt.in); !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
	if historyCount(t, store) != before {
		t.Error("rejected debts must not write history")
	}
}

func TestEditDebt(t *testing.T) {
	l, store := newTestLedger(t)
	ctx := context.Background()
	alice := addPerson(t, l, "Alice")
	bob := addPerson(t, l, "Bob")

	added, err := l.AddDebt(ctx, DebtInput{BorrowerID: alice.ID, LenderID: bob.ID, Amount: 10, Reason: "Dinner"})
	if err != nil {
		t.Fatalf("AddDebt failed: %v", err)
	}
	id := added.Debts[0].ID

	res, err := l.EditDebt(ctx, id, DebtInput{BorrowerID: bob.ID, LenderID: alice.ID, Amount: 4, Reason: "Cab", Paid: true})
	if err != nil {
		t.Fatalf("EditDebt failed: %v", err)
	}
	got, _ := store.GetDebt(ctx, id)
	if got.BorrowerID != bob.ID || got.LenderID != alice.ID || got.Amount != 4 || got.Reason != "Cab" || !got.Paid {
		t.Errorf("fields not replaced: %+v", got)
	}
	want := "Old: borrower Alice, lender Bob, amount 10, reason Dinner, status Unpaid -> " +
		"New: borrower Bob, lender Alice, amount 4, reason Cab, status Paid"
	if res.History[0].Details != want {
		t.Errorf("details = %q, want %q", res.History[0].Details, want)
	}

	t.Run("unknown debt id writes no history", func(t *testing.T) {
		before := historyCount(t, store)
		_, err := l.EditDebt(ctx, "nonexistent-id", DebtInput{BorrowerID: alice.ID, LenderID: bob.ID, Amount: 1, Reason: "x"})
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
		if historyCount(t, store) != before {
			t.Error("expected no new history entry")
		}
	})

	t.Run("unknown person leaves debt unchanged", func(t *testing.T) {
		_, err := l.EditDebt(ctx, id, DebtInput{BorrowerID: "nope", LenderID: alice.ID, Amount: 1, Reason: "x"})
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
		got, _ := store.GetDebt(ctx, id)
		if got.Amount != 4 {
			t.Errorf("debt changed despite error: %+v", got)
		}
	})
}

func TestDeleteDebt(t *testing.T) {
	l, store := newTestLedger(t)
	ctx := context.Background()
	alice := addPerson(t, l, "Alice")
	bob := addPerson(t, l, "Bob")

	added, _ := l.AddDebt(ctx, DebtInput{BorrowerID: alice.ID, LenderID: bob.ID, Amount: 3, Reason: "Coffee"})
	id := added.Debts[0].ID

	res, err := l.DeleteDebt(ctx, id)
	if err != nil {
		t.Fatalf("DeleteDebt failed: %v", err)
	}
	want := "Deleted debt: borrower Alice, lender Bob, amount 3, reason Coffee, status Unpaid"
	if res.History[0].Details != want {
		t.Errorf("details = %q, want %q", res.History[0].Details, want)
	}
	if *res.History[0].DebtID != id {
		t.Error("delete_debt entry should reference the removed debt")
	}

	if _, err := l.DeleteDebt(ctx, id); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound on second delete, got %v", err)
	}

	// History outlives the debt.
	entries, _ := store.ListHistory(ctx, 0)
	found := 0
	for _, e := range entries {
		if e.DebtID != nil && *e.DebtID == id {
			found++
		}
	}
	if found != 2 {
		t.Errorf("expected add and delete entries for the debt, got %d", found)
	}
}

func TestDeletePerson_LeavesDanglingDebts(t *testing.T) {
	l, _ := newTestLedger(t)
	ctx := context.Background()
	alice := addPerson(t, l, "Alice")
	bob := addPerson(t, l, "Bob")

	added, _ := l.AddDebt(ctx, DebtInput{BorrowerID: alice.ID, LenderID: bob.ID, Amount: 8, Reason: "Tickets"})

	res, err := l.DeletePerson(ctx, alice.ID)
	if err != nil {
		t.Fatalf("DeletePerson should succeed with referencing debts: %v", err)
	}
	if res.History[0].Details != "Deleted person: Alice" {
		t.Errorf("details = %q", res.History[0].Details)
	}

	debts, err := l.Debts(ctx)
	if err != nil {
		t.Fatalf("Debts failed: %v", err)
	}
	if len(debts) != 1 || debts[0].ID != added.Debts[0].ID {
		t.Fatalf("expected the debt to remain, got %+v", debts)
	}
	if !debts[0].Dangling() || debts[0].BorrowerName != "" {
		t.Errorf("expected dangling borrower reference, got %+v", debts[0])
	}

	// Deleting the debt still works and describes the missing borrower as empty.
	del, err := l.DeleteDebt(ctx, added.Debts[0].ID)
	if err != nil {
		t.Fatalf("DeleteDebt on dangling debt failed: %v", err)
	}
	if !strings.Contains(del.History[0].Details, "borrower , lender Bob") {
		t.Errorf("details = %q", del.History[0].Details)
	}

	if _, err := l.DeletePerson(ctx, alice.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestSplitDebt(t *testing.T) {
	t.Run("two names split evenly", func(t *testing.T) {
		l, store := newTestLedger(t)
		ctx := context.Background()
		carol := addPerson(t, l, "Carol")
		addPerson(t, l, "Alice")

		before := historyCount(t, store)
		res, err := l.SplitDebt(ctx, carol.ID, 10.00, "Pizza", []string{"Alice", "Bob"})
		if err != nil {
			t.Fatalf("SplitDebt failed: %v", err)
		}
		if len(res.Debts) != 2 {
			t.Fatalf("expected 2 debts, got %d", len(res.Debts))
		}
		for _, d := range res.Debts {
			if d.Amount != 5.00 || d.LenderID != carol.ID || d.Paid {
				t.Errorf("unexpected split debt: %+v", d)
			}
		}
		if _, err := store.GetPersonByName(ctx, "Bob"); err != nil {
			t.Errorf("Bob should have been created: %v", err)
		}
		// One split_add per debt; the implicit person creation is not logged.
		if got := historyCount(t, store) - before; got != 2 {
			t.Errorf("expected 2 new history entries, got %d", got)
		}
		for _, h := range res.History {
			if h.Action != models.ActionSplitAdd || h.Details == "" {
				t.Errorf("unexpected entry: %+v", h)
			}
		}
		if want := "Added new debt by Split function: Bob amount: 5 (Pizza)"; res.History[1].Details != want {
			t.Errorf("details = %q, want %q", res.History[1].Details, want)
		}
	})

	t.Run("three names tolerate rounding drift", func(t *testing.T) {
		l, _ := newTestLedger(t)
		carol := addPerson(t, l, "Carol")

		res, err := l.SplitDebt(context.Background(), carol.ID, 10.00, "Taxi", []string{"A", "B", "C"})
		if err != nil {
			t.Fatalf("SplitDebt failed: %v", err)
		}
		sum := 0.0
		for _, d := range res.Debts {
			sum += d.Amount
		}
		if diff := math.Abs(10.00 - sum); diff > 0.01*float64(len(res.Debts)-1)+1e-9 {
			t.Errorf("sum of parts %v drifts %v from total", sum, diff)
		}
	})

	t.Run("duplicate names produce duplicate debts", func(t *testing.T) {
		l, _ := newTestLedger(t)
		carol := addPerson(t, l, "Carol")

		res, err := l.SplitDebt(context.Background(), carol.ID, 9, "Drinks", []string{"Dan", "Dan", "Eve"})
		if err != nil {
			t.Fatalf("SplitDebt failed: %v", err)
		}
		if len(res.Debts) != 3 {
			t.Fatalf("expected 3 debts, got %d", len(res.Debts))
		}
		if res.Debts[0].BorrowerID != res.Debts[1].BorrowerID {
			t.Error("duplicate names should resolve to the same person")
		}
		people, _ := l.People(context.Background())
		if len(people) != 3 {
			t.Errorf("expected Carol, Dan, Eve; got %d people", len(people))
		}
	})

	t.Run("rejected inputs write nothing", func(t *testing.T) {
		l, store := newTestLedger(t)
		ctx := context.Background()
		carol := addPerson(t, l, "Carol")
		before := historyCount(t, store)

		tests := []struct {
			name   string
			lender string
			total  float64
			reason string
			names  []string
			want   error
		}{
			{"empty name list", carol.ID, 10, "x", nil, ErrInvalidInput},
			{"only blank names", carol.ID, 10, "x", []string{" ", ""}, ErrInvalidInput},
			{"name too long", carol.ID, 10, "x", []string{"Ann", strings.Repeat("x", models.MaxPersonNameLength+1)}, ErrInvalidInput},
			{"share rounds to zero", carol.ID, 0.01, "gum", []string{"Ann", "Ben", "Cat"}, ErrInvalidInput},
			{"non-positive total", carol.ID, 0, "x", []string{"Ann"}, ErrInvalidInput},
			{"blank reason", carol.ID, 10, "", []string{"Ann"}, ErrInvalidInput},
			{"unknown lender", "nope", 10, "x", []string{"Ann"}, ErrNotFound},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				if _, err := l.SplitDebt(ctx, tt.lender, tt.total, tt.reason, tt.names); !errors.Is(err, tt.want) {
					t.Errorf("expected %v, got %v", tt.want, err)
				}
			})
		}
		if historyCount(t, store) != before {
			t.Error("rejected splits must not write history")
		}
		people, _ := l.People(ctx)
		if len(people) != 1 {
			t.Errorf("rejected splits must not create people, got %d people", len(people))
		}
		debts, _ := l.Debts(ctx)
		if len(debts) != 0 {
			t.Errorf("rejected splits must not create debts, got %d", len(debts))
		}
	})

	t.Run("blank names are skipped", func(t *testing.T) {
		l, _ := newTestLedger(t)
		carol := addPerson(t, l, "Carol")

		res, err := l.SplitDebt(context.Background(), carol.ID, 10, "Lunch", []string{"Ann", "  ", "", "Ben"})
		if err != nil {
			t.Fatalf("SplitDebt failed: %v", err)
		}
		if len(res.Debts) != 2 {
			t.Fatalf("expected 2 debts, got %d", len(res.Debts))
		}
		for _, d := range res.Debts {
			if d.Amount != 5 {
				t.Errorf("share = %v, want 5", d.Amount)
			}
		}
	})

	t.Run("smallest splittable total", func(t *testing.T) {
		l, _ := newTestLedger(t)
		carol := addPerson(t, l, "Carol")

		res, err := l.SplitDebt(context.Background(), carol.ID, 0.02, "gum", []string{"Ann", "Ben"})
		if err != nil {
			t.Fatalf("SplitDebt failed: %v", err)
		}
		for _, d := range res.Debts {
			if d.Amount != 0.01 {
				t.Errorf("share = %v, want 0.01", d.Amount)
			}
		}
	})

	t.Run("failure midway keeps earlier debts", func(t *testing.T) {
		store := &faultyStore{
			Store:         newTestStore(t),
			createDebtErr: errors.New("database is locked"),
			createDebtOK:  1,
		}
		l := New(store, nil)
		ctx := context.Background()
		carol := addPerson(t, l, "Carol")

		res, err := l.SplitDebt(ctx, carol.ID, 30, "Groceries", []string{"Ann", "Ben", "Cat"})
		if !errors.Is(err, ErrStorage) {
			t.Fatalf("expected ErrStorage, got %v", err)
		}
		if len(res.Debts) != 1 || len(res.History) != 1 {
			t.Fatalf("expected the first debt and entry to be reported, got %d/%d", len(res.Debts), len(res.History))
		}
		debts, _ := l.Debts(ctx)
		if len(debts) != 1 {
			t.Errorf("expected 1 persisted debt, got %d", len(debts))
		}
		// Ben was created before his debt failed; Cat was never reached.
		if _, err := store.GetPersonByName(ctx, "Ben"); err != nil {
			t.Errorf("expected Ben to exist: %v", err)
		}
		if _, err := store.GetPersonByName(ctx, "Cat"); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("expected Cat to be absent, got %v", err)
		}
	})
}

func TestHistoryFailureIsOnlyAWarning(t *testing.T) {
	store := &faultyStore{Store: newTestStore(t)}
	l := New(store, nil)
	ctx := context.Background()
	alice := addPerson(t, l, "Alice")
	bob := addPerson(t, l, "Bob")

	store.historyErr = errors.New("history table locked")

	res, err := l.AddDebt(ctx, DebtInput{BorrowerID: alice.ID, LenderID: bob.ID, Amount: 2, Reason: "Gum"})
	if err != nil {
		t.Fatalf("mutation should succeed despite history failure: %v", err)
	}
	if !errors.Is(res.Warning, ErrHistoryWrite) {
		t.Fatalf("expected ErrHistoryWrite warning, got %v", res.Warning)
	}
	if len(res.History) != 0 {
		t.Errorf("expected no recorded entries, got %d", len(res.History))
	}
	if _, err := store.GetDebt(ctx, res.Debts[0].ID); err != nil {
		t.Errorf("debt should be committed: %v", err)
	}

	split, err := l.SplitDebt(ctx, bob.ID, 4, "Snacks", []string{"Alice", "Dan"})
	if err != nil {
		t.Fatalf("SplitDebt should succeed despite history failure: %v", err)
	}
	if len(split.Debts) != 2 || !errors.Is(split.Warning, ErrHistoryWrite) {
		t.Errorf("expected 2 debts with a warning, got %d debts, warning %v", len(split.Debts), split.Warning)
	}
}
