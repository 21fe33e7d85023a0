// Package debtbookv1 holds the wire types and Connect glue for the
// debtbook.v1.LedgerService API. Messages are plain structs carried by a
// JSON codec.
package debtbookv1

// Person is a borrower or lender.
type Person struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	CreatedAt int64  `json:"createdAt"` // Unix seconds
}

// Debt is one debt with resolved names. Names are empty when the referenced
// person has been deleted.
type Debt struct {
	ID           string  `json:"id"`
	CreatedAt    int64   `json:"createdAt"`
	BorrowerID   string  `json:"borrowerId"`
	BorrowerName string  `json:"borrowerName"`
	LenderID     string  `json:"lenderId"`
	LenderName   string  `json:"lenderName"`
	Amount       float64 `json:"amount"`
	Reason       string  `json:"reason"`
	Paid         bool    `json:"paid"`
}

// HistoryEntry is one audit record.
type HistoryEntry struct {
	ID        string `json:"id"`
	Action    string `json:"action"`
	DebtID    string `json:"debtId,omitempty"`
	Timestamp int64  `json:"timestamp"` // Unix seconds
	Details   string `json:"details"`
}

// PairBalance is the unpaid total one borrower owes one lender.
type PairBalance struct {
	BorrowerID   string  `json:"borrowerId"`
	BorrowerName string  `json:"borrowerName"`
	LenderID     string  `json:"lenderId"`
	LenderName   string  `json:"lenderName"`
	TotalUnpaid  float64 `json:"totalUnpaid"`
	Count        int     `json:"count"`
}

// ─── People ─────────────────────────────────────────────────────────────────

type ListPeopleRequest struct{}

type ListPeopleResponse struct {
	People []*Person `json:"people"`
}

type AddPersonRequest struct {
	Name string `json:"name"`
}

type EditPersonRequest struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type DeletePersonRequest struct {
	ID string `json:"id"`
}

// PersonResponse is returned by every person mutation. Warning is set when
// the change was saved but its history entry was not.
type PersonResponse struct {
	Person  *Person `json:"person"`
	Warning string  `json:"warning,omitempty"`
}

// ─── Debts ──────────────────────────────────────────────────────────────────

type ListDebtsRequest struct{}

type ListDebtsResponse struct {
	Debts []*Debt `json:"debts"`
}

type AddDebtRequest struct {
	BorrowerID string  `json:"borrowerId"`
	LenderID   string  `json:"lenderId"`
	Amount     float64 `json:"amount"`
	Reason     string  `json:"reason"`
	Paid       bool    `json:"paid"`
}

// EditDebtRequest replaces every field of the debt.
type EditDebtRequest struct {
	ID         string  `json:"id"`
	BorrowerID string  `json:"borrowerId"`
	LenderID   string  `json:"lenderId"`
	Amount     float64 `json:"amount"`
	Reason     string  `json:"reason"`
	Paid       bool    `json:"paid"`
}

type DeleteDebtRequest struct {
	ID string `json:"id"`
}

// DebtResponse is returned by every single-debt mutation.
type DebtResponse struct {
	Debt    *Debt  `json:"debt"`
	Warning string `json:"warning,omitempty"`
}

type SplitDebtRequest struct {
	LenderID string   `json:"lenderId"`
	Total    float64  `json:"total"`
	Reason   string   `json:"reason"`
	Names    []string `json:"names"`
}

type SplitDebtResponse struct {
	Debts   []*Debt `json:"debts"`
	Share   float64 `json:"share"`
	Warning string  `json:"warning,omitempty"`
}

// ─── History ────────────────────────────────────────────────────────────────

// ListHistoryRequest limits the number of entries returned. Zero means all.
type ListHistoryRequest struct {
	Limit int `json:"limit"`
}

type ListHistoryResponse struct {
	Entries []*HistoryEntry `json:"entries"`
}

// ─── Balances ───────────────────────────────────────────────────────────────

type UnpaidSummaryRequest struct{}

type UnpaidSummaryResponse struct {
	Pairs []*PairBalance `json:"pairs"`
}

type UnpaidBetweenRequest struct {
	BorrowerID string `json:"borrowerId"`
	LenderID   string `json:"lenderId"`
}

type UnpaidBetweenResponse struct {
	Borrower *Person `json:"borrower"`
	Lender   *Person `json:"lender"`
	Debts    []*Debt `json:"debts"`
	Total    float64 `json:"total"`
}

type UnpaidAllRequest struct{}

type UnpaidAllResponse struct {
	Debts []*Debt `json:"debts"`
}

// ─── Sync ───────────────────────────────────────────────────────────────────

type UploadSnapshotRequest struct {
	Token   string `json:"token"`
	Message string `json:"message"`
}

type UploadSnapshotResponse struct {
	Path      string `json:"path"`
	CommitSHA string `json:"commitSha"`
	Created   bool   `json:"created"`
}
