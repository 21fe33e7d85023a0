// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/mmynk/debtbook/internal/models"
)

var (
	// ErrNotFound is returned when a lookup by ID or name matches nothing.
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned when a write would violate person name uniqueness.
	ErrConflict = errors.New("conflict")
)

// UnpaidFilter narrows ListUnpaidDebts to a single (borrower, lender) pair.
// Empty fields match everything.
type UnpaidFilter struct {
	BorrowerID string
	LenderID   string
}

// Store defines the interface for ledger storage operations.
// This abstraction allows swapping storage backends without changing the
// ledger or balance layers.
type Store interface {
	// CreatePerson persists a new person. The ID and CreatedAt fields are
	// populated by the store when empty.
	// Returns ErrConflict if the name is already taken.
	CreatePerson(ctx context.Context, person *models.Person) error

	// GetPerson retrieves a person by ID. Returns ErrNotFound if missing.
	GetPerson(ctx context.Context, id string) (*models.Person, error)

	// GetPersonByName retrieves a person by exact name. Returns ErrNotFound if missing.
	GetPersonByName(ctx context.Context, name string) (*models.Person, error)

	// ListPeople returns all people ordered by name.
	ListPeople(ctx context.Context) ([]models.Person, error)

	// UpdatePerson renames an existing person.
	// Returns ErrNotFound if missing and ErrConflict if the name is taken.
	UpdatePerson(ctx context.Context, person *models.Person) error

	// DeletePerson removes a person. Debts referencing it are left untouched.
	DeletePerson(ctx context.Context, id string) error

	// CreateDebt persists a new debt. The ID and CreatedAt fields are
	// populated by the store when empty.
	CreateDebt(ctx context.Context, debt *models.Debt) error

	// GetDebt retrieves a debt by ID. Returns ErrNotFound if missing.
	GetDebt(ctx context.Context, id string) (*models.Debt, error)

	// GetDebtView retrieves a debt with resolved names. Returns ErrNotFound if missing.
	GetDebtView(ctx context.Context, id string) (*models.DebtView, error)

	// ListDebts returns every debt with resolved names, newest first.
	ListDebts(ctx context.Context) ([]models.DebtView, error)

	// ListUnpaidDebts returns unpaid debts matching the filter, oldest first.
	ListUnpaidDebts(ctx context.Context, filter UnpaidFilter) ([]models.DebtView, error)

	// UpdateDebt overwrites every mutable field of an existing debt.
	// Returns ErrNotFound if missing.
	UpdateDebt(ctx context.Context, debt *models.Debt) error

	// DeleteDebt removes a debt. Returns ErrNotFound if missing.
	DeleteDebt(ctx context.Context, id string) error

	// AppendHistory persists a new history entry. The ID and Timestamp
	// fields are populated by the store when empty.
	AppendHistory(ctx context.Context, entry *models.History) error

	// ListHistory returns history entries newest first. A limit <= 0 returns all.
	ListHistory(ctx context.Context, limit int) ([]models.History, error)

	// Path returns the location of the persisted database file.
	Path() string

	// Close releases any resources held by the store.
	Close() error
}
