package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/debtbook/internal/models"
	"github.com/mmynk/debtbook/internal/storage"
)

// debtViewSelect joins borrower and lender names. LEFT JOIN keeps debts
// whose people have been deleted; their names come back empty.
const debtViewSelect = `
	SELECT d.id, d.created_at, d.borrower_id, d.lender_id, d.amount, d.reason, d.paid,
	       COALESCE(b.name, ''), COALESCE(l.name, '')
	FROM debt d
	LEFT JOIN person b ON d.borrower_id = b.id
	LEFT JOIN person l ON d.lender_id = l.id
`

// CreateDebt inserts a new debt into the database.
func (s *SQLiteStore) CreateDebt(ctx context.Context, debt *models.Debt) error {
	if debt.ID == "" {
		debt.ID = uuid.New().String()
	}
	if debt.CreatedAt.IsZero() {
		debt.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO debt (id, created_at, borrower_id, lender_id, amount, reason, paid)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		debt.ID, toUnix(debt.CreatedAt), debt.BorrowerID, debt.LenderID,
		debt.Amount, debt.Reason, boolToInt(debt.Paid),
	)
	if err != nil {
		return fmt.Errorf("failed to create debt: %w", err)
	}

	return nil
}

// GetDebt retrieves a debt by ID.
func (s *SQLiteStore) GetDebt(ctx context.Context, id string) (*models.Debt, error) {
	view, err := s.GetDebtView(ctx, id)
	if err != nil {
		return nil, err
	}
	return &view.Debt, nil
}

// GetDebtView retrieves a debt by ID with borrower and lender names.
func (s *SQLiteStore) GetDebtView(ctx context.Context, id string) (*models.DebtView, error) {
	row := s.db.QueryRowContext(ctx, debtViewSelect+" WHERE d.id = ?", id)
	view, err := scanDebtView(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("debt %s: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get debt: %w", err)
	}
	return view, nil
}

// ListDebts returns every debt with resolved names, newest first.
func (s *SQLiteStore) ListDebts(ctx context.Context) ([]models.DebtView, error) {
	return s.queryDebtViews(ctx, debtViewSelect+" ORDER BY d.created_at DESC, d.rowid DESC")
}

// ListUnpaidDebts returns unpaid debts matching the filter, oldest first.
func (s *SQLiteStore) ListUnpaidDebts(ctx context.Context, filter storage.UnpaidFilter) ([]models.DebtView, error) {
	conds := []string{"d.paid = 0"}
	var args []any
	if filter.BorrowerID != "" {
		conds = append(conds, "d.borrower_id = ?")
		args = append(args, filter.BorrowerID)
	}
	if filter.LenderID != "" {
		conds = append(conds, "d.lender_id = ?")
		args = append(args, filter.LenderID)
	}

	query := debtViewSelect + " WHERE " + strings.Join(conds, " AND ") +
		" ORDER BY d.created_at, d.rowid"
	return s.queryDebtViews(ctx, query, args...)
}

// UpdateDebt overwrites every mutable field of an existing debt.
// CreatedAt is preserved.
func (s *SQLiteStore) UpdateDebt(ctx context.Context, debt *models.Debt) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE debt SET borrower_id = ?, lender_id = ?, amount = ?, reason = ?, paid = ?
		 WHERE id = ?`,
		debt.BorrowerID, debt.LenderID, debt.Amount, debt.Reason, boolToInt(debt.Paid), debt.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update debt: %w", err)
	}
	return requireAffected(result, "debt", debt.ID)
}

// DeleteDebt removes a debt.
func (s *SQLiteStore) DeleteDebt(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM debt WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete debt: %w", err)
	}
	return requireAffected(result, "debt", id)
}

func (s *SQLiteStore) queryDebtViews(ctx context.Context, query string, args ...any) ([]models.DebtView, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list debts: %w", err)
	}
	defer rows.Close()

	var views []models.DebtView
	for rows.Next() {
		view, err := scanDebtView(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan debt: %w", err)
		}
		views = append(views, *view)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate debts: %w", err)
	}

	return views, nil
}

func scanDebtView(row scanner) (*models.DebtView, error) {
	var (
		view      models.DebtView
		createdAt int64
		paid      int
	)
	err := row.Scan(
		&view.ID, &createdAt, &view.BorrowerID, &view.LenderID,
		&view.Amount, &view.Reason, &paid,
		&view.BorrowerName, &view.LenderName,
	)
	if err != nil {
		return nil, err
	}
	view.CreatedAt = fromUnix(createdAt)
	view.Paid = paid != 0
	return &view, nil
}
