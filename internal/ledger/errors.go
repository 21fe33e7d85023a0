package ledger

import (
	"errors"
	"fmt"

	"github.com/mmynk/debtbook/internal/storage"
)

// ─── Sentinel Errors ────────────────────────────────────────────────────────

var (
	// ErrNotFound means a referenced person or debt does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict means a person name is already taken.
	ErrConflict = errors.New("conflict")

	// ErrInvalidInput means a field is missing or malformed.
	ErrInvalidInput = errors.New("invalid input")

	// ErrStorage means the store failed during the primary mutation.
	// Nothing was written and no history entry exists.
	ErrStorage = errors.New("storage failure")

	// ErrHistoryWrite means the mutation succeeded but its audit entry
	// could not be written. It is only ever reported as a warning.
	ErrHistoryWrite = errors.New("history write failure")
)

// translate maps store errors onto ledger sentinels.
func translate(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, storage.ErrNotFound):
		return fmt.Errorf("%s: %w: %v", op, ErrNotFound, err)
	case errors.Is(err, storage.ErrConflict):
		return fmt.Errorf("%s: %w: %v", op, ErrConflict, err)
	default:
		return fmt.Errorf("%s: %w: %v", op, ErrStorage, err)
	}
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}
