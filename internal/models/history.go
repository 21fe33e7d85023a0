package models

import "time"

// Action identifies the kind of mutation a History entry describes.
type Action string

const (
	ActionAddPerson    Action = "add_person"
	ActionEditPerson   Action = "edit_person"
	ActionDeletePerson Action = "delete_person"
	ActionAddDebt      Action = "add_debt"
	ActionEditDebt     Action = "edit_debt"
	ActionDeleteDebt   Action = "delete_debt"
	ActionSplitAdd     Action = "split_add"
)

// Valid reports whether a is one of the known actions.
func (a Action) Valid() bool {
	switch a {
	case ActionAddPerson, ActionEditPerson, ActionDeletePerson,
		ActionAddDebt, ActionEditDebt, ActionDeleteDebt, ActionSplitAdd:
		return true
	}
	return false
}

// History is an append-only audit record. It is never updated or deleted.
type History struct {
	// ID is the unique identifier for the entry (UUID format).
	ID string

	// Action is the kind of mutation recorded.
	Action Action

	// DebtID is the affected debt, or nil for person-only actions.
	// It is not a foreign key: the debt may since have been deleted.
	DebtID *string

	// Timestamp is when the entry was written (UTC).
	Timestamp time.Time

	// Details is a human-readable before/after description.
	Details string
}
