package models

import "time"

// MaxPersonNameLength mirrors the width of the name column.
const MaxPersonNameLength = 50

// Person represents someone who can borrow or lend.
type Person struct {
	// ID is the unique identifier for the person (UUID format).
	ID string

	// Name is the display name. It is unique across all people.
	Name string

	// CreatedAt is when the person was first recorded.
	CreatedAt time.Time
}
