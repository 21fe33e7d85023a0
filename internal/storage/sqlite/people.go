package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/debtbook/internal/models"
	"github.com/mmynk/debtbook/internal/storage"
)

// CreatePerson inserts a new person into the database.
func (s *SQLiteStore) CreatePerson(ctx context.Context, person *models.Person) error {
	if person.ID == "" {
		person.ID = uuid.New().String()
	}
	if person.CreatedAt.IsZero() {
		person.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO person (id, name, created_at) VALUES (?, ?, ?)",
		person.ID, person.Name, toUnix(person.CreatedAt),
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("person %q: %w", person.Name, storage.ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("failed to create person: %w", err)
	}

	return nil
}

// GetPerson retrieves a person by ID.
func (s *SQLiteStore) GetPerson(ctx context.Context, id string) (*models.Person, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT id, name, created_at FROM person WHERE id = ?", id,
	)
	person, err := scanPerson(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("person %s: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get person: %w", err)
	}
	return person, nil
}

// GetPersonByName retrieves a person by exact name.
func (s *SQLiteStore) GetPersonByName(ctx context.Context, name string) (*models.Person, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT id, name, created_at FROM person WHERE name = ?", name,
	)
	person, err := scanPerson(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("person named %q: %w", name, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get person by name: %w", err)
	}
	return person, nil
}

// ListPeople returns all people ordered by name.
func (s *SQLiteStore) ListPeople(ctx context.Context) ([]models.Person, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, created_at FROM person ORDER BY name",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list people: %w", err)
	}
	defer rows.Close()

	var people []models.Person
	for rows.Next() {
		person, err := scanPerson(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan person: %w", err)
		}
		people = append(people, *person)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate people: %w", err)
	}

	return people, nil
}

// UpdatePerson renames an existing person.
func (s *SQLiteStore) UpdatePerson(ctx context.Context, person *models.Person) error {
	result, err := s.db.ExecContext(ctx,
		"UPDATE person SET name = ? WHERE id = ?",
		person.Name, person.ID,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("person %q: %w", person.Name, storage.ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("failed to update person: %w", err)
	}
	return requireAffected(result, "person", person.ID)
}

// DeletePerson removes a person. Debts referencing it are left untouched.
func (s *SQLiteStore) DeletePerson(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM person WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete person: %w", err)
	}
	return requireAffected(result, "person", id)
}

func scanPerson(row scanner) (*models.Person, error) {
	var (
		person    models.Person
		createdAt int64
	)
	if err := row.Scan(&person.ID, &person.Name, &createdAt); err != nil {
		return nil, err
	}
	person.CreatedAt = fromUnix(createdAt)
	return &person, nil
}

// requireAffected turns a zero-row UPDATE or DELETE into ErrNotFound.
func requireAffected(result sql.Result, kind, id string) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", kind, id, storage.ErrNotFound)
	}
	return nil
}
