package cerb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Address is a person identity in Cerb5. The email may be missing or
// malformed - callers must validate before relying on it.
type Address struct {
	Id        int64
	Email     string
	FirstName string
	LastName  string
	OrgId     int64
}

func (s *Store) AddressById(ctx context.Context, id int64) (*Address, error) {
	var a Address
	var first, last sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT id, email, first_name, last_name, contact_org_id FROM address WHERE id = ?`, id).
		Scan(&a.Id, &a.Email, &first, &last, &a.OrgId)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("address %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("querying address %d: %w", id, err)
	}

	a.FirstName = first.String
	a.LastName = last.String
	return &a, nil
}
