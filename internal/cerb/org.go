package cerb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

type Organization struct {
	Id   int64
	Name string
}

func (s *Store) OrganizationById(ctx context.Context, id int64) (*Organization, error) {
	var o Organization
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name FROM contact_org WHERE id = ?`, id).Scan(&o.Id, &o.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("organization %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("querying organization %d: %w", id, err)
	}

	return &o, nil
}
