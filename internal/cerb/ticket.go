package cerb

import (
	"context"
	"fmt"
)

type Ticket struct {
	Id                  int64
	Mask                string
	Subject             string
	OrgId               int64
	FirstWroteAddressId int64
	OwnerId             int64
	CreatedDate         int64
	UpdatedDate         int64
	IsClosed            bool
	IsWaiting           bool
}

func eligibleTicketsQuery(spamBucketId, afterId int64) (string, []interface{}) {
	q := `
		SELECT id, mask, subject, org_id, first_wrote_address_id, owner_id,
			created_date, updated_date, is_closed, is_waiting
		FROM ticket
		WHERE is_deleted = 0 AND bucket_id != ?`
	args := []interface{}{spamBucketId}

	if afterId > 0 {
		q += " AND id > ?"
		args = append(args, afterId)
	}

	q += " ORDER BY id ASC"
	return q, args
}

// EligibleTickets returns every ticket to migrate: not soft-deleted, not in
// the spam bucket, ordered by id ascending. The ordering is the resume
// contract - an interrupted run restarts with afterId set to the last id it
// logged and picks up exactly where it left off.
func (s *Store) EligibleTickets(ctx context.Context, spamBucketId, afterId int64) ([]Ticket, error) {
	q, args := eligibleTicketsQuery(spamBucketId, afterId)

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("querying eligible tickets: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var tickets []Ticket
	for rows.Next() {
		var t Ticket
		if err := rows.Scan(&t.Id, &t.Mask, &t.Subject, &t.OrgId, &t.FirstWroteAddressId,
			&t.OwnerId, &t.CreatedDate, &t.UpdatedDate, &t.IsClosed, &t.IsWaiting); err != nil {
			return nil, fmt.Errorf("scanning ticket: %w", err)
		}
		tickets = append(tickets, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating tickets: %w", err)
	}

	return tickets, nil
}
