package cerb

import (
	"context"
	"database/sql"
	"fmt"
)

type Message struct {
	Id         int64
	TicketId   int64
	AddressId  int64
	Created    int64
	IsOutgoing bool
	Body       string
}

// MessagesForTicket returns a ticket's messages ordered by creation time
// ascending. That ordering becomes the public comment order on the migrated
// ticket, so it must stay strictly chronological.
func (s *Store) MessagesForTicket(ctx context.Context, ticketId int64) ([]Message, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT m.id, m.ticket_id, m.address_id, m.created_date, m.is_outgoing, s.data
		FROM message m
			LEFT JOIN storage_message_content s ON s.id = m.storage_key
		WHERE m.ticket_id = ?
		ORDER BY m.created_date ASC
	`, ticketId)
	if err != nil {
		return nil, fmt.Errorf("querying messages for ticket %d: %w", ticketId, err)
	}
	defer func() { _ = rows.Close() }()

	var msgs []Message
	for rows.Next() {
		var m Message
		var body sql.NullString
		if err := rows.Scan(&m.Id, &m.TicketId, &m.AddressId, &m.Created, &m.IsOutgoing, &body); err != nil {
			return nil, fmt.Errorf("scanning message: %w", err)
		}
		m.Body = body.String
		msgs = append(msgs, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating messages: %w", err)
	}

	return msgs, nil
}
