package cerb

import (
	"context"
	"fmt"
	"strings"
)

const (
	ticketContext  = "cerberusweb.contexts.ticket"
	messageContext = "cerberusweb.contexts.message"
)

// Comment is a private agent annotation on a ticket or one of its messages.
// AddressId refers to the agent who wrote it, not a requester.
type Comment struct {
	AddressId int64
	Created   int64
	Body      string
}

func commentsQuery(ticketId int64, messageIds []int64) (string, []interface{}) {
	q := `
		SELECT address_id, created, comment
		FROM comment
		WHERE (context = ? AND context_id = ?)`
	args := []interface{}{ticketContext, ticketId}

	if len(messageIds) > 0 {
		placeholders := strings.TrimSuffix(strings.Repeat("?,", len(messageIds)), ",")
		q += fmt.Sprintf(" OR (context = ? AND context_id IN (%s))", placeholders)
		args = append(args, messageContext)
		for _, id := range messageIds {
			args = append(args, id)
		}
	}

	q += " ORDER BY created ASC"
	return q, args
}

// CommentsForTicket returns the ticket-level and message-level private
// comments as a single sequence ordered by creation time ascending.
func (s *Store) CommentsForTicket(ctx context.Context, ticketId int64, messageIds []int64) ([]Comment, error) {
	q, args := commentsQuery(ticketId, messageIds)

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("querying comments for ticket %d: %w", ticketId, err)
	}
	defer func() { _ = rows.Close() }()

	var comments []Comment
	for rows.Next() {
		var c Comment
		if err := rows.Scan(&c.AddressId, &c.Created, &c.Body); err != nil {
			return nil, fmt.Errorf("scanning comment: %w", err)
		}
		comments = append(comments, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating comments: %w", err)
	}

	return comments, nil
}
