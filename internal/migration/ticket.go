package migration

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/inex/cerb5-to-zendesk/internal/cerb"
	"github.com/inex/cerb5-to-zendesk/internal/zendesk"
)

// migrateTicket turns one Cerb5 ticket into one imported Zendesk ticket and
// returns the new Zendesk id. Any error is scoped to this ticket; the import
// call is atomic on the Zendesk side, so a failure leaves no partial ticket.
func (c *Client) migrateTicket(ctx context.Context, t cerb.Ticket) (int64, error) {
	// resolved for its find-or-create side effect so the organization exists
	// before its requester is created; the import payload itself carries no
	// organization field
	c.orgs.Resolve(ctx, t.OrgId)

	requesterId := c.users.Resolve(ctx, t.FirstWroteAddressId)
	assigneeId := c.owners.Resolve(t.OwnerId)

	msgs, err := c.store.MessagesForTicket(ctx, t.Id)
	if err != nil {
		return 0, fmt.Errorf("loading messages: %w", err)
	}

	messageIds := make([]int64, 0, len(msgs))
	for _, m := range msgs {
		messageIds = append(messageIds, m.Id)
	}

	comments, err := c.store.CommentsForTicket(ctx, t.Id, messageIds)
	if err != nil {
		return 0, fmt.Errorf("loading comments: %w", err)
	}

	ticket := &zendesk.TicketImport{
		RequesterId: requesterId,
		SubmitterId: requesterId,
		AssigneeId:  assigneeId,
		Subject:     t.Subject,
		ExternalId:  t.Mask,
		CreatedAt:   normalizeTimestamp(t.CreatedDate),
		UpdatedAt:   normalizeTimestamp(t.UpdatedDate),
		Status:      ticketStatus(t),
		Comments:    c.buildComments(ctx, msgs, comments),
	}

	slog.Debug("built ticket for import", "mask", t.Mask, "status", ticket.Status,
		"totalComments", len(ticket.Comments))

	imported, err := c.api.ImportTicket(ctx, ticket)
	if err != nil {
		return 0, fmt.Errorf("importing ticket: %w", err)
	}

	return imported.Id, nil
}

// ticketStatus derives the Zendesk status; closed takes precedence over
// waiting.
func ticketStatus(t cerb.Ticket) string {
	switch {
	case t.IsClosed:
		return "closed"
	case t.IsWaiting:
		return "pending"
	default:
		return "open"
	}
}

func normalizeTimestamp(epoch int64) string {
	return fixTimestamp(time.Unix(epoch, 0).Format(time.RFC3339))
}

// fixTimestamp rewrites an ISO 8601 timestamp into the shape Zendesk actually
// accepts: everything from the offset designator onward becomes a literal Z.
// The clock reading is kept as-is, not converted to UTC - that mismatch is
// what the import endpoint expects.
func fixTimestamp(ts string) string {
	t := strings.IndexByte(ts, 'T')
	if t < 0 {
		return ts
	}

	if i := strings.IndexAny(ts[t:], "Z+-"); i >= 0 {
		return ts[:t+i] + "Z"
	}

	return ts + "Z"
}
