package zendesk

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"time"
)

type Ticket struct {
	Id         int64       `json:"id"`
	ExternalId interface{} `json:"external_id"`
	CreatedAt  time.Time   `json:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at"`
	Subject    string      `json:"subject"`
	Status     string      `json:"status"`
}

type TicketResp struct {
	Ticket Ticket `json:"ticket"`
}

type TicketsResp struct {
	Tickets []Ticket `json:"tickets"`
}

// TicketImport is the outbound shape for Zendesk's ticket import endpoint, a
// backdated creation that suppresses end-user notifications. Timestamps are
// pre-formatted strings because the endpoint wants the literal Z designator
// rather than a numeric offset.
type TicketImport struct {
	RequesterId *int64          `json:"requester_id,omitempty"`
	SubmitterId *int64          `json:"submitter_id,omitempty"`
	AssigneeId  *int64          `json:"assignee_id,omitempty"`
	Subject     string          `json:"subject"`
	ExternalId  string          `json:"external_id"`
	CreatedAt   string          `json:"created_at"`
	UpdatedAt   string          `json:"updated_at"`
	Status      string          `json:"status"`
	Comments    []TicketComment `json:"comments"`
}

type TicketComment struct {
	AuthorId  *int64   `json:"author_id,omitempty"`
	Public    bool     `json:"public"`
	Value     string   `json:"value"`
	CreatedAt string   `json:"created_at"`
	Uploads   []string `json:"uploads,omitempty"`
}

// ImportTicket submits a ticket through the import endpoint rather than the
// live creation one, so migrated history does not trigger notifications.
func (c *Client) ImportTicket(ctx context.Context, t *TicketImport) (*Ticket, error) {
	slog.Debug("zendesk.Client.ImportTicket called", "externalId", t.ExternalId, "totalComments", len(t.Comments))
	u := fmt.Sprintf("%s/imports/tickets.json", c.baseUrl)

	b := struct {
		Ticket *TicketImport `json:"ticket"`
	}{
		Ticket: t,
	}

	jsonBytes, err := json.Marshal(b)
	if err != nil {
		return nil, fmt.Errorf("marshaling ticket to json: %w", err)
	}

	r := &TicketResp{}
	if err := c.ApiRequest(ctx, "POST", u, jsonBytes, &r); err != nil {
		return nil, fmt.Errorf("an error occured importing the ticket: %w", err)
	}

	return &r.Ticket, nil
}

// FindTicketByExternalId looks up an already-imported ticket by its external
// correlation id (the legacy mask). Used by the test subcommands to verify a
// migration, not by the run loop.
func (c *Client) FindTicketByExternalId(ctx context.Context, externalId string) (*Ticket, error) {
	u := fmt.Sprintf("%s/tickets.json?external_id=%s", c.baseUrl, url.QueryEscape(externalId))

	r := &TicketsResp{}
	if err := c.ApiRequest(ctx, "GET", u, nil, &r); err != nil {
		return nil, fmt.Errorf("an error occured finding the ticket: %w", err)
	}

	for _, t := range r.Tickets {
		if t.ExternalId == externalId {
			return &t, nil
		}
	}

	return nil, nil
}
