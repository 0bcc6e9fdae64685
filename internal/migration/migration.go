package migration

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"

	"github.com/inex/cerb5-to-zendesk/internal/cerb"
	"github.com/inex/cerb5-to-zendesk/internal/zendesk"
)

// legacyStore is the read-only slice of the Cerb5 database the migration
// consumes, satisfied by *cerb.Store.
type legacyStore interface {
	EligibleTickets(ctx context.Context, spamBucketId, afterId int64) ([]cerb.Ticket, error)
	MessagesForTicket(ctx context.Context, ticketId int64) ([]cerb.Message, error)
	CommentsForTicket(ctx context.Context, ticketId int64, messageIds []int64) ([]cerb.Comment, error)
	AttachmentsForMessage(ctx context.Context, messageId int64) ([]cerb.Attachment, error)
	OrganizationById(ctx context.Context, id int64) (*cerb.Organization, error)
	AddressById(ctx context.Context, id int64) (*cerb.Address, error)
}

// remoteApi is the slice of the Zendesk API the migration consumes, satisfied
// by *zendesk.Client. Every call through it is rate-governed by the client.
type remoteApi interface {
	AutocompleteOrganizations(ctx context.Context, name string) ([]zendesk.Organization, error)
	CreateOrganization(ctx context.Context, name string) (*zendesk.Organization, error)
	SearchUsers(ctx context.Context, query string) ([]zendesk.User, error)
	CreateUser(ctx context.Context, name, email string) (*zendesk.User, error)
	Upload(ctx context.Context, filename string, body io.Reader) (string, error)
	ImportTicket(ctx context.Context, t *zendesk.TicketImport) (*zendesk.Ticket, error)
}

type Client struct {
	ZendeskClient *zendesk.Client
	CerbStore     *cerb.Store
	Cfg           *Config

	api    remoteApi
	store  legacyStore
	orgs   *orgResolver
	users  *userResolver
	owners *ownerResolver
	out    io.Writer
}

// NewClient wires the two collaborators and the per-run resolver caches. The
// resolvers live exactly as long as the run; a restarted process starts cold
// and re-derives resolutions, which is safe because remote lookups are
// idempotent finds.
func NewClient(cfg *Config) (*Client, error) {
	throttle := zendesk.NewThrottle(cfg.Zendesk.RequestsPerMinute)
	zendeskClient := zendesk.NewClient(cfg.Zendesk.Creds, http.DefaultClient, throttle)

	store, err := cerb.NewStore(cfg.Cerb.Dsn)
	if err != nil {
		return nil, fmt.Errorf("opening cerb store: %w", err)
	}

	c := &Client{
		ZendeskClient: zendeskClient,
		CerbStore:     store,
		Cfg:           cfg,
		api:           zendeskClient,
		store:         store,
		out:           os.Stdout,
	}

	c.orgs = newOrgResolver(store, zendeskClient)
	c.users = newUserResolver(store, zendeskClient, cfg.EmailRewrites)
	c.owners = newOwnerResolver(cfg.Agents)

	return c, nil
}

func (c *Client) TestConnections(ctx context.Context) error {
	var failedTests []string
	if err := c.ZendeskClient.ConnectionTest(ctx); err != nil {
		slog.Error("zendesk api connection test", "error", err)
		failedTests = append(failedTests, "zendesk")
	}

	if err := c.CerbStore.ConnectionTest(ctx); err != nil {
		slog.Error("cerb database connection test", "error", err)
		failedTests = append(failedTests, "cerb")
	}

	if len(failedTests) > 0 {
		return fmt.Errorf("failed connection tests: %v", failedTests)
	}

	slog.Info("connection tests successful")
	return nil
}

// Run is the top-level driver: one pass over all eligible tickets in
// ascending id order, one imported Zendesk ticket per Cerb5 ticket. A failure
// on any single ticket is logged with its mask and the loop moves on; nothing
// short of the eligible-tickets query itself halts the run. Cancelling ctx
// (eg SIGINT) stops the run and reports the id of the last ticket that
// actually finished, so resuming with afterId never skips a ticket the
// interrupt cut short.
func (c *Client) Run(ctx context.Context, afterId int64, limit int) error {
	tickets, err := c.store.EligibleTickets(ctx, c.Cfg.Cerb.SpamBucketId, afterId)
	if err != nil {
		return fmt.Errorf("listing eligible tickets: %w", err)
	}

	slog.Info("starting migration", "totalTickets", len(tickets), "afterId", afterId, "limit", limit)

	var migrated, failed, processed int
	lastDone := afterId
	for _, t := range tickets {
		if ctx.Err() != nil {
			slog.Warn("migration interrupted", "lastCompletedId", lastDone)
			fmt.Fprintf(c.out, "\ninterrupted - resume with --after %d\n", lastDone)
			break
		}

		if limit > 0 && processed >= limit {
			slog.Info("ticket limit reached", "limit", limit)
			break
		}

		processed++

		zendeskId, err := c.migrateTicket(ctx, t)
		if err != nil {
			if ctx.Err() != nil {
				slog.Warn("migration interrupted", "lastCompletedId", lastDone)
				fmt.Fprintf(c.out, "\ninterrupted - resume with --after %d\n", lastDone)
				break
			}
			failed++
			lastDone = t.Id
			slog.Error("migrating ticket", "mask", t.Mask, "cerbTicketId", t.Id, "error", err)
			fmt.Fprintf(c.out, "ERROR %s: %v\n", t.Mask, err)
			continue
		}

		migrated++
		lastDone = t.Id
		slog.Info("ticket migrated", "mask", t.Mask, "cerbTicketId", t.Id, "zendeskTicketId", zendeskId)
		fmt.Fprintf(c.out, "%d ", t.Id)
	}

	fmt.Fprintf(c.out, "\nmigrated %d of %d tickets (%d failed)\n", migrated, len(tickets), failed)
	return nil
}
