package migration

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inex/cerb5-to-zendesk/internal/cerb"
	"github.com/inex/cerb5-to-zendesk/internal/zendesk"
)

// fakeStore implements legacyStore from in-memory fixtures and counts
// lookups so tests can assert the cache-hit property.
type fakeStore struct {
	tickets     []cerb.Ticket
	msgs        map[int64][]cerb.Message
	comments    map[int64][]cerb.Comment
	attachments map[int64][]cerb.Attachment
	orgs        map[int64]*cerb.Organization
	addresses   map[int64]*cerb.Address

	orgLookups     int
	addressLookups int
}

func (s *fakeStore) EligibleTickets(_ context.Context, _, afterId int64) ([]cerb.Ticket, error) {
	var out []cerb.Ticket
	for _, t := range s.tickets {
		if t.Id > afterId {
			out = append(out, t)
		}
	}
	return out, nil
}

func (s *fakeStore) MessagesForTicket(_ context.Context, ticketId int64) ([]cerb.Message, error) {
	return s.msgs[ticketId], nil
}

func (s *fakeStore) CommentsForTicket(_ context.Context, ticketId int64, _ []int64) ([]cerb.Comment, error) {
	return s.comments[ticketId], nil
}

func (s *fakeStore) AttachmentsForMessage(_ context.Context, messageId int64) ([]cerb.Attachment, error) {
	return s.attachments[messageId], nil
}

func (s *fakeStore) OrganizationById(_ context.Context, id int64) (*cerb.Organization, error) {
	s.orgLookups++
	if o, ok := s.orgs[id]; ok {
		return o, nil
	}
	return nil, fmt.Errorf("organization %d: %w", id, cerb.ErrNotFound)
}

func (s *fakeStore) AddressById(_ context.Context, id int64) (*cerb.Address, error) {
	s.addressLookups++
	if a, ok := s.addresses[id]; ok {
		return a, nil
	}
	return nil, fmt.Errorf("address %d: %w", id, cerb.ErrNotFound)
}

// fakeApi implements remoteApi, recording traffic and handing out ids.
type fakeApi struct {
	orgsByName   map[string][]zendesk.Organization
	usersByQuery map[string][]zendesk.User

	orgSearches []string
	userQueries []string
	orgCreates  []string
	userCreates []zendesk.User

	createOrgErr  error
	createUserErr error
	importErrs    map[string]error // keyed by external id
	uploadErr     error
	onImport      func(t *zendesk.TicketImport) error

	imported []*zendesk.TicketImport
	uploaded []string

	nextId int64
}

func (a *fakeApi) id() int64 {
	a.nextId++
	return a.nextId + 9000
}

func (a *fakeApi) AutocompleteOrganizations(_ context.Context, name string) ([]zendesk.Organization, error) {
	a.orgSearches = append(a.orgSearches, name)
	return a.orgsByName[name], nil
}

func (a *fakeApi) CreateOrganization(_ context.Context, name string) (*zendesk.Organization, error) {
	a.orgCreates = append(a.orgCreates, name)
	if a.createOrgErr != nil {
		return nil, a.createOrgErr
	}
	return &zendesk.Organization{Id: a.id(), Name: name}, nil
}

func (a *fakeApi) SearchUsers(_ context.Context, query string) ([]zendesk.User, error) {
	a.userQueries = append(a.userQueries, query)
	return a.usersByQuery[query], nil
}

func (a *fakeApi) CreateUser(_ context.Context, name, email string) (*zendesk.User, error) {
	if a.createUserErr != nil {
		a.userCreates = append(a.userCreates, zendesk.User{Name: name, Email: email})
		return nil, a.createUserErr
	}
	u := zendesk.User{Id: a.id(), Name: name, Email: email}
	a.userCreates = append(a.userCreates, u)
	return &u, nil
}

func (a *fakeApi) Upload(_ context.Context, filename string, body io.Reader) (string, error) {
	if a.uploadErr != nil {
		return "", a.uploadErr
	}
	_, _ = io.ReadAll(body)
	a.uploaded = append(a.uploaded, filename)
	return "token-" + filename, nil
}

func (a *fakeApi) ImportTicket(_ context.Context, t *zendesk.TicketImport) (*zendesk.Ticket, error) {
	if a.onImport != nil {
		if err := a.onImport(t); err != nil {
			return nil, err
		}
	}
	if err, ok := a.importErrs[t.ExternalId]; ok {
		return nil, err
	}
	a.imported = append(a.imported, t)
	return &zendesk.Ticket{Id: a.id(), ExternalId: t.ExternalId}, nil
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		msgs:        make(map[int64][]cerb.Message),
		comments:    make(map[int64][]cerb.Comment),
		attachments: make(map[int64][]cerb.Attachment),
		orgs:        make(map[int64]*cerb.Organization),
		addresses:   make(map[int64]*cerb.Address),
	}
}

func newFakeApi() *fakeApi {
	return &fakeApi{
		orgsByName:   make(map[string][]zendesk.Organization),
		usersByQuery: make(map[string][]zendesk.User),
		importErrs:   make(map[string]error),
	}
}

func newTestClient(store *fakeStore, api *fakeApi, cfg *Config) *Client {
	if cfg == nil {
		cfg = &Config{}
	}

	c := &Client{
		Cfg:   cfg,
		api:   api,
		store: store,
		out:   io.Discard,
	}

	c.orgs = newOrgResolver(store, api)
	c.users = newUserResolver(store, api, cfg.EmailRewrites)
	c.owners = newOwnerResolver(cfg.Agents)
	return c
}

func TestRunIsolatesPerTicketFailures(t *testing.T) {
	store := newFakeStore()
	store.tickets = []cerb.Ticket{
		{Id: 1, Mask: "ABC-11111-111", Subject: "first"},
		{Id: 2, Mask: "ABC-22222-222", Subject: "second"},
		{Id: 3, Mask: "ABC-33333-333", Subject: "third"},
	}

	api := newFakeApi()
	api.importErrs["ABC-22222-222"] = errors.New("rejected")

	c := newTestClient(store, api, nil)
	require.NoError(t, c.Run(context.Background(), 0, 0))

	require.Len(t, api.imported, 2)
	assert.Equal(t, "ABC-11111-111", api.imported[0].ExternalId)
	assert.Equal(t, "ABC-33333-333", api.imported[1].ExternalId)
}

func TestRunResumesAfterId(t *testing.T) {
	store := newFakeStore()
	store.tickets = []cerb.Ticket{
		{Id: 1, Mask: "ABC-11111-111"},
		{Id: 2, Mask: "ABC-22222-222"},
		{Id: 3, Mask: "ABC-33333-333"},
	}

	api := newFakeApi()
	c := newTestClient(store, api, nil)
	require.NoError(t, c.Run(context.Background(), 2, 0))

	require.Len(t, api.imported, 1)
	assert.Equal(t, "ABC-33333-333", api.imported[0].ExternalId)
}

func TestRunHonorsTicketLimit(t *testing.T) {
	store := newFakeStore()
	store.tickets = []cerb.Ticket{
		{Id: 1, Mask: "ABC-11111-111"},
		{Id: 2, Mask: "ABC-22222-222"},
		{Id: 3, Mask: "ABC-33333-333"},
	}

	api := newFakeApi()
	c := newTestClient(store, api, nil)
	require.NoError(t, c.Run(context.Background(), 0, 2))

	assert.Len(t, api.imported, 2)
}

func TestRunResumeHintNamesLastCompletedTicket(t *testing.T) {
	store := newFakeStore()
	store.tickets = []cerb.Ticket{
		{Id: 1, Mask: "ABC-11111-111"},
		{Id: 2, Mask: "ABC-22222-222"},
		{Id: 3, Mask: "ABC-33333-333"},
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	api := newFakeApi()
	api.onImport = func(ti *zendesk.TicketImport) error {
		// Interrupt arrives while ticket 2 is mid-flight; its import never
		// lands, so the resume hint must point at ticket 1.
		if ti.ExternalId == "ABC-22222-222" {
			cancel()
			return ctx.Err()
		}
		return nil
	}

	c := newTestClient(store, api, nil)
	var out bytes.Buffer
	c.out = &out

	require.NoError(t, c.Run(ctx, 0, 0))

	require.Len(t, api.imported, 1)
	assert.Equal(t, "ABC-11111-111", api.imported[0].ExternalId)
	assert.Contains(t, out.String(), "resume with --after 1")
}

func TestRunStopsBetweenTicketsOnCancel(t *testing.T) {
	store := newFakeStore()
	store.tickets = []cerb.Ticket{
		{Id: 1, Mask: "ABC-11111-111"},
		{Id: 2, Mask: "ABC-22222-222"},
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	api := newFakeApi()
	c := newTestClient(store, api, nil)
	require.NoError(t, c.Run(ctx, 0, 0))

	assert.Empty(t, api.imported)
}
