package migration

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/inex/cerb5-to-zendesk/internal/cerb"
	"github.com/inex/cerb5-to-zendesk/internal/zendesk"
)

// resolution is the memoized outcome of a find-or-create attempt. The tagged
// state keeps "the legacy side has no such entity" distinguishable from "the
// remote create was attempted and failed"; both degrade to a nil id at the
// call site, but only the latter is worth an operator's attention.
type resolutionState int

const (
	stateResolved resolutionState = iota
	stateUnresolved
	stateCreateFailed
)

type resolution struct {
	state resolutionState
	id    int64
}

func (r resolution) idPtr() *int64 {
	if r.state != stateResolved {
		return nil
	}

	id := r.id
	return &id
}

type orgLookup interface {
	OrganizationById(ctx context.Context, id int64) (*cerb.Organization, error)
}

type orgDirectory interface {
	AutocompleteOrganizations(ctx context.Context, name string) ([]zendesk.Organization, error)
	CreateOrganization(ctx context.Context, name string) (*zendesk.Organization, error)
}

// orgResolver maps Cerb5 organization ids onto Zendesk organizations,
// creating them on first encounter. Once an id is resolved (including to
// "no organization"), the cache is authoritative for the rest of the run, so
// each distinct organization costs at most one search-or-create sequence no
// matter how many tickets reference it. Not safe for concurrent use.
type orgResolver struct {
	store orgLookup
	api   orgDirectory
	cache map[int64]resolution
}

func newOrgResolver(store orgLookup, api orgDirectory) *orgResolver {
	return &orgResolver{
		store: store,
		api:   api,
		cache: make(map[int64]resolution),
	}
}

// Resolve returns the Zendesk organization id for a Cerb5 organization id, or
// nil when there is none and one could not be created. Resolution failures
// never propagate - a ticket without an organization still migrates.
func (r *orgResolver) Resolve(ctx context.Context, orgId int64) *int64 {
	if orgId == 0 {
		return nil
	}

	if res, ok := r.cache[orgId]; ok {
		return res.idPtr()
	}

	org, err := r.store.OrganizationById(ctx, orgId)
	if err != nil {
		if !errors.Is(err, cerb.ErrNotFound) {
			slog.Warn("looking up cerb organization", "orgId", orgId, "error", err)
		}
		r.cache[orgId] = resolution{state: stateUnresolved}
		return nil
	}

	zdOrgs, err := r.api.AutocompleteOrganizations(ctx, org.Name)
	if err != nil {
		slog.Error("searching zendesk organizations", "name", org.Name, "error", err)
		r.cache[orgId] = resolution{state: stateCreateFailed}
		return nil
	}

	for _, zdOrg := range zdOrgs {
		if strings.EqualFold(strings.TrimSpace(zdOrg.Name), strings.TrimSpace(org.Name)) {
			res := resolution{state: stateResolved, id: zdOrg.Id}
			r.cache[orgId] = res
			return res.idPtr()
		}
	}

	created, err := r.api.CreateOrganization(ctx, org.Name)
	if err != nil {
		slog.Error("could not create organization on zendesk", "name", org.Name, "error", err)
		r.cache[orgId] = resolution{state: stateCreateFailed}
		return nil
	}

	res := resolution{state: stateResolved, id: created.Id}
	r.cache[orgId] = res
	return res.idPtr()
}

type addressLookup interface {
	AddressById(ctx context.Context, id int64) (*cerb.Address, error)
}

type userDirectory interface {
	SearchUsers(ctx context.Context, query string) ([]zendesk.User, error)
	CreateUser(ctx context.Context, name, email string) (*zendesk.User, error)
}

// userResolver maps Cerb5 address ids onto Zendesk users, creating them on
// first encounter. Same caching contract as orgResolver. Addresses with
// malformed emails are unresolvable; known-reserved inbound addresses are
// rewritten before validation because Zendesk refuses to create a user
// matching one of its own inbound mail addresses.
type userResolver struct {
	store    addressLookup
	api      userDirectory
	validate *validator.Validate
	rewrites map[string]string
	cache    map[int64]resolution
}

func newUserResolver(store addressLookup, api userDirectory, rewrites map[string]string) *userResolver {
	return &userResolver{
		store:    store,
		api:      api,
		validate: validator.New(),
		rewrites: rewrites,
		cache:    make(map[int64]resolution),
	}
}

// Resolve returns the Zendesk user id for a Cerb5 address id, or nil when the
// address is absent, invalid, or could not be created remotely. A nil result
// means the comment or ticket carries no author rather than failing.
func (r *userResolver) Resolve(ctx context.Context, addressId int64) *int64 {
	if addressId == 0 {
		return nil
	}

	if res, ok := r.cache[addressId]; ok {
		return res.idPtr()
	}

	address, err := r.store.AddressById(ctx, addressId)
	if err != nil {
		if !errors.Is(err, cerb.ErrNotFound) {
			slog.Warn("looking up cerb address", "addressId", addressId, "error", err)
		}
		r.cache[addressId] = resolution{state: stateUnresolved}
		return nil
	}

	email := address.Email
	if rewritten, ok := r.rewrites[email]; ok {
		email = rewritten
	}

	if err := r.validate.Var(email, "required,email"); err != nil {
		slog.Debug("skipping address with invalid email", "addressId", addressId, "email", email)
		r.cache[addressId] = resolution{state: stateUnresolved}
		return nil
	}

	// the search is fuzzy so candidates still need an exact email check
	zdUsers, err := r.api.SearchUsers(ctx, email)
	if err != nil {
		slog.Error("searching zendesk users", "email", email, "error", err)
		r.cache[addressId] = resolution{state: stateCreateFailed}
		return nil
	}

	for _, zdUser := range zdUsers {
		if strings.EqualFold(zdUser.Email, email) {
			res := resolution{state: stateResolved, id: zdUser.Id}
			r.cache[addressId] = res
			return res.idPtr()
		}
	}

	name := strings.TrimSpace(address.FirstName + " " + address.LastName)
	if name == "" {
		name = email
	}

	created, err := r.api.CreateUser(ctx, name, email)
	if err != nil {
		slog.Error("could not create user on zendesk", "email", email, "error", err)
		r.cache[addressId] = resolution{state: stateCreateFailed}
		return nil
	}

	res := resolution{state: stateResolved, id: created.Id}
	r.cache[addressId] = res
	return res.idPtr()
}

// ownerResolver maps Cerb5 worker (agent) ids onto Zendesk user ids through
// the hand-maintained agents table in the config file. There are only ever a
// handful of agents, so no remote lookups - an unmapped owner simply resolves
// to no assignee.
type ownerResolver struct {
	mapping map[int64]int64
}

func newOwnerResolver(agents []Agent) *ownerResolver {
	mapping := make(map[int64]int64, len(agents))
	for _, a := range agents {
		mapping[a.CerbWorkerId] = a.ZendeskUserId
	}

	return &ownerResolver{mapping: mapping}
}

func (r *ownerResolver) Resolve(workerId int64) *int64 {
	if id, ok := r.mapping[workerId]; ok {
		return &id
	}

	return nil
}
