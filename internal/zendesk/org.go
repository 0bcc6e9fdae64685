package zendesk

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
)

type Organization struct {
	Id         int64       `json:"id"`
	Name       string      `json:"name"`
	ExternalId interface{} `json:"external_id"`
	Details    string      `json:"details"`
	Notes      string      `json:"notes"`
}

type OrganizationsResp struct {
	Organizations []Organization `json:"organizations"`
}

type OrganizationResp struct {
	Organization Organization `json:"organization"`
}

// AutocompleteOrganizations returns organizations whose names begin with the
// given name. The match is advisory - callers must still compare names
// exactly before treating a result as the same organization.
func (c *Client) AutocompleteOrganizations(ctx context.Context, name string) ([]Organization, error) {
	slog.Debug("zendesk.Client.AutocompleteOrganizations called", "name", name)
	u := fmt.Sprintf("%s/organizations/autocomplete.json?name=%s", c.baseUrl, url.QueryEscape(name))

	r := &OrganizationsResp{}
	if err := c.ApiRequest(ctx, "GET", u, nil, &r); err != nil {
		return nil, fmt.Errorf("an error occured searching organizations: %w", err)
	}

	return r.Organizations, nil
}

func (c *Client) CreateOrganization(ctx context.Context, name string) (*Organization, error) {
	slog.Debug("zendesk.Client.CreateOrganization called", "name", name)
	u := fmt.Sprintf("%s/organizations.json", c.baseUrl)

	b := struct {
		Organization Organization `json:"organization"`
	}{
		Organization: Organization{Name: name},
	}

	jsonBytes, err := json.Marshal(b)
	if err != nil {
		return nil, fmt.Errorf("marshaling organization to json: %w", err)
	}

	r := &OrganizationResp{}
	if err := c.ApiRequest(ctx, "POST", u, jsonBytes, &r); err != nil {
		return nil, fmt.Errorf("an error occured creating the organization: %w", err)
	}

	return &r.Organization, nil
}
