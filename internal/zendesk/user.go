package zendesk

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
)

type UsersResp struct {
	Users []User `json:"users"`
}

type UserResp struct {
	User User `json:"user"`
}

type User struct {
	Id    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role,omitempty"`
}

// SearchUsers runs Zendesk's fuzzy user search for the given query, typically
// an email address. Results are broad - callers must verify candidates by
// exact field comparison before using them.
func (c *Client) SearchUsers(ctx context.Context, query string) ([]User, error) {
	slog.Debug("zendesk.Client.SearchUsers called", "query", query)
	u := fmt.Sprintf("%s/users/search.json?query=%s", c.baseUrl, url.QueryEscape(query))

	r := &UsersResp{}
	if err := c.ApiRequest(ctx, "GET", u, nil, &r); err != nil {
		return nil, fmt.Errorf("an error occured searching users: %w", err)
	}

	return r.Users, nil
}

func (c *Client) CreateUser(ctx context.Context, name, email string) (*User, error) {
	slog.Debug("zendesk.Client.CreateUser called", "name", name, "email", email)
	u := fmt.Sprintf("%s/users.json", c.baseUrl)

	b := struct {
		User User `json:"user"`
	}{
		User: User{Name: name, Email: email},
	}

	jsonBytes, err := json.Marshal(b)
	if err != nil {
		return nil, fmt.Errorf("marshaling user to json: %w", err)
	}

	r := &UserResp{}
	if err := c.ApiRequest(ctx, "POST", u, jsonBytes, &r); err != nil {
		return nil, fmt.Errorf("an error occured creating the user: %w", err)
	}

	return &r.User, nil
}
