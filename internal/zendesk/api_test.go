package zendesk

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestApiClient(srv *httptest.Server) *Client {
	c := NewClient(Creds{
		Token:     "token",
		Username:  "user@example.com",
		Subdomain: "example",
	}, srv.Client(), NewThrottle(0))
	c.baseUrl = srv.URL
	return c
}

func TestApiRequestResendsBodyAfterRateLimit(t *testing.T) {
	var bodies []string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		bodies = append(bodies, string(data))

		if len(bodies) == 1 {
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}

		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"organization":{"id":42,"name":"Acme"}}`))
	}))
	defer srv.Close()

	c := newTestApiClient(srv)

	org, err := c.CreateOrganization(context.Background(), "Acme")
	require.NoError(t, err)
	require.NotNil(t, org)
	assert.Equal(t, int64(42), org.Id)

	require.Len(t, bodies, 2)
	assert.NotEmpty(t, bodies[0])
	assert.Equal(t, bodies[0], bodies[1], "retried request should carry the same body as the first attempt")
}

func TestApiRequestGivesUpAfterMaxRetries(t *testing.T) {
	var hits int

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.Header().Set("Retry-After", "0")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := newTestApiClient(srv)

	err := c.apiRequest(context.Background(), "GET", srv.URL+"/tickets.json", "application/json", nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "max retries")
	assert.Equal(t, 4, hits)
}

func TestApiRequestDoesNotRetryOtherFailures(t *testing.T) {
	var hits int

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"error":"RecordInvalid"}`))
	}))
	defer srv.Close()

	c := newTestApiClient(srv)

	err := c.apiRequest(context.Background(), "POST", srv.URL+"/organizations.json", "application/json", []byte(`{}`), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "422")
	assert.Equal(t, 1, hits)
}
