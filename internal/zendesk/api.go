package zendesk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"
)

const (
	zendeskApiUrl = "zendesk.com/api/v2"
)

type Client struct {
	creds      Creds
	baseUrl    string
	httpClient *http.Client
	throttle   *Throttle
}

type Creds struct {
	Token     string `mapstructure:"token" json:"token"`
	Username  string `mapstructure:"username" json:"username"`
	Subdomain string `mapstructure:"subdomain" json:"subdomain"`
}

// NewClient builds a Zendesk API client. Every request made through it is
// gated by the given throttle, so callers never pace themselves.
func NewClient(creds Creds, httpClient *http.Client, throttle *Throttle) *Client {
	creds.Username = fmt.Sprintf("%s/token", creds.Username)
	return &Client{
		creds:      creds,
		baseUrl:    fmt.Sprintf("https://%s.%s", creds.Subdomain, zendeskApiUrl),
		httpClient: httpClient,
		throttle:   throttle,
	}
}

func (c *Client) ConnectionTest(ctx context.Context) error {
	url := fmt.Sprintf("%s/users?page[size]=1", c.baseUrl)

	var u struct {
		Users []User `json:"users"`
	}
	if err := c.apiRequest(ctx, "GET", url, "application/json", nil, &u); err != nil {
		return err
	}

	return nil
}

// ApiRequest is a wrapper for apiRequest, meant for more streamlined error logging.
func (c *Client) ApiRequest(ctx context.Context, method, url string, body []byte, target interface{}) error {
	if err := c.apiRequest(ctx, method, url, "application/json", body, target); err != nil {
		slog.Warn("Zendesk API Error", "error", err)
		return fmt.Errorf("running Zendesk API request: %w", err)
	}

	return nil
}

// apiRequest takes the body as bytes rather than a reader so the retry loop
// can rebuild a fresh reader per attempt; a reader would be drained by the
// first attempt and every retried POST would go out empty.
func (c *Client) apiRequest(ctx context.Context, method, url, contentType string, body []byte, target interface{}) error {
	const maxRetries = 3
	var retryAfter int

	for attempt := 0; attempt <= maxRetries; attempt++ {
		c.throttle.Wait()

		var reader io.Reader
		if body != nil {
			reader = bytes.NewReader(body)
		}

		req, err := http.NewRequestWithContext(ctx, method, url, reader)
		if err != nil {
			return fmt.Errorf("an error occured creating the request: %w", err)
		}

		req.Header.Set("Content-Type", contentType)
		req.SetBasicAuth(c.creds.Username, c.creds.Token)

		res, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("an error occured sending the request: %w", err)
		}

		if res.StatusCode == http.StatusOK || res.StatusCode == http.StatusCreated {
			data, err := io.ReadAll(res.Body)
			if err != nil {
				return fmt.Errorf("an error occured reading the response body: %w", err)
			}

			if err := res.Body.Close(); err != nil {
				return fmt.Errorf("an error occured closing the response body: %w", err)
			}

			if target != nil {
				if err := json.Unmarshal(data, target); err != nil {
					return fmt.Errorf("an error occured unmarshaling the response to JSON: %w", err)
				}
			}

			return nil
		}

		if res.StatusCode != http.StatusTooManyRequests {
			data, _ := io.ReadAll(res.Body)
			slog.Warn("zendesk API request failed", "statusCode", res.StatusCode, "body", string(data))
			if err := res.Body.Close(); err != nil {
				return fmt.Errorf("an error occured closing the response body: %w", err)
			}
			return fmt.Errorf("zendesk API request failed with status %d", res.StatusCode)
		}

		retryAfterHeader := res.Header.Get("Retry-After")
		if retryAfterHeader != "" {
			retryAfter, err = strconv.Atoi(retryAfterHeader)
			if err != nil {
				slog.Warn("failed to parse Retry-After header", "error", err)
				retryAfter = 1
			}
		} else {
			retryAfter = 1
		}

		slog.Warn("rate limit exceeded, retrying", "retryAfter", retryAfter)

		if err := res.Body.Close(); err != nil {
			return fmt.Errorf("an error occured closing the response body: %w", err)
		}
		time.Sleep(time.Duration(retryAfter) * time.Second)
	}

	return fmt.Errorf("max retries exceeded")
}
