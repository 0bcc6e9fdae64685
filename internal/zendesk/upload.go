package zendesk

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/url"
)

type UploadResp struct {
	Upload struct {
		Token string `json:"token"`
	} `json:"upload"`
}

// Upload sends a single attachment to Zendesk and returns the upload token
// to reference from a ticket comment. The body is read fully up front so the
// request survives a rate-limit retry.
func (c *Client) Upload(ctx context.Context, filename string, body io.Reader) (string, error) {
	slog.Debug("zendesk.Client.Upload called", "filename", filename)
	u := fmt.Sprintf("%s/uploads.json?filename=%s", c.baseUrl, url.QueryEscape(filename))

	data, err := io.ReadAll(body)
	if err != nil {
		return "", fmt.Errorf("an error occured reading the attachment: %w", err)
	}

	r := &UploadResp{}
	if err := c.apiRequest(ctx, "POST", u, "application/binary", data, &r); err != nil {
		slog.Warn("Zendesk API Error", "error", err)
		return "", fmt.Errorf("an error occured uploading the attachment: %w", err)
	}

	return r.Upload.Token, nil
}
