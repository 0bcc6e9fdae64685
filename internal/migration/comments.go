package migration

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/inex/cerb5-to-zendesk/internal/cerb"
	"github.com/inex/cerb5-to-zendesk/internal/zendesk"
)

// buildComments produces the migrated ticket's comment list: messages become
// public comments in chronological order, then all private comments in
// chronological order. The two groups are deliberately not interleaved by
// timestamp; the migrated history reads as the full public thread followed by
// the agents' private notes.
func (c *Client) buildComments(ctx context.Context, msgs []cerb.Message, comments []cerb.Comment) []zendesk.TicketComment {
	var out []zendesk.TicketComment

	for _, m := range msgs {
		// zendesk rejects blank comment bodies
		if strings.TrimSpace(m.Body) == "" {
			continue
		}

		comment := zendesk.TicketComment{
			AuthorId:  c.users.Resolve(ctx, m.AddressId),
			Public:    true,
			Value:     m.Body,
			CreatedAt: normalizeTimestamp(m.Created),
		}

		if tokens := c.uploadAttachments(ctx, m.Id); len(tokens) > 0 {
			comment.Uploads = tokens
		}

		out = append(out, comment)
	}

	for _, cm := range comments {
		if strings.TrimSpace(cm.Body) == "" {
			continue
		}

		// private comment authors are agents, so they resolve through the
		// static owner table rather than the user directory
		out = append(out, zendesk.TicketComment{
			AuthorId:  c.owners.Resolve(cm.AddressId),
			Public:    false,
			Value:     cm.Body,
			CreatedAt: normalizeTimestamp(cm.Created),
		})
	}

	return out
}

// uploadAttachments uploads a message's attachments and returns the Zendesk
// upload tokens. A missing file or rejected upload is reported and skipped;
// the comment still migrates without that attachment.
func (c *Client) uploadAttachments(ctx context.Context, messageId int64) []string {
	attachments, err := c.store.AttachmentsForMessage(ctx, messageId)
	if err != nil {
		slog.Error("loading attachments", "messageId", messageId, "error", err)
		return nil
	}

	var tokens []string
	for _, a := range attachments {
		path := filepath.Join(c.Cfg.Cerb.StoragePath, "attachments", a.StorageKey)

		f, err := os.Open(path)
		if err != nil {
			slog.Error("could not find attachment", "path", path, "error", err)
			fmt.Fprintf(os.Stderr, "could not find attachment: %s\n", path)
			continue
		}

		token, err := c.api.Upload(ctx, a.Name, f)
		_ = f.Close()
		if err != nil {
			slog.Error("could not upload attachment", "path", path, "error", err)
			fmt.Fprintf(os.Stderr, "could not upload %s\n", path)
			continue
		}

		tokens = append(tokens, token)
	}

	return tokens
}
