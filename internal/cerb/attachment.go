package cerb

import (
	"context"
	"fmt"
)

// Cerb5 stores the raw inbound email alongside real attachments; it has no
// business being re-uploaded.
const originalMessageName = "original_message.html"

type Attachment struct {
	Id         int64
	Name       string
	StorageKey string
}

func (s *Store) AttachmentsForMessage(ctx context.Context, messageId int64) ([]Attachment, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT a.id, a.display_name, a.storage_key
		FROM attachment a
			LEFT JOIN attachment_link al ON a.id = al.attachment_id
		WHERE al.context = ?
			AND a.display_name != ?
			AND al.context_id = ?
	`, messageContext, originalMessageName, messageId)
	if err != nil {
		return nil, fmt.Errorf("querying attachments for message %d: %w", messageId, err)
	}
	defer func() { _ = rows.Close() }()

	var attachments []Attachment
	for rows.Next() {
		var a Attachment
		if err := rows.Scan(&a.Id, &a.Name, &a.StorageKey); err != nil {
			return nil, fmt.Errorf("scanning attachment: %w", err)
		}
		attachments = append(attachments, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating attachments: %w", err)
	}

	return attachments, nil
}
