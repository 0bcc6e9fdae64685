package zendesk

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The import endpoint rejects explicit null author/requester ids, so the
// pointer fields must disappear from the payload entirely when unresolved.
func TestTicketImportOmitsUnresolvedIds(t *testing.T) {
	ti := &TicketImport{
		Subject:    "ancient history",
		ExternalId: "ABC-12345-678",
		CreatedAt:  "2019-06-01T12:00:00Z",
		UpdatedAt:  "2019-06-02T09:30:00Z",
		Status:     "closed",
		Comments: []TicketComment{
			{Public: true, Value: "hello", CreatedAt: "2019-06-01T12:00:00Z"},
		},
	}

	data, err := json.Marshal(ti)
	require.NoError(t, err)

	var m map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &m))

	assert.NotContains(t, m, "requester_id")
	assert.NotContains(t, m, "submitter_id")
	assert.NotContains(t, m, "assignee_id")
	assert.Equal(t, "ABC-12345-678", m["external_id"])

	comments, ok := m["comments"].([]interface{})
	require.True(t, ok)
	require.Len(t, comments, 1)

	comment := comments[0].(map[string]interface{})
	assert.NotContains(t, comment, "author_id")
	assert.NotContains(t, comment, "uploads")
	assert.Equal(t, true, comment["public"])
}

func TestTicketCommentIncludesUploadsWhenPresent(t *testing.T) {
	c := TicketComment{
		Public:    true,
		Value:     "see attached",
		CreatedAt: "2019-06-01T12:00:00Z",
		Uploads:   []string{"tok1", "tok2"},
	}

	data, err := json.Marshal(c)
	require.NoError(t, err)

	var m map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &m))

	uploads, ok := m["uploads"].([]interface{})
	require.True(t, ok)
	assert.Len(t, uploads, 2)
}
