package posts

import (
	"encoding/json"
	"testing"
	"time"

	"Skywrite/internal/core/embeds"
	"Skywrite/internal/core/richtext"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssembleRecord_MinimalShape(t *testing.T) {
	createdAt := time.Date(2024, 3, 1, 12, 30, 45, 123456789, time.UTC)

	record := AssembleRecord("hello", nil, nil, nil, createdAt)
	data, err := json.Marshal(record)
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"$type": "app.bsky.feed.post",
		"text": "hello",
		"createdAt": "2024-03-01T12:30:45.123Z",
		"facets": []
	}`, string(data))
}

func TestAssembleRecord_WithFacetsEmbedAndReply(t *testing.T) {
	createdAt := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	facets := []richtext.Facet{richtext.NewTag(richtext.ByteSlice{ByteStart: 0, ByteEnd: 3}, "go")}
	embed := &embeds.ExternalEmbed{
		Type:     embeds.ExternalType,
		External: embeds.ExternalCard{URI: "https://example.com/"},
	}
	reply := &ReplyRef{
		Root:   StrongRef{URI: "at://did:plc:a/app.bsky.feed.post/1", CID: "cid1"},
		Parent: StrongRef{URI: "at://did:plc:b/app.bsky.feed.post/2", CID: "cid2"},
	}

	record := AssembleRecord("#go", facets, embed, reply, createdAt)
	data, err := json.Marshal(record)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.Equal(t, "app.bsky.feed.post", decoded["$type"])
	assert.Equal(t, "2024-03-01T12:00:00.000Z", decoded["createdAt"])
	assert.Len(t, decoded["facets"], 1)

	embedJSON := decoded["embed"].(map[string]any)
	assert.Equal(t, "app.bsky.embed.external", embedJSON["$type"])

	replyJSON := decoded["reply"].(map[string]any)
	assert.Equal(t, "cid1", replyJSON["root"].(map[string]any)["cid"])
	assert.Equal(t, "cid2", replyJSON["parent"].(map[string]any)["cid"])
}

func TestFormatCreatedAt_ConvertsToUTC(t *testing.T) {
	zone := time.FixedZone("UTC+9", 9*60*60)
	ts := time.Date(2024, 1, 1, 9, 0, 0, 5_000_000, zone)

	assert.Equal(t, "2024-01-01T00:00:00.005Z", FormatCreatedAt(ts))
}
