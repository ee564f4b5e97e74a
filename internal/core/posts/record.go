package posts

import (
	"time"

	"Skywrite/internal/core/embeds"
	"Skywrite/internal/core/richtext"
)

const (
	// PostCollection is the collection and record type of a post
	PostCollection = "app.bsky.feed.post"

	// createdAtLayout is ISO-8601 in UTC with millisecond precision
	createdAtLayout = "2006-01-02T15:04:05.000Z"
)

// StrongRef points at a specific version of a record
// Matches com.atproto.repo.strongRef
type StrongRef struct {
	URI string `json:"uri"`
	CID string `json:"cid"`
}

// ReplyRef places a post in a thread
// Matches app.bsky.feed.post#replyRef
type ReplyRef struct {
	Root   StrongRef `json:"root"`
	Parent StrongRef `json:"parent"`
}

// PostRecord is the app.bsky.feed.post record written to the PDS
type PostRecord struct {
	Embed     embeds.Embed     `json:"embed,omitempty"`
	Reply     *ReplyRef        `json:"reply,omitempty"`
	Type      string           `json:"$type"`
	Text      string           `json:"text"`
	CreatedAt string           `json:"createdAt"`
	Facets    []richtext.Facet `json:"facets"`
	Langs     []string         `json:"langs,omitempty"`
}

// CreatePostRequest is the input for creating a post. At most one of
// ExternalURL, Images and Video may be set.
type CreatePostRequest struct {
	Video       *embeds.VideoInput
	Text        string
	ExternalURL string
	ReplyTo     string // bsky.app post URL or at:// URI
	Images      []embeds.ImageInput
	Langs       []string
}

// CreatePostResponse identifies the created post
type CreatePostResponse struct {
	Record *PostRecord `json:"-"`
	URI    string      `json:"uri"` // AT-URI of created post
	CID    string      `json:"cid"` // CID of created post
}

// AssembleRecord builds the post record. facets is never serialized as null
// and a nil embed or reply is left out entirely.
func AssembleRecord(text string, facets []richtext.Facet, embed embeds.Embed, reply *ReplyRef, createdAt time.Time) PostRecord {
	if facets == nil {
		facets = []richtext.Facet{}
	}
	return PostRecord{
		Type:      PostCollection,
		Text:      text,
		CreatedAt: FormatCreatedAt(createdAt),
		Facets:    facets,
		Embed:     embed,
		Reply:     reply,
	}
}

// FormatCreatedAt renders t the way post records expect it
func FormatCreatedAt(t time.Time) string {
	return t.UTC().Format(createdAtLayout)
}
