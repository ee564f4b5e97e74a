package embeds

import "Skywrite/internal/core/blobs"

// Lexicon type identifiers for the embeds a post can carry
const (
	ExternalType = "app.bsky.embed.external"
	ImagesType   = "app.bsky.embed.images"
	VideoType    = "app.bsky.embed.video"
)

// Embed is one of ExternalEmbed, ImagesEmbed or VideoEmbed.
type Embed interface {
	EmbedType() string
}

// AspectRatio is the pixel width and height of a media item
type AspectRatio struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// ExternalEmbed is an app.bsky.embed.external link card
type ExternalEmbed struct {
	Type     string       `json:"$type"`
	External ExternalCard `json:"external"`
}

// ExternalCard is the card payload of an external embed. Title and
// Description are always present, possibly empty.
type ExternalCard struct {
	Thumb       *blobs.BlobRef `json:"thumb,omitempty"`
	URI         string         `json:"uri"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
}

// ImagesEmbed is an app.bsky.embed.images gallery of one to four images
type ImagesEmbed struct {
	Type   string      `json:"$type"`
	Images []ImageItem `json:"images"`
}

// ImageItem is a single uploaded image
type ImageItem struct {
	Image       *blobs.BlobRef `json:"image"`
	AspectRatio *AspectRatio   `json:"aspectRatio,omitempty"`
	Alt         string         `json:"alt"`
}

// VideoEmbed is an app.bsky.embed.video attachment
type VideoEmbed struct {
	Video       *blobs.BlobRef `json:"video"`
	AspectRatio *AspectRatio   `json:"aspectRatio,omitempty"`
	Type        string         `json:"$type"`
	Alt         string         `json:"alt,omitempty"`
}

// EmbedType returns the lexicon type
func (e *ExternalEmbed) EmbedType() string { return ExternalType }

// EmbedType returns the lexicon type
func (e *ImagesEmbed) EmbedType() string { return ImagesType }

// EmbedType returns the lexicon type
func (e *VideoEmbed) EmbedType() string { return VideoType }
