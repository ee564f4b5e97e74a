package posts

import (
	"context"

	"Skywrite/internal/atproto/pds"
	"Skywrite/internal/core/embeds"
	"Skywrite/internal/core/richtext"
)

// Service defines the business logic interface for posts
type Service interface {
	// CreatePost creates a new post in the session account's repository
	// Flow: Validate -> Resolve reply -> Build embed -> Extract facets -> Write to PDS
	CreatePost(ctx context.Context, req CreatePostRequest) (*CreatePostResponse, error)
}

// RecordStore reads and writes repository records. pds.Client satisfies it.
type RecordStore interface {
	CreateRecord(ctx context.Context, collection string, rkey string, record any) (uri string, cid string, err error)
	GetRecord(ctx context.Context, repo string, collection string, rkey string) (*pds.RecordResponse, error)
}

// FacetExtractor annotates post text. *richtext.Extractor satisfies it.
type FacetExtractor interface {
	ExtractFacets(ctx context.Context, text string) []richtext.Facet
}

// EmbedBuilder builds post attachments. *embeds.Builder satisfies it.
type EmbedBuilder interface {
	External(ctx context.Context, url string) (*embeds.ExternalEmbed, error)
	Images(ctx context.Context, inputs []embeds.ImageInput) (*embeds.ImagesEmbed, error)
	Video(ctx context.Context, input embeds.VideoInput) (*embeds.VideoEmbed, error)
}
