package embeds

import (
	"context"
	"fmt"
	"log/slog"

	"Skywrite/internal/core/blobs"
	"Skywrite/internal/core/images"
)

// External builds a link card for url from the page's Open Graph tags.
// Failing to fetch the page is fatal, and so is an og:image that cannot be
// loaded, decoded or uploaded. Pages without og:image get a card with no thumb.
func (b *Builder) External(ctx context.Context, url string) (*ExternalEmbed, error) {
	card, err := b.unfurl.Unfurl(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to unfurl %s: %w", url, err)
	}

	embed := &ExternalEmbed{
		Type: ExternalType,
		External: ExternalCard{
			URI:         card.URI,
			Title:       card.Title,
			Description: card.Description,
		},
	}

	if card.HasImage() {
		thumb, err := b.thumbnail(ctx, card.ImageURL)
		if err != nil {
			return nil, fmt.Errorf("failed to attach thumbnail %s for %s: %w", card.ImageURL, card.Domain, err)
		}
		embed.External.Thumb = thumb
	}

	slog.Debug("[EMBED] link card built",
		"domain", card.Domain,
		"has_title", card.Title != "",
		"has_thumb", embed.External.Thumb != nil,
	)

	return embed, nil
}

func (b *Builder) thumbnail(ctx context.Context, imageURL string) (*blobs.BlobRef, error) {
	prepared, err := b.prepareImage(ctx, images.Source{URL: imageURL})
	if err != nil {
		return nil, err
	}
	return b.blobs.Upload(ctx, prepared.data, prepared.mimeType)
}
