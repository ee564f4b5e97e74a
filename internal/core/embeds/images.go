package embeds

import (
	"context"
	"fmt"
	"log/slog"

	"Skywrite/internal/core/images"
)

// preparedImage is an image that fits the byte budget and is ready to upload
type preparedImage struct {
	mimeType string
	alt      string
	data     []byte
	width    int
	height   int
}

// Images builds an image gallery from up to MaxImages inputs. Every image is
// loaded and reduced before anything is uploaded, so a load or decode error
// fails the whole gallery without leaving orphaned blobs. An image whose
// upload fails is dropped; if none survive, the result is nil with no error.
func (b *Builder) Images(ctx context.Context, inputs []ImageInput) (*ImagesEmbed, error) {
	if len(inputs) == 0 {
		return nil, ErrNoImages
	}
	if len(inputs) > MaxImages {
		slog.Debug("[EMBED] ignoring extra images", "requested", len(inputs), "max", MaxImages)
		inputs = inputs[:MaxImages]
	}

	prepared := make([]*preparedImage, 0, len(inputs))
	for i, input := range inputs {
		p, err := b.prepareImage(ctx, input.Source)
		if err != nil {
			return nil, fmt.Errorf("image %d: %w", i+1, err)
		}
		p.alt = input.Alt
		prepared = append(prepared, p)
	}

	items := make([]ImageItem, 0, len(prepared))
	for i, p := range prepared {
		ref, err := b.blobs.Upload(ctx, p.data, p.mimeType)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			slog.Warn("[EMBED] image upload failed, dropping image",
				"index", i+1,
				"size", len(p.data),
				"error", err,
			)
			continue
		}
		items = append(items, ImageItem{
			Image:       ref,
			Alt:         p.alt,
			AspectRatio: &AspectRatio{Width: p.width, Height: p.height},
		})
	}

	if len(items) == 0 {
		slog.Warn("[EMBED] every image upload failed, posting without images", "requested", len(prepared))
		return nil, nil
	}

	return &ImagesEmbed{Type: ImagesType, Images: items}, nil
}

// prepareImage loads src, reads its dimensions and reduces it to the
// per-image budget. Undecodable images are rejected even when they already
// fit the budget.
func (b *Builder) prepareImage(ctx context.Context, src images.Source) (*preparedImage, error) {
	img, err := b.loader.Load(ctx, src)
	if err != nil {
		return nil, err
	}

	width, height, err := images.Dimensions(img.Data)
	if err != nil {
		return nil, err
	}

	reduced, err := b.reducer.Reduce(img.Data, b.maxImageBytes)
	if err != nil {
		return nil, err
	}
	if len(reduced) > b.maxImageBytes {
		return nil, fmt.Errorf("%w: %d bytes, budget %d", ErrImageOverBudget, len(reduced), b.maxImageBytes)
	}

	mimeType := img.MimeType
	if len(img.Data) > b.maxImageBytes {
		mimeType = "image/jpeg"
		slog.Debug("[EMBED] image reduced",
			"original_size", len(img.Data),
			"reduced_size", len(reduced),
		)
	}

	return &preparedImage{
		data:     reduced,
		mimeType: mimeType,
		width:    width,
		height:   height,
	}, nil
}
