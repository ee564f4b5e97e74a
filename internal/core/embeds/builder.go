// Package embeds builds the media attachments of a post: external link
// cards, image galleries and videos.
//
// Failure handling differs per kind. A page that cannot be fetched, an image
// that cannot be decoded and any video failure abort the embed. An image
// whose upload fails is dropped from the gallery; a gallery with nothing left
// is reported as a nil embed.
package embeds

import (
	"context"

	"Skywrite/internal/core/blobs"
	"Skywrite/internal/core/images"
	"Skywrite/internal/core/unfurl"
	"Skywrite/internal/core/video"
)

const (
	// MaxImages is the most images a post may carry. Extra inputs are ignored.
	MaxImages = 4

	// DefaultMaxImageBytes is the per-image byte budget
	DefaultMaxImageBytes = 1_000_000

	// DefaultMaxVideoBytes is the largest video accepted for upload
	DefaultMaxVideoBytes = 100 * 1024 * 1024

	defaultVideoContentType = "video/mp4"
)

// ImageLoader reads an image source into memory. *images.Loader satisfies it.
type ImageLoader interface {
	Load(ctx context.Context, src images.Source) (*images.Image, error)
}

// ImageReducer shrinks encoded images to a byte budget. *images.Reducer
// satisfies it.
type ImageReducer interface {
	Reduce(data []byte, maxBytes int) ([]byte, error)
}

// VideoProcessor uploads a video and waits for it to finish processing.
// *video.Poller satisfies it.
type VideoProcessor interface {
	Process(ctx context.Context, data []byte, contentType string) (*blobs.BlobRef, error)
}

// ImageInput is one requested image
type ImageInput struct {
	Source images.Source
	Alt    string
}

// VideoInput is the requested video. Exactly one of Path or Data must be set.
type VideoInput struct {
	Path        string
	ContentType string // defaults to video/mp4
	Alt         string
	Data        []byte
}

// Config wires the builder's collaborators. Videos and Prober may be nil, in
// which case Video returns ErrVideoUnavailable.
type Config struct {
	Unfurl        unfurl.Service
	Loader        ImageLoader
	Reducer       ImageReducer
	Blobs         blobs.Service
	Videos        VideoProcessor
	Prober        video.Prober
	MaxImageBytes int
	MaxVideoBytes int
}

// Builder turns attachment requests into post embeds
type Builder struct {
	unfurl        unfurl.Service
	loader        ImageLoader
	reducer       ImageReducer
	blobs         blobs.Service
	videos        VideoProcessor
	prober        video.Prober
	maxImageBytes int
	maxVideoBytes int
}

// NewBuilder creates a Builder. Zero byte limits use the defaults.
func NewBuilder(cfg Config) *Builder {
	if cfg.MaxImageBytes <= 0 {
		cfg.MaxImageBytes = DefaultMaxImageBytes
	}
	if cfg.MaxVideoBytes <= 0 {
		cfg.MaxVideoBytes = DefaultMaxVideoBytes
	}
	return &Builder{
		unfurl:        cfg.Unfurl,
		loader:        cfg.Loader,
		reducer:       cfg.Reducer,
		blobs:         cfg.Blobs,
		videos:        cfg.Videos,
		prober:        cfg.Prober,
		maxImageBytes: cfg.MaxImageBytes,
		maxVideoBytes: cfg.MaxVideoBytes,
	}
}
