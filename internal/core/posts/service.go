// Package posts assembles app.bsky.feed.post records and writes them to the
// session account's repository.
package posts

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"Skywrite/internal/core/embeds"
	"Skywrite/internal/core/richtext"

	"github.com/rivo/uniseg"
)

// Post text limits from the app.bsky.feed.post lexicon
const (
	maxTextGraphemes = 300
	maxTextBytes     = 3000
)

type postService struct {
	store    RecordStore
	facets   FacetExtractor
	embeds   EmbedBuilder
	resolver richtext.HandleResolver
	now      func() time.Time
}

// Option configures the post service
type Option func(*postService)

// WithClock overrides the clock used for createdAt
func WithClock(now func() time.Time) Option {
	return func(s *postService) {
		s.now = now
	}
}

// NewPostService creates a new post service
// embedBuilder and resolver can be nil; attachments and replies to handles
// are then rejected
func NewPostService(
	store RecordStore,
	facets FacetExtractor,
	embedBuilder EmbedBuilder, // Optional: can be nil
	resolver richtext.HandleResolver, // Optional: can be nil
	opts ...Option,
) Service {
	s := &postService{
		store:    store,
		facets:   facets,
		embeds:   embedBuilder,
		resolver: resolver,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreatePost creates a new post
// Flow:
// 1. Validate input
// 2. Resolve the reply target (before any upload, so a bad target costs nothing)
// 3. Build the embed
// 4. Extract facets
// 5. Assemble the record and write it to the PDS
func (s *postService) CreatePost(ctx context.Context, req CreatePostRequest) (*CreatePostResponse, error) {
	// 1. Validate basic input
	if err := s.validateCreateRequest(req); err != nil {
		return nil, err
	}

	// 2. Reply reference
	var reply *ReplyRef
	if req.ReplyTo != "" {
		var err error
		reply, err = s.resolveReply(ctx, req.ReplyTo)
		if err != nil {
			return nil, err
		}
		slog.Debug("[POST-CREATE] resolved reply target",
			"parent", reply.Parent.URI,
			"root", reply.Root.URI,
		)
	}

	// 3. Embed
	embed, err := s.buildEmbed(ctx, req)
	if err != nil {
		return nil, err
	}
	if embed == nil && strings.TrimSpace(req.Text) == "" {
		// Only images were requested and every upload failed
		return nil, newSentinelValidationError("images", ErrEmptyPost)
	}

	// 4. Facets
	facets := s.facets.ExtractFacets(ctx, req.Text)

	// 5. Record
	record := AssembleRecord(req.Text, facets, embed, reply, s.now())
	record.Langs = req.Langs

	uri, cid, err := s.store.CreateRecord(ctx, PostCollection, "", record)
	if err != nil {
		return nil, fmt.Errorf("failed to write post to PDS: %w", err)
	}

	embedType := ""
	if embed != nil {
		embedType = embed.EmbedType()
	}
	slog.Info("[POST-CREATE] post created",
		"uri", uri,
		"facets", len(facets),
		"embed", embedType,
		"reply", reply != nil,
	)

	return &CreatePostResponse{
		URI:    uri,
		CID:    cid,
		Record: &record,
	}, nil
}

// buildEmbed returns nil when nothing is attached or when every image
// upload failed
func (s *postService) buildEmbed(ctx context.Context, req CreatePostRequest) (embeds.Embed, error) {
	if !hasAttachment(req) {
		return nil, nil
	}
	if s.embeds == nil {
		return nil, NewValidationError("embed", "attachments are not supported by this service")
	}

	switch {
	case req.ExternalURL != "":
		external, err := s.embeds.External(ctx, req.ExternalURL)
		if err != nil {
			return nil, fmt.Errorf("failed to build link card: %w", err)
		}
		return external, nil

	case len(req.Images) > 0:
		gallery, err := s.embeds.Images(ctx, req.Images)
		if err != nil {
			return nil, fmt.Errorf("failed to attach images: %w", err)
		}
		if gallery == nil {
			return nil, nil
		}
		return gallery, nil

	default:
		video, err := s.embeds.Video(ctx, *req.Video)
		if err != nil {
			return nil, fmt.Errorf("failed to attach video: %w", err)
		}
		return video, nil
	}
}

// validateCreateRequest validates basic input requirements
func (s *postService) validateCreateRequest(req CreatePostRequest) error {
	if strings.TrimSpace(req.Text) == "" && !hasAttachment(req) {
		return newSentinelValidationError("text", ErrEmptyPost)
	}

	if len(req.Text) > maxTextBytes {
		return NewValidationError("text",
			fmt.Sprintf("text too long (max %d bytes)", maxTextBytes))
	}
	if n := uniseg.GraphemeClusterCount(req.Text); n > maxTextGraphemes {
		return NewValidationError("text",
			fmt.Sprintf("text too long (%d graphemes, max %d)", n, maxTextGraphemes))
	}

	kinds := 0
	if req.ExternalURL != "" {
		kinds++
	}
	if len(req.Images) > 0 {
		kinds++
	}
	if req.Video != nil {
		kinds++
	}
	if kinds > 1 {
		return newSentinelValidationError("embed", ErrMultipleEmbeds)
	}

	return nil
}

func hasAttachment(req CreatePostRequest) bool {
	return req.ExternalURL != "" || len(req.Images) > 0 || req.Video != nil
}
