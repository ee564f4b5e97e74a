package embeds

import (
	"context"
	"fmt"
	"log/slog"
	"os"
)

// Video probes the video's dimensions, uploads it and waits for processing
// to finish. Any failure is fatal. Raw bytes are written to a temporary file
// for the probe; the file is removed before Video returns.
func (b *Builder) Video(ctx context.Context, input VideoInput) (*VideoEmbed, error) {
	if b.videos == nil || b.prober == nil {
		return nil, ErrVideoUnavailable
	}
	if (input.Path == "") == (input.Data == nil) {
		return nil, fmt.Errorf("%w: set exactly one of path or data", ErrInvalidVideo)
	}

	contentType := input.ContentType
	if contentType == "" {
		contentType = defaultVideoContentType
	}

	data, path, cleanup, err := b.stageVideo(input)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	width, height, err := b.prober.Dimensions(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("failed to probe video: %w", err)
	}

	ref, err := b.videos.Process(ctx, data, contentType)
	if err != nil {
		return nil, err
	}

	slog.Info("[EMBED] video ready",
		"cid", ref.CID(),
		"width", width,
		"height", height,
	)

	return &VideoEmbed{
		Type:        VideoType,
		Video:       ref,
		AspectRatio: &AspectRatio{Width: width, Height: height},
		Alt:         input.Alt,
	}, nil
}

// stageVideo returns the video bytes and a file path the prober can read.
// The returned cleanup must always be called.
func (b *Builder) stageVideo(input VideoInput) (data []byte, path string, cleanup func(), err error) {
	noop := func() {}

	if input.Path != "" {
		info, err := os.Stat(input.Path)
		if err != nil {
			return nil, "", noop, fmt.Errorf("%w: %w", ErrInvalidVideo, err)
		}
		if info.Size() > int64(b.maxVideoBytes) {
			return nil, "", noop, fmt.Errorf("%w: %d bytes exceeds maximum of %d bytes", ErrVideoTooLarge, info.Size(), b.maxVideoBytes)
		}
		data, err := os.ReadFile(input.Path)
		if err != nil {
			return nil, "", noop, fmt.Errorf("%w: %w", ErrInvalidVideo, err)
		}
		return data, input.Path, noop, nil
	}

	if len(input.Data) > b.maxVideoBytes {
		return nil, "", noop, fmt.Errorf("%w: %d bytes exceeds maximum of %d bytes", ErrVideoTooLarge, len(input.Data), b.maxVideoBytes)
	}

	tmp, err := os.CreateTemp("", "skywrite-video-*")
	if err != nil {
		return nil, "", noop, fmt.Errorf("failed to create temp file: %w", err)
	}
	cleanup = func() {
		if removeErr := os.Remove(tmp.Name()); removeErr != nil && !os.IsNotExist(removeErr) {
			slog.Warn("[EMBED] failed to remove temp video", "path", tmp.Name(), "error", removeErr)
		}
	}

	if _, err := tmp.Write(input.Data); err != nil {
		_ = tmp.Close()
		cleanup()
		return nil, "", noop, fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return nil, "", noop, fmt.Errorf("failed to close temp file: %w", err)
	}

	return input.Data, tmp.Name(), cleanup, nil
}
