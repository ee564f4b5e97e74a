package blobs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

var (
	// ErrInvalidBlobRef is returned when an upload response is not a usable blob reference.
	ErrInvalidBlobRef = errors.New("invalid blob reference")

	// ErrEmptyBlob is returned when asked to upload zero bytes.
	ErrEmptyBlob = errors.New("blob data is empty")

	// ErrBlobTooLarge is returned when data exceeds the upload limit.
	ErrBlobTooLarge = errors.New("blob exceeds size limit")

	// ErrUploadFailed wraps transport or remote failures during upload.
	ErrUploadFailed = errors.New("blob upload failed")
)

// Uploader stores raw bytes on a PDS. pds.Client satisfies it.
type Uploader interface {
	UploadBlob(ctx context.Context, data []byte, mimeType string) (*BlobRef, error)
}

// Service uploads blobs and checks what the PDS hands back.
type Service interface {
	// Upload stores data and returns a validated reference.
	Upload(ctx context.Context, data []byte, mimeType string) (*BlobRef, error)
}

type blobService struct {
	uploader Uploader
	maxSize  int
}

// NewBlobService creates a blob service over uploader. maxSize of 0 disables
// the local size check and leaves enforcement to the PDS.
func NewBlobService(uploader Uploader, maxSize int) Service {
	return &blobService{
		uploader: uploader,
		maxSize:  maxSize,
	}
}

// Upload validates input, uploads it and validates the returned reference.
// The PDS sniffs the content type itself; when its answer is empty the
// caller's mimeType is kept.
func (s *blobService) Upload(ctx context.Context, data []byte, mimeType string) (*BlobRef, error) {
	if len(data) == 0 {
		return nil, ErrEmptyBlob
	}
	if s.maxSize > 0 && len(data) > s.maxSize {
		return nil, fmt.Errorf("%w: %d bytes exceeds maximum of %d bytes", ErrBlobTooLarge, len(data), s.maxSize)
	}

	ref, err := s.uploader.UploadBlob(ctx, data, mimeType)
	if err != nil {
		slog.Warn("[BLOB-UPLOAD] upload failed", "mime_type", mimeType, "size", len(data), "error", err)
		return nil, fmt.Errorf("%w: %w", ErrUploadFailed, err)
	}
	if ref != nil && ref.MimeType == "" {
		ref.MimeType = mimeType
	}
	if err := ref.Validate(); err != nil {
		return nil, err
	}

	slog.Debug("[BLOB-UPLOAD] uploaded", "cid", ref.CID(), "mime_type", ref.MimeType, "size", ref.Size)
	return ref, nil
}
