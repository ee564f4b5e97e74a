package blobs

import (
	"fmt"

	"github.com/ipfs/go-cid"
)

// BlobRef represents a blob reference for atproto records
type BlobRef struct {
	Type     string            `json:"$type"`
	Ref      map[string]string `json:"ref"`
	MimeType string            `json:"mimeType"`
	Size     int               `json:"size"`
}

// NewBlobRef builds a reference for an uploaded blob.
func NewBlobRef(link, mimeType string, size int) *BlobRef {
	return &BlobRef{
		Type:     "blob",
		Ref:      map[string]string{"$link": link},
		MimeType: mimeType,
		Size:     size,
	}
}

// CID returns the content identifier the reference points at.
func (b *BlobRef) CID() string {
	if b == nil || b.Ref == nil {
		return ""
	}
	return b.Ref["$link"]
}

// Validate checks the fields a record needs to embed the blob. The ref must
// decode as a CID.
func (b *BlobRef) Validate() error {
	if b == nil {
		return fmt.Errorf("%w: nil blob reference", ErrInvalidBlobRef)
	}
	if b.Type != "blob" {
		return fmt.Errorf("%w: unexpected $type %q", ErrInvalidBlobRef, b.Type)
	}
	link := b.CID()
	if link == "" {
		return fmt.Errorf("%w: missing ref.$link", ErrInvalidBlobRef)
	}
	if _, err := cid.Decode(link); err != nil {
		return fmt.Errorf("%w: ref.$link is not a CID: %v", ErrInvalidBlobRef, err)
	}
	if b.MimeType == "" {
		return fmt.Errorf("%w: missing mimeType", ErrInvalidBlobRef)
	}
	if b.Size <= 0 {
		return fmt.Errorf("%w: missing size", ErrInvalidBlobRef)
	}
	return nil
}
