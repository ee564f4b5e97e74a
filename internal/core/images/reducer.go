// Package images prepares image attachments for upload: loading them from a
// URL, bytes, a reader or a local file, and shrinking them to a byte budget.
package images

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif" // Register GIF decoder
	"image/jpeg"
	_ "image/png" // Register PNG decoder
	"math"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp" // Register WebP decoder
)

// DefaultQuality is the JPEG quality used when re-encoding a reduced image.
const DefaultQuality = 85

// Reducer shrinks images that exceed a byte budget.
type Reducer struct {
	quality int
}

// NewReducer creates a Reducer that re-encodes at the given JPEG quality.
// Values outside 1-100 fall back to DefaultQuality.
func NewReducer(quality int) *Reducer {
	if quality < 1 || quality > 100 {
		quality = DefaultQuality
	}
	return &Reducer{quality: quality}
}

// Reduce returns data unchanged when it fits in maxBytes. Otherwise both
// dimensions are scaled by sqrt(maxBytes/len(data)) and the result is
// re-encoded as JPEG. This is a single pass: the output is not re-measured,
// so callers must check its length against the budget themselves.
func (r *Reducer) Reduce(data []byte, maxBytes int) ([]byte, error) {
	if len(data) <= maxBytes {
		return data, nil
	}
	if maxBytes <= 0 {
		return nil, fmt.Errorf("%w: byte budget must be positive, got %d", ErrEncodeFailed, maxBytes)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecodeFailed, err)
	}

	scale := math.Sqrt(float64(maxBytes) / float64(len(data)))
	bounds := img.Bounds()
	width := scaleDimension(bounds.Dx(), scale)
	height := scaleDimension(bounds.Dy(), scale)

	resized := imaging.Resize(img, width, height, imaging.Lanczos)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, resized, &jpeg.Options{Quality: r.quality}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncodeFailed, err)
	}
	return buf.Bytes(), nil
}

// scaleDimension truncates n*scale to whole pixels, never below one.
func scaleDimension(n int, scale float64) int {
	scaled := int(float64(n) * scale)
	if scaled < 1 {
		return 1
	}
	return scaled
}

// Dimensions returns the pixel width and height of an encoded image without
// decoding the full raster.
func Dimensions(data []byte) (width, height int, err error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %v", ErrDecodeFailed, err)
	}
	return cfg.Width, cfg.Height, nil
}
