package images

import "errors"

var (
	// ErrDecodeFailed is returned when image bytes cannot be decoded as a raster image.
	ErrDecodeFailed = errors.New("image decode failed")

	// ErrEncodeFailed is returned when a reduced image cannot be re-encoded.
	ErrEncodeFailed = errors.New("image encode failed")

	// ErrImageTooLarge is returned when a source exceeds the configured download limit.
	ErrImageTooLarge = errors.New("source image exceeds size limit")

	// ErrFetchFailed is returned when a remote image cannot be downloaded.
	ErrFetchFailed = errors.New("failed to fetch image")

	// ErrFetchTimeout is returned when downloading a remote image times out.
	ErrFetchTimeout = errors.New("image fetch timed out")

	// ErrInvalidSource is returned when a Source does not set exactly one input.
	ErrInvalidSource = errors.New("invalid image source")

	// ErrUnsupportedFormat is returned when the content is not an accepted image type.
	ErrUnsupportedFormat = errors.New("unsupported image format")
)
