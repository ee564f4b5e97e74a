package images

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"
)

// DefaultMaxSourceBytes caps how much of a source is read before giving up.
const DefaultMaxSourceBytes = 20 * 1024 * 1024

// Source describes where an image comes from. Exactly one of URL, Data,
// Reader or Path must be set.
type Source struct {
	URL    string
	Data   []byte
	Reader io.Reader
	Path   string
}

// Image is a loaded source with its detected MIME type.
type Image struct {
	Data     []byte
	MimeType string
}

// Loader reads image sources into memory.
type Loader struct {
	client         *http.Client
	maxSourceBytes int64
	userAgent      string
}

// NewLoader creates a Loader. timeout bounds remote downloads and
// maxSourceBytes bounds every source kind (0 uses DefaultMaxSourceBytes).
func NewLoader(timeout time.Duration, maxSourceBytes int64, userAgent string) *Loader {
	if maxSourceBytes <= 0 {
		maxSourceBytes = DefaultMaxSourceBytes
	}
	return &Loader{
		client:         &http.Client{Timeout: timeout},
		maxSourceBytes: maxSourceBytes,
		userAgent:      userAgent,
	}
}

// Load reads src and detects its MIME type from the content.
func (l *Loader) Load(ctx context.Context, src Source) (*Image, error) {
	if n := src.count(); n != 1 {
		return nil, fmt.Errorf("%w: expected exactly one input, got %d", ErrInvalidSource, n)
	}

	var (
		data []byte
		err  error
	)
	switch {
	case src.URL != "":
		data, err = l.fetch(ctx, src.URL)
	case src.Data != nil:
		data, err = l.checkSize(src.Data)
	case src.Reader != nil:
		data, err = l.readLimited(src.Reader)
	default:
		data, err = l.readFile(src.Path)
	}
	if err != nil {
		return nil, err
	}

	mimeType, err := DetectMimeType(data)
	if err != nil {
		return nil, err
	}
	return &Image{Data: data, MimeType: mimeType}, nil
}

func (s Source) count() int {
	n := 0
	if s.URL != "" {
		n++
	}
	if s.Data != nil {
		n++
	}
	if s.Reader != nil {
		n++
	}
	if s.Path != "" {
		n++
	}
	return n
}

func (l *Loader) fetch(ctx context.Context, imageURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %v", ErrFetchFailed, err)
	}
	if l.userAgent != "" {
		req.Header.Set("User-Agent", l.userAgent)
	}

	resp, err := l.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%w: %v", ErrFetchTimeout, ctx.Err())
		}
		if isTimeoutError(err) {
			return nil, fmt.Errorf("%w: request timed out", ErrFetchTimeout)
		}
		return nil, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			slog.Warn("[IMAGES] failed to close response body", "url", imageURL, "error", closeErr)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: HTTP %d", ErrFetchFailed, resp.StatusCode)
	}
	if resp.ContentLength > l.maxSourceBytes {
		return nil, fmt.Errorf("%w: content length %d exceeds maximum %d bytes",
			ErrImageTooLarge, resp.ContentLength, l.maxSourceBytes)
	}

	data, err := l.readLimited(resp.Body)
	if err != nil {
		if ctx.Err() != nil || isTimeoutError(err) {
			return nil, fmt.Errorf("%w: %v", ErrFetchTimeout, err)
		}
		return nil, err
	}
	return data, nil
}

// readLimited reads at most maxSourceBytes+1 bytes so an oversized body is
// detected even when Content-Length is missing or wrong.
func (l *Loader) readLimited(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, l.maxSourceBytes+1))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read image data: %v", ErrFetchFailed, err)
	}
	return l.checkSize(data)
}

func (l *Loader) readFile(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSource, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", ErrInvalidSource, path)
	}
	if info.Size() > l.maxSourceBytes {
		return nil, fmt.Errorf("%w: file size %d exceeds maximum %d bytes",
			ErrImageTooLarge, info.Size(), l.maxSourceBytes)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSource, err)
	}
	return data, nil
}

func (l *Loader) checkSize(data []byte) ([]byte, error) {
	if int64(len(data)) > l.maxSourceBytes {
		return nil, fmt.Errorf("%w: %d bytes exceeds maximum %d bytes",
			ErrImageTooLarge, len(data), l.maxSourceBytes)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty image data", ErrInvalidSource)
	}
	return data, nil
}

// DetectMimeType sniffs the content type of data and accepts only the image
// types a PDS stores for post images.
func DetectMimeType(data []byte) (string, error) {
	mimeType := NormalizeMimeType(http.DetectContentType(data))
	if !IsSupportedMimeType(mimeType) {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, mimeType)
	}
	return mimeType, nil
}

// NormalizeMimeType strips parameters and maps common aliases to their
// canonical form (e.g. image/jpg to image/jpeg).
func NormalizeMimeType(mimeType string) string {
	if i := strings.IndexByte(mimeType, ';'); i >= 0 {
		mimeType = mimeType[:i]
	}
	mimeType = strings.ToLower(strings.TrimSpace(mimeType))
	switch mimeType {
	case "image/jpg", "image/pjpeg":
		return "image/jpeg"
	case "image/x-png":
		return "image/png"
	}
	return mimeType
}

// IsSupportedMimeType reports whether mimeType is an accepted image type.
func IsSupportedMimeType(mimeType string) bool {
	switch mimeType {
	case "image/jpeg", "image/png", "image/gif", "image/webp":
		return true
	}
	return false
}

// isTimeoutError checks if the error is a timeout-related error.
func isTimeoutError(err error) bool {
	if err == nil {
		return false
	}
	if te, ok := err.(interface{ Timeout() bool }); ok {
		return te.Timeout()
	}
	return false
}
