package unfurl

import "errors"

var (
	// ErrInvalidURL is returned when the provided URL is not an absolute http(s) URL
	ErrInvalidURL = errors.New("invalid URL")

	// ErrFetchFailed is returned when the page could not be retrieved
	ErrFetchFailed = errors.New("failed to fetch page")

	// ErrPageTooLarge is returned when the page body exceeds the fetch limit
	ErrPageTooLarge = errors.New("page exceeds size limit")
)
