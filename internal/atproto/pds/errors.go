package pds

import "errors"

// Errors returned by Client methods, matched with errors.Is.
var (
	// ErrMissingCredentials is returned by Connect before any network call.
	ErrMissingCredentials = errors.New("missing PDS credentials")

	// ErrUnauthorized indicates the request failed due to invalid or expired credentials (HTTP 401).
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden indicates the request was rejected due to insufficient permissions (HTTP 403).
	ErrForbidden = errors.New("forbidden")

	// ErrNotFound indicates the requested resource does not exist (HTTP 404).
	ErrNotFound = errors.New("not found")

	// ErrBadRequest indicates the request was malformed or invalid (HTTP 400).
	ErrBadRequest = errors.New("bad request")

	// ErrConflict indicates the request conflicts with the repository state (HTTP 409).
	ErrConflict = errors.New("conflict")

	// ErrPayloadTooLarge indicates the PDS rejected the body size (HTTP 413).
	ErrPayloadTooLarge = errors.New("payload too large")

	// ErrRateLimited indicates the PDS is throttling this account (HTTP 429).
	ErrRateLimited = errors.New("rate limited")

	// ErrBadResponse indicates a successful status with an unusable body.
	ErrBadResponse = errors.New("malformed PDS response")
)

// IsAuthError reports whether err means the session is not accepted.
func IsAuthError(err error) bool {
	return errors.Is(err, ErrUnauthorized) || errors.Is(err, ErrForbidden)
}
