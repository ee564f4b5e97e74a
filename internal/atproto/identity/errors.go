package identity

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidIdentifier is returned for empty or malformed handles and DIDs
	ErrInvalidIdentifier = errors.New("invalid identifier")

	// ErrNotFound is returned when a handle or DID does not resolve
	ErrNotFound = errors.New("identity not found")

	// ErrCacheMiss is returned by IdentityCache.Get for unknown identifiers
	ErrCacheMiss = errors.New("identity cache miss")

	// ErrLookupFailed covers network and directory failures
	ErrLookupFailed = errors.New("identity lookup failed")

	// ErrNoPDSEndpoint is returned when a DID document declares no PDS
	ErrNoPDSEndpoint = errors.New("no PDS endpoint in DID document")
)

// LookupError records which identifier failed and why. Match the cause with
// errors.Is against the sentinels above.
type LookupError struct {
	Err        error
	Identifier string
	Detail     string
}

func (e *LookupError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("%s: %s", e.Err, e.Identifier)
	}
	return fmt.Sprintf("%s: %s: %s", e.Err, e.Identifier, e.Detail)
}

func (e *LookupError) Unwrap() error {
	return e.Err
}

func lookupError(identifier string, err error, detail string) error {
	return &LookupError{Identifier: identifier, Err: err, Detail: detail}
}
