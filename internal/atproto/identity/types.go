package identity

import "time"

// Identity is a resolved account: its DID, verified handle and PDS endpoint.
type Identity struct {
	ResolvedAt time.Time
	DID        string
	Handle     string
	PDSURL     string
	// Cached is set when the identity was served from the cache
	Cached bool
}
