package identity

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	indigoIdentity "github.com/bluesky-social/indigo/atproto/identity"
	"github.com/bluesky-social/indigo/atproto/syntax"
)

// directory is the part of indigo's identity.Directory we use.
type directory interface {
	Lookup(ctx context.Context, atid syntax.AtIdentifier) (*indigoIdentity.Identity, error)
}

// directoryResolver resolves identities against the network with no caching.
type directoryResolver struct {
	directory directory
	now       func() time.Time
}

func newDirectoryResolver(plcURL string, httpClient *http.Client) *directoryResolver {
	// BaseDirectory does DNS TXT and HTTPS well-known handle resolution and
	// verifies the handle back against the DID document.
	return &directoryResolver{
		directory: &indigoIdentity.BaseDirectory{
			PLCURL:     plcURL,
			HTTPClient: *httpClient,
		},
		now: time.Now,
	}
}

func (r *directoryResolver) Resolve(ctx context.Context, identifier string) (*Identity, error) {
	identifier = normalizeIdentifier(identifier)
	if identifier == "" {
		return nil, lookupError(identifier, ErrInvalidIdentifier, "empty")
	}

	atID, err := syntax.ParseAtIdentifier(identifier)
	if err != nil {
		return nil, lookupError(identifier, ErrInvalidIdentifier, err.Error())
	}

	ident, err := r.directory.Lookup(ctx, *atID)
	if err != nil {
		if isNotFound(err) {
			return nil, lookupError(identifier, ErrNotFound, err.Error())
		}
		return nil, lookupError(identifier, ErrLookupFailed, err.Error())
	}

	return &Identity{
		DID:        ident.DID.String(),
		Handle:     ident.Handle.String(),
		PDSURL:     ident.PDSEndpoint(),
		ResolvedAt: r.now().UTC(),
	}, nil
}

func (r *directoryResolver) Purge(context.Context, string) error {
	return nil
}

func isNotFound(err error) bool {
	if errors.Is(err, indigoIdentity.ErrHandleNotFound) || errors.Is(err, indigoIdentity.ErrDIDNotFound) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "not found") || strings.Contains(msg, "NoRecordsFound")
}

// normalizeIdentifier trims whitespace and a leading '@' and lower-cases
// handles. DIDs are case-sensitive.
func normalizeIdentifier(identifier string) string {
	identifier = strings.TrimPrefix(strings.TrimSpace(identifier), "@")
	if strings.HasPrefix(identifier, "did:") {
		return identifier
	}
	return strings.ToLower(identifier)
}
