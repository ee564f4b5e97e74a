package identity

import "context"

// PDSLocator finds the PDS that hosts an account, as declared by the
// atproto_pds service of its DID document. This can differ from the host
// the session logged in through (e.g. bsky.social fronts many PDSes).
type PDSLocator struct {
	resolver Resolver
}

// NewPDSLocator creates a PDSLocator over resolver.
func NewPDSLocator(resolver Resolver) *PDSLocator {
	return &PDSLocator{resolver: resolver}
}

// PDSEndpoint returns the PDS URL for did.
func (l *PDSLocator) PDSEndpoint(ctx context.Context, did string) (string, error) {
	ident, err := l.resolver.Resolve(ctx, did)
	if err != nil {
		return "", err
	}
	if ident.PDSURL == "" {
		return "", lookupError(did, ErrNoPDSEndpoint, "")
	}
	return ident.PDSURL, nil
}
