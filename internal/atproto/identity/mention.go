package identity

import (
	"context"
	"strings"
)

// MentionResolver turns "@handle" mentions into DIDs. It satisfies
// richtext.HandleResolver.
type MentionResolver struct {
	resolver Resolver
}

// NewMentionResolver wraps resolver for facet extraction.
func NewMentionResolver(resolver Resolver) *MentionResolver {
	return &MentionResolver{resolver: resolver}
}

// ResolveHandle returns the DID for handle. Mentions written as DIDs are
// rejected since only handles are matched in post text.
func (m *MentionResolver) ResolveHandle(ctx context.Context, handle string) (string, error) {
	handle = strings.TrimPrefix(handle, "@")
	if strings.HasPrefix(handle, "did:") {
		return "", lookupError(handle, ErrInvalidIdentifier, "expected a handle")
	}

	ident, err := m.resolver.Resolve(ctx, handle)
	if err != nil {
		return "", err
	}
	return ident.DID, nil
}
