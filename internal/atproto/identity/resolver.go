// Package identity resolves atproto handles and DIDs, caching results in
// memory for the lifetime of the process.
package identity

import (
	"context"
	"errors"
	"log/slog"
)

// Resolver resolves handles ("alice.bsky.social") and DIDs ("did:plc:...")
type Resolver interface {
	Resolve(ctx context.Context, identifier string) (*Identity, error)

	// Purge drops any cached state for identifier
	Purge(ctx context.Context, identifier string) error
}

// IdentityCache stores resolved identities under both handle and DID
type IdentityCache interface {
	Get(ctx context.Context, identifier string) (*Identity, error)
	Set(ctx context.Context, identity *Identity) error
	Purge(ctx context.Context, identifier string) error
}

// cachedResolver consults the cache before the directory. Failed lookups are
// never cached.
type cachedResolver struct {
	base  Resolver
	cache IdentityCache
}

func (r *cachedResolver) Resolve(ctx context.Context, identifier string) (*Identity, error) {
	cached, err := r.cache.Get(ctx, identifier)
	if err == nil {
		cached.Cached = true
		return cached, nil
	}
	if !errors.Is(err, ErrCacheMiss) {
		slog.Warn("[IDENTITY] cache read failed", "identifier", identifier, "error", err)
	}

	ident, err := r.base.Resolve(ctx, identifier)
	if err != nil {
		return nil, err
	}

	if err := r.cache.Set(ctx, ident); err != nil {
		slog.Warn("[IDENTITY] failed to cache identity", "did", ident.DID, "error", err)
	}
	return ident, nil
}

func (r *cachedResolver) Purge(ctx context.Context, identifier string) error {
	if err := r.cache.Purge(ctx, identifier); err != nil {
		return err
	}
	return r.base.Purge(ctx, identifier)
}
