package identity

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// memoryCache implements IdentityCache with a size-bounded, expiring LRU.
type memoryCache struct {
	lru *expirable.LRU[string, Identity]
}

// NewMemoryCache creates an in-memory identity cache holding at most size
// entries, each expiring ttl after it was stored.
func NewMemoryCache(size int, ttl time.Duration) IdentityCache {
	return &memoryCache{
		lru: expirable.NewLRU[string, Identity](size, nil, ttl),
	}
}

func (c *memoryCache) Get(ctx context.Context, identifier string) (*Identity, error) {
	identifier = normalizeIdentifier(identifier)
	ident, ok := c.lru.Get(identifier)
	if !ok {
		return nil, lookupError(identifier, ErrCacheMiss, "")
	}
	return &ident, nil
}

// Set stores ident under its DID and, when verified, its handle.
func (c *memoryCache) Set(ctx context.Context, ident *Identity) error {
	if ident == nil || ident.DID == "" {
		return nil
	}
	c.lru.Add(ident.DID, *ident)
	if ident.Handle != "" {
		c.lru.Add(normalizeIdentifier(ident.Handle), *ident)
	}
	return nil
}

// Purge removes the identifier and the other key of the same identity
func (c *memoryCache) Purge(ctx context.Context, identifier string) error {
	identifier = normalizeIdentifier(identifier)
	if ident, ok := c.lru.Peek(identifier); ok {
		c.lru.Remove(ident.DID)
		if ident.Handle != "" {
			c.lru.Remove(normalizeIdentifier(ident.Handle))
		}
	}
	c.lru.Remove(identifier)
	return nil
}
