package identity

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	indigoIdentity "github.com/bluesky-social/indigo/atproto/identity"
	"github.com/bluesky-social/indigo/atproto/syntax"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeDirectory serves identities from a map keyed by handle and DID.
type fakeDirectory struct {
	idents  map[string]*indigoIdentity.Identity
	fail    error
	lookups int
}

func newFakeDirectory(idents ...*indigoIdentity.Identity) *fakeDirectory {
	d := &fakeDirectory{idents: make(map[string]*indigoIdentity.Identity)}
	for _, ident := range idents {
		d.idents[ident.DID.String()] = ident
		d.idents[ident.Handle.String()] = ident
	}
	return d
}

func (d *fakeDirectory) Lookup(_ context.Context, atid syntax.AtIdentifier) (*indigoIdentity.Identity, error) {
	d.lookups++
	if d.fail != nil {
		return nil, d.fail
	}
	ident, ok := d.idents[atid.String()]
	if !ok {
		return nil, fmt.Errorf("lookup %s: %w", atid, indigoIdentity.ErrHandleNotFound)
	}
	return ident, nil
}

func aliceIdentity() *indigoIdentity.Identity {
	return &indigoIdentity.Identity{
		DID:    syntax.DID("did:plc:alice123"),
		Handle: syntax.Handle("alice.test"),
	}
}

func newTestResolver(dir *fakeDirectory) *directoryResolver {
	fixed := time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)
	return &directoryResolver{directory: dir, now: func() time.Time { return fixed }}
}

func newTestCachedResolver(dir *fakeDirectory) Resolver {
	return &cachedResolver{base: newTestResolver(dir), cache: NewMemoryCache(10, time.Hour)}
}

func TestDirectoryResolver_Resolve(t *testing.T) {
	r := newTestResolver(newFakeDirectory(aliceIdentity()))

	ident, err := r.Resolve(context.Background(), "@Alice.Test")
	require.NoError(t, err)
	assert.Equal(t, "did:plc:alice123", ident.DID)
	assert.Equal(t, "alice.test", ident.Handle)
	assert.False(t, ident.Cached)
	assert.Equal(t, 2024, ident.ResolvedAt.Year())

	ident, err = r.Resolve(context.Background(), "did:plc:alice123")
	require.NoError(t, err)
	assert.Equal(t, "alice.test", ident.Handle)
}

func TestDirectoryResolver_Errors(t *testing.T) {
	tests := []struct {
		name       string
		identifier string
		fail       error
		want       error
	}{
		{name: "empty", identifier: "  ", want: ErrInvalidIdentifier},
		{name: "malformed", identifier: "not a handle!", want: ErrInvalidIdentifier},
		{name: "not found", identifier: "ghost.test", want: ErrNotFound},
		{name: "transport failure", identifier: "alice.test", fail: errors.New("dial tcp: connection refused"), want: ErrLookupFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := newFakeDirectory()
			dir.fail = tt.fail
			_, err := newTestResolver(dir).Resolve(context.Background(), tt.identifier)
			assert.ErrorIs(t, err, tt.want)

			var lookupErr *LookupError
			require.True(t, errors.As(err, &lookupErr))
		})
	}
}

func TestCachingResolver_HitsCache(t *testing.T) {
	dir := newFakeDirectory(aliceIdentity())
	r := newTestCachedResolver(dir)
	ctx := context.Background()

	ident, err := r.Resolve(ctx, "alice.test")
	require.NoError(t, err)
	assert.Equal(t, "did:plc:alice123", ident.DID)
	assert.False(t, ident.Cached)

	ident, err = r.Resolve(ctx, "ALICE.test")
	require.NoError(t, err)
	assert.True(t, ident.Cached)

	ident, err = r.Resolve(ctx, "did:plc:alice123")
	require.NoError(t, err)
	assert.True(t, ident.Cached, "identity is cached under its DID too")

	assert.Equal(t, 1, dir.lookups)
}

func TestCachingResolver_Purge(t *testing.T) {
	dir := newFakeDirectory(aliceIdentity())
	r := newTestCachedResolver(dir)
	ctx := context.Background()

	_, err := r.Resolve(ctx, "alice.test")
	require.NoError(t, err)
	require.NoError(t, r.Purge(ctx, "alice.test"))

	_, err = r.Resolve(ctx, "did:plc:alice123")
	require.NoError(t, err)
	assert.Equal(t, 2, dir.lookups, "purging the handle also drops the DID entry")
}

func TestCachingResolver_ErrorsNotCached(t *testing.T) {
	dir := newFakeDirectory()
	r := newTestCachedResolver(dir)

	_, err := r.Resolve(context.Background(), "ghost.test")
	require.Error(t, err)
	_, err = r.Resolve(context.Background(), "ghost.test")
	require.Error(t, err)
	assert.Equal(t, 2, dir.lookups)
}

func TestMemoryCache_Expiry(t *testing.T) {
	cache := NewMemoryCache(10, 20*time.Millisecond)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, &Identity{DID: "did:plc:x", Handle: "x.test"}))
	_, err := cache.Get(ctx, "x.test")
	require.NoError(t, err)

	time.Sleep(60 * time.Millisecond)

	_, err = cache.Get(ctx, "x.test")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestMentionResolver(t *testing.T) {
	dir := newFakeDirectory(aliceIdentity())
	m := NewMentionResolver(newTestCachedResolver(dir))
	ctx := context.Background()

	did, err := m.ResolveHandle(ctx, "alice.test")
	require.NoError(t, err)
	assert.Equal(t, "did:plc:alice123", did)

	_, err = m.ResolveHandle(ctx, "ghost.test")
	assert.ErrorIs(t, err, ErrNotFound)

	before := dir.lookups
	_, err = m.ResolveHandle(ctx, "did:plc:alice123")
	assert.ErrorIs(t, err, ErrInvalidIdentifier)
	assert.Equal(t, before, dir.lookups, "DIDs are rejected before lookup")
}

func TestNewResolver_Defaults(t *testing.T) {
	r := NewResolver(Config{})
	cr, ok := r.(*cachedResolver)
	require.True(t, ok)

	base, ok := cr.base.(*directoryResolver)
	require.True(t, ok)
	dir, ok := base.directory.(*indigoIdentity.BaseDirectory)
	require.True(t, ok)
	assert.Equal(t, "https://plc.directory", dir.PLCURL)
}

func TestPDSLocator(t *testing.T) {
	withPDS := &indigoIdentity.Identity{
		DID:    syntax.DID("did:plc:bob456"),
		Handle: syntax.Handle("bob.test"),
		Services: map[string]indigoIdentity.ServiceEndpoint{
			"atproto_pds": {Type: "AtprotoPersonalDataServer", URL: "https://morel.us-east.host.bsky.network"},
		},
	}
	dir := newFakeDirectory(withPDS, aliceIdentity())
	locator := NewPDSLocator(newTestCachedResolver(dir))
	ctx := context.Background()

	endpoint, err := locator.PDSEndpoint(ctx, "did:plc:bob456")
	require.NoError(t, err)
	assert.Equal(t, "https://morel.us-east.host.bsky.network", endpoint)

	_, err = locator.PDSEndpoint(ctx, "did:plc:alice123")
	assert.ErrorIs(t, err, ErrNoPDSEndpoint)

	_, err = locator.PDSEndpoint(ctx, "did:plc:ghost")
	assert.ErrorIs(t, err, ErrNotFound)
}
