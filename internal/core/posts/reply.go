package posts

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"Skywrite/internal/atproto/pds"

	"github.com/bluesky-social/indigo/atproto/syntax"
)

// webAppHosts are the hosts whose /profile/{actor}/post/{rkey} links are accepted
var webAppHosts = map[string]bool{
	"bsky.app":     true,
	"www.bsky.app": true,
}

// PostLocator identifies a post by its author and record key. Repo is a
// handle or a DID.
type PostLocator struct {
	Repo string
	RKey string
}

// IsDID reports whether the locator's repo is already a DID
func (l PostLocator) IsDID() bool {
	return strings.HasPrefix(l.Repo, "did:")
}

// ParsePostURL accepts https://bsky.app/profile/{handle|did}/post/{rkey} links
// and at://{handle|did}/app.bsky.feed.post/{rkey} URIs.
func ParsePostURL(raw string) (*PostLocator, error) {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "at://") {
		return parseATURI(raw)
	}

	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPostURL, err)
	}
	if u.Scheme != "https" && u.Scheme != "http" {
		return nil, fmt.Errorf("%w: unsupported scheme %q", ErrInvalidPostURL, u.Scheme)
	}
	if !webAppHosts[strings.ToLower(u.Hostname())] {
		return nil, fmt.Errorf("%w: unsupported host %q", ErrInvalidPostURL, u.Hostname())
	}

	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) != 4 || parts[0] != "profile" || parts[2] != "post" {
		return nil, fmt.Errorf("%w: expected /profile/{actor}/post/{rkey}, got %q", ErrInvalidPostURL, u.Path)
	}

	return newLocator(parts[1], parts[3])
}

func parseATURI(raw string) (*PostLocator, error) {
	aturi, err := syntax.ParseATURI(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPostURL, err)
	}
	if aturi.Collection().String() != PostCollection {
		return nil, fmt.Errorf("%w: collection %q is not %s", ErrInvalidPostURL, aturi.Collection().String(), PostCollection)
	}
	return newLocator(aturi.Authority().String(), aturi.RecordKey().String())
}

func newLocator(actor, rkey string) (*PostLocator, error) {
	atid, err := syntax.ParseAtIdentifier(actor)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid actor %q: %v", ErrInvalidPostURL, actor, err)
	}
	if _, err := syntax.ParseRecordKey(rkey); err != nil {
		return nil, fmt.Errorf("%w: invalid record key %q: %v", ErrInvalidPostURL, rkey, err)
	}

	repo := atid.String()
	if atid.IsHandle() {
		repo = strings.ToLower(repo)
	}
	return &PostLocator{Repo: repo, RKey: rkey}, nil
}

// resolveReply builds the reply reference for target. The parent is the
// target post; the root is the parent's own root when it is itself a reply.
func (s *postService) resolveReply(ctx context.Context, target string) (*ReplyRef, error) {
	loc, err := ParsePostURL(target)
	if err != nil {
		return nil, newSentinelValidationError("replyTo", err)
	}

	repo := loc.Repo
	if !loc.IsDID() {
		if s.resolver == nil {
			return nil, fmt.Errorf("cannot resolve handle %s: no resolver configured", loc.Repo)
		}
		did, err := s.resolver.ResolveHandle(ctx, loc.Repo)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve reply author %s: %w", loc.Repo, err)
		}
		repo = did
	}

	record, err := s.store.GetRecord(ctx, repo, PostCollection, loc.RKey)
	if err != nil {
		if isRecordNotFound(err) {
			return nil, NewNotFoundError("reply parent", target)
		}
		return nil, fmt.Errorf("failed to fetch reply parent: %w", err)
	}
	if record.URI == "" || record.CID == "" {
		return nil, fmt.Errorf("reply parent %s: %w", target, pds.ErrBadResponse)
	}

	parent := StrongRef{URI: record.URI, CID: record.CID}
	root := parent
	if parentRoot, ok := threadRoot(record.Value); ok {
		root = parentRoot
	}

	return &ReplyRef{Root: root, Parent: parent}, nil
}

// threadRoot reads reply.root from a post record value
func threadRoot(value map[string]any) (StrongRef, bool) {
	reply, ok := value["reply"].(map[string]any)
	if !ok {
		return StrongRef{}, false
	}
	root, ok := reply["root"].(map[string]any)
	if !ok {
		return StrongRef{}, false
	}
	uri, _ := root["uri"].(string)
	cid, _ := root["cid"].(string)
	if uri == "" || cid == "" {
		return StrongRef{}, false
	}
	return StrongRef{URI: uri, CID: cid}, true
}

// isRecordNotFound matches both a 404 and the 400 RecordNotFound that
// getRecord answers for a missing record
func isRecordNotFound(err error) bool {
	if errors.Is(err, pds.ErrNotFound) {
		return true
	}
	return errors.Is(err, pds.ErrBadRequest) && strings.Contains(err.Error(), "RecordNotFound")
}
