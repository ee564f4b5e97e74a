// Package pds provides authenticated access to the author's Personal Data
// Server. It wraps indigo's atclient.APIClient and maps XRPC failures onto
// typed errors.
package pds

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"Skywrite/internal/core/blobs"

	comatproto "github.com/bluesky-social/indigo/api/atproto"
	"github.com/bluesky-social/indigo/atproto/atclient"
	"github.com/bluesky-social/indigo/atproto/syntax"
)

// Client is an authenticated session on the author's PDS.
type Client interface {
	// CreateRecord writes record to collection in the session's repo and
	// returns its AT-URI and CID. An empty rkey lets the PDS assign a TID.
	CreateRecord(ctx context.Context, collection string, rkey string, record any) (uri string, cid string, err error)

	// GetRecord retrieves a single record. An empty repo means the
	// authenticated user's repository.
	GetRecord(ctx context.Context, repo string, collection string, rkey string) (*RecordResponse, error)

	// UploadBlob stores data as a blob. The returned ref carries the
	// MIME type the PDS detected.
	UploadBlob(ctx context.Context, data []byte, mimeType string) (*blobs.BlobRef, error)

	// ServiceAuth asks the PDS to mint a short-lived token that lets the
	// holder call lxm on the service identified by aud.
	ServiceAuth(ctx context.Context, aud string, lxm string, expiresIn time.Duration) (string, error)

	DID() string
	HostURL() string
}

// RecordResponse is a record returned by com.atproto.repo.getRecord.
type RecordResponse struct {
	URI   string         `json:"uri"`
	CID   string         `json:"cid"`
	Value map[string]any `json:"value"`
}

const (
	nsidCreateRecord   = syntax.NSID("com.atproto.repo.createRecord")
	nsidGetRecord      = syntax.NSID("com.atproto.repo.getRecord")
	nsidGetServiceAuth = syntax.NSID("com.atproto.server.getServiceAuth")
)

type client struct {
	apiClient *atclient.APIClient
	did       string
	host      string
}

var _ Client = (*client)(nil)

// statusErrors maps XRPC status codes onto the package's sentinel errors.
var statusErrors = map[int]error{
	400: ErrBadRequest,
	401: ErrUnauthorized,
	403: ErrForbidden,
	404: ErrNotFound,
	409: ErrConflict,
	413: ErrPayloadTooLarge,
	429: ErrRateLimited,
}

// wrapAPIError tags an atclient error with the sentinel for its status so
// callers can use errors.Is. The XRPC error name (e.g. RecordNotFound) is
// kept in the message.
func wrapAPIError(err error, operation string) error {
	if err == nil {
		return nil
	}

	var apiErr *atclient.APIError
	if errors.As(err, &apiErr) {
		if sentinel, ok := statusErrors[apiErr.StatusCode]; ok {
			if apiErr.Name != "" {
				return fmt.Errorf("%s: %w: %s: %s", operation, sentinel, apiErr.Name, apiErr.Message)
			}
			return fmt.Errorf("%s: %w: %s", operation, sentinel, apiErr.Message)
		}
	}

	return fmt.Errorf("%s failed: %w", operation, err)
}

func (c *client) DID() string {
	return c.did
}

func (c *client) HostURL() string {
	return c.host
}

type createRecordInput struct {
	Record     any    `json:"record"`
	Repo       string `json:"repo"`
	Collection string `json:"collection"`
	RKey       string `json:"rkey,omitempty"`
}

type recordRef struct {
	URI string `json:"uri"`
	CID string `json:"cid"`
}

func (c *client) CreateRecord(ctx context.Context, collection string, rkey string, record any) (string, string, error) {
	input := createRecordInput{
		Repo:       c.did,
		Collection: collection,
		RKey:       rkey,
		Record:     record,
	}

	var out recordRef
	if err := c.apiClient.Post(ctx, nsidCreateRecord, input, &out); err != nil {
		return "", "", wrapAPIError(err, "createRecord")
	}
	if out.URI == "" || out.CID == "" {
		return "", "", fmt.Errorf("createRecord: %w: missing uri or cid", ErrBadResponse)
	}
	return out.URI, out.CID, nil
}

func (c *client) GetRecord(ctx context.Context, repo string, collection string, rkey string) (*RecordResponse, error) {
	if repo == "" {
		repo = c.did
	}
	params := map[string]any{
		"repo":       repo,
		"collection": collection,
		"rkey":       rkey,
	}

	var out RecordResponse
	if err := c.apiClient.Get(ctx, nsidGetRecord, params, &out); err != nil {
		return nil, wrapAPIError(err, "getRecord")
	}
	return &out, nil
}

// UploadBlob posts data to com.atproto.repo.uploadBlob. The PDS sniffs the
// content type itself, so mimeType is only used for logging upstream.
func (c *client) UploadBlob(ctx context.Context, data []byte, mimeType string) (*blobs.BlobRef, error) {
	result, err := comatproto.RepoUploadBlob(ctx, c.apiClient, bytes.NewReader(data))
	if err != nil {
		return nil, wrapAPIError(err, "uploadBlob")
	}
	if result.Blob == nil {
		return nil, fmt.Errorf("uploadBlob: %w: response has no blob", ErrBadResponse)
	}

	return blobs.NewBlobRef(result.Blob.Ref.String(), result.Blob.MimeType, int(result.Blob.Size)), nil
}

// ServiceAuth calls com.atproto.server.getServiceAuth. A zero expiresIn
// leaves the expiry to the PDS.
func (c *client) ServiceAuth(ctx context.Context, aud string, lxm string, expiresIn time.Duration) (string, error) {
	params := map[string]any{
		"aud": aud,
		"lxm": lxm,
	}
	if expiresIn > 0 {
		params["exp"] = strconv.FormatInt(time.Now().Add(expiresIn).Unix(), 10)
	}

	var out struct {
		Token string `json:"token"`
	}
	if err := c.apiClient.Get(ctx, nsidGetServiceAuth, params, &out); err != nil {
		return "", wrapAPIError(err, "getServiceAuth")
	}
	if out.Token == "" {
		return "", fmt.Errorf("getServiceAuth: %w: empty token", ErrBadResponse)
	}
	return out.Token, nil
}
