// Package video is the client for the Bluesky video service
// (app.bsky.video.*). Uploads are authorised with a service token minted by
// the author's PDS; job status queries are anonymous.
package video

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"Skywrite/internal/core/blobs"
	corevideo "Skywrite/internal/core/video"

	"github.com/bluesky-social/indigo/atproto/atclient"
	"github.com/bluesky-social/indigo/atproto/syntax"
	"github.com/google/uuid"
)

// DefaultServiceURL is the public Bluesky video service.
const DefaultServiceURL = "https://video.bsky.app"

const (
	uploadLXM       = "com.atproto.repo.uploadBlob"
	serviceTokenTTL = 30 * time.Minute

	// maxErrorBody bounds how much of an error response is read.
	maxErrorBody = 4096
)

// ServiceAuthorizer mints service tokens on behalf of the logged-in account.
// pds.Client satisfies it.
type ServiceAuthorizer interface {
	ServiceAuth(ctx context.Context, aud string, lxm string, expiresIn time.Duration) (string, error)
	DID() string
}

// PDSLocator finds the PDS that hosts an account. The upload token must be
// addressed to that PDS, not to the host the session logged in through.
// *identity.PDSLocator satisfies it.
type PDSLocator interface {
	PDSEndpoint(ctx context.Context, did string) (string, error)
}

// Client implements corevideo.JobClient against the video service.
type Client struct {
	serviceURL string
	httpClient *http.Client
	auth       ServiceAuthorizer
	pds        PDSLocator
	api        *atclient.APIClient
}

// Ensure Client implements the job client the poller drives.
var _ corevideo.JobClient = (*Client)(nil)

// NewClient creates a video service client. An empty serviceURL uses
// DefaultServiceURL; a nil httpClient uses one without a timeout since
// uploads can be large.
func NewClient(serviceURL string, auth ServiceAuthorizer, pds PDSLocator, httpClient *http.Client) *Client {
	if serviceURL == "" {
		serviceURL = DefaultServiceURL
	}
	serviceURL = strings.TrimSuffix(serviceURL, "/")
	if httpClient == nil {
		httpClient = &http.Client{}
	}

	return &Client{
		serviceURL: serviceURL,
		httpClient: httpClient,
		auth:       auth,
		pds:        pds,
		api:        atclient.NewAPIClient(serviceURL),
	}
}

// jobStatus mirrors app.bsky.video.defs#jobStatus.
type jobStatus struct {
	JobID    string         `json:"jobId"`
	DID      string         `json:"did"`
	State    string         `json:"state"`
	Progress int            `json:"progress"`
	Blob     *blobs.BlobRef `json:"blob,omitempty"`
	Error    string         `json:"error,omitempty"`
	Message  string         `json:"message,omitempty"`
}

func (s *jobStatus) toJob() *corevideo.Job {
	return &corevideo.Job{
		ID:       s.JobID,
		State:    corevideo.ParseState(s.State),
		Blob:     s.Blob,
		Error:    s.Error,
		Message:  s.Message,
		Progress: s.Progress,
	}
}

// uploadResponse covers both the success body and the error body. The
// service answers a re-upload of an identical video with a 409 that still
// names the existing job.
type uploadResponse struct {
	JobStatus *jobStatus `json:"jobStatus"`
	JobID     string     `json:"jobId"`
	Error     string     `json:"error"`
	Message   string     `json:"message"`
}

func (r *uploadResponse) jobID() string {
	if r.JobStatus != nil && r.JobStatus.JobID != "" {
		return r.JobStatus.JobID
	}
	return r.JobID
}

// Submit uploads the raw video bytes and returns the job id.
func (c *Client) Submit(ctx context.Context, data []byte, contentType string) (string, error) {
	did := c.auth.DID()
	pdsURL, err := c.pds.PDSEndpoint(ctx, did)
	if err != nil {
		return "", fmt.Errorf("locate PDS for %s: %w", did, err)
	}
	aud, err := serviceAudience(pdsURL)
	if err != nil {
		return "", err
	}

	token, err := c.auth.ServiceAuth(ctx, aud, uploadLXM, serviceTokenTTL)
	if err != nil {
		return "", fmt.Errorf("get service auth: %w", err)
	}

	query := url.Values{}
	query.Set("did", did)
	query.Set("name", uuid.NewString()+".mp4")
	endpoint := c.serviceURL + "/xrpc/app.bsky.video.uploadVideo?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("create upload request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", contentType)
	req.ContentLength = int64(len(data))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("upload video: %w", err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			slog.Warn("[VIDEO-SERVICE] failed to close upload response body", "error", closeErr)
		}
	}()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil {
		return "", fmt.Errorf("read upload response: %w", err)
	}

	var parsed uploadResponse
	_ = json.Unmarshal(body, &parsed)

	switch {
	case resp.StatusCode == http.StatusOK && parsed.jobID() != "":
		return parsed.jobID(), nil
	case resp.StatusCode == http.StatusConflict && parsed.jobID() != "":
		slog.Info("[VIDEO-SERVICE] video already uploaded, reusing job", "job_id", parsed.jobID())
		return parsed.jobID(), nil
	case resp.StatusCode == http.StatusOK:
		return "", fmt.Errorf("upload video: response has no job id")
	}

	msg := parsed.Message
	if msg == "" {
		msg = strings.TrimSpace(string(body))
	}
	return "", fmt.Errorf("upload video: HTTP %d %s: %s", resp.StatusCode, parsed.Error, msg)
}

// Status returns the current state of a job.
func (c *Client) Status(ctx context.Context, jobID string) (*corevideo.Job, error) {
	var out struct {
		JobStatus jobStatus `json:"jobStatus"`
	}
	params := map[string]any{"jobId": jobID}

	if err := c.api.Get(ctx, syntax.NSID("app.bsky.video.getJobStatus"), params, &out); err != nil {
		return nil, fmt.Errorf("getJobStatus: %w", err)
	}
	if out.JobStatus.JobID == "" {
		out.JobStatus.JobID = jobID
	}
	return out.JobStatus.toJob(), nil
}

// serviceAudience derives the did:web audience of the PDS that hosts the
// account and must accept the service token.
func serviceAudience(pdsURL string) (string, error) {
	u, err := url.Parse(pdsURL)
	if err != nil || u.Hostname() == "" {
		return "", fmt.Errorf("invalid PDS URL %q", pdsURL)
	}
	return "did:web:" + u.Hostname(), nil
}
