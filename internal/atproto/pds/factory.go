package pds

import (
	"context"
	"fmt"
	"net/http"

	"github.com/bluesky-social/indigo/atproto/atclient"
	"github.com/bluesky-social/indigo/atproto/syntax"
)

// Credentials identify the account to post as. Set AccessToken and DID to
// reuse an existing session, or Handle and AppPassword to log in.
type Credentials struct {
	Host        string
	Handle      string
	AppPassword string
	DID         string
	AccessToken string
}

// Connect returns a Client authenticated with creds, logging in with the app
// password unless an access token is supplied.
func Connect(ctx context.Context, creds Credentials) (Client, error) {
	if creds.Host == "" {
		return nil, fmt.Errorf("%w: host is required", ErrMissingCredentials)
	}
	if creds.AccessToken != "" {
		return fromAccessToken(creds)
	}
	return fromAppPassword(ctx, creds)
}

// fromAppPassword calls com.atproto.server.createSession and keeps the
// returned access token as a Bearer credential.
func fromAppPassword(ctx context.Context, creds Credentials) (Client, error) {
	if creds.Handle == "" || creds.AppPassword == "" {
		return nil, fmt.Errorf("%w: handle and app password are required", ErrMissingCredentials)
	}

	apiClient, err := atclient.LoginWithPasswordHost(ctx, creds.Host, creds.Handle, creds.AppPassword, "", nil)
	if err != nil {
		return nil, fmt.Errorf("create session for %s: %w", creds.Handle, wrapAPIError(err, "createSession"))
	}

	did := ""
	if apiClient.AccountDID != nil {
		did = apiClient.AccountDID.String()
	}
	return &client{apiClient: apiClient, did: did, host: creds.Host}, nil
}

func fromAccessToken(creds Credentials) (Client, error) {
	if creds.DID == "" {
		return nil, fmt.Errorf("%w: did is required with an access token", ErrMissingCredentials)
	}
	if _, err := syntax.ParseDID(creds.DID); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMissingCredentials, err)
	}

	apiClient := atclient.NewAPIClient(creds.Host)
	apiClient.Auth = &bearerAuth{token: creds.AccessToken}
	return &client{apiClient: apiClient, did: creds.DID, host: creds.Host}, nil
}

// bearerAuth implements atclient.AuthMethod for a plain Bearer token.
type bearerAuth struct {
	token string
}

var _ atclient.AuthMethod = (*bearerAuth)(nil)

func (b *bearerAuth) DoWithAuth(c *http.Client, req *http.Request, _ syntax.NSID) (*http.Response, error) {
	req.Header.Set("Authorization", "Bearer "+b.token)
	return c.Do(req)
}
