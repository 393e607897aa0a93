package okta

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/warrant/pkg/domain/model"
	"github.com/secmon-lab/warrant/pkg/domain/types"
)

// ssws is Okta's proprietary Authorization scheme prefix
const ssws = "SSWS "

// errorBody is the JSON error shape returned by the Okta API. Parsed
// best-effort: Okta owns this shape and may omit fields.
type errorBody struct {
	ErrorCode    string `json:"errorCode"`
	ErrorSummary string `json:"errorSummary"`
}

// HTTPClient abstracts the transport so tests can inject one
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client calls the Okta group membership API
type Client struct {
	httpClient HTTPClient

	// baseURL overrides the https://{domain} origin, for tests only
	baseURL string
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(c HTTPClient) Option {
	return func(client *Client) {
		client.httpClient = c
	}
}

// WithBaseURL overrides the request origin so tests can point the client at a
// local server instead of https://{oktaDomain}.
func WithBaseURL(u string) Option {
	return func(client *Client) {
		client.baseURL = u
	}
}

// New creates a new Okta API client
func New(opts ...Option) *Client {
	client := &Client{
		httpClient: http.DefaultClient,
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// AssignUserToGroup adds the user to the group via PUT
// /api/v1/groups/{groupId}/users/{userId}. Both IDs are path-segment escaped
// so a `/` in either cannot change the request path. A 2xx response (Okta
// returns 204 No Content) means success; any other response becomes a
// provider-tagged error carrying the HTTP status code.
func (c *Client) AssignUserToGroup(ctx context.Context, req *model.AssignmentRequest, token string) error {
	logger := ctxlog.From(ctx)

	target := fmt.Sprintf("%s/api/v1/groups/%s/users/%s",
		c.origin(req.OktaDomain),
		url.PathEscape(req.GroupID.String()),
		url.PathEscape(req.UserID.String()),
	)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPut, target, nil)
	if err != nil {
		return goerr.Wrap(err, "failed to build Okta request",
			goerr.T(types.ErrTagTransport),
			goerr.V("url", target),
		)
	}
	httpReq.Header.Set("Authorization", normalizeToken(token))
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("Content-Type", "application/json")

	logger.Info("Assigning user to Okta group",
		"userID", req.UserID,
		"groupID", req.GroupID,
		"oktaDomain", req.OktaDomain,
	)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return goerr.Wrap(err, "failed to send request to Okta",
			goerr.T(types.ErrTagTransport),
			goerr.V("url", target),
		)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		logger.Info("User assigned to Okta group",
			"userID", req.UserID,
			"groupID", req.GroupID,
			"status", resp.StatusCode,
		)
		return nil
	}

	return newProviderError(resp)
}

// newProviderError maps a non-2xx Okta response to an error. The message is
// the provider's errorSummary when the body parses, otherwise a generic one
// with the status code. The status code always rides as metadata.
func newProviderError(resp *http.Response) error {
	body, _ := io.ReadAll(resp.Body)

	var oktaErr errorBody
	if err := json.Unmarshal(body, &oktaErr); err == nil && oktaErr.ErrorSummary != "" {
		return goerr.New(oktaErr.ErrorSummary,
			goerr.T(types.ErrTagProvider),
			goerr.V(types.StatusCodeKey, resp.StatusCode),
			goerr.V("errorCode", oktaErr.ErrorCode),
		)
	}

	return goerr.New(fmt.Sprintf("Failed to assign user to group: HTTP %d", resp.StatusCode),
		goerr.T(types.ErrTagProvider),
		goerr.V(types.StatusCodeKey, resp.StatusCode),
	)
}

// normalizeToken ensures the Authorization value carries the SSWS prefix
// exactly once, whether or not the stored secret already included it.
func normalizeToken(token string) string {
	if strings.HasPrefix(token, ssws) {
		return token
	}
	return ssws + token
}

func (c *Client) origin(domain types.OktaDomain) string {
	if c.baseURL != "" {
		return strings.TrimSuffix(c.baseURL, "/")
	}
	return "https://" + domain.String()
}
