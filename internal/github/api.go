package github

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

	gerrors "github.com/NicabarNimble/go-gitmastery/internal/errors"
	"github.com/NicabarNimble/go-gitmastery/internal/token"
)

const (
	apiBaseURL = "https://api.github.com"
	userAgent  = "go-gitmastery/1.0"
)

// UserInfo represents GitHub user information
type UserInfo struct {
	Login string `json:"login"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Owner is the account that owns a repository
type Owner struct {
	Login string `json:"login"`
}

// Repository is the subset of the repository resource used here
type Repository struct {
	Name          string      `json:"name"`
	FullName      string      `json:"full_name"`
	Owner         Owner       `json:"owner"`
	Fork          bool        `json:"fork"`
	Parent        *Repository `json:"parent,omitempty"`
	DefaultBranch string      `json:"default_branch"`
	CloneURL      string      `json:"clone_url"`
	HTMLURL       string      `json:"html_url"`
}

// PRRef is one side of a pull request
type PRRef struct {
	Label string      `json:"label"`
	Ref   string      `json:"ref"`
	Repo  *Repository `json:"repo"`
}

// PullRequest is the subset of the pull request resource used here
type PullRequest struct {
	Number  int    `json:"number"`
	Title   string `json:"title"`
	State   string `json:"state"`
	HTMLURL string `json:"html_url"`
	Head    PRRef  `json:"head"`
	Base    PRRef  `json:"base"`
}

// Tag is a git tag of a repository
type Tag struct {
	Name string `json:"name"`
}

// PROptions represents options for pull request operations
type PROptions struct {
	Owner string `json:"-"` // Used for routing, not sent to API
	Repo  string `json:"-"` // Used for routing, not sent to API
	Title string `json:"title"`
	Body  string `json:"body"`
	Head  string `json:"head"`
	Base  string `json:"base"`
}

type forkRequest struct {
	Name              string `json:"name,omitempty"`
	DefaultBranchOnly bool   `json:"default_branch_only"`
}

// Client handles GitHub API operations
type Client struct {
	httpClient *http.Client
	token      string
	baseURL    string
	logger     *slog.Logger
	username   string // Cached after the first lookup
}

// Option configures a Client
type Option func(*Client)

// WithBaseURL points the client at another API root, such as a test server
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimSuffix(u, "/") }
}

// WithHTTPClient replaces the default HTTP client
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.httpClient = h }
}

// WithLogger sets the logger used for request tracing
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewClient creates a GitHub API client. No request is made until a method is called.
// A nil token makes unauthenticated requests.
func NewClient(t *token.Token, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    apiBaseURL,
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	if t != nil {
		c.token = t.Value
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the API root in use
func (c *Client) BaseURL() string {
	return c.baseURL
}

// GetUserInfo retrieves authenticated user information
func (c *Client) GetUserInfo(ctx context.Context) (*UserInfo, error) {
	var userInfo UserInfo
	if err := c.do(ctx, "get user", http.MethodGet, "/user", nil, &userInfo); err != nil {
		return nil, err
	}
	return &userInfo, nil
}

// Username returns the login of the authenticated user, cached after the first call
func (c *Client) Username(ctx context.Context) (string, error) {
	if c.username != "" {
		return c.username, nil
	}
	info, err := c.GetUserInfo(ctx)
	if err != nil {
		return "", err
	}
	if info.Login == "" {
		return "", gerrors.NewAPIError("get user", "response has no login", nil)
	}
	c.username = info.Login
	return c.username, nil
}

// GetRepository fetches owner/repo
func (c *Client) GetRepository(ctx context.Context, owner, repo string) (*Repository, error) {
	var r Repository
	p := fmt.Sprintf("/repos/%s/%s", url.PathEscape(owner), url.PathEscape(repo))
	if err := c.do(ctx, "get repository", http.MethodGet, p, nil, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// HasFork reports whether owner/name exists and is a fork
func (c *Client) HasFork(ctx context.Context, owner, name string) (bool, error) {
	r, err := c.GetRepository(ctx, owner, name)
	if err != nil {
		if gerrors.IsNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return r.Fork, nil
}

// Fork forks upstream ("owner/repo") into the authenticated account under forkName.
//
// GitHub answers 202 with the existing fork when one is already present. A 422
// naming conflict is accepted when the conflicting repository is itself a fork,
// which covers a fork created by an earlier interrupted run.
func (c *Client) Fork(ctx context.Context, upstream, forkName string) error {
	owner, repo, err := ParseRepo(upstream)
	if err != nil {
		return err
	}

	p := fmt.Sprintf("/repos/%s/%s/forks", url.PathEscape(owner), url.PathEscape(repo))
	body := forkRequest{Name: forkName, DefaultBranchOnly: true}
	err = c.do(ctx, "create fork", http.MethodPost, p, body, nil)
	if err == nil || !gerrors.IsUnprocessable(err) {
		return err
	}

	username, uerr := c.Username(ctx)
	if uerr != nil {
		return err
	}
	exists, herr := c.HasFork(ctx, username, forkName)
	if herr != nil || !exists {
		return err
	}
	c.logger.Debug("fork already exists", "fork", username+"/"+forkName)
	return nil
}

// ListPullRequests lists open pull requests into upstream whose head is
// owner:branch and whose head repository belongs to owner
func (c *Client) ListPullRequests(ctx context.Context, upstream, branch, owner string) ([]PullRequest, error) {
	uOwner, uRepo, err := ParseRepo(upstream)
	if err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("state", "open")
	q.Set("head", owner+":"+branch)
	q.Set("per_page", "100")
	p := fmt.Sprintf("/repos/%s/%s/pulls?%s", url.PathEscape(uOwner), url.PathEscape(uRepo), q.Encode())

	var prs []PullRequest
	if err := c.do(ctx, "list pull requests", http.MethodGet, p, nil, &prs); err != nil {
		return nil, err
	}

	matching := prs[:0]
	for _, pr := range prs {
		if pr.Head.Repo == nil || !strings.EqualFold(pr.Head.Repo.Owner.Login, owner) {
			continue
		}
		matching = append(matching, pr)
	}
	return matching, nil
}

// CreatePullRequest creates a new pull request
func (c *Client) CreatePullRequest(ctx context.Context, opts PROptions) error {
	p := fmt.Sprintf("/repos/%s/%s/pulls", url.PathEscape(opts.Owner), url.PathEscape(opts.Repo))
	return c.do(ctx, "create pull request", http.MethodPost, p, opts, nil)
}

// ListTags lists the tags of repo ("owner/repo"), newest first as GitHub returns them
func (c *Client) ListTags(ctx context.Context, repo string) ([]Tag, error) {
	owner, name, err := ParseRepo(repo)
	if err != nil {
		return nil, err
	}
	var tags []Tag
	p := fmt.Sprintf("/repos/%s/%s/tags", url.PathEscape(owner), url.PathEscape(name))
	if err := c.do(ctx, "list tags", http.MethodGet, p, nil, &tags); err != nil {
		return nil, err
	}
	return tags, nil
}

// DeleteRepository deletes owner/repo. A repository that is already gone is not an error.
func (c *Client) DeleteRepository(ctx context.Context, owner, repo string) error {
	p := fmt.Sprintf("/repos/%s/%s", url.PathEscape(owner), url.PathEscape(repo))
	err := c.do(ctx, "delete repository", http.MethodDelete, p, nil, nil)
	if gerrors.IsNotFound(err) {
		return nil
	}
	return err
}

// do sends a JSON request and decodes a JSON response into out when non-nil
func (c *Client) do(ctx context.Context, op, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return gerrors.NewAPIError(op, "failed to marshal request body", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return gerrors.NewAPIError(op, "failed to create request", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.sendRequest(op, req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return gerrors.NewAPIError(op, "failed to decode response", err)
	}
	return nil
}

// sendRequest sends an HTTP request with the necessary headers.
// Responses with status >= 400 are returned as *errors.APIError.
func (c *Client) sendRequest(op string, req *http.Request) (*http.Response, error) {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("X-GitHub-Api-Version", "2022-11-28")
	req.Header.Set("User-Agent", userAgent)

	c.logger.Debug("github request", "op", op, "method", req.Method, "path", req.URL.Path)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, gerrors.NewAPIError(op, "request failed", err)
	}

	if resp.StatusCode >= 400 {
		defer resp.Body.Close()
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		msg := resp.Status
		var apiResp struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(data, &apiResp) == nil && apiResp.Message != "" {
			msg = apiResp.Message
		}
		c.logger.Debug("github error", "op", op, "status", resp.StatusCode, "message", msg)
		return nil, gerrors.NewAPIHTTPError(op, resp.StatusCode, msg, nil)
	}

	return resp, nil
}

// ParseRepo parses an owner/repo string into separate owner and repo parts
func ParseRepo(repoString string) (owner, repo string, err error) {
	parts := strings.Split(repoString, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid repository format: %s (expected owner/repo)", repoString)
	}
	return parts[0], parts[1], nil
}
