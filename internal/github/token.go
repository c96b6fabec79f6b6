package github

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	gerrors "github.com/NicabarNimble/go-gitmastery/internal/errors"
	"github.com/NicabarNimble/go-gitmastery/internal/token"
)

// Scopes needed to fork, push and open pull requests
const (
	ScopeRepo       = "repo"
	ScopeDeleteRepo = "delete_repo"
)

// TokenValidator implements token.Validator for GitHub tokens
type TokenValidator struct {
	baseURL    string
	httpClient *http.Client
	required   []string
}

// NewTokenValidator creates a validator requiring the given scopes.
// With none given, only ScopeRepo is required.
func NewTokenValidator(baseURL string, required ...string) *TokenValidator {
	if baseURL == "" {
		baseURL = apiBaseURL
	}
	if len(required) == 0 {
		required = []string{ScopeRepo}
	}
	return &TokenValidator{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
		required:   required,
	}
}

// Validate checks the token against /user and, when GitHub reports scopes,
// that the required ones are granted. Fine-grained tokens carry no scope
// header and are accepted once /user succeeds.
func (v *TokenValidator) Validate(ctx context.Context, t *token.Token) error {
	if t.Value == "" {
		return token.ErrTokenInvalid
	}

	if token.IsExpired(*t) {
		return token.ErrTokenExpired
	}

	reported, err := v.verifyToken(ctx, t)
	if err != nil {
		return fmt.Errorf("token verification failed: %w", err)
	}
	if !reported {
		return nil
	}

	if err := v.validateScopes(t.Scope); err != nil {
		return fmt.Errorf("invalid token scope: %w", err)
	}
	return nil
}

// splitScopes accepts comma or whitespace separated scope lists
func splitScopes(scope string) []string {
	return strings.FieldsFunc(scope, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	})
}

// validateScopes checks if the token has the required scopes
func (v *TokenValidator) validateScopes(scope string) error {
	scopes := splitScopes(scope)
	if len(scopes) == 0 {
		return fmt.Errorf("no scopes provided")
	}

	granted := make(map[string]bool, len(scopes))
	for _, s := range scopes {
		granted[s] = true
	}

	var missing []string
	status := make(map[string]bool, len(v.required))
	for _, r := range v.required {
		status[r] = granted[r]
		if !granted[r] {
			missing = append(missing, r)
		}
	}

	if len(missing) > 0 {
		return &token.ScopeError{
			Missing: missing,
			Status:  status,
		}
	}
	return nil
}

// verifyToken calls /user with the token and records the scopes and expiry
// GitHub reports. The boolean is false when no scope header was sent.
func (v *TokenValidator) verifyToken(ctx context.Context, t *token.Token) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.baseURL+"/user", nil)
	if err != nil {
		return false, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+t.Value)
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := v.httpClient.Do(req)
	if err != nil {
		return false, gerrors.NewAPIError("verify token", "request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var errorResp struct {
			Message string `json:"message"`
		}
		msg := resp.Status
		if err := json.NewDecoder(resp.Body).Decode(&errorResp); err == nil && errorResp.Message != "" {
			msg = errorResp.Message
		}
		return false, gerrors.NewAPIHTTPError("verify token", resp.StatusCode, "invalid token: "+msg, nil)
	}

	if expStr := resp.Header.Get("GitHub-Authentication-Token-Expiration"); expStr != "" {
		// GitHub returns time in format "2025-03-04 02:13:04 UTC"
		if expTime, err := time.Parse("2006-01-02 15:04:05 MST", expStr); err == nil {
			t.ExpiresAt = expTime
		}
	}

	scopes, ok := resp.Header["X-Oauth-Scopes"]
	if !ok {
		return false, nil
	}
	t.Scope = strings.Join(scopes, ",")
	return true, nil
}
