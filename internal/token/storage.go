// Package token resolves the GitHub credential used for fork, pull request
// and push operations.
//
// Sources
//
// Tokens are looked up from a fixed chain, first hit wins:
//
// 1. GIT_TOKEN_GITHUB (EnvStorage):
//   - Either a bare token or a JSON-encoded Token with scope metadata
//   - Intended for headless and containerized use
//
// 2. GITHUB_TOKEN, then GH_TOKEN (VarSource):
//   - The variables the GitHub CLI and Actions already export
//
// 3. `gh auth token` (GhCLISource):
//   - Reuses an interactive login made with the GitHub CLI
//
// Environment Variable Usage:
//   export GIT_TOKEN_GITHUB="ghp_..."
//   export GITHUB_TOKEN="ghp_..."
package token

import (
	"context"
	"errors"
	"time"
)

// Common errors that may be returned by token operations
var (
	ErrTokenNotFound      = errors.New("token not found")
	ErrTokenInvalid       = errors.New("token is invalid")
	ErrTokenExpired       = errors.New("token has expired")
	ErrStorageUnavailable = errors.New("token storage is unavailable")
)

// Token represents an authentication token with metadata
type Token struct {
	// Value is the actual token string
	Value string `json:"Value"`

	// ExpiresAt indicates when the token will expire
	// Zero value means the token does not expire
	ExpiresAt time.Time `json:"ExpiresAt"`

	// Scope lists the permissions granted to this token, comma separated
	Scope string `json:"Scope"`

	// CreatedAt indicates when the token was created/stored
	CreatedAt time.Time `json:"CreatedAt"`
}

// NewToken creates a new token with validation
func NewToken(value string, expiresAt time.Time, scope string) (*Token, error) {
	if value == "" {
		return nil, errors.New("token value cannot be empty")
	}

	token := &Token{
		Value:     value,
		ExpiresAt: expiresAt,
		Scope:     scope,
		CreatedAt: time.Now(),
	}

	if !IsValid(*token) {
		return nil, ErrTokenInvalid
	}

	return token, nil
}

// Storage defines the interface for token storage implementations
type Storage interface {
	// Store saves a token with the given key
	// If a token already exists for the key, it will be overwritten
	Store(ctx context.Context, key string, token Token) error

	// Retrieve gets a token by its key
	// Returns ErrTokenNotFound if the token doesn't exist
	Retrieve(ctx context.Context, key string) (Token, error)

	// Delete removes a token by its key
	// Returns nil if the token was successfully deleted or didn't exist
	Delete(ctx context.Context, key string) error

	// List returns all stored token keys
	List(ctx context.Context) ([]string, error)

	// Close performs any necessary cleanup
	Close(ctx context.Context) error
}

// Validator checks a token against the remote host
type Validator interface {
	// Validate returns nil if the token is usable, otherwise an error
	// explaining why not
	Validate(ctx context.Context, token *Token) error
}

// IsExpired checks if a token has expired
func IsExpired(token Token) bool {
	if token.ExpiresAt.IsZero() {
		return false
	}
	return time.Now().After(token.ExpiresAt)
}

// IsValid performs basic validation of a token
func IsValid(token Token) bool {
	return token.Value != ""
}
