package token

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

const (
	// EnvPrefix is the prefix used for all token environment variables
	EnvPrefix = "GIT_TOKEN_"
)

// EnvStorage implements Storage using GIT_TOKEN_* environment variables.
//
// A variable holds either the bare token or a JSON-encoded Token:
//   export GIT_TOKEN_GITHUB='ghp_abc...'
//   export GIT_TOKEN_GITHUB='{"Value":"ghp_abc...","Scope":"repo"}'
type EnvStorage struct{}

// NewEnvStorage creates a new environment variable-based token storage
func NewEnvStorage() *EnvStorage {
	return &EnvStorage{}
}

// Store saves a token with the given key as a JSON-encoded environment variable
func (e *EnvStorage) Store(ctx context.Context, key string, token Token) error {
	if !IsValid(token) {
		return ErrTokenInvalid
	}

	data, err := json.Marshal(token)
	if err != nil {
		return fmt.Errorf("failed to marshal token: %w", err)
	}

	if err := os.Setenv(e.FormatEnvKey(key), string(data)); err != nil {
		return fmt.Errorf("failed to set environment variable: %w", err)
	}
	return nil
}

// Retrieve gets a token by its key from environment variables
func (e *EnvStorage) Retrieve(ctx context.Context, key string) (Token, error) {
	data := strings.TrimSpace(os.Getenv(e.FormatEnvKey(key)))
	if data == "" {
		return Token{}, ErrTokenNotFound
	}

	var token Token
	if strings.HasPrefix(data, "{") {
		if err := json.Unmarshal([]byte(data), &token); err != nil {
			return Token{}, fmt.Errorf("failed to unmarshal token: %w", err)
		}
	} else {
		token.Value = data
	}

	if !IsValid(token) {
		return Token{}, ErrTokenInvalid
	}
	if IsExpired(token) {
		return Token{}, ErrTokenExpired
	}
	return token, nil
}

// Delete removes a token by unsetting its environment variable
func (e *EnvStorage) Delete(ctx context.Context, key string) error {
	if err := os.Unsetenv(e.FormatEnvKey(key)); err != nil {
		return fmt.Errorf("failed to unset environment variable: %w", err)
	}
	return nil
}

// List returns all stored token keys from environment variables
func (e *EnvStorage) List(ctx context.Context) ([]string, error) {
	var keys []string
	for _, env := range os.Environ() {
		name, _, _ := strings.Cut(env, "=")
		if strings.HasPrefix(name, EnvPrefix) {
			keys = append(keys, strings.TrimPrefix(name, EnvPrefix))
		}
	}
	return keys, nil
}

// FormatEnvKey converts a token key into an environment variable name
func (e *EnvStorage) FormatEnvKey(key string) string {
	sanitized := strings.Map(func(r rune) rune {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			return r
		}
		return '_'
	}, strings.ToUpper(key))

	return EnvPrefix + sanitized
}

// Close implements Storage.Close
func (e *EnvStorage) Close(ctx context.Context) error {
	return nil
}
