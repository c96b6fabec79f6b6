package token

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// GitHubKey is the storage key of the GitHub token, read from GIT_TOKEN_GITHUB
const GitHubKey = "github"

// Source yields a token from one place
type Source interface {
	// Name identifies the source in log and error messages
	Name() string

	// Lookup returns ErrTokenNotFound when the source holds no token
	Lookup(ctx context.Context) (Token, error)
}

// StorageSource adapts a Storage key to a Source
type StorageSource struct {
	Storage Storage
	Key     string
	Label   string
}

func (s StorageSource) Name() string {
	if s.Label != "" {
		return s.Label
	}
	return "storage:" + s.Key
}

func (s StorageSource) Lookup(ctx context.Context) (Token, error) {
	return s.Storage.Retrieve(ctx, s.Key)
}

var lookupEnv = os.LookupEnv

// VarSource reads a bare token from the first non-empty variable in Names
type VarSource struct {
	Names []string
}

func (s VarSource) Name() string {
	return strings.Join(s.Names, "/")
}

func (s VarSource) Lookup(context.Context) (Token, error) {
	for _, name := range s.Names {
		if v, ok := lookupEnv(name); ok && strings.TrimSpace(v) != "" {
			return Token{Value: strings.TrimSpace(v)}, nil
		}
	}
	return Token{}, ErrTokenNotFound
}

// runGh executes the GitHub CLI and returns its standard output
var runGh = func(ctx context.Context, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, "gh", args...).Output()
}

// GhCLISource asks the GitHub CLI for the token of its logged-in account
type GhCLISource struct {
	Host string
}

func (s GhCLISource) Name() string {
	return "gh auth token"
}

func (s GhCLISource) Lookup(ctx context.Context) (Token, error) {
	args := []string{"auth", "token"}
	if s.Host != "" {
		args = append(args, "--hostname", s.Host)
	}
	out, err := runGh(ctx, args...)
	if err != nil {
		var exitErr *exec.ExitError
		if errors.Is(err, exec.ErrNotFound) || errors.As(err, &exitErr) {
			// Not installed or not logged in
			return Token{}, ErrTokenNotFound
		}
		return Token{}, fmt.Errorf("gh auth token: %w", err)
	}
	value := strings.TrimSpace(string(out))
	if value == "" {
		return Token{}, ErrTokenNotFound
	}
	return Token{Value: value}, nil
}

// Chain tries each source in order
type Chain []Source

// DefaultChain returns the lookup order used by the CLI
func DefaultChain(host string) Chain {
	return Chain{
		StorageSource{Storage: NewEnvStorage(), Key: GitHubKey, Label: EnvPrefix + "GITHUB"},
		VarSource{Names: []string{"GITHUB_TOKEN", "GH_TOKEN"}},
		GhCLISource{Host: host},
	}
}

// Resolve returns the first token found and the name of the source that held it.
// Any error other than ErrTokenNotFound stops the search.
func (c Chain) Resolve(ctx context.Context) (Token, string, error) {
	for _, src := range c {
		tok, err := src.Lookup(ctx)
		if errors.Is(err, ErrTokenNotFound) {
			continue
		}
		if err != nil {
			return Token{}, src.Name(), fmt.Errorf("%s: %w", src.Name(), err)
		}
		return tok, src.Name(), nil
	}
	return Token{}, "", ErrTokenNotFound
}
