// Package check verifies the prerequisites of the progress sync: a configured
// git identity and a usable GitHub token.
package check

import (
	"context"
	"errors"
	"fmt"

	gerrors "github.com/NicabarNimble/go-gitmastery/internal/errors"
	"github.com/NicabarNimble/go-gitmastery/internal/git"
	"github.com/NicabarNimble/go-gitmastery/internal/token"
)

// RequiredBranch is the init.defaultBranch every exercise assumes
const RequiredBranch = "main"

// Reporter receives one line per verified prerequisite
type Reporter interface {
	Info(format string, args ...any)
	Success(format string, args ...any)
}

func missing(op, format string, args ...any) error {
	return gerrors.NewKind(gerrors.KindMissingPrerequisite, op, fmt.Errorf(format, args...))
}

// GitChecker verifies git is installed and the global identity is complete
type GitChecker struct {
	LookPath func(string) (string, error)
	Identity func() (git.Identity, error)
}

// NewGitChecker returns a checker backed by the real environment
func NewGitChecker() *GitChecker {
	return &GitChecker{LookPath: git.LookPath, Identity: git.GlobalIdentity}
}

// Check reports each verified item and returns the identity found
func (g *GitChecker) Check(_ context.Context, r Reporter) (git.Identity, error) {
	r.Info("Checking that you have Git installed and configured")

	if _, err := g.LookPath("git"); err != nil {
		return git.Identity{}, missing("check git", "Git is not installed")
	}
	r.Info("Git is installed")

	id, err := g.Identity()
	if err != nil {
		return git.Identity{}, gerrors.NewKind(gerrors.KindMissingPrerequisite, "check git", err)
	}

	if id.Name == "" {
		return id, missing("check git", "You do not have user.name yet. Run 'git config --global user.name <name>'.")
	}
	r.Info("You have set user.name as %s", id.Name)

	if id.Email == "" {
		return id, missing("check git", "You do not have user.email yet. Run 'git config --global user.email <email>'.")
	}
	r.Info("You have set user.email as %s", id.Email)

	switch id.DefaultBranch {
	case "":
		return id, missing("check git", "You do not have init.defaultBranch yet. Run 'git config --global init.defaultBranch %s'.", RequiredBranch)
	case RequiredBranch:
		r.Info("You have set init.defaultBranch as %s", id.DefaultBranch)
	default:
		return id, missing("check git", "init.defaultBranch needs to be '%s'. Run 'git config --global init.defaultBranch %s'.", RequiredBranch, RequiredBranch)
	}

	r.Success("Git is installed and configured")
	return id, nil
}

// Resolver finds a token
type Resolver interface {
	Resolve(ctx context.Context) (token.Token, string, error)
}

// GitHubChecker resolves a GitHub token and validates it against the API
type GitHubChecker struct {
	Resolver  Resolver
	Validator token.Validator
}

// Check reports the token source and returns the validated token
func (g *GitHubChecker) Check(ctx context.Context, r Reporter) (*token.Token, error) {
	r.Info("Checking that you have a GitHub token available")

	tok, source, err := g.Resolver.Resolve(ctx)
	if errors.Is(err, token.ErrTokenNotFound) {
		return nil, missing("check github",
			"No GitHub token found. Set %sGITHUB or GITHUB_TOKEN, or run 'gh auth login'", token.EnvPrefix)
	}
	if err != nil {
		return nil, gerrors.NewKind(gerrors.KindMissingPrerequisite, "check github", err)
	}
	r.Info("Found a GitHub token in %s", source)
	if kind := token.DetectKind(tok.Value); kind != "" {
		r.Info("Token type is %s", kind)
		if !kind.ReportsScopes() {
			r.Info("GitHub does not report scopes for %s tokens, permissions are checked on first use", kind)
		}
	}

	if err := g.Validator.Validate(ctx, &tok); err != nil {
		return nil, gerrors.NewKind(gerrors.KindMissingPrerequisite, "check github",
			fmt.Errorf("GitHub token from %s is not usable: %w", source, err))
	}
	r.Info("Your GitHub token is valid")

	r.Success("GitHub access is configured")
	return &tok, nil
}

// All runs the git and GitHub checks in order
type All struct {
	Git    *GitChecker
	GitHub *GitHubChecker
	Out    Reporter

	identity git.Identity
	token    *token.Token
}

// Check runs every check, stopping at the first failure
func (a *All) Check(ctx context.Context) error {
	id, err := a.Git.Check(ctx, a.Out)
	if err != nil {
		return err
	}
	tok, err := a.GitHub.Check(ctx, a.Out)
	if err != nil {
		return err
	}
	a.identity, a.token = id, tok
	return nil
}

// Identity returns the identity found by the last successful Check
func (a *All) Identity() git.Identity {
	return a.identity
}

// Token returns the token found by the last successful Check
func (a *All) Token() *token.Token {
	return a.token
}
