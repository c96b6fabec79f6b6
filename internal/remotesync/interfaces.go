package remotesync

import (
	"context"

	"github.com/NicabarNimble/go-gitmastery/internal/git"
	"github.com/NicabarNimble/go-gitmastery/internal/github"
)

// Host is the remote hosting service
type Host interface {
	Username(ctx context.Context) (string, error)
	HasFork(ctx context.Context, owner, name string) (bool, error)
	Fork(ctx context.Context, upstream, forkName string) error
	ListPullRequests(ctx context.Context, upstream, branch, owner string) ([]github.PullRequest, error)
	CreatePullRequest(ctx context.Context, opts github.PROptions) error
}

// RepoRemover deletes a repository owned by the user
type RepoRemover interface {
	DeleteRepository(ctx context.Context, owner, repo string) error
}

// Cloner clones a remote repository into a directory
type Cloner interface {
	Clone(ctx context.Context, opts git.CloneOptions) error
}

// Repository is a local working copy
type Repository interface {
	AddAll(ctx context.Context) error
	Commit(ctx context.Context, msg string) error
	Push(ctx context.Context, remote, branch string) error
}

// OpenFunc opens the working copy in dir
type OpenFunc func(dir string) (Repository, error)

// Prerequisites verifies the tools and credentials the sync needs
type Prerequisites interface {
	Check(ctx context.Context) error
}

// Reporter receives the user-facing progress messages
type Reporter interface {
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Success(format string, args ...any)
}

type nopReporter struct{}

func (nopReporter) Info(string, ...any)    {}
func (nopReporter) Warn(string, ...any)    {}
func (nopReporter) Success(string, ...any) {}

func reporterOrNop(r Reporter) Reporter {
	if r == nil {
		return nopReporter{}
	}
	return r
}
