package main

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/go-git/go-billy/v5"

	"github.com/NicabarNimble/go-gitmastery/internal/check"
	"github.com/NicabarNimble/go-gitmastery/internal/git"
	"github.com/NicabarNimble/go-gitmastery/internal/github"
	"github.com/NicabarNimble/go-gitmastery/internal/remotesync"
	"github.com/NicabarNimble/go-gitmastery/internal/token"
)

var errNotChecked = errors.New("prerequisites have not been checked")

// session binds the remote collaborators to the token and identity found by
// the prerequisite checks. It is the Prerequisites of a sync run, so nothing
// talks to GitHub before the checks pass.
type session struct {
	checks    *check.All
	fs        billy.Filesystem
	progress  io.Writer
	logger    *slog.Logger
	newClient func(*token.Token) *github.Client

	client    *github.Client
	workspace *git.Workspace
}

func (s *session) Check(ctx context.Context) error {
	if err := s.checks.Check(ctx); err != nil {
		return err
	}
	tok := s.checks.Token()
	s.client = s.newClient(tok)
	s.workspace = &git.Workspace{
		FS:       s.fs,
		Token:    tok.Value,
		Progress: s.progress,
		Author:   s.checks.Identity().Signature(),
	}
	s.logger.Debug("session ready", "author", s.checks.Identity().Name)
	return nil
}

func (s *session) Username(ctx context.Context) (string, error) {
	if s.client == nil {
		return "", errNotChecked
	}
	return s.client.Username(ctx)
}

func (s *session) HasFork(ctx context.Context, owner, name string) (bool, error) {
	if s.client == nil {
		return false, errNotChecked
	}
	return s.client.HasFork(ctx, owner, name)
}

func (s *session) Fork(ctx context.Context, upstream, forkName string) error {
	if s.client == nil {
		return errNotChecked
	}
	return s.client.Fork(ctx, upstream, forkName)
}

func (s *session) ListPullRequests(ctx context.Context, upstream, branch, owner string) ([]github.PullRequest, error) {
	if s.client == nil {
		return nil, errNotChecked
	}
	return s.client.ListPullRequests(ctx, upstream, branch, owner)
}

func (s *session) CreatePullRequest(ctx context.Context, opts github.PROptions) error {
	if s.client == nil {
		return errNotChecked
	}
	return s.client.CreatePullRequest(ctx, opts)
}

func (s *session) DeleteRepository(ctx context.Context, owner, repo string) error {
	if s.client == nil {
		return errNotChecked
	}
	return s.client.DeleteRepository(ctx, owner, repo)
}

func (s *session) Clone(ctx context.Context, opts git.CloneOptions) error {
	if s.workspace == nil {
		return errNotChecked
	}
	return s.workspace.Clone(ctx, opts)
}

func (s *session) Open(dir string) (remotesync.Repository, error) {
	if s.workspace == nil {
		return nil, errNotChecked
	}
	return s.workspace.Open(dir)
}

// newSession prepares a session for the Git-Mastery root on fs
func (a *app) newSession(fs billy.Filesystem, scopes ...string) *session {
	return &session{
		checks:    a.checks(scopes...),
		fs:        fs,
		progress:  a.stderr,
		logger:    a.logger,
		newClient: a.newClient,
	}
}

func (a *app) syncOptions(s *session) remotesync.Options {
	return remotesync.Options{
		FS:       s.fs,
		Host:     s,
		Remover:  s,
		Cloner:   s,
		Open:     s.Open,
		Prereqs:  s,
		Settings: a.settings,
		Out:      a.console,
		Logger:   a.logger,
		RepoURL:  a.repoURL,
	}
}
