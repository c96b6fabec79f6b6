package remotesync

import (
	"context"

	"github.com/NicabarNimble/go-gitmastery/internal/config"
	gerrors "github.com/NicabarNimble/go-gitmastery/internal/errors"
	"github.com/NicabarNimble/go-gitmastery/internal/github"
)

// PullRequestManager ensures one open pull request from the fork into upstream
type PullRequestManager struct {
	Host     Host
	Settings config.Settings
	Out      Reporter
}

// Ensure opens the progress pull request of username unless one is already open
func (m *PullRequestManager) Ensure(ctx context.Context, username string) error {
	out := reporterOrNop(m.Out)
	branch := m.Settings.Branch

	out.Info("Checking for an open pull request")
	prs, err := m.Host.ListPullRequests(ctx, m.Settings.UpstreamRepo, branch, username)
	if err != nil {
		return gerrors.NewKind(gerrors.KindRemoteOperation, "list pull requests", err)
	}
	if len(prs) > 0 {
		return nil
	}

	owner, repo, err := github.ParseRepo(m.Settings.UpstreamRepo)
	if err != nil {
		return gerrors.NewKind(gerrors.KindConfig, "create pull request", err)
	}

	out.Warn("No pull request created for progress. Creating one now")
	err = m.Host.CreatePullRequest(ctx, github.PROptions{
		Owner: owner,
		Repo:  repo,
		Title: "[" + username + "] Progress",
		Body:  "Automated",
		Head:  username + ":" + branch,
		Base:  branch,
	})
	if err != nil {
		return gerrors.NewKind(gerrors.KindRemoteOperation, "create pull request", err)
	}
	return nil
}
