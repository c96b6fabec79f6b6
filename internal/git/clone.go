package git

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/go-git/go-billy/v5"
	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing/cache"
	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/go-git/go-git/v5/plumbing/transport/http"
	"github.com/go-git/go-git/v5/storage/filesystem"

	gerrors "github.com/NicabarNimble/go-gitmastery/internal/errors"
	"github.com/NicabarNimble/go-gitmastery/internal/urlutils"
)

const (
	// OriginRemote is the remote name of the clone source
	OriginRemote = "origin"
	// UpstreamRemote is the remote name of the canonical repository
	UpstreamRemote = "upstream"

	// tokenUser is the username GitHub expects alongside a token password
	tokenUser = "x-access-token"
)

// ErrInvalidOptions indicates that the provided clone options are invalid
var ErrInvalidOptions = gerrors.New("clone", fmt.Errorf("invalid clone options"))

// CloneOptions contains configuration for repository cloning
type CloneOptions struct {
	URL         string    // Remote cloned from, registered as origin
	UpstreamURL string    // Optional, registered as upstream
	Dir         string    // Target directory on the filesystem, must not hold a repository
	Token       string    // Token for HTTPS authentication
	Progress    io.Writer // Optional sideband progress output
}

func (o CloneOptions) validate() error {
	if o.URL == "" {
		return gerrors.NewKind(gerrors.KindRemoteOperation, "clone", fmt.Errorf("%w: source URL must be specified", ErrInvalidOptions))
	}
	if o.Dir == "" {
		return gerrors.NewKind(gerrors.KindRemoteOperation, "clone", fmt.Errorf("%w: target directory must be specified", ErrInvalidOptions))
	}
	if err := validateRemoteURL(o.URL); err != nil {
		return gerrors.NewKind(gerrors.KindRemoteOperation, "clone", fmt.Errorf("invalid source URL: %w", err))
	}
	if o.UpstreamURL != "" {
		if err := validateRemoteURL(o.UpstreamURL); err != nil {
			return gerrors.NewKind(gerrors.KindRemoteOperation, "clone", fmt.Errorf("invalid upstream URL: %w", err))
		}
	}
	return nil
}

// validateRemoteURL accepts HTTPS GitHub URLs and local repositories only
func validateRemoteURL(raw string) error {
	if strings.HasPrefix(raw, "git@") || strings.HasPrefix(raw, "ssh://") {
		return fmt.Errorf("SSH URLs are not supported, please use HTTPS")
	}
	// Local repositories are used by tests and offline mirrors
	if urlutils.IsLocal(raw) {
		return nil
	}
	return urlutils.ValidateURL(raw)
}

// authFor returns token auth for HTTPS remotes, nil otherwise
func authFor(rawURL, token string) transport.AuthMethod {
	if token == "" || !strings.HasPrefix(rawURL, "https://") {
		return nil
	}
	return &http.BasicAuth{Username: tokenUser, Password: token}
}

// storageFor returns the git storage and worktree for dir on fs
func storageFor(fs billy.Filesystem, dir string) (*filesystem.Storage, billy.Filesystem, error) {
	worktree, err := fs.Chroot(dir)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to chroot to %q: %w", dir, err)
	}
	dotGit, err := worktree.Chroot(gogit.GitDirName)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to access .git directory: %w", err)
	}
	return filesystem.NewStorage(dotGit, cache.NewObjectLRUDefault()), worktree, nil
}

// Clone clones opts.URL into opts.Dir and registers the upstream remote
func Clone(ctx context.Context, fs billy.Filesystem, opts CloneOptions) (*Repo, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}

	select {
	case <-ctx.Done():
		return nil, gerrors.NewKind(gerrors.KindRemoteOperation, "clone",
			fmt.Errorf("operation cancelled: %w", ctx.Err()))
	default:
	}

	storage, worktree, err := storageFor(fs, opts.Dir)
	if err != nil {
		return nil, gerrors.NewKind(gerrors.KindRemoteOperation, "clone", err)
	}

	auth := authFor(opts.URL, opts.Token)
	repo, err := gogit.CloneContext(ctx, storage, worktree, &gogit.CloneOptions{
		URL:        opts.URL,
		RemoteName: OriginRemote,
		Auth:       auth,
		Progress:   opts.Progress,
	})
	if err != nil {
		return nil, gerrors.NewKind(gerrors.KindRemoteOperation, "clone",
			fmt.Errorf("failed to clone %s: %w", urlutils.Redact(opts.URL), err))
	}

	if opts.UpstreamURL != "" {
		_, err := repo.CreateRemote(&config.RemoteConfig{
			Name: UpstreamRemote,
			URLs: []string{opts.UpstreamURL},
		})
		if err != nil {
			return nil, gerrors.NewKind(gerrors.KindRemoteOperation, "clone",
				fmt.Errorf("failed to add upstream remote: %w", err))
		}
	}

	return newRepo(repo, opts.Token, opts.Progress)
}
