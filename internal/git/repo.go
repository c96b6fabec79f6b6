package git

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/go-git/go-billy/v5"
	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing/object"

	gerrors "github.com/NicabarNimble/go-gitmastery/internal/errors"
)

// Signature identifies the author of commits
type Signature struct {
	Name  string
	Email string
}

// Repo is an opened working copy
type Repo struct {
	repo     *gogit.Repository
	worktree *gogit.Worktree
	token    string
	progress io.Writer
	author   Signature
	now      func() time.Time
}

func newRepo(r *gogit.Repository, token string, progress io.Writer) (*Repo, error) {
	wt, err := r.Worktree()
	if err != nil {
		return nil, gerrors.NewKind(gerrors.KindRemoteOperation, "open", fmt.Errorf("failed to get worktree: %w", err))
	}
	return &Repo{repo: r, worktree: wt, token: token, progress: progress, now: time.Now}, nil
}

// Open opens the working copy at dir on fs
func Open(fs billy.Filesystem, dir, token string) (*Repo, error) {
	storage, worktree, err := storageFor(fs, dir)
	if err != nil {
		return nil, gerrors.NewKind(gerrors.KindRemoteOperation, "open", err)
	}
	r, err := gogit.Open(storage, worktree)
	if err != nil {
		return nil, gerrors.NewKind(gerrors.KindRemoteOperation, "open", fmt.Errorf("failed to open %s: %w", dir, err))
	}
	return newRepo(r, token, nil)
}

// SetAuthor sets the signature used by Commit
func (r *Repo) SetAuthor(sig Signature) {
	r.author = sig
}

// Remotes returns remote names mapped to their first URL
func (r *Repo) Remotes() (map[string]string, error) {
	remotes, err := r.repo.Remotes()
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(remotes))
	for _, rem := range remotes {
		cfg := rem.Config()
		if len(cfg.URLs) > 0 {
			out[cfg.Name] = cfg.URLs[0]
		}
	}
	return out, nil
}

// AddAll stages every change in the worktree, deletions included
func (r *Repo) AddAll(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return gerrors.NewKind(gerrors.KindRemoteOperation, "add", err)
	}
	if err := r.worktree.AddWithOptions(&gogit.AddOptions{All: true}); err != nil {
		return gerrors.NewKind(gerrors.KindRemoteOperation, "add", err)
	}
	return nil
}

// Commit records the staged changes. Nothing staged is not an error.
func (r *Repo) Commit(ctx context.Context, msg string) error {
	if err := ctx.Err(); err != nil {
		return gerrors.NewKind(gerrors.KindRemoteOperation, "commit", err)
	}
	if msg == "" {
		return gerrors.NewKind(gerrors.KindRemoteOperation, "commit", fmt.Errorf("commit message cannot be empty"))
	}
	if r.author.Name == "" || r.author.Email == "" {
		return gerrors.NewKind(gerrors.KindMissingPrerequisite, "commit", fmt.Errorf("committer name and email are required"))
	}

	sig := &object.Signature{Name: r.author.Name, Email: r.author.Email, When: r.now()}
	_, err := r.worktree.Commit(msg, &gogit.CommitOptions{Author: sig, Committer: sig})
	if errors.Is(err, gogit.ErrEmptyCommit) {
		return nil
	}
	if err != nil {
		return gerrors.NewKind(gerrors.KindRemoteOperation, "commit", err)
	}
	return nil
}

// Push pushes branch to the branch of the same name on remote.
// A remote that is already up to date is not an error.
func (r *Repo) Push(ctx context.Context, remote, branch string) error {
	if remote == "" {
		remote = OriginRemote
	}
	rem, err := r.repo.Remote(remote)
	if err != nil {
		return gerrors.NewKind(gerrors.KindRemoteOperation, "push", fmt.Errorf("remote %s: %w", remote, err))
	}

	var auth = authFor(firstURL(rem.Config()), r.token)
	spec := config.RefSpec(fmt.Sprintf("refs/heads/%s:refs/heads/%s", branch, branch))
	err = r.repo.PushContext(ctx, &gogit.PushOptions{
		RemoteName: remote,
		RefSpecs:   []config.RefSpec{spec},
		Auth:       auth,
		Progress:   r.progress,
	})
	if err != nil && !errors.Is(err, gogit.NoErrAlreadyUpToDate) {
		return gerrors.NewKind(gerrors.KindRemoteOperation, "push", fmt.Errorf("failed to push %s to %s: %w", branch, remote, err))
	}
	return nil
}

// Status lists paths with uncommitted changes, sorted
func (r *Repo) Status() ([]string, error) {
	st, err := r.worktree.Status()
	if err != nil {
		return nil, err
	}
	var paths []string
	for p, s := range st {
		if s.Worktree != gogit.Unmodified || s.Staging != gogit.Unmodified {
			paths = append(paths, p)
		}
	}
	sort.Strings(paths)
	return paths, nil
}

func firstURL(cfg *config.RemoteConfig) string {
	if cfg == nil || len(cfg.URLs) == 0 {
		return ""
	}
	return cfg.URLs[0]
}
